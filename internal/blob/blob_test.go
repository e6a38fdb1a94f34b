package blob

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestFilesystemRoundTrip(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	info, err := store.Put(ctx, "exports/db-mollusca-all.csv", strings.NewReader("a,b\n1,2\n"), PutOptions{ContentType: "text/csv"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 8 || info.ContentType != "text/csv" {
		t.Fatalf("info = %+v", info)
	}

	got, rc, err := store.Get(ctx, "exports/db-mollusca-all.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "a,b\n1,2\n" {
		t.Fatalf("payload = %q", data)
	}
	if got.ContentType != "text/csv" {
		t.Fatalf("content type lost: %+v", got)
	}
}

func TestFilesystemPutOverwrites(t *testing.T) {
	store, _ := NewFilesystem(t.TempDir())
	ctx := context.Background()
	if _, err := store.Put(ctx, "x.csv", strings.NewReader("old"), PutOptions{}); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := store.Put(ctx, "x.csv", strings.NewReader("new"), PutOptions{}); err != nil {
		t.Fatalf("second put: %v", err)
	}
	_, rc, err := store.Get(ctx, "x.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "new" {
		t.Fatalf("payload = %q, want overwrite", data)
	}
}

func TestFilesystemRejectsTraversal(t *testing.T) {
	store, _ := NewFilesystem(t.TempDir())
	ctx := context.Background()
	for _, key := range []string{"", "/abs", "../escape", "a/../../b"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Fatalf("key %q accepted", key)
		}
	}
}

func TestFilesystemListAndDelete(t *testing.T) {
	store, _ := NewFilesystem(t.TempDir())
	ctx := context.Background()
	store.Put(ctx, "exports/a.csv", strings.NewReader("1"), PutOptions{})
	store.Put(ctx, "exports/b.csv", strings.NewReader("2"), PutOptions{})
	store.Put(ctx, "other/c.csv", strings.NewReader("3"), PutOptions{})

	infos, err := store.List(ctx, "exports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "exports/a.csv" {
		t.Fatalf("list = %+v", infos)
	}

	ok, err := store.Delete(ctx, "exports/a.csv")
	if err != nil || !ok {
		t.Fatalf("delete = %v, %v", ok, err)
	}
	ok, err = store.Delete(ctx, "exports/a.csv")
	if err != nil || ok {
		t.Fatalf("second delete = %v, %v", ok, err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	if _, err := store.Put(ctx, "a.json", strings.NewReader("{}"), PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	info, err := store.Head(ctx, "a.json")
	if err != nil || info.Size != 2 {
		t.Fatalf("head = %+v, %v", info, err)
	}
	if _, _, err := store.Get(ctx, "missing"); err == nil {
		t.Fatal("missing key must error")
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("driver = %s", store.Driver())
	}
}
