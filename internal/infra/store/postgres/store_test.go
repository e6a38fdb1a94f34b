package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatal("empty dsn must be rejected")
	}
}

func TestOpenPropagatesDriverError(t *testing.T) {
	want := errors.New("driver exploded")
	restore := OverrideSQLOpen(func(driverName, dsn string) (*sql.DB, error) {
		if driverName != "pgx" {
			t.Fatalf("driver = %q, want pgx", driverName)
		}
		return nil, want
	})
	defer restore()

	if _, err := Open(context.Background(), "postgres://ledger@localhost/ledger"); !errors.Is(err, want) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
}
