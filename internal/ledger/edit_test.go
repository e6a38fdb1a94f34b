package ledger

import (
	"errors"
	"testing"

	"isolateledger/pkg/domain"
)

func TestCommitRecordsRevertAndPatch(t *testing.T) {
	var slot RevertSlot
	ed := NewCellEditor("k1", "", EditorConfig{Field: domain.FieldNgul, Kind: domain.KindNumber}, &slot)

	ed.Input("12.5")
	if ed.State() != CellDirty {
		t.Fatalf("state after input = %v", ed.State())
	}
	patch, wrote := ed.Commit()
	if !wrote {
		t.Fatal("non-empty commit must write")
	}
	if got := patch[domain.FieldNgul]; got != 12.5 {
		t.Fatalf("number cell committed %#v, want 12.5", got)
	}
	entry, ok := slot.Peek()
	if !ok {
		t.Fatal("revert slot empty after confirming commit")
	}
	if entry.RowKey != "k1" || entry.Field != domain.FieldNgul || entry.Value != "" {
		t.Fatalf("revert entry = %+v", entry)
	}

	ed.Observe(12.5)
	if ed.State() != CellClean {
		t.Fatalf("state after echo = %v", ed.State())
	}
}

func TestEmptyCommitIsDiscard(t *testing.T) {
	var slot RevertSlot
	ed := NewCellEditor("k1", "old", EditorConfig{Field: domain.FieldProject, Kind: domain.KindText}, &slot)
	ed.Input("")
	patch, wrote := ed.Commit()
	if wrote || patch != nil {
		t.Fatalf("empty commit must not write, got %v", patch)
	}
	if slot.Filled() {
		t.Fatal("empty commit must not touch the revert slot")
	}
	if ed.Display() != "old" {
		t.Fatalf("display after discard = %q", ed.Display())
	}
}

func TestNoConfirmEditorSkipsSlot(t *testing.T) {
	var slot RevertSlot
	ed := NewCellEditor("k1", "", EditorConfig{Field: domain.FieldNotePCR, Kind: domain.KindText, NoConfirm: true}, &slot)
	ed.Input("repeat with fresh taq")
	if _, wrote := ed.Commit(); !wrote {
		t.Fatal("no-confirm commit must still write")
	}
	if slot.Filled() {
		t.Fatal("no-confirm commit must not populate the revert slot")
	}
}

func TestLocalityCodeNeverEntersSlot(t *testing.T) {
	var slot RevertSlot
	ed := NewCellEditor("k1", "", EditorConfig{Field: domain.FieldLocalityCode, Kind: domain.KindReference}, &slot)
	ed.Input("CZ-BRN-01")
	if _, wrote := ed.Commit(); !wrote {
		t.Fatal("commit must write")
	}
	if slot.Filled() {
		t.Fatal("locality-code edits are not revertible")
	}
}

func TestDateCellNormalizes(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-03-07", "2024-03-07"},
		{"07.03.2024", "2024-03-07"},
		{"7.3.2024", "2024-03-07"},
		{"2024-03-07T10:30:00Z", "2024-03-07"},
	}
	for _, tc := range cases {
		var slot RevertSlot
		ed := NewCellEditor("k1", "", EditorConfig{Field: domain.FieldDateCollection, Kind: domain.KindDate}, &slot)
		ed.Input(tc.in)
		patch, _ := ed.Commit()
		if got := patch[domain.FieldDateCollection]; got != tc.want {
			t.Fatalf("date %q committed as %v, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDateRevertRestoresOriginalRepresentation(t *testing.T) {
	var slot RevertSlot
	ed := NewCellEditor("k1", "05.01.2020", EditorConfig{Field: domain.FieldDateIsolation, Kind: domain.KindDate}, &slot)
	ed.Input("2024-03-07")
	ed.Commit()

	rowKey, patch, err := RevertPatch(&slot)
	if err != nil {
		t.Fatalf("revert: %v", err)
	}
	if rowKey != "k1" || patch[domain.FieldDateIsolation] != "05.01.2020" {
		t.Fatalf("revert patch = %s %v", rowKey, patch)
	}
}

func TestRevertSlotSingleLevel(t *testing.T) {
	var slot RevertSlot
	slot.Store(RevertEntry{RowKey: "k1", Field: domain.FieldProject, Value: "first"})
	slot.Store(RevertEntry{RowKey: "k2", Field: domain.FieldKit, Value: "second"})

	entry, err := slot.Take()
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if entry.RowKey != "k2" || entry.Value != "second" {
		t.Fatalf("newer edit must overwrite the slot, got %+v", entry)
	}
	if _, err := slot.Take(); !errors.Is(err, domain.ErrEmptyRevertSlot) {
		t.Fatalf("second take must fail with ErrEmptyRevertSlot, got %v", err)
	}
}

func TestCommitBoxSelection(t *testing.T) {
	var slot RevertSlot
	opt := BoxOption{Key: "box-7", Label: "Box 7", Site: "Freezer B"}
	patch := CommitBoxSelection("k1", BoxSelection{Value: "box-2", Label: "Box 2"}, opt, &slot)

	if patch[domain.FieldBox] != "box-7" || patch[domain.FieldStorageSite] != "Freezer B" {
		t.Fatalf("box commit patch = %v", patch)
	}
	entry, ok := slot.Peek()
	if !ok || entry.Value != "box-2" || entry.Label != "Box 2" {
		t.Fatalf("prior selection not captured: %+v", entry)
	}
}
