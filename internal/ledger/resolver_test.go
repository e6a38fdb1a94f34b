package ledger

import (
	"errors"
	"reflect"
	"testing"

	"isolateledger/pkg/domain"
)

func TestLocalityPatchCoversAllDependentFields(t *testing.T) {
	opt := LocalityOption{
		Code:           "CZ-BRN-01",
		Country:        "CZ",
		State:          "South Moravia",
		LocalityName:   "Brno, Stranska skala",
		Latitude:       "49.19",
		Longitude:      "16.67",
		Altitude:       "310",
		Habitat:        "limestone steppe",
		DateCollection: "2023-05-14",
		Collector:      "J. Novak",
	}
	patch := opt.Patch()
	if patch[domain.FieldLocalityCode] != "CZ-BRN-01" {
		t.Fatalf("locality code missing from patch: %v", patch)
	}
	for _, field := range domain.LocalityDependentFields {
		if _, ok := patch[field]; !ok {
			t.Fatalf("dependent field %s missing from patch", field)
		}
	}
	if len(patch) != len(domain.LocalityDependentFields)+1 {
		t.Fatalf("patch carries extra fields: %v", patch)
	}
}

func TestBoxPatchOnlyDenormalizesSite(t *testing.T) {
	patch := BoxOption{Key: "box-1", Label: "Box 1", Site: "Freezer A"}.Patch()
	want := domain.FieldPatch{domain.FieldStorageSite: "Freezer A"}
	if !reflect.DeepEqual(patch, want) {
		t.Fatalf("box patch = %v, want %v", patch, want)
	}
}

func TestDependentFieldPatchRefusedWhileLocked(t *testing.T) {
	rec := extraction("k1", "A1", map[string]any{domain.FieldLocalityCode: "CZ-BRN-01"})
	if _, err := DependentFieldPatch(rec, domain.FieldCountry, "SK"); !errors.Is(err, domain.ErrFieldLocked) {
		t.Fatalf("expected ErrFieldLocked, got %v", err)
	}
}

func TestDependentFieldPatchDetachesProvenance(t *testing.T) {
	rec := extraction("k1", "A1", map[string]any{
		domain.FieldLocalityCode:     "",
		domain.FieldCountry:          "CZ",
		domain.FieldIsolateCodeGroup: []string{"A1", "A3"},
	})
	patch, err := DependentFieldPatch(rec, domain.FieldCountry, "SK")
	if err != nil {
		t.Fatalf("dependent edit: %v", err)
	}
	if patch[domain.FieldCountry] != "SK" {
		t.Fatalf("edited value missing: %v", patch)
	}
	if patch[domain.FieldLocalityCode] != "" {
		t.Fatalf("locality code must clear: %v", patch)
	}
	if got := patch[domain.FieldIsolateCodeGroup]; !reflect.DeepEqual(got, []string{}) {
		t.Fatalf("group must dissolve on this record: %v", got)
	}
}

func TestDependentFieldPatchRejectsOtherFields(t *testing.T) {
	rec := extraction("k1", "A1", nil)
	if _, err := DependentFieldPatch(rec, domain.FieldProject, "x"); err == nil {
		t.Fatal("non-dependent field must be rejected")
	}
}

func TestLocalityOptionsInferredFromDataset(t *testing.T) {
	records := []domain.Record{
		extraction("k1", "A1", map[string]any{
			domain.FieldLocalityCode: "SK-TAT-02",
			domain.FieldCountry:      "SK",
		}),
		extraction("k2", "A2", map[string]any{
			domain.FieldLocalityCode: "CZ-BRN-01",
			domain.FieldCountry:      "CZ",
		}),
		// Duplicate code; the first record carrying it wins.
		extraction("k3", "A3", map[string]any{
			domain.FieldLocalityCode: "SK-TAT-02",
			domain.FieldCountry:      "XX",
		}),
		extraction("k4", "A4", nil),
	}
	opts := LocalityOptions(records)
	if len(opts) != 2 {
		t.Fatalf("expected 2 options, got %v", opts)
	}
	if opts[0].Code != "CZ-BRN-01" || opts[1].Code != "SK-TAT-02" {
		t.Fatalf("options not sorted by code: %v", opts)
	}
	if opts[1].Country != "SK" {
		t.Fatalf("duplicate code should keep first record's payload: %v", opts[1])
	}
}

func TestBoxOptionsSortedWithLeadingEmpty(t *testing.T) {
	storage := []domain.Record{
		{Key: "s2", Fields: map[string]any{domain.FieldBoxLabel: "Box 2", domain.FieldBoxSite: "Freezer B"}},
		{Key: "s1", Fields: map[string]any{domain.FieldBoxLabel: "Box 1", domain.FieldBoxSite: "Freezer A"}},
	}
	opts := BoxOptions(storage)
	if len(opts) != 3 || opts[0] != (BoxOption{}) {
		t.Fatalf("expected leading empty option, got %v", opts)
	}
	if opts[1].Label != "Box 1" || opts[2].Label != "Box 2" {
		t.Fatalf("options not sorted by label: %v", opts)
	}
}
