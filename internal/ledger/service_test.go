package ledger

import (
	"errors"
	"reflect"
	"testing"

	"isolateledger/internal/infra/store/memory"
	"isolateledger/pkg/domain"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	return NewService(store), store
}

func seedExtraction(t *testing.T, store *memory.Store, fields domain.FieldPatch) domain.Record {
	t.Helper()
	rec, err := store.Put(domain.CollectionExtractions, fields)
	if err != nil {
		t.Fatalf("seed extraction: %v", err)
	}
	return rec
}

func getExtraction(t *testing.T, store *memory.Store, key string) domain.Record {
	t.Helper()
	records, err := store.List(domain.CollectionExtractions)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, rec := range records {
		if rec.Key == key {
			return rec
		}
	}
	t.Fatalf("record %s not found", key)
	return domain.Record{}
}

func TestEditFieldNumberCommitAndRevert(t *testing.T) {
	svc, store := newTestService(t)
	rec := seedExtraction(t, store, domain.FieldPatch{
		domain.FieldIsolateCode: "A1",
		domain.FieldNgul:        "",
	})

	if err := svc.EditField(rec.Key, domain.FieldNgul, "12.5"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if got := getExtraction(t, store, rec.Key).Fields[domain.FieldNgul]; got != 12.5 {
		t.Fatalf("ngul = %#v, want 12.5", got)
	}

	if err := svc.Revert(); err != nil {
		t.Fatalf("revert: %v", err)
	}
	if got := getExtraction(t, store, rec.Key).Fields[domain.FieldNgul]; got != "" {
		t.Fatalf("ngul after revert = %#v, want empty", got)
	}
	if err := svc.Revert(); !errors.Is(err, domain.ErrEmptyRevertSlot) {
		t.Fatalf("second revert must fail with ErrEmptyRevertSlot, got %v", err)
	}
}

func TestEditFieldEmptyInputIsNoop(t *testing.T) {
	svc, store := newTestService(t)
	rec := seedExtraction(t, store, domain.FieldPatch{
		domain.FieldIsolateCode: "A1",
		domain.FieldProject:     "mollusca",
	})
	if err := svc.EditField(rec.Key, domain.FieldProject, "  "); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if got := getExtraction(t, store, rec.Key).String(domain.FieldProject); got != "mollusca" {
		t.Fatalf("empty commit wrote: %q", got)
	}
	if svc.Slot().Filled() {
		t.Fatal("empty commit must not populate the revert slot")
	}
}

func TestEditFieldRefusesLocalityCode(t *testing.T) {
	svc, store := newTestService(t)
	rec := seedExtraction(t, store, domain.FieldPatch{
		domain.FieldIsolateCode:  "A1",
		domain.FieldLocalityCode: "",
		domain.FieldCountry:      "SK",
	})
	if err := svc.EditField(rec.Key, domain.FieldLocalityCode, "CZ-BRN-01"); err == nil {
		t.Fatal("bare locality-code edit must be refused")
	}
	got := getExtraction(t, store, rec.Key)
	if Locked(got) {
		t.Fatalf("record locked without denormalization: %v", got.Fields)
	}
	if got.String(domain.FieldCountry) != "SK" {
		t.Fatalf("country = %q, want untouched SK", got.String(domain.FieldCountry))
	}
	if svc.Slot().Filled() {
		t.Fatal("refused edit must not populate the revert slot")
	}
}

func TestEditFieldLockedDependent(t *testing.T) {
	svc, store := newTestService(t)
	rec := seedExtraction(t, store, domain.FieldPatch{
		domain.FieldIsolateCode:  "A1",
		domain.FieldLocalityCode: "CZ-BRN-01",
		domain.FieldCountry:      "CZ",
	})
	if err := svc.EditField(rec.Key, domain.FieldCountry, "SK"); !errors.Is(err, domain.ErrFieldLocked) {
		t.Fatalf("expected ErrFieldLocked, got %v", err)
	}
	if got := getExtraction(t, store, rec.Key).String(domain.FieldCountry); got != "CZ" {
		t.Fatalf("locked field was written: %q", got)
	}
}

func TestEditFieldUnlockedDependentDetaches(t *testing.T) {
	svc, store := newTestService(t)
	rec := seedExtraction(t, store, domain.FieldPatch{
		domain.FieldIsolateCode:      "A1",
		domain.FieldLocalityCode:     "",
		domain.FieldCountry:          "CZ",
		domain.FieldIsolateCodeGroup: []string{"A1", "A3"},
	})
	if err := svc.EditField(rec.Key, domain.FieldCountry, "SK"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	got := getExtraction(t, store, rec.Key)
	if got.String(domain.FieldCountry) != "SK" {
		t.Fatalf("country = %q", got.String(domain.FieldCountry))
	}
	if got.String(domain.FieldLocalityCode) != "" {
		t.Fatalf("locality code not cleared: %q", got.String(domain.FieldLocalityCode))
	}
	if len(got.Group()) != 0 {
		t.Fatalf("group not dissolved: %v", got.Group())
	}
}

func TestSelectLocalityDenormalizationConsistency(t *testing.T) {
	svc, store := newTestService(t)
	source := seedExtraction(t, store, domain.FieldPatch{
		domain.FieldIsolateCode:    "A1",
		domain.FieldLocalityCode:   "CZ-BRN-01",
		domain.FieldCountry:        "CZ",
		domain.FieldState:          "South Moravia",
		domain.FieldLocalityName:   "Brno",
		domain.FieldLatitude:       "49.19",
		domain.FieldLongitude:      "16.67",
		domain.FieldAltitude:       "310",
		domain.FieldHabitat:        "steppe",
		domain.FieldDateCollection: "2023-05-14",
		domain.FieldCollector:      "J. Novak",
	})
	target := seedExtraction(t, store, domain.FieldPatch{domain.FieldIsolateCode: "A2"})

	if err := svc.SelectLocality(target.Key, "CZ-BRN-01"); err != nil {
		t.Fatalf("select locality: %v", err)
	}
	got := getExtraction(t, store, target.Key)
	for _, field := range domain.LocalityDependentFields {
		if got.String(field) != source.String(field) {
			t.Fatalf("%s = %q, want %q", field, got.String(field), source.String(field))
		}
	}
	if !Locked(got) {
		t.Fatal("record must lock after locality selection")
	}
	if svc.Slot().Filled() {
		t.Fatal("locality selection must not be revertible")
	}
}

func TestSelectBoxWritesAndReverts(t *testing.T) {
	svc, store := newTestService(t)
	box, err := store.Put(domain.CollectionStorage, domain.FieldPatch{
		domain.FieldBoxLabel: "Box 7",
		domain.FieldBoxSite:  "Freezer B",
	})
	if err != nil {
		t.Fatalf("seed box: %v", err)
	}
	rec := seedExtraction(t, store, domain.FieldPatch{
		domain.FieldIsolateCode: "A1",
		domain.FieldBox:         "",
	})

	if err := svc.SelectBox(rec.Key, box.Key); err != nil {
		t.Fatalf("select box: %v", err)
	}
	got := getExtraction(t, store, rec.Key)
	if got.String(domain.FieldBox) != box.Key || got.String(domain.FieldStorageSite) != "Freezer B" {
		t.Fatalf("box selection wrote %v", got.Fields)
	}

	if err := svc.Revert(); err != nil {
		t.Fatalf("revert: %v", err)
	}
	if got := getExtraction(t, store, rec.Key).String(domain.FieldBox); got != "" {
		t.Fatalf("box after revert = %q", got)
	}
}

func TestSelectBoxClearKeepsSite(t *testing.T) {
	svc, store := newTestService(t)
	box, err := store.Put(domain.CollectionStorage, domain.FieldPatch{
		domain.FieldBoxLabel: "Box 7",
		domain.FieldBoxSite:  "Freezer B",
	})
	if err != nil {
		t.Fatalf("seed box: %v", err)
	}
	rec := seedExtraction(t, store, domain.FieldPatch{domain.FieldIsolateCode: "A1"})
	if err := svc.SelectBox(rec.Key, box.Key); err != nil {
		t.Fatalf("select box: %v", err)
	}

	if err := svc.SelectBox(rec.Key, ""); err != nil {
		t.Fatalf("clear box: %v", err)
	}
	got := getExtraction(t, store, rec.Key)
	if got.String(domain.FieldBox) != "" {
		t.Fatalf("box after clearing = %q", got.String(domain.FieldBox))
	}
	if got.String(domain.FieldStorageSite) != "Freezer B" {
		t.Fatalf("clearing the box erased the site: %q", got.String(domain.FieldStorageSite))
	}

	if err := svc.Revert(); err != nil {
		t.Fatalf("revert: %v", err)
	}
	if got := getExtraction(t, store, rec.Key).String(domain.FieldBox); got != box.Key {
		t.Fatalf("box after revert = %q, want %q", got, box.Key)
	}
}

// patchFailStore wraps the memory store and refuses Patch on demand.
type patchFailStore struct {
	*memory.Store
	failPatch bool
}

func (s *patchFailStore) Patch(collection, key string, patch domain.FieldPatch) error {
	if s.failPatch {
		return errors.New("write refused")
	}
	return s.Store.Patch(collection, key, patch)
}

func TestFailedEditLeavesRevertSlot(t *testing.T) {
	failing := &patchFailStore{Store: memory.New()}
	svc := NewService(failing)
	rec, err := failing.Put(domain.CollectionExtractions, domain.FieldPatch{
		domain.FieldIsolateCode: "A1",
		domain.FieldProject:     "mollusca",
		domain.FieldKit:         "DNeasy",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.EditField(rec.Key, domain.FieldProject, "gastropoda"); err != nil {
		t.Fatalf("edit: %v", err)
	}

	failing.failPatch = true
	if err := svc.EditField(rec.Key, domain.FieldKit, "Qiagen"); err == nil {
		t.Fatal("edit must surface the store failure")
	}
	entry, ok := svc.Slot().Peek()
	if !ok || entry.Field != domain.FieldProject {
		t.Fatalf("failed write clobbered the revert slot: %+v", entry)
	}
}

func TestFailedBoxSelectLeavesRevertSlot(t *testing.T) {
	failing := &patchFailStore{Store: memory.New()}
	svc := NewService(failing)
	box, err := failing.Put(domain.CollectionStorage, domain.FieldPatch{
		domain.FieldBoxLabel: "Box 7",
		domain.FieldBoxSite:  "Freezer B",
	})
	if err != nil {
		t.Fatalf("seed box: %v", err)
	}
	rec, err := failing.Put(domain.CollectionExtractions, domain.FieldPatch{
		domain.FieldIsolateCode: "A1",
		domain.FieldNgul:        "",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.EditField(rec.Key, domain.FieldNgul, "12.5"); err != nil {
		t.Fatalf("edit: %v", err)
	}

	failing.failPatch = true
	if err := svc.SelectBox(rec.Key, box.Key); err == nil {
		t.Fatal("box select must surface the store failure")
	}
	entry, ok := svc.Slot().Peek()
	if !ok || entry.Field != domain.FieldNgul {
		t.Fatalf("failed box select clobbered the revert slot: %+v", entry)
	}
}

func TestGroupLifecycleThroughService(t *testing.T) {
	svc, store := newTestService(t)
	r1 := seedExtraction(t, store, domain.FieldPatch{
		domain.FieldIsolateCode: "A1",
		domain.FieldCountry:     "CZ",
	})
	r3 := seedExtraction(t, store, domain.FieldPatch{
		domain.FieldIsolateCode: "A3",
		domain.FieldCountry:     "SK",
	})

	if err := svc.AddToGroup(r1.Key, r3.Key); err != nil {
		t.Fatalf("add to group: %v", err)
	}
	want := []string{"A1", "A3"}
	for _, key := range []string{r1.Key, r3.Key} {
		if got := getExtraction(t, store, key).Group(); !reflect.DeepEqual(got, want) {
			t.Fatalf("group of %s = %v, want %v", key, got, want)
		}
	}

	if err := svc.RemoveFromGroup("A3"); err != nil {
		t.Fatalf("remove from group: %v", err)
	}
	if got := getExtraction(t, store, r1.Key).Group(); !reflect.DeepEqual(got, []string{"A1"}) {
		t.Fatalf("group of r1 after removal = %v", got)
	}
	if got := getExtraction(t, store, r3.Key).Group(); len(got) != 0 {
		t.Fatalf("group of r3 after removal = %v", got)
	}
}

func validSample(code string) domain.FieldPatch {
	return domain.FieldPatch{
		domain.FieldIsolateCode:  code,
		domain.FieldSpeciesOrig:  "Helix pomatia",
		domain.FieldProject:      "mollusca",
		domain.FieldKit:          "DNeasy",
		domain.FieldCountry:      "CZ",
		domain.FieldLocalityName: "Brno",
		domain.FieldCollector:    "J. Novak",
	}
}

func TestCreateSampleValidation(t *testing.T) {
	svc, store := newTestService(t)
	seedExtraction(t, store, validSample("A1"))

	if _, err := svc.CreateSample(validSample("A1"), ""); !errors.Is(err, domain.ErrDuplicateIsolateCode) {
		t.Fatalf("expected ErrDuplicateIsolateCode, got %v", err)
	}
	incomplete := validSample("A2")
	delete(incomplete, domain.FieldCollector)
	if _, err := svc.CreateSample(incomplete, ""); !errors.Is(err, domain.ErrMissingRequiredField) {
		t.Fatalf("expected ErrMissingRequiredField, got %v", err)
	}
	if records, _ := store.List(domain.CollectionExtractions); len(records) != 1 {
		t.Fatalf("failed validations must not write, have %d records", len(records))
	}
}

func TestCreateSampleClonedSeedsAndBackfillsGroup(t *testing.T) {
	svc, store := newTestService(t)
	source := seedExtraction(t, store, validSample("A1"))

	created, err := svc.CreateSample(validSample("A2"), "A1")
	if err != nil {
		t.Fatalf("create sample: %v", err)
	}
	want := []string{"A1", "A2"}
	if got := created.Group(); !reflect.DeepEqual(got, want) {
		t.Fatalf("new sample group = %v, want %v", got, want)
	}
	if got := getExtraction(t, store, source.Key).Group(); !reflect.DeepEqual(got, want) {
		t.Fatalf("source group not back-filled: %v", got)
	}
}

func TestCreateSampleResolvesLocalityFromCatalog(t *testing.T) {
	svc, store := newTestService(t)
	seedExtraction(t, store, domain.FieldPatch{
		domain.FieldIsolateCode:    "A1",
		domain.FieldLocalityCode:   "CZ-BRN-01",
		domain.FieldCountry:        "CZ",
		domain.FieldState:          "South Moravia",
		domain.FieldLocalityName:   "Brno",
		domain.FieldLatitude:       "49.19",
		domain.FieldLongitude:      "16.67",
		domain.FieldAltitude:       "310",
		domain.FieldHabitat:        "steppe",
		domain.FieldDateCollection: "2023-05-14",
		domain.FieldCollector:      "J. Novak",
	})

	fields := validSample("A2")
	fields[domain.FieldLocalityCode] = "CZ-BRN-01"
	fields[domain.FieldCountry] = "XX"
	created, err := svc.CreateSample(fields, "")
	if err != nil {
		t.Fatalf("create sample: %v", err)
	}
	if got := created.String(domain.FieldCountry); got != "CZ" {
		t.Fatalf("country = %q, want catalog value CZ", got)
	}
	if got := created.String(domain.FieldHabitat); got != "steppe" {
		t.Fatalf("habitat = %q, want catalog value steppe", got)
	}
	if !Locked(created) {
		t.Fatal("catalog-bound sample must be locked")
	}

	// An unknown code keeps the caller's values and opens a new locality.
	fresh := validSample("A3")
	fresh[domain.FieldLocalityCode] = "SK-TAT-01"
	fresh[domain.FieldCountry] = "SK"
	created, err = svc.CreateSample(fresh, "")
	if err != nil {
		t.Fatalf("create sample: %v", err)
	}
	if got := created.String(domain.FieldCountry); got != "SK" {
		t.Fatalf("country = %q, want caller value SK", got)
	}
}

func TestAddColumnSurfacesThroughInference(t *testing.T) {
	svc, store := newTestService(t)
	seedExtraction(t, store, domain.FieldPatch{domain.FieldIsolateCode: "A1"})

	if err := svc.AddColumn("museumNumber"); err != nil {
		t.Fatalf("add column: %v", err)
	}
	records, _ := store.List(domain.CollectionExtractions)
	if got := domain.InferredFields(records); !reflect.DeepEqual(got, []string{"museumNumber"}) {
		t.Fatalf("inferred columns = %v", got)
	}

	if err := svc.AddColumn(domain.FieldIsolateCodeGroup); err == nil {
		t.Fatal("reserved name must be refused")
	}
	if err := svc.AddColumn(domain.FieldCountry); err == nil {
		t.Fatal("curated name must be refused")
	}
}

func TestPrimerLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	rec, err := svc.AddPrimer(domain.FieldPatch{
		domain.FieldPrimerName:     "LCO1490",
		domain.FieldPrimerSequence: "GGTCAACAAATCATAAAGATATTGG",
		domain.FieldPrimerLocus:    "COI",
	})
	if err != nil {
		t.Fatalf("add primer: %v", err)
	}
	if err := svc.EditPrimer(rec.Key, domain.FieldPrimerTm, "48.5"); err != nil {
		t.Fatalf("edit primer: %v", err)
	}
	primers, _ := svc.Primers()
	if len(primers) != 1 || primers[0].Fields[domain.FieldPrimerTm] != 48.5 {
		t.Fatalf("primers = %v", primers)
	}
	if err := svc.RemovePrimer(rec.Key); err != nil {
		t.Fatalf("remove primer: %v", err)
	}
	if primers, _ := svc.Primers(); len(primers) != 0 {
		t.Fatalf("primer not removed: %v", primers)
	}
}

func TestSeedStorageSkipsExisting(t *testing.T) {
	svc, store := newTestService(t)
	if _, err := store.Put(domain.CollectionStorage, domain.FieldPatch{
		domain.FieldBoxLabel: "Box 1",
		domain.FieldBoxSite:  "Freezer A",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	added, err := svc.SeedStorage([]domain.FieldPatch{
		{domain.FieldBoxLabel: "Box 1", domain.FieldBoxSite: "Freezer A"},
		{domain.FieldBoxLabel: "Box 2", domain.FieldBoxSite: "Freezer B"},
	})
	if err != nil {
		t.Fatalf("seed storage: %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}
	records, _ := store.List(domain.CollectionStorage)
	if len(records) != 2 {
		t.Fatalf("storage has %d boxes, want 2", len(records))
	}
}
