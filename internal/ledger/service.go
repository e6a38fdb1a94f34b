package ledger

import (
	"fmt"
	"strings"

	"isolateledger/pkg/domain"
)

// Metrics receives engine-level counters. The Prometheus recorder satisfies
// it; tests and library embedders get the no-op default.
type Metrics interface {
	PatchApplied(collection string)
	RevertTaken()
	SampleCreated()
}

type nopMetrics struct{}

func (nopMetrics) PatchApplied(string) {}
func (nopMetrics) RevertTaken()        {}
func (nopMetrics) SampleCreated()      {}

// Service binds the engine to a record store. One Service represents one
// editing session: it owns the session's revert slot and routes every
// engine operation to store patches.
type Service struct {
	store   domain.RecordStore
	metrics Metrics
	slot    RevertSlot
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics installs a metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewService builds a session facade over the store.
func NewService(store domain.RecordStore, opts ...Option) *Service {
	s := &Service{store: store, metrics: nopMetrics{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Slot exposes the session's revert slot for cell editors constructed by
// the caller.
func (s *Service) Slot() *RevertSlot { return &s.slot }

// Extractions returns the current ledger rows ordered by key.
func (s *Service) Extractions() ([]domain.Record, error) {
	return s.store.List(domain.CollectionExtractions)
}

// EditField commits a single-field edit on one extraction. Empty input is a
// discard. The locality code is refused outright since a bare write would
// lock the record without copying the catalog payload; SelectLocality is
// the only path that sets it. Locality-dependent fields are refused while
// the record is locked and detach catalog provenance when it is not.
// Confirming edits remember the prior value in the revert slot once the
// write lands.
func (s *Service) EditField(key, field, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if field == domain.FieldLocalityCode {
		return fmt.Errorf("edit %s on %s: locality is set through catalog selection", field, key)
	}
	rec, err := s.extraction(key)
	if err != nil {
		return err
	}
	kind := domain.KindText
	if spec, ok := domain.LookupField(field); ok {
		kind = spec.Kind
	}
	value := normalizeValue(kind, strings.TrimSpace(raw))

	var patch domain.FieldPatch
	if domain.IsLocalityDependent(field) {
		patch, err = DependentFieldPatch(rec, field, value)
		if err != nil {
			return err
		}
	} else {
		patch = domain.FieldPatch{field: value}
	}
	if err := s.store.Patch(domain.CollectionExtractions, key, patch); err != nil {
		return fmt.Errorf("patch extraction %s: %w", key, err)
	}
	if !confirmless(field, kind) {
		s.slot.Store(RevertEntry{RowKey: key, Field: field, Value: rec.Fields[field]})
	}
	s.metrics.PatchApplied(domain.CollectionExtractions)
	return nil
}

// SelectLocality binds one extraction to a catalog locality: the nine
// dependent fields are overwritten and the record locks. Locality
// selections are not revertible.
func (s *Service) SelectLocality(key, code string) error {
	all, err := s.Extractions()
	if err != nil {
		return err
	}
	opt, ok := LocalityByCode(all, code)
	if !ok {
		return fmt.Errorf("locality %s: %w", code, domain.ErrRecordNotFound)
	}
	if err := s.store.Patch(domain.CollectionExtractions, key, opt.Patch()); err != nil {
		return fmt.Errorf("select locality %s: %w", code, err)
	}
	s.metrics.PatchApplied(domain.CollectionExtractions)
	return nil
}

// ClearLocality unlocks one extraction, keeping the copied dependent values.
func (s *Service) ClearLocality(key string) error {
	if err := s.store.Patch(domain.CollectionExtractions, key, ClearLocalityPatch()); err != nil {
		return fmt.Errorf("clear locality on %s: %w", key, err)
	}
	s.metrics.PatchApplied(domain.CollectionExtractions)
	return nil
}

// SelectBox assigns a storage box to one extraction, writing the box key
// and its denormalized site in one patch. Clearing the selection (empty
// boxKey) writes only the box key; the previously copied site stays in
// place. The prior selection goes into the revert slot once the write
// lands, display label included.
func (s *Service) SelectBox(key, boxKey string) error {
	rec, err := s.extraction(key)
	if err != nil {
		return err
	}
	storage, err := s.store.List(domain.CollectionStorage)
	if err != nil {
		return fmt.Errorf("list storage: %w", err)
	}
	prior := BoxSelection{Value: rec.String(domain.FieldBox)}
	if prev, found := BoxByKey(storage, prior.Value); found {
		prior.Label = prev.Label
	}
	patch := domain.FieldPatch{domain.FieldBox: ""}
	if boxKey != "" {
		opt, ok := BoxByKey(storage, boxKey)
		if !ok {
			return fmt.Errorf("box %s: %w", boxKey, domain.ErrRecordNotFound)
		}
		patch = CommitBoxSelection(key, prior, opt, nil)
	}
	if err := s.store.Patch(domain.CollectionExtractions, key, patch); err != nil {
		return fmt.Errorf("select box on %s: %w", key, err)
	}
	s.slot.Store(RevertEntry{RowKey: key, Field: domain.FieldBox, Value: prior.Value, Label: prior.Label})
	s.metrics.PatchApplied(domain.CollectionExtractions)
	return nil
}

// AddToGroup merges the groups of two extractions and propagates the
// unified list to every member.
func (s *Service) AddToGroup(sourceKey, targetKey string) error {
	all, err := s.Extractions()
	if err != nil {
		return err
	}
	source, err := findRecord(all, sourceKey)
	if err != nil {
		return err
	}
	target, err := findRecord(all, targetKey)
	if err != nil {
		return err
	}
	patches, err := AddToGroup(source, target, all)
	if err != nil {
		return err
	}
	return s.applyPatches(patches)
}

// RemoveFromGroup dissolves one isolate code's membership everywhere.
func (s *Service) RemoveFromGroup(code string) error {
	all, err := s.Extractions()
	if err != nil {
		return err
	}
	return s.applyPatches(RemoveFromGroup(code, all))
}

// Revert undoes the last confirming edit. With an empty slot it fails with
// domain.ErrEmptyRevertSlot.
func (s *Service) Revert() error {
	rowKey, patch, err := RevertPatch(&s.slot)
	if err != nil {
		return err
	}
	if err := s.store.Patch(domain.CollectionExtractions, rowKey, patch); err != nil {
		return fmt.Errorf("revert on %s: %w", rowKey, err)
	}
	s.metrics.RevertTaken()
	s.metrics.PatchApplied(domain.CollectionExtractions)
	return nil
}

// CreateSample validates and inserts a new extraction. A locality code
// matching the catalog pre-populates the nine dependent fields from the
// catalog entry, overriding whatever the caller supplied for them; an
// unknown code keeps the caller's values and introduces a new locality.
// When clonedFrom names an existing isolate code the new sample joins that
// record's group: the unified list seeds the new record and back-fills
// every member, including a source that had no group of its own yet.
func (s *Service) CreateSample(fields domain.FieldPatch, clonedFrom string) (domain.Record, error) {
	all, err := s.Extractions()
	if err != nil {
		return domain.Record{}, err
	}
	fields = fields.Clone()
	if err := ValidateNewSample(fields, all); err != nil {
		return domain.Record{}, err
	}
	if code := domain.Stringify(fields[domain.FieldLocalityCode]); code != "" {
		if opt, ok := LocalityByCode(all, code); ok {
			for name, value := range opt.Patch() {
				fields[name] = value
			}
		}
	}

	var unified []string
	if clonedFrom != "" {
		source, err := findByIsolateCode(all, clonedFrom)
		if err != nil {
			return domain.Record{}, err
		}
		probe := domain.Record{Fields: map[string]any{
			domain.FieldIsolateCode: fields[domain.FieldIsolateCode],
		}}
		unified = UnifiedGroup(source, probe)
		fields[domain.FieldIsolateCodeGroup] = append([]string(nil), unified...)
	} else if _, ok := fields[domain.FieldIsolateCodeGroup]; !ok {
		fields[domain.FieldIsolateCodeGroup] = []string{}
	}

	rec, err := s.store.Put(domain.CollectionExtractions, fields)
	if err != nil {
		return domain.Record{}, fmt.Errorf("create sample: %w", err)
	}
	s.metrics.SampleCreated()

	if len(unified) > 0 {
		members := make(map[string]struct{}, len(unified))
		for _, code := range unified {
			members[code] = struct{}{}
		}
		patches := make(map[string]domain.FieldPatch)
		for _, existing := range all {
			if _, ok := members[existing.String(domain.FieldIsolateCode)]; ok {
				patches[existing.Key] = domain.FieldPatch{
					domain.FieldIsolateCodeGroup: append([]string(nil), unified...),
				}
			}
		}
		if err := s.applyPatches(patches); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// AddColumn introduces a new ledger-wide column by writing an empty value
// of that name to the first record; inference then surfaces it everywhere.
func (s *Service) AddColumn(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || name == domain.FieldIsolateCodeGroup || domain.IsCurated(name) {
		return fmt.Errorf("add column %q: name reserved or empty", name)
	}
	all, err := s.Extractions()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		return fmt.Errorf("add column %q: empty ledger", name)
	}
	if err := s.store.Patch(domain.CollectionExtractions, all[0].Key, domain.FieldPatch{name: ""}); err != nil {
		return fmt.Errorf("add column %q: %w", name, err)
	}
	s.metrics.PatchApplied(domain.CollectionExtractions)
	return nil
}

// Primers returns the primer registry ordered by key.
func (s *Service) Primers() ([]domain.Record, error) {
	return s.store.List(domain.CollectionPrimers)
}

// AddPrimer inserts a primer registry entry.
func (s *Service) AddPrimer(fields domain.FieldPatch) (domain.Record, error) {
	rec, err := s.store.Put(domain.CollectionPrimers, fields)
	if err != nil {
		return domain.Record{}, fmt.Errorf("add primer: %w", err)
	}
	return rec, nil
}

// EditPrimer commits a single-field edit on one primer. Primer edits do not
// participate in the revert slot.
func (s *Service) EditPrimer(key, field, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	kind := domain.KindText
	for _, spec := range domain.PrimerSchema() {
		if spec.Name == field {
			kind = spec.Kind
			break
		}
	}
	value := normalizeValue(kind, strings.TrimSpace(raw))
	if err := s.store.Patch(domain.CollectionPrimers, key, domain.FieldPatch{field: value}); err != nil {
		return fmt.Errorf("patch primer %s: %w", key, err)
	}
	s.metrics.PatchApplied(domain.CollectionPrimers)
	return nil
}

// RemovePrimer deletes one primer by key.
func (s *Service) RemovePrimer(key string) error {
	if err := s.store.Remove(domain.CollectionPrimers, key); err != nil {
		return fmt.Errorf("remove primer %s: %w", key, err)
	}
	return nil
}

// SeedStorage loads the box catalog, skipping boxes whose label already
// exists.
func (s *Service) SeedStorage(entries []domain.FieldPatch) (added int, err error) {
	existing, err := s.store.List(domain.CollectionStorage)
	if err != nil {
		return 0, fmt.Errorf("list storage: %w", err)
	}
	labels := make(map[string]struct{}, len(existing))
	for _, rec := range existing {
		labels[rec.String(domain.FieldBoxLabel)] = struct{}{}
	}
	for _, entry := range entries {
		label := domain.Stringify(entry[domain.FieldBoxLabel])
		if label == "" {
			continue
		}
		if _, dup := labels[label]; dup {
			continue
		}
		if _, err := s.store.Put(domain.CollectionStorage, entry); err != nil {
			return added, fmt.Errorf("seed box %s: %w", label, err)
		}
		labels[label] = struct{}{}
		added++
	}
	return added, nil
}

func (s *Service) applyPatches(patches map[string]domain.FieldPatch) error {
	for key, patch := range patches {
		if err := s.store.Patch(domain.CollectionExtractions, key, patch); err != nil {
			return fmt.Errorf("patch extraction %s: %w", key, err)
		}
		s.metrics.PatchApplied(domain.CollectionExtractions)
	}
	return nil
}

func (s *Service) extraction(key string) (domain.Record, error) {
	all, err := s.Extractions()
	if err != nil {
		return domain.Record{}, err
	}
	return findRecord(all, key)
}

func findRecord(records []domain.Record, key string) (domain.Record, error) {
	for _, rec := range records {
		if rec.Key == key {
			return rec, nil
		}
	}
	return domain.Record{}, fmt.Errorf("record %s: %w", key, domain.ErrRecordNotFound)
}

func findByIsolateCode(records []domain.Record, code string) (domain.Record, error) {
	for _, rec := range records {
		if rec.String(domain.FieldIsolateCode) == code {
			return rec, nil
		}
	}
	return domain.Record{}, fmt.Errorf("isolate %s: %w", code, domain.ErrRecordNotFound)
}

// confirmless reports whether the field commits without confirmation and
// therefore never populates the revert slot. Marker flags and the free-text
// note columns qualify.
func confirmless(field string, kind domain.FieldKind) bool {
	if kind == domain.KindFlag {
		return true
	}
	switch field {
	case domain.FieldNotePCR, domain.FieldNoteSequencing, domain.FieldNoteGeneral:
		return true
	}
	return false
}
