package ledger

import (
	"sort"

	"isolateledger/pkg/domain"
)

// LocalityOptions derives the selectable locality catalog from the dataset
// itself: every extraction carrying a non-empty locality code contributes
// one option built from its dependent fields. Options are de-duplicated by
// code (first record wins) and sorted by code.
func LocalityOptions(records []domain.Record) []LocalityOption {
	seen := make(map[string]struct{})
	var opts []LocalityOption
	for _, rec := range records {
		code := rec.String(domain.FieldLocalityCode)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		opts = append(opts, localityOptionOf(rec))
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Code < opts[j].Code })
	return opts
}

// LocalityByCode resolves one locality option from the dataset.
func LocalityByCode(records []domain.Record, code string) (LocalityOption, bool) {
	if code == "" {
		return LocalityOption{}, false
	}
	for _, rec := range records {
		if rec.String(domain.FieldLocalityCode) == code {
			return localityOptionOf(rec), true
		}
	}
	return LocalityOption{}, false
}

func localityOptionOf(rec domain.Record) LocalityOption {
	return LocalityOption{
		Code:           rec.String(domain.FieldLocalityCode),
		Country:        rec.String(domain.FieldCountry),
		State:          rec.String(domain.FieldState),
		LocalityName:   rec.String(domain.FieldLocalityName),
		Latitude:       rec.String(domain.FieldLatitude),
		Longitude:      rec.String(domain.FieldLongitude),
		Altitude:       rec.String(domain.FieldAltitude),
		Habitat:        rec.String(domain.FieldHabitat),
		DateCollection: rec.String(domain.FieldDateCollection),
		Collector:      rec.String(domain.FieldCollector),
	}
}

// BoxOptions builds the storage-box select options from the storage
// collection, sorted by label, with a leading empty option for "no box".
func BoxOptions(storage []domain.Record) []BoxOption {
	opts := make([]BoxOption, 0, len(storage)+1)
	for _, rec := range storage {
		box := domain.AsStorageBox(rec)
		opts = append(opts, BoxOption{Key: rec.Key, Label: box.Label(), Site: box.Site()})
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Label < opts[j].Label })
	return append([]BoxOption{{}}, opts...)
}

// BoxByKey resolves one storage box option by its record key.
func BoxByKey(storage []domain.Record, key string) (BoxOption, bool) {
	for _, rec := range storage {
		if rec.Key == key {
			box := domain.AsStorageBox(rec)
			return BoxOption{Key: rec.Key, Label: box.Label(), Site: box.Site()}, true
		}
	}
	return BoxOption{}, false
}
