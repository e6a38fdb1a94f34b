package ledger

import (
	"errors"
	"fmt"

	"isolateledger/pkg/domain"
)

// requiredSampleFields must be present and non-empty before a new sample is
// written.
var requiredSampleFields = []string{
	domain.FieldIsolateCode,
	domain.FieldSpeciesOrig,
	domain.FieldProject,
	domain.FieldKit,
	domain.FieldCountry,
	domain.FieldLocalityName,
	domain.FieldCollector,
}

// ValidateNewSample checks intake rules before any write: every required
// field non-empty and the isolate code unused. All violations are collected
// so a form can mark every offending field at once.
func ValidateNewSample(fields domain.FieldPatch, existing []domain.Record) error {
	var errs []error
	for _, field := range requiredSampleFields {
		if domain.Stringify(fields[field]) == "" {
			errs = append(errs, fmt.Errorf("%s: %w", field, domain.ErrMissingRequiredField))
		}
	}
	code := domain.Stringify(fields[domain.FieldIsolateCode])
	if code != "" {
		for _, rec := range existing {
			if rec.String(domain.FieldIsolateCode) == code {
				errs = append(errs, fmt.Errorf("%s: %w", code, domain.ErrDuplicateIsolateCode))
				break
			}
		}
	}
	return errors.Join(errs...)
}
