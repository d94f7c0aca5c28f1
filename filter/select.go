package filter

import (
	"github.com/effective-security/jwtfilter/config"
	"github.com/effective-security/jwtfilter/record"
)

// SelectForPack returns the payload to be packed.
// It returns false when the single field source is absent from the record.
func SelectForPack(rec *record.Record, cfg *config.Config) (any, bool) {
	switch cfg.PackSource {
	case config.PackOneField:
		v, ok := rec.Get(cfg.PackFromField)
		if !ok {
			return nil, false
		}
		return v, true
	case config.PackFields:
		return rec.Pick(cfg.Fields...), true
	default:
		return rec.Clone(), true
	}
}

// Residual returns the record with the packed fields removed
// when pack_remove_source is set, or a copy of the record otherwise.
func Residual(rec *record.Record, cfg *config.Config) *record.Record {
	if !cfg.PackRemoveSource {
		return rec.Clone()
	}
	switch cfg.PackSource {
	case config.PackOneField:
		return rec.Omit(cfg.PackFromField)
	case config.PackFields:
		return rec.Omit(cfg.Fields...)
	default:
		return record.New()
	}
}

// SelectForUnpack returns the decoded fields to be placed in the output record.
// With no field names the whole payload is extracted, otherwise only the named
// fields that are present. The validity marker is always added.
func SelectForUnpack(payload *record.Record, fields []string, validityField string, valid bool) *record.Record {
	var extracted *record.Record
	if len(fields) == 0 {
		extracted = payload.Clone()
	} else {
		extracted = payload.Pick(fields...)
	}
	return extracted.Set(validityField, valid)
}

// packedFields returns the source fields of the token present in the record, in record order
func packedFields(rec *record.Record, cfg *config.Config) []string {
	switch cfg.PackSource {
	case config.PackOneField:
		if rec.Has(cfg.PackFromField) {
			return []string{cfg.PackFromField}
		}
	case config.PackFields:
		return rec.Pick(cfg.Fields...).Keys()
	}
	return nil
}
