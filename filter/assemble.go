package filter

import (
	"github.com/effective-security/jwtfilter/config"
	"github.com/effective-security/jwtfilter/record"
)

// AssemblePack returns the output record for a packed token
func AssemblePack(original *record.Record, token string, cfg *config.Config) *record.Record {
	switch cfg.PackDestination {
	case config.ToRecord:
		return record.New().Set(cfg.PackToField, token)
	case config.ToReplace:
		src := packedFields(original, cfg)
		if len(src) == 0 {
			// nothing to replace
			return Residual(original, cfg).Set(cfg.PackToField, token)
		}
		out := original.Clone().Set(src[0], token)
		for _, name := range src[1:] {
			out.Delete(name)
		}
		return out
	default:
		return Residual(original, cfg).Set(cfg.PackToField, token)
	}
}

// AssembleUnpack returns the output record for the extracted fields
func AssembleUnpack(original, extracted *record.Record, cfg *config.Config) *record.Record {
	switch cfg.UnpackDestination {
	case config.ToRecord:
		return extracted.Clone()
	case config.ToReplace:
		return original.Clone().Set(cfg.UnpackFromField, extracted.Clone())
	}

	residual := original.Clone()
	if cfg.UnpackRemoveSource {
		residual.Delete(cfg.UnpackFromField)
	}
	if cfg.UnpackDestination == config.ToMerge {
		return residual.Merge(extracted)
	}
	return residual.Set(cfg.UnpackToField, extracted.Clone())
}

// annotate returns a copy of the record with the validity marker set to false
func annotate(rec *record.Record, cfg *config.Config) *record.Record {
	return rec.Clone().Set(cfg.ValidityField, false)
}
