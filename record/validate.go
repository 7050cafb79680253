package record

import (
	"github.com/hvacdesk/bookingagent/schema"
	"github.com/hvacdesk/bookingagent/types"
)

// MaxCorrectionAttempts bounds the correction loop per field. Once a field
// has failed validation this many times it is accepted as-is with the
// unvalidated annotation so the conversation can move on.
const MaxCorrectionAttempts = 3

// Validate applies format checks to every field that carries a validator.
// Each failing turn counts as one correction attempt against the field;
// attempts never exceed MaxCorrectionAttempts.
func Validate(rec *Record, attempts map[string]int) {
	for _, f := range schema.Fields() {
		if f.Validate == nil {
			continue
		}
		fv := rec.Get(f.Name)
		if fv.Value == "" || fv.Unvalidated {
			continue
		}
		if fv.Status != types.StatusSet && fv.Status != types.StatusNeedsCorrection {
			continue
		}
		if err := f.Validate(fv.Value); err == nil {
			if fv.Status == types.StatusNeedsCorrection {
				fv.Status = types.StatusSet
				rec.Fields[f.Name] = fv
			}
			continue
		}
		if attempts[f.Name] >= MaxCorrectionAttempts {
			fv.Status = types.StatusSet
			fv.Unvalidated = true
		} else {
			attempts[f.Name]++
			fv.Status = types.StatusNeedsCorrection
		}
		rec.Fields[f.Name] = fv
	}
}
