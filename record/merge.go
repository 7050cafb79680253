package record

import (
	"github.com/hvacdesk/bookingagent/schema"
	"github.com/hvacdesk/bookingagent/types"
)

// Candidates is one turn's extracted field set: field name → value.
// Absent keys mean "the turn said nothing about this field".
type Candidates map[string]string

// Merge folds one turn's candidates into the record. Fields absent from
// the candidate set are left untouched, unknown field names are ignored,
// and applying the same candidate set twice is a no-op after the first
// application.
func Merge(rec *Record, cands Candidates, turnConfidence float64) {
	for name, value := range cands {
		if value == "" {
			continue
		}
		if _, ok := schema.Lookup(name); !ok {
			// Forward compatible: extractors may know fields we don't.
			continue
		}
		cur := rec.Get(name)
		switch cur.Status {
		case types.StatusUnset, types.StatusSkipped:
			// A skip only suppresses re-asking; a volunteered value
			// still lands.
			rec.Fields[name] = FieldValue{
				Value:      value,
				Confidence: turnConfidence,
				Status:     types.StatusSet,
			}
		case types.StatusNeedsCorrection:
			if value != cur.Value {
				rec.Fields[name] = FieldValue{
					Value:      value,
					Confidence: turnConfidence,
					Status:     types.StatusSet,
				}
			}
		case types.StatusSet:
			if turnConfidence > cur.Confidence {
				rec.Fields[name] = FieldValue{
					Value:      value,
					Confidence: turnConfidence,
					Status:     types.StatusSet,
				}
			}
		}
	}
}
