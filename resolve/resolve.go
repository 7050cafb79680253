// Package resolve computes the single next field the conversation should
// ask about, scanning tiers critical→low in declared field order.
package resolve

import (
	"github.com/hvacdesk/bookingagent/record"
	"github.com/hvacdesk/bookingagent/schema"
	"github.com/hvacdesk/bookingagent/types"
)

// NextMissing returns the first field still worth asking about, or nil
// when nothing is left. A field awaiting correction is surfaced at its
// tier position ahead of anything unset in later tiers: an invalid value
// blocks forward progress regardless of tier. Skipped low-tier fields are
// passed over, and once one medium field is set the other is no longer
// asked.
func NextMissing(rec *record.Record, skipped map[string]bool) *schema.Field {
	mediumSatisfied := rec.TierAnySet(types.TierMedium)
	for _, f := range schema.Fields() {
		switch rec.Status(f.Name) {
		case types.StatusNeedsCorrection:
			return f
		case types.StatusUnset:
			if skipped[f.Name] {
				continue
			}
			if f.Tier == types.TierMedium && mediumSatisfied {
				continue
			}
			return f
		}
	}
	return nil
}

// ThresholdMet reports whether the completion threshold is reached:
// critical and high fully set and at least one medium field set. Low
// fields never count against completion.
func ThresholdMet(rec *record.Record) bool {
	return rec.TierSet(types.TierCritical) &&
		rec.TierSet(types.TierHigh) &&
		rec.TierAnySet(types.TierMedium)
}

// Complete reports whether there is nothing left to ask: the threshold is
// met and every low field is either answered or skipped.
func Complete(rec *record.Record, skipped map[string]bool) bool {
	return ThresholdMet(rec) && NextMissing(rec, skipped) == nil
}
