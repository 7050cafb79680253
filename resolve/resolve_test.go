package resolve

import (
	"testing"

	"github.com/hvacdesk/bookingagent/record"
	"github.com/hvacdesk/bookingagent/schema"
	"github.com/hvacdesk/bookingagent/types"
)

func setFields(rec *record.Record, names ...string) {
	cands := record.Candidates{}
	values := map[string]string{
		"service_type":        "ac_repair",
		"problem_summary":     "AC not cooling",
		"city":                "Toronto",
		"contact_name":        "Qian Sun",
		"contact_phone":       "416-555-1043",
		"address":             "100 Queen St W",
		"property_type":       "apartment",
		"contact_email":       "qian.sun@example.com",
		"preferred_timeslots": "weekday mornings",
		"severity":            "high",
		"equipment_brand":     "Carrier",
		"access_notes":        "buzz 1204",
		"constraints":         "no weekends",
	}
	for _, name := range names {
		cands[name] = values[name]
	}
	record.Merge(rec, cands, 0.9)
}

func allCriticalHigh() []string {
	return []string{
		"service_type", "problem_summary", "city", "contact_name", "contact_phone",
		"address", "property_type", "contact_email",
	}
}

func TestNextMissingScansInDeclaredOrder(t *testing.T) {
	t.Parallel()
	rec := record.New()
	if f := NextMissing(rec, nil); f == nil || f.Name != "service_type" {
		t.Fatalf("fresh record should ask service_type first, got %v", f)
	}

	setFields(rec, "service_type", "problem_summary", "city")
	if f := NextMissing(rec, nil); f == nil || f.Name != "contact_name" {
		t.Fatalf("expected contact_name next, got %v", f)
	}
}

func TestNextMissingMonotonicPriority(t *testing.T) {
	t.Parallel()
	rec := record.New()
	// High tier fully known, critical still missing pieces.
	setFields(rec, "service_type", "address", "property_type", "contact_email")
	f := NextMissing(rec, nil)
	if f == nil || f.Tier != types.TierCritical {
		t.Fatalf("critical gaps must come first, got %v", f)
	}
}

func TestNextMissingCorrectionPreemptsLaterTiers(t *testing.T) {
	t.Parallel()
	rec := record.New()
	setFields(rec, allCriticalHigh()...)
	// Invalidate the phone after the fact.
	rec.Fields["contact_phone"] = record.FieldValue{
		Value: "abc", Confidence: 0.9, Status: types.StatusNeedsCorrection,
	}
	if f := NextMissing(rec, nil); f == nil || f.Name != "contact_phone" {
		t.Fatalf("needs_correction must preempt later tiers, got %v", f)
	}
}

func TestNextMissingMediumSatisfiedByOneField(t *testing.T) {
	t.Parallel()
	rec := record.New()
	setFields(rec, allCriticalHigh()...)

	if f := NextMissing(rec, nil); f == nil || f.Name != "preferred_timeslots" {
		t.Fatalf("expected first medium field, got %v", f)
	}

	setFields(rec, "preferred_timeslots")
	f := NextMissing(rec, nil)
	if f == nil || f.Tier != types.TierLow {
		t.Fatalf("one medium field set should move on to low tier, got %v", f)
	}
}

func TestNextMissingSkipsSkippedLowFields(t *testing.T) {
	t.Parallel()
	rec := record.New()
	setFields(rec, allCriticalHigh()...)
	setFields(rec, "severity")

	skipped := map[string]bool{"equipment_brand": true}
	if f := NextMissing(rec, skipped); f == nil || f.Name != "access_notes" {
		t.Fatalf("skipped field must not be re-asked, got %v", f)
	}

	skipped["access_notes"] = true
	skipped["constraints"] = true
	if f := NextMissing(rec, skipped); f != nil {
		t.Fatalf("all low fields skipped should resolve to nil, got %v", f)
	}
}

func TestThresholdMet(t *testing.T) {
	t.Parallel()
	rec := record.New()
	if ThresholdMet(rec) {
		t.Fatal("empty record cannot meet the threshold")
	}
	setFields(rec, allCriticalHigh()...)
	if ThresholdMet(rec) {
		t.Fatal("threshold needs at least one medium field")
	}
	setFields(rec, "severity")
	if !ThresholdMet(rec) {
		t.Fatal("critical+high+one medium should meet the threshold")
	}
	if Complete(rec, nil) {
		t.Fatal("unanswered low fields keep the session asking")
	}
	if !Complete(rec, map[string]bool{"equipment_brand": true, "access_notes": true, "constraints": true}) {
		t.Fatal("threshold met with low fields skipped should be complete")
	}
}

func TestLowFieldsNeverRequired(t *testing.T) {
	t.Parallel()
	for _, f := range schema.TierFields(types.TierLow) {
		if f.Required {
			t.Errorf("low field %s must not be required", f.Name)
		}
	}
}
