package record

import (
	"reflect"
	"testing"

	"github.com/hvacdesk/bookingagent/types"
)

func TestMergeSetsUnsetFields(t *testing.T) {
	t.Parallel()
	rec := New()
	Merge(rec, Candidates{"city": "Toronto", "service_type": "ac_repair"}, 0.8)

	city := rec.Get("city")
	if city.Status != types.StatusSet || city.Value != "Toronto" || city.Confidence != 0.8 {
		t.Fatalf("unexpected city state: %+v", city)
	}
	if rec.Status("address") != types.StatusUnset {
		t.Fatal("absent candidate must leave field untouched")
	}
}

func TestMergeIdempotent(t *testing.T) {
	t.Parallel()
	rec := New()
	cands := Candidates{"city": "Toronto", "contact_name": "Qian Sun"}
	Merge(rec, cands, 0.7)
	snapshot := rec.Clone()

	Merge(rec, cands, 0.7)
	if !reflect.DeepEqual(rec.Fields, snapshot.Fields) {
		t.Fatalf("second merge changed the record: %+v vs %+v", rec.Fields, snapshot.Fields)
	}
}

func TestMergeConfidenceGuard(t *testing.T) {
	t.Parallel()
	rec := New()
	Merge(rec, Candidates{"city": "Toronto"}, 0.9)

	Merge(rec, Candidates{"city": "Ottawa"}, 0.5)
	if rec.Get("city").Value != "Toronto" {
		t.Fatal("lower-confidence candidate must not overwrite a set field")
	}

	Merge(rec, Candidates{"city": "Ottawa"}, 0.9)
	if rec.Get("city").Value != "Toronto" {
		t.Fatal("equal confidence must not overwrite a set field")
	}

	Merge(rec, Candidates{"city": "Ottawa"}, 0.95)
	if rec.Get("city").Value != "Ottawa" {
		t.Fatal("higher-confidence candidate should overwrite")
	}
}

func TestMergeIgnoresUnknownFields(t *testing.T) {
	t.Parallel()
	rec := New()
	Merge(rec, Candidates{"favorite_color": "blue", "city": "Toronto"}, 0.8)
	if _, ok := rec.Fields["favorite_color"]; ok {
		t.Fatal("unknown field must be ignored, not stored")
	}
	if rec.Get("city").Value != "Toronto" {
		t.Fatal("known fields should still merge")
	}
}

func TestMergeSkippedFieldAcceptsVolunteeredValue(t *testing.T) {
	t.Parallel()
	rec := New()
	rec.Fields["equipment_brand"] = FieldValue{Status: types.StatusSkipped}

	Merge(rec, Candidates{"equipment_brand": "Carrier"}, 0.6)
	fv := rec.Get("equipment_brand")
	if fv.Status != types.StatusSet || fv.Value != "Carrier" {
		t.Fatalf("skipped field should accept a volunteered value, got %+v", fv)
	}
}

func TestMergeNeedsCorrectionReplacedByDifferentValue(t *testing.T) {
	t.Parallel()
	rec := New()
	rec.Fields["contact_phone"] = FieldValue{Value: "abc", Confidence: 0.9, Status: types.StatusNeedsCorrection}

	// Same value: stays in needs_correction regardless of confidence.
	Merge(rec, Candidates{"contact_phone": "abc"}, 0.95)
	if rec.Get("contact_phone").Status != types.StatusNeedsCorrection {
		t.Fatal("repeating the same invalid value must not clear needs_correction")
	}

	// Different value: replaces even at lower confidence.
	Merge(rec, Candidates{"contact_phone": "416-555-1043"}, 0.5)
	fv := rec.Get("contact_phone")
	if fv.Status != types.StatusSet || fv.Value != "416-555-1043" {
		t.Fatalf("corrected value should land, got %+v", fv)
	}
}

func TestRecordEmpty(t *testing.T) {
	t.Parallel()
	rec := New()
	if !rec.Empty() {
		t.Fatal("fresh record should be empty")
	}
	rec.Fields["equipment_brand"] = FieldValue{Status: types.StatusSkipped}
	if !rec.Empty() {
		t.Fatal("a record with only skips has never been set")
	}
	Merge(rec, Candidates{"city": "Toronto"}, 0.5)
	if rec.Empty() {
		t.Fatal("record with a set field is not empty")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()
	rec := New()
	Merge(rec, Candidates{"city": "Toronto", "contact_phone": "416-555-1043"}, 0.8)

	data, err := rec.MarshalSnapshot()
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	restored, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if !reflect.DeepEqual(rec.Fields, restored.Fields) {
		t.Fatalf("snapshot round trip mismatch: %+v vs %+v", rec.Fields, restored.Fields)
	}
}
