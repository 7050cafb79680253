package extract

import (
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	t.Parallel()
	raw := []byte(`{
		"service_type": "ac_repair",
		"problem_summary": "AC not cooling",
		"city": "Toronto",
		"preferred_timeslots": ["weekday mornings", "saturday"],
		"confidence": 0.85,
		"some_future_field": "ignored"
	}`)
	ext, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ext.ServiceType != "ac_repair" || ext.City != "Toronto" {
		t.Fatalf("unexpected extraction: %+v", ext)
	}

	cands := ext.Candidates()
	if cands["preferred_timeslots"] != "weekday mornings; saturday" {
		t.Fatalf("timeslots = %q", cands["preferred_timeslots"])
	}
	if _, ok := cands["contact_phone"]; ok {
		t.Fatal("absent fields must not appear as candidates")
	}
}

func TestDecodeMalformed(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{
		`not json at all`,
		`{"confidence": 1.5}`,
		`{"confidence": -0.1}`,
		`{"city": 42, "confidence": 0.5}`,
	} {
		if _, err := Decode([]byte(raw)); !errors.Is(err, ErrMalformed) {
			t.Errorf("Decode(%q) error = %v, want ErrMalformed", raw, err)
		}
	}
}
