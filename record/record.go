// Package record holds the canonical booking record for one session and
// the merge/validate steps that feed it. The record only ever moves
// forward: values are never erased, lower-confidence candidates never
// replace known values, and a bounded correction loop keeps invalid
// contact fields from blocking progress forever.
package record

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/hvacdesk/bookingagent/schema"
	"github.com/hvacdesk/bookingagent/types"
)

type FieldValue struct {
	Value      string            `json:"value,omitempty"`
	Confidence float64           `json:"confidence,omitempty"`
	Status     types.FieldStatus `json:"status"`
	// Unvalidated marks a value accepted as-is after the correction
	// loop was exhausted.
	Unvalidated bool `json:"unvalidated,omitempty"`
}

// Record is one session's booking record. Fields is sparse: absent keys
// are unset.
type Record struct {
	Fields map[string]FieldValue `json:"fields"`
}

func New() *Record {
	return &Record{Fields: map[string]FieldValue{}}
}

// Get returns the stored state for a field, or a zero unset value.
func (r *Record) Get(name string) FieldValue {
	if fv, ok := r.Fields[name]; ok {
		return fv
	}
	return FieldValue{Status: types.StatusUnset}
}

func (r *Record) Status(name string) types.FieldStatus {
	return r.Get(name).Status
}

// Empty reports whether no field has ever been set; it drives the
// greeting stage.
func (r *Record) Empty() bool {
	for _, fv := range r.Fields {
		if fv.Status == types.StatusSet || fv.Status == types.StatusNeedsCorrection {
			return false
		}
	}
	return true
}

// TierSet reports whether every field of the tier has a set value.
func (r *Record) TierSet(tier types.Tier) bool {
	for _, f := range schema.TierFields(tier) {
		if r.Status(f.Name) != types.StatusSet {
			return false
		}
	}
	return true
}

// TierAnySet reports whether at least one field of the tier has a set
// value. The medium tier only requires one.
func (r *Record) TierAnySet(tier types.Tier) bool {
	for _, f := range schema.TierFields(tier) {
		if r.Status(f.Name) == types.StatusSet {
			return true
		}
	}
	return false
}

func (r *Record) Clone() *Record {
	out := New()
	for name, fv := range r.Fields {
		out.Fields[name] = fv
	}
	return out
}

// Rows renders the record in schema ask order, for prompts and the CLI
// confirmation table.
func (r *Record) Rows() []types.RecordRow {
	fields := schema.Fields()
	rows := make([]types.RecordRow, 0, len(fields))
	for _, f := range fields {
		fv := r.Get(f.Name)
		rows = append(rows, types.RecordRow{
			Field:      f.Name,
			Value:      fv.Value,
			Status:     fv.Status,
			Confidence: fv.Confidence,
		})
	}
	return rows
}

func (r *Record) MarshalSnapshot() ([]byte, error) {
	data, err := sonic.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal record snapshot: %w", err)
	}
	return data, nil
}

func UnmarshalSnapshot(data []byte) (*Record, error) {
	rec := New()
	if err := sonic.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("unmarshal record snapshot: %w", err)
	}
	if rec.Fields == nil {
		rec.Fields = map[string]FieldValue{}
	}
	return rec, nil
}
