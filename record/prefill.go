package record

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// PatchOp is a single RFC6902 operation against the candidate-fields
// document, the format external systems use to seed a session with
// already known values (a CRM contact, a resumed draft).
type PatchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// ApplyPrefill applies RFC6902 ops to an empty candidate document and
// merges the result into the record at the given confidence. Replace ops
// are downgraded to add since the base document is empty.
func ApplyPrefill(rec *Record, ops []PatchOp, confidence float64) error {
	if len(ops) == 0 {
		return nil
	}
	fixed := make([]PatchOp, 0, len(ops))
	for _, op := range ops {
		if op.Op == "replace" {
			op.Op = "add"
		}
		fixed = append(fixed, op)
	}
	patchJSON, err := sonic.Marshal(fixed)
	if err != nil {
		return fmt.Errorf("marshal prefill ops: %w", err)
	}
	patch, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return fmt.Errorf("decode prefill patch: %w", err)
	}
	doc, err := patch.Apply([]byte(`{}`))
	if err != nil {
		return fmt.Errorf("apply prefill patch: %w", err)
	}
	var raw map[string]any
	if err := sonic.Unmarshal(doc, &raw); err != nil {
		return fmt.Errorf("decode prefill document: %w", err)
	}
	Merge(rec, CandidatesFromDocument(raw), confidence)
	return nil
}

// CandidatesFromDocument flattens a decoded candidate-fields document into
// a Candidates map. List values are joined, non-string scalars are
// dropped.
func CandidatesFromDocument(raw map[string]any) Candidates {
	cands := Candidates{}
	for name, value := range raw {
		switch v := value.(type) {
		case string:
			if v != "" {
				cands[name] = v
			}
		case []any:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok && s != "" {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				cands[name] = strings.Join(parts, "; ")
			}
		}
	}
	return cands
}
