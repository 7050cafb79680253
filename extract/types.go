// Package extract is the boundary to the natural-language extraction
// oracle. The core never reads user text itself; it receives an
// Extraction (a nullable subset of the booking fields plus a confidence)
// and validates its shape before anything is merged.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/hvacdesk/bookingagent/record"
	"github.com/hvacdesk/bookingagent/types"
)

// ErrMalformed marks extractor output that cannot be decoded into the
// candidate-field shape. The session rejects the turn without touching
// state.
var ErrMalformed = errors.New("malformed extraction payload")

// Extraction is one turn's candidate field set. Empty fields mean "the
// turn said nothing about this"; unknown keys in the wire form are
// ignored.
type Extraction struct {
	ServiceType        string   `json:"service_type,omitempty" jsonschema:"enum=ac_repair,enum=furnace_maintenance,enum=installation,enum=cleaning,enum=ventilation_maintenance,enum=other,description=Type of HVAC service requested"`
	EquipmentBrand     string   `json:"equipment_brand,omitempty" jsonschema:"description=Brand of the equipment"`
	ProblemSummary     string   `json:"problem_summary,omitempty" jsonschema:"description=Short summary of the problem"`
	Severity           string   `json:"severity,omitempty" jsonschema:"enum=critical,enum=high,enum=medium,enum=low,description=How urgent the problem is"`
	PropertyType       string   `json:"property_type,omitempty" jsonschema:"enum=apartment,enum=detached_house,enum=townhouse,enum=commercial,enum=other,description=Type of property"`
	Address            string   `json:"address,omitempty" jsonschema:"description=Street address of the property"`
	City               string   `json:"city,omitempty" jsonschema:"description=City where service is needed"`
	PreferredTimeslots []string `json:"preferred_timeslots,omitempty" jsonschema:"description=Preferred service time windows"`
	AccessNotes        string   `json:"access_notes,omitempty" jsonschema:"description=How the technician gets in"`
	ContactName        string   `json:"contact_name,omitempty" jsonschema:"description=Name of the contact person"`
	ContactPhone       string   `json:"contact_phone,omitempty" jsonschema:"description=Contact phone number"`
	ContactEmail       string   `json:"contact_email,omitempty" jsonschema:"description=Contact email address"`
	Constraints        []string `json:"constraints,omitempty" jsonschema:"description=Special requirements or constraints"`
	Confidence         float64  `json:"confidence" jsonschema:"required,description=Extraction confidence between 0 and 1"`
}

// Candidates flattens the extraction into the merge input. List fields
// are joined into a single semantic value.
func (e *Extraction) Candidates() record.Candidates {
	cands := record.Candidates{}
	put := func(name, value string) {
		if value != "" {
			cands[name] = value
		}
	}
	put("service_type", e.ServiceType)
	put("equipment_brand", e.EquipmentBrand)
	put("problem_summary", e.ProblemSummary)
	put("severity", e.Severity)
	put("property_type", e.PropertyType)
	put("address", e.Address)
	put("city", e.City)
	put("preferred_timeslots", strings.Join(e.PreferredTimeslots, "; "))
	put("access_notes", e.AccessNotes)
	put("contact_name", e.ContactName)
	put("contact_phone", e.ContactPhone)
	put("contact_email", e.ContactEmail)
	put("constraints", strings.Join(e.Constraints, "; "))
	return cands
}

// Decode parses raw extractor output. Shape errors and out-of-range
// confidence values are reported as ErrMalformed so the caller can retry
// extraction instead of advancing the conversation.
func Decode(raw []byte) (*Extraction, error) {
	var ext Extraction
	if err := sonic.Unmarshal(raw, &ext); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if ext.Confidence < 0 || ext.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence %v out of range", ErrMalformed, ext.Confidence)
	}
	return &ext, nil
}

// Request is the context handed to an extractor for one turn.
type Request struct {
	RawText string
	// LastQuestion is the question the user was answering, when known.
	LastQuestion string
	// Rows is the current record snapshot so extractors resolve
	// references like "same as before".
	Rows    []types.RecordRow
	Missing []types.FieldInfo
}

type Extractor interface {
	Extract(ctx context.Context, req *Request) (*Extraction, error)
}
