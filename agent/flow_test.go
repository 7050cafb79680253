package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hvacdesk/bookingagent/extract"
	"github.com/hvacdesk/bookingagent/types"
)

// scriptExtractor replays a fixed sequence of extractions; a nil step
// yields ErrMalformed, the way a real extractor reports unparseable
// model output.
type scriptExtractor struct {
	steps []*extract.Extraction
	i     int
}

func (s *scriptExtractor) Extract(ctx context.Context, req *extract.Request) (*extract.Extraction, error) {
	if s.i >= len(s.steps) {
		return nil, errors.New("script exhausted")
	}
	step := s.steps[s.i]
	s.i++
	if step == nil {
		return nil, extract.ErrMalformed
	}
	return step, nil
}

func TestFlowConversation(t *testing.T) {
	t.Parallel()
	store := NewMemoryStateReadWriter()
	flow, err := NewFlow(&scriptExtractor{steps: []*extract.Extraction{
		{ServiceType: "ac_repair", ProblemSummary: "AC not cooling", City: "Toronto", Confidence: 0.9},
		{ContactName: "Qian Sun", Confidence: 0.9},
		{ContactPhone: "abc", Confidence: 0.9},
		{ContactPhone: "416-555-1043", Confidence: 0.9},
	}}, nil, nil, store)
	if err != nil {
		t.Fatal(err)
	}
	ctx := WithSessionID(context.Background(), "flow-1")

	resp, err := flow.Invoke(ctx, "my AC stopped cooling, I'm in Toronto")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Directive.TargetField != "contact_name" || resp.Outcome != OutcomeContinue {
		t.Fatalf("turn 1: %+v", resp.Directive)
	}
	if !strings.Contains(resp.Message, "联系人") {
		t.Fatalf("turn 1 message = %q", resp.Message)
	}

	if resp, err = flow.Invoke(ctx, "Qian Sun"); err != nil {
		t.Fatal(err)
	}
	if resp.Directive.TargetField != "contact_phone" {
		t.Fatalf("turn 2 target = %q", resp.Directive.TargetField)
	}

	// Invalid phone: the reply names the rejected value.
	if resp, err = flow.Invoke(ctx, "abc"); err != nil {
		t.Fatal(err)
	}
	if resp.Directive.TargetField != "contact_phone" {
		t.Fatalf("turn 3 target = %q", resp.Directive.TargetField)
	}
	if !strings.Contains(resp.Message, `"abc"`) {
		t.Fatalf("turn 3 message = %q", resp.Message)
	}

	if resp, err = flow.Invoke(ctx, "sorry, 416-555-1043"); err != nil {
		t.Fatal(err)
	}
	if resp.Directive.TargetField != "address" {
		t.Fatalf("turn 4 target = %q", resp.Directive.TargetField)
	}

	// Persistence carried all of it: a fresh read shows the record so far.
	state, err := store.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if state.Record.Get("contact_phone").Value != "416-555-1043" {
		t.Fatal("turn state not persisted")
	}

	// Early termination uses no extractor step and destroys the state.
	resp, err = flow.Invoke(ctx, "/done")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Outcome != OutcomeIncomplete || !resp.Completed {
		t.Fatalf("termination response: %+v", resp)
	}
	if resp.Record.Get("city").Value != "Toronto" {
		t.Fatal("terminal response must carry the partial record")
	}
	state, err = store.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !state.Record.Empty() {
		t.Fatal("terminal outcome should remove stored state")
	}
}

func TestFlowCompleteOutcome(t *testing.T) {
	t.Parallel()
	store := NewMemoryStateReadWriter()
	flow, err := NewFlow(&scriptExtractor{steps: []*extract.Extraction{
		{
			ServiceType:    "furnace_maintenance",
			ProblemSummary: "annual checkup",
			City:           "Toronto",
			ContactName:    "Qian Sun",
			ContactPhone:   "416-555-1043",
			Address:        "100 Queen St W",
			PropertyType:   "detached_house",
			ContactEmail:   "qian.sun@example.com",
			Severity:       "low",
			Confidence:     0.9,
		},
	}}, nil, nil, store)
	if err != nil {
		t.Fatal(err)
	}
	ctx := WithSessionID(context.Background(), "flow-2")

	if _, err := flow.Invoke(ctx, "book a furnace checkup, details attached"); err != nil {
		t.Fatal(err)
	}
	resp, err := flow.Invoke(ctx, "/done")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Outcome != OutcomeComplete {
		t.Fatalf("outcome = %s", resp.Outcome)
	}
	if resp.Directive.Stage != types.StageComplete {
		t.Fatalf("stage = %s", resp.Directive.Stage)
	}
	if !strings.Contains(resp.Message, "recorded") {
		t.Fatalf("completion message = %q", resp.Message)
	}
}

func TestFlowMalformedExtractionLeavesStateUntouched(t *testing.T) {
	t.Parallel()
	store := NewMemoryStateReadWriter()
	flow, err := NewFlow(&scriptExtractor{steps: []*extract.Extraction{
		{City: "Toronto", Confidence: 0.8},
		nil, // malformed model output
		{ContactName: "Qian Sun", Confidence: 0.9},
	}}, nil, nil, store)
	if err != nil {
		t.Fatal(err)
	}
	ctx := WithSessionID(context.Background(), "flow-3")

	if _, err := flow.Invoke(ctx, "I'm in Toronto"); err != nil {
		t.Fatal(err)
	}
	before, err := store.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	turnsBefore := len(before.Conversation.Turns)

	if _, err := flow.Invoke(ctx, "%%%garbage%%%"); !errors.Is(err, extract.ErrMalformed) {
		t.Fatalf("error = %v, want ErrMalformed", err)
	}
	after, err := store.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(after.Conversation.Turns) != turnsBefore || after.Record.Get("city").Value != "Toronto" {
		t.Fatal("failed turn must not advance stored state")
	}

	// The session recovers on the next good turn.
	resp, err := flow.Invoke(ctx, "Qian Sun")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Record.Get("contact_name").Value != "Qian Sun" {
		t.Fatal("retry after malformed turn did not merge")
	}
}

func TestFlowSkipUsesNoExtractorStep(t *testing.T) {
	t.Parallel()
	ext := &scriptExtractor{steps: []*extract.Extraction{
		{
			ServiceType:    "cleaning",
			ProblemSummary: "dusty vents",
			City:           "Toronto",
			ContactName:    "Qian Sun",
			ContactPhone:   "416-555-1043",
			Address:        "100 Queen St W",
			PropertyType:   "apartment",
			ContactEmail:   "qian.sun@example.com",
			Severity:       "medium",
			Confidence:     0.9,
		},
	}}
	flow, err := NewFlow(ext, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := WithSessionID(context.Background(), "flow-4")

	resp, err := flow.Invoke(ctx, "duct cleaning, here is everything")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Directive.TargetField != "equipment_brand" {
		t.Fatalf("target = %q", resp.Directive.TargetField)
	}

	// "skip" is handled by the literal token parser; no extractor call
	// should be burned on it.
	if resp, err = flow.Invoke(ctx, "skip"); err != nil {
		t.Fatal(err)
	}
	if resp.Directive.TargetField != "access_notes" {
		t.Fatalf("target after skip = %q", resp.Directive.TargetField)
	}
	if ext.i != 1 {
		t.Fatalf("extractor consumed %d steps, want 1", ext.i)
	}
}
