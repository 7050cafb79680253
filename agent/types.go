// Package agent owns the per-session booking state machine: one record
// and one conversation log per session id, advanced strictly one turn at
// a time. The Flow type wires the external collaborators (extractor,
// command parser, renderer, state store) around the core Session.
package agent

import (
	"time"

	"github.com/google/uuid"
	"github.com/hvacdesk/bookingagent/record"
	"github.com/hvacdesk/bookingagent/types"
)

// Outcome is the session-level result of a turn.
type Outcome string

const (
	// OutcomeContinue means the conversation goes on; the directive
	// names the next question.
	OutcomeContinue Outcome = "continue"
	// OutcomeComplete means the user terminated after the completion
	// threshold was met.
	OutcomeComplete Outcome = "complete"
	// OutcomeIncomplete means the user terminated (or the turn cap was
	// hit) before the threshold; the partial record is still returned.
	OutcomeIncomplete Outcome = "incomplete"
)

// TurnLogEntry is one line of the ordered conversation log.
type TurnLogEntry struct {
	Index    int            `json:"index"`
	Field    string         `json:"field,omitempty"`
	Strategy types.Strategy `json:"strategy,omitempty"`
	// SkipAnswer marks that this turn's user input was a skip token.
	SkipAnswer bool `json:"skip_answer,omitempty"`
}

// Conversation is the per-session bookkeeping next to the record. Stage
// is recomputed from the record each turn; it is stored only so restarts
// and observers see the same value the last turn produced.
type Conversation struct {
	Turns    []TurnLogEntry  `json:"turns"`
	Skipped  map[string]bool `json:"skipped_fields"`
	Attempts map[string]int  `json:"correction_attempts"`
	Stage    types.Stage     `json:"stage"`
	Ended    bool            `json:"ended,omitempty"`
}

func NewConversation() *Conversation {
	return &Conversation{
		Skipped:  map[string]bool{},
		Attempts: map[string]int{},
		Stage:    types.StageGreeting,
	}
}

// TurnResult is what one core turn produces: the symbolic directive for
// the renderer plus a snapshot of the record.
type TurnResult struct {
	Directive types.Directive `json:"directive"`
	Outcome   Outcome         `json:"outcome"`
	Record    *record.Record  `json:"record"`
}

// Response is the flow-level result: the rendered message on top of the
// core turn result.
type Response struct {
	Message   string          `json:"message"`
	Directive types.Directive `json:"directive"`
	Outcome   Outcome         `json:"outcome"`
	Record    *record.Record  `json:"record"`
	Completed bool            `json:"completed"`
}

// State is the persisted form of one session.
type State struct {
	SessionID    string         `json:"session_id"`
	Record       *record.Record `json:"record"`
	Conversation *Conversation  `json:"conversation"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}
