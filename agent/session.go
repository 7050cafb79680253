package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/hvacdesk/bookingagent/command"
	"github.com/hvacdesk/bookingagent/extract"
	"github.com/hvacdesk/bookingagent/record"
	"github.com/hvacdesk/bookingagent/resolve"
	"github.com/hvacdesk/bookingagent/schema"
	"github.com/hvacdesk/bookingagent/strategy"
	"github.com/hvacdesk/bookingagent/types"
)

// ErrSessionEnded is returned when a turn arrives after the session
// already produced a terminal outcome.
var ErrSessionEnded = errors.New("session already ended")

// DefaultMaxTurns bounds a session; when reached, completion is evaluated
// as if the user sent the termination marker.
const DefaultMaxTurns = 30

// Session is the state machine for one conversation. It exclusively owns
// one record and one conversation log; callers serialize turns, so no
// synchronization happens here.
type Session struct {
	ID       string
	Record   *record.Record
	Conv     *Conversation
	MaxTurns int

	parser command.Parser
}

type SessionOption func(*Session)

// WithParser replaces the token parser used to detect skip and
// termination input. Defaults to the literal LocalParser.
func WithParser(parser command.Parser) SessionOption {
	return func(s *Session) {
		if parser != nil {
			s.parser = parser
		}
	}
}

func WithMaxTurns(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.MaxTurns = n
		}
	}
}

func NewSession(id string, opts ...SessionOption) *Session {
	s := &Session{
		ID:       id,
		Record:   record.New(),
		Conv:     NewConversation(),
		MaxTurns: DefaultMaxTurns,
		parser:   command.NewLocalParser(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore rebuilds a session from persisted state.
func Restore(state *State, opts ...SessionOption) *Session {
	s := NewSession(state.SessionID, opts...)
	if state.Record != nil {
		s.Record = state.Record
	}
	if state.Conversation != nil {
		s.Conv = state.Conversation
		if s.Conv.Skipped == nil {
			s.Conv.Skipped = map[string]bool{}
		}
		if s.Conv.Attempts == nil {
			s.Conv.Attempts = map[string]int{}
		}
	}
	return s
}

func (s *Session) State() *State {
	return &State{
		SessionID:    s.ID,
		Record:       s.Record,
		Conversation: s.Conv,
	}
}

// LastAsked returns the field asked on the immediately preceding turn,
// or the zero value when nothing was asked yet.
func (s *Session) LastAsked() types.FieldInfo {
	for i := len(s.Conv.Turns) - 1; i >= 0; i-- {
		if name := s.Conv.Turns[i].Field; name != "" {
			if f, ok := schema.Lookup(name); ok {
				return f.Info()
			}
			return types.FieldInfo{Name: name}
		}
	}
	return types.FieldInfo{}
}

// Prefill seeds the record from externally known values before the first
// turn, at the given confidence.
func (s *Session) Prefill(ops []record.PatchOp, confidence float64) error {
	if err := record.ApplyPrefill(s.Record, ops, confidence); err != nil {
		return err
	}
	record.Validate(s.Record, s.Conv.Attempts)
	return nil
}

// ApplyTurn parses control tokens from the raw text and applies one turn.
func (s *Session) ApplyTurn(ctx context.Context, ext *extract.Extraction, rawText string) (*TurnResult, error) {
	cmd, err := s.parser.Parse(ctx, &command.Request{
		RawText:   rawText,
		LastAsked: s.LastAsked(),
		Stage:     s.Conv.Stage,
	})
	if err != nil {
		// Token detection is advisory; a broken parser must not block
		// the turn.
		cmd = command.None
	}
	return s.Apply(ctx, ext, cmd)
}

// Apply runs one turn of the core pipeline: merge, validate, resolve,
// select, log. A nil extraction rejects the turn with state unchanged.
func (s *Session) Apply(ctx context.Context, ext *extract.Extraction, cmd command.Command) (*TurnResult, error) {
	if s.Conv.Ended {
		return nil, ErrSessionEnded
	}
	if ext == nil {
		return nil, fmt.Errorf("%w: nil extraction", extract.ErrMalformed)
	}

	lastAsked := s.LastAsked()

	skipAnswer := false
	if cmd == command.Skip {
		// A skip only sticks for low-tier questions; anywhere else the
		// question is simply asked again.
		if f, ok := schema.Lookup(lastAsked.Name); ok && f.Tier == types.TierLow {
			s.Conv.Skipped[f.Name] = true
			skipAnswer = true
		}
	}

	record.Merge(s.Record, ext.Candidates(), ext.Confidence)
	record.Validate(s.Record, s.Conv.Attempts)

	if cmd == command.Done {
		return s.finish(), nil
	}
	if s.MaxTurns > 0 && len(s.Conv.Turns) >= s.MaxTurns {
		return s.finish(), nil
	}

	directive := strategy.Select(strategy.Input{
		Record:            s.Record,
		Skipped:           s.Conv.Skipped,
		LastAsked:         lastAsked.Name,
		LastAnswerWasSkip: skipAnswer,
	})
	if directive.Stage != types.StageConfirmation && directive.Stage != types.StageComplete && !directive.HasTarget() {
		return nil, fmt.Errorf("no target field selected at stage %s", directive.Stage)
	}

	s.Conv.Stage = directive.Stage
	s.Conv.Turns = append(s.Conv.Turns, TurnLogEntry{
		Index:      len(s.Conv.Turns) + 1,
		Field:      directive.TargetField,
		Strategy:   directive.Strategy,
		SkipAnswer: skipAnswer,
	})

	return &TurnResult{
		Directive: directive,
		Outcome:   OutcomeContinue,
		Record:    s.Record.Clone(),
	}, nil
}

// finish evaluates completion immediately instead of asking the next
// question. The record is returned either way; the outcome tells the two
// endings apart.
func (s *Session) finish() *TurnResult {
	s.Conv.Ended = true
	s.Conv.Stage = types.StageComplete
	outcome := OutcomeIncomplete
	if resolve.ThresholdMet(s.Record) {
		outcome = OutcomeComplete
	}
	s.Conv.Turns = append(s.Conv.Turns, TurnLogEntry{
		Index: len(s.Conv.Turns) + 1,
	})
	return &TurnResult{
		Directive: types.Directive{Stage: types.StageComplete},
		Outcome:   outcome,
		Record:    s.Record.Clone(),
	}
}
