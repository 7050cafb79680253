package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/model"

	"github.com/hvacdesk/bookingagent/command"
	"github.com/hvacdesk/bookingagent/dialogue"
	"github.com/hvacdesk/bookingagent/extract"
	"github.com/hvacdesk/bookingagent/record"
	"github.com/hvacdesk/bookingagent/schema"
	"github.com/hvacdesk/bookingagent/types"
)

// Flow drives one session turn end to end: token parse → extraction →
// core turn → rendering → persistence. The session id is routed through
// the context (WithSessionID).
type Flow struct {
	extractor extract.Extractor
	parser    command.Parser
	renderer  dialogue.Renderer
	store     StateReadWriter
	maxTurns  int
}

type FlowOption func(*Flow)

func WithFlowMaxTurns(n int) FlowOption {
	return func(f *Flow) {
		if n > 0 {
			f.maxTurns = n
		}
	}
}

func NewFlow(
	extractor extract.Extractor,
	parser command.Parser,
	renderer dialogue.Renderer,
	store StateReadWriter,
	opts ...FlowOption,
) (*Flow, error) {
	if extractor == nil {
		return nil, fmt.Errorf("flow requires an extractor")
	}
	if parser == nil {
		parser = command.NewLocalParser()
	}
	if renderer == nil {
		renderer = &dialogue.LocalRenderer{}
	}
	if store == nil {
		store = NewMemoryStateReadWriter()
	}
	return &Flow{
		extractor: extractor,
		parser:    parser,
		renderer:  renderer,
		store:     store,
		maxTurns:  DefaultMaxTurns,
	}, nil
}

// NewToolBasedFlow wires the default LLM collaborators around the core:
// tool-call extraction, literal tokens first with an LLM fallback for
// free-form skip/stop phrasing, and an LLM renderer with a template
// fallback.
func NewToolBasedFlow(chatModel model.ToolCallingChatModel, store StateReadWriter, opts ...FlowOption) (*Flow, error) {
	extractor, err := extract.NewToolBasedExtractor(chatModel)
	if err != nil {
		return nil, fmt.Errorf("create tool-based extractor: %w", err)
	}
	toolParser, err := command.NewToolBasedParser(chatModel)
	if err != nil {
		return nil, fmt.Errorf("create tool-based command parser: %w", err)
	}
	parser := command.NewFailbackParser(command.NewLocalParser(), toolParser)
	renderer := dialogue.NewFailbackRenderer(
		dialogue.NewToolBasedRenderer(chatModel),
		&dialogue.LocalRenderer{},
	)
	return NewFlow(extractor, parser, renderer, store, opts...)
}

// Invoke processes one user message for the session in ctx. A failed turn
// leaves the stored state untouched, so the caller can retry.
func (f *Flow) Invoke(ctx context.Context, userText string) (*Response, error) {
	state, err := f.store.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	sess := Restore(state, WithParser(f.parser), WithMaxTurns(f.maxTurns))
	lastAsked := sess.LastAsked()

	cmd, err := f.parser.Parse(ctx, &command.Request{
		RawText:   userText,
		LastAsked: lastAsked,
		Stage:     sess.Conv.Stage,
	})
	if err != nil {
		slog.Debug("command parse failed, treating as none", "error", err)
		cmd = command.None
	}
	slog.Debug("parsed command", "command", cmd, "session", sess.ID)

	ext := &extract.Extraction{}
	if cmd == command.None {
		ext, err = f.extractor.Extract(ctx, &extract.Request{
			RawText:      userText,
			LastQuestion: lastAsked.Description,
			Rows:         sess.Record.Rows(),
			Missing:      f.missingInfo(sess.Record, sess.Conv.Skipped),
		})
		if err != nil {
			// Bad extractor output never advances the conversation.
			return nil, fmt.Errorf("extract turn fields: %w", err)
		}
		slog.Debug("extracted fields", "candidates", ext.Candidates(), "confidence", ext.Confidence)
	}

	result, err := sess.Apply(ctx, ext, cmd)
	if err != nil {
		return nil, err
	}
	slog.Debug("applied turn", "stage", result.Directive.Stage, "strategy", result.Directive.Strategy, "target", result.Directive.TargetField, "outcome", result.Outcome)

	message, err := f.renderer.Render(ctx, f.renderRequest(sess, result))
	if err != nil {
		return nil, fmt.Errorf("render message: %w", err)
	}

	if result.Outcome == OutcomeContinue {
		if err := f.store.Write(ctx, sess.State()); err != nil {
			return nil, fmt.Errorf("write session: %w", err)
		}
	} else {
		// Terminal outcome: the session's state is destroyed, the
		// record lives on only in the response.
		if err := f.store.Remove(ctx); err != nil {
			slog.Debug("remove session state failed", "error", err)
		}
	}

	return &Response{
		Message:   message,
		Directive: result.Directive,
		Outcome:   result.Outcome,
		Record:    result.Record,
		Completed: result.Outcome != OutcomeContinue,
	}, nil
}

func (f *Flow) renderRequest(sess *Session, result *TurnResult) *dialogue.Request {
	req := &dialogue.Request{
		Directive: result.Directive,
		Rows:      result.Record.Rows(),
	}
	if target := result.Directive.TargetField; target != "" {
		if fv := result.Record.Get(target); fv.Status == types.StatusNeedsCorrection {
			req.InvalidValue = fv.Value
			req.AttemptsLeft = record.MaxCorrectionAttempts - sess.Conv.Attempts[target]
		}
	}
	return req
}

func (f *Flow) missingInfo(rec *record.Record, skipped map[string]bool) []types.FieldInfo {
	var missing []types.FieldInfo
	for _, row := range rec.Rows() {
		if row.Status != types.StatusUnset || skipped[row.Field] {
			continue
		}
		if field, ok := schema.Lookup(row.Field); ok {
			missing = append(missing, field.Info())
		}
	}
	return missing
}
