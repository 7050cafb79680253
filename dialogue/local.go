package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/hvacdesk/bookingagent/command"
	"github.com/hvacdesk/bookingagent/types"
)

// LocalRenderer produces deterministic template messages without a model
// call. It is the fallback behind the tool-based renderer and the default
// in tests.
type LocalRenderer struct{}

func (r *LocalRenderer) Render(ctx context.Context, req *Request) (string, error) {
	d := req.Directive
	switch d.Stage {
	case types.StageConfirmation:
		var sb strings.Builder
		sb.WriteString("Here is everything I have for your booking:\n\n")
		sb.WriteString(types.FormatRecordTable(req.Rows))
		sb.WriteString(fmt.Sprintf("\nIf this looks right, reply %s to finish.", command.DoneToken))
		return sb.String(), nil
	case types.StageComplete:
		return "Your booking request is recorded. Our service team will contact you within 24 hours to confirm the arrangement.", nil
	}

	if !d.HasTarget() {
		return "Please tell me more about the service you need.", nil
	}

	question := d.Target.Description
	if question == "" {
		question = d.Target.DisplayName
	}

	switch d.Strategy {
	case types.StrategyA:
		return fmt.Sprintf("Welcome to the HVAC booking service. To get started: what is the %s (%s)?", d.Target.DisplayName, question), nil
	case types.StrategyE:
		return fmt.Sprintf("Optional: %s (%s)? Reply \"skip\" if you'd rather not say.", d.Target.DisplayName, question), nil
	default:
		if req.InvalidValue != "" {
			return fmt.Sprintf("The %s you gave (%q) doesn't look valid. Could you provide it again? (%s)", d.Target.DisplayName, req.InvalidValue, question), nil
		}
		return fmt.Sprintf("What is the %s? (%s)", d.Target.DisplayName, question), nil
	}
}

// FailbackRenderer tries renderers in order and returns the first success.
type FailbackRenderer struct {
	renderers []Renderer
}

func NewFailbackRenderer(renderers ...Renderer) *FailbackRenderer {
	return &FailbackRenderer{renderers: renderers}
}

func (r *FailbackRenderer) Render(ctx context.Context, req *Request) (string, error) {
	var lastErr error
	for _, renderer := range r.renderers {
		message, err := renderer.Render(ctx, req)
		if err == nil {
			return message, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("all renderers failed: %w", lastErr)
}
