// Package dialogue renders the core's symbolic directive into a
// user-facing message. The core decides what to ask; renderers only
// decide how to say it.
package dialogue

import (
	"context"

	"github.com/hvacdesk/bookingagent/types"
)

// Request is one turn's rendering input.
type Request struct {
	Directive types.Directive
	Rows      []types.RecordRow
	// InvalidValue is the currently stored value when the target field
	// needs correction, so the renderer can quote it back.
	InvalidValue string
	// AttemptsLeft is the number of correction retries remaining for the
	// target field; zero means the next failure is accepted as-is.
	AttemptsLeft int
}

type Renderer interface {
	Render(ctx context.Context, req *Request) (string, error)
}
