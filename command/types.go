// Package command recognizes the two control tokens a user can send
// alongside (or instead of) booking information: declining a skippable
// question and ending the session. Everything else is None and flows on
// to extraction.
package command

import (
	"context"

	"github.com/hvacdesk/bookingagent/types"
)

type Command string

const (
	// Skip declines the currently asked question. Only honored by the
	// session when the asked field is low tier.
	Skip Command = "skip"
	// Done asks to stop and evaluate completion immediately.
	Done Command = "done"
	None Command = "none"
)

// Request carries the raw user text plus the question context a parser
// may need to judge intent.
type Request struct {
	RawText   string
	LastAsked types.FieldInfo
	Stage     types.Stage
}

type Parser interface {
	Parse(ctx context.Context, req *Request) (Command, error)
}
