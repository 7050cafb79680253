package command

import (
	"context"
	"strings"
)

// DoneToken is the literal termination marker; it counts when it is the
// whole reply or a trailing token.
const DoneToken = "/done"

type LocalParser struct {
	SkipKeywords []string
}

func NewLocalParser() *LocalParser {
	return &LocalParser{
		SkipKeywords: []string{"skip", "跳过", "pass", "n/a"},
	}
}

func (p *LocalParser) Parse(ctx context.Context, req *Request) (Command, error) {
	normalized := strings.ToLower(strings.TrimSpace(req.RawText))
	if normalized == DoneToken || strings.HasSuffix(normalized, " "+DoneToken) {
		return Done, nil
	}
	if normalized == "" {
		// An empty reply to a question is a decline.
		return Skip, nil
	}
	for _, keyword := range p.SkipKeywords {
		if normalized == keyword {
			return Skip, nil
		}
	}
	return None, nil
}

// FailbackParser tries parsers in order and returns the first success.
type FailbackParser struct {
	parsers []Parser
}

func NewFailbackParser(parsers ...Parser) *FailbackParser {
	return &FailbackParser{parsers: parsers}
}

func (p *FailbackParser) Parse(ctx context.Context, req *Request) (Command, error) {
	var lastErr error
	for _, parser := range p.parsers {
		cmd, err := parser.Parse(ctx, req)
		if err == nil {
			return cmd, nil
		}
		lastErr = err
	}
	return None, lastErr
}
