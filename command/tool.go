package command

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/hvacdesk/bookingagent/structured"
)

const (
	parseCommandToolName        = "parse_booking_command"
	parseCommandToolDescription = "Classify the user's reply as skip, done, or none."
)

type parseCommandResult struct {
	Intent Command `json:"intent" jsonschema:"required,enum=skip,enum=done,enum=none,description=The user's control intent"`
}

// ToolBasedParser recognizes free-form phrasings of the control tokens
// ("I'd rather not say", "that's everything, book it") via a forced tool
// call. The literal tokens are handled by LocalParser without a model
// round trip; put this behind it in a FailbackParser.
type ToolBasedParser struct {
	chain *structured.Chain[*Request, parseCommandResult]
}

func NewToolBasedParser(chatModel model.ToolCallingChatModel) (*ToolBasedParser, error) {
	chain, err := structured.NewChain[*Request, parseCommandResult](
		chatModel,
		buildParseCommandPrompt,
		parseCommandToolName,
		parseCommandToolDescription,
	)
	if err != nil {
		return nil, err
	}
	return &ToolBasedParser{chain: chain}, nil
}

func (p *ToolBasedParser) Parse(ctx context.Context, req *Request) (Command, error) {
	result, err := p.chain.Invoke(ctx, req)
	if err != nil {
		return None, err
	}
	if result == nil || result.Intent == "" {
		return None, fmt.Errorf("empty intent returned by %s", parseCommandToolName)
	}
	return result.Intent, nil
}

func buildParseCommandPrompt(ctx context.Context, req *Request) ([]*schema.Message, error) {
	systemPrompt := fmt.Sprintf(`You are an assistant for an HVAC service booking robot.

Classify the user's latest reply, given the question they were asked. Always judge intent from the question/answer pair, never from isolated words.

- skip: the user declines to answer the current question ("rather not say", "doesn't matter", "no preference"). Do not treat an actual answer as skip.
- done: the user explicitly wants to stop providing information and finish now ("that's everything", "just book it", "stop asking"). Do not treat generic affirmations as done.
- none: anything else, including ordinary answers and chatter.

Call the '%s' tool with the result.`, parseCommandToolName)

	userPrompt := fmt.Sprintf("# Question asked (field %q, tier %s):\n%s\n\n# User reply:\n%s",
		req.LastAsked.Name, req.LastAsked.Tier, req.LastAsked.Description, req.RawText)

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userPrompt),
	}, nil
}
