package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/eino-contrib/jsonschema"

	"github.com/hvacdesk/bookingagent/structured"
	"github.com/hvacdesk/bookingagent/types"
)

const (
	extractToolName        = "extract_booking_fields"
	extractToolDescription = "Extract HVAC booking fields explicitly present in the user's reply, with an overall confidence score. Never invent values."
)

// ToolBasedExtractor turns raw user text into an Extraction via a forced
// tool call.
type ToolBasedExtractor struct {
	chain       *structured.Chain[*Request, Extraction]
	fieldSchema string
}

func NewToolBasedExtractor(chatModel model.ToolCallingChatModel) (*ToolBasedExtractor, error) {
	reflected := jsonschema.Reflect(&Extraction{})
	reflected.Title = "HVAC booking candidate fields"
	schemaBytes, err := sonic.Marshal(reflected)
	if err != nil {
		return nil, fmt.Errorf("marshal extraction schema: %w", err)
	}
	e := &ToolBasedExtractor{fieldSchema: string(schemaBytes)}
	chain, err := structured.NewChain[*Request, Extraction](
		chatModel,
		e.buildExtractPrompt,
		extractToolName,
		extractToolDescription,
	)
	if err != nil {
		return nil, err
	}
	e.chain = chain
	return e, nil
}

func (e *ToolBasedExtractor) Extract(ctx context.Context, req *Request) (*Extraction, error) {
	result, err := e.chain.Invoke(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("%w: empty tool result", ErrMalformed)
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence %v out of range", ErrMalformed, result.Confidence)
	}
	return result, nil
}

func (e *ToolBasedExtractor) buildExtractPrompt(ctx context.Context, req *Request) ([]*schema.Message, error) {
	systemPrompt := fmt.Sprintf("You are the extraction step of an HVAC booking assistant. Read the user's reply and call %s with every booking field the reply explicitly states. Rules: only extract what the user actually said; leave unknown fields empty; use the enum values from the schema; set confidence to how certain you are overall.", extractToolName)

	sections := []string{
		fmt.Sprintf("# Candidate fields schema:\n```json\n%s\n```", e.fieldSchema),
	}
	if table := types.FormatRecordTable(req.Rows); table != "" {
		sections = append(sections, "# Current record:\n"+table)
	}
	if missing := types.FormatMissingFields(req.Missing); missing != "" {
		sections = append(sections, missing)
	}
	if req.LastQuestion != "" {
		sections = append(sections, "# Question the user is answering:\n"+req.LastQuestion)
	}
	sections = append(sections, "# User reply:\n"+req.RawText)

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(strings.Join(sections, "\n\n")),
	}, nil
}

// FailbackExtractor tries extractors in order and returns the first
// success.
type FailbackExtractor struct {
	extractors []Extractor
}

func NewFailbackExtractor(extractors ...Extractor) *FailbackExtractor {
	return &FailbackExtractor{extractors: extractors}
}

func (f *FailbackExtractor) Extract(ctx context.Context, req *Request) (*Extraction, error) {
	var lastErr error
	for _, extractor := range f.extractors {
		ext, err := extractor.Extract(ctx, req)
		if err == nil {
			return ext, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all extractors failed: %w", lastErr)
}
