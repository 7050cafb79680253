package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// DefaultRendererSystemPromptTemplate is the default system prompt used by
// ToolBasedRenderer. The template may contain a single "%s" placeholder
// for the language.
const DefaultRendererSystemPromptTemplate = `You are the voice of an HVAC service booking assistant. You receive a symbolic directive naming exactly one field to ask about (or a confirmation/completion signal) and must phrase it as one short, friendly message.

Rules:
- Ask about the target field and nothing else; never ask two questions.
- Acknowledge information the user already provided when it helps the flow.
- For strategy E (optional fields), make clear the user may answer "skip".
- For strategy F (confirmation), summarize the record briefly and ask the user to confirm.
- If the directive reports an invalid value, quote it back gently and ask again.
- Reply in %s.
`

type rendererOptions struct {
	lang                 string
	systemPrompt         string
	systemPromptTemplate string
}

type RendererOption func(*rendererOptions)

// WithRendererLang sets the language used by the default system prompt
// template.
func WithRendererLang(lang string) RendererOption {
	return func(o *rendererOptions) {
		o.lang = lang
	}
}

// WithRendererSystemPrompt overrides the system prompt entirely.
func WithRendererSystemPrompt(systemPrompt string) RendererOption {
	return func(o *rendererOptions) {
		o.systemPrompt = systemPrompt
	}
}

// ToolBasedRenderer phrases directives through a chat model.
type ToolBasedRenderer struct {
	lang                 string
	systemPrompt         string
	systemPromptTemplate string
	chatModel            model.ToolCallingChatModel
}

func NewToolBasedRenderer(chatModel model.ToolCallingChatModel, opts ...RendererOption) *ToolBasedRenderer {
	options := rendererOptions{
		lang:                 "English",
		systemPromptTemplate: DefaultRendererSystemPromptTemplate,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return &ToolBasedRenderer{
		lang:                 options.lang,
		systemPrompt:         options.systemPrompt,
		systemPromptTemplate: options.systemPromptTemplate,
		chatModel:            chatModel,
	}
}

func (r *ToolBasedRenderer) Render(ctx context.Context, req *Request) (string, error) {
	systemPrompt := r.systemPrompt
	if systemPrompt == "" {
		tpl := r.systemPromptTemplate
		if tpl == "" {
			tpl = DefaultRendererSystemPromptTemplate
		}
		if strings.Contains(tpl, "%s") {
			systemPrompt = fmt.Sprintf(tpl, r.lang)
		} else {
			systemPrompt = tpl
		}
	}

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(formatRenderRequest(req)),
	}
	response, err := r.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	return response.Content, nil
}
