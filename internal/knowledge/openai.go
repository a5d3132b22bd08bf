package knowledge

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v3"

	"deskvox/internal/assistant"
)

const systemPrompt = `
You are the encyclopedia of a desktop voice assistant.
Answer with a short, factual, encyclopedic summary of the topic the user names,
in the style of the first sentences of a Wikipedia article.

RULES:
1. Plain text only. No markdown, no lists.
2. Do not converse and do not ask questions.
3. If the topic is unknown to you, answer exactly: UNKNOWN
`

// OpenAI answers encyclopedia lookups with a chat model.
type OpenAI struct {
	client openai.Client
	model  openai.ChatModel
}

func NewOpenAI(client openai.Client, model string) *OpenAI {
	m := openai.ChatModel(model)
	if m == "" {
		m = openai.ChatModelGPT5Nano
	}
	return &OpenAI{client: client, model: m}
}

func (o *OpenAI) Summary(ctx context.Context, query string, sentences int) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(fmt.Sprintf("Topic: %s\nSentences: %d", query, sentences)),
		},
		Model: o.model,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errEmptySummary
	}
	if content == "UNKNOWN" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, query)
	}

	return FirstSentences(content, sentences), nil
}

var _ assistant.Encyclopedia = (*OpenAI)(nil)
