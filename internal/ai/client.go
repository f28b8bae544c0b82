// Package ai wraps the OpenAI chat-completions API for customer replies and
// FAQ extraction/merging.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/flowmindhq/flowmind/internal/domain"
)

// FallbackReply is used when the completion API returns empty content.
const FallbackReply = "Thanks! How can I help you today?"

// Client calls the completion API on behalf of the webhook handler and the
// learning job.
type Client struct {
	api    *openai.Client
	model  string
	logger *slog.Logger
}

// NewClient creates a completion client. baseURL overrides the API endpoint
// when non-empty (OpenAI-compatible providers).
func NewClient(apiKey, model, baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger.With("component", "ai"),
	}
}

// Reply produces a contextual support answer grounded in the knowledge
// document. Empty completion content yields FallbackReply.
func (c *Client) Reply(ctx context.Context, doc *domain.Knowledge, userText string) (string, error) {
	notes := doc.Notes
	if notes == "" {
		notes = "None"
	}
	dump, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal knowledge: %w", err)
	}

	system := fmt.Sprintf(`You are FlowMind AI for %s.
Tone: %s.
Important Notes: %s
Knowledge: %s
Be warm, human-like, and concise. Ask one clear follow-up at a time when needed.`,
		doc.Company.Name, doc.Company.Tone, notes, dump)

	content, err := c.complete(ctx, system, userText)
	if err != nil {
		return "", err
	}
	if content == "" {
		return FallbackReply, nil
	}
	return content, nil
}

// ExtractFAQ asks the model to propose new FAQ entries for one conversation
// transcript. The raw model output is returned untouched; the merge step
// consumes it as free text.
func (c *Client) ExtractFAQ(ctx context.Context, conversation string) (string, error) {
	prompt := fmt.Sprintf(`Analyze this business conversation log.
Identify new or recurring customer questions, needs, or key insights.
Suggest new FAQs in JSON format:
[{"question": "...", "answer": "..."}]
Only include NEW or UNIQUE topics not already known.
Conversation:
%s`, conversation)

	return c.complete(ctx, "You are a business AI summarizer.", prompt)
}

// MergeFAQ asks the model to merge candidate FAQ text into the existing
// list, deduplicating by similar questions, returning a JSON array only.
func (c *Client) MergeFAQ(ctx context.Context, currentFAQ []domain.FAQEntry, candidates string) (string, error) {
	current, err := json.Marshal(currentFAQ)
	if err != nil {
		return "", fmt.Errorf("marshal current faq: %w", err)
	}

	prompt := fmt.Sprintf(`Merge these new FAQs into the existing list.
Avoid duplicates by matching similar questions.
Return valid JSON array only.
Current FAQs: %s
New data: %s`, current, candidates)

	return c.complete(ctx, "You are a JSON merging engine.", prompt)
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// StripFences removes markdown code-fence artifacts models wrap around JSON
// output (```json ... ```).
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
