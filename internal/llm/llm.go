package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joescharf/hotelops/internal/models"
)

// Suggestion is an advisory triage of a free-text maintenance report.
type Suggestion struct {
	Category models.Category `json:"category"`
	Priority models.Priority `json:"priority"`
	Reason   string          `json:"reason"`
}

// Client wraps the Anthropic API for request triage.
type Client struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewClient creates an LLM client with the given API key and model.
// Extra request options are passed through to the SDK.
func NewClient(apiKey, model string, extra ...option.RequestOption) *Client {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	opts = append(opts, extra...)
	client := anthropic.NewClient(opts...)
	return &Client{
		api:   &client,
		model: anthropic.Model(model),
	}
}

// buildTriagePrompt constructs the system and user prompts for triage.
func buildTriagePrompt(roomNumber, description string) (system string, user string) {
	system = fmt.Sprintf(`You triage hotel maintenance reports. Given a report, return ONLY a JSON object with these fields:
- "category": one of %s
- "priority": one of %s
- "reason": one short sentence explaining the choice

Rules:
- Safety hazards (sparks, gas smell, flooding, no heat in winter) are "urgent"
- Anything that makes the room unusable for a guest is at least "high"
- Cosmetic issues are "low"
- Use "other" when no category fits
- Return valid JSON only, no markdown fencing or explanation`,
		quoteAll(models.CategoryNames()), quoteAll(models.PriorityNames()))

	var sb strings.Builder
	if roomNumber != "" {
		sb.WriteString("Room: ")
		sb.WriteString(roomNumber)
		sb.WriteString("\n")
	}
	sb.WriteString("Report: ")
	sb.WriteString(description)
	user = sb.String()
	return
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + v + `"`
	}
	return strings.Join(quoted, ", ")
}

// SuggestTriage asks the model for a category and priority for a report.
func (c *Client) SuggestTriage(ctx context.Context, roomNumber, description string) (*Suggestion, error) {
	systemPrompt, userPrompt := buildTriagePrompt(roomNumber, description)

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 512,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	if text == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return parseSuggestion(text)
}

// parseSuggestion decodes the model reply. Values outside the closed sets
// become "other" and "medium".
func parseSuggestion(text string) (*Suggestion, error) {
	text = stripFences(text)

	var raw struct {
		Category string `json:"category"`
		Priority string `json:"priority"`
		Reason   string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parse LLM response as JSON: %w\nraw response: %s", err, text)
	}

	s := &Suggestion{
		Category: models.ParseCategory(raw.Category),
		Priority: models.ParsePriority(raw.Priority),
		Reason:   strings.TrimSpace(raw.Reason),
	}
	if !s.Category.Valid() {
		s.Category = models.CategoryOther
	}
	if !s.Priority.Valid() {
		s.Priority = models.PriorityMedium
	}
	return s, nil
}

// stripFences removes a surrounding markdown code fence if present.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.SplitN(text, "\n", 2)
		if len(lines) > 1 {
			text = lines[1]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	return text
}
