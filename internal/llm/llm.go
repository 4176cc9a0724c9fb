package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joescharf/crowdfund/internal/draft"
	"github.com/joescharf/crowdfund/internal/models"
)

// Suggestions holds milestone ideas proposed for a draft.
type Suggestions struct {
	FundingMilestones []string `json:"funding_milestones"`
	ReleaseMilestones []string `json:"release_milestones"`
}

// Client wraps the Anthropic API for milestone suggestions.
type Client struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewClient creates an LLM client with the given API key and model.
func NewClient(apiKey, model string) *Client {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &Client{
		api:   &client,
		model: anthropic.Model(model),
	}
}

// buildSuggestPrompt constructs the system and user prompts for milestone suggestions.
func buildSuggestPrompt(d models.Draft) (system string, user string) {
	system = `You help creators plan crowdfunding campaigns. Given a project's name, description, funding goal and any milestones already written, return a JSON object with exactly two fields:

- "funding_milestones": 3-5 short funding milestones, each naming an amount or share of the goal and what it unlocks (e.g. "25% ($5,000): finish prototype")
- "release_milestones": 3-5 short release milestones in delivery order (e.g. "Beta to first 100 backers")

Rules:
- Each entry is one line of plain text, at most 80 characters
- Do not repeat milestones the project already has
- Amounts must not exceed the funding goal when one is given
- Return valid JSON only, no markdown fencing or explanation`

	var sb strings.Builder
	sb.WriteString("Project name: ")
	sb.WriteString(d.ProjectName)
	sb.WriteString("\n")
	if d.FundingGoal != "" {
		sb.WriteString("Funding goal (USD): ")
		sb.WriteString(d.FundingGoal)
		sb.WriteString("\n")
	}
	if d.Description != "" {
		sb.WriteString("\nDescription:\n")
		sb.WriteString(d.Description)
		sb.WriteString("\n")
	}
	writeExisting(&sb, "Existing funding milestones", d.FundingMilestones)
	writeExisting(&sb, "Existing release milestones", d.ReleaseMilestones)
	user = sb.String()
	return
}

func writeExisting(sb *strings.Builder, title string, items []string) {
	var filled []string
	for _, it := range items {
		if strings.TrimSpace(it) != "" {
			filled = append(filled, it)
		}
	}
	if len(filled) == 0 {
		return
	}
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString(":\n")
	for _, it := range filled {
		sb.WriteString("- ")
		sb.WriteString(it)
		sb.WriteString("\n")
	}
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string { return string(c.model) }

// SuggestMilestones asks the LLM for funding and release milestones for d.
func (c *Client) SuggestMilestones(ctx context.Context, d models.Draft) (*Suggestions, error) {
	systemPrompt, userPrompt := buildSuggestPrompt(d)

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
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

	return parseSuggestions(text)
}

// parseSuggestions decodes a model reply, tolerating markdown fencing.
func parseSuggestions(text string) (*Suggestions, error) {
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

	var s Suggestions
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return nil, fmt.Errorf("parse LLM response as JSON: %w\nraw response: %s", err, text)
	}
	return &s, nil
}

// Apply merges suggestions into d through the draft mutators: blank slots
// are filled first, then new entries are appended.
func Apply(d models.Draft, s *Suggestions) (models.Draft, error) {
	var err error
	if d, err = fill(d, models.FieldFundingMilestones, s.FundingMilestones); err != nil {
		return d, err
	}
	return fill(d, models.FieldReleaseMilestones, s.ReleaseMilestones)
}

func fill(d models.Draft, field models.ListField, values []string) (models.Draft, error) {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		items, err := draft.List(d, field)
		if err != nil {
			return d, err
		}
		slot := -1
		for i, it := range items {
			if strings.TrimSpace(it) == "" {
				slot = i
				break
			}
		}
		if slot < 0 {
			if d, err = draft.AppendListItem(d, field); err != nil {
				return d, err
			}
			slot = len(items)
		}
		if d, err = draft.SetListItem(d, field, slot, v); err != nil {
			return d, err
		}
	}
	return d, nil
}
