package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"llm-relay/api/internal/apperr"
	"llm-relay/api/internal/content"
)

const DefaultModel = "gemini-1.5-flash"

type Engine struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Engine {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  model,
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// Generate returns the text of the first candidate. Every failure is an apperr of kind Model.
func (e *Engine) Generate(ctx context.Context, prompt string, items []content.Content) (string, error) {
	if e.APIKey == "" {
		return "", apperr.New(apperr.Model, "API_KEY is empty")
	}
	parts, err := Parts(prompt, items)
	if err != nil {
		return "", apperr.Wrap(apperr.Model, "gemini: build parts", err)
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", apperr.Wrap(apperr.Model, "gemini: client", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return "", apperr.New(apperr.Model, "gemini: model is nil")
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", apperr.Wrap(apperr.Model, "gemini", err)
	}
	txt := firstText(resp)
	if txt == "" {
		if reason := blockReason(resp); reason != "" {
			return "", apperr.New(apperr.Model, "gemini: prompt blocked: "+reason)
		}
		return "", apperr.New(apperr.Model, "gemini: empty response")
	}
	return txt, nil
}

// Parts lays out the prompt first, then one part per content item in order.
func Parts(prompt string, items []content.Content) ([]genai.Part, error) {
	parts := make([]genai.Part, 0, len(items)+1)
	parts = append(parts, genai.Text(prompt))
	for i, it := range items {
		switch v := it.(type) {
		case content.Image:
			mime, data, err := v.Blob()
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			parts = append(parts, &genai.Blob{MIMEType: mime, Data: data})
		case content.Text:
			parts = append(parts, genai.Text(v.Body))
		default:
			return nil, fmt.Errorf("item %d: unsupported content %T", i, it)
		}
	}
	return parts, nil
}

// firstText joins the text parts of the first candidate that has any.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	return ""
}

func blockReason(resp *genai.GenerateContentResponse) string {
	if resp == nil || resp.PromptFeedback == nil {
		return ""
	}
	if resp.PromptFeedback.BlockReason == genai.BlockReasonUnspecified {
		return ""
	}
	return resp.PromptFeedback.BlockReason.String()
}
