package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"llm-relay/api/internal/apperr"
	"llm-relay/api/internal/content"
	"llm-relay/api/internal/decode"
	"llm-relay/api/internal/testutil"
)

func TestNewDefaults(t *testing.T) {
	e := New("  key  ", "")
	if e.APIKey != "key" {
		t.Fatalf("api key = %q", e.APIKey)
	}
	if e.GetModel() != DefaultModel {
		t.Fatalf("model = %q, want %q", e.GetModel(), DefaultModel)
	}
	if e.Name() != "gemini" {
		t.Fatalf("name = %q", e.Name())
	}
}

func TestGenerateWithoutKey(t *testing.T) {
	_, err := New("", "").Generate(context.Background(), "hi", nil)
	if apperr.KindOf(err) != apperr.Model {
		t.Fatalf("expected model error, got %v", err)
	}
}

func TestParts(t *testing.T) {
	png, err := decode.Image(testutil.PNG(2, 2))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	gif, err := decode.Image(testutil.GIF(2, 2))
	if err != nil {
		t.Fatalf("decode gif: %v", err)
	}

	parts, err := Parts("describe", []content.Content{png, gif})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parts) != 3 {
		t.Fatalf("len = %d, want 3", len(parts))
	}
	if txt, ok := parts[0].(genai.Text); !ok || string(txt) != "describe" {
		t.Fatalf("first part = %#v, want prompt text", parts[0])
	}
	for i, want := range []string{"image/png", "image/png"} {
		b, ok := parts[i+1].(*genai.Blob)
		if !ok {
			t.Fatalf("part %d = %T, want *genai.Blob", i+1, parts[i+1])
		}
		if b.MIMEType != want {
			t.Fatalf("part %d mime = %q, want %q", i+1, b.MIMEType, want)
		}
	}

	parts, err = Parts("summarize", []content.Content{content.Text{Body: "doc body"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txt, ok := parts[1].(genai.Text); !ok || string(txt) != "doc body" {
		t.Fatalf("second part = %#v, want document text", parts[1])
	}
}

func TestFirstText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{name: "nil", resp: nil, want: ""},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, want: ""},
		{
			name: "joins parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []genai.Part{genai.Text("Hello, "), genai.Text("world")}}},
			}},
			want: "Hello, world",
		},
		{
			name: "skips empty candidate",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: nil},
				{Content: &genai.Content{Parts: []genai.Part{genai.Text("second")}}},
			}},
			want: "second",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := firstText(tc.resp); got != tc.want {
				t.Fatalf("firstText() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBlockReason(t *testing.T) {
	resp := &genai.GenerateContentResponse{PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety}}
	if blockReason(resp) == "" {
		t.Fatalf("expected a block reason")
	}
	if blockReason(&genai.GenerateContentResponse{}) != "" {
		t.Fatalf("expected no block reason")
	}
}
