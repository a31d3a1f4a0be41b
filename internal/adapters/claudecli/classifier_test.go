package claudecli

import (
	"errors"
	"strings"
	"testing"

	"docindex/internal/application"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name           string
		result         string
		wantCategory   string
		wantConfidence float64
		wantErr        bool
	}{
		{
			name:           "bare JSON object",
			result:         `{"category": "business-strategy", "confidence": 0.85}`,
			wantCategory:   "business-strategy",
			wantConfidence: 0.85,
		},
		{
			name:           "JSON in markdown code block",
			result:         "```json\n{\"category\": \"architecture\", \"confidence\": 0.7}\n```",
			wantCategory:   "architecture",
			wantConfidence: 0.7,
		},
		{
			name:           "JSON in code block without language",
			result:         "```\n{\"category\": \"testing\", \"confidence\": 0.9}\n```",
			wantCategory:   "testing",
			wantConfidence: 0.9,
		},
		{
			name:           "JSON with surrounding prose",
			result:         "Based on the content:\n{\"category\": \"operations\", \"confidence\": 0.65}\nHope that helps.",
			wantCategory:   "operations",
			wantConfidence: 0.65,
		},
		{
			name:    "no JSON object",
			result:  "I cannot classify this document.",
			wantErr: true,
		},
		{
			name:    "malformed JSON",
			result:  `{"category": "requirements", "confidence":}`,
			wantErr: true,
		},
		{
			name:    "empty category",
			result:  `{"category": "", "confidence": 0.9}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAnswer(tt.result)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, application.ErrClassifierUnavailable) {
					t.Errorf("error not wrapped as unavailable: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAnswer failed: %v", err)
			}
			if got.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", got.Category, tt.wantCategory)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("confidence = %.2f, want %.2f", got.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestBuildPrompt_IncludesContent(t *testing.T) {
	prompt := buildPrompt("# Rollout Plan\n\nPhased rollout by region.")
	if !strings.Contains(prompt, "Rollout Plan") {
		t.Error("prompt missing document content")
	}
	if !strings.Contains(prompt, `"category"`) {
		t.Error("prompt missing answer format")
	}
}
