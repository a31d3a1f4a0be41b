// Package claudecli implements the external document classifier behind
// routing tier 3 using the Claude Code CLI.
package claudecli

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"docindex/internal/application"
	"docindex/internal/ports"
)

// maxContentChars bounds the document excerpt sent to the CLI. The
// beginning of a document carries the title, frontmatter, and first
// sections, which is what classification needs.
const maxContentChars = 4000

// Classifier implements ports.Classifier using the claude CLI
type Classifier struct {
	model string
}

var _ ports.Classifier = (*Classifier)(nil)

// Option configures the Classifier
type Option func(*Classifier)

// WithModel sets the Claude model to use
func WithModel(model string) Option {
	return func(c *Classifier) {
		c.model = model
	}
}

// NewClassifier creates a new Claude CLI classifier
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		model: "haiku", // Default to haiku for speed
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// claudeResponse represents the JSON output from claude CLI
type claudeResponse struct {
	Type      string `json:"type"`
	IsError   bool   `json:"is_error"`
	Result    string `json:"result"`
	SessionID string `json:"session_id"`
}

// answerJSON is the expected JSON format inside Claude's response text
type answerJSON struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Classify suggests a category for the document content. All failures
// are wrapped in ErrClassifierUnavailable so the router can treat them
// uniformly as "no confident match".
func (c *Classifier) Classify(ctx context.Context, content string) (ports.Classification, error) {
	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}

	args := []string{
		"-p", buildPrompt(content),
		"--output-format", "json",
		"--model", c.model,
	}

	cmd := exec.CommandContext(ctx, "claude", args...)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return ports.Classification{}, fmt.Errorf("%w: claude CLI: %s",
				application.ErrClassifierUnavailable, string(exitErr.Stderr))
		}
		return ports.Classification{}, fmt.Errorf("%w: claude CLI: %v",
			application.ErrClassifierUnavailable, err)
	}

	var response claudeResponse
	if err := json.Unmarshal(output, &response); err != nil {
		return ports.Classification{}, fmt.Errorf("%w: unparseable CLI response: %v",
			application.ErrClassifierUnavailable, err)
	}
	if response.IsError {
		return ports.Classification{}, fmt.Errorf("%w: %s",
			application.ErrClassifierUnavailable, response.Result)
	}

	return parseAnswer(response.Result)
}

// IsAvailable returns true if the claude CLI is on PATH.
func (c *Classifier) IsAvailable() bool {
	_, err := exec.LookPath("claude")
	return err == nil
}

func buildPrompt(content string) string {
	return fmt.Sprintf(`You are classifying a project document into a category folder.

Common categories: requirements, architecture, design, business-strategy, testing, operations.
You may propose a different short kebab-case category when none of these fit.

Document content:
%s

Return ONLY a JSON object (no markdown, no code blocks):
{"category": "kebab-case-category", "confidence": 0.0-1.0}`, content)
}

var codeBlockRe = regexp.MustCompile("```(?:json)?\\s*\\n?([\\s\\S]*?)\\n?```")

// parseAnswer extracts the classification JSON from Claude's response
// text, tolerating markdown fences and surrounding prose.
func parseAnswer(result string) (ports.Classification, error) {
	result = strings.TrimSpace(result)

	if matches := codeBlockRe.FindStringSubmatch(result); len(matches) > 1 {
		result = strings.TrimSpace(matches[1])
	}

	start := strings.Index(result, "{")
	end := strings.LastIndex(result, "}")
	if start == -1 || end <= start {
		return ports.Classification{}, fmt.Errorf("%w: no JSON object in response",
			application.ErrClassifierUnavailable)
	}

	var answer answerJSON
	if err := json.Unmarshal([]byte(result[start:end+1]), &answer); err != nil {
		return ports.Classification{}, fmt.Errorf("%w: unparseable answer: %v",
			application.ErrClassifierUnavailable, err)
	}
	if answer.Category == "" {
		return ports.Classification{}, fmt.Errorf("%w: empty category in answer",
			application.ErrClassifierUnavailable)
	}
	return ports.Classification{
		Category:   answer.Category,
		Confidence: answer.Confidence,
	}, nil
}
