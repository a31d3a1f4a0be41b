// Package tokenizer provides the token counters used for registry
// accounting. One counter instance is shared across a registry run so
// savings percentages stay comparable between entries.
package tokenizer

import (
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"docindex/internal/ports"
)

// HeuristicName selects the chars/4 estimator instead of tiktoken.
const HeuristicName = "heuristic"

// DefaultEncoding is the tiktoken encoding used unless configured
// otherwise (used by GPT-4 and a good approximation for Claude).
const DefaultEncoding = "cl100k_base"

// Tiktoken counts tokens with a real BPE encoding
type Tiktoken struct {
	name string
	enc  *tiktoken.Tiktoken
}

var _ ports.Tokenizer = (*Tiktoken)(nil)

// NewTiktoken creates a counter for the named encoding.
func NewTiktoken(encoding string) (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: get encoding %s: %w", encoding, err)
	}
	return &Tiktoken{name: encoding, enc: enc}, nil
}

// Count returns the number of tokens in text.
func (t *Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// Name identifies the encoding.
func (t *Tiktoken) Name() string {
	return t.name
}

// Heuristic estimates tokens with the ~4 characters per token rule of
// thumb. Cheap, dependency-free at runtime, and good enough for
// aggregate accounting when the BPE tables cannot be loaded.
type Heuristic struct{}

var _ ports.Tokenizer = Heuristic{}

// Count estimates the token count of text, rounding up.
func (Heuristic) Count(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}

// Name identifies the estimator.
func (Heuristic) Name() string {
	return HeuristicName
}

// New returns the tokenizer for the configured name, falling back to the
// heuristic estimator when the encoding cannot be loaded.
func New(name string) ports.Tokenizer {
	if name == "" {
		name = DefaultEncoding
	}
	if name == HeuristicName {
		return Heuristic{}
	}
	tk, err := NewTiktoken(name)
	if err != nil {
		return Heuristic{}
	}
	return tk
}
