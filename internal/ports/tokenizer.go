package ports

// Tokenizer counts tokens for documents and their JSON twins. One
// instance is constructed per registry run and threaded through every
// component, so aggregate savings percentages stay comparable across
// entries.
type Tokenizer interface {
	// Count returns the number of tokens in text.
	Count(text string) int

	// Name identifies the encoding (e.g. "cl100k_base", "heuristic").
	Name() string
}
