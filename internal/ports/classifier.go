package ports

import "context"

// Classification is the answer from an external classifier
type Classification struct {
	Category   string
	Confidence float64 // 0-1
}

// Classifier defines the interface for the external document classifier
// consumed by routing tier 3. Implementations must be safe for concurrent
// use; the router treats any error as "no confident match" and falls
// through, it never aborts routing over a classifier failure.
type Classifier interface {
	// Classify suggests a category for the given document content.
	Classify(ctx context.Context, content string) (Classification, error)

	// IsAvailable returns true if the backing service can be reached.
	IsAvailable() bool
}
