package port

import "context"

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// Generator produces an answer to a question given retrieved context.
// Calls are never retried: a duplicate call is a duplicate billable request.
type Generator interface {
	Generate(ctx context.Context, question, context string) (string, error)
}
