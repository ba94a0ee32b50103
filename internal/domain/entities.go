package domain

import "time"

// Document describes an uploaded file. It is never persisted on its own;
// only its chunks survive ingestion.
type Document struct {
	ID         string
	Filename   string
	MimeType   string
	UploadedAt time.Time
}

// Chunk is a bounded contiguous slice of a document's normalized text.
// Start and End are rune offsets into the normalized text.
type Chunk struct {
	Filename   string
	ChunkIndex int
	Text       string
	Start      int
	End        int
}

// Entry is a chunk together with its embedding vector, the unit of
// persistence in the vector store.
type Entry struct {
	Filename   string    `json:"filename"`
	ChunkIndex int       `json:"chunk_index"`
	Text       string    `json:"text"`
	Vector     []float32 `json:"vector"`
	Collection string    `json:"collection,omitempty"`
}

// ScoredEntry is a store entry paired with its similarity to a query.
type ScoredEntry struct {
	Entry Entry
	Score float64
}

// FileOutcome reports what happened to a single file during ingestion.
type FileOutcome struct {
	Filename string `json:"filename"`
	Status   string `json:"status"` // "ok" or "failed"
	Chunks   int    `json:"chunks,omitempty"`
	Error    string `json:"error,omitempty"`
}

// IngestResult summarizes one ingestion batch.
type IngestResult struct {
	AddedChunks int           `json:"added_chunks"`
	Files       []FileOutcome `json:"per_file"`
}

// Source is one retrieved chunk attributed in a query answer.
type Source struct {
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
}

// QueryResult is the outcome of one query: the generated answer plus the
// ranked sources it was built from.
type QueryResult struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}
