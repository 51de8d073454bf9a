// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "synesis/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CollectorConfig holds settings for the paper collector stage.
type CollectorConfig struct {
	HTTPConfig `yaml:",inline"`

	// PapersDir is the directory PDFs and metadata sidecars are written
	// to (default "data/papers").
	PapersDir string `json:"papers_dir" yaml:"papers_dir"`

	// MaxResults is the default maximum number of search results
	// (default 10). The arXiv API enforces its own upper bound.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Concurrency is the number of simultaneous PDF downloads
	// (default 3). Downloads are independent and idempotent per paper
	// ID, so they can proceed in parallel.
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// ExtractorBackend identifies the PDF text extraction backend.
type ExtractorBackend string

const (
	BackendPDF       ExtractorBackend = "pdf"
	BackendPdftotext ExtractorBackend = "pdftotext"
)

// ExtractorConfig holds settings for the text extraction stage.
type ExtractorConfig struct {
	// Backend selects the extraction backend: pdf (in-process, default)
	// or pdftotext (external binary).
	Backend ExtractorBackend `json:"backend" yaml:"backend"`
}

// ChunkMode selects the chunking policy.
type ChunkMode string

const (
	// ModeWindow splits text into fixed-size word windows with overlap.
	ModeWindow ChunkMode = "window"

	// ModeDocument indexes the whole text as a single chunk.
	ModeDocument ChunkMode = "document"
)

// ChunkConfig holds settings for the chunking stage.
type ChunkConfig struct {
	// Mode selects the chunking policy (default "window").
	Mode ChunkMode `json:"mode" yaml:"mode"`

	// WindowWords is the chunk size in whitespace-delimited words
	// (default 300).
	WindowWords int `json:"window_words" yaml:"window_words"`

	// OverlapWords is the number of words shared between consecutive
	// chunks (default 50). Must be smaller than WindowWords.
	OverlapWords int `json:"overlap_words" yaml:"overlap_words"`
}

// EmbeddingConfig selects and configures the embedding function. The same
// configuration must be used at index time and query time, or similarity
// scores are meaningless.
type EmbeddingConfig struct {
	// Provider selects the embedder: gemini (default) or openai.
	Provider string `json:"provider" yaml:"provider"`

	// Model is the embedding model identifier
	// (e.g. "text-embedding-004").
	Model string `json:"model" yaml:"model"`

	// BaseURL overrides the provider endpoint, e.g. to point the openai
	// provider at a local Ollama server.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// APIKey is the credential for the provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// IndexConfig holds settings for the vector store.
type IndexConfig struct {
	// Store selects the backend: sqlite (default) or qdrant.
	Store string `json:"store" yaml:"store"`

	// EmbeddingsDir is the directory for the persistent sqlite store
	// (default "data/embeddings").
	EmbeddingsDir string `json:"embeddings_dir" yaml:"embeddings_dir"`

	// Collection names the logical chunk collection (default
	// "arxiv_papers").
	Collection string `json:"collection" yaml:"collection"`

	// QdrantURL is the Qdrant endpoint when Store is "qdrant".
	QdrantURL string `json:"qdrant_url,omitempty" yaml:"qdrant_url,omitempty"`

	// QdrantAPIKey authenticates against Qdrant.
	QdrantAPIKey string `json:"qdrant_api_key,omitempty" yaml:"qdrant_api_key,omitempty"`

	// MaxResults is the default maximum number of query results
	// (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// GenerationConfig holds settings for the answer/hypothesis generator.
type GenerationConfig struct {
	// Model is the preferred generative model identifier. When the
	// service does not advertise it, the first compatible model is used
	// instead.
	Model string `json:"model" yaml:"model"`

	// APIKey is the Gemini API credential. Absence is fatal at startup
	// for any command that invokes the generator.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for transient API
	// failures (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// NotesDir is the directory generated hypotheses are saved to
	// (default "output/notes").
	NotesDir string `json:"notes_dir" yaml:"notes_dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Collector  CollectorConfig  `json:"collector" yaml:"collector"`
	Extractor  ExtractorConfig  `json:"extractor" yaml:"extractor"`
	Chunking   ChunkConfig      `json:"chunking" yaml:"chunking"`
	Embedding  EmbeddingConfig  `json:"embedding" yaml:"embedding"`
	Index      IndexConfig      `json:"index" yaml:"index"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
}
