package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the document RAG service.
type Config struct {
	Store      StoreConfig      `yaml:"store"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Retrieve   RetrieveConfig   `yaml:"retrieve"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// StoreConfig selects the vector store backend.
type StoreConfig struct {
	Type string `yaml:"type"` // "file" or "bolt"
	Path string `yaml:"path"`
}

// ChunkingConfig controls how normalized text is split.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`    // max runes per chunk
	ChunkOverlap int `yaml:"chunk_overlap"` // runes shared by consecutive chunks
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"` // "openai", "ollama", "mock"
	Model       string `yaml:"model"`
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"` // environment variable holding the API key
	Dimension   int    `yaml:"dimension"`
	BatchSize   int    `yaml:"batch_size"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// GenerationConfig holds answer generator configuration. With Enabled false
// the query answer is the concatenated retrieved context.
type GenerationConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Model           string `yaml:"model"`
	BaseURL         string `yaml:"base_url"`
	APIKeyEnv       string `yaml:"api_key_env"`
	SystemPrompt    string `yaml:"system_prompt"`
	TimeoutSecs     int    `yaml:"timeout_secs"`
	MaxContextChars int    `yaml:"max_context_chars"`
}

// IngestConfig bounds ingestion batches and controls directory walking.
type IngestConfig struct {
	MaxFiles     int      `yaml:"max_files"`
	MaxFileBytes int64    `yaml:"max_file_bytes"`
	Includes     []string `yaml:"includes"`
	Excludes     []string `yaml:"excludes"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK           int `yaml:"top_k"`
	MaxSourceChars int `yaml:"max_source_chars"` // per-source text truncation in query output
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Type: "file",
			Path: filepath.Join("data", "vectors.json"),
		},
		Chunking: ChunkingConfig{
			ChunkSize:    800,
			ChunkOverlap: 150,
		},
		Embedding: EmbeddingConfig{
			Provider:    "openai",
			Model:       "text-embedding-3-small",
			APIKeyEnv:   "OPENAI_API_KEY",
			BatchSize:   100,
			TimeoutSecs: 60,
			MaxRetries:  2,
		},
		Generation: GenerationConfig{
			Enabled:         false,
			Model:           "gpt-4o-mini",
			APIKeyEnv:       "OPENAI_API_KEY",
			TimeoutSecs:     120,
			MaxContextChars: 8000,
		},
		Ingest: IngestConfig{
			MaxFiles:     100,
			MaxFileBytes: 32 << 20,
			Includes:     []string{"**/*.txt", "**/*.md", "**/*.pdf", "**/*.docx", "**/*.xlsx"},
			Excludes:     []string{"**/node_modules/**", "**/.git/**"},
		},
		Retrieve: RetrieveConfig{
			TopK:           1,
			MaxSourceChars: 400,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, returning defaults when the
// file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for docrag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docrag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
