package pdf

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/arclight-labs/pdfprogressive/internal/logger"
)

// Config holds the document-open options that govern how aggressively a
// Reader chunks, caches, and retries a progressively-loaded PDF.
type Config struct {
	ChunkSize       int64         `validate:"min=1024"`
	MaxCachedChunks int           `validate:"min=1,max=1024"`
	MaxRetries      int           `validate:"min=0,max=100"`
	HTTPTimeout     time.Duration `validate:"required"`
	Limits          ParseLimits
	Logger          logger.LogFunc
}

// NewDefaultConfig returns sane defaults: 64 KiB chunks, 10 resident
// chunks, 10 retries, a 30s HTTP timeout.
func NewDefaultConfig() *Config {
	return &Config{
		ChunkSize:       DefaultChunkSize,
		MaxCachedChunks: DefaultMaxCachedChunks,
		MaxRetries:      MaxRetries,
		HTTPTimeout:     30 * time.Second,
		Limits:          DefaultParseLimits(),
	}
}

// Validate rejects configurations that can't plausibly open a document -
// a zero chunk size, a cache too small to hold a single chunk, a negative
// retry budget.
func (c *Config) Validate() error {
	logger.Debug("validating config", "chunkSize", c.ChunkSize, "maxCachedChunks", c.MaxCachedChunks)
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("pdf: invalid config: %w", err)
	}
	return nil
}
