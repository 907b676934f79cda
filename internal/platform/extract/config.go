// Package extract turns a product page URL into the offer currently shown on it.
package extract

import (
	"os"
	"time"
)

// Config holds configuration for product page fetching.
type Config struct {
	Model   string        // Gemini model used for extraction
	Timeout time.Duration // HTTP request timeout for page downloads
}

// LoadConfig loads extraction configuration from environment variables.
func LoadConfig() Config {
	model := os.Getenv("EXTRACT_MODEL")
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return Config{
		Model:   model,
		Timeout: 20 * time.Second,
	}
}
