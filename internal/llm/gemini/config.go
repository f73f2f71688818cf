package gemini

import (
	"errors"
	"os"
	"strconv"
)

// holds Gemini-specific configuration
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
}

func NewConfig() (*Config, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is required")
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.0-flash" // default model
	}

	temperature := float32(0.4)
	if raw := os.Getenv("GEMINI_TEMPERATURE"); raw != "" {
		if f, err := strconv.ParseFloat(raw, 32); err == nil {
			temperature = float32(f)
		}
	}

	return &Config{
		APIKey:      apiKey,
		Model:       model,
		Temperature: temperature,
	}, nil
}
