package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a YAML config file. Gemini API keys may also
// be supplied via the GEMINI_API_KEYS environment variable
// (comma-separated), which takes precedence over the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if env := os.Getenv("GEMINI_API_KEYS"); env != "" {
		cfg.Gemini.APIKeys = nil
		for _, key := range strings.Split(env, ",") {
			if key = strings.TrimSpace(key); key != "" {
				cfg.Gemini.APIKeys = append(cfg.Gemini.APIKeys, key)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
