package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// LoadAPIKey resolves the Anthropic API key: the ANTHROPIC_API_KEY
// environment variable first, then key files under ~/.claude. Returns
// "" when no key is found.
func LoadAPIKey() string {
	if key := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); key != "" {
		return key
	}
	return keyFromClaudeDir()
}

// ClaudeDir is the directory searched for key files. Empty when the
// home directory cannot be resolved.
func ClaudeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".claude")
}

func keyFromClaudeDir() string {
	dir := ClaudeDir()
	if dir == "" {
		return ""
	}
	return keyFromDir(dir)
}

// keyFromDir tries api_key.txt, then the api_key field of config.json.
// Unreadable or malformed files are skipped.
func keyFromDir(dir string) string {
	if data, err := os.ReadFile(filepath.Join(dir, "api_key.txt")); err == nil {
		if key := strings.TrimSpace(string(data)); key != "" {
			return key
		}
	}
	if data, err := os.ReadFile(filepath.Join(dir, "config.json")); err == nil {
		var cfg struct {
			APIKey string `json:"api_key"`
		}
		if err := json.Unmarshal(data, &cfg); err == nil {
			if key := strings.TrimSpace(cfg.APIKey); key != "" {
				return key
			}
		}
	}
	return ""
}
