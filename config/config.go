package config

import (
	"encoding/json"
	"log"
	"os"
)

type Config struct {
	MaxCanvases        int      `json:"maxCanvases"`
	HoverOutsideCombat bool     `json:"hoverOutsideCombat"`
	RefreshThrottleMs  int      `json:"refreshThrottleMs"`
	ConflictingModules []string `json:"conflictingModules"`
	DatabaseURL        string   `json:"databaseURL"`
}

func DefaultConfig() Config {
	return Config{
		MaxCanvases:        8,
		HoverOutsideCombat: false,
		RefreshThrottleMs:  40,
		ConflictingModules: []string{"legacy-range-finder"},
		DatabaseURL:        "",
	}
}

// Load reads a JSON config file at path. If the file is missing or invalid,
// it logs a warning and returns DefaultConfig(). Partial JSON is merged with
// defaults.
func Load(path string) Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("warning: could not read config file %q, using defaults: %v", path, err)
		return cfg
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Printf("warning: invalid JSON in config file %q, using defaults: %v", path, err)
		return DefaultConfig()
	}

	return cfg
}
