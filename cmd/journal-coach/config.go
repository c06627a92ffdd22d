package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/theimaginaryfoundation/journal-coach/journal"
)

// Config holds flags shared by every subcommand.
type Config struct {
	Pretty  bool
	OutPath string
	Debug   bool
	EnvFile string
}

func (c Config) Validate() error {
	if c.OutPath != "" && strings.ToLower(filepath.Ext(c.OutPath)) != ".json" {
		return errors.New("-out must be a .json path")
	}
	return nil
}

func defaultConfig() Config {
	return Config{}
}

// entriesFile is the on-disk form accepted by `analyze -f`: either a bare list of entries or an
// object with an "entries" key. JSON files parse too, as YAML is a superset.
type entriesFile struct {
	Entries []journal.Entry `yaml:"entries"`
}

func loadEntries(path string) ([]journal.Entry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}

	var list []journal.Entry
	if err := yaml.Unmarshal(b, &list); err == nil && len(list) > 0 {
		return list, nil
	}

	var wrapped entriesFile
	if err := yaml.Unmarshal(b, &wrapped); err != nil {
		return nil, fmt.Errorf("parse entries %s: %w", path, err)
	}
	if len(wrapped.Entries) == 0 {
		return nil, fmt.Errorf("no entries found in %s", path)
	}
	return wrapped.Entries, nil
}
