// Package source is the static registry of configured news sources.
package source

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind distinguishes RSS feeds from scraped sites.
type Kind string

const (
	KindRSS  Kind = "rss"
	KindSite Kind = "site"
)

// Source is one configured feed or site.
type Source struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Kind     Kind   `yaml:"kind"`
	Lang     string `yaml:"lang"`
	Selector string `yaml:"selector,omitempty"` // CSS selector for site article links
}

type registryFile struct {
	Sources []Source `yaml:"sources"`
}

// Load reads the source registry from a YAML file. Sources without an
// explicit lang inherit defaultLang.
func Load(path, defaultLang string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg registryFile
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode sources config: %w", err)
	}

	if defaultLang == "" {
		defaultLang = "tr"
	}
	for i, s := range cfg.Sources {
		if s.ID == "" || s.URL == "" {
			return nil, fmt.Errorf("source %d: id and url are required", i)
		}
		if s.Kind == "" {
			cfg.Sources[i].Kind = KindRSS
		}
		if s.Lang == "" {
			cfg.Sources[i].Lang = defaultLang
		}
	}
	return cfg.Sources, nil
}
