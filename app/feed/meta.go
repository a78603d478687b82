package feed

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTitle  = "rss-later"
	DefaultAuthor = "rss-later"
)

// LoadMeta reads feed metadata from a YAML file. An empty path yields zero Meta.
func LoadMeta(path string) (Meta, error) {
	if path == "" {
		return Meta{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, fmt.Errorf("failed to read file: %w", err)
	}

	var meta Meta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return Meta{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	meta.Title = strings.TrimSpace(meta.Title)
	meta.Subtitle = strings.TrimSpace(meta.Subtitle)
	meta.Author = strings.TrimSpace(meta.Author)
	meta.Link = strings.TrimSpace(meta.Link)

	if err := validateMeta(meta); err != nil {
		return Meta{}, fmt.Errorf("invalid feed metadata %s: %w", path, err)
	}

	return meta, nil
}

func validateMeta(meta Meta) error {
	if meta.Link == "" {
		return nil
	}

	u, err := url.Parse(meta.Link)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("link must be an absolute URL: %q", meta.Link)
	}

	return nil
}
