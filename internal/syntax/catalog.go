// Package syntax holds the example query fragments offered to users while
// they type.
package syntax

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type Item struct {
	Icon    string `yaml:"icon" json:"icon"`
	Title   string `yaml:"title" json:"title"`
	Desc    string `yaml:"desc" json:"desc"`
	Syntax  string `yaml:"syntax" json:"syntax"`
	Pattern string `yaml:"pattern" json:"pattern,omitempty"`
}

type catalogFile struct {
	Items []Item `yaml:"items"`
}

var (
	loadOnce sync.Once
	loaded   []Item
	loadErr  error
)

// Parse decodes a catalog document.
func Parse(raw []byte) ([]Item, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse syntax catalog: %w", err)
	}
	for i, item := range file.Items {
		if strings.TrimSpace(item.Title) == "" || strings.TrimSpace(item.Syntax) == "" {
			return nil, fmt.Errorf("parse syntax catalog: item %d needs a title and syntax", i)
		}
	}
	return file.Items, nil
}

// Catalog returns the embedded catalog.
func Catalog() ([]Item, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(catalogYAML)
	})
	if loadErr != nil {
		return nil, loadErr
	}
	out := make([]Item, len(loaded))
	copy(out, loaded)
	return out, nil
}

// Filter returns every item for a blank query. Otherwise an item is kept
// when its title, description or syntax contains the query
// case-insensitively, or when its trigger pattern appears verbatim in it.
func Filter(items []Item, query string) []Item {
	if strings.TrimSpace(query) == "" {
		return items
	}
	lower := strings.ToLower(query)
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Title), lower) ||
			strings.Contains(strings.ToLower(item.Desc), lower) ||
			strings.Contains(strings.ToLower(item.Syntax), lower) ||
			(item.Pattern != "" && strings.Contains(query, item.Pattern)) {
			out = append(out, item)
		}
	}
	return out
}
