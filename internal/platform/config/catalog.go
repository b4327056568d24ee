package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
)

//go:embed categories.yaml
var defaultCatalog []byte

// Catalog validation errors.
var (
	ErrEmptyCatalog      = errors.New("category catalog is empty")
	ErrDuplicateCategory = errors.New("duplicate category")
	ErrCategoryNoQueries = errors.New("category has no search queries")
)

type catalogFile struct {
	Categories []categoryEntry `yaml:"categories"`
}

type categoryEntry struct {
	Name     string   `yaml:"name"`
	Queries  []string `yaml:"queries"`
	Feeds    []string `yaml:"feeds"`
	MaxItems int      `yaml:"max_items"`
}

// LoadCategories reads the category catalog from path, or the embedded default when path is empty.
// Categories without an explicit max_items inherit defaultMaxItems.
func LoadCategories(path string, defaultMaxItems int) ([]domain.Category, error) {
	data := defaultCatalog

	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read categories file: %w", err)
		}

		data = raw
	}

	return ParseCategories(data, defaultMaxItems)
}

// ParseCategories decodes a YAML catalog. List order defines the rotation order.
func ParseCategories(data []byte, defaultMaxItems int) ([]domain.Category, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	if len(file.Categories) == 0 {
		return nil, ErrEmptyCatalog
	}

	seen := make(map[string]bool, len(file.Categories))
	categories := make([]domain.Category, 0, len(file.Categories))

	for i, entry := range file.Categories {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("category #%d: %w", i+1, ErrEmptyCatalog)
		}

		if seen[name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCategory, name)
		}

		seen[name] = true

		if len(entry.Queries) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrCategoryNoQueries, name)
		}

		maxItems := entry.MaxItems
		if maxItems <= 0 {
			maxItems = defaultMaxItems
		}

		categories = append(categories, domain.Category{
			Name:      name,
			SortOrder: i,
			Queries:   entry.Queries,
			Feeds:     entry.Feeds,
			MaxItems:  maxItems,
		})
	}

	return categories, nil
}

// CategoryNames returns the names of categories in rotation order.
func CategoryNames(categories []domain.Category) []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}

	return names
}
