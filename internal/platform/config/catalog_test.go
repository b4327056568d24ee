package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCategories_EmbeddedDefault(t *testing.T) {
	categories, err := LoadCategories("", 30)
	require.NoError(t, err)

	assert.Equal(t, []string{"K-Pop", "K-Drama", "K-Movie", "K-Entertain", "K-Culture"}, CategoryNames(categories))

	for i, c := range categories {
		assert.Equal(t, i, c.SortOrder)
		assert.Equal(t, 30, c.MaxItems)
		assert.Len(t, c.Queries, 3, c.Name)
	}
}

func TestLoadCategories_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cats.yaml")
	data := []byte(`
categories:
  - name: K-Pop
    queries: ["아이돌"]
    max_items: 10
  - name: K-Drama
    queries: ["드라마"]
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	categories, err := LoadCategories(path, 30)
	require.NoError(t, err)
	require.Len(t, categories, 2)

	assert.Equal(t, 10, categories[0].MaxItems)
	assert.Equal(t, 30, categories[1].MaxItems)
}

func TestLoadCategories_MissingFile(t *testing.T) {
	_, err := LoadCategories(filepath.Join(t.TempDir(), "missing.yaml"), 30)
	require.Error(t, err)
}

func TestParseCategories_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name:    "empty catalog",
			data:    "categories: []",
			wantErr: ErrEmptyCatalog,
		},
		{
			name: "duplicate name",
			data: `
categories:
  - name: K-Pop
    queries: ["a"]
  - name: K-Pop
    queries: ["b"]
`,
			wantErr: ErrDuplicateCategory,
		},
		{
			name: "no queries",
			data: `
categories:
  - name: K-Movie
`,
			wantErr: ErrCategoryNoQueries,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCategories([]byte(tt.data), 30)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
