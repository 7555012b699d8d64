// README: Data-driven search vocabulary (category phrases, cities, stopwords), YAML with an embedded default.
package search

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"placemap/internal/modules/place"
)

//go:embed vocabulary.yaml
var defaultVocabulary []byte

// KeywordRule maps a query phrase to a category slug.
type KeywordRule struct {
	Phrase   string `yaml:"phrase"`
	Category string `yaml:"category"`
}

type Vocabulary struct {
	Categories    []KeywordRule     `yaml:"categories"`
	Cities        []string          `yaml:"cities"`
	Stopwords     []string          `yaml:"stopwords"`
	ProviderTypes map[string]string `yaml:"provider_types"`

	stop map[string]bool
}

// DefaultVocabulary returns the built-in vocabulary.
func DefaultVocabulary() *Vocabulary {
	v, err := ParseVocabulary(defaultVocabulary)
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary: %v", err))
	}
	return v
}

// LoadVocabulary reads path, or returns the default when path is empty.
func LoadVocabulary(path string) (*Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	v, err := ParseVocabulary(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// ParseVocabulary decodes and normalizes a YAML vocabulary. Phrases and
// cities are lowercased and whitespace-collapsed so they compare against
// normalized queries.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	if len(v.Categories) == 0 {
		return nil, fmt.Errorf("vocabulary has no categories")
	}
	for i, r := range v.Categories {
		r.Phrase = normalize(r.Phrase)
		r.Category = strings.TrimSpace(r.Category)
		if r.Phrase == "" || r.Category == "" {
			return nil, fmt.Errorf("category rule %d: phrase and category are required", i+1)
		}
		v.Categories[i] = r
	}
	cities := v.Cities[:0]
	for _, c := range v.Cities {
		if c = normalize(c); c != "" {
			cities = append(cities, c)
		}
	}
	v.Cities = cities
	v.stop = make(map[string]bool, len(v.Stopwords))
	for _, w := range v.Stopwords {
		v.stop[normalize(w)] = true
	}
	return &v, nil
}

// Slugs lists the distinct category slugs in rule order.
func (v *Vocabulary) Slugs() []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range v.Categories {
		if !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	return out
}

// ProviderType maps a slug to the provider's place type.
func (v *Vocabulary) ProviderType(slug string) string {
	if t, ok := v.ProviderTypes[slug]; ok && t != "" {
		return t
	}
	return place.ProviderType(slug)
}
