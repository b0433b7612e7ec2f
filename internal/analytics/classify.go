// Package analytics turns raw activity records into focus metrics, a focus score,
// recurring patterns and a suggested daily routine. Everything here is pure and
// deterministic so it can serve as the fallback when AI enrichment is unavailable.
package analytics

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// KeywordTable lists the case-insensitive substrings that classify a category name.
type KeywordTable struct {
	Work     []string `yaml:"work" json:"work"`
	DeepWork []string `yaml:"deepWork" json:"deepWork"`
	Break    []string `yaml:"break" json:"break"`
}

// DefaultKeywords is the built-in classification table.
func DefaultKeywords() KeywordTable {
	return KeywordTable{
		Work:     []string{"Work", "Deep Work", "Coding", "Learning"},
		DeepWork: []string{"deep"},
		Break:    []string{"Break", "Rest"},
	}
}

// LoadKeywordTable reads a YAML keyword table. Sections left empty in the file keep
// their default keywords.
func LoadKeywordTable(path string) (KeywordTable, error) {
	table := DefaultKeywords()
	if path == "" {
		return table, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return table, fmt.Errorf("read keyword table: %w", err)
	}

	var loaded KeywordTable
	if err := yaml.Unmarshal(content, &loaded); err != nil {
		return table, fmt.Errorf("parse keyword table: %w", err)
	}
	if len(loaded.Work) > 0 {
		table.Work = loaded.Work
	}
	if len(loaded.DeepWork) > 0 {
		table.DeepWork = loaded.DeepWork
	}
	if len(loaded.Break) > 0 {
		table.Break = loaded.Break
	}
	return table, nil
}

type Classification struct {
	IsWork     bool `json:"isWork"`
	IsDeepWork bool `json:"isDeepWork"`
	IsBreak    bool `json:"isBreak"`
}

// Classifier maps category names to a Classification by substring match.
type Classifier struct {
	work     []string
	deepWork []string
	breaks   []string
}

func NewClassifier(table KeywordTable) *Classifier {
	return &Classifier{
		work:     foldAll(table.Work),
		deepWork: foldAll(table.DeepWork),
		breaks:   foldAll(table.Break),
	}
}

// Classify reports how a category counts. Deep work is always also work so that
// deep-work time can never exceed work time.
func (c *Classifier) Classify(categoryName string) Classification {
	name := fold(categoryName)
	isWork := containsAny(name, c.work)
	return Classification{
		IsWork:     isWork,
		IsDeepWork: isWork && containsAny(name, c.deepWork),
		IsBreak:    containsAny(name, c.breaks),
	}
}

func sameCategory(a, b string) bool {
	return fold(a) == fold(b)
}

// fold builds a fresh Caser per call; Casers carry state and must not be shared.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func foldAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if strings.TrimSpace(keyword) == "" {
			continue
		}
		out = append(out, fold(keyword))
	}
	return out
}

func containsAny(name string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}
