// Package category classifies question text into the closed category set
// and supplies category-matched answer suggestions. The rules are an
// ordered data table, evaluated first-match-wins.
package category

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AiGarnet/garnet-questionnaire/internal/domain"
)

//go:embed rules.yaml
var rulesYAML []byte

// Rule maps a set of question keywords to a category and its suggestions.
type Rule struct {
	Category    domain.Category `yaml:"category"`
	Keywords    []string        `yaml:"keywords"`
	Suggestions []string        `yaml:"suggestions"`
}

type ruleFile struct {
	Rules   []Rule `yaml:"rules"`
	Default struct {
		Category    domain.Category `yaml:"category"`
		Suggestions []string        `yaml:"suggestions"`
	} `yaml:"default"`
}

// Classifier evaluates the ordered rule table.
type Classifier struct {
	rules              []Rule
	defaultCategory    domain.Category
	defaultSuggestions []string
}

// New loads the embedded rule table.
func New() (*Classifier, error) {
	var rf ruleFile
	if err := yaml.Unmarshal(rulesYAML, &rf); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	for _, r := range rf.Rules {
		if !r.Category.IsValid() {
			return nil, fmt.Errorf("unknown category %q in rules", r.Category)
		}
	}
	return &Classifier{
		rules:              rf.Rules,
		defaultCategory:    rf.Default.Category,
		defaultSuggestions: rf.Default.Suggestions,
	}, nil
}

// match returns the first rule whose keywords appear in the question.
func (c *Classifier) match(question string) (Rule, bool) {
	q := strings.ToLower(question)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(q, kw) {
				return r, true
			}
		}
	}
	return Rule{}, false
}

// Classify returns the category for a question, "Default" when no rule matches.
func (c *Classifier) Classify(question string) domain.Category {
	if r, ok := c.match(question); ok {
		return r.Category
	}
	return c.defaultCategory
}

// Suggestions returns up to max category-matched suggestion strings.
func (c *Classifier) Suggestions(question string, max int) []string {
	s := c.defaultSuggestions
	if r, ok := c.match(question); ok {
		s = r.Suggestions
	}
	if len(s) > max {
		s = s[:max]
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
