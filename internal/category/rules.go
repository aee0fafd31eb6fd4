// Package category assigns a spending category to every transaction.
// Resolution order is cache, then the optional LLM classifier, then the
// keyword rules, with Other as the final fallback.
package category

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/finlens/backend/internal/model"
)

// Rule maps a set of description keywords to one category. Rules are
// evaluated in file order and the first match wins.
type Rule struct {
	Category model.Category `yaml:"category"`
	Keywords []string       `yaml:"keywords"`
}

// Rules is the keyword rule set plus the recurring-vendor patterns used
// for fixed-cost detection.
type Rules struct {
	Rules      []Rule                      `yaml:"rules"`
	FixedCosts map[model.Category][]string `yaml:"fixed_costs"`
}

// LoadRules reads and validates the rules file. Every referenced
// category must be a member of the closed category set.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}

	for i, rule := range r.Rules {
		if !model.IsValidCategory(string(rule.Category)) {
			return nil, fmt.Errorf("rule %d: unknown category %q", i, rule.Category)
		}
		if len(rule.Keywords) == 0 {
			return nil, fmt.Errorf("rule %d (%s): no keywords", i, rule.Category)
		}
	}
	for cat := range r.FixedCosts {
		if !model.IsValidCategory(string(cat)) {
			return nil, fmt.Errorf("fixed_costs: unknown category %q", cat)
		}
	}
	return &r, nil
}

// Match returns the category of the first rule whose keyword appears in
// the description, or Other when nothing matches.
func (r *Rules) Match(description string) model.Category {
	desc := strings.ToLower(description)
	for _, rule := range r.Rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(desc, kw) {
				return rule.Category
			}
		}
	}
	return model.CategoryOther
}
