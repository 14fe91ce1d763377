package screening

import (
	"regexp"
)

type compiledRule struct {
	rule Rule
	re   *regexp.Regexp
}

// Screener checks entry captions against the configured rule set before an
// externally collected post is admitted into the entry pool.
type Screener struct {
	rules []compiledRule
}

func NewScreener(cfg RulesConfig) (*Screener, error) {
	var compiled []compiledRule
	for _, rule := range cfg.Rules {
		if !rule.Enabled {
			continue
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledRule{rule: rule, re: re})
	}
	return &Screener{rules: compiled}, nil
}

// Screen returns the types of every rule the text trips, in rule order.
func (s *Screener) Screen(text string) []string {
	if s == nil || text == "" {
		return nil
	}

	var matched []string
	for _, rule := range s.rules {
		if rule.re.MatchString(text) {
			matched = append(matched, rule.rule.Type)
		}
	}
	return matched
}

// Flagged reports whether the text trips any rule.
func (s *Screener) Flagged(text string) bool {
	return len(s.Screen(text)) > 0
}
