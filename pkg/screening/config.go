package screening

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Rule struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	Pattern  string `yaml:"pattern" json:"pattern"`
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Severity string `yaml:"severity" json:"severity"`
}

type RulesConfig struct {
	Rules []Rule `yaml:"rules" json:"rules"`
}

func LoadRules(path string) (RulesConfig, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultRules(), err
	}

	var cfg RulesConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return RulesConfig{}, err
	}

	if len(cfg.Rules) == 0 {
		return RulesConfig{}, errors.New("no screening rules configured")
	}

	return cfg, nil
}

// DefaultRules flags captions that carry contact details or spam markers;
// those posts are skipped during collection rather than queued for review.
func DefaultRules() RulesConfig {
	return RulesConfig{Rules: []Rule{
		{Name: "Email", Type: "email", Pattern: `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`, Enabled: true, Severity: "medium"},
		{Name: "Phone", Type: "phone", Pattern: `\b\d{3}-\d{3}-\d{4}\b|\b\(\d{3}\)\s?\d{3}-\d{4}\b`, Enabled: true, Severity: "medium"},
		{Name: "ShortLink", Type: "short_link", Pattern: `(?i)\b(?:bit\.ly|tinyurl\.com|t\.co)/\S+`, Enabled: true, Severity: "high"},
		{Name: "FollowSpam", Type: "follow_spam", Pattern: `(?i)#?(?:follow4follow|like4like|f4f|l4l)\b`, Enabled: true, Severity: "low"},
	}}
}
