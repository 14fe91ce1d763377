package screening

import "testing"

func newDefaultScreener(t *testing.T) *Screener {
	t.Helper()
	s, err := NewScreener(DefaultRules())
	if err != nil {
		t.Fatalf("failed to build screener: %v", err)
	}
	return s
}

func TestScreenFlagsContactDetails(t *testing.T) {
	s := newDefaultScreener(t)

	types := s.Screen("DM me at photo.fan@example.com for prints")
	if len(types) != 1 || types[0] != "email" {
		t.Fatalf("expected email flag, got %v", types)
	}

	types = s.Screen("call 555-123-4567 to order")
	if len(types) != 1 || types[0] != "phone" {
		t.Fatalf("expected phone flag, got %v", types)
	}
}

func TestScreenFlagsShortLinksAndSpam(t *testing.T) {
	s := newDefaultScreener(t)

	if !s.Flagged("full gallery at bit.ly/xyz123") {
		t.Fatal("expected short link to be flagged")
	}
	if !s.Flagged("great shot! #follow4follow #sunset") {
		t.Fatal("expected follow spam to be flagged")
	}
}

func TestScreenPassesCleanCaption(t *testing.T) {
	s := newDefaultScreener(t)

	if types := s.Screen("Golden hour over the harbor #sunsetfest2024"); types != nil {
		t.Fatalf("expected clean caption to pass, got %v", types)
	}
	if s.Flagged("") {
		t.Fatal("empty caption must pass")
	}
}

func TestScreenReportsEveryTrippedRule(t *testing.T) {
	s := newDefaultScreener(t)

	types := s.Screen("buy@spam.com and tinyurl.com/deal")
	if len(types) != 2 {
		t.Fatalf("expected 2 flags, got %v", types)
	}
}

func TestNewScreenerSkipsDisabledRules(t *testing.T) {
	cfg := RulesConfig{Rules: []Rule{
		{Name: "Email", Type: "email", Pattern: `@`, Enabled: false},
	}}
	s, err := NewScreener(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Flagged("mail@example.com") {
		t.Fatal("disabled rule must not flag")
	}
}

func TestNewScreenerRejectsBadPattern(t *testing.T) {
	cfg := RulesConfig{Rules: []Rule{
		{Name: "Broken", Type: "broken", Pattern: `(`, Enabled: true},
	}}
	if _, err := NewScreener(cfg); err == nil {
		t.Fatal("expected compile error")
	}
}
