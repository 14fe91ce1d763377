package vote

import "testing"

func TestOriginHasherIsDeterministic(t *testing.T) {
	hasher := OriginHasher{}

	first := hasher.Derive("203.0.113.7", "entry-1")
	second := hasher.Derive("203.0.113.7", "entry-1")
	if first != second {
		t.Fatalf("expected stable identifier, got %s and %s", first, second)
	}
	if first == "" || first == "203.0.113.7-entry-1" {
		t.Fatal("identifier must be a digest, not the raw input")
	}
}

func TestOriginHasherIsEntryScoped(t *testing.T) {
	hasher := OriginHasher{}

	if hasher.Derive("203.0.113.7", "entry-1") == hasher.Derive("203.0.113.7", "entry-2") {
		t.Fatal("same origin must map to different identifiers per entry")
	}
	if hasher.Derive("203.0.113.7", "entry-1") == hasher.Derive("198.51.100.9", "entry-1") {
		t.Fatal("different origins must map to different identifiers")
	}
}

func TestTokenStrategyMatchesEngineContract(t *testing.T) {
	tokens := TokenStrategy{}

	first := tokens.Derive("client-token-abc", "entry-1")
	second := tokens.Derive("client-token-abc", "entry-1")
	if first != second {
		t.Fatalf("expected stable identifier, got %s and %s", first, second)
	}
	if tokens.Derive("client-token-abc", "entry-1") == tokens.Derive("client-token-xyz", "entry-1") {
		t.Fatal("different tokens must map to different identifiers")
	}
}
