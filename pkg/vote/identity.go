package vote

import (
	"crypto/sha256"
	"encoding/hex"
)

// IdentityStrategy derives the opaque voter identifier the vote engine keys
// on. Implementations must be deterministic: the same inputs always map to
// the same identifier.
type IdentityStrategy interface {
	Derive(origin, entryID string) string
}

// OriginHasher derives the identifier from the caller's network origin. The
// identifier is entry-scoped, so one visitor gets a distinct identifier per
// entry, and visitors sharing an origin collapse to one identifier per entry.
type OriginHasher struct{}

func (OriginHasher) Derive(origin, entryID string) string {
	return digest(origin + "-" + entryID)
}

// TokenStrategy derives the identifier from a client-issued opaque token,
// for screens that persist a token client-side instead of trusting the
// network origin. It satisfies the same engine contract as OriginHasher.
type TokenStrategy struct{}

func (TokenStrategy) Derive(token, entryID string) string {
	return digest(token + "-" + entryID)
}

func digest(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
