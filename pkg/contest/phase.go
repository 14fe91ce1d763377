package contest

import (
	"time"

	"github.com/framefest/platform/pkg/common/models"
)

// Persisted contest statuses. Status is admin-settable and advisory; the
// effective lifecycle stage is always derived through ResolvePhase.
const (
	StatusDraft  = "draft"
	StatusActive = "active"
	StatusVoting = "voting"
	StatusEnded  = "ended"
)

// Phase is the computed, time-derived lifecycle stage of a contest.
type Phase string

const (
	PhaseDraft    Phase = "draft"
	PhaseUpcoming Phase = "upcoming"
	PhaseActive   Phase = "active"
	PhaseVoting   Phase = "voting"
	PhaseEnded    Phase = "ended"
)

// ResolvePhase derives the effective phase of a contest at the given instant.
// It is a pure function: the clock is an explicit parameter and the persisted
// status is only consulted for the draft override.
//
// Priority order, first match wins:
//  1. persisted draft status always wins regardless of dates
//  2. before the submission window -> upcoming
//  3. after the submission window -> ended
//  4. inside the window -> voting while the voting window is open and voting
//     is enabled, otherwise active
func ResolvePhase(c models.Contest, now time.Time) Phase {
	if c.Status == StatusDraft {
		return PhaseDraft
	}
	if now.Before(c.StartDate) {
		return PhaseUpcoming
	}
	if now.After(c.EndDate) {
		return PhaseEnded
	}
	if c.VotingEnabled() && c.VotingStart != nil && c.VotingEnd != nil {
		if !now.Before(*c.VotingStart) && !now.After(*c.VotingEnd) {
			return PhaseVoting
		}
	}
	return PhaseActive
}

// GalleryVisible reports whether the contest's entries may be shown publicly.
func GalleryVisible(p Phase) bool {
	return p != PhaseDraft && p != PhaseUpcoming
}

// SubmissionOpen reports whether direct entry submission is allowed.
func SubmissionOpen(p Phase) bool {
	return p == PhaseActive
}

// VotingOpen reports whether public voting is allowed.
func VotingOpen(p Phase) bool {
	return p == PhaseVoting
}

func ValidStatus(status string) bool {
	switch status {
	case StatusDraft, StatusActive, StatusVoting, StatusEnded:
		return true
	}
	return false
}
