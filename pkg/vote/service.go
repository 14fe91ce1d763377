package vote

import (
	"context"
	"errors"

	"github.com/framefest/platform/pkg/common/logger"
	"github.com/framefest/platform/pkg/common/models"
	"github.com/framefest/platform/pkg/entry"
	"github.com/framefest/platform/pkg/observability/metrics"
	"github.com/google/uuid"
)

const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
)

var (
	// ErrNotVotable covers missing entries and entries outside approved/winner.
	ErrNotVotable = errors.New("entry is not votable")
	// ErrAlreadyVoted is what the loser of a racing add observes.
	ErrAlreadyVoted = errors.New("vote already counted")
	// ErrVotingClosed is returned by callers that phase-gate the engine; the
	// engine itself stays phase-agnostic so admin surfaces can reuse it.
	ErrVotingClosed = errors.New("voting is closed")
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

type Service struct {
	votes     Store
	entries   entry.Store
	cache     *CountCache
	publisher EventPublisher
}

func NewService(votes Store, entries entry.Store, cache *CountCache, publisher EventPublisher) *Service {
	return &Service{votes: votes, entries: entries, cache: cache, publisher: publisher}
}

// Toggle adds or removes the vote of one identifier on one entry and keeps
// the denormalized like counter in step. The (entry_id, voter_identifier)
// uniqueness constraint is the sole arbiter between racing adds: the losing
// insert comes back ErrAlreadyVoted and must not touch the counter.
func (s *Service) Toggle(ctx context.Context, entryID uuid.UUID, voterID string) (models.VoteResult, error) {
	e, err := s.entries.Get(ctx, entryID)
	if err != nil {
		if errors.Is(err, entry.ErrNotFound) {
			return models.VoteResult{}, ErrNotVotable
		}
		return models.VoteResult{}, err
	}
	if e.Status != entry.StatusApproved && e.Status != entry.StatusWinner {
		return models.VoteResult{}, ErrNotVotable
	}

	exists, err := s.votes.Exists(ctx, entryID, voterID)
	if err != nil {
		return models.VoteResult{}, err
	}

	if !exists {
		if err := s.votes.Insert(ctx, entryID, voterID); err != nil {
			if errors.Is(err, ErrDuplicateVote) {
				metrics.ObserveVoteConflict()
				return models.VoteResult{}, ErrAlreadyVoted
			}
			return models.VoteResult{}, err
		}

		count, err := s.entries.AddLikeCount(ctx, entryID, 1)
		if err != nil {
			return models.VoteResult{}, err
		}
		s.cache.Invalidate(ctx, entryID)
		metrics.ObserveVote(ActionAdded)
		s.publish(ctx, entryID, ActionAdded, count)
		return models.VoteResult{Action: ActionAdded, VoteCount: count}, nil
	}

	removed, err := s.votes.Delete(ctx, entryID, voterID)
	if err != nil {
		return models.VoteResult{}, err
	}

	count := e.LikeCount
	if removed {
		count, err = s.entries.AddLikeCount(ctx, entryID, -1)
		if err != nil {
			return models.VoteResult{}, err
		}
		s.cache.Invalidate(ctx, entryID)
		metrics.ObserveVote(ActionRemoved)
		s.publish(ctx, entryID, ActionRemoved, count)
	}
	return models.VoteResult{Action: ActionRemoved, VoteCount: count}, nil
}

func (s *Service) HasVoted(ctx context.Context, entryID uuid.UUID, voterID string) (bool, error) {
	return s.votes.Exists(ctx, entryID, voterID)
}

func (s *Service) Count(ctx context.Context, entryID uuid.UUID) (int, error) {
	if count, ok := s.cache.Get(ctx, entryID); ok {
		return count, nil
	}
	count, err := s.votes.Count(ctx, entryID)
	if err != nil {
		return 0, err
	}
	s.cache.Set(ctx, entryID, count)
	return count, nil
}

// Recompute rewrites the denormalized like counter from the vote rows. It is
// an operator-triggered maintenance command, never part of the hot path.
func (s *Service) Recompute(ctx context.Context, entryID uuid.UUID) (int, error) {
	count, err := s.votes.Count(ctx, entryID)
	if err != nil {
		return 0, err
	}
	if err := s.entries.SetLikeCount(ctx, entryID, count); err != nil {
		return 0, err
	}
	s.cache.Invalidate(ctx, entryID)
	return count, nil
}

func (s *Service) publish(ctx context.Context, entryID uuid.UUID, action string, count int) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishEvent(ctx, "entry.vote", "contest-service", map[string]interface{}{
		"entry_id":   entryID.String(),
		"action":     action,
		"vote_count": count,
	})
	if err != nil {
		logger.Log.WithError(err).Warn("failed to publish vote event")
	}
}
