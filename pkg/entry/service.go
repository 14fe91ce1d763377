package entry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/framefest/platform/pkg/common/logger"
	"github.com/framefest/platform/pkg/common/models"
	"github.com/framefest/platform/pkg/observability/metrics"
	"github.com/google/uuid"
)

// Moderation statuses. An entry enters as pending and may move between any of
// the four values by admin action; contest phase never blocks moderation.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusWinner   = "winner"
)

// Award labels. The label is an editorial marker independent of the
// moderation status; one-winner-per-label is policy, not a constraint.
const (
	AwardGold   = "gold"
	AwardSilver = "silver"
	AwardBronze = "bronze"
)

var (
	errInvalidEntryStatus = errors.New("invalid entry status")
	errInvalidAwardLabel  = errors.New("invalid award label")
)

type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected, StatusWinner:
		return true
	}
	return false
}

func ValidAwardLabel(label string) bool {
	switch label {
	case "", AwardGold, AwardSilver, AwardBronze:
		return true
	}
	return false
}

// EventPublisher decouples the moderation engine from the Kafka producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

type Service struct {
	store     Store
	publisher EventPublisher
}

func NewService(store Store, publisher EventPublisher) *Service {
	return &Service{store: store, publisher: publisher}
}

// Create registers a directly submitted entry; it always enters pending.
func (s *Service) Create(ctx context.Context, req models.CreateEntryRequest) (models.Entry, error) {
	if strings.TrimSpace(req.MediaURL) == "" {
		return models.Entry{}, ValidationError{reason: errors.New("media_url required")}
	}
	if req.ContestID == uuid.Nil {
		return models.Entry{}, ValidationError{reason: errors.New("contest_id required")}
	}

	return s.store.Create(ctx, models.Entry{
		ContestID:  req.ContestID,
		CategoryID: req.CategoryID,
		MediaURL:   strings.TrimSpace(req.MediaURL),
		AuthorName: strings.TrimSpace(req.AuthorName),
		Caption:    req.Caption,
		Status:     StatusPending,
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (models.Entry, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByContest(ctx context.Context, contestID uuid.UUID, statuses []string) ([]models.Entry, error) {
	return s.store.ListByContest(ctx, contestID, statuses)
}

// SetStatus applies a moderation transition. Validation is membership only:
// admins may reset or re-review from any state, and a winner-labelled entry
// may regress to pending or rejected while its award label stays in place.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !ValidStatus(status) {
		return ValidationError{reason: fmt.Errorf("status '%s': %w", status, errInvalidEntryStatus)}
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	metrics.ObserveModeration()
	s.publish(ctx, "entry.moderated", map[string]interface{}{
		"entry_id": id.String(),
		"status":   status,
	})
	return nil
}

// SetAward writes the award label directly. An empty label clears the award
// without touching the moderation status.
func (s *Service) SetAward(ctx context.Context, id uuid.UUID, label string) error {
	if !ValidAwardLabel(label) {
		return ValidationError{reason: fmt.Errorf("label '%s': %w", label, errInvalidAwardLabel)}
	}
	if err := s.store.UpdateAward(ctx, id, label); err != nil {
		return err
	}

	metrics.ObserveModeration()
	s.publish(ctx, "entry.moderated", map[string]interface{}{
		"entry_id":    id.String(),
		"award_label": label,
	})
	return nil
}

// BulkSetStatus applies SetStatus over the id list sequentially. A failure on
// one id never aborts the remainder; failures are collected and returned.
func (s *Service) BulkSetStatus(ctx context.Context, ids []uuid.UUID, status string) ([]models.BulkStatusFailure, error) {
	if !ValidStatus(status) {
		return nil, ValidationError{reason: fmt.Errorf("status '%s': %w", status, errInvalidEntryStatus)}
	}

	var failures []models.BulkStatusFailure
	for _, id := range ids {
		if err := s.SetStatus(ctx, id, status); err != nil {
			logger.Log.WithError(err).WithField("entry_id", id).Warn("bulk status update failed for entry")
			failures = append(failures, models.BulkStatusFailure{EntryID: id, Reason: err.Error()})
		}
	}
	return failures, nil
}

func (s *Service) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, eventType, "contest-service", data); err != nil {
		logger.Log.WithError(err).WithField("event_type", eventType).Warn("failed to publish moderation event")
	}
}
