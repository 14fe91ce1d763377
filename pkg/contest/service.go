package contest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/framefest/platform/pkg/common/models"
	"github.com/google/uuid"
)

var (
	errInvalidWindow = errors.New("invalid contest window")
	errInvalidStatus = errors.New("invalid contest status")
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

type Service struct {
	store      Store
	reconciler *Reconciler
}

func NewService(store Store) *Service {
	return &Service{
		store:      store,
		reconciler: NewReconciler(store),
	}
}

func (s *Service) Create(ctx context.Context, req models.CreateContestRequest) (models.Contest, error) {
	if strings.TrimSpace(req.Title) == "" {
		return models.Contest{}, ValidationError{reason: errors.New("title required")}
	}
	if err := validateWindows(req.StartDate, req.EndDate, req.VotingStart, req.VotingEnd); err != nil {
		return models.Contest{}, err
	}

	status := req.Status
	if status == "" {
		status = StatusDraft
	}
	if !ValidStatus(status) {
		return models.Contest{}, ValidationError{reason: fmt.Errorf("status '%s': %w", status, errInvalidStatus)}
	}

	return s.store.Create(ctx, models.Contest{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		VotingStart: req.VotingStart,
		VotingEnd:   req.VotingEnd,
		Status:      status,
		Settings:    req.Settings,
	})
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req models.UpdateContestRequest) (models.Contest, error) {
	if req.Status != nil && !ValidStatus(*req.Status) {
		return models.Contest{}, ValidationError{reason: fmt.Errorf("status '%s': %w", *req.Status, errInvalidStatus)}
	}

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Contest{}, err
	}

	start, end := current.StartDate, current.EndDate
	votingStart, votingEnd := current.VotingStart, current.VotingEnd
	if req.StartDate != nil {
		start = *req.StartDate
	}
	if req.EndDate != nil {
		end = *req.EndDate
	}
	if req.VotingStart != nil {
		votingStart = req.VotingStart
	}
	if req.VotingEnd != nil {
		votingEnd = req.VotingEnd
	}
	if err := validateWindows(start, end, votingStart, votingEnd); err != nil {
		return models.Contest{}, err
	}

	return s.store.Update(ctx, id, req)
}

// Get loads one contest and opportunistically repairs its status if stale.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (models.Contest, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Contest{}, err
	}
	s.reconciler.SweepAsync([]models.Contest{c})
	return c, nil
}

// List returns contests and opportunistically repairs any whose end date has
// passed while the persisted status lags. The sweep never blocks the read.
func (s *Service) List(ctx context.Context, includeArchived bool) ([]models.Contest, error) {
	contests, err := s.store.List(ctx, includeArchived)
	if err != nil {
		return nil, err
	}
	s.reconciler.SweepAsync(contests)
	return contests, nil
}

func (s *Service) Archive(ctx context.Context, id uuid.UUID) error {
	return s.store.Archive(ctx, id)
}

func (s *Service) AddCategory(ctx context.Context, contestID uuid.UUID, req models.CreateCategoryRequest) (models.Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return models.Category{}, ValidationError{reason: errors.New("category name required")}
	}
	if _, err := s.store.Get(ctx, contestID); err != nil {
		return models.Category{}, err
	}
	return s.store.CreateCategory(ctx, contestID, req)
}

func (s *Service) Categories(ctx context.Context, contestID uuid.UUID) ([]models.Category, error) {
	return s.store.ListCategories(ctx, contestID)
}

func validateWindows(start, end time.Time, votingStart, votingEnd *time.Time) error {
	if start.IsZero() || end.IsZero() {
		return ValidationError{reason: fmt.Errorf("start and end dates required: %w", errInvalidWindow)}
	}
	if end.Before(start) {
		return ValidationError{reason: fmt.Errorf("end_date before start_date: %w", errInvalidWindow)}
	}
	if (votingStart == nil) != (votingEnd == nil) {
		return ValidationError{reason: fmt.Errorf("voting window requires both bounds: %w", errInvalidWindow)}
	}
	if votingStart != nil && votingEnd.Before(*votingStart) {
		return ValidationError{reason: fmt.Errorf("voting_end before voting_start: %w", errInvalidWindow)}
	}
	return nil
}
