package contest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/framefest/platform/pkg/common/models"
	"github.com/google/uuid"
)

type fakeStore struct {
	mu       sync.Mutex
	statuses map[uuid.UUID]string
	failOn   map[uuid.UUID]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		statuses: make(map[uuid.UUID]string),
		failOn:   make(map[uuid.UUID]bool),
	}
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[id] {
		return errors.New("store unavailable")
	}
	f.statuses[id] = status
	return nil
}

func (f *fakeStore) status(id uuid.UUID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[id]
}

func (f *fakeStore) Create(ctx context.Context, c models.Contest) (models.Contest, error) {
	return models.Contest{}, nil
}

func (f *fakeStore) Update(ctx context.Context, id uuid.UUID, req models.UpdateContestRequest) (models.Contest, error) {
	return models.Contest{}, nil
}

func (f *fakeStore) Get(ctx context.Context, id uuid.UUID) (models.Contest, error) {
	return models.Contest{}, ErrNotFound
}

func (f *fakeStore) List(ctx context.Context, includeArchived bool) ([]models.Contest, error) {
	return nil, nil
}

func (f *fakeStore) ListByStatus(ctx context.Context, status string) ([]models.Contest, error) {
	return nil, nil
}

func (f *fakeStore) Archive(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeStore) CreateCategory(ctx context.Context, contestID uuid.UUID, req models.CreateCategoryRequest) (models.Category, error) {
	return models.Category{}, nil
}

func (f *fakeStore) ListCategories(ctx context.Context, contestID uuid.UUID) ([]models.Category, error) {
	return nil, nil
}

func TestSweepCorrectsStaleContests(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	reconciler := NewReconciler(store)

	staleID := uuid.New()
	contests := []models.Contest{
		{ID: staleID, Status: StatusActive, EndDate: now.Add(-time.Hour)},
		{ID: uuid.New(), Status: StatusActive, EndDate: now.Add(time.Hour)},
		{ID: uuid.New(), Status: StatusEnded, EndDate: now.Add(-time.Hour)},
		{ID: uuid.New(), Status: StatusDraft, EndDate: now.Add(-time.Hour)},
	}

	corrected := reconciler.Sweep(context.Background(), contests, now)
	if corrected != 1 {
		t.Fatalf("expected 1 correction, got %d", corrected)
	}
	if got := store.status(staleID); got != StatusEnded {
		t.Fatalf("expected stale contest moved to ended, got '%s'", got)
	}
	if len(store.statuses) != 1 {
		t.Fatalf("expected no other contest touched, got %d writes", len(store.statuses))
	}
}

func TestSweepContinuesPastStoreErrors(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	reconciler := NewReconciler(store)

	failing := uuid.New()
	healthy := uuid.New()
	store.failOn[failing] = true

	contests := []models.Contest{
		{ID: failing, Status: StatusVoting, EndDate: now.Add(-time.Hour)},
		{ID: healthy, Status: StatusActive, EndDate: now.Add(-time.Hour)},
	}

	corrected := reconciler.Sweep(context.Background(), contests, now)
	if corrected != 1 {
		t.Fatalf("expected 1 correction despite error, got %d", corrected)
	}
	if got := store.status(healthy); got != StatusEnded {
		t.Fatalf("expected healthy contest corrected, got '%s'", got)
	}
}
