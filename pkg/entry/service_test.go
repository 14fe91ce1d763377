package entry

import (
	"context"
	"errors"
	"testing"

	"github.com/framefest/platform/pkg/common/models"
	"github.com/google/uuid"
)

type fakeEntryStore struct {
	entries map[uuid.UUID]*models.Entry
}

func newFakeEntryStore(entries ...*models.Entry) *fakeEntryStore {
	store := &fakeEntryStore{entries: make(map[uuid.UUID]*models.Entry)}
	for _, e := range entries {
		store.entries[e.ID] = e
	}
	return store
}

func (f *fakeEntryStore) Create(ctx context.Context, e models.Entry) (models.Entry, error) {
	e.ID = uuid.New()
	f.entries[e.ID] = &e
	return e, nil
}

func (f *fakeEntryStore) Get(ctx context.Context, id uuid.UUID) (models.Entry, error) {
	if e, ok := f.entries[id]; ok {
		return *e, nil
	}
	return models.Entry{}, ErrNotFound
}

func (f *fakeEntryStore) GetByExternalID(ctx context.Context, externalID string) (models.Entry, error) {
	for _, e := range f.entries {
		if e.ExternalID == externalID {
			return *e, nil
		}
	}
	return models.Entry{}, ErrNotFound
}

func (f *fakeEntryStore) ListByContest(ctx context.Context, contestID uuid.UUID, statuses []string) ([]models.Entry, error) {
	var out []models.Entry
	for _, e := range f.entries {
		if e.ContestID != contestID {
			continue
		}
		if len(statuses) > 0 {
			match := false
			for _, s := range statuses {
				if e.Status == s {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeEntryStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	e, ok := f.entries[id]
	if !ok {
		return ErrNotFound
	}
	e.Status = status
	return nil
}

func (f *fakeEntryStore) UpdateAward(ctx context.Context, id uuid.UUID, label string) error {
	e, ok := f.entries[id]
	if !ok {
		return ErrNotFound
	}
	e.AwardLabel = label
	return nil
}

func (f *fakeEntryStore) Upsert(ctx context.Context, e models.Entry) (bool, error) {
	existing, err := f.GetByExternalID(ctx, e.ExternalID)
	if errors.Is(err, ErrNotFound) {
		_, err := f.Create(ctx, e)
		return true, err
	}
	if err != nil {
		return false, err
	}
	stored := f.entries[existing.ID]
	stored.Caption = e.Caption
	stored.MediaURL = e.MediaURL
	stored.Permalink = e.Permalink
	stored.AuthorName = e.AuthorName
	stored.LikeCount = e.LikeCount
	return false, nil
}

func (f *fakeEntryStore) AddLikeCount(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	e, ok := f.entries[id]
	if !ok {
		return 0, ErrNotFound
	}
	e.LikeCount += delta
	if e.LikeCount < 0 {
		e.LikeCount = 0
	}
	return e.LikeCount, nil
}

func (f *fakeEntryStore) SetLikeCount(ctx context.Context, id uuid.UUID, count int) error {
	e, ok := f.entries[id]
	if !ok {
		return ErrNotFound
	}
	e.LikeCount = count
	return nil
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	store := newFakeEntryStore()
	svc := NewService(store, nil)

	err := svc.SetStatus(context.Background(), uuid.New(), "published")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSetStatusAllowsReReview(t *testing.T) {
	e := &models.Entry{ID: uuid.New(), Status: StatusRejected}
	store := newFakeEntryStore(e)
	svc := NewService(store, nil)

	if err := svc.SetStatus(context.Background(), e.ID, StatusPending); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Status != StatusPending {
		t.Fatalf("expected pending, got %s", e.Status)
	}
}

func TestWinnerRegressionKeepsAwardLabel(t *testing.T) {
	e := &models.Entry{ID: uuid.New(), Status: StatusWinner, AwardLabel: AwardGold}
	store := newFakeEntryStore(e)
	svc := NewService(store, nil)

	if err := svc.SetStatus(context.Background(), e.ID, StatusPending); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Status != StatusPending {
		t.Fatalf("expected pending, got %s", e.Status)
	}
	if e.AwardLabel != AwardGold {
		t.Fatalf("award label must survive status regression, got '%s'", e.AwardLabel)
	}
}

func TestSetAwardClearsWithoutTouchingStatus(t *testing.T) {
	e := &models.Entry{ID: uuid.New(), Status: StatusApproved, AwardLabel: AwardSilver}
	store := newFakeEntryStore(e)
	svc := NewService(store, nil)

	if err := svc.SetAward(context.Background(), e.ID, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.AwardLabel != "" {
		t.Fatalf("expected cleared award, got '%s'", e.AwardLabel)
	}
	if e.Status != StatusApproved {
		t.Fatalf("clearing an award must not change status, got %s", e.Status)
	}
}

func TestSetAwardRejectsUnknownLabel(t *testing.T) {
	e := &models.Entry{ID: uuid.New(), Status: StatusApproved}
	store := newFakeEntryStore(e)
	svc := NewService(store, nil)

	if err := svc.SetAward(context.Background(), e.ID, "platinum"); !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBulkSetStatusContinuesOnError(t *testing.T) {
	first := &models.Entry{ID: uuid.New(), Status: StatusPending}
	last := &models.Entry{ID: uuid.New(), Status: StatusPending}
	store := newFakeEntryStore(first, last)
	svc := NewService(store, nil)

	missing := uuid.New()
	failures, err := svc.BulkSetStatus(context.Background(), []uuid.UUID{first.ID, missing, last.ID}, StatusApproved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if failures[0].EntryID != missing {
		t.Fatalf("expected failure for missing id, got %s", failures[0].EntryID)
	}
	if first.Status != StatusApproved || last.Status != StatusApproved {
		t.Fatal("entries after the failing id must still be updated")
	}
}
