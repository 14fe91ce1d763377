package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/framefest/platform/pkg/common/models"
	"github.com/framefest/platform/pkg/contest"
	"github.com/framefest/platform/pkg/entry"
	"github.com/framefest/platform/pkg/screening"
	"github.com/google/uuid"
)

type fakeMediaSource struct {
	configured bool
	tagIDs     map[string]string
	media      map[string][]MediaItem
	failLookup map[string]error
}

func newFakeMediaSource() *fakeMediaSource {
	return &fakeMediaSource{
		configured: true,
		tagIDs:     make(map[string]string),
		media:      make(map[string][]MediaItem),
		failLookup: make(map[string]error),
	}
}

func (f *fakeMediaSource) Configured() bool { return f.configured }

func (f *fakeMediaSource) LookupTag(ctx context.Context, keyword string) (string, error) {
	if err := f.failLookup[keyword]; err != nil {
		return "", err
	}
	id, ok := f.tagIDs[keyword]
	if !ok {
		return "", ErrTagNotFound
	}
	return id, nil
}

func (f *fakeMediaSource) RecentMedia(ctx context.Context, tagID string) ([]MediaItem, error) {
	return f.media[tagID], nil
}

type fakeContestStore struct {
	contests map[uuid.UUID]models.Contest
}

func newFakeContestStore(contests ...models.Contest) *fakeContestStore {
	store := &fakeContestStore{contests: make(map[uuid.UUID]models.Contest)}
	for _, c := range contests {
		store.contests[c.ID] = c
	}
	return store
}

func (f *fakeContestStore) Get(ctx context.Context, id uuid.UUID) (models.Contest, error) {
	if c, ok := f.contests[id]; ok {
		return c, nil
	}
	return models.Contest{}, contest.ErrNotFound
}

func (f *fakeContestStore) ListByStatus(ctx context.Context, status string) ([]models.Contest, error) {
	var out []models.Contest
	for _, c := range f.contests {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContestStore) Create(ctx context.Context, c models.Contest) (models.Contest, error) {
	return models.Contest{}, nil
}

func (f *fakeContestStore) Update(ctx context.Context, id uuid.UUID, req models.UpdateContestRequest) (models.Contest, error) {
	return models.Contest{}, nil
}

func (f *fakeContestStore) List(ctx context.Context, includeArchived bool) ([]models.Contest, error) {
	return nil, nil
}

func (f *fakeContestStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return nil
}

func (f *fakeContestStore) Archive(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeContestStore) CreateCategory(ctx context.Context, contestID uuid.UUID, req models.CreateCategoryRequest) (models.Category, error) {
	return models.Category{}, nil
}

func (f *fakeContestStore) ListCategories(ctx context.Context, contestID uuid.UUID) ([]models.Category, error) {
	return nil, nil
}

type fakeEntryStore struct {
	entries map[uuid.UUID]*models.Entry
}

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{entries: make(map[uuid.UUID]*models.Entry)}
}

func (f *fakeEntryStore) byExternalID(externalID string) *models.Entry {
	for _, e := range f.entries {
		if e.ExternalID == externalID {
			return e
		}
	}
	return nil
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
	return models.Entry{}, entry.ErrNotFound
}

func (f *fakeEntryStore) GetByExternalID(ctx context.Context, externalID string) (models.Entry, error) {
	if e := f.byExternalID(externalID); e != nil {
		return *e, nil
	}
	return models.Entry{}, entry.ErrNotFound
}

func (f *fakeEntryStore) ListByContest(ctx context.Context, contestID uuid.UUID, statuses []string) ([]models.Entry, error) {
	var out []models.Entry
	for _, e := range f.entries {
		if e.ContestID == contestID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEntryStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	e, ok := f.entries[id]
	if !ok {
		return entry.ErrNotFound
	}
	e.Status = status
	return nil
}

func (f *fakeEntryStore) UpdateAward(ctx context.Context, id uuid.UUID, label string) error {
	e, ok := f.entries[id]
	if !ok {
		return entry.ErrNotFound
	}
	e.AwardLabel = label
	return nil
}

func (f *fakeEntryStore) Upsert(ctx context.Context, e models.Entry) (bool, error) {
	existing := f.byExternalID(e.ExternalID)
	if existing == nil {
		_, err := f.Create(ctx, e)
		return true, err
	}
	existing.Caption = e.Caption
	existing.MediaURL = e.MediaURL
	existing.Permalink = e.Permalink
	existing.AuthorName = e.AuthorName
	existing.LikeCount = e.LikeCount
	return false, nil
}

func (f *fakeEntryStore) AddLikeCount(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	e, ok := f.entries[id]
	if !ok {
		return 0, entry.ErrNotFound
	}
	e.LikeCount += delta
	return e.LikeCount, nil
}

func (f *fakeEntryStore) SetLikeCount(ctx context.Context, id uuid.UUID, count int) error {
	e, ok := f.entries[id]
	if !ok {
		return entry.ErrNotFound
	}
	e.LikeCount = count
	return nil
}

type fakeLogStore struct {
	logs []models.CollectionLog
}

func (f *fakeLogStore) Append(ctx context.Context, log models.CollectionLog) (models.CollectionLog, error) {
	log.ID = uuid.New()
	log.CollectedAt = time.Now().UTC()
	f.logs = append(f.logs, log)
	return log, nil
}

func (f *fakeLogStore) ListByContest(ctx context.Context, contestID uuid.UUID, limit int) ([]models.CollectionLog, error) {
	return f.logs, nil
}

func testScreener(t *testing.T) *screening.Screener {
	t.Helper()
	s, err := screening.NewScreener(screening.DefaultRules())
	if err != nil {
		t.Fatalf("failed to build screener: %v", err)
	}
	return s
}

func testContest() models.Contest {
	id := uuid.New()
	return models.Contest{
		ID:        id,
		Status:    contest.StatusActive,
		StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		Categories: []models.Category{
			{ID: uuid.New(), ContestID: id, Name: "Sunset", Hashtag: "sunsetfest"},
		},
	}
}

func mediaItem(id string) MediaItem {
	return MediaItem{
		ID:        id,
		MediaURL:  "https://cdn.example.com/" + id + ".jpg",
		Permalink: "https://media.example.com/p/" + id,
		Caption:   "golden hour #sunsetfest",
		Timestamp: "2024-06-10T18:30:00+0000",
		LikeCount: 3,
		Username:  "photofan",
	}
}

func TestCollectIsIdempotentAcrossRuns(t *testing.T) {
	c := testContest()
	source := newFakeMediaSource()
	source.tagIDs["sunsetfest"] = "tag-1"
	source.media["tag-1"] = []MediaItem{mediaItem("post-1"), mediaItem("post-2")}

	entries := newFakeEntryStore()
	logs := &fakeLogStore{}
	svc := NewService(source, newFakeContestStore(c), entries, logs, testScreener(t), nil)

	first, err := svc.CollectForContest(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.PostsAdded != 2 || first.PostsUpdated != 0 {
		t.Fatalf("expected 2 added on first run, got %+v", first)
	}

	second, err := svc.CollectForContest(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.PostsAdded != 0 || second.PostsUpdated != 2 {
		t.Fatalf("expected 0 added and 2 updated on second run, got %+v", second)
	}
	if len(entries.entries) != 2 {
		t.Fatalf("expected 2 entries total, got %d", len(entries.entries))
	}
	if len(logs.logs) != 2 {
		t.Fatalf("expected one log row per run, got %d", len(logs.logs))
	}
}

func TestCollectPreservesModerationOnRefetch(t *testing.T) {
	c := testContest()
	source := newFakeMediaSource()
	source.tagIDs["sunsetfest"] = "tag-1"
	source.media["tag-1"] = []MediaItem{mediaItem("post-1")}

	entries := newFakeEntryStore()
	svc := NewService(source, newFakeContestStore(c), entries, &fakeLogStore{}, testScreener(t), nil)

	if _, err := svc.CollectForContest(context.Background(), c.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := entries.byExternalID("post-1")
	if stored == nil || stored.Status != entry.StatusPending {
		t.Fatalf("expected pending entry after first run, got %+v", stored)
	}
	stored.Status = entry.StatusWinner
	stored.AwardLabel = entry.AwardGold

	refreshed := mediaItem("post-1")
	refreshed.Caption = "golden hour, edited #sunsetfest"
	refreshed.LikeCount = 40
	source.media["tag-1"] = []MediaItem{refreshed}

	if _, err := svc.CollectForContest(context.Background(), c.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored = entries.byExternalID("post-1")
	if stored.Status != entry.StatusWinner || stored.AwardLabel != entry.AwardGold {
		t.Fatalf("moderation must survive a re-fetch, got status=%s award=%s", stored.Status, stored.AwardLabel)
	}
	if stored.Caption != refreshed.Caption || stored.LikeCount != 40 {
		t.Fatal("mutable columns must still refresh")
	}
}

func TestCollectIsolatesHashtagFailures(t *testing.T) {
	c := testContest()
	c.Settings = map[string]interface{}{"hashtags": []interface{}{"brokentag", "sunsetfest"}}

	source := newFakeMediaSource()
	source.failLookup["brokentag"] = errors.New("upstream 500")
	source.tagIDs["sunsetfest"] = "tag-1"
	source.media["tag-1"] = []MediaItem{mediaItem("post-1")}

	entries := newFakeEntryStore()
	logs := &fakeLogStore{}
	svc := NewService(source, newFakeContestStore(c), entries, logs, testScreener(t), nil)

	summary, err := svc.CollectForContest(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("a failing hashtag must not fail the run: %v", err)
	}
	if len(summary.Errors) != 1 {
		t.Fatalf("expected 1 recorded error, got %v", summary.Errors)
	}
	if summary.PostsAdded != 1 {
		t.Fatalf("remaining hashtags must still be processed, got %+v", summary)
	}
	if len(logs.logs) != 1 || logs.logs[0].Errors == nil {
		t.Fatal("expected a log row carrying the hashtag error")
	}
}

func TestCollectMissingCredentialsIsFatal(t *testing.T) {
	c := testContest()
	source := newFakeMediaSource()
	source.configured = false

	logs := &fakeLogStore{}
	svc := NewService(source, newFakeContestStore(c), newFakeEntryStore(), logs, testScreener(t), nil)

	if _, err := svc.CollectForContest(context.Background(), c.ID); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if len(logs.logs) != 0 {
		t.Fatal("a run that never started must not leave a log row")
	}
}

func TestCollectSkipsOutOfWindowInvalidAndScreenedItems(t *testing.T) {
	c := testContest()
	source := newFakeMediaSource()
	source.tagIDs["sunsetfest"] = "tag-1"

	early := mediaItem("post-early")
	early.Timestamp = "2024-05-01T12:00:00+0000"
	invalid := mediaItem("post-invalid")
	invalid.MediaURL = ""
	spam := mediaItem("post-spam")
	spam.Caption = "vote for me, full set at bit.ly/abc"
	keeper := mediaItem("post-keeper")
	source.media["tag-1"] = []MediaItem{early, invalid, spam, keeper}

	entries := newFakeEntryStore()
	svc := NewService(source, newFakeContestStore(c), entries, &fakeLogStore{}, testScreener(t), nil)

	summary, err := svc.CollectForContest(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.PostsFound != 4 {
		t.Fatalf("expected all fetched items counted as found, got %d", summary.PostsFound)
	}
	if summary.PostsAdded != 1 {
		t.Fatalf("expected only the in-window clean item added, got %+v", summary)
	}
	if entries.byExternalID("post-keeper") == nil {
		t.Fatal("keeper item missing")
	}
}

func TestCollectAssignsMatchingCategory(t *testing.T) {
	c := testContest()
	source := newFakeMediaSource()
	source.tagIDs["sunsetfest"] = "tag-1"
	source.media["tag-1"] = []MediaItem{mediaItem("post-1")}

	entries := newFakeEntryStore()
	svc := NewService(source, newFakeContestStore(c), entries, &fakeLogStore{}, testScreener(t), nil)

	if _, err := svc.CollectForContest(context.Background(), c.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := entries.byExternalID("post-1")
	if stored.CategoryID == nil || *stored.CategoryID != c.Categories[0].ID {
		t.Fatalf("expected entry assigned to the sunset category, got %v", stored.CategoryID)
	}
}

func TestCollectAllCoversActiveContestsOnly(t *testing.T) {
	active := testContest()
	draft := testContest()
	draft.Status = contest.StatusDraft

	source := newFakeMediaSource()
	source.tagIDs["sunsetfest"] = "tag-1"
	source.media["tag-1"] = []MediaItem{mediaItem("post-1")}

	svc := NewService(source, newFakeContestStore(active, draft), newFakeEntryStore(), &fakeLogStore{}, testScreener(t), nil)

	summaries, err := svc.CollectAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ContestID != active.ID {
		t.Fatalf("expected exactly the active contest collected, got %+v", summaries)
	}
}
