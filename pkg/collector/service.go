package collector

import (
	"context"
	"fmt"
	"strings"

	"github.com/framefest/platform/pkg/common/logger"
	"github.com/framefest/platform/pkg/common/models"
	"github.com/framefest/platform/pkg/contest"
	"github.com/framefest/platform/pkg/entry"
	"github.com/framefest/platform/pkg/observability/metrics"
	"github.com/framefest/platform/pkg/screening"
	"github.com/google/uuid"
)

// MediaSource abstracts the external media API so the pipeline can run
// against a fake in tests.
type MediaSource interface {
	Configured() bool
	LookupTag(ctx context.Context, keyword string) (string, error)
	RecentMedia(ctx context.Context, tagID string) ([]MediaItem, error)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

type Service struct {
	source    MediaSource
	contests  contest.Store
	entries   entry.Store
	logs      LogStore
	screener  *screening.Screener
	publisher EventPublisher
}

func NewService(source MediaSource, contests contest.Store, entries entry.Store, logs LogStore, screener *screening.Screener, publisher EventPublisher) *Service {
	return &Service{
		source:    source,
		contests:  contests,
		entries:   entries,
		logs:      logs,
		screener:  screener,
		publisher: publisher,
	}
}

// CollectForContest runs one ingestion pass for a contest: per hashtag, tag
// lookup and media fetch with per-hashtag error isolation, per-item
// validation and window filtering, then an idempotent upsert keyed by the
// external media id. Exactly one CollectionLog row is appended per run.
//
// Re-fetches only ever refresh mutable columns; a moderation decision made
// between two runs is never reverted.
func (s *Service) CollectForContest(ctx context.Context, contestID uuid.UUID) (models.CollectionSummary, error) {
	if !s.source.Configured() {
		return models.CollectionSummary{}, ErrMissingCredentials
	}

	c, err := s.contests.Get(ctx, contestID)
	if err != nil {
		return models.CollectionSummary{}, err
	}

	summary := models.CollectionSummary{ContestID: c.ID}

	for _, tag := range c.Hashtags() {
		tagID, err := s.source.LookupTag(ctx, tag)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("hashtag '%s': tag lookup failed: %v", tag, err))
			continue
		}

		items, err := s.source.RecentMedia(ctx, tagID)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("hashtag '%s': media fetch failed: %v", tag, err))
			continue
		}

		categoryID := matchCategory(c.Categories, tag)

		for _, item := range items {
			summary.PostsFound++

			if err := item.Validate(); err != nil {
				logger.Log.WithError(err).WithFields(map[string]interface{}{
					"contest_id":  c.ID,
					"external_id": item.ID,
				}).Debug("discarding invalid media item")
				continue
			}

			if types := s.screener.Screen(item.Caption); len(types) > 0 {
				logger.Log.WithFields(map[string]interface{}{
					"contest_id":  c.ID,
					"external_id": item.ID,
					"rule_types":  types,
				}).Info("skipping screened media item")
				continue
			}

			ts, _ := item.Time()
			if ts.Before(c.StartDate) || ts.After(c.EndDate) {
				continue
			}

			created, err := s.entries.Upsert(ctx, models.Entry{
				ContestID:  c.ID,
				CategoryID: categoryID,
				MediaURL:   item.MediaURL,
				Permalink:  item.Permalink,
				AuthorName: item.Username,
				Caption:    item.Caption,
				LikeCount:  item.LikeCount,
				Status:     entry.StatusPending,
				ExternalID: item.ID,
			})
			if err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("post '%s': upsert failed: %v", item.ID, err))
				continue
			}
			if created {
				summary.PostsAdded++
			} else {
				summary.PostsUpdated++
			}
		}
	}

	var errText *string
	if len(summary.Errors) > 0 {
		joined := strings.Join(summary.Errors, "; ")
		errText = &joined
	}

	if _, err := s.logs.Append(ctx, models.CollectionLog{
		ContestID:    c.ID,
		PostsFound:   summary.PostsFound,
		PostsAdded:   summary.PostsAdded,
		PostsUpdated: summary.PostsUpdated,
		Errors:       errText,
	}); err != nil {
		logger.Log.WithError(err).WithField("contest_id", c.ID).Error("failed to append collection log")
	}

	metrics.ObserveCollectionRun(summary.PostsFound, summary.PostsAdded, summary.PostsUpdated, len(summary.Errors))
	s.publish(ctx, summary)

	logger.Log.WithFields(map[string]interface{}{
		"contest_id":    c.ID,
		"posts_found":   summary.PostsFound,
		"posts_added":   summary.PostsAdded,
		"posts_updated": summary.PostsUpdated,
		"errors":        len(summary.Errors),
	}).Info("collection run completed")

	return summary, nil
}

// CollectAll runs the pipeline for every contest whose persisted status is
// active. The persisted status is deliberate here: collection is an operator
// concern and follows what admins have switched on, not the derived phase.
func (s *Service) CollectAll(ctx context.Context) ([]models.CollectionSummary, error) {
	if !s.source.Configured() {
		return nil, ErrMissingCredentials
	}

	contests, err := s.contests.ListByStatus(ctx, contest.StatusActive)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.CollectionSummary, 0, len(contests))
	for _, c := range contests {
		summary, err := s.CollectForContest(ctx, c.ID)
		if err != nil {
			logger.Log.WithError(err).WithField("contest_id", c.ID).Error("collection run failed for contest")
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *Service) Logs(ctx context.Context, contestID uuid.UUID, limit int) ([]models.CollectionLog, error) {
	return s.logs.ListByContest(ctx, contestID, limit)
}

// matchCategory picks the first category whose hashtag is a case-insensitive
// substring of the collected hashtag. No match leaves the entry uncategorized.
func matchCategory(categories []models.Category, hashtag string) *uuid.UUID {
	needle := strings.ToLower(strings.TrimSpace(hashtag))
	for _, cat := range categories {
		catTag := strings.ToLower(strings.TrimSpace(cat.Hashtag))
		if catTag == "" {
			continue
		}
		if strings.Contains(needle, catTag) {
			id := cat.ID
			return &id
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, summary models.CollectionSummary) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishEvent(ctx, "collection.completed", "collector-service", map[string]interface{}{
		"contest_id":    summary.ContestID.String(),
		"posts_found":   summary.PostsFound,
		"posts_added":   summary.PostsAdded,
		"posts_updated": summary.PostsUpdated,
		"errors":        summary.Errors,
	})
	if err != nil {
		logger.Log.WithError(err).Warn("failed to publish collection event")
	}
}
