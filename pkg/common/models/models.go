package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // entry.moderated, entry.vote, collection.completed, collect.requested
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// Contest lifecycle
type Contest struct {
	ID          uuid.UUID              `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	StartDate   time.Time              `json:"start_date"`
	EndDate     time.Time              `json:"end_date"`
	VotingStart *time.Time             `json:"voting_start,omitempty"`
	VotingEnd   *time.Time             `json:"voting_end,omitempty"`
	Status      string                 `json:"status"`
	Settings    map[string]interface{} `json:"settings,omitempty"`
	ArchivedAt  *time.Time             `json:"archived_at,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	Categories  []Category             `json:"categories,omitempty"`
}

// VotingEnabled reports the settings.is_voting_enabled flag; absent means true.
func (c Contest) VotingEnabled() bool {
	if c.Settings == nil {
		return true
	}
	if v, ok := c.Settings["is_voting_enabled"].(bool); ok {
		return v
	}
	return true
}

// Hashtags returns the contest-level hashtag list from settings, falling back
// to the hashtags of its categories.
func (c Contest) Hashtags() []string {
	var tags []string
	if raw, ok := c.Settings["hashtags"].([]interface{}); ok {
		for _, t := range raw {
			if s, ok := t.(string); ok && strings.TrimSpace(s) != "" {
				tags = append(tags, strings.TrimSpace(s))
			}
		}
	}
	if len(tags) > 0 {
		return tags
	}
	for _, cat := range c.Categories {
		if strings.TrimSpace(cat.Hashtag) != "" {
			tags = append(tags, strings.TrimSpace(cat.Hashtag))
		}
	}
	return tags
}

type Category struct {
	ID        uuid.UUID `json:"id"`
	ContestID uuid.UUID `json:"contest_id"`
	Name      string    `json:"name"`
	Hashtag   string    `json:"hashtag,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateContestRequest struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	StartDate   time.Time              `json:"start_date"`
	EndDate     time.Time              `json:"end_date"`
	VotingStart *time.Time             `json:"voting_start,omitempty"`
	VotingEnd   *time.Time             `json:"voting_end,omitempty"`
	Status      string                 `json:"status,omitempty"`
	Settings    map[string]interface{} `json:"settings,omitempty"`
}

type UpdateContestRequest struct {
	Title       *string                `json:"title,omitempty"`
	Description *string                `json:"description,omitempty"`
	StartDate   *time.Time             `json:"start_date,omitempty"`
	EndDate     *time.Time             `json:"end_date,omitempty"`
	VotingStart *time.Time             `json:"voting_start,omitempty"`
	VotingEnd   *time.Time             `json:"voting_end,omitempty"`
	Status      *string                `json:"status,omitempty"`
	Settings    map[string]interface{} `json:"settings,omitempty"`
}

type CreateCategoryRequest struct {
	Name    string `json:"name"`
	Hashtag string `json:"hashtag,omitempty"`
}

// Entries
type Entry struct {
	ID          uuid.UUID  `json:"id"`
	ContestID   uuid.UUID  `json:"contest_id"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	MediaURL    string     `json:"media_url"`
	Permalink   string     `json:"permalink,omitempty"`
	AuthorName  string     `json:"author_name,omitempty"`
	Caption     string     `json:"caption,omitempty"`
	LikeCount   int        `json:"like_count"`
	Status      string     `json:"status"`
	AwardLabel  string     `json:"award_label,omitempty"` // gold, silver, bronze or empty
	ExternalID  string     `json:"external_id,omitempty"`
	CollectedAt time.Time  `json:"collected_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type CreateEntryRequest struct {
	ContestID  uuid.UUID  `json:"contest_id"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	MediaURL   string     `json:"media_url"`
	AuthorName string     `json:"author_name,omitempty"`
	Caption    string     `json:"caption,omitempty"`
}

type BulkStatusRequest struct {
	EntryIDs []uuid.UUID `json:"entry_ids"`
	Status   string      `json:"status"`
}

type BulkStatusFailure struct {
	EntryID uuid.UUID `json:"entry_id"`
	Reason  string    `json:"reason"`
}

// Voting
type VoteResult struct {
	Action    string `json:"action"` // added, removed
	VoteCount int    `json:"vote_count"`
}

// Ingestion
type CollectionSummary struct {
	ContestID    uuid.UUID `json:"contest_id"`
	PostsFound   int       `json:"posts_found"`
	PostsAdded   int       `json:"posts_added"`
	PostsUpdated int       `json:"posts_updated"`
	Errors       []string  `json:"errors,omitempty"`
}

type CollectionLog struct {
	ID           uuid.UUID `json:"id"`
	ContestID    uuid.UUID `json:"contest_id"`
	PostsFound   int       `json:"posts_found"`
	PostsAdded   int       `json:"posts_added"`
	PostsUpdated int       `json:"posts_updated"`
	Errors       *string   `json:"errors,omitempty"`
	CollectedAt  time.Time `json:"collected_at"`
}
