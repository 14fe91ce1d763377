package entry

import (
	"context"
	"errors"
	"time"

	"github.com/framefest/platform/pkg/common/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("entry not found")

// Store is the persistence surface shared by the moderation engine, the vote
// engine (counter side) and the ingestion pipeline (upsert side).
type Store interface {
	Create(ctx context.Context, e models.Entry) (models.Entry, error)
	Get(ctx context.Context, id uuid.UUID) (models.Entry, error)
	GetByExternalID(ctx context.Context, externalID string) (models.Entry, error)
	ListByContest(ctx context.Context, contestID uuid.UUID, statuses []string) ([]models.Entry, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateAward(ctx context.Context, id uuid.UUID, label string) error
	// Upsert writes an externally sourced entry keyed by its external id.
	// Inserts carry status pending; updates only touch the mutable columns and
	// never the moderation status or award label.
	Upsert(ctx context.Context, e models.Entry) (created bool, err error)
	// AddLikeCount applies an atomic delta floored at zero and returns the
	// resulting counter value.
	AddLikeCount(ctx context.Context, id uuid.UUID, delta int) (int, error)
	SetLikeCount(ctx context.Context, id uuid.UUID, count int) error
}

type entryModel struct {
	ID          uuid.UUID  `gorm:"primaryKey;column:id"`
	ContestID   uuid.UUID  `gorm:"column:contest_id;index"`
	CategoryID  *uuid.UUID `gorm:"column:category_id;index"`
	MediaURL    string     `gorm:"column:media_url"`
	Permalink   string     `gorm:"column:permalink"`
	AuthorName  string     `gorm:"column:author_name"`
	Caption     string     `gorm:"column:caption;type:text"`
	LikeCount   int        `gorm:"column:like_count"`
	Status      string     `gorm:"column:status;index"`
	AwardLabel  string     `gorm:"column:award_label"`
	ExternalID  *string    `gorm:"column:external_id;uniqueIndex"`
	CollectedAt time.Time  `gorm:"column:collected_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (entryModel) TableName() string { return "entries" }

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&entryModel{})
}

func (r *Repository) Create(ctx context.Context, e models.Entry) (models.Entry, error) {
	now := time.Now().UTC()
	row := toEntryModel(e)
	row.ID = uuid.New()
	row.CollectedAt = now
	row.UpdatedAt = now
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.Entry{}, err
	}
	return toEntry(row), nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (models.Entry, error) {
	var row entryModel
	result := r.db.WithContext(ctx).First(&row, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return models.Entry{}, ErrNotFound
	}
	if result.Error != nil {
		return models.Entry{}, result.Error
	}
	return toEntry(row), nil
}

func (r *Repository) GetByExternalID(ctx context.Context, externalID string) (models.Entry, error) {
	var row entryModel
	result := r.db.WithContext(ctx).First(&row, "external_id = ?", externalID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return models.Entry{}, ErrNotFound
	}
	if result.Error != nil {
		return models.Entry{}, result.Error
	}
	return toEntry(row), nil
}

func (r *Repository) ListByContest(ctx context.Context, contestID uuid.UUID, statuses []string) ([]models.Entry, error) {
	query := r.db.WithContext(ctx).Where("contest_id = ?", contestID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var rows []entryModel
	if err := query.Order("like_count DESC, collected_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]models.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, toEntry(row))
	}
	return entries, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result := r.db.WithContext(ctx).Model(&entryModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) UpdateAward(ctx context.Context, id uuid.UUID, label string) error {
	result := r.db.WithContext(ctx).Model(&entryModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"award_label": label,
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Upsert(ctx context.Context, e models.Entry) (bool, error) {
	if e.ExternalID == "" {
		return false, errors.New("upsert requires an external id")
	}

	now := time.Now().UTC()
	_, err := r.GetByExternalID(ctx, e.ExternalID)
	switch {
	case errors.Is(err, ErrNotFound):
		row := toEntryModel(e)
		row.ID = uuid.New()
		row.Status = e.Status
		row.CollectedAt = now
		row.UpdatedAt = now
		// A racing duplicate insert degrades to a mutable-column update at
		// the external_id constraint instead of failing the run.
		err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"caption", "media_url", "permalink", "author_name", "like_count", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return false, err
		}
		return true, nil
	case err != nil:
		return false, err
	}

	err = r.db.WithContext(ctx).Model(&entryModel{}).
		Where("external_id = ?", e.ExternalID).
		Updates(map[string]interface{}{
			"caption":     e.Caption,
			"media_url":   e.MediaURL,
			"permalink":   e.Permalink,
			"author_name": e.AuthorName,
			"like_count":  e.LikeCount,
			"updated_at":  now,
		}).Error
	return false, err
}

func (r *Repository) AddLikeCount(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	result := r.db.WithContext(ctx).Model(&entryModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"like_count": gorm.Expr("GREATEST(like_count + ?, 0)", delta),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrNotFound
	}

	var count int
	err := r.db.WithContext(ctx).Model(&entryModel{}).
		Select("like_count").
		Where("id = ?", id).
		Scan(&count).Error
	return count, err
}

func (r *Repository) SetLikeCount(ctx context.Context, id uuid.UUID, count int) error {
	result := r.db.WithContext(ctx).Model(&entryModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"like_count": count,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func toEntryModel(e models.Entry) entryModel {
	var externalID *string
	if e.ExternalID != "" {
		id := e.ExternalID
		externalID = &id
	}
	return entryModel{
		ID:          e.ID,
		ContestID:   e.ContestID,
		CategoryID:  e.CategoryID,
		MediaURL:    e.MediaURL,
		Permalink:   e.Permalink,
		AuthorName:  e.AuthorName,
		Caption:     e.Caption,
		LikeCount:   e.LikeCount,
		Status:      e.Status,
		AwardLabel:  e.AwardLabel,
		ExternalID:  externalID,
		CollectedAt: e.CollectedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toEntry(row entryModel) models.Entry {
	externalID := ""
	if row.ExternalID != nil {
		externalID = *row.ExternalID
	}
	return models.Entry{
		ID:          row.ID,
		ContestID:   row.ContestID,
		CategoryID:  row.CategoryID,
		MediaURL:    row.MediaURL,
		Permalink:   row.Permalink,
		AuthorName:  row.AuthorName,
		Caption:     row.Caption,
		LikeCount:   row.LikeCount,
		Status:      row.Status,
		AwardLabel:  row.AwardLabel,
		ExternalID:  externalID,
		CollectedAt: row.CollectedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
