package collector

import (
	"context"
	"time"

	"github.com/framefest/platform/pkg/common/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LogStore is the append-only audit trail of collection runs.
type LogStore interface {
	Append(ctx context.Context, log models.CollectionLog) (models.CollectionLog, error)
	ListByContest(ctx context.Context, contestID uuid.UUID, limit int) ([]models.CollectionLog, error)
}

type collectionLogModel struct {
	ID           uuid.UUID `gorm:"primaryKey;column:id"`
	ContestID    uuid.UUID `gorm:"column:contest_id;index"`
	PostsFound   int       `gorm:"column:posts_found"`
	PostsAdded   int       `gorm:"column:posts_added"`
	PostsUpdated int       `gorm:"column:posts_updated"`
	Errors       *string   `gorm:"column:errors;type:text"`
	CollectedAt  time.Time `gorm:"column:collected_at;index"`
}

func (collectionLogModel) TableName() string { return "collection_logs" }

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&collectionLogModel{})
}

func (r *Repository) Append(ctx context.Context, log models.CollectionLog) (models.CollectionLog, error) {
	row := collectionLogModel{
		ID:           uuid.New(),
		ContestID:    log.ContestID,
		PostsFound:   log.PostsFound,
		PostsAdded:   log.PostsAdded,
		PostsUpdated: log.PostsUpdated,
		Errors:       log.Errors,
		CollectedAt:  time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.CollectionLog{}, err
	}
	return toLog(row), nil
}

func (r *Repository) ListByContest(ctx context.Context, contestID uuid.UUID, limit int) ([]models.CollectionLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var rows []collectionLogModel
	err := r.db.WithContext(ctx).
		Where("contest_id = ?", contestID).
		Order("collected_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	logs := make([]models.CollectionLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, toLog(row))
	}
	return logs, nil
}

func toLog(row collectionLogModel) models.CollectionLog {
	return models.CollectionLog{
		ID:           row.ID,
		ContestID:    row.ContestID,
		PostsFound:   row.PostsFound,
		PostsAdded:   row.PostsAdded,
		PostsUpdated: row.PostsUpdated,
		Errors:       row.Errors,
		CollectedAt:  row.CollectedAt,
	}
}
