package contest

import (
	"context"
	"errors"
	"time"

	"github.com/framefest/platform/pkg/common/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("contest not found")

// Store is the persistence surface the contest service and the reconciler
// depend on. The gorm-backed Repository is the production implementation;
// tests substitute in-memory fakes.
type Store interface {
	Create(ctx context.Context, c models.Contest) (models.Contest, error)
	Update(ctx context.Context, id uuid.UUID, req models.UpdateContestRequest) (models.Contest, error)
	Get(ctx context.Context, id uuid.UUID) (models.Contest, error)
	List(ctx context.Context, includeArchived bool) ([]models.Contest, error)
	ListByStatus(ctx context.Context, status string) ([]models.Contest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Archive(ctx context.Context, id uuid.UUID) error
	CreateCategory(ctx context.Context, contestID uuid.UUID, req models.CreateCategoryRequest) (models.Category, error)
	ListCategories(ctx context.Context, contestID uuid.UUID) ([]models.Category, error)
}

type contestModel struct {
	ID          uuid.UUID         `gorm:"primaryKey;column:id"`
	Title       string            `gorm:"column:title"`
	Description string            `gorm:"column:description"`
	StartDate   time.Time         `gorm:"column:start_date;index"`
	EndDate     time.Time         `gorm:"column:end_date;index"`
	VotingStart *time.Time        `gorm:"column:voting_start"`
	VotingEnd   *time.Time        `gorm:"column:voting_end"`
	Status      string            `gorm:"column:status;index"`
	Settings    datatypes.JSONMap `gorm:"column:settings"`
	ArchivedAt  *time.Time        `gorm:"column:archived_at"`
	CreatedAt   time.Time         `gorm:"column:created_at"`
	UpdatedAt   time.Time         `gorm:"column:updated_at"`
}

func (contestModel) TableName() string { return "contests" }

type categoryModel struct {
	ID        uuid.UUID `gorm:"primaryKey;column:id"`
	ContestID uuid.UUID `gorm:"column:contest_id;index"`
	Name      string    `gorm:"column:name"`
	Hashtag   string    `gorm:"column:hashtag"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (categoryModel) TableName() string { return "contest_categories" }

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&contestModel{}, &categoryModel{})
}

func (r *Repository) Create(ctx context.Context, c models.Contest) (models.Contest, error) {
	now := time.Now().UTC()
	row := contestModel{
		ID:          uuid.New(),
		Title:       c.Title,
		Description: c.Description,
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		VotingStart: c.VotingStart,
		VotingEnd:   c.VotingEnd,
		Status:      c.Status,
		Settings:    datatypes.JSONMap(c.Settings),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.Contest{}, err
	}
	return toContest(row, nil), nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, req models.UpdateContestRequest) (models.Contest, error) {
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
	}
	if req.VotingStart != nil {
		updates["voting_start"] = *req.VotingStart
	}
	if req.VotingEnd != nil {
		updates["voting_end"] = *req.VotingEnd
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Settings != nil {
		updates["settings"] = datatypes.JSONMap(req.Settings)
	}

	result := r.db.WithContext(ctx).Model(&contestModel{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.Contest{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Contest{}, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (models.Contest, error) {
	var row contestModel
	result := r.db.WithContext(ctx).First(&row, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return models.Contest{}, ErrNotFound
	}
	if result.Error != nil {
		return models.Contest{}, result.Error
	}

	categories, err := r.ListCategories(ctx, id)
	if err != nil {
		return models.Contest{}, err
	}
	return toContest(row, categories), nil
}

func (r *Repository) List(ctx context.Context, includeArchived bool) ([]models.Contest, error) {
	query := r.db.WithContext(ctx).Order("start_date DESC")
	if !includeArchived {
		query = query.Where("archived_at IS NULL")
	}

	var rows []contestModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	contests := make([]models.Contest, 0, len(rows))
	for _, row := range rows {
		contests = append(contests, toContest(row, nil))
	}
	return contests, nil
}

func (r *Repository) ListByStatus(ctx context.Context, status string) ([]models.Contest, error) {
	var rows []contestModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND archived_at IS NULL", status).
		Order("start_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	contests := make([]models.Contest, 0, len(rows))
	for _, row := range rows {
		categories, err := r.ListCategories(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		contests = append(contests, toContest(row, categories))
	}
	return contests, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result := r.db.WithContext(ctx).Model(&contestModel{}).
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

func (r *Repository) Archive(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&contestModel{}).
		Where("id = ? AND archived_at IS NULL", id).
		Updates(map[string]interface{}{
			"archived_at": now,
			"updated_at":  now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) CreateCategory(ctx context.Context, contestID uuid.UUID, req models.CreateCategoryRequest) (models.Category, error) {
	row := categoryModel{
		ID:        uuid.New(),
		ContestID: contestID,
		Name:      req.Name,
		Hashtag:   req.Hashtag,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.Category{}, err
	}
	return toCategory(row), nil
}

func (r *Repository) ListCategories(ctx context.Context, contestID uuid.UUID) ([]models.Category, error) {
	var rows []categoryModel
	err := r.db.WithContext(ctx).
		Where("contest_id = ?", contestID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	categories := make([]models.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, toCategory(row))
	}
	return categories, nil
}

func toContest(row contestModel, categories []models.Category) models.Contest {
	return models.Contest{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		StartDate:   row.StartDate,
		EndDate:     row.EndDate,
		VotingStart: row.VotingStart,
		VotingEnd:   row.VotingEnd,
		Status:      row.Status,
		Settings:    map[string]interface{}(row.Settings),
		ArchivedAt:  row.ArchivedAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		Categories:  categories,
	}
}

func toCategory(row categoryModel) models.Category {
	return models.Category{
		ID:        row.ID,
		ContestID: row.ContestID,
		Name:      row.Name,
		Hashtag:   row.Hashtag,
		CreatedAt: row.CreatedAt,
	}
}
