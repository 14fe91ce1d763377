package vote

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDuplicateVote surfaces the (entry_id, voter_identifier) uniqueness
// constraint: the second of two racing inserts fails here cleanly instead of
// corrupting the counter.
var ErrDuplicateVote = errors.New("vote already exists")

type Store interface {
	Insert(ctx context.Context, entryID uuid.UUID, voterID string) error
	Delete(ctx context.Context, entryID uuid.UUID, voterID string) (bool, error)
	Exists(ctx context.Context, entryID uuid.UUID, voterID string) (bool, error)
	Count(ctx context.Context, entryID uuid.UUID) (int, error)
}

type voteModel struct {
	ID              uuid.UUID `gorm:"primaryKey;column:id"`
	EntryID         uuid.UUID `gorm:"column:entry_id;uniqueIndex:idx_votes_entry_voter"`
	VoterIdentifier string    `gorm:"column:voter_identifier;size:128;uniqueIndex:idx_votes_entry_voter"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (voteModel) TableName() string { return "votes" }

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&voteModel{})
}

func (r *Repository) Insert(ctx context.Context, entryID uuid.UUID, voterID string) error {
	row := voteModel{
		ID:              uuid.New(),
		EntryID:         entryID,
		VoterIdentifier: voterID,
		CreatedAt:       time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateVote
	}
	return err
}

func (r *Repository) Delete(ctx context.Context, entryID uuid.UUID, voterID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("entry_id = ? AND voter_identifier = ?", entryID, voterID).
		Delete(&voteModel{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) Exists(ctx context.Context, entryID uuid.UUID, voterID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&voteModel{}).
		Where("entry_id = ? AND voter_identifier = ?", entryID, voterID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) Count(ctx context.Context, entryID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&voteModel{}).
		Where("entry_id = ?", entryID).
		Count(&count).Error
	return int(count), err
}
