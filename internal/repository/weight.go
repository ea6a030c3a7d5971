package repository

import (
	"context"

	"github.com/vladimiradmaev/macro-tracker/internal/database"
	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WeightRepository struct {
	db *gorm.DB
}

func NewWeightRepository(db *gorm.DB) *WeightRepository {
	return &WeightRepository{db: db}
}

// Upsert writes the entry, replacing any earlier weigh-in on the same date
func (r *WeightRepository) Upsert(ctx context.Context, entry domain.WeightEntry) error {
	return upsertWeight(r.db.WithContext(ctx), entry)
}

func upsertWeight(db *gorm.DB, entry domain.WeightEntry) error {
	row := database.WeightEntry{UserID: entry.UserID, Date: entry.Date, Weight: entry.Weight}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"weight", "updated_at"}),
	}).Create(&row).Error
	return translate(err, "upsert weight")
}

// ListByUser returns the history ordered by date
func (r *WeightRepository) ListByUser(ctx context.Context, userID string) ([]domain.WeightEntry, error) {
	var rows []database.WeightEntry
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, translate(err, "list weights")
	}
	entries := make([]domain.WeightEntry, len(rows))
	for i, row := range rows {
		entries[i] = domain.WeightEntry{UserID: row.UserID, Date: row.Date, Weight: row.Weight}
	}
	return entries, nil
}
