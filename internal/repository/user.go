package repository

import (
	"context"
	"strings"

	"github.com/vladimiradmaev/macro-tracker/internal/database"
	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	"gorm.io/gorm"
)

// UserRepository handles user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func toUserRow(p *domain.UserProfile, passwordHash string) *database.User {
	row := &database.User{
		ID:           p.ID,
		PasswordHash: passwordHash,
		DisplayName:  p.DisplayName,
		PhotoURL:     p.PhotoURL,
		Height:       p.Height,
		Weight:       p.Weight,
		TelegramID:   p.TelegramID,
		Goals:        p.Goals,
	}
	if p.Email != "" {
		email := strings.ToLower(p.Email)
		row.Email = &email
	}
	return row
}

func toProfile(row *database.User) *domain.UserProfile {
	p := &domain.UserProfile{
		ID:          row.ID,
		DisplayName: row.DisplayName,
		PhotoURL:    row.PhotoURL,
		Height:      row.Height,
		Weight:      row.Weight,
		Goals:       row.Goals,
		TelegramID:  row.TelegramID,
		CreatedAt:   row.CreatedAt,
	}
	if row.Email != nil {
		p.Email = *row.Email
	}
	return p
}

// CreateWithCredentials stores a new profile together with its password hash
func (r *UserRepository) CreateWithCredentials(ctx context.Context, profile *domain.UserProfile, passwordHash string) error {
	row := toUserRow(profile, passwordHash)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return translate(err, "create user")
	}
	profile.CreatedAt = row.CreatedAt
	return nil
}

// Create stores a profile without login credentials
func (r *UserRepository) Create(ctx context.Context, profile *domain.UserProfile) error {
	return r.CreateWithCredentials(ctx, profile, "")
}

// GetByID gets a profile by user id
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var row database.User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&row).Error; err != nil {
		return nil, translate(err, "get user")
	}
	return toProfile(&row), nil
}

// GetByTelegramID gets a profile linked to a Telegram account
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.UserProfile, error) {
	var row database.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&row).Error; err != nil {
		return nil, translate(err, "get user by telegram id")
	}
	return toProfile(&row), nil
}

// GetCredentials gets the login record for an email address
func (r *UserRepository) GetCredentials(ctx context.Context, email string) (*domain.Credentials, error) {
	var row database.User
	if err := r.db.WithContext(ctx).
		Select("id", "email", "password_hash").
		Where("email = ?", strings.ToLower(email)).
		First(&row).Error; err != nil {
		return nil, translate(err, "get credentials")
	}
	return &domain.Credentials{UserID: row.ID, Email: *row.Email, PasswordHash: row.PasswordHash}, nil
}

// UpdateProfile updates the editable profile fields. A nil height is left
// unchanged; a weigh-in also lands in the weight history, atomically.
func (r *UserRepository) UpdateProfile(ctx context.Context, userID string, displayName string, height *float64, weighIn *domain.WeightEntry) error {
	updates := map[string]interface{}{
		"display_name": displayName,
	}
	if height != nil {
		updates["height"] = *height
	}
	if weighIn == nil {
		return updateUser(r.db.WithContext(ctx), userID, updates, "update profile")
	}

	updates["weight"] = weighIn.Weight
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateUser(tx, userID, updates, "update profile"); err != nil {
			return err
		}
		return upsertWeight(tx, *weighIn)
	})
}

// UpdateGoals overwrites the user's goals
func (r *UserRepository) UpdateGoals(ctx context.Context, userID string, goals domain.Goals) error {
	return updateUser(r.db.WithContext(ctx), userID, map[string]interface{}{
		"goal_calories": goals.Calories,
		"goal_protein":  goals.Protein,
		"goal_carbs":    goals.Carbs,
		"goal_fat":      goals.Fat,
		"goal_fiber":    goals.Fiber,
	}, "update goals")
}

func updateUser(db *gorm.DB, userID string, updates map[string]interface{}, op string) error {
	result := db.Model(&database.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return translate(result.Error, op)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
