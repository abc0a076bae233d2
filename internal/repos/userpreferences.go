package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/showtrail/agjournal-backend/internal/logger"
	"github.com/showtrail/agjournal-backend/internal/types"
)

type UserPreferencesRepo interface {
	Create(ctx context.Context, tx *gorm.DB, prefs *types.UserPreferences) (*types.UserPreferences, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserPreferences, error)
	Save(ctx context.Context, tx *gorm.DB, prefs *types.UserPreferences) error
}

type userPreferencesRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserPreferencesRepo(db *gorm.DB, baseLog *logger.Logger) UserPreferencesRepo {
	repoLog := baseLog.With("repo", "UserPreferencesRepo")
	return &userPreferencesRepo{db: db, log: repoLog}
}

func (r *userPreferencesRepo) Create(ctx context.Context, tx *gorm.DB, prefs *types.UserPreferences) (*types.UserPreferences, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if prefs == nil {
		return nil, nil
	}

	if err := transaction.WithContext(ctx).Create(prefs).Error; err != nil {
		return nil, err
	}
	return prefs, nil
}

// GetByUserID returns (nil, nil) when the user has no preferences row yet.
func (r *userPreferencesRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserPreferences, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil {
		return nil, nil
	}

	var result types.UserPreferences
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *userPreferencesRepo) Save(ctx context.Context, tx *gorm.DB, prefs *types.UserPreferences) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if prefs == nil {
		return nil
	}

	if err := transaction.WithContext(ctx).Save(prefs).Error; err != nil {
		return err
	}
	return nil
}
