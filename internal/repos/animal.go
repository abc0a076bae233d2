package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/showtrail/agjournal-backend/internal/logger"
	"github.com/showtrail/agjournal-backend/internal/types"
)

type AnimalRepo interface {
	Create(ctx context.Context, tx *gorm.DB, animals []*types.Animal) ([]*types.Animal, error)
	// GetByIDAndOwner returns (nil, nil) when no animal with that id belongs
	// to the user.
	GetByIDAndOwner(ctx context.Context, tx *gorm.DB, id, ownerUserID uuid.UUID) (*types.Animal, error)
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID) ([]*types.Animal, error)
}

type animalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnimalRepo(db *gorm.DB, baseLog *logger.Logger) AnimalRepo {
	repoLog := baseLog.With("repo", "AnimalRepo")
	return &animalRepo{db: db, log: repoLog}
}

func (r *animalRepo) Create(ctx context.Context, tx *gorm.DB, animals []*types.Animal) ([]*types.Animal, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(animals) == 0 {
		return []*types.Animal{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&animals).Error; err != nil {
		return nil, err
	}
	return animals, nil
}

func (r *animalRepo) GetByIDAndOwner(ctx context.Context, tx *gorm.DB, id, ownerUserID uuid.UUID) (*types.Animal, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil || ownerUserID == uuid.Nil {
		return nil, nil
	}

	var result types.Animal
	if err := transaction.WithContext(ctx).
		Where("id = ? AND owner_user_id = ?", id, ownerUserID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *animalRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID) ([]*types.Animal, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Animal
	if ownerUserID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
