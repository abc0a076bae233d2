package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/showtrail/agjournal-backend/internal/logger"
	"github.com/showtrail/agjournal-backend/internal/types"
)

type AnalyticsEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, events []*types.AnalyticsEvent) ([]*types.AnalyticsEvent, error)
	CountByUserAndTypeBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, eventType string, from, to time.Time) (int64, error)
	GetByUserSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, limit int) ([]*types.AnalyticsEvent, error)
	GetByTemplateBetween(ctx context.Context, tx *gorm.DB, templateID uuid.UUID, from, to time.Time, limit int) ([]*types.AnalyticsEvent, error)
	CountByTemplateBetween(ctx context.Context, tx *gorm.DB, templateID uuid.UUID, from, to time.Time) (int64, error)
	CountByTemplateAndTypeBetween(ctx context.Context, tx *gorm.DB, templateID uuid.UUID, eventType string, from, to time.Time) (int64, error)
}

type analyticsEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnalyticsEventRepo(db *gorm.DB, baseLog *logger.Logger) AnalyticsEventRepo {
	repoLog := baseLog.With("repo", "AnalyticsEventRepo")
	return &analyticsEventRepo{db: db, log: repoLog}
}

func (r *analyticsEventRepo) Create(ctx context.Context, tx *gorm.DB, events []*types.AnalyticsEvent) ([]*types.AnalyticsEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(events) == 0 {
		return []*types.AnalyticsEvent{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *analyticsEventRepo) CountByUserAndTypeBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, eventType string, from, to time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil {
		return 0, nil
	}

	var n int64
	if err := transaction.WithContext(ctx).
		Model(&types.AnalyticsEvent{}).
		Where("user_id = ? AND event_type = ? AND created_at >= ? AND created_at < ?", userID, eventType, from, to).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *analyticsEventRepo) GetByUserSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, limit int) ([]*types.AnalyticsEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AnalyticsEvent
	if userID == uuid.Nil {
		return results, nil
	}

	q := transaction.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *analyticsEventRepo) GetByTemplateBetween(ctx context.Context, tx *gorm.DB, templateID uuid.UUID, from, to time.Time, limit int) ([]*types.AnalyticsEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AnalyticsEvent
	if templateID == uuid.Nil {
		return results, nil
	}

	q := transaction.WithContext(ctx).
		Where("template_id = ? AND created_at >= ? AND created_at < ?", templateID, from, to).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *analyticsEventRepo) CountByTemplateBetween(ctx context.Context, tx *gorm.DB, templateID uuid.UUID, from, to time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if templateID == uuid.Nil {
		return 0, nil
	}

	var n int64
	if err := transaction.WithContext(ctx).
		Model(&types.AnalyticsEvent{}).
		Where("template_id = ? AND created_at >= ? AND created_at < ?", templateID, from, to).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *analyticsEventRepo) CountByTemplateAndTypeBetween(ctx context.Context, tx *gorm.DB, templateID uuid.UUID, eventType string, from, to time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if templateID == uuid.Nil {
		return 0, nil
	}

	var n int64
	if err := transaction.WithContext(ctx).
		Model(&types.AnalyticsEvent{}).
		Where("template_id = ? AND event_type = ? AND created_at >= ? AND created_at < ?", templateID, eventType, from, to).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
