package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/showtrail/agjournal-backend/internal/logger"
	"github.com/showtrail/agjournal-backend/internal/types"
)

// CatalogFilter narrows the template catalog to rows applicable to one
// suggestion request. Empty dimensions are not filtered; template rows with
// "any" in a dimension match every request.
type CatalogFilter struct {
	Category        string
	Species         string
	AgeGroup        string
	CompetencyLevel string
	WeatherPattern  string
	Limit           int
}

type SuggestionTemplateRepo interface {
	Create(ctx context.Context, tx *gorm.DB, templates []*types.SuggestionTemplate) ([]*types.SuggestionTemplate, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.SuggestionTemplate, error)
	QueryCatalog(ctx context.Context, tx *gorm.DB, filter CatalogFilter) ([]*types.SuggestionTemplate, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	IncrementAggregates(ctx context.Context, tx *gorm.DB, id uuid.UUID, accepted bool, rating *int) error
}

type suggestionTemplateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSuggestionTemplateRepo(db *gorm.DB, baseLog *logger.Logger) SuggestionTemplateRepo {
	repoLog := baseLog.With("repo", "SuggestionTemplateRepo")
	return &suggestionTemplateRepo{db: db, log: repoLog}
}

func (r *suggestionTemplateRepo) Create(ctx context.Context, tx *gorm.DB, templates []*types.SuggestionTemplate) ([]*types.SuggestionTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(templates) == 0 {
		return []*types.SuggestionTemplate{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *suggestionTemplateRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.SuggestionTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SuggestionTemplate
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *suggestionTemplateRepo) QueryCatalog(ctx context.Context, tx *gorm.DB, filter CatalogFilter) ([]*types.SuggestionTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).
		Model(&types.SuggestionTemplate{}).
		Where("is_active = ?", true)

	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Species != "" {
		q = q.Where("(species = ? OR species = 'any')", filter.Species)
	}
	if filter.AgeGroup != "" {
		q = q.Where("(age_group = ? OR age_group = 'any')", filter.AgeGroup)
	}
	if filter.CompetencyLevel != "" {
		q = q.Where("(competency_level = ? OR competency_level = 'any')", filter.CompetencyLevel)
	}
	if filter.WeatherPattern != "" {
		q = q.Where("(weather_pattern = ? OR weather_pattern = 'any')", filter.WeatherPattern)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var results []*types.SuggestionTemplate
	if err := q.
		Order("success_rate DESC").
		Order("usage_count DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *suggestionTemplateRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var n int64
	if err := transaction.WithContext(ctx).
		Model(&types.SuggestionTemplate{}).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// IncrementAggregates applies one feedback observation to a catalog row in a
// single UPDATE. The derived success_rate and average_rating columns are
// recomputed from the pre-update counters plus the deltas, so concurrent
// feedback submissions never read-modify-write stale aggregates.
func (r *suggestionTemplateRepo) IncrementAggregates(ctx context.Context, tx *gorm.DB, id uuid.UUID, accepted bool, rating *int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil
	}

	acceptedDelta := 0
	if accepted {
		acceptedDelta = 1
	}
	ratingCountDelta := 0
	ratingTotalDelta := 0
	if rating != nil {
		ratingCountDelta = 1
		ratingTotalDelta = *rating
	}

	updates := map[string]interface{}{
		"usage_count":    gorm.Expr("usage_count + 1"),
		"accepted_count": gorm.Expr("accepted_count + ?", acceptedDelta),
		"rating_count":   gorm.Expr("rating_count + ?", ratingCountDelta),
		"rating_total":   gorm.Expr("rating_total + ?", ratingTotalDelta),
		"success_rate":   gorm.Expr("(accepted_count + ?) * 1.0 / (usage_count + 1)", acceptedDelta),
		"average_rating": gorm.Expr(
			"CASE WHEN rating_count + ? > 0 THEN (rating_total + ?) * 1.0 / (rating_count + ?) ELSE 0 END",
			ratingCountDelta, ratingTotalDelta, ratingCountDelta,
		),
	}

	if err := transaction.WithContext(ctx).
		Model(&types.SuggestionTemplate{}).
		Where("id = ?", id).
		UpdateColumns(updates).Error; err != nil {
		return err
	}
	return nil
}
