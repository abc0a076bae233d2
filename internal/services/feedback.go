package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/showtrail/agjournal-backend/internal/logger"
	"github.com/showtrail/agjournal-backend/internal/repos"
	"github.com/showtrail/agjournal-backend/internal/types"
)

const (
	preferredRatingFloor = 4
	blockedRatingCeil    = 2
)

type FeedbackInput struct {
	TemplateID            uuid.UUID `json:"template_id"`
	SessionID             string    `json:"session_id,omitempty"`
	Action                string    `json:"action"`
	Rating                *int      `json:"rating,omitempty"`
	Comments              string    `json:"comments,omitempty"`
	Modifications         string    `json:"modifications,omitempty"`
	CompletionTimeSeconds *int      `json:"completion_time_seconds,omitempty"`
	FinalContent          string    `json:"final_content,omitempty"`
}

type TemplateStats struct {
	TemplateID    string  `json:"template_id"`
	UsageCount    int     `json:"usage_count"`
	SuccessRate   float64 `json:"success_rate"`
	AverageRating float64 `json:"average_rating"`
}

type FeedbackResult struct {
	TemplateStats *TemplateStats   `json:"template_stats,omitempty"`
	Engagement    *EngagementTrend `json:"engagement,omitempty"`
}

// FeedbackService persists user reactions to suggestions and keeps per-user
// preferences and catalog aggregates current.
type FeedbackService interface {
	Record(ctx context.Context, userID uuid.UUID, in FeedbackInput) (*FeedbackResult, error)
}

type feedbackService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	prefsRepo    repos.UserPreferencesRepo
	templateRepo repos.SuggestionTemplateRepo
	eventRepo    repos.AnalyticsEventRepo
	trends       TrendService
	nowFn        func() time.Time
}

func NewFeedbackService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	prefsRepo repos.UserPreferencesRepo,
	templateRepo repos.SuggestionTemplateRepo,
	eventRepo repos.AnalyticsEventRepo,
	trends TrendService,
) FeedbackService {
	return &feedbackService{
		db:           db,
		log:          baseLog.With("service", "FeedbackService"),
		userRepo:     userRepo,
		prefsRepo:    prefsRepo,
		templateRepo: templateRepo,
		eventRepo:    eventRepo,
		trends:       trends,
		nowFn:        time.Now,
	}
}

func (s *feedbackService) Record(ctx context.Context, userID uuid.UUID, in FeedbackInput) (*FeedbackResult, error) {
	// All validation happens before any mutation.
	if !types.IsFeedbackEventType(in.Action) {
		return nil, &ValidationError{Field: "action", Reason: "must be one of accepted, modified, dismissed"}
	}
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return nil, &ValidationError{Field: "rating", Reason: "must be between 1 and 5"}
	}
	if in.TemplateID == uuid.Nil {
		return nil, &ValidationError{Field: "template_id", Reason: "is required"}
	}

	users, err := s.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, &ValidationError{Field: "user", Reason: "not found"}
	}
	user := users[0]
	verification := ClassifyAge(user.BirthDate, s.nowFn())

	templateID := in.TemplateID
	now := s.nowFn().UTC()
	event := &types.AnalyticsEvent{
		ID:                    uuid.New(),
		UserID:                userID,
		TemplateID:            &templateID,
		EventType:             in.Action,
		SessionID:             in.SessionID,
		UserRating:            in.Rating,
		UserFeedbackText:      in.Comments,
		UserModificationsText: in.Modifications,
		FinalContent:          in.FinalContent,
		AgeGroup:              verification.AgeGroup,
		ParentConsentVerified: user.ParentalConsent,
		CreatedAt:             now,
	}
	if in.CompletionTimeSeconds != nil {
		event.ResponseTimeMs = *in.CompletionTimeSeconds * 1000
	}

	// One logical transaction: the analytics event, the catalog aggregate
	// increment, and the preference update land together or roll back.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, cErr := s.eventRepo.Create(ctx, tx, []*types.AnalyticsEvent{event}); cErr != nil {
			return cErr
		}
		accepted := in.Action == types.EventAccepted
		if iErr := s.templateRepo.IncrementAggregates(ctx, tx, in.TemplateID, accepted, in.Rating); iErr != nil {
			return iErr
		}
		return s.applyPreferenceUpdate(ctx, tx, userID, verification, in)
	})
	if err != nil {
		return nil, err
	}

	result := &FeedbackResult{}
	if templates, tErr := s.templateRepo.GetByIDs(ctx, nil, []uuid.UUID{in.TemplateID}); tErr == nil && len(templates) > 0 {
		t := templates[0]
		result.TemplateStats = &TemplateStats{
			TemplateID:    t.ID.String(),
			UsageCount:    t.UsageCount,
			SuccessRate:   t.SuccessRate,
			AverageRating: t.AverageRating,
		}
	}
	if trend, eErr := s.trends.EngagementTrend(ctx, userID); eErr == nil {
		result.Engagement = trend
	} else {
		s.log.Warn("engagement trend lookup failed", "user_id", userID.String(), "error", eErr)
	}
	return result, nil
}

func (s *feedbackService) applyPreferenceUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, verification AgeVerification, in FeedbackInput) error {
	prefs, err := s.prefsRepo.GetByUserID(ctx, tx, userID)
	if err != nil {
		return err
	}
	if prefs == nil {
		complexity := types.ComplexityAgeAppropriate
		if verification.AgeGroup == AgeGroupUnder13 {
			complexity = types.ComplexitySimple
		}
		prefs = &types.UserPreferences{
			ID:               uuid.New(),
			UserID:           userID,
			ParentSupervised: verification.CoppaProtected,
			SafeContentOnly:  true,
			Complexity:       complexity,
		}
		if _, cErr := s.prefsRepo.Create(ctx, tx, prefs); cErr != nil {
			return cErr
		}
	}

	switch in.Action {
	case types.EventAccepted, types.EventModified:
		prefs.SuggestionsUsed++
	case types.EventDismissed:
		prefs.SuggestionsDismissed++
	}
	if in.Modifications != "" {
		prefs.CustomModifications++
	}

	id := in.TemplateID.String()
	if in.Action == types.EventAccepted && in.Rating != nil && *in.Rating >= preferredRatingFloor {
		prefs.AddPreferredTemplate(id)
	}
	if in.Action == types.EventDismissed && in.Rating != nil && *in.Rating <= blockedRatingCeil {
		prefs.AddBlockedTemplate(id)
	}

	return s.prefsRepo.Save(ctx, tx, prefs)
}
