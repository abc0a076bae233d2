package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/showtrail/agjournal-backend/internal/logger"
	"github.com/showtrail/agjournal-backend/internal/repos"
	"github.com/showtrail/agjournal-backend/internal/types"
)

const (
	EngagementHigh        = "highly_engaged"
	EngagementModerate    = "moderately_engaged"
	EngagementSomewhat    = "somewhat_engaged"
	EngagementLow         = "low_engagement"
	TrendInsufficientData = "insufficient_data"
	PerformanceImproving  = "improving"
	PerformanceDeclining  = "declining"
	PerformanceStable     = "stable"
)

const (
	engagementWindow   = 7 * 24 * time.Hour
	engagementEventCap = 20

	performanceWindow = 30 * 24 * time.Hour
	performanceDelta  = 0.1

	improvementWindow   = 14 * 24 * time.Hour
	improvementEventCap = 50
)

// Free-text phrases scanned in modification comments. Order is the emission
// order for ties.
var modificationPhrases = []string{
	"more detail",
	"simpler language",
	"add steps",
	"remove section",
}

type EngagementTrend struct {
	Classification string  `json:"classification"`
	AcceptanceRate float64 `json:"acceptance_rate"`
	AverageRating  float64 `json:"average_rating"`
	EventCount     int     `json:"event_count"`
}

type PerformanceChange struct {
	Classification string  `json:"classification"`
	CurrentRate    float64 `json:"current_rate"`
	PreviousRate   float64 `json:"previous_rate"`
	Delta          float64 `json:"delta"`
}

type ImprovementSuggestion struct {
	Issue    string  `json:"issue"`
	Severity string  `json:"severity"`
	Rate     float64 `json:"rate"`
	Detail   string  `json:"detail"`
}

type PhrasePattern struct {
	Phrase string `json:"phrase"`
	Count  int    `json:"count"`
}

// TrendService computes engagement and template-performance analytics from
// historical feedback events.
type TrendService interface {
	EngagementTrend(ctx context.Context, userID uuid.UUID) (*EngagementTrend, error)
	TemplatePerformanceChange(ctx context.Context, templateID uuid.UUID) (*PerformanceChange, error)
	ImprovementSuggestions(ctx context.Context, templateID uuid.UUID) ([]ImprovementSuggestion, []PhrasePattern, error)
}

type trendService struct {
	db        *gorm.DB
	log       *logger.Logger
	eventRepo repos.AnalyticsEventRepo
	nowFn     func() time.Time
}

func NewTrendService(db *gorm.DB, baseLog *logger.Logger, eventRepo repos.AnalyticsEventRepo) TrendService {
	return &trendService{
		db:        db,
		log:       baseLog.With("service", "TrendService"),
		eventRepo: eventRepo,
		nowFn:     time.Now,
	}
}

func (s *trendService) EngagementTrend(ctx context.Context, userID uuid.UUID) (*EngagementTrend, error) {
	now := s.nowFn().UTC()
	events, err := s.eventRepo.GetByUserSince(ctx, nil, userID, now.Add(-engagementWindow), engagementEventCap)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return &EngagementTrend{Classification: TrendInsufficientData}, nil
	}

	accepted := 0
	ratingSum := 0
	ratingCount := 0
	for _, e := range events {
		if e.EventType == types.EventAccepted {
			accepted++
		}
		if e.UserRating != nil {
			ratingSum += *e.UserRating
			ratingCount++
		}
	}

	acceptanceRate := float64(accepted) / float64(len(events))
	avgRating := 0.0
	if ratingCount > 0 {
		avgRating = float64(ratingSum) / float64(ratingCount)
	}

	return &EngagementTrend{
		Classification: classifyEngagement(acceptanceRate, avgRating),
		AcceptanceRate: acceptanceRate,
		AverageRating:  avgRating,
		EventCount:     len(events),
	}, nil
}

func classifyEngagement(acceptanceRate, avgRating float64) string {
	switch {
	case acceptanceRate >= 0.8 && avgRating >= 4:
		return EngagementHigh
	case acceptanceRate >= 0.6 && avgRating >= 3:
		return EngagementModerate
	case acceptanceRate >= 0.4:
		return EngagementSomewhat
	default:
		return EngagementLow
	}
}

func (s *trendService) TemplatePerformanceChange(ctx context.Context, templateID uuid.UUID) (*PerformanceChange, error) {
	now := s.nowFn().UTC()
	currentStart := now.Add(-performanceWindow)
	previousStart := now.Add(-2 * performanceWindow)

	currentTotal, err := s.eventRepo.CountByTemplateBetween(ctx, nil, templateID, currentStart, now)
	if err != nil {
		return nil, err
	}
	currentAccepted, err := s.eventRepo.CountByTemplateAndTypeBetween(ctx, nil, templateID, types.EventAccepted, currentStart, now)
	if err != nil {
		return nil, err
	}
	previousTotal, err := s.eventRepo.CountByTemplateBetween(ctx, nil, templateID, previousStart, currentStart)
	if err != nil {
		return nil, err
	}
	previousAccepted, err := s.eventRepo.CountByTemplateAndTypeBetween(ctx, nil, templateID, types.EventAccepted, previousStart, currentStart)
	if err != nil {
		return nil, err
	}

	if currentTotal == 0 && previousTotal == 0 {
		return &PerformanceChange{Classification: TrendInsufficientData}, nil
	}

	currentRate := 0.0
	if currentTotal > 0 {
		currentRate = float64(currentAccepted) / float64(currentTotal)
	}
	previousRate := 0.0
	if previousTotal > 0 {
		previousRate = float64(previousAccepted) / float64(previousTotal)
	}
	delta := currentRate - previousRate

	classification := PerformanceStable
	if delta > performanceDelta {
		classification = PerformanceImproving
	} else if delta < -performanceDelta {
		classification = PerformanceDeclining
	}

	return &PerformanceChange{
		Classification: classification,
		CurrentRate:    currentRate,
		PreviousRate:   previousRate,
		Delta:          delta,
	}, nil
}

func (s *trendService) ImprovementSuggestions(ctx context.Context, templateID uuid.UUID) ([]ImprovementSuggestion, []PhrasePattern, error) {
	now := s.nowFn().UTC()
	events, err := s.eventRepo.GetByTemplateBetween(ctx, nil, templateID, now.Add(-improvementWindow), now, improvementEventCap)
	if err != nil {
		return nil, nil, err
	}
	if len(events) == 0 {
		return []ImprovementSuggestion{}, []PhrasePattern{}, nil
	}

	dismissed := 0
	modified := 0
	lowRatings := 0
	ratings := 0
	modComments := []string{}
	for _, e := range events {
		switch e.EventType {
		case types.EventDismissed:
			dismissed++
		case types.EventModified:
			modified++
			if e.UserModificationsText != "" {
				modComments = append(modComments, e.UserModificationsText)
			}
		}
		if e.UserRating != nil {
			ratings++
			if *e.UserRating <= 2 {
				lowRatings++
			}
		}
	}

	total := float64(len(events))
	dismissalRate := float64(dismissed) / total
	modificationRate := float64(modified) / total
	lowRatingRate := 0.0
	if ratings > 0 {
		lowRatingRate = float64(lowRatings) / float64(ratings)
	}

	suggestions := []ImprovementSuggestion{}
	if lowRatingRate > 0.2 {
		suggestions = append(suggestions, ImprovementSuggestion{
			Issue:    "low_ratings",
			Severity: "high",
			Rate:     lowRatingRate,
			Detail:   "students who rate this template frequently rate it 2 or below",
		})
	}
	if dismissalRate > 0.3 {
		suggestions = append(suggestions, ImprovementSuggestion{
			Issue:    "high_dismissal",
			Severity: "medium",
			Rate:     dismissalRate,
			Detail:   "this template is dismissed more often than comparable templates",
		})
	}
	if modificationRate > 0.5 {
		suggestions = append(suggestions, ImprovementSuggestion{
			Issue:    "heavy_modification",
			Severity: "low",
			Rate:     modificationRate,
			Detail:   "most students rewrite this template before using it",
		})
	}

	return suggestions, scanModificationPhrases(modComments), nil
}

// scanModificationPhrases reports fixed phrases appearing in at least two
// modification comments, top 3 by frequency.
func scanModificationPhrases(comments []string) []PhrasePattern {
	counts := map[string]int{}
	for _, c := range comments {
		lower := strings.ToLower(c)
		for _, phrase := range modificationPhrases {
			if strings.Contains(lower, phrase) {
				counts[phrase]++
			}
		}
	}

	patterns := []PhrasePattern{}
	for _, phrase := range modificationPhrases {
		if counts[phrase] >= 2 {
			patterns = append(patterns, PhrasePattern{Phrase: phrase, Count: counts[phrase]})
		}
	}
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Count > patterns[j].Count
	})
	if len(patterns) > 3 {
		patterns = patterns[:3]
	}
	return patterns
}
