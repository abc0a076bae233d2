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

// Daily generation quotas per age bracket. Compiled constants, not env knobs:
// they are a safety policy, not a tuning parameter.
var dailyGenerationQuota = map[string]int{
	AgeGroupUnder13: 10,
	AgeGroupTeen:    30,
	AgeGroupAdult:   60,
	AgeGroupUnknown: 5,
}

func DailyGenerationQuota(ageGroup string) int {
	if q, ok := dailyGenerationQuota[ageGroup]; ok {
		return q
	}
	return dailyGenerationQuota[AgeGroupUnknown]
}

// GateService decides whether a generation request may proceed. It is
// read-only: usage only advances because a successful generation later
// inserts a `generated` analytics event.
type GateService interface {
	CheckGeneration(ctx context.Context, tx *gorm.DB, userID uuid.UUID, verification AgeVerification, parentalConsent bool) error
}

type gateService struct {
	db        *gorm.DB
	log       *logger.Logger
	eventRepo repos.AnalyticsEventRepo
	nowFn     func() time.Time
}

func NewGateService(db *gorm.DB, baseLog *logger.Logger, eventRepo repos.AnalyticsEventRepo) GateService {
	return &gateService{
		db:        db,
		log:       baseLog.With("service", "GateService"),
		eventRepo: eventRepo,
		nowFn:     time.Now,
	}
}

func (s *gateService) CheckGeneration(ctx context.Context, tx *gorm.DB, userID uuid.UUID, verification AgeVerification, parentalConsent bool) error {
	if verification.CoppaProtected && !parentalConsent {
		return &ConsentRequiredError{FallbackAvailable: true}
	}

	now := s.nowFn().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	usage, err := s.eventRepo.CountByUserAndTypeBetween(ctx, tx, userID, types.EventGenerated, dayStart, dayEnd)
	if err != nil {
		return err
	}

	quota := DailyGenerationQuota(verification.AgeGroup)
	if int(usage) >= quota {
		s.log.Debug("generation quota exhausted",
			"user_id", userID.String(),
			"age_group", verification.AgeGroup,
			"usage", usage,
			"quota", quota,
		)
		return &RateLimitError{
			CurrentUsage: int(usage),
			DailyLimit:   quota,
			ResetsAt:     dayEnd,
		}
	}
	return nil
}
