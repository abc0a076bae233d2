package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/showtrail/agjournal-backend/internal/types"
)

func newTestGate(t *testing.T, events *fakeEventRepo, now time.Time) *gateService {
	t.Helper()
	gs := NewGateService(nil, testLogger(t), events).(*gateService)
	gs.nowFn = func() time.Time { return now }
	return gs
}

func generatedEventsAt(userID uuid.UUID, at time.Time, n int) []*types.AnalyticsEvent {
	out := make([]*types.AnalyticsEvent, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &types.AnalyticsEvent{
			ID:        uuid.New(),
			UserID:    userID,
			EventType: types.EventGenerated,
			CreatedAt: at,
		})
	}
	return out
}

func TestCheckGenerationUnderQuota(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC)
	events := &fakeEventRepo{}
	events.events = generatedEventsAt(userID, now.Add(-time.Hour), 29)

	gs := newTestGate(t, events, now)
	verification := AgeVerification{AgeGroup: AgeGroupTeen}
	if err := gs.CheckGeneration(context.Background(), nil, userID, verification, false); err != nil {
		t.Fatalf("usage 29 of 30 should pass, got %v", err)
	}
}

func TestCheckGenerationAtQuota(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC)
	events := &fakeEventRepo{}
	events.events = generatedEventsAt(userID, now.Add(-time.Hour), 30)

	gs := newTestGate(t, events, now)
	verification := AgeVerification{AgeGroup: AgeGroupTeen}
	err := gs.CheckGeneration(context.Background(), nil, userID, verification, false)

	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("want RateLimitError, got %v", err)
	}
	if rateErr.CurrentUsage != 30 || rateErr.DailyLimit != 30 {
		t.Fatalf("want usage=30 limit=30, got usage=%d limit=%d", rateErr.CurrentUsage, rateErr.DailyLimit)
	}
	wantReset := time.Date(2025, 5, 11, 0, 0, 0, 0, time.UTC)
	if !rateErr.ResetsAt.Equal(wantReset) {
		t.Fatalf("want resetsAt=%v got=%v", wantReset, rateErr.ResetsAt)
	}
}

func TestCheckGenerationIgnoresPreviousDay(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2025, 5, 10, 0, 30, 0, 0, time.UTC)
	events := &fakeEventRepo{}
	// Heavy usage yesterday must not count against today.
	events.events = generatedEventsAt(userID, now.Add(-2*time.Hour), 60)

	gs := newTestGate(t, events, now)
	verification := AgeVerification{AgeGroup: AgeGroupAdult}
	if err := gs.CheckGeneration(context.Background(), nil, userID, verification, false); err != nil {
		t.Fatalf("previous-day usage should not count, got %v", err)
	}
}

func TestCheckGenerationConsentBeforeQuota(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC)
	gs := newTestGate(t, &fakeEventRepo{}, now)

	verification := AgeVerification{AgeGroup: AgeGroupUnder13, CoppaProtected: true}
	err := gs.CheckGeneration(context.Background(), nil, userID, verification, false)

	var consentErr *ConsentRequiredError
	if !errors.As(err, &consentErr) {
		t.Fatalf("want ConsentRequiredError, got %v", err)
	}
	if !consentErr.FallbackAvailable {
		t.Fatalf("fallback should be offered alongside consent refusal")
	}

	// With consent granted the same bracket passes.
	if err := gs.CheckGeneration(context.Background(), nil, userID, verification, true); err != nil {
		t.Fatalf("consented under_13 should pass, got %v", err)
	}
}

func TestDailyGenerationQuotaBrackets(t *testing.T) {
	tests := []struct {
		ageGroup string
		want     int
	}{
		{AgeGroupUnder13, 10},
		{AgeGroupTeen, 30},
		{AgeGroupAdult, 60},
		{AgeGroupUnknown, 5},
		{"bogus", 5},
	}
	for _, tt := range tests {
		if got := DailyGenerationQuota(tt.ageGroup); got != tt.want {
			t.Fatalf("quota(%s): want=%d got=%d", tt.ageGroup, tt.want, got)
		}
	}
}
