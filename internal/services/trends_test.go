package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/showtrail/agjournal-backend/internal/types"
)

func newTestTrends(t *testing.T, events *fakeEventRepo, now time.Time) *trendService {
	t.Helper()
	ts := NewTrendService(nil, testLogger(t), events).(*trendService)
	ts.nowFn = func() time.Time { return now }
	return ts
}

func feedbackEvent(userID, templateID uuid.UUID, eventType string, rating *int, at time.Time) *types.AnalyticsEvent {
	return &types.AnalyticsEvent{
		ID:         uuid.New(),
		UserID:     userID,
		TemplateID: &templateID,
		EventType:  eventType,
		UserRating: rating,
		CreatedAt:  at,
	}
}

func intPtr(v int) *int { return &v }

func TestEngagementTrendNoEvents(t *testing.T) {
	ts := newTestTrends(t, &fakeEventRepo{}, time.Now().UTC())
	trend, err := ts.EngagementTrend(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trend.Classification != TrendInsufficientData {
		t.Fatalf("want=%s got=%s", TrendInsufficientData, trend.Classification)
	}
}

func TestEngagementTrendClassification(t *testing.T) {
	userID := uuid.New()
	templateID := uuid.New()
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-24 * time.Hour)

	tests := []struct {
		name     string
		accepted int
		other    int
		rating   *int
		want     string
	}{
		{"high", 8, 2, intPtr(4), EngagementHigh},
		{"moderate", 6, 4, intPtr(3), EngagementModerate},
		{"somewhat", 4, 6, intPtr(2), EngagementSomewhat},
		{"low", 1, 9, intPtr(2), EngagementLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &fakeEventRepo{}
			for i := 0; i < tt.accepted; i++ {
				events.events = append(events.events, feedbackEvent(userID, templateID, types.EventAccepted, tt.rating, recent))
			}
			for i := 0; i < tt.other; i++ {
				events.events = append(events.events, feedbackEvent(userID, templateID, types.EventDismissed, tt.rating, recent))
			}

			ts := newTestTrends(t, events, now)
			trend, err := ts.EngagementTrend(context.Background(), userID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if trend.Classification != tt.want {
				t.Fatalf("want=%s got=%s (rate=%.2f rating=%.2f)", tt.want, trend.Classification, trend.AcceptanceRate, trend.AverageRating)
			}
		})
	}
}

func TestEngagementTrendRatingBoundary(t *testing.T) {
	userID := uuid.New()
	templateID := uuid.New()
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-time.Hour)

	// 8 of 10 accepted but average rating just under 4 drops a bracket.
	events := &fakeEventRepo{}
	for i := 0; i < 8; i++ {
		events.events = append(events.events, feedbackEvent(userID, templateID, types.EventAccepted, intPtr(4), recent))
	}
	events.events = append(events.events,
		feedbackEvent(userID, templateID, types.EventDismissed, intPtr(3), recent),
		feedbackEvent(userID, templateID, types.EventDismissed, intPtr(3), recent),
	)

	ts := newTestTrends(t, events, now)
	trend, err := ts.EngagementTrend(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trend.Classification != EngagementModerate {
		t.Fatalf("want=%s got=%s", EngagementModerate, trend.Classification)
	}
}

func TestEngagementTrendIgnoresOldEvents(t *testing.T) {
	userID := uuid.New()
	templateID := uuid.New()
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

	events := &fakeEventRepo{}
	events.events = append(events.events, feedbackEvent(userID, templateID, types.EventAccepted, intPtr(5), now.Add(-8*24*time.Hour)))

	ts := newTestTrends(t, events, now)
	trend, err := ts.EngagementTrend(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trend.Classification != TrendInsufficientData {
		t.Fatalf("events older than the window should not count, got %s", trend.Classification)
	}
}

func TestTemplatePerformanceChange(t *testing.T) {
	templateID := uuid.New()
	userID := uuid.New()
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	current := now.Add(-10 * 24 * time.Hour)
	previous := now.Add(-40 * 24 * time.Hour)

	tests := []struct {
		name                   string
		curAccepted, curOther  int
		prevAccepted, prevSeen int
		want                   string
	}{
		{"improving", 8, 2, 4, 6, PerformanceImproving},
		{"declining", 4, 6, 8, 2, PerformanceDeclining},
		{"stable", 5, 5, 5, 5, PerformanceStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &fakeEventRepo{}
			add := func(n int, eventType string, at time.Time) {
				for i := 0; i < n; i++ {
					events.events = append(events.events, feedbackEvent(userID, templateID, eventType, nil, at))
				}
			}
			add(tt.curAccepted, types.EventAccepted, current)
			add(tt.curOther, types.EventDismissed, current)
			add(tt.prevAccepted, types.EventAccepted, previous)
			add(tt.prevSeen, types.EventDismissed, previous)

			ts := newTestTrends(t, events, now)
			change, err := ts.TemplatePerformanceChange(context.Background(), templateID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if change.Classification != tt.want {
				t.Fatalf("want=%s got=%s (delta=%.2f)", tt.want, change.Classification, change.Delta)
			}
		})
	}
}

func TestTemplatePerformanceInsufficientData(t *testing.T) {
	ts := newTestTrends(t, &fakeEventRepo{}, time.Now().UTC())
	change, err := ts.TemplatePerformanceChange(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if change.Classification != TrendInsufficientData {
		t.Fatalf("want=%s got=%s", TrendInsufficientData, change.Classification)
	}
}

func TestImprovementSuggestionsHighSeverityRatings(t *testing.T) {
	templateID := uuid.New()
	userID := uuid.New()
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-24 * time.Hour)

	events := &fakeEventRepo{}
	for i := 0; i < 3; i++ {
		events.events = append(events.events, feedbackEvent(userID, templateID, types.EventAccepted, intPtr(2), recent))
	}
	for i := 0; i < 7; i++ {
		events.events = append(events.events, feedbackEvent(userID, templateID, types.EventAccepted, intPtr(5), recent))
	}

	ts := newTestTrends(t, events, now)
	suggestions, _, err := ts.ImprovementSuggestions(context.Background(), templateID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, s := range suggestions {
		if s.Issue == "low_ratings" && s.Severity == "high" {
			found = true
		}
	}
	if !found {
		t.Fatalf("30%% low ratings should flag low_ratings/high, got %+v", suggestions)
	}
}

func TestImprovementSuggestionsPhraseScan(t *testing.T) {
	templateID := uuid.New()
	userID := uuid.New()
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-24 * time.Hour)

	events := &fakeEventRepo{}
	modified := func(text string) *types.AnalyticsEvent {
		e := feedbackEvent(userID, templateID, types.EventModified, nil, recent)
		e.UserModificationsText = text
		return e
	}
	events.events = append(events.events,
		modified("please add More Detail on feed amounts"),
		modified("needs more detail about weights"),
		modified("use simpler language"),
		modified("could use simpler language here"),
		modified("add steps"),
	)

	ts := newTestTrends(t, events, now)
	_, phrases, err := ts.ImprovementSuggestions(context.Background(), templateID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// "add steps" appears only once and must be filtered out.
	want := map[string]int{"more detail": 2, "simpler language": 2}
	if len(phrases) != len(want) {
		t.Fatalf("want %d phrases got %d: %+v", len(want), len(phrases), phrases)
	}
	for _, p := range phrases {
		if want[p.Phrase] != p.Count {
			t.Fatalf("phrase %q: want count=%d got=%d", p.Phrase, want[p.Phrase], p.Count)
		}
	}
}
