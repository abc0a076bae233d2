package services

import (
	"strings"
	"testing"
)

func TestFallbackKnownCategory(t *testing.T) {
	svc, err := NewFallbackService()
	if err != nil {
		t.Fatalf("NewFallbackService: %v", err)
	}

	got := svc.Generate("feeding", AgeGroupTeen, "Biscuit")
	if got.Category != "feeding" {
		t.Fatalf("category: want=feeding got=%q", got.Category)
	}
	if got.AgeGroup != "teen" {
		t.Fatalf("age bucket: want=teen got=%q", got.AgeGroup)
	}
	if !strings.Contains(got.Title, "Biscuit") {
		t.Fatalf("animal name not substituted in title: %q", got.Title)
	}
	if strings.Contains(got.Content, "{{animal_name}}") {
		t.Fatalf("unsubstituted token in content: %q", got.Content)
	}
	if got.Content == "" {
		t.Fatalf("content must be non-empty")
	}
}

func TestFallbackUnknownCategoryFallsBackToDailyCare(t *testing.T) {
	svc, err := NewFallbackService()
	if err != nil {
		t.Fatalf("NewFallbackService: %v", err)
	}

	got := svc.Generate("rocket_science", AgeGroupUnder13, "")
	if got.Category != "daily_care" {
		t.Fatalf("category: want=daily_care got=%q", got.Category)
	}
	if !strings.Contains(got.Content, "your animal") {
		t.Fatalf("generic animal placeholder missing: %q", got.Content)
	}
}

func TestFallbackAgeBuckets(t *testing.T) {
	svc, err := NewFallbackService()
	if err != nil {
		t.Fatalf("NewFallbackService: %v", err)
	}

	cases := []struct {
		ageGroup   string
		wantBucket string
	}{
		{AgeGroupUnder13, AgeGroupUnder13},
		{AgeGroupTeen, "teen"},
		{AgeGroupAdult, "teen"},
		{AgeGroupUnknown, "teen"},
	}
	for _, tc := range cases {
		got := svc.Generate("daily_care", tc.ageGroup, "Pepper")
		if got.AgeGroup != tc.wantBucket {
			t.Fatalf("bucket for %q: want=%q got=%q", tc.ageGroup, tc.wantBucket, got.AgeGroup)
		}
	}

	// The young bucket carries an explicit safety reminder.
	young := svc.Generate("feeding", AgeGroupUnder13, "Pepper")
	if !strings.Contains(young.Content, "Safety reminder") {
		t.Fatalf("under_13 content missing safety reminder: %q", young.Content)
	}
}
