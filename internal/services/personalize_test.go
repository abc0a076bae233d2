package services

import (
	"fmt"
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"time"
)

func frozenPersonalizer(seed int64, now time.Time) *personalizerService {
	return &personalizerService{
		nowFn: func() time.Time { return now },
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func TestPersonalizeSubstitutesAllTokens(t *testing.T) {
	now := time.Date(2025, time.May, 10, 9, 0, 0, 0, time.UTC)
	p := frozenPersonalizer(1, now)

	tpl := CachedTemplate{
		TemplateID:      "t1",
		TitleTemplate:   "Morning check on {{animal_name}}",
		ContentTemplate: "Today ({{date}}) it was {{weather_condition}}. {{animal_name}} ate well.",
		Category:        "daily_care",
		FFAStandards:    []string{"AS.01.01"},
		SuccessRate:     0.9,
		UsageCount:      30,
	}
	animal := &AnimalContext{Name: "Clover", Species: "goat", AgeInWeeks: 20}

	got := p.Personalize([]CachedTemplate{tpl}, animal, "sunny")
	if len(got) != 1 {
		t.Fatalf("suggestion count: want=1 got=%d", len(got))
	}
	s := got[0]

	if s.Title != "Morning check on Clover" {
		t.Fatalf("title: got=%q", s.Title)
	}
	if contains := "Clover ate well."; !strings.HasSuffix(s.Content, contains) {
		t.Fatalf("content: got=%q, want suffix %q", s.Content, contains)
	}
	if !s.IsPopular {
		t.Fatalf("usage count 30 should flag popular")
	}
	if len(s.Placeholders) != 3 {
		t.Fatalf("placeholders: want=3 got=%d (%+v)", len(s.Placeholders), s.Placeholders)
	}
	if s.Placeholders[0].Key != "{{animal_name}}" || s.Placeholders[0].Value != "Clover" {
		t.Fatalf("animal placeholder: got=%+v", s.Placeholders[0])
	}
	if s.Placeholders[2].Key != "{{date}}" || s.Placeholders[2].Value != "Saturday, May 10, 2025" {
		t.Fatalf("date placeholder: got=%+v", s.Placeholders[2])
	}
}

func TestPersonalizeMissingContextLeavesTokenIntact(t *testing.T) {
	now := time.Date(2025, time.May, 10, 9, 0, 0, 0, time.UTC)
	p := frozenPersonalizer(1, now)

	tpl := CachedTemplate{
		TemplateID:      "t2",
		TitleTemplate:   "Weigh {{animal_name}}",
		ContentTemplate: "Weather: {{weather_condition}}",
	}

	got := p.Personalize([]CachedTemplate{tpl}, nil, "")
	s := got[0]
	if s.Title != "Weigh {{animal_name}}" {
		t.Fatalf("unresolved animal token should remain: got=%q", s.Title)
	}
	if s.Content != "Weather: {{weather_condition}}" {
		t.Fatalf("unresolved weather token should remain: got=%q", s.Content)
	}
	if len(s.Placeholders) != 0 {
		t.Fatalf("no substitutions should be recorded: got=%+v", s.Placeholders)
	}
}

func TestPersonalizeIdempotentUnderFrozenClock(t *testing.T) {
	now := time.Date(2025, time.May, 10, 9, 0, 0, 0, time.UTC)

	tpl := CachedTemplate{
		TemplateID:      "t3",
		TitleTemplate:   "Feed {{animal_name}} on {{date}}",
		ContentTemplate: "Conditions: {{weather_condition}}.",
	}
	animal := &AnimalContext{Name: "Hamlet"}

	first := frozenPersonalizer(7, now).Personalize([]CachedTemplate{tpl}, animal, "overcast")
	second := frozenPersonalizer(7, now).Personalize([]CachedTemplate{tpl}, animal, "overcast")

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("personalization not idempotent:\nfirst=%+v\nsecond=%+v", first, second)
	}
}

func TestWeatherPhraseRange(t *testing.T) {
	p := frozenPersonalizer(3, time.Now())
	for i := 0; i < 100; i++ {
		phrase := p.weatherPhrase("windy")
		var temp int
		if _, err := fmt.Sscanf(phrase, "windy and %d°F", &temp); err != nil {
			t.Fatalf("unexpected phrase %q: %v", phrase, err)
		}
		if temp < 65 || temp > 85 {
			t.Fatalf("temperature out of range: %d", temp)
		}
	}
}
