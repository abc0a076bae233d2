package services

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const (
	tokenAnimalName       = "{{animal_name}}"
	tokenWeatherCondition = "{{weather_condition}}"
	tokenDate             = "{{date}}"
)

// AnimalContext is the projection of an animal the personalizer needs.
type AnimalContext struct {
	Name       string `json:"name"`
	Species    string `json:"species"`
	AgeInWeeks int    `json:"age_in_weeks"`
}

type Placeholder struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type PersonalizedSuggestion struct {
	TemplateID   string        `json:"template_id"`
	Title        string        `json:"title"`
	Content      string        `json:"content"`
	Category     string        `json:"category"`
	FFAStandards []string      `json:"ffa_standards"`
	SuccessRate  float64       `json:"success_rate"`
	IsPopular    bool          `json:"is_popular"`
	Placeholders []Placeholder `json:"placeholders"`
}

// A template is flagged popular once enough students have used it.
const popularUsageThreshold = 25

// PersonalizerService substitutes contextual placeholder tokens into raw
// template text. Pure transform: missing context skips that substitution and
// leaves the token intact.
type PersonalizerService interface {
	Personalize(templates []CachedTemplate, animal *AnimalContext, weather string) []PersonalizedSuggestion
}

type personalizerService struct {
	nowFn func() time.Time
	rng   *rand.Rand
}

// NewPersonalizerService takes its randomness source so tests can freeze the
// weather temperature jitter.
func NewPersonalizerService(rng *rand.Rand) PersonalizerService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &personalizerService{nowFn: time.Now, rng: rng}
}

func (p *personalizerService) Personalize(templates []CachedTemplate, animal *AnimalContext, weather string) []PersonalizedSuggestion {
	out := make([]PersonalizedSuggestion, 0, len(templates))
	for _, tpl := range templates {
		out = append(out, p.personalizeOne(tpl, animal, weather))
	}
	return out
}

func (p *personalizerService) personalizeOne(tpl CachedTemplate, animal *AnimalContext, weather string) PersonalizedSuggestion {
	title := tpl.TitleTemplate
	content := tpl.ContentTemplate
	placeholders := []Placeholder{}

	substitute := func(token, value string) {
		if !strings.Contains(title, token) && !strings.Contains(content, token) {
			return
		}
		title = strings.ReplaceAll(title, token, value)
		content = strings.ReplaceAll(content, token, value)
		placeholders = append(placeholders, Placeholder{Key: token, Value: value})
	}

	if animal != nil && animal.Name != "" {
		substitute(tokenAnimalName, animal.Name)
	}
	if weather != "" {
		substitute(tokenWeatherCondition, p.weatherPhrase(weather))
	}
	substitute(tokenDate, p.nowFn().UTC().Format("Monday, January 2, 2006"))

	standards := tpl.FFAStandards
	if standards == nil {
		standards = []string{}
	}
	return PersonalizedSuggestion{
		TemplateID:   tpl.TemplateID,
		Title:        title,
		Content:      content,
		Category:     tpl.Category,
		FFAStandards: standards,
		SuccessRate:  tpl.SuccessRate,
		IsPopular:    tpl.UsageCount >= popularUsageThreshold,
		Placeholders: placeholders,
	}
}

// weatherPhrase composes the supplied condition with a cosmetic 65-85°F
// temperature.
func (p *personalizerService) weatherPhrase(weather string) string {
	temp := 65 + p.rng.Intn(21)
	return fmt.Sprintf("%s and %d°F", weather, temp)
}
