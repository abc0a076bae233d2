package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SuggestionTemplate rows are owned by the template catalog. The suggestion
// core only reads them and feeds aggregate deltas back through
// SuggestionTemplateRepo.IncrementAggregates.
type SuggestionTemplate struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TitleTemplate    string         `gorm:"not null;column:title_template" json:"title_template"`
	ContentTemplate  string         `gorm:"not null;column:content_template" json:"content_template"`
	Category         string         `gorm:"not null;index;column:category" json:"category"`
	DifficultyLevel  string         `gorm:"not null;default:'beginner';column:difficulty_level" json:"difficulty_level"`
	EstimatedMinutes int            `gorm:"not null;default:10;column:estimated_minutes" json:"estimated_minutes"`
	FFAStandards     datatypes.JSON `gorm:"type:jsonb;column:ffa_standards" json:"ffa_standards"`

	// Applicability dimensions. "any" matches every request.
	Species         string `gorm:"not null;default:'any';index;column:species" json:"species"`
	AgeGroup        string `gorm:"not null;default:'any';column:age_group" json:"age_group"`
	CompetencyLevel string `gorm:"not null;default:'any';column:competency_level" json:"competency_level"`
	WeatherPattern  string `gorm:"not null;default:'any';column:weather_pattern" json:"weather_pattern"`

	// Aggregates maintained by atomic increments from the feedback path.
	UsageCount    int     `gorm:"not null;default:0;column:usage_count" json:"usage_count"`
	AcceptedCount int     `gorm:"not null;default:0;column:accepted_count" json:"accepted_count"`
	RatingCount   int     `gorm:"not null;default:0;column:rating_count" json:"rating_count"`
	RatingTotal   int     `gorm:"not null;default:0;column:rating_total" json:"rating_total"`
	SuccessRate   float64 `gorm:"not null;default:0;column:success_rate" json:"success_rate"`
	AverageRating float64 `gorm:"not null;default:0;column:average_rating" json:"average_rating"`

	IsActive  bool      `gorm:"not null;default:true;column:is_active" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (SuggestionTemplate) TableName() string {
	return "suggestion_template"
}

func (t *SuggestionTemplate) FFAStandardsList() []string {
	if len(t.FFAStandards) == 0 {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(t.FFAStandards, &out); err != nil {
		return []string{}
	}
	return out
}
