package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventSuggested = "suggested"
	EventGenerated = "generated"
	EventAccepted  = "accepted"
	EventModified  = "modified"
	EventDismissed = "dismissed"
)

// AnalyticsEvent rows are append-only. Nothing in this service mutates or
// deletes one after insert.
type AnalyticsEvent struct {
	ID                    uuid.UUID           `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID                uuid.UUID           `gorm:"type:uuid;not null;index" json:"user_id"`
	User                  *User               `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	TemplateID            *uuid.UUID          `gorm:"type:uuid;index" json:"template_id,omitempty"`
	Template              *SuggestionTemplate `gorm:"constraint:OnDelete:SET NULL;foreignKey:TemplateID;references:ID" json:"template,omitempty"`
	EventType             string              `gorm:"not null;index;column:event_type" json:"event_type"`
	SessionID             string              `gorm:"column:session_id" json:"session_id"`
	ResponseTimeMs        int                 `gorm:"not null;default:0;column:response_time_ms" json:"response_time_ms"`
	UserRating            *int                `gorm:"column:user_rating" json:"user_rating,omitempty"`
	UserFeedbackText      string              `gorm:"column:user_feedback_text" json:"user_feedback_text"`
	UserModificationsText string              `gorm:"column:user_modifications_text" json:"user_modifications_text"`
	FinalContent          string              `gorm:"column:final_content" json:"final_content"`
	QualityScore          float64             `gorm:"not null;default:0;column:quality_score" json:"quality_score"`
	AgeGroup              string              `gorm:"column:age_group" json:"age_group"`
	ParentConsentVerified bool                `gorm:"not null;default:false;column:parent_consent_verified" json:"parent_consent_verified"`
	TriggerContext        string              `gorm:"column:trigger_context" json:"trigger_context"`
	CreatedAt             time.Time           `gorm:"not null;default:now();index" json:"created_at"`
}

func (AnalyticsEvent) TableName() string {
	return "analytics_event"
}

func IsFeedbackEventType(t string) bool {
	switch t {
	case EventAccepted, EventModified, EventDismissed:
		return true
	default:
		return false
	}
}
