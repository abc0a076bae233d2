package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ComplexitySimple         = "simple"
	ComplexityAgeAppropriate = "age_appropriate"
)

// UserPreferences is created lazily on a user's first suggestion request and
// mutated only by the feedback path.
type UserPreferences struct {
	ID                   uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID               uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User                 *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ParentSupervised     bool           `gorm:"not null;default:false;column:parent_supervised" json:"parent_supervised"`
	SafeContentOnly      bool           `gorm:"not null;default:true;column:safe_content_only" json:"safe_content_only"`
	Complexity           string         `gorm:"not null;default:'age_appropriate';column:complexity" json:"complexity"`
	SuggestionsUsed      int            `gorm:"not null;default:0;column:suggestions_used" json:"suggestions_used"`
	SuggestionsDismissed int            `gorm:"not null;default:0;column:suggestions_dismissed" json:"suggestions_dismissed"`
	CustomModifications  int            `gorm:"not null;default:0;column:custom_modifications" json:"custom_modifications"`
	PreferredTemplateIDs datatypes.JSON `gorm:"type:jsonb;column:preferred_template_ids" json:"preferred_template_ids"`
	BlockedTemplateIDs   datatypes.JSON `gorm:"type:jsonb;column:blocked_template_ids" json:"blocked_template_ids"`
	CreatedAt            time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserPreferences) TableName() string {
	return "user_preferences"
}

func decodeIDList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return []string{}
	}
	return out
}

func encodeIDList(ids []string) datatypes.JSON {
	b, _ := json.Marshal(ids)
	return datatypes.JSON(b)
}

func (p *UserPreferences) PreferredList() []string {
	return decodeIDList(p.PreferredTemplateIDs)
}

func (p *UserPreferences) BlockedList() []string {
	return decodeIDList(p.BlockedTemplateIDs)
}

// AddPreferredTemplate is an idempotent set insert. Returns false when the id
// was already present.
func (p *UserPreferences) AddPreferredTemplate(id string) bool {
	list := p.PreferredList()
	for _, v := range list {
		if v == id {
			return false
		}
	}
	p.PreferredTemplateIDs = encodeIDList(append(list, id))
	return true
}

// AddBlockedTemplate is an idempotent set insert. Returns false when the id
// was already present.
func (p *UserPreferences) AddBlockedTemplate(id string) bool {
	list := p.BlockedList()
	for _, v := range list {
		if v == id {
			return false
		}
	}
	p.BlockedTemplateIDs = encodeIDList(append(list, id))
	return true
}
