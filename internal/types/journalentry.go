package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// JournalEntry CRUD lives outside this core. The suggestion path only reads a
// user's recent entries to derive educational context for generation.
type JournalEntry struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User         *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	AnimalID     *uuid.UUID     `gorm:"type:uuid;index" json:"animal_id,omitempty"`
	Animal       *Animal        `gorm:"constraint:OnDelete:SET NULL;foreignKey:AnimalID;references:ID" json:"animal,omitempty"`
	Title        string         `gorm:"column:title" json:"title"`
	Content      string         `gorm:"column:content" json:"content"`
	Category     string         `gorm:"not null;index;column:category" json:"category"`
	FFAStandards datatypes.JSON `gorm:"type:jsonb;column:ffa_standards" json:"ffa_standards"`
	CreatedAt    time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (JournalEntry) TableName() string {
	return "journal_entry"
}

func (e *JournalEntry) FFAStandardsList() []string {
	if len(e.FFAStandards) == 0 {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(e.FFAStandards, &out); err != nil {
		return []string{}
	}
	return out
}
