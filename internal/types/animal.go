package types

import (
	"time"

	"github.com/google/uuid"
)

type Animal struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerUserID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	Owner         *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerUserID;references:ID" json:"owner,omitempty"`
	Name          string     `gorm:"not null;column:name" json:"name"`
	Species       string     `gorm:"not null;index;column:species" json:"species"`
	Breed         string     `gorm:"column:breed" json:"breed"`
	BirthDate     *time.Time `gorm:"column:birth_date" json:"birth_date,omitempty"`
	CurrentWeight float64    `gorm:"not null;default:0;column:current_weight" json:"current_weight"`
	CreatedAt     time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Animal) TableName() string {
	return "animal"
}

// AgeInWeeks is 0 when the birth date is unknown.
func (a *Animal) AgeInWeeks(now time.Time) int {
	if a.BirthDate == nil || a.BirthDate.After(now) {
		return 0
	}
	return int(now.Sub(*a.BirthDate).Hours() / 24 / 7)
}
