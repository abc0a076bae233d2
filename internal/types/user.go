package types

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email           string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password        string     `gorm:"not null;column:password" json:"-"`
	FirstName       string     `gorm:"not null;column:first_name" json:"first_name"`
	LastName        string     `gorm:"not null;column:last_name" json:"last_name"`
	BirthDate       *time.Time `gorm:"column:birth_date" json:"-"`
	ParentalConsent bool       `gorm:"not null;default:false;column:parental_consent" json:"parental_consent"`
	ExperienceLevel string     `gorm:"not null;default:'beginner';column:experience_level" json:"experience_level"`
	ChapterName     string     `gorm:"column:chapter_name" json:"chapter_name"`
	CreatedAt       time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}
