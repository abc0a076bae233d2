package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/showtrail/agjournal-backend/internal/logger"
	"github.com/showtrail/agjournal-backend/internal/repos"
	"github.com/showtrail/agjournal-backend/internal/requestdata"
)

// UserProfile is the outward view of a user. The raw birth date is never
// echoed; only the derived bracket is.
type UserProfile struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	ChapterName     string `json:"chapter_name,omitempty"`
	ExperienceLevel string `json:"experience_level"`
	AgeGroup        string `json:"age_group"`
	CoppaProtected  bool   `json:"coppa_protected"`
	ParentalConsent bool   `json:"parental_consent"`
}

type UserService interface {
	GetMe(ctx context.Context, tx *gorm.DB) (*UserProfile, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	nowFn    func() time.Time
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{
		db:       db,
		log:      baseLog.With("service", "UserService"),
		userRepo: userRepo,
		nowFn:    time.Now,
	}
}

func (s *userService) GetMe(ctx context.Context, tx *gorm.DB) (*UserProfile, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}

	users, err := s.userRepo.GetByIDs(ctx, tx, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user not found")
	}
	user := users[0]
	verification := ClassifyAge(user.BirthDate, s.nowFn())

	return &UserProfile{
		ID:              user.ID.String(),
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		ChapterName:     user.ChapterName,
		ExperienceLevel: user.ExperienceLevel,
		AgeGroup:        verification.AgeGroup,
		CoppaProtected:  verification.CoppaProtected,
		ParentalConsent: user.ParentalConsent,
	}, nil
}
