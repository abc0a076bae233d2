package services

import "time"

const (
	AgeGroupUnder13 = "under_13"
	AgeGroupTeen    = "13_to_17"
	AgeGroupAdult   = "18_plus"
	AgeGroupUnknown = "unknown"
)

// AgeVerification is derived per request from the stored birth date and never
// persisted.
type AgeVerification struct {
	AgeGroup       string `json:"age_group"`
	CoppaProtected bool   `json:"coppa_protected"`
}

// ClassifyAge buckets a birth date into an age bracket as of now. A missing
// birth date classifies as unknown and is treated as COPPA-protected.
func ClassifyAge(birthDate *time.Time, now time.Time) AgeVerification {
	if birthDate == nil || birthDate.IsZero() {
		return AgeVerification{AgeGroup: AgeGroupUnknown, CoppaProtected: true}
	}

	age := wholeYearsBetween(*birthDate, now)
	switch {
	case age < 13:
		return AgeVerification{AgeGroup: AgeGroupUnder13, CoppaProtected: true}
	case age <= 17:
		return AgeVerification{AgeGroup: AgeGroupTeen, CoppaProtected: false}
	default:
		return AgeVerification{AgeGroup: AgeGroupAdult, CoppaProtected: false}
	}
}

func wholeYearsBetween(birth, now time.Time) int {
	birth = birth.UTC()
	now = now.UTC()
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}
