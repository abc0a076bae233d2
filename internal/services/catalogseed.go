package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/showtrail/agjournal-backend/internal/logger"
	"github.com/showtrail/agjournal-backend/internal/repos"
	"github.com/showtrail/agjournal-backend/internal/types"
)

func standardsJSON(standards ...string) datatypes.JSON {
	b, _ := json.Marshal(standards)
	return datatypes.JSON(b)
}

// SeedTemplateCatalog inserts a starter template catalog on an empty
// database so a fresh deployment serves suggestions immediately. Idempotent:
// a non-empty catalog is left untouched.
func SeedTemplateCatalog(ctx context.Context, log *logger.Logger, templateRepo repos.SuggestionTemplateRepo) error {
	n, err := templateRepo.Count(ctx, nil)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Debug("template catalog already populated", "count", n)
		return nil
	}

	log.Info("Seeding starter template catalog...")
	starter := []*types.SuggestionTemplate{
		{
			ID:               uuid.New(),
			TitleTemplate:    "Morning Care Routine for {{animal_name}}",
			ContentTemplate:  "Today ({{date}}) I completed the morning routine for {{animal_name}}: fresh water, measured feed, and a pen check. Weather was {{weather_condition}}, so I adjusted ventilation accordingly.",
			Category:         "daily_care",
			DifficultyLevel:  "beginner",
			EstimatedMinutes: 10,
			FFAStandards:     standardsJSON("AS.02.01", "AS.02.02"),
		},
		{
			ID:               uuid.New(),
			TitleTemplate:    "Simple Daily Check on {{animal_name}}",
			ContentTemplate:  "I checked on {{animal_name}} today. I gave food and water and made sure the pen was clean and safe.",
			Category:         "daily_care",
			DifficultyLevel:  "beginner",
			EstimatedMinutes: 5,
			AgeGroup:         AgeGroupUnder13,
			FFAStandards:     standardsJSON("AS.02.01"),
		},
		{
			ID:               uuid.New(),
			TitleTemplate:    "Feed Ration Log: {{animal_name}}",
			ContentTemplate:  "Recorded today's ration for {{animal_name}} and tracked consumption. Conditions: {{weather_condition}}. Monitoring intake against the weight curve to judge feed conversion.",
			Category:         "feeding",
			DifficultyLevel:  "intermediate",
			EstimatedMinutes: 15,
			FFAStandards:     standardsJSON("AS.03.01", "AS.03.02"),
		},
		{
			ID:               uuid.New(),
			TitleTemplate:    "Health Observation for {{animal_name}}",
			ContentTemplate:  "On {{date}} I performed a structured health check on {{animal_name}}: eyes, coat, gait, appetite, and manure. Logged all observations for the vet record.",
			Category:         "health_check",
			DifficultyLevel:  "intermediate",
			EstimatedMinutes: 20,
			FFAStandards:     standardsJSON("AS.07.01"),
		},
		{
			ID:               uuid.New(),
			TitleTemplate:    "Weekly Weigh-In: {{animal_name}}",
			ContentTemplate:  "Weighed {{animal_name}} today and computed average daily gain. Comparing against target show weight to decide whether the ration needs adjusting.",
			Category:         "weight_tracking",
			DifficultyLevel:  "intermediate",
			EstimatedMinutes: 15,
			FFAStandards:     standardsJSON("AS.03.02"),
		},
		{
			ID:               uuid.New(),
			TitleTemplate:    "Showmanship Session with {{animal_name}}",
			ContentTemplate:  "Practiced ring work with {{animal_name}} on {{date}}: setting up, bracing, and smooth transitions. Noted which cues still need repetition before the county show.",
			Category:         "showmanship",
			DifficultyLevel:  "advanced",
			EstimatedMinutes: 30,
			FFAStandards:     standardsJSON("AS.06.01"),
		},
	}

	if _, err := templateRepo.Create(ctx, nil, starter); err != nil {
		return err
	}
	log.Info("Template catalog seeded", "count", len(starter))
	return nil
}
