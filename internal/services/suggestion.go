package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/showtrail/agjournal-backend/internal/logger"
	"github.com/showtrail/agjournal-backend/internal/repos"
	"github.com/showtrail/agjournal-backend/internal/requestdata"
	"github.com/showtrail/agjournal-backend/internal/types"
)

const (
	defaultSuggestionLimit = 5
	maxSuggestionLimit     = 10

	// Educational context caps for the generation payload.
	recentEntryWindow   = 10
	maxRecentCategories = 5
	maxRecentStandards  = 3

	telemetryTimeout = 5 * time.Second
)

const (
	FallbackReasonConsentRequired = "consent_required"
	FallbackReasonRateLimited     = "rate_limit_exceeded"
	FallbackReasonUpstreamTimeout = "upstream_timeout"
	FallbackReasonUpstreamError   = "upstream_error"
)

type SuggestionRequest struct {
	Category        string     `json:"category"`
	Species         string     `json:"species,omitempty"`
	AnimalID        *uuid.UUID `json:"animal_id,omitempty"`
	Weather         string     `json:"weather,omitempty"`
	CompetencyLevel string     `json:"competency_level,omitempty"`
	Limit           int        `json:"limit,omitempty"`
}

type SuggestionResponse struct {
	Suggestions []PersonalizedSuggestion `json:"suggestions"`
	CacheHit    bool                     `json:"cache_hit"`
	AgeGroup    string                   `json:"age_group"`
}

type GenerateEntryRequest struct {
	Category      string            `json:"category"`
	AnimalID      *uuid.UUID        `json:"animal_id,omitempty"`
	Weather       string            `json:"weather,omitempty"`
	Location      string            `json:"location,omitempty"`
	Customization map[string]string `json:"customization,omitempty"`
}

type GenerateEntryResponse struct {
	Title          string  `json:"title"`
	Content        string  `json:"content"`
	FallbackUsed   bool    `json:"fallback_used"`
	FallbackReason string  `json:"fallback_reason,omitempty"`
	QualityScore   float64 `json:"quality_score,omitempty"`
	ResponseTimeMs int64   `json:"response_time_ms,omitempty"`
	AgeGroup       string  `json:"age_group"`
}

// SuggestionService is the top-level coordinator for both the suggestion
// retrieval path and the on-demand generation path.
type SuggestionService interface {
	GetSuggestions(ctx context.Context, userID uuid.UUID, req SuggestionRequest) (*SuggestionResponse, error)
	GenerateEntry(ctx context.Context, userID uuid.UUID, req GenerateEntryRequest) (*GenerateEntryResponse, error)
}

type suggestionService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	prefsRepo    repos.UserPreferencesRepo
	templateRepo repos.SuggestionTemplateRepo
	animalRepo   repos.AnimalRepo
	journalRepo  repos.JournalEntryRepo
	eventRepo    repos.AnalyticsEventRepo
	cache        SuggestionCacheService
	personalizer PersonalizerService
	fallback     FallbackService
	gate         GateService
	genClient    GenerationClient
	nowFn        func() time.Time
}

func NewSuggestionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	prefsRepo repos.UserPreferencesRepo,
	templateRepo repos.SuggestionTemplateRepo,
	animalRepo repos.AnimalRepo,
	journalRepo repos.JournalEntryRepo,
	eventRepo repos.AnalyticsEventRepo,
	cache SuggestionCacheService,
	personalizer PersonalizerService,
	fallback FallbackService,
	gate GateService,
	genClient GenerationClient,
) SuggestionService {
	return &suggestionService{
		db:           db,
		log:          baseLog.With("service", "SuggestionService"),
		userRepo:     userRepo,
		prefsRepo:    prefsRepo,
		templateRepo: templateRepo,
		animalRepo:   animalRepo,
		journalRepo:  journalRepo,
		eventRepo:    eventRepo,
		cache:        cache,
		personalizer: personalizer,
		fallback:     fallback,
		gate:         gate,
		genClient:    genClient,
		nowFn:        time.Now,
	}
}

func (s *suggestionService) GetSuggestions(ctx context.Context, userID uuid.UUID, req SuggestionRequest) (*SuggestionResponse, error) {
	if strings.TrimSpace(req.Category) == "" {
		return nil, &ValidationError{Field: "category", Reason: "is required"}
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	verification := ClassifyAge(user.BirthDate, s.nowFn())
	if verification.CoppaProtected && !user.ParentalConsent {
		// The suggestion path never substitutes canned content; the
		// generation path still can, hence fallbackAvailable.
		return nil, &ConsentRequiredError{FallbackAvailable: true}
	}

	started := s.nowFn()

	var (
		animal *AnimalContext
		prefs  *types.UserPreferences
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var aErr error
		animal, aErr = s.resolveAnimalContext(gctx, userID, req.AnimalID)
		return aErr
	})
	g.Go(func() error {
		var pErr error
		prefs, pErr = s.ensurePreferences(gctx, userID, verification)
		return pErr
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	species := req.Species
	if species == "" && animal != nil {
		species = animal.Species
	}
	competency := strings.TrimSpace(req.CompetencyLevel)
	if competency == "" {
		competency = user.ExperienceLevel
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}
	if limit > maxSuggestionLimit {
		limit = maxSuggestionLimit
	}

	key := BuildCacheKey(req.Category, species, verification.AgeGroup, competency, req.Weather)

	entry, hit, err := s.cache.Lookup(ctx, key)
	if err != nil {
		// A broken cache degrades to a catalog query, not a failure.
		s.log.Warn("cache lookup failed", "cache_key", key, "error", err)
		hit = false
	}

	var raw []CachedTemplate
	if hit {
		raw = entry.Templates
	} else {
		queryStart := s.nowFn()
		candidates, qErr := s.templateRepo.QueryCatalog(ctx, nil, repos.CatalogFilter{
			Category:        req.Category,
			Species:         species,
			AgeGroup:        verification.AgeGroup,
			CompetencyLevel: competency,
			WeatherPattern:  req.Weather,
			Limit:           limit,
		})
		if qErr != nil {
			return nil, qErr
		}
		raw = cachedTemplatesFrom(candidates)
		if sErr := s.cache.Store(ctx, key, raw, s.nowFn().Sub(queryStart).Milliseconds()); sErr != nil {
			s.log.Warn("cache store failed", "cache_key", key, "error", sErr)
		}
	}
	if len(raw) > limit {
		raw = raw[:limit]
	}

	// Cached templates are raw; personalization always reflects the current
	// caller's animal and weather.
	suggestions := s.personalizer.Personalize(raw, animal, req.Weather)
	suggestions = filterBlocked(suggestions, prefs)

	s.recordAsync(&types.AnalyticsEvent{
		ID:                    uuid.New(),
		UserID:                userID,
		EventType:             types.EventSuggested,
		SessionID:             sessionIDFrom(ctx),
		ResponseTimeMs:        int(s.nowFn().Sub(started).Milliseconds()),
		AgeGroup:              verification.AgeGroup,
		ParentConsentVerified: user.ParentalConsent,
		TriggerContext:        req.Category,
		CreatedAt:             s.nowFn().UTC(),
	})

	return &SuggestionResponse{
		Suggestions: suggestions,
		CacheHit:    hit,
		AgeGroup:    verification.AgeGroup,
	}, nil
}

func (s *suggestionService) GenerateEntry(ctx context.Context, userID uuid.UUID, req GenerateEntryRequest) (*GenerateEntryResponse, error) {
	if strings.TrimSpace(req.Category) == "" {
		return nil, &ValidationError{Field: "category", Reason: "is required"}
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	verification := ClassifyAge(user.BirthDate, s.nowFn())

	animal, err := s.resolveAnimalContext(ctx, userID, req.AnimalID)
	if err != nil {
		return nil, err
	}
	animalName := ""
	if animal != nil {
		animalName = animal.Name
	}

	if gateErr := s.gate.CheckGeneration(ctx, nil, userID, verification, user.ParentalConsent); gateErr != nil {
		var consentErr *ConsentRequiredError
		var rateErr *RateLimitError
		switch {
		case errors.As(gateErr, &consentErr):
			return s.fallbackResponse(req.Category, verification, animalName, FallbackReasonConsentRequired), nil
		case errors.As(gateErr, &rateErr):
			return s.fallbackResponse(req.Category, verification, animalName, FallbackReasonRateLimited), nil
		default:
			return nil, gateErr
		}
	}

	prefs, err := s.ensurePreferences(ctx, userID, verification)
	if err != nil {
		return nil, err
	}

	recentCategories, recentStandards, err := s.educationalContext(ctx, userID)
	if err != nil {
		s.log.Warn("educational context lookup failed", "user_id", userID.String(), "error", err)
	}

	genReq := &GenerationRequest{
		Category:           req.Category,
		AgeGroup:           verification.AgeGroup,
		CompetencyLevel:    user.ExperienceLevel,
		SafeContentOnly:    prefs.SafeContentOnly,
		Complexity:         prefs.Complexity,
		Animal:             animal,
		Weather:            req.Weather,
		Location:           req.Location,
		Customization:      req.Customization,
		RecentCategories:   recentCategories,
		RecentFFAStandards: recentStandards,
	}

	result, genErr := s.genClient.GenerateEntry(ctx, genReq)
	if genErr != nil {
		reason := FallbackReasonUpstreamError
		if errors.Is(genErr, ErrUpstreamTimeout) {
			reason = FallbackReasonUpstreamTimeout
		}
		s.log.Warn("generation upstream failed, serving fallback",
			"user_id", userID.String(),
			"category", req.Category,
			"reason", reason,
			"error", genErr,
		)
		// No `generated` event on failure: a fallback never consumes
		// quota.
		return s.fallbackResponse(req.Category, verification, animalName, reason), nil
	}

	s.recordAsync(&types.AnalyticsEvent{
		ID:                    uuid.New(),
		UserID:                userID,
		EventType:             types.EventGenerated,
		SessionID:             sessionIDFrom(ctx),
		ResponseTimeMs:        int(result.ResponseTimeMs),
		QualityScore:          result.QualityScore,
		AgeGroup:              verification.AgeGroup,
		ParentConsentVerified: user.ParentalConsent,
		TriggerContext:        req.Category,
		CreatedAt:             s.nowFn().UTC(),
	})

	return &GenerateEntryResponse{
		Title:          result.Title,
		Content:        result.Content,
		FallbackUsed:   false,
		QualityScore:   result.QualityScore,
		ResponseTimeMs: result.ResponseTimeMs,
		AgeGroup:       verification.AgeGroup,
	}, nil
}

func (s *suggestionService) fallbackResponse(category string, verification AgeVerification, animalName, reason string) *GenerateEntryResponse {
	content := s.fallback.Generate(category, verification.AgeGroup, animalName)
	return &GenerateEntryResponse{
		Title:          content.Title,
		Content:        content.Content,
		FallbackUsed:   true,
		FallbackReason: reason,
		AgeGroup:       verification.AgeGroup,
	}
}

func (s *suggestionService) loadUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	users, err := s.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, &ValidationError{Field: "user", Reason: "not found"}
	}
	return users[0], nil
}

// resolveAnimalContext returns nil when no animal id was supplied or the id
// does not belong to the requesting user. Absence is context, not an error.
func (s *suggestionService) resolveAnimalContext(ctx context.Context, userID uuid.UUID, animalID *uuid.UUID) (*AnimalContext, error) {
	if animalID == nil || *animalID == uuid.Nil {
		return nil, nil
	}
	animal, err := s.animalRepo.GetByIDAndOwner(ctx, nil, *animalID, userID)
	if err != nil {
		return nil, err
	}
	if animal == nil {
		return nil, nil
	}
	return &AnimalContext{
		Name:       animal.Name,
		Species:    animal.Species,
		AgeInWeeks: animal.AgeInWeeks(s.nowFn()),
	}, nil
}

// ensurePreferences lazily creates the preferences row on a user's first
// suggestion request.
func (s *suggestionService) ensurePreferences(ctx context.Context, userID uuid.UUID, verification AgeVerification) (*types.UserPreferences, error) {
	prefs, err := s.prefsRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if prefs != nil {
		return prefs, nil
	}

	complexity := types.ComplexityAgeAppropriate
	if verification.AgeGroup == AgeGroupUnder13 {
		complexity = types.ComplexitySimple
	}
	prefs = &types.UserPreferences{
		ID:               uuid.New(),
		UserID:           userID,
		ParentSupervised: verification.CoppaProtected,
		SafeContentOnly:  true,
		Complexity:       complexity,
	}
	created, err := s.prefsRepo.Create(ctx, nil, prefs)
	if err != nil {
		// A concurrent first request may have won the insert.
		if existing, gErr := s.prefsRepo.GetByUserID(ctx, nil, userID); gErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return created, nil
}

func (s *suggestionService) educationalContext(ctx context.Context, userID uuid.UUID) ([]string, []string, error) {
	entries, err := s.journalRepo.GetRecentByUser(ctx, nil, userID, recentEntryWindow)
	if err != nil {
		return nil, nil, err
	}

	seenCat := map[string]bool{}
	seenStd := map[string]bool{}
	categories := []string{}
	standards := []string{}
	for _, e := range entries {
		if e.Category != "" && !seenCat[e.Category] && len(categories) < maxRecentCategories {
			seenCat[e.Category] = true
			categories = append(categories, e.Category)
		}
		for _, std := range e.FFAStandardsList() {
			if std != "" && !seenStd[std] && len(standards) < maxRecentStandards {
				seenStd[std] = true
				standards = append(standards, std)
			}
		}
	}
	return categories, standards, nil
}

// recordAsync appends an analytics event off the request path. Telemetry
// failure never surfaces to the caller.
func (s *suggestionService) recordAsync(event *types.AnalyticsEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryTimeout)
		defer cancel()
		if _, err := s.eventRepo.Create(ctx, nil, []*types.AnalyticsEvent{event}); err != nil {
			s.log.Warn("analytics write failed",
				"event_type", event.EventType,
				"user_id", event.UserID.String(),
				"error", err,
			)
		}
	}()
}

func cachedTemplatesFrom(templates []*types.SuggestionTemplate) []CachedTemplate {
	out := make([]CachedTemplate, 0, len(templates))
	for _, t := range templates {
		out = append(out, CachedTemplate{
			TemplateID:      t.ID.String(),
			TitleTemplate:   t.TitleTemplate,
			ContentTemplate: t.ContentTemplate,
			Category:        t.Category,
			FFAStandards:    t.FFAStandardsList(),
			SuccessRate:     t.SuccessRate,
			UsageCount:      t.UsageCount,
		})
	}
	return out
}

func filterBlocked(suggestions []PersonalizedSuggestion, prefs *types.UserPreferences) []PersonalizedSuggestion {
	if prefs == nil {
		return suggestions
	}
	blocked := map[string]bool{}
	for _, id := range prefs.BlockedList() {
		blocked[id] = true
	}
	if len(blocked) == 0 {
		return suggestions
	}
	out := suggestions[:0]
	for _, sg := range suggestions {
		if !blocked[sg.TemplateID] {
			out = append(out, sg)
		}
	}
	return out
}

func sessionIDFrom(ctx context.Context) string {
	if rd := requestdata.GetRequestData(ctx); rd != nil {
		return rd.SessionID
	}
	return ""
}
