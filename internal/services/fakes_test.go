package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/showtrail/agjournal-backend/internal/repos"
	"github.com/showtrail/agjournal-backend/internal/types"
)

// In-memory repo fakes shared across the service tests. They implement the
// same query semantics as the SQL repos over plain slices.

type fakeEventRepo struct {
	mu     sync.Mutex
	events []*types.AnalyticsEvent
	err    error
}

func (f *fakeEventRepo) all() []*types.AnalyticsEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*types.AnalyticsEvent, len(f.events))
	copy(out, f.events)
	return out
}

func (f *fakeEventRepo) Create(_ context.Context, _ *gorm.DB, events []*types.AnalyticsEvent) ([]*types.AnalyticsEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.events = append(f.events, events...)
	return events, nil
}

func (f *fakeEventRepo) CountByUserAndTypeBetween(_ context.Context, _ *gorm.DB, userID uuid.UUID, eventType string, from, to time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for _, e := range f.events {
		if e.UserID == userID && e.EventType == eventType && !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (f *fakeEventRepo) GetByUserSince(_ context.Context, _ *gorm.DB, userID uuid.UUID, since time.Time, limit int) ([]*types.AnalyticsEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.AnalyticsEvent
	for _, e := range f.events {
		if e.UserID == userID && !e.CreatedAt.Before(since) {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeEventRepo) GetByTemplateBetween(_ context.Context, _ *gorm.DB, templateID uuid.UUID, from, to time.Time, limit int) ([]*types.AnalyticsEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.AnalyticsEvent
	for _, e := range f.events {
		if e.TemplateID != nil && *e.TemplateID == templateID && !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeEventRepo) CountByTemplateBetween(ctx context.Context, tx *gorm.DB, templateID uuid.UUID, from, to time.Time) (int64, error) {
	events, err := f.GetByTemplateBetween(ctx, tx, templateID, from, to, 0)
	return int64(len(events)), err
}

func (f *fakeEventRepo) CountByTemplateAndTypeBetween(ctx context.Context, tx *gorm.DB, templateID uuid.UUID, eventType string, from, to time.Time) (int64, error) {
	events, err := f.GetByTemplateBetween(ctx, tx, templateID, from, to, 0)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, e := range events {
		if e.EventType == eventType {
			n++
		}
	}
	return n, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*types.User
}

func (f *fakeUserRepo) Create(_ context.Context, _ *gorm.DB, users []*types.User) ([]*types.User, error) {
	for _, u := range users {
		f.users[u.ID] = u
	}
	return users, nil
}

func (f *fakeUserRepo) GetByIDs(_ context.Context, _ *gorm.DB, ids []uuid.UUID) ([]*types.User, error) {
	var out []*types.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByEmails(_ context.Context, _ *gorm.DB, emails []string) ([]*types.User, error) {
	var out []*types.User
	for _, u := range f.users {
		for _, email := range emails {
			if u.Email == email {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

type fakePrefsRepo struct {
	mu    sync.Mutex
	prefs map[uuid.UUID]*types.UserPreferences
}

func newFakePrefsRepo() *fakePrefsRepo {
	return &fakePrefsRepo{prefs: map[uuid.UUID]*types.UserPreferences{}}
}

func (f *fakePrefsRepo) Create(_ context.Context, _ *gorm.DB, p *types.UserPreferences) (*types.UserPreferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefs[p.UserID] = p
	return p, nil
}

func (f *fakePrefsRepo) GetByUserID(_ context.Context, _ *gorm.DB, userID uuid.UUID) (*types.UserPreferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prefs[userID], nil
}

func (f *fakePrefsRepo) Save(_ context.Context, _ *gorm.DB, p *types.UserPreferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefs[p.UserID] = p
	return nil
}

type fakeTemplateRepo struct {
	templates []*types.SuggestionTemplate
	queries   int
}

func (f *fakeTemplateRepo) Create(_ context.Context, _ *gorm.DB, templates []*types.SuggestionTemplate) ([]*types.SuggestionTemplate, error) {
	f.templates = append(f.templates, templates...)
	return templates, nil
}

func (f *fakeTemplateRepo) GetByIDs(_ context.Context, _ *gorm.DB, ids []uuid.UUID) ([]*types.SuggestionTemplate, error) {
	var out []*types.SuggestionTemplate
	for _, t := range f.templates {
		for _, id := range ids {
			if t.ID == id {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (f *fakeTemplateRepo) QueryCatalog(_ context.Context, _ *gorm.DB, filter repos.CatalogFilter) ([]*types.SuggestionTemplate, error) {
	f.queries++
	match := func(dim, want string) bool {
		return want == "" || dim == "any" || dim == want
	}
	var out []*types.SuggestionTemplate
	for _, t := range f.templates {
		if !t.IsActive {
			continue
		}
		if t.Category != filter.Category {
			continue
		}
		if !match(t.Species, filter.Species) || !match(t.AgeGroup, filter.AgeGroup) ||
			!match(t.CompetencyLevel, filter.CompetencyLevel) || !match(t.WeatherPattern, filter.WeatherPattern) {
			continue
		}
		out = append(out, t)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeTemplateRepo) Count(_ context.Context, _ *gorm.DB) (int64, error) {
	return int64(len(f.templates)), nil
}

func (f *fakeTemplateRepo) IncrementAggregates(_ context.Context, _ *gorm.DB, id uuid.UUID, accepted bool, rating *int) error {
	for _, t := range f.templates {
		if t.ID != id {
			continue
		}
		t.UsageCount++
		if accepted {
			t.AcceptedCount++
		}
		t.SuccessRate = float64(t.AcceptedCount) / float64(t.UsageCount)
		if rating != nil {
			t.RatingTotal += *rating
			t.RatingCount++
			t.AverageRating = float64(t.RatingTotal) / float64(t.RatingCount)
		}
	}
	return nil
}

type fakeAnimalRepo struct {
	animals []*types.Animal
}

func (f *fakeAnimalRepo) Create(_ context.Context, _ *gorm.DB, animals []*types.Animal) ([]*types.Animal, error) {
	f.animals = append(f.animals, animals...)
	return animals, nil
}

func (f *fakeAnimalRepo) GetByIDAndOwner(_ context.Context, _ *gorm.DB, id, ownerUserID uuid.UUID) (*types.Animal, error) {
	for _, a := range f.animals {
		if a.ID == id && a.OwnerUserID == ownerUserID {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAnimalRepo) ListByOwner(_ context.Context, _ *gorm.DB, ownerUserID uuid.UUID) ([]*types.Animal, error) {
	var out []*types.Animal
	for _, a := range f.animals {
		if a.OwnerUserID == ownerUserID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeJournalRepo struct {
	entries []*types.JournalEntry
}

func (f *fakeJournalRepo) Create(_ context.Context, _ *gorm.DB, entries []*types.JournalEntry) ([]*types.JournalEntry, error) {
	f.entries = append(f.entries, entries...)
	return entries, nil
}

func (f *fakeJournalRepo) GetRecentByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID, limit int) ([]*types.JournalEntry, error) {
	var out []*types.JournalEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeJournalRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.JournalEntry, error) {
	return f.GetRecentByUser(ctx, tx, userID, 0)
}

type fakeGenClient struct {
	result *GenerationResult
	err    error
	calls  int
}

func (f *fakeGenClient) GenerateEntry(_ context.Context, _ *GenerationRequest) (*GenerationResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}
