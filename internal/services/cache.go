package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/showtrail/agjournal-backend/internal/clients/redis"
	"github.com/showtrail/agjournal-backend/internal/logger"
)

// Logical cache lifetime. An entry older than this is treated as absent; it
// is never proactively deleted, only ignored and eventually overwritten.
const suggestionCacheTTL = 6 * time.Hour

// Housekeeping expiry on the redis key itself. Must exceed the logical TTL;
// it only bounds how long an ignored entry can linger.
const cacheKeyRetention = 48 * time.Hour

// CachedTemplate is the raw, unpersonalized template snapshot kept in a cache
// entry. Personalization always runs per request against the current caller's
// context, so cached text still contains its placeholder tokens.
type CachedTemplate struct {
	TemplateID      string   `json:"template_id"`
	TitleTemplate   string   `json:"title_template"`
	ContentTemplate string   `json:"content_template"`
	Category        string   `json:"category"`
	FFAStandards    []string `json:"ffa_standards"`
	SuccessRate     float64  `json:"success_rate"`
	UsageCount      int      `json:"usage_count"`
}

type CacheEntry struct {
	Templates        []CachedTemplate `json:"templates"`
	TemplateIDs      []string         `json:"template_ids"`
	GenerationTimeMs int64            `json:"generation_time_ms"`
	CacheHits        int              `json:"cache_hits"`
	LastAccessedAt   time.Time        `json:"last_accessed_at"`
	ExpiresAt        time.Time        `json:"expires_at"`
}

// BuildCacheKey joins the five context dimensions that suggestion content
// depends on. User identity is deliberately omitted: entries are shared
// across users, which bounds cardinality to the cross product of the
// dimensions.
func BuildCacheKey(category, species, ageGroup, competencyLevel, weatherPattern string) string {
	if species == "" {
		species = "any"
	}
	if weatherPattern == "" {
		weatherPattern = "any"
	}
	return strings.Join([]string{category, species, ageGroup, competencyLevel, weatherPattern}, "|")
}

type SuggestionCacheService interface {
	// Lookup returns (entry, true) on a live entry and bumps its hit
	// counters as an observable side effect. Expired or missing keys
	// return (nil, false).
	Lookup(ctx context.Context, key string) (*CacheEntry, bool, error)
	// Store upserts unconditionally; concurrent writers race and the last
	// writer wins.
	Store(ctx context.Context, key string, templates []CachedTemplate, generationTimeMs int64) error
}

type suggestionCacheService struct {
	log   *logger.Logger
	store redis.CacheStore
	nowFn func() time.Time
}

func NewSuggestionCacheService(baseLog *logger.Logger, store redis.CacheStore) SuggestionCacheService {
	return &suggestionCacheService{
		log:   baseLog.With("service", "SuggestionCacheService"),
		store: store,
		nowFn: time.Now,
	}
}

func (s *suggestionCacheService) Lookup(ctx context.Context, key string) (*CacheEntry, bool, error) {
	raw, found, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	var entry CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		s.log.Warn("discarding undecodable cache entry", "cache_key", key, "error", err)
		return nil, false, nil
	}

	now := s.nowFn().UTC()
	if now.After(entry.ExpiresAt) {
		return nil, false, nil
	}

	entry.CacheHits++
	entry.LastAccessedAt = now
	if err := s.writeEntry(ctx, key, &entry); err != nil {
		// The hit still counts for the caller even if the counter
		// write is lost.
		s.log.Warn("cache hit counter update failed", "cache_key", key, "error", err)
	}
	return &entry, true, nil
}

func (s *suggestionCacheService) Store(ctx context.Context, key string, templates []CachedTemplate, generationTimeMs int64) error {
	now := s.nowFn().UTC()
	ids := make([]string, 0, len(templates))
	for _, t := range templates {
		ids = append(ids, t.TemplateID)
	}
	entry := &CacheEntry{
		Templates:        templates,
		TemplateIDs:      ids,
		GenerationTimeMs: generationTimeMs,
		CacheHits:        0,
		LastAccessedAt:   now,
		ExpiresAt:        now.Add(suggestionCacheTTL),
	}
	return s.writeEntry(ctx, key, entry)
}

func (s *suggestionCacheService) writeEntry(ctx context.Context, key string, entry *CacheEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, key, string(b), cacheKeyRetention)
}
