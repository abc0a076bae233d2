package services

import (
	"context"
	"testing"
	"time"
)

type fakeCacheStore struct {
	data     map[string]string
	setCalls int
}

func newFakeCacheStore() *fakeCacheStore {
	return &fakeCacheStore{data: map[string]string{}}
}

func (f *fakeCacheStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeCacheStore) Set(_ context.Context, key, val string, _ time.Duration) error {
	f.setCalls++
	f.data[key] = val
	return nil
}

func (f *fakeCacheStore) Close() error { return nil }

func TestBuildCacheKey(t *testing.T) {
	cases := []struct {
		name string
		key  string
		want string
	}{
		{
			name: "all_dimensions",
			key:  BuildCacheKey("feeding", "goat", AgeGroupTeen, "intermediate", "rainy"),
			want: "feeding|goat|13_to_17|intermediate|rainy",
		},
		{
			name: "missing_species_and_weather",
			key:  BuildCacheKey("daily_care", "", AgeGroupUnder13, "novice", ""),
			want: "daily_care|any|under_13|novice|any",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.key != tc.want {
				t.Fatalf("cache key: want=%q got=%q", tc.want, tc.key)
			}
		})
	}
}

func TestCacheLookupWithinTTL(t *testing.T) {
	store := newFakeCacheStore()
	svc := &suggestionCacheService{log: testLogger(t), store: store}

	frozen := time.Date(2025, time.April, 1, 8, 0, 0, 0, time.UTC)
	svc.nowFn = func() time.Time { return frozen }

	key := BuildCacheKey("feeding", "pig", AgeGroupTeen, "novice", "any")
	templates := []CachedTemplate{{TemplateID: "t1", TitleTemplate: "Feeding {{animal_name}}", ContentTemplate: "Fed {{animal_name}} today."}}
	if err := svc.Store(context.Background(), key, templates, 42); err != nil {
		t.Fatalf("Store: %v", err)
	}

	// 5h59m later the entry is still live.
	svc.nowFn = func() time.Time { return frozen.Add(6*time.Hour - time.Minute) }
	entry, hit, err := svc.Lookup(context.Background(), key)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !hit {
		t.Fatalf("Lookup before expiry: want hit")
	}
	if entry.CacheHits != 1 {
		t.Fatalf("cache hits: want=1 got=%d", entry.CacheHits)
	}
	if len(entry.Templates) != 1 || entry.Templates[0].TemplateID != "t1" {
		t.Fatalf("templates round trip: got=%+v", entry.Templates)
	}
	if entry.GenerationTimeMs != 42 {
		t.Fatalf("generation time: want=42 got=%d", entry.GenerationTimeMs)
	}
}

func TestCacheLookupAfterTTLTreatedAbsent(t *testing.T) {
	store := newFakeCacheStore()
	svc := &suggestionCacheService{log: testLogger(t), store: store}

	frozen := time.Date(2025, time.April, 1, 8, 0, 0, 0, time.UTC)
	svc.nowFn = func() time.Time { return frozen }

	key := BuildCacheKey("health_check", "", AgeGroupAdult, "advanced", "")
	if err := svc.Store(context.Background(), key, []CachedTemplate{{TemplateID: "t2"}}, 0); err != nil {
		t.Fatalf("Store: %v", err)
	}

	svc.nowFn = func() time.Time { return frozen.Add(6*time.Hour + time.Second) }
	_, hit, err := svc.Lookup(context.Background(), key)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if hit {
		t.Fatalf("Lookup after expiry: want miss")
	}
	// The stale entry is ignored, not deleted.
	if _, stillThere := store.data[key]; !stillThere {
		t.Fatalf("expired entry should remain until overwritten")
	}
}

func TestCacheHitCountAccumulates(t *testing.T) {
	store := newFakeCacheStore()
	svc := &suggestionCacheService{log: testLogger(t), store: store}

	frozen := time.Date(2025, time.April, 1, 8, 0, 0, 0, time.UTC)
	svc.nowFn = func() time.Time { return frozen }

	key := BuildCacheKey("feeding", "", AgeGroupTeen, "novice", "")
	if err := svc.Store(context.Background(), key, []CachedTemplate{{TemplateID: "t3"}}, 0); err != nil {
		t.Fatalf("Store: %v", err)
	}

	for i := 1; i <= 3; i++ {
		access := frozen.Add(time.Duration(i) * time.Minute)
		svc.nowFn = func() time.Time { return access }
		entry, hit, err := svc.Lookup(context.Background(), key)
		if err != nil || !hit {
			t.Fatalf("Lookup %d: hit=%v err=%v", i, hit, err)
		}
		if entry.CacheHits != i {
			t.Fatalf("cache hits after lookup %d: want=%d got=%d", i, i, entry.CacheHits)
		}
		if !entry.LastAccessedAt.Equal(access) {
			t.Fatalf("last accessed: want=%s got=%s", access, entry.LastAccessedAt)
		}
	}
}

func TestCacheStoreOverwrites(t *testing.T) {
	store := newFakeCacheStore()
	svc := &suggestionCacheService{log: testLogger(t), store: store}
	svc.nowFn = time.Now

	key := BuildCacheKey("showmanship", "", AgeGroupAdult, "advanced", "")
	if err := svc.Store(context.Background(), key, []CachedTemplate{{TemplateID: "old"}}, 0); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := svc.Store(context.Background(), key, []CachedTemplate{{TemplateID: "new"}}, 0); err != nil {
		t.Fatalf("Store: %v", err)
	}

	entry, hit, err := svc.Lookup(context.Background(), key)
	if err != nil || !hit {
		t.Fatalf("Lookup: hit=%v err=%v", hit, err)
	}
	if len(entry.TemplateIDs) != 1 || entry.TemplateIDs[0] != "new" {
		t.Fatalf("last writer wins: got=%v", entry.TemplateIDs)
	}
	if entry.CacheHits != 1 {
		t.Fatalf("hit counter resets on overwrite: got=%d", entry.CacheHits)
	}
}
