package services

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fallback_catalog.yaml
var fallbackCatalogYAML []byte

const fallbackDefaultCategory = "daily_care"

// FallbackContent is canned, age-appropriate journal content returned when
// live generation is unavailable or disallowed.
type FallbackContent struct {
	Title    string `json:"title" yaml:"title"`
	Content  string `json:"content" yaml:"content"`
	Category string `json:"category" yaml:"-"`
	AgeGroup string `json:"age_group" yaml:"-"`
}

// FallbackService is a pure lookup over the embedded catalog. It always
// succeeds: unknown categories resolve to the bucket's daily_care template
// and every age group outside under_13 collapses to the teen bucket.
type FallbackService interface {
	Generate(category, ageGroup, animalName string) FallbackContent
}

type fallbackService struct {
	catalog map[string]map[string]FallbackContent
}

func NewFallbackService() (FallbackService, error) {
	var catalog map[string]map[string]FallbackContent
	if err := yaml.Unmarshal(fallbackCatalogYAML, &catalog); err != nil {
		return nil, fmt.Errorf("decode fallback catalog: %w", err)
	}
	for _, bucket := range []string{AgeGroupUnder13, "teen"} {
		if _, ok := catalog[bucket][fallbackDefaultCategory]; !ok {
			return nil, fmt.Errorf("fallback catalog missing %s/%s", bucket, fallbackDefaultCategory)
		}
	}
	return &fallbackService{catalog: catalog}, nil
}

func (s *fallbackService) Generate(category, ageGroup, animalName string) FallbackContent {
	bucket := "teen"
	if ageGroup == AgeGroupUnder13 {
		bucket = AgeGroupUnder13
	}

	entries := s.catalog[bucket]
	entry, ok := entries[category]
	if !ok {
		category = fallbackDefaultCategory
		entry = entries[category]
	}

	name := strings.TrimSpace(animalName)
	if name == "" {
		name = "your animal"
	}

	return FallbackContent{
		Title:    strings.ReplaceAll(entry.Title, tokenAnimalName, name),
		Content:  strings.TrimSpace(strings.ReplaceAll(entry.Content, tokenAnimalName, name)),
		Category: category,
		AgeGroup: bucket,
	}
}
