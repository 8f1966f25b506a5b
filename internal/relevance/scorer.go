// Package relevance assigns a 0-100 regional relevance score to extracted
// articles from source-type priors and region term matches.
package relevance

import (
	"strings"

	"github.com/localscout-hq/localscout/internal/domain"
	"github.com/localscout-hq/localscout/internal/logger"
)

// Source-type base scores. A hyperlocal outlet is presumed relevant to its
// region before a single keyword matches.
const (
	baseHyperlocal = 70
	baseRegional   = 40
	baseNational   = 0
)

// Per-match category bonuses.
const (
	keywordBonus      = 25
	landmarkBonus     = 20
	organizationBonus = 15
	postcodeBonus     = 15
)

// Scorer scores candidates against a region term table.
type Scorer struct {
	regions map[string]RegionConfig
	log     logger.Logger
}

// NewScorer builds a Scorer. A nil table falls back to the built-in regions.
func NewScorer(regions map[string]RegionConfig, log logger.Logger) *Scorer {
	if regions == nil {
		regions = DefaultRegions()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Scorer{regions: regions, log: log}
}

// Score computes the regional relevance of a candidate for the given source
// type and region. A missing region configuration degrades to the source-type
// base score; it is never an error. The result is clamped to [0,100].
func (s *Scorer) Score(c domain.Candidate, sourceType, region string) int {
	score := baseScore(sourceType)

	cfg, ok := s.regions[strings.ToLower(strings.TrimSpace(region))]
	if !ok {
		s.log.DebugObj("no configuration for region, using base score", "relevance_region_missing", map[string]any{
			"region":      region,
			"source_type": sourceType,
		})
		return clamp(score)
	}

	haystack := strings.ToLower(c.Title + " " + c.Body + " " + c.Summary)

	score += countMatches(haystack, cfg.Keywords) * keywordBonus
	score += countMatches(haystack, cfg.Landmarks) * landmarkBonus
	score += countMatches(haystack, cfg.Organizations) * organizationBonus
	score += countMatches(haystack, cfg.Postcodes) * postcodeBonus

	return clamp(score)
}

func baseScore(sourceType string) int {
	switch strings.ToLower(strings.TrimSpace(sourceType)) {
	case domain.SourceTypeHyperlocal:
		return baseHyperlocal
	case domain.SourceTypeRegional:
		return baseRegional
	default:
		return baseNational
	}
}

// countMatches counts how many distinct list entries occur in the haystack.
func countMatches(haystack string, terms []string) int {
	count := 0
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if strings.Contains(haystack, term) {
			count++
		}
	}
	return count
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
