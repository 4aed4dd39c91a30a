package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"meatmarket-api/internal/models"
	"meatmarket-api/internal/repositories"
	"meatmarket-api/internal/similarity"
)

// MatcherService ranks canonical-cut candidates for raw names. It is a pure
// computation over store data and is safe for concurrent use.
type MatcherService struct {
	cutRepo       repositories.NormalizedCutRepositoryInterface
	variationRepo repositories.CutVariationRepositoryInterface
	scorer        similarity.Scorer
}

// NewMatcherService creates a new matcher service
func NewMatcherService(
	cutRepo repositories.NormalizedCutRepositoryInterface,
	variationRepo repositories.CutVariationRepositoryInterface,
	scorer similarity.Scorer,
) MatcherServiceInterface {
	return &MatcherService{
		cutRepo:       cutRepo,
		variationRepo: variationRepo,
		scorer:        scorer,
	}
}

// FindCandidates looks up a raw name in three stages: known variation,
// exact canonical name, then fuzzy scoring over canonical names and known
// variations. Results are deduplicated per cut (best confidence wins) and
// ordered by confidence, then shorter canonical name, then cut ID.
func (s *MatcherService) FindCandidates(ctx context.Context, rawName, category string, limit int, minConfidence float64) ([]models.CutMatch, error) {
	folded := similarity.Fold(rawName)
	if folded == "" || limit <= 0 {
		return []models.CutMatch{}, nil
	}

	best := make(map[string]models.CutMatch)

	// Stage 1: known variation, trusted without re-scoring when verified
	variation, err := s.variationRepo.GetByNormalizedName(ctx, folded)
	if err != nil && !errors.Is(err, repositories.ErrVariationNotFound) {
		return nil, fmt.Errorf("variation lookup failed: %w", err)
	}
	if variation != nil && variation.NormalizedCut != nil &&
		(category == "" || variation.NormalizedCut.Category == category) {
		keepBest(best, models.CutMatch{
			Cut:        variation.NormalizedCut,
			Confidence: variation.EffectiveConfidence(),
			MatchType:  models.MatchTypeVariation,
		})
	}

	// Stage 2: exact canonical name
	if len(best) == 0 {
		cut, err := s.cutRepo.GetByNormalizedName(ctx, category, folded)
		if err != nil && !errors.Is(err, repositories.ErrCutNotFound) {
			return nil, fmt.Errorf("canonical lookup failed: %w", err)
		}
		if cut != nil {
			keepBest(best, models.CutMatch{
				Cut:        cut,
				Confidence: 1.0,
				MatchType:  models.MatchTypeExact,
			})
		}
	}

	// Stage 3: fuzzy fallback over canonical names and variation names
	cuts, err := s.cutRepo.ListCandidates(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("candidate listing failed: %w", err)
	}
	for _, cut := range cuts {
		score := s.scorer.Score(rawName, cut.Name)
		if score < minConfidence {
			continue
		}
		keepBest(best, models.CutMatch{
			Cut:        cut,
			Confidence: score,
			MatchType:  models.MatchTypeFuzzy,
		})
	}

	variations, err := s.variationRepo.ListCandidates(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("variation candidate listing failed: %w", err)
	}
	for _, candidate := range variations {
		if candidate.NormalizedCut == nil {
			continue
		}
		score := s.scorer.Score(rawName, candidate.OriginalName)
		if score < minConfidence {
			continue
		}
		// A fuzzy hit through a variation is only as trustworthy as the
		// variation's own mapping
		confidence := score * candidate.EffectiveConfidence()
		if confidence < minConfidence {
			continue
		}
		keepBest(best, models.CutMatch{
			Cut:        candidate.NormalizedCut,
			Confidence: confidence,
			MatchType:  models.MatchTypeFuzzy,
		})
	}

	matches := make([]models.CutMatch, 0, len(best))
	for _, match := range best {
		matches = append(matches, match)
	}

	sortMatches(matches)

	if len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}

// keepBest retains the highest-confidence match per cut. On equal
// confidence a non-fuzzy match wins over a fuzzy one.
func keepBest(best map[string]models.CutMatch, match models.CutMatch) {
	key := match.Cut.ID.String()

	existing, ok := best[key]
	if !ok {
		best[key] = match
		return
	}

	if match.Confidence > existing.Confidence {
		best[key] = match
		return
	}

	if match.Confidence == existing.Confidence &&
		existing.MatchType == models.MatchTypeFuzzy &&
		match.MatchType != models.MatchTypeFuzzy {
		best[key] = match
	}
}

// sortMatches orders by confidence descending, then shorter canonical name
// (prefer the more concise cut), then cut ID for determinism
func sortMatches(matches []models.CutMatch) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}

		nameI := len([]rune(matches[i].Cut.Name))
		nameJ := len([]rune(matches[j].Cut.Name))
		if nameI != nameJ {
			return nameI < nameJ
		}

		return strings.Compare(matches[i].Cut.ID.String(), matches[j].Cut.ID.String()) < 0
	})
}
