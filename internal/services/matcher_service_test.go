package services

import (
	"context"
	"testing"

	"meatmarket-api/internal/database"
	"meatmarket-api/internal/models"
	"meatmarket-api/internal/repositories"
	"meatmarket-api/internal/similarity"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/suite"
)

func TestMatcherServiceSuite(t *testing.T) {
	suite.Run(t, new(MatcherServiceSuite))
}

type MatcherServiceSuite struct {
	suite.Suite
	db            *database.DB
	cutRepo       repositories.NormalizedCutRepositoryInterface
	variationRepo repositories.CutVariationRepositoryInterface
	matcher       MatcherServiceInterface
	ctx           context.Context
}

func (s *MatcherServiceSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.cutRepo = repositories.NewNormalizedCutRepository(s.db.DB)
	s.variationRepo = repositories.NewCutVariationRepository(s.db.DB)
	s.matcher = NewMatcherService(s.cutRepo, s.variationRepo, similarity.NewEngine())
	s.ctx = context.Background()
}

func (s *MatcherServiceSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *MatcherServiceSuite) TestFindCandidates_EmptyNameReturnsNothing() {
	matches, err := s.matcher.FindCandidates(s.ctx, "   ", "", 10, 0.3)
	s.NoError(err)
	s.Empty(matches)
}

func (s *MatcherServiceSuite) TestFindCandidates_NonPositiveLimitReturnsNothing() {
	database.CreateTestCut(s.T(), s.db, "אנטריקוט", models.CategoryBeef, models.CutTypeSteak)

	matches, err := s.matcher.FindCandidates(s.ctx, "אנטריקוט", "", 0, 0.3)
	s.NoError(err)
	s.Empty(matches)
}

func (s *MatcherServiceSuite) TestFindCandidates_ExactCanonicalName() {
	cut := database.CreateTestCut(s.T(), s.db, "אנטריקוט", models.CategoryBeef, models.CutTypeSteak)

	matches, err := s.matcher.FindCandidates(s.ctx, "  אנטריקוט  ", "", 10, 0.3)
	s.NoError(err)
	s.Require().Len(matches, 1)
	s.Equal(cut.ID, matches[0].Cut.ID)
	s.Equal(models.MatchTypeExact, matches[0].MatchType)
	s.Equal(1.0, matches[0].Confidence)
}

func (s *MatcherServiceSuite) TestFindCandidates_DiacriticsFoldToExactMatch() {
	cut := database.CreateTestCut(s.T(), s.db, "Entrecote", models.CategoryBeef, models.CutTypeSteak)

	matches, err := s.matcher.FindCandidates(s.ctx, "Entrecôte", "", 10, 0.3)
	s.NoError(err)
	s.Require().NotEmpty(matches)
	s.Equal(cut.ID, matches[0].Cut.ID)
	s.Equal(models.MatchTypeExact, matches[0].MatchType)
	s.Equal(1.0, matches[0].Confidence)
}

func (s *MatcherServiceSuite) TestFindCandidates_KnownVariationWins() {
	cut := database.CreateTestCut(s.T(), s.db, "אנטריקוט", models.CategoryBeef, models.CutTypeSteak)
	database.CreateTestVariation(s.T(), s.db, cut, "סטייק אנטריקוט מיושן", 0.8, false)

	matches, err := s.matcher.FindCandidates(s.ctx, "סטייק אנטריקוט מיושן", "", 10, 0.3)
	s.NoError(err)
	s.Require().NotEmpty(matches)
	s.Equal(cut.ID, matches[0].Cut.ID)
	s.Equal(models.MatchTypeVariation, matches[0].MatchType)
	s.Equal(0.8, matches[0].Confidence)
}

func (s *MatcherServiceSuite) TestFindCandidates_VerifiedVariationScoresFull() {
	cut := database.CreateTestCut(s.T(), s.db, "אנטריקוט", models.CategoryBeef, models.CutTypeSteak)
	database.CreateTestVariation(s.T(), s.db, cut, "סטייק אנטריקוט מיושן", 0.6, true)

	matches, err := s.matcher.FindCandidates(s.ctx, "סטייק אנטריקוט מיושן", "", 10, 0.3)
	s.NoError(err)
	s.Require().NotEmpty(matches)
	s.Equal(models.MatchTypeVariation, matches[0].MatchType)
	s.Equal(1.0, matches[0].Confidence)
}

func (s *MatcherServiceSuite) TestFindCandidates_FuzzyMatch() {
	cut := database.CreateTestCut(s.T(), s.db, "אנטריקוט", models.CategoryBeef, models.CutTypeSteak)

	// Extra word drives the score below exact but above the floor
	matches, err := s.matcher.FindCandidates(s.ctx, "אנטריקוט טרי", "", 10, 0.3)
	s.NoError(err)
	s.Require().Len(matches, 1)
	s.Equal(cut.ID, matches[0].Cut.ID)
	s.Equal(models.MatchTypeFuzzy, matches[0].MatchType)
	s.Greater(matches[0].Confidence, 0.3)
	s.Less(matches[0].Confidence, 1.0)
}

func (s *MatcherServiceSuite) TestFindCandidates_MinConfidenceFiltersFuzzy() {
	database.CreateTestCut(s.T(), s.db, "אנטריקוט", models.CategoryBeef, models.CutTypeSteak)

	matches, err := s.matcher.FindCandidates(s.ctx, "אנטריקוט טרי", "", 10, 0.95)
	s.NoError(err)
	s.Empty(matches)
}

func (s *MatcherServiceSuite) TestFindCandidates_CategoryFilter() {
	beef := database.CreateTestCut(s.T(), s.db, "פילה", models.CategoryBeef, models.CutTypeFillet)
	database.CreateTestCut(s.T(), s.db, "פילה", models.CategoryFish, models.CutTypeFillet)

	matches, err := s.matcher.FindCandidates(s.ctx, "פילה", models.CategoryBeef, 10, 0.3)
	s.NoError(err)
	s.Require().Len(matches, 1)
	s.Equal(beef.ID, matches[0].Cut.ID)
	s.Equal(models.CategoryBeef, matches[0].Cut.Category)
}

func (s *MatcherServiceSuite) TestFindCandidates_SameNameBothCategoriesWithoutFilter() {
	database.CreateTestCut(s.T(), s.db, "פילה", models.CategoryBeef, models.CutTypeFillet)
	database.CreateTestCut(s.T(), s.db, "פילה", models.CategoryFish, models.CutTypeFillet)

	matches, err := s.matcher.FindCandidates(s.ctx, "פילה", "", 10, 0.3)
	s.NoError(err)
	s.Len(matches, 2)
}

func (s *MatcherServiceSuite) TestFindCandidates_DeduplicatesPerCut() {
	cut := database.CreateTestCut(s.T(), s.db, "אנטריקוט", models.CategoryBeef, models.CutTypeSteak)
	database.CreateTestVariation(s.T(), s.db, cut, "אנטריקוט בקר", 0.9, false)

	// The raw name hits the canonical name exactly and the variation fuzzily;
	// only the best entry for the cut survives
	matches, err := s.matcher.FindCandidates(s.ctx, "אנטריקוט", "", 10, 0.3)
	s.NoError(err)
	s.Require().Len(matches, 1)
	s.Equal(models.MatchTypeExact, matches[0].MatchType)
	s.Equal(1.0, matches[0].Confidence)
}

func (s *MatcherServiceSuite) TestFindCandidates_VariationFuzzyHitIsDiscounted() {
	cut := database.CreateTestCut(s.T(), s.db, "שייטל", models.CategoryBeef, models.CutTypeRoast)
	database.CreateTestVariation(s.T(), s.db, cut, "צלי שייטל", 0.8, false)

	// "צלי שייטל טרי" overlaps the variation name, not the canonical name,
	// so the score is capped by the variation's own confidence
	matches, err := s.matcher.FindCandidates(s.ctx, "צלי שייטל טרי", "", 10, 0.3)
	s.NoError(err)
	s.Require().NotEmpty(matches)
	s.Equal(cut.ID, matches[0].Cut.ID)
	s.Equal(models.MatchTypeFuzzy, matches[0].MatchType)
	s.LessOrEqual(matches[0].Confidence, 0.8)
}

func (s *MatcherServiceSuite) TestFindCandidates_OrderedByConfidence() {
	exact := database.CreateTestCut(s.T(), s.db, "חזה עוף", models.CategoryChicken, models.CutTypeBreast)
	database.CreateTestCut(s.T(), s.db, "חזה הודו", models.CategoryChicken, models.CutTypeBreast)

	matches, err := s.matcher.FindCandidates(s.ctx, "חזה עוף", "", 10, 0.3)
	s.NoError(err)
	s.Require().GreaterOrEqual(len(matches), 2)
	s.Equal(exact.ID, matches[0].Cut.ID)
	for i := 1; i < len(matches); i++ {
		s.LessOrEqual(matches[i].Confidence, matches[i-1].Confidence)
	}
}

func (s *MatcherServiceSuite) TestFindCandidates_LimitTruncates() {
	database.CreateTestCut(s.T(), s.db, "שוק עוף", models.CategoryChicken, models.CutTypeShank)
	database.CreateTestCut(s.T(), s.db, "שוק הודו", models.CategoryChicken, models.CutTypeShank)
	database.CreateTestCut(s.T(), s.db, "שוק טלה", models.CategoryLamb, models.CutTypeShank)

	matches, err := s.matcher.FindCandidates(s.ctx, "שוק עוף", "", 1, 0.3)
	s.NoError(err)
	s.Len(matches, 1)
}

func (s *MatcherServiceSuite) TestFindCandidates_DeterministicTieBreakPrefersShorterName() {
	database.CreateTestCut(s.T(), s.db, "כבד אווז", models.CategoryChicken, models.CutTypeWhole)
	database.CreateTestCut(s.T(), s.db, "כבד", models.CategoryChicken, models.CutTypeWhole)

	// Run the same query repeatedly; the ordering must not wobble
	var first []models.CutMatch
	for i := 0; i < 5; i++ {
		matches, err := s.matcher.FindCandidates(s.ctx, "כבד עוף", "", 10, 0.1)
		s.NoError(err)
		if first == nil {
			first = matches
			continue
		}
		s.Require().Len(matches, len(first))
		for j := range matches {
			s.Equal(first[j].Cut.ID, matches[j].Cut.ID)
		}
	}
}

func (s *MatcherServiceSuite) TestHasExactMatch() {
	s.False(HasExactMatch(nil))
	s.False(HasExactMatch([]models.CutMatch{{MatchType: models.MatchTypeFuzzy}}))
	s.True(HasExactMatch([]models.CutMatch{{MatchType: models.MatchTypeExact}}))
	s.True(HasExactMatch([]models.CutMatch{
		{MatchType: models.MatchTypeFuzzy},
		{MatchType: models.MatchTypeVariation},
	}))
}

func (s *MatcherServiceSuite) TestFindCandidates_UnrelatedProductNamesNeverMatch() {
	gofakeit.Seed(7)
	database.CreateTestCut(s.T(), s.db, "אנטריקוט", models.CategoryBeef, models.CutTypeSteak)
	database.CreateTestCut(s.T(), s.db, "חזה עוף", models.CategoryChicken, models.CutTypeFillet)

	for i := 0; i < 10; i++ {
		matches, err := s.matcher.FindCandidates(s.ctx, gofakeit.Company()+" product", "", 10, 0.3)
		s.NoError(err)
		s.Empty(matches)
	}
}
