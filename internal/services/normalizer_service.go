package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"meatmarket-api/internal/config"
	"meatmarket-api/internal/models"
	"meatmarket-api/internal/repositories"
	"meatmarket-api/internal/similarity"
)

var (
	ErrEmptyName        = errors.New("raw name cannot be empty")
	ErrCategoryRequired = errors.New("category is required when creating a new cut")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidCutType   = errors.New("invalid cut type")
	ErrInvalidSource    = errors.New("invalid variation source")
)

// NormalizerService decides create-vs-attach for raw cut names and performs
// bulk imports
type NormalizerService struct {
	matcher       MatcherServiceInterface
	cutRepo       repositories.NormalizedCutRepositoryInterface
	variationRepo repositories.CutVariationRepositoryInterface
	cfg           config.MatchingConfig
	logger        NormalizationLoggerInterface
	metrics       MetricsRecorderInterface

	// nameLocks serializes creation per normalized name so concurrent
	// bulk rows for the same new cut funnel into one create
	nameLocks sync.Map
}

// NewNormalizerService creates a new normalizer service
func NewNormalizerService(
	matcher MatcherServiceInterface,
	cutRepo repositories.NormalizedCutRepositoryInterface,
	variationRepo repositories.CutVariationRepositoryInterface,
	cfg config.MatchingConfig,
	logger NormalizationLoggerInterface,
	metrics MetricsRecorderInterface,
) NormalizerServiceInterface {
	return &NormalizerService{
		matcher:       matcher,
		cutRepo:       cutRepo,
		variationRepo: variationRepo,
		cfg:           cfg,
		logger:        logger,
		metrics:       metrics,
	}
}

// Normalize implements the create-vs-attach policy:
//   - a known variation is returned as-is (idempotent fast path)
//   - a candidate at or above the attach threshold gets a new variation
//   - below the threshold without forceCreate, the candidates are returned
//     as alternatives and nothing is persisted
//   - with forceCreate, a new cut plus a verified variation are created
func (s *NormalizerService) Normalize(ctx context.Context, rawName string, opts models.NormalizeOptions) (*models.NormalizeResult, error) {
	folded := similarity.Fold(rawName)
	if folded == "" {
		return nil, ErrEmptyName
	}

	if err := validateOptions(&opts); err != nil {
		return nil, err
	}

	startTime := time.Now()
	result, err := s.decide(ctx, rawName, folded, opts, s.cfg.MinConfidence, false)
	duration := time.Since(startTime)

	if err != nil {
		s.metrics.IncrementCounter("normalize_request", map[string]string{"status": "failed"})
		s.logger.LogNormalizeFailed(ctx, rawName, err.Error())
		return nil, err
	}

	s.metrics.IncrementCounter("normalize_request", map[string]string{"status": "success"})
	s.metrics.RecordProcessingTime("normalize", duration)

	return result, nil
}

// decide computes the normalize outcome. With dryRun true it reports the
// same decisions without touching the stores.
func (s *NormalizerService) decide(ctx context.Context, rawName, folded string, opts models.NormalizeOptions, minConfidence float64, dryRun bool) (*models.NormalizeResult, error) {
	candidates, err := s.matcher.FindCandidates(ctx, rawName, opts.Category, s.cfg.SuggestLimit, minConfidence)
	if err != nil {
		return nil, fmt.Errorf("candidate search failed: %w", err)
	}

	// Known variation: the mapping already exists, nothing to persist
	if len(candidates) > 0 && candidates[0].MatchType == models.MatchTypeVariation {
		top := candidates[0]
		s.logger.LogNormalizeDecision(ctx, rawName, "existing_variation", top.Confidence, false)

		result := &models.NormalizeResult{
			NormalizedCut: top.Cut,
			IsNewCut:      false,
			Confidence:    top.Confidence,
			Alternatives:  candidates[1:],
		}
		if !dryRun {
			variation, err := s.variationRepo.GetByNormalizedName(ctx, folded)
			if err != nil {
				return nil, fmt.Errorf("variation fetch failed: %w", err)
			}
			result.Variation = variation
		}
		return result, nil
	}

	// Confident candidate: attach a new variation to it
	if len(candidates) > 0 && candidates[0].Confidence >= s.cfg.AttachThreshold {
		top := candidates[0]
		verified := top.MatchType == models.MatchTypeExact || top.Confidence >= s.cfg.AutoVerifyThreshold

		s.logger.LogNormalizeDecision(ctx, rawName, "attach", top.Confidence, false)

		result := &models.NormalizeResult{
			NormalizedCut: top.Cut,
			IsNewCut:      false,
			Confidence:    top.Confidence,
			Alternatives:  candidates[1:],
		}
		if dryRun {
			return result, nil
		}

		variation, err := s.createVariation(ctx, rawName, folded, top.Cut.ID, top.Confidence, verified, opts)
		if err != nil {
			return nil, err
		}
		result.Variation = variation
		return result, nil
	}

	// No confident candidate and creation not requested: hand the ranked
	// alternatives back for the caller to disambiguate
	if !opts.ForceCreate {
		s.logger.LogNormalizeDecision(ctx, rawName, "ambiguous", topConfidence(candidates), false)

		return &models.NormalizeResult{
			IsNewCut:     false,
			Confidence:   topConfidence(candidates),
			Alternatives: candidates,
		}, nil
	}

	// Forced creation of a brand-new cut
	if opts.Category == "" {
		return nil, ErrCategoryRequired
	}

	s.logger.LogNormalizeDecision(ctx, rawName, "create", 1.0, true)

	if dryRun {
		return &models.NormalizeResult{
			NormalizedCut: &models.NormalizedCut{
				Name:           strings.TrimSpace(rawName),
				NormalizedName: folded,
				Category:       opts.Category,
				CutType:        opts.CutType,
			},
			IsNewCut:     true,
			Confidence:   1.0,
			Alternatives: candidates,
		}, nil
	}

	return s.createCut(ctx, rawName, folded, opts, candidates)
}

// createCut creates a new canonical cut plus its first, verified variation.
// A uniqueness violation means another caller won the race, so the create
// degrades into an attach to the existing row.
func (s *NormalizerService) createCut(ctx context.Context, rawName, folded string, opts models.NormalizeOptions, alternatives []models.CutMatch) (*models.NormalizeResult, error) {
	unlock := s.lockName(folded)
	defer unlock()

	cut := &models.NormalizedCut{
		Name:           strings.TrimSpace(rawName),
		NormalizedName: folded,
		Category:       opts.Category,
		CutType:        opts.CutType,
	}

	isNewCut := true
	if err := s.cutRepo.Create(ctx, cut); err != nil {
		if !errors.Is(err, repositories.ErrCutAlreadyExists) {
			return nil, fmt.Errorf("cut creation failed: %w", err)
		}

		s.logger.LogConflictRecovered(ctx, rawName)
		s.metrics.IncrementCounter("normalize_conflict_recovered", nil)

		existing, lookupErr := s.cutRepo.GetByNormalizedName(ctx, opts.Category, folded)
		if lookupErr != nil {
			return nil, fmt.Errorf("conflict recovery failed: %w", lookupErr)
		}
		cut = existing
		isNewCut = false
	}

	variation, err := s.createVariation(ctx, rawName, folded, cut.ID, 1.0, true, opts)
	if err != nil {
		return nil, err
	}

	return &models.NormalizeResult{
		NormalizedCut: cut,
		Variation:     variation,
		IsNewCut:      isNewCut,
		Confidence:    1.0,
		Alternatives:  alternatives,
	}, nil
}

// createVariation inserts the variation row, recovering from the
// duplicate-name race by returning the row that beat us to it
func (s *NormalizerService) createVariation(ctx context.Context, rawName, folded string, cutID uuid.UUID, confidence float64, verified bool, opts models.NormalizeOptions) (*models.CutVariation, error) {
	variation := &models.CutVariation{
		OriginalName:    strings.TrimSpace(rawName),
		NormalizedName:  folded,
		NormalizedCutID: cutID,
		ConfidenceScore: confidence,
		Source:          sourceOrDefault(opts.Source),
		Verified:        verified,
		CreatedBy:       opts.CreatedBy,
	}

	if err := s.variationRepo.Create(ctx, variation); err != nil {
		if !errors.Is(err, repositories.ErrVariationAlreadyExists) {
			return nil, fmt.Errorf("variation creation failed: %w", err)
		}

		s.logger.LogConflictRecovered(ctx, rawName)
		existing, lookupErr := s.variationRepo.GetByNormalizedName(ctx, folded)
		if lookupErr != nil {
			return nil, fmt.Errorf("variation conflict recovery failed: %w", lookupErr)
		}
		return existing, nil
	}

	return variation, nil
}

// Analyze inspects a raw name without persisting anything: keyword
// heuristics suggest a category and cut type, and the matcher supplies
// possible existing matches.
func (s *NormalizerService) Analyze(ctx context.Context, rawName string) (*models.AnalysisResult, error) {
	folded := similarity.Fold(rawName)
	if folded == "" {
		return nil, ErrEmptyName
	}

	result := &models.AnalysisResult{
		SuggestedNormalizedName: folded,
		Reasons:                 []string{},
		PossibleMatches:         []models.CutMatch{},
	}

	if category, keyword := suggestCategory(folded); category != "" {
		result.SuggestedCategory = category
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("keyword %q suggests category %q", keyword, category))
	}

	if cutType, keyword := suggestCutType(folded); cutType != "" {
		result.SuggestedCutType = cutType
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("keyword %q suggests cut type %q", keyword, cutType))
	}

	matches, err := s.matcher.FindCandidates(ctx, rawName, result.SuggestedCategory, s.cfg.SuggestLimit, s.cfg.MinConfidence)
	if err != nil {
		return nil, fmt.Errorf("candidate search failed: %w", err)
	}
	result.PossibleMatches = matches

	if len(matches) > 0 {
		result.Confidence = matches[0].Confidence
		if matches[0].MatchType != models.MatchTypeFuzzy {
			result.Reasons = append(result.Reasons,
				fmt.Sprintf("exact match for existing cut %q", matches[0].Cut.Name))
		}
		if result.SuggestedCategory == "" {
			result.SuggestedCategory = matches[0].Cut.Category
			result.Reasons = append(result.Reasons,
				fmt.Sprintf("best match %q implies category %q", matches[0].Cut.Name, matches[0].Cut.Category))
		}
	}

	return result, nil
}

// BulkImport processes rows sequentially with per-row outcomes. Same-name
// creation races are covered by the per-name lock inside createCut.
func (s *NormalizerService) BulkImport(ctx context.Context, rows []models.BulkImportRow, opts models.BulkImportOptions) (*models.BulkImportResult, error) {
	startTime := time.Now()

	minConfidence := opts.MinConfidence
	if minConfidence <= 0 {
		minConfidence = s.cfg.MinConfidence
	}

	result := &models.BulkImportResult{
		Results: make([]models.BulkImportRowResult, 0, len(rows)),
	}

	for _, row := range rows {
		rowResult := s.importRow(ctx, row, opts, minConfidence)
		result.Results = append(result.Results, rowResult)
		result.Processed++

		switch rowResult.Outcome {
		case models.OutcomeCreated:
			result.Created++
		case models.OutcomeUpdated:
			result.Updated++
		case models.OutcomeSkipped:
			result.Skipped++
		case models.OutcomeError:
			result.Errors++
		}
	}

	duration := time.Since(startTime)
	s.logger.LogBulkImportCompleted(ctx, result.Processed, result.Created, result.Updated, result.Skipped, result.Errors, opts.DryRun, duration.Milliseconds())
	s.metrics.IncrementCounter("bulk_import_batch", map[string]string{"dry_run": fmt.Sprintf("%v", opts.DryRun)})
	s.metrics.RecordProcessingTime("bulk_import", duration)
	s.metrics.RecordGauge("bulk_import_rows", float64(result.Processed), nil)

	return result, nil
}

func (s *NormalizerService) importRow(ctx context.Context, row models.BulkImportRow, opts models.BulkImportOptions, minConfidence float64) models.BulkImportRowResult {
	rowResult := models.BulkImportRowResult{OriginalName: row.OriginalName}

	folded := similarity.Fold(row.OriginalName)
	if folded == "" {
		rowResult.Outcome = models.OutcomeError
		rowResult.Error = ErrEmptyName.Error()
		return rowResult
	}

	if opts.SkipExisting {
		existing, err := s.variationRepo.GetByNormalizedName(ctx, folded)
		if err != nil && !errors.Is(err, repositories.ErrVariationNotFound) {
			rowResult.Outcome = models.OutcomeError
			rowResult.Error = err.Error()
			return rowResult
		}
		if existing != nil {
			rowResult.Outcome = models.OutcomeSkipped
			rowResult.NormalizedCutID = &existing.NormalizedCutID
			rowResult.VariationID = &existing.ID
			rowResult.Confidence = existing.EffectiveConfidence()
			return rowResult
		}
	}

	normalizeOpts := models.NormalizeOptions{
		ForceCreate: row.Category != "",
		Category:    row.Category,
		CutType:     row.CutType,
		Source:      sourceOrDefault(row.Source),
		CreatedBy:   opts.CreatedBy,
	}
	if normalizeOpts.Source == models.SourceAPI {
		normalizeOpts.Source = models.SourceBulkImport
	}

	decision, err := s.decide(ctx, row.OriginalName, folded, normalizeOpts, minConfidence, opts.DryRun)
	if err != nil {
		rowResult.Outcome = models.OutcomeError
		rowResult.Error = err.Error()
		return rowResult
	}

	rowResult.Confidence = decision.Confidence

	switch {
	case decision.IsNewCut:
		rowResult.Outcome = models.OutcomeCreated
	case decision.NormalizedCut != nil:
		rowResult.Outcome = models.OutcomeUpdated
	default:
		// Nothing confident enough to attach to, and no category to
		// create with
		rowResult.Outcome = models.OutcomeSkipped
		return rowResult
	}

	if decision.NormalizedCut != nil && !opts.DryRun {
		rowResult.NormalizedCutID = &decision.NormalizedCut.ID
	}
	if decision.Variation != nil {
		rowResult.VariationID = &decision.Variation.ID

		if opts.AutoVerify && !decision.Variation.Verified {
			decision.Variation.MarkVerified()
			if err := s.variationRepo.UpdateFields(ctx, decision.Variation.ID, map[string]interface{}{
				"verified":   true,
				"updated_at": time.Now(),
			}); err != nil {
				rowResult.Outcome = models.OutcomeError
				rowResult.Error = err.Error()
			}
		}
	}

	return rowResult
}

// lockName acquires the in-memory lock for one normalized name and returns
// its release function
func (s *NormalizerService) lockName(folded string) func() {
	actual, _ := s.nameLocks.LoadOrStore(folded, &sync.Mutex{})
	mu := actual.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func validateOptions(opts *models.NormalizeOptions) error {
	if opts.Category != "" && !models.IsValidCategory(opts.Category) {
		return ErrInvalidCategory
	}
	if opts.CutType != "" && !models.IsValidCutType(opts.CutType) {
		return ErrInvalidCutType
	}
	if opts.Source != "" && !models.IsValidSource(opts.Source) {
		return ErrInvalidSource
	}
	return nil
}

func sourceOrDefault(source string) string {
	if source == "" {
		return models.SourceAPI
	}
	return source
}

func topConfidence(candidates []models.CutMatch) float64 {
	if len(candidates) == 0 {
		return 0.0
	}
	return candidates[0].Confidence
}

// categoryKeyword pairs a token found in raw names with the category it
// implies
type categoryKeyword struct {
	keyword  string
	category string
}

// cutTypeKeyword pairs a token with the cut type it implies
type cutTypeKeyword struct {
	keyword string
	cutType string
}

// categoryKeywords cover the Hebrew and English tokens retailers commonly
// put in product names. Order matters: earlier entries win.
var categoryKeywords = []categoryKeyword{
	{"בקר", models.CategoryBeef},
	{"עגל", models.CategoryBeef},
	{"beef", models.CategoryBeef},
	{"veal", models.CategoryBeef},
	{"עוף", models.CategoryChicken},
	{"פרגית", models.CategoryChicken},
	{"הודו", models.CategoryChicken},
	{"chicken", models.CategoryChicken},
	{"טלה", models.CategoryLamb},
	{"כבש", models.CategoryLamb},
	{"lamb", models.CategoryLamb},
	{"חזיר", models.CategoryPork},
	{"pork", models.CategoryPork},
	{"דג", models.CategoryFish},
	{"דגים", models.CategoryFish},
	{"סלמון", models.CategoryFish},
	{"טונה", models.CategoryFish},
	{"fish", models.CategoryFish},
	{"salmon", models.CategoryFish},
}

var cutTypeKeywords = []cutTypeKeyword{
	{"סטייק", models.CutTypeSteak},
	{"steak", models.CutTypeSteak},
	{"אנטריקוט", models.CutTypeSteak},
	{"סינטה", models.CutTypeSteak},
	{"צלי", models.CutTypeRoast},
	{"roast", models.CutTypeRoast},
	{"טחון", models.CutTypeGround},
	{"ground", models.CutTypeGround},
	{"פילה", models.CutTypeFillet},
	{"fillet", models.CutTypeFillet},
	{"שוק", models.CutTypeShank},
	{"shank", models.CutTypeShank},
	{"כנפיים", models.CutTypeWing},
	{"כנף", models.CutTypeWing},
	{"wings", models.CutTypeWing},
	{"חזה", models.CutTypeBreast},
	{"breast", models.CutTypeBreast},
	{"צלעות", models.CutTypeRibs},
	{"ribs", models.CutTypeRibs},
	{"גיד", models.CutTypeTendon},
	{"tendon", models.CutTypeTendon},
	{"שלם", models.CutTypeWhole},
	{"whole", models.CutTypeWhole},
}

// suggestCategory returns the first category keyword found in a folded name
func suggestCategory(folded string) (category, keyword string) {
	tokens := tokenIndex(folded)
	for _, entry := range categoryKeywords {
		if _, ok := tokens[entry.keyword]; ok {
			return entry.category, entry.keyword
		}
	}
	return "", ""
}

// suggestCutType returns the first cut type keyword found in a folded name
func suggestCutType(folded string) (cutType, keyword string) {
	tokens := tokenIndex(folded)
	for _, entry := range cutTypeKeywords {
		if _, ok := tokens[entry.keyword]; ok {
			return entry.cutType, entry.keyword
		}
	}
	return "", ""
}

func tokenIndex(folded string) map[string]struct{} {
	fields := strings.Fields(folded)
	index := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		index[field] = struct{}{}
	}
	return index
}
