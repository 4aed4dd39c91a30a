package handlers

import (
	stderrors "errors"
	"net/http"
	"time"

	"meatmarket-api/internal/config"
	"meatmarket-api/internal/dto"
	"meatmarket-api/internal/errors"
	"meatmarket-api/internal/models"
	"meatmarket-api/internal/repositories"
	"meatmarket-api/internal/services"

	"github.com/labstack/echo/v4"
)

// SuggestionHandler handles suggestion and normalization HTTP requests
type SuggestionHandler struct {
	matcherService    services.MatcherServiceInterface
	normalizerService services.NormalizerServiceInterface
	statsService      services.StatsServiceInterface
	logger            services.NormalizationLoggerInterface
	metrics           services.MetricsRecorderInterface
	matchingConfig    config.MatchingConfig
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(
	matcherService services.MatcherServiceInterface,
	normalizerService services.NormalizerServiceInterface,
	statsService services.StatsServiceInterface,
	logger services.NormalizationLoggerInterface,
	metrics services.MetricsRecorderInterface,
	matchingConfig config.MatchingConfig,
) *SuggestionHandler {
	return &SuggestionHandler{
		matcherService:    matcherService,
		normalizerService: normalizerService,
		statsService:      statsService,
		logger:            logger,
		metrics:           metrics,
		matchingConfig:    matchingConfig,
	}
}

// Suggest returns ranked canonical cut candidates for a raw name
// @Summary Suggest canonical cuts
// @Description Returns confidence-ranked canonical cut candidates for a free-text name
// @Tags Normalization
// @Produce json
// @Param q query string true "Raw cut name"
// @Param category query string false "Restrict candidates to one category" Enums(beef, chicken, lamb, pork, fish, other)
// @Param limit query int false "Maximum candidates (max 50)" default(5)
// @Param min_confidence query number false "Minimum confidence floor"
// @Success 200 {object} dto.SuggestResponse "Ranked candidates"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request parameters"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /cuts/suggest [get]
func (h *SuggestionHandler) Suggest(c echo.Context) error {
	startTime := time.Now()
	ctx := c.Request().Context()

	var req dto.SuggestRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request parameters"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	if req.Limit == 0 {
		req.Limit = h.matchingConfig.SuggestLimit
	}
	if req.Limit > h.matchingConfig.MaxSuggestLimit {
		req.Limit = h.matchingConfig.MaxSuggestLimit
	}
	// An absent floor falls back to the configured one; an explicit zero is
	// honored as-is
	minConfidence := h.matchingConfig.MinConfidence
	if req.MinConfidence != nil {
		minConfidence = *req.MinConfidence
	}

	h.logger.LogSuggestStarted(ctx, req.Query, req.Category, req.Limit)

	candidates, err := h.matcherService.FindCandidates(ctx, req.Query, req.Category, req.Limit, minConfidence)
	duration := time.Since(startTime)

	if err != nil {
		h.metrics.IncrementCounter("suggest_request", map[string]string{"status": "failed"})
		h.metrics.RecordProcessingTime("suggest", duration)
		return h.sendServiceError(c, err)
	}

	hasExact := services.HasExactMatch(candidates)

	h.metrics.IncrementCounter("suggest_request", map[string]string{"status": "success"})
	h.metrics.RecordProcessingTime("suggest", duration)
	h.logger.LogSuggestCompleted(ctx, len(candidates), hasExact, duration.Milliseconds())

	return c.JSON(http.StatusOK, dto.SuggestResponse{
		Query:      req.Query,
		Candidates: candidates,
		HasExact:   hasExact,
	})
}

// Normalize maps a raw name onto the taxonomy, creating or attaching as needed
// @Summary Normalize a raw cut name
// @Description Resolves a free-text name to a canonical cut, attaching a variation or creating a new cut
// @Tags Normalization
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.NormalizeRequest true "Normalization request"
// @Success 200 {object} dto.NormalizeResponse "Normalization outcome"
// @Failure 400 {object} errors.ErrorResponse "NORMALIZE_001 - Raw name cannot be empty"
// @Failure 401 {object} errors.ErrorResponse "AUTH_001 - Missing or invalid authentication"
// @Failure 422 {object} errors.ErrorResponse "NORMALIZE_002 - Category required for new cut"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /cuts/normalize [post]
func (h *SuggestionHandler) Normalize(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.NormalizeRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	result, err := h.normalizerService.Normalize(ctx, req.Name, models.NormalizeOptions{
		ForceCreate: req.ForceCreate,
		Category:    req.Category,
		CutType:     req.CutType,
		Source:      req.Source,
		CreatedBy:   &userID,
	})
	if err != nil {
		return h.sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NormalizeResponse{
		NormalizedCut: result.NormalizedCut,
		Variation:     result.Variation,
		IsNewCut:      result.IsNewCut,
		Confidence:    result.Confidence,
		Alternatives:  result.Alternatives,
	})
}

// Analyze inspects a raw name without persisting anything
// @Summary Analyze a raw cut name
// @Description Suggests a category, cut type and possible matches for a free-text name
// @Tags Normalization
// @Accept json
// @Produce json
// @Param request body dto.AnalyzeRequest true "Analysis request"
// @Success 200 {object} dto.AnalyzeResponse "Analysis result"
// @Failure 400 {object} errors.ErrorResponse "NORMALIZE_001 - Raw name cannot be empty"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /cuts/analyze [post]
func (h *SuggestionHandler) Analyze(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	result, err := h.normalizerService.Analyze(ctx, req.Name)
	if err != nil {
		return h.sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.AnalyzeResponse{
		SuggestedCategory:       result.SuggestedCategory,
		SuggestedCutType:        result.SuggestedCutType,
		SuggestedNormalizedName: result.SuggestedNormalizedName,
		Confidence:              result.Confidence,
		Reasons:                 result.Reasons,
		PossibleMatches:         result.PossibleMatches,
	})
}

// BulkImport normalizes a batch of raw names with per-row outcomes
// @Summary Bulk import raw cut names
// @Description Processes a batch of raw names, reporting created/updated/skipped/error per row
// @Tags Normalization
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.BulkImportRequest true "Bulk import batch"
// @Success 200 {object} dto.BulkImportResponse "Per-row outcomes"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body"
// @Failure 401 {object} errors.ErrorResponse "AUTH_001 - Missing or invalid authentication"
// @Failure 403 {object} errors.ErrorResponse "AUTH_004 - Requires admin role"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /cuts/bulk-import [post]
func (h *SuggestionHandler) BulkImport(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	if !getIsAdminFromContext(c) {
		return SendError(c, errors.AuthInsufficientPermission)
	}

	var req dto.BulkImportRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	rows := make([]models.BulkImportRow, len(req.Rows))
	for i, row := range req.Rows {
		rows[i] = models.BulkImportRow{
			OriginalName: row.OriginalName,
			Category:     row.Category,
			CutType:      row.CutType,
			Description:  row.Description,
			Source:       row.Source,
		}
	}

	result, err := h.normalizerService.BulkImport(ctx, rows, models.BulkImportOptions{
		SkipExisting:  req.SkipExisting,
		MinConfidence: req.MinConfidence,
		AutoVerify:    req.AutoVerify,
		DryRun:        req.DryRun,
		CreatedBy:     &userID,
	})
	if err != nil {
		return h.sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.BulkImportResponse{
		Processed: result.Processed,
		Created:   result.Created,
		Updated:   result.Updated,
		Skipped:   result.Skipped,
		Errors:    result.Errors,
		DryRun:    req.DryRun,
		Results:   result.Results,
	})
}

// Stats returns per-category taxonomy statistics
// @Summary Taxonomy statistics
// @Description Returns cut/variation/verified counts and average confidence per category
// @Tags Normalization
// @Produce json
// @Success 200 {object} dto.StatsResponse "Per-category statistics"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /cuts/stats [get]
func (h *SuggestionHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.statsService.GetStats(ctx)
	if err != nil {
		return h.sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.StatsResponse{
		Categories:      stats.Categories,
		TotalCuts:       stats.TotalCuts,
		TotalVariations: stats.TotalVariations,
		TotalVerified:   stats.TotalVerified,
	})
}

// sendServiceError maps known service errors to API error codes
func (h *SuggestionHandler) sendServiceError(c echo.Context, err error) error {
	switch {
	case stderrors.Is(err, services.ErrEmptyName):
		return SendError(c, errors.NormalizeEmptyName)
	case stderrors.Is(err, services.ErrCategoryRequired):
		return SendError(c, errors.NormalizeCategoryRequired)
	case stderrors.Is(err, services.ErrInvalidCategory):
		return SendError(c, errors.ValidationInvalidCategory)
	case stderrors.Is(err, services.ErrInvalidCutType):
		return SendError(c, errors.ValidationInvalidCutType)
	case stderrors.Is(err, services.ErrInvalidSource):
		return SendError(c, errors.ValidationInvalidSource)
	case stderrors.Is(err, repositories.ErrStoreTimeout):
		return SendError(c, errors.SystemStoreTimeout)
	default:
		return SendSystemError(c, err)
	}
}
