package handlers

import (
	stderrors "errors"
	"net/http"
	"time"

	"meatmarket-api/internal/dto"
	"meatmarket-api/internal/errors"
	"meatmarket-api/internal/models"
	"meatmarket-api/internal/repositories"
	"meatmarket-api/internal/similarity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// CutHandler handles admin taxonomy management HTTP requests
type CutHandler struct {
	cutRepo       repositories.NormalizedCutRepositoryInterface
	variationRepo repositories.CutVariationRepositoryInterface
	scorer        similarity.Scorer
}

// NewCutHandler creates a new cut handler
func NewCutHandler(
	cutRepo repositories.NormalizedCutRepositoryInterface,
	variationRepo repositories.CutVariationRepositoryInterface,
	scorer similarity.Scorer,
) *CutHandler {
	return &CutHandler{
		cutRepo:       cutRepo,
		variationRepo: variationRepo,
		scorer:        scorer,
	}
}

// CreateCut creates a canonical cut (admin only)
// @Summary Create a canonical cut
// @Tags Taxonomy
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateCutRequest true "Cut definition"
// @Success 201 {object} models.NormalizedCut "Created cut"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body"
// @Failure 403 {object} errors.ErrorResponse "AUTH_004 - Requires admin role"
// @Failure 409 {object} errors.ErrorResponse "CUT_002 - Cut already exists in this category"
// @Router /admin/cuts [post]
func (h *CutHandler) CreateCut(c echo.Context) error {
	ctx := c.Request().Context()

	if !getIsAdminFromContext(c) {
		return SendError(c, errors.AuthInsufficientPermission)
	}

	var req dto.CreateCutRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	cut := &models.NormalizedCut{
		Name:           req.Name,
		Category:       req.Category,
		CutType:        req.CutType,
		Subcategory:    req.Subcategory,
		Description:    req.Description,
		IsPremium:      req.IsPremium,
		CookingMethods: models.StringList(req.CookingMethods),
	}

	if req.TypicalWeightMin != "" {
		weight, err := decimal.NewFromString(req.TypicalWeightMin)
		if err != nil {
			return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("typical_weight_min: invalid decimal"))
		}
		cut.TypicalWeightMin = &weight
	}
	if req.TypicalWeightMax != "" {
		weight, err := decimal.NewFromString(req.TypicalWeightMax)
		if err != nil {
			return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("typical_weight_max: invalid decimal"))
		}
		cut.TypicalWeightMax = &weight
	}

	if err := h.cutRepo.Create(ctx, cut); err != nil {
		if stderrors.Is(err, repositories.ErrCutAlreadyExists) {
			return SendError(c, errors.CutAlreadyExists)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusCreated, cut)
}

// ListCuts lists canonical cuts with optional category filter
// @Summary List canonical cuts
// @Tags Taxonomy
// @Produce json
// @Param category query string false "Filter by category" Enums(beef, chicken, lamb, pork, fish, other)
// @Param limit query int false "Results limit (max 200)" default(50)
// @Param offset query int false "Results offset" default(0)
// @Success 200 {object} dto.ListCutsResponse "Page of cuts"
// @Router /cuts [get]
func (h *CutHandler) ListCuts(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ListCutsRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request parameters"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	if req.Limit == 0 {
		req.Limit = 50
	}

	cuts, total, err := h.cutRepo.List(ctx, req.Category, req.Offset, req.Limit)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ListCutsResponse{
		Cuts:   cuts,
		Total:  total,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
}

// GetCut returns a single cut with its variations
// @Summary Get a canonical cut
// @Tags Taxonomy
// @Produce json
// @Param id path string true "Cut ID"
// @Success 200 {object} dto.GetCutResponse "Cut with variations"
// @Failure 404 {object} errors.ErrorResponse "CUT_001 - Cut not found"
// @Router /cuts/{id} [get]
func (h *CutHandler) GetCut(c echo.Context) error {
	ctx := c.Request().Context()

	cutID, err := parseEntityID(c, "id")
	if err != nil {
		return SendError(c, errors.CutInvalidID)
	}

	cut, err := h.cutRepo.GetByID(ctx, cutID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrCutNotFound) {
			return SendError(c, errors.CutNotFound)
		}
		return SendSystemError(c, err)
	}

	variations, _, err := h.variationRepo.ListByCut(ctx, cutID, 0, 200)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.GetCutResponse{
		Cut:        cut,
		Variations: variations,
	})
}

// UpdateCut updates a canonical cut (admin only)
// @Summary Update a canonical cut
// @Tags Taxonomy
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Cut ID"
// @Param request body dto.UpdateCutRequest true "Fields to update"
// @Success 200 {object} models.NormalizedCut "Updated cut"
// @Failure 404 {object} errors.ErrorResponse "CUT_001 - Cut not found"
// @Failure 409 {object} errors.ErrorResponse "CUT_002 - Renamed cut collides with an existing cut"
// @Router /admin/cuts/{id} [put]
func (h *CutHandler) UpdateCut(c echo.Context) error {
	ctx := c.Request().Context()

	if !getIsAdminFromContext(c) {
		return SendError(c, errors.AuthInsufficientPermission)
	}

	cutID, err := parseEntityID(c, "id")
	if err != nil {
		return SendError(c, errors.CutInvalidID)
	}

	var req dto.UpdateCutRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
		fields["normalized_name"] = similarity.Fold(*req.Name)
	}
	if req.CutType != nil {
		fields["cut_type"] = *req.CutType
	}
	if req.Subcategory != nil {
		fields["subcategory"] = *req.Subcategory
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.IsPremium != nil {
		fields["is_premium"] = *req.IsPremium
	}
	if req.TypicalWeightMin != nil {
		weight, err := decimal.NewFromString(*req.TypicalWeightMin)
		if err != nil {
			return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("typical_weight_min: invalid decimal"))
		}
		fields["typical_weight_min"] = weight
	}
	if req.TypicalWeightMax != nil {
		weight, err := decimal.NewFromString(*req.TypicalWeightMax)
		if err != nil {
			return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("typical_weight_max: invalid decimal"))
		}
		fields["typical_weight_max"] = weight
	}
	if req.CookingMethods != nil {
		fields["cooking_methods"] = models.StringList(*req.CookingMethods)
	}

	if len(fields) == 0 {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("No fields to update"))
	}
	fields["updated_at"] = time.Now()

	if err := h.cutRepo.UpdateFields(ctx, cutID, fields); err != nil {
		switch {
		case stderrors.Is(err, repositories.ErrCutNotFound):
			return SendError(c, errors.CutNotFound)
		case stderrors.Is(err, repositories.ErrCutAlreadyExists):
			return SendError(c, errors.CutAlreadyExists)
		default:
			return SendSystemError(c, err)
		}
	}

	cut, err := h.cutRepo.GetByID(ctx, cutID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, cut)
}

// DeleteCut soft-deletes a cut with no remaining variations (admin only)
// @Summary Delete a canonical cut
// @Tags Taxonomy
// @Security BearerAuth
// @Produce json
// @Param id path string true "Cut ID"
// @Success 200 {object} dto.DeleteCutResponse "Deletion confirmation"
// @Failure 404 {object} errors.ErrorResponse "CUT_001 - Cut not found"
// @Failure 409 {object} errors.ErrorResponse "CUT_004 - Cut still has variations attached"
// @Router /admin/cuts/{id} [delete]
func (h *CutHandler) DeleteCut(c echo.Context) error {
	ctx := c.Request().Context()

	if !getIsAdminFromContext(c) {
		return SendError(c, errors.AuthInsufficientPermission)
	}

	cutID, err := parseEntityID(c, "id")
	if err != nil {
		return SendError(c, errors.CutInvalidID)
	}

	if err := h.cutRepo.Delete(ctx, cutID); err != nil {
		switch {
		case stderrors.Is(err, repositories.ErrCutNotFound):
			return SendError(c, errors.CutNotFound)
		case stderrors.Is(err, repositories.ErrCutReferenced):
			return SendError(c, errors.CutReferenced)
		default:
			return SendSystemError(c, err)
		}
	}

	return c.JSON(http.StatusOK, dto.DeleteCutResponse{
		Message: "Cut deleted successfully",
	})
}

// ListVariations lists the variations attached to a cut
// @Summary List cut variations
// @Tags Taxonomy
// @Produce json
// @Param id path string true "Cut ID"
// @Param limit query int false "Results limit" default(50)
// @Param offset query int false "Results offset" default(0)
// @Success 200 {object} dto.ListVariationsResponse "Variations"
// @Failure 404 {object} errors.ErrorResponse "CUT_001 - Cut not found"
// @Router /cuts/{id}/variations [get]
func (h *CutHandler) ListVariations(c echo.Context) error {
	ctx := c.Request().Context()

	cutID, err := parseEntityID(c, "id")
	if err != nil {
		return SendError(c, errors.CutInvalidID)
	}

	if _, err := h.cutRepo.GetByID(ctx, cutID); err != nil {
		if stderrors.Is(err, repositories.ErrCutNotFound) {
			return SendError(c, errors.CutNotFound)
		}
		return SendSystemError(c, err)
	}

	limit := getIntParam(c, "limit", 50)
	offset := getIntParam(c, "offset", 0)

	variations, total, err := h.variationRepo.ListByCut(ctx, cutID, offset, limit)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ListVariationsResponse{
		Variations: variations,
		Total:      total,
	})
}

// VerifyVariation marks a variation as human-verified (admin only)
// @Summary Verify a cut variation
// @Tags Taxonomy
// @Security BearerAuth
// @Produce json
// @Param id path string true "Variation ID"
// @Success 200 {object} dto.VerifyVariationResponse "Verified variation"
// @Failure 404 {object} errors.ErrorResponse "VARIATION_001 - Variation not found"
// @Router /admin/variations/{id}/verify [post]
func (h *CutHandler) VerifyVariation(c echo.Context) error {
	ctx := c.Request().Context()

	if !getIsAdminFromContext(c) {
		return SendError(c, errors.AuthInsufficientPermission)
	}

	variationID, err := parseEntityID(c, "id")
	if err != nil {
		return SendError(c, errors.VariationInvalidID)
	}

	variation, err := h.variationRepo.GetByID(ctx, variationID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrVariationNotFound) {
			return SendError(c, errors.VariationNotFound)
		}
		return SendSystemError(c, err)
	}

	variation.MarkVerified()
	if err := h.variationRepo.UpdateFields(ctx, variationID, map[string]interface{}{
		"verified":   true,
		"updated_at": variation.UpdatedAt,
	}); err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.VerifyVariationResponse{
		Variation: variation,
		Message:   "Variation verified successfully",
	})
}

// ReassignVariation moves a variation to a different cut (admin only)
// @Summary Reassign a cut variation
// @Tags Taxonomy
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Variation ID"
// @Param request body dto.ReassignVariationRequest true "Target cut"
// @Success 200 {object} dto.ReassignVariationResponse "Reassigned variation"
// @Failure 404 {object} errors.ErrorResponse "VARIATION_001 - Variation not found"
// @Router /admin/variations/{id}/reassign [post]
func (h *CutHandler) ReassignVariation(c echo.Context) error {
	ctx := c.Request().Context()

	if !getIsAdminFromContext(c) {
		return SendError(c, errors.AuthInsufficientPermission)
	}

	variationID, err := parseEntityID(c, "id")
	if err != nil {
		return SendError(c, errors.VariationInvalidID)
	}

	var req dto.ReassignVariationRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	variation, err := h.variationRepo.GetByID(ctx, variationID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrVariationNotFound) {
			return SendError(c, errors.VariationNotFound)
		}
		return SendSystemError(c, err)
	}

	targetCutID, err := uuid.Parse(req.NormalizedCutID)
	if err != nil {
		return SendError(c, errors.CutInvalidID)
	}

	target, err := h.cutRepo.GetByID(ctx, targetCutID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrCutNotFound) {
			return SendError(c, errors.CutNotFound)
		}
		return SendSystemError(c, err)
	}

	// Default confidence for a manual reassignment is the re-scored
	// similarity between the variation and its new cut
	confidence := 1.0
	if req.Confidence != nil {
		confidence = *req.Confidence
	} else if score := h.scorer.Score(variation.OriginalName, target.Name); score > 0 {
		confidence = score
	}

	variation.ReassignTo(targetCutID, confidence)
	if err := h.variationRepo.UpdateFields(ctx, variationID, map[string]interface{}{
		"normalized_cut_id": targetCutID,
		"confidence_score":  confidence,
		"verified":          false,
		"updated_at":        variation.UpdatedAt,
	}); err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ReassignVariationResponse{
		Variation: variation,
		Message:   "Variation reassigned successfully",
	})
}

// DeleteVariation removes a variation mapping (admin only)
// @Summary Delete a cut variation
// @Tags Taxonomy
// @Security BearerAuth
// @Produce json
// @Param id path string true "Variation ID"
// @Success 200 {object} dto.DeleteVariationResponse "Deletion confirmation"
// @Failure 404 {object} errors.ErrorResponse "VARIATION_001 - Variation not found"
// @Router /admin/variations/{id} [delete]
func (h *CutHandler) DeleteVariation(c echo.Context) error {
	ctx := c.Request().Context()

	if !getIsAdminFromContext(c) {
		return SendError(c, errors.AuthInsufficientPermission)
	}

	variationID, err := parseEntityID(c, "id")
	if err != nil {
		return SendError(c, errors.VariationInvalidID)
	}

	if err := h.variationRepo.Delete(ctx, variationID); err != nil {
		if stderrors.Is(err, repositories.ErrVariationNotFound) {
			return SendError(c, errors.VariationNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.DeleteVariationResponse{
		Message: "Variation deleted successfully",
	})
}
