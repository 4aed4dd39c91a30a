package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"meatmarket-api/internal/database"
	"meatmarket-api/internal/dto"
	"meatmarket-api/internal/errors"
	"meatmarket-api/internal/models"
	"meatmarket-api/internal/repositories"
	"meatmarket-api/internal/similarity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

func TestCutHandlerSuite(t *testing.T) {
	suite.Run(t, new(CutHandlerSuite))
}

type CutHandlerSuite struct {
	suite.Suite
	db            *database.DB
	e             *echo.Echo
	handler       *CutHandler
	variationRepo repositories.CutVariationRepositoryInterface
}

func (s *CutHandlerSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())

	cutRepo := repositories.NewNormalizedCutRepository(s.db.DB)
	s.variationRepo = repositories.NewCutVariationRepository(s.db.DB)
	s.handler = NewCutHandler(cutRepo, s.variationRepo, similarity.NewEngine())

	s.e = echo.New()
	s.e.Validator = NewValidator()
}

func (s *CutHandlerSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *CutHandlerSuite) adminContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := s.newContext(method, target, body)
	c.Set("user_id", uuid.New())
	c.Set("is_admin", true)
	return c, rec
}

func (s *CutHandlerSuite) newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return s.e.NewContext(req, rec), rec
}

func (s *CutHandlerSuite) errorCode(rec *httptest.ResponseRecorder) string {
	var response errors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	return response.Error.Code
}

func (s *CutHandlerSuite) TestCreateCut() {
	c, rec := s.adminContext(http.MethodPost, "/admin/cuts",
		`{"name":"אנטריקוט","category":"beef","cut_type":"steak","is_premium":true,"typical_weight_min":"0.250","typical_weight_max":"0.400","cooking_methods":["grill","pan"]}`)

	s.NoError(s.handler.CreateCut(c))
	s.Equal(http.StatusCreated, rec.Code)

	var cut models.NormalizedCut
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &cut))
	s.NotEqual(uuid.Nil, cut.ID)
	s.Equal("אנטריקוט", cut.Name)
	s.True(cut.IsPremium)
	s.Require().NotNil(cut.TypicalWeightMin)
	s.Equal("0.25", cut.TypicalWeightMin.String())
	s.Equal(models.StringList{"grill", "pan"}, cut.CookingMethods)
}

func (s *CutHandlerSuite) TestCreateCut_RequiresAdmin() {
	c, rec := s.newContext(http.MethodPost, "/admin/cuts", `{"name":"אנטריקוט","category":"beef"}`)

	s.NoError(s.handler.CreateCut(c))
	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal(string(errors.AuthInsufficientPermission), s.errorCode(rec))
}

func (s *CutHandlerSuite) TestCreateCut_DuplicateInCategory() {
	database.CreateTestCut(s.T(), s.db, "אנטריקוט", models.CategoryBeef, models.CutTypeSteak)

	c, rec := s.adminContext(http.MethodPost, "/admin/cuts", `{"name":"אנטריקוט","category":"beef"}`)

	s.NoError(s.handler.CreateCut(c))
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal(string(errors.CutAlreadyExists), s.errorCode(rec))
}

func (s *CutHandlerSuite) TestCreateCut_InvalidWeight() {
	c, rec := s.adminContext(http.MethodPost, "/admin/cuts",
		`{"name":"אנטריקוט","category":"beef","typical_weight_min":"not-a-number"}`)

	s.NoError(s.handler.CreateCut(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(errors.ValidationInvalidFormat), s.errorCode(rec))
}

func (s *CutHandlerSuite) TestListCuts() {
	database.CreateTestCut(s.T(), s.db, "אנטריקוט", models.CategoryBeef, models.CutTypeSteak)
	database.CreateTestCut(s.T(), s.db, "סינטה", models.CategoryBeef, models.CutTypeSteak)
	database.CreateTestCut(s.T(), s.db, "חזה עוף", models.CategoryChicken, models.CutTypeBreast)

	c, rec := s.newContext(http.MethodGet, "/cuts?category=beef", "")

	s.NoError(s.handler.ListCuts(c))
	s.Equal(http.StatusOK, rec.Code)

	var response dto.ListCutsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.Equal(int64(2), response.Total)
	s.Len(response.Cuts, 2)
	s.Equal(50, response.Limit)
}

func (s *CutHandlerSuite) TestGetCut_WithVariations() {
	cut := database.CreateTestCut(s.T(), s.db, "אנטריקוט", models.CategoryBeef, models.CutTypeSteak)
	database.CreateTestVariation(s.T(), s.db, cut, "אנטריקוט בקר", 0.9, false)

	c, rec := s.newContext(http.MethodGet, "/cuts/"+cut.ID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(cut.ID.String())

	s.NoError(s.handler.GetCut(c))
	s.Equal(http.StatusOK, rec.Code)

	var response dto.GetCutResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.Equal(cut.ID, response.Cut.ID)
	s.Len(response.Variations, 1)
}

func (s *CutHandlerSuite) TestGetCut_InvalidID() {
	c, rec := s.newContext(http.MethodGet, "/cuts/not-a-uuid", "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	s.NoError(s.handler.GetCut(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(errors.CutInvalidID), s.errorCode(rec))
}

func (s *CutHandlerSuite) TestGetCut_NotFound() {
	id := uuid.New().String()
	c, rec := s.newContext(http.MethodGet, "/cuts/"+id, "")
	c.SetParamNames("id")
	c.SetParamValues(id)

	s.NoError(s.handler.GetCut(c))
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(string(errors.CutNotFound), s.errorCode(rec))
}

func (s *CutHandlerSuite) TestUpdateCut_RenameRefoldsNormalizedName() {
	cut := database.CreateTestCut(s.T(), s.db, "אנטריקוט", models.CategoryBeef, models.CutTypeSteak)

	c, rec := s.adminContext(http.MethodPut, "/admin/cuts/"+cut.ID.String(), `{"name":"  אנטריקוט מיושן  "}`)
	c.SetParamNames("id")
	c.SetParamValues(cut.ID.String())

	s.NoError(s.handler.UpdateCut(c))
	s.Equal(http.StatusOK, rec.Code)

	var updated models.NormalizedCut
	s.Require().NoError(s.db.First(&updated, "id = ?", cut.ID).Error)
	s.Equal("  אנטריקוט מיושן  ", updated.Name)
	s.Equal("אנטריקוט מיושן", updated.NormalizedName)
}

func (s *CutHandlerSuite) TestUpdateCut_RenameCollision() {
	database.CreateTestCut(s.T(), s.db, "סינטה", models.CategoryBeef, models.CutTypeSteak)
	cut := database.CreateTestCut(s.T(), s.db, "אנטריקוט", models.CategoryBeef, models.CutTypeSteak)

	c, rec := s.adminContext(http.MethodPut, "/admin/cuts/"+cut.ID.String(), `{"name":"סינטה"}`)
	c.SetParamNames("id")
	c.SetParamValues(cut.ID.String())

	s.NoError(s.handler.UpdateCut(c))
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal(string(errors.CutAlreadyExists), s.errorCode(rec))
}

func (s *CutHandlerSuite) TestUpdateCut_NoFields() {
	cut := database.CreateTestCut(s.T(), s.db, "אנטריקוט", models.CategoryBeef, models.CutTypeSteak)

	c, rec := s.adminContext(http.MethodPut, "/admin/cuts/"+cut.ID.String(), `{}`)
	c.SetParamNames("id")
	c.SetParamValues(cut.ID.String())

	s.NoError(s.handler.UpdateCut(c))
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *CutHandlerSuite) TestDeleteCut_RejectedWhileReferenced() {
	cut := database.CreateTestCut(s.T(), s.db, "אנטריקוט", models.CategoryBeef, models.CutTypeSteak)
	variation := database.CreateTestVariation(s.T(), s.db, cut, "אנטריקוט בקר", 0.9, false)

	c, rec := s.adminContext(http.MethodDelete, "/admin/cuts/"+cut.ID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(cut.ID.String())

	s.NoError(s.handler.DeleteCut(c))
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal(string(errors.CutReferenced), s.errorCode(rec))

	// Detach the variation, then deletion goes through
	s.NoError(s.db.Delete(variation).Error)

	c, rec = s.adminContext(http.MethodDelete, "/admin/cuts/"+cut.ID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(cut.ID.String())

	s.NoError(s.handler.DeleteCut(c))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *CutHandlerSuite) TestListVariations() {
	cut := database.CreateTestCut(s.T(), s.db, "אנטריקוט", models.CategoryBeef, models.CutTypeSteak)
	database.CreateTestVariation(s.T(), s.db, cut, "אנטריקוט בקר", 0.9, false)
	database.CreateTestVariation(s.T(), s.db, cut, "אנטריקוט טרי", 0.6, false)

	c, rec := s.newContext(http.MethodGet, "/cuts/"+cut.ID.String()+"/variations", "")
	c.SetParamNames("id")
	c.SetParamValues(cut.ID.String())

	s.NoError(s.handler.ListVariations(c))
	s.Equal(http.StatusOK, rec.Code)

	var response dto.ListVariationsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.Equal(int64(2), response.Total)
	s.Len(response.Variations, 2)
}

func (s *CutHandlerSuite) TestVerifyVariation() {
	cut := database.CreateTestCut(s.T(), s.db, "אנטריקוט", models.CategoryBeef, models.CutTypeSteak)
	variation := database.CreateTestVariation(s.T(), s.db, cut, "אנטריקוט בקר", 0.9, false)

	c, rec := s.adminContext(http.MethodPost, "/admin/variations/"+variation.ID.String()+"/verify", "")
	c.SetParamNames("id")
	c.SetParamValues(variation.ID.String())

	s.NoError(s.handler.VerifyVariation(c))
	s.Equal(http.StatusOK, rec.Code)

	stored, err := s.variationRepo.GetByID(c.Request().Context(), variation.ID)
	s.NoError(err)
	s.True(stored.Verified)
}

func (s *CutHandlerSuite) TestReassignVariation_ExplicitConfidence() {
	cut := database.CreateTestCut(s.T(), s.db, "אנטריקוט", models.CategoryBeef, models.CutTypeSteak)
	target := database.CreateTestCut(s.T(), s.db, "סינטה", models.CategoryBeef, models.CutTypeSteak)
	variation := database.CreateTestVariation(s.T(), s.db, cut, "אנטריקוט בקר", 0.9, true)

	c, rec := s.adminContext(http.MethodPost, "/admin/variations/"+variation.ID.String()+"/reassign",
		`{"normalized_cut_id":"`+target.ID.String()+`","confidence":0.55}`)
	c.SetParamNames("id")
	c.SetParamValues(variation.ID.String())

	s.NoError(s.handler.ReassignVariation(c))
	s.Equal(http.StatusOK, rec.Code)

	stored, err := s.variationRepo.GetByID(c.Request().Context(), variation.ID)
	s.NoError(err)
	s.Equal(target.ID, stored.NormalizedCutID)
	s.Equal(0.55, stored.ConfidenceScore)
	// Verification does not carry over to the new cut
	s.False(stored.Verified)
}

func (s *CutHandlerSuite) TestReassignVariation_ScoredConfidence() {
	cut := database.CreateTestCut(s.T(), s.db, "סינטה", models.CategoryBeef, models.CutTypeSteak)
	target := database.CreateTestCut(s.T(), s.db, "אנטריקוט", models.CategoryBeef, models.CutTypeSteak)
	variation := database.CreateTestVariation(s.T(), s.db, cut, "אנטריקוט בקר", 0.4, false)

	c, rec := s.adminContext(http.MethodPost, "/admin/variations/"+variation.ID.String()+"/reassign",
		`{"normalized_cut_id":"`+target.ID.String()+`"}`)
	c.SetParamNames("id")
	c.SetParamValues(variation.ID.String())

	s.NoError(s.handler.ReassignVariation(c))
	s.Equal(http.StatusOK, rec.Code)

	stored, err := s.variationRepo.GetByID(c.Request().Context(), variation.ID)
	s.NoError(err)
	s.Equal(target.ID, stored.NormalizedCutID)
	// Re-scored against the new cut's name
	s.Greater(stored.ConfidenceScore, 0.4)
}

func (s *CutHandlerSuite) TestReassignVariation_TargetNotFound() {
	cut := database.CreateTestCut(s.T(), s.db, "אנטריקוט", models.CategoryBeef, models.CutTypeSteak)
	variation := database.CreateTestVariation(s.T(), s.db, cut, "אנטריקוט בקר", 0.9, false)

	c, rec := s.adminContext(http.MethodPost, "/admin/variations/"+variation.ID.String()+"/reassign",
		`{"normalized_cut_id":"`+uuid.New().String()+`"}`)
	c.SetParamNames("id")
	c.SetParamValues(variation.ID.String())

	s.NoError(s.handler.ReassignVariation(c))
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(string(errors.CutNotFound), s.errorCode(rec))
}

func (s *CutHandlerSuite) TestDeleteVariation() {
	cut := database.CreateTestCut(s.T(), s.db, "אנטריקוט", models.CategoryBeef, models.CutTypeSteak)
	variation := database.CreateTestVariation(s.T(), s.db, cut, "אנטריקוט בקר", 0.9, false)

	c, rec := s.adminContext(http.MethodDelete, "/admin/variations/"+variation.ID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(variation.ID.String())

	s.NoError(s.handler.DeleteVariation(c))
	s.Equal(http.StatusOK, rec.Code)

	_, err := s.variationRepo.GetByID(c.Request().Context(), variation.ID)
	s.ErrorIs(err, repositories.ErrVariationNotFound)
}

func (s *CutHandlerSuite) TestDeleteVariation_NotFound() {
	id := uuid.New().String()
	c, rec := s.adminContext(http.MethodDelete, "/admin/variations/"+id, "")
	c.SetParamNames("id")
	c.SetParamValues(id)

	s.NoError(s.handler.DeleteVariation(c))
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(string(errors.VariationNotFound), s.errorCode(rec))
}
