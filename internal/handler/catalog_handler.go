package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/selimk/obs-catalog-api/internal/dto"
	"github.com/selimk/obs-catalog-api/internal/models"
	appErrors "github.com/selimk/obs-catalog-api/pkg/errors"
	"github.com/selimk/obs-catalog-api/pkg/response"
)

type catalogService interface {
	Departments(ctx context.Context) []models.Department
	Courses(ctx context.Context, deptID int) []models.CourseOffering
}

type lookupService interface {
	LookupCRN(ctx context.Context, crn string) (*models.CourseOffering, error)
	LookupCRNs(ctx context.Context, crns []string) map[string]*models.CourseOffering
}

// CatalogHandler exposes the catalog proxy endpoints.
type CatalogHandler struct {
	catalog catalogService
	lookup  lookupService
}

// NewCatalogHandler builds a new handler.
func NewCatalogHandler(catalog catalogService, lookup lookupService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, lookup: lookup}
}

// Departments godoc
// @Summary List catalog departments
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *CatalogHandler) Departments(c *gin.Context) {
	departments := h.catalog.Departments(c.Request.Context())
	if departments == nil {
		departments = []models.Department{}
	}
	response.JSON(c, http.StatusOK, departments)
}

// Courses godoc
// @Summary List course offerings of a department
// @Tags Catalog
// @Produce json
// @Param id path int true "Department ID"
// @Success 200 {object} response.Envelope
// @Router /departments/{id}/courses [get]
func (h *CatalogHandler) Courses(c *gin.Context) {
	deptID, err := strconv.Atoi(c.Param("id"))
	if err != nil || deptID <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "department id must be a positive integer"))
		return
	}
	offerings := h.catalog.Courses(c.Request.Context(), deptID)
	response.JSON(c, http.StatusOK, offerings)
}

// LookupCRN godoc
// @Summary Resolve a single CRN to its course offering
// @Tags Lookup
// @Produce json
// @Param crn path string true "5-digit CRN"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /crn/{crn} [get]
func (h *CatalogHandler) LookupCRN(c *gin.Context) {
	offering, err := h.lookup.LookupCRN(c.Request.Context(), c.Param("crn"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offering)
}

// LookupCRNBatch godoc
// @Summary Resolve a batch of CRNs
// @Tags Lookup
// @Accept json
// @Produce json
// @Param payload body dto.LookupBatchRequest true "CRNs to resolve"
// @Success 200 {object} response.Envelope
// @Router /crn/lookup [post]
func (h *CatalogHandler) LookupCRNBatch(c *gin.Context) {
	var req dto.LookupBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "crns must be 1-50 five-digit numbers"))
		return
	}
	results := h.lookup.LookupCRNs(c.Request.Context(), req.CRNs)
	response.JSON(c, http.StatusOK, results)
}
