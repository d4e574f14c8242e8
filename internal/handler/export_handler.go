package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/selimk/obs-catalog-api/internal/dto"
	"github.com/selimk/obs-catalog-api/internal/service"
	appErrors "github.com/selimk/obs-catalog-api/pkg/errors"
	"github.com/selimk/obs-catalog-api/pkg/response"
)

type exportService interface {
	DepartmentCourses(ctx context.Context, deptID int, format string) (*service.ExportResult, error)
	Timetable(ctx context.Context, crns []string) (*service.ExportResult, error)
}

// ExportHandler serves rendered CSV/PDF documents.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler builds a new handler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// DepartmentExport godoc
// @Summary Export a department's course listing
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param id path int true "Department ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /departments/{id}/export [get]
func (h *ExportHandler) DepartmentExport(c *gin.Context) {
	deptID, err := strconv.Atoi(c.Param("id"))
	if err != nil || deptID <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "department id must be a positive integer"))
		return
	}
	result, err := h.exports.DepartmentCourses(c.Request.Context(), deptID, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDocument(c, result)
}

// TimetableExport godoc
// @Summary Export a weekly timetable PDF for a set of CRNs
// @Tags Exports
// @Accept json
// @Produce application/pdf
// @Param payload body dto.TimetableExportRequest true "CRNs to place on the grid"
// @Success 200 {file} file
// @Router /timetable/export [post]
func (h *ExportHandler) TimetableExport(c *gin.Context) {
	var req dto.TimetableExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "crns must be 1-50 five-digit numbers"))
		return
	}
	result, err := h.exports.Timetable(c.Request.Context(), req.CRNs)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDocument(c, result)
}

func serveDocument(c *gin.Context, result *service.ExportResult) {
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
