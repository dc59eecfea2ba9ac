package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shiftsense/attendance-api/internal/dto"
	"github.com/shiftsense/attendance-api/internal/service"
	appErrors "github.com/shiftsense/attendance-api/pkg/errors"
	"github.com/shiftsense/attendance-api/pkg/response"
)

type exportService interface {
	ExportRange(ctx context.Context, employeeID string, from, to time.Time, format service.ExportFormat) ([]byte, string, error)
	ExportDate(ctx context.Context, date time.Time, format service.ExportFormat) ([]byte, string, error)
}

// ExportHandler serves attendance sheet downloads.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Register mounts routes on the group.
func (h *ExportHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/attendance/export", h.Export)
}

// Export godoc
// @Summary Download an attendance sheet as CSV or PDF
// @Tags Attendance
// @Produce octet-stream
// @Param format query string true "csv or pdf"
// @Param employeeId query string false "Employee ID; omit for the whole roster on a single date"
// @Param from query string false "From date (YYYY-MM-DD), required with employeeId"
// @Param to query string false "To date (YYYY-MM-DD), required with employeeId"
// @Param date query string false "Date (YYYY-MM-DD), required without employeeId"
// @Success 200 {file} binary
// @Router /attendance/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	req := dto.ExportRequest{
		EmployeeID: c.Query("employeeId"),
		Format:     c.Query("format"),
	}
	format := service.ExportFormat(req.Format)

	var payload []byte
	var filename string
	var err error
	if req.EmployeeID != "" {
		if req.From, err = requireDateParam(c.Query("from")); err == nil {
			if req.To, err = requireDateParam(c.Query("to")); err == nil {
				if req.To.Before(req.From) {
					err = appErrors.Clone(appErrors.ErrValidation, "from must not be after to")
				}
			}
		}
		if err == nil {
			payload, filename, err = h.exports.ExportRange(c.Request.Context(), req.EmployeeID, req.From, req.To, format)
		}
	} else {
		var date time.Time
		if date, err = requireDateParam(c.Query("date")); err == nil {
			payload, filename, err = h.exports.ExportDate(c.Request.Context(), date, format)
		}
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	contentType := "text/csv"
	if format == service.ExportPDF {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, payload)
}
