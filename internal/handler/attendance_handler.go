package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/shiftsense/attendance-api/internal/dto"
	"github.com/shiftsense/attendance-api/internal/models"
	appErrors "github.com/shiftsense/attendance-api/pkg/errors"
	"github.com/shiftsense/attendance-api/pkg/response"
)

type rangeService interface {
	ComputeRange(ctx context.Context, employeeID string, from, to time.Time) ([]models.DailyAttendanceResult, error)
}

type batchService interface {
	ComputeBatchForDate(ctx context.Context, date time.Time) ([]models.DailyAttendanceResult, error)
}

type recomputeService interface {
	Enqueue(date time.Time) (string, error)
}

// AttendanceHandler exposes the attendance computation endpoints.
type AttendanceHandler struct {
	ranges    rangeService
	batch     batchService
	recompute recomputeService
	validator *validator.Validate
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(ranges rangeService, batch batchService, recompute recomputeService, validate *validator.Validate) *AttendanceHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceHandler{ranges: ranges, batch: batch, recompute: recompute, validator: validate}
}

// Register mounts routes on the group.
func (h *AttendanceHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/attendance/employees/:employeeId", h.Range)
	rg.GET("/attendance/daily", h.Daily)
	if h.recompute != nil {
		rg.POST("/attendance/recompute", h.Recompute)
	}
}

// Range godoc
// @Summary Per-employee attendance over a date range
// @Tags Attendance
// @Produce json
// @Param employeeId path string true "Employee ID"
// @Param from query string true "From date (YYYY-MM-DD)"
// @Param to query string true "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/employees/{employeeId} [get]
func (h *AttendanceHandler) Range(c *gin.Context) {
	req, err := h.rangeRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	results, err := h.ranges.ComputeRange(c.Request.Context(), req.EmployeeID, req.From, req.To)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// Daily godoc
// @Summary Roster-wide attendance for one date
// @Tags Attendance
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/daily [get]
func (h *AttendanceHandler) Daily(c *gin.Context) {
	date, err := requireDateParam(c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	results, err := h.batch.ComputeBatchForDate(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// Recompute godoc
// @Summary Enqueue a full-roster recompute for a date
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.RecomputeRequest true "Recompute payload"
// @Success 202 {object} response.Envelope
// @Router /attendance/recompute [post]
func (h *AttendanceHandler) Recompute(c *gin.Context) {
	var req dto.RecomputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	date, _ := time.Parse(models.DateLayout, req.Date)
	jobID, err := h.recompute.Enqueue(date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, dto.RecomputeResponse{JobID: jobID, Date: req.Date})
}

func (h *AttendanceHandler) rangeRequest(c *gin.Context) (dto.RangeRequest, error) {
	employeeID := c.Param("employeeId")
	if employeeID == "" {
		return dto.RangeRequest{}, appErrors.Clone(appErrors.ErrValidation, "employee id required")
	}
	from, err := requireDateParam(c.Query("from"))
	if err != nil {
		return dto.RangeRequest{}, err
	}
	to, err := requireDateParam(c.Query("to"))
	if err != nil {
		return dto.RangeRequest{}, err
	}
	if to.Before(from) {
		return dto.RangeRequest{}, appErrors.Clone(appErrors.ErrValidation, "from must not be after to")
	}
	return dto.RangeRequest{EmployeeID: employeeID, From: from, To: to}, nil
}

func requireDateParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date required, expected YYYY-MM-DD")
	}
	parsed, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	return parsed, nil
}
