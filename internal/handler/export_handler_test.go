package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftsense/attendance-api/internal/service"
	appErrors "github.com/shiftsense/attendance-api/pkg/errors"
)

type exportServiceMock struct {
	payload    []byte
	filename   string
	err        error
	rangeCalls int
	dateCalls  int
}

func (m *exportServiceMock) ExportRange(ctx context.Context, employeeID string, from, to time.Time, format service.ExportFormat) ([]byte, string, error) {
	m.rangeCalls++
	return m.payload, m.filename, m.err
}

func (m *exportServiceMock) ExportDate(ctx context.Context, date time.Time, format service.ExportFormat) ([]byte, string, error) {
	m.dateCalls++
	return m.payload, m.filename, m.err
}

func newExportRouter(m *exportServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewExportHandler(m).Register(r.Group("/"))
	return r
}

func TestExportHandlerRange(t *testing.T) {
	mockSvc := &exportServiceMock{payload: []byte("Employee,Date\n"), filename: "attendance-emp-1-2025-03-03.csv"}
	r := newExportRouter(mockSvc)

	w := doRequest(r, http.MethodGet,
		"/attendance/export?format=csv&employeeId=emp-1&from=2025-03-03&to=2025-03-05", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, mockSvc.rangeCalls)
	assert.Zero(t, mockSvc.dateCalls)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attendance-emp-1-2025-03-03.csv")
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
}

func TestExportHandlerDailyPDF(t *testing.T) {
	mockSvc := &exportServiceMock{payload: []byte("%PDF-1.3"), filename: "attendance-2025-03-03.pdf"}
	r := newExportRouter(mockSvc)

	w := doRequest(r, http.MethodGet, "/attendance/export?format=pdf&date=2025-03-03", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, mockSvc.dateCalls)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
}

func TestExportHandlerValidation(t *testing.T) {
	r := newExportRouter(&exportServiceMock{})

	// Range export without both bounds.
	w := doRequest(r, http.MethodGet, "/attendance/export?format=csv&employeeId=emp-1&from=2025-03-03", nil)
	assert.Equal(t, appErrors.ErrValidation.Status, w.Code)

	// Roster export without a date.
	w = doRequest(r, http.MethodGet, "/attendance/export?format=csv", nil)
	assert.Equal(t, appErrors.ErrValidation.Status, w.Code)

	// Inverted range.
	w = doRequest(r, http.MethodGet,
		"/attendance/export?format=csv&employeeId=emp-1&from=2025-03-05&to=2025-03-03", nil)
	assert.Equal(t, appErrors.ErrValidation.Status, w.Code)
}
