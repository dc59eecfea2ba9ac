package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shiftsense/attendance-api/internal/models"
	appErrors "github.com/shiftsense/attendance-api/pkg/errors"
	"github.com/shiftsense/attendance-api/pkg/export"
)

// ExportFormat names a supported export encoding.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

type batchComputer interface {
	ComputeBatchForDate(ctx context.Context, date time.Time) ([]models.DailyAttendanceResult, error)
}

// ExportService renders computed attendance as downloadable sheets.
type ExportService struct {
	computer rangeComputer
	batch    batchComputer
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(computer rangeComputer, batch batchComputer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		computer: computer,
		batch:    batch,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

var exportHeaders = []string{"Employee", "Date", "Status", "In", "Out", "Duration", "Regular", "Overtime"}

// ExportRange renders one employee's attendance sheet for a date range.
func (s *ExportService) ExportRange(ctx context.Context, employeeID string, from, to time.Time, format ExportFormat) ([]byte, string, error) {
	results, err := s.computer.ComputeRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, "", err
	}
	title := fmt.Sprintf("Attendance %s %s to %s", employeeID, from.Format(models.DateLayout), to.Format(models.DateLayout))
	name := fmt.Sprintf("attendance-%s-%s", employeeID, from.Format(models.DateLayout))
	return s.render(resultsDataset(results), title, name, format)
}

// ExportDate renders the whole roster's sheet for one date.
func (s *ExportService) ExportDate(ctx context.Context, date time.Time, format ExportFormat) ([]byte, string, error) {
	results, err := s.batch.ComputeBatchForDate(ctx, date)
	if err != nil {
		return nil, "", err
	}
	day := date.Format(models.DateLayout)
	return s.render(resultsDataset(results), "Daily Attendance "+day, "attendance-"+day, format)
}

func (s *ExportService) render(data export.Dataset, title, name string, format ExportFormat) ([]byte, string, error) {
	switch ExportFormat(strings.ToLower(string(format))) {
	case ExportCSV:
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "csv export failed")
		}
		return payload, name + ".csv", nil
	case ExportPDF:
		payload, err := s.pdf.Render(data, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "pdf export failed")
		}
		return payload, name + ".pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format, expected csv or pdf")
	}
}

func resultsDataset(results []models.DailyAttendanceResult) export.Dataset {
	rows := make([]map[string]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, map[string]string{
			"Employee": r.EmployeeID,
			"Date":     r.Date,
			"Status":   string(r.Status),
			"In":       formatClock(r.InTime),
			"Out":      formatClock(r.OutTime),
			"Duration": fmt.Sprintf("%.2f", r.DurationHours),
			"Regular":  fmt.Sprintf("%.2f", r.RegularHours),
			"Overtime": fmt.Sprintf("%.2f", r.OvertimeHours),
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}

func formatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}
