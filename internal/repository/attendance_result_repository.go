package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/shiftsense/attendance-api/internal/models"
)

// AttendanceResultRepository persists computed daily results. This table
// is the batch orchestrator's cache: rows are whole-result snapshots,
// overwritten on recomputation and never merged field by field.
type AttendanceResultRepository struct {
	db *sqlx.DB
}

// NewAttendanceResultRepository constructs the repository.
func NewAttendanceResultRepository(db *sqlx.DB) *AttendanceResultRepository {
	return &AttendanceResultRepository{db: db}
}

// ListForDate returns every cached row for the date.
func (r *AttendanceResultRepository) ListForDate(ctx context.Context, date string) ([]models.DailyAttendanceResult, error) {
	const query = `SELECT employee_id, date, status, in_time, out_time,
        duration_hours, regular_hours, overtime_hours, expected_start, expected_end
        FROM daily_attendance
        WHERE date = $1
        ORDER BY employee_id`
	var results []models.DailyAttendanceResult
	if err := r.db.SelectContext(ctx, &results, query, date); err != nil {
		return nil, fmt.Errorf("list attendance for %s: %w", date, err)
	}
	return results, nil
}

// ListRange returns cached rows for one employee across a date span.
func (r *AttendanceResultRepository) ListRange(ctx context.Context, employeeID, from, to string) ([]models.DailyAttendanceResult, error) {
	const query = `SELECT employee_id, date, status, in_time, out_time,
        duration_hours, regular_hours, overtime_hours, expected_start, expected_end
        FROM daily_attendance
        WHERE employee_id = $1 AND date >= $2 AND date <= $3
        ORDER BY date`
	var results []models.DailyAttendanceResult
	if err := r.db.SelectContext(ctx, &results, query, employeeID, from, to); err != nil {
		return nil, fmt.Errorf("list attendance range for %s: %w", employeeID, err)
	}
	return results, nil
}

// Upsert writes one result keyed by (employee_id, date). Idempotent: last
// writer wins, which is safe because recomputation is deterministic for
// identical inputs.
func (r *AttendanceResultRepository) Upsert(ctx context.Context, result models.DailyAttendanceResult) error {
	const query = `INSERT INTO daily_attendance
        (id, employee_id, date, status, in_time, out_time,
         duration_hours, regular_hours, overtime_hours, expected_start, expected_end, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
        ON CONFLICT (employee_id, date) DO UPDATE SET
            status = EXCLUDED.status,
            in_time = EXCLUDED.in_time,
            out_time = EXCLUDED.out_time,
            duration_hours = EXCLUDED.duration_hours,
            regular_hours = EXCLUDED.regular_hours,
            overtime_hours = EXCLUDED.overtime_hours,
            expected_start = EXCLUDED.expected_start,
            expected_end = EXCLUDED.expected_end,
            updated_at = NOW()`
	_, err := r.db.ExecContext(ctx, query,
		uuid.NewString(), result.EmployeeID, result.Date, result.Status,
		result.InTime, result.OutTime,
		result.DurationHours, result.RegularHours, result.OvertimeHours,
		result.ExpectedStart, result.ExpectedEnd)
	if err != nil {
		return fmt.Errorf("upsert attendance %s/%s: %w", result.EmployeeID, result.Date, err)
	}
	return nil
}
