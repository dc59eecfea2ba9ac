package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shiftsense/attendance-api/internal/models"
)

// ScheduleExceptionRepository reads per-date schedule overrides.
type ScheduleExceptionRepository struct {
	db *sqlx.DB
}

// NewScheduleExceptionRepository constructs the repository.
func NewScheduleExceptionRepository(db *sqlx.DB) *ScheduleExceptionRepository {
	return &ScheduleExceptionRepository{db: db}
}

// ListForEmployee returns exceptions dated within [from, to].
func (r *ScheduleExceptionRepository) ListForEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]models.ScheduleException, error) {
	const query = `SELECT employee_id, date, is_day_off, is_half_day, start_time, end_time
        FROM schedule_exceptions
        WHERE employee_id = $1 AND date >= $2 AND date <= $3
        ORDER BY date`
	rows, err := r.db.QueryxContext(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list exceptions for %s: %w", employeeID, err)
	}
	defer rows.Close()

	type exceptionRow struct {
		EmployeeID string    `db:"employee_id"`
		Date       time.Time `db:"date"`
		IsDayOff   bool      `db:"is_day_off"`
		IsHalfDay  bool      `db:"is_half_day"`
		StartTime  *string   `db:"start_time"`
		EndTime    *string   `db:"end_time"`
	}
	var exceptions []models.ScheduleException
	for rows.Next() {
		var row exceptionRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("scan exception: %w", err)
		}
		ex := models.ScheduleException{
			EmployeeID: row.EmployeeID,
			Date:       row.Date,
			IsDayOff:   row.IsDayOff,
			IsHalfDay:  row.IsHalfDay,
		}
		if row.StartTime != nil {
			if t, err := models.ParseTimeOfDay(*row.StartTime); err == nil {
				ex.Start = &t
			}
		}
		if row.EndTime != nil {
			if t, err := models.ParseTimeOfDay(*row.EndTime); err == nil {
				ex.End = &t
			}
		}
		exceptions = append(exceptions, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exceptions: %w", err)
	}
	return exceptions, nil
}
