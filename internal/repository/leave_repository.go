package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shiftsense/attendance-api/internal/models"
)

// LeaveRepository reads approved leave spans.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs the repository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// ListApproved returns approved leave overlapping [from, to].
func (r *LeaveRepository) ListApproved(ctx context.Context, employeeID string, from, to time.Time) ([]models.LeaveRecord, error) {
	const query = `SELECT employee_id, start_date, end_date
        FROM leave_requests
        WHERE employee_id = $1 AND status = 'approved'
          AND start_date <= $3 AND end_date >= $2
        ORDER BY start_date`
	var leaves []models.LeaveRecord
	if err := r.db.SelectContext(ctx, &leaves, query, employeeID, from, to); err != nil {
		return nil, fmt.Errorf("list approved leave for %s: %w", employeeID, err)
	}
	return leaves, nil
}
