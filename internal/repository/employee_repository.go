package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shiftsense/attendance-api/internal/models"
	appErrors "github.com/shiftsense/attendance-api/pkg/errors"
)

// EmployeeRepository reads roster rows and their pattern assignments.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs the repository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// GetByID loads one employee with pattern IDs ordered by assignment
// priority, individual overrides first.
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	const query = `SELECT e.id, e.full_name, e.department_id, d.grace_minutes AS department_grace_minutes
        FROM employees e
        LEFT JOIN departments d ON d.id = e.department_id
        WHERE e.id = $1 AND e.active`
	var emp models.Employee
	if err := r.db.GetContext(ctx, &emp, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get employee %s: %w", id, err)
	}

	const assignments = `SELECT pattern_id FROM schedule_assignments
        WHERE employee_id = $1
        ORDER BY priority ASC, assigned_at ASC`
	if err := r.db.SelectContext(ctx, &emp.PatternIDs, assignments, id); err != nil {
		return nil, fmt.Errorf("get assignments for %s: %w", id, err)
	}
	return &emp, nil
}

// ListActive returns the active roster with pattern assignments attached.
func (r *EmployeeRepository) ListActive(ctx context.Context) ([]models.Employee, error) {
	const query = `SELECT e.id, e.full_name, e.department_id, d.grace_minutes AS department_grace_minutes
        FROM employees e
        LEFT JOIN departments d ON d.id = e.department_id
        WHERE e.active
        ORDER BY e.id`
	var roster []models.Employee
	if err := r.db.SelectContext(ctx, &roster, query); err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}
	if len(roster) == 0 {
		return roster, nil
	}

	const assignments = `SELECT employee_id, pattern_id FROM schedule_assignments
        ORDER BY employee_id, priority ASC, assigned_at ASC`
	rows, err := r.db.QueryxContext(ctx, assignments)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	byEmployee := make(map[string][]string)
	for rows.Next() {
		var employeeID, patternID string
		if err := rows.Scan(&employeeID, &patternID); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		byEmployee[employeeID] = append(byEmployee[employeeID], patternID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}
	for i := range roster {
		roster[i].PatternIDs = byEmployee[roster[i].ID]
	}
	return roster, nil
}
