package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/shiftsense/attendance-api/internal/models"
)

// PunchRepository reads raw biometric punches. The device bridge
// deduplicates upstream; this layer only filters rows whose timestamps
// fail to scan, which are dropped rather than failing the request.
type PunchRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPunchRepository constructs the repository.
func NewPunchRepository(db *sqlx.DB, logger *zap.Logger) *PunchRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PunchRepository{db: db, logger: logger}
}

// ListForEmployee returns punches in [from, to) ascending.
func (r *PunchRepository) ListForEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]models.PunchEvent, error) {
	const query = `SELECT employee_id, punched_at FROM punches
        WHERE employee_id = $1 AND punched_at >= $2 AND punched_at < $3
        ORDER BY punched_at ASC`
	rows, err := r.db.QueryxContext(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list punches for %s: %w", employeeID, err)
	}
	defer rows.Close()

	var punches []models.PunchEvent
	for rows.Next() {
		var p models.PunchEvent
		if err := rows.StructScan(&p); err != nil {
			r.logger.Warn("dropping unscannable punch row",
				zap.String("employee_id", employeeID), zap.Error(err))
			continue
		}
		p.Timestamp = p.Timestamp.UTC()
		punches = append(punches, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate punches for %s: %w", employeeID, err)
	}
	return punches, nil
}
