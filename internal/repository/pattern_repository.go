package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shiftsense/attendance-api/internal/models"
)

// PatternRepository reads weekly schedule patterns and their per-weekday
// segments.
type PatternRepository struct {
	db *sqlx.DB
}

// NewPatternRepository constructs the repository.
func NewPatternRepository(db *sqlx.DB) *PatternRepository {
	return &PatternRepository{db: db}
}

// GetByIDs loads patterns preserving the order of the requested IDs, since
// assignment priority decides grace-override precedence.
func (r *PatternRepository) GetByIDs(ctx context.Context, ids []string) ([]models.WeeklyPattern, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, name, grace_minutes FROM schedule_patterns WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build pattern query: %w", err)
	}
	query = r.db.Rebind(query)
	var patterns []models.WeeklyPattern
	if err := r.db.SelectContext(ctx, &patterns, query, args...); err != nil {
		return nil, fmt.Errorf("get patterns: %w", err)
	}

	dayQuery, dayArgs, err := sqlx.In(`SELECT pattern_id, weekday, start_time, end_time
        FROM schedule_pattern_days WHERE pattern_id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build pattern day query: %w", err)
	}
	dayQuery = r.db.Rebind(dayQuery)
	rows, err := r.db.QueryxContext(ctx, dayQuery, dayArgs...)
	if err != nil {
		return nil, fmt.Errorf("get pattern days: %w", err)
	}
	defer rows.Close()

	type dayRow struct {
		PatternID string `db:"pattern_id"`
		Weekday   int    `db:"weekday"`
		StartTime string `db:"start_time"`
		EndTime   string `db:"end_time"`
	}
	days := make(map[string][7]*models.DaySegment)
	for rows.Next() {
		var row dayRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("scan pattern day: %w", err)
		}
		if row.Weekday < 0 || row.Weekday > 6 {
			continue
		}
		start, err := models.ParseTimeOfDay(row.StartTime)
		if err != nil {
			continue
		}
		end, err := models.ParseTimeOfDay(row.EndTime)
		if err != nil {
			continue
		}
		week := days[row.PatternID]
		week[row.Weekday] = &models.DaySegment{Start: start, End: end}
		days[row.PatternID] = week
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pattern days: %w", err)
	}

	byID := make(map[string]models.WeeklyPattern, len(patterns))
	for _, p := range patterns {
		p.Days = days[p.ID]
		byID[p.ID] = p
	}
	ordered := make([]models.WeeklyPattern, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}
