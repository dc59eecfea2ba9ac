package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternRepositoryGetByIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPatternRepository(db)

	grace := 15
	mock.ExpectQuery("SELECT id, name, grace_minutes FROM schedule_patterns").
		WithArgs("p2", "p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "grace_minutes"}).
			AddRow("p1", "Office Hours", nil).
			AddRow("p2", "Early Shift", grace))
	mock.ExpectQuery("SELECT pattern_id, weekday, start_time, end_time").
		WithArgs("p2", "p1").
		WillReturnRows(sqlmock.NewRows([]string{"pattern_id", "weekday", "start_time", "end_time"}).
			AddRow("p1", 1, "09:00", "17:00").
			AddRow("p1", 2, "0900", "1700").
			AddRow("p2", 1, "06:00", "14:00").
			AddRow("p2", 9, "06:00", "14:00"). // out-of-range weekday dropped
			AddRow("p2", 2, "garbage", "14:00")) // unparseable time dropped

	patterns, err := repo.GetByIDs(context.Background(), []string{"p2", "p1"})
	require.NoError(t, err)
	require.Len(t, patterns, 2)

	// Requested order is preserved, not the database's.
	assert.Equal(t, "p2", patterns[0].ID)
	assert.Equal(t, "p1", patterns[1].ID)

	require.NotNil(t, patterns[0].GraceMinutes)
	assert.Equal(t, 15, *patterns[0].GraceMinutes)

	p1 := patterns[1]
	require.NotNil(t, p1.Days[1])
	assert.Equal(t, "09:00", p1.Days[1].Start.String())
	require.NotNil(t, p1.Days[2], "compact HHMM encoding parses too")
	assert.Nil(t, p1.Days[3])

	p2 := patterns[0]
	require.NotNil(t, p2.Days[1])
	assert.Nil(t, p2.Days[2], "rows with unparseable times are dropped")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatternRepositoryGetByIDsEmpty(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPatternRepository(db)

	patterns, err := repo.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, patterns)
}
