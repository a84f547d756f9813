package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veritas/ranking-service/internal/models"
)

func TestEventRepository_AdjustVoteTallies(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEventRepository(db)
	ctx := context.Background()

	t.Run("single statement carries both deltas", func(t *testing.T) {
		mock.ExpectExec("UPDATE events").
			WithArgs(1, -1, sqlmock.AnyArg(), "evt-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.AdjustVoteTallies(ctx, "evt-1", 1, -1)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero deltas skip the write", func(t *testing.T) {
		err := repo.AdjustVoteTallies(ctx, "evt-1", 0, 0)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_AddLike(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEventRepository(db)
	ctx := context.Background()

	t.Run("first like inserts", func(t *testing.T) {
		mock.ExpectExec("INSERT IGNORE INTO event_likes").
			WithArgs("evt-1", 42, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		inserted, err := repo.AddLike(ctx, "evt-1", 42)
		require.NoError(t, err)
		assert.True(t, inserted)
	})

	t.Run("duplicate like is a no-op", func(t *testing.T) {
		mock.ExpectExec("INSERT IGNORE INTO event_likes").
			WithArgs("evt-1", 42, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		inserted, err := repo.AddLike(ctx, "evt-1", 42)
		require.NoError(t, err)
		assert.False(t, inserted)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_SaveFactCheckOutcome(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEventRepository(db)
	ctx := context.Background()

	t.Run("rejections are written as json", func(t *testing.T) {
		mock.ExpectExec("UPDATE events").
			WithArgs(56.7, string(models.FactCheckUnverified), "one outlet only",
				[]byte(`["insufficient_independent_sources"]`), sqlmock.AnyArg(), "evt-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveFactCheckOutcome(ctx, "evt-1", 56.7, models.FactCheckUnverified,
			"one outlet only", []string{models.RejectionInsufficientSources})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("clean outcome writes an empty list, not null", func(t *testing.T) {
		mock.ExpectExec("UPDATE events").
			WithArgs(83.3, string(models.FactCheckVerified), "corroborated",
				[]byte(`[]`), sqlmock.AnyArg(), "evt-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveFactCheckOutcome(ctx, "evt-1", 83.3, models.FactCheckVerified,
			"corroborated", nil)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_IncrementViews(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEventRepository(db)

	mock.ExpectExec("UPDATE events").
		WithArgs(sqlmock.AnyArg(), "evt-9").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncrementViews(context.Background(), "evt-9"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
