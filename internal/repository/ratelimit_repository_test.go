package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitRepositoryAllowWithinLimit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRateLimitRepository(db, 10, time.Hour)

	mock.ExpectQuery(`INSERT INTO rate_limits`).
		WithArgs("share_create:owner-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	ok, retryAfter, err := repo.Allow(context.Background(), "share_create:owner-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, retryAfter)
}

func TestRateLimitRepositoryAllowOverLimit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRateLimitRepository(db, 10, time.Hour)

	mock.ExpectQuery(`INSERT INTO rate_limits`).
		WithArgs("share_create:owner-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	ok, retryAfter, err := repo.Allow(context.Background(), "share_create:owner-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, retryAfter, time.Duration(0))
	assert.LessOrEqual(t, retryAfter, time.Hour)
}

func TestRateLimitRepositoryPruneBefore(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRateLimitRepository(db, 10, time.Hour)

	cutoff := time.Now().Add(-2 * time.Hour)
	mock.ExpectExec(`DELETE FROM rate_limits WHERE window_start < \$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, repo.PruneBefore(context.Background(), cutoff))
}
