// internal/workers/notification/list-notifications/handler_test.go
package listnotifications

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/common/identity"
	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var notificationColumns = []string{"id", "recipient_id", "type", "message", "read", "created_at"}

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func TestHandler_Execute_ReturnsFeed(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	seekerID := uuid.NewString()
	newest := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// Storage holds three rows; two share (applied, "You applied for Nurse at General Hospital").
	// The grouping query yields the newest of that pair plus the distinct row.
	mock.ExpectQuery(feedQuery).
		WithArgs(seekerID, models.FeedLimit).
		WillReturnRows(sqlmock.NewRows(notificationColumns).
			AddRow("n-3", seekerID, "applied", "You applied for Nurse at General Hospital", false, newest).
			AddRow("n-2", seekerID, "accepted", "Your application was accepted", true, newest.Add(-time.Hour)))

	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{Caller: identity.JobSeeker(seekerID)})

	require.NoError(t, err)
	require.Len(t, output.Notifications, 2)
	assert.Equal(t, "n-3", output.Notifications[0].ID)
	assert.False(t, output.Notifications[0].Read)
	assert.Equal(t, "accepted", output.Notifications[1].Type)
	assert.True(t, output.Notifications[1].Read)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedQuery_DeduplicatesAndCaps(t *testing.T) {
	normalized := regexp.MustCompile(`\s+`).ReplaceAllString(feedQuery, " ")

	assert.Contains(t, normalized, "SELECT DISTINCT ON (type, message)")
	assert.Contains(t, normalized, "WHERE recipient_id = $1")
	assert.Contains(t, normalized, "ORDER BY type, message, created_at DESC, id DESC")
	assert.Contains(t, normalized, ") latest ORDER BY created_at DESC, id DESC LIMIT $2")
	assert.Equal(t, 50, models.FeedLimit)
}

func TestHandler_Execute_GuestGetsEmptyFeed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	for _, caller := range []identity.Identity{identity.Guest(), {Role: identity.RoleAdmin}, identity.JobSeeker("")} {
		output, err := handler.Execute(context.Background(), &Input{Caller: caller})
		require.NoError(t, err)
		assert.NotNil(t, output.Notifications)
		assert.Empty(t, output.Notifications)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	seekerID := uuid.NewString()
	mock.ExpectQuery(`SELECT id, recipient_id`).
		WithArgs(seekerID, models.FeedLimit).
		WillReturnError(errors.New("database connection failed"))

	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{Caller: identity.JobSeeker(seekerID)})

	assert.Nil(t, output)
	assert.Equal(t, apperrors.ErrCodeDatabaseQueryFailed, apperrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
