// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobboard-workers/internal/common/config"
	"jobboard-workers/internal/common/database"
	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/common/identity"
	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/jobs"
	"jobboard-workers/internal/models"
	"jobboard-workers/internal/scoring"

	apply "jobboard-workers/internal/workers/application/apply-to-job"
	gss "jobboard-workers/internal/workers/application/get-seeker-stats"
	la "jobboard-workers/internal/workers/application/list-applications"
	dn "jobboard-workers/internal/workers/notification/deliver-notification"
	ln "jobboard-workers/internal/workers/notification/list-notifications"
	mnr "jobboard-workers/internal/workers/notification/mark-notification-read"
)

// The suite runs against a real PostgreSQL and is skipped unless
// E2E_POSTGRES_HOST is set.
var (
	pg  *database.PostgresClient
	log logger.Logger
)

func TestMain(m *testing.M) {
	host := os.Getenv("E2E_POSTGRES_HOST")
	if host == "" {
		fmt.Println("E2E_POSTGRES_HOST not set, skipping e2e tests")
		os.Exit(0)
	}

	port, _ := strconv.Atoi(os.Getenv("E2E_POSTGRES_PORT"))
	if port == 0 {
		port = 5432
	}

	var err error
	pg, err = database.NewPostgres(config.PostgresConfig{
		Host:           host,
		Port:           port,
		Database:       envOr("E2E_POSTGRES_DB", "jobboard"),
		User:           envOr("E2E_POSTGRES_USER", "postgres"),
		Password:       os.Getenv("E2E_POSTGRES_PASSWORD"),
		MaxConnections: 10,
		MaxIdle:        2,
		SSLMode:        "disable",
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect to PostgreSQL: %v", err))
	}

	ctx := context.Background()
	if err := pg.Ping(ctx); err != nil {
		panic(fmt.Sprintf("PostgreSQL ping failed: %v", err))
	}
	if err := database.Migrate(ctx, pg.DB); err != nil {
		panic(fmt.Sprintf("migration failed: %v", err))
	}

	zapLog, _ := zap.NewDevelopment()
	log = logger.NewZapAdapter(zapLog)

	code := m.Run()

	pg.Close()
	os.Exit(code)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ==========================
// Fixtures
// ==========================

func insertJob(t *testing.T, db *sql.DB, position, company string) *models.Job {
	t.Helper()
	job := &models.Job{ID: uuid.NewString(), Position: position, Company: company}
	_, err := db.Exec(`INSERT INTO jobs (id, position, company) VALUES ($1, $2, $3)`, job.ID, job.Position, job.Company)
	require.NoError(t, err)
	return job
}

func insertSeeker(t *testing.T, db *sql.DB) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(`INSERT INTO job_seekers (id, name, email) VALUES ($1, $2, $3)`, id, "Ada", "ada@example.com")
	require.NoError(t, err)
	return id
}

func applyHandler() *apply.Handler {
	return apply.NewHandler(&apply.Config{Timeout: 10 * time.Second, PublishTimeout: time.Second},
		pg.DB, jobs.NewPostgresDirectory(pg.DB), nil, log)
}

// ==========================
// Apply flow
// ==========================

func TestApplyFlow(t *testing.T) {
	ctx := context.Background()
	job := insertJob(t, pg.DB, "Nurse", "General Hospital")
	seekerID := insertSeeker(t, pg.DB)
	caller := identity.JobSeeker(seekerID)
	h := applyHandler()

	first, err := h.Execute(ctx, &apply.Input{JobID: job.ID, Caller: caller})
	require.NoError(t, err)
	assert.False(t, first.AlreadyApplied)
	assert.Equal(t, scoring.Compatibility(job.ID, seekerID), first.Application.CompatibilityScore)

	second, err := h.Execute(ctx, &apply.Input{JobID: job.ID, Caller: caller})
	require.NoError(t, err)
	assert.True(t, second.AlreadyApplied)
	assert.Equal(t, first.Application.ID, second.Application.ID)

	var count int
	require.NoError(t, pg.DB.QueryRow(
		`SELECT COUNT(*) FROM applications WHERE job_id = $1 AND job_seeker_id = $2`, job.ID, seekerID,
	).Scan(&count))
	assert.Equal(t, 1, count)

	// Listing
	list, err := la.NewHandler(&la.Config{Timeout: 5 * time.Second}, pg.DB, jobs.NewPostgresDirectory(pg.DB), log).
		Execute(ctx, &la.Input{Caller: caller})
	require.NoError(t, err)
	require.Len(t, list.Applications, 1)
	require.NotNil(t, list.Applications[0].Job)
	assert.Equal(t, "Nurse", list.Applications[0].Job.Position)

	// Stats
	stats, err := gss.NewHandler(&gss.Config{Timeout: 5 * time.Second}, pg.DB, log).
		Execute(ctx, &gss.Input{Caller: caller})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Counts.Applied)
	assert.Equal(t, first.Application.CompatibilityScore, stats.AvgCompatibility)
}

func TestApplyConcurrent(t *testing.T) {
	ctx := context.Background()
	job := insertJob(t, pg.DB, "Welder", "Acme")
	seekerID := insertSeeker(t, pg.DB)
	h := applyHandler()

	const attempts = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		ids     = map[string]struct{}{}
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := h.Execute(ctx, &apply.Input{JobID: job.ID, Caller: identity.JobSeeker(seekerID)})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if !out.AlreadyApplied {
				created++
			}
			ids[out.Application.ID] = struct{}{}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, ids, 1)

	var notifications int
	require.NoError(t, pg.DB.QueryRow(
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1`, seekerID,
	).Scan(&notifications))
	assert.Equal(t, 1, notifications)
}

// ==========================
// Notification feed
// ==========================

func TestNotificationFeed(t *testing.T) {
	ctx := context.Background()
	seekerID := insertSeeker(t, pg.DB)
	otherID := insertSeeker(t, pg.DB)
	caller := identity.JobSeeker(seekerID)

	base := time.Now().UTC().Add(-time.Hour)
	insert := func(recipient, typ, message string, at time.Time) string {
		id := uuid.NewString()
		_, err := pg.DB.Exec(
			`INSERT INTO notifications (id, recipient_id, type, message, read, created_at) VALUES ($1, $2, $3, $4, FALSE, $5)`,
			id, recipient, typ, message, at)
		require.NoError(t, err)
		return id
	}

	insert(seekerID, models.NotificationSeen, "Acme viewed your application", base)
	latestSeen := insert(seekerID, models.NotificationSeen, "Acme viewed your application", base.Add(time.Minute))
	accepted := insert(seekerID, models.NotificationAccepted, "Acme accepted your application", base.Add(2*time.Minute))
	foreign := insert(otherID, models.NotificationApplied, "You applied for Welder at Acme", base)

	feed, err := ln.NewHandler(&ln.Config{Timeout: 5 * time.Second}, pg.DB, log).
		Execute(ctx, &ln.Input{Caller: caller})
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 2)
	assert.Equal(t, accepted, feed.Notifications[0].ID)
	assert.Equal(t, latestSeen, feed.Notifications[1].ID)

	markRead := mnr.NewHandler(&mnr.Config{Timeout: 5 * time.Second}, pg.DB, log)

	out, err := markRead.Execute(ctx, &mnr.Input{NotificationID: accepted, Caller: caller})
	require.NoError(t, err)
	assert.True(t, out.Notification.Read)

	_, err = markRead.Execute(ctx, &mnr.Input{NotificationID: foreign, Caller: caller})
	assert.True(t, apperrors.IsNotFound(err))

	// Channels are disabled, so delivery records nothing but succeeds.
	delivered, err := dn.NewHandler(&dn.Config{Timeout: 5 * time.Second}, pg.DB, nil, nil, log).
		Execute(ctx, &dn.Input{NotificationID: accepted})
	require.NoError(t, err)
	assert.Equal(t, dn.StatusDisabled, delivered.Status)
}
