// internal/workers/application/apply-to-job/handler.go
package applytojob

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobboard-workers/internal/common/camunda"
	"jobboard-workers/internal/common/database"
	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/common/metrics"
	"jobboard-workers/internal/common/validation"
	"jobboard-workers/internal/jobs"
	"jobboard-workers/internal/models"
	"jobboard-workers/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "apply-to-job"

	// MessageApplicationSubmitted starts the delivery process for a new application.
	MessageApplicationSubmitted = "application-submitted"
)

var errAlreadyApplied = errors.New("application already exists")

var schema = validation.MustCompile(inputSchema)

// MessagePublisher publishes workflow messages. *camunda.Client implements it.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, name, correlationKey string, variables interface{}) error
}

type Handler struct {
	config    *Config
	db        *sql.DB
	jobs      jobs.Directory
	publisher MessagePublisher
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
	now       func() time.Time
}

// NewHandler builds the handler. publisher may be nil when no broker is configured.
func NewHandler(config *Config, db *sql.DB, directory jobs.Directory, publisher MessagePublisher, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		db:        db,
		jobs:      directory,
		publisher: publisher,
		errors:    apperrors.NewErrorHandler(l),
		logger:    l,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if result := schema.ValidateVariables(job.Variables); !result.Valid {
		h.fail(ctx, client, job, apperrors.NewInvalidInputError(strings.Join(result.GetErrorMessages(), "; ")))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
	}
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.CodeOf(err))).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}

// Execute registers the caller's application to input.JobID. Repeated calls
// for the same job return the stored application with AlreadyApplied set and
// write nothing.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if !input.Caller.IsJobSeeker() {
		return nil, apperrors.NewUnauthorizedError("please log in as a job seeker to apply")
	}
	seekerID := input.Caller.JobSeekerID

	job, err := h.jobs.Get(ctx, input.JobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			return nil, apperrors.NewJobNotFoundError(input.JobID)
		}
		return nil, apperrors.NewDatabaseQueryFailedError("job lookup", err)
	}

	now := h.now()
	app := &models.Application{
		ID:                 uuid.NewString(),
		JobID:              job.ID,
		JobSeekerID:        seekerID,
		Status:             models.StatusApplied,
		CompatibilityScore: scoring.Compatibility(job.ID, seekerID),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	notificationID := uuid.NewString()

	err = database.WithTx(ctx, h.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO applications (
				id, job_id, job_seeker_id, status, compatibility_score, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $6)`,
			app.ID, app.JobID, app.JobSeekerID, app.Status, app.CompatibilityScore, now,
		)
		if database.IsUniqueViolation(err) {
			return errAlreadyApplied
		}
		if database.IsForeignKeyViolation(err) {
			// Left over from schemas that tied applications to the jobs table.
			return apperrors.NewJobNotFoundError(job.ID)
		}
		if err != nil {
			return apperrors.NewDatabaseInsertFailedError("insert application", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO notifications (id, recipient_id, type, message, read, created_at)
			VALUES ($1, $2, $3, $4, FALSE, $5)`,
			notificationID, seekerID, models.NotificationApplied, models.AppliedMessage(job), now,
		)
		if err != nil {
			return apperrors.NewDatabaseInsertFailedError("insert notification", err)
		}
		return nil
	})

	switch {
	case errors.Is(err, errAlreadyApplied):
		existing, err := h.findExisting(ctx, job.ID, seekerID)
		if err != nil {
			return nil, err
		}
		existing.Job = job
		metrics.ApplicationsSubmitted.WithLabelValues("already_applied").Inc()
		h.logger.Info("application already exists", map[string]interface{}{
			"applicationId": existing.ID,
			"jobId":         job.ID,
			"jobSeekerId":   seekerID,
		})
		return &Output{Application: existing, AlreadyApplied: true}, nil

	case err != nil:
		if _, ok := apperrors.AsStandardError(err); ok {
			return nil, err
		}
		return nil, apperrors.NewDatabaseInsertFailedError("apply transaction", err)
	}

	app.Job = job
	metrics.ApplicationsSubmitted.WithLabelValues("created").Inc()
	h.logger.Info("application created", map[string]interface{}{
		"applicationId":      app.ID,
		"jobId":              job.ID,
		"jobSeekerId":        seekerID,
		"compatibilityScore": app.CompatibilityScore,
	})

	h.publishSubmitted(ctx, app, notificationID)

	return &Output{Application: app, AlreadyApplied: false}, nil
}

func (h *Handler) findExisting(ctx context.Context, jobID, seekerID string) (*models.Application, error) {
	var app models.Application
	err := h.db.QueryRowContext(ctx, `
		SELECT id, job_id, job_seeker_id, status, compatibility_score, created_at, updated_at
		FROM applications
		WHERE job_id = $1 AND job_seeker_id = $2`,
		jobID, seekerID,
	).Scan(&app.ID, &app.JobID, &app.JobSeekerID, &app.Status, &app.CompatibilityScore, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("load existing application", err)
	}
	return &app, nil
}

// publishSubmitted is best effort; the application is already committed.
func (h *Handler) publishSubmitted(ctx context.Context, app *models.Application, notificationID string) {
	if h.publisher == nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, h.config.PublishTimeout)
	defer cancel()

	err := h.publisher.PublishMessage(pubCtx, MessageApplicationSubmitted, app.ID, SubmittedMessage{
		ApplicationID:  app.ID,
		JobID:          app.JobID,
		JobSeekerID:    app.JobSeekerID,
		NotificationID: notificationID,
	})
	if err != nil {
		h.logger.Warn("failed to publish application message", map[string]interface{}{
			"applicationId": app.ID,
			"error":         err,
		})
	}
}
