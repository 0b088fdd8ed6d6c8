// internal/workers/notification/mark-notification-read/handler.go
package marknotificationread

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"jobboard-workers/internal/common/camunda"
	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/common/metrics"
	"jobboard-workers/internal/common/validation"
	"jobboard-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "mark-notification-read"

var schema = validation.MustCompile(inputSchema)

type Handler struct {
	config *Config
	db     *sql.DB
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		errors: apperrors.NewErrorHandler(l),
		logger: l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
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
		h.logger.Error("failed to complete job", map[string]interface{}{"jobKey": job.Key, "error": err})
	}
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.CodeOf(err))).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}

// Execute sets the read flag on one of the caller's notifications. A missing
// notification and one owned by someone else are indistinguishable.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if !input.Caller.IsJobSeeker() {
		return nil, apperrors.NewUnauthorizedError("please log in as a job seeker")
	}
	if !validation.IsUUID(input.NotificationID) {
		return nil, apperrors.NewNotificationNotFoundError(input.NotificationID)
	}

	var n models.Notification
	err := h.db.QueryRowContext(ctx, `
		UPDATE notifications
		SET read = TRUE
		WHERE id = $1 AND recipient_id = $2
		RETURNING id, recipient_id, type, message, read, created_at`,
		input.NotificationID, input.Caller.JobSeekerID,
	).Scan(&n.ID, &n.RecipientID, &n.Type, &n.Message, &n.Read, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotificationNotFoundError(input.NotificationID)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("mark notification read", err)
	}

	h.logger.Debug("notification marked read", map[string]interface{}{
		"notificationId": n.ID,
		"jobSeekerId":    n.RecipientID,
	})
	return &Output{Notification: &n}, nil
}
