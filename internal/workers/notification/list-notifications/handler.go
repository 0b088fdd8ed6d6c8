// internal/workers/notification/list-notifications/handler.go
package listnotifications

import (
	"context"
	"database/sql"
	"encoding/json"
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

const TaskType = "list-notifications"

var schema = validation.MustCompile(inputSchema)

// feedQuery keeps the newest row of each (type, message) group, then orders
// the survivors newest first.
const feedQuery = `
	SELECT id, recipient_id, type, message, read, created_at
	FROM (
		SELECT DISTINCT ON (type, message) id, recipient_id, type, message, read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY type, message, created_at DESC, id DESC
	) latest
	ORDER BY created_at DESC, id DESC
	LIMIT $2`

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

// Execute returns the caller's deduplicated feed, newest first, capped at
// models.FeedLimit. Callers that are not job seekers get an empty feed.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	output := &Output{Notifications: []*models.Notification{}}
	if !input.Caller.IsJobSeeker() {
		return output, nil
	}

	rows, err := h.db.QueryContext(ctx, feedQuery, input.Caller.JobSeekerID, models.FeedLimit)
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("list notifications", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Type, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, apperrors.NewDatabaseQueryFailedError("scan notification", err)
		}
		output.Notifications = append(output.Notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("list notifications", err)
	}

	return output, nil
}
