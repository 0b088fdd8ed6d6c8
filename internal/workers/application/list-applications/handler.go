// internal/workers/application/list-applications/handler.go
package listapplications

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
	"jobboard-workers/internal/jobs"
	"jobboard-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "list-applications"

var schema = validation.MustCompile(inputSchema)

type Handler struct {
	config *Config
	db     *sql.DB
	jobs   jobs.Directory
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, directory jobs.Directory, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		jobs:   directory,
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

// Execute returns the caller's applications, newest first, with each job
// expanded. Callers that are not job seekers get an empty list.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	output := &Output{Applications: []*models.Application{}}
	if !input.Caller.IsJobSeeker() {
		return output, nil
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, job_id, job_seeker_id, status, compatibility_score, created_at, updated_at
		FROM applications
		WHERE job_seeker_id = $1
		ORDER BY created_at DESC, id DESC`,
		input.Caller.JobSeekerID,
	)
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("list applications", err)
	}
	defer rows.Close()

	jobIDs := make([]string, 0)
	for rows.Next() {
		var app models.Application
		if err := rows.Scan(&app.ID, &app.JobID, &app.JobSeekerID, &app.Status,
			&app.CompatibilityScore, &app.CreatedAt, &app.UpdatedAt); err != nil {
			return nil, apperrors.NewDatabaseQueryFailedError("scan application", err)
		}
		output.Applications = append(output.Applications, &app)
		jobIDs = append(jobIDs, app.JobID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("list applications", err)
	}

	if len(jobIDs) == 0 {
		return output, nil
	}

	found, err := h.jobs.GetMany(ctx, jobIDs)
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("expand jobs", err)
	}
	for _, app := range output.Applications {
		// Deleted jobs stay nil.
		app.Job = found[app.JobID]
	}

	h.logger.Debug("applications listed", map[string]interface{}{
		"jobSeekerId": input.Caller.JobSeekerID,
		"count":       len(output.Applications),
	})
	return output, nil
}
