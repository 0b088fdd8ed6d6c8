// internal/workers/application/get-seeker-stats/handler.go
package getseekerstats

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

const TaskType = "get-seeker-stats"

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

// Execute aggregates the caller's applications by status. Callers that are
// not job seekers get zeroed stats.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if !input.Caller.IsJobSeeker() {
		return &Output{}, nil
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(compatibility_score), 0)
		FROM applications
		WHERE job_seeker_id = $1
		GROUP BY status`,
		input.Caller.JobSeekerID,
	)
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("aggregate applications", err)
	}
	defer rows.Close()

	var aggregates []models.StatusAggregate
	for rows.Next() {
		var agg models.StatusAggregate
		if err := rows.Scan(&agg.Status, &agg.Count, &agg.ScoreSum); err != nil {
			return nil, apperrors.NewDatabaseQueryFailedError("scan aggregate", err)
		}
		aggregates = append(aggregates, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("aggregate applications", err)
	}

	return &Output{SeekerStats: models.NewSeekerStats(aggregates)}, nil
}
