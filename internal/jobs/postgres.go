package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jobboard-workers/internal/models"

	"github.com/lib/pq"
)

const jobColumns = `id, position, company, location, COALESCE(employer_id::text, ''), created_at`

// PostgresDirectory reads the jobs table.
type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) Get(ctx context.Context, id string) (*models.Job, error) {
	if !isValidID(id) {
		return nil, ErrJobNotFound
	}

	var job models.Job
	err := d.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id).
		Scan(&job.ID, &job.Position, &job.Company, &job.Location, &job.EmployerID, &job.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query job %s: %w", id, err)
	}
	return &job, nil
}

func (d *PostgresDirectory) GetMany(ctx context.Context, ids []string) (map[string]*models.Job, error) {
	out := make(map[string]*models.Job)
	valid := validIDs(ids)
	if len(valid) == 0 {
		return out, nil
	}

	rows, err := d.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ANY($1)`, pq.Array(valid))
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var job models.Job
		if err := rows.Scan(&job.ID, &job.Position, &job.Company, &job.Location, &job.EmployerID, &job.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out[job.ID] = &job
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return out, nil
}
