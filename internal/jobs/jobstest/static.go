// Package jobstest provides an in-memory jobs.Directory for handler tests.
package jobstest

import (
	"context"

	"jobboard-workers/internal/jobs"
	"jobboard-workers/internal/models"
)

// Directory serves a fixed set of jobs. Err, when set, is returned by every call.
type Directory struct {
	Jobs map[string]*models.Job
	Err  error
}

func New(list ...*models.Job) *Directory {
	d := &Directory{Jobs: make(map[string]*models.Job, len(list))}
	for _, job := range list {
		d.Jobs[job.ID] = job
	}
	return d
}

func (d *Directory) Get(_ context.Context, id string) (*models.Job, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	job, ok := d.Jobs[id]
	if !ok {
		return nil, jobs.ErrJobNotFound
	}
	return job, nil
}

func (d *Directory) GetMany(_ context.Context, ids []string) (map[string]*models.Job, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	out := make(map[string]*models.Job, len(ids))
	for _, id := range ids {
		if job, ok := d.Jobs[id]; ok {
			out[id] = job
		}
	}
	return out, nil
}

var _ jobs.Directory = (*Directory)(nil)
