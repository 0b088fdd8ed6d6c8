package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/common/metrics"
	"jobboard-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "job:summary:"

// CachedDirectory is a cache-aside wrapper around another Directory. Redis
// failures are logged and the wrapped directory is used directly.
type CachedDirectory struct {
	next   Directory
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedDirectory(next Directory, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedDirectory {
	return &CachedDirectory{
		next:   next,
		redis:  client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "job-directory-cache"}),
	}
}

func cacheKey(id string) string {
	return cacheKeyPrefix + id
}

func (d *CachedDirectory) Get(ctx context.Context, id string) (*models.Job, error) {
	if !isValidID(id) {
		return nil, ErrJobNotFound
	}

	val, err := d.redis.Get(ctx, cacheKey(id)).Result()
	switch {
	case err == nil:
		var job models.Job
		if jsonErr := json.Unmarshal([]byte(val), &job); jsonErr == nil {
			metrics.JobDirectoryCacheLookups.WithLabelValues("hit").Inc()
			return &job, nil
		}
		metrics.JobDirectoryCacheLookups.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.JobDirectoryCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.JobDirectoryCacheLookups.WithLabelValues("error").Inc()
		d.logger.Warn("job cache read failed", map[string]interface{}{
			"jobId": id,
			"error": err,
		})
	}

	job, err := d.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d.store(ctx, job)
	return job, nil
}

func (d *CachedDirectory) GetMany(ctx context.Context, ids []string) (map[string]*models.Job, error) {
	out := make(map[string]*models.Job)
	valid := validIDs(ids)
	if len(valid) == 0 {
		return out, nil
	}

	keys := make([]string, len(valid))
	for i, id := range valid {
		keys[i] = cacheKey(id)
	}

	missing := valid
	vals, err := d.redis.MGet(ctx, keys...).Result()
	if err != nil {
		metrics.JobDirectoryCacheLookups.WithLabelValues("error").Inc()
		d.logger.Warn("job cache batch read failed", map[string]interface{}{
			"count": len(keys),
			"error": err,
		})
	} else {
		missing = nil
		for i, v := range vals {
			s, ok := v.(string)
			if !ok {
				missing = append(missing, valid[i])
				continue
			}
			var job models.Job
			if err := json.Unmarshal([]byte(s), &job); err != nil {
				missing = append(missing, valid[i])
				continue
			}
			out[valid[i]] = &job
		}
		metrics.JobDirectoryCacheLookups.WithLabelValues("hit").Add(float64(len(out)))
		metrics.JobDirectoryCacheLookups.WithLabelValues("miss").Add(float64(len(missing)))
	}

	if len(missing) == 0 {
		return out, nil
	}

	loaded, err := d.next.GetMany(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, job := range loaded {
		out[id] = job
		d.store(ctx, job)
	}
	return out, nil
}

func (d *CachedDirectory) store(ctx context.Context, job *models.Job) {
	data, err := json.Marshal(job)
	if err != nil {
		return
	}
	if err := d.redis.Set(ctx, cacheKey(job.ID), data, d.ttl).Err(); err != nil {
		d.logger.Warn("job cache write failed", map[string]interface{}{
			"jobId": job.ID,
			"error": err,
		})
	}
}
