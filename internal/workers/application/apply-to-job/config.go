// internal/workers/application/apply-to-job/config.go
package applytojob

import (
	"time"

	"jobboard-workers/internal/common/config"
)

type Config struct {
	Timeout        time.Duration
	PublishTimeout time.Duration
}

func LoadConfig(wc config.WorkerConfig) *Config {
	cfg := &Config{
		Timeout:        10 * time.Second,
		PublishTimeout: 2 * time.Second,
	}
	if wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	return cfg
}
