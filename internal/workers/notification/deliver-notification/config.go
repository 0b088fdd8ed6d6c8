// internal/workers/notification/deliver-notification/config.go
package delivernotification

import (
	"time"

	"jobboard-workers/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	SMSSenderID  string
	Timeout      time.Duration
}

func LoadConfig(wc config.WorkerConfig, nc config.NotificationConfig) *Config {
	cfg := &Config{
		EmailEnabled: nc.EmailEnabled,
		SMSEnabled:   nc.SMSEnabled,
		FromEmail:    nc.FromEmail,
		SMSSenderID:  nc.SMSSenderID,
		Timeout:      30 * time.Second,
	}
	if wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	return cfg
}
