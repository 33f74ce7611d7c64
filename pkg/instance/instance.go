package instance

import (
	"os"

	"github.com/angelmondragon/storegoals-backend/pkg/env"
)

// ID identifies this process in logs and cron lock ownership. It prefers
// STOREGOALS_INSTANCE_ID, then the platform dyno name, then the hostname.
func ID() string {
	if id := env.First("", "STOREGOALS_INSTANCE_ID", "DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
