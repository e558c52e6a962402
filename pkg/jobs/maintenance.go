package jobs

import (
	"context"
	"fmt"
)

// Cleaner drops idle per-client state
type Cleaner interface {
	Cleanup()
}

// Pinger is a dependency that can be probed
type Pinger interface {
	Ping(ctx context.Context) error
}

// CleanupJob returns a job that calls Cleanup on every cleaner
func CleanupJob(cleaners ...Cleaner) func(context.Context) error {
	return func(context.Context) error {
		for _, c := range cleaners {
			c.Cleanup()
		}
		return nil
	}
}

// ProbeJob returns a job that pings every dependency and reports the first failure
func ProbeJob(deps map[string]Pinger) func(context.Context) error {
	return func(ctx context.Context) error {
		for name, p := range deps {
			if err := p.Ping(ctx); err != nil {
				return fmt.Errorf("%s unreachable: %w", name, err)
			}
		}
		return nil
	}
}
