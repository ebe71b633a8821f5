// Package worker recomputes duty status boards in the background and exports
// them as Prometheus metrics.
package worker

import (
	"time"
)

// StatusJobConfig holds configuration for the status recompute job.
type StatusJobConfig struct {
	// ServiceClasses are the duty calendars recomputed on each run.
	// If empty, uses DefaultServiceClasses.
	ServiceClasses []string

	// Interval is the ticker period of Start.
	// Default: 1 minute
	Interval time.Duration

	// Timeout bounds a single run.
	// Default: 30 seconds
	Timeout time.Duration

	// Concurrency is the number of service classes computed at once.
	// Default: 4
	Concurrency int
}

// DefaultServiceClasses returns the calendars every roster carries.
func DefaultServiceClasses() []string {
	return []string{"weekday", "friday", "saturday", "sunday"}
}

// DefaultStatusJobConfig returns the default job configuration.
func DefaultStatusJobConfig() StatusJobConfig {
	return StatusJobConfig{
		ServiceClasses: DefaultServiceClasses(),
		Interval:       time.Minute,
		Timeout:        30 * time.Second,
		Concurrency:    4,
	}
}

func (c StatusJobConfig) withDefaults() StatusJobConfig {
	def := DefaultStatusJobConfig()
	if len(c.ServiceClasses) == 0 {
		c.ServiceClasses = def.ServiceClasses
	}
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	return c
}
