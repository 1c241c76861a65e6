package aggregates

import (
	"time"

	"github.com/noahbkim00/executive-ai-mvp/internal/observability"
)

// Hooks captures aggregate-level observability events.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

var _ Hooks = (*observability.Metrics)(nil)

// NewObservabilityHooks returns metrics as aggregate hooks, or no-op hooks when metrics are off.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return metrics
}
