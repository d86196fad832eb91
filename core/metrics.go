package core

import (
	"time"

	"github.com/signalsfoundry/gnb-mac-sim/model"
)

// MetricsRecorder receives scheduling telemetry. The concrete Prometheus
// implementation lives in internal/observability; a nil recorder is
// replaced with a no-op so the core never branches on instrumentation.
type MetricsRecorder interface {
	GrantIssued(dir model.Direction)
	UESkipped(dir model.Direction, reason string)
	StrideClamped()
	ScheduleDuration(dir model.Direction, d time.Duration)
}

// Skip reasons recorded against mac_ues_skipped_total.
const (
	SkipReasonInvalidCQI      = "invalid_cqi"
	SkipReasonEmptyAllocation = "empty_allocation"
)

type noopMetrics struct{}

func (noopMetrics) GrantIssued(model.Direction)                     {}
func (noopMetrics) UESkipped(model.Direction, string)               {}
func (noopMetrics) StrideClamped()                                  {}
func (noopMetrics) ScheduleDuration(model.Direction, time.Duration) {}
