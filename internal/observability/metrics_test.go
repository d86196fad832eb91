package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/signalsfoundry/gnb-mac-sim/model"
)

func TestSchedulerCollectorRecordsGrants(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewSchedulerCollector(reg)
	if err != nil {
		t.Fatalf("NewSchedulerCollector: %v", err)
	}

	collector.GrantIssued(model.Uplink)
	collector.GrantIssued(model.Downlink)
	collector.GrantIssued(model.Downlink)

	if got := testutil.ToFloat64(collector.GrantsTotal.WithLabelValues("UL")); got != 1 {
		t.Fatalf("mac_grants_total{UL} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.GrantsTotal.WithLabelValues("DL")); got != 2 {
		t.Fatalf("mac_grants_total{DL} = %v, want 2", got)
	}
}

func TestSchedulerCollectorRecordsSkipsAndClamps(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewSchedulerCollector(reg)
	if err != nil {
		t.Fatalf("NewSchedulerCollector: %v", err)
	}

	collector.UESkipped(model.Downlink, "invalid_cqi")
	collector.UESkipped(model.Downlink, "invalid_cqi")
	collector.StrideClamped()

	if got := testutil.ToFloat64(collector.UESkippedTotal.WithLabelValues("DL", "invalid_cqi")); got != 2 {
		t.Fatalf("mac_ues_skipped_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.StrideClampTotal); got != 1 {
		t.Fatalf("mac_stride_clamps_total = %v, want 1", got)
	}
}

func TestSchedulerCollectorObservesDurations(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewSchedulerCollector(reg)
	if err != nil {
		t.Fatalf("NewSchedulerCollector: %v", err)
	}

	collector.ScheduleDuration(model.Uplink, 150*time.Microsecond)
	collector.ScheduleDuration(model.Uplink, 300*time.Microsecond)

	if count := histogramSampleCount(t, reg, "mac_schedule_duration_seconds", map[string]string{
		"direction": "UL",
	}); count != 2 {
		t.Fatalf("mac_schedule_duration_seconds sample_count = %d, want 2", count)
	}
}

func TestMetricsHandlerExposesCellGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewSchedulerCollector(reg)
	if err != nil {
		t.Fatalf("NewSchedulerCollector: %v", err)
	}
	collector.SetActiveUEs(4)
	collector.GrantIssued(model.Downlink)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	body := rr.Body.String()
	if !strings.Contains(body, "mac_cell_active_ues 4") {
		t.Errorf("metrics output missing active UE gauge:\n%s", body)
	}
	if !strings.Contains(body, "mac_grants_total") {
		t.Errorf("metrics output missing grant counter:\n%s", body)
	}
}

func TestNewSchedulerCollectorIsIdempotentPerRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewSchedulerCollector(reg)
	if err != nil {
		t.Fatalf("first NewSchedulerCollector: %v", err)
	}
	second, err := NewSchedulerCollector(reg)
	if err != nil {
		t.Fatalf("second NewSchedulerCollector: %v", err)
	}

	first.GrantIssued(model.Uplink)
	second.GrantIssued(model.Uplink)

	if got := testutil.ToFloat64(first.GrantsTotal.WithLabelValues("UL")); got != 2 {
		t.Fatalf("shared counter = %v, want 2 (collectors must share registrations)", got)
	}
}

func histogramSampleCount(t *testing.T, g prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	families, err := g.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			if matchLabels(m.GetLabel(), labels) {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) != len(want) {
		return false
	}
	for _, lp := range got {
		if want[lp.GetName()] != lp.GetValue() {
			return false
		}
	}
	return true
}
