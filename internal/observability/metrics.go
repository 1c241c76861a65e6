package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/logger"
)

// Metrics holds the process-wide intake counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	llmRequests *CounterVec
	llmLatency  *HistogramVec
	llmTokens   *CounterVec

	searchRequests *CounterVec
	searchLatency  *HistogramVec

	stageOutcomes      *CounterVec
	stageLatency       *HistogramVec
	researchConfidence *HistogramVec
	transitions        *CounterVec

	aggregateOps       *HistogramVec
	aggregateConflicts *CounterVec
	aggregateRetries   *CounterVec

	dbStats *GaugeVec
}

func New() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("intake_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"intake_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		),
		apiInflight: NewGauge("intake_api_inflight_requests", "In-flight API requests."),

		llmRequests: NewCounterVec("intake_llm_requests_total", "LLM requests by model/endpoint/status.", []string{"model", "endpoint", "status"}),
		llmLatency: NewHistogramVec(
			"intake_llm_request_duration_seconds",
			"LLM request latency in seconds by model/endpoint/status.",
			[]string{"model", "endpoint", "status"},
			[]float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		),
		llmTokens: NewCounterVec("intake_llm_tokens_total", "LLM tokens by model/kind.", []string{"model", "kind"}),

		searchRequests: NewCounterVec("intake_search_requests_total", "Web search requests by status.", []string{"status"}),
		searchLatency: NewHistogramVec(
			"intake_search_request_duration_seconds",
			"Web search latency in seconds by status.",
			[]string{"status"},
			[]float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		),

		stageOutcomes: NewCounterVec("intake_stage_total", "Pipeline stage outcomes (ok, degraded, failed, skipped).", []string{"stage", "outcome"}),
		stageLatency: NewHistogramVec(
			"intake_stage_duration_seconds",
			"Pipeline stage latency in seconds by stage/outcome.",
			[]string{"stage", "outcome"},
			[]float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		),
		researchConfidence: NewHistogramVec(
			"intake_research_confidence",
			"Distribution of company research confidence.",
			nil,
			[]float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		),
		transitions: NewCounterVec("intake_phase_transitions_total", "Conversation phase transitions.", []string{"from", "to"}),

		aggregateOps: NewHistogramVec(
			"intake_aggregate_operation_duration_seconds",
			"Aggregate write latency in seconds by aggregate/status.",
			[]string{"aggregate", "status"},
			[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		),
		aggregateConflicts: NewCounterVec("intake_aggregate_conflicts_total", "Aggregate version conflicts.", []string{"aggregate"}),
		aggregateRetries:   NewCounterVec("intake_aggregate_retries_total", "Aggregate write retries.", []string{"aggregate"}),

		dbStats: NewGaugeVec("intake_db_pool", "Database pool statistics.", []string{"stat"}),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency, m.llmTokens,
		m.searchRequests, m.searchLatency,
		m.stageOutcomes, m.stageLatency, m.researchConfidence, m.transitions,
		m.aggregateOps, m.aggregateConflicts, m.aggregateRetries,
		m.dbStats,
	}
	for _, mw := range writers {
		if err := mw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	method = orUnknown(method)
	route = orUnknown(route)
	status = orUnknown(status)
	m.apiRequests.Inc(method, route, status)
	if dur > 0 {
		m.apiLatency.Observe(dur.Seconds(), method, route, status)
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Add(1)
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Add(-1)
}

func (m *Metrics) ObserveLLMRequest(model, endpoint, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	model = orUnknown(model)
	endpoint = orUnknown(endpoint)
	status = orUnknown(status)
	m.llmRequests.Inc(model, endpoint, status)
	if dur > 0 {
		m.llmLatency.Observe(dur.Seconds(), model, endpoint, status)
	}
	if inputTokens > 0 {
		m.llmTokens.Add(float64(inputTokens), model, "input")
	}
	if outputTokens > 0 {
		m.llmTokens.Add(float64(outputTokens), model, "output")
	}
}

func (m *Metrics) ObserveSearch(status string, dur time.Duration) {
	if m == nil {
		return
	}
	status = orUnknown(status)
	m.searchRequests.Inc(status)
	if dur > 0 {
		m.searchLatency.Observe(dur.Seconds(), status)
	}
}

// ObserveStage records one pipeline stage result, e.g. ("research", "degraded").
func (m *Metrics) ObserveStage(stage, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	stage = orUnknown(stage)
	outcome = orUnknown(outcome)
	m.stageOutcomes.Inc(stage, outcome)
	if dur > 0 {
		m.stageLatency.Observe(dur.Seconds(), stage, outcome)
	}
}

func (m *Metrics) StageCount(stage, outcome string) float64 {
	if m == nil {
		return 0
	}
	return m.stageOutcomes.Value(orUnknown(stage), orUnknown(outcome))
}

func (m *Metrics) ObserveResearchConfidence(v float64) {
	if m == nil {
		return
	}
	m.researchConfidence.Observe(v)
}

func (m *Metrics) IncTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.Inc(orUnknown(from), orUnknown(to))
}

// ObserveOperation, IncConflict and IncRetry let *Metrics serve as aggregate hooks.
func (m *Metrics) ObserveOperation(name, status string, dur time.Duration) {
	if m == nil {
		return
	}
	name = orUnknown(name)
	status = orUnknown(status)
	m.aggregateOps.Observe(dur.Seconds(), name, status)
}

func (m *Metrics) IncConflict(name string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.Inc(orUnknown(name))
}

func (m *Metrics) IncRetry(name string) {
	if m == nil {
		return
	}
	m.aggregateRetries.Inc(orUnknown(name))
}

func (m *Metrics) ConflictCount(name string) float64 {
	if m == nil {
		return 0
	}
	return m.aggregateConflicts.Value(orUnknown(name))
}

// StartDBCollector samples connection pool stats until ctx is done.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
			}
		}
	}()
}

func orUnknown(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}
