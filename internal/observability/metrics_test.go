package observability

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.ObserveStage("research", "ok", time.Second)
	m.IncConflict("agg")
	if got := m.StageCount("research", "ok"); got != 0 {
		t.Fatalf("nil metrics count: got=%v", got)
	}
	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: want=503 got=%d", rec.Code)
	}
}

func TestMetricsExposition(t *testing.T) {
	m := New()
	m.ObserveStage("research", "degraded", 2*time.Second)
	m.ObserveStage("research", "degraded", time.Second)
	m.ObserveStage("extraction", "", 0)
	m.IncConflict("Intake.Conversation.RecordAnswer")
	m.ObserveLLMRequest("gpt-4o", "extraction", "200", time.Second, 120, 40)
	m.ObserveResearchConfidence(0.8)

	if got := m.StageCount("research", "degraded"); got != 2 {
		t.Fatalf("stage count: want=2 got=%v", got)
	}
	if got := m.StageCount("extraction", "unknown"); got != 1 {
		t.Fatalf("blank outcome should be unknown: got=%v", got)
	}
	if got := m.ConflictCount("Intake.Conversation.RecordAnswer"); got != 1 {
		t.Fatalf("conflicts: want=1 got=%v", got)
	}

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"# TYPE intake_stage_total counter",
		`intake_stage_total{stage="research",outcome="degraded"} 2.000000`,
		`intake_stage_duration_seconds_bucket{stage="research",outcome="degraded",le="+Inf"} 2`,
		`intake_llm_tokens_total{model="gpt-4o",kind="input"} 120.000000`,
		`intake_research_confidence_count 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in exposition:\n%s", want, out)
		}
	}
}

func TestLabelEscaping(t *testing.T) {
	got := labelString([]string{"route"}, []string{"a\"b\\c"})
	if got != `{route="a\"b\\c"}` {
		t.Fatalf("escape: got=%s", got)
	}
	if got := withLe("", "1"); got != `{le="1"}` {
		t.Fatalf("withLe empty: got=%s", got)
	}
}

func TestParseHeaders(t *testing.T) {
	h := ParseHeaders(" api-key = abc , broken, x=1 ")
	if len(h) != 2 || h["api-key"] != "abc" || h["x"] != "1" {
		t.Fatalf("headers: got=%v", h)
	}
	if ParseHeaders("") != nil {
		t.Fatalf("empty headers should be nil")
	}
}
