package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Questions.MinAccepted != 3 || cfg.Questions.MaxQuestions != 5 || cfg.Questions.FallbackCount != 4 {
		t.Fatalf("question defaults: got=%+v", cfg.Questions)
	}
	if cfg.LLM.Extraction.Temperature != 0.1 || cfg.LLM.Generation.Temperature != 0.7 || cfg.LLM.Validation.Temperature != 0 {
		t.Fatalf("temperature defaults: got=%+v", cfg.LLM)
	}
	if cfg.Research.QueryTimeout.Std() != 15*time.Second || cfg.Research.MaxResultsPerCategory != 5 {
		t.Fatalf("research defaults: got=%+v", cfg.Research)
	}
}

func TestLoadConfigYAMLThenEnv(t *testing.T) {
	path := writeFile(t, "intake.yaml", `
env: test
http:
  addr: ":9090"
  cors_origins: ["https://intake.example.com"]
  shutdown_timeout: 3s
database:
  driver: sqlite
  sqlite_path: /tmp/x.db
llm:
  generation:
    temperature: 0.9
    timeout: 2000000000
questions:
  min_accepted: 2
  max_backfill: 1
  max_questions: 4
  fallback_count: 4
`)
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("RESEARCH_ENABLED", "false")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "authorization=Bearer x, tenant = acme")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTP.Addr != ":7070" {
		t.Fatalf("env should override file: got=%q", cfg.HTTP.Addr)
	}
	if cfg.HTTP.ShutdownTimeout.Std() != 3*time.Second || cfg.LLM.Generation.Timeout.Std() != 2*time.Second {
		t.Fatalf("durations: got=%v %v", cfg.HTTP.ShutdownTimeout, cfg.LLM.Generation.Timeout)
	}
	if cfg.LLM.Generation.Temperature != 0.9 || cfg.LLM.Extraction.Temperature != 0.1 {
		t.Fatalf("profiles should merge over defaults: got=%+v", cfg.LLM)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Questions.MaxQuestions != 4 || cfg.Research.Enabled {
		t.Fatalf("file values: got db=%+v q=%+v research=%v", cfg.Database, cfg.Questions, cfg.Research.Enabled)
	}
	if cfg.Telemetry.Headers["tenant"] != "acme" || cfg.Telemetry.Headers["authorization"] != "Bearer x" {
		t.Fatalf("headers: got=%v", cfg.Telemetry.Headers)
	}
}

func TestLoadConfigJSON(t *testing.T) {
	path := writeFile(t, "intake.json", `{"env":"test","research":{"query_timeout":"750ms","concurrency":2}}`)
	t.Setenv("INTAKE_CONFIG_PATH", path)
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Research.QueryTimeout.Std() != 750*time.Millisecond || cfg.Research.Concurrency != 2 {
		t.Fatalf("research: got=%+v", cfg.Research)
	}
}

func TestValidateRejectsBadLimits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Env = "test"
	cfg.Questions.MinAccepted = 9
	cfg.LLM.Validation.Temperature = 3
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"min_accepted", "llm.validation.temperature"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q should mention %s", err, want)
		}
	}
}

func TestValidateRequiresAPIKeyOutsideTest(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("want api key error, got %v", err)
	}
	cfg.Env = "test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test env should not need a key: %v", err)
	}
}

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{"5s": 5 * time.Second, "1500000000": 1500 * time.Millisecond, "": 0}
	for in, want := range cases {
		got, err := parseDuration(in)
		if err != nil || got.Std() != want {
			t.Fatalf("parseDuration(%q): want=%v got=%v err=%v", in, want, got, err)
		}
	}
	if _, err := parseDuration("soon"); err == nil {
		t.Fatalf("expected error for bad duration")
	}
}

func TestLoadStoreConfigSkipsAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	cfg, err := LoadStoreConfig("")
	if err != nil {
		t.Fatalf("LoadStoreConfig: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("driver: got=%q", cfg.Database.Driver)
	}
}
