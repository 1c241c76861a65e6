package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/envutil"
)

// Duration reads "5s" style strings or integer nanoseconds from YAML and JSON.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func parseDuration(raw string) (Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if v, err := time.ParseDuration(raw); err == nil {
		return Duration(v), nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	return Duration(n), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	v, err := parseDuration(node.Value)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d Duration) MarshalYAML() (any, error) { return d.String(), nil }

func (d *Duration) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(b)), `"`)
	v, err := parseDuration(raw)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

type HTTPConfig struct {
	Addr            string   `yaml:"addr" json:"addr"`
	CORSOrigins     []string `yaml:"cors_origins" json:"cors_origins"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver     string `yaml:"driver" json:"driver"`
	DSN        string `yaml:"dsn" json:"dsn"`
	Host       string `yaml:"host" json:"host"`
	Port       string `yaml:"port" json:"port"`
	User       string `yaml:"user" json:"user"`
	Password   string `yaml:"password" json:"password"`
	Name       string `yaml:"name" json:"name"`
	SQLitePath string `yaml:"sqlite_path" json:"sqlite_path"`
}

type RedisConfig struct {
	Addr    string `yaml:"addr" json:"addr"`
	Channel string `yaml:"channel" json:"channel"`
}

type OpenAIConfig struct {
	APIKey     string   `yaml:"api_key" json:"api_key"`
	BaseURL    string   `yaml:"base_url" json:"base_url"`
	Model      string   `yaml:"model" json:"model"`
	Timeout    Duration `yaml:"timeout" json:"timeout"`
	MaxRetries int      `yaml:"max_retries" json:"max_retries"`
}

type SearchConfig struct {
	APIKey     string   `yaml:"api_key" json:"api_key"`
	BaseURL    string   `yaml:"base_url" json:"base_url"`
	NumResults int      `yaml:"num_results" json:"num_results"`
	Timeout    Duration `yaml:"timeout" json:"timeout"`
	MaxRetries int      `yaml:"max_retries" json:"max_retries"`
}

type LLMProfile struct {
	Temperature float64  `yaml:"temperature" json:"temperature"`
	Timeout     Duration `yaml:"timeout" json:"timeout"`
}

type LLMConfig struct {
	Extraction LLMProfile `yaml:"extraction" json:"extraction"`
	Generation LLMProfile `yaml:"generation" json:"generation"`
	Validation LLMProfile `yaml:"validation" json:"validation"`
}

type ResearchConfig struct {
	Enabled               bool     `yaml:"enabled" json:"enabled"`
	QueryTimeout          Duration `yaml:"query_timeout" json:"query_timeout"`
	MaxResultsPerCategory int      `yaml:"max_results_per_category" json:"max_results_per_category"`
	Concurrency           int      `yaml:"concurrency" json:"concurrency"`
}

type QuestionsConfig struct {
	MinAccepted   int `yaml:"min_accepted" json:"min_accepted"`
	MaxBackfill   int `yaml:"max_backfill" json:"max_backfill"`
	MaxQuestions  int `yaml:"max_questions" json:"max_questions"`
	FallbackCount int `yaml:"fallback_count" json:"fallback_count"`
}

type TelemetryConfig struct {
	Enabled     bool              `yaml:"enabled" json:"enabled"`
	ServiceName string            `yaml:"service_name" json:"service_name"`
	Version     string            `yaml:"version" json:"version"`
	Endpoint    string            `yaml:"endpoint" json:"endpoint"`
	Headers     map[string]string `yaml:"headers" json:"headers"`
	Insecure    bool              `yaml:"insecure" json:"insecure"`
	SampleRatio float64           `yaml:"sample_ratio" json:"sample_ratio"`
}

type Config struct {
	Env     string `yaml:"env" json:"env"`
	LogMode string `yaml:"log_mode" json:"log_mode"`

	HTTP      HTTPConfig      `yaml:"http" json:"http"`
	Database  DatabaseConfig  `yaml:"database" json:"database"`
	Redis     RedisConfig     `yaml:"redis" json:"redis"`
	OpenAI    OpenAIConfig    `yaml:"openai" json:"openai"`
	Search    SearchConfig    `yaml:"search" json:"search"`
	LLM       LLMConfig       `yaml:"llm" json:"llm"`
	Research  ResearchConfig  `yaml:"research" json:"research"`
	Questions QuestionsConfig `yaml:"questions" json:"questions"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
}

func DefaultConfig() Config {
	return Config{
		Env:     "development",
		LogMode: "development",
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Database: DatabaseConfig{
			Driver:     "postgres",
			Host:       "localhost",
			Port:       "5432",
			User:       "postgres",
			Name:       "executive_ai",
			SQLitePath: "intake.db",
		},
		Redis: RedisConfig{Channel: "intake.conversations"},
		OpenAI: OpenAIConfig{
			BaseURL:    "https://api.openai.com",
			Model:      "gpt-4o-mini",
			Timeout:    Duration(60 * time.Second),
			MaxRetries: 3,
		},
		Search: SearchConfig{
			BaseURL:    "https://google.serper.dev",
			NumResults: 10,
			Timeout:    Duration(15 * time.Second),
			MaxRetries: 2,
		},
		LLM: LLMConfig{
			Extraction: LLMProfile{Temperature: 0.1, Timeout: Duration(45 * time.Second)},
			Generation: LLMProfile{Temperature: 0.7, Timeout: Duration(60 * time.Second)},
			Validation: LLMProfile{Temperature: 0.0, Timeout: Duration(20 * time.Second)},
		},
		Research: ResearchConfig{
			Enabled:               true,
			QueryTimeout:          Duration(15 * time.Second),
			MaxResultsPerCategory: 5,
			Concurrency:           6,
		},
		Questions: QuestionsConfig{
			MinAccepted:   3,
			MaxBackfill:   2,
			MaxQuestions:  5,
			FallbackCount: 4,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "executive-intake",
			Version:     "dev",
			SampleRatio: 1,
		},
	}
}

// LoadConfig builds the process configuration: defaults, then .env, then the
// optional YAML/JSON file at path (or INTAKE_CONFIG_PATH), then environment
// overrides. The result is validated before it is returned.
func LoadConfig(path string) (Config, error) {
	return load(path, true)
}

// LoadStoreConfig loads the same layers but does not require LLM credentials.
func LoadStoreConfig(path string) (Config, error) {
	return load(path, false)
}

func load(path string, requireLLM bool) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}

	if strings.TrimSpace(path) == "" {
		path = envutil.String("INTAKE_CONFIG_PATH", "")
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(requireLLM); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, cfg)
	default:
		err = yaml.Unmarshal(raw, cfg)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("INTAKE_ENV", cfg.Env)
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)

	cfg.HTTP.Addr = envutil.String("HTTP_ADDR", cfg.HTTP.Addr)
	if port, ok := envutil.Lookup("PORT"); ok && cfg.HTTP.Addr == ":8080" {
		cfg.HTTP.Addr = ":" + port
	}
	cfg.HTTP.CORSOrigins = envutil.List("CORS_ORIGINS", cfg.HTTP.CORSOrigins)

	db := &cfg.Database
	db.Driver = envutil.String("DATABASE_DRIVER", db.Driver)
	db.DSN = envutil.String("DATABASE_URL", db.DSN)
	db.Host = envutil.String("POSTGRES_HOST", db.Host)
	db.Port = envutil.String("POSTGRES_PORT", db.Port)
	db.User = envutil.String("POSTGRES_USER", db.User)
	db.Password = envutil.String("POSTGRES_PASSWORD", db.Password)
	db.Name = envutil.String("POSTGRES_NAME", db.Name)
	db.SQLitePath = envutil.String("SQLITE_PATH", db.SQLitePath)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Channel = envutil.String("REDIS_CHANNEL", cfg.Redis.Channel)

	cfg.OpenAI.APIKey = envutil.String("OPENAI_API_KEY", cfg.OpenAI.APIKey)
	cfg.OpenAI.BaseURL = envutil.String("OPENAI_BASE_URL", cfg.OpenAI.BaseURL)
	cfg.OpenAI.Model = envutil.String("OPENAI_MODEL", cfg.OpenAI.Model)
	cfg.OpenAI.MaxRetries = envutil.Int("OPENAI_MAX_RETRIES", cfg.OpenAI.MaxRetries)

	cfg.Search.APIKey = envutil.String("SERPER_API_KEY", cfg.Search.APIKey)
	cfg.Search.BaseURL = envutil.String("SEARCH_BASE_URL", cfg.Search.BaseURL)

	cfg.Research.Enabled = envutil.Bool("RESEARCH_ENABLED", cfg.Research.Enabled)

	t := &cfg.Telemetry
	t.Enabled = envutil.Bool("OTEL_ENABLED", t.Enabled)
	t.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", t.Endpoint)
	if raw, ok := envutil.Lookup("OTEL_EXPORTER_OTLP_HEADERS"); ok {
		t.Headers = parseHeaderList(raw)
	}
	t.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", t.Insecure)
	t.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", t.SampleRatio)
}

func parseHeaderList(raw string) map[string]string {
	out := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		if k = strings.TrimSpace(k); k != "" {
			out[k] = strings.TrimSpace(v)
		}
	}
	return out
}

func (c Config) IsTest() bool { return strings.EqualFold(strings.TrimSpace(c.Env), "test") }

func (c Config) Validate() error { return c.validate(true) }

func (c Config) validate(requireLLM bool) error {
	var problems []string
	if requireLLM && strings.TrimSpace(c.OpenAI.APIKey) == "" && !c.IsTest() {
		problems = append(problems, "openai.api_key (OPENAI_API_KEY) is required")
	}
	switch strings.ToLower(strings.TrimSpace(c.Database.Driver)) {
	case "postgres", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("database.driver must be postgres or sqlite, got %q", c.Database.Driver))
	}
	q := c.Questions
	if q.MinAccepted < 1 || q.MinAccepted > q.MaxQuestions {
		problems = append(problems, "questions: need 1 <= min_accepted <= max_questions")
	}
	if q.FallbackCount < 1 || q.FallbackCount > q.MaxQuestions {
		problems = append(problems, "questions: need 1 <= fallback_count <= max_questions")
	}
	if q.MaxBackfill < 0 {
		problems = append(problems, "questions.max_backfill must not be negative")
	}
	profiles := []struct {
		name string
		LLMProfile
	}{
		{"extraction", c.LLM.Extraction},
		{"generation", c.LLM.Generation},
		{"validation", c.LLM.Validation},
	}
	for _, p := range profiles {
		name := p.name
		if p.Temperature < 0 || p.Temperature > 2 {
			problems = append(problems, fmt.Sprintf("llm.%s.temperature must be within [0, 2]", name))
		}
		if p.Timeout < 0 {
			problems = append(problems, fmt.Sprintf("llm.%s.timeout must not be negative", name))
		}
	}
	if c.Research.MaxResultsPerCategory < 0 || c.Research.Concurrency < 0 {
		problems = append(problems, "research limits must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
