package app

import (
	"fmt"
	"strings"

	"github.com/noahbkim00/executive-ai-mvp/internal/observability"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/logger"
	"github.com/noahbkim00/executive-ai-mvp/internal/platform/openai"
	"github.com/noahbkim00/executive-ai-mvp/internal/platform/search"
	"github.com/noahbkim00/executive-ai-mvp/internal/realtime/bus"
)

type Clients struct {
	OpenAI   openai.Client
	Searcher search.Searcher
	Bus      bus.Bus
}

func wireClients(log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	// OpenAI
	oa, err := openai.NewClient(log, openai.Config{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.Model,
		Timeout:    cfg.OpenAI.Timeout.Std(),
		MaxRetries: cfg.OpenAI.MaxRetries,
	}, metrics)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	// Search
	var searcher search.Searcher = search.Disabled{}
	if strings.TrimSpace(cfg.Search.APIKey) != "" {
		s, err := search.NewSerperClient(log, search.Config{
			APIKey:     cfg.Search.APIKey,
			BaseURL:    cfg.Search.BaseURL,
			NumResults: cfg.Search.NumResults,
			Timeout:    cfg.Search.Timeout.Std(),
			MaxRetries: cfg.Search.MaxRetries,
		}, metrics)
		if err != nil {
			return Clients{}, fmt.Errorf("init search client: %w", err)
		}
		searcher = s
	} else {
		log.Warn("SERPER_API_KEY not set; company research will use heuristic fallbacks")
	}

	// Redis
	var b bus.Bus = bus.Noop{}
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		rb, err := bus.NewRedisBus(log, bus.RedisConfig{Addr: cfg.Redis.Addr, Channel: cfg.Redis.Channel})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis conversation bus: %w", err)
		}
		b = rb
	}

	return Clients{OpenAI: oa, Searcher: searcher, Bus: b}, nil
}
