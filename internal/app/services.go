package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noahbkim00/executive-ai-mvp/internal/data/aggregates"
	domainagg "github.com/noahbkim00/executive-ai-mvp/internal/domain/aggregates"
	"github.com/noahbkim00/executive-ai-mvp/internal/modules/intake/extraction"
	"github.com/noahbkim00/executive-ai-mvp/internal/modules/intake/orchestrator"
	"github.com/noahbkim00/executive-ai-mvp/internal/modules/intake/questions"
	"github.com/noahbkim00/executive-ai-mvp/internal/modules/intake/research"
	"github.com/noahbkim00/executive-ai-mvp/internal/observability"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/logger"
	"github.com/noahbkim00/executive-ai-mvp/internal/platform/completion"
	"github.com/noahbkim00/executive-ai-mvp/internal/platform/openai"
)

type Services struct {
	Conversations domainagg.ConversationAggregate
	Intake        *orchestrator.Orchestrator
}

func model(client openai.Client, name string, p LLMProfile) completion.Model {
	return completion.Model{
		Client:  client,
		Profile: completion.Profile{Name: name, Temperature: p.Temperature, Timeout: p.Timeout.Std()},
	}
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	conversations := aggregates.NewConversationAggregate(aggregates.ConversationAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:    db,
			Log:   log,
			Hooks: aggregates.NewObservabilityHooks(metrics),
		},
		Conversations: repos.Conversation,
		Responses:     repos.QuestionResponse,
		Jobs:          repos.JobRequirements,
		Companies:     repos.CompanyInfo,
	})

	extractor := extraction.New(extraction.Deps{
		Log:     log,
		Model:   model(clients.OpenAI, "extraction", cfg.LLM.Extraction),
		Metrics: metrics,
		Enrich:  true,
	})
	researcher := research.New(research.Deps{
		Log:      log,
		Searcher: clients.Searcher,
		Model:    model(clients.OpenAI, "extraction", cfg.LLM.Extraction),
		Metrics:  metrics,
		Config: research.Config{
			QueryTimeout:   cfg.Research.QueryTimeout.Std(),
			MaxPerCategory: cfg.Research.MaxResultsPerCategory,
			Concurrency:    cfg.Research.Concurrency,
		},
	})
	generator := questions.New(questions.Deps{
		Log:        log,
		Generation: model(clients.OpenAI, "generation", cfg.LLM.Generation),
		Validation: model(clients.OpenAI, "validation", cfg.LLM.Validation),
		Metrics:    metrics,
		Config: questions.Config{
			MinAccepted:   cfg.Questions.MinAccepted,
			MaxBackfill:   cfg.Questions.MaxBackfill,
			MaxQuestions:  cfg.Questions.MaxQuestions,
			FallbackCount: cfg.Questions.FallbackCount,
		},
	})

	intake, err := orchestrator.New(orchestrator.Deps{
		Log:             log,
		Conversations:   conversations,
		Extractor:       extractor,
		Researcher:      researcher,
		Generator:       generator,
		Bus:             clients.Bus,
		Metrics:         metrics,
		ResearchEnabled: cfg.Research.Enabled,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init orchestrator: %w", err)
	}
	return Services{Conversations: conversations, Intake: intake}, nil
}
