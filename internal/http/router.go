package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/noahbkim00/executive-ai-mvp/internal/http/handlers"
	httpMW "github.com/noahbkim00/executive-ai-mvp/internal/http/middleware"
	"github.com/noahbkim00/executive-ai-mvp/internal/observability"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	ConversationHandler *httpH.ConversationHandler
	HealthHandler       *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Conversations
		if cfg.ConversationHandler != nil {
			api.POST("/conversations/extract", cfg.ConversationHandler.Extract)
			api.POST("/conversations/:id/answer", cfg.ConversationHandler.Answer)
			api.GET("/conversations/:id", cfg.ConversationHandler.Get)
		}
	}

	return r
}
