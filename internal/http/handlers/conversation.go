package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/noahbkim00/executive-ai-mvp/internal/domain/aggregates"
	"github.com/noahbkim00/executive-ai-mvp/internal/http/response"
	"github.com/noahbkim00/executive-ai-mvp/internal/modules/intake/orchestrator"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/ctxutil"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/logger"
)

// Intake is the orchestrator surface the handlers drive.
type Intake interface {
	ProcessExtraction(ctx context.Context, conversationID *uuid.UUID, message string) (orchestrator.Response, error)
	ProcessAnswer(ctx context.Context, conversationID uuid.UUID, message string) (orchestrator.Response, error)
	Describe(ctx context.Context, conversationID uuid.UUID) (orchestrator.ConversationView, error)
}

type ConversationHandler struct {
	log    *logger.Logger
	intake Intake
}

func NewConversationHandler(log *logger.Logger, intake Intake) *ConversationHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ConversationHandler{log: log.With("handler", "ConversationHandler"), intake: intake}
}

type extractRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

type answerRequest struct {
	Message string `json:"message"`
}

var errEmptyMessage = errors.New("message is required")

// POST /api/conversations/extract
func (h *ConversationHandler) Extract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		response.RespondError(c, http.StatusBadRequest, string(domainagg.CodeValidation), errEmptyMessage)
		return
	}
	var id *uuid.UUID
	if raw := strings.TrimSpace(req.ConversationID); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", err)
			return
		}
		id = &parsed
	}

	resp, err := h.intake.ProcessExtraction(c.Request.Context(), id, req.Message)
	if err != nil {
		h.fail(c, "extract", err, id)
		return
	}
	response.RespondOK(c, resp)
}

// POST /api/conversations/:id/answer
func (h *ConversationHandler) Answer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", err)
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		response.RespondError(c, http.StatusBadRequest, string(domainagg.CodeValidation), errEmptyMessage)
		return
	}

	resp, err := h.intake.ProcessAnswer(c.Request.Context(), id, req.Message)
	if err != nil {
		h.fail(c, "answer", err, &id)
		return
	}
	response.RespondOK(c, resp)
}

// GET /api/conversations/:id
func (h *ConversationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", err)
		return
	}
	view, err := h.intake.Describe(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get", err, &id)
		return
	}
	response.RespondOK(c, view)
}

func (h *ConversationHandler) fail(c *gin.Context, action string, err error, requested *uuid.UUID) {
	convID := ""
	if id, ok := orchestrator.ConversationIDOf(err); ok {
		convID = id.String()
	} else if requested != nil {
		convID = requested.String()
	}
	fields := append([]interface{}{"action", action, "conversation_id", convID, "code", string(domainagg.CodeOf(err)), "error", err},
		ctxutil.LogFields(c.Request.Context())...)
	if response.StatusFor(domainagg.CodeOf(err)) >= http.StatusInternalServerError || domainagg.CodeOf(err) == "" {
		h.log.Error("Conversation request failed", fields...)
	} else {
		h.log.Warn("Conversation request rejected", fields...)
	}
	_ = c.Error(err)
	response.DomainError(c, err, convID)
}
