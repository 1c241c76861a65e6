package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainagg "github.com/noahbkim00/executive-ai-mvp/internal/domain/aggregates"
)

func TestStatusFor(t *testing.T) {
	cases := map[domainagg.ErrorCode]int{
		domainagg.CodeNotFound:          http.StatusNotFound,
		domainagg.CodeInvalidState:      http.StatusConflict,
		domainagg.CodeConflict:          http.StatusConflict,
		domainagg.CodeValidation:        http.StatusBadRequest,
		domainagg.CodeRetryable:         http.StatusServiceUnavailable,
		domainagg.CodeGenerationFailure: http.StatusInternalServerError,
		domainagg.CodeInternal:          http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := StatusFor(code); got != want {
			t.Fatalf("StatusFor(%s): want=%d got=%d", code, want, got)
		}
	}
}

func render(t *testing.T, err error, conversationID string) (int, ErrorEnvelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	DomainError(c, err, conversationID)
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return rec.Code, env
}

func TestDomainErrorClientFacing(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", domainagg.NotFound("Intake.Conversation.Get", "conversation not found: abc"))
	status, env := render(t, err, "")
	if status != http.StatusNotFound {
		t.Fatalf("status: want=404 got=%d", status)
	}
	if env.Error.Code != "not_found" || env.Error.Message != "conversation not found: abc" {
		t.Fatalf("envelope: got=%+v", env.Error)
	}
}

func TestDomainErrorHidesServerDetails(t *testing.T) {
	err := domainagg.NewError(domainagg.CodeGenerationFailure, "op", "template source returned nothing", nil)
	status, env := render(t, err, "conv-1")
	if status != http.StatusInternalServerError {
		t.Fatalf("status: want=500 got=%d", status)
	}
	if env.Error.Message != retryMessage || env.Error.ConversationID != "conv-1" || env.Error.Code != "generation_failure" {
		t.Fatalf("envelope: got=%+v", env.Error)
	}
}

func TestDomainErrorUncoded(t *testing.T) {
	status, env := render(t, errors.New("boom"), "")
	if status != http.StatusInternalServerError || env.Error.Code != "internal" {
		t.Fatalf("uncoded: got status=%d env=%+v", status, env.Error)
	}
}
