package response

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainagg "github.com/noahbkim00/executive-ai-mvp/internal/domain/aggregates"
)

const retryMessage = "Something went wrong while processing your request. Please try again."

// StatusFor maps an error code onto the HTTP status returned to clients.
func StatusFor(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeInvalidState, domainagg.CodeConflict:
		return http.StatusConflict
	case domainagg.CodeValidation:
		return http.StatusBadRequest
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// DomainError writes the envelope for a coded error. Server-side failures get a
// generic retry message; their details stay in the logs.
func DomainError(c *gin.Context, err error, conversationID string) {
	code := domainagg.CodeOf(err)
	if code == "" {
		code = domainagg.CodeInternal
	}
	status := StatusFor(code)
	msg := retryMessage
	if status < http.StatusInternalServerError {
		msg = clientMessage(err)
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message:        msg,
			Code:           string(code),
			ConversationID: conversationID,
		},
	})
}

func clientMessage(err error) string {
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) && strings.TrimSpace(aggErr.Message) != "" {
		return aggErr.Message
	}
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
