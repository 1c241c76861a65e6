package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"

	domainagg "github.com/noahbkim00/executive-ai-mvp/internal/domain/aggregates"
	"github.com/noahbkim00/executive-ai-mvp/internal/modules/intake/orchestrator"
)

// Intake is the orchestrator surface exposed as tools.
type Intake interface {
	ProcessExtraction(ctx context.Context, conversationID *uuid.UUID, message string) (orchestrator.Response, error)
	ProcessAnswer(ctx context.Context, conversationID uuid.UUID, message string) (orchestrator.Response, error)
	Describe(ctx context.Context, conversationID uuid.UUID) (orchestrator.ConversationView, error)
}

type extractArgs struct {
	ConversationID string `json:"conversation_id,omitempty" jsonschema:"Existing conversation id. Omit to start a new intake."`
	Message        string `json:"message" jsonschema:"What the hiring manager said, e.g. 'We need a VP of Engineering at Acme.'"`
}

type answerArgs struct {
	ConversationID string `json:"conversation_id" jsonschema:"Conversation id returned by intake_extract."`
	Message        string `json:"message" jsonschema:"Answer to the current question."`
}

type statusArgs struct {
	ConversationID string `json:"conversation_id" jsonschema:"Conversation id to inspect."`
}

// RegisterTools registers the intake tools on server.
func RegisterTools(server *mcp.Server, intake Intake) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "intake_extract",
		Description: "Start or continue an executive search intake. Extracts the role and company, researches the company and returns the first clarifying question.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args extractArgs) (*mcp.CallToolResult, any, error) {
		return handleExtract(ctx, intake, args), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "intake_answer",
		Description: "Answer the current intake question. Returns the next question or the completion summary.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args answerArgs) (*mcp.CallToolResult, any, error) {
		return handleAnswer(ctx, intake, args), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "intake_status",
		Description: "Show an intake conversation: phase, progress, questions and answers so far.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args statusArgs) (*mcp.CallToolResult, any, error) {
		return handleStatus(ctx, intake, args), nil, nil
	})
}

func handleExtract(ctx context.Context, intake Intake, args extractArgs) *mcp.CallToolResult {
	if strings.TrimSpace(args.Message) == "" {
		return toolError("Error: message cannot be empty")
	}
	var id *uuid.UUID
	if strings.TrimSpace(args.ConversationID) != "" {
		parsed, err := parseID(args.ConversationID)
		if err != nil {
			return toolError(err.Error())
		}
		id = &parsed
	}
	resp, err := intake.ProcessExtraction(ctx, id, args.Message)
	if err != nil {
		return failure(err)
	}
	return jsonResult(resp)
}

func handleAnswer(ctx context.Context, intake Intake, args answerArgs) *mcp.CallToolResult {
	id, err := parseID(args.ConversationID)
	if err != nil {
		return toolError(err.Error())
	}
	if strings.TrimSpace(args.Message) == "" {
		return toolError("Error: message cannot be empty")
	}
	resp, err := intake.ProcessAnswer(ctx, id, args.Message)
	if err != nil {
		return failure(err)
	}
	return jsonResult(resp)
}

func handleStatus(ctx context.Context, intake Intake, args statusArgs) *mcp.CallToolResult {
	id, err := parseID(args.ConversationID)
	if err != nil {
		return toolError(err.Error())
	}
	view, err := intake.Describe(ctx, id)
	if err != nil {
		return failure(err)
	}
	return jsonResult(view)
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("Error: invalid conversation_id %q", raw)
	}
	return id, nil
}

func failure(err error) *mcp.CallToolResult {
	code := domainagg.CodeOf(err)
	if code == "" {
		code = domainagg.CodeInternal
	}
	msg := fmt.Sprintf("Error (%s): %s", code, err.Error())
	if id, ok := orchestrator.ConversationIDOf(err); ok {
		msg += fmt.Sprintf("\nconversation_id: %s (safe to retry)", id)
	}
	return toolError(msg)
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(fmt.Sprintf("Error: encode result: %v", err))
	}
	return toolResult(string(raw), false)
}

func toolResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}

func toolError(text string) *mcp.CallToolResult {
	return toolResult(text, true)
}
