package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/noahbkim00/executive-ai-mvp/internal/app"
	domainagg "github.com/noahbkim00/executive-ai-mvp/internal/domain/aggregates"
	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
	"github.com/noahbkim00/executive-ai-mvp/internal/mcp"
	"github.com/noahbkim00/executive-ai-mvp/internal/modules/intake/orchestrator"
)

// NewChatCmd creates the chat command.
func NewChatCmd() *cobra.Command {
	var resume string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run an intake conversation in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			var id *uuid.UUID
			if strings.TrimSpace(resume) != "" {
				parsed, err := uuid.Parse(resume)
				if err != nil {
					return writeCommandError(cmd, fmt.Errorf("invalid --resume id: %w", err))
				}
				id = &parsed
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer a.Close()

			return runChat(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), a.Services.Intake, id)
		},
	}

	cmd.Flags().StringVar(&resume, "resume", "", "continue an existing conversation id")
	return cmd
}

// runChat drives one conversation over line IO until it completes, the input
// ends, or the user types "exit".
func runChat(ctx context.Context, in io.Reader, out io.Writer, svc mcp.Intake, id *uuid.UUID) error {
	scanner := bufio.NewScanner(in)
	phase := intake.PhaseInitial

	if id != nil {
		view, err := svc.Describe(ctx, *id)
		if err != nil {
			return err
		}
		phase = view.Phase
		if view.NextQuestion != nil {
			fmt.Fprintf(out, "Resuming. Question %d of %d: %s\n", view.NextQuestion.Number, view.NextQuestion.Total, view.NextQuestion.Question)
		}
	} else {
		fmt.Fprintln(out, "Describe the executive role you are hiring for (type \"exit\" to quit).")
	}

	for {
		if phase == intake.PhaseCompleted {
			return nil
		}
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			return nil
		}

		var resp orchestrator.Response
		var err error
		if phase == intake.PhaseQuestioning && id != nil {
			resp, err = svc.ProcessAnswer(ctx, *id, line)
		} else {
			resp, err = svc.ProcessExtraction(ctx, id, line)
		}
		if err != nil {
			if cid, ok := orchestrator.ConversationIDOf(err); ok {
				id = &cid
			}
			if domainagg.IsCode(err, domainagg.CodeValidation) {
				fmt.Fprintf(out, "%s\n", err)
			} else {
				fmt.Fprintln(out, "Something went wrong. Please try again.")
			}
			continue
		}

		id = &resp.ConversationID
		phase = resp.Phase
		fmt.Fprintf(out, "\n%s\n\n", resp.ResponseContent)
		if resp.IsComplete {
			fmt.Fprintf(out, "Conversation %s saved.\n", resp.ConversationID)
		}
	}
}
