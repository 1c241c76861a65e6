package command

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
	"github.com/noahbkim00/executive-ai-mvp/internal/modules/intake/orchestrator"
)

// scriptedIntake walks one conversation with two questions.
type scriptedIntake struct {
	id       uuid.UUID
	answered int
	calls    []string
	failNext bool
}

func (s *scriptedIntake) ProcessExtraction(_ context.Context, id *uuid.UUID, msg string) (orchestrator.Response, error) {
	s.calls = append(s.calls, "extract:"+msg)
	if s.failNext {
		s.failNext = false
		return orchestrator.Response{}, &orchestrator.Error{ConversationID: s.id, Err: errors.New("model down")}
	}
	if strings.Contains(msg, "someone") {
		return orchestrator.Response{ConversationID: s.id, Phase: intake.PhaseInitial, ResponseContent: "What role?"}, nil
	}
	return orchestrator.Response{ConversationID: s.id, Phase: intake.PhaseQuestioning, ResponseContent: "Question 1 of 2: Why now?"}, nil
}

func (s *scriptedIntake) ProcessAnswer(_ context.Context, id uuid.UUID, msg string) (orchestrator.Response, error) {
	s.calls = append(s.calls, "answer:"+msg)
	s.answered++
	if s.answered == 2 {
		return orchestrator.Response{ConversationID: id, Phase: intake.PhaseCompleted, IsComplete: true, ResponseContent: "Thank you"}, nil
	}
	return orchestrator.Response{ConversationID: id, Phase: intake.PhaseQuestioning, ResponseContent: "Question 2 of 2: Budget?"}, nil
}

func (s *scriptedIntake) Describe(_ context.Context, id uuid.UUID) (orchestrator.ConversationView, error) {
	return orchestrator.ConversationView{
		ConversationID: id,
		Phase:          intake.PhaseQuestioning,
		NextQuestion:   &orchestrator.NextQuestion{Number: 2, Total: 2, Question: "Budget?"},
	}, nil
}

func TestRunChatCompletesConversation(t *testing.T) {
	svc := &scriptedIntake{id: uuid.New(), failNext: true}
	in := strings.NewReader("VP of Sales at Acme\nVP of Sales at Acme\nsomeone\n\nmarket timing\n$400k\n")
	var out bytes.Buffer
	if err := runChat(context.Background(), in, &out, svc, nil); err != nil {
		t.Fatalf("runChat: %v", err)
	}
	want := []string{
		"extract:VP of Sales at Acme",
		"extract:VP of Sales at Acme",
		"answer:someone",
		"answer:market timing",
	}
	if strings.Join(svc.calls, "|") != strings.Join(want, "|") {
		t.Fatalf("calls: want=%v got=%v", want, svc.calls)
	}
	text := out.String()
	for _, frag := range []string{"Please try again", "Question 1 of 2", "Thank you", "saved"} {
		if !strings.Contains(text, frag) {
			t.Fatalf("output missing %q:\n%s", frag, text)
		}
	}
}

func TestRunChatResumesAndExits(t *testing.T) {
	id := uuid.New()
	svc := &scriptedIntake{id: id}
	var out bytes.Buffer
	if err := runChat(context.Background(), strings.NewReader("exit\n"), &out, svc, &id); err != nil {
		t.Fatalf("runChat: %v", err)
	}
	if !strings.Contains(out.String(), "Resuming. Question 2 of 2: Budget?") || len(svc.calls) != 0 {
		t.Fatalf("resume: out=%q calls=%v", out.String(), svc.calls)
	}
}

func TestRootRegistersCommands(t *testing.T) {
	root := NewRootCmd("test")
	for _, name := range []string{"serve", "migrate", "chat", "mcp"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Fatalf("command %s not registered: %v", name, err)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Fatalf("--config flag missing")
	}
}

func TestWriteCommandErrorMarksReported(t *testing.T) {
	root := NewRootCmd("test")
	var stderr bytes.Buffer
	root.SetErr(&stderr)
	err := writeCommandError(root, errors.New("invalid config: openai.api_key (OPENAI_API_KEY) is required"))
	if !Reported(err) || Reported(errors.New("plain")) {
		t.Fatalf("Reported mismatch")
	}
	if !strings.Contains(stderr.String(), "Hint:") {
		t.Fatalf("missing hint: %q", stderr.String())
	}
}
