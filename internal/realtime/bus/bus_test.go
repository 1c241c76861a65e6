package bus

import (
	"context"
	"testing"
	"time"

	"github.com/noahbkim00/executive-ai-mvp/internal/domain/intake"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/logger"
	"github.com/noahbkim00/executive-ai-mvp/internal/realtime"
)

func TestMemoryForwardsInOrder(t *testing.T) {
	m := NewMemory()
	var got []realtime.EventType
	if err := m.StartForwarder(context.Background(), func(ev realtime.ConversationEvent) {
		got = append(got, ev.Type)
	}); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	conv := intake.NewConversation("x", time.Unix(0, 0))
	for _, typ := range []realtime.EventType{realtime.EventConversationCreated, realtime.EventQuestioningStarted} {
		if err := m.Publish(context.Background(), realtime.EventFor(typ, conv, time.Unix(1, 0))); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	if len(got) != 2 || got[1] != realtime.EventQuestioningStarted {
		t.Fatalf("forwarded: got=%v", got)
	}
	if evs := m.Events(); len(evs) != 2 || evs[0].ConversationID != conv.ID {
		t.Fatalf("recorded: got=%+v", evs)
	}
}

func TestMemoryRequiresCallback(t *testing.T) {
	if err := NewMemory().StartForwarder(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil callback")
	}
}

func TestNewRedisBusRequiresAddr(t *testing.T) {
	if _, err := NewRedisBus(logger.Nop(), RedisConfig{}); err == nil {
		t.Fatalf("expected missing addr error")
	}
	if _, err := NewRedisBus(nil, RedisConfig{Addr: "localhost:6379"}); err == nil {
		t.Fatalf("expected missing logger error")
	}
}
