package bus

import (
	"context"
	"sync"

	"github.com/noahbkim00/executive-ai-mvp/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, ev realtime.ConversationEvent) error
	StartForwarder(ctx context.Context, onEvent func(ev realtime.ConversationEvent)) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, realtime.ConversationEvent) error { return nil }
func (Noop) StartForwarder(context.Context, func(realtime.ConversationEvent)) error {
	return nil
}
func (Noop) Close() error { return nil }

// Memory delivers events synchronously to in-process forwarders and keeps a copy of each.
type Memory struct {
	mu        sync.Mutex
	events    []realtime.ConversationEvent
	listeners []func(realtime.ConversationEvent)
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Publish(_ context.Context, ev realtime.ConversationEvent) error {
	m.mu.Lock()
	m.events = append(m.events, ev)
	listeners := append([]func(realtime.ConversationEvent){}, m.listeners...)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
	return nil
}

func (m *Memory) StartForwarder(_ context.Context, onEvent func(realtime.ConversationEvent)) error {
	if onEvent == nil {
		return errNoCallback
	}
	m.mu.Lock()
	m.listeners = append(m.listeners, onEvent)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }

// Events returns a copy of everything published so far.
func (m *Memory) Events() []realtime.ConversationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]realtime.ConversationEvent(nil), m.events...)
}
