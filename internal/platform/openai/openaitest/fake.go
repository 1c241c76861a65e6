// Package openaitest provides a scriptable in-memory openai.Client.
package openaitest

import (
	"context"
	"errors"
	"sync"

	"github.com/noahbkim00/executive-ai-mvp/internal/platform/openai"
)

// Call records one request seen by the fake.
type Call struct {
	System     string
	User       string
	SchemaName string
}

// Fake routes JSON calls by schema name and text calls through TextFn.
// Unscripted schemas fail with ErrUnscripted.
type Fake struct {
	mu sync.Mutex

	JSON   map[string]func(system, user string) (map[string]any, error)
	TextFn func(system, user string) (string, error)

	JSONCalls []Call
	TextCalls []Call
}

var ErrUnscripted = errors.New("openaitest: unscripted call")

var _ openai.Client = (*Fake)(nil)

func (f *Fake) GenerateJSON(ctx context.Context, system, user, schemaName string, _ map[string]any) (map[string]any, error) {
	f.mu.Lock()
	f.JSONCalls = append(f.JSONCalls, Call{System: system, User: user, SchemaName: schemaName})
	fn := f.JSON[schemaName]
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, ErrUnscripted
	}
	return fn(system, user)
}

func (f *Fake) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.mu.Lock()
	f.TextCalls = append(f.TextCalls, Call{System: system, User: user})
	fn := f.TextFn
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if fn == nil {
		return "", ErrUnscripted
	}
	return fn(system, user)
}

// CountJSON returns how many JSON calls used schemaName.
func (f *Fake) CountJSON(schemaName string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.JSONCalls {
		if c.SchemaName == schemaName {
			n++
		}
	}
	return n
}

func (f *Fake) CountText() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.TextCalls)
}

// Returns is a JSON handler that always yields obj.
func Returns(obj map[string]any) func(string, string) (map[string]any, error) {
	return func(string, string) (map[string]any, error) { return obj, nil }
}

// Fails is a JSON handler that always yields err.
func Fails(err error) func(string, string) (map[string]any, error) {
	return func(string, string) (map[string]any, error) { return nil, err }
}
