// Package completion is the typed boundary in front of the language model.
//
// Every call returns a Result: the decoded value, a schema mismatch carrying the raw
// model output, or a dependency failure carrying the cause. Callers never see an
// untyped map.
package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noahbkim00/executive-ai-mvp/internal/observability"
	"github.com/noahbkim00/executive-ai-mvp/internal/platform/openai"
	"github.com/noahbkim00/executive-ai-mvp/internal/platform/promptstyle"
)

// Profile is one temperature/timeout setting, e.g. extraction or generation.
type Profile struct {
	Name        string
	Temperature float64
	Timeout     time.Duration
}

// Model binds a client to a profile.
type Model struct {
	Client  openai.Client
	Profile Profile
}

func (m Model) client() openai.Client {
	return openai.WithTemperature(m.Client, m.Profile.Temperature)
}

func (m Model) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.Profile.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.Profile.Timeout)
}

type Kind string

const (
	KindSuccess           Kind = "success"
	KindSchemaMismatch    Kind = "schema_mismatch"
	KindDependencyFailure Kind = "dependency_failure"
)

// Result is the outcome of one model call.
type Result[T any] struct {
	Kind  Kind
	Value T
	// Raw is the model output that failed to match the schema.
	Raw   string
	Cause error
}

func (r Result[T]) OK() bool { return r.Kind == KindSuccess }

// Err returns nil on success and a descriptive error otherwise.
func (r Result[T]) Err() error {
	switch r.Kind {
	case KindSuccess:
		return nil
	case KindSchemaMismatch:
		return &SchemaMismatchError{Raw: r.Raw, Cause: r.Cause}
	default:
		if r.Cause == nil {
			return errors.New("completion: dependency failure")
		}
		return fmt.Errorf("completion: dependency failure: %w", r.Cause)
	}
}

type SchemaMismatchError struct {
	Raw   string
	Cause error
}

func (e *SchemaMismatchError) Error() string {
	if e.Cause == nil {
		return "completion: schema mismatch"
	}
	return "completion: schema mismatch: " + e.Cause.Error()
}

func (e *SchemaMismatchError) Unwrap() error { return e.Cause }

// Validator is implemented by outputs with checks beyond their JSON schema.
type Validator interface {
	Validate() error
}

type schemaEntry struct {
	wire     map[string]any
	resolved *jsonschema.Resolved
}

var schemaCache sync.Map // reflect.Type -> *schemaEntry

func schemaFor[T any]() (*schemaEntry, error) {
	key := reflect.TypeFor[T]()
	if v, ok := schemaCache.Load(key); ok {
		return v.(*schemaEntry), nil
	}
	s, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, fmt.Errorf("infer schema for %s: %w", key, err)
	}
	resolved, err := s.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve schema for %s: %w", key, err)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var wire map[string]any
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	entry := &schemaEntry{wire: wire, resolved: resolved}
	actual, _ := schemaCache.LoadOrStore(key, entry)
	return actual.(*schemaEntry), nil
}

// Structured asks for a JSON object shaped like T, validates it against T's schema and decodes it.
func Structured[T any](ctx context.Context, m Model, schemaName, system, user string) Result[T] {
	var out Result[T]
	ctx, span := observability.StartSpan(ctx, "completion.structured",
		attribute.String("completion.profile", m.Profile.Name),
		attribute.String("completion.schema", schemaName),
	)
	defer func() {
		span.SetAttributes(attribute.String("completion.result", string(out.Kind)))
		observability.EndSpan(span, out.Err())
	}()

	if m.Client == nil {
		out = Result[T]{Kind: KindDependencyFailure, Cause: errors.New("completion: no client configured")}
		return out
	}
	entry, err := schemaFor[T]()
	if err != nil {
		out = Result[T]{Kind: KindDependencyFailure, Cause: err}
		return out
	}

	callCtx, cancel := m.withTimeout(ctx)
	defer cancel()
	obj, err := m.client().GenerateJSON(callCtx, promptstyle.ApplySystem(system, promptstyle.ModeJSON), user, schemaName, entry.wire)
	if err != nil {
		var oe *openai.OutputError
		if errors.As(err, &oe) {
			out = Result[T]{Kind: KindSchemaMismatch, Raw: oe.Raw, Cause: err}
			return out
		}
		out = Result[T]{Kind: KindDependencyFailure, Cause: err}
		return out
	}
	out = decode[T](entry, obj)
	return out
}

func decode[T any](entry *schemaEntry, obj map[string]any) Result[T] {
	raw, err := json.Marshal(obj)
	if err != nil {
		return Result[T]{Kind: KindSchemaMismatch, Cause: err}
	}
	if err := entry.resolved.Validate(obj); err != nil {
		return Result[T]{Kind: KindSchemaMismatch, Raw: string(raw), Cause: err}
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return Result[T]{Kind: KindSchemaMismatch, Raw: string(raw), Cause: err}
	}
	if val, ok := any(&v).(Validator); ok {
		if err := val.Validate(); err != nil {
			return Result[T]{Kind: KindSchemaMismatch, Raw: string(raw), Cause: err}
		}
	}
	return Result[T]{Kind: KindSuccess, Value: v}
}

// Text asks for a plain-text answer.
func Text(ctx context.Context, m Model, system, user string) Result[string] {
	var out Result[string]
	ctx, span := observability.StartSpan(ctx, "completion.text",
		attribute.String("completion.profile", m.Profile.Name),
	)
	defer func() {
		span.SetAttributes(attribute.String("completion.result", string(out.Kind)))
		observability.EndSpan(span, out.Err())
	}()

	if m.Client == nil {
		out = Result[string]{Kind: KindDependencyFailure, Cause: errors.New("completion: no client configured")}
		return out
	}
	callCtx, cancel := m.withTimeout(ctx)
	defer cancel()
	text, err := m.client().GenerateText(callCtx, promptstyle.ApplySystem(system, promptstyle.ModeText), user)
	if err != nil {
		var oe *openai.OutputError
		if errors.As(err, &oe) {
			out = Result[string]{Kind: KindSchemaMismatch, Raw: oe.Raw, Cause: err}
			return out
		}
		out = Result[string]{Kind: KindDependencyFailure, Cause: err}
		return out
	}
	out = Result[string]{Kind: KindSuccess, Value: strings.TrimSpace(text)}
	return out
}
