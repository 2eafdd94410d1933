package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/chatvolt/chatvolt-mcp/pkg/protocol"
)

const tracerName = "github.com/chatvolt/chatvolt-mcp/internal/tool"

// Call outcomes reported in CallRecord.Status.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// CallRecord describes one finished dispatch.
type CallRecord struct {
	Operation string
	Status    string
	Kind      string // error kind, empty on success
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

// Observer is notified after every dispatch. Implementations must be safe
// for concurrent use and must not block for long.
type Observer interface {
	Observe(ctx context.Context, rec CallRecord)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, rec CallRecord)

func (f ObserverFunc) Observe(ctx context.Context, rec CallRecord) { f(ctx, rec) }

// Option configures a Registry.
type Option func(*Registry)

// WithObserver adds an observer notified after each dispatch.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
}

// WithLogger sets the registry logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(r *Registry) {
		if t != nil {
			r.tracer = t
		}
	}
}

// Registry maps operation names to operations. It is built once and never
// modified, so it is safe for concurrent use without locking.
type Registry struct {
	ops       []Operation
	index     map[string]int
	observers []Observer
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewRegistry validates and indexes the operations. It fails on an empty or
// duplicate name, a missing handler, or an input schema that does not compile.
func NewRegistry(ops []Operation, opts ...Option) (*Registry, error) {
	r := &Registry{
		ops:    make([]Operation, 0, len(ops)),
		index:  make(map[string]int, len(ops)),
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, o := range opts {
		o(r)
	}
	r.logger = r.logger.With("component", "tool")

	for _, op := range ops {
		if op.Name == "" {
			return nil, fmt.Errorf("tool: operation with empty name")
		}
		if _, dup := r.index[op.Name]; dup {
			return nil, fmt.Errorf("tool: duplicate operation %q", op.Name)
		}
		if op.Call == nil {
			return nil, fmt.Errorf("tool: operation %q has no handler", op.Name)
		}
		if err := compileSchema(op.Name, op.Schema()); err != nil {
			return nil, fmt.Errorf("tool: operation %q: %w", op.Name, err)
		}
		r.index[op.Name] = len(r.ops)
		r.ops = append(r.ops, op)
	}
	return r, nil
}

func compileSchema(name string, schema map[string]any) error {
	raw, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("parse schema: %w", err)
	}
	url := name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	if _, err := c.Compile(url); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	return nil
}

// List returns the descriptors in registration order.
func (r *Registry) List() []protocol.OperationDescriptor {
	out := make([]protocol.OperationDescriptor, len(r.ops))
	for i, op := range r.ops {
		out[i] = op.Descriptor()
	}
	return out
}

// Descriptor returns the descriptor of the named operation.
func (r *Registry) Descriptor(name string) (protocol.OperationDescriptor, bool) {
	i, ok := r.index[name]
	if !ok {
		return protocol.OperationDescriptor{}, false
	}
	return r.ops[i].Descriptor(), true
}

// Has returns true if an operation with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Len returns the number of registered operations.
func (r *Registry) Len() int {
	return len(r.ops)
}

// Dispatch validates the arguments, invokes the operation and formats its
// payload. Validation failures return before any remote call is made; remote
// errors are returned unchanged.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (protocol.CallResult, error) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "tool.dispatch",
		trace.WithAttributes(attribute.String("tool.name", name)))
	defer span.End()

	result, err := r.dispatch(ctx, name, args)

	rec := CallRecord{
		Operation: name,
		Status:    StatusOK,
		StartedAt: start,
		Duration:  time.Since(start),
	}
	if err != nil {
		rec.Status = StatusError
		rec.Kind = ErrorKind(err)
		rec.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("tool.error_kind", rec.Kind))
		r.logger.Warn("dispatch failed", "operation", name, "kind", rec.Kind,
			"duration_ms", rec.Duration.Milliseconds(), "error", err)
	} else {
		r.logger.Debug("dispatch", "operation", name, "duration_ms", rec.Duration.Milliseconds())
	}
	for _, o := range r.observers {
		o.Observe(ctx, rec)
	}
	return result, err
}

func (r *Registry) dispatch(ctx context.Context, name string, raw map[string]any) (protocol.CallResult, error) {
	i, ok := r.index[name]
	if !ok {
		return protocol.CallResult{}, &UnknownOperationError{Name: name}
	}
	op := r.ops[i]

	args, err := Validate(op, raw)
	if err != nil {
		return protocol.CallResult{}, err
	}
	payload, err := op.Call(ctx, args)
	if err != nil {
		return protocol.CallResult{}, err
	}
	return Format(payload)
}

// Call is Dispatch with every failure folded into an error envelope.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) protocol.CallResult {
	result, err := r.Dispatch(ctx, name, args)
	if err != nil {
		return ErrorResult(err)
	}
	return result
}
