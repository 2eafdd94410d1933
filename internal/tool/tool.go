package tool

import (
	"context"

	"github.com/chatvolt/chatvolt-mcp/pkg/protocol"
)

// Kind is the primitive type a parameter is normalized to.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
)

// Param declares one argument of an operation. The input schema and the
// argument contract are both derived from the parameter list.
type Param struct {
	Name        string
	Kind        Kind
	Description string
	Required    bool
	Default     any      // used when an optional argument is absent; nil means absent
	Enum        []string // accepted values for string parameters
	Items       Kind     // element kind for array parameters
}

// Handler performs the remote call for normalized arguments. The returned
// payload is handed to Format.
type Handler func(ctx context.Context, args Args) (any, error)

// Operation is a named callable exposed to the host.
type Operation struct {
	Name        string
	Description string
	Params      []Param
	Call        Handler

	// CheckEach reports only the first missing required argument instead of
	// the full required list.
	CheckEach bool
}

// Required returns the names of the required parameters in declaration order.
func (op Operation) Required() []string {
	var names []string
	for _, p := range op.Params {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// Schema returns the JSON Schema for the operation's arguments.
func (op Operation) Schema() map[string]any {
	props := make(map[string]any, len(op.Params))
	for _, p := range op.Params {
		props[p.Name] = p.schema()
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if req := op.Required(); len(req) > 0 {
		schema["required"] = req
	}
	return schema
}

// Descriptor returns the host-facing description of the operation.
func (op Operation) Descriptor() protocol.OperationDescriptor {
	return protocol.OperationDescriptor{
		Name:        op.Name,
		Description: op.Description,
		InputSchema: op.Schema(),
	}
}

func (p Param) schema() map[string]any {
	s := map[string]any{"type": string(p.Kind)}
	if p.Description != "" {
		s["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		s["enum"] = p.Enum
	}
	if p.Kind == KindArray && p.Items != "" {
		s["items"] = map[string]any{"type": string(p.Items)}
	}
	if p.Default != nil {
		s["default"] = p.Default
	}
	return s
}
