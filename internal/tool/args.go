package tool

import "maps"

// Args holds normalized arguments in declaration order. An absent optional
// argument with no default is stored as nil.
type Args struct {
	names  []string
	values map[string]any
}

// Validate normalizes raw arguments against the operation's parameter list.
// Required parameters are checked first, so a call missing any of them fails
// before coercion is attempted. The error names the operation's full required
// list, or only the first missing argument when the operation sets CheckEach.
// Keys not declared by the operation are ignored.
func Validate(op Operation, raw map[string]any) (Args, error) {
	var missing []string
	for _, p := range op.Params {
		if p.Required && absent(raw, p.Name) {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 {
		reported := op.Required()
		if op.CheckEach {
			missing = missing[:1]
			reported = missing
		}
		return Args{}, &MissingArgumentError{
			Operation: op.Name,
			Required:  reported,
			Missing:   missing,
		}
	}

	args := Args{
		names:  make([]string, 0, len(op.Params)),
		values: make(map[string]any, len(op.Params)),
	}
	for _, p := range op.Params {
		args.names = append(args.names, p.Name)
		if absent(raw, p.Name) {
			args.values[p.Name] = p.Default
			continue
		}
		v, err := coerce(p, raw[p.Name])
		if err != nil {
			return Args{}, &InvalidArgumentError{Operation: op.Name, Argument: p.Name, Reason: err.Error()}
		}
		args.values[p.Name] = v
	}
	return args, nil
}

func absent(raw map[string]any, name string) bool {
	v, ok := raw[name]
	return !ok || v == nil
}

// Names returns the argument names in declaration order.
func (a Args) Names() []string {
	return append([]string(nil), a.names...)
}

// Map returns a copy of the normalized values.
func (a Args) Map() map[string]any {
	return maps.Clone(a.values)
}

// Get returns the value and whether it is present.
func (a Args) Get(name string) (any, bool) {
	v, ok := a.values[name]
	return v, ok && v != nil
}

// String returns a string argument, or "" when absent.
func (a Args) String(name string) string {
	s, _ := a.values[name].(string)
	return s
}

// OptString returns a string argument, or nil when absent.
func (a Args) OptString(name string) *string {
	s, ok := a.values[name].(string)
	if !ok {
		return nil
	}
	return &s
}

// OptFloat returns a number argument, or nil when absent.
func (a Args) OptFloat(name string) *float64 {
	f, ok := a.values[name].(float64)
	if !ok {
		return nil
	}
	return &f
}

// Bool returns a boolean argument, or false when absent.
func (a Args) Bool(name string) bool {
	b, _ := a.values[name].(bool)
	return b
}

// Object returns an object argument, or nil when absent.
func (a Args) Object(name string) map[string]any {
	m, _ := a.values[name].(map[string]any)
	return m
}

// Strings returns a string array argument, or nil when absent.
func (a Args) Strings(name string) []string {
	switch v := a.values[name].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
