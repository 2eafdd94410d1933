package tool

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

func coerce(p Param, v any) (any, error) {
	switch p.Kind {
	case KindString:
		s, err := toString(v)
		if err != nil {
			return nil, err
		}
		if len(p.Enum) > 0 && !slices.Contains(p.Enum, s) {
			return nil, fmt.Errorf("must be one of %s", strings.Join(p.Enum, ", "))
		}
		return s, nil
	case KindNumber:
		return toNumber(v)
	case KindBoolean:
		return toBool(v)
	case KindObject:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, errors.New("must be an object")
		}
		return m, nil
	case KindArray:
		return toArray(p.Items, v)
	default:
		return v, nil
	}
}

// toString renders any JSON value as a string: numbers as formatNumber does,
// booleans as true/false, composites as compact JSON.
func toString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case float64:
		return formatNumber(x, 64), nil
	case float32:
		return formatNumber(float64(x), 32), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", fmt.Errorf("cannot be converted to a string: %v", err)
		}
		return string(b), nil
	}
}

// formatNumber writes the shortest representation that round-trips: plain
// decimal for magnitudes in [1e-6, 1e21), exponent form (1e+21, 1.5e-7)
// outside it.
func formatNumber(x float64, bitSize int) string {
	if abs := math.Abs(x); abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		s := strconv.FormatFloat(x, 'e', -1, bitSize)
		mant, exp, _ := strings.Cut(s, "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(x, 'f', -1, bitSize)
}

func toNumber(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, errors.New("must be a number")
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, errors.New("must be a number")
		}
		return f, nil
	default:
		return 0, errors.New("must be a number")
	}
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, errors.New("must be a boolean")
}

func toArray(items Kind, v any) (any, error) {
	var elems []any
	switch x := v.(type) {
	case []any:
		elems = x
	case []string:
		elems = make([]any, len(x))
		for i, s := range x {
			elems[i] = s
		}
	default:
		return nil, errors.New("must be an array")
	}
	if items != KindString {
		return elems, nil
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if e == nil {
			continue
		}
		s, err := toString(e)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
