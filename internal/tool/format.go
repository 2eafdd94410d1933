package tool

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/chatvolt/chatvolt-mcp/pkg/protocol"
)

// Format renders a successful payload as a single indented JSON text block.
// Raw JSON is re-indented in place so the remote key order is kept.
func Format(payload any) (protocol.CallResult, error) {
	var text []byte
	switch v := payload.(type) {
	case json.RawMessage:
		var buf bytes.Buffer
		if len(bytes.TrimSpace(v)) == 0 {
			buf.WriteString("null")
		} else if err := json.Indent(&buf, v, "", "  "); err != nil {
			return protocol.CallResult{}, fmt.Errorf("tool: format: %w", err)
		}
		text = buf.Bytes()
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return protocol.CallResult{}, fmt.Errorf("tool: format: %w", err)
		}
		text = b
	}
	return protocol.NewTextResult(string(text), false), nil
}

// ErrorResult wraps an error message in the error envelope.
func ErrorResult(err error) protocol.CallResult {
	return protocol.NewTextResult(err.Error(), true)
}
