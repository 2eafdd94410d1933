package protocol

// ContentTypeText is the only content block kind produced by this server.
const ContentTypeText = "text"

// OperationDescriptor describes a callable operation to the protocol host.
type OperationDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ContentBlock is a single part of a call result.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallResult is the envelope returned to the host for every dispatched call.
type CallResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// NewTextResult creates a single-block result.
func NewTextResult(text string, isError bool) CallResult {
	return CallResult{
		Content: []ContentBlock{{Type: ContentTypeText, Text: text}},
		IsError: isError,
	}
}

// Text returns the text of the first content block, or "" if there is none.
func (r CallResult) Text() string {
	if len(r.Content) == 0 {
		return ""
	}
	return r.Content[0].Text
}
