package protocol

// Parameter objects sent to the Chatvolt API. Optional fields are pointers
// (or nil maps/slices) and are omitted from the wire payload when absent.

// DatasourceTypeFile is the only datasource type created through this server.
const DatasourceTypeFile = "file"

// Agent tool types attached through AddAgentTool.
const (
	AgentToolHTTP             = "http"
	AgentToolDatastore        = "datastore"
	AgentToolDelayedResponses = "delayed_responses"
	AgentToolRequestHuman     = "request_human"
	AgentToolMarkAsResolved   = "mark_as_resolved"
	AgentToolFollowUpMessages = "follow_up_messages"
)

// AgentParams creates or updates an agent.
type AgentParams struct {
	Name         string  `json:"name"`
	ModelName    string  `json:"modelName"`
	Description  *string `json:"description,omitempty"`
	SystemPrompt *string `json:"systemPrompt,omitempty"`
}

// QueryPayload is the body of an agent query. The agent ID travels separately.
type QueryPayload struct {
	Query          string  `json:"query"`
	ConversationID *string `json:"conversationId,omitempty"`
	VisitorID      *string `json:"visitorId,omitempty"`
}

// DatastoreParams creates a datastore.
type DatastoreParams struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// DatasourceConfig carries the content of a file datasource.
type DatasourceConfig struct {
	Text string `json:"text"`
}

// DatasourceParams creates a datasource inside a datastore.
type DatasourceParams struct {
	DatastoreID string           `json:"datastoreId"`
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	Config      DatasourceConfig `json:"config"`
}

// CrmScenarioParams creates a CRM scenario.
type CrmScenarioParams struct {
	AgentID     string  `json:"agentId"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// CrmScenarioUpdate updates a CRM scenario.
type CrmScenarioUpdate struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// CrmStepParams creates a step inside a CRM scenario.
type CrmStepParams struct {
	ScenarioID  string   `json:"scenarioId"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Order       *float64 `json:"order,omitempty"`
}

// CrmStepUpdate updates a CRM step.
type CrmStepUpdate struct {
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Order       *float64 `json:"order,omitempty"`
}

// IntegrationToggle enables or disables an agent integration.
type IntegrationToggle struct {
	Enabled bool `json:"enabled"`
}

// AgentToolParams attaches a tool to an agent.
type AgentToolParams struct {
	Type        string `json:"type"`
	DatastoreID string `json:"datastoreId,omitempty"`
	Config      any    `json:"config,omitempty"`
}

// HTTPToolConfig configures an HTTP tool.
type HTTPToolConfig struct {
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	URL             string         `json:"url"`
	Method          string         `json:"method"`
	Headers         map[string]any `json:"headers,omitempty"`
	Body            map[string]any `json:"body,omitempty"`
	QueryParameters map[string]any `json:"queryParameters,omitempty"`
}

// RequestHumanConfig configures the request-human tool.
type RequestHumanConfig struct {
	Description *string `json:"description,omitempty"`
}

// DelayedResponsesConfig configures the delayed-responses tool.
type DelayedResponsesConfig struct {
	DelaySeconds *float64 `json:"delaySeconds,omitempty"`
}

// FollowUpMessagesConfig configures the follow-up-messages tool.
type FollowUpMessagesConfig struct {
	Messages      []string `json:"messages,omitempty"`
	MaxSends      *float64 `json:"maxSends,omitempty"`
	IntervalHours *float64 `json:"intervalHours,omitempty"`
}

// DocumentationPage is a fetched and simplified documentation page.
type DocumentationPage struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Words   int    `json:"words"`
	Content string `json:"content"`
}
