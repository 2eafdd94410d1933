package chatvolt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/chatvolt/chatvolt-mcp/pkg/protocol"
)

// Agents

func (c *Client) GetAgent(ctx context.Context, id string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/agents/"+seg(id), nil)
}

func (c *Client) ListAgents(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/agents", nil)
}

func (c *Client) CreateAgent(ctx context.Context, p protocol.AgentParams) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/agents", p)
}

func (c *Client) UpdateAgent(ctx context.Context, id string, p protocol.AgentParams) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPatch, "/agents/"+seg(id), p)
}

func (c *Client) DeleteAgent(ctx context.Context, id string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, "/agents/"+seg(id), nil)
}

// AgentQuery sends a message to an agent. The agent is addressed by path;
// the payload carries only the query fields.
func (c *Client) AgentQuery(ctx context.Context, id string, p protocol.QueryPayload) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/agents/"+seg(id)+"/query", p)
}

func (c *Client) AddAgentTool(ctx context.Context, agentID string, p protocol.AgentToolParams) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/agents/"+seg(agentID)+"/tools", p)
}

// CRM

func (c *Client) ListCrmScenarios(ctx context.Context, agentID string) (json.RawMessage, error) {
	q := url.Values{"agentId": {agentID}}
	return c.do(ctx, http.MethodGet, "/crm/scenarios?"+q.Encode(), nil)
}

func (c *Client) CreateCrmScenario(ctx context.Context, p protocol.CrmScenarioParams) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/crm/scenarios", p)
}

func (c *Client) UpdateCrmScenario(ctx context.Context, id string, p protocol.CrmScenarioUpdate) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPatch, "/crm/scenarios/"+seg(id), p)
}

func (c *Client) DeleteCrmScenario(ctx context.Context, id string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, "/crm/scenarios/"+seg(id), nil)
}

func (c *Client) ListCrmSteps(ctx context.Context, scenarioID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/crm/scenarios/"+seg(scenarioID)+"/steps", nil)
}

func (c *Client) CreateCrmStep(ctx context.Context, p protocol.CrmStepParams) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/crm/steps", p)
}

func (c *Client) UpdateCrmStep(ctx context.Context, id string, p protocol.CrmStepUpdate) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPatch, "/crm/steps/"+seg(id), p)
}

func (c *Client) DeleteCrmStep(ctx context.Context, id string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, "/crm/steps/"+seg(id), nil)
}

// Integrations

func (c *Client) SetIntegrationEnabled(ctx context.Context, id string, p protocol.IntegrationToggle) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPatch, "/integrations/"+seg(id), p)
}

// Datastores

func (c *Client) ListDatastores(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/datastores", nil)
}

func (c *Client) GetDatastore(ctx context.Context, id string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/datastores/"+seg(id), nil)
}

func (c *Client) CreateDatastore(ctx context.Context, p protocol.DatastoreParams) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/datastores", p)
}

func (c *Client) CreateDatasource(ctx context.Context, p protocol.DatasourceParams) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/datasources", p)
}
