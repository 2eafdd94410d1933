package tool

import (
	"context"
	"encoding/json"

	"github.com/chatvolt/chatvolt-mcp/pkg/protocol"
)

// Service is the remote Chatvolt API as the operations see it. Every method
// returns the remote object untouched.
type Service interface {
	GetAgent(ctx context.Context, id string) (json.RawMessage, error)
	ListAgents(ctx context.Context) (json.RawMessage, error)
	CreateAgent(ctx context.Context, p protocol.AgentParams) (json.RawMessage, error)
	UpdateAgent(ctx context.Context, id string, p protocol.AgentParams) (json.RawMessage, error)
	DeleteAgent(ctx context.Context, id string) (json.RawMessage, error)
	AgentQuery(ctx context.Context, id string, p protocol.QueryPayload) (json.RawMessage, error)
	AddAgentTool(ctx context.Context, agentID string, p protocol.AgentToolParams) (json.RawMessage, error)

	ListCrmScenarios(ctx context.Context, agentID string) (json.RawMessage, error)
	CreateCrmScenario(ctx context.Context, p protocol.CrmScenarioParams) (json.RawMessage, error)
	UpdateCrmScenario(ctx context.Context, id string, p protocol.CrmScenarioUpdate) (json.RawMessage, error)
	DeleteCrmScenario(ctx context.Context, id string) (json.RawMessage, error)
	ListCrmSteps(ctx context.Context, scenarioID string) (json.RawMessage, error)
	CreateCrmStep(ctx context.Context, p protocol.CrmStepParams) (json.RawMessage, error)
	UpdateCrmStep(ctx context.Context, id string, p protocol.CrmStepUpdate) (json.RawMessage, error)
	DeleteCrmStep(ctx context.Context, id string) (json.RawMessage, error)

	SetIntegrationEnabled(ctx context.Context, id string, p protocol.IntegrationToggle) (json.RawMessage, error)

	ListDatastores(ctx context.Context) (json.RawMessage, error)
	GetDatastore(ctx context.Context, id string) (json.RawMessage, error)
	CreateDatastore(ctx context.Context, p protocol.DatastoreParams) (json.RawMessage, error)
	CreateDatasource(ctx context.Context, p protocol.DatasourceParams) (json.RawMessage, error)
}

// DocsFetcher loads a page of the Chatvolt documentation.
type DocsFetcher interface {
	Fetch(ctx context.Context, page string) (protocol.DocumentationPage, error)
}

// Operations returns every Chatvolt operation in advertising order.
func Operations(svc Service, docs DocsFetcher) []Operation {
	return []Operation{
		addFollowUpMessagesTool(svc),
		addMarkAsResolvedTool(svc),
		addRequestHumanTool(svc),
		addDelayedResponsesTool(svc),
		addDatastoreTool(svc),
		addHTTPTool(svc),
		getAgent(svc),
		createAgent(svc),
		listAgents(svc),
		listCrmScenarios(svc),
		createCrmScenario(svc),
		updateCrmScenario(svc),
		deleteCrmScenario(svc),
		listCrmSteps(svc),
		createCrmStep(svc),
		updateCrmStep(svc),
		deleteCrmStep(svc),
		enableDisableAgentIntegration(svc),
		updateAgent(svc),
		deleteAgent(svc),
		agentQuery(svc),
		listDatastores(svc),
		getDatastore(svc),
		createDatasource(svc),
		createDatastore(svc),
		getDocumentation(docs),
	}
}

// Filter keeps the operations the filter allows, preserving order.
func Filter(ops []Operation, f protocol.ToolFilter) []Operation {
	out := make([]Operation, 0, len(ops))
	for _, op := range ops {
		if f.Allowed(op.Name) {
			out = append(out, op)
		}
	}
	return out
}

func required(name, desc string) Param {
	return Param{Name: name, Kind: KindString, Description: desc, Required: true}
}

func optional(name, desc string) Param {
	return Param{Name: name, Kind: KindString, Description: desc}
}

func optionalNumber(name, desc string) Param {
	return Param{Name: name, Kind: KindNumber, Description: desc}
}

func raw(p json.RawMessage, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}
