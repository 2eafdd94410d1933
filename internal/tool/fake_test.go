package tool

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/chatvolt/chatvolt-mcp/pkg/protocol"
)

// remoteCall is one recorded invocation of the fake service.
type remoteCall struct {
	Method string
	ID     string
	Params any
}

// fakeService records every call and answers with resp or err.
type fakeService struct {
	mu    sync.Mutex
	calls []remoteCall
	resp  json.RawMessage
	err   error
}

func (f *fakeService) record(method, id string, params any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, remoteCall{Method: method, ID: id, Params: params})
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return json.RawMessage(`{"id":"x"}`), nil
}

func (f *fakeService) Calls() []remoteCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]remoteCall(nil), f.calls...)
}

func (f *fakeService) GetAgent(_ context.Context, id string) (json.RawMessage, error) {
	return f.record("GetAgent", id, nil)
}

func (f *fakeService) ListAgents(context.Context) (json.RawMessage, error) {
	return f.record("ListAgents", "", nil)
}

func (f *fakeService) CreateAgent(_ context.Context, p protocol.AgentParams) (json.RawMessage, error) {
	return f.record("CreateAgent", "", p)
}

func (f *fakeService) UpdateAgent(_ context.Context, id string, p protocol.AgentParams) (json.RawMessage, error) {
	return f.record("UpdateAgent", id, p)
}

func (f *fakeService) DeleteAgent(_ context.Context, id string) (json.RawMessage, error) {
	return f.record("DeleteAgent", id, nil)
}

func (f *fakeService) AgentQuery(_ context.Context, id string, p protocol.QueryPayload) (json.RawMessage, error) {
	return f.record("AgentQuery", id, p)
}

func (f *fakeService) AddAgentTool(_ context.Context, agentID string, p protocol.AgentToolParams) (json.RawMessage, error) {
	return f.record("AddAgentTool", agentID, p)
}

func (f *fakeService) ListCrmScenarios(_ context.Context, agentID string) (json.RawMessage, error) {
	return f.record("ListCrmScenarios", agentID, nil)
}

func (f *fakeService) CreateCrmScenario(_ context.Context, p protocol.CrmScenarioParams) (json.RawMessage, error) {
	return f.record("CreateCrmScenario", "", p)
}

func (f *fakeService) UpdateCrmScenario(_ context.Context, id string, p protocol.CrmScenarioUpdate) (json.RawMessage, error) {
	return f.record("UpdateCrmScenario", id, p)
}

func (f *fakeService) DeleteCrmScenario(_ context.Context, id string) (json.RawMessage, error) {
	return f.record("DeleteCrmScenario", id, nil)
}

func (f *fakeService) ListCrmSteps(_ context.Context, scenarioID string) (json.RawMessage, error) {
	return f.record("ListCrmSteps", scenarioID, nil)
}

func (f *fakeService) CreateCrmStep(_ context.Context, p protocol.CrmStepParams) (json.RawMessage, error) {
	return f.record("CreateCrmStep", "", p)
}

func (f *fakeService) UpdateCrmStep(_ context.Context, id string, p protocol.CrmStepUpdate) (json.RawMessage, error) {
	return f.record("UpdateCrmStep", id, p)
}

func (f *fakeService) DeleteCrmStep(_ context.Context, id string) (json.RawMessage, error) {
	return f.record("DeleteCrmStep", id, nil)
}

func (f *fakeService) SetIntegrationEnabled(_ context.Context, id string, p protocol.IntegrationToggle) (json.RawMessage, error) {
	return f.record("SetIntegrationEnabled", id, p)
}

func (f *fakeService) ListDatastores(context.Context) (json.RawMessage, error) {
	return f.record("ListDatastores", "", nil)
}

func (f *fakeService) GetDatastore(_ context.Context, id string) (json.RawMessage, error) {
	return f.record("GetDatastore", id, nil)
}

func (f *fakeService) CreateDatastore(_ context.Context, p protocol.DatastoreParams) (json.RawMessage, error) {
	return f.record("CreateDatastore", "", p)
}

func (f *fakeService) CreateDatasource(_ context.Context, p protocol.DatasourceParams) (json.RawMessage, error) {
	return f.record("CreateDatasource", "", p)
}

type fakeDocs struct {
	pages []string
}

func (d *fakeDocs) Fetch(_ context.Context, page string) (protocol.DocumentationPage, error) {
	d.pages = append(d.pages, page)
	return protocol.DocumentationPage{URL: "https://docs.example.com/" + page, Title: "Docs", Words: 1, Content: "docs"}, nil
}

// wire marshals a recorded parameter object the way the client would send it.
func wire(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
