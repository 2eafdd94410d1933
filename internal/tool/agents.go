package tool

import (
	"context"

	"github.com/chatvolt/chatvolt-mcp/pkg/protocol"
)

func getAgent(svc Service) Operation {
	return Operation{
		Name:        "get_agent",
		Description: "Retrieves a Chatvolt agent by its ID.",
		Params: []Param{
			required("id", "The ID of the agent to retrieve."),
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.GetAgent(ctx, a.String("id")))
		},
	}
}

func createAgent(svc Service) Operation {
	return Operation{
		Name:        "create_agent",
		Description: "Creates a new Chatvolt agent.",
		Params: []Param{
			required("name", "The name of the agent."),
			required("modelName", "The model the agent uses, for example gpt_4o."),
			optional("description", "A description of the agent."),
			optional("systemPrompt", "The system prompt of the agent."),
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.CreateAgent(ctx, agentParams(a)))
		},
	}
}

func listAgents(svc Service) Operation {
	return Operation{
		Name:        "list_agents",
		Description: "Lists every agent in the organization.",
		Call: func(ctx context.Context, _ Args) (any, error) {
			return raw(svc.ListAgents(ctx))
		},
	}
}

func updateAgent(svc Service) Operation {
	return Operation{
		Name:        "update_agent",
		Description: "Updates an existing agent.",
		Params: []Param{
			required("id", "The ID of the agent to update."),
			required("name", "The new name of the agent."),
			required("modelName", "The model the agent uses."),
			optional("description", "The new description."),
			optional("systemPrompt", "The new system prompt."),
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.UpdateAgent(ctx, a.String("id"), agentParams(a)))
		},
	}
}

func deleteAgent(svc Service) Operation {
	return Operation{
		Name:        "delete_agent",
		Description: "Deletes an agent by its ID.",
		Params: []Param{
			required("id", "The ID of the agent to delete."),
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.DeleteAgent(ctx, a.String("id")))
		},
	}
}

func agentQuery(svc Service) Operation {
	return Operation{
		Name:        "agent_query",
		Description: "Sends a query to an agent and returns its answer.",
		CheckEach:   true,
		Params: []Param{
			required("id", "The ID of the agent to query."),
			required("query", "The message sent to the agent."),
			optional("conversationId", "Continues an existing conversation."),
			optional("visitorId", "Identifies the visitor asking."),
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.AgentQuery(ctx, a.String("id"), protocol.QueryPayload{
				Query:          a.String("query"),
				ConversationID: a.OptString("conversationId"),
				VisitorID:      a.OptString("visitorId"),
			}))
		},
	}
}

func enableDisableAgentIntegration(svc Service) Operation {
	return Operation{
		Name:        "enable_disable_agent_integration",
		Description: "Enables or disables an agent integration.",
		Params: []Param{
			required("id", "The ID of the integration."),
			{Name: "enabled", Kind: KindBoolean, Description: "Whether the integration is enabled.", Required: true},
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.SetIntegrationEnabled(ctx, a.String("id"), protocol.IntegrationToggle{
				Enabled: a.Bool("enabled"),
			}))
		},
	}
}

func agentParams(a Args) protocol.AgentParams {
	return protocol.AgentParams{
		Name:         a.String("name"),
		ModelName:    a.String("modelName"),
		Description:  a.OptString("description"),
		SystemPrompt: a.OptString("systemPrompt"),
	}
}
