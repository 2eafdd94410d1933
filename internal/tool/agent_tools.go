package tool

import (
	"context"

	"github.com/chatvolt/chatvolt-mcp/pkg/protocol"
)

var httpMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

func agentIDParam() Param {
	return required("agentId", "The ID of the agent the tool is added to.")
}

func addFollowUpMessagesTool(svc Service) Operation {
	return Operation{
		Name:        "add_follow_up_messages_tool",
		Description: "Adds a follow-up messages tool that re-engages inactive conversations.",
		Params: []Param{
			agentIDParam(),
			{Name: "messages", Kind: KindArray, Items: KindString, Description: "Messages sent in order."},
			optionalNumber("maxSends", "Maximum number of follow-ups per conversation."),
			optionalNumber("intervalHours", "Hours of inactivity between follow-ups."),
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.AddAgentTool(ctx, a.String("agentId"), protocol.AgentToolParams{
				Type: protocol.AgentToolFollowUpMessages,
				Config: protocol.FollowUpMessagesConfig{
					Messages:      a.Strings("messages"),
					MaxSends:      a.OptFloat("maxSends"),
					IntervalHours: a.OptFloat("intervalHours"),
				},
			}))
		},
	}
}

func addMarkAsResolvedTool(svc Service) Operation {
	return Operation{
		Name:        "add_mark_as_resolved_tool",
		Description: "Adds a tool that lets the agent mark a conversation as resolved.",
		Params:      []Param{agentIDParam()},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.AddAgentTool(ctx, a.String("agentId"), protocol.AgentToolParams{
				Type: protocol.AgentToolMarkAsResolved,
			}))
		},
	}
}

func addRequestHumanTool(svc Service) Operation {
	return Operation{
		Name:        "add_request_human_tool",
		Description: "Adds a tool that lets the agent hand the conversation to a human.",
		Params: []Param{
			agentIDParam(),
			optional("description", "When the agent should request a human."),
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.AddAgentTool(ctx, a.String("agentId"), protocol.AgentToolParams{
				Type:   protocol.AgentToolRequestHuman,
				Config: protocol.RequestHumanConfig{Description: a.OptString("description")},
			}))
		},
	}
}

func addDelayedResponsesTool(svc Service) Operation {
	return Operation{
		Name:        "add_delayed_responses_tool",
		Description: "Adds a tool that delays agent responses.",
		Params: []Param{
			agentIDParam(),
			optionalNumber("delaySeconds", "Delay before the agent answers, in seconds."),
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.AddAgentTool(ctx, a.String("agentId"), protocol.AgentToolParams{
				Type:   protocol.AgentToolDelayedResponses,
				Config: protocol.DelayedResponsesConfig{DelaySeconds: a.OptFloat("delaySeconds")},
			}))
		},
	}
}

func addDatastoreTool(svc Service) Operation {
	return Operation{
		Name:        "add_datastore_tool",
		Description: "Connects a datastore to an agent as a knowledge tool.",
		Params: []Param{
			agentIDParam(),
			required("datastoreId", "The ID of the datastore to connect."),
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.AddAgentTool(ctx, a.String("agentId"), protocol.AgentToolParams{
				Type:        protocol.AgentToolDatastore,
				DatastoreID: a.String("datastoreId"),
			}))
		},
	}
}

func addHTTPTool(svc Service) Operation {
	return Operation{
		Name:        "add_http_tool",
		Description: "Adds a tool that lets the agent call an HTTP endpoint.",
		Params: []Param{
			agentIDParam(),
			required("name", "The name of the tool."),
			required("description", "What the tool does, shown to the agent."),
			required("url", "The endpoint URL."),
			{Name: "method", Kind: KindString, Description: "The HTTP method.", Required: true, Enum: httpMethods},
			{Name: "headers", Kind: KindObject, Description: "Headers sent with the request."},
			{Name: "body", Kind: KindObject, Description: "Request body."},
			{Name: "queryParameters", Kind: KindObject, Description: "Query string parameters."},
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.AddAgentTool(ctx, a.String("agentId"), protocol.AgentToolParams{
				Type: protocol.AgentToolHTTP,
				Config: protocol.HTTPToolConfig{
					Name:            a.String("name"),
					Description:     a.String("description"),
					URL:             a.String("url"),
					Method:          a.String("method"),
					Headers:         a.Object("headers"),
					Body:            a.Object("body"),
					QueryParameters: a.Object("queryParameters"),
				},
			}))
		},
	}
}
