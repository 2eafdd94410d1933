package tool

import (
	"context"

	"github.com/chatvolt/chatvolt-mcp/pkg/protocol"
)

func listCrmScenarios(svc Service) Operation {
	return Operation{
		Name:        "list_crm_scenarios",
		Description: "Lists the CRM scenarios of an agent.",
		Params: []Param{
			required("agentId", "The ID of the agent."),
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.ListCrmScenarios(ctx, a.String("agentId")))
		},
	}
}

func createCrmScenario(svc Service) Operation {
	return Operation{
		Name:        "create_crm_scenario",
		Description: "Creates a CRM scenario for an agent.",
		Params: []Param{
			required("agentId", "The ID of the agent that owns the scenario."),
			required("name", "The name of the scenario."),
			optional("description", "A description of the scenario."),
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.CreateCrmScenario(ctx, protocol.CrmScenarioParams{
				AgentID:     a.String("agentId"),
				Name:        a.String("name"),
				Description: a.OptString("description"),
			}))
		},
	}
}

func updateCrmScenario(svc Service) Operation {
	return Operation{
		Name:        "update_crm_scenario",
		Description: "Updates a CRM scenario.",
		Params: []Param{
			required("id", "The ID of the scenario."),
			required("name", "The new name of the scenario."),
			optional("description", "The new description."),
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.UpdateCrmScenario(ctx, a.String("id"), protocol.CrmScenarioUpdate{
				Name:        a.String("name"),
				Description: a.OptString("description"),
			}))
		},
	}
}

func deleteCrmScenario(svc Service) Operation {
	return Operation{
		Name:        "delete_crm_scenario",
		Description: "Deletes a CRM scenario.",
		Params: []Param{
			required("id", "The ID of the scenario to delete."),
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.DeleteCrmScenario(ctx, a.String("id")))
		},
	}
}

func listCrmSteps(svc Service) Operation {
	return Operation{
		Name:        "list_crm_steps",
		Description: "Lists the steps of a CRM scenario.",
		Params: []Param{
			required("scenarioId", "The ID of the scenario."),
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.ListCrmSteps(ctx, a.String("scenarioId")))
		},
	}
}

func createCrmStep(svc Service) Operation {
	return Operation{
		Name:        "create_crm_step",
		Description: "Creates a step in a CRM scenario.",
		Params: []Param{
			required("scenarioId", "The ID of the scenario."),
			required("name", "The name of the step."),
			optional("description", "A description of the step."),
			optionalNumber("order", "Position of the step in the scenario."),
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.CreateCrmStep(ctx, protocol.CrmStepParams{
				ScenarioID:  a.String("scenarioId"),
				Name:        a.String("name"),
				Description: a.OptString("description"),
				Order:       a.OptFloat("order"),
			}))
		},
	}
}

func updateCrmStep(svc Service) Operation {
	return Operation{
		Name:        "update_crm_step",
		Description: "Updates a CRM step.",
		Params: []Param{
			required("id", "The ID of the step."),
			required("name", "The new name of the step."),
			optional("description", "The new description."),
			optionalNumber("order", "The new position of the step."),
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.UpdateCrmStep(ctx, a.String("id"), protocol.CrmStepUpdate{
				Name:        a.String("name"),
				Description: a.OptString("description"),
				Order:       a.OptFloat("order"),
			}))
		},
	}
}

func deleteCrmStep(svc Service) Operation {
	return Operation{
		Name:        "delete_crm_step",
		Description: "Deletes a CRM step.",
		Params: []Param{
			required("id", "The ID of the step to delete."),
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.DeleteCrmStep(ctx, a.String("id")))
		},
	}
}
