package tool

import (
	"context"
	"errors"

	"github.com/chatvolt/chatvolt-mcp/pkg/protocol"
)

func listDatastores(svc Service) Operation {
	return Operation{
		Name:        "list_datastores",
		Description: "Lists every datastore in the organization.",
		Call: func(ctx context.Context, _ Args) (any, error) {
			return raw(svc.ListDatastores(ctx))
		},
	}
}

func getDatastore(svc Service) Operation {
	return Operation{
		Name:        "get_datastore",
		Description: "Retrieves a datastore by its ID.",
		Params: []Param{
			required("id", "The ID of the datastore."),
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.GetDatastore(ctx, a.String("id")))
		},
	}
}

func createDatastore(svc Service) Operation {
	return Operation{
		Name:        "create_datastore",
		Description: "Creates a datastore.",
		Params: []Param{
			required("name", "The name of the datastore."),
			optional("description", "A description of the datastore."),
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.CreateDatastore(ctx, protocol.DatastoreParams{
				Name:        a.String("name"),
				Description: a.OptString("description"),
			}))
		},
	}
}

func createDatasource(svc Service) Operation {
	return Operation{
		Name:        "create_datasource",
		Description: "Creates a text datasource inside a datastore.",
		Params: []Param{
			required("datastoreId", "The ID of the datastore."),
			required("name", "The name of the datasource."),
			required("text", "The text content of the datasource."),
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			return raw(svc.CreateDatasource(ctx, protocol.DatasourceParams{
				DatastoreID: a.String("datastoreId"),
				Name:        a.String("name"),
				Type:        protocol.DatasourceTypeFile,
				Config:      protocol.DatasourceConfig{Text: a.String("text")},
			}))
		},
	}
}

func getDocumentation(docs DocsFetcher) Operation {
	return Operation{
		Name:        "get_documentation",
		Description: "Fetches a page of the Chatvolt documentation as plain text.",
		Params: []Param{
			optional("page", "Documentation page path, for example agents/create. Defaults to the index."),
		},
		Call: func(ctx context.Context, a Args) (any, error) {
			if docs == nil {
				return nil, errors.New("documentation lookup is not configured")
			}
			return docs.Fetch(ctx, a.String("page"))
		},
	}
}
