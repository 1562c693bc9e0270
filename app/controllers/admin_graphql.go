package controllers

import (
	"encoding/json"
	"net/http"

	gql "github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/tomato/app/models"
	"github.com/shashiranjanraj/tomato/app/services"
	"github.com/shashiranjanraj/tomato/pkg/collection"
	"github.com/shashiranjanraj/tomato/pkg/graphql"
	"github.com/shashiranjanraj/tomato/pkg/logger"
	"github.com/shashiranjanraj/tomato/pkg/response"
)

// AdminGraphQLController exposes a read-only query surface over the catalog
// and the order ledger for the admin dashboard.
type AdminGraphQLController struct {
	schema gql.Schema
}

func NewAdminGraphQLController(catalog *services.CatalogService, orders *services.OrderService) (*AdminGraphQLController, error) {
	foodType := gql.NewObject(gql.ObjectConfig{
		Name: "Food",
		Fields: gql.Fields{
			"id": &gql.Field{
				Type: gql.String,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return p.Source.(models.Food).ID.Hex(), nil
				},
			},
			"name":        &gql.Field{Type: gql.String},
			"description": &gql.Field{Type: gql.String},
			"price":       &gql.Field{Type: gql.Float},
			"category":    &gql.Field{Type: gql.String},
			"image":       &gql.Field{Type: gql.String},
		},
	})

	itemType := gql.NewObject(gql.ObjectConfig{
		Name: "OrderItem",
		Fields: gql.Fields{
			"item_id":  &gql.Field{Type: gql.String},
			"name":     &gql.Field{Type: gql.String},
			"price":    &gql.Field{Type: gql.Float},
			"quantity": &gql.Field{Type: gql.Int},
		},
	})

	orderType := gql.NewObject(gql.ObjectConfig{
		Name: "Order",
		Fields: gql.Fields{
			"id": &gql.Field{
				Type: gql.String,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return p.Source.(models.Order).ID.Hex(), nil
				},
			},
			"user_id": &gql.Field{Type: gql.String},
			"amount":  &gql.Field{Type: gql.Float},
			"payment": &gql.Field{Type: gql.Boolean},
			"status":  &gql.Field{Type: gql.String},
			"items":   &gql.Field{Type: gql.NewList(itemType)},
		},
	})

	root := gql.NewObject(gql.ObjectConfig{
		Name: "RootQuery",
		Fields: gql.Fields{
			"foods": &gql.Field{
				Type: gql.NewList(foodType),
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return catalog.List(p.Context)
				},
			},
			"orders": &gql.Field{
				Type: gql.NewList(orderType),
				Args: gql.FieldConfigArgument{
					"status": &gql.ArgumentConfig{Type: gql.String},
				},
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					all, err := orders.ListAllOrders(p.Context)
					if err != nil {
						return nil, err
					}
					status, ok := p.Args["status"].(string)
					if !ok || status == "" {
						return all, nil
					}
					return collection.Filter(all, func(o models.Order) bool {
						return o.Status == status
					}), nil
				},
			},
		},
	})

	schema, err := graphql.NewSchema(root)
	if err != nil {
		return nil, err
	}
	return &AdminGraphQLController{schema: schema}, nil
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func (c *AdminGraphQLController) Query(w http.ResponseWriter, r *http.Request) {
	var req graphqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "invalid GraphQL request body")
		return
	}

	result := gql.Do(gql.Params{
		Schema:         c.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		Context:        r.Context(),
	})
	if len(result.Errors) > 0 {
		logger.Warn("graphql: query errors", "errors", result.Errors)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result) //nolint:errcheck
}
