// Package routes wires controllers onto the router.
package routes

import (
	"github.com/shashiranjanraj/tomato/app/controllers"
	"github.com/shashiranjanraj/tomato/pkg/middleware"
	"github.com/shashiranjanraj/tomato/pkg/rbac"
	"github.com/shashiranjanraj/tomato/pkg/router"
)

// Controllers bundles everything RegisterAPI mounts.
type Controllers struct {
	Users   *controllers.UserController
	Foods   *controllers.FoodController
	Cart    *controllers.CartController
	Orders  *controllers.OrderController
	Health  *controllers.HealthController
	GraphQL *controllers.AdminGraphQLController
	Feed    *controllers.OrderFeed
}

// RegisterAPI mounts the REST surface. Protected groups run the auth
// middleware; admin groups additionally require the admin role.
func RegisterAPI(r *router.Router, c *Controllers) {
	r.Get("/health", "health", c.Health.Check)

	api := r.Group("/api")

	user := api.Group("/user")
	user.Post("/register", "user.register", c.Users.Register)
	user.Post("/login", "user.login", c.Users.Login)

	food := api.Group("/food")
	food.Get("/list", "food.list", c.Foods.List)
	food.Post("/add", "food.add", c.Foods.Add, middleware.Auth, rbac.Admin)
	food.Post("/remove", "food.remove", c.Foods.Remove, middleware.Auth, rbac.Admin)

	cart := api.Group("/cart", middleware.Auth)
	cart.Post("/add", "cart.add", c.Cart.Add)
	cart.Post("/remove", "cart.remove", c.Cart.Remove)
	cart.Post("/get", "cart.get", c.Cart.Get)

	order := api.Group("/order")
	order.Post("/place", "order.place", c.Orders.Place, middleware.Auth)
	// Gateway callback: deliberately unauthenticated.
	order.Post("/verify", "order.verify", c.Orders.Verify)
	order.Post("/userorders", "order.mine", c.Orders.UserOrders, middleware.Auth)
	order.Get("/list", "order.list", c.Orders.ListAll, middleware.Auth, rbac.Admin)
	order.Post("/status", "order.status", c.Orders.UpdateStatus, middleware.Auth, rbac.Admin)

	if c.GraphQL != nil {
		api.Post("/admin/graphql", "admin.graphql", c.GraphQL.Query, middleware.Auth, rbac.Admin)
	}
	if c.Feed != nil {
		r.Get("/ws/orders", "ws.orders", c.Feed.Serve, middleware.Auth, rbac.Admin)
		r.Get("/sse/orders", "sse.orders", c.Feed.ServeSSE, middleware.Auth, rbac.Admin)
	}
}
