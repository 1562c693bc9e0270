package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/tomato/app/models"
	"github.com/shashiranjanraj/tomato/app/services"
	"github.com/shashiranjanraj/tomato/pkg/bind"
	"github.com/shashiranjanraj/tomato/pkg/middleware"
	"github.com/shashiranjanraj/tomato/pkg/response"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

type placeOrderInput struct {
	Items   []services.CartItem `json:"items" validate:"required"`
	Address models.Address      `json:"address"`
}

// Place checks out the authenticated user's requested items and returns the
// payment session URL the frontend redirects to.
func (c *OrderController) Place(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		response.Unauthenticated(w)
		return
	}

	var in placeOrderInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	placed, err := c.orders.PlaceOrder(r.Context(), userID, in.Items, in.Address)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCart):
			response.Error(w, http.StatusUnprocessableEntity, response.CodeValidation, "cart is empty")
		case errors.Is(err, services.ErrValidation):
			response.Error(w, http.StatusUnprocessableEntity, response.CodeValidation, "item quantities must be positive")
		case errors.Is(err, services.ErrNotFound):
			response.NotFound(w, "unknown food item")
		case errors.Is(err, services.ErrUpstream):
			response.Upstream(w, "payment gateway unavailable")
		default:
			response.Error(w, http.StatusInternalServerError, response.CodeInternal, "could not place order")
		}
		return
	}

	response.Created(w, placed)
}

type verifyInput struct {
	OrderID   string   `json:"orderId" validate:"required"`
	Success   bool     `json:"success"`
	Amount    *float64 `json:"amount"`
	Signature string   `json:"signature"`
}

// Verify is the payment gateway callback. It carries no user token; the
// request is scoped to the single supplied order id and cross-checked against
// amount and signature when configured.
func (c *OrderController) Verify(w http.ResponseWriter, r *http.Request) {
	var in verifyInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	err := c.orders.VerifyPayment(r.Context(), services.VerifyInput{
		OrderID:   in.OrderID,
		Success:   in.Success,
		Amount:    in.Amount,
		Signature: in.Signature,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			response.NotFound(w, "order not found")
		case errors.Is(err, services.ErrValidation):
			response.Error(w, http.StatusUnprocessableEntity, response.CodeValidation, "payment verification rejected")
		default:
			response.Error(w, http.StatusInternalServerError, response.CodeInternal, "could not verify payment")
		}
		return
	}

	if in.Success {
		response.Message(w, "paid")
		return
	}
	response.Message(w, "payment failed recorded")
}

// UserOrders lists the authenticated user's own orders.
func (c *OrderController) UserOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		response.Unauthenticated(w)
		return
	}

	orders, err := c.orders.ListOrders(r.Context(), userID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, response.CodeInternal, "could not list orders")
		return
	}
	response.Success(w, orders)
}

// ListAll lists every order. Admin only.
func (c *OrderController) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := c.orders.ListAllOrders(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, response.CodeInternal, "could not list orders")
		return
	}
	response.Success(w, orders)
}

type statusInput struct {
	OrderID string `json:"orderId" validate:"required"`
	Status  string `json:"status" validate:"required"`
}

// UpdateStatus moves an order to another status. Admin only.
func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var in statusInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := c.orders.UpdateStatus(r.Context(), in.OrderID, in.Status); err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			response.Error(w, http.StatusUnprocessableEntity, response.CodeValidation, "unknown status value")
		case errors.Is(err, services.ErrNotFound):
			response.NotFound(w, "order not found")
		default:
			response.Error(w, http.StatusInternalServerError, response.CodeInternal, "could not update status")
		}
		return
	}
	response.Message(w, "status updated")
}
