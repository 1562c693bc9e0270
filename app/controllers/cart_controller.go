package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/tomato/app/services"
	"github.com/shashiranjanraj/tomato/pkg/bind"
	"github.com/shashiranjanraj/tomato/pkg/middleware"
	"github.com/shashiranjanraj/tomato/pkg/response"
)

type CartController struct {
	cart *services.CartService
}

func NewCartController(cart *services.CartService) *CartController {
	return &CartController{cart: cart}
}

type cartItemInput struct {
	ItemID string `json:"itemId" validate:"required"`
}

func (c *CartController) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		response.Unauthenticated(w)
		return
	}

	var in cartItemInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := c.cart.AddItem(r.Context(), userID, in.ItemID); err != nil {
		c.fail(w, err, "could not add to cart")
		return
	}
	response.Message(w, "added to cart")
}

func (c *CartController) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		response.Unauthenticated(w)
		return
	}

	var in cartItemInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := c.cart.RemoveItem(r.Context(), userID, in.ItemID); err != nil {
		c.fail(w, err, "could not remove from cart")
		return
	}
	response.Message(w, "removed from cart")
}

func (c *CartController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		response.Unauthenticated(w)
		return
	}

	cart, err := c.cart.GetCart(r.Context(), userID)
	if err != nil {
		c.fail(w, err, "could not load cart")
		return
	}
	response.Success(w, cart)
}

func (c *CartController) fail(w http.ResponseWriter, err error, internalMsg string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		response.NotFound(w, "user not found")
	case errors.Is(err, services.ErrValidation):
		response.Error(w, http.StatusUnprocessableEntity, response.CodeValidation, "itemId is required")
	default:
		response.Error(w, http.StatusInternalServerError, response.CodeInternal, internalMsg)
	}
}
