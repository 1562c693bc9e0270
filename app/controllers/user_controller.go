// Package controllers maps HTTP requests onto the service layer. Each
// controller owns one resource and translates service sentinel errors into
// response envelopes.
package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/tomato/app/services"
	"github.com/shashiranjanraj/tomato/pkg/bind"
	"github.com/shashiranjanraj/tomato/pkg/response"
)

type UserController struct {
	auth *services.AuthService
}

func NewUserController(auth *services.AuthService) *UserController {
	return &UserController{auth: auth}
}

type registerInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (c *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	token, err := c.auth.Register(r.Context(), in.Name, in.Email, in.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateEmail):
			response.Error(w, http.StatusConflict, response.CodeValidation, "email already registered")
		case errors.Is(err, services.ErrValidation):
			response.Error(w, http.StatusUnprocessableEntity, response.CodeValidation, "invalid registration details")
		default:
			response.Error(w, http.StatusInternalServerError, response.CodeInternal, "could not register")
		}
		return
	}

	response.Created(w, map[string]string{"token": token})
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	token, err := c.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, services.ErrBadCredentials) {
			response.Error(w, http.StatusUnauthorized, response.CodeUnauthenticated, "invalid email or password")
			return
		}
		response.Error(w, http.StatusInternalServerError, response.CodeInternal, "could not log in")
		return
	}

	response.Success(w, map[string]string{"token": token})
}
