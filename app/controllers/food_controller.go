package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/tomato/app/models"
	"github.com/shashiranjanraj/tomato/app/services"
	"github.com/shashiranjanraj/tomato/pkg/bind"
	"github.com/shashiranjanraj/tomato/pkg/collection"
	"github.com/shashiranjanraj/tomato/pkg/response"
	"github.com/shashiranjanraj/tomato/pkg/storage"
)

// maxImageBytes caps multipart image uploads.
const maxImageBytes = 8 << 20 // 8 MB

type FoodController struct {
	catalog *services.CatalogService
}

func NewFoodController(catalog *services.CatalogService) *FoodController {
	return &FoodController{catalog: catalog}
}

// List serves the full catalog. Image paths are expanded to public URLs.
func (c *FoodController) List(w http.ResponseWriter, r *http.Request) {
	foods, err := c.catalog.List(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, response.CodeInternal, "could not list foods")
		return
	}
	foods = collection.Map(foods, func(f models.Food) models.Food {
		if f.Image != "" {
			f.Image = storage.URL(f.Image)
		}
		return f
	})
	response.Success(w, foods)
}

// Add creates a catalog item from a multipart form with an optional image
// part. Admin only.
func (c *FoodController) Add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "expected multipart form")
		return
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		response.Error(w, http.StatusUnprocessableEntity, response.CodeValidation, "price must be a number")
		return
	}

	food := &models.Food{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       price,
		Category:    r.FormValue("category"),
	}

	file, header, err := r.FormFile("image")
	var filename string
	if err == nil {
		defer file.Close()
		filename = header.Filename
	} else {
		file = nil
	}

	added, err := c.catalog.Add(r.Context(), food, file, filename)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			response.Error(w, http.StatusUnprocessableEntity, response.CodeValidation, "name and a positive price are required")
			return
		}
		response.Error(w, http.StatusInternalServerError, response.CodeInternal, "could not add food")
		return
	}

	response.Created(w, added)
}

type removeFoodInput struct {
	ID string `json:"id" validate:"required"`
}

// Remove deletes a catalog item and its image. Admin only.
func (c *FoodController) Remove(w http.ResponseWriter, r *http.Request) {
	var in removeFoodInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := c.catalog.Remove(r.Context(), in.ID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "food not found")
			return
		}
		response.Error(w, http.StatusInternalServerError, response.CodeInternal, "could not remove food")
		return
	}
	response.Message(w, "food removed")
}
