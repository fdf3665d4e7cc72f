package handler // handler package contains bike-type directory handlers

import (
	"net/http" // http provides status code constants
	"strconv"  // strconv parses string identifiers to numeric types
	"strings"  // strings offers trimming utilities

	"github.com/labstack/echo/v4" // echo is the web framework used for handlers

	"github.com/velopark/parking-admin/internal/model"      // model holds API view types
	"github.com/velopark/parking-admin/internal/repository" // repository holds database models
)

// CreateBikeType handles POST /v1/bike-types and adds a vehicle kind to the
// global directory
func (h *AdminHandler) CreateBikeType(c echo.Context) error { // begin CreateBikeType handler
	var body struct { // anonymous struct to bind incoming JSON
		Code  string `json:"code"`  // short unique mnemonic like "cargo"
		Label string `json:"label"` // human readable name
	}
	if err := c.Bind(&body); err != nil { // attempt to bind the request body
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"}) // return bad request when binding fails
	}
	code := strings.ToLower(strings.TrimSpace(body.Code)) // codes are stored lower case
	label := strings.TrimSpace(body.Label)                // trim spaces around the label
	if code == "" || label == "" {                        // both fields are required
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "code and label are required"}) // respond with bad request
	}
	bt := &repository.BikeType{Code: code, Label: label}                 // instantiate a new bike type model
	if err := h.BikeTypeRepo.Create(c.Request().Context(), bt); err != nil { // delegate creation to the repository
		if err == repository.ErrBikeTypeExists { // duplicate code
			return c.JSON(http.StatusConflict, map[string]string{"error": "bike type code already exists"}) // respond with conflict
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create bike type"}) // respond with internal error
	}
	h.invalidateCaches()                              // drop cached directory listings
	return c.JSON(http.StatusCreated, bikeTypeView(bt)) // return 201 and the created bike type
}

// ListBikeTypes handles GET /v1/bike-types and returns the whole directory
func (h *AdminHandler) ListBikeTypes(c echo.Context) error { // begin ListBikeTypes handler
	items, err := h.BikeTypeRepo.List(c.Request().Context()) // fetch all bike types
	if err != nil {                                          // handle repository errors
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"}) // respond with internal server error
	}
	views := make([]model.BikeType, 0, len(items)) // convert to API views
	for _, bt := range items {                     // iterate fetched bike types
		views = append(views, bikeTypeView(bt)) // append converted view
	}
	return c.JSON(http.StatusOK, map[string]any{"items": views}) // return the list wrapped in a JSON object
}

// UpdateBikeType handles PUT/PATCH /v1/bike-types/:id and renames a type; the
// code is immutable because sections and tariff scopes reference it
func (h *AdminHandler) UpdateBikeType(c echo.Context) error { // begin UpdateBikeType handler
	id, err := strconv.ParseUint(c.Param("id"), 10, 64) // parse the bike type ID from the URL
	if err != nil {                                     // validate that the ID is numeric
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"}) // invalid ID error response
	}
	var body struct { // struct for binding the JSON payload
		Label string `json:"label"` // Label is the only updatable field
	}
	if err := c.Bind(&body); err != nil { // attempt to bind the request body
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"}) // return bad request when binding fails
	}
	label := strings.TrimSpace(body.Label) // trim spaces from the provided label
	if label == "" {                       // label cannot be empty after trimming
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "label is required"}) // respond with bad request if label is empty
	}
	if err := h.BikeTypeRepo.UpdateLabel(c.Request().Context(), id, label); err != nil { // persist the rename
		if err == repository.ErrBikeTypeNotFound { // when the type is not found
			return c.JSON(http.StatusNotFound, map[string]string{"error": "bike type not found"}) // respond with not found
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"}) // respond with generic update failure
	}
	h.invalidateCaches() // drop cached directory listings
	return c.JSON(http.StatusOK, map[string]any{"id": id, "label": label}) // return the updated fields
}

// DeleteBikeType handles DELETE /v1/bike-types/:id; types still permitted by
// any section cannot be removed
func (h *AdminHandler) DeleteBikeType(c echo.Context) error { // begin DeleteBikeType handler
	id, err := strconv.ParseUint(c.Param("id"), 10, 64) // parse the bike type ID from the URL
	if err != nil {                                     // validate that the ID is numeric
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"}) // invalid ID error response
	}
	if err := h.BikeTypeRepo.Delete(c.Request().Context(), id); err != nil { // delegate deletion to the repository
		if err == repository.ErrBikeTypeNotFound { // type does not exist
			return c.JSON(http.StatusNotFound, map[string]string{"error": "bike type not found"}) // respond with not found
		}
		if err == repository.ErrConflict { // sections still permit the type
			return c.JSON(http.StatusConflict, map[string]string{"error": "bike type is still permitted by sections"}) // respond with conflict
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"}) // respond with generic delete failure
	}
	h.invalidateCaches()                     // drop cached directory listings
	return c.NoContent(http.StatusNoContent) // indicate success with no content
}
