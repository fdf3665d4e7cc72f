package handler // handler package contains admin facility handlers

import (
	"database/sql" // sql is imported for sentinel errors like sql.ErrNoRows
	"net/http"     // http provides status code constants
	"strconv"      // strconv parses string identifiers to numeric types
	"strings"      // strings offers trimming utilities

	"github.com/labstack/echo/v4" // echo is the web framework used for handlers

	"github.com/velopark/parking-admin/internal/model"      // model holds API view types
	"github.com/velopark/parking-admin/internal/repository" // repository holds database models
)

// CreateFacility handles POST /v1/facilities and creates a new parking facility
func (h *AdminHandler) CreateFacility(c echo.Context) error { // begin CreateFacility handler
	if _, err := getUserID(c); err != nil { // ensure the request is authenticated
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"}) // respond unauthorized when user ID cannot be obtained
	}
	var body struct { // anonymous struct to bind incoming JSON
		Name    string  `json:"name"`    // Name is the only required field for a facility
		Address *string `json:"address"` // Address is optional free text
	}
	if err := c.Bind(&body); err != nil { // attempt to bind the request body into the struct
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"}) // return bad request when binding fails
	}
	name := strings.TrimSpace(body.Name) // trim spaces around the facility name
	if name == "" {                      // ensure the name is not empty after trimming
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"}) // respond with error when name is empty
	}
	f := &repository.Facility{ // instantiate a new facility model
		Name:     name, // assign the trimmed name
		IsActive: true, // new facilities start active
	}
	if body.Address != nil && strings.TrimSpace(*body.Address) != "" { // address provided and not empty
		f.Address = sql.NullString{String: strings.TrimSpace(*body.Address), Valid: true} // assign valid address
	}
	if err := h.FacilityRepo.Create(c.Request().Context(), f); err != nil { // delegate creation to the repository
		if strings.Contains(err.Error(), "1062") { // check for duplicate key error
			return c.JSON(http.StatusConflict, map[string]string{"error": "facility name already exists"}) // respond with conflict when the name is not unique
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create facility"}) // respond with internal error for other failures
	}
	h.invalidateCaches()                                  // drop cached facility listings
	return c.JSON(http.StatusCreated, facilityView(f))    // return 201 and the created facility on success
}

// GetFacility handles GET /v1/facilities/:id and returns a single facility
func (h *AdminHandler) GetFacility(c echo.Context) error { // begin GetFacility handler
	id, err := strconv.ParseUint(c.Param("id"), 10, 64) // parse the facility ID from the URL
	if err != nil {                                     // validate that the ID is numeric
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"}) // invalid ID error response
	}
	f, err := h.FacilityRepo.GetByID(c.Request().Context(), id) // fetch the facility
	if err != nil {                                             // handle repository errors
		if err == repository.ErrFacilityNotFound { // when the facility is not found
			return c.JSON(http.StatusNotFound, map[string]string{"error": "facility not found"}) // respond with not found
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"}) // respond with database error
	}
	return c.JSON(http.StatusOK, facilityView(f)) // return the facility with OK status
}

// ListFacilities handles GET /v1/facilities and returns all facilities
func (h *AdminHandler) ListFacilities(c echo.Context) error { // begin ListFacilities handler
	items, err := h.FacilityRepo.List(c.Request().Context()) // fetch all facilities
	if err != nil {                                          // handle repository errors
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"}) // respond with internal server error
	}
	views := make([]model.Facility, 0, len(items)) // convert to API views
	for _, f := range items {                      // iterate fetched facilities
		views = append(views, facilityView(f)) // append converted view
	}
	return c.JSON(http.StatusOK, map[string]any{"items": views}) // return the list wrapped in a JSON object
}

// UpdateFacility handles PUT/PATCH /v1/facilities/:id and updates name, address and active flag
func (h *AdminHandler) UpdateFacility(c echo.Context) error { // begin UpdateFacility handler
	id, err := strconv.ParseUint(c.Param("id"), 10, 64) // parse the facility ID from the URL
	if err != nil {                                     // validate that the ID is numeric
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"}) // invalid ID error response
	}
	cur, err := h.FacilityRepo.GetByID(c.Request().Context(), id) // load current facility
	if err != nil {                                               // handle fetch error
		if err == repository.ErrFacilityNotFound { // facility does not exist
			return c.JSON(http.StatusNotFound, map[string]string{"error": "facility not found"}) // respond with not found
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"}) // respond with database error
	}
	var body struct { // struct for binding the JSON payload
		Name     *string `json:"name"`      // optional new name
		Address  *string `json:"address"`   // optional new address; empty string clears it
		IsActive *bool   `json:"is_active"` // optional active flag
	}
	if err := c.Bind(&body); err != nil { // attempt to bind the request body
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"}) // return bad request when binding fails
	}
	if body.Name != nil && strings.TrimSpace(*body.Name) != "" { // update name when provided and non empty
		cur.Name = strings.TrimSpace(*body.Name) // assign trimmed name
	}
	if body.Address != nil { // address field present in payload
		s := strings.TrimSpace(*body.Address) // trim the new address
		if s == "" {                          // an empty string clears the address
			cur.Address = sql.NullString{String: "", Valid: false} // set invalid address
		} else { // non empty address
			cur.Address = sql.NullString{String: s, Valid: true} // assign valid address
		}
	}
	if body.IsActive != nil { // active flag present in payload
		cur.IsActive = *body.IsActive // apply the new flag
	}
	if err := h.FacilityRepo.Update(c.Request().Context(), cur); err != nil { // persist the update
		if err == sql.ErrNoRows { // no rows affected means not found
			return c.JSON(http.StatusNotFound, map[string]string{"error": "facility not found"}) // respond with not found
		}
		if strings.Contains(err.Error(), "1062") { // duplicate name violation
			return c.JSON(http.StatusConflict, map[string]string{"error": "facility name already exists"}) // respond with conflict
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"}) // respond with generic update failure
	}
	updated, _ := h.FacilityRepo.GetByID(c.Request().Context(), id) // fetch the updated record
	h.invalidateCaches()                                            // drop cached facility listings
	return c.JSON(http.StatusOK, facilityView(updated))             // return the updated facility with OK status
}

// DeleteFacility handles DELETE /v1/facilities/:id and removes the facility with its sections and tariff rows
func (h *AdminHandler) DeleteFacility(c echo.Context) error { // begin DeleteFacility handler
	id, err := strconv.ParseUint(c.Param("id"), 10, 64) // parse the facility ID from the URL
	if err != nil {                                     // validate that the ID is numeric
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"}) // invalid ID error response
	}
	if err := h.FacilityRepo.Delete(c.Request().Context(), id); err != nil { // delegate deletion to the repository
		if err == repository.ErrFacilityNotFound { // facility does not exist
			return c.JSON(http.StatusNotFound, map[string]string{"error": "facility not found"}) // respond with not found
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"}) // respond with generic delete failure
	}
	h.invalidateCaches()                    // drop cached facility listings
	return c.NoContent(http.StatusNoContent) // indicate success with no content
}
