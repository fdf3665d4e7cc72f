package handler // handler package contains admin section handlers

import (
	"database/sql" // sql provides nullable types and error values
	"net/http"     // http defines status code constants
	"strconv"      // strconv parses URL parameters to numbers
	"strings"      // strings manipulates and trims text

	"github.com/labstack/echo/v4" // echo framework supplies request context

	"github.com/velopark/parking-admin/internal/model"      // model holds API view types
	"github.com/velopark/parking-admin/internal/repository" // repository exposes database models
)

// CreateSection handles POST /v1/facilities/:id/sections and creates a section
// inside a facility
func (h *AdminHandler) CreateSection(c echo.Context) error { // begin CreateSection handler
	facilityID, err := strconv.ParseUint(c.Param("id"), 10, 64) // parse the facility ID from the path
	if err != nil {                                             // ensure the facility ID is numeric
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"}) // invalid ID error
	}
	var body struct { // anonymous struct to bind JSON payload
		Title    string `json:"title"`    // required section title
		Capacity *int32 `json:"capacity"` // optional number of parking places
	}
	if err := c.Bind(&body); err != nil { // bind the incoming JSON
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"}) // respond bad request on binding errors
	}
	title := strings.TrimSpace(body.Title) // trim spaces around the title
	if title == "" {                       // title must not be empty
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "title is required"}) // respond with bad request
	}
	if body.Capacity != nil && *body.Capacity <= 0 { // capacity must be positive when given
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "capacity must be greater than zero"}) // respond with bad request
	}
	if _, err := h.FacilityRepo.GetByID(c.Request().Context(), facilityID); err != nil { // verify the facility exists
		if err == repository.ErrFacilityNotFound { // facility not found
			return c.JSON(http.StatusNotFound, map[string]string{"error": "facility not found"}) // respond with not found
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to verify facility"}) // respond with internal error
	}
	s := &repository.Section{ // build a section model
		FacilityID: facilityID, // assign the owning facility
		Title:      title,      // assign the trimmed title
		IsActive:   true,       // new sections start active
	}
	if body.Capacity != nil { // capacity provided
		s.Capacity = sql.NullInt32{Int32: *body.Capacity, Valid: true} // store capacity as nullable int32
	}
	if err := h.SectionRepo.Create(c.Request().Context(), s); err != nil { // create section in repository
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create section"}) // respond with error on failure
	}
	h.invalidateCaches()                                  // drop cached topology responses
	return c.JSON(http.StatusCreated, sectionView(s, nil)) // return the created section; the matrix starts empty
}

// ListSections handles GET /v1/facilities/:id/sections and returns every
// section of a facility together with its permitted-type matrix
func (h *AdminHandler) ListSections(c echo.Context) error { // begin ListSections handler
	facilityID, err := strconv.ParseUint(c.Param("id"), 10, 64) // parse the facility ID from the path
	if err != nil {                                             // ensure the facility ID is numeric
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"}) // invalid ID error
	}
	sections, err := h.SectionRepo.ListByFacility(c.Request().Context(), facilityID) // fetch sections of the facility
	if err != nil {                                                                  // handle repository errors
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"}) // respond with internal server error
	}
	matrix, err := h.BikeTypeRepo.ListByFacility(c.Request().Context(), facilityID) // fetch every matrix entry in one query
	if err != nil {                                                                 // handle repository errors
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"}) // respond with internal server error
	}
	bySection := make(map[uint64][]*repository.SectionBikeType) // group matrix entries by section
	for _, m := range matrix {                                  // iterate entries
		bySection[m.SectionID] = append(bySection[m.SectionID], m) // append entry under its section
	}
	views := make([]model.Section, 0, len(sections)) // convert sections to API views
	for _, s := range sections {                     // iterate fetched sections
		views = append(views, sectionView(s, bySection[s.ID])) // attach the section's matrix
	}
	return c.JSON(http.StatusOK, map[string]any{"items": views}) // return the list wrapped in a JSON object
}

// UpdateSection handles PUT/PATCH /v1/sections/:id and updates title, capacity
// and active flag
func (h *AdminHandler) UpdateSection(c echo.Context) error { // begin UpdateSection handler
	id, err := strconv.ParseUint(c.Param("id"), 10, 64) // parse section ID from path
	if err != nil {                                     // ensure the section ID is numeric
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"}) // invalid ID error
	}
	cur, err := h.SectionRepo.GetByID(c.Request().Context(), id) // load current section
	if err != nil {                                              // handle fetch error
		if err == repository.ErrSectionNotFound { // section not found
			return c.JSON(http.StatusNotFound, map[string]string{"error": "section not found"}) // respond with not found
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"}) // generic database error
	}
	var body struct { // struct to bind JSON body
		Title    *string `json:"title"`     // optional new title
		Capacity *int32  `json:"capacity"`  // optional new capacity; zero clears it
		IsActive *bool   `json:"is_active"` // optional active flag
	}
	if err := c.Bind(&body); err != nil { // bind JSON payload
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"}) // respond bad request on binding error
	}
	if body.Title != nil && strings.TrimSpace(*body.Title) != "" { // update title when provided and non empty
		cur.Title = strings.TrimSpace(*body.Title) // assign trimmed title
	}
	if body.Capacity != nil { // capacity field present in payload
		if *body.Capacity < 0 { // negative capacity is invalid
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "capacity must not be negative"}) // respond with bad request
		}
		if *body.Capacity == 0 { // zero clears the capacity
			cur.Capacity = sql.NullInt32{Int32: 0, Valid: false} // set invalid capacity
		} else { // positive capacity
			cur.Capacity = sql.NullInt32{Int32: *body.Capacity, Valid: true} // assign valid capacity
		}
	}
	if body.IsActive != nil { // active flag present in payload
		cur.IsActive = *body.IsActive // apply the new flag
	}
	if err := h.SectionRepo.Update(c.Request().Context(), cur); err != nil { // persist the update
		if err == sql.ErrNoRows { // no rows affected means not found
			return c.JSON(http.StatusNotFound, map[string]string{"error": "section not found"}) // respond with not found
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"}) // respond with generic update failure
	}
	matrix, _ := h.BikeTypeRepo.ListBySection(c.Request().Context(), id) // load the matrix for the response
	h.invalidateCaches()                                                 // drop cached topology responses
	return c.JSON(http.StatusOK, sectionView(cur, matrix))               // return the updated section with OK status
}

// DeleteSection handles DELETE /v1/sections/:id; sections that still carry
// tariff rows cannot be removed
func (h *AdminHandler) DeleteSection(c echo.Context) error { // begin DeleteSection handler
	id, err := strconv.ParseUint(c.Param("id"), 10, 64) // parse section ID from path
	if err != nil {                                     // ensure the section ID is numeric
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"}) // invalid ID error
	}
	if err := h.SectionRepo.Delete(c.Request().Context(), id); err != nil { // delegate deletion to the repository
		if err == repository.ErrSectionNotFound { // section does not exist
			return c.JSON(http.StatusNotFound, map[string]string{"error": "section not found"}) // respond with not found
		}
		if err == repository.ErrConflict { // tariff rows still reference the section
			return c.JSON(http.StatusConflict, map[string]string{"error": "section still has tariff rows"}) // respond with conflict
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"}) // respond with generic delete failure
	}
	h.invalidateCaches()                     // drop cached topology responses
	return c.NoContent(http.StatusNoContent) // indicate success with no content
}

// SetSectionBikeType handles PUT /v1/sections/:id/bike-types/:type_id and
// toggles whether a section permits a bike type.  The matrix entry keeps its
// id across toggles, so per-type tariff scopes reappear when a type is
// re-allowed.
func (h *AdminHandler) SetSectionBikeType(c echo.Context) error { // begin SetSectionBikeType handler
	sectionID, err := strconv.ParseUint(c.Param("id"), 10, 64) // parse section ID from path
	if err != nil {                                            // ensure the section ID is numeric
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"}) // invalid ID error
	}
	typeID, err := strconv.ParseUint(c.Param("type_id"), 10, 64) // parse bike type ID from path
	if err != nil {                                              // ensure the type ID is numeric
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid type id"}) // invalid type ID error
	}
	var body struct { // struct to bind JSON body
		Allowed *bool `json:"allowed"` // required new allowance flag
	}
	if err := c.Bind(&body); err != nil || body.Allowed == nil { // bind and require the flag
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "allowed is required"}) // respond with bad request
	}
	if _, err := h.SectionRepo.GetByID(c.Request().Context(), sectionID); err != nil { // verify the section exists
		if err == repository.ErrSectionNotFound { // section not found
			return c.JSON(http.StatusNotFound, map[string]string{"error": "section not found"}) // respond with not found
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"}) // generic database error
	}
	sbt, err := h.BikeTypeRepo.SetAllowed(c.Request().Context(), sectionID, typeID, *body.Allowed) // upsert the matrix entry
	if err != nil {                                                                               // handle repository errors
		if strings.Contains(err.Error(), "1452") { // foreign key violation means the bike type does not exist
			return c.JSON(http.StatusNotFound, map[string]string{"error": "bike type not found"}) // respond with not found
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"}) // respond with generic update failure
	}
	h.invalidateCaches() // drop cached topology responses
	return c.JSON(http.StatusOK, model.PermittedBikeType{ // return the resulting matrix entry
		SectionBikeTypeID: sbt.ID,         // the id that keys per-type tariff scopes
		BikeTypeID:        sbt.BikeTypeID, // the bike type being permitted or blocked
		Allowed:           sbt.Allowed,    // the new allowance state
	})
}
