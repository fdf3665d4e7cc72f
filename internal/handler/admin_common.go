package handler // handler defines http handlers

import (
	"errors"  // errors provides sentinel values used in getUserID
	"strconv" // strconv converts strings to numeric types
	"time"    // time bounds cache invalidation calls

	"github.com/labstack/echo/v4" // echo defines request context types
	"github.com/redis/go-redis/v9"

	"github.com/velopark/parking-admin/internal/config"     // config carries cache settings for invalidation
	"github.com/velopark/parking-admin/internal/middleware" // middleware owns the response cache keys
	"github.com/velopark/parking-admin/internal/model"      // model holds API view types
	"github.com/velopark/parking-admin/internal/repository" // repository holds data access layer
)

// AdminHandler bundles repositories for administrators to manage facilities,
// sections, the bike-type directory and tariffs.
type AdminHandler struct {
	FacilityRepo *repository.FacilityRepo // FacilityRepo provides facility persistence
	SectionRepo  *repository.SectionRepo  // SectionRepo provides section persistence
	BikeTypeRepo *repository.BikeTypeRepo // BikeTypeRepo provides the type directory and the permitted matrix
	TariffRepo   *repository.TariffRepo   // TariffRepo provides tier row persistence

	Cache    *redis.Client      // Cache is optional; nil disables response-cache invalidation
	CacheCfg config.CacheConfig // CacheCfg selects the cache key prefix to invalidate
}

// NewAdminHandler constructs a new AdminHandler and panics if any repository is nil
func NewAdminHandler(fr *repository.FacilityRepo, sr *repository.SectionRepo, br *repository.BikeTypeRepo, tr *repository.TariffRepo, cache *redis.Client, cacheCfg config.CacheConfig) *AdminHandler {
	if fr == nil || sr == nil || br == nil || tr == nil { // check for nil dependencies
		panic("nil repository passed to NewAdminHandler") // panic when a repository is missing
	}
	return &AdminHandler{
		FacilityRepo: fr,
		SectionRepo:  sr,
		BikeTypeRepo: br,
		TariffRepo:   tr,
		Cache:        cache,
		CacheCfg:     cacheCfg,
	}
}

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) { // begin getUserID helper
	v := c.Get("user_id") // fetch user_id from context
	switch t := v.(type) { // perform type switch on the value
	case uint64: // when already uint64
		return t, nil // return directly
	case int: // when stored as int
		return uint64(t), nil // convert to uint64
	case int64: // when stored as int64
		return uint64(t), nil // convert to uint64
	case float64: // when stored as float64
		return uint64(t), nil // convert to uint64
	case string: // when stored as string
		if n, err := strconv.ParseUint(t, 10, 64); err == nil { // parse string to uint64
			return n, nil // return parsed number
		}
	} // end type switch
	return 0, errors.New("invalid user_id in context") // return error if value is missing or invalid
}

// invalidateCaches drops cached GET responses after a mutation so reads see
// fresh data.  A nil redis client makes this a no-op.
func (h *AdminHandler) invalidateCaches() {
	if h.Cache == nil || !h.CacheCfg.Enabled {
		return
	}
	middleware.InvalidateCache(h.CacheCfg, h.Cache, 2*time.Second)
}

// facilityView converts a repository facility into its API representation
func facilityView(f *repository.Facility) model.Facility {
	out := model.Facility{
		ID:                     f.ID,
		Name:                   f.Name,
		UniformAcrossSections:  f.UniformAcrossSections,
		UniformAcrossBikeTypes: f.UniformAcrossBikeTypes,
		IsActive:               f.IsActive,
		CreatedAt:              f.CreatedAt,
		UpdatedAt:              f.UpdatedAt,
	}
	if f.Address.Valid { // expose the address only when present
		addr := f.Address.String
		out.Address = &addr
	}
	return out
}

// sectionView converts a repository section plus its permitted-type matrix
// into the API representation
func sectionView(s *repository.Section, matrix []*repository.SectionBikeType) model.Section {
	out := model.Section{
		ID:         s.ID,
		FacilityID: s.FacilityID,
		Title:      s.Title,
		IsActive:   s.IsActive,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	if s.Capacity.Valid { // expose capacity only when set
		capacity := s.Capacity.Int32
		out.Capacity = &capacity
	}
	out.PermittedBikeTypes = make([]model.PermittedBikeType, 0, len(matrix))
	for _, m := range matrix { // copy matrix entries in repository order
		out.PermittedBikeTypes = append(out.PermittedBikeTypes, model.PermittedBikeType{
			SectionBikeTypeID: m.ID,
			BikeTypeID:        m.BikeTypeID,
			Allowed:           m.Allowed,
		})
	}
	return out
}

// bikeTypeView converts a repository bike type into its API representation
func bikeTypeView(bt *repository.BikeType) model.BikeType {
	return model.BikeType{
		ID:        bt.ID,
		Code:      bt.Code,
		Label:     bt.Label,
		CreatedAt: bt.CreatedAt,
		UpdatedAt: bt.UpdatedAt,
	}
}
