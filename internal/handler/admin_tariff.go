package handler // handler package contains the tariff editor endpoints

import (
	"context"  // context bounds DB calls and the event publish
	"net/http" // http provides status code constants
	"strconv"  // strconv parses URL parameters to numbers
	"time"     // time stamps the saved event

	"github.com/labstack/echo/v4" // echo framework supplies request context

	"github.com/velopark/parking-admin/internal/queue"      // queue defines the saved-event payload
	"github.com/velopark/parking-admin/internal/repository" // repository persists tariff rows
	"github.com/velopark/parking-admin/internal/service"    // service publishes events to the broker
	"github.com/velopark/parking-admin/internal/tariff"     // tariff is the pricing configuration engine
)

// ----- view types -----

type tariffRowView struct {
	Key           string   `json:"key"`                // client-side row identity, stable across edits
	ID            *uint64  `json:"id,omitempty"`       // storage id, nil for rows not yet persisted
	Order         int      `json:"order"`              // 1-based position within the scope
	DurationHours *float64 `json:"duration_hours"`     // tier length, nil on the placeholder
	Cost          *float64 `json:"cost"`               // tier price, nil on the placeholder
	Placeholder   bool     `json:"placeholder,omitempty"` // trailing always-empty row
}

type tariffScopeView struct {
	Key   string          `json:"key"`   // scope key, e.g. "facility" or "section:3"
	Kind  string          `json:"kind"`  // facility | section | bikeType
	Label string          `json:"label"` // human label shown above the ladder
	Rows  []tariffRowView `json:"rows"`  // editable rows, placeholder last
}

type tariffStateResp struct {
	FacilityID uint64            `json:"facility_id"`
	Flags      tariff.Flags      `json:"flags"`
	Scopes     []tariffScopeView `json:"scopes"`
	Issues     []tariff.RowIssue `json:"issues"`
	CanSave    bool              `json:"can_save"`
}

// ----- shared loading -----

// facilityTopology loads a facility's sections, permitted-type matrix and
// type labels in engine form.
func (h *AdminHandler) facilityTopology(ctx context.Context, facilityID uint64) ([]tariff.Section, map[uint64]string, error) {
	sections, err := h.SectionRepo.ListByFacility(ctx, facilityID)
	if err != nil {
		return nil, nil, err
	}
	matrix, err := h.BikeTypeRepo.ListByFacility(ctx, facilityID)
	if err != nil {
		return nil, nil, err
	}
	bySection := make(map[uint64][]tariff.PermittedBikeType)
	for _, m := range matrix {
		bySection[m.SectionID] = append(bySection[m.SectionID], tariff.PermittedBikeType{
			SectionBikeTypeID: m.ID,
			BikeTypeID:        m.BikeTypeID,
			Allowed:           m.Allowed,
		})
	}
	out := make([]tariff.Section, 0, len(sections))
	for _, s := range sections {
		if !s.IsActive { // inactive sections do not price anything
			continue
		}
		out = append(out, tariff.Section{
			SectionID:          s.ID,
			Title:              s.Title,
			PermittedBikeTypes: bySection[s.ID],
		})
	}
	names, err := h.BikeTypeRepo.Names(ctx)
	if err != nil {
		return nil, nil, err
	}
	return out, names, nil
}

// engineRows converts stored tier rows into engine form.
func engineRows(stored []*repository.TariffRow) []tariff.Row {
	out := make([]tariff.Row, 0, len(stored))
	for _, t := range stored {
		id := t.ID
		dur := t.DurationHours
		cost := t.Cost
		out = append(out, tariff.Row{
			RowID:             &id,
			Order:             t.Position,
			DurationHours:     &dur,
			Cost:              &cost,
			SectionID:         t.SectionID,
			SectionBikeTypeID: t.SectionBikeTypeID,
			BikeTypeID:        t.BikeTypeID,
		})
	}
	return out
}

// editorSession builds a fresh edit session from everything persisted for the
// facility.  The facility row itself is returned for flag access.
func (h *AdminHandler) editorSession(ctx context.Context, facilityID uint64) (*tariff.Session, *repository.Facility, error) {
	f, err := h.FacilityRepo.GetByID(ctx, facilityID)
	if err != nil {
		return nil, nil, err
	}
	sections, names, err := h.facilityTopology(ctx, facilityID)
	if err != nil {
		return nil, nil, err
	}
	stored, err := h.TariffRepo.ListByFacility(ctx, facilityID)
	if err != nil {
		return nil, nil, err
	}
	loaded := tariff.Loaded{
		Flags: tariff.Flags{
			UniformAcrossSections:  f.UniformAcrossSections,
			UniformAcrossBikeTypes: f.UniformAcrossBikeTypes,
		},
		Rows: engineRows(stored),
	}
	return tariff.NewSession(loaded, sections, names), f, nil
}

// stateResp renders a session into the response shape shared by GET and PUT.
func stateResp(facilityID uint64, s *tariff.Session) tariffStateResp {
	resp := tariffStateResp{
		FacilityID: facilityID,
		Flags:      s.Flags(),
		Issues:     s.Issues(),
		CanSave:    s.CanSave(),
	}
	if resp.Issues == nil {
		resp.Issues = []tariff.RowIssue{}
	}
	for _, sc := range s.Scopes() {
		rows, err := s.Rows(sc.Key)
		if err != nil {
			continue
		}
		sv := tariffScopeView{Key: sc.Key, Kind: sc.Kind.String(), Label: sc.Label, Rows: make([]tariffRowView, 0, len(rows))}
		for _, r := range rows {
			sv.Rows = append(sv.Rows, tariffRowView{
				Key:           r.Key,
				ID:            r.RowID,
				Order:         r.Order,
				DurationHours: r.DurationHours,
				Cost:          r.Cost,
				Placeholder:   r.IsPlaceholder,
			})
		}
		resp.Scopes = append(resp.Scopes, sv)
	}
	return resp
}

// ----- endpoints -----

// GetTariffs handles GET /v1/facilities/:id/tariffs.  It returns the
// facility's granularity flags plus one editable row list per pricing scope,
// each terminated by a placeholder row.
func (h *AdminHandler) GetTariffs(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	s, _, err := h.editorSession(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrFacilityNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "facility not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, stateResp(id, s))
}

type previewTierReq struct {
	ID            *uint64  `json:"id"`             // storage id when the row already exists
	Order         int      `json:"order"`          // 1-based position within the scope
	DurationHours *float64 `json:"duration_hours"` // may be nil for a half-filled row
	Cost          *float64 `json:"cost"`           // may be nil for a half-filled row
}

type previewReq struct {
	UniformAcrossSections  *bool                       `json:"uniform_across_sections"`
	UniformAcrossBikeTypes *bool                       `json:"uniform_across_bike_types"`
	Tiers                  map[string][]previewTierReq `json:"tiers"`
}

type previewResp struct {
	Flags          tariff.Flags      `json:"flags"`
	Changes        []tariff.Change   `json:"changes"`
	Issues         []tariff.RowIssue `json:"issues"`
	DiscardedCount int               `json:"discarded_count"`
	CanSave        bool              `json:"can_save"`
}

// PreviewTariffs handles POST /v1/facilities/:id/tariffs/preview.  The client
// sends its full draft (optionally with toggled flags); the server answers
// with the change log the save would produce, validation issues, and how many
// stored rows the requested granularity would discard.  Nothing is persisted.
func (h *AdminHandler) PreviewTariffs(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var req previewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	f, err := h.FacilityRepo.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrFacilityNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "facility not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	flags := tariff.Flags{
		UniformAcrossSections:  f.UniformAcrossSections,
		UniformAcrossBikeTypes: f.UniformAcrossBikeTypes,
	}
	flagsChanged := false
	if req.UniformAcrossSections != nil && *req.UniformAcrossSections != flags.UniformAcrossSections {
		flags.UniformAcrossSections = *req.UniformAcrossSections
		flagsChanged = true
	}
	if req.UniformAcrossBikeTypes != nil && *req.UniformAcrossBikeTypes != flags.UniformAcrossBikeTypes {
		flags.UniformAcrossBikeTypes = *req.UniformAcrossBikeTypes
		flagsChanged = true
	}

	sections, names, err := h.facilityTopology(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	stored, err := h.TariffRepo.ListByFacility(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	// Supplement with scopes the topology no longer explains, so rows under a
	// removed section stay addressable in the draft.
	scopes := tariff.SupplementScopes(tariff.ResolveScopes(flags, sections, names), engineRows(stored), flags)
	byKey := make(map[string]tariff.Scope, len(scopes))
	for _, sc := range scopes {
		byKey[sc.Key] = sc
	}

	// Snapshot: stored rows classified under the requested granularity.  Rows
	// the granularity cannot express come back in the discard bucket and turn
	// into deletions in the change log.
	cls := tariff.Classify(engineRows(stored), flags)

	// Draft: the client's tier lists, keyed the same way.
	var issues []tariff.RowIssue
	draft := tariff.Grouped{Rows: make(map[string][]tariff.Row)}
	for _, sc := range scopes {
		entries, ok := req.Tiers[sc.Key]
		if !ok {
			continue
		}
		rows := make([]tariff.Row, 0, len(entries))
		for _, e := range entries {
			if e.DurationHours == nil && e.Cost == nil {
				continue // fully empty rows are placeholders, not tiers
			}
			if reason, bad := tariff.TierInvalid(e.DurationHours, e.Cost); bad {
				issues = append(issues, tariff.RowIssue{ScopeKey: sc.Key, Order: e.Order, Reason: reason})
			}
			r := tariff.Row{
				RowID:             e.ID,
				ScopeKey:          sc.Key,
				Order:             e.Order,
				DurationHours:     e.DurationHours,
				Cost:              e.Cost,
				SectionID:         sc.SectionID,
				SectionBikeTypeID: sc.SectionBikeTypeID,
				BikeTypeID:        sc.BikeTypeID,
			}
			rows = append(rows, r)
		}
		draft.Order = append(draft.Order, sc.Key)
		draft.Rows[sc.Key] = rows
	}
	for key := range req.Tiers {
		if _, ok := byKey[key]; !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown scope key: " + key})
		}
	}

	changes := tariff.Diff(cls.Grouped, draft, cls.Discarded)
	if changes == nil {
		changes = []tariff.Change{}
	}
	if issues == nil {
		issues = []tariff.RowIssue{}
	}
	return c.JSON(http.StatusOK, previewResp{
		Flags:          flags,
		Changes:        changes,
		Issues:         issues,
		DiscardedCount: len(cls.Discarded),
		CanSave:        (len(changes) > 0 || flagsChanged) && len(issues) == 0,
	})
}

// SaveTariffs handles PUT /v1/facilities/:id/tariffs.  The body is the save
// payload produced by the editor: granularity flags only when they changed,
// and a full tier replacement only when tier rows changed.  A flag change
// without a tiers key still rewrites the stored rows, because the new
// granularity may make some of them unexpressible; those are dropped here.
func (h *AdminHandler) SaveTariffs(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var p tariff.SavePayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if p.Empty() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "nothing to save"})
	}

	ctx := c.Request().Context()
	f, err := h.FacilityRepo.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrFacilityNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "facility not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	flags := tariff.Flags{
		UniformAcrossSections:  f.UniformAcrossSections,
		UniformAcrossBikeTypes: f.UniformAcrossBikeTypes,
	}
	if p.UniformAcrossSections != nil {
		flags.UniformAcrossSections = *p.UniformAcrossSections
	}
	if p.UniformAcrossBikeTypes != nil {
		flags.UniformAcrossBikeTypes = *p.UniformAcrossBikeTypes
	}

	sections, names, err := h.facilityTopology(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	stored, err := h.TariffRepo.ListByFacility(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	// Orphan scopes (rows under removed topology) remain valid save targets.
	scopes := tariff.SupplementScopes(tariff.ResolveScopes(flags, sections, names), engineRows(stored), flags)

	var newRows []repository.TariffRow
	if p.Tiers != nil {
		if err := tariff.ValidateSavePayload(p, scopes); err != nil {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		}
		for _, sc := range scopes { // deterministic insert order
			for _, e := range p.Tiers[sc.Key] {
				newRows = append(newRows, repository.TariffRow{
					FacilityID:        id,
					SectionID:         sc.SectionID,
					SectionBikeTypeID: sc.SectionBikeTypeID,
					Position:          e.Order,
					DurationHours:     e.DurationHours,
					Cost:              e.Cost,
				})
			}
		}
	} else {
		// Flags-only save: keep the stored rows the new granularity can still
		// express and drop the rest.
		cls := tariff.Classify(engineRows(stored), flags)
		for _, key := range cls.Keys() {
			for _, r := range cls.Rows[key] {
				newRows = append(newRows, repository.TariffRow{
					FacilityID:        id,
					SectionID:         r.SectionID,
					SectionBikeTypeID: r.SectionBikeTypeID,
					Position:          r.Order,
					DurationHours:     *r.DurationHours,
					Cost:              *r.Cost,
				})
			}
		}
	}

	if err := h.TariffRepo.Save(ctx, id, p.UniformAcrossSections, p.UniformAcrossBikeTypes, newRows, true); err != nil {
		if err == repository.ErrFacilityNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "facility not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "save failed"})
	}
	h.invalidateCaches()

	// Reload and answer with the authoritative state so the editor can reset
	// its baseline to what is actually stored.
	s, saved, err := h.editorSession(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}

	// Best effort: a failed publish never fails the save.
	pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = service.PublishTariffSaved(pubCtx, queue.TariffSavedEvent{
		FacilityID:             id,
		FacilityName:           saved.Name,
		UniformAcrossSections:  saved.UniformAcrossSections,
		UniformAcrossBikeTypes: saved.UniformAcrossBikeTypes,
		ScopeCount:             len(s.Scopes()),
		RowCount:               len(newRows),
		SavedBy:                uid,
		SavedAt:                time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, stateResp(id, s))
}
