package handler

import (
	"testing"

	"github.com/velopark/parking-admin/internal/repository"
	"github.com/velopark/parking-admin/internal/tariff"
)

func u64(v uint64) *uint64 { return &v }

func TestEngineRowsConversion(t *testing.T) {
	stored := []*repository.TariffRow{
		{ID: 1, FacilityID: 7, Position: 1, DurationHours: 2, Cost: 10},
		{ID: 2, FacilityID: 7, SectionID: u64(3), Position: 1, DurationHours: 24, Cost: 50},
		{ID: 3, FacilityID: 7, SectionID: u64(3), SectionBikeTypeID: u64(9), BikeTypeID: u64(4), Position: 2, DurationHours: 48, Cost: 80},
	}
	rows := engineRows(stored)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].RowID == nil || *rows[0].RowID != 1 {
		t.Errorf("row 0: wrong id %v", rows[0].RowID)
	}
	if rows[0].SectionID != nil || rows[0].SectionBikeTypeID != nil {
		t.Errorf("row 0 should be facility-wide")
	}
	if rows[1].SectionID == nil || *rows[1].SectionID != 3 {
		t.Errorf("row 1: wrong section %v", rows[1].SectionID)
	}
	if rows[2].SectionBikeTypeID == nil || *rows[2].SectionBikeTypeID != 9 {
		t.Errorf("row 2: wrong section bike type %v", rows[2].SectionBikeTypeID)
	}
	if rows[0].DurationHours == nil || *rows[0].DurationHours != 2 || rows[0].Cost == nil || *rows[0].Cost != 10 {
		t.Errorf("row 0: values not carried over")
	}
	// Pointers must not alias the loop variable across rows.
	if rows[0].DurationHours == rows[1].DurationHours {
		t.Errorf("duration pointers alias each other")
	}
}

func TestStateRespShape(t *testing.T) {
	dur, cost := 2.0, 10.0
	loaded := tariff.Loaded{
		Flags: tariff.Flags{UniformAcrossSections: true, UniformAcrossBikeTypes: true},
		Rows: []tariff.Row{
			{RowID: u64(1), Order: 1, DurationHours: &dur, Cost: &cost},
		},
	}
	sections := []tariff.Section{{SectionID: 1, Title: "Main hall"}}
	s := tariff.NewSession(loaded, sections, nil)

	resp := stateResp(42, s)
	if resp.FacilityID != 42 {
		t.Fatalf("facility id = %d", resp.FacilityID)
	}
	if !resp.Flags.UniformAcrossSections || !resp.Flags.UniformAcrossBikeTypes {
		t.Errorf("flags not carried over: %+v", resp.Flags)
	}
	if len(resp.Scopes) != 1 {
		t.Fatalf("expected a single facility scope, got %d", len(resp.Scopes))
	}
	sc := resp.Scopes[0]
	if sc.Key != tariff.FacilityScopeKey || sc.Kind != "facility" {
		t.Errorf("unexpected scope %q kind %q", sc.Key, sc.Kind)
	}
	// One real row plus the trailing placeholder.
	if len(sc.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(sc.Rows))
	}
	if sc.Rows[0].Placeholder || sc.Rows[0].ID == nil || *sc.Rows[0].ID != 1 {
		t.Errorf("first row should be the stored tier: %+v", sc.Rows[0])
	}
	if !sc.Rows[1].Placeholder || sc.Rows[1].DurationHours != nil || sc.Rows[1].Cost != nil {
		t.Errorf("last row should be the empty placeholder: %+v", sc.Rows[1])
	}
	// A clean just-loaded session has nothing to save.
	if resp.CanSave {
		t.Errorf("fresh session must not be saveable")
	}
	if len(resp.Issues) != 0 {
		t.Errorf("fresh session must have no issues: %+v", resp.Issues)
	}
}
