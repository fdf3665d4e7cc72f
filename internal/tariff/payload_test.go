package tariff

import "testing"

func TestPayloadFlagOnlySaveOmitsTiers(t *testing.T) {
	s := facilitySession(t, nil) // no rows anywhere
	s.SetFlags(Flags{UniformAcrossSections: false, UniformAcrossBikeTypes: true})

	if !s.CanSave() {
		t.Fatal("a pure flag change must be saveable")
	}
	p := s.Payload()
	if p.UniformAcrossSections == nil || *p.UniformAcrossSections {
		t.Fatalf("changed flag must be present and false, got %+v", p.UniformAcrossSections)
	}
	if p.UniformAcrossBikeTypes != nil {
		t.Fatal("unchanged flag must be omitted")
	}
	if p.Tiers != nil {
		t.Fatal("tiers must be omitted when no tier changed")
	}
}

func TestPayloadTierChangeOmitsUnchangedFlags(t *testing.T) {
	s := facilitySession(t, []Row{{RowID: u64(1), Order: 1, DurationHours: f64(3), Cost: f64(1)}})
	rows := mustRows(t, s, FacilityScopeKey)
	if _, err := s.SetField(FacilityScopeKey, rows[0].Key, FieldCost, f64(2.5)); err != nil {
		t.Fatal(err)
	}
	p := s.Payload()
	if p.UniformAcrossSections != nil || p.UniformAcrossBikeTypes != nil {
		t.Fatalf("unchanged flags must be omitted, got %+v", p)
	}
	entries, ok := p.Tiers[FacilityScopeKey]
	if !ok || len(entries) != 1 {
		t.Fatalf("want one facility tier, got %+v", p.Tiers)
	}
	if entries[0].Order != 1 || entries[0].DurationHours != 3 || entries[0].Cost != 2.5 {
		t.Fatalf("unexpected tier entry %+v", entries[0])
	}
}

func TestPayloadStripsPlaceholdersAndRenumbers(t *testing.T) {
	s := facilitySession(t, []Row{
		{RowID: u64(1), Order: 1, DurationHours: f64(3), Cost: f64(1)},
		{RowID: u64(2), Order: 2, DurationHours: f64(24), Cost: f64(2)},
	})
	rows := mustRows(t, s, FacilityScopeKey)
	// Delete the first row; the survivor must come out as order 1.
	if _, err := s.SetField(FacilityScopeKey, rows[0].Key, FieldDuration, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetField(FacilityScopeKey, rows[0].Key, FieldCost, nil); err != nil {
		t.Fatal(err)
	}
	p := s.Payload()
	entries := p.Tiers[FacilityScopeKey]
	if len(entries) != 1 {
		t.Fatalf("placeholder must not be serialized, got %+v", entries)
	}
	if entries[0].Order != 1 || entries[0].DurationHours != 24 {
		t.Fatalf("surviving tier must restart at order 1, got %+v", entries[0])
	}
}

// TestSaveRoundTrip simulates the full cycle: edit, build the payload, let a
// pretend server assign ids and echo authoritative state, reload the session.
// Diffing the reloaded draft against itself must come out empty.
func TestSaveRoundTrip(t *testing.T) {
	s := facilitySession(t, []Row{{RowID: u64(1), Order: 1, DurationHours: f64(3), Cost: f64(1)}})
	rows := mustRows(t, s, FacilityScopeKey)
	if _, err := s.SetField(FacilityScopeKey, rows[len(rows)-1].Key, FieldCost, f64(2)); err != nil {
		t.Fatal(err)
	}
	converted := mustRows(t, s, FacilityScopeKey)[1]
	if _, err := s.SetField(FacilityScopeKey, converted.Key, FieldDuration, f64(12)); err != nil {
		t.Fatal(err)
	}
	if !s.CanSave() {
		t.Fatal("session must be saveable before the round trip")
	}

	// Pretend server: persist the payload, assigning fresh row ids.
	p := s.Payload()
	var saved []Row
	nextID := uint64(100)
	for key, entries := range p.Tiers {
		for _, e := range entries {
			nextID++
			id, d, c := nextID, e.DurationHours, e.Cost
			saved = append(saved, Row{RowID: &id, ScopeKey: key, Order: e.Order, DurationHours: &d, Cost: &c})
		}
	}
	s.ApplySaved(Loaded{Flags: s.Flags(), Rows: saved})

	if got := s.Changes(); len(got) != 0 {
		t.Fatalf("post-save session must diff empty, got %+v", got)
	}
	if s.CanSave() {
		t.Fatal("post-save session must have nothing to save")
	}
	rows = mustRows(t, s, FacilityScopeKey)
	if len(rows) != 3 {
		t.Fatalf("want 2 saved rows + placeholder, got %d", len(rows))
	}
	checkScopeInvariants(t, rows)
}

func TestValidateSavePayload(t *testing.T) {
	sections, names := twoHallTopology()
	flags := Flags{UniformAcrossSections: false, UniformAcrossBikeTypes: true}
	scopes := ResolveScopes(flags, sections, names)

	ok := SavePayload{Tiers: map[string][]TierEntry{
		"section:1": {{Order: 1, DurationHours: 3, Cost: 1}, {Order: 2, DurationHours: 24, Cost: 2}},
	}}
	if err := ValidateSavePayload(ok, scopes); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}
	if err := ValidateSavePayload(SavePayload{}, scopes); err != nil {
		t.Fatalf("flag-only payload rejected: %v", err)
	}

	bad := []SavePayload{
		{Tiers: map[string][]TierEntry{"section:9": {{Order: 1, DurationHours: 3, Cost: 1}}}},  // unknown scope
		{Tiers: map[string][]TierEntry{"facility": {{Order: 1, DurationHours: 3, Cost: 1}}}},   // wrong granularity
		{Tiers: map[string][]TierEntry{"weird": {{Order: 1, DurationHours: 3, Cost: 1}}}},      // malformed key
		{Tiers: map[string][]TierEntry{"section:1": {{Order: 2, DurationHours: 3, Cost: 1}}}},  // gap in orders
		{Tiers: map[string][]TierEntry{"section:1": {{Order: 1, DurationHours: 0, Cost: 1}}}},  // zero duration
		{Tiers: map[string][]TierEntry{"section:1": {{Order: 1, DurationHours: 3, Cost: -1}}}}, // negative cost
	}
	for i, p := range bad {
		if err := ValidateSavePayload(p, scopes); err == nil {
			t.Fatalf("payload %d must be rejected", i)
		}
	}
}
