package tariff

import "testing"

func f64(v float64) *float64 { return &v }
func u64(v uint64) *uint64   { return &v }

// twoHallTopology is the fixture used across the package tests: two sections,
// three bike types, one type shared between the sections.
func twoHallTopology() ([]Section, map[uint64]string) {
	sections := []Section{
		{
			SectionID: 1,
			Title:     "North hall",
			PermittedBikeTypes: []PermittedBikeType{
				{SectionBikeTypeID: 11, BikeTypeID: 101, Allowed: true},
				{SectionBikeTypeID: 12, BikeTypeID: 102, Allowed: true},
			},
		},
		{
			SectionID: 2,
			Title:     "South hall",
			PermittedBikeTypes: []PermittedBikeType{
				{SectionBikeTypeID: 21, BikeTypeID: 101, Allowed: true},
				{SectionBikeTypeID: 22, BikeTypeID: 103, Allowed: true},
			},
		},
	}
	names := map[uint64]string{101: "Bike", 102: "Moped", 103: "Cargo bike"}
	return sections, names
}

func scopeKeys(scopes []Scope) []string {
	keys := make([]string, 0, len(scopes))
	for _, s := range scopes {
		keys = append(keys, s.Key)
	}
	return keys
}

func TestResolveScopesRuleTable(t *testing.T) {
	sections, names := twoHallTopology()
	cases := []struct {
		name  string
		flags Flags
		want  []string
	}{
		{"facility wide", Flags{UniformAcrossSections: true, UniformAcrossBikeTypes: true}, []string{"facility"}},
		{"per section", Flags{UniformAcrossSections: false, UniformAcrossBikeTypes: true}, []string{"section:1", "section:2"}},
		// Distinct permitted types across all sections, first occurrence
		// wins: the Bike type recurs in section 2 and must not produce a
		// second scope.
		{"per bike type", Flags{UniformAcrossSections: true, UniformAcrossBikeTypes: false}, []string{"bikeType:11", "bikeType:12", "bikeType:22"}},
		{"per pair", Flags{UniformAcrossSections: false, UniformAcrossBikeTypes: false}, []string{"bikeType:11", "bikeType:12", "bikeType:21", "bikeType:22"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := scopeKeys(ResolveScopes(tc.flags, sections, names))
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("scope %d: got %v, want %v", i, got, tc.want)
				}
			}
		})
	}
}

func TestResolveScopesPerTypeIgnoresSectionCount(t *testing.T) {
	// Three sections all permitting the same two types must still yield
	// exactly two per-type scopes.
	var sections []Section
	for i := uint64(1); i <= 3; i++ {
		sections = append(sections, Section{
			SectionID: i,
			Title:     "Hall",
			PermittedBikeTypes: []PermittedBikeType{
				{SectionBikeTypeID: i*10 + 1, BikeTypeID: 101, Allowed: true},
				{SectionBikeTypeID: i*10 + 2, BikeTypeID: 102, Allowed: true},
			},
		})
	}
	got := ResolveScopes(Flags{UniformAcrossSections: true}, sections, map[uint64]string{101: "bike", 102: "moped"})
	if len(got) != 2 {
		t.Fatalf("want 2 scopes, got %v", scopeKeys(got))
	}
	if got[0].Key != "bikeType:11" || got[1].Key != "bikeType:12" {
		t.Fatalf("unexpected scope keys %v", scopeKeys(got))
	}
	if got[0].Label != "bike" || got[1].Label != "moped" {
		t.Fatalf("unexpected labels %q %q", got[0].Label, got[1].Label)
	}
}

func TestResolveScopesFallsBackToFacility(t *testing.T) {
	for _, flags := range []Flags{
		{UniformAcrossSections: false, UniformAcrossBikeTypes: true},
		{UniformAcrossSections: true, UniformAcrossBikeTypes: false},
		{UniformAcrossSections: false, UniformAcrossBikeTypes: false},
	} {
		got := ResolveScopes(flags, nil, nil)
		if len(got) != 1 || got[0].Kind != ScopeFacility {
			t.Fatalf("flags %+v: want single facility scope, got %v", flags, scopeKeys(got))
		}
	}
}

func TestResolveScopesSkipsDisallowedTypes(t *testing.T) {
	sections := []Section{{
		SectionID: 1,
		Title:     "Hall",
		PermittedBikeTypes: []PermittedBikeType{
			{SectionBikeTypeID: 11, BikeTypeID: 101, Allowed: false},
			{SectionBikeTypeID: 12, BikeTypeID: 102, Allowed: true},
		},
	}}
	got := ResolveScopes(Flags{}, sections, nil)
	if len(got) != 1 || got[0].Key != "bikeType:12" {
		t.Fatalf("want only the allowed pair scope, got %v", scopeKeys(got))
	}
}

func TestSupplementScopesAddsOrphans(t *testing.T) {
	sections, names := twoHallTopology()
	flags := Flags{UniformAcrossSections: false, UniformAcrossBikeTypes: true}
	scopes := ResolveScopes(flags, sections, names)

	// A legacy row referencing a section that no longer exists must still
	// get a descriptor so it stays visible in the editor.
	rows := []Row{{RowID: u64(7), SectionID: u64(9), DurationHours: f64(1), Cost: f64(2), Order: 1}}
	got := SupplementScopes(scopes, rows, flags)
	if len(got) != len(scopes)+1 {
		t.Fatalf("want one synthesized scope, got %v", scopeKeys(got))
	}
	orphan := got[len(got)-1]
	if orphan.Key != "section:9" || orphan.Kind != ScopeSection {
		t.Fatalf("unexpected orphan scope %+v", orphan)
	}

	// Rows already covered, or incompatible with the flags, add nothing.
	covered := []Row{{RowID: u64(8), SectionID: u64(1), Order: 1}}
	incompatible := []Row{{RowID: u64(9), SectionBikeTypeID: u64(11), Order: 1}}
	if got := SupplementScopes(scopes, covered, flags); len(got) != len(scopes) {
		t.Fatalf("covered row must not synthesize a scope: %v", scopeKeys(got))
	}
	if got := SupplementScopes(scopes, incompatible, flags); len(got) != len(scopes) {
		t.Fatalf("incompatible row must not synthesize a scope: %v", scopeKeys(got))
	}
}

func TestParseScopeKey(t *testing.T) {
	cases := []struct {
		key     string
		kind    ScopeKind
		id      uint64
		wantErr bool
	}{
		{key: "facility", kind: ScopeFacility},
		{key: "section:12", kind: ScopeSection, id: 12},
		{key: "bikeType:34", kind: ScopeBikeType, id: 34},
		{key: "hall:1", wantErr: true},
		{key: "section:abc", wantErr: true},
		{key: "garbage", wantErr: true},
	}
	for _, tc := range cases {
		kind, id, err := ParseScopeKey(tc.key)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.key)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tc.key, err)
		}
		if kind != tc.kind || id != tc.id {
			t.Fatalf("%q: got (%v, %d)", tc.key, kind, id)
		}
	}
}
