package tariff

import "testing"

func TestRowScopeKeyCompatibility(t *testing.T) {
	facilityRow := Row{RowID: u64(1)}
	sectionRow := Row{RowID: u64(2), SectionID: u64(5)}
	pairRow := Row{RowID: u64(3), SectionID: u64(5), SectionBikeTypeID: u64(51)}
	typeOnlyRow := Row{RowID: u64(4), SectionBikeTypeID: u64(51)}

	cases := []struct {
		name  string
		flags Flags
		row   Row
		key   string
		ok    bool
	}{
		{"facility row under uniform flags", Flags{true, true}, facilityRow, "facility", true},
		{"section row under uniform flags", Flags{true, true}, sectionRow, "", false},
		{"pair row under uniform flags", Flags{true, true}, pairRow, "", false},

		{"section row under per-section flags", Flags{false, true}, sectionRow, "section:5", true},
		{"facility row under per-section flags", Flags{false, true}, facilityRow, "", false},
		{"pair row under per-section flags", Flags{false, true}, pairRow, "", false},

		// Per-type granularity only requires the pair reference, so rows
		// that also carry a section id remain usable.
		{"type-only row under per-type flags", Flags{true, false}, typeOnlyRow, "bikeType:51", true},
		{"pair row under per-type flags", Flags{true, false}, pairRow, "bikeType:51", true},
		{"section row under per-type flags", Flags{true, false}, sectionRow, "", false},

		{"pair row under pair flags", Flags{false, false}, pairRow, "bikeType:51", true},
		{"type-only row under pair flags", Flags{false, false}, typeOnlyRow, "", false},
		{"facility row under pair flags", Flags{false, false}, facilityRow, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, ok := rowScopeKey(tc.row, tc.flags)
			if ok != tc.ok || key != tc.key {
				t.Fatalf("got (%q, %v), want (%q, %v)", key, ok, tc.key, tc.ok)
			}
		})
	}
}

func TestClassifyGroupsSortsAndRenumbers(t *testing.T) {
	rows := []Row{
		// Stored out of order and with gaps; section 5 and section 6 mixed.
		{RowID: u64(1), SectionID: u64(5), Order: 7, DurationHours: f64(24), Cost: f64(3)},
		{RowID: u64(2), SectionID: u64(6), Order: 2, DurationHours: f64(12), Cost: f64(2)},
		{RowID: u64(3), SectionID: u64(5), Order: 2, DurationHours: f64(6), Cost: f64(1)},
		// Incompatible with per-section granularity.
		{RowID: u64(4), SectionID: u64(5), SectionBikeTypeID: u64(51), Order: 1, DurationHours: f64(1), Cost: f64(1)},
	}
	cls := Classify(rows, Flags{UniformAcrossSections: false, UniformAcrossBikeTypes: true})

	if len(cls.Discarded) != 1 || *cls.Discarded[0].RowID != 4 {
		t.Fatalf("unexpected discard set %+v", cls.Discarded)
	}
	sec5 := cls.Rows["section:5"]
	if len(sec5) != 2 || *sec5[0].RowID != 3 || *sec5[1].RowID != 1 {
		t.Fatalf("section:5 not sorted by stored order: %+v", sec5)
	}
	if sec5[0].Order != 1 || sec5[1].Order != 2 {
		t.Fatalf("section:5 not renumbered contiguously: %+v", sec5)
	}
	if got := cls.Rows["section:6"]; len(got) != 1 || got[0].Order != 1 {
		t.Fatalf("section:6 not renumbered: %+v", got)
	}

	// Every input row must land in exactly one bucket or the discard set.
	total := len(cls.Discarded)
	for _, key := range cls.Keys() {
		total += len(cls.Rows[key])
	}
	if total != len(rows) {
		t.Fatalf("classification lost or duplicated rows: %d of %d accounted for", total, len(rows))
	}
}

func TestClassifyDoesNotAliasInput(t *testing.T) {
	rows := []Row{{RowID: u64(1), DurationHours: f64(3), Cost: f64(1), Order: 1}}
	cls := Classify(rows, Flags{UniformAcrossSections: true, UniformAcrossBikeTypes: true})
	*cls.Rows["facility"][0].Cost = 99
	if *rows[0].Cost != 1 {
		t.Fatal("classification must deep-copy rows")
	}
}
