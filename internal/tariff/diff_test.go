package tariff

import "testing"

func grouped(key string, rows ...Row) Grouped {
	return Grouped{Order: []string{key}, Rows: map[string][]Row{key: rows}}
}

func TestDiffIdenticalSidesIsEmpty(t *testing.T) {
	rows := []Row{
		{RowID: u64(1), Order: 1, DurationHours: f64(3), Cost: f64(1)},
		{RowID: u64(2), Order: 2, DurationHours: f64(24), Cost: f64(2)},
	}
	if got := Diff(grouped("facility", rows...), grouped("facility", rows...), nil); len(got) != 0 {
		t.Fatalf("identical sides must diff empty, got %+v", got)
	}
}

func TestDiffDetectsValueAndOrderChanges(t *testing.T) {
	orig := grouped("facility",
		Row{RowID: u64(1), Order: 1, DurationHours: f64(3), Cost: f64(1)},
		Row{RowID: u64(2), Order: 2, DurationHours: f64(24), Cost: f64(2)},
	)
	draft := grouped("facility",
		Row{RowID: u64(2), Order: 1, DurationHours: f64(24), Cost: f64(2)}, // moved up
		Row{RowID: u64(1), Order: 2, DurationHours: f64(3), Cost: f64(9)},  // price change
	)
	got := Diff(orig, draft, nil)
	if len(got) != 2 {
		t.Fatalf("want 2 updates, got %+v", got)
	}
	for _, ch := range got {
		if ch.Type != ChangeUpdated || ch.Scope != "facility" {
			t.Fatalf("unexpected change %+v", ch)
		}
		if ch.Before == nil || ch.After == nil {
			t.Fatalf("updates must carry before and after: %+v", ch)
		}
	}
	if *got[0].Before.RowID != 1 || *got[0].After.Cost != 9 {
		t.Fatalf("first update wrong: %+v", got[0])
	}
}

func TestDiffCreatedAndDeleted(t *testing.T) {
	orig := grouped("section:1",
		Row{RowID: u64(1), Order: 1, DurationHours: f64(3), Cost: f64(1)},
	)
	draft := grouped("section:1",
		Row{Order: 1, DurationHours: f64(6), Cost: f64(2)}, // no id yet
	)
	got := Diff(orig, draft, nil)
	if len(got) != 2 {
		t.Fatalf("want one deletion and one creation, got %+v", got)
	}
	if got[0].Type != ChangeDeleted || *got[0].Before.RowID != 1 {
		t.Fatalf("unexpected first change %+v", got[0])
	}
	if got[1].Type != ChangeCreated || got[1].After.RowID != nil {
		t.Fatalf("unexpected second change %+v", got[1])
	}
}

func TestDiffScopeOnlyOnOneSide(t *testing.T) {
	orig := grouped("section:1", Row{RowID: u64(1), Order: 1, DurationHours: f64(3), Cost: f64(1)})
	draft := grouped("section:2", Row{Order: 1, DurationHours: f64(6), Cost: f64(2)})
	got := Diff(orig, draft, nil)
	if len(got) != 2 {
		t.Fatalf("want 2 changes, got %+v", got)
	}
	if got[0].Scope != "section:1" || got[0].Type != ChangeDeleted {
		t.Fatalf("unexpected %+v", got[0])
	}
	if got[1].Scope != "section:2" || got[1].Type != ChangeCreated {
		t.Fatalf("unexpected %+v", got[1])
	}
}

func TestDiffAppendsDiscardedAsIncompatibleDeletions(t *testing.T) {
	discarded := []Row{
		{RowID: u64(7), SectionID: u64(1), Order: 1, DurationHours: f64(3), Cost: f64(1)},
		{RowID: u64(8), SectionID: u64(2), Order: 1, DurationHours: f64(3), Cost: f64(1)},
	}
	got := Diff(Grouped{}, Grouped{}, discarded)
	if len(got) != 2 {
		t.Fatalf("want 2 deletions, got %+v", got)
	}
	for i, ch := range got {
		if ch.Scope != IncompatibleScopeKey || ch.Type != ChangeDeleted {
			t.Fatalf("change %d: %+v", i, ch)
		}
		if ch.Before == nil || *ch.Before.RowID != *discarded[i].RowID {
			t.Fatalf("change %d must carry the discarded row: %+v", i, ch)
		}
	}
}
