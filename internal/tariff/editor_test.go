package tariff

import "testing"

// facilitySession builds a session over an empty topology (single facility
// scope) seeded with the given persisted rows.
func facilitySession(t *testing.T, rows []Row) *Session {
	t.Helper()
	return NewSession(Loaded{
		Flags: Flags{UniformAcrossSections: true, UniformAcrossBikeTypes: true},
		Rows:  rows,
	}, nil, nil)
}

// sectionRows builds n persisted per-section rows, one per section id 1..n.
func sectionRows(n int) []Row {
	var rows []Row
	for i := 1; i <= n; i++ {
		id := uint64(i * 100)
		sec := uint64(i)
		rows = append(rows, Row{RowID: &id, SectionID: &sec, Order: 1, DurationHours: f64(24), Cost: f64(2)})
	}
	return rows
}

func mustRows(t *testing.T, s *Session, scopeKey string) []EditableRow {
	t.Helper()
	rows, err := s.Rows(scopeKey)
	if err != nil {
		t.Fatalf("Rows(%q): %v", scopeKey, err)
	}
	return rows
}

// checkScopeInvariants asserts the editable-list shape every scope must keep:
// real rows numbered 1..N, exactly one placeholder, at order N+1, last.
func checkScopeInvariants(t *testing.T, rows []EditableRow) {
	t.Helper()
	placeholders := 0
	for i, r := range rows {
		if r.Order != i+1 {
			t.Fatalf("row %d has order %d, want %d", i, r.Order, i+1)
		}
		if r.IsPlaceholder {
			placeholders++
			if i != len(rows)-1 {
				t.Fatalf("placeholder at position %d, want last", i)
			}
		}
	}
	if placeholders != 1 {
		t.Fatalf("want exactly one placeholder, got %d", placeholders)
	}
}

func TestNewSessionBuildsPlaceholderTerminatedDraft(t *testing.T) {
	s := facilitySession(t, []Row{
		{RowID: u64(1), Order: 2, DurationHours: f64(24), Cost: f64(2)},
		{RowID: u64(2), Order: 1, DurationHours: f64(3), Cost: f64(1)},
	})
	rows := mustRows(t, s, FacilityScopeKey)
	if len(rows) != 3 {
		t.Fatalf("want 2 real rows + placeholder, got %d rows", len(rows))
	}
	checkScopeInvariants(t, rows)
	// Stored order decides position, not slice order.
	if *rows[0].RowID != 2 || *rows[1].RowID != 1 {
		t.Fatalf("rows not ordered by stored order: %+v", rows)
	}
	if len(s.Changes()) != 0 || s.CanSave() {
		t.Fatal("a fresh session must have nothing to save")
	}
}

func TestPlaceholderConversionAppendsFreshPlaceholder(t *testing.T) {
	s := facilitySession(t, []Row{{RowID: u64(1), Order: 1, DurationHours: f64(3), Cost: f64(1.5)}})
	rows := mustRows(t, s, FacilityScopeKey)
	ph := rows[len(rows)-1]

	hint, err := s.SetField(FacilityScopeKey, ph.Key, FieldCost, f64(2))
	if err != nil {
		t.Fatal(err)
	}
	rows = mustRows(t, s, FacilityScopeKey)
	if len(rows) != 3 {
		t.Fatalf("want converted row + new placeholder, got %d rows", len(rows))
	}
	checkScopeInvariants(t, rows)

	converted := rows[1]
	if converted.IsPlaceholder || converted.Order != 2 {
		t.Fatalf("converted row wrong: %+v", converted)
	}
	if converted.DurationHours != nil || converted.Cost == nil || *converted.Cost != 2 {
		t.Fatalf("converted row values wrong: %+v", converted)
	}
	if converted.Key == ph.Key {
		t.Fatal("conversion must assign a fresh row key")
	}
	if hint.RowKey != converted.Key || hint.Field != FieldCost {
		t.Fatalf("focus hint must follow the converted row, got %+v", hint)
	}

	// Half-filled row blocks saving until the duration arrives.
	if len(s.Issues()) != 1 || s.Issues()[0].Reason != ReasonHalfEmpty {
		t.Fatalf("want one half-empty issue, got %+v", s.Issues())
	}
	if s.CanSave() {
		t.Fatal("invalid row must block saving")
	}
	if _, err := s.SetField(FacilityScopeKey, converted.Key, FieldDuration, f64(12)); err != nil {
		t.Fatal(err)
	}
	if len(s.Issues()) != 0 || !s.CanSave() {
		t.Fatalf("completed row must unblock saving, issues=%+v", s.Issues())
	}
}

func TestTypingDurationOnlyIntoPlaceholderBlocksSave(t *testing.T) {
	s := facilitySession(t, nil)
	rows := mustRows(t, s, FacilityScopeKey)
	if _, err := s.SetField(FacilityScopeKey, rows[0].Key, FieldDuration, f64(24)); err != nil {
		t.Fatal(err)
	}
	if issues := s.Issues(); len(issues) != 1 {
		t.Fatalf("want one issue, got %+v", issues)
	}
	if s.CanSave() {
		t.Fatal("canSave must stay false while the row is half-filled")
	}
}

func TestClearingBothFieldsDeletesRow(t *testing.T) {
	s := facilitySession(t, []Row{
		{RowID: u64(1), Order: 1, DurationHours: f64(3), Cost: f64(1)},
		{RowID: u64(2), Order: 2, DurationHours: f64(24), Cost: f64(2)},
	})
	rows := mustRows(t, s, FacilityScopeKey)
	first := rows[0]

	if _, err := s.SetField(FacilityScopeKey, first.Key, FieldDuration, nil); err != nil {
		t.Fatal(err)
	}
	hint, err := s.SetField(FacilityScopeKey, first.Key, FieldCost, nil)
	if err != nil {
		t.Fatal(err)
	}
	if hint.RowKey != "" {
		t.Fatalf("deleted row must not receive focus, got %+v", hint)
	}
	rows = mustRows(t, s, FacilityScopeKey)
	if len(rows) != 2 {
		t.Fatalf("want 1 real row + placeholder, got %d", len(rows))
	}
	checkScopeInvariants(t, rows)
	if *rows[0].RowID != 2 || rows[0].Order != 1 {
		t.Fatalf("surviving row not renumbered: %+v", rows[0])
	}

	changes := s.Changes()
	if len(changes) != 1 || changes[0].Type != ChangeDeleted || *changes[0].Before.RowID != 1 {
		t.Fatalf("want one deletion for row 1, got %+v", changes)
	}
}

func TestNormalizationIsIdempotent(t *testing.T) {
	s := facilitySession(t, []Row{{RowID: u64(1), Order: 1, DurationHours: f64(3), Cost: f64(1)}})
	rows := mustRows(t, s, FacilityScopeKey)
	if _, err := s.SetField(FacilityScopeKey, rows[len(rows)-1].Key, FieldCost, f64(2)); err != nil {
		t.Fatal(err)
	}
	before := mustRows(t, s, FacilityScopeKey)

	sc, _ := s.scopeByKey(FacilityScopeKey)
	s.draft[FacilityScopeKey] = s.normalize(sc, s.draft[FacilityScopeKey])
	after := mustRows(t, s, FacilityScopeKey)

	if len(before) != len(after) {
		t.Fatalf("normalization drifted: %d rows became %d", len(before), len(after))
	}
	for i := range before {
		if before[i].Key != after[i].Key || before[i].Order != after[i].Order ||
			before[i].IsPlaceholder != after[i].IsPlaceholder {
			t.Fatalf("row %d drifted: %+v vs %+v", i, before[i], after[i])
		}
	}
}

func TestGranularityChangeDiscardsIncompatibleRows(t *testing.T) {
	sections, names := twoHallTopology()
	sections = append(sections, Section{SectionID: 3, Title: "Annex"})
	s := NewSession(Loaded{
		Flags: Flags{UniformAcrossSections: false, UniformAcrossBikeTypes: true},
		Rows:  sectionRows(3),
	}, sections, names)

	s.SetFlags(Flags{UniformAcrossSections: true, UniformAcrossBikeTypes: true})

	if got := len(s.Discarded()); got != 3 {
		t.Fatalf("want 3 discarded rows, got %d", got)
	}
	changes := s.Changes()
	if len(changes) != 3 {
		t.Fatalf("want exactly 3 change entries, got %+v", changes)
	}
	for _, ch := range changes {
		if ch.Type != ChangeDeleted || ch.Scope != IncompatibleScopeKey {
			t.Fatalf("want incompatible-scope deletions only, got %+v", ch)
		}
	}
	if !s.CanSave() {
		t.Fatal("flag change with pending deletions must be saveable")
	}
	// The facility scope replacing the per-section ones starts empty.
	rows := mustRows(t, s, FacilityScopeKey)
	if len(rows) != 1 || !rows[0].IsPlaceholder {
		t.Fatalf("facility scope must hold only the placeholder, got %+v", rows)
	}
}

func TestGranularityToggleBackRestoresRows(t *testing.T) {
	sections, names := twoHallTopology()
	perSection := Flags{UniformAcrossSections: false, UniformAcrossBikeTypes: true}
	s := NewSession(Loaded{Flags: perSection, Rows: sectionRows(2)}, sections, names)

	s.SetFlags(Flags{UniformAcrossSections: true, UniformAcrossBikeTypes: true})
	s.SetFlags(perSection)

	if got := len(s.Discarded()); got != 0 {
		t.Fatalf("toggling back must clear the discard set, got %d", got)
	}
	if changes := s.Changes(); len(changes) != 0 {
		t.Fatalf("toggling back must cancel the pending deletions, got %+v", changes)
	}
	for _, key := range []string{"section:1", "section:2"} {
		rows := mustRows(t, s, key)
		if len(rows) != 2 {
			t.Fatalf("%s: want restored row + placeholder, got %d rows", key, len(rows))
		}
		checkScopeInvariants(t, rows)
	}
	if s.CanSave() {
		t.Fatal("round-tripped flags with no edits must not be saveable")
	}
}

func TestSetFieldUnknownTargets(t *testing.T) {
	s := facilitySession(t, nil)
	if _, err := s.SetField("section:9", "row-1", FieldCost, f64(1)); err != ErrUnknownScope {
		t.Fatalf("want ErrUnknownScope, got %v", err)
	}
	if _, err := s.SetField(FacilityScopeKey, "nope", FieldCost, f64(1)); err != ErrUnknownRow {
		t.Fatalf("want ErrUnknownRow, got %v", err)
	}
	rows := mustRows(t, s, FacilityScopeKey)
	if _, err := s.SetField(FacilityScopeKey, rows[0].Key, Field("price"), f64(1)); err != ErrUnknownField {
		t.Fatalf("want ErrUnknownField, got %v", err)
	}
}
