package tariff

import (
	"errors"
	"fmt"
	"sort"
)

// Field names the two editable columns of a tier row.
type Field string

const (
	FieldDuration Field = "duration_hours"
	FieldCost     Field = "cost"
)

// Errors returned by Session edit operations.
var (
	ErrUnknownScope = errors.New("unknown scope")
	ErrUnknownRow   = errors.New("unknown row")
	ErrUnknownField = errors.New("unknown field")
)

// EditableRow is a tier row plus the per-session metadata the editor needs:
// a stable identity that survives re-normalization, the placeholder marker,
// and an order token that tie-breaks newly added rows against existing ones.
type EditableRow struct {
	Row
	Key           string `json:"key"`            // stable identity within the session
	IsPlaceholder bool   `json:"is_placeholder"` // the single trailing blank row of a scope
	orderToken    int64  // logical clock; preserves insertion order across renumbering
}

// FocusHint tells the UI which row and field should regain focus after a
// draft rebuild.  RowKey is empty when the edited row no longer exists
// (the operator cleared both fields, deleting it).
type FocusHint struct {
	ScopeKey string `json:"scope_key"`
	RowKey   string `json:"row_key"`
	Field    Field  `json:"field"`
}

// Loaded is the tariff state handed to the engine by the load call: the
// persisted granularity flags plus every stored tier row of the facility.
type Loaded struct {
	Flags Flags `json:"flags"`
	Rows  []Row `json:"rows"`
}

// Session owns one facility-tariff edit session: the immutable persisted
// baseline, the operator's per-scope draft, and the active granularity flags.
// It is single-writer by construction; every mutation rebuilds the affected
// scope's row list before the next event is processed.
type Session struct {
	flags      Flags
	savedFlags Flags
	sections   []Section
	typeNames  map[uint64]string
	baseline   []Row // persisted rows as loaded; read-only diff base
	scopes     []Scope
	draft      map[string][]*EditableRow
	nextKey    uint64
	nextToken  int64
}

// NewSession starts an edit session from freshly loaded tariff state and the
// facility topology.  The topology is read-only for the whole session.
func NewSession(loaded Loaded, sections []Section, typeNames map[uint64]string) *Session {
	s := &Session{
		sections:  sections,
		typeNames: typeNames,
	}
	s.reset(loaded)
	return s
}

// reset (re)builds the whole session from persisted state.  Also used after a
// successful save, when the server's authoritative response replaces the
// baseline.
func (s *Session) reset(loaded Loaded) {
	s.flags = loaded.Flags
	s.savedFlags = loaded.Flags
	s.baseline = make([]Row, 0, len(loaded.Rows))
	for _, r := range loaded.Rows {
		s.baseline = append(s.baseline, r.Clone())
	}

	cls := Classify(s.baseline, s.flags)
	s.scopes = SupplementScopes(ResolveScopes(s.flags, s.sections, s.typeNames), s.baseline, s.flags)
	s.draft = map[string][]*EditableRow{}
	for _, sc := range s.scopes {
		var list []*EditableRow
		for _, r := range cls.Rows[sc.Key] {
			list = append(list, s.wrap(r))
		}
		s.draft[sc.Key] = s.normalize(sc, list)
	}
}

// wrap turns a classified row into an editable row with a fresh identity and
// the next order token, so untouched rows keep their storage order.
func (s *Session) wrap(r Row) *EditableRow {
	return &EditableRow{Row: r.Clone(), Key: s.newRowKey(), orderToken: s.tick()}
}

func (s *Session) newRowKey() string {
	s.nextKey++
	return fmt.Sprintf("row-%d", s.nextKey)
}

func (s *Session) tick() int64 {
	s.nextToken++
	return s.nextToken
}

// Flags returns the granularity flags currently active in the draft.
func (s *Session) Flags() Flags { return s.flags }

// Scopes returns the ordered scope descriptors of the current draft.
func (s *Session) Scopes() []Scope {
	out := make([]Scope, len(s.scopes))
	copy(out, s.scopes)
	return out
}

// Rows returns value copies of a scope's editable rows, placeholder included.
func (s *Session) Rows(scopeKey string) ([]EditableRow, error) {
	list, ok := s.draft[scopeKey]
	if !ok {
		return nil, ErrUnknownScope
	}
	out := make([]EditableRow, 0, len(list))
	for _, er := range list {
		c := *er
		c.Row = er.Row.Clone()
		out = append(out, c)
	}
	return out, nil
}

// SetField applies one operator edit to a row's duration or cost and
// re-normalizes the scope.  The returned hint names the row identity that
// should regain focus; when the edit converted the placeholder into a real
// row the hint carries the row's new key.
func (s *Session) SetField(scopeKey, rowKey string, field Field, value *float64) (FocusHint, error) {
	sc, ok := s.scopeByKey(scopeKey)
	if !ok {
		return FocusHint{}, ErrUnknownScope
	}
	list := s.draft[scopeKey]
	var target *EditableRow
	for _, er := range list {
		if er.Key == rowKey {
			target = er
			break
		}
	}
	if target == nil {
		return FocusHint{}, ErrUnknownRow
	}
	switch field {
	case FieldDuration:
		target.DurationHours = cloneFloat64(value)
	case FieldCost:
		target.Cost = cloneFloat64(value)
	default:
		return FocusHint{}, ErrUnknownField
	}

	s.draft[scopeKey] = s.normalize(sc, list)

	hint := FocusHint{ScopeKey: scopeKey, Field: field}
	for _, er := range s.draft[scopeKey] {
		if er == target {
			hint.RowKey = er.Key // key may be fresh if the placeholder converted
			break
		}
	}
	return hint, nil
}

// normalize rebuilds one scope's editable list so that its invariants hold
// again: no fully cleared real rows, orders contiguous from 1, and
// exactly one trailing placeholder.  Running it twice in a row is a no-op.
func (s *Session) normalize(sc Scope, list []*EditableRow) []*EditableRow {
	var real []*EditableRow
	var spare *EditableRow // an untouched placeholder we can reuse
	for _, er := range list {
		if er.IsPlaceholder {
			if er.DurationHours == nil && er.Cost == nil {
				spare = er
				continue
			}
			// The operator typed into the placeholder: promote it to a real
			// row under a fresh identity and stamp it with the current edit
			// clock so it sorts after everything already present.
			er.IsPlaceholder = false
			er.Key = s.newRowKey()
			er.orderToken = s.tick()
			s.bindScope(&er.Row, sc)
			real = append(real, er)
			continue
		}
		if er.DurationHours == nil && er.Cost == nil {
			continue // both fields cleared: the row is deleted interactively
		}
		real = append(real, er)
	}

	sort.SliceStable(real, func(i, j int) bool { return real[i].orderToken < real[j].orderToken })
	for i, er := range real {
		er.Order = i + 1
	}

	if spare == nil {
		spare = &EditableRow{
			Row:           Row{ScopeKey: sc.Key},
			Key:           s.newRowKey(),
			IsPlaceholder: true,
		}
	}
	spare.Order = len(real) + 1
	return append(real, spare)
}

// bindScope stamps a newly created row with the structural ids its scope
// represents, so classification and persistence know where it belongs.
func (s *Session) bindScope(r *Row, sc Scope) {
	r.ScopeKey = sc.Key
	r.SectionID = cloneUint64(sc.SectionID)
	r.BikeTypeID = cloneUint64(sc.BikeTypeID)
	r.SectionBikeTypeID = cloneUint64(sc.SectionBikeTypeID)
}

func (s *Session) scopeByKey(key string) (Scope, bool) {
	for _, sc := range s.scopes {
		if sc.Key == key {
			return sc, true
		}
	}
	return Scope{}, false
}

// SetFlags switches the active granularity and reclassifies the draft.  Rows
// that stay compatible keep their identity and any unsaved edits; persisted
// rows that become incompatible drop out of the draft (they surface through
// Discarded and become deletions on save); unsaved rows that become
// incompatible are dropped outright since nothing exists in storage to
// delete.  Toggling the flags back before saving therefore restores the
// previously discarded rows from the baseline.
func (s *Session) SetFlags(flags Flags) {
	if flags == s.flags {
		return
	}

	// Collect candidates: the draft's real rows (carrying unsaved edits) plus
	// any baseline row currently absent from the draft, e.g. rows discarded
	// by an earlier toggle that the new flags make meaningful again.
	inDraft := map[uint64]bool{}
	var candidates []*EditableRow
	for _, sc := range s.scopes {
		for _, er := range s.draft[sc.Key] {
			if er.IsPlaceholder {
				continue
			}
			if er.RowID != nil {
				inDraft[*er.RowID] = true
			}
			candidates = append(candidates, er)
		}
	}
	for _, b := range s.baseline {
		if b.RowID != nil && !inDraft[*b.RowID] {
			candidates = append(candidates, s.wrap(b))
		}
	}

	s.flags = flags

	// Regroup the survivors under the new flags.
	grouped := map[string][]*EditableRow{}
	var compatible []Row
	for _, er := range candidates {
		key, ok := rowScopeKey(er.Row, flags)
		if !ok {
			continue
		}
		er.ScopeKey = key
		grouped[key] = append(grouped[key], er)
		compatible = append(compatible, er.Row)
	}

	s.scopes = SupplementScopes(ResolveScopes(flags, s.sections, s.typeNames), compatible, flags)
	s.draft = map[string][]*EditableRow{}
	for _, sc := range s.scopes {
		list := grouped[sc.Key]
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Order != list[j].Order {
				return list[i].Order < list[j].Order
			}
			return list[i].orderToken < list[j].orderToken
		})
		for i, er := range list {
			er.Order = i + 1
			er.orderToken = s.tick() // refresh the clock so future sorts stay stable
		}
		s.draft[sc.Key] = s.normalize(sc, list)
	}
}

// Discarded returns the persisted rows that are structurally incompatible
// with the currently active flags.  Non-empty output is what the UI turns
// into the "N rows will be removed" warning before the operator commits.
func (s *Session) Discarded() []Row {
	var out []Row
	for _, b := range s.baseline {
		if _, ok := rowScopeKey(b, s.flags); !ok {
			out = append(out, b.Clone())
		}
	}
	return out
}

// Issues validates every real row of the draft.  An empty result is a
// precondition for saving.
func (s *Session) Issues() []RowIssue {
	var out []RowIssue
	for _, sc := range s.scopes {
		for _, er := range s.draft[sc.Key] {
			if er.IsPlaceholder {
				continue // placeholders are never invalid
			}
			if reason, bad := TierInvalid(er.DurationHours, er.Cost); bad {
				out = append(out, RowIssue{ScopeKey: sc.Key, RowKey: er.Key, Order: er.Order, Reason: reason})
			}
		}
	}
	return out
}

// draftGrouped strips placeholders and returns the draft in the grouped shape
// the diff and payload builders consume.  Scopes with no real rows are left
// out entirely.
func (s *Session) draftGrouped() Grouped {
	g := Grouped{Rows: map[string][]Row{}}
	for _, sc := range s.scopes {
		var rows []Row
		for _, er := range s.draft[sc.Key] {
			if er.IsPlaceholder {
				continue
			}
			rows = append(rows, er.Row.Clone())
		}
		if len(rows) > 0 {
			g.Order = append(g.Order, sc.Key)
			g.Rows[sc.Key] = rows
		}
	}
	return g
}

// snapshotGrouped classifies the persisted baseline under the currently
// active flags: compatible rows form the diff base, the rest are exactly the
// discarded set.
func (s *Session) snapshotGrouped() (Grouped, []Row) {
	cls := Classify(s.baseline, s.flags)
	return cls.Grouped, cls.Discarded
}

// Changes computes the change log between the persisted snapshot and the
// current draft, incompatible-row deletions included.
func (s *Session) Changes() []Change {
	snap, discarded := s.snapshotGrouped()
	return Diff(snap, s.draftGrouped(), discarded)
}

// FlagsChanged reports whether the active flags differ from the persisted
// ones.
func (s *Session) FlagsChanged() bool { return s.flags != s.savedFlags }

// CanSave gates the save button: there must be something to save (a tier
// change or a flag change) and no invalid rows anywhere in the draft.
func (s *Session) CanSave() bool {
	if len(s.Issues()) > 0 {
		return false
	}
	return s.FlagsChanged() || len(s.Changes()) > 0
}

// Payload serializes the draft into the save request shape.
func (s *Session) Payload() SavePayload {
	return BuildPayload(s.draftGrouped(), s.flags, s.savedFlags, s.Changes())
}

// ApplySaved replaces the session's baseline with the server's authoritative
// post-save state.  The locally computed draft is deliberately not trusted:
// the server may normalize values differently.
func (s *Session) ApplySaved(saved Loaded) {
	s.reset(saved)
}
