package tariff

import "sort"

// ChangeType labels one entry of the change log.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// Change is one entry of the original-vs-draft change log.  Before is set for
// updates and deletions, After for updates and creations.
type Change struct {
	Scope  string     `json:"scope"`
	Type   ChangeType `json:"type"`
	Before *Row       `json:"before,omitempty"`
	After  *Row       `json:"after,omitempty"`
}

// Diff compares the persisted snapshot against the current draft and emits a
// flat list of create/update/delete entries, matched by row id.  Rows without
// an id are necessarily new.  The discarded set (rows structurally
// incompatible with the active flags) is appended as deletions under the
// synthetic incompatible scope, regardless of what the per-scope diff
// produced.  Identical inputs yield an empty list.
func Diff(original, draft Grouped, discarded []Row) []Change {
	var out []Change
	for _, key := range unionKeys(original, draft) {
		out = append(out, diffScope(key, original.Rows[key], draft.Rows[key])...)
	}
	for _, r := range discarded {
		before := r.Clone()
		out = append(out, Change{Scope: IncompatibleScopeKey, Type: ChangeDeleted, Before: &before})
	}
	return out
}

func diffScope(key string, original, draft []Row) []Change {
	byID := map[uint64]Row{}
	for _, d := range draft {
		if d.RowID != nil {
			byID[*d.RowID] = d
		}
	}

	var out []Change
	matched := map[uint64]bool{}
	for _, o := range original {
		if o.RowID == nil {
			continue // snapshot rows always carry an id; tolerate bad input
		}
		d, ok := byID[*o.RowID]
		if !ok {
			before := o.Clone()
			out = append(out, Change{Scope: key, Type: ChangeDeleted, Before: &before})
			continue
		}
		matched[*o.RowID] = true
		if !o.sameValues(d) {
			before, after := o.Clone(), d.Clone()
			out = append(out, Change{Scope: key, Type: ChangeUpdated, Before: &before, After: &after})
		}
	}
	for _, d := range draft {
		if d.RowID != nil && matched[*d.RowID] {
			continue
		}
		// New rows, and rows whose id vanished from the original side.
		after := d.Clone()
		out = append(out, Change{Scope: key, Type: ChangeCreated, After: &after})
	}
	return out
}

// unionKeys merges the scope keys of both sides: the original's encounter
// order first, then draft-only keys sorted for determinism.
func unionKeys(original, draft Grouped) []string {
	seen := map[string]bool{}
	var keys []string
	for _, k := range original.Order {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	var extra []string
	for _, k := range draft.Order {
		if !seen[k] {
			seen[k] = true
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}
