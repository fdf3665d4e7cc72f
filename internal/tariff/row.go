// Package tariff implements the tiered-pricing configuration engine used by
// the facility tariff editor.  A facility's price table can be defined at one
// of four granularities (whole facility, per section, per bike type, or per
// section×bike-type pair) and each granularity slices the table into "scopes".
// Every scope owns an ordered ladder of tiers: the first tier covers the first
// N hours at some cost, later tiers cover the next M hours, and the last tier
// repeats indefinitely once reached.
//
// The package is a pure library: it performs no I/O and owns no HTTP or SQL.
// Handlers feed it stored rows and facility topology, the engine classifies,
// edits, validates, diffs and serializes; persistence is someone else's job.
package tariff

// Flags select which of the four scope granularities is active.  Both true
// means one facility-wide ladder; both false means one ladder per
// (section, permitted bike type) pair.
type Flags struct {
	UniformAcrossSections  bool `json:"uniform_across_sections"`  // one ladder shared by all sections
	UniformAcrossBikeTypes bool `json:"uniform_across_bike_types"` // one ladder shared by all bike types
}

// Row is one tier of a tiered-pricing ladder as stored (or about to be
// stored).  DurationHours and Cost are pointers because an editable row may
// transiently hold no value; a persisted row always has both set.
type Row struct {
	RowID             *uint64  `json:"row_id,omitempty"`               // storage identity, nil until persisted
	ScopeKey          string   `json:"scope_key"`                      // scope this row belongs to
	Order             int      `json:"order"`                          // 1-based position within the scope's ladder
	DurationHours     *float64 `json:"duration_hours"`                 // length of this tier in hours
	Cost              *float64 `json:"cost"`                           // price charged for this tier
	SectionID         *uint64  `json:"section_id,omitempty"`           // set for per-section rows
	BikeTypeID        *uint64  `json:"bike_type_id,omitempty"`         // informational, derived from the section×type pair
	SectionBikeTypeID *uint64  `json:"section_bike_type_id,omitempty"` // set for per-bike-type rows
}

// Clone returns a deep copy of the row so that draft mutation can never reach
// back into the immutable snapshot.
func (r Row) Clone() Row {
	out := r
	out.RowID = cloneUint64(r.RowID)
	out.DurationHours = cloneFloat64(r.DurationHours)
	out.Cost = cloneFloat64(r.Cost)
	out.SectionID = cloneUint64(r.SectionID)
	out.BikeTypeID = cloneUint64(r.BikeTypeID)
	out.SectionBikeTypeID = cloneUint64(r.SectionBikeTypeID)
	return out
}

// sameValues reports whether two rows agree on the fields the diff engine
// compares: position and the two tier values.
func (r Row) sameValues(o Row) bool {
	return r.Order == o.Order &&
		equalFloat64(r.DurationHours, o.DurationHours) &&
		equalFloat64(r.Cost, o.Cost)
}

func cloneUint64(p *uint64) *uint64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat64(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func equalFloat64(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
