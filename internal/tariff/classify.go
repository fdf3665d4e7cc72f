package tariff

import "sort"

// Grouped is a set of tier rows bucketed by scope key.  Order preserves the
// first-encounter order of the keys so iteration stays deterministic.
type Grouped struct {
	Order []string
	Rows  map[string][]Row
}

// Keys returns the scope keys in encounter order.
func (g Grouped) Keys() []string { return g.Order }

// Classification is the result of sorting stored rows into scopes under a
// given pair of granularity flags.  Discarded collects the rows that are
// structurally incompatible with the flags; they are not grouped because the
// only thing left to do with them is delete them on save.
type Classification struct {
	Grouped
	Discarded []Row
}

// rowScopeKey derives a row's scope key purely from which of its structural
// ids are populated, cross-checked against the active flags.  ok is false
// when the row cannot belong to any scope under these flags.
func rowScopeKey(r Row, flags Flags) (string, bool) {
	switch {
	case flags.UniformAcrossSections && flags.UniformAcrossBikeTypes:
		// Facility-wide rows must carry no structural reference at all.
		if r.SectionID != nil || r.SectionBikeTypeID != nil {
			return "", false
		}
		return FacilityScopeKey, true

	case !flags.UniformAcrossSections && flags.UniformAcrossBikeTypes:
		if r.SectionID == nil || r.SectionBikeTypeID != nil {
			return "", false
		}
		return SectionScopeKey(*r.SectionID), true

	case flags.UniformAcrossSections && !flags.UniformAcrossBikeTypes:
		if r.SectionBikeTypeID == nil {
			return "", false
		}
		return BikeTypeScopeKey(*r.SectionBikeTypeID), true

	default:
		// Pair granularity needs both references present.
		if r.SectionID == nil || r.SectionBikeTypeID == nil {
			return "", false
		}
		return BikeTypeScopeKey(*r.SectionBikeTypeID), true
	}
}

// Classify buckets stored rows by scope under the given flags.  Every input
// row lands in exactly one bucket or in Discarded, never both.  Within each
// scope rows are sorted by their stored order and renumbered 1..N because
// storage order is not trusted to be contiguous.
func Classify(rows []Row, flags Flags) Classification {
	cls := Classification{Grouped: Grouped{Rows: map[string][]Row{}}}
	for _, r := range rows {
		key, ok := rowScopeKey(r, flags)
		if !ok {
			cls.Discarded = append(cls.Discarded, r.Clone())
			continue
		}
		c := r.Clone()
		c.ScopeKey = key
		if _, seen := cls.Rows[key]; !seen {
			cls.Order = append(cls.Order, key)
		}
		cls.Rows[key] = append(cls.Rows[key], c)
	}
	for key, scoped := range cls.Rows {
		sort.SliceStable(scoped, func(i, j int) bool { return scoped[i].Order < scoped[j].Order })
		for i := range scoped {
			scoped[i].Order = i + 1
		}
		cls.Rows[key] = scoped
	}
	return cls
}
