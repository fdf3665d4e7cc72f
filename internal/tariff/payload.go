package tariff

import (
	"fmt"
	"strconv"
	"strings"
)

// TierEntry is the index-based wire form of one tier inside the save payload.
type TierEntry struct {
	Order         int     `json:"order"`
	DurationHours float64 `json:"duration_hours"`
	Cost          float64 `json:"cost"`
}

// SavePayload is the body of the save request.  Every key is optional and
// included only when it actually changed, so a save that only toggles a flag
// does not resend unrelated tier data and vice versa.  When present, Tiers is
// a full replacement of the facility's tier rows: placeholders are stripped
// and every scope's orders start at 1.
type SavePayload struct {
	UniformAcrossSections  *bool                  `json:"uniform_across_sections,omitempty"`
	UniformAcrossBikeTypes *bool                  `json:"uniform_across_bike_types,omitempty"`
	Tiers                  map[string][]TierEntry `json:"tiers,omitempty"`
}

// Empty reports whether the payload carries nothing worth sending.
func (p SavePayload) Empty() bool {
	return p.UniformAcrossSections == nil && p.UniformAcrossBikeTypes == nil && p.Tiers == nil
}

// BuildPayload serializes a draft into the save request shape.  Each flag is
// included only when it differs from its last-persisted value; the tiers map
// is included only when the change log contains at least one tier change
// (incompatible-row deletions count, since committing them requires the
// replacement set to be written).
func BuildPayload(draft Grouped, flags, savedFlags Flags, changes []Change) SavePayload {
	var p SavePayload
	if flags.UniformAcrossSections != savedFlags.UniformAcrossSections {
		v := flags.UniformAcrossSections
		p.UniformAcrossSections = &v
	}
	if flags.UniformAcrossBikeTypes != savedFlags.UniformAcrossBikeTypes {
		v := flags.UniformAcrossBikeTypes
		p.UniformAcrossBikeTypes = &v
	}
	if len(changes) == 0 {
		return p
	}
	p.Tiers = map[string][]TierEntry{}
	for _, key := range draft.Order {
		rows := draft.Rows[key]
		entries := make([]TierEntry, 0, len(rows))
		for _, r := range rows {
			e := TierEntry{Order: r.Order}
			if r.DurationHours != nil {
				e.DurationHours = *r.DurationHours
			}
			if r.Cost != nil {
				e.Cost = *r.Cost
			}
			entries = append(entries, e)
		}
		p.Tiers[key] = entries
	}
	return p
}

// ParseScopeKey splits a scope key back into its kind and referenced id.
// The id is zero for the facility scope.
func ParseScopeKey(key string) (ScopeKind, uint64, error) {
	if key == FacilityScopeKey {
		return ScopeFacility, 0, nil
	}
	kind, rest, found := strings.Cut(key, ":")
	if !found {
		return 0, 0, fmt.Errorf("malformed scope key %q", key)
	}
	id, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed scope key %q", key)
	}
	switch kind {
	case "section":
		return ScopeSection, id, nil
	case "bikeType":
		return ScopeBikeType, id, nil
	default:
		return 0, 0, fmt.Errorf("unknown scope kind in key %q", key)
	}
}

// ValidateSavePayload checks an incoming payload against the scopes that are
// valid under the effective flags: every key must resolve to a known scope
// and every scope's entries must be a contiguous 1..N ladder of valid tiers.
func ValidateSavePayload(p SavePayload, scopes []Scope) error {
	if p.Tiers == nil {
		return nil
	}
	known := map[string]bool{}
	for _, sc := range scopes {
		known[sc.Key] = true
	}
	for key, entries := range p.Tiers {
		if _, _, err := ParseScopeKey(key); err != nil {
			return err
		}
		if !known[key] {
			return fmt.Errorf("scope %q does not exist under the requested granularity", key)
		}
		for i, e := range entries {
			if e.Order != i+1 {
				return fmt.Errorf("scope %q: tier orders must run 1..%d without gaps", key, len(entries))
			}
			d, c := e.DurationHours, e.Cost
			if reason, bad := TierInvalid(&d, &c); bad {
				return fmt.Errorf("scope %q, tier %d: %s", key, e.Order, reason)
			}
		}
	}
	return nil
}
