package tariff

import "fmt"

// ScopeKind is the tagged variant of a pricing scope.  The two granularity
// flags collapse the four topologies down to these three kinds: a
// section×bike-type pair scope is still a bike-type scope, it is just keyed by
// the pair's section_bike_type id.
type ScopeKind int

const (
	ScopeFacility ScopeKind = iota // one ladder for the whole facility
	ScopeSection                   // one ladder per section
	ScopeBikeType                  // one ladder per (section×)bike-type pair
)

// String returns the kind's wire name as used inside scope keys.
func (k ScopeKind) String() string {
	switch k {
	case ScopeSection:
		return "section"
	case ScopeBikeType:
		return "bikeType"
	default:
		return "facility"
	}
}

// FacilityScopeKey is the key of the single facility-wide scope.
const FacilityScopeKey = "facility"

// IncompatibleScopeKey tags change-log deletions for rows that became
// structurally incompatible after a granularity change.  It never appears as
// an editable scope.
const IncompatibleScopeKey = "incompatible"

// SectionScopeKey builds the key of a per-section scope.
func SectionScopeKey(sectionID uint64) string {
	return fmt.Sprintf("section:%d", sectionID)
}

// BikeTypeScopeKey builds the key of a per-bike-type scope.  Keys are based on
// the section_bike_type id (not the bare bike-type id) so that pair scopes and
// facility-wide type scopes share one key space.
func BikeTypeScopeKey(sectionBikeTypeID uint64) string {
	return fmt.Sprintf("bikeType:%d", sectionBikeTypeID)
}

// Scope describes one pricing scope derived from the granularity flags and
// the facility topology.  It is never persisted.
type Scope struct {
	Key               string    `json:"key"`
	Kind              ScopeKind `json:"kind"`
	Label             string    `json:"label"` // human label shown above the scope's ladder
	SectionID         *uint64   `json:"section_id,omitempty"`
	BikeTypeID        *uint64   `json:"bike_type_id,omitempty"`
	SectionBikeTypeID *uint64   `json:"section_bike_type_id,omitempty"`
}

// PermittedBikeType is one entry of a section's bike-type matrix.
type PermittedBikeType struct {
	SectionBikeTypeID uint64 // id of the (section, bike type) pair row
	BikeTypeID        uint64 // the bike type this entry permits
	Allowed           bool   // false entries are kept for history but produce no scope
}

// Section is the slice of facility topology the resolver needs: the section
// itself plus which bike types it permits.
type Section struct {
	SectionID          uint64
	Title              string
	PermittedBikeTypes []PermittedBikeType
}

// ResolveScopes applies the granularity rule table:
//
//	uniform sections  uniform types   scopes
//	true              true            facility
//	false             true            one per section
//	true              false           one per distinct permitted bike type
//	false             false           one per (section, permitted type) pair
//
// Scopes come back de-duplicated by key in encounter order.  When the
// topology yields nothing (a facility with no sections) the facility scope is
// returned so the operator always has at least one ladder to edit.
func ResolveScopes(flags Flags, sections []Section, typeNames map[uint64]string) []Scope {
	var out []Scope
	seen := map[string]bool{}
	add := func(s Scope) {
		if seen[s.Key] {
			return
		}
		seen[s.Key] = true
		out = append(out, s)
	}

	switch {
	case flags.UniformAcrossSections && flags.UniformAcrossBikeTypes:
		add(facilityScope())

	case !flags.UniformAcrossSections && flags.UniformAcrossBikeTypes:
		for _, sec := range sections {
			id := sec.SectionID
			add(Scope{
				Key:       SectionScopeKey(id),
				Kind:      ScopeSection,
				Label:     sec.Title,
				SectionID: &id,
			})
		}

	case flags.UniformAcrossSections && !flags.UniformAcrossBikeTypes:
		// One scope per distinct permitted bike type across all sections.
		// The first section permitting a type contributes the pair id that
		// keys the scope; later occurrences of the same type are skipped.
		byType := map[uint64]bool{}
		for _, sec := range sections {
			for _, pt := range sec.PermittedBikeTypes {
				if !pt.Allowed || byType[pt.BikeTypeID] {
					continue
				}
				byType[pt.BikeTypeID] = true
				sbtID, btID := pt.SectionBikeTypeID, pt.BikeTypeID
				add(Scope{
					Key:               BikeTypeScopeKey(sbtID),
					Kind:              ScopeBikeType,
					Label:             typeLabel(typeNames, btID),
					BikeTypeID:        &btID,
					SectionBikeTypeID: &sbtID,
				})
			}
		}

	default: // per (section, permitted type) pair
		for _, sec := range sections {
			for _, pt := range sec.PermittedBikeTypes {
				if !pt.Allowed {
					continue
				}
				secID, sbtID, btID := sec.SectionID, pt.SectionBikeTypeID, pt.BikeTypeID
				add(Scope{
					Key:               BikeTypeScopeKey(sbtID),
					Kind:              ScopeBikeType,
					Label:             sec.Title + " / " + typeLabel(typeNames, btID),
					SectionID:         &secID,
					BikeTypeID:        &btID,
					SectionBikeTypeID: &sbtID,
				})
			}
		}
	}

	if len(out) == 0 {
		out = append(out, facilityScope())
	}
	return out
}

// SupplementScopes appends synthesized descriptors for rows whose scope key is
// compatible with the flags but not covered by the topology-derived scopes,
// e.g. legacy rows referencing a section that was since removed.  Without this
// such rows would be invisible in the editor and could never be cleaned up.
func SupplementScopes(scopes []Scope, rows []Row, flags Flags) []Scope {
	seen := map[string]bool{}
	for _, s := range scopes {
		seen[s.Key] = true
	}
	for _, r := range rows {
		key, ok := rowScopeKey(r, flags)
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		scopes = append(scopes, orphanScope(key, r, flags))
	}
	return scopes
}

// orphanScope builds a descriptor for a row key the topology no longer
// explains.  The label makes clear the referenced structure is gone.
func orphanScope(key string, r Row, flags Flags) Scope {
	switch {
	case flags.UniformAcrossSections && flags.UniformAcrossBikeTypes:
		return facilityScope()
	case !flags.UniformAcrossSections && flags.UniformAcrossBikeTypes:
		return Scope{
			Key:       key,
			Kind:      ScopeSection,
			Label:     fmt.Sprintf("Removed section #%d", derefUint64(r.SectionID)),
			SectionID: cloneUint64(r.SectionID),
		}
	default:
		return Scope{
			Key:               key,
			Kind:              ScopeBikeType,
			Label:             fmt.Sprintf("Removed bike-type entry #%d", derefUint64(r.SectionBikeTypeID)),
			SectionID:         cloneUint64(r.SectionID),
			BikeTypeID:        cloneUint64(r.BikeTypeID),
			SectionBikeTypeID: cloneUint64(r.SectionBikeTypeID),
		}
	}
}

func facilityScope() Scope {
	return Scope{Key: FacilityScopeKey, Kind: ScopeFacility, Label: "Entire facility"}
}

func typeLabel(names map[uint64]string, bikeTypeID uint64) string {
	if n, ok := names[bikeTypeID]; ok && n != "" {
		return n
	}
	return fmt.Sprintf("Bike type #%d", bikeTypeID)
}

func derefUint64(p *uint64) uint64 {
	if p == nil {
		return 0
	}
	return *p
}
