package model

// Section is the API representation of one physical area of a facility,
// together with its permitted-bike-type matrix.  The matrix entries carry
// the section_bike_type id because that id is what keys per-bike-type
// pricing scopes in the tariff editor.
type Section struct {
	ID                 uint64              `json:"id"`
	FacilityID         uint64              `json:"facility_id"`
	Title              string              `json:"title"`
	Capacity           *int32              `json:"capacity,omitempty"`
	IsActive           bool                `json:"is_active"`
	PermittedBikeTypes []PermittedBikeType `json:"permitted_bike_types"`
	CreatedAt          string              `json:"created_at"`
	UpdatedAt          string              `json:"updated_at"`
}

// PermittedBikeType is one entry of a section's bike-type matrix.
type PermittedBikeType struct {
	SectionBikeTypeID uint64 `json:"section_bike_type_id"`
	BikeTypeID        uint64 `json:"bike_type_id"`
	Allowed           bool   `json:"allowed"`
}
