package model

// Facility is the API representation of one bicycle-parking location.
// The two uniform_* flags select the granularity of the facility's price
// table and are edited through the tariff endpoints, not through the
// facility CRUD.
//
// Fields:
//
//	ID                     – primary key identifier.
//	Name                   – human readable facility name.
//	Address                – optional street address.
//	UniformAcrossSections  – one price ladder shared by all sections.
//	UniformAcrossBikeTypes – one price ladder shared by all bike types.
//	IsActive               – whether the facility is operational.
//	CreatedAt              – creation timestamp.
//	UpdatedAt              – last update timestamp.
type Facility struct {
	ID                     uint64  `json:"id"`
	Name                   string  `json:"name"`
	Address                *string `json:"address,omitempty"`
	UniformAcrossSections  bool    `json:"uniform_across_sections"`
	UniformAcrossBikeTypes bool    `json:"uniform_across_bike_types"`
	IsActive               bool    `json:"is_active"`
	CreatedAt              string  `json:"created_at"`
	UpdatedAt              string  `json:"updated_at"`
}
