// Package queue defines message payloads exchanged over the message broker.
package queue

// TariffSavedEvent is published whenever a facility's tariff configuration is
// committed.  It carries enough information for downstream consumers to log
// or audit the change without querying the primary database.
type TariffSavedEvent struct {
	FacilityID             uint64 `json:"facility_id"`
	FacilityName           string `json:"facility_name"`
	UniformAcrossSections  bool   `json:"uniform_across_sections"`
	UniformAcrossBikeTypes bool   `json:"uniform_across_bike_types"`
	ScopeCount             int    `json:"scope_count"`
	RowCount               int    `json:"row_count"`
	SavedBy                uint64 `json:"saved_by"`
	SavedAt                string `json:"saved_at"`
}
