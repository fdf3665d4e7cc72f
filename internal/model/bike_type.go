package model

// BikeType is the API representation of one vehicle kind in the global
// directory: regular bike, cargo bike, moped and so on.
type BikeType struct {
	ID        uint64 `json:"id"`
	Code      string `json:"code"`
	Label     string `json:"label"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
