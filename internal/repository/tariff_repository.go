package repository

import (
	"context"
	"database/sql"
)

// TariffRow mirrors the tariff_rows table: one tier of a facility's price
// ladder.  SectionID and SectionBikeTypeID decide which pricing scope the row
// belongs to; both NULL means a facility-wide row.  BikeTypeID is not stored
// on the row, it is joined in from section_bike_types for convenience.
type TariffRow struct {
	ID                uint64          // tariff_rows.id
	FacilityID        uint64          // tariff_rows.facility_id
	SectionID         *uint64         // tariff_rows.section_id (nullable)
	SectionBikeTypeID *uint64         // tariff_rows.section_bike_type_id (nullable)
	BikeTypeID        *uint64         // joined from section_bike_types; nil for non-type rows
	Position          int             // tariff_rows.position, 1-based order within the scope
	DurationHours     float64         // tariff_rows.duration_hours
	Cost              float64         // tariff_rows.cost
	CreatedAt         string          // tariff_rows.created_at
	UpdatedAt         string          // tariff_rows.updated_at
}

// TariffRepo provides access to a facility's tier rows and the atomic save
// operation the tariff editor commits through.
type TariffRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewTariffRepo constructs a TariffRepo with the given DB handle.
func NewTariffRepo(db *sql.DB) *TariffRepo {
	return &TariffRepo{db: db}
}

// ListByFacility returns every tier row of a facility.  Rows come back
// ordered by scope columns and position; the classifier re-sorts anyway, so
// the ordering here only keeps responses stable.
func (r *TariffRepo) ListByFacility(ctx context.Context, facilityID uint64) ([]*TariffRow, error) {
	const q = `SELECT t.id, t.facility_id, t.section_id, t.section_bike_type_id,
	                  sbt.bike_type_id, t.position, t.duration_hours, t.cost,
	                  t.created_at, t.updated_at
	           FROM tariff_rows t
	           LEFT JOIN section_bike_types sbt ON sbt.id = t.section_bike_type_id
	           WHERE t.facility_id = ?
	           ORDER BY t.section_id, t.section_bike_type_id, t.position, t.id`
	rows, err := r.db.QueryContext(ctx, q, facilityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*TariffRow
	for rows.Next() {
		t := new(TariffRow)
		if err := rows.Scan(&t.ID, &t.FacilityID, &t.SectionID, &t.SectionBikeTypeID,
			&t.BikeTypeID, &t.Position, &t.DurationHours, &t.Cost, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Save applies one tariff editor commit atomically: optional granularity flag
// updates plus, when replaceRows is set, a wholesale replacement of the
// facility's tier rows.  Either everything lands or nothing does; there is no
// partial save.
func (r *TariffRepo) Save(ctx context.Context, facilityID uint64,
	uniformSections, uniformBikeTypes *bool, rows []TariffRow, replaceRows bool) error {

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }() // no-op after a successful commit

	if uniformSections != nil || uniformBikeTypes != nil {
		const q = `UPDATE facilities
		           SET uniform_across_sections  = COALESCE(?, uniform_across_sections),
		               uniform_across_bike_types = COALESCE(?, uniform_across_bike_types),
		               updated_at = CURRENT_TIMESTAMP
		           WHERE id = ?`
		res, err := tx.ExecContext(ctx, q, uniformSections, uniformBikeTypes, facilityID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrFacilityNotFound
		}
	}

	if replaceRows {
		if _, err := tx.ExecContext(ctx, "DELETE FROM tariff_rows WHERE facility_id = ?", facilityID); err != nil {
			return err
		}
		const qInsert = `INSERT INTO tariff_rows
		                 (facility_id, section_id, section_bike_type_id, position, duration_hours, cost)
		                 VALUES (?, ?, ?, ?, ?, ?)`
		for _, row := range rows {
			if _, err := tx.ExecContext(ctx, qInsert,
				facilityID, row.SectionID, row.SectionBikeTypeID, row.Position, row.DurationHours, row.Cost); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}
