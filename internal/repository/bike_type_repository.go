package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// BikeType represents a kind of vehicle a facility can park: regular bike,
// cargo bike, moped and so on.  The directory is global, not per facility;
// sections opt in through section_bike_types.
type BikeType struct {
	ID        uint64 // bike_types.id
	Code      string // bike_types.code, short unique mnemonic like "cargo"
	Label     string // bike_types.label, human readable name
	CreatedAt string // bike_types.created_at
	UpdatedAt string // bike_types.updated_at
}

// SectionBikeType is one entry of a section's permitted-type matrix.  The
// row's own id is what keys per-bike-type tariff scopes.
type SectionBikeType struct {
	ID         uint64 // section_bike_types.id
	SectionID  uint64 // section_bike_types.section_id
	BikeTypeID uint64 // section_bike_types.bike_type_id
	Allowed    bool   // section_bike_types.allowed
}

// ErrBikeTypeNotFound is returned when a bike type lookup fails.
var ErrBikeTypeNotFound = errors.New("bike type not found")

// ErrBikeTypeExists is returned when a bike type code is already taken.
var ErrBikeTypeExists = errors.New("bike type code already exists")

// BikeTypeRepo provides access to the bike type directory and to the
// per-section permitted-type matrix.
type BikeTypeRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewBikeTypeRepo constructs a BikeTypeRepo with the given DB handle.
func NewBikeTypeRepo(db *sql.DB) *BikeTypeRepo {
	return &BikeTypeRepo{db: db}
}

// Create inserts a new bike type.  Codes are unique; a duplicate insert maps
// to ErrBikeTypeExists.
func (r *BikeTypeRepo) Create(ctx context.Context, bt *BikeType) error {
	bt.Code = strings.ToLower(strings.TrimSpace(bt.Code))
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO bike_types (code, label) VALUES (?, ?)", bt.Code, bt.Label)
	if err != nil {
		// 1062 is MySQL's duplicate-key error.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrBikeTypeExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	bt.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT code, label, created_at, updated_at FROM bike_types WHERE id = ?", bt.ID).
		Scan(&bt.Code, &bt.Label, &bt.CreatedAt, &bt.UpdatedAt)
}

// List returns the whole bike type directory ordered by id.
func (r *BikeTypeRepo) List(ctx context.Context) ([]*BikeType, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, code, label, created_at, updated_at FROM bike_types ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*BikeType
	for rows.Next() {
		bt := new(BikeType)
		if err := rows.Scan(&bt.ID, &bt.Code, &bt.Label, &bt.CreatedAt, &bt.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, bt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Names returns the id → label lookup the scope resolver consumes.
func (r *BikeTypeRepo) Names(ctx context.Context) (map[uint64]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, label FROM bike_types")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := map[uint64]string{}
	for rows.Next() {
		var id uint64
		var label string
		if err := rows.Scan(&id, &label); err != nil {
			return nil, err
		}
		names[id] = label
	}
	return names, rows.Err()
}

// UpdateLabel renames a bike type.  Returns ErrBikeTypeNotFound when no row
// was affected.
func (r *BikeTypeRepo) UpdateLabel(ctx context.Context, id uint64, label string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE bike_types SET label = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", label, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBikeTypeNotFound
	}
	return nil
}

// Delete removes a bike type when no section permits it any more; otherwise
// ErrConflict is returned.
func (r *BikeTypeRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM section_bike_types WHERE bike_type_id = ?", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM bike_types WHERE id = ?", id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrBikeTypeNotFound
	}
	return nil
}

// ListBySection returns a section's permitted-type matrix ordered by id.
func (r *BikeTypeRepo) ListBySection(ctx context.Context, sectionID uint64) ([]*SectionBikeType, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, section_id, bike_type_id, allowed FROM section_bike_types WHERE section_id = ? ORDER BY id",
		sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*SectionBikeType
	for rows.Next() {
		sbt := new(SectionBikeType)
		if err := rows.Scan(&sbt.ID, &sbt.SectionID, &sbt.BikeTypeID, &sbt.Allowed); err != nil {
			return nil, err
		}
		out = append(out, sbt)
	}
	return out, rows.Err()
}

// ListByFacility returns the permitted-type matrices of every section of a
// facility in one query, ordered by section then entry id so the topology
// assembles deterministically.
func (r *BikeTypeRepo) ListByFacility(ctx context.Context, facilityID uint64) ([]*SectionBikeType, error) {
	const q = `SELECT sbt.id, sbt.section_id, sbt.bike_type_id, sbt.allowed
	           FROM section_bike_types sbt
	           JOIN sections s ON s.id = sbt.section_id
	           WHERE s.facility_id = ?
	           ORDER BY sbt.section_id, sbt.id`
	rows, err := r.db.QueryContext(ctx, q, facilityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*SectionBikeType
	for rows.Next() {
		sbt := new(SectionBikeType)
		if err := rows.Scan(&sbt.ID, &sbt.SectionID, &sbt.BikeTypeID, &sbt.Allowed); err != nil {
			return nil, err
		}
		out = append(out, sbt)
	}
	return out, rows.Err()
}

// SetAllowed upserts one (section, bike type) entry.  Existing entries keep
// their id, so tariff rows keyed by that id survive a toggle back to allowed.
func (r *BikeTypeRepo) SetAllowed(ctx context.Context, sectionID, bikeTypeID uint64, allowed bool) (*SectionBikeType, error) {
	const qUpsert = `INSERT INTO section_bike_types (section_id, bike_type_id, allowed)
	                 VALUES (?, ?, ?)
	                 ON DUPLICATE KEY UPDATE allowed = VALUES(allowed)`
	if _, err := r.db.ExecContext(ctx, qUpsert, sectionID, bikeTypeID, allowed); err != nil {
		return nil, err
	}
	var sbt SectionBikeType
	err := r.db.QueryRowContext(ctx,
		"SELECT id, section_id, bike_type_id, allowed FROM section_bike_types WHERE section_id = ? AND bike_type_id = ?",
		sectionID, bikeTypeID).Scan(&sbt.ID, &sbt.SectionID, &sbt.BikeTypeID, &sbt.Allowed)
	if err != nil {
		return nil, err
	}
	return &sbt, nil
}
