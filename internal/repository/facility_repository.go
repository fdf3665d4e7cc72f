// Package repository contains data access logic separated from HTTP handlers.
// This file defines the Facility model and repository methods for CRUD and
// lookup operations. A Facility is one bicycle-parking location; it owns
// sections and tariff rows, and carries the two granularity flags that decide
// how its price table is scoped.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used to define custom error values
)

// Facility represents a parking facility persisted in the database.  The two
// uniform_* flags live on the facility row because they are facility-level
// configuration, not tariff rows themselves.
type Facility struct {
	ID                     uint64         // ID is the unique identifier of the facility
	Name                   string         // Name is the human-friendly facility name
	Address                sql.NullString // Address is optional free text
	UniformAcrossSections  bool           // one price ladder shared by all sections
	UniformAcrossBikeTypes bool           // one price ladder shared by all bike types
	IsActive               bool           // IsActive indicates the facility is operational
	CreatedAt              string         // CreatedAt stores when the row was created
	UpdatedAt              string         // UpdatedAt stores when the row was last updated
}

// ErrFacilityNotFound is returned when a facility cannot be found in the DB.
var ErrFacilityNotFound = errors.New("facility not found")

// FacilityRepo encapsulates all database queries related to facilities.
type FacilityRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewFacilityRepo constructs a FacilityRepo with the provided DB handle.
func NewFacilityRepo(db *sql.DB) *FacilityRepo {
	return &FacilityRepo{db: db}
}

// Create inserts a new facility.  On success the ID field is populated and a
// follow-up SELECT fills the defaulted columns so callers receive a fully
// populated record.
func (r *FacilityRepo) Create(ctx context.Context, f *Facility) error {
	const qInsert = `INSERT INTO facilities (name, address, uniform_across_sections, uniform_across_bike_types)
	                 VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, f.Name, f.Address, f.UniformAcrossSections, f.UniformAcrossBikeTypes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)

	const qSelect = `SELECT name, address, uniform_across_sections, uniform_across_bike_types, is_active, created_at, updated_at
	                 FROM facilities WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, f.ID).
		Scan(&f.Name, &f.Address, &f.UniformAcrossSections, &f.UniformAcrossBikeTypes, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
}

// GetByID fetches a facility by its ID.  It returns ErrFacilityNotFound when
// no row exists.
func (r *FacilityRepo) GetByID(ctx context.Context, id uint64) (*Facility, error) {
	const q = `SELECT id, name, address, uniform_across_sections, uniform_across_bike_types, is_active, created_at, updated_at
	           FROM facilities WHERE id = ?`
	var f Facility
	if err := r.db.QueryRowContext(ctx, q, id).
		Scan(&f.ID, &f.Name, &f.Address, &f.UniformAcrossSections, &f.UniformAcrossBikeTypes, &f.IsActive, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFacilityNotFound
		}
		return nil, err
	}
	return &f, nil
}

// List returns all facilities ordered by id.
func (r *FacilityRepo) List(ctx context.Context) ([]*Facility, error) {
	const q = `SELECT id, name, address, uniform_across_sections, uniform_across_bike_types, is_active, created_at, updated_at
	           FROM facilities ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Facility
	for rows.Next() {
		f := new(Facility)
		if err := rows.Scan(&f.ID, &f.Name, &f.Address, &f.UniformAcrossSections, &f.UniformAcrossBikeTypes, &f.IsActive, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes name, address and active flag.  It returns sql.ErrNoRows
// when no row was affected.
func (r *FacilityRepo) Update(ctx context.Context, f *Facility) error {
	const q = `UPDATE facilities
	           SET name = ?, address = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, f.Name, f.Address, f.IsActive, f.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a facility.  Sections, permitted-type entries and tariff
// rows are removed by ON DELETE CASCADE foreign keys.
func (r *FacilityRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM facilities WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFacilityNotFound
	}
	return nil
}
