package repository // repository holds data access logic for domain entities

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
	"errors"       // errors package allows sentinel error definitions
)

// Section represents one physical area of a parking facility, e.g. a hall or
// an outdoor rack block.  Sections carry their own capacity and can each
// permit a different set of bike types.
type Section struct {
	ID         uint64        // ID is the primary key of the section
	FacilityID uint64        // FacilityID references the owning facility
	Title      string        // Title is a human readable label for the section
	Capacity   sql.NullInt32 // Capacity is the number of parking places; nullable
	IsActive   bool          // IsActive flag indicates if the section is currently in use
	CreatedAt  string        // CreatedAt stores creation timestamp
	UpdatedAt  string        // UpdatedAt stores last update timestamp
}

// ErrSectionNotFound is returned when a section lookup fails.
var ErrSectionNotFound = errors.New("section not found")

// SectionRepo provides methods to create and retrieve sections.  It embeds a
// database handle to perform queries and commands.
type SectionRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewSectionRepo constructs a SectionRepo with the given DB handle.
func NewSectionRepo(db *sql.DB) *SectionRepo {
	return &SectionRepo{db: db}
}

// Create inserts a new section.  After insert the ID field is set and the
// record is read back so the timestamp and status fields are populated too.
func (r *SectionRepo) Create(ctx context.Context, s *Section) error {
	const qInsert = `INSERT INTO sections (facility_id, title, capacity) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, s.FacilityID, s.Title, s.Capacity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)

	const qSelect = `SELECT id, facility_id, title, capacity, is_active, created_at, updated_at
	                 FROM sections WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, s.ID).
		Scan(&s.ID, &s.FacilityID, &s.Title, &s.Capacity, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID retrieves a section by its ID.  It returns ErrSectionNotFound when
// no row is found.
func (r *SectionRepo) GetByID(ctx context.Context, id uint64) (*Section, error) {
	const q = `SELECT id, facility_id, title, capacity, is_active, created_at, updated_at FROM sections WHERE id = ?`
	var s Section
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.FacilityID, &s.Title, &s.Capacity, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByFacility returns all sections of a facility ordered by id.
func (r *SectionRepo) ListByFacility(ctx context.Context, facilityID uint64) ([]*Section, error) {
	const q = `SELECT id, facility_id, title, capacity, is_active, created_at, updated_at
	           FROM sections
	           WHERE facility_id = ?
	           ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, facilityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Section
	for rows.Next() {
		s := new(Section)
		if err := rows.Scan(&s.ID, &s.FacilityID, &s.Title, &s.Capacity, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes title, capacity and active flag.  Returns sql.ErrNoRows
// when the section does not exist.
func (r *SectionRepo) Update(ctx context.Context, s *Section) error {
	const q = `UPDATE sections
	           SET title = ?, capacity = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, s.Title, s.Capacity, s.IsActive, s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a section when it has no tariff rows attached; with rows
// still present ErrConflict is returned so the handler can refuse with 409.
func (r *SectionRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tariff_rows WHERE section_id = ?
		 OR section_bike_type_id IN (SELECT id FROM section_bike_types WHERE section_id = ?)`,
		id, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM sections WHERE id = ?", id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrSectionNotFound
	}
	return nil
}
