package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"phoneapi/internal/model"
	"phoneapi/internal/repository"
)

// uniqueViolation is the SQLSTATE raised for a unique index conflict.
const uniqueViolation = "23505"

// PhonePostgres is a PostgreSQL implementation of repository.PhoneRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type PhonePostgres struct {
	db *sql.DB
}

// NewPhonePostgres creates a new PhonePostgres repository.
func NewPhonePostgres(db *sql.DB) *PhonePostgres {
	return &PhonePostgres{db: db}
}

var _ repository.PhoneRepository = (*PhonePostgres)(nil)

// FindAll returns every phone ordered by id.
func (r *PhonePostgres) FindAll(ctx context.Context) ([]model.Phone, error) {
	const q = `
		SELECT id, phone_name, brand_id
		FROM phones
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Phone, 0)
	for rows.Next() {
		var p model.Phone
		if err := rows.Scan(&p.ID, &p.PhoneName, &p.BrandID); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// FindByID fetches a single phone by its ID.
func (r *PhonePostgres) FindByID(ctx context.Context, id int64) (*model.Phone, error) {
	const q = `
		SELECT id, phone_name, brand_id
		FROM phones
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// FindByPhoneName fetches a single phone by its unique name.
func (r *PhonePostgres) FindByPhoneName(ctx context.Context, name string) (*model.Phone, error) {
	const q = `
		SELECT id, phone_name, brand_id
		FROM phones
		WHERE phone_name = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, q, name))
}

// ExistsByID reports whether a row with the given ID exists.
func (r *PhonePostgres) ExistsByID(ctx context.Context, id int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM phones WHERE id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Save inserts a new row when phone.ID is 0, otherwise upserts the row keyed by phone.ID.
func (r *PhonePostgres) Save(ctx context.Context, phone *model.Phone) (*model.Phone, error) {
	var row *sql.Row
	if phone.ID == 0 {
		const q = `
			INSERT INTO phones (phone_name, brand_id)
			VALUES ($1, $2)
			RETURNING id, phone_name, brand_id
		`
		row = r.db.QueryRowContext(ctx, q, phone.PhoneName, phone.BrandID)
	} else {
		const q = `
			INSERT INTO phones (id, phone_name, brand_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE
			SET phone_name = EXCLUDED.phone_name, brand_id = EXCLUDED.brand_id
			RETURNING id, phone_name, brand_id
		`
		row = r.db.QueryRowContext(ctx, q, phone.ID, phone.PhoneName, phone.BrandID)
	}

	var out model.Phone
	if err := row.Scan(&out.ID, &out.PhoneName, &out.BrandID); err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicatePhoneName
		}
		return nil, err
	}
	return &out, nil
}

// DeleteByID removes a phone by ID and reports ErrNotFound when nothing was deleted.
func (r *PhonePostgres) DeleteByID(ctx context.Context, id int64) error {
	const q = `DELETE FROM phones WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PhonePostgres) scanOne(row *sql.Row) (*model.Phone, error) {
	var p model.Phone
	if err := row.Scan(&p.ID, &p.PhoneName, &p.BrandID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
