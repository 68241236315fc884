package repository

import (
	"context"
	"errors"

	"phoneapi/internal/model"
)

var (
	// ErrNotFound is returned when no phone matches the requested id or name.
	ErrNotFound = errors.New("phone not found")
	// ErrDuplicatePhoneName is returned by Save when another record already uses the phone name.
	ErrDuplicatePhoneName = errors.New("phone name already exists")
)

// PhoneRepository defines data access for phones.
// No business logic here, only persistence.
type PhoneRepository interface {
	// FindAll returns every phone ordered by id.
	FindAll(ctx context.Context) ([]model.Phone, error)

	// FindByID returns a phone by its ID, or ErrNotFound.
	FindByID(ctx context.Context, id int64) (*model.Phone, error)

	// FindByPhoneName returns the phone with the given unique name, or ErrNotFound.
	FindByPhoneName(ctx context.Context, name string) (*model.Phone, error)

	// ExistsByID reports whether a phone with the given ID is stored.
	ExistsByID(ctx context.Context, id int64) (bool, error)

	// Save inserts the phone when its ID is 0 (the store assigns one) and
	// otherwise writes it under its ID, inserting if absent.
	// Returns the stored record.
	Save(ctx context.Context, phone *model.Phone) (*model.Phone, error)

	// DeleteByID removes a phone by ID. It returns ErrNotFound if no row was deleted.
	DeleteByID(ctx context.Context, id int64) error
}
