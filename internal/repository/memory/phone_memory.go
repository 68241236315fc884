package memory

import (
	"context"
	"sort"
	"sync"

	"phoneapi/internal/model"
	"phoneapi/internal/repository"
)

// PhoneMemory is an in-memory implementation of repository.PhoneRepository.
// It is safe for concurrent use and hands out copies, never its own records.
// Every method returns ctx.Err() once the context is done.
type PhoneMemory struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]model.Phone
	byName map[string]int64
}

// NewPhoneMemory constructs an empty store. IDs start at 1.
func NewPhoneMemory() *PhoneMemory {
	return &PhoneMemory{
		nextID: 1,
		byID:   make(map[int64]model.Phone),
		byName: make(map[string]int64),
	}
}

var _ repository.PhoneRepository = (*PhoneMemory)(nil)

// FindAll returns every phone ordered by id.
func (r *PhoneMemory) FindAll(ctx context.Context) ([]model.Phone, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	items := make([]model.Phone, 0, len(r.byID))
	for _, p := range r.byID {
		items = append(items, p)
	}
	r.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// FindByID returns a copy of the stored phone.
func (r *PhoneMemory) FindByID(ctx context.Context, id int64) (*model.Phone, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	p, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

// FindByPhoneName looks the phone up through the name index.
func (r *PhoneMemory) FindByPhoneName(ctx context.Context, name string) (*model.Phone, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p := r.byID[id]
	return &p, nil
}

// ExistsByID reports whether id is stored.
func (r *PhoneMemory) ExistsByID(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	_, ok := r.byID[id]
	r.mu.RUnlock()
	return ok, nil
}

// Save inserts (ID 0) or overwrites (ID set) a phone, keeping names unique.
func (r *PhoneMemory) Save(ctx context.Context, phone *model.Phone) (*model.Phone, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.byName[phone.PhoneName]; ok && owner != phone.ID {
		return nil, repository.ErrDuplicatePhoneName
	}

	out := *phone
	if out.ID == 0 {
		out.ID = r.nextID
	}
	if out.ID >= r.nextID {
		r.nextID = out.ID + 1
	}
	if prev, ok := r.byID[out.ID]; ok {
		delete(r.byName, prev.PhoneName)
	}
	r.byID[out.ID] = out
	r.byName[out.PhoneName] = out.ID
	return &out, nil
}

// DeleteByID removes the phone and its name index entry.
func (r *PhoneMemory) DeleteByID(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byName, p.PhoneName)
	return nil
}

// PingContext fails only when ctx is done; the store lives in process.
func (r *PhoneMemory) PingContext(ctx context.Context) error {
	return ctx.Err()
}
