package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"phoneapi/internal/model"
	"phoneapi/internal/repository"
	"phoneapi/internal/storage"
)

var (
	ErrNotFound          = errors.New("phone not found")
	ErrNameRequired      = errors.New("phone name is required")
	ErrNameTaken         = errors.New("phone name already in use")
	ErrSnapshotsDisabled = errors.New("snapshots are not configured")
	ErrSnapshotNotFound  = errors.New("snapshot not found")
)

const (
	snapshotPrefix     = "snapshots/"
	snapshotLayout     = "20060102T150405Z"
	snapshotURLExpiry  = 15 * time.Minute
	snapshotMediaType  = "application/json"
	tracerInstrumentID = "phoneapi/service"
)

var snapshotNamePattern = regexp.MustCompile(`^phones-\d{8}T\d{6}Z\.json$`)

// SnapshotResult describes an exported catalog snapshot.
type SnapshotResult struct {
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"createdAt"`
}

// PhoneService defines the phone catalog use cases.
type PhoneService interface {
	// List returns every phone.
	List(ctx context.Context) ([]model.Phone, error)

	// FindByName returns the phone with the given name.
	FindByName(ctx context.Context, name string) (*model.Phone, error)

	// Get returns a single phone by its ID.
	Get(ctx context.Context, id int64) (*model.Phone, error)

	// Create stores a new phone; the store assigns the ID.
	Create(ctx context.Context, in model.PhoneInput) (*model.Phone, error)

	// Replace overwrites every mutable field of an existing phone. Absent fields take their zero value.
	Replace(ctx context.Context, id int64, in model.PhoneInput) (*model.Phone, error)

	// Patch overwrites only the fields present in the patch.
	Patch(ctx context.Context, id int64, patch model.PhonePatch) (*model.Phone, error)

	// Delete removes a phone by ID.
	Delete(ctx context.Context, id int64) error

	// Snapshot exports the whole catalog as JSON to object storage.
	Snapshot(ctx context.Context) (*SnapshotResult, error)

	// OpenSnapshot streams a previously exported snapshot. The caller closes the reader.
	OpenSnapshot(ctx context.Context, name string) (io.ReadCloser, storage.ObjectInfo, error)
}

// phoneService is a concrete implementation of PhoneService.
type phoneService struct {
	repo   repository.PhoneRepository
	store  storage.Storage
	tracer trace.Tracer
	now    func() time.Time
}

// NewPhoneService constructs a PhoneService. store may be nil, which disables snapshots.
func NewPhoneService(repo repository.PhoneRepository, store storage.Storage) PhoneService {
	return &phoneService{
		repo:   repo,
		store:  store,
		tracer: otel.Tracer(tracerInstrumentID),
		now:    time.Now,
	}
}

func (s *phoneService) List(ctx context.Context) (_ []model.Phone, err error) {
	ctx, span := s.tracer.Start(ctx, "PhoneService.List")
	defer func() { endSpan(span, err) }()

	phones, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("find all phones: %w", err)
	}
	span.SetAttributes(attribute.Int("phone.count", len(phones)))
	return phones, nil
}

func (s *phoneService) FindByName(ctx context.Context, name string) (_ *model.Phone, err error) {
	ctx, span := s.tracer.Start(ctx, "PhoneService.FindByName", trace.WithAttributes(attribute.String("phone.name", name)))
	defer func() { endSpan(span, err) }()

	p, err := s.repo.FindByPhoneName(ctx, name)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return p, nil
}

func (s *phoneService) Get(ctx context.Context, id int64) (_ *model.Phone, err error) {
	ctx, span := s.tracer.Start(ctx, "PhoneService.Get", trace.WithAttributes(attribute.Int64("phone.id", id)))
	defer func() { endSpan(span, err) }()

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return p, nil
}

func (s *phoneService) Create(ctx context.Context, in model.PhoneInput) (_ *model.Phone, err error) {
	ctx, span := s.tracer.Start(ctx, "PhoneService.Create")
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(in.PhoneName) == "" {
		return nil, ErrNameRequired
	}
	p, err := s.repo.Save(ctx, &model.Phone{PhoneName: in.PhoneName, BrandID: in.BrandID})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return p, nil
}

// Replace answers ErrNotFound for unknown ids rather than inserting under a caller-chosen id.
func (s *phoneService) Replace(ctx context.Context, id int64, in model.PhoneInput) (_ *model.Phone, err error) {
	ctx, span := s.tracer.Start(ctx, "PhoneService.Replace", trace.WithAttributes(attribute.Int64("phone.id", id)))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(in.PhoneName) == "" {
		return nil, ErrNameRequired
	}
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("check phone %d: %w", id, err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	p, err := s.repo.Save(ctx, &model.Phone{ID: id, PhoneName: in.PhoneName, BrandID: in.BrandID})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return p, nil
}

func (s *phoneService) Patch(ctx context.Context, id int64, patch model.PhonePatch) (_ *model.Phone, err error) {
	ctx, span := s.tracer.Start(ctx, "PhoneService.Patch", trace.WithAttributes(
		attribute.Int64("phone.id", id),
		attribute.Bool("patch.phone_name", patch.PhoneName.Set),
		attribute.Bool("patch.brand_id", patch.BrandID.Set),
	))
	defer func() { endSpan(span, err) }()

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	merged := patch.Apply(*existing)
	if strings.TrimSpace(merged.PhoneName) == "" {
		return nil, ErrNameRequired
	}
	p, err := s.repo.Save(ctx, &merged)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return p, nil
}

func (s *phoneService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "PhoneService.Delete", trace.WithAttributes(attribute.Int64("phone.id", id)))
	defer func() { endSpan(span, err) }()

	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("check phone %d: %w", id, err)
	}
	if !exists {
		return ErrNotFound
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	return nil
}

func (s *phoneService) Snapshot(ctx context.Context) (_ *SnapshotResult, err error) {
	ctx, span := s.tracer.Start(ctx, "PhoneService.Snapshot")
	defer func() { endSpan(span, err) }()

	if s.store == nil {
		return nil, ErrSnapshotsDisabled
	}

	phones, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("find all phones: %w", err)
	}
	body, err := json.Marshal(phones)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	created := s.now().UTC()
	name := "phones-" + created.Format(snapshotLayout) + ".json"
	key := snapshotPrefix + name

	info, err := s.store.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: snapshotMediaType,
		Metadata: map[string]string{
			"phone-count": fmt.Sprint(len(phones)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload snapshot: %w", err)
	}

	url, err := s.store.PresignGet(ctx, info.Key, snapshotURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign snapshot: %w", err)
	}

	return &SnapshotResult{
		Name:      name,
		Key:       info.Key,
		URL:       url,
		Count:     len(phones),
		CreatedAt: created,
	}, nil
}

func (s *phoneService) OpenSnapshot(ctx context.Context, name string) (_ io.ReadCloser, _ storage.ObjectInfo, err error) {
	ctx, span := s.tracer.Start(ctx, "PhoneService.OpenSnapshot", trace.WithAttributes(attribute.String("snapshot.name", name)))
	defer func() { endSpan(span, err) }()

	if s.store == nil {
		return nil, storage.ObjectInfo{}, ErrSnapshotsDisabled
	}
	if !snapshotNamePattern.MatchString(name) {
		return nil, storage.ObjectInfo{}, ErrSnapshotNotFound
	}
	rc, info, err := s.store.Get(ctx, snapshotPrefix+name)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, storage.ObjectInfo{}, ErrSnapshotNotFound
		}
		return nil, storage.ObjectInfo{}, fmt.Errorf("open snapshot: %w", err)
	}
	return rc, info, nil
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicatePhoneName):
		return ErrNameTaken
	default:
		return err
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
