package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"phoneapi/internal/model"
	"phoneapi/internal/service"
	"phoneapi/internal/storage"
)

type MockPhoneService struct {
	mock.Mock
}

func (m *MockPhoneService) List(ctx context.Context) ([]model.Phone, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Phone), args.Error(1)
}

func (m *MockPhoneService) FindByName(ctx context.Context, name string) (*model.Phone, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Phone), args.Error(1)
}

func (m *MockPhoneService) Get(ctx context.Context, id int64) (*model.Phone, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Phone), args.Error(1)
}

func (m *MockPhoneService) Create(ctx context.Context, in model.PhoneInput) (*model.Phone, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Phone), args.Error(1)
}

func (m *MockPhoneService) Replace(ctx context.Context, id int64, in model.PhoneInput) (*model.Phone, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Phone), args.Error(1)
}

func (m *MockPhoneService) Patch(ctx context.Context, id int64, patch model.PhonePatch) (*model.Phone, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Phone), args.Error(1)
}

func (m *MockPhoneService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPhoneService) Snapshot(ctx context.Context) (*service.SnapshotResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SnapshotResult), args.Error(1)
}

func (m *MockPhoneService) OpenSnapshot(ctx context.Context, name string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, name)
	rc, _ := args.Get(0).(io.ReadCloser)
	info, _ := args.Get(1).(storage.ObjectInfo)
	return rc, info, args.Error(2)
}
