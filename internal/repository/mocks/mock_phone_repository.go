package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"phoneapi/internal/model"
)

type MockPhoneRepository struct {
	mock.Mock
}

func (m *MockPhoneRepository) FindAll(ctx context.Context) ([]model.Phone, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Phone), args.Error(1)
}

func (m *MockPhoneRepository) FindByID(ctx context.Context, id int64) (*model.Phone, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Phone), args.Error(1)
}

func (m *MockPhoneRepository) FindByPhoneName(ctx context.Context, name string) (*model.Phone, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Phone), args.Error(1)
}

func (m *MockPhoneRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPhoneRepository) Save(ctx context.Context, phone *model.Phone) (*model.Phone, error) {
	args := m.Called(ctx, phone)
	if f, ok := args.Get(0).(func(context.Context, *model.Phone) *model.Phone); ok {
		return f(ctx, phone), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Phone), args.Error(1)
}

func (m *MockPhoneRepository) DeleteByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
