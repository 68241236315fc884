package seed

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"phoneapi/internal/logging"
	"phoneapi/internal/model"
	"phoneapi/internal/repository"
	"phoneapi/internal/repository/memory"
	repoMocks "phoneapi/internal/repository/mocks"
)

func TestRun_Defaults(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPhoneMemory()
	var buf bytes.Buffer

	n, err := Run(ctx, repo, Defaults(), logging.New(&buf, time.UTC, "info"))

	require.NoError(t, err)
	assert.Equal(t, 2, n)

	phones, _ := repo.FindAll(ctx)
	assert.Equal(t, []model.Phone{
		{ID: 1, PhoneName: "Iphone X", BrandID: 1},
		{ID: 2, PhoneName: "Samsung Galaxy S10", BrandID: 2},
	}, phones)
	assert.Contains(t, buf.String(), "seed_insert")
}

func TestRun_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPhoneMemory()
	logger := logging.New(&bytes.Buffer{}, time.UTC, "info")

	_, err := Run(ctx, repo, Defaults(), logger)
	require.NoError(t, err)

	n, err := Run(ctx, repo, Defaults(), logger)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	phones, _ := repo.FindAll(ctx)
	assert.Len(t, phones, 2)
}

func TestRun_LookupError(t *testing.T) {
	mRepo := new(repoMocks.MockPhoneRepository)
	mRepo.On("FindByPhoneName", mock.Anything, "Iphone X").Return(nil, errors.New("db down"))

	n, err := Run(context.Background(), mRepo, Defaults(), logging.New(&bytes.Buffer{}, time.UTC, "info"))

	assert.Equal(t, 0, n)
	assert.ErrorContains(t, err, `lookup "Iphone X": db down`)
	mRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRun_SaveError(t *testing.T) {
	mRepo := new(repoMocks.MockPhoneRepository)
	mRepo.On("FindByPhoneName", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)
	mRepo.On("Save", mock.Anything, &model.Phone{PhoneName: "Iphone X", BrandID: 1}).Return(nil, errors.New("read only"))

	_, err := Run(context.Background(), mRepo, Defaults(), logging.New(&bytes.Buffer{}, time.UTC, "info"))

	assert.ErrorContains(t, err, `save "Iphone X": read only`)
}

func TestLoadFile(t *testing.T) {
	fixtures, err := LoadFile(filepath.Join("testdata", "phones.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []Fixture{
		{PhoneName: "Nokia 3310", BrandID: 3},
		{PhoneName: "Pixel 8", BrandID: 0},
	}, fixtures)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadFile(filepath.Join("testdata", "invalid.yaml"))
	assert.ErrorContains(t, err, "phone 0 has no phoneName")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("phones: [::"), 0o600))
	_, err = LoadFile(bad)
	assert.ErrorContains(t, err, "parse seed file")
}
