package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"phoneapi/internal/hateoas"
	"phoneapi/internal/logging"
	"phoneapi/internal/model"
	"phoneapi/internal/repository/memory"
	"phoneapi/internal/seed"
	"phoneapi/internal/service"
	serviceMocks "phoneapi/internal/service/mocks"
	"phoneapi/internal/storage"
)

const base = "http://localhost/api/v1/phones"

// newSeededApp wires the real service over an in-memory store holding the two default phones.
func newSeededApp(t *testing.T) *fiber.App {
	t.Helper()
	repo := memory.NewPhoneMemory()
	_, err := seed.Run(context.Background(), repo, seed.Defaults(), logging.New(io.Discard, time.UTC, "info"))
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(app, repo, service.NewPhoneService(repo, nil))
	return app
}

func jsonRequest(method, target, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req
}

func decodePhone(t *testing.T, resp *http.Response) hateoas.PhoneModel {
	t.Helper()
	var m hateoas.PhoneModel
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	return m
}

func TestGetAllReturnsListOfAllPhones(t *testing.T) {
	app := newSeededApp(t)

	resp, err := app.Test(jsonRequest(http.MethodGet, base, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body hateoas.PhoneCollection
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Embedded.PhoneList, 2)
	assert.Equal(t, base+"/1", body.Embedded.PhoneList[0].Links.Self.Href)
	assert.Equal(t, "Iphone X", body.Embedded.PhoneList[0].PhoneName)
	assert.Equal(t, base, body.Links.Self.Href)
}

func TestListFiltersByPhoneName(t *testing.T) {
	app := newSeededApp(t)

	resp, _ := app.Test(jsonRequest(http.MethodGet, base+"?phoneName=Samsung%20Galaxy%20S10", ""))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body hateoas.PhoneCollection
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Embedded.PhoneList, 1)
	assert.Equal(t, int64(2), body.Embedded.PhoneList[0].ID)

	resp, _ = app.Test(jsonRequest(http.MethodGet, base+"?phoneName=Nokia", ""))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = hateoas.PhoneCollection{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body.Embedded.PhoneList)
}

func TestGetOnePhoneWithValidID(t *testing.T) {
	app := newSeededApp(t)

	for _, id := range []string{"1", "2"} {
		resp, _ := app.Test(jsonRequest(http.MethodGet, base+"/"+id, ""))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, base+"/"+id, decodePhone(t, resp).Links.Self.Href)
	}
}

func TestGetOnePhoneWithInvalidID(t *testing.T) {
	app := newSeededApp(t)

	t.Run("never assigned id", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodGet, base+"/0", ""))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("unversioned path", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodGet, "http://localhost/api/phones/0", ""))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("non numeric id", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodGet, base+"/abc", ""))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_ID", res.Error.Code)
	})
}

func TestAddNewPhoneWithPostReturnsCreatedPhone(t *testing.T) {
	app := newSeededApp(t)

	resp, _ := app.Test(jsonRequest(http.MethodPost, base+"/", `{"id":0,"phoneName":"Iphone 6s"}`))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	p := decodePhone(t, resp)
	assert.Equal(t, int64(3), p.ID)
	assert.Equal(t, "Iphone 6s", p.PhoneName)
	assert.Equal(t, int32(0), p.BrandID)
	assert.Equal(t, base+"/3", p.Links.Self.Href)
	assert.Equal(t, base+"/3", resp.Header.Get("Location"))
}

func TestPostIgnoresBodyID(t *testing.T) {
	app := newSeededApp(t)

	resp, _ := app.Test(jsonRequest(http.MethodPost, base, `{"id":1,"phoneName":"Pixel 8","brandId":4}`))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int64(3), decodePhone(t, resp).ID)

	resp, _ = app.Test(jsonRequest(http.MethodGet, base+"/1", ""))
	assert.Equal(t, "Iphone X", decodePhone(t, resp).PhoneName)
}

func TestPostValidation(t *testing.T) {
	app := newSeededApp(t)

	tests := []struct {
		name     string
		body     string
		status   int
		wantCode string
	}{
		{name: "missing phoneName", body: `{"id":0,"name":"Iphone 6s"}`, status: http.StatusBadRequest, wantCode: "VALIDATION_FAILED"},
		{name: "malformed json", body: `{"phoneName":`, status: http.StatusBadRequest, wantCode: "INVALID_BODY"},
		{name: "wrong type", body: `{"phoneName":"A","brandId":"one"}`, status: http.StatusBadRequest, wantCode: "INVALID_BODY"},
		{name: "duplicate name", body: `{"phoneName":"Iphone X"}`, status: http.StatusConflict, wantCode: "CONFLICT"},
		{name: "brandId beyond 32 bits", body: `{"phoneName":"A","brandId":99999999999}`, status: http.StatusBadRequest, wantCode: "INVALID_BODY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := app.Test(jsonRequest(http.MethodPost, base, tt.body))
			assert.Equal(t, tt.status, resp.StatusCode)
			var res errorPayload
			json.NewDecoder(resp.Body).Decode(&res)
			assert.Equal(t, tt.wantCode, res.Error.Code)
		})
	}
}

func TestDeletePhoneInRepository(t *testing.T) {
	app := newSeededApp(t)

	resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, base+"/1", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, base+"/1", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeletePhoneWithInvalidID(t *testing.T) {
	app := newSeededApp(t)

	resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, base+"/0", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteTwiceReturnsNotFound(t *testing.T) {
	app := newSeededApp(t)

	resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, base+"/2", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, base+"/2", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPutPhoneWithCompleteData(t *testing.T) {
	app := newSeededApp(t)

	resp, _ := app.Test(jsonRequest(http.MethodPut, base+"/1", `{"id":1,"phoneName":"Iphone 4s", "brandId":1}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	p := decodePhone(t, resp)
	assert.Equal(t, base+"/1", p.Links.Self.Href)
	assert.Equal(t, "Iphone 4s", p.PhoneName)
	assert.Equal(t, int32(1), p.BrandID)
}

func TestPutPhoneWithIncompleteDataZeroesBrand(t *testing.T) {
	app := newSeededApp(t)

	resp, _ := app.Test(jsonRequest(http.MethodPut, base+"/1", `{"id":1,"phoneName":"Iphone X"}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	p := decodePhone(t, resp)
	assert.Equal(t, base+"/1", p.Links.Self.Href)
	assert.Equal(t, "Iphone X", p.PhoneName)
	assert.Equal(t, int32(0), p.BrandID)
}

func TestPutUsesPathID(t *testing.T) {
	app := newSeededApp(t)

	resp, _ := app.Test(jsonRequest(http.MethodPut, base+"/2", `{"id":1,"phoneName":"Galaxy S20","brandId":2}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(2), decodePhone(t, resp).ID)

	resp, _ = app.Test(jsonRequest(http.MethodGet, base+"/1", ""))
	assert.Equal(t, "Iphone X", decodePhone(t, resp).PhoneName)
}

func TestPutRejectsOutOfRangeBrand(t *testing.T) {
	app := newSeededApp(t)

	resp, _ := app.Test(jsonRequest(http.MethodPut, base+"/1", `{"phoneName":"Iphone X","brandId":-2147483649}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var res errorPayload
	json.NewDecoder(resp.Body).Decode(&res)
	assert.Equal(t, "INVALID_BODY", res.Error.Code)

	resp, _ = app.Test(jsonRequest(http.MethodGet, base+"/1", ""))
	assert.Equal(t, int32(1), decodePhone(t, resp).BrandID)
}

func TestPutUnknownIDReturnsNotFound(t *testing.T) {
	app := newSeededApp(t)

	resp, _ := app.Test(jsonRequest(http.MethodPut, base+"/99", `{"phoneName":"Pixel"}`))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPatchPhoneWithAllData(t *testing.T) {
	app := newSeededApp(t)

	resp, _ := app.Test(jsonRequest(http.MethodPatch, base+"/1", `{"id":1,"phoneName":"Iphone 4s","brandId":1}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	p := decodePhone(t, resp)
	assert.Equal(t, base+"/1", p.Links.Self.Href)
	assert.Equal(t, "Iphone 4s", p.PhoneName)
	assert.Equal(t, int32(1), p.BrandID)
}

func TestPatchPhoneWithNewPhoneNameKeepsOtherFields(t *testing.T) {
	app := newSeededApp(t)

	resp, _ := app.Test(jsonRequest(http.MethodPatch, base+"/1", `{"phoneName":"Iphone 6s"}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	p := decodePhone(t, resp)
	assert.Equal(t, base+"/1", p.Links.Self.Href)
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, "Iphone 6s", p.PhoneName)
	assert.Equal(t, int32(1), p.BrandID)
}

func TestPatchBrandOnlyAndExplicitZero(t *testing.T) {
	app := newSeededApp(t)

	resp, _ := app.Test(jsonRequest(http.MethodPatch, base+"/2", `{"brandId":7}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	p := decodePhone(t, resp)
	assert.Equal(t, "Samsung Galaxy S10", p.PhoneName)
	assert.Equal(t, int32(7), p.BrandID)

	resp, _ = app.Test(jsonRequest(http.MethodPatch, base+"/2", `{"brandId":0}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(0), decodePhone(t, resp).BrandID)
}

func TestPatchErrors(t *testing.T) {
	app := newSeededApp(t)

	tests := []struct {
		name     string
		target   string
		body     string
		status   int
		wantCode string
	}{
		{name: "unknown id", target: base + "/0", body: `{"phoneName":"X"}`, status: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "null name", target: base + "/1", body: `{"phoneName":null}`, status: http.StatusBadRequest, wantCode: "VALIDATION_FAILED"},
		{name: "name taken", target: base + "/1", body: `{"phoneName":"Samsung Galaxy S10"}`, status: http.StatusConflict, wantCode: "CONFLICT"},
		{name: "bad id", target: base + "/one", body: `{}`, status: http.StatusBadRequest, wantCode: "INVALID_ID"},
		{name: "brandId beyond 32 bits", target: base + "/1", body: `{"brandId":2147483648}`, status: http.StatusBadRequest, wantCode: "INVALID_BODY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := app.Test(jsonRequest(http.MethodPatch, tt.target, tt.body))
			assert.Equal(t, tt.status, resp.StatusCode)
			var res errorPayload
			json.NewDecoder(resp.Body).Decode(&res)
			assert.Equal(t, tt.wantCode, res.Error.Code)
		})
	}
}

func TestServiceErrorsMapTo500(t *testing.T) {
	mockSvc := new(serviceMocks.MockPhoneService)
	app := fiber.New()
	app.Get("/api/v1/phones", ListPhones(mockSvc))
	app.Get("/api/v1/phones/:id", GetPhone(mockSvc))

	mockSvc.On("List", mock.Anything).Return(nil, errors.New("db fail")).Once()
	mockSvc.On("Get", mock.Anything, int64(1)).Return(nil, errors.New("db fail")).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/phones", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var res errorPayload
	json.NewDecoder(resp.Body).Decode(&res)
	assert.Equal(t, "INTERNAL_ERROR", res.Error.Code)

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/phones/1", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestPatchPassesPresenceToService(t *testing.T) {
	mockSvc := new(serviceMocks.MockPhoneService)
	app := fiber.New()
	app.Patch("/api/v1/phones/:id", PatchPhone(mockSvc))

	want := model.PhonePatch{BrandID: model.Some[int32](0)}
	mockSvc.On("Patch", mock.Anything, int64(4), want).Return(&model.Phone{ID: 4, PhoneName: "Pixel"}, nil).Once()

	resp, _ := app.Test(jsonRequest(http.MethodPatch, "/api/v1/phones/4", `{"brandId":0}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestSnapshots(t *testing.T) {
	mockSvc := new(serviceMocks.MockPhoneService)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(app, nil, mockSvc)

	t.Run("create", func(t *testing.T) {
		res := &service.SnapshotResult{Name: "phones-20261017T123000Z.json", Count: 2}
		mockSvc.On("Snapshot", mock.Anything).Return(res, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/phones/snapshots", nil))
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var got service.SnapshotResult
		json.NewDecoder(resp.Body).Decode(&got)
		assert.Equal(t, 2, got.Count)
	})

	t.Run("create without storage", func(t *testing.T) {
		mockSvc.On("Snapshot", mock.Anything).Return(nil, service.ErrSnapshotsDisabled).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/phones/snapshots", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("download", func(t *testing.T) {
		payload := `[{"id":1,"phoneName":"Iphone X","brandId":1}]`
		mockSvc.On("OpenSnapshot", mock.Anything, "phones-20261017T123000Z.json").
			Return(io.NopCloser(strings.NewReader(payload)), storage.ObjectInfo{Size: int64(len(payload)), ContentType: "application/json"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/phones/snapshots/phones-20261017T123000Z.json", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		body := new(bytes.Buffer)
		body.ReadFrom(resp.Body)
		assert.Equal(t, payload, body.String())
	})

	t.Run("download missing", func(t *testing.T) {
		mockSvc.On("OpenSnapshot", mock.Anything, "phones-20200101T000000Z.json").
			Return(nil, storage.ObjectInfo{}, service.ErrSnapshotNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/phones/snapshots/phones-20200101T000000Z.json", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	mockSvc.AssertExpectations(t)
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouting(t *testing.T) {
	app := newSeededApp(t)

	t.Run("not found route", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/health", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})
}
