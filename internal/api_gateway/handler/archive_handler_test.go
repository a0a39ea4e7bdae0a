package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/domain/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockArchiveService struct {
	mock.Mock
}

func (m *MockArchiveService) GetPostedEntry(ctx context.Context, reference string) (*archive.PostedEntry, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*archive.PostedEntry), args.Error(1)
}

func (m *MockArchiveService) GetPostedEntriesByAccount(ctx context.Context, code string, page, perPage int) ([]*archive.PostedEntry, int64, error) {
	args := m.Called(ctx, code, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*archive.PostedEntry), args.Get(1).(int64), args.Error(2)
}

func setupArchiveTest(t *testing.T) (*testAPI, *MockArchiveService) {
	api := newTestAPI(t)
	svc := new(MockArchiveService)
	h := NewArchiveHandler(newTestLogger(), svc)
	api.router.GET("/archive/entries/:reference", h.GetByReference)
	api.router.GET("/archive/accounts/:code/entries", h.GetByAccount)
	return api, svc
}

func archivedEntry(ref string) *archive.PostedEntry {
	return &archive.PostedEntry{
		EntryID:   uuid.New(),
		Reference: ref,
		Date:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Lines: []archive.PostedLine{
			{AccountCode: "601", Debit: "1000.00", Credit: "0.00"},
			{AccountCode: "512", Debit: "0.00", Credit: "1000.00"},
		},
		TotalDebit:  "1000.00",
		TotalCredit: "1000.00",
	}
}

func TestArchiveHandler_GetByReference(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Found", func(t *testing.T) {
		api, svc := setupArchiveTest(t)
		svc.On("GetPostedEntry", mock.Anything, "ACH-001").Return(archivedEntry("ACH-001"), nil)

		rr := api.do(http.MethodGet, "/archive/entries/ACH-001", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		got := decode[archive.PostedEntry](t, rr).Data
		assert.Equal(t, "ACH-001", got.Reference)
		assert.Equal(t, "1000.00", got.TotalCredit)
		svc.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		api, svc := setupArchiveTest(t)
		svc.On("GetPostedEntry", mock.Anything, "ACH-404").Return(nil, archive.ErrEntryNotFound("ACH-404"))

		rr := api.do(http.MethodGet, "/archive/entries/ACH-404", nil)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "NOT_FOUND", decode[any](t, rr).Error.Code)
	})
}

func TestArchiveHandler_GetByAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Paginated", func(t *testing.T) {
		api, svc := setupArchiveTest(t)
		entries := []*archive.PostedEntry{archivedEntry("ACH-003"), archivedEntry("ACH-002")}
		svc.On("GetPostedEntriesByAccount", mock.Anything, "601", 2, 2).Return(entries, int64(5), nil)

		rr := api.do(http.MethodGet, "/archive/accounts/601/entries?page=2&per_page=2", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		env := decode[[]archive.PostedEntry](t, rr)
		assert.Len(t, env.Data, 2)
		require.NotNil(t, env.Meta)
		assert.Equal(t, 2, env.Meta.Page)
		assert.Equal(t, 2, env.Meta.PerPage)
		assert.Equal(t, 3, env.Meta.TotalPages)
		assert.Equal(t, 5, env.Meta.TotalItems)
	})

	t.Run("DefaultPagination", func(t *testing.T) {
		api, svc := setupArchiveTest(t)
		svc.On("GetPostedEntriesByAccount", mock.Anything, "999", 1, 10).Return(nil, int64(0), nil)

		rr := api.do(http.MethodGet, "/archive/accounts/999/entries", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, decode[[]archive.PostedEntry](t, rr).Data)
		svc.AssertExpectations(t)
	})

	t.Run("InvalidPagination", func(t *testing.T) {
		api, svc := setupArchiveTest(t)

		rr := api.do(http.MethodGet, "/archive/accounts/601/entries?per_page=500", nil)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "GetPostedEntriesByAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
