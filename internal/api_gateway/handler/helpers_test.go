package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ohada-ledger/internal/api_gateway/middleware"
	"github.com/ohada-ledger/internal/data/memory"
	"github.com/ohada-ledger/internal/domain/chart"
	"github.com/ohada-ledger/internal/domain/journal"
	"github.com/ohada-ledger/internal/domain/shared"
	"github.com/ohada-ledger/internal/ledger"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// envelope decodes the standard response with a typed payload
type envelope[T any] struct {
	Data          T          `json:"data"`
	Error         *ErrorInfo `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Meta          *MetaInfo  `json:"meta,omitempty"`
}

type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) SubmitEntry(ctx context.Context, submission *shared.EntrySubmission) (string, *journal.Entry, error) {
	args := m.Called(ctx, submission)
	var entry *journal.Entry
	if args.Get(1) != nil {
		entry = args.Get(1).(*journal.Entry)
	}
	return args.String(0), entry, args.Error(2)
}

type testAPI struct {
	router      *gin.Engine
	store       *memory.Store
	directory   *ledger.Directory
	journal     *ledger.Journal
	submissions *MockSubmissionService
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// newTestAPI mounts the handlers on a memory-backed ledger seeded with the
// classes 1, 5, 6 and 7 and the accounts 101, 512 and 601.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := newTestLogger()
	store := memory.NewStore()
	now := func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }

	api := &testAPI{
		router:      gin.New(),
		store:       store,
		directory:   ledger.NewDirectory(logger, store),
		journal:     ledger.NewJournal(logger, store, now),
		submissions: new(MockSubmissionService),
	}

	ctx := context.Background()
	for n, name := range map[chart.ClassNumber]string{1: "Ressources durables", 5: "Trésorerie", 6: "Charges", 7: "Produits"} {
		_, err := api.directory.EnsureClass(ctx, n, name, "")
		require.NoError(t, err)
	}
	for _, spec := range []ledger.AccountSpec{
		{Code: "101", Name: "Capital social", ClassNumber: 1, IsActive: true},
		{Code: "512", Name: "Banques", ClassNumber: 5, IsActive: true},
		{Code: "601", Name: "Achats de marchandises", ClassNumber: 6, IsActive: true},
	} {
		_, err := api.directory.CreateAccount(ctx, spec)
		require.NoError(t, err)
	}

	accounts := NewAccountHandler(logger, api.directory, ledger.NewBalanceCalculator(store), api.journal)
	classes := NewClassHandler(logger, api.directory)
	entries := NewJournalHandler(logger, api.journal, api.submissions)
	reports := NewReportHandler(logger, ledger.NewReports(store, false))

	r := api.router
	r.Use(middleware.CorrelationID())
	r.GET("/classes", classes.List)
	r.GET("/classes/:number", classes.Get)
	r.POST("/accounts", accounts.Create)
	r.GET("/accounts", accounts.List)
	r.GET("/accounts/:id", accounts.Get)
	r.PATCH("/accounts/:id", accounts.Update)
	r.DELETE("/accounts/:id", accounts.Delete)
	r.GET("/accounts/:id/balance", accounts.Balance)
	r.GET("/accounts/:id/lines", accounts.Lines)
	r.POST("/journal", entries.Create)
	r.POST("/journal/submissions", entries.Submit)
	r.GET("/journal", entries.List)
	r.GET("/journal/:id", entries.Get)
	r.PATCH("/journal/:id", entries.Update)
	r.POST("/journal/:id/post", entries.Post)
	r.DELETE("/journal/:id", entries.Delete)
	r.GET("/reports/trial-balance", reports.TrialBalance)
	r.GET("/reports/unbalanced-entries", reports.UnbalancedEntries)

	return api
}

func (api *testAPI) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewBuffer(raw)
	}

	req, _ := http.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	api.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}

func purchaseBody(ref, debit, credit string) map[string]interface{} {
	return map[string]interface{}{
		"reference":   ref,
		"description": "Achat de marchandises",
		"date":        "2024-01-15",
		"lines": []map[string]interface{}{
			{"account_code": "601", "debit": debit, "credit": "0"},
			{"account_code": "512", "debit": "0", "credit": credit},
		},
	}
}
