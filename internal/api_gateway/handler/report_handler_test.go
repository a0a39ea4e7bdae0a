package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportHandler_TrialBalance(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/journal", purchaseBody("ACH-001", "1000", "1000")).Code)

	t.Run("JSON", func(t *testing.T) {
		rr := api.do(http.MethodGet, "/reports/trial-balance", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		env := decode[map[string]interface{}](t, rr)
		assert.Equal(t, true, env.Data["balanced"])
		rows, ok := env.Data["rows"].([]interface{})
		require.True(t, ok)
		assert.Len(t, rows, 2)
	})

	t.Run("CSV", func(t *testing.T) {
		rr := api.do(http.MethodGet, "/reports/trial-balance?format=csv", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		assert.Equal(t, csvContentType, rr.Header().Get("Content-Type"))
		lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
		require.Len(t, lines, 4)
		assert.Equal(t, "Compte;Libellé;Débit;Crédit;Solde", lines[0])
		assert.Equal(t, "512;Banques;0.00;1000.00;-1000.00", lines[1])
		assert.Equal(t, "TOTAL;;1000.00;1000.00;0.00", lines[3])
	})

	t.Run("UnsupportedFormat", func(t *testing.T) {
		rr := api.do(http.MethodGet, "/reports/trial-balance?format=xml", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestReportHandler_UnbalancedEntries(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/journal", purchaseBody("ACH-001", "1000", "1000")).Code)

	rr := api.do(http.MethodGet, "/reports/unbalanced-entries", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	env := decode[[]map[string]interface{}](t, rr)
	assert.Empty(t, env.Data)
}
