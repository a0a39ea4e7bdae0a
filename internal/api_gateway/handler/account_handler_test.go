package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountHandler_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		api := newTestAPI(t)

		rr := api.do(http.MethodPost, "/accounts", map[string]interface{}{
			"code":         "701",
			"name":         "Ventes de marchandises",
			"class_number": 7,
		})

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		env := decode[AccountResponse](t, rr)
		assert.Equal(t, "701", env.Data.Code)
		assert.Equal(t, 7, env.Data.ClassNumber)
		assert.Equal(t, "CREDIT_NORMAL", env.Data.Convention)
		assert.True(t, env.Data.IsActive)
		assert.NotEmpty(t, env.CorrelationID)
	})

	t.Run("DuplicateCode", func(t *testing.T) {
		api := newTestAPI(t)

		rr := api.do(http.MethodPost, "/accounts", map[string]interface{}{
			"code": "512", "name": "Banque bis", "class_number": 5,
		})

		assert.Equal(t, http.StatusConflict, rr.Code)
		env := decode[any](t, rr)
		require.NotNil(t, env.Error)
		assert.Equal(t, "DUPLICATE_CODE", env.Error.Code)
		assert.Equal(t, "512", env.Error.Details["code"])
	})

	t.Run("UnknownClass", func(t *testing.T) {
		api := newTestAPI(t)

		rr := api.do(http.MethodPost, "/accounts", map[string]interface{}{
			"code": "401", "name": "Fournisseurs", "class_number": 4,
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		env := decode[any](t, rr)
		assert.Equal(t, "UNKNOWN_CLASS", env.Error.Code)
	})

	t.Run("MissingName", func(t *testing.T) {
		api := newTestAPI(t)

		rr := api.do(http.MethodPost, "/accounts", map[string]interface{}{
			"code": "602", "class_number": 6,
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		env := decode[any](t, rr)
		assert.Equal(t, "REQUIRED_FIELD", env.Error.Code)
		assert.Equal(t, "name", env.Error.Details["field"])
	})

	t.Run("InvalidRequestBody", func(t *testing.T) {
		api := newTestAPI(t)

		rr := api.do(http.MethodPost, "/accounts", `{"invalid`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		env := decode[any](t, rr)
		assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
	})
}

func TestAccountHandler_GetAndList(t *testing.T) {
	api := newTestAPI(t)

	t.Run("ByCode", func(t *testing.T) {
		rr := api.do(http.MethodGet, "/accounts/601", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		env := decode[AccountResponse](t, rr)
		assert.Equal(t, "Achats de marchandises", env.Data.Name)
		assert.Equal(t, "DEBIT_NORMAL", env.Data.Convention)
	})

	t.Run("ByID", func(t *testing.T) {
		byCode := decode[AccountResponse](t, api.do(http.MethodGet, "/accounts/512", nil))

		rr := api.do(http.MethodGet, "/accounts/"+byCode.Data.ID, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "512", decode[AccountResponse](t, rr).Data.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		rr := api.do(http.MethodGet, "/accounts/999", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "NOT_FOUND", decode[any](t, rr).Error.Code)
	})

	t.Run("OrderedByCode", func(t *testing.T) {
		rr := api.do(http.MethodGet, "/accounts", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		env := decode[[]AccountResponse](t, rr)
		require.Len(t, env.Data, 3)
		assert.Equal(t, "101", env.Data[0].Code)
		assert.Equal(t, "512", env.Data[1].Code)
		assert.Equal(t, "601", env.Data[2].Code)
	})

	t.Run("FilterByPrefix", func(t *testing.T) {
		rr := api.do(http.MethodGet, "/accounts?prefix=51", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		env := decode[[]AccountResponse](t, rr)
		require.Len(t, env.Data, 1)
		assert.Equal(t, "512", env.Data[0].Code)
	})

	t.Run("WildcardPrefixIsRejected", func(t *testing.T) {
		rr := api.do(http.MethodGet, "/accounts?prefix=5_", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "prefix", decode[any](t, rr).Error.Details["field"])

		rr = api.do(http.MethodGet, "/accounts?prefix=%25", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("FilterByClass", func(t *testing.T) {
		rr := api.do(http.MethodGet, "/accounts?class=5", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		env := decode[[]AccountResponse](t, rr)
		require.Len(t, env.Data, 1)
		assert.Equal(t, "512", env.Data[0].Code)
	})
}

func TestAccountHandler_UpdateAndDelete(t *testing.T) {
	t.Run("Update", func(t *testing.T) {
		api := newTestAPI(t)

		rr := api.do(http.MethodPatch, "/accounts/601", map[string]interface{}{
			"name":      "Achats de marchandises A",
			"is_active": false,
		})

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		env := decode[AccountResponse](t, rr)
		assert.Equal(t, "Achats de marchandises A", env.Data.Name)
		assert.False(t, env.Data.IsActive)
	})

	t.Run("DeleteUnused", func(t *testing.T) {
		api := newTestAPI(t)

		rr := api.do(http.MethodDelete, "/accounts/101", nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)

		rr = api.do(http.MethodGet, "/accounts/101", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("DeleteInUse", func(t *testing.T) {
		api := newTestAPI(t)
		require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/journal", purchaseBody("ACH-001", "1000", "1000")).Code)

		rr := api.do(http.MethodDelete, "/accounts/512", nil)

		assert.Equal(t, http.StatusConflict, rr.Code)
		env := decode[any](t, rr)
		assert.Equal(t, "ACCOUNT_IN_USE", env.Error.Code)
		assert.Equal(t, "512", env.Error.Details["code"])
	})
}

func TestAccountHandler_BalanceAndLines(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/journal", purchaseBody("ACH-001", "1000", "1000")).Code)

	rr := api.do(http.MethodGet, "/accounts/601/balance", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	balance := decode[BalanceResponse](t, rr).Data
	assert.Equal(t, "1000.00", balance.TotalDebit)
	assert.Equal(t, "0.00", balance.TotalCredit)
	assert.Equal(t, "1000.00", balance.Balance)
	assert.Equal(t, int64(1), balance.LineCount)

	rr = api.do(http.MethodGet, "/accounts/512/balance", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "-1000.00", decode[BalanceResponse](t, rr).Data.Balance)

	rr = api.do(http.MethodGet, "/accounts/512/lines", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	lines := decode[[]AccountLineResponse](t, rr).Data
	require.Len(t, lines, 1)
	assert.Equal(t, "ACH-001", lines[0].EntryReference)
	assert.Equal(t, "2024-01-15", lines[0].EntryDate)
	assert.Equal(t, "1000.00", lines[0].Credit)
}

func TestClassHandler(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(http.MethodGet, "/classes", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	classes := decode[[]ClassResponse](t, rr).Data
	require.Len(t, classes, 4)
	assert.Equal(t, 1, classes[0].Number)
	assert.Equal(t, "CREDIT_NORMAL", classes[0].Convention)

	rr = api.do(http.MethodGet, "/classes/6", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "DEBIT_NORMAL", decode[ClassResponse](t, rr).Data.Convention)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/classes/3", nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/classes/abc", nil).Code)
}
