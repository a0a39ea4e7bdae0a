package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/ohada-ledger/internal/api_gateway/service"
	"github.com/ohada-ledger/internal/domain/chart"
	"github.com/ohada-ledger/internal/ledger"
)

// AccountHandler handles HTTP requests for the chart of accounts
type AccountHandler struct {
	accountService service.AccountService
	balanceService service.BalanceService
	journalService service.JournalService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(
	logger *slog.Logger,
	accountService service.AccountService,
	balanceService service.BalanceService,
	journalService service.JournalService,
) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		balanceService: balanceService,
		journalService: journalService,
		logger:         logger,
	}
}

// Create files a new account under an existing class
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	acc, err := h.accountService.CreateAccount(c.Request.Context(), ledger.AccountSpec{
		Code:        req.Code,
		Name:        req.Name,
		ClassNumber: chart.ClassNumber(req.ClassNumber),
		Description: req.Description,
		IsActive:    active,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapAccountToResponse(acc))
}

// List returns the accounts ordered by code, optionally filtered by class,
// active flag and code prefix
func (h *AccountHandler) List(c *gin.Context) {
	var query ListAccountsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := chart.AccountFilter{IsActive: query.IsActive, CodePrefix: query.CodePrefix}
	if query.ClassNumber != nil {
		n := chart.ClassNumber(*query.ClassNumber)
		filter.ClassNumber = &n
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), filter)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	response := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		response[i] = mapAccountToResponse(acc)
	}
	RespondOK(c, response)
}

// Get retrieves an account by code or id, returning 404 if not found
func (h *AccountHandler) Get(c *gin.Context) {
	acc, err := h.accountService.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// Update changes the supplied fields of an account
func (h *AccountHandler) Update(c *gin.Context) {
	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.accountService.UpdateAccount(c.Request.Context(), c.Param("id"), chart.AccountUpdate{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// Delete removes an account no journal line references
func (h *AccountHandler) Delete(c *gin.Context) {
	if err := h.accountService.DeleteAccount(c.Request.Context(), c.Param("id")); err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondNoContent(c)
}

// Balance returns the account balance under its class convention
func (h *AccountHandler) Balance(c *gin.Context) {
	balance, err := h.balanceService.Balance(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondOK(c, mapBalanceToResponse(balance))
}

// Lines lists the journal lines of an account, oldest entry first
func (h *AccountHandler) Lines(c *gin.Context) {
	lines, err := h.journalService.LinesForAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	response := make([]AccountLineResponse, len(lines))
	for i, l := range lines {
		response[i] = mapAccountLineToResponse(l)
	}
	RespondOK(c, response)
}
