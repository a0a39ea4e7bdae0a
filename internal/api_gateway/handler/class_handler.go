package handler

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ohada-ledger/internal/api_gateway/service"
	"github.com/ohada-ledger/internal/domain/chart"
)

// ClassHandler handles HTTP requests for the OHADA account classes
type ClassHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewClassHandler creates a new class handler
func NewClassHandler(logger *slog.Logger, accountService service.AccountService) *ClassHandler {
	return &ClassHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// List returns the classes ordered by number
func (h *ClassHandler) List(c *gin.Context) {
	classes, err := h.accountService.ListClasses(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	response := make([]ClassResponse, len(classes))
	for i, class := range classes {
		response[i] = mapClassToResponse(class)
	}
	RespondOK(c, response)
}

// Get retrieves a class with its balance convention
func (h *ClassHandler) Get(c *gin.Context) {
	numberParam := c.Param("number")
	number, err := strconv.Atoi(numberParam)
	if err != nil {
		RespondBadRequest(c, "Invalid class number")
		return
	}

	class, err := h.accountService.GetClass(c.Request.Context(), chart.ClassNumber(number))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondOK(c, mapClassToResponse(class))
}
