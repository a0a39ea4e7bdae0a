package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ohada-ledger/internal/api_gateway/service"
)

// ArchiveHandler handles HTTP requests for the posted entries archive
type ArchiveHandler struct {
	archiveService service.ArchiveService
	logger         *slog.Logger
}

// NewArchiveHandler creates a new archive handler
func NewArchiveHandler(logger *slog.Logger, archiveService service.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{
		archiveService: archiveService,
		logger:         logger,
	}
}

// GetByReference retrieves the archived snapshot of a posted entry
func (h *ArchiveHandler) GetByReference(c *gin.Context) {
	entry, err := h.archiveService.GetPostedEntry(c.Request.Context(), c.Param("reference"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondOK(c, entry)
}

// GetByAccount retrieves paginated archived entries touching an account
func (h *ArchiveHandler) GetByAccount(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Warn("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	code := c.Param("code")
	entries, total, err := h.archiveService.GetPostedEntriesByAccount(
		c.Request.Context(),
		code,
		pagination.Page,
		pagination.PerPage,
	)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, mapPostedEntries(entries), pagination.Page, pagination.PerPage, int(total))
}
