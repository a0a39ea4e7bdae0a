package handler

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/api_gateway/middleware"
	"github.com/ohada-ledger/internal/api_gateway/service"
	"github.com/ohada-ledger/internal/domain/journal"
	"github.com/ohada-ledger/internal/domain/shared"
)

// SubmissionStatusQueued is reported for a submission waiting in the queue
const SubmissionStatusQueued = "QUEUED"

// JournalHandler handles HTTP requests for journal entries
type JournalHandler struct {
	journalService    service.JournalService
	submissionService service.SubmissionService
	logger            *slog.Logger
}

// NewJournalHandler creates a new journal handler
func NewJournalHandler(logger *slog.Logger, journalService service.JournalService, submissionService service.SubmissionService) *JournalHandler {
	return &JournalHandler{
		journalService:    journalService,
		submissionService: submissionService,
		logger:            logger,
	}
}

// Create validates and records a journal entry with its lines
func (h *JournalHandler) Create(c *gin.Context) {
	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	entry, err := h.journalService.CreateEntry(c.Request.Context(), req.proposal())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapEntryToResponse(entry))
}

// Submit queues a journal entry for asynchronous creation. A reference that
// is already recorded returns the existing entry instead.
func (h *JournalHandler) Submit(c *gin.Context) {
	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Reference) == "" {
		RespondError(c, h.logger, shared.RequiredFieldError{Field: "reference"})
		return
	}

	lines := make([]shared.SubmittedEntryLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = shared.SubmittedEntryLine{
			AccountCode: l.AccountCode,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}

	submission := &shared.EntrySubmission{
		SubmissionID:  uuid.New(),
		Reference:     req.Reference,
		Date:          req.Date,
		Description:   req.Description,
		Lines:         lines,
		CorrelationID: middleware.GetCorrelationID(c),
		SubmittedAt:   time.Now().UTC(),
	}

	submissionID, existing, err := h.submissionService.SubmitEntry(c.Request.Context(), submission)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	if existing != nil {
		RespondOK(c, mapEntryToResponse(existing))
		return
	}

	RespondAccepted(c, SubmissionResponse{
		SubmissionID: submissionID,
		Reference:    submission.Reference,
		Status:       SubmissionStatusQueued,
	})
}

// List returns journal entries newest date first
func (h *JournalHandler) List(c *gin.Context) {
	var query ListEntriesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := journal.ListFilter{IsPosted: query.Posted, Limit: query.Limit, Offset: query.Offset}
	var err error
	if filter.From, err = parseDate(query.From); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	if filter.To, err = parseDate(query.To); err != nil {
		RespondError(c, h.logger, err)
		return
	}

	entries, err := h.journalService.ListEntries(c.Request.Context(), filter)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondOK(c, mapEntriesToResponse(entries))
}

// Get retrieves an entry by id or reference, returning 404 if not found
func (h *JournalHandler) Get(c *gin.Context) {
	entry, err := h.journalService.GetEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondOK(c, mapEntryToResponse(entry))
}

// Update edits an unposted entry
func (h *JournalHandler) Update(c *gin.Context) {
	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	entry, err := h.journalService.UpdateEntry(c.Request.Context(), c.Param("id"), req.update())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondOK(c, mapEntryToResponse(entry))
}

// Post finalises a balanced entry
func (h *JournalHandler) Post(c *gin.Context) {
	entry, err := h.journalService.PostEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondOK(c, mapEntryToResponse(entry))
}

// Delete removes an unposted entry and its lines
func (h *JournalHandler) Delete(c *gin.Context) {
	if err := h.journalService.DeleteEntry(c.Request.Context(), c.Param("id")); err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondNoContent(c)
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(journal.DateLayout, raw)
	if err != nil {
		return nil, journal.InvalidDateError{Value: raw}
	}
	return &t, nil
}
