package handler

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ohada-ledger/internal/api_gateway/service"
)

const csvContentType = "text/csv; charset=utf-8"

// ReportHandler handles HTTP requests for ledger reports
type ReportHandler struct {
	reportService service.ReportService
	logger        *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(logger *slog.Logger, reportService service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// TrialBalance returns the trial balance as JSON, or as semicolon separated
// values with ?format=csv
func (h *ReportHandler) TrialBalance(c *gin.Context) {
	tb, err := h.reportService.TrialBalance(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "json":
		RespondOK(c, tb)
	case "csv":
		var buf bytes.Buffer
		if err := tb.WriteCSV(&buf); err != nil {
			RespondError(c, h.logger, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="balance.csv"`)
		c.Data(http.StatusOK, csvContentType, buf.Bytes())
	default:
		RespondBadRequest(c, "Unsupported format, use json or csv")
	}
}

// UnbalancedEntries audits stored entries whose lines do not balance
func (h *ReportHandler) UnbalancedEntries(c *gin.Context) {
	findings, err := h.reportService.UnbalancedEntries(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondOK(c, findings)
}
