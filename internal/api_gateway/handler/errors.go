package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ohada-ledger/internal/domain/chart"
	"github.com/ohada-ledger/internal/domain/journal"
	"github.com/ohada-ledger/internal/domain/shared"
	"github.com/ohada-ledger/internal/logger"
)

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(kind shared.ErrorKind) int {
	switch shared.CategoryOf(kind) {
	case shared.CategoryValidation, shared.CategoryReference:
		return http.StatusBadRequest
	case shared.CategoryNotFound:
		return http.StatusNotFound
	case shared.CategoryConflict, shared.CategoryState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondError sends the error envelope for err. Business errors carry their
// kind, message and details; anything else is logged and hidden behind a 500.
func RespondError(c *gin.Context, fallback *slog.Logger, err error) {
	kind := shared.KindOf(err)
	if kind == shared.KindInternal {
		logger.FromContext(c.Request.Context(), fallback).Error("Request failed",
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"error", err,
		)
		RespondInternalError(c)
		return
	}
	RespondWithErrorDetails(c, StatusFor(kind), string(kind), err.Error(), errorDetails(err))
}

func errorDetails(err error) map[string]interface{} {
	var (
		unbalanced   journal.UnbalancedEntryError
		unknownAcc   journal.UnknownAccountError
		negative     journal.NegativeAmountError
		badAmount    journal.InvalidAmountError
		mixed        journal.MixedLineError
		insufficient journal.InsufficientLinesError
		invalidDate  journal.InvalidDateError
		dupRef       journal.DuplicateReferenceError
		dupCode      chart.DuplicateCodeError
		unknownClass chart.UnknownClassError
		inUse        chart.AccountInUseError
		required     shared.RequiredFieldError
		invalid      shared.InvalidFieldError
	)

	switch {
	case errors.As(err, &unbalanced):
		return map[string]interface{}{
			"total_debit":  unbalanced.TotalDebit.StringFixed(2),
			"total_credit": unbalanced.TotalCredit.StringFixed(2),
			"difference":   unbalanced.TotalDebit.Sub(unbalanced.TotalCredit).StringFixed(2),
		}
	case errors.As(err, &unknownAcc):
		return lineDetails(unknownAcc.Line, unknownAcc.AccountCode)
	case errors.As(err, &negative):
		return lineDetails(negative.Line, negative.AccountCode)
	case errors.As(err, &badAmount):
		details := lineDetails(badAmount.Line, badAmount.AccountCode)
		details["amount"] = badAmount.Amount.String()
		return details
	case errors.As(err, &mixed):
		return lineDetails(mixed.Line, mixed.AccountCode)
	case errors.As(err, &insufficient):
		return map[string]interface{}{"line_count": insufficient.Count}
	case errors.As(err, &invalidDate):
		return map[string]interface{}{"date": invalidDate.Value}
	case errors.As(err, &dupRef):
		return map[string]interface{}{"reference": dupRef.Reference}
	case errors.As(err, &dupCode):
		return map[string]interface{}{"code": dupCode.Code}
	case errors.As(err, &unknownClass):
		return map[string]interface{}{"class_number": int(unknownClass.Number)}
	case errors.As(err, &inUse):
		return map[string]interface{}{"code": inUse.Code}
	case errors.As(err, &required):
		return map[string]interface{}{"field": required.Field}
	case errors.As(err, &invalid):
		return map[string]interface{}{"field": invalid.Field}
	}
	return nil
}

// lineDetails reports line positions one-based, as a caller counts them.
func lineDetails(line int, code string) map[string]interface{} {
	return map[string]interface{}{
		"line":         line + 1,
		"account_code": code,
	}
}
