package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondWithError maps ledger error kinds onto HTTP statuses. Deterministic
// rejections are logged as warnings; anything unexpected is logged as an error
// and its message is not leaked to the caller.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrImbalance):
		logger.Warn("Request rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err.Error(), err))
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(err.Error(), err))
	case errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Request conflicts with ledger state", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, dto.NewErrorResponse(err.Error(), err))
	case errors.Is(err, apperrors.ErrPolicyViolation):
		logger.Warn("Posting policy rejected entry", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse(err.Error(), err))
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		logger.Warn("Request did not complete in time", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse("request timed out, nothing was committed", nil).Retryable())
	case errors.As(err, &appErr) && appErr.Code == http.StatusServiceUnavailable:
		logger.Warn("Transient storage failure", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(appErr.Message, nil).Retryable())
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(fallback, nil))
	}
}

// respondBindError reports a request that could not be decoded or failed binding rules.
func respondBindError(c *gin.Context, logger *slog.Logger, what string, err error) {
	logger.Warn("Failed to bind "+what, slog.String("error", err.Error()))
	resp := dto.NewErrorResponse("Invalid "+what+": "+err.Error(), nil)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		resp.Details = &dto.ErrorDetails{Field: fieldErrs[0].Field()}
	}
	c.JSON(http.StatusBadRequest, resp)
}
