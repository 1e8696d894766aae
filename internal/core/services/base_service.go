package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/ledger_core/internal/middleware"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// OperationRecorder receives the outcome of every ledger operation.
// The prometheus collectors in internal/platform/metrics implement it.
type OperationRecorder interface {
	RecordOperation(operation string, err error)
}

type noopRecorder struct{}

func (noopRecorder) RecordOperation(string, error) {}

// serviceOptions is shared by the account and journal services.
type serviceOptions struct {
	recorder OperationRecorder
	pageSize int
	policies []PostingPolicy
}

// ServiceOption is a functional option for configuring the ledger services
type ServiceOption func(*serviceOptions)

// WithRecorder reports operation outcomes to r.
func WithRecorder(r OperationRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithPageSize sets the chunk size used by the lazy Iterate* sequences.
func WithPageSize(n int) ServiceOption {
	return func(o *serviceOptions) {
		if n > 0 {
			o.pageSize = min(n, maxPageSize)
		}
	}
}

// WithPostingPolicies adds optional business rules evaluated after the core posting checks.
func WithPostingPolicies(policies ...PostingPolicy) ServiceOption {
	return func(o *serviceOptions) {
		o.policies = append(o.policies, policies...)
	}
}

func buildOptions(opts []ServiceOption) serviceOptions {
	o := serviceOptions{recorder: noopRecorder{}, pageSize: defaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// BaseService provides common functionality for all services
type BaseService struct {
	recorder OperationRecorder
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogWarn logs a rejected request; these are caller mistakes, not server faults.
func (s *BaseService) LogWarn(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Warn(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

func (s *BaseService) record(operation string, err error) {
	if s.recorder != nil {
		s.recorder.RecordOperation(operation, err)
	}
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return min(limit, maxPageSize)
}
