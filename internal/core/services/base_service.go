package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/finledger/fin_ledger_app/internal/apperrors"
	"github.com/finledger/fin_ledger_app/internal/core/domain"
	"github.com/finledger/fin_ledger_app/internal/middleware"
)

// BaseService provides common functionality for all services.
type BaseService struct{}

// GetLogger gets the request-scoped logger from context or a default one.
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting.
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting.
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting.
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting.
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// RequirePermission is the coarse allow/deny check that runs before any SoD
// evaluation. Callers missing the base permission never reach SoD.
func (s *BaseService) RequirePermission(ctx context.Context, caller domain.Caller, perm string) error {
	if !caller.HasPermission(perm) {
		s.LogWarn(ctx, "Permission denied",
			slog.String("user_id", caller.UserID),
			slog.String("tenant_id", caller.TenantID),
			slog.String("permission", perm))
		return fmt.Errorf("%w: missing permission %s", apperrors.ErrForbidden, perm)
	}
	return nil
}
