package analytics

import (
	"context"

	"go.uber.org/zap"
)

// AuditLog writes link lifecycle events to the structured log.
type AuditLog struct {
	logger *zap.Logger
}

// NewAuditLog creates a new audit log.
func NewAuditLog(logger *zap.Logger) *AuditLog {
	return &AuditLog{logger: logger}
}

func (a *AuditLog) HandleURLCreated(_ context.Context, event *URLCreatedEvent) error {
	a.logger.Info("short url created",
		zap.String("code", event.Code),
		zap.String("originalUrl", event.OriginalURL),
		zap.String("createdBy", event.CreatedBy),
		zap.Time("expiresAt", event.ExpiresAt),
		zap.Time("createdAt", event.CreatedAt),
	)

	return nil
}

func (a *AuditLog) HandleURLDeleted(_ context.Context, event *URLDeletedEvent) error {
	a.logger.Info("short url deleted",
		zap.String("code", event.Code),
		zap.String("deletedBy", event.DeletedBy),
		zap.Bool("asAdmin", event.AsAdmin),
		zap.Time("deletedAt", event.DeletedAt),
	)

	return nil
}
