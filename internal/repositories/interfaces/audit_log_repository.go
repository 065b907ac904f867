package interfaces

import (
	"context"

	"godeliver/internal/models"
)

type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	ListByOrder(ctx context.Context, orderID string, limit int64) ([]*models.AuditLog, error)
}
