package repository

import (
	"context"

	"github.com/jhoicas/conecta-isp/internal/domain/entity"
)

// AuditLogRepository define el puerto de persistencia para AuditLogEntry.
// Solo inserta y lista: el log es append-only por contrato.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *entity.AuditLogEntry) error
	ListByDocument(ctx context.Context, collection, documentID string) ([]*entity.AuditLogEntry, error)
}
