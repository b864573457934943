package repository

import (
	"context"

	"github.com/jhoicas/conecta-isp/internal/domain/entity"
)

// MessageRepository define el puerto de persistencia para el historial de
// notificaciones.
type MessageRepository interface {
	Create(ctx context.Context, msg *entity.Message) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Message, error)
}
