package repository

import (
	"context"

	"github.com/jhoicas/conecta-isp/internal/domain/entity"
)

// PaymentRepository define el puerto de persistencia para Payment (append-only).
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	ListBySubscriber(ctx context.Context, subscriberID string) ([]*entity.Payment, error)
}
