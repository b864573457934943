package repository

import (
	"context"

	"github.com/jhoicas/conecta-isp/internal/domain/entity"
)

// SubscriberRepository define el puerto de persistencia para Subscriber.
type SubscriberRepository interface {
	Create(ctx context.Context, sub *entity.Subscriber) error
	GetByID(ctx context.Context, id string) (*entity.Subscriber, error)
	// GetByLeadID devuelve el abonado creado a partir del lead, o nil si el
	// lead aún no fue convertido. Es la verificación de idempotencia de la
	// conversión.
	GetByLeadID(ctx context.Context, leadID string) (*entity.Subscriber, error)
	Update(ctx context.Context, sub *entity.Subscriber) error
	// UpdateStatusIf cambia el estado solo si el estado actual coincide con
	// expected. Devuelve false si la precondición ya no se cumple (otra unidad
	// de trabajo ganó la carrera); eso es un no-op para el llamador, no un error.
	UpdateStatusIf(ctx context.Context, id, expected, next string) (bool, error)
	// UpdateIf persiste el abonado completo solo si su estado actual coincide
	// con expected, en una sola sentencia: o se aplican todos los campos de la
	// transición (estado, IP asignada, próximo vencimiento) o ninguno.
	UpdateIf(ctx context.Context, sub *entity.Subscriber, expected string) (bool, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Subscriber, error)
}
