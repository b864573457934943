package repository

import (
	"context"

	"github.com/jhoicas/conecta-isp/internal/domain/entity"
)

// WorkOrderRepository define el puerto de persistencia para WorkOrder.
type WorkOrderRepository interface {
	Create(ctx context.Context, order *entity.WorkOrder) error
	GetByID(ctx context.Context, id string) (*entity.WorkOrder, error)
	Update(ctx context.Context, order *entity.WorkOrder) error
	// GetBySubscriberAndType devuelve la orden más reciente del tipo dado para
	// el abonado, o nil. Evita duplicar la orden de instalación al reprocesar
	// una conversión.
	GetBySubscriberAndType(ctx context.Context, subscriberID, orderType string) (*entity.WorkOrder, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.WorkOrder, error)
}
