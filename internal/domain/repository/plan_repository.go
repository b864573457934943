package repository

import (
	"context"

	"github.com/jhoicas/conecta-isp/internal/domain/entity"
)

// ServicePlanRepository define el puerto de persistencia para ServicePlan.
type ServicePlanRepository interface {
	Create(ctx context.Context, plan *entity.ServicePlan) error
	GetByID(ctx context.Context, id string) (*entity.ServicePlan, error)
	Update(ctx context.Context, plan *entity.ServicePlan) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.ServicePlan, error)
}
