package repository

import (
	"context"

	"github.com/jhoicas/conecta-isp/internal/domain/entity"
)

// LeadRepository define el puerto de persistencia para Lead.
type LeadRepository interface {
	Create(ctx context.Context, lead *entity.Lead) error
	GetByID(ctx context.Context, id string) (*entity.Lead, error)
	Update(ctx context.Context, lead *entity.Lead) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Lead, error)
}
