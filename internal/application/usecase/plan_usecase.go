package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/conecta-isp/internal/application/dto"
	"github.com/jhoicas/conecta-isp/internal/application/events"
	"github.com/jhoicas/conecta-isp/internal/domain"
	"github.com/jhoicas/conecta-isp/internal/domain/entity"
	"github.com/jhoicas/conecta-isp/internal/domain/repository"
)

// PlanUseCase CRUD de planes de servicio.
type PlanUseCase struct {
	plans   repository.ServicePlanRepository
	subnets repository.SubnetRepository
	bus     *events.Bus
}

// NewPlanUseCase construye el caso de uso.
func NewPlanUseCase(plans repository.ServicePlanRepository, subnets repository.SubnetRepository, bus *events.Bus) *PlanUseCase {
	return &PlanUseCase{plans: plans, subnets: subnets, bus: bus}
}

// Create crea un plan. Un plan static-pool exige una subred existente de la
// misma empresa, de donde el ledger reclamará las IPs.
func (uc *PlanUseCase) Create(ctx context.Context, companyID, actorID string, in dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	if !in.Price.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	if in.IPAssignmentType == entity.IPAssignStaticPool {
		if in.SubnetID == "" {
			return nil, domain.ErrInvalidInput
		}
		subnet, err := uc.subnets.GetByID(ctx, in.SubnetID)
		if err != nil {
			return nil, err
		}
		if subnet == nil || subnet.CompanyID != companyID {
			return nil, domain.ErrInvalidInput
		}
	}
	now := time.Now()
	plan := &entity.ServicePlan{
		ID:               uuid.New().String(),
		CompanyID:        companyID,
		Name:             in.Name,
		Price:            in.Price,
		InstallationFee:  in.InstallationFee,
		IPAssignmentType: in.IPAssignmentType,
		ConnectionType:   in.ConnectionType,
		SubnetID:         in.SubnetID,
		DownloadKbps:     in.DownloadKbps,
		UploadKbps:       in.UploadKbps,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.plans.Create(ctx, plan); err != nil {
		return nil, err
	}
	_ = uc.bus.Publish(ctx, events.EntityEvent{
		Collection: events.CollectionPlans,
		Action:     events.ActionCreate,
		DocumentID: plan.ID,
		CompanyID:  companyID,
		ActorID:    actorID,
		After:      plan,
	})
	return toPlanResponse(plan), nil
}

// GetByID obtiene un plan de la empresa del actor.
func (uc *PlanUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.PlanResponse, error) {
	plan, err := uc.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrNotFound
	}
	if plan.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return toPlanResponse(plan), nil
}

// List lista planes de la empresa con paginación.
func (uc *PlanUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.PlanListResponse, error) {
	list, err := uc.plans.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PlanResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toPlanResponse(p))
	}
	return &dto.PlanListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toPlanResponse(p *entity.ServicePlan) *dto.PlanResponse {
	if p == nil {
		return nil
	}
	return &dto.PlanResponse{
		ID:               p.ID,
		CompanyID:        p.CompanyID,
		Name:             p.Name,
		Price:            p.Price,
		InstallationFee:  p.InstallationFee,
		IPAssignmentType: p.IPAssignmentType,
		ConnectionType:   p.ConnectionType,
		SubnetID:         p.SubnetID,
		DownloadKbps:     p.DownloadKbps,
		UploadKbps:       p.UploadKbps,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
