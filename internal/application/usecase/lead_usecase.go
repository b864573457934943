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

// LeadUseCase casos de uso del embudo comercial: alta, avance de estado y
// conversión. La conversión solo marca el lead como converted y publica el
// evento; el coordinador de aprovisionamiento crea el abonado aguas abajo.
type LeadUseCase struct {
	leads       repository.LeadRepository
	subscribers repository.SubscriberRepository
	plans       repository.ServicePlanRepository
	bus         *events.Bus
}

// NewLeadUseCase construye el caso de uso.
func NewLeadUseCase(
	leads repository.LeadRepository,
	subscribers repository.SubscriberRepository,
	plans repository.ServicePlanRepository,
	bus *events.Bus,
) *LeadUseCase {
	return &LeadUseCase{leads: leads, subscribers: subscribers, plans: plans, bus: bus}
}

// Create registra un prospecto en estado new.
func (uc *LeadUseCase) Create(ctx context.Context, companyID, actorID string, in dto.CreateLeadRequest) (*dto.LeadResponse, error) {
	if in.PlanID != "" {
		plan, err := uc.plans.GetByID(ctx, in.PlanID)
		if err != nil {
			return nil, err
		}
		if plan == nil || plan.CompanyID != companyID {
			return nil, domain.ErrInvalidInput
		}
	}
	now := time.Now()
	lead := &entity.Lead{
		ID:              uuid.New().String(),
		CompanyID:       companyID,
		Status:          entity.LeadStatusNew,
		Name:            in.Name,
		Phone:           in.Phone,
		Email:           in.Email,
		Source:          in.Source,
		PlanID:          in.PlanID,
		PartnerID:       in.PartnerID,
		ServiceLocation: in.ServiceLocation,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.leads.Create(ctx, lead); err != nil {
		return nil, err
	}
	uc.publish(ctx, events.ActionCreate, actorID, nil, lead)
	return toLeadResponse(lead), nil
}

// GetByID obtiene un lead de la empresa del actor.
func (uc *LeadUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.LeadResponse, error) {
	lead, err := uc.getOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toLeadResponse(lead), nil
}

// Update avanza el lead por el embudo. Los estados terminales (converted,
// lost) no se editan; pasar a converted tiene su propio endpoint.
func (uc *LeadUseCase) Update(ctx context.Context, companyID, actorID, id string, in dto.UpdateLeadRequest) (*dto.LeadResponse, error) {
	lead, err := uc.getOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if lead.Status == entity.LeadStatusConverted || lead.Status == entity.LeadStatusLost {
		return nil, domain.ErrConflict
	}
	before := *lead
	if in.Status != nil {
		lead.Status = *in.Status
	}
	if in.PlanID != nil {
		lead.PlanID = *in.PlanID
	}
	if in.ServiceLocation != nil {
		lead.ServiceLocation = *in.ServiceLocation
	}
	lead.UpdatedAt = time.Now()
	if err := uc.leads.Update(ctx, lead); err != nil {
		return nil, err
	}
	uc.publish(ctx, events.ActionUpdate, actorID, &before, lead)
	return toLeadResponse(lead), nil
}

// Convert marca el lead como converted y publica el evento que dispara la
// creación del abonado, la orden de instalación y la factura inicial. Si la
// orquestación abortó (plan inexistente, fallo transaccional), la respuesta
// lleva un Warning y el evento puede re-dispararse repitiendo la llamada.
func (uc *LeadUseCase) Convert(ctx context.Context, companyID, actorID, id string) (*dto.ConvertLeadResponse, error) {
	lead, err := uc.getOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if lead.Status == entity.LeadStatusConverted || lead.Status == entity.LeadStatusLost {
		return nil, domain.ErrConflict
	}
	if lead.PlanID == "" {
		return nil, domain.ErrInvalidInput // sin plan no hay qué facturar
	}

	before := *lead
	lead.Status = entity.LeadStatusConverted
	lead.UpdatedAt = time.Now()
	if err := uc.leads.Update(ctx, lead); err != nil {
		return nil, err
	}
	uc.publish(ctx, events.ActionUpdate, actorID, &before, lead)

	// El coordinador corre en línea dentro del publish: releer para reflejar
	// el vínculo que haya dejado.
	refreshed, err := uc.leads.GetByID(ctx, id)
	if err != nil || refreshed == nil {
		refreshed = lead
	}
	out := &dto.ConvertLeadResponse{Lead: *toLeadResponse(refreshed)}
	sub, err := uc.subscribers.GetByLeadID(ctx, id)
	if err == nil && sub != nil {
		out.Subscriber = toSubscriberResponse(sub)
	} else {
		out.Warning = "la conversión quedó registrada pero el abonado no se creó; repita la operación para reintentar"
	}
	return out, nil
}

// List lista leads de la empresa con paginación.
func (uc *LeadUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.LeadListResponse, error) {
	list, err := uc.leads.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LeadResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLeadResponse(l))
	}
	return &dto.LeadListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func (uc *LeadUseCase) getOwned(ctx context.Context, companyID, id string) (*entity.Lead, error) {
	lead, err := uc.leads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, domain.ErrNotFound
	}
	if lead.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return lead, nil
}

func (uc *LeadUseCase) publish(ctx context.Context, action events.Action, actorID string, before, after *entity.Lead) {
	ev := events.EntityEvent{
		Collection: events.CollectionLeads,
		Action:     action,
		DocumentID: after.ID,
		CompanyID:  after.CompanyID,
		ActorID:    actorID,
		After:      after,
	}
	if before != nil {
		ev.Before = before
	}
	_ = uc.bus.Publish(ctx, ev)
}

func toLeadResponse(l *entity.Lead) *dto.LeadResponse {
	if l == nil {
		return nil
	}
	return &dto.LeadResponse{
		ID:              l.ID,
		CompanyID:       l.CompanyID,
		Status:          l.Status,
		Name:            l.Name,
		Phone:           l.Phone,
		Email:           l.Email,
		Source:          l.Source,
		PlanID:          l.PlanID,
		PartnerID:       l.PartnerID,
		ServiceLocation: l.ServiceLocation,
		SubscriberID:    l.SubscriberID,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}
