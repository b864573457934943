package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/conecta-isp/internal/application/dto"
	"github.com/jhoicas/conecta-isp/internal/application/events"
	"github.com/jhoicas/conecta-isp/internal/domain"
	"github.com/jhoicas/conecta-isp/internal/domain/entity"
	fsm "github.com/jhoicas/conecta-isp/internal/domain/provisioning"
	"github.com/jhoicas/conecta-isp/internal/domain/repository"
)

// SubscriberUseCase consulta y transiciones manuales del abonado. Suspensión y
// baja validan contra la máquina de estados y publican el evento; los efectos
// de red (RADIUS, liberación de IP) los aplica el coordinador suscrito.
type SubscriberUseCase struct {
	subscribers repository.SubscriberRepository
	bus         *events.Bus
}

// NewSubscriberUseCase construye el caso de uso.
func NewSubscriberUseCase(subscribers repository.SubscriberRepository, bus *events.Bus) *SubscriberUseCase {
	return &SubscriberUseCase{subscribers: subscribers, bus: bus}
}

// GetByID obtiene un abonado de la empresa del actor.
func (uc *SubscriberUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.SubscriberResponse, error) {
	sub, err := uc.getOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toSubscriberResponse(sub), nil
}

// Update edita datos de contacto. El estado nunca se toca por aquí.
func (uc *SubscriberUseCase) Update(ctx context.Context, companyID, actorID, id string, in dto.UpdateSubscriberRequest) (*dto.SubscriberResponse, error) {
	sub, err := uc.getOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	before := *sub
	if in.Phone != nil {
		sub.Phone = *in.Phone
	}
	if in.Email != nil {
		sub.Email = *in.Email
	}
	if in.DeviceToken != nil {
		sub.DeviceToken = *in.DeviceToken
	}
	sub.UpdatedAt = time.Now()
	if err := uc.subscribers.Update(ctx, sub); err != nil {
		return nil, err
	}
	uc.publish(ctx, actorID, &before, sub)
	return toSubscriberResponse(sub), nil
}

// Suspend transiciona el abonado a suspended (corte por mora u orden manual).
func (uc *SubscriberUseCase) Suspend(ctx context.Context, companyID, actorID, id string) (*dto.SubscriberActionResponse, error) {
	return uc.transition(ctx, companyID, actorID, id, fsm.EventSuspend)
}

// Deactivate transiciona el abonado a deactivated (baja definitiva).
func (uc *SubscriberUseCase) Deactivate(ctx context.Context, companyID, actorID, id string) (*dto.SubscriberActionResponse, error) {
	return uc.transition(ctx, companyID, actorID, id, fsm.EventDeactivate)
}

func (uc *SubscriberUseCase) transition(ctx context.Context, companyID, actorID, id string, event fsm.Event) (*dto.SubscriberActionResponse, error) {
	sub, err := uc.getOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	next, err := fsm.Next(sub.Status, event)
	if err != nil {
		if errors.Is(err, domain.ErrIllegalTransition) {
			return nil, domain.ErrIllegalTransition
		}
		return nil, err
	}
	applied, err := uc.subscribers.UpdateStatusIf(ctx, id, sub.Status, next)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, domain.ErrConflict // otra unidad de trabajo cambió el estado primero
	}

	before := *sub
	sub.Status = next
	// UpdatedAt nuevo distingue esta transición de las anteriores para los
	// marcadores de idempotencia de los efectos.
	sub.UpdatedAt = time.Now()
	if err := uc.subscribers.Update(ctx, sub); err != nil {
		return nil, err
	}
	uc.publish(ctx, actorID, &before, sub)

	return &dto.SubscriberActionResponse{Subscriber: *toSubscriberResponse(sub)}, nil
}

// List lista abonados de la empresa con paginación.
func (uc *SubscriberUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.SubscriberListResponse, error) {
	list, err := uc.subscribers.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SubscriberResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSubscriberResponse(s))
	}
	return &dto.SubscriberListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func (uc *SubscriberUseCase) getOwned(ctx context.Context, companyID, id string) (*entity.Subscriber, error) {
	sub, err := uc.subscribers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domain.ErrNotFound
	}
	if sub.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return sub, nil
}

func (uc *SubscriberUseCase) publish(ctx context.Context, actorID string, before, after *entity.Subscriber) {
	_ = uc.bus.Publish(ctx, events.EntityEvent{
		Collection: events.CollectionSubscribers,
		Action:     events.ActionUpdate,
		DocumentID: after.ID,
		CompanyID:  after.CompanyID,
		ActorID:    actorID,
		Before:     before,
		After:      after,
	})
}

func toSubscriberResponse(s *entity.Subscriber) *dto.SubscriberResponse {
	if s == nil {
		return nil
	}
	return &dto.SubscriberResponse{
		ID:             s.ID,
		CompanyID:      s.CompanyID,
		AccountNumber:  s.AccountNumber,
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		Phone:          s.Phone,
		Email:          s.Email,
		Status:         s.Status,
		ServicePlanID:  s.ServicePlanID,
		ConnectionType: s.ConnectionType,
		AssignedIPID:   s.AssignedIPID,
		RadiusUsername: s.RadiusUsername,
		AccountBalance: s.AccountBalance,
		NextDueDate:    s.NextDueDate,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}
