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

// TicketUseCase soporte al abonado. Escalar un ticket abre una orden de
// reparación enlazada.
type TicketUseCase struct {
	tickets     repository.TicketRepository
	orders      repository.WorkOrderRepository
	subscribers repository.SubscriberRepository
	bus         *events.Bus
}

// NewTicketUseCase construye el caso de uso.
func NewTicketUseCase(
	tickets repository.TicketRepository,
	orders repository.WorkOrderRepository,
	subscribers repository.SubscriberRepository,
	bus *events.Bus,
) *TicketUseCase {
	return &TicketUseCase{tickets: tickets, orders: orders, subscribers: subscribers, bus: bus}
}

// Create abre un ticket para un abonado de la empresa.
func (uc *TicketUseCase) Create(ctx context.Context, companyID, actorID string, in dto.CreateTicketRequest) (*dto.TicketResponse, error) {
	sub, err := uc.subscribers.GetByID(ctx, in.SubscriberID)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.CompanyID != companyID {
		return nil, domain.ErrInvalidInput
	}
	priority := in.Priority
	if priority == "" {
		priority = "medium"
	}
	now := time.Now()
	ticket := &entity.Ticket{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		SubscriberID: in.SubscriberID,
		Subject:      in.Subject,
		Description:  in.Description,
		Status:       entity.TicketStatusOpen,
		Priority:     priority,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	_ = uc.bus.Publish(ctx, events.EntityEvent{
		Collection: events.CollectionTickets,
		Action:     events.ActionCreate,
		DocumentID: ticket.ID,
		CompanyID:  companyID,
		ActorID:    actorID,
		After:      ticket,
	})
	return toTicketResponse(ticket), nil
}

// GetByID obtiene un ticket de la empresa del actor.
func (uc *TicketUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.TicketResponse, error) {
	ticket, err := uc.getOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toTicketResponse(ticket), nil
}

// Update resuelve o cierra un ticket.
func (uc *TicketUseCase) Update(ctx context.Context, companyID, actorID, id string, in dto.UpdateTicketRequest) (*dto.TicketResponse, error) {
	ticket, err := uc.getOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status == entity.TicketStatusClosed {
		return nil, domain.ErrConflict
	}
	before := *ticket
	if in.Status != nil {
		ticket.Status = *in.Status
	}
	if in.Description != nil {
		ticket.Description = *in.Description
	}
	ticket.UpdatedAt = time.Now()
	if err := uc.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	_ = uc.bus.Publish(ctx, events.EntityEvent{
		Collection: events.CollectionTickets,
		Action:     events.ActionUpdate,
		DocumentID: ticket.ID,
		CompanyID:  companyID,
		ActorID:    actorID,
		Before:     &before,
		After:      ticket,
	})
	return toTicketResponse(ticket), nil
}

// Escalate abre una orden de reparación para el ticket y lo marca escalated.
// Un ticket que ya generó orden no se escala dos veces.
func (uc *TicketUseCase) Escalate(ctx context.Context, companyID, actorID, id string, staffID *string) (*dto.EscalateTicketResponse, error) {
	ticket, err := uc.getOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status != entity.TicketStatusOpen || ticket.WorkOrderID != nil {
		return nil, domain.ErrConflict
	}

	now := time.Now()
	order := &entity.WorkOrder{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		OrderType:    entity.WorkOrderRepair,
		SubscriberID: ticket.SubscriberID,
		Status:       entity.WorkOrderStatusPending,
		StaffID:      staffID,
		TicketID:     &ticket.ID,
		Notes:        "Reparación por ticket: " + ticket.Subject,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	before := *ticket
	ticket.Status = entity.TicketStatusEscalated
	ticket.WorkOrderID = &order.ID
	ticket.UpdatedAt = now
	if err := uc.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	_ = uc.bus.Publish(ctx, events.EntityEvent{
		Collection: events.CollectionWorkOrders,
		Action:     events.ActionCreate,
		DocumentID: order.ID,
		CompanyID:  companyID,
		ActorID:    actorID,
		After:      order,
	})
	_ = uc.bus.Publish(ctx, events.EntityEvent{
		Collection: events.CollectionTickets,
		Action:     events.ActionUpdate,
		DocumentID: ticket.ID,
		CompanyID:  companyID,
		ActorID:    actorID,
		Before:     &before,
		After:      ticket,
	})

	return &dto.EscalateTicketResponse{
		Ticket:    *toTicketResponse(ticket),
		WorkOrder: *toWorkOrderResponse(order),
	}, nil
}

// List lista tickets de la empresa con paginación.
func (uc *TicketUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.TicketListResponse, error) {
	list, err := uc.tickets.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TicketResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toTicketResponse(t))
	}
	return &dto.TicketListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func (uc *TicketUseCase) getOwned(ctx context.Context, companyID, id string) (*entity.Ticket, error) {
	ticket, err := uc.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, domain.ErrNotFound
	}
	if ticket.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return ticket, nil
}

func toTicketResponse(t *entity.Ticket) *dto.TicketResponse {
	if t == nil {
		return nil
	}
	return &dto.TicketResponse{
		ID:           t.ID,
		CompanyID:    t.CompanyID,
		SubscriberID: t.SubscriberID,
		Subject:      t.Subject,
		Description:  t.Description,
		Status:       t.Status,
		Priority:     t.Priority,
		WorkOrderID:  t.WorkOrderID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
