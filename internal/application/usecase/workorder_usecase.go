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

// WorkOrderUseCase gestión de órdenes de campo. Completar una orden
// new-installation publica el evento que el coordinador convierte en la
// activación de red del abonado.
type WorkOrderUseCase struct {
	orders      repository.WorkOrderRepository
	subscribers repository.SubscriberRepository
	bus         *events.Bus
}

// NewWorkOrderUseCase construye el caso de uso.
func NewWorkOrderUseCase(
	orders repository.WorkOrderRepository,
	subscribers repository.SubscriberRepository,
	bus *events.Bus,
) *WorkOrderUseCase {
	return &WorkOrderUseCase{orders: orders, subscribers: subscribers, bus: bus}
}

// Create crea una orden manual (survey o reparación; la de instalación la
// crea la conversión del lead).
func (uc *WorkOrderUseCase) Create(ctx context.Context, companyID, actorID string, in dto.CreateWorkOrderRequest) (*dto.WorkOrderResponse, error) {
	sub, err := uc.subscribers.GetByID(ctx, in.SubscriberID)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.CompanyID != companyID {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	order := &entity.WorkOrder{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		OrderType:    in.OrderType,
		SubscriberID: in.SubscriberID,
		Status:       entity.WorkOrderStatusPending,
		StaffID:      in.StaffID,
		Notes:        in.Notes,
		ScheduledFor: in.ScheduledFor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.ScheduledFor != nil {
		order.Status = entity.WorkOrderStatusScheduled
	}
	if err := uc.orders.Create(ctx, order); err != nil {
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
	return toWorkOrderResponse(order), nil
}

// GetByID obtiene una orden de la empresa del actor.
func (uc *WorkOrderUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.WorkOrderResponse, error) {
	order, err := uc.getOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toWorkOrderResponse(order), nil
}

// Update avanza la orden. Una orden completed o failed es terminal. Si la
// orden completada es de instalación y el abonado sigue pending-installation
// después del evento, la activación abortó y la respuesta lo advierte.
func (uc *WorkOrderUseCase) Update(ctx context.Context, companyID, actorID, id string, in dto.UpdateWorkOrderRequest) (*dto.WorkOrderResponse, error) {
	order, err := uc.getOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if order.Status == entity.WorkOrderStatusCompleted || order.Status == entity.WorkOrderStatusFailed {
		return nil, domain.ErrConflict
	}
	before := *order
	if in.Status != nil {
		order.Status = *in.Status
	}
	if in.StaffID != nil {
		order.StaffID = in.StaffID
	}
	if in.Notes != nil {
		order.Notes = *in.Notes
	}
	if in.ScheduledFor != nil {
		order.ScheduledFor = in.ScheduledFor
	}
	order.UpdatedAt = time.Now()
	if err := uc.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	_ = uc.bus.Publish(ctx, events.EntityEvent{
		Collection: events.CollectionWorkOrders,
		Action:     events.ActionUpdate,
		DocumentID: order.ID,
		CompanyID:  companyID,
		ActorID:    actorID,
		Before:     &before,
		After:      order,
	})

	out := toWorkOrderResponse(order)
	if order.Status == entity.WorkOrderStatusCompleted && order.OrderType == entity.WorkOrderNewInstallation {
		sub, err := uc.subscribers.GetByID(ctx, order.SubscriberID)
		if err == nil && sub != nil && sub.Status == entity.SubscriberStatusPendingInstallation {
			out.Warning = "la orden quedó completada pero la activación no se aplicó; corrija la causa y re-dispare el evento"
		}
	}
	return out, nil
}

// Retrigger re-publica el evento de finalización de una orden completada,
// para reintentar una activación abortada (pool repuesto, RADIUS recuperado).
func (uc *WorkOrderUseCase) Retrigger(ctx context.Context, companyID, actorID, id string) (*dto.WorkOrderResponse, error) {
	order, err := uc.getOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if order.Status != entity.WorkOrderStatusCompleted {
		return nil, domain.ErrConflict
	}
	before := *order
	before.Status = entity.WorkOrderStatusInProgress
	_ = uc.bus.Publish(ctx, events.EntityEvent{
		Collection: events.CollectionWorkOrders,
		Action:     events.ActionUpdate,
		DocumentID: order.ID,
		CompanyID:  companyID,
		ActorID:    actorID,
		Before:     &before,
		After:      order,
	})

	out := toWorkOrderResponse(order)
	if order.OrderType == entity.WorkOrderNewInstallation {
		sub, err := uc.subscribers.GetByID(ctx, order.SubscriberID)
		if err == nil && sub != nil && sub.Status == entity.SubscriberStatusPendingInstallation {
			out.Warning = "la activación sigue sin aplicarse; revise el pool de IPs y el estado de RADIUS"
		}
	}
	return out, nil
}

// List lista órdenes de la empresa con paginación.
func (uc *WorkOrderUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.WorkOrderListResponse, error) {
	list, err := uc.orders.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WorkOrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toWorkOrderResponse(o))
	}
	return &dto.WorkOrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func (uc *WorkOrderUseCase) getOwned(ctx context.Context, companyID, id string) (*entity.WorkOrder, error) {
	order, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if order.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

func toWorkOrderResponse(o *entity.WorkOrder) *dto.WorkOrderResponse {
	if o == nil {
		return nil
	}
	return &dto.WorkOrderResponse{
		ID:           o.ID,
		CompanyID:    o.CompanyID,
		OrderType:    o.OrderType,
		SubscriberID: o.SubscriberID,
		Status:       o.Status,
		StaffID:      o.StaffID,
		TicketID:     o.TicketID,
		Notes:        o.Notes,
		ScheduledFor: o.ScheduledFor,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}
