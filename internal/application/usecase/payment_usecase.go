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

// PaymentUseCase registro de pagos y consulta de facturas. El registro es
// append-only: la conciliación y la eventual reconexión las aplica el
// coordinador al recibir el evento.
type PaymentUseCase struct {
	payments    repository.PaymentRepository
	invoices    repository.InvoiceRepository
	subscribers repository.SubscriberRepository
	bus         *events.Bus
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(
	payments repository.PaymentRepository,
	invoices repository.InvoiceRepository,
	subscribers repository.SubscriberRepository,
	bus *events.Bus,
) *PaymentUseCase {
	return &PaymentUseCase{payments: payments, invoices: invoices, subscribers: subscribers, bus: bus}
}

// Register registra un pago y publica el evento de conciliación. Si el
// abonado estaba suspendido y sigue suspendido después del evento (RADIUS
// caído o política full-balance insatisfecha), la respuesta lo advierte.
func (uc *PaymentUseCase) Register(ctx context.Context, companyID, actorID string, in dto.RegisterPaymentRequest) (*dto.PaymentResponse, error) {
	if !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	sub, err := uc.subscribers.GetByID(ctx, in.SubscriberID)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.CompanyID != companyID {
		return nil, domain.ErrInvalidInput
	}
	if in.InvoiceID != nil {
		inv, err := uc.invoices.GetByID(ctx, *in.InvoiceID)
		if err != nil {
			return nil, err
		}
		if inv == nil || inv.SubscriberID != in.SubscriberID {
			return nil, domain.ErrInvalidInput
		}
	}
	wasSuspended := sub.Status == entity.SubscriberStatusSuspended

	now := time.Now()
	paymentDate := now
	if in.PaymentDate != nil {
		paymentDate = *in.PaymentDate
	}
	payment := &entity.Payment{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		SubscriberID: in.SubscriberID,
		InvoiceID:    in.InvoiceID,
		AmountPaid:   in.Amount,
		Method:       in.Method,
		Reference:    in.Reference,
		PaymentDate:  paymentDate,
		CreatedAt:    now,
	}
	if err := uc.payments.Create(ctx, payment); err != nil {
		return nil, err
	}
	_ = uc.bus.Publish(ctx, events.EntityEvent{
		Collection: events.CollectionPayments,
		Action:     events.ActionCreate,
		DocumentID: payment.ID,
		CompanyID:  companyID,
		ActorID:    actorID,
		After:      payment,
	})

	out := toPaymentResponse(payment)
	if wasSuspended {
		refreshed, err := uc.subscribers.GetByID(ctx, in.SubscriberID)
		if err == nil && refreshed != nil && refreshed.Status == entity.SubscriberStatusSuspended {
			out.Warning = "el pago quedó registrado pero el abonado sigue suspendido; la reconexión queda pendiente"
		}
	}
	return out, nil
}

// ListBySubscriber lista los pagos de un abonado.
func (uc *PaymentUseCase) ListBySubscriber(ctx context.Context, companyID, subscriberID string) ([]dto.PaymentResponse, error) {
	sub, err := uc.subscribers.GetByID(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	list, err := uc.payments.ListBySubscriber(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PaymentResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toPaymentResponse(p))
	}
	return items, nil
}

// ListInvoices lista las facturas de un abonado con sus líneas.
func (uc *PaymentUseCase) ListInvoices(ctx context.Context, companyID, subscriberID string) (*dto.InvoiceListResponse, error) {
	sub, err := uc.subscribers.GetByID(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	list, err := uc.invoices.ListBySubscriber(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		resp := toInvoiceResponse(inv)
		invItems, err := uc.invoices.GetItemsByInvoiceID(ctx, inv.ID)
		if err == nil {
			for _, it := range invItems {
				resp.Items = append(resp.Items, dto.InvoiceItemResponse{
					ID:          it.ID,
					Description: it.Description,
					Quantity:    it.Quantity,
					Price:       it.Price,
					Subtotal:    it.Subtotal,
				})
			}
		}
		items = append(items, *resp)
	}
	return &dto.InvoiceListResponse{Items: items}, nil
}

func toPaymentResponse(p *entity.Payment) *dto.PaymentResponse {
	if p == nil {
		return nil
	}
	return &dto.PaymentResponse{
		ID:           p.ID,
		CompanyID:    p.CompanyID,
		SubscriberID: p.SubscriberID,
		InvoiceID:    p.InvoiceID,
		AmountPaid:   p.AmountPaid,
		Method:       p.Method,
		Reference:    p.Reference,
		PaymentDate:  p.PaymentDate,
		CreatedAt:    p.CreatedAt,
	}
}

func toInvoiceResponse(i *entity.Invoice) *dto.InvoiceResponse {
	if i == nil {
		return nil
	}
	return &dto.InvoiceResponse{
		ID:           i.ID,
		CompanyID:    i.CompanyID,
		SubscriberID: i.SubscriberID,
		Number:       i.Number,
		Status:       i.Status,
		AmountDue:    i.AmountDue,
		AmountPaid:   i.AmountPaid,
		DueDate:      i.DueDate,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}
