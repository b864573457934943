package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/conecta-isp/internal/application/events"
	"github.com/jhoicas/conecta-isp/internal/application/notify"
	"github.com/jhoicas/conecta-isp/internal/domain/entity"
	"github.com/jhoicas/conecta-isp/internal/domain/repository"
	"github.com/jhoicas/conecta-isp/pkg/logger"
)

// StatusNotifier notifica al abonado cada transición de estado de factura
// (creación, unpaid→overdue, unpaid→paid). Suscriptor no crítico del bus:
// nunca propaga errores a la mutación que lo disparó.
type StatusNotifier struct {
	subscribers repository.SubscriberRepository
	dispatcher  *notify.Dispatcher
	log         *logger.Logger
}

// NewStatusNotifier construye el notificador.
func NewStatusNotifier(subscribers repository.SubscriberRepository, dispatcher *notify.Dispatcher, log *logger.Logger) *StatusNotifier {
	return &StatusNotifier{subscribers: subscribers, dispatcher: dispatcher, log: log}
}

// Handle implementa events.Handler para la colección invoices.
func (n *StatusNotifier) Handle(ctx context.Context, ev events.EntityEvent) error {
	if ev.Collection != events.CollectionInvoices {
		return nil
	}
	after, ok := ev.After.(*entity.Invoice)
	if !ok || after == nil {
		return nil
	}
	// Solo estados nuevos: en update, el before debe diferir.
	if ev.Action == events.ActionUpdate {
		if before, ok := ev.Before.(*entity.Invoice); ok && before != nil && before.Status == after.Status {
			return nil
		}
	}

	sub, err := n.subscribers.GetByID(ctx, after.SubscriberID)
	if err != nil || sub == nil {
		n.log.Warn().
			Str("invoice_id", after.ID).
			Str("subscriber_id", after.SubscriberID).
			Msg("no se pudo resolver el abonado para notificar la factura")
		return nil
	}

	title, content := invoiceNotification(after, ev.Action)
	if content == "" {
		return nil
	}
	n.dispatcher.Send(ctx, notify.Input{
		CompanyID:     after.CompanyID,
		Recipient:     sub.Phone,
		Channel:       entity.ChannelSMS,
		Title:         title,
		Content:       content,
		TriggerEvent:  "invoice-" + after.Status,
		CorrelationID: after.ID,
	})
	return nil
}

// invoiceNotification arma el contenido según el estado nuevo de la factura.
func invoiceNotification(inv *entity.Invoice, action events.Action) (title, content string) {
	amount := inv.AmountDue.StringFixed(2)
	switch {
	case action == events.ActionCreate:
		return "Nueva factura",
			fmt.Sprintf("Se generó la factura %s por $%s, con vencimiento %s.", inv.Number, amount, inv.DueDate.Format("2006-01-02"))
	case inv.Status == entity.InvoiceStatusPaid:
		return "Pago recibido",
			fmt.Sprintf("Recibimos el pago de la factura %s. ¡Gracias!", inv.Number)
	case inv.Status == entity.InvoiceStatusOverdue:
		return "Factura vencida",
			fmt.Sprintf("La factura %s por $%s está vencida. Regularice su pago para evitar la suspensión.", inv.Number, amount)
	default:
		return "", ""
	}
}
