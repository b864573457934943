package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/conecta-isp/internal/domain/entity"
)

// Charge es un cargo único adicional a la primera factura (instalación,
// equipos, cableado extra).
type Charge struct {
	Description string
	Quantity    decimal.Decimal
	Price       decimal.Decimal
}

// BuildInitialInvoice construye la primera factura de un abonado recién
// provisionado: línea de tarifa del plan más los cargos únicos. El vencimiento
// es inmediato (primer cobro al contado) y el número se deriva del timestamp
// para unicidad.
func BuildInitialInvoice(sub *entity.Subscriber, plan *entity.ServicePlan, oneOff []Charge, now time.Time) (*entity.Invoice, []*entity.InvoiceItem) {
	inv := &entity.Invoice{
		ID:           uuid.New().String(),
		CompanyID:    sub.CompanyID,
		SubscriberID: sub.ID,
		Number:       fmt.Sprintf("FAC-%d", now.UnixNano()),
		Status:       entity.InvoiceStatusUnpaid,
		AmountPaid:   decimal.Zero,
		DueDate:      now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	one := decimal.NewFromInt(1)
	items := []*entity.InvoiceItem{{
		ID:          uuid.New().String(),
		InvoiceID:   inv.ID,
		Description: fmt.Sprintf("Plan %s (mensualidad)", plan.Name),
		Quantity:    one,
		Price:       plan.Price,
		Subtotal:    plan.Price,
	}}
	total := plan.Price
	for _, c := range oneOff {
		subtotal := c.Quantity.Mul(c.Price)
		items = append(items, &entity.InvoiceItem{
			ID:          uuid.New().String(),
			InvoiceID:   inv.ID,
			Description: c.Description,
			Quantity:    c.Quantity,
			Price:       c.Price,
			Subtotal:    subtotal,
		})
		total = total.Add(subtotal)
	}
	inv.AmountDue = total
	return inv, items
}

// Reconciliation resultado de conciliar un pago contra una factura.
type Reconciliation struct {
	NewStatus     string
	NewAmountPaid decimal.Decimal
	FullyPaid     bool
}

// Reconcile deriva el nuevo estado de la factura tras un pago. Función pura de
// los montos: paga si el acumulado cubre el total, si no sigue unpaid (u
// overdue si ya lo estaba) con el saldo reducido. Una factura waived no se
// reconcilia.
func Reconcile(inv *entity.Invoice, amountPaid decimal.Decimal) Reconciliation {
	if inv.Status == entity.InvoiceStatusWaived {
		return Reconciliation{NewStatus: inv.Status, NewAmountPaid: inv.AmountPaid}
	}
	accumulated := inv.AmountPaid.Add(amountPaid)
	if accumulated.GreaterThanOrEqual(inv.AmountDue) {
		return Reconciliation{
			NewStatus:     entity.InvoiceStatusPaid,
			NewAmountPaid: accumulated,
			FullyPaid:     true,
		}
	}
	// Pago parcial: conserva unpaid/overdue según estuviera.
	return Reconciliation{NewStatus: inv.Status, NewAmountPaid: accumulated}
}
