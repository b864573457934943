package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la factura.
const (
	InvoiceStatusUnpaid  = "unpaid"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
	InvoiceStatusWaived  = "waived"
)

// Invoice representa la cabecera de una factura de servicio.
type Invoice struct {
	ID           string
	CompanyID    string
	SubscriberID string
	Number       string // único, derivado de timestamp (FAC-<unix>)
	Status       string // ver constantes InvoiceStatus*
	AmountDue    decimal.Decimal
	AmountPaid   decimal.Decimal // acumulado de pagos conciliados
	DueDate      time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Outstanding devuelve el saldo pendiente de la factura.
func (i *Invoice) Outstanding() decimal.Decimal {
	return i.AmountDue.Sub(i.AmountPaid)
}

// InvoiceItem representa una línea de la factura.
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	Description string
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	Subtotal    decimal.Decimal // Quantity * Price
}
