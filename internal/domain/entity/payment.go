package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "transfer"
	PaymentMethodMobile   = "mobile-money"
	PaymentMethodCard     = "card"
)

// Payment representa un pago registrado. Append-only: nunca se actualiza ni
// elimina. Su creación dispara la conciliación y, si el abonado está
// suspendido, el intento de reconexión.
type Payment struct {
	ID           string
	CompanyID    string
	SubscriberID string
	InvoiceID    *string // factura contra la que se concilia; nil = abono a cuenta
	AmountPaid   decimal.Decimal
	Method       string // ver constantes PaymentMethod*
	Reference    string // número de comprobante externo
	PaymentDate  time.Time
	CreatedAt    time.Time
}
