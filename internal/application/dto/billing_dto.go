package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterPaymentRequest entrada para registrar un pago recibido.
type RegisterPaymentRequest struct {
	SubscriberID string          `json:"subscriber_id" validate:"required,uuid"`
	InvoiceID    *string         `json:"invoice_id" validate:"omitempty,uuid"`
	Amount       decimal.Decimal `json:"amount"`
	Method       string          `json:"method" validate:"required,oneof=cash transfer mobile-money card"`
	Reference    string          `json:"reference"`
	PaymentDate  *time.Time      `json:"payment_date"`
}

// PaymentResponse salida de un pago. Warning informa que la reconexión del
// abonado suspendido no pudo aplicarse y queda pendiente de reintento.
type PaymentResponse struct {
	ID           string          `json:"id"`
	CompanyID    string          `json:"company_id"`
	SubscriberID string          `json:"subscriber_id"`
	InvoiceID    *string         `json:"invoice_id,omitempty"`
	AmountPaid   decimal.Decimal `json:"amount_paid"`
	Method       string          `json:"method"`
	Reference    string          `json:"reference"`
	PaymentDate  time.Time       `json:"payment_date"`
	Warning      string          `json:"warning,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// InvoiceItemResponse línea de factura.
type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// InvoiceResponse salida de una factura con sus líneas.
type InvoiceResponse struct {
	ID           string                `json:"id"`
	CompanyID    string                `json:"company_id"`
	SubscriberID string                `json:"subscriber_id"`
	Number       string                `json:"number"`
	Status       string                `json:"status"`
	AmountDue    decimal.Decimal       `json:"amount_due"`
	AmountPaid   decimal.Decimal       `json:"amount_paid"`
	DueDate      time.Time             `json:"due_date"`
	Items        []InvoiceItemResponse `json:"items,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// InvoiceListResponse facturas de un abonado.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
}
