package repository

import (
	"context"

	"github.com/jhoicas/conecta-isp/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateItem(ctx context.Context, item *entity.InvoiceItem) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetItemsByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.InvoiceItem, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
	ListBySubscriber(ctx context.Context, subscriberID string) ([]*entity.Invoice, error)
	// GetOldestUnpaidBySubscriber devuelve la factura impaga más antigua del
	// abonado (para conciliar pagos sin factura explícita), o nil.
	GetOldestUnpaidBySubscriber(ctx context.Context, subscriberID string) (*entity.Invoice, error)
}
