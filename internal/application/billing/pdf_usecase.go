package billing

import (
	"context"

	"github.com/jhoicas/conecta-isp/internal/domain"
	"github.com/jhoicas/conecta-isp/internal/domain/entity"
	"github.com/jhoicas/conecta-isp/internal/domain/repository"
)

// InvoicePDFGenerator puerto de salida para la representación gráfica de la
// factura. La implementación concreta (Maroto) vive en infrastructure/pdf.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, company *entity.Company, sub *entity.Subscriber, inv *entity.Invoice, items []*entity.InvoiceItem) ([]byte, error)
}

// PDFUseCase genera el PDF de una factura para descarga del abonado.
type PDFUseCase struct {
	invoices    repository.InvoiceRepository
	subscribers repository.SubscriberRepository
	companies   repository.CompanyRepository
	generator   InvoicePDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(
	invoices repository.InvoiceRepository,
	subscribers repository.SubscriberRepository,
	companies repository.CompanyRepository,
	generator InvoicePDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{
		invoices:    invoices,
		subscribers: subscribers,
		companies:   companies,
		generator:   generator,
	}
}

// GenerateInvoicePDF resuelve factura, abonado y empresa y delega al generador.
func (uc *PDFUseCase) GenerateInvoicePDF(ctx context.Context, companyID, invoiceID string) ([]byte, error) {
	inv, err := uc.invoices.GetByID(ctx, invoiceID)
	if err != nil || inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	items, err := uc.invoices.GetItemsByInvoiceID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	sub, err := uc.subscribers.GetByID(ctx, inv.SubscriberID)
	if err != nil || sub == nil {
		return nil, domain.ErrNotFound
	}
	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil || company == nil {
		return nil, domain.ErrNotFound
	}
	return uc.generator.GenerateInvoicePDF(ctx, company, sub, inv, items)
}
