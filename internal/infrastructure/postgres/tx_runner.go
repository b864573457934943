package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/conecta-isp/internal/application/provisioning"
	"github.com/jhoicas/conecta-isp/internal/domain/repository"
)

// Ensure TxRunner implements provisioning.ConversionTxRunner.
var _ provisioning.ConversionTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunConversion inicia una transacción con los repos de la conversión de lead
// (abonado, orden, factura y lead) y hace Commit o Rollback.
func (r *TxRunner) RunConversion(ctx context.Context, fn func(
	subs repository.SubscriberRepository,
	orders repository.WorkOrderRepository,
	invoices repository.InvoiceRepository,
	leads repository.LeadRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	subs := NewSubscriberRepository(tx)
	orders := NewWorkOrderRepository(tx)
	invoices := NewInvoiceRepository(tx)
	leads := NewLeadRepository(tx)

	if err := fn(subs, orders, invoices, leads); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
