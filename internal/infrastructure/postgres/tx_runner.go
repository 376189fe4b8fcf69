package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/application/billing"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/repository"
)

// Ensure TxRunner implements billing.TxRunner.
var _ billing.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con los repos de facturación atados
// a la tx y hace Commit o Rollback. Un error de fn deja el estado previo
// intacto: ningún reclamo parcial ni inserción de ledger sobrevive a la falla.
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.BillableItemRepository,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	creditRepo repository.CreditNoteRepository,
	historyRepo repository.EditHistoryRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	itemRepo := NewBillableItemRepository(tx)
	invoiceRepo := NewInvoiceRepository(tx)
	paymentRepo := NewPaymentRepository(tx)
	creditRepo := NewCreditNoteRepository(tx)
	historyRepo := NewEditHistoryRepository(tx)

	if err := fn(itemRepo, invoiceRepo, paymentRepo, creditRepo, historyRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
