package billing

import (
	"context"
	"time"

	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/application/dto"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain"
	domainbilling "github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/billing"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/entity"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/repository"
)

// PaymentUseCase implementa el ledger de pagos de una factura. El alta valida
// el monto contra el saldo leído bajo bloqueo de la fila de la factura, así
// dos pagos concurrentes no pueden validar contra un saldo viejo y sobregirar.
type PaymentUseCase struct {
	txRunner    TxRunner
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(
	txRunner TxRunner,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
) *PaymentUseCase {
	return &PaymentUseCase{txRunner: txRunner, invoiceRepo: invoiceRepo, paymentRepo: paymentRepo}
}

// AddPayment registra un abono contra el saldo de la factura.
// Invariante: 0 < amount ≤ saldo antes de aplicar este pago. El motor nunca
// recorta el monto al saldo restante por su cuenta.
func (uc *PaymentUseCase) AddPayment(ctx context.Context, invoiceID string, in dto.AddPaymentRequest) (*dto.PaymentResponse, error) {
	if invoiceID == "" || !entity.ValidPaymentMethod(in.Method) {
		return nil, domain.ErrInvalidInput
	}
	if !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}

	var payment *entity.Payment
	err = uc.txRunner.Run(ctx, func(
		_ repository.BillableItemRepository,
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		creditRepo repository.CreditNoteRepository,
		_ repository.EditHistoryRepository,
	) error {
		inv, err := invoiceRepo.GetForUpdate(invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if inv.Cancelled() {
			return domain.ErrInvoiceCancelled
		}
		paid, err := paymentRepo.SumByInvoice(inv.ID)
		if err != nil {
			return err
		}
		credited, err := creditRepo.SumByInvoice(inv.ID)
		if err != nil {
			return err
		}
		balance := domainbilling.Balance(inv.TotalAmount, paid, credited)
		if in.Amount.GreaterThan(balance) {
			return domain.ErrAmountExceedsBalance
		}

		payment = &entity.Payment{
			InvoiceID: inv.ID,
			Amount:    in.Amount.Round(2),
			Date:      date,
			Method:    in.Method,
			Reference: in.Reference,
			Notes:     in.Notes,
			CreatedAt: time.Now(),
		}
		return paymentRepo.Create(payment)
	})
	if err != nil {
		return nil, err
	}
	resp := toPaymentResponse(payment)
	return &resp, nil
}

// ReversePayment revierte un pago eliminándolo, lo que restaura el saldo.
// Permitido sin importar la editabilidad de la factura.
func (uc *PaymentUseCase) ReversePayment(ctx context.Context, paymentID string) error {
	if paymentID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(
		_ repository.BillableItemRepository,
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		_ repository.CreditNoteRepository,
		_ repository.EditHistoryRepository,
	) error {
		payment, err := paymentRepo.GetByID(paymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return domain.ErrNotFound
		}
		// Serializar con las demás escrituras de saldo de la misma factura.
		if _, err := invoiceRepo.GetForUpdate(payment.InvoiceID); err != nil {
			return err
		}
		return paymentRepo.Delete(paymentID)
	})
}

// ListPayments retorna los pagos de una factura.
func (uc *PaymentUseCase) ListPayments(ctx context.Context, invoiceID string) ([]dto.PaymentResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	payments, err := uc.paymentRepo.ListByInvoice(invoiceID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	return out, nil
}

func toPaymentResponse(p *entity.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:        p.ID,
		InvoiceID: p.InvoiceID,
		Amount:    p.Amount,
		Date:      p.Date.Format("2006-01-02"),
		Method:    p.Method,
		Reference: p.Reference,
		Notes:     p.Notes,
	}
}
