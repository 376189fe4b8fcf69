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

// CreditNoteUseCase implementa el ledger de notas de crédito: créditos
// correctivos posteriores a la emisión que reducen el saldo de la factura.
// Mismas cotas que los pagos (0 < monto ≤ saldo), validadas bajo bloqueo.
type CreditNoteUseCase struct {
	txRunner    TxRunner
	invoiceRepo repository.InvoiceRepository
	creditRepo  repository.CreditNoteRepository
}

// NewCreditNoteUseCase construye el caso de uso.
func NewCreditNoteUseCase(
	txRunner TxRunner,
	invoiceRepo repository.InvoiceRepository,
	creditRepo repository.CreditNoteRepository,
) *CreditNoteUseCase {
	return &CreditNoteUseCase{txRunner: txRunner, invoiceRepo: invoiceRepo, creditRepo: creditRepo}
}

// AddCreditNote registra una nota de crédito contra el saldo de la factura.
func (uc *CreditNoteUseCase) AddCreditNote(ctx context.Context, invoiceID string, in dto.AddCreditNoteRequest) (*dto.CreditNoteResponse, error) {
	if invoiceID == "" || in.NoteNumber == "" || in.Reason == "" {
		return nil, domain.ErrInvalidInput
	}
	if !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	issueDate, err := parseDate(in.IssueDate)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}

	var note *entity.CreditNote
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

		now := time.Now()
		note = &entity.CreditNote{
			InvoiceID:     inv.ID,
			NoteNumber:    in.NoteNumber,
			Amount:        in.Amount.Round(2),
			Reason:        in.Reason,
			IssueDate:     issueDate,
			AttachmentURL: in.AttachmentURL,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		return creditRepo.Create(note)
	})
	if err != nil {
		return nil, err
	}
	resp := toCreditNoteResponse(note)
	return &resp, nil
}

// EditCreditNote modifica una nota existente. Si el monto cambia, se revalida
// contra el saldo excluyendo la contribución actual de esta nota:
// newAmount ≤ balance + oldAmount.
func (uc *CreditNoteUseCase) EditCreditNote(ctx context.Context, noteID string, in dto.UpdateCreditNoteRequest) (*dto.CreditNoteResponse, error) {
	if noteID == "" {
		return nil, domain.ErrInvalidInput
	}
	var note *entity.CreditNote
	err := uc.txRunner.Run(ctx, func(
		_ repository.BillableItemRepository,
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		creditRepo repository.CreditNoteRepository,
		_ repository.EditHistoryRepository,
	) error {
		var err error
		note, err = creditRepo.GetByID(noteID)
		if err != nil {
			return err
		}
		if note == nil {
			return domain.ErrNotFound
		}
		inv, err := invoiceRepo.GetForUpdate(note.InvoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}

		if in.Amount != nil && !in.Amount.Equal(note.Amount) {
			if !in.Amount.IsPositive() {
				return domain.ErrInvalidAmount
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
			if in.Amount.GreaterThan(balance.Add(note.Amount)) {
				return domain.ErrAmountExceedsBalance
			}
			note.Amount = in.Amount.Round(2)
		}
		if in.NoteNumber != nil {
			if *in.NoteNumber == "" {
				return domain.ErrInvalidInput
			}
			note.NoteNumber = *in.NoteNumber
		}
		if in.Reason != nil {
			if *in.Reason == "" {
				return domain.ErrInvalidInput
			}
			note.Reason = *in.Reason
		}
		if in.AttachmentURL != nil {
			note.AttachmentURL = *in.AttachmentURL
		}
		note.UpdatedAt = time.Now()
		return creditRepo.Update(note)
	})
	if err != nil {
		return nil, err
	}
	resp := toCreditNoteResponse(note)
	return &resp, nil
}

// RemoveCreditNote revierte una nota eliminándola, lo que restaura el saldo.
func (uc *CreditNoteUseCase) RemoveCreditNote(ctx context.Context, noteID string) error {
	if noteID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(
		_ repository.BillableItemRepository,
		invoiceRepo repository.InvoiceRepository,
		_ repository.PaymentRepository,
		creditRepo repository.CreditNoteRepository,
		_ repository.EditHistoryRepository,
	) error {
		note, err := creditRepo.GetByID(noteID)
		if err != nil {
			return err
		}
		if note == nil {
			return domain.ErrNotFound
		}
		// Serializar con las demás escrituras de saldo de la misma factura.
		if _, err := invoiceRepo.GetForUpdate(note.InvoiceID); err != nil {
			return err
		}
		return creditRepo.Delete(noteID)
	})
}

// ListCreditNotes retorna las notas de crédito de una factura.
func (uc *CreditNoteUseCase) ListCreditNotes(ctx context.Context, invoiceID string) ([]dto.CreditNoteResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	notes, err := uc.creditRepo.ListByInvoice(invoiceID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CreditNoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, toCreditNoteResponse(n))
	}
	return out, nil
}

func toCreditNoteResponse(n *entity.CreditNote) dto.CreditNoteResponse {
	return dto.CreditNoteResponse{
		ID:            n.ID,
		InvoiceID:     n.InvoiceID,
		NoteNumber:    n.NoteNumber,
		Amount:        n.Amount,
		Reason:        n.Reason,
		IssueDate:     n.IssueDate.Format("2006-01-02"),
		AttachmentURL: n.AttachmentURL,
	}
}
