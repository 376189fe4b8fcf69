package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/application/dto"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain"
	domainbilling "github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/billing"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/entity"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/repository"
)

// InvoiceUseCase implementa el ciclo de vida del agregado factura: creación
// reclamando ítems del pool, edición estructural mientras es pre-factura,
// emisión del DTE (transición irreversible) y anulación lógica.
//
// Las validaciones de solo lectura se hacen fuera de la transacción; todo lo
// que muta reclamo o total corre dentro de txRunner.Run con la fila de la
// factura bloqueada (GetForUpdate).
type InvoiceUseCase struct {
	txRunner    TxRunner
	orderRepo   repository.ServiceOrderRepository
	invoiceRepo repository.InvoiceRepository
	itemRepo    repository.BillableItemRepository
	paymentRepo repository.PaymentRepository
	creditRepo  repository.CreditNoteRepository
	historyRepo repository.EditHistoryRepository

	ivaRate      decimal.Decimal
	numberPrefix string // prefijo del consecutivo placeholder (pre-factura)
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	txRunner TxRunner,
	orderRepo repository.ServiceOrderRepository,
	invoiceRepo repository.InvoiceRepository,
	itemRepo repository.BillableItemRepository,
	paymentRepo repository.PaymentRepository,
	creditRepo repository.CreditNoteRepository,
	historyRepo repository.EditHistoryRepository,
	ivaRate decimal.Decimal,
	numberPrefix string,
) *InvoiceUseCase {
	if ivaRate.IsZero() {
		ivaRate = domainbilling.DefaultIVARate
	}
	if numberPrefix == "" {
		numberPrefix = "PRE"
	}
	return &InvoiceUseCase{
		txRunner:     txRunner,
		orderRepo:    orderRepo,
		invoiceRepo:  invoiceRepo,
		itemRepo:     itemRepo,
		paymentRepo:  paymentRepo,
		creditRepo:   creditRepo,
		historyRepo:  historyRepo,
		ivaRate:      ivaRate,
		numberPrefix: numberPrefix,
	}
}

// CreateInvoice crea una pre-factura reclamando atómicamente los ítems
// seleccionados de la orden. El total se calcula en el servidor a partir de
// los ítems reclamados (nunca se acepta un total enviado por el cliente).
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.ServiceOrderID == "" || !entity.ValidDocumentType(in.DocumentType) {
		return nil, domain.ErrInvalidInput
	}
	if len(in.ItemIDs) == 0 {
		return nil, domain.ErrNoItemsSelected
	}
	issueDate, err := parseDate(in.IssueDate)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	var dueDate *time.Time
	if in.DueDate != "" {
		d, err := parseDate(in.DueDate)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		dueDate = &d
	}

	order, err := uc.orderRepo.GetByID(in.ServiceOrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	invoiceID := uuid.New().String()
	var inv *entity.Invoice
	var items []*entity.BillableItem

	err = uc.txRunner.Run(ctx, func(
		itemRepo repository.BillableItemRepository,
		invoiceRepo repository.InvoiceRepository,
		_ repository.PaymentRepository,
		_ repository.CreditNoteRepository,
		_ repository.EditHistoryRepository,
	) error {
		// Reclamo todo-o-nada: si otro request ganó algún ítem, rollback
		// completo y el caller recibe ErrAlreadyClaimed.
		claimed, err := itemRepo.Claim(in.ItemIDs, in.ServiceOrderID, invoiceID)
		if err != nil {
			return err
		}

		number := in.Number
		if number == "" {
			n, err := invoiceRepo.NextPlaceholderNumber()
			if err != nil {
				return err
			}
			number = fmt.Sprintf("%s-%06d", uc.numberPrefix, n)
		}

		inv = &entity.Invoice{
			ID:             invoiceID,
			ClientID:       order.ClientID,
			ServiceOrderID: in.ServiceOrderID,
			Number:         number,
			DocumentType:   in.DocumentType,
			IssueDate:      issueDate,
			DueDate:        dueDate,
			TotalAmount:    sumItemTotals(claimed),
			IsEditable:     true,
			Notes:          in.Notes,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := invoiceRepo.Create(inv); err != nil {
			return err
		}
		items = claimed
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("invoice_id", inv.ID).
		Str("service_order_id", inv.ServiceOrderID).
		Str("number", inv.Number).
		Int("items", len(items)).
		Msg("pre-factura creada")

	return uc.toResponse(inv, items, nil, nil, decimal.Zero, decimal.Zero), nil
}

// AddItems reclama ítems adicionales de la misma orden y recalcula el total.
// Solo válido mientras la factura es editable.
func (uc *InvoiceUseCase) AddItems(ctx context.Context, invoiceID string, in dto.AddItemsRequest, actor string) error {
	if invoiceID == "" {
		return domain.ErrInvalidInput
	}
	if len(in.ItemIDs) == 0 {
		return domain.ErrNoItemsSelected
	}
	return uc.txRunner.Run(ctx, func(
		itemRepo repository.BillableItemRepository,
		invoiceRepo repository.InvoiceRepository,
		_ repository.PaymentRepository,
		_ repository.CreditNoteRepository,
		historyRepo repository.EditHistoryRepository,
	) error {
		inv, err := uc.lockEditable(invoiceRepo, invoiceID)
		if err != nil {
			return err
		}
		claimed, err := itemRepo.Claim(in.ItemIDs, inv.ServiceOrderID, inv.ID)
		if err != nil {
			return err
		}
		inv.TotalAmount = inv.TotalAmount.Add(sumItemTotals(claimed))
		inv.UpdatedAt = time.Now()
		if err := invoiceRepo.Update(inv); err != nil {
			return err
		}
		for _, it := range claimed {
			entry := &entity.EditHistoryEntry{
				InvoiceID:   inv.ID,
				EditType:    entity.EditTypeItemAdded,
				Description: fmt.Sprintf("Ítem agregado: %s (total %s)", it.Description, it.Total.StringFixed(2)),
				Actor:       actor,
				CreatedAt:   time.Now(),
			}
			if err := historyRepo.Append(entry); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveItem libera un ítem de vuelta al pool y recalcula el total. Falla con
// ErrWouldUnderflowBalance si el nuevo total quedaría por debajo de los pagos
// y créditos ya registrados. Una factura puede quedar sin ítems.
func (uc *InvoiceUseCase) RemoveItem(ctx context.Context, invoiceID, itemID, actor string) error {
	if invoiceID == "" || itemID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(
		itemRepo repository.BillableItemRepository,
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		creditRepo repository.CreditNoteRepository,
		historyRepo repository.EditHistoryRepository,
	) error {
		inv, err := uc.lockEditable(invoiceRepo, invoiceID)
		if err != nil {
			return err
		}
		item, err := itemRepo.GetByID(itemID)
		if err != nil {
			return err
		}
		if item == nil || item.ClaimedByInvoiceID == nil || *item.ClaimedByInvoiceID != inv.ID {
			return domain.ErrNotFound
		}

		newTotal := inv.TotalAmount.Sub(item.Total)
		if err := uc.checkNoUnderflow(paymentRepo, creditRepo, inv.ID, newTotal); err != nil {
			return err
		}

		if err := itemRepo.Release([]string{itemID}, inv.ID); err != nil {
			return err
		}
		inv.TotalAmount = newTotal
		inv.UpdatedAt = time.Now()
		if err := invoiceRepo.Update(inv); err != nil {
			return err
		}
		return historyRepo.Append(&entity.EditHistoryEntry{
			InvoiceID:   inv.ID,
			EditType:    entity.EditTypeItemRemoved,
			Description: fmt.Sprintf("Ítem quitado: %s (total %s)", item.Description, item.Total.StringFixed(2)),
			Actor:       actor,
			CreatedAt:   time.Now(),
		})
	})
}

// EditItem modifica los campos de un ítem reclamado (cantidad/precio en
// cargos; costo/recargo/IVA en gastos) y recalcula el total del ítem y de la
// factura. Registra la entrada de auditoría con el delta.
func (uc *InvoiceUseCase) EditItem(ctx context.Context, invoiceID, itemID string, in dto.EditItemRequest, actor string) error {
	if invoiceID == "" || itemID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(
		itemRepo repository.BillableItemRepository,
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		creditRepo repository.CreditNoteRepository,
		historyRepo repository.EditHistoryRepository,
	) error {
		inv, err := uc.lockEditable(invoiceRepo, invoiceID)
		if err != nil {
			return err
		}
		item, err := itemRepo.GetByID(itemID)
		if err != nil {
			return err
		}
		if item == nil || item.ClaimedByInvoiceID == nil || *item.ClaimedByInvoiceID != inv.ID {
			return domain.ErrNotFound
		}

		oldTotal := item.Total
		if err := applyItemEdit(item, in); err != nil {
			return err
		}
		item.ComputeTotals(uc.ivaRate)
		item.UpdatedAt = time.Now()

		newInvoiceTotal := inv.TotalAmount.Sub(oldTotal).Add(item.Total)
		if err := uc.checkNoUnderflow(paymentRepo, creditRepo, inv.ID, newInvoiceTotal); err != nil {
			return err
		}

		if err := itemRepo.Update(item); err != nil {
			return err
		}
		inv.TotalAmount = newInvoiceTotal
		inv.UpdatedAt = time.Now()
		if err := invoiceRepo.Update(inv); err != nil {
			return err
		}

		editType := entity.EditTypeChargeEdited
		label := "Cargo editado"
		if item.Kind == entity.ItemKindExpense {
			editType = entity.EditTypeExpenseEdited
			label = "Gasto editado"
		}
		return historyRepo.Append(&entity.EditHistoryEntry{
			InvoiceID: inv.ID,
			EditType:  editType,
			Description: fmt.Sprintf("%s: %s (total %s → %s)",
				label, item.Description, oldTotal.StringFixed(2), item.Total.StringFixed(2)),
			Actor:     actor,
			CreatedAt: time.Now(),
		})
	})
}

// MarkIssued marca la factura como emitida (DTE) y la bloquea para edición.
// Transición irreversible: ninguna operación del motor la deshace. Falla con
// ErrAlreadyIssued si ya fue emitida.
func (uc *InvoiceUseCase) MarkIssued(ctx context.Context, invoiceID string, in dto.IssueInvoiceRequest, actor string) error {
	if invoiceID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(
		_ repository.BillableItemRepository,
		invoiceRepo repository.InvoiceRepository,
		_ repository.PaymentRepository,
		_ repository.CreditNoteRepository,
		historyRepo repository.EditHistoryRepository,
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
		if inv.IsDTEIssued {
			return domain.ErrAlreadyIssued
		}
		inv.IsDTEIssued = true
		inv.IsEditable = false
		inv.DTEFolio = in.Folio
		inv.UpdatedAt = time.Now()
		if err := invoiceRepo.Update(inv); err != nil {
			return err
		}

		desc := "Factura emitida como DTE"
		if in.Folio != "" {
			desc = fmt.Sprintf("Factura emitida como DTE (folio %s)", in.Folio)
		}
		if err := historyRepo.Append(&entity.EditHistoryEntry{
			InvoiceID:   inv.ID,
			EditType:    entity.EditTypeMarkedIssued,
			Description: desc,
			Actor:       actor,
			CreatedAt:   time.Now(),
		}); err != nil {
			return err
		}

		log.Info().Str("invoice_id", inv.ID).Str("folio", in.Folio).Msg("factura emitida como DTE")
		return nil
	})
}

// Cancel anula la factura (eliminación lógica) y libera todos sus ítems de
// vuelta al pool. Solo permitido si no hay pagos ni notas de crédito.
func (uc *InvoiceUseCase) Cancel(ctx context.Context, invoiceID string) error {
	if invoiceID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(
		itemRepo repository.BillableItemRepository,
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
		if paid.IsPositive() || credited.IsPositive() {
			return domain.ErrHasLedgerActivity
		}

		if err := itemRepo.ReleaseAll(inv.ID); err != nil {
			return err
		}
		now := time.Now()
		inv.CancelledAt = &now
		inv.UpdatedAt = now
		if err := invoiceRepo.Update(inv); err != nil {
			return err
		}

		log.Info().Str("invoice_id", inv.ID).Msg("factura anulada, ítems liberados al pool")
		return nil
	})
}

// GetInvoice retorna la factura con ítems, ledgers y estado derivado.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.itemRepo.ListByInvoice(id)
	if err != nil {
		return nil, err
	}
	payments, err := uc.paymentRepo.ListByInvoice(id)
	if err != nil {
		return nil, err
	}
	credits, err := uc.creditRepo.ListByInvoice(id)
	if err != nil {
		return nil, err
	}
	paid := sumPayments(payments)
	credited := sumCredits(credits)
	return uc.toResponse(inv, items, payments, credits, paid, credited), nil
}

// ListInvoices lista facturas con estado derivado por fila (tabla de la
// página de facturación). Sin detalle de ítems.
func (uc *InvoiceUseCase) ListInvoices(ctx context.Context, filter repository.InvoiceListFilter) ([]dto.InvoiceResponse, error) {
	invoices, err := uc.invoiceRepo.List(filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		paid, err := uc.paymentRepo.SumByInvoice(inv.ID)
		if err != nil {
			return nil, err
		}
		credited, err := uc.creditRepo.SumByInvoice(inv.ID)
		if err != nil {
			return nil, err
		}
		resp := uc.toResponse(inv, nil, nil, nil, paid, credited)
		out = append(out, *resp)
	}
	return out, nil
}

// History retorna la historia de edición de la factura (asc o desc).
func (uc *InvoiceUseCase) History(ctx context.Context, invoiceID string, newestFirst bool) ([]dto.EditHistoryResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	entries, err := uc.historyRepo.ListByInvoice(invoiceID, newestFirst)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EditHistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.EditHistoryResponse{
			ID:          e.ID,
			InvoiceID:   e.InvoiceID,
			EditType:    e.EditType,
			Description: e.Description,
			Actor:       e.Actor,
			CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

// lockEditable bloquea la fila de la factura y valida que siga siendo una
// pre-factura editable y no anulada.
func (uc *InvoiceUseCase) lockEditable(invoiceRepo repository.InvoiceRepository, id string) (*entity.Invoice, error) {
	inv, err := invoiceRepo.GetForUpdate(id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.Cancelled() {
		return nil, domain.ErrInvoiceCancelled
	}
	if !inv.IsEditable {
		return nil, domain.ErrInvoiceLocked
	}
	return inv, nil
}

// checkNoUnderflow valida que el nuevo total no quede por debajo de los pagos
// y créditos ya registrados (el saldo nunca puede ser negativo).
func (uc *InvoiceUseCase) checkNoUnderflow(
	paymentRepo repository.PaymentRepository,
	creditRepo repository.CreditNoteRepository,
	invoiceID string,
	newTotal decimal.Decimal,
) error {
	paid, err := paymentRepo.SumByInvoice(invoiceID)
	if err != nil {
		return err
	}
	credited, err := creditRepo.SumByInvoice(invoiceID)
	if err != nil {
		return err
	}
	if newTotal.LessThan(paid.Add(credited)) {
		return domain.ErrWouldUnderflowBalance
	}
	return nil
}

// applyItemEdit aplica los campos del request al ítem validando que
// correspondan a su tipo y que los valores sean coherentes.
func applyItemEdit(item *entity.BillableItem, in dto.EditItemRequest) error {
	switch item.Kind {
	case entity.ItemKindCharge:
		if in.Cost != nil || in.MarkupPct != nil || in.IVAApplicable != nil {
			return domain.ErrInvalidInput
		}
		if in.Quantity != nil {
			if !in.Quantity.IsPositive() {
				return domain.ErrInvalidInput
			}
			item.Quantity = *in.Quantity
		}
		if in.UnitPrice != nil {
			if in.UnitPrice.IsNegative() {
				return domain.ErrInvalidInput
			}
			item.UnitPrice = *in.UnitPrice
		}
	case entity.ItemKindExpense:
		if in.Quantity != nil || in.UnitPrice != nil {
			return domain.ErrInvalidInput
		}
		if in.Cost != nil {
			if in.Cost.IsNegative() {
				return domain.ErrInvalidInput
			}
			item.Cost = *in.Cost
		}
		if in.MarkupPct != nil {
			if in.MarkupPct.IsNegative() {
				return domain.ErrInvalidInput
			}
			item.MarkupPct = *in.MarkupPct
		}
		if in.IVAApplicable != nil {
			item.IVAApplicable = *in.IVAApplicable
		}
	default:
		return domain.ErrInvalidInput
	}
	if in.Description != nil {
		if *in.Description == "" {
			return domain.ErrInvalidInput
		}
		item.Description = *in.Description
	}
	return nil
}

func (uc *InvoiceUseCase) toResponse(
	inv *entity.Invoice,
	items []*entity.BillableItem,
	payments []*entity.Payment,
	credits []*entity.CreditNote,
	paid, credited decimal.Decimal,
) *dto.InvoiceResponse {
	now := time.Now()
	status := domainbilling.DeriveStatus(inv.Cancelled(), inv.TotalAmount, paid, credited, inv.DueDate, now)
	balance := domainbilling.Balance(inv.TotalAmount, paid, credited)
	// Informativo: se reporta aunque la factura ya esté pagada o anulada.
	daysOverdue := domainbilling.DaysOverdue(inv.DueDate, now)

	resp := &dto.InvoiceResponse{
		ID:             inv.ID,
		ClientID:       inv.ClientID,
		ServiceOrderID: inv.ServiceOrderID,
		Number:         inv.Number,
		DocumentType:   inv.DocumentType,
		IssueDate:      inv.IssueDate.Format("2006-01-02"),
		TotalAmount:    inv.TotalAmount,
		PaidAmount:     paid,
		CreditedAmount: credited,
		Balance:        balance,
		Status:         status,
		DaysOverdue:    daysOverdue,
		IsEditable:     inv.IsEditable,
		IsDTEIssued:    inv.IsDTEIssued,
		DTEFolio:       inv.DTEFolio,
		Notes:          inv.Notes,
	}
	if inv.DueDate != nil {
		resp.DueDate = inv.DueDate.Format("2006-01-02")
	}
	for _, it := range items {
		resp.Items = append(resp.Items, toItemResponse(it))
	}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, toPaymentResponse(p))
	}
	for _, n := range credits {
		resp.CreditNotes = append(resp.CreditNotes, toCreditNoteResponse(n))
	}
	return resp
}

func sumItemTotals(items []*entity.BillableItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Total)
	}
	return total.Round(2)
}

func sumPayments(payments []*entity.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

func sumCredits(credits []*entity.CreditNote) decimal.Decimal {
	total := decimal.Zero
	for _, n := range credits {
		total = total.Add(n.Amount)
	}
	return total
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
