package billing_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/application/billing"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/entity"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles en memoria de los puertos de persistencia.
//
// memTxRunner serializa las "transacciones" con un mutex, igual que Postgres
// serializa con el bloqueo de fila: dos Run concurrentes sobre el mismo store
// nunca se intercalan. Las lecturas devuelven copias para que mutar una
// entidad sin llamar Update no toque el estado guardado.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu        sync.Mutex
	orders    map[string]*entity.ServiceOrder
	items     map[string]*entity.BillableItem
	itemOrder []string // orden de inserción, para listados deterministas
	invoices  map[string]*entity.Invoice
	payments  map[string]*entity.Payment
	payOrder  []string
	credits   map[string]*entity.CreditNote
	credOrder []string
	history   []*entity.EditHistoryEntry
	seq       int64
}

func newStore() *memStore {
	return &memStore{
		orders:   make(map[string]*entity.ServiceOrder),
		items:    make(map[string]*entity.BillableItem),
		invoices: make(map[string]*entity.Invoice),
		payments: make(map[string]*entity.Payment),
		credits:  make(map[string]*entity.CreditNote),
	}
}

type memTxRunner struct{ s *memStore }

func (r *memTxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.BillableItemRepository,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	creditRepo repository.CreditNoteRepository,
	historyRepo repository.EditHistoryRepository,
) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(
		&memItemRepo{r.s},
		&memInvoiceRepo{r.s},
		&memPaymentRepo{r.s},
		&memCreditRepo{r.s},
		&memHistoryRepo{r.s},
	)
}

// Los fakes deben cubrir los puertos completos.
var (
	_ repository.BillableItemRepository = (*memItemRepo)(nil)
	_ repository.InvoiceRepository      = (*memInvoiceRepo)(nil)
	_ repository.PaymentRepository      = (*memPaymentRepo)(nil)
	_ repository.CreditNoteRepository   = (*memCreditRepo)(nil)
	_ repository.EditHistoryRepository  = (*memHistoryRepo)(nil)
	_ repository.ServiceOrderRepository = (*memOrderRepo)(nil)
)

// ── Ítems facturables ─────────────────────────────────────────────────────────

type memItemRepo struct{ s *memStore }

func (r *memItemRepo) ListAvailable(serviceOrderID string) ([]*entity.BillableItem, error) {
	var out []*entity.BillableItem
	for _, id := range r.s.itemOrder {
		it := r.s.items[id]
		if it.ServiceOrderID == serviceOrderID && it.ClaimedByInvoiceID == nil {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memItemRepo) GetByID(id string) (*entity.BillableItem, error) {
	it, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *memItemRepo) ListByInvoice(invoiceID string) ([]*entity.BillableItem, error) {
	var out []*entity.BillableItem
	for _, id := range r.s.itemOrder {
		it := r.s.items[id]
		if it.ClaimedByInvoiceID != nil && *it.ClaimedByInvoiceID == invoiceID {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memItemRepo) Claim(ids []string, serviceOrderID, invoiceID string) ([]*entity.BillableItem, error) {
	// Validación todo-o-nada antes de mutar, como el UPDATE condicional real.
	var claimed []*entity.BillableItem
	for _, id := range ids {
		it, ok := r.s.items[id]
		if !ok || it.ServiceOrderID != serviceOrderID {
			return nil, domain.ErrNotFound
		}
		if it.ClaimedByInvoiceID != nil {
			return nil, domain.ErrAlreadyClaimed
		}
		claimed = append(claimed, it)
	}
	var out []*entity.BillableItem
	for _, it := range claimed {
		inv := invoiceID
		it.ClaimedByInvoiceID = &inv
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memItemRepo) Release(ids []string, invoiceID string) error {
	for _, id := range ids {
		it, ok := r.s.items[id]
		if ok && it.ClaimedByInvoiceID != nil && *it.ClaimedByInvoiceID == invoiceID {
			it.ClaimedByInvoiceID = nil
		}
	}
	return nil
}

func (r *memItemRepo) ReleaseAll(invoiceID string) error {
	for _, it := range r.s.items {
		if it.ClaimedByInvoiceID != nil && *it.ClaimedByInvoiceID == invoiceID {
			it.ClaimedByInvoiceID = nil
		}
	}
	return nil
}

func (r *memItemRepo) Update(item *entity.BillableItem) error {
	cp := *item
	r.s.items[item.ID] = &cp
	return nil
}

func (r *memItemRepo) Create(item *entity.BillableItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	cp := *item
	r.s.items[item.ID] = &cp
	r.s.itemOrder = append(r.s.itemOrder, item.ID)
	return nil
}

// ── Facturas ──────────────────────────────────────────────────────────────────

type memInvoiceRepo struct{ s *memStore }

func (r *memInvoiceRepo) Create(invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	cp := *invoice
	r.s.invoices[invoice.ID] = &cp
	return nil
}

func (r *memInvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *memInvoiceRepo) GetForUpdate(id string) (*entity.Invoice, error) {
	return r.GetByID(id)
}

func (r *memInvoiceRepo) Update(invoice *entity.Invoice) error {
	cp := *invoice
	r.s.invoices[invoice.ID] = &cp
	return nil
}

func (r *memInvoiceRepo) List(filter repository.InvoiceListFilter) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range r.s.invoices {
		if filter.ClientID != "" && inv.ClientID != filter.ClientID {
			continue
		}
		if filter.ServiceOrderID != "" && inv.ServiceOrderID != filter.ServiceOrderID {
			continue
		}
		cp := *inv
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memInvoiceRepo) NextPlaceholderNumber() (int64, error) {
	r.s.seq++
	return r.s.seq, nil
}

// ── Pagos ─────────────────────────────────────────────────────────────────────

type memPaymentRepo struct{ s *memStore }

func (r *memPaymentRepo) Create(payment *entity.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	cp := *payment
	r.s.payments[payment.ID] = &cp
	r.s.payOrder = append(r.s.payOrder, payment.ID)
	return nil
}

func (r *memPaymentRepo) GetByID(id string) (*entity.Payment, error) {
	p, ok := r.s.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memPaymentRepo) ListByInvoice(invoiceID string) ([]*entity.Payment, error) {
	var out []*entity.Payment
	for _, id := range r.s.payOrder {
		p, ok := r.s.payments[id]
		if ok && p.InvoiceID == invoiceID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) SumByInvoice(invoiceID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range r.s.payments {
		if p.InvoiceID == invoiceID {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

func (r *memPaymentRepo) Delete(id string) error {
	delete(r.s.payments, id)
	return nil
}

// ── Notas de crédito ──────────────────────────────────────────────────────────

type memCreditRepo struct{ s *memStore }

func (r *memCreditRepo) Create(note *entity.CreditNote) error {
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	cp := *note
	r.s.credits[note.ID] = &cp
	r.s.credOrder = append(r.s.credOrder, note.ID)
	return nil
}

func (r *memCreditRepo) GetByID(id string) (*entity.CreditNote, error) {
	n, ok := r.s.credits[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (r *memCreditRepo) ListByInvoice(invoiceID string) ([]*entity.CreditNote, error) {
	var out []*entity.CreditNote
	for _, id := range r.s.credOrder {
		n, ok := r.s.credits[id]
		if ok && n.InvoiceID == invoiceID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memCreditRepo) SumByInvoice(invoiceID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, n := range r.s.credits {
		if n.InvoiceID == invoiceID {
			total = total.Add(n.Amount)
		}
	}
	return total, nil
}

func (r *memCreditRepo) Update(note *entity.CreditNote) error {
	cp := *note
	r.s.credits[note.ID] = &cp
	return nil
}

func (r *memCreditRepo) Delete(id string) error {
	delete(r.s.credits, id)
	return nil
}

// ── Historia de edición ───────────────────────────────────────────────────────

type memHistoryRepo struct{ s *memStore }

func (r *memHistoryRepo) Append(entry *entity.EditHistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	cp := *entry
	r.s.history = append(r.s.history, &cp)
	return nil
}

func (r *memHistoryRepo) ListByInvoice(invoiceID string, newestFirst bool) ([]*entity.EditHistoryEntry, error) {
	var out []*entity.EditHistoryEntry
	for _, e := range r.s.history {
		if e.InvoiceID == invoiceID {
			cp := *e
			out = append(out, &cp)
		}
	}
	if newestFirst {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

// ── Órdenes de servicio ───────────────────────────────────────────────────────

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) GetByID(id string) (*entity.ServiceOrder, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) Create(order *entity.ServiceOrder) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	cp := *order
	r.s.orders[order.ID] = &cp
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Armado del mundo de prueba
// ──────────────────────────────────────────────────────────────────────────────

var testIVARate = decimal.RequireFromString("0.19")

type world struct {
	store     *memStore
	poolUC    *billing.ItemPoolUseCase
	invoiceUC *billing.InvoiceUseCase
	paymentUC *billing.PaymentUseCase
	creditUC  *billing.CreditNoteUseCase
}

func newWorld(t *testing.T) *world {
	t.Helper()
	s := newStore()
	runner := &memTxRunner{s}
	orderRepo := &memOrderRepo{s}
	itemRepo := &memItemRepo{s}
	invoiceRepo := &memInvoiceRepo{s}
	paymentRepo := &memPaymentRepo{s}
	creditRepo := &memCreditRepo{s}
	historyRepo := &memHistoryRepo{s}

	return &world{
		store:  s,
		poolUC: billing.NewItemPoolUseCase(orderRepo, itemRepo),
		invoiceUC: billing.NewInvoiceUseCase(
			runner, orderRepo, invoiceRepo, itemRepo,
			paymentRepo, creditRepo, historyRepo,
			testIVARate, "PRE",
		),
		paymentUC: billing.NewPaymentUseCase(runner, invoiceRepo, paymentRepo),
		creditUC:  billing.NewCreditNoteUseCase(runner, invoiceRepo, creditRepo),
	}
}

func (w *world) seedOrder(t *testing.T) *entity.ServiceOrder {
	t.Helper()
	order := &entity.ServiceOrder{
		ClientID:    uuid.New().String(),
		OrderNumber: "OS-TEST-0001",
		Description: "orden de prueba",
	}
	if err := (&memOrderRepo{w.store}).Create(order); err != nil {
		t.Fatalf("seed de orden: %v", err)
	}
	return order
}

func repositoryFilter(orderID string) repository.InvoiceListFilter {
	return repository.InvoiceListFilter{ServiceOrderID: orderID}
}

func (w *world) seedCharge(t *testing.T, orderID, qty, price string) *entity.BillableItem {
	t.Helper()
	item := &entity.BillableItem{
		ServiceOrderID: orderID,
		Kind:           entity.ItemKindCharge,
		Description:    "cargo de prueba",
		Quantity:       decimal.RequireFromString(qty),
		UnitPrice:      decimal.RequireFromString(price),
	}
	item.ComputeTotals(testIVARate)
	if err := (&memItemRepo{w.store}).Create(item); err != nil {
		t.Fatalf("seed de cargo: %v", err)
	}
	return item
}

func (w *world) seedExpense(t *testing.T, orderID, cost, markup string, iva bool) *entity.BillableItem {
	t.Helper()
	item := &entity.BillableItem{
		ServiceOrderID: orderID,
		Kind:           entity.ItemKindExpense,
		Description:    "gasto de prueba",
		Cost:           decimal.RequireFromString(cost),
		MarkupPct:      decimal.RequireFromString(markup),
		IVAApplicable:  iva,
	}
	item.ComputeTotals(testIVARate)
	if err := (&memItemRepo{w.store}).Create(item); err != nil {
		t.Fatalf("seed de gasto: %v", err)
	}
	return item
}
