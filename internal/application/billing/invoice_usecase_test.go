package billing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/application/dto"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain"
	domainbilling "github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/billing"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/entity"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// createInvoice crea una pre-factura tipo 33 con fecha fija para los ítems dados.
func createInvoice(t *testing.T, w *world, orderID string, itemIDs ...string) *dto.InvoiceResponse {
	t.Helper()
	resp, err := w.invoiceUC.CreateInvoice(context.Background(), dto.CreateInvoiceRequest{
		ServiceOrderID: orderID,
		ItemIDs:        itemIDs,
		DocumentType:   entity.DocTypeFacturaElectronica,
		IssueDate:      "2025-06-01",
	})
	require.NoError(t, err, "la creación de la pre-factura no debe fallar")
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación de pre-facturas
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateInvoice_TotalCalculadoEnServidor(t *testing.T) {
	w := newWorld(t)
	order := w.seedOrder(t)
	c1 := w.seedCharge(t, order.ID, "1", "100.00")
	c2 := w.seedCharge(t, order.ID, "1", "50.00")
	e1 := w.seedExpense(t, order.ID, "30.00", "10", false)

	resp := createInvoice(t, w, order.ID, c1.ID, c2.ID, e1.ID)

	assert.True(t, dec("183.00").Equal(resp.TotalAmount),
		"el total debe ser la suma de los ítems reclamados: 100 + 50 + 33")
	assert.Equal(t, domainbilling.StatusPending, resp.Status)
	assert.True(t, resp.IsEditable)
	assert.False(t, resp.IsDTEIssued)
}

func TestCreateInvoice_NumeroPlaceholder(t *testing.T) {
	w := newWorld(t)
	order := w.seedOrder(t)
	c1 := w.seedCharge(t, order.ID, "1", "10.00")
	c2 := w.seedCharge(t, order.ID, "1", "20.00")

	first := createInvoice(t, w, order.ID, c1.ID)
	second := createInvoice(t, w, order.ID, c2.ID)

	assert.Equal(t, "PRE-000001", first.Number)
	assert.Equal(t, "PRE-000002", second.Number, "el consecutivo placeholder debe avanzar")
}

func TestCreateInvoice_NumeroExplicito(t *testing.T) {
	w := newWorld(t)
	order := w.seedOrder(t)
	c1 := w.seedCharge(t, order.ID, "1", "10.00")

	resp, err := w.invoiceUC.CreateInvoice(context.Background(), dto.CreateInvoiceRequest{
		ServiceOrderID: order.ID,
		ItemIDs:        []string{c1.ID},
		DocumentType:   entity.DocTypeFacturaExenta,
		IssueDate:      "2025-06-01",
		Number:         "F-2025-042",
	})
	require.NoError(t, err)
	assert.Equal(t, "F-2025-042", resp.Number)
}

func TestCreateInvoice_Validaciones(t *testing.T) {
	w := newWorld(t)
	order := w.seedOrder(t)
	c1 := w.seedCharge(t, order.ID, "1", "10.00")

	cases := []struct {
		name string
		req  dto.CreateInvoiceRequest
		want error
	}{
		{
			name: "sin ítems seleccionados",
			req: dto.CreateInvoiceRequest{
				ServiceOrderID: order.ID, DocumentType: "33", IssueDate: "2025-06-01",
			},
			want: domain.ErrNoItemsSelected,
		},
		{
			name: "tipo de documento inválido",
			req: dto.CreateInvoiceRequest{
				ServiceOrderID: order.ID, ItemIDs: []string{c1.ID},
				DocumentType: "99", IssueDate: "2025-06-01",
			},
			want: domain.ErrInvalidInput,
		},
		{
			name: "fecha malformada",
			req: dto.CreateInvoiceRequest{
				ServiceOrderID: order.ID, ItemIDs: []string{c1.ID},
				DocumentType: "33", IssueDate: "01/06/2025",
			},
			want: domain.ErrInvalidInput,
		},
		{
			name: "orden inexistente",
			req: dto.CreateInvoiceRequest{
				ServiceOrderID: "no-existe", ItemIDs: []string{c1.ID},
				DocumentType: "33", IssueDate: "2025-06-01",
			},
			want: domain.ErrNotFound,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := w.invoiceUC.CreateInvoice(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateInvoice_ItemDeOtraOrden(t *testing.T) {
	w := newWorld(t)
	orderA := w.seedOrder(t)
	orderB := &entity.ServiceOrder{ClientID: orderA.ClientID, OrderNumber: "OS-TEST-0002"}
	require.NoError(t, (&memOrderRepo{w.store}).Create(orderB))
	foreign := w.seedCharge(t, orderB.ID, "1", "10.00")

	_, err := w.invoiceUC.CreateInvoice(context.Background(), dto.CreateInvoiceRequest{
		ServiceOrderID: orderA.ID,
		ItemIDs:        []string{foreign.ID},
		DocumentType:   "33",
		IssueDate:      "2025-06-01",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound,
		"un ítem de otra orden no es visible para esta factura")
}

func TestCreateInvoice_ReclamoTodoONada(t *testing.T) {
	w := newWorld(t)
	order := w.seedOrder(t)
	free := w.seedCharge(t, order.ID, "1", "10.00")
	taken := w.seedCharge(t, order.ID, "1", "20.00")
	createInvoice(t, w, order.ID, taken.ID)

	_, err := w.invoiceUC.CreateInvoice(context.Background(), dto.CreateInvoiceRequest{
		ServiceOrderID: order.ID,
		ItemIDs:        []string{free.ID, taken.ID},
		DocumentType:   "33",
		IssueDate:      "2025-06-01",
	})
	require.ErrorIs(t, err, domain.ErrAlreadyClaimed)

	// El ítem libre debe seguir disponible: nada de reclamos parciales.
	pool, err := w.poolUC.ListAvailable(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, free.ID, pool[0].ID)
}

// Dos requests compiten por el mismo ítem: exactamente uno gana el reclamo.
func TestCreateInvoice_ReclamoConcurrente(t *testing.T) {
	w := newWorld(t)
	order := w.seedOrder(t)
	item := w.seedCharge(t, order.ID, "1", "100.00")

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = w.invoiceUC.CreateInvoice(context.Background(), dto.CreateInvoiceRequest{
				ServiceOrderID: order.ID,
				ItemIDs:        []string{item.ID},
				DocumentType:   "33",
				IssueDate:      "2025-06-01",
			})
		}(i)
	}
	wg.Wait()

	var ok, claimed int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, domain.ErrAlreadyClaimed):
			claimed++
		}
	}
	assert.Equal(t, 1, ok, "exactamente una factura debe ganar el ítem")
	assert.Equal(t, 1, claimed, "la otra debe recibir el conflicto de reclamo")
}

// ──────────────────────────────────────────────────────────────────────────────
// Edición estructural (pre-factura editable)
// ──────────────────────────────────────────────────────────────────────────────

func TestAddItems_RecalculaTotalYRegistraHistoria(t *testing.T) {
	w := newWorld(t)
	order := w.seedOrder(t)
	c1 := w.seedCharge(t, order.ID, "1", "100.00")
	c2 := w.seedCharge(t, order.ID, "1", "50.00")
	inv := createInvoice(t, w, order.ID, c1.ID)

	err := w.invoiceUC.AddItems(context.Background(), inv.ID, dto.AddItemsRequest{ItemIDs: []string{c2.ID}}, "ana")
	require.NoError(t, err)

	got, err := w.invoiceUC.GetInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.True(t, dec("150.00").Equal(got.TotalAmount))
	assert.Len(t, got.Items, 2)

	history, err := w.invoiceUC.History(context.Background(), inv.ID, false)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.EditTypeItemAdded, history[0].EditType)
	assert.Equal(t, "ana", history[0].Actor)
}

func TestRemoveItem_LiberaAlPool(t *testing.T) {
	w := newWorld(t)
	order := w.seedOrder(t)
	c1 := w.seedCharge(t, order.ID, "1", "100.00")
	c2 := w.seedCharge(t, order.ID, "1", "50.00")
	inv := createInvoice(t, w, order.ID, c1.ID, c2.ID)

	err := w.invoiceUC.RemoveItem(context.Background(), inv.ID, c2.ID, "ana")
	require.NoError(t, err)

	got, err := w.invoiceUC.GetInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.True(t, dec("100.00").Equal(got.TotalAmount))

	pool, err := w.poolUC.ListAvailable(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, pool, 1, "el ítem quitado debe volver al pool")
	assert.Equal(t, c2.ID, pool[0].ID)

	history, err := w.invoiceUC.History(context.Background(), inv.ID, false)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.EditTypeItemRemoved, history[0].EditType)
}

func TestRemoveItem_PuedeQuedarVacia(t *testing.T) {
	w := newWorld(t)
	order := w.seedOrder(t)
	c1 := w.seedCharge(t, order.ID, "1", "100.00")
	inv := createInvoice(t, w, order.ID, c1.ID)

	require.NoError(t, w.invoiceUC.RemoveItem(context.Background(), inv.ID, c1.ID, "ana"))

	got, err := w.invoiceUC.GetInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalAmount.IsZero(), "una pre-factura puede quedar sin ítems")
	assert.Empty(t, got.Items)
}

func TestRemoveItem_NoDejaSaldoNegativo(t *testing.T) {
	w := newWorld(t)
	order := w.seedOrder(t)
	c1 := w.seedCharge(t, order.ID, "1", "100.00")
	c2 := w.seedCharge(t, order.ID, "1", "50.00")
	inv := createInvoice(t, w, order.ID, c1.ID, c2.ID)

	// Abonar 120: quitar el cargo de 100 dejaría el total (50) bajo lo pagado.
	_, err := w.paymentUC.AddPayment(context.Background(), inv.ID, dto.AddPaymentRequest{
		Amount: dec("120.00"), Date: "2025-06-02", Method: entity.PaymentMethodTransferencia,
	})
	require.NoError(t, err)

	err = w.invoiceUC.RemoveItem(context.Background(), inv.ID, c1.ID, "ana")
	assert.ErrorIs(t, err, domain.ErrWouldUnderflowBalance)

	got, err := w.invoiceUC.GetInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.True(t, dec("150.00").Equal(got.TotalAmount), "el total no debe cambiar tras el rechazo")
	assert.Len(t, got.Items, 2)
}

func TestEditItem_CargoRecalculaDeltas(t *testing.T) {
	w := newWorld(t)
	order := w.seedOrder(t)
	c1 := w.seedCharge(t, order.ID, "2", "25.00")
	inv := createInvoice(t, w, order.ID, c1.ID)

	qty := dec("4")
	err := w.invoiceUC.EditItem(context.Background(), inv.ID, c1.ID,
		dto.EditItemRequest{Quantity: &qty}, "ana")
	require.NoError(t, err)

	got, err := w.invoiceUC.GetInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.True(t, dec("100.00").Equal(got.TotalAmount), "4 × 25.00")

	history, err := w.invoiceUC.History(context.Background(), inv.ID, false)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.EditTypeChargeEdited, history[0].EditType)
	assert.Contains(t, history[0].Description, "50.00 → 100.00",
		"la entrada debe registrar el delta del total")
}

func TestEditItem_GastoActivaIVA(t *testing.T) {
	w := newWorld(t)
	order := w.seedOrder(t)
	e1 := w.seedExpense(t, order.ID, "100.00", "10", false)
	inv := createInvoice(t, w, order.ID, e1.ID)
	require.True(t, dec("110.00").Equal(inv.TotalAmount))

	iva := true
	err := w.invoiceUC.EditItem(context.Background(), inv.ID, e1.ID,
		dto.EditItemRequest{IVAApplicable: &iva}, "ana")
	require.NoError(t, err)

	got, err := w.invoiceUC.GetInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.True(t, dec("130.90").Equal(got.TotalAmount), "110.00 + IVA 20.90")

	history, err := w.invoiceUC.History(context.Background(), inv.ID, false)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.EditTypeExpenseEdited, history[0].EditType)
}

func TestEditItem_RechazaCamposDeOtroTipo(t *testing.T) {
	w := newWorld(t)
	order := w.seedOrder(t)
	c1 := w.seedCharge(t, order.ID, "1", "100.00")
	e1 := w.seedExpense(t, order.ID, "30.00", "10", false)
	inv := createInvoice(t, w, order.ID, c1.ID, e1.ID)

	cost := dec("40.00")
	err := w.invoiceUC.EditItem(context.Background(), inv.ID, c1.ID,
		dto.EditItemRequest{Cost: &cost}, "ana")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "un cargo no tiene costo de tercero")

	qty := dec("2")
	err = w.invoiceUC.EditItem(context.Background(), inv.ID, e1.ID,
		dto.EditItemRequest{Quantity: &qty}, "ana")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "un gasto no tiene cantidad")
}

// ──────────────────────────────────────────────────────────────────────────────
// Emisión del DTE (transición irreversible) y anulación
// ──────────────────────────────────────────────────────────────────────────────

func TestMarkIssued_BloqueaEdicion(t *testing.T) {
	w := newWorld(t)
	order := w.seedOrder(t)
	c1 := w.seedCharge(t, order.ID, "1", "100.00")
	c2 := w.seedCharge(t, order.ID, "1", "50.00")
	inv := createInvoice(t, w, order.ID, c1.ID)

	err := w.invoiceUC.MarkIssued(context.Background(), inv.ID, dto.IssueInvoiceRequest{Folio: "F-7781"}, "ana")
	require.NoError(t, err)

	got, err := w.invoiceUC.GetInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDTEIssued)
	assert.False(t, got.IsEditable)
	assert.Equal(t, "F-7781", got.DTEFolio)

	// Toda edición estructural posterior debe rechazarse.
	err = w.invoiceUC.AddItems(context.Background(), inv.ID, dto.AddItemsRequest{ItemIDs: []string{c2.ID}}, "ana")
	assert.ErrorIs(t, err, domain.ErrInvoiceLocked)
	err = w.invoiceUC.RemoveItem(context.Background(), inv.ID, c1.ID, "ana")
	assert.ErrorIs(t, err, domain.ErrInvoiceLocked)

	// Y la emisión no se repite.
	err = w.invoiceUC.MarkIssued(context.Background(), inv.ID, dto.IssueInvoiceRequest{}, "ana")
	assert.ErrorIs(t, err, domain.ErrAlreadyIssued)

	history, err := w.invoiceUC.History(context.Background(), inv.ID, false)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.EditTypeMarkedIssued, history[0].EditType)
}

func TestCancel_LiberaItemsAlPool(t *testing.T) {
	w := newWorld(t)
	order := w.seedOrder(t)
	c1 := w.seedCharge(t, order.ID, "1", "100.00")
	c2 := w.seedCharge(t, order.ID, "1", "50.00")
	inv := createInvoice(t, w, order.ID, c1.ID, c2.ID)

	require.NoError(t, w.invoiceUC.Cancel(context.Background(), inv.ID))

	got, err := w.invoiceUC.GetInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domainbilling.StatusCancelled, got.Status)

	pool, err := w.poolUC.ListAvailable(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, pool, 2, "la anulación devuelve todos los ítems al pool")
}

func TestCancel_RechazadaConLedger(t *testing.T) {
	w := newWorld(t)
	order := w.seedOrder(t)
	c1 := w.seedCharge(t, order.ID, "1", "100.00")
	inv := createInvoice(t, w, order.ID, c1.ID)

	_, err := w.paymentUC.AddPayment(context.Background(), inv.ID, dto.AddPaymentRequest{
		Amount: dec("10.00"), Date: "2025-06-02", Method: entity.PaymentMethodEfectivo,
	})
	require.NoError(t, err)

	err = w.invoiceUC.Cancel(context.Background(), inv.ID)
	assert.ErrorIs(t, err, domain.ErrHasLedgerActivity,
		"con pagos registrados la anulación debe rechazarse")
}

func TestCancel_OperacionesSobreAnulada(t *testing.T) {
	w := newWorld(t)
	order := w.seedOrder(t)
	c1 := w.seedCharge(t, order.ID, "1", "100.00")
	inv := createInvoice(t, w, order.ID, c1.ID)
	require.NoError(t, w.invoiceUC.Cancel(context.Background(), inv.ID))

	err := w.invoiceUC.AddItems(context.Background(), inv.ID, dto.AddItemsRequest{ItemIDs: []string{c1.ID}}, "ana")
	assert.ErrorIs(t, err, domain.ErrInvoiceCancelled)

	_, err = w.paymentUC.AddPayment(context.Background(), inv.ID, dto.AddPaymentRequest{
		Amount: dec("10.00"), Date: "2025-06-02", Method: entity.PaymentMethodEfectivo,
	})
	assert.ErrorIs(t, err, domain.ErrInvoiceCancelled)

	err = w.invoiceUC.MarkIssued(context.Background(), inv.ID, dto.IssueInvoiceRequest{}, "ana")
	assert.ErrorIs(t, err, domain.ErrInvoiceCancelled)

	err = w.invoiceUC.Cancel(context.Background(), inv.ID)
	assert.ErrorIs(t, err, domain.ErrInvoiceCancelled, "anular dos veces no es idempotente silencioso")
}

// ──────────────────────────────────────────────────────────────────────────────
// Historia de edición
// ──────────────────────────────────────────────────────────────────────────────

func TestHistory_OrdenCronologico(t *testing.T) {
	w := newWorld(t)
	order := w.seedOrder(t)
	c1 := w.seedCharge(t, order.ID, "1", "100.00")
	c2 := w.seedCharge(t, order.ID, "1", "50.00")
	inv := createInvoice(t, w, order.ID, c1.ID)

	require.NoError(t, w.invoiceUC.AddItems(context.Background(), inv.ID,
		dto.AddItemsRequest{ItemIDs: []string{c2.ID}}, "ana"))
	require.NoError(t, w.invoiceUC.RemoveItem(context.Background(), inv.ID, c2.ID, "beto"))

	asc, err := w.invoiceUC.History(context.Background(), inv.ID, false)
	require.NoError(t, err)
	require.Len(t, asc, 2)
	assert.Equal(t, entity.EditTypeItemAdded, asc[0].EditType)
	assert.Equal(t, entity.EditTypeItemRemoved, asc[1].EditType)

	desc, err := w.invoiceUC.History(context.Background(), inv.ID, true)
	require.NoError(t, err)
	require.Len(t, desc, 2)
	assert.Equal(t, entity.EditTypeItemRemoved, desc[0].EditType, "newestFirst invierte el orden")
}

func TestListInvoices_FiltroPorOrden(t *testing.T) {
	w := newWorld(t)
	order := w.seedOrder(t)
	c1 := w.seedCharge(t, order.ID, "1", "100.00")
	createInvoice(t, w, order.ID, c1.ID)

	list, err := w.invoiceUC.ListInvoices(context.Background(),
		repositoryFilter(order.ID))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domainbilling.StatusPending, list[0].Status,
		"el listado deriva el estado por fila")

	empty, err := w.invoiceUC.ListInvoices(context.Background(), repositoryFilter("otra-orden"))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetInvoice_DiasDeAtrasoAunquePagada(t *testing.T) {
	w := newWorld(t)
	order := w.seedOrder(t)
	c1 := w.seedCharge(t, order.ID, "1", "100.00")

	resp, err := w.invoiceUC.CreateInvoice(context.Background(), dto.CreateInvoiceRequest{
		ServiceOrderID: order.ID,
		ItemIDs:        []string{c1.ID},
		DocumentType:   entity.DocTypeFacturaElectronica,
		IssueDate:      "2025-06-01",
		DueDate:        time.Now().UTC().AddDate(0, 0, -10).Format("2006-01-02"),
	})
	require.NoError(t, err)

	addPayment(t, w, resp.ID, "100.00")

	got, err := w.invoiceUC.GetInvoice(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, domainbilling.StatusPaid, got.Status,
		"pagada completa aunque venció")
	assert.Equal(t, 10, got.DaysOverdue,
		"los días de atraso se reportan con independencia del estado")
}
