package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/application/billing"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemPoolUC   *billing.ItemPoolUseCase
	InvoiceUC    *billing.InvoiceUseCase
	PaymentUC    *billing.PaymentUseCase
	CreditNoteUC *billing.CreditNoteUseCase
}

// Router registra las rutas de la API. La autenticación la resuelve el
// gateway upstream; este servicio recibe el actor en el header X-Actor.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Pool de ítems facturables por orden de servicio
	orders := api.Group("/service-orders")
	poolHandler := NewItemPoolHandler(deps.ItemPoolUC)
	orders.Get("/:id/billable-items", poolHandler.ListAvailable)

	// Facturas
	invoices := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Delete("/:id", invoiceHandler.Delete)
	invoices.Post("/:id/items", invoiceHandler.AddItems)
	invoices.Delete("/:id/items/:itemId", invoiceHandler.RemoveItem)
	invoices.Put("/:id/items/:itemId", invoiceHandler.EditItem)
	invoices.Post("/:id/issue", invoiceHandler.MarkIssued)
	invoices.Get("/:id/history", invoiceHandler.History)

	// Ledger de pagos
	paymentHandler := NewPaymentHandler(deps.PaymentUC)
	invoices.Post("/:id/payments", paymentHandler.Add)
	invoices.Get("/:id/payments", paymentHandler.List)
	api.Delete("/payments/:id", paymentHandler.Reverse)

	// Ledger de notas de crédito
	creditHandler := NewCreditNoteHandler(deps.CreditNoteUC)
	invoices.Post("/:id/credit-notes", creditHandler.Add)
	invoices.Get("/:id/credit-notes", creditHandler.List)
	api.Put("/credit-notes/:id", creditHandler.Edit)
	api.Delete("/credit-notes/:id", creditHandler.Remove)
}
