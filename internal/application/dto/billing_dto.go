package dto

import "github.com/shopspring/decimal"

// BillableItemResponse ítem facturable en respuestas (pool y detalle de factura).
type BillableItemResponse struct {
	ID             string          `json:"id"`
	ServiceOrderID string          `json:"service_order_id"`
	Kind           string          `json:"kind"` // charge | expense
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice      decimal.Decimal `json:"unit_price,omitempty"`
	Cost           decimal.Decimal `json:"cost,omitempty"`
	MarkupPct      decimal.Decimal `json:"markup_pct,omitempty"`
	IVAApplicable  bool            `json:"iva_applicable"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	IVA            decimal.Decimal `json:"iva"`
	Total          decimal.Decimal `json:"total"`
}

// CreateInvoiceRequest body para POST /api/invoices.
// ItemIDs: ítems del pool de la orden a reclamar. Number opcional: si va vacío
// se asigna un consecutivo placeholder PRE-XXXXXX.
type CreateInvoiceRequest struct {
	ServiceOrderID string   `json:"service_order_id"`
	ItemIDs        []string `json:"item_ids"`
	DocumentType   string   `json:"document_type"` // 33 | 34 | 110
	IssueDate      string   `json:"issue_date"`    // YYYY-MM-DD
	DueDate        string   `json:"due_date,omitempty"`
	Number         string   `json:"number,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

// AddItemsRequest body para POST /api/invoices/:id/items.
type AddItemsRequest struct {
	ItemIDs []string `json:"item_ids"`
}

// EditItemRequest body para PUT /api/invoices/:id/items/:itemId.
// Solo los campos presentes se modifican; los montos siempre se recalculan
// en el servidor (nunca se acepta un total enviado por el cliente).
type EditItemRequest struct {
	Description   *string          `json:"description,omitempty"`
	Quantity      *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	Cost          *decimal.Decimal `json:"cost,omitempty"`
	MarkupPct     *decimal.Decimal `json:"markup_pct,omitempty"`
	IVAApplicable *bool            `json:"iva_applicable,omitempty"`
}

// IssueInvoiceRequest body para POST /api/invoices/:id/issue.
type IssueInvoiceRequest struct {
	Folio string `json:"folio,omitempty"` // referencia de emisión del integrador tributario
}

// AddPaymentRequest body para POST /api/invoices/:id/payments.
type AddPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date"` // YYYY-MM-DD
	Method    string          `json:"method"`
	Reference string          `json:"reference,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}

// AddCreditNoteRequest body para POST /api/invoices/:id/credit-notes.
type AddCreditNoteRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	NoteNumber    string          `json:"note_number"`
	Reason        string          `json:"reason"`
	IssueDate     string          `json:"issue_date"` // YYYY-MM-DD
	AttachmentURL string          `json:"attachment_url,omitempty"`
}

// UpdateCreditNoteRequest body para PUT /api/credit-notes/:id.
// Si Amount cambia, se revalida contra el saldo excluyendo la contribución
// actual de esta nota.
type UpdateCreditNoteRequest struct {
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	NoteNumber    *string          `json:"note_number,omitempty"`
	Reason        *string          `json:"reason,omitempty"`
	AttachmentURL *string          `json:"attachment_url,omitempty"`
}

// PaymentResponse pago en respuestas.
type PaymentResponse struct {
	ID        string          `json:"id"`
	InvoiceID string          `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date"`
	Method    string          `json:"method"`
	Reference string          `json:"reference,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}

// CreditNoteResponse nota de crédito en respuestas.
type CreditNoteResponse struct {
	ID            string          `json:"id"`
	InvoiceID     string          `json:"invoice_id"`
	NoteNumber    string          `json:"note_number"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
	IssueDate     string          `json:"issue_date"`
	AttachmentURL string          `json:"attachment_url,omitempty"`
}

// InvoiceResponse factura con estado derivado, ledgers y detalle.
// Status y DaysOverdue se recalculan en cada lectura, nunca se persisten.
type InvoiceResponse struct {
	ID             string                 `json:"id"`
	ClientID       string                 `json:"client_id"`
	ServiceOrderID string                 `json:"service_order_id"`
	Number         string                 `json:"number"`
	DocumentType   string                 `json:"document_type"`
	IssueDate      string                 `json:"issue_date"`
	DueDate        string                 `json:"due_date,omitempty"`
	TotalAmount    decimal.Decimal        `json:"total_amount"`
	PaidAmount     decimal.Decimal        `json:"paid_amount"`
	CreditedAmount decimal.Decimal        `json:"credited_amount"`
	Balance        decimal.Decimal        `json:"balance"`
	Status         string                 `json:"status"`
	DaysOverdue    int                    `json:"days_overdue"`
	IsEditable     bool                   `json:"is_editable"`
	IsDTEIssued    bool                   `json:"is_dte_issued"`
	DTEFolio       string                 `json:"dte_folio,omitempty"`
	Notes          string                 `json:"notes,omitempty"`
	Items          []BillableItemResponse `json:"items,omitempty"`
	Payments       []PaymentResponse      `json:"payments,omitempty"`
	CreditNotes    []CreditNoteResponse   `json:"credit_notes,omitempty"`
}

// EditHistoryResponse entrada de la historia de edición.
type EditHistoryResponse struct {
	ID          string `json:"id"`
	InvoiceID   string `json:"invoice_id"`
	EditType    string `json:"edit_type"`
	Description string `json:"description"`
	Actor       string `json:"actor,omitempty"`
	CreatedAt   string `json:"created_at"`
}
