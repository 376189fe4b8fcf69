package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de documento tributario (SII Chile).
const (
	DocTypeFacturaElectronica = "33"  // Factura electrónica afecta
	DocTypeFacturaExenta      = "34"  // Factura exenta
	DocTypeFacturaExportacion = "110" // Factura de exportación
)

// ValidDocumentType verifica que el tipo de documento pertenezca al conjunto cerrado.
func ValidDocumentType(t string) bool {
	switch t {
	case DocTypeFacturaElectronica, DocTypeFacturaExenta, DocTypeFacturaExportacion:
		return true
	}
	return false
}

// Invoice es la raíz del agregado de facturación: ítems reclamados, total
// calculado y flags de ciclo de vida.
//
// Ciclo de vida: pre-factura editable (número placeholder PRE-XXXXXX) →
// emitida como DTE (IsDTEIssued=true, IsEditable=false, irreversible) →
// pagada/vencida según los ledgers. La anulación es lógica (CancelledAt)
// para que el estado ANULADA siga siendo derivable y la historia de edición
// no quede huérfana.
type Invoice struct {
	ID             string
	ClientID       string
	ServiceOrderID string
	Number         string // placeholder PRE-XXXXXX o número explícito del caller
	DocumentType   string // 33 | 34 | 110
	IssueDate      time.Time
	DueDate        *time.Time

	// Suma de los totales de los ítems reclamados al momento del reclamo.
	// Solo cambia mientras IsEditable es true, y nunca por debajo de
	// pagos + notas de crédito ya registrados.
	TotalAmount decimal.Decimal

	IsEditable  bool
	IsDTEIssued bool   // monotónico false→true
	DTEFolio    string // folio de emisión entregado por la integración tributaria

	Notes       string
	CancelledAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Cancelled indica si la factura fue anulada (eliminación lógica).
func (i *Invoice) Cancelled() bool {
	return i.CancelledAt != nil
}
