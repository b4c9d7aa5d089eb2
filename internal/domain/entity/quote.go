package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de Quote.
const (
	QuoteDraft  = "draft"
	QuoteSent   = "sent"
	QuoteIssued = "issued"
	QuoteWon    = "won"
	QuoteLost   = "lost"
)

// ValidQuoteStatus informa si s es un estado conocido.
func ValidQuoteStatus(s string) bool {
	switch s {
	case QuoteDraft, QuoteSent, QuoteIssued, QuoteWon, QuoteLost:
		return true
	}
	return false
}

// CostItem costo adicional de la cotización (flete, mano de obra, grúa...).
type CostItem struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Quote cotización a un cliente. Agrupa partes, grillas de definiciones y
// conteos, costos adicionales, margen e impuesto.
type Quote struct {
	ID            string
	Number        string // COT-000123
	CustomerName  string
	ProjectName   string
	Location      string
	Status        string
	MarginPercent decimal.Decimal // [0, 100)
	TaxPercent    decimal.Decimal // >= 0
	CostItems     []CostItem      // jsonb
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// QuotePart parte incluida en una cotización. BaseQuantity es la cantidad
// fija que no depende de las grillas (repuestos, extras).
type QuotePart struct {
	ID            string
	QuoteID       string
	PartLibraryID string // vacío si la parte se digitó a mano
	PartNumber    string
	Description   string
	Unit          string
	UnitCost      decimal.Decimal
	BaseQuantity  int
	Position      int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
