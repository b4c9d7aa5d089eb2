package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostItemDTO costo adicional (flete, mano de obra...).
type CostItemDTO struct {
	Description string          `json:"description" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"min=0"`
}

// CreateQuoteRequest alta de cotización.
type CreateQuoteRequest struct {
	CustomerName  string          `json:"customerName" validate:"required,max=200"`
	ProjectName   string          `json:"projectName"`
	Location      string          `json:"location"`
	MarginPercent decimal.Decimal `json:"marginPercent" validate:"min=0,lt=100"`
	TaxPercent    decimal.Decimal `json:"taxPercent" validate:"min=0"`
	CostItems     []CostItemDTO   `json:"costItems"`
	Notes         string          `json:"notes"`
}

// UpdateQuoteRequest edición parcial; el ID viaja en el cuerpo.
type UpdateQuoteRequest struct {
	ID            string           `json:"id" validate:"required"`
	CustomerName  *string          `json:"customerName"`
	ProjectName   *string          `json:"projectName"`
	Location      *string          `json:"location"`
	Status        *string          `json:"status" validate:"omitempty,oneof=draft sent issued won lost"`
	MarginPercent *decimal.Decimal `json:"marginPercent"`
	TaxPercent    *decimal.Decimal `json:"taxPercent"`
	CostItems     *[]CostItemDTO   `json:"costItems"`
	Notes         *string          `json:"notes"`
}

// QuoteResponse cabecera de cotización.
type QuoteResponse struct {
	ID            string          `json:"id"`
	Number        string          `json:"number"`
	CustomerName  string          `json:"customerName"`
	ProjectName   string          `json:"projectName"`
	Location      string          `json:"location"`
	Status        string          `json:"status"`
	MarginPercent decimal.Decimal `json:"marginPercent"`
	TaxPercent    decimal.Decimal `json:"taxPercent"`
	CostItems     []CostItemDTO   `json:"costItems"`
	Notes         string          `json:"notes"`
	CreatedBy     string          `json:"createdBy,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// QuoteListResponse página de cotizaciones.
type QuoteListResponse struct {
	Items []QuoteResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// SummaryLine parte valorizada con su cantidad total.
type SummaryLine struct {
	QuotePartID string          `json:"quotePartId"`
	PartNumber  string          `json:"partNumber"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unitCost"`
	Total       decimal.Decimal `json:"total"`
}

// SummaryResponse costo, margen, impuesto y total de la cotización.
type SummaryResponse struct {
	QuoteID       string          `json:"quoteId"`
	Number        string          `json:"number"`
	CustomerName  string          `json:"customerName"`
	Lines         []SummaryLine   `json:"lines"`
	CostItems     []CostItemDTO   `json:"costItems"`
	MaterialCost  decimal.Decimal `json:"materialCost"`
	ExtraCost     decimal.Decimal `json:"extraCost"`
	TotalCost     decimal.Decimal `json:"totalCost"`
	MarginPercent decimal.Decimal `json:"marginPercent"`
	MarginAmount  decimal.Decimal `json:"marginAmount"`
	SellPrice     decimal.Decimal `json:"sellPrice"`
	TaxPercent    decimal.Decimal `json:"taxPercent"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
}

// DocumentResponse PDF emitido y archivado.
type DocumentResponse struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
