package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartLibraryRequest alta o edición de una parte del catálogo. En PUT el ID
// viaja en el cuerpo.
type PartLibraryRequest struct {
	ID          string          `json:"id"`
	PartNumber  string          `json:"partNumber" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=500"`
	Category    string          `json:"category"`
	Unit        string          `json:"unit"`
	UnitCost    decimal.Decimal `json:"unitCost" validate:"min=0"`
	Active      *bool           `json:"active"`
}

// PartLibraryResponse parte del catálogo.
type PartLibraryResponse struct {
	ID          string          `json:"id"`
	PartNumber  string          `json:"partNumber"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Unit        string          `json:"unit"`
	UnitCost    decimal.Decimal `json:"unitCost"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// PartLibraryListResponse página del catálogo.
type PartLibraryListResponse struct {
	Items []PartLibraryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// CreateQuotePartRequest agrega una parte a la cotización. Con PartLibraryID
// los campos vacíos se copian del catálogo.
type CreateQuotePartRequest struct {
	QuoteID       string           `json:"quoteId" validate:"required"`
	PartLibraryID string           `json:"partLibraryId"`
	PartNumber    string           `json:"partNumber"`
	Description   string           `json:"description"`
	Unit          string           `json:"unit"`
	UnitCost      *decimal.Decimal `json:"unitCost" validate:"omitempty,min=0"`
	BaseQuantity  int              `json:"baseQuantity" validate:"min=0"`
	Position      int              `json:"position"`
}

// UpdateQuotePartRequest edición parcial de una parte de la cotización.
type UpdateQuotePartRequest struct {
	ID           string           `json:"id" validate:"required"`
	PartNumber   *string          `json:"partNumber"`
	Description  *string          `json:"description"`
	Unit         *string          `json:"unit"`
	UnitCost     *decimal.Decimal `json:"unitCost" validate:"omitempty,min=0"`
	BaseQuantity *int             `json:"baseQuantity" validate:"omitempty,min=0"`
	Position     *int             `json:"position"`
}

// QuotePartResponse parte de una cotización.
type QuotePartResponse struct {
	ID            string          `json:"id"`
	QuoteID       string          `json:"quoteId"`
	PartLibraryID string          `json:"partLibraryId,omitempty"`
	PartNumber    string          `json:"partNumber"`
	Description   string          `json:"description"`
	Unit          string          `json:"unit"`
	UnitCost      decimal.Decimal `json:"unitCost"`
	BaseQuantity  int             `json:"baseQuantity"`
	Position      int             `json:"position"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
