package dto

import "time"

// PartQuantityDTO cantidad de una parte en un día o carga.
type PartQuantityDTO struct {
	QuotePartID string `json:"quotePartId" validate:"required"`
	Quantity    int    `json:"quantity" validate:"min=0"`
}

// TrackingRequest alta o edición de un día de instalación o carga recibida.
// Date en formato YYYY-MM-DD.
type TrackingRequest struct {
	ID        string            `json:"id"`
	QuoteID   string            `json:"quoteId" validate:"required"`
	Date      string            `json:"date" validate:"required"`
	Reference string            `json:"reference"`
	Notes     string            `json:"notes"`
	Parts     []PartQuantityDTO `json:"parts"`
}

// TrackingResponse día de instalación o carga recibida.
type TrackingResponse struct {
	ID        string            `json:"id"`
	QuoteID   string            `json:"quoteId"`
	Kind      string            `json:"kind"`
	Date      string            `json:"date"`
	Reference string            `json:"reference"`
	Notes     string            `json:"notes"`
	Parts     []PartQuantityDTO `json:"parts"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// ProgressLine avance de una parte: requerido según el take-off contra
// recibido e instalado.
type ProgressLine struct {
	QuotePartID        string `json:"quotePartId"`
	PartNumber         string `json:"partNumber"`
	Description        string `json:"description"`
	Required           int    `json:"required"`
	Received           int    `json:"received"`
	Installed          int    `json:"installed"`
	RemainingToReceive int    `json:"remainingToReceive"`
	RemainingToInstall int    `json:"remainingToInstall"`
}

// ProgressResponse avance de obra de la cotización.
type ProgressResponse struct {
	QuoteID string         `json:"quoteId"`
	Lines   []ProgressLine `json:"lines"`
}
