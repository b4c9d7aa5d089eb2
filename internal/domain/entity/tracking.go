package entity

import "time"

// TrackingKind tipo de registro de avance de obra.
type TrackingKind string

const (
	// TrackingInstallation día de instalación: partes instaladas en una jornada.
	TrackingInstallation TrackingKind = "installation"
	// TrackingReceiving carga recibida: partes que llegaron a obra.
	TrackingReceiving TrackingKind = "receiving"
)

// PartQuantity cantidad de una parte de la cotización.
type PartQuantity struct {
	QuotePartID string `json:"quotePartId"`
	Quantity    int    `json:"quantity"`
}

// TrackingEntry día de instalación o carga recibida, según Kind.
type TrackingEntry struct {
	ID        string
	QuoteID   string
	Kind      TrackingKind
	Date      time.Time
	Reference string // cuadrilla o número de remisión
	Notes     string
	Lines     []PartQuantity
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}
