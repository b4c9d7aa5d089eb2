package repository

import (
	"context"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// TrackingRepository puerto de persistencia de días de instalación y cargas
// recibidas. Las líneas se guardan junto con la cabecera.
type TrackingRepository interface {
	Create(ctx context.Context, entry *entity.TrackingEntry) error
	GetByID(ctx context.Context, id string) (*entity.TrackingEntry, error)
	// Update reemplaza la cabecera y todas las líneas.
	Update(ctx context.Context, entry *entity.TrackingEntry) error
	Delete(ctx context.Context, id string) error
	ListByQuote(ctx context.Context, quoteID string, kind entity.TrackingKind) ([]*entity.TrackingEntry, error)
}
