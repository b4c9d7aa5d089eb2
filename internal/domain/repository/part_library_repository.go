package repository

import (
	"context"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// PartLibraryRepository puerto de persistencia del catálogo de partes.
type PartLibraryRepository interface {
	Create(ctx context.Context, item *entity.PartLibraryItem) error
	GetByID(ctx context.Context, id string) (*entity.PartLibraryItem, error)
	GetByPartNumber(ctx context.Context, partNumber string) (*entity.PartLibraryItem, error)
	Update(ctx context.Context, item *entity.PartLibraryItem) error
	Delete(ctx context.Context, id string) error
	// Search busca por número de parte, descripción o categoría; devuelve
	// la página pedida y el total de coincidencias.
	Search(ctx context.Context, search string, limit, offset int) ([]*entity.PartLibraryItem, int, error)
}
