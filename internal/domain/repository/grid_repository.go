package repository

import (
	"context"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// GridRepository puerto de persistencia de columnas y celdas de las grillas
// de definiciones y conteos.
type GridRepository interface {
	CreateColumn(ctx context.Context, col *entity.GridColumn) error
	GetColumn(ctx context.Context, id string) (*entity.GridColumn, error)
	GetColumnByName(ctx context.Context, quoteID string, kind entity.GridKind, name string) (*entity.GridColumn, error)
	ListColumns(ctx context.Context, quoteID string, kind entity.GridKind) ([]*entity.GridColumn, error)
	// DeleteColumn elimina la columna y sus celdas.
	DeleteColumn(ctx context.Context, id string) error

	// CreateDefinitionCells inserta celdas nuevas (ignora las existentes).
	CreateDefinitionCells(ctx context.Context, cells []*entity.DefinitionCell) error
	ListDefinitionCells(ctx context.Context, quoteID string, kind entity.GridKind) ([]*entity.DefinitionCell, error)
	// UpsertDefinitionCell crea o actualiza la celda (columna, parte) y
	// devuelve su estado persistido.
	UpsertDefinitionCell(ctx context.Context, cell *entity.DefinitionCell) (*entity.DefinitionCell, error)

	ListCountCells(ctx context.Context, quoteID string, kind entity.GridKind) ([]*entity.CountCell, error)
	UpsertCountCell(ctx context.Context, cell *entity.CountCell) (*entity.CountCell, error)
}
