// Package grid expone las grillas de definiciones y conteos de una
// cotización en la forma fila-con-celdas que consume el editor de matrices.
//
// Definiciones (scope definition): filas = partes, columnas = unidades del
// tipo (bay, frameline, flue) o filas físicas (row).
// Conteos (scope count): filas = filas físicas, columnas = unidades del tipo.
// El conteo de tipo row es el take-off derivado y es de solo lectura.
package grid

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/ports"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

// Service casos de uso de las grillas.
type Service struct {
	quotes  repository.QuoteRepository
	parts   repository.QuotePartRepository
	grid    repository.GridRepository
	tx      repository.TxRunner
	metrics ports.Metrics
}

// NewService construye el servicio; metrics puede ser nil.
func NewService(quotes repository.QuoteRepository, parts repository.QuotePartRepository, grid repository.GridRepository, tx repository.TxRunner, metrics ports.Metrics) *Service {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Service{quotes: quotes, parts: parts, grid: grid, tx: tx, metrics: metrics}
}

// Definition grilla de definiciones: cantidad de cada parte por unidad.
func (s *Service) Definition(ctx context.Context, kind entity.GridKind, quoteID string) (*dto.GridResponse, error) {
	if err := s.requireQuote(ctx, quoteID); err != nil {
		return nil, err
	}
	var (
		parts []*entity.QuotePart
		cols  []*entity.GridColumn
		cells []*entity.DefinitionCell
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { parts, err = s.parts.ListByQuote(gctx, quoteID); return })
	g.Go(func() (err error) { cols, err = s.grid.ListColumns(gctx, quoteID, kind); return })
	g.Go(func() (err error) { cells, err = s.grid.ListDefinitionCells(gctx, quoteID, kind); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byKey := make(map[[2]string]*entity.DefinitionCell, len(cells))
	for _, c := range cells {
		byKey[[2]string{c.QuotePartID, c.ColumnID}] = c
	}
	resp := newResponse(quoteID, entity.ScopeDefinition, kind, cols)
	for _, p := range parts {
		row := dto.GridRow{ID: p.ID, Label: partLabel(p), Children: make([]dto.GridChild, 0, len(cols))}
		for _, c := range cols {
			child := dto.GridChild{Name: c.Name, ColumnID: c.ID}
			if cell := byKey[[2]string{p.ID, c.ID}]; cell != nil {
				child.ID = cell.ID
				child.Quantity = cell.Quantity
			}
			row.Children = append(row.Children, child)
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp, nil
}

// Count grilla de conteos: unidades por fila física. Con kind row devuelve
// el take-off (partes × filas) de solo lectura.
func (s *Service) Count(ctx context.Context, kind entity.GridKind, quoteID string) (*dto.GridResponse, error) {
	if kind == entity.KindRow {
		return s.takeoffGrid(ctx, quoteID)
	}
	if err := s.requireQuote(ctx, quoteID); err != nil {
		return nil, err
	}
	var (
		rows  []*entity.GridColumn
		cols  []*entity.GridColumn
		cells []*entity.CountCell
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { rows, err = s.grid.ListColumns(gctx, quoteID, entity.KindRow); return })
	g.Go(func() (err error) { cols, err = s.grid.ListColumns(gctx, quoteID, kind); return })
	g.Go(func() (err error) { cells, err = s.grid.ListCountCells(gctx, quoteID, kind); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byKey := make(map[[2]string]*entity.CountCell, len(cells))
	for _, c := range cells {
		byKey[[2]string{c.RowID, c.ColumnID}] = c
	}
	resp := newResponse(quoteID, entity.ScopeCount, kind, cols)
	for _, r := range rows {
		row := dto.GridRow{ID: r.ID, Label: r.Name, Children: make([]dto.GridChild, 0, len(cols))}
		for _, c := range cols {
			child := dto.GridChild{Name: c.Name, ColumnID: c.ID}
			if cell := byKey[[2]string{r.ID, c.ID}]; cell != nil {
				child.ID = cell.ID
				child.Quantity = cell.Quantity
			}
			row.Children = append(row.Children, child)
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp, nil
}

func (s *Service) takeoffGrid(ctx context.Context, quoteID string) (*dto.GridResponse, error) {
	t, err := s.Takeoff(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	resp := newResponse(quoteID, entity.ScopeCount, entity.KindRow, t.Rows)
	resp.ReadOnly = true
	for _, p := range t.Parts {
		row := dto.GridRow{ID: p.ID, Label: partLabel(p), Children: make([]dto.GridChild, 0, len(t.Rows))}
		for _, r := range t.Rows {
			row.Children = append(row.Children, dto.GridChild{
				Name: r.Name, ColumnID: r.ID, Quantity: t.Result.Required.Get(p.ID, r.ID),
			})
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp, nil
}

// AddColumn crea la unidad name y materializa una celda de definición en
// cero por cada parte de la cotización, en una sola transacción.
func (s *Service) AddColumn(ctx context.Context, kind entity.GridKind, name, quoteID string) (*dto.ColumnCreatedResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre vacío", domain.ErrInvalidInput)
	}
	now := time.Now()
	col := &entity.GridColumn{ID: uuid.New().String(), QuoteID: quoteID, Kind: kind, Name: name, CreatedAt: now}
	var cells []*entity.DefinitionCell
	err := s.tx.Run(ctx, func(r repository.Repos) error {
		q, err := r.Quotes.GetByID(ctx, quoteID)
		if err != nil {
			return err
		}
		if q == nil {
			return domain.ErrNotFound
		}
		if err := r.Grid.CreateColumn(ctx, col); err != nil {
			return err
		}
		parts, err := r.QuoteParts.ListByQuote(ctx, quoteID)
		if err != nil {
			return err
		}
		cells = make([]*entity.DefinitionCell, 0, len(parts))
		for _, p := range parts {
			cells = append(cells, &entity.DefinitionCell{
				ID: uuid.New().String(), ColumnID: col.ID, QuotePartID: p.ID, UpdatedAt: now,
			})
		}
		return r.Grid.CreateDefinitionCells(ctx, cells)
	})
	if err != nil {
		return nil, err
	}
	out := &dto.ColumnCreatedResponse{Column: toColumnResponse(col), Cells: make([]dto.CellRef, 0, len(cells))}
	for _, c := range cells {
		out.Cells = append(out.Cells, dto.CellRef{EntityID: c.QuotePartID, ID: c.ID})
	}
	return out, nil
}

// DeleteColumn elimina la columna columnID de tipo kind con todas sus celdas.
func (s *Service) DeleteColumn(ctx context.Context, kind entity.GridKind, quoteID, columnID string) error {
	col, err := s.grid.GetColumn(ctx, columnID)
	if err != nil {
		return err
	}
	if col == nil || col.QuoteID != quoteID || col.Kind != kind {
		return domain.ErrNotFound
	}
	return s.grid.DeleteColumn(ctx, col.ID)
}

// UpdateDefinitionCell escribe la cantidad de una parte en una columna.
func (s *Service) UpdateDefinitionCell(ctx context.Context, kind entity.GridKind, in dto.UpdateCellRequest) (*dto.CellResponse, error) {
	out, err := s.updateDefinitionCell(ctx, kind, in)
	s.metrics.CellWritten(string(entity.ScopeDefinition), string(kind), err == nil)
	return out, err
}

func (s *Service) updateDefinitionCell(ctx context.Context, kind entity.GridKind, in dto.UpdateCellRequest) (*dto.CellResponse, error) {
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: cantidad negativa", domain.ErrInvalidInput)
	}
	col, err := s.column(ctx, kind, in.Column(string(kind)))
	if err != nil {
		return nil, err
	}
	part, err := s.parts.GetByID(ctx, in.EntityID)
	if err != nil {
		return nil, err
	}
	if part == nil || part.QuoteID != col.QuoteID {
		return nil, domain.ErrNotFound
	}
	cell, err := s.grid.UpsertDefinitionCell(ctx, &entity.DefinitionCell{
		ID: uuid.New().String(), ColumnID: col.ID, QuotePartID: part.ID, Quantity: in.Quantity, UpdatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	return &dto.CellResponse{ID: cell.ID, Quantity: cell.Quantity}, nil
}

// UpdateCountCell escribe la cantidad de unidades de una columna en una fila.
func (s *Service) UpdateCountCell(ctx context.Context, kind entity.GridKind, in dto.UpdateCellRequest) (*dto.CellResponse, error) {
	out, err := s.updateCountCell(ctx, kind, in)
	s.metrics.CellWritten(string(entity.ScopeCount), string(kind), err == nil)
	return out, err
}

func (s *Service) updateCountCell(ctx context.Context, kind entity.GridKind, in dto.UpdateCellRequest) (*dto.CellResponse, error) {
	if kind == entity.KindRow {
		return nil, domain.ErrReadOnly
	}
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: cantidad negativa", domain.ErrInvalidInput)
	}
	col, err := s.column(ctx, kind, in.Column(string(kind)))
	if err != nil {
		return nil, err
	}
	row, err := s.grid.GetColumn(ctx, in.EntityID)
	if err != nil {
		return nil, err
	}
	if row == nil || row.Kind != entity.KindRow || row.QuoteID != col.QuoteID {
		return nil, domain.ErrNotFound
	}
	cell, err := s.grid.UpsertCountCell(ctx, &entity.CountCell{
		ID: uuid.New().String(), ColumnID: col.ID, RowID: row.ID, Quantity: in.Quantity, UpdatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	return &dto.CellResponse{ID: cell.ID, Quantity: cell.Quantity}, nil
}

func (s *Service) column(ctx context.Context, kind entity.GridKind, id string) (*entity.GridColumn, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: falta el id de %s", domain.ErrInvalidInput, kind)
	}
	col, err := s.grid.GetColumn(ctx, id)
	if err != nil {
		return nil, err
	}
	if col == nil || col.Kind != kind {
		return nil, domain.ErrNotFound
	}
	return col, nil
}

func (s *Service) requireQuote(ctx context.Context, quoteID string) error {
	q, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return err
	}
	if q == nil {
		return domain.ErrNotFound
	}
	return nil
}

func newResponse(quoteID string, scope entity.GridScope, kind entity.GridKind, cols []*entity.GridColumn) *dto.GridResponse {
	resp := &dto.GridResponse{
		QuoteID: quoteID,
		Scope:   string(scope),
		Kind:    string(kind),
		Columns: make([]dto.GridColumnResponse, 0, len(cols)),
		Rows:    []dto.GridRow{},
	}
	for _, c := range cols {
		resp.Columns = append(resp.Columns, toColumnResponse(c))
	}
	return resp
}

func toColumnResponse(c *entity.GridColumn) dto.GridColumnResponse {
	return dto.GridColumnResponse{ID: c.ID, Kind: string(c.Kind), Name: c.Name, Position: c.Position}
}

func partLabel(p *entity.QuotePart) string {
	if p.Description == "" {
		return p.PartNumber
	}
	return p.PartNumber + " " + p.Description
}
