package grid

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/takeoff"
)

// Takeoff cantidades requeridas de una cotización junto con sus partes y
// filas en orden de despliegue.
type Takeoff struct {
	Parts  []*entity.QuotePart
	Rows   []*entity.GridColumn
	Result takeoff.Result
}

// Total cantidad requerida total de la parte.
func (t *Takeoff) Total(partID string) int {
	return t.Result.Totals[partID]
}

// Takeoff carga en paralelo partes, filas y todas las grillas de la
// cotización y calcula las cantidades requeridas.
func (s *Service) Takeoff(ctx context.Context, quoteID string) (*Takeoff, error) {
	if err := s.requireQuote(ctx, quoteID); err != nil {
		return nil, err
	}
	var (
		parts   []*entity.QuotePart
		rows    []*entity.GridColumn
		rowDefs []*entity.DefinitionCell
		defs    = make([][]*entity.DefinitionCell, len(entity.UnitKinds))
		counts  = make([][]*entity.CountCell, len(entity.UnitKinds))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { parts, err = s.parts.ListByQuote(gctx, quoteID); return })
	g.Go(func() (err error) { rows, err = s.grid.ListColumns(gctx, quoteID, entity.KindRow); return })
	g.Go(func() (err error) { rowDefs, err = s.grid.ListDefinitionCells(gctx, quoteID, entity.KindRow); return })
	for i, k := range entity.UnitKinds {
		i, k := i, k
		g.Go(func() (err error) { defs[i], err = s.grid.ListDefinitionCells(gctx, quoteID, k); return })
		g.Go(func() (err error) { counts[i], err = s.grid.ListCountCells(gctx, quoteID, k); return })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	in := takeoff.Input{
		Parts:  make([]takeoff.Part, 0, len(parts)),
		Rows:   make([]string, 0, len(rows)),
		RowDef: takeoff.Grid{},
		Def:    make(map[entity.GridKind]takeoff.Grid, len(entity.UnitKinds)),
		Count:  make(map[entity.GridKind]takeoff.Grid, len(entity.UnitKinds)),
	}
	for _, p := range parts {
		in.Parts = append(in.Parts, takeoff.Part{ID: p.ID, BaseQuantity: p.BaseQuantity})
	}
	for _, r := range rows {
		in.Rows = append(in.Rows, r.ID)
	}
	for _, c := range rowDefs {
		in.RowDef.Set(c.QuotePartID, c.ColumnID, c.Quantity)
	}
	for i, k := range entity.UnitKinds {
		def, cnt := takeoff.Grid{}, takeoff.Grid{}
		for _, c := range defs[i] {
			def.Set(c.QuotePartID, c.ColumnID, c.Quantity)
		}
		for _, c := range counts[i] {
			cnt.Set(c.RowID, c.ColumnID, c.Quantity)
		}
		in.Def[k] = def
		in.Count[k] = cnt
	}
	return &Takeoff{Parts: parts, Rows: rows, Result: takeoff.Compute(in)}, nil
}
