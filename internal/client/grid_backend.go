package client

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/pkg/matrix"
)

var (
	_ matrix.Source      = (*GridBackend)(nil)
	_ matrix.Writer      = (*GridBackend)(nil)
	_ matrix.ColumnStore = (*GridBackend)(nil)
)

// GridBackend enlaza una matriz con una grilla de la API: lectura, escritura
// de celdas y alta/baja de columnas para un (scope, kind, cotización).
// Las columnas se resuelven por nombre con los ids de la última lectura.
type GridBackend struct {
	c       *Client
	scope   string
	kind    string
	quoteID string

	mu       sync.Mutex
	columns  map[string]string // nombre -> id
	readOnly bool
}

// NewGridBackend crea el adaptador. scope es definition o count.
func NewGridBackend(c *Client, scope, kind, quoteID string) (*GridBackend, error) {
	scope, kind = strings.ToLower(strings.TrimSpace(scope)), strings.ToLower(strings.TrimSpace(kind))
	if scope != "definition" && scope != "count" {
		return nil, fmt.Errorf("client: scope desconocido %q", scope)
	}
	if kind == "" || quoteID == "" {
		return nil, fmt.Errorf("client: kind y cotización son requeridos")
	}
	return &GridBackend{c: c, scope: scope, kind: kind, quoteID: quoteID, columns: map[string]string{}}, nil
}

// Scope, Kind y QuoteID identifican la grilla.
func (b *GridBackend) Scope() string   { return b.scope }
func (b *GridBackend) Kind() string    { return b.kind }
func (b *GridBackend) QuoteID() string { return b.quoteID }

// ReadOnly indica si la última lectura devolvió una grilla calculada.
func (b *GridBackend) ReadOnly() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.readOnly
}

// Fetch implementa matrix.Source.
func (b *GridBackend) Fetch(ctx context.Context) ([]matrix.RowInput, error) {
	g, err := b.c.Grid(ctx, b.scope, b.kind, b.quoteID)
	if err != nil {
		return nil, err
	}
	cols := make(map[string]string, len(g.Columns))
	for _, col := range g.Columns {
		cols[col.Name] = col.ID
	}
	rows := make([]matrix.RowInput, 0, len(g.Rows))
	for _, r := range g.Rows {
		in := matrix.RowInput{Key: r.ID, Label: r.Label, Children: make([]matrix.ChildInput, 0, len(r.Children))}
		for _, ch := range r.Children {
			if ch.ColumnID != "" {
				cols[ch.Name] = ch.ColumnID
			}
			in.Children = append(in.Children, matrix.ChildInput{Name: ch.Name, ChildID: ch.ID, Quantity: ch.Quantity})
		}
		rows = append(rows, in)
	}

	b.mu.Lock()
	b.columns = cols
	b.readOnly = g.ReadOnly
	b.mu.Unlock()
	return rows, nil
}

// WriteCell implementa matrix.Writer.
func (b *GridBackend) WriteCell(ctx context.Context, w matrix.CellWrite) (string, error) {
	colID, err := b.columnID(w.Column)
	if err != nil {
		return "", err
	}
	out, err := b.c.UpdateCell(ctx, b.scope, b.kind, dto.UpdateCellRequest{
		EntityID: w.RowKey,
		ColumnID: colID,
		Quantity: w.Quantity,
	})
	if err != nil {
		return "", err
	}
	return out.ID, nil
}

// AddColumn implementa matrix.ColumnStore.
func (b *GridBackend) AddColumn(ctx context.Context, name string) (matrix.ColumnCreated, error) {
	out, err := b.c.AddColumn(ctx, b.kind, name, b.quoteID)
	if err != nil {
		return matrix.ColumnCreated{}, err
	}
	created := matrix.ColumnCreated{ID: out.Column.ID, Cells: make(map[string]string, len(out.Cells))}
	for _, cell := range out.Cells {
		created.Cells[cell.EntityID] = cell.ID
	}
	b.mu.Lock()
	b.columns[out.Column.Name] = out.Column.ID
	b.mu.Unlock()
	return created, nil
}

// DeleteColumn implementa matrix.ColumnStore.
func (b *GridBackend) DeleteColumn(ctx context.Context, name string) error {
	colID, err := b.columnID(name)
	if err != nil {
		return err
	}
	if err := b.c.DeleteColumn(ctx, b.kind, b.quoteID, colID); err != nil {
		return err
	}
	b.mu.Lock()
	delete(b.columns, name)
	b.mu.Unlock()
	return nil
}

func (b *GridBackend) columnID(name string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.columns[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", matrix.ErrUnknownColumn, name)
	}
	return id, nil
}
