package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ repository.GridRepository = (*GridRepo)(nil)

// GridRepo columnas y celdas de las grillas sobre PostgreSQL (usable con pool o tx).
type GridRepo struct {
	q Querier
}

// NewGridRepository construye el adaptador de persistencia de grillas.
func NewGridRepository(q Querier) *GridRepo {
	return &GridRepo{q: q}
}

const gridColumnColumns = `id, quote_id, kind, name, position, created_at`

// CreateColumn crea la columna al final de su tipo. El nombre es único por
// (cotización, tipo).
func (r *GridRepo) CreateColumn(ctx context.Context, c *entity.GridColumn) error {
	query := `
		INSERT INTO grid_columns (id, quote_id, kind, name, position, created_at)
		VALUES ($1, $2, $3, $4,
			(SELECT COALESCE(max(position), 0) + 1 FROM grid_columns WHERE quote_id = $2 AND kind = $3),
			$5)
		RETURNING position`
	err := r.q.QueryRow(ctx, query, c.ID, c.QuoteID, string(c.Kind), c.Name, c.CreatedAt).Scan(&c.Position)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert grid column: %w", err)
	}
	return nil
}

// GetColumn obtiene una columna por ID.
func (r *GridRepo) GetColumn(ctx context.Context, id string) (*entity.GridColumn, error) {
	c, err := scanGridColumn(r.q.QueryRow(ctx, `SELECT `+gridColumnColumns+` FROM grid_columns WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get grid column: %w", err)
	}
	return c, nil
}

// GetColumnByName obtiene una columna por nombre dentro de su cotización y tipo.
func (r *GridRepo) GetColumnByName(ctx context.Context, quoteID string, kind entity.GridKind, name string) (*entity.GridColumn, error) {
	query := `SELECT ` + gridColumnColumns + ` FROM grid_columns WHERE quote_id = $1 AND kind = $2 AND name = $3`
	c, err := scanGridColumn(r.q.QueryRow(ctx, query, quoteID, string(kind), name))
	if err != nil {
		return nil, fmt.Errorf("get grid column by name: %w", err)
	}
	return c, nil
}

// ListColumns columnas de un tipo en orden de posición.
func (r *GridRepo) ListColumns(ctx context.Context, quoteID string, kind entity.GridKind) ([]*entity.GridColumn, error) {
	query := `SELECT ` + gridColumnColumns + ` FROM grid_columns WHERE quote_id = $1 AND kind = $2 ORDER BY position, name`
	rows, err := r.q.Query(ctx, query, quoteID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list grid columns: %w", err)
	}
	defer rows.Close()
	var list []*entity.GridColumn
	for rows.Next() {
		c, err := scanGridColumn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grid column: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// DeleteColumn elimina la columna; las celdas caen por cascade.
func (r *GridRepo) DeleteColumn(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM grid_columns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete grid column: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateDefinitionCells inserta las celdas en un solo batch; las que ya
// existen se dejan como están.
func (r *GridRepo) CreateDefinitionCells(ctx context.Context, cells []*entity.DefinitionCell) error {
	if len(cells) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range cells {
		batch.Queue(`
			INSERT INTO definition_cells (id, column_id, quote_part_id, quantity, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (column_id, quote_part_id) DO NOTHING`,
			c.ID, c.ColumnID, c.QuotePartID, c.Quantity, c.UpdatedAt)
	}
	results := r.q.SendBatch(ctx, batch)
	for range cells {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("insert definition cells: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("insert definition cells: %w", err)
	}
	return nil
}

// ListDefinitionCells celdas de definición de un tipo para la cotización.
func (r *GridRepo) ListDefinitionCells(ctx context.Context, quoteID string, kind entity.GridKind) ([]*entity.DefinitionCell, error) {
	query := `
		SELECT d.id, d.column_id, d.quote_part_id, d.quantity, d.updated_at
		FROM definition_cells d
		JOIN grid_columns c ON c.id = d.column_id
		WHERE c.quote_id = $1 AND c.kind = $2`
	rows, err := r.q.Query(ctx, query, quoteID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list definition cells: %w", err)
	}
	defer rows.Close()
	var list []*entity.DefinitionCell
	for rows.Next() {
		var d entity.DefinitionCell
		if err := rows.Scan(&d.ID, &d.ColumnID, &d.QuotePartID, &d.Quantity, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan definition cell: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// UpsertDefinitionCell crea o actualiza la celda (columna, parte).
func (r *GridRepo) UpsertDefinitionCell(ctx context.Context, c *entity.DefinitionCell) (*entity.DefinitionCell, error) {
	query := `
		INSERT INTO definition_cells (id, column_id, quote_part_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (column_id, quote_part_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
		RETURNING id, column_id, quote_part_id, quantity, updated_at`
	var out entity.DefinitionCell
	err := r.q.QueryRow(ctx, query, c.ID, c.ColumnID, c.QuotePartID, c.Quantity, c.UpdatedAt).
		Scan(&out.ID, &out.ColumnID, &out.QuotePartID, &out.Quantity, &out.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("upsert definition cell: %w", err)
	}
	return &out, nil
}

// ListCountCells celdas de conteo de un tipo para la cotización.
func (r *GridRepo) ListCountCells(ctx context.Context, quoteID string, kind entity.GridKind) ([]*entity.CountCell, error) {
	query := `
		SELECT n.id, n.column_id, n.row_id, n.quantity, n.updated_at
		FROM count_cells n
		JOIN grid_columns c ON c.id = n.column_id
		WHERE c.quote_id = $1 AND c.kind = $2`
	rows, err := r.q.Query(ctx, query, quoteID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list count cells: %w", err)
	}
	defer rows.Close()
	var list []*entity.CountCell
	for rows.Next() {
		var n entity.CountCell
		if err := rows.Scan(&n.ID, &n.ColumnID, &n.RowID, &n.Quantity, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan count cell: %w", err)
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}

// UpsertCountCell crea o actualiza la celda (columna, fila).
func (r *GridRepo) UpsertCountCell(ctx context.Context, c *entity.CountCell) (*entity.CountCell, error) {
	query := `
		INSERT INTO count_cells (id, column_id, row_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (column_id, row_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
		RETURNING id, column_id, row_id, quantity, updated_at`
	var out entity.CountCell
	err := r.q.QueryRow(ctx, query, c.ID, c.ColumnID, c.RowID, c.Quantity, c.UpdatedAt).
		Scan(&out.ID, &out.ColumnID, &out.RowID, &out.Quantity, &out.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("upsert count cell: %w", err)
	}
	return &out, nil
}

func scanGridColumn(row pgx.Row) (*entity.GridColumn, error) {
	var c entity.GridColumn
	var kind string
	err := row.Scan(&c.ID, &c.QuoteID, &kind, &c.Name, &c.Position, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.Kind = entity.GridKind(kind)
	return &c, nil
}
