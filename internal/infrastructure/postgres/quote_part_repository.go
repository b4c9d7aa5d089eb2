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

var _ repository.QuotePartRepository = (*QuotePartRepo)(nil)

// QuotePartRepo partes de cotización sobre PostgreSQL (usable con pool o tx).
type QuotePartRepo struct {
	q Querier
}

// NewQuotePartRepository construye el adaptador de partes de cotización.
func NewQuotePartRepository(q Querier) *QuotePartRepo {
	return &QuotePartRepo{q: q}
}

const quotePartColumns = `id, quote_id, COALESCE(part_library_id::text, ''), part_number, description, unit,
	unit_cost, base_quantity, position, created_at, updated_at`

// Create agrega una parte. Position vacía se ubica al final.
func (r *QuotePartRepo) Create(ctx context.Context, p *entity.QuotePart) error {
	query := `
		INSERT INTO quote_parts (id, quote_id, part_library_id, part_number, description, unit, unit_cost,
			base_quantity, position, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8,
			CASE WHEN $9 > 0 THEN $9 ELSE (SELECT COALESCE(max(position), 0) + 1 FROM quote_parts WHERE quote_id = $2) END,
			$10, $11)
		RETURNING position`
	err := r.q.QueryRow(ctx, query,
		p.ID, p.QuoteID, p.PartLibraryID, p.PartNumber, p.Description, p.Unit, p.UnitCost,
		p.BaseQuantity, p.Position, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.Position)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert quote part: %w", err)
	}
	return nil
}

// GetByID obtiene una parte de cotización por ID.
func (r *QuotePartRepo) GetByID(ctx context.Context, id string) (*entity.QuotePart, error) {
	p, err := scanQuotePart(r.q.QueryRow(ctx, `SELECT `+quotePartColumns+` FROM quote_parts WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get quote part: %w", err)
	}
	return p, nil
}

// Update actualiza la parte.
func (r *QuotePartRepo) Update(ctx context.Context, p *entity.QuotePart) error {
	query := `
		UPDATE quote_parts SET part_number = $2, description = $3, unit = $4, unit_cost = $5,
			base_quantity = $6, position = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.PartNumber, p.Description, p.Unit, p.UnitCost, p.BaseQuantity, p.Position, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update quote part: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la parte con sus celdas de definición.
func (r *QuotePartRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM quote_parts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quote part: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByQuote partes de la cotización en orden de posición.
func (r *QuotePartRepo) ListByQuote(ctx context.Context, quoteID string) ([]*entity.QuotePart, error) {
	rows, err := r.q.Query(ctx, `SELECT `+quotePartColumns+` FROM quote_parts WHERE quote_id = $1 ORDER BY position, part_number`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("list quote parts: %w", err)
	}
	defer rows.Close()
	var list []*entity.QuotePart
	for rows.Next() {
		p, err := scanQuotePart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote part: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanQuotePart(row pgx.Row) (*entity.QuotePart, error) {
	var p entity.QuotePart
	err := row.Scan(&p.ID, &p.QuoteID, &p.PartLibraryID, &p.PartNumber, &p.Description, &p.Unit,
		&p.UnitCost, &p.BaseQuantity, &p.Position, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
