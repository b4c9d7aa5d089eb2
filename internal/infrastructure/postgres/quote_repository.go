package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ repository.QuoteRepository = (*QuoteRepo)(nil)

// QuoteRepo cotizaciones sobre PostgreSQL (usable con pool o tx).
type QuoteRepo struct {
	q Querier
}

// NewQuoteRepository construye el adaptador de persistencia de cotizaciones.
func NewQuoteRepository(q Querier) *QuoteRepo {
	return &QuoteRepo{q: q}
}

const quoteColumns = `id, number, customer_name, project_name, location, status, margin_percent, tax_percent,
	cost_items, notes, COALESCE(created_by::text, ''), created_at, updated_at`

// Create persiste una cotización. CostItems se guarda como JSONB.
func (r *QuoteRepo) Create(ctx context.Context, q *entity.Quote) error {
	items, err := marshalCostItems(q.CostItems)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO quotes (id, number, customer_name, project_name, location, status, margin_percent, tax_percent,
			cost_items, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, '')::uuid, $12, $13)`
	_, err = r.q.Exec(ctx, query,
		q.ID, q.Number, q.CustomerName, q.ProjectName, q.Location, q.Status, q.MarginPercent, q.TaxPercent,
		items, q.Notes, q.CreatedBy, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

// GetByID obtiene una cotización por ID.
func (r *QuoteRepo) GetByID(ctx context.Context, id string) (*entity.Quote, error) {
	q, err := scanQuote(r.q.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return q, nil
}

// Update actualiza la cabecera de la cotización.
func (r *QuoteRepo) Update(ctx context.Context, q *entity.Quote) error {
	items, err := marshalCostItems(q.CostItems)
	if err != nil {
		return err
	}
	query := `
		UPDATE quotes SET customer_name = $2, project_name = $3, location = $4, status = $5,
			margin_percent = $6, tax_percent = $7, cost_items = $8, notes = $9, updated_at = $10
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		q.ID, q.CustomerName, q.ProjectName, q.Location, q.Status, q.MarginPercent, q.TaxPercent, items, q.Notes, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la cotización con sus partes, grillas y avances (cascade).
func (r *QuoteRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Search busca por número, cliente, proyecto o ubicación.
func (r *QuoteRepo) Search(ctx context.Context, search string, limit, offset int) ([]*entity.Quote, int, error) {
	where := ``
	args := []any{}
	if search != "" {
		where = `WHERE number ILIKE $1 OR customer_name ILIKE $1 OR project_name ILIKE $1 OR location ILIKE $1`
		args = append(args, likePattern(search))
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM quotes `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count quotes: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM quotes %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		quoteColumns, where, len(args)+1, len(args)+2)
	rows, err := r.q.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("search quotes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan quote: %w", err)
		}
		list = append(list, q)
	}
	return list, total, rows.Err()
}

// NextNumber siguiente valor de quote_number_seq.
func (r *QuoteRepo) NextNumber(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('quote_number_seq')`).Scan(&n); err != nil {
		return 0, fmt.Errorf("next quote number: %w", err)
	}
	return n, nil
}

func marshalCostItems(items []entity.CostItem) ([]byte, error) {
	if items == nil {
		items = []entity.CostItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal cost items: %w", err)
	}
	return b, nil
}

func scanQuote(row pgx.Row) (*entity.Quote, error) {
	var q entity.Quote
	var items []byte
	err := row.Scan(&q.ID, &q.Number, &q.CustomerName, &q.ProjectName, &q.Location, &q.Status,
		&q.MarginPercent, &q.TaxPercent, &items, &q.Notes, &q.CreatedBy, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &q.CostItems); err != nil {
			return nil, fmt.Errorf("unmarshal cost items: %w", err)
		}
	}
	return &q, nil
}
