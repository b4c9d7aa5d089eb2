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

var _ repository.TrackingRepository = (*TrackingRepo)(nil)

// TrackingRepo días de instalación y cargas recibidas sobre PostgreSQL.
// Cabecera y líneas deben escribirse dentro de una tx (ver TxRunner).
type TrackingRepo struct {
	q Querier
}

// NewTrackingRepository construye el adaptador de avance de obra.
func NewTrackingRepository(q Querier) *TrackingRepo {
	return &TrackingRepo{q: q}
}

const trackingColumns = `id, quote_id, kind, date, reference, notes, COALESCE(created_by::text, ''), created_at, updated_at`

// Create persiste la cabecera y sus líneas.
func (r *TrackingRepo) Create(ctx context.Context, e *entity.TrackingEntry) error {
	query := `
		INSERT INTO tracking_entries (id, quote_id, kind, date, reference, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.QuoteID, string(e.Kind), e.Date, e.Reference, e.Notes, e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert tracking entry: %w", err)
	}
	return r.insertLines(ctx, e)
}

// GetByID obtiene la cabecera con sus líneas.
func (r *TrackingRepo) GetByID(ctx context.Context, id string) (*entity.TrackingEntry, error) {
	e, err := scanTracking(r.q.QueryRow(ctx, `SELECT `+trackingColumns+` FROM tracking_entries WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get tracking entry: %w", err)
	}
	if e == nil {
		return nil, nil
	}
	if err := r.loadLines(ctx, []*entity.TrackingEntry{e}); err != nil {
		return nil, err
	}
	return e, nil
}

// Update reemplaza cabecera y líneas.
func (r *TrackingRepo) Update(ctx context.Context, e *entity.TrackingEntry) error {
	query := `
		UPDATE tracking_entries SET date = $2, reference = $3, notes = $4, updated_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, e.ID, e.Date, e.Reference, e.Notes, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update tracking entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM tracking_lines WHERE entry_id = $1`, e.ID); err != nil {
		return fmt.Errorf("delete tracking lines: %w", err)
	}
	return r.insertLines(ctx, e)
}

// Delete elimina la cabecera; las líneas caen por cascade.
func (r *TrackingRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM tracking_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tracking entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByQuote registros del tipo pedido ordenados por fecha.
func (r *TrackingRepo) ListByQuote(ctx context.Context, quoteID string, kind entity.TrackingKind) ([]*entity.TrackingEntry, error) {
	query := `SELECT ` + trackingColumns + ` FROM tracking_entries WHERE quote_id = $1 AND kind = $2 ORDER BY date, created_at`
	rows, err := r.q.Query(ctx, query, quoteID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list tracking entries: %w", err)
	}
	var list []*entity.TrackingEntry
	for rows.Next() {
		e, err := scanTracking(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan tracking entry: %w", err)
		}
		list = append(list, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tracking entries: %w", err)
	}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *TrackingRepo) insertLines(ctx context.Context, e *entity.TrackingEntry) error {
	for _, l := range e.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO tracking_lines (entry_id, quote_part_id, quantity) VALUES ($1, $2, $3)
			ON CONFLICT (entry_id, quote_part_id) DO UPDATE SET quantity = tracking_lines.quantity + EXCLUDED.quantity`,
			e.ID, l.QuotePartID, l.Quantity)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: parte %s", domain.ErrNotFound, l.QuotePartID)
			}
			return fmt.Errorf("insert tracking line: %w", err)
		}
	}
	return nil
}

func (r *TrackingRepo) loadLines(ctx context.Context, entries []*entity.TrackingEntry) error {
	if len(entries) == 0 {
		return nil
	}
	ids := make([]string, len(entries))
	byID := make(map[string]*entity.TrackingEntry, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		byID[e.ID] = e
		e.Lines = []entity.PartQuantity{}
	}
	rows, err := r.q.Query(ctx, `
		SELECT l.entry_id, l.quote_part_id, l.quantity
		FROM tracking_lines l
		JOIN quote_parts p ON p.id = l.quote_part_id
		WHERE l.entry_id::text = ANY($1)
		ORDER BY p.position`, ids)
	if err != nil {
		return fmt.Errorf("list tracking lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var entryID string
		var l entity.PartQuantity
		if err := rows.Scan(&entryID, &l.QuotePartID, &l.Quantity); err != nil {
			return fmt.Errorf("scan tracking line: %w", err)
		}
		if e := byID[entryID]; e != nil {
			e.Lines = append(e.Lines, l)
		}
	}
	return rows.Err()
}

func scanTracking(row pgx.Row) (*entity.TrackingEntry, error) {
	var e entity.TrackingEntry
	var kind string
	err := row.Scan(&e.ID, &e.QuoteID, &kind, &e.Date, &e.Reference, &e.Notes, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	e.Kind = entity.TrackingKind(kind)
	return &e, nil
}
