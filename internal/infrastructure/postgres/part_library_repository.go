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

var _ repository.PartLibraryRepository = (*PartLibraryRepo)(nil)

// PartLibraryRepo catálogo de partes sobre PostgreSQL (usable con pool o tx).
type PartLibraryRepo struct {
	q Querier
}

// NewPartLibraryRepository construye el adaptador del catálogo.
func NewPartLibraryRepository(q Querier) *PartLibraryRepo {
	return &PartLibraryRepo{q: q}
}

const partColumns = `id, part_number, description, category, unit, unit_cost, active, created_at, updated_at`

// Create persiste una parte nueva; el número de parte es único.
func (r *PartLibraryRepo) Create(ctx context.Context, p *entity.PartLibraryItem) error {
	query := `
		INSERT INTO part_library (` + partColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.PartNumber, p.Description, p.Category, p.Unit, p.UnitCost, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert part: %w", err)
	}
	return nil
}

// GetByID obtiene una parte por ID.
func (r *PartLibraryRepo) GetByID(ctx context.Context, id string) (*entity.PartLibraryItem, error) {
	p, err := scanPart(r.q.QueryRow(ctx, `SELECT `+partColumns+` FROM part_library WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get part: %w", err)
	}
	return p, nil
}

// GetByPartNumber obtiene una parte por número (sin distinguir mayúsculas).
func (r *PartLibraryRepo) GetByPartNumber(ctx context.Context, partNumber string) (*entity.PartLibraryItem, error) {
	p, err := scanPart(r.q.QueryRow(ctx, `SELECT `+partColumns+` FROM part_library WHERE upper(part_number) = upper($1)`, partNumber))
	if err != nil {
		return nil, fmt.Errorf("get part by number: %w", err)
	}
	return p, nil
}

// Update actualiza los datos de la parte.
func (r *PartLibraryRepo) Update(ctx context.Context, p *entity.PartLibraryItem) error {
	query := `
		UPDATE part_library
		SET part_number = $2, description = $3, category = $4, unit = $5, unit_cost = $6, active = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, p.ID, p.PartNumber, p.Description, p.Category, p.Unit, p.UnitCost, p.Active, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update part: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina una parte del catálogo. Las cotizaciones conservan su copia.
func (r *PartLibraryRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM part_library WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete part: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Search busca por número, descripción o categoría con paginación.
func (r *PartLibraryRepo) Search(ctx context.Context, search string, limit, offset int) ([]*entity.PartLibraryItem, int, error) {
	where := ``
	args := []any{}
	if search != "" {
		where = `WHERE part_number ILIKE $1 OR description ILIKE $1 OR category ILIKE $1`
		args = append(args, likePattern(search))
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM part_library `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count parts: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM part_library %s ORDER BY part_number LIMIT $%d OFFSET $%d`,
		partColumns, where, len(args)+1, len(args)+2)
	rows, err := r.q.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("search parts: %w", err)
	}
	defer rows.Close()
	var list []*entity.PartLibraryItem
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan part: %w", err)
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

func scanPart(row pgx.Row) (*entity.PartLibraryItem, error) {
	var p entity.PartLibraryItem
	err := row.Scan(&p.ID, &p.PartNumber, &p.Description, &p.Category, &p.Unit, &p.UnitCost, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
