package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo log de auditoría sobre PostgreSQL.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador del log de auditoría.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// auditOrderColumns columnas permitidas en ORDER BY; nunca se interpola
// texto del cliente.
var auditOrderColumns = map[string]string{
	"created_at": "created_at",
	"user_email": "user_email",
	"action":     "action",
	"path":       "path",
	"entity":     "entity",
	"status":     "status",
}

// Create inserta un registro.
func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditEntry) error {
	query := `
		INSERT INTO audit_log (id, user_id, user_email, action, path, entity, entity_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query, e.ID, e.UserID, e.UserEmail, e.Action, e.Path, e.Entity, e.EntityID, e.Status, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Search filtra por texto libre en email, ruta o entidad.
func (r *AuditRepo) Search(ctx context.Context, f repository.AuditFilter) ([]*entity.AuditEntry, int, error) {
	where := ``
	args := []any{}
	if f.Search != "" {
		where = `WHERE user_email ILIKE $1 OR path ILIKE $1 OR entity ILIKE $1 OR action ILIKE $1`
		args = append(args, likePattern(f.Search))
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM audit_log `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	col, ok := auditOrderColumns[f.OrderBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if f.IsAscending {
		dir = "ASC"
	}
	query := fmt.Sprintf(`
		SELECT id, user_id, user_email, action, path, entity, entity_id, status, created_at
		FROM audit_log %s ORDER BY %s %s, id LIMIT $%d OFFSET $%d`,
		where, col, dir, len(args)+1, len(args)+2)
	rows, err := r.q.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("search audit entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserEmail, &e.Action, &e.Path, &e.Entity, &e.EntityID, &e.Status, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan audit entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, total, rows.Err()
}
