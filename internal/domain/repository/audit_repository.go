package repository

import (
	"context"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// AuditFilter criterios de búsqueda del log de auditoría.
type AuditFilter struct {
	Search      string
	OrderBy     string // created_at, user_email, action, path, entity, status
	IsAscending bool
	Limit       int
	Offset      int
}

// AuditRepository puerto de persistencia del log de auditoría.
type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditEntry) error
	Search(ctx context.Context, f AuditFilter) ([]*entity.AuditEntry, int, error)
}
