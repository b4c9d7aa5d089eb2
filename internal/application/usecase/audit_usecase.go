package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

// AuditUseCase registro y búsqueda del log de auditoría.
type AuditUseCase struct {
	repo repository.AuditRepository
}

// NewAuditUseCase construye el caso de uso.
func NewAuditUseCase(repo repository.AuditRepository) *AuditUseCase {
	return &AuditUseCase{repo: repo}
}

// Record guarda una mutación exitosa.
func (uc *AuditUseCase) Record(ctx context.Context, e entity.AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	return uc.repo.Create(ctx, &e)
}

// Search página del log con orden validado por el repositorio.
func (uc *AuditUseCase) Search(ctx context.Context, in dto.AuditSearchRequest) (*dto.AuditListResponse, error) {
	page := dto.PageRequest{Page: in.Page, PerPage: in.PerPage}
	page.Normalize()
	list, total, err := uc.repo.Search(ctx, repository.AuditFilter{
		Search:      in.Search,
		OrderBy:     NormalizeAuditOrder(in.OrderBy),
		IsAscending: in.IsAscending,
		Limit:       page.PerPage,
		Offset:      page.Offset(),
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.AuditEntryResponse, 0, len(list))
	for _, e := range list {
		items = append(items, dto.AuditEntryResponse{
			ID:        e.ID,
			UserID:    e.UserID,
			UserEmail: e.UserEmail,
			Action:    e.Action,
			Path:      e.Path,
			Entity:    e.Entity,
			EntityID:  e.EntityID,
			Status:    e.Status,
			CreatedAt: e.CreatedAt,
		})
	}
	return &dto.AuditListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: page.Page, PerPage: page.PerPage, Total: total},
	}, nil
}

// NormalizeAuditOrder traduce los nombres de orden del cliente (camelCase)
// a columnas; cualquier otro valor ordena por fecha.
func NormalizeAuditOrder(orderBy string) string {
	switch orderBy {
	case "userEmail", "user_email", "email":
		return "user_email"
	case "action", "path", "entity", "status":
		return orderBy
	default:
		return "created_at"
	}
}
