package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

// PartLibraryUseCase casos de uso CRUD del catálogo de partes.
type PartLibraryUseCase struct {
	repo repository.PartLibraryRepository
}

// NewPartLibraryUseCase construye el caso de uso.
func NewPartLibraryUseCase(repo repository.PartLibraryRepository) *PartLibraryUseCase {
	return &PartLibraryUseCase{repo: repo}
}

// Create crea una parte. El número de parte se guarda en mayúsculas.
func (uc *PartLibraryUseCase) Create(ctx context.Context, in dto.PartLibraryRequest) (*dto.PartLibraryResponse, error) {
	if err := validatePart(in); err != nil {
		return nil, err
	}
	number := normalizePartNumber(in.PartNumber)
	existing, err := uc.repo.GetByPartNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	item := &entity.PartLibraryItem{
		ID:          uuid.New().String(),
		PartNumber:  number,
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Unit:        unitOrDefault(in.Unit),
		UnitCost:    in.UnitCost,
		Active:      in.Active == nil || *in.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return toPartLibraryResponse(item), nil
}

// GetByID obtiene una parte; nil si no existe.
func (uc *PartLibraryUseCase) GetByID(ctx context.Context, id string) (*dto.PartLibraryResponse, error) {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPartLibraryResponse(item), nil
}

// Update reemplaza los datos de la parte identificada por in.ID.
func (uc *PartLibraryUseCase) Update(ctx context.Context, in dto.PartLibraryRequest) (*dto.PartLibraryResponse, error) {
	if in.ID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := validatePart(in); err != nil {
		return nil, err
	}
	item, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	item.PartNumber = normalizePartNumber(in.PartNumber)
	item.Description = strings.TrimSpace(in.Description)
	item.Category = strings.TrimSpace(in.Category)
	item.Unit = unitOrDefault(in.Unit)
	item.UnitCost = in.UnitCost
	if in.Active != nil {
		item.Active = *in.Active
	}
	item.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return toPartLibraryResponse(item), nil
}

// Delete elimina una parte del catálogo.
func (uc *PartLibraryUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

// Search página del catálogo filtrada por texto.
func (uc *PartLibraryUseCase) Search(ctx context.Context, search string, page dto.PageRequest) (*dto.PartLibraryListResponse, error) {
	page.Normalize()
	list, total, err := uc.repo.Search(ctx, strings.TrimSpace(search), page.PerPage, page.Offset())
	if err != nil {
		return nil, err
	}
	items := make([]dto.PartLibraryResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toPartLibraryResponse(p))
	}
	return &dto.PartLibraryListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: page.Page, PerPage: page.PerPage, Total: total},
	}, nil
}

func validatePart(in dto.PartLibraryRequest) error {
	if strings.TrimSpace(in.PartNumber) == "" || in.UnitCost.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

func normalizePartNumber(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func unitOrDefault(u string) string {
	if u = strings.TrimSpace(u); u == "" {
		return "EA"
	}
	return strings.ToUpper(u)
}

func toPartLibraryResponse(p *entity.PartLibraryItem) *dto.PartLibraryResponse {
	if p == nil {
		return nil
	}
	return &dto.PartLibraryResponse{
		ID:          p.ID,
		PartNumber:  p.PartNumber,
		Description: p.Description,
		Category:    p.Category,
		Unit:        p.Unit,
		UnitCost:    p.UnitCost,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
