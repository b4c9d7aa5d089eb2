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

// QuotePartUseCase partes de una cotización. Al agregar una parte se le
// materializa una celda en cero por cada columna de definición existente.
type QuotePartUseCase struct {
	quotes  repository.QuoteRepository
	parts   repository.QuotePartRepository
	library repository.PartLibraryRepository
	tx      repository.TxRunner
}

// NewQuotePartUseCase construye el caso de uso.
func NewQuotePartUseCase(quotes repository.QuoteRepository, parts repository.QuotePartRepository, library repository.PartLibraryRepository, tx repository.TxRunner) *QuotePartUseCase {
	return &QuotePartUseCase{quotes: quotes, parts: parts, library: library, tx: tx}
}

// ListByQuote partes de la cotización en orden.
func (uc *QuotePartUseCase) ListByQuote(ctx context.Context, quoteID string) ([]dto.QuotePartResponse, error) {
	q, err := uc.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.parts.ListByQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.QuotePartResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toQuotePartResponse(p))
	}
	return out, nil
}

// Create agrega una parte a la cotización, copiando del catálogo si viene
// PartLibraryID.
func (uc *QuotePartUseCase) Create(ctx context.Context, in dto.CreateQuotePartRequest) (*dto.QuotePartResponse, error) {
	if in.BaseQuantity < 0 || (in.UnitCost != nil && in.UnitCost.IsNegative()) {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	part := &entity.QuotePart{
		ID:           uuid.New().String(),
		QuoteID:      in.QuoteID,
		PartNumber:   normalizePartNumber(in.PartNumber),
		Description:  strings.TrimSpace(in.Description),
		Unit:         strings.TrimSpace(in.Unit),
		BaseQuantity: in.BaseQuantity,
		Position:     in.Position,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.UnitCost != nil {
		part.UnitCost = *in.UnitCost
	}
	if in.PartLibraryID != "" {
		item, err := uc.library.GetByID(ctx, in.PartLibraryID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, domain.ErrNotFound
		}
		part.PartLibraryID = item.ID
		if part.PartNumber == "" {
			part.PartNumber = item.PartNumber
		}
		if part.Description == "" {
			part.Description = item.Description
		}
		if part.Unit == "" {
			part.Unit = item.Unit
		}
		if in.UnitCost == nil {
			part.UnitCost = item.UnitCost
		}
	}
	if part.PartNumber == "" {
		return nil, domain.ErrInvalidInput
	}
	part.Unit = unitOrDefault(part.Unit)

	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		q, err := r.Quotes.GetByID(ctx, in.QuoteID)
		if err != nil {
			return err
		}
		if q == nil {
			return domain.ErrNotFound
		}
		if err := r.QuoteParts.Create(ctx, part); err != nil {
			return err
		}
		var cells []*entity.DefinitionCell
		for _, kind := range append(append([]entity.GridKind{}, entity.UnitKinds...), entity.KindRow) {
			cols, err := r.Grid.ListColumns(ctx, in.QuoteID, kind)
			if err != nil {
				return err
			}
			for _, c := range cols {
				cells = append(cells, &entity.DefinitionCell{
					ID: uuid.New().String(), ColumnID: c.ID, QuotePartID: part.ID, UpdatedAt: now,
				})
			}
		}
		return r.Grid.CreateDefinitionCells(ctx, cells)
	})
	if err != nil {
		return nil, err
	}
	return toQuotePartResponse(part), nil
}

// Update edición parcial de una parte.
func (uc *QuotePartUseCase) Update(ctx context.Context, in dto.UpdateQuotePartRequest) (*dto.QuotePartResponse, error) {
	part, err := uc.parts.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, nil
	}
	if in.PartNumber != nil {
		n := normalizePartNumber(*in.PartNumber)
		if n == "" {
			return nil, domain.ErrInvalidInput
		}
		part.PartNumber = n
	}
	if in.Description != nil {
		part.Description = strings.TrimSpace(*in.Description)
	}
	if in.Unit != nil {
		part.Unit = unitOrDefault(*in.Unit)
	}
	if in.UnitCost != nil {
		if in.UnitCost.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		part.UnitCost = *in.UnitCost
	}
	if in.BaseQuantity != nil {
		if *in.BaseQuantity < 0 {
			return nil, domain.ErrInvalidInput
		}
		part.BaseQuantity = *in.BaseQuantity
	}
	if in.Position != nil {
		part.Position = *in.Position
	}
	part.UpdatedAt = time.Now()
	if err := uc.parts.Update(ctx, part); err != nil {
		return nil, err
	}
	return toQuotePartResponse(part), nil
}

// Delete quita la parte de la cotización.
func (uc *QuotePartUseCase) Delete(ctx context.Context, id string) error {
	return uc.parts.Delete(ctx, id)
}

func toQuotePartResponse(p *entity.QuotePart) *dto.QuotePartResponse {
	if p == nil {
		return nil
	}
	return &dto.QuotePartResponse{
		ID:            p.ID,
		QuoteID:       p.QuoteID,
		PartLibraryID: p.PartLibraryID,
		PartNumber:    p.PartNumber,
		Description:   p.Description,
		Unit:          p.Unit,
		UnitCost:      p.UnitCost,
		BaseQuantity:  p.BaseQuantity,
		Position:      p.Position,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
