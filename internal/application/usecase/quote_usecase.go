package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/grid"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/costing"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

// TakeoffLoader calcula las cantidades requeridas de una cotización.
// Lo implementa *grid.Service.
type TakeoffLoader interface {
	Takeoff(ctx context.Context, quoteID string) (*grid.Takeoff, error)
}

// QuoteUseCase casos de uso de la cabecera de cotización y su resumen de costos.
type QuoteUseCase struct {
	repo    repository.QuoteRepository
	takeoff TakeoffLoader
}

// NewQuoteUseCase construye el caso de uso.
func NewQuoteUseCase(repo repository.QuoteRepository, takeoff TakeoffLoader) *QuoteUseCase {
	return &QuoteUseCase{repo: repo, takeoff: takeoff}
}

// Create crea una cotización en borrador con número consecutivo COT-000001.
func (uc *QuoteUseCase) Create(ctx context.Context, userID string, in dto.CreateQuoteRequest) (*dto.QuoteResponse, error) {
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, fmt.Errorf("%w: customerName es requerido", domain.ErrInvalidInput)
	}
	if err := costing.ValidatePercents(in.MarginPercent, in.TaxPercent); err != nil {
		return nil, err
	}
	items, err := toCostItems(in.CostItems)
	if err != nil {
		return nil, err
	}
	n, err := uc.repo.NextNumber(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	q := &entity.Quote{
		ID:            uuid.New().String(),
		Number:        fmt.Sprintf("COT-%06d", n),
		CustomerName:  strings.TrimSpace(in.CustomerName),
		ProjectName:   strings.TrimSpace(in.ProjectName),
		Location:      strings.TrimSpace(in.Location),
		Status:        entity.QuoteDraft,
		MarginPercent: in.MarginPercent,
		TaxPercent:    in.TaxPercent,
		CostItems:     items,
		Notes:         in.Notes,
		CreatedBy:     userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, q); err != nil {
		return nil, err
	}
	return toQuoteResponse(q), nil
}

// GetByID obtiene la cabecera; nil si no existe.
func (uc *QuoteUseCase) GetByID(ctx context.Context, id string) (*dto.QuoteResponse, error) {
	q, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toQuoteResponse(q), nil
}

// Update edición parcial: margen, impuesto, costos adicionales y datos del cliente.
func (uc *QuoteUseCase) Update(ctx context.Context, in dto.UpdateQuoteRequest) (*dto.QuoteResponse, error) {
	q, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, nil
	}
	if in.CustomerName != nil {
		name := strings.TrimSpace(*in.CustomerName)
		if name == "" {
			return nil, fmt.Errorf("%w: customerName es requerido", domain.ErrInvalidInput)
		}
		q.CustomerName = name
	}
	if in.ProjectName != nil {
		q.ProjectName = strings.TrimSpace(*in.ProjectName)
	}
	if in.Location != nil {
		q.Location = strings.TrimSpace(*in.Location)
	}
	if in.Status != nil {
		if !entity.ValidQuoteStatus(*in.Status) {
			return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, *in.Status)
		}
		q.Status = *in.Status
	}
	if in.MarginPercent != nil {
		q.MarginPercent = *in.MarginPercent
	}
	if in.TaxPercent != nil {
		q.TaxPercent = *in.TaxPercent
	}
	if err := costing.ValidatePercents(q.MarginPercent, q.TaxPercent); err != nil {
		return nil, err
	}
	if in.CostItems != nil {
		items, err := toCostItems(*in.CostItems)
		if err != nil {
			return nil, err
		}
		q.CostItems = items
	}
	if in.Notes != nil {
		q.Notes = *in.Notes
	}
	q.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, q); err != nil {
		return nil, err
	}
	return toQuoteResponse(q), nil
}

// SetStatus cambia solo el estado de la cotización.
func (uc *QuoteUseCase) SetStatus(ctx context.Context, id, status string) error {
	_, err := uc.Update(ctx, dto.UpdateQuoteRequest{ID: id, Status: &status})
	return err
}

// Delete elimina la cotización con todo su contenido.
func (uc *QuoteUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

// Search página de cotizaciones.
func (uc *QuoteUseCase) Search(ctx context.Context, search string, page dto.PageRequest) (*dto.QuoteListResponse, error) {
	page.Normalize()
	list, total, err := uc.repo.Search(ctx, strings.TrimSpace(search), page.PerPage, page.Offset())
	if err != nil {
		return nil, err
	}
	items := make([]dto.QuoteResponse, 0, len(list))
	for _, q := range list {
		items = append(items, *toQuoteResponse(q))
	}
	return &dto.QuoteListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: page.Page, PerPage: page.PerPage, Total: total},
	}, nil
}

// Summary resumen de costos: cantidades del take-off valorizadas más costos
// adicionales, margen sobre precio de venta e impuesto.
func (uc *QuoteUseCase) Summary(ctx context.Context, id string) (*dto.SummaryResponse, error) {
	q, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	t, err := uc.takeoff.Takeoff(ctx, id)
	if err != nil {
		return nil, err
	}
	in := costing.Input{
		Lines:         make([]costing.Line, 0, len(t.Parts)),
		CostItems:     q.CostItems,
		MarginPercent: q.MarginPercent,
		TaxPercent:    q.TaxPercent,
	}
	for _, p := range t.Parts {
		in.Lines = append(in.Lines, costing.Line{
			QuotePartID: p.ID,
			PartNumber:  p.PartNumber,
			Description: p.Description,
			Unit:        p.Unit,
			Quantity:    t.Total(p.ID),
			UnitCost:    p.UnitCost,
		})
	}
	s, err := costing.Summarize(in)
	if err != nil {
		return nil, err
	}
	out := &dto.SummaryResponse{
		QuoteID:       q.ID,
		Number:        q.Number,
		CustomerName:  q.CustomerName,
		Lines:         make([]dto.SummaryLine, 0, len(s.Lines)),
		CostItems:     toCostItemDTOs(q.CostItems),
		MaterialCost:  s.MaterialCost,
		ExtraCost:     s.ExtraCost,
		TotalCost:     s.TotalCost,
		MarginPercent: s.MarginPercent,
		MarginAmount:  s.MarginAmount,
		SellPrice:     s.SellPrice,
		TaxPercent:    s.TaxPercent,
		TaxAmount:     s.TaxAmount,
		GrandTotal:    s.GrandTotal,
	}
	for _, l := range s.Lines {
		out.Lines = append(out.Lines, dto.SummaryLine{
			QuotePartID: l.QuotePartID,
			PartNumber:  l.PartNumber,
			Description: l.Description,
			Unit:        l.Unit,
			Quantity:    l.Quantity,
			UnitCost:    l.UnitCost,
			Total:       l.Total,
		})
	}
	return out, nil
}

func toCostItems(in []dto.CostItemDTO) ([]entity.CostItem, error) {
	out := make([]entity.CostItem, 0, len(in))
	for _, c := range in {
		if strings.TrimSpace(c.Description) == "" || c.Amount.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: costo adicional inválido", domain.ErrInvalidInput)
		}
		out = append(out, entity.CostItem{Description: strings.TrimSpace(c.Description), Amount: c.Amount})
	}
	return out, nil
}

func toCostItemDTOs(in []entity.CostItem) []dto.CostItemDTO {
	out := make([]dto.CostItemDTO, 0, len(in))
	for _, c := range in {
		out = append(out, dto.CostItemDTO{Description: c.Description, Amount: c.Amount})
	}
	return out
}

func toQuoteResponse(q *entity.Quote) *dto.QuoteResponse {
	if q == nil {
		return nil
	}
	return &dto.QuoteResponse{
		ID:            q.ID,
		Number:        q.Number,
		CustomerName:  q.CustomerName,
		ProjectName:   q.ProjectName,
		Location:      q.Location,
		Status:        q.Status,
		MarginPercent: q.MarginPercent,
		TaxPercent:    q.TaxPercent,
		CostItems:     toCostItemDTOs(q.CostItems),
		Notes:         q.Notes,
		CreatedBy:     q.CreatedBy,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
}
