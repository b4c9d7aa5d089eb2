// Package tracking registra días de instalación y cargas recibidas y calcula
// el avance de obra contra las cantidades requeridas.
package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/grid"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

// DateLayout formato de fecha en la API.
const DateLayout = "2006-01-02"

// TakeoffLoader lo implementa *grid.Service.
type TakeoffLoader interface {
	Takeoff(ctx context.Context, quoteID string) (*grid.Takeoff, error)
}

// Service casos de uso de avance de obra.
type Service struct {
	repo    repository.TrackingRepository
	parts   repository.QuotePartRepository
	tx      repository.TxRunner
	takeoff TakeoffLoader
}

// NewService construye el servicio.
func NewService(repo repository.TrackingRepository, parts repository.QuotePartRepository, tx repository.TxRunner, takeoff TakeoffLoader) *Service {
	return &Service{repo: repo, parts: parts, tx: tx, takeoff: takeoff}
}

// List registros del tipo kind de la cotización.
func (s *Service) List(ctx context.Context, kind entity.TrackingKind, quoteID string) ([]dto.TrackingResponse, error) {
	list, err := s.repo.ListByQuote(ctx, quoteID, kind)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TrackingResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toResponse(e))
	}
	return out, nil
}

// Add crea un día de instalación o una carga recibida.
func (s *Service) Add(ctx context.Context, kind entity.TrackingKind, userID string, in dto.TrackingRequest) (*dto.TrackingResponse, error) {
	date, lines, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	e := &entity.TrackingEntry{
		ID:        uuid.New().String(),
		QuoteID:   in.QuoteID,
		Kind:      kind,
		Date:      date,
		Reference: in.Reference,
		Notes:     in.Notes,
		Lines:     lines,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.tx.Run(ctx, func(r repository.Repos) error {
		q, err := r.Quotes.GetByID(ctx, in.QuoteID)
		if err != nil {
			return err
		}
		if q == nil {
			return domain.ErrNotFound
		}
		return r.Tracking.Create(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	out := toResponse(e)
	return &out, nil
}

// Update reemplaza fecha, referencia, notas y cantidades de un registro.
func (s *Service) Update(ctx context.Context, kind entity.TrackingKind, in dto.TrackingRequest) (*dto.TrackingResponse, error) {
	if in.ID == "" {
		return nil, fmt.Errorf("%w: id es requerido", domain.ErrInvalidInput)
	}
	date, lines, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	var e *entity.TrackingEntry
	err = s.tx.Run(ctx, func(r repository.Repos) error {
		cur, err := r.Tracking.GetByID(ctx, in.ID)
		if err != nil {
			return err
		}
		if cur == nil || cur.Kind != kind || cur.QuoteID != in.QuoteID {
			return domain.ErrNotFound
		}
		cur.Date = date
		cur.Reference = in.Reference
		cur.Notes = in.Notes
		cur.Lines = lines
		cur.UpdatedAt = time.Now()
		e = cur
		return r.Tracking.Update(ctx, cur)
	})
	if err != nil {
		return nil, err
	}
	out := toResponse(e)
	return &out, nil
}

// Delete elimina el registro id si es del tipo kind.
func (s *Service) Delete(ctx context.Context, kind entity.TrackingKind, id string) error {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e == nil || e.Kind != kind {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// Progress requerido, recibido, instalado y pendiente por parte.
func (s *Service) Progress(ctx context.Context, quoteID string) (*dto.ProgressResponse, error) {
	var (
		t                   *grid.Takeoff
		received, installed []*entity.TrackingEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { t, err = s.takeoff.Takeoff(gctx, quoteID); return })
	g.Go(func() (err error) {
		received, err = s.repo.ListByQuote(gctx, quoteID, entity.TrackingReceiving)
		return
	})
	g.Go(func() (err error) {
		installed, err = s.repo.ListByQuote(gctx, quoteID, entity.TrackingInstallation)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rec, ins := sumLines(received), sumLines(installed)
	out := &dto.ProgressResponse{QuoteID: quoteID, Lines: make([]dto.ProgressLine, 0, len(t.Parts))}
	for _, p := range t.Parts {
		req := t.Total(p.ID)
		out.Lines = append(out.Lines, dto.ProgressLine{
			QuotePartID:        p.ID,
			PartNumber:         p.PartNumber,
			Description:        p.Description,
			Required:           req,
			Received:           rec[p.ID],
			Installed:          ins[p.ID],
			RemainingToReceive: max(req-rec[p.ID], 0),
			RemainingToInstall: max(req-ins[p.ID], 0),
		})
	}
	return out, nil
}

// validate revisa fecha y líneas: cada parte debe pertenecer a la cotización;
// cantidades repetidas de la misma parte se suman.
func (s *Service) validate(ctx context.Context, in dto.TrackingRequest) (time.Time, []entity.PartQuantity, error) {
	if in.QuoteID == "" {
		return time.Time{}, nil, fmt.Errorf("%w: quoteId es requerido", domain.ErrInvalidInput)
	}
	date, err := time.Parse(DateLayout, in.Date)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("%w: fecha %q, se espera AAAA-MM-DD", domain.ErrInvalidInput, in.Date)
	}
	parts, err := s.parts.ListByQuote(ctx, in.QuoteID)
	if err != nil {
		return time.Time{}, nil, err
	}
	known := make(map[string]bool, len(parts))
	for _, p := range parts {
		known[p.ID] = true
	}
	index := make(map[string]int, len(in.Parts))
	lines := make([]entity.PartQuantity, 0, len(in.Parts))
	for _, l := range in.Parts {
		if l.Quantity < 0 {
			return time.Time{}, nil, fmt.Errorf("%w: cantidad negativa", domain.ErrInvalidInput)
		}
		if !known[l.QuotePartID] {
			return time.Time{}, nil, fmt.Errorf("%w: parte %s", domain.ErrNotFound, l.QuotePartID)
		}
		if i, ok := index[l.QuotePartID]; ok {
			lines[i].Quantity += l.Quantity
			continue
		}
		index[l.QuotePartID] = len(lines)
		lines = append(lines, entity.PartQuantity{QuotePartID: l.QuotePartID, Quantity: l.Quantity})
	}
	return date, lines, nil
}

func sumLines(entries []*entity.TrackingEntry) map[string]int {
	out := make(map[string]int)
	for _, e := range entries {
		for _, l := range e.Lines {
			out[l.QuotePartID] += l.Quantity
		}
	}
	return out
}

func toResponse(e *entity.TrackingEntry) dto.TrackingResponse {
	parts := make([]dto.PartQuantityDTO, 0, len(e.Lines))
	for _, l := range e.Lines {
		parts = append(parts, dto.PartQuantityDTO{QuotePartID: l.QuotePartID, Quantity: l.Quantity})
	}
	return dto.TrackingResponse{
		ID:        e.ID,
		QuoteID:   e.QuoteID,
		Kind:      string(e.Kind),
		Date:      e.Date.Format(DateLayout),
		Reference: e.Reference,
		Notes:     e.Notes,
		Parts:     parts,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
