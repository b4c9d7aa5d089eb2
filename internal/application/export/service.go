// Package export genera los documentos de una cotización: PDF, libro de
// cálculo de una grilla y archivo de PDFs emitidos.
package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/grid"
	"github.com/jhoicas/Cotizaciones-api/internal/application/ports"
	"github.com/jhoicas/Cotizaciones-api/internal/application/usecase"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	presignExpiry   = 15 * time.Minute
)

// Service casos de uso de exportación.
type Service struct {
	quotes   *usecase.QuoteUseCase
	grids    *grid.Service
	pdf      ports.QuotePDFRenderer
	workbook ports.GridWorkbookRenderer
	store    ports.DocumentStore
	metrics  ports.Metrics
	now      func() time.Time
}

// NewService construye el servicio; metrics puede ser nil.
func NewService(quotes *usecase.QuoteUseCase, grids *grid.Service, pdf ports.QuotePDFRenderer, workbook ports.GridWorkbookRenderer, store ports.DocumentStore, metrics ports.Metrics) *Service {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Service{quotes: quotes, grids: grids, pdf: pdf, workbook: workbook, store: store, metrics: metrics, now: time.Now}
}

// QuotePDF genera el PDF de la cotización sin archivarlo.
func (s *Service) QuotePDF(ctx context.Context, quoteID string) ([]byte, string, error) {
	q, sum, err := s.load(ctx, quoteID)
	if err != nil {
		return nil, "", err
	}
	b, err := s.pdf.RenderQuote(ctx, q, sum)
	if err != nil {
		return nil, "", fmt.Errorf("export: generar pdf: %w", err)
	}
	return b, q.Number + ".pdf", nil
}

// GridWorkbook exporta la grilla (scope, kind) a XLSX.
func (s *Service) GridWorkbook(ctx context.Context, scope entity.GridScope, kind entity.GridKind, quoteID string) ([]byte, string, error) {
	q, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, "", err
	}
	if q == nil {
		return nil, "", domain.ErrNotFound
	}
	var g *dto.GridResponse
	switch scope {
	case entity.ScopeDefinition:
		g, err = s.grids.Definition(ctx, kind, quoteID)
	default:
		g, err = s.grids.Count(ctx, kind, quoteID)
	}
	if err != nil {
		return nil, "", err
	}
	b, err := s.workbook.RenderGrid(ctx, q, g)
	if err != nil {
		return nil, "", fmt.Errorf("export: generar xlsx: %w", err)
	}
	return b, fmt.Sprintf("%s-%s-%s.xlsx", q.Number, scope, kind), nil
}

// Issue genera el PDF, lo archiva como quotes/<id>/<número>-<marca>.pdf y
// marca la cotización como emitida.
func (s *Service) Issue(ctx context.Context, quoteID string) (*dto.DocumentResponse, error) {
	q, sum, err := s.load(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	b, err := s.pdf.RenderQuote(ctx, q, sum)
	if err != nil {
		return nil, fmt.Errorf("export: generar pdf: %w", err)
	}
	name := fmt.Sprintf("%s-%s.pdf", q.Number, s.now().UTC().Format("20060102T150405"))
	doc, err := s.store.Put(ctx, documentKey(quoteID, name), bytes.NewReader(b), contentTypePDF)
	if err != nil {
		return nil, fmt.Errorf("export: archivar pdf: %w", err)
	}
	if q.Status == entity.QuoteDraft || q.Status == entity.QuoteSent {
		if err := s.quotes.SetStatus(ctx, quoteID, entity.QuoteIssued); err != nil {
			return nil, err
		}
	}
	s.metrics.DocumentIssued()
	return s.toDocument(ctx, doc), nil
}

// Documents PDFs emitidos de la cotización, el más reciente primero.
func (s *Service) Documents(ctx context.Context, quoteID string) ([]dto.DocumentResponse, error) {
	docs, err := s.store.List(ctx, documentKey(quoteID, ""))
	if err != nil {
		return nil, fmt.Errorf("export: listar documentos: %w", err)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Key > docs[j].Key })
	out := make([]dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, *s.toDocument(ctx, d))
	}
	return out, nil
}

// Open abre un documento archivado para descarga.
func (s *Service) Open(ctx context.Context, quoteID, name string) (io.ReadCloser, ports.Document, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil, ports.Document{}, domain.ErrInvalidInput
	}
	doc, rc, err := s.store.Get(ctx, documentKey(quoteID, name))
	if err != nil {
		return nil, ports.Document{}, err
	}
	return rc, doc, nil
}

func (s *Service) load(ctx context.Context, quoteID string) (*dto.QuoteResponse, *dto.SummaryResponse, error) {
	q, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, nil, err
	}
	if q == nil {
		return nil, nil, domain.ErrNotFound
	}
	sum, err := s.quotes.Summary(ctx, quoteID)
	if err != nil {
		return nil, nil, err
	}
	return q, sum, nil
}

func (s *Service) toDocument(ctx context.Context, d ports.Document) *dto.DocumentResponse {
	out := &dto.DocumentResponse{Name: path.Base(d.Key), Size: d.Size, CreatedAt: d.LastModified}
	if url, err := s.store.PresignURL(ctx, d.Key, presignExpiry); err == nil {
		out.URL = url
	}
	return out
}

func documentKey(quoteID, name string) string {
	return "quotes/" + quoteID + "/" + name
}
