package ports

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
)

// QuotePDFRenderer genera el PDF de una cotización a partir de su resumen.
// Cualquier adaptador (Maroto, mock) debe implementar esta interfaz.
type QuotePDFRenderer interface {
	RenderQuote(ctx context.Context, quote *dto.QuoteResponse, summary *dto.SummaryResponse) ([]byte, error)
}

// GridWorkbookRenderer exporta una grilla a una hoja de cálculo.
type GridWorkbookRenderer interface {
	RenderGrid(ctx context.Context, quote *dto.QuoteResponse, grid *dto.GridResponse) ([]byte, error)
}

// ErrUnsupported el driver no ofrece la operación (p. ej. URL firmada).
var ErrUnsupported = errors.New("operación no soportada por el almacén")

// Document metadatos de un documento archivado.
type Document struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// DocumentStore archivo de documentos emitidos (memoria, disco o S3).
type DocumentStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Document, error)
	// Get devuelve domain.ErrNotFound si la clave no existe.
	Get(ctx context.Context, key string) (Document, io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]Document, error)
	// PresignURL devuelve una URL temporal de descarga, o ErrUnsupported si
	// el driver no la ofrece.
	PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Metrics contadores de negocio; nil-safe a través de NopMetrics.
type Metrics interface {
	CellWritten(scope, kind string, ok bool)
	DocumentIssued()
}

// NopMetrics descarta todo.
type NopMetrics struct{}

func (NopMetrics) CellWritten(string, string, bool) {}
func (NopMetrics) DocumentIssued()                  {}
