package repository

import (
	"context"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// QuoteRepository puerto de persistencia de cotizaciones.
type QuoteRepository interface {
	Create(ctx context.Context, quote *entity.Quote) error
	GetByID(ctx context.Context, id string) (*entity.Quote, error)
	Update(ctx context.Context, quote *entity.Quote) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, search string, limit, offset int) ([]*entity.Quote, int, error)
	// NextNumber consecutivo para el número visible de la cotización.
	NextNumber(ctx context.Context) (int64, error)
}

// QuotePartRepository puerto de persistencia de las partes de una cotización.
type QuotePartRepository interface {
	Create(ctx context.Context, part *entity.QuotePart) error
	GetByID(ctx context.Context, id string) (*entity.QuotePart, error)
	Update(ctx context.Context, part *entity.QuotePart) error
	Delete(ctx context.Context, id string) error
	ListByQuote(ctx context.Context, quoteID string) ([]*entity.QuotePart, error)
}
