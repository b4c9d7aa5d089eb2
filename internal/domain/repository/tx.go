package repository

import "context"

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Quotes     QuoteRepository
	QuoteParts QuotePartRepository
	Grid       GridRepository
	Tracking   TrackingRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD; si fn devuelve error
// se hace rollback.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
