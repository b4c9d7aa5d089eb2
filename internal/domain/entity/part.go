package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartLibraryItem parte del catálogo. Las cotizaciones copian sus datos al
// agregarla, de modo que cambios posteriores de precio no alteran cotizaciones
// existentes.
type PartLibraryItem struct {
	ID          string
	PartNumber  string // único en el catálogo
	Description string
	Category    string
	Unit        string // EA, FT, LB...
	UnitCost    decimal.Decimal
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
