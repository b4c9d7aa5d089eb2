package entity

import (
	"strings"
	"time"
)

// GridKind tipo de unidad estructural de una grilla.
type GridKind string

const (
	KindBay       GridKind = "bay"
	KindFrameline GridKind = "frameline"
	KindFlue      GridKind = "flue"
	KindRow       GridKind = "row"
)

// UnitKinds unidades que se cuentan por fila.
var UnitKinds = []GridKind{KindBay, KindFrameline, KindFlue}

// ParseGridKind interpreta el tipo sin distinguir mayúsculas ("Bay", "FLUE").
func ParseGridKind(s string) (GridKind, bool) {
	switch k := GridKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindBay, KindFrameline, KindFlue, KindRow:
		return k, true
	}
	return "", false
}

// GridScope pantalla a la que pertenece una grilla.
type GridScope string

const (
	ScopeDefinition GridScope = "definition"
	ScopeCount      GridScope = "count"
)

// ParseGridScope interpreta el alcance sin distinguir mayúsculas.
func ParseGridScope(s string) (GridScope, bool) {
	switch sc := GridScope(strings.ToLower(strings.TrimSpace(s))); sc {
	case ScopeDefinition, ScopeCount:
		return sc, true
	}
	return "", false
}

// GridColumn unidad con nombre dentro de una cotización ("Bay 1", "Row-3").
// Es la columna de las grillas de definición y de conteo de su tipo; las
// columnas de tipo row son además las filas de las grillas de conteo.
type GridColumn struct {
	ID        string
	QuoteID   string
	Kind      GridKind
	Name      string
	Position  int
	CreatedAt time.Time
}

// DefinitionCell cantidad de una parte por unidad (parte × bahía).
type DefinitionCell struct {
	ID          string
	ColumnID    string
	QuotePartID string
	Quantity    int
	UpdatedAt   time.Time
}

// CountCell cantidad de unidades por fila (fila × bahía).
type CountCell struct {
	ID        string
	ColumnID  string
	RowID     string // GridColumn de tipo row
	Quantity  int
	UpdatedAt time.Time
}
