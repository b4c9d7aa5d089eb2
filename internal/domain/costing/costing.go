// Package costing consolida el costo de una cotización (servicio de dominio).
//
//	Línea      = Cantidad × CostoUnitario
//	CostoTotal = Σ Líneas + Σ CostosAdicionales
//	Venta      = CostoTotal / (1 − Margen/100)      Margen ∈ [0, 100)
//	Impuesto   = Venta × Impuesto/100               Impuesto ≥ 0
//	Total      = Venta + Impuesto
package costing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// Line parte con su cantidad total requerida.
type Line struct {
	QuotePartID string
	PartNumber  string
	Description string
	Unit        string
	Quantity    int
	UnitCost    decimal.Decimal
}

// Input datos de la cotización a consolidar.
type Input struct {
	Lines         []Line
	CostItems     []entity.CostItem
	MarginPercent decimal.Decimal
	TaxPercent    decimal.Decimal
}

// LineTotal línea valorizada.
type LineTotal struct {
	Line
	Total decimal.Decimal
}

// Summary resultado redondeado a 2 decimales.
type Summary struct {
	Lines         []LineTotal
	MaterialCost  decimal.Decimal
	ExtraCost     decimal.Decimal
	TotalCost     decimal.Decimal
	MarginPercent decimal.Decimal
	MarginAmount  decimal.Decimal
	SellPrice     decimal.Decimal
	TaxPercent    decimal.Decimal
	TaxAmount     decimal.Decimal
	GrandTotal    decimal.Decimal
}

// ValidatePercents valida margen y tasa de impuesto.
func ValidatePercents(margin, tax decimal.Decimal) error {
	if margin.IsNegative() || margin.GreaterThanOrEqual(hundred) {
		return fmt.Errorf("%w: el margen debe estar en [0, 100)", domain.ErrInvalidInput)
	}
	if tax.IsNegative() {
		return fmt.Errorf("%w: el impuesto no puede ser negativo", domain.ErrInvalidInput)
	}
	return nil
}

// Summarize calcula costo, precio de venta, impuesto y total.
func Summarize(in Input) (Summary, error) {
	if err := ValidatePercents(in.MarginPercent, in.TaxPercent); err != nil {
		return Summary{}, err
	}
	s := Summary{
		Lines:         make([]LineTotal, 0, len(in.Lines)),
		MaterialCost:  decimal.Zero,
		ExtraCost:     decimal.Zero,
		MarginPercent: in.MarginPercent,
		TaxPercent:    in.TaxPercent,
	}
	for _, l := range in.Lines {
		if l.UnitCost.IsNegative() {
			return Summary{}, fmt.Errorf("%w: costo unitario negativo en %s", domain.ErrInvalidInput, l.PartNumber)
		}
		total := l.UnitCost.Mul(decimal.NewFromInt(int64(l.Quantity)))
		s.Lines = append(s.Lines, LineTotal{Line: l, Total: total.Round(2)})
		s.MaterialCost = s.MaterialCost.Add(total)
	}
	for _, c := range in.CostItems {
		s.ExtraCost = s.ExtraCost.Add(c.Amount)
	}
	s.TotalCost = s.MaterialCost.Add(s.ExtraCost)

	factor := decimal.NewFromInt(1).Sub(in.MarginPercent.Div(hundred))
	sell := s.TotalCost.Div(factor)
	tax := sell.Mul(in.TaxPercent).Div(hundred)

	s.MaterialCost = s.MaterialCost.Round(2)
	s.ExtraCost = s.ExtraCost.Round(2)
	s.TotalCost = s.TotalCost.Round(2)
	s.SellPrice = sell.Round(2)
	s.MarginAmount = s.SellPrice.Sub(s.TotalCost)
	s.TaxAmount = tax.Round(2)
	s.GrandTotal = s.SellPrice.Add(s.TaxAmount)
	return s, nil
}
