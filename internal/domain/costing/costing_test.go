package costing_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/costing"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSummarize_MargenSobrePrecioDeVenta(t *testing.T) {
	in := costing.Input{
		Lines: []costing.Line{
			{PartNumber: "UP-96", Quantity: 10, UnitCost: d("50")},
			{PartNumber: "BM-08", Quantity: 4, UnitCost: d("25.50")},
		},
		CostItems:     []entity.CostItem{{Description: "Flete", Amount: d("98")}},
		MarginPercent: d("20"),
		TaxPercent:    d("19"),
	}

	s, err := costing.Summarize(in)
	require.NoError(t, err)

	assert.True(t, d("602").Equal(s.MaterialCost), "500 + 102")
	assert.True(t, d("700").Equal(s.TotalCost))
	assert.True(t, d("875").Equal(s.SellPrice), "700 / 0.8")
	assert.True(t, d("175").Equal(s.MarginAmount))
	assert.True(t, d("166.25").Equal(s.TaxAmount))
	assert.True(t, d("1041.25").Equal(s.GrandTotal))
	require.Len(t, s.Lines, 2)
	assert.True(t, d("102").Equal(s.Lines[1].Total))
}

func TestSummarize_RedondeaADosDecimales(t *testing.T) {
	s, err := costing.Summarize(costing.Input{
		Lines:         []costing.Line{{Quantity: 1, UnitCost: d("100")}},
		MarginPercent: d("33"),
		TaxPercent:    decimal.Zero,
	})
	require.NoError(t, err)
	assert.Equal(t, "149.25", s.SellPrice.StringFixed(2))
}

func TestSummarize_SinMargenNiImpuesto(t *testing.T) {
	s, err := costing.Summarize(costing.Input{
		Lines: []costing.Line{{Quantity: 3, UnitCost: d("1.10")}},
	})
	require.NoError(t, err)
	assert.True(t, d("3.30").Equal(s.GrandTotal))
}

func TestSummarize_PorcentajesInvalidos(t *testing.T) {
	tests := []struct {
		name   string
		margin string
		tax    string
	}{
		{"margen cien", "100", "0"},
		{"margen negativo", "-1", "0"},
		{"impuesto negativo", "10", "-5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := costing.Summarize(costing.Input{MarginPercent: d(tt.margin), TaxPercent: d(tt.tax)})
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "esperaba ErrInvalidInput, obtuvo %v", err)
		})
	}
}
