package pdf_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/pdf"
)

func TestRenderQuote_GeneraPDF(t *testing.T) {
	g := pdf.NewQuotePDFGenerator("Racks del Norte")
	q := &dto.QuoteResponse{ID: "q1", Number: "COT-000001", CustomerName: "Bodegas S.A.", ProjectName: "Nave 3"}
	s := &dto.SummaryResponse{
		QuoteID: "q1",
		Lines: []dto.SummaryLine{
			{PartNumber: "UP-96", Description: "Upright 96in", Unit: "EA", Quantity: 12,
				UnitCost: decimal.NewFromInt(50), Total: decimal.NewFromInt(600)},
		},
		CostItems:     []dto.CostItemDTO{{Description: "Flete", Amount: decimal.NewFromInt(100)}},
		MaterialCost:  decimal.NewFromInt(600),
		ExtraCost:     decimal.NewFromInt(100),
		TotalCost:     decimal.NewFromInt(700),
		MarginPercent: decimal.NewFromInt(20),
		MarginAmount:  decimal.NewFromInt(175),
		SellPrice:     decimal.NewFromInt(875),
		TaxPercent:    decimal.NewFromInt(19),
		TaxAmount:     decimal.RequireFromString("166.25"),
		GrandTotal:    decimal.RequireFromString("1041.25"),
	}

	b, err := g.RenderQuote(context.Background(), q, s)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")), "debe ser un documento PDF")
}

func TestRenderQuote_SinResumenFalla(t *testing.T) {
	g := pdf.NewQuotePDFGenerator("x")
	_, err := g.RenderQuote(context.Background(), &dto.QuoteResponse{}, nil)
	assert.Error(t, err)
}
