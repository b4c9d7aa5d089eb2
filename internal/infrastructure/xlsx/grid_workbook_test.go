package xlsx_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/xlsx"
)

func TestRenderGrid_FilasColumnasYTotales(t *testing.T) {
	q := &dto.QuoteResponse{Number: "COT-000007", CustomerName: "ACME"}
	g := &dto.GridResponse{
		Scope:   "definition",
		Kind:    "bay",
		Columns: []dto.GridColumnResponse{{ID: "b1", Name: "Bay 1"}, {ID: "b2", Name: "Bay 2"}},
		Rows: []dto.GridRow{
			{ID: "p1", Label: "UP-96", Children: []dto.GridChild{{Name: "Bay 1", Quantity: 2}, {Name: "Bay 2", Quantity: 3}}},
			{ID: "p2", Label: "BM-08", Children: []dto.GridChild{{Name: "Bay 1", Quantity: 4}, {Name: "Bay 2", Quantity: 0}}},
		},
	}

	b, err := xlsx.NewGridWorkbook().RenderGrid(context.Background(), q, g)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Grilla")
	require.NoError(t, err)
	require.Len(t, rows, 6, "título, vacía, cabecera, dos filas y totales")
	assert.Equal(t, []string{"", "Bay 1", "Bay 2", "Total"}, rows[2])
	assert.Equal(t, []string{"UP-96", "2", "3", "5"}, rows[3])
	assert.Equal(t, []string{"BM-08", "4", "0", "4"}, rows[4])
	assert.Equal(t, []string{"Total", "6", "3", "9"}, rows[5])
}

func TestRenderGrid_SinGrillaFalla(t *testing.T) {
	_, err := xlsx.NewGridWorkbook().RenderGrid(context.Background(), &dto.QuoteResponse{}, nil)
	assert.Error(t, err)
}
