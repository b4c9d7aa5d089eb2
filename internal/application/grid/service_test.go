package grid_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/testutil"
)

// quantities extrae la matriz de cantidades por etiqueta de fila.
func quantities(g *dto.GridResponse) map[string][]int {
	out := make(map[string][]int, len(g.Rows))
	for _, r := range g.Rows {
		row := make([]int, 0, len(r.Children))
		for _, c := range r.Children {
			row = append(row, c.Quantity)
		}
		out[r.Label] = row
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Lectura de grillas
// ──────────────────────────────────────────────────────────────────────────────

func TestDefinition_FilasSonPartesYColumnasBahias(t *testing.T) {
	app := testutil.NewApp()
	sc := app.NewScenario(t)

	g, err := app.Grid.Definition(context.Background(), entity.KindBay, sc.QuoteID)
	require.NoError(t, err)

	assert.Equal(t, "definition", g.Scope)
	assert.False(t, g.ReadOnly)
	require.Len(t, g.Columns, 2)
	assert.Equal(t, "B1", g.Columns[0].Name)
	assert.Equal(t, 1, g.Columns[0].Position)
	assert.Equal(t, 2, g.Columns[1].Position)

	want := map[string][]int{"UP-96 UP-96": {2, 1}, "BM-08 BM-08": {4, 0}}
	if diff := cmp.Diff(want, quantities(g)); diff != "" {
		t.Errorf("definición de bahías (-want +got):\n%s", diff)
	}
	for _, r := range g.Rows {
		for _, c := range r.Children {
			assert.NotEmpty(t, c.ID, "toda celda de definición existe desde que se crea la columna")
			assert.NotEmpty(t, c.ColumnID)
		}
	}
}

func TestCount_FilasFisicasPorBahia(t *testing.T) {
	app := testutil.NewApp()
	sc := app.NewScenario(t)

	g, err := app.Grid.Count(context.Background(), entity.KindBay, sc.QuoteID)
	require.NoError(t, err)

	want := map[string][]int{"R1": {3, 2}, "R2": {1, 0}}
	if diff := cmp.Diff(want, quantities(g)); diff != "" {
		t.Errorf("conteo de bahías (-want +got):\n%s", diff)
	}
	assert.Empty(t, g.Rows[1].Children[1].ID, "una celda de conteo nunca escrita no tiene id")
}

func TestCount_TipoRowEsElTakeoffDeSoloLectura(t *testing.T) {
	app := testutil.NewApp()
	sc := app.NewScenario(t)

	g, err := app.Grid.Count(context.Background(), entity.KindRow, sc.QuoteID)
	require.NoError(t, err)

	assert.True(t, g.ReadOnly)
	want := map[string][]int{"UP-96 UP-96": {8, 2}, "BM-08 BM-08": {12, 9}}
	if diff := cmp.Diff(want, quantities(g)); diff != "" {
		t.Errorf("take-off (-want +got):\n%s", diff)
	}

	_, err = app.Grid.UpdateCountCell(context.Background(), entity.KindRow, dto.UpdateCellRequest{
		EntityID: sc.Parts["UP-96"], RowID: sc.Columns["R1"], Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrReadOnly)
}

func TestTakeoff_TotalesIncluyenBase(t *testing.T) {
	app := testutil.NewApp()
	sc := app.NewScenario(t)

	tk, err := app.Grid.Takeoff(context.Background(), sc.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, 10, tk.Total(sc.Parts["UP-96"]))
	assert.Equal(t, 23, tk.Total(sc.Parts["BM-08"]))
}

func TestGrid_CotizacionInexistente(t *testing.T) {
	app := testutil.NewApp()
	_, err := app.Grid.Definition(context.Background(), entity.KindBay, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = app.Grid.Count(context.Background(), entity.KindRow, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Columnas
// ──────────────────────────────────────────────────────────────────────────────

func TestAddColumn_MaterializaCeldasPorParte(t *testing.T) {
	app := testutil.NewApp()
	sc := app.NewScenario(t)

	out, err := app.Grid.AddColumn(context.Background(), entity.KindFlue, "  F1 ", sc.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, "F1", out.Column.Name, "el nombre se recorta")
	assert.Equal(t, "flue", out.Column.Kind)
	require.Len(t, out.Cells, 2, "una celda por parte")

	byPart := map[string]string{}
	for _, c := range out.Cells {
		byPart[c.EntityID] = c.ID
	}
	assert.Contains(t, byPart, sc.Parts["UP-96"])
	assert.Contains(t, byPart, sc.Parts["BM-08"])
}

func TestAddColumn_NombreDuplicadoOVacio(t *testing.T) {
	app := testutil.NewApp()
	sc := app.NewScenario(t)

	_, err := app.Grid.AddColumn(context.Background(), entity.KindBay, "B1", sc.QuoteID)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = app.Grid.AddColumn(context.Background(), entity.KindBay, "   ", sc.QuoteID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = app.Grid.AddColumn(context.Background(), entity.KindBay, "B9", "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddColumn_FalloAlMaterializarRevierteLaColumna(t *testing.T) {
	app := testutil.NewApp()
	sc := app.NewScenario(t)
	app.Store.FailNext("CreateDefinitionCells", errors.New("conexión perdida"))

	_, err := app.Grid.AddColumn(context.Background(), entity.KindBay, "B3", sc.QuoteID)
	require.Error(t, err)

	g, err := app.Grid.Definition(context.Background(), entity.KindBay, sc.QuoteID)
	require.NoError(t, err)
	assert.Len(t, g.Columns, 2, "la transacción no deja la columna a medias")
}

func TestDeleteColumn_BorraSusCeldas(t *testing.T) {
	app := testutil.NewApp()
	sc := app.NewScenario(t)
	ctx := context.Background()

	err := app.Grid.DeleteColumn(ctx, entity.KindFlue, sc.QuoteID, sc.Columns["B1"])
	assert.ErrorIs(t, err, domain.ErrNotFound, "el tipo debe coincidir")

	require.NoError(t, app.Grid.DeleteColumn(ctx, entity.KindBay, sc.QuoteID, sc.Columns["B1"]))

	g, err := app.Grid.Count(ctx, entity.KindBay, sc.QuoteID)
	require.NoError(t, err)
	want := map[string][]int{"R1": {2}, "R2": {0}}
	if diff := cmp.Diff(want, quantities(g)); diff != "" {
		t.Errorf("conteo tras borrar B1 (-want +got):\n%s", diff)
	}

	tk, err := app.Grid.Takeoff(ctx, sc.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, 2, tk.Total(sc.Parts["UP-96"]), "solo queda B2: 1 × R1(2)")
}

// ──────────────────────────────────────────────────────────────────────────────
// Escritura de celdas
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateDefinitionCell_UpsertConservaElID(t *testing.T) {
	app := testutil.NewApp()
	sc := app.NewScenario(t)
	ctx := context.Background()

	req := dto.UpdateCellRequest{EntityID: sc.Parts["UP-96"], BayID: sc.Columns["B2"], Quantity: 7}
	first, err := app.Grid.UpdateDefinitionCell(ctx, entity.KindBay, req)
	require.NoError(t, err)
	req.Quantity = 9
	second, err := app.Grid.UpdateDefinitionCell(ctx, entity.KindBay, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 9, second.Quantity)
	assert.Positive(t, app.Metrics.Cells("definition/bay/ok"))
}

func TestUpdateCell_Validaciones(t *testing.T) {
	app := testutil.NewApp()
	sc := app.NewScenario(t)
	ctx := context.Background()

	tests := []struct {
		name string
		kind entity.GridKind
		req  dto.UpdateCellRequest
		def  bool
		want error
	}{
		{"cantidad negativa", entity.KindBay, dto.UpdateCellRequest{EntityID: sc.Parts["UP-96"], BayID: sc.Columns["B1"], Quantity: -1}, true, domain.ErrInvalidInput},
		{"sin columna", entity.KindBay, dto.UpdateCellRequest{EntityID: sc.Parts["UP-96"]}, true, domain.ErrInvalidInput},
		{"columna de otro tipo", entity.KindFlue, dto.UpdateCellRequest{EntityID: sc.Parts["UP-96"], ColumnID: sc.Columns["B1"]}, true, domain.ErrNotFound},
		{"parte inexistente", entity.KindBay, dto.UpdateCellRequest{EntityID: "x", BayID: sc.Columns["B1"]}, true, domain.ErrNotFound},
		{"fila que no es row", entity.KindBay, dto.UpdateCellRequest{EntityID: sc.Columns["B2"], BayID: sc.Columns["B1"]}, false, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.def {
				_, err = app.Grid.UpdateDefinitionCell(ctx, tt.kind, tt.req)
			} else {
				_, err = app.Grid.UpdateCountCell(ctx, tt.kind, tt.req)
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Positive(t, app.Metrics.Cells("definition/bay/error"))
}

func TestQuotePart_NuevaParteRecibeCeldasDeTodasLasColumnas(t *testing.T) {
	app := testutil.NewApp()
	sc := app.NewScenario(t)
	ctx := context.Background()

	cost := decimal.NewFromInt(5)
	p, err := app.Parts.Create(ctx, dto.CreateQuotePartRequest{QuoteID: sc.QuoteID, PartNumber: "wb-1", UnitCost: &cost})
	require.NoError(t, err)
	assert.Equal(t, "WB-1", p.PartNumber)
	assert.Equal(t, 3, p.Position)

	for _, kind := range []entity.GridKind{entity.KindBay, entity.KindRow} {
		g, err := app.Grid.Definition(ctx, kind, sc.QuoteID)
		require.NoError(t, err)
		require.Len(t, g.Rows, 3)
		last := g.Rows[2]
		assert.Equal(t, p.ID, last.ID)
		for _, c := range last.Children {
			assert.NotEmpty(t, c.ID, "celda materializada en %s", kind)
			assert.Zero(t, c.Quantity)
		}
	}
}
