package matrix_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cotizaciones-api/pkg/matrix"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// sampleRows dos partes; p2 no tiene hijos.
func sampleRows() []matrix.RowInput {
	return []matrix.RowInput{
		{Key: "p1", Label: "Parte 1", Children: []matrix.ChildInput{
			{Name: "Row-1", ChildID: "c11", Quantity: 5},
			{Name: "Row-2", ChildID: "c12", Quantity: 3},
		}},
		{Key: "p2", Label: "Parte 2"},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Columnas derivadas
// ──────────────────────────────────────────────────────────────────────────────

func TestLoad_ColumnasSonUnionDeHijos(t *testing.T) {
	m := matrix.New(matrix.FirstSeen)
	m.Load([]matrix.RowInput{
		{Key: "a", Children: []matrix.ChildInput{{Name: "B2", Quantity: 1}, {Name: "B1", Quantity: 2}}},
		{Key: "b", Children: []matrix.ChildInput{{Name: "B3", Quantity: 4}, {Name: "B1", Quantity: 7}}},
		{Key: "c"},
	})

	assert.Equal(t, []string{"B2", "B1", "B3"}, m.Columns(), "orden de primera aparición")
	assert.Equal(t, 3, m.RowCount())
	assert.Equal(t, 0, m.Quantity(0, 2), "celda ausente se muestra como cero")
	_, ok := m.Cell(0, 2)
	assert.False(t, ok, "la celda ausente no tiene identidad")
}

func TestLoad_OrdenNatural(t *testing.T) {
	m := matrix.New(matrix.Sorted)
	m.Load([]matrix.RowInput{
		{Key: "a", Children: []matrix.ChildInput{{Name: "Row-10"}, {Name: "Row-2"}, {Name: "Row-1"}}},
	})
	assert.Equal(t, []string{"Row-1", "Row-2", "Row-10"}, m.Columns())
}

func TestLoad_FilasRepetidasSeFusionan(t *testing.T) {
	m := matrix.New(matrix.FirstSeen)
	m.Load([]matrix.RowInput{
		{Key: "a", Children: []matrix.ChildInput{{Name: "X", Quantity: 1}}},
		{Key: "a", Children: []matrix.ChildInput{{Name: "Y", Quantity: 2}, {Name: "X", Quantity: 9}}},
	})
	require.Equal(t, 1, m.RowCount(), "(rowKey, columna) debe ser único")
	assert.Equal(t, 9, m.Quantity(0, 0))
	assert.Equal(t, 2, m.Quantity(0, 1))
}

func TestLoad_NombresVaciosSeIgnoran(t *testing.T) {
	m := matrix.New(matrix.FirstSeen)
	m.Load([]matrix.RowInput{{Key: "a", Children: []matrix.ChildInput{{Name: "  "}, {Name: " X "}}}})
	assert.Equal(t, []string{"X"}, m.Columns())
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios concretos
// ──────────────────────────────────────────────────────────────────────────────

func TestTotal_Escenario(t *testing.T) {
	m := matrix.New(matrix.FirstSeen)
	m.Load(sampleRows())

	assert.Equal(t, 8, m.Total("p1"))
	assert.Equal(t, 0, m.Total("p2"))
	assert.Equal(t, 0, m.Total("inexistente"))
	assert.Equal(t, 5, m.ColumnTotal("Row-1"))
}

func TestAddColumn_RellenaCeroEnCadaFila(t *testing.T) {
	m := matrix.New(matrix.FirstSeen)
	m.Load(sampleRows())

	require.NoError(t, m.AddColumn("Row-3"))
	assert.Equal(t, []string{"Row-1", "Row-2", "Row-3"}, m.Columns())

	for r := 0; r < m.RowCount(); r++ {
		cell, ok := m.Cell(r, 2)
		require.True(t, ok, "fila %d debe tener celda Row-3", r)
		assert.Equal(t, 0, cell.Quantity)
	}
}

func TestAddColumn_Errores(t *testing.T) {
	m := matrix.New(matrix.FirstSeen)
	m.Load(sampleRows())

	assert.ErrorIs(t, m.AddColumn("Row-1"), matrix.ErrDuplicateColumn)
	assert.ErrorIs(t, m.AddColumn(" "), matrix.ErrInvalidColumn)
}

func TestAddColumn_OrdenadaSeInsertaEnSuLugar(t *testing.T) {
	m := matrix.New(matrix.Sorted)
	m.Load([]matrix.RowInput{{Key: "a", Children: []matrix.ChildInput{{Name: "B1"}, {Name: "B10"}}}})

	require.NoError(t, m.AddColumn("B2"))
	assert.Equal(t, []string{"B1", "B2", "B10"}, m.Columns())
}

func TestRemoveColumn(t *testing.T) {
	m := matrix.New(matrix.FirstSeen)
	m.Load(sampleRows())

	assert.True(t, m.RemoveColumn("Row-1"))
	assert.False(t, m.RemoveColumn("Row-1"))
	assert.Equal(t, []string{"Row-2"}, m.Columns())
	assert.Equal(t, 3, m.Total("p1"))
}

func TestSetYValues(t *testing.T) {
	m := matrix.New(matrix.FirstSeen)
	m.Load(sampleRows())

	require.NoError(t, m.Set(1, 0, 4))
	assert.ErrorIs(t, m.Set(2, 0, 1), matrix.ErrOutOfBounds)

	want := [][]int{{5, 3}, {4, 0}}
	if diff := cmp.Diff(want, m.Values()); diff != "" {
		t.Errorf("Values() (-want +got):\n%s", diff)
	}
	assert.True(t, m.SetChildID("p2", "Row-1", "nuevo"))
	cell, _ := m.Cell(1, 0)
	assert.Equal(t, "nuevo", cell.ChildID)
	assert.False(t, m.SetChildID("p2", "Row-2", "x"), "celda ausente no recibe id")
}

// ──────────────────────────────────────────────────────────────────────────────
// ParseQuantity, selección y TSV
// ──────────────────────────────────────────────────────────────────────────────

func TestParseQuantity(t *testing.T) {
	cases := map[string]int{
		"":      0,
		"abc":   0,
		"12":    12,
		"12abc": 12,
		" 7 ":   7,
		"-3":    -3,
		"+4":    4,
		"-":     0,
		"3.9":   3,
	}
	for in, want := range cases {
		assert.Equal(t, want, matrix.ParseQuantity(in), "ParseQuantity(%q)", in)
	}
}

func TestParseQuantity_SaturaFueraDeRango(t *testing.T) {
	assert.Equal(t, math.MaxInt, matrix.ParseQuantity("99999999999999999999999"))
	assert.Equal(t, math.MaxInt, matrix.ParseQuantity("+99999999999999999999999x"))
	assert.Equal(t, math.MinInt, matrix.ParseQuantity("-99999999999999999999999"))
}

func TestRange_ClampYContains(t *testing.T) {
	r := matrix.NewRange(matrix.Point{Row: 3, Col: 4}, matrix.Point{Row: -1, Col: 1})
	assert.Equal(t, matrix.Point{Row: -1, Col: 1}, r.From)

	c, ok := r.Clamp(2, 3)
	require.True(t, ok)
	assert.Equal(t, matrix.Range{From: matrix.Point{Row: 0, Col: 1}, To: matrix.Point{Row: 1, Col: 2}}, c)
	assert.True(t, c.Contains(matrix.Point{Row: 1, Col: 1}))
	assert.False(t, c.Contains(matrix.Point{Row: 0, Col: 0}))

	_, ok = matrix.NewRange(matrix.Point{Row: 5, Col: 5}, matrix.Point{Row: 6, Col: 6}).Clamp(2, 2)
	assert.False(t, ok, "rango completamente fuera")
	_, ok = r.Clamp(0, 3)
	assert.False(t, ok, "matriz vacía")
}

func TestTSV(t *testing.T) {
	clip := matrix.ParseTSV("1\t2\r\n3\t4\n")
	want := matrix.Clipboard{{"1", "2"}, {"3", "4"}}
	if diff := cmp.Diff(want, clip); diff != "" {
		t.Errorf("ParseTSV (-want +got):\n%s", diff)
	}
	assert.Equal(t, "1\t2\n3\t4", matrix.FormatTSV(clip))
	assert.True(t, matrix.ParseTSV("").Empty())

	rows, cols := matrix.Clipboard{{"1"}, {"2", "3", "4"}}.Size()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
}
