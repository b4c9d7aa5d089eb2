// Package xlsx exporta grillas de una cotización a hojas de cálculo.
package xlsx

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
)

const sheet = "Grilla"

// GridWorkbook implementa ports.GridWorkbookRenderer con excelize.
type GridWorkbook struct{}

// NewGridWorkbook construye el exportador.
func NewGridWorkbook() *GridWorkbook { return &GridWorkbook{} }

// RenderGrid escribe una fila por entidad y una columna por unidad, con
// totales por fila y por columna.
func (GridWorkbook) RenderGrid(_ context.Context, quote *dto.QuoteResponse, grid *dto.GridResponse) ([]byte, error) {
	if quote == nil || grid == nil {
		return nil, fmt.Errorf("xlsx: cotización o grilla vacía")
	}
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("xlsx: hoja: %w", err)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	totalStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	title := fmt.Sprintf("%s %s · %s / %s", quote.Number, quote.CustomerName, grid.Scope, grid.Kind)
	set(f, 1, 1, title)

	// Cabecera en la fila 3: etiqueta, columnas y total.
	const headerRow = 3
	set(f, 1, headerRow, "")
	for j, c := range grid.Columns {
		set(f, j+2, headerRow, c.Name)
	}
	totalCol := len(grid.Columns) + 2
	set(f, totalCol, headerRow, "Total")
	setStyle(f, 1, headerRow, totalCol, headerRow, headerStyle)

	colTotals := make([]int, len(grid.Columns))
	for i, r := range grid.Rows {
		y := headerRow + 1 + i
		set(f, 1, y, r.Label)
		sum := 0
		for j, ch := range r.Children {
			if j >= len(grid.Columns) {
				break
			}
			set(f, j+2, y, ch.Quantity)
			sum += ch.Quantity
			colTotals[j] += ch.Quantity
		}
		set(f, totalCol, y, sum)
	}

	y := headerRow + 1 + len(grid.Rows)
	set(f, 1, y, "Total")
	grand := 0
	for j, t := range colTotals {
		set(f, j+2, y, t)
		grand += t
	}
	set(f, totalCol, y, grand)
	setStyle(f, 1, y, totalCol, y, totalStyle)

	_ = f.SetColWidth(sheet, "A", "A", 36)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

func set(f *excelize.File, col, row int, v any) {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	_ = f.SetCellValue(sheet, cell, v)
}

func setStyle(f *excelize.File, c1, r1, c2, r2, style int) {
	from, _ := excelize.CoordinatesToCellName(c1, r1)
	to, _ := excelize.CoordinatesToCellName(c2, r2)
	_ = f.SetCellStyle(sheet, from, to, style)
}
