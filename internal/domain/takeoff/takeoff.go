// Package takeoff calcula las cantidades requeridas de cada parte a partir de
// las grillas de definiciones y conteos de una cotización (servicio de dominio).
//
//	Req[p][r] = RowDef[p][r] + Σ_k Σ_u Def_k[p][u] × Count_k[r][u]   k ∈ {bay, frameline, flue}
//	Total[p]  = Base[p] + Σ_r Req[p][r]
package takeoff

import "github.com/jhoicas/Cotizaciones-api/internal/domain/entity"

// Grid cantidades dispersas indexadas por fila y columna; una entrada ausente
// vale cero.
type Grid map[string]map[string]int

// Get cantidad en (row, col).
func (g Grid) Get(row, col string) int {
	if g == nil {
		return 0
	}
	return g[row][col]
}

// Set fija la cantidad en (row, col).
func (g Grid) Set(row, col string, q int) {
	if g[row] == nil {
		g[row] = make(map[string]int)
	}
	g[row][col] = q
}

// Part parte de la cotización con su cantidad fija.
type Part struct {
	ID           string
	BaseQuantity int
}

// Input grillas de una cotización.
type Input struct {
	Parts []Part
	// Rows IDs de las columnas de tipo row, en orden de despliegue.
	Rows []string
	// RowDef partes por fila: RowDef[parte][fila].
	RowDef Grid
	// Def partes por unidad: Def[kind][parte][unidad].
	Def map[entity.GridKind]Grid
	// Count unidades por fila: Count[kind][fila][unidad].
	Count map[entity.GridKind]Grid
}

// Result cantidades requeridas.
type Result struct {
	Rows     []string
	Required Grid           // Required[parte][fila]
	Totals   map[string]int // Totals[parte]
}

// Compute calcula la cantidad requerida por parte y fila.
func Compute(in Input) Result {
	res := Result{
		Rows:     append([]string(nil), in.Rows...),
		Required: make(Grid, len(in.Parts)),
		Totals:   make(map[string]int, len(in.Parts)),
	}
	for _, p := range in.Parts {
		total := p.BaseQuantity
		for _, r := range in.Rows {
			q := in.RowDef.Get(p.ID, r)
			for _, k := range entity.UnitKinds {
				def := in.Def[k][p.ID]
				counts := in.Count[k][r]
				if len(def) == 0 || len(counts) == 0 {
					continue
				}
				for unit, perUnit := range def {
					q += perUnit * counts[unit]
				}
			}
			if q != 0 {
				res.Required.Set(p.ID, r, q)
			}
			total += q
		}
		res.Totals[p.ID] = total
	}
	return res
}

// RowTotal suma de la fila r sobre todas las partes.
func (r Result) RowTotal(row string) int {
	sum := 0
	for _, cols := range r.Required {
		sum += cols[row]
	}
	return sum
}
