package dto

// GridChild celda de una fila: nombre de columna, id de columna, id de
// celda (vacío si nunca se escribió) y cantidad.
type GridChild struct {
	Name     string `json:"name"`
	ColumnID string `json:"columnId"`
	ID       string `json:"id,omitempty"`
	Quantity int    `json:"quantity"`
}

// GridRow fila de una grilla con sus celdas.
type GridRow struct {
	ID       string      `json:"id"`
	Label    string      `json:"label"`
	Children []GridChild `json:"children"`
}

// GridColumnResponse columna (bahía, línea de marco, ducto o fila).
type GridColumnResponse struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// GridResponse grilla de definiciones o conteos de un tipo.
type GridResponse struct {
	QuoteID  string               `json:"quoteId"`
	Scope    string               `json:"scope"`
	Kind     string               `json:"kind"`
	ReadOnly bool                 `json:"readOnly"`
	Columns  []GridColumnResponse `json:"columns"`
	Rows     []GridRow            `json:"rows"`
}

// ColumnCreatedResponse columna creada y celdas materializadas
// (entityId -> id de celda).
type ColumnCreatedResponse struct {
	Column GridColumnResponse `json:"column"`
	Cells  []CellRef          `json:"cells"`
}

// CellRef referencia fila -> celda.
type CellRef struct {
	EntityID string `json:"entityId"`
	ID       string `json:"id"`
}

// UpdateCellRequest escritura de una celda. EntityID es la fila (parte en
// definiciones, fila en conteos); la columna llega en el campo del tipo
// (bayId, framelineId, flueId, rowId) o en columnId.
type UpdateCellRequest struct {
	EntityID    string `json:"entityId" validate:"required"`
	ColumnID    string `json:"columnId"`
	BayID       string `json:"bayId"`
	FramelineID string `json:"framelineId"`
	FlueID      string `json:"flueId"`
	RowID       string `json:"rowId"`
	Quantity    int    `json:"quantity" validate:"min=0"`
}

// Column devuelve el id de columna según el tipo de grilla.
func (r UpdateCellRequest) Column(kind string) string {
	if r.ColumnID != "" {
		return r.ColumnID
	}
	switch kind {
	case "bay":
		return r.BayID
	case "frameline":
		return r.FramelineID
	case "flue":
		return r.FlueID
	case "row":
		return r.RowID
	}
	return ""
}

// CellResponse estado persistido de la celda.
type CellResponse struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}
