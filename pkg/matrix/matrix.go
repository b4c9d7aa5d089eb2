// Package matrix implementa la matriz editable de cantidades que comparten las
// pantallas de definiciones y conteos (bay, frameline, flue, row).
//
// El modelo es de datos puros: filas identificadas por una clave estable,
// columnas derivadas de los nombres de hijos observados en todas las filas y
// celdas numéricas con un identificador opaco del backend. La interacción
// (selección, edición, copiar/pegar, arrastrar) vive en Editor y la
// sincronización con el backend en Syncer; ninguna depende de una capa de
// presentación concreta.
package matrix

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Errores de la matriz.
var (
	ErrInvalidColumn   = errors.New("matrix: nombre de columna vacío")
	ErrDuplicateColumn = errors.New("matrix: la columna ya existe")
	ErrUnknownColumn   = errors.New("matrix: columna inexistente")
	ErrOutOfBounds     = errors.New("matrix: celda fuera de rango")
	ErrNotLoaded       = errors.New("matrix: matriz no cargada")
)

// ColumnOrder define cómo se ordenan las columnas derivadas.
type ColumnOrder int

const (
	// FirstSeen conserva el orden en que aparecen los nombres de hijos.
	FirstSeen ColumnOrder = iota
	// Sorted ordena con orden natural (Row-2 antes que Row-10).
	Sorted
)

// Status estado de sincronización de una celda con el backend.
type Status int

const (
	Committed Status = iota
	Pending
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Failed:
		return "failed"
	default:
		return "committed"
	}
}

// ChildInput hijo de una fila tal como lo devuelve el backend.
type ChildInput struct {
	Name     string
	ChildID  string
	Quantity int
}

// RowInput fila desnormalizada "entidad con hijos".
type RowInput struct {
	Key      string
	Label    string
	Children []ChildInput
}

// Cell cantidad de una fila en una columna.
// ChildID vacío significa que la celda aún no tiene identidad en el backend.
type Cell struct {
	Quantity int
	ChildID  string
	Status   Status

	confirmed int // último valor confirmado por el backend
}

type row struct {
	key   string
	label string
	cells map[string]*Cell
}

// Matrix colección de filas con columnas derivadas.
// No es segura para uso concurrente; Editor serializa el acceso.
type Matrix struct {
	order   ColumnOrder
	rows    []*row
	byKey   map[string]int
	columns []string
	colIdx  map[string]int
}

// New crea una matriz vacía con el orden de columnas indicado.
func New(order ColumnOrder) *Matrix {
	return &Matrix{
		order:  order,
		byKey:  make(map[string]int),
		colIdx: make(map[string]int),
	}
}

// Load reemplaza el contenido con las filas recibidas.
// Filas con clave repetida se fusionan; un hijo repetido en la misma fila
// conserva el último valor.
func (m *Matrix) Load(rows []RowInput) {
	m.rows = m.rows[:0]
	m.byKey = make(map[string]int, len(rows))
	m.columns = nil
	m.colIdx = make(map[string]int)

	for _, in := range rows {
		idx, ok := m.byKey[in.Key]
		if !ok {
			idx = len(m.rows)
			m.byKey[in.Key] = idx
			m.rows = append(m.rows, &row{key: in.Key, label: in.Label, cells: make(map[string]*Cell, len(in.Children))})
		}
		r := m.rows[idx]
		if in.Label != "" {
			r.label = in.Label
		}
		for _, ch := range in.Children {
			name := strings.TrimSpace(ch.Name)
			if name == "" {
				continue
			}
			if _, seen := m.colIdx[name]; !seen {
				m.colIdx[name] = len(m.columns)
				m.columns = append(m.columns, name)
			}
			r.cells[name] = &Cell{Quantity: ch.Quantity, ChildID: ch.ChildID, confirmed: ch.Quantity}
		}
	}
	m.reindexColumns()
}

func (m *Matrix) reindexColumns() {
	if m.order == Sorted {
		sort.SliceStable(m.columns, func(i, j int) bool { return naturalLess(m.columns[i], m.columns[j]) })
	}
	m.colIdx = make(map[string]int, len(m.columns))
	for i, c := range m.columns {
		m.colIdx[c] = i
	}
}

// Columns devuelve una copia de los nombres de columna en orden de despliegue.
func (m *Matrix) Columns() []string {
	out := make([]string, len(m.columns))
	copy(out, m.columns)
	return out
}

// RowCount número de filas.
func (m *Matrix) RowCount() int { return len(m.rows) }

// ColCount número de columnas.
func (m *Matrix) ColCount() int { return len(m.columns) }

// RowKey clave de la fila r ("" si está fuera de rango).
func (m *Matrix) RowKey(r int) string {
	if r < 0 || r >= len(m.rows) {
		return ""
	}
	return m.rows[r].key
}

// RowKeys claves de fila en orden de despliegue.
func (m *Matrix) RowKeys() []string {
	out := make([]string, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.key
	}
	return out
}

// Label etiqueta de la fila r; si no hay etiqueta se usa la clave.
func (m *Matrix) Label(r int) string {
	if r < 0 || r >= len(m.rows) {
		return ""
	}
	if m.rows[r].label == "" {
		return m.rows[r].key
	}
	return m.rows[r].label
}

// RowIndex posición de la fila con la clave dada.
func (m *Matrix) RowIndex(key string) (int, bool) {
	i, ok := m.byKey[key]
	return i, ok
}

// ColumnIndex posición de la columna con el nombre dado.
func (m *Matrix) ColumnIndex(name string) (int, bool) {
	i, ok := m.colIdx[name]
	return i, ok
}

// InBounds informa si p está dentro de [0,RowCount) x [0,ColCount).
func (m *Matrix) InBounds(p Point) bool {
	return p.Row >= 0 && p.Row < len(m.rows) && p.Col >= 0 && p.Col < len(m.columns)
}

// Cell devuelve la celda en (r,c). El bool es false si la celda no existe
// (ausente o fuera de rango); una celda ausente se muestra como cero.
func (m *Matrix) Cell(r, c int) (Cell, bool) {
	cell := m.lookup(Point{r, c})
	if cell == nil {
		return Cell{}, false
	}
	return *cell, true
}

// Quantity cantidad en (r,c); cero para celdas ausentes.
func (m *Matrix) Quantity(r, c int) int {
	if cell := m.lookup(Point{r, c}); cell != nil {
		return cell.Quantity
	}
	return 0
}

// Value cantidad en (r,c) como texto.
func (m *Matrix) Value(r, c int) string {
	return strconv.Itoa(m.Quantity(r, c))
}

// Set fija la cantidad en (r,c) creando la celda si no existía.
func (m *Matrix) Set(r, c, quantity int) error {
	if !m.InBounds(Point{r, c}) {
		return ErrOutOfBounds
	}
	m.ensure(Point{r, c}).Quantity = quantity
	return nil
}

// Total suma de la fila con la clave dada.
func (m *Matrix) Total(rowKey string) int {
	i, ok := m.byKey[rowKey]
	if !ok {
		return 0
	}
	sum := 0
	for _, col := range m.columns {
		if cell := m.rows[i].cells[col]; cell != nil {
			sum += cell.Quantity
		}
	}
	return sum
}

// ColumnTotal suma de una columna en todas las filas.
func (m *Matrix) ColumnTotal(name string) int {
	sum := 0
	for _, r := range m.rows {
		if cell := r.cells[name]; cell != nil {
			sum += cell.Quantity
		}
	}
	return sum
}

// AddColumn agrega una columna e inserta una celda en cero en cada fila para
// mantener la matriz rectangular.
func (m *Matrix) AddColumn(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidColumn
	}
	if _, ok := m.colIdx[name]; ok {
		return ErrDuplicateColumn
	}
	m.columns = append(m.columns, name)
	m.reindexColumns()
	for _, r := range m.rows {
		r.cells[name] = &Cell{}
	}
	return nil
}

// RemoveColumn elimina la columna de todas las filas.
func (m *Matrix) RemoveColumn(name string) bool {
	idx, ok := m.colIdx[name]
	if !ok {
		return false
	}
	m.columns = append(m.columns[:idx], m.columns[idx+1:]...)
	for _, r := range m.rows {
		delete(r.cells, name)
	}
	m.reindexColumns()
	return true
}

// SetChildID asigna el identificador del backend a una celda existente.
func (m *Matrix) SetChildID(rowKey, column, id string) bool {
	i, ok := m.byKey[rowKey]
	if !ok {
		return false
	}
	cell := m.rows[i].cells[column]
	if cell == nil {
		return false
	}
	cell.ChildID = id
	return true
}

// Values devuelve las cantidades como una grilla densa fila por fila.
func (m *Matrix) Values() [][]int {
	out := make([][]int, len(m.rows))
	for i := range m.rows {
		out[i] = make([]int, len(m.columns))
		for j := range m.columns {
			out[i][j] = m.Quantity(i, j)
		}
	}
	return out
}

func (m *Matrix) lookup(p Point) *Cell {
	if !m.InBounds(p) {
		return nil
	}
	return m.rows[p.Row].cells[m.columns[p.Col]]
}

func (m *Matrix) ensure(p Point) *Cell {
	r := m.rows[p.Row]
	col := m.columns[p.Col]
	cell := r.cells[col]
	if cell == nil {
		cell = &Cell{}
		r.cells[col] = cell
	}
	return cell
}

func (m *Matrix) locate(key CellKey) (*Cell, Point, bool) {
	ri, ok := m.byKey[key.RowKey]
	if !ok {
		return nil, Point{}, false
	}
	ci, ok := m.colIdx[key.Column]
	if !ok {
		return nil, Point{}, false
	}
	return m.rows[ri].cells[key.Column], Point{ri, ci}, true
}

func (m *Matrix) keyAt(p Point) CellKey {
	return CellKey{RowKey: m.rows[p.Row].key, Column: m.columns[p.Col]}
}

// ParseQuantity interpreta el prefijo entero de s; texto inválido o vacío es 0.
// "12abc" → 12, "-3" → -3, "abc" → 0. Un valor fuera del rango de int se
// satura en math.MaxInt o math.MinInt.
func ParseQuantity(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) {
		if s[0] == '-' {
			return math.MinInt
		}
		return math.MaxInt
	}
	if err != nil {
		return 0
	}
	return n
}

// naturalLess compara cadenas tratando las secuencias de dígitos como números.
func naturalLess(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ra) && j < len(rb) {
		if unicode.IsDigit(ra[i]) && unicode.IsDigit(rb[j]) {
			si := i
			for i < len(ra) && unicode.IsDigit(ra[i]) {
				i++
			}
			sj := j
			for j < len(rb) && unicode.IsDigit(rb[j]) {
				j++
			}
			na := strings.TrimLeft(string(ra[si:i]), "0")
			nb := strings.TrimLeft(string(rb[sj:j]), "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			continue
		}
		ca, cb := unicode.ToLower(ra[i]), unicode.ToLower(rb[j])
		if ca != cb {
			return ca < cb
		}
		i++
		j++
	}
	return len(ra)-i < len(rb)-j
}
