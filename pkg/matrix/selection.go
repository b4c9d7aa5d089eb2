package matrix

// Point posición (fila, columna) dentro de la matriz.
type Point struct {
	Row int
	Col int
}

// Add suma un desplazamiento.
func (p Point) Add(o Point) Point { return Point{p.Row + o.Row, p.Col + o.Col} }

// Sub devuelve el desplazamiento de o a p.
func (p Point) Sub(o Point) Point { return Point{p.Row - o.Row, p.Col - o.Col} }

// Direction dirección de navegación con teclado.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) delta() Point {
	switch d {
	case Up:
		return Point{-1, 0}
	case Down:
		return Point{1, 0}
	case Left:
		return Point{0, -1}
	default:
		return Point{0, 1}
	}
}

// Range rectángulo inclusivo; From es la esquina superior izquierda.
type Range struct {
	From Point
	To   Point
}

// NewRange normaliza dos esquinas cualesquiera.
func NewRange(a, b Point) Range {
	return Range{
		From: Point{min(a.Row, b.Row), min(a.Col, b.Col)},
		To:   Point{max(a.Row, b.Row), max(a.Col, b.Col)},
	}
}

// Rows alto del rango.
func (r Range) Rows() int { return r.To.Row - r.From.Row + 1 }

// Cols ancho del rango.
func (r Range) Cols() int { return r.To.Col - r.From.Col + 1 }

// Contains informa si p cae dentro del rango.
func (r Range) Contains(p Point) bool {
	return p.Row >= r.From.Row && p.Row <= r.To.Row && p.Col >= r.From.Col && p.Col <= r.To.Col
}

// Shift desplaza el rango completo.
func (r Range) Shift(d Point) Range { return Range{From: r.From.Add(d), To: r.To.Add(d)} }

// Clamp recorta el rango a [0,rows) x [0,cols). Devuelve false si la matriz
// está vacía o si el rango queda completamente fuera.
func (r Range) Clamp(rows, cols int) (Range, bool) {
	if rows <= 0 || cols <= 0 {
		return Range{}, false
	}
	if r.To.Row < 0 || r.To.Col < 0 || r.From.Row >= rows || r.From.Col >= cols {
		return Range{}, false
	}
	return Range{
		From: clampPoint(r.From, rows, cols),
		To:   clampPoint(r.To, rows, cols),
	}, true
}

// Points enumera las posiciones del rango fila por fila.
func (r Range) Points() []Point {
	out := make([]Point, 0, r.Rows()*r.Cols())
	for i := r.From.Row; i <= r.To.Row; i++ {
		for j := r.From.Col; j <= r.To.Col; j++ {
			out = append(out, Point{i, j})
		}
	}
	return out
}

func clampPoint(p Point, rows, cols int) Point {
	return Point{
		Row: max(0, min(p.Row, rows-1)),
		Col: max(0, min(p.Col, cols-1)),
	}
}
