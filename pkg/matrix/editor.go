package matrix

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"
)

// ErrNoColumnStore el editor no tiene backend para crear o eliminar columnas.
var ErrNoColumnStore = errors.New("matrix: editor sin ColumnStore")

// LoadState estado de carga de la matriz.
type LoadState int

const (
	Idle LoadState = iota
	Loading
	Ready
	LoadFailed
)

// Options configuración del editor.
type Options struct {
	// Noun y Plural nombran la entidad de las columnas en los avisos
	// ("bahía" / "bahías").
	Noun   string
	Plural string
	Order  ColumnOrder
	// Debounce espera antes de enviar una edición tecleada. Cero usa
	// DefaultDebounce; negativo envía de inmediato.
	Debounce    time.Duration
	Concurrency int
	Notifier    Notifier
	Columns     ColumnStore
}

// KeyCode tecla relevante para la grilla.
type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEscape
	KeyBackspace
)

// Key pulsación de teclado ya traducida por la capa de presentación.
type Key struct {
	Code  KeyCode
	Rune  rune
	Ctrl  bool
	Shift bool
}

// BatchResult resumen de una escritura de varias celdas.
type BatchResult struct {
	Total       int
	Succeeded   int
	Failed      int
	FailedCells []CellKey
}

// SnapshotRow fila tal como se despliega.
type SnapshotRow struct {
	Key   string
	Label string
	Cells []Cell
	Total int
}

// Snapshot copia inmutable del estado del editor para dibujar.
type Snapshot struct {
	State     LoadState
	Error     string
	Columns   []string
	Rows      []SnapshotRow
	Selected  Point
	Range     Range
	HasRange  bool
	Editing   bool
	Buffer    string
	Caret     int
	Clipboard Clipboard
	Dragging  bool
}

type dragState struct {
	from  Point
	block bool
}

type prevCell struct {
	quantity int
	status   Status
}

// Editor máquina de estados de interacción sobre una Matrix: selección,
// edición con cursor, copiar/pegar, arrastrar y sincronización por celda.
//
// Es seguro para uso concurrente. Las operaciones de lote (pegar, arrastrar)
// bloquean hasta que el backend responde todas las celdas.
type Editor struct {
	opts   Options
	notify Notifier
	syncer *Syncer

	mu      sync.Mutex
	m       *Matrix
	state   LoadState
	loadErr string
	closed  bool

	sel      Point
	rng      Range
	hasRange bool
	anchor   Point
	corner   Point

	editing  bool
	edit     Point
	buffer   []rune
	caret    int
	original int

	clip Clipboard
	drag *dragState
}

// NewEditor construye un editor que escribe las celdas con w.
func NewEditor(w Writer, opts Options) *Editor {
	if opts.Debounce == 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Noun == "" {
		opts.Noun = "columna"
	}
	if opts.Plural == "" {
		opts.Plural = opts.Noun + "s"
	}
	e := &Editor{
		opts:   opts,
		notify: opts.Notifier,
		m:      New(opts.Order),
	}
	if e.notify == nil {
		e.notify = discard{}
	}
	e.syncer = NewSyncer(w, SyncOptions{
		Debounce:    opts.Debounce,
		Concurrency: opts.Concurrency,
		OnResult:    e.applyResult,
	})
	return e
}

// Load reemplaza el contenido con las filas de src. Selección, edición y
// portapapeles se descartan en cada carga. Si la consulta falla la matriz
// queda vacía y el mensaje de error queda disponible en Snapshot.
func (e *Editor) Load(ctx context.Context, src Source) error {
	e.mu.Lock()
	e.state = Loading
	e.loadErr = ""
	e.resetInteractionLocked()
	e.mu.Unlock()

	rows, err := src.Fetch(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.m.Load(nil)
		e.state = LoadFailed
		e.loadErr = fmt.Sprintf("Error al cargar %s: %v", e.opts.Plural, err)
		return err
	}
	e.m.Load(rows)
	e.state = Ready
	return nil
}

func (e *Editor) resetInteractionLocked() {
	e.sel = Point{}
	e.hasRange = false
	e.rng = Range{}
	e.editing = false
	e.buffer = nil
	e.caret = 0
	e.clip = nil
	e.drag = nil
}

// Snapshot devuelve el estado actual para dibujar.
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := Snapshot{
		State:     e.state,
		Error:     e.loadErr,
		Columns:   e.m.Columns(),
		Rows:      make([]SnapshotRow, e.m.RowCount()),
		Selected:  e.sel,
		Range:     e.rng,
		HasRange:  e.hasRange,
		Editing:   e.editing,
		Buffer:    string(e.buffer),
		Caret:     e.caret,
		Clipboard: e.clip.clone(),
		Dragging:  e.drag != nil,
	}
	for i := range s.Rows {
		row := SnapshotRow{
			Key:   e.m.RowKey(i),
			Label: e.m.Label(i),
			Cells: make([]Cell, e.m.ColCount()),
		}
		for j := range row.Cells {
			if c, ok := e.m.Cell(i, j); ok {
				row.Cells[j] = c
			}
		}
		row.Total = e.m.Total(row.Key)
		s.Rows[i] = row
	}
	return s
}

// Value cantidad desplegada en (r,c).
func (e *Editor) Value(r, c int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.m.Quantity(r, c)
}

// Total suma de la fila con la clave dada.
func (e *Editor) Total(rowKey string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.m.Total(rowKey)
}

// Columns nombres de columna en orden de despliegue.
func (e *Editor) Columns() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.m.Columns()
}

// Status estado de sincronización de la celda (r,c).
func (e *Editor) Status(r, c int) Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	cell, _ := e.m.Cell(r, c)
	return cell.Status
}

// SelectCell selecciona una celda y descarta el rango.
func (e *Editor) SelectCell(r, c int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := Point{r, c}
	if !e.m.InBounds(p) {
		return false
	}
	if e.editing && e.edit != p {
		e.finishLocked()
	}
	e.sel = p
	e.hasRange = false
	return true
}

// StartEditing entra en modo edición sobre (r,c) con el valor actual y el
// cursor al final. Una edición abierta en otra celda se confirma antes.
func (e *Editor) StartEditing(r, c int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startLocked(Point{r, c}, true)
}

func (e *Editor) startLocked(p Point, caretAtEnd bool) bool {
	if !e.m.InBounds(p) {
		return false
	}
	if e.editing {
		if e.edit == p {
			return true
		}
		e.finishLocked()
	}
	e.sel = p
	e.hasRange = false
	e.editing = true
	e.edit = p
	e.original = e.m.Quantity(p.Row, p.Col)
	e.buffer = []rune(strconv.Itoa(e.original))
	e.caret = 0
	if caretAtEnd {
		e.caret = len(e.buffer)
	}
	return true
}

// Type inserta un carácter en el cursor y programa la escritura.
func (e *Editor) Type(ch rune) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.editing || !utf8.ValidRune(ch) {
		return
	}
	e.buffer = append(e.buffer[:e.caret], append([]rune{ch}, e.buffer[e.caret:]...)...)
	e.caret++
	e.commitLocked(e.edit, string(e.buffer), false)
}

// Backspace borra el carácter previo al cursor.
func (e *Editor) Backspace() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.editing || e.caret == 0 {
		return
	}
	e.buffer = append(e.buffer[:e.caret-1], e.buffer[e.caret:]...)
	e.caret--
	e.commitLocked(e.edit, string(e.buffer), false)
}

// MoveCaret desplaza el cursor de edición dentro del buffer.
func (e *Editor) MoveCaret(delta int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.editing {
		return
	}
	e.caret = max(0, min(len(e.buffer), e.caret+delta))
}

// CommitEdit reemplaza el buffer de la celda en edición y actualiza el valor
// local. La escritura espera el debounce salvo que immediate sea true.
func (e *Editor) CommitEdit(value string, immediate bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.editing {
		return false
	}
	e.buffer = []rune(value)
	e.caret = len(e.buffer)
	e.commitLocked(e.edit, value, immediate)
	return true
}

// FinishEditing cierra la edición y envía el valor de inmediato (Enter o
// pérdida de foco).
func (e *Editor) FinishEditing() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.finishLocked()
}

func (e *Editor) finishLocked() {
	if !e.editing {
		return
	}
	e.commitLocked(e.edit, string(e.buffer), true)
	e.editing = false
	e.buffer = nil
	e.caret = 0
}

// CancelEditing cierra la edición restaurando el valor que tenía la celda al
// comenzar.
func (e *Editor) CancelEditing() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.editing {
		return
	}
	if e.m.Quantity(e.edit.Row, e.edit.Col) != e.original {
		e.commitLocked(e.edit, strconv.Itoa(e.original), true)
	}
	e.editing = false
	e.buffer = nil
	e.caret = 0
}

// commitLocked aplica el valor en forma optimista y lo envía al backend.
func (e *Editor) commitLocked(p Point, value string, immediate bool) {
	if !e.m.InBounds(p) {
		return
	}
	q := ParseQuantity(value)
	cell := e.m.ensure(p)
	key := e.m.keyAt(p)
	w := CellWrite{RowKey: key.RowKey, Column: key.Column, ChildID: cell.ChildID, Quantity: q}

	if cell.Quantity == q {
		switch cell.Status {
		case Committed:
			return
		case Pending:
			if immediate {
				e.syncer.Flush(key)
			}
			return
		}
		// Failed: el usuario reintenta con el mismo valor.
	}
	cell.Quantity = q
	cell.Status = Pending
	if immediate {
		e.syncer.Submit(w)
	} else {
		e.syncer.Schedule(w)
	}
}

// Move navega con las flechas. Arriba y abajo siempre cambian de celda;
// izquierda y derecha, durante la edición, solo salen de la celda cuando el
// cursor está en el borde correspondiente del buffer y si no mueven el cursor.
func (e *Editor) Move(dir Direction) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.editing {
		switch {
		case dir == Left && e.caret > 0:
			e.caret--
			return true
		case dir == Right && e.caret < len(e.buffer):
			e.caret++
			return true
		}
	}
	target := e.sel.Add(dir.delta())
	if !e.m.InBounds(target) {
		return false
	}
	if e.editing {
		return e.startLocked(target, dir != Right)
	}
	e.sel = target
	e.hasRange = false
	return true
}

// CtrlClick pega el portapapeles en (r,c) si no está vacío y luego
// selecciona la celda como ancla de un rango nuevo.
func (e *Editor) CtrlClick(ctx context.Context, r, c int) BatchResult {
	e.mu.Lock()
	p := Point{r, c}
	if !e.m.InBounds(p) {
		e.mu.Unlock()
		return BatchResult{}
	}
	e.finishLocked()
	clip := e.clip
	e.clip = nil
	e.mu.Unlock()

	var res BatchResult
	if !clip.Empty() {
		res = e.paste(ctx, clip, p)
	}

	e.mu.Lock()
	if e.m.InBounds(p) {
		e.sel = p
		e.anchor = p
		e.corner = p
		e.rng = Range{From: p, To: p}
		e.hasRange = true
	}
	e.mu.Unlock()
	return res
}

// ExtendSelection extiende el rango desde el ancla hasta (r,c), recortado a
// los límites de la matriz.
func (e *Editor) ExtendSelection(r, c int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.extendLocked(Point{r, c})
}

func (e *Editor) extendLocked(p Point) bool {
	rows, cols := e.m.RowCount(), e.m.ColCount()
	if rows == 0 || cols == 0 {
		return false
	}
	if !e.hasRange {
		e.anchor = e.sel
	}
	e.corner = clampPoint(p, rows, cols)
	rng, ok := NewRange(e.anchor, e.corner).Clamp(rows, cols)
	if !ok {
		return false
	}
	e.rng = rng
	e.hasRange = true
	return true
}

// ClearSelection descarta el rango.
func (e *Editor) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hasRange = false
}

// Selection devuelve el rango actual.
func (e *Editor) Selection() (Range, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng, e.hasRange
}

// CopySelection copia los valores del rango al portapapeles interno.
func (e *Editor) CopySelection() Clipboard {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.copyLocked()
}

func (e *Editor) copyLocked() Clipboard {
	if !e.hasRange {
		return nil
	}
	out := make(Clipboard, 0, e.rng.Rows())
	for i := e.rng.From.Row; i <= e.rng.To.Row; i++ {
		line := make([]string, 0, e.rng.Cols())
		for j := e.rng.From.Col; j <= e.rng.To.Col; j++ {
			line = append(line, e.m.Value(i, j))
		}
		out = append(out, line)
	}
	e.clip = out
	return out.clone()
}

// ClipboardText portapapeles interno como TSV.
func (e *Editor) ClipboardText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return FormatTSV(e.clip)
}

// SetClipboardText carga el portapapeles interno desde TSV (por ejemplo el
// portapapeles del sistema).
func (e *Editor) SetClipboardText(tsv string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clip = ParseTSV(tsv)
}

// PasteAt escribe el portapapeles con su esquina superior izquierda en
// (r,c). Las celdas fuera de la matriz se descartan sin error.
func (e *Editor) PasteAt(ctx context.Context, r, c int) BatchResult {
	e.mu.Lock()
	e.finishLocked()
	clip := e.clip.clone()
	e.mu.Unlock()
	return e.paste(ctx, clip, Point{r, c})
}

func (e *Editor) paste(ctx context.Context, clip Clipboard, at Point) BatchResult {
	e.mu.Lock()
	targets := make(map[Point]int)
	var order []Point
	for i, line := range clip {
		for j, v := range line {
			p := at.Add(Point{i, j})
			if !e.m.InBounds(p) {
				continue
			}
			if _, dup := targets[p]; !dup {
				order = append(order, p)
			}
			targets[p] = ParseQuantity(v)
		}
	}
	writes, prev := e.stageLocked(order, targets, false)
	e.mu.Unlock()
	return e.runBatch(ctx, writes, prev)
}

// stageLocked aplica los valores en forma optimista y arma las escrituras.
// Con skipUnchanged no se escriben celdas cuyo valor no cambia.
func (e *Editor) stageLocked(order []Point, values map[Point]int, skipUnchanged bool) ([]CellWrite, map[CellKey]prevCell) {
	writes := make([]CellWrite, 0, len(order))
	prev := make(map[CellKey]prevCell, len(order))
	for _, p := range order {
		q := values[p]
		cell := e.m.ensure(p)
		if skipUnchanged && cell.Quantity == q && cell.Status == Committed {
			continue
		}
		key := e.m.keyAt(p)
		prev[key] = prevCell{quantity: cell.Quantity, status: cell.Status}
		cell.Quantity = q
		cell.Status = Pending
		writes = append(writes, CellWrite{RowKey: key.RowKey, Column: key.Column, ChildID: cell.ChildID, Quantity: q})
	}
	return writes, prev
}

// runBatch envía el lote y deja en el estado final solo las celdas cuya
// escritura tuvo éxito; las fallidas vuelven al valor previo.
func (e *Editor) runBatch(ctx context.Context, writes []CellWrite, prev map[CellKey]prevCell) BatchResult {
	res := BatchResult{Total: len(writes)}
	if len(writes) == 0 {
		return res
	}
	results := e.syncer.Batch(ctx, writes)

	e.mu.Lock()
	for _, r := range results {
		key := r.Write.Key()
		cell, _, ok := e.m.locate(key)
		switch {
		case r.Superseded:
			continue
		case r.Err != nil:
			res.Failed++
			res.FailedCells = append(res.FailedCells, key)
			if ok && cell != nil && cell.Quantity == r.Write.Quantity {
				p := prev[key]
				cell.Quantity = p.quantity
				cell.Status = restoredStatus(p, cell.confirmed)
			}
		default:
			res.Succeeded++
			if ok && cell != nil {
				if r.ChildID != "" {
					cell.ChildID = r.ChildID
				}
				cell.confirmed = r.Write.Quantity
				if cell.Quantity == r.Write.Quantity {
					cell.Status = Committed
				}
			}
		}
	}
	closed := e.closed
	e.mu.Unlock()

	if closed {
		return res
	}
	if res.Failed > 0 {
		e.notify.Notify(Notice{Level: LevelError, Message: fmt.Sprintf("No se pudieron actualizar %d de %d celdas", res.Failed, res.Total)})
	} else {
		e.notify.Notify(Notice{Level: LevelSuccess, Message: fmt.Sprintf("Se actualizaron %d celdas", res.Succeeded)})
	}
	return res
}

// restoredStatus estado de una celda que vuelve a su valor previo tras un
// lote fallido. El lote ya descartó la escritura pendiente de la celda, así
// que un valor previo Pending que el backend no confirmó queda Failed para
// poder reintentarlo o revertirlo.
func restoredStatus(p prevCell, confirmed int) Status {
	if p.status != Pending {
		return p.status
	}
	if p.quantity == confirmed {
		return Committed
	}
	return Failed
}

// KeyDown procesa una pulsación. Devuelve true si la grilla la consumió;
// Ctrl+C y Ctrl+V se consumen siempre pero solo actúan con un rango activo.
func (e *Editor) KeyDown(ctx context.Context, k Key) bool {
	if k.Ctrl && k.Code == KeyRune {
		switch k.Rune {
		case 'c', 'C':
			e.mu.Lock()
			if e.hasRange {
				e.copyLocked()
			}
			e.mu.Unlock()
			return true
		case 'v', 'V':
			e.mu.Lock()
			if !e.hasRange {
				e.mu.Unlock()
				return true
			}
			at := e.rng.From
			e.mu.Unlock()
			e.PasteAt(ctx, at.Row, at.Col)
			return true
		}
		return false
	}

	switch k.Code {
	case KeyUp, KeyDown, KeyLeft, KeyRight:
		dir := map[KeyCode]Direction{KeyUp: Up, KeyDown: Down, KeyLeft: Left, KeyRight: Right}[k.Code]
		if k.Shift {
			e.mu.Lock()
			defer e.mu.Unlock()
			if e.editing {
				e.finishLocked()
			}
			from := e.sel
			if e.hasRange {
				from = e.corner
			}
			e.extendLocked(from.Add(dir.delta()))
			return true
		}
		e.Move(dir)
		return true
	case KeyEnter:
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.editing {
			e.finishLocked()
		} else {
			e.startLocked(e.sel, true)
		}
		return true
	case KeyEscape:
		e.mu.Lock()
		editing := e.editing
		if !editing {
			e.hasRange = false
		}
		e.mu.Unlock()
		if editing {
			e.CancelEditing()
		}
		return true
	case KeyBackspace:
		e.Backspace()
		return true
	case KeyRune:
		e.mu.Lock()
		defer e.mu.Unlock()
		if !e.editing {
			if !(k.Rune >= '0' && k.Rune <= '9') && k.Rune != '-' {
				return false
			}
			if !e.startLocked(e.sel, true) {
				return false
			}
			// Teclear sobre una celda seleccionada reemplaza su valor.
			e.buffer = e.buffer[:0]
			e.caret = 0
		}
		e.buffer = append(e.buffer[:e.caret], append([]rune{k.Rune}, e.buffer[e.caret:]...)...)
		e.caret++
		e.commitLocked(e.edit, string(e.buffer), false)
		return true
	}
	return false
}

// BeginDrag inicia un arrastre en (r,c). Si la celda está dentro del rango
// seleccionado se arrastra el rango completo.
func (e *Editor) BeginDrag(r, c int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := Point{r, c}
	if !e.m.InBounds(p) {
		return false
	}
	e.finishLocked()
	e.drag = &dragState{from: p, block: e.hasRange && e.rng.Contains(p)}
	return true
}

// CancelDrag descarta el arrastre en curso.
func (e *Editor) CancelDrag() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drag = nil
}

// EndDrag suelta el arrastre en (r,c). Con duplicate los valores de origen se
// conservan.
func (e *Editor) EndDrag(ctx context.Context, r, c int, duplicate bool) BatchResult {
	e.mu.Lock()
	d := e.drag
	e.drag = nil
	rng := e.rng
	e.mu.Unlock()
	if d == nil {
		return BatchResult{}
	}
	to := Point{r, c}
	if d.block {
		return e.DragSelection(ctx, rng, to.Sub(d.from), duplicate)
	}
	return e.DragCell(ctx, d.from, to, duplicate)
}

// DragCell mueve (o copia) el valor de una celda a otra.
func (e *Editor) DragCell(ctx context.Context, src, dst Point, duplicate bool) BatchResult {
	return e.relocate(ctx, Range{From: src, To: src}, dst.Sub(src), duplicate, false)
}

// DragSelection desplaza un bloque completo por offset. Destinos fuera de la
// matriz se descartan; al mover, las celdas de origen que no reciben un
// valor del bloque quedan en cero.
func (e *Editor) DragSelection(ctx context.Context, rng Range, offset Point, duplicate bool) BatchResult {
	return e.relocate(ctx, rng, offset, duplicate, true)
}

func (e *Editor) relocate(ctx context.Context, rng Range, offset Point, duplicate, block bool) BatchResult {
	if offset == (Point{}) {
		return BatchResult{}
	}
	e.mu.Lock()
	src, ok := NewRange(rng.From, rng.To).Clamp(e.m.RowCount(), e.m.ColCount())
	if !ok {
		e.mu.Unlock()
		return BatchResult{}
	}
	snapshot := make(map[Point]int, src.Rows()*src.Cols())
	for _, p := range src.Points() {
		snapshot[p] = e.m.Quantity(p.Row, p.Col)
	}

	values := make(map[Point]int)
	var order []Point
	var moved []Point
	for _, p := range src.Points() {
		t := p.Add(offset)
		if !e.m.InBounds(t) {
			continue
		}
		values[t] = snapshot[p]
		order = append(order, t)
		moved = append(moved, p)
	}
	if !duplicate {
		for _, p := range moved {
			if _, target := values[p]; target {
				continue
			}
			values[p] = 0
			order = append(order, p)
		}
	}
	writes, prev := e.stageLocked(order, values, true)
	if block {
		if shifted, ok := src.Shift(offset).Clamp(e.m.RowCount(), e.m.ColCount()); ok {
			e.rng = shifted
			e.anchor = shifted.From
			e.corner = shifted.To
			e.hasRange = true
		}
	} else if dst := src.From.Add(offset); e.m.InBounds(dst) {
		e.sel = dst
	}
	e.mu.Unlock()
	return e.runBatch(ctx, writes, prev)
}

// AddColumn agrega la columna en cero a todas las filas y la crea en el
// backend. Si el backend falla la columna se retira y se avisa.
func (e *Editor) AddColumn(ctx context.Context, name string) error {
	if e.opts.Columns == nil {
		return ErrNoColumnStore
	}
	e.mu.Lock()
	e.finishLocked()
	before := e.m.Columns()
	if err := e.m.AddColumn(name); err != nil {
		e.mu.Unlock()
		e.notify.Notify(Notice{Level: LevelError, Message: fmt.Sprintf("No se pudo agregar %s: %v", e.opts.Noun, err)})
		return err
	}
	e.remapColumnsLocked(before)
	e.mu.Unlock()

	created, err := e.opts.Columns.AddColumn(ctx, name)

	e.mu.Lock()
	if err != nil {
		before := e.m.Columns()
		e.m.RemoveColumn(name)
		e.remapColumnsLocked(before)
		e.mu.Unlock()
		e.notify.Notify(Notice{Level: LevelError, Message: fmt.Sprintf("No se pudo agregar %s", e.opts.Noun)})
		return err
	}
	for rowKey, id := range created.Cells {
		e.m.SetChildID(rowKey, name, id)
	}
	e.mu.Unlock()
	e.notify.Notify(Notice{Level: LevelSuccess, Message: fmt.Sprintf("Se agregó %s %s", e.opts.Noun, name)})
	return nil
}

// DeleteColumn elimina la columna en el backend y, confirmada la operación,
// la retira de la matriz. Sin force se consulta confirm antes.
func (e *Editor) DeleteColumn(ctx context.Context, name string, force bool, confirm func(name string) bool) (bool, error) {
	if e.opts.Columns == nil {
		return false, ErrNoColumnStore
	}
	e.mu.Lock()
	_, ok := e.m.ColumnIndex(name)
	e.mu.Unlock()
	if !ok {
		return false, ErrUnknownColumn
	}
	if !force && confirm != nil && !confirm(name) {
		return false, nil
	}

	if err := e.opts.Columns.DeleteColumn(ctx, name); err != nil {
		e.notify.Notify(Notice{Level: LevelError, Message: fmt.Sprintf("No se pudo eliminar %s", e.opts.Noun)})
		return false, err
	}

	e.mu.Lock()
	if e.editing && e.m.InBounds(e.edit) && e.m.keyAt(e.edit).Column == name {
		e.editing = false
		e.buffer = nil
		e.caret = 0
	}
	e.finishLocked()
	before := e.m.Columns()
	e.m.RemoveColumn(name)
	e.remapColumnsLocked(before)
	e.mu.Unlock()
	e.notify.Notify(Notice{Level: LevelSuccess, Message: fmt.Sprintf("Se eliminó %s %s", e.opts.Noun, name)})
	return true, nil
}

// remapColumnsLocked sigue por nombre de columna la selección, el rango,
// la edición y el arrastre después de insertar o retirar una columna.
// before es el orden de columnas previo al cambio. Una edición sobre una
// columna que ya no existe se descarta.
func (e *Editor) remapColumnsLocked(before []string) {
	after := make(map[string]int, e.m.ColCount())
	for i, c := range e.m.Columns() {
		after[c] = i
	}
	remap := func(p Point) (Point, bool) {
		if p.Col < 0 || p.Col >= len(before) {
			return p, false
		}
		c, ok := after[before[p.Col]]
		if !ok {
			return p, false
		}
		return Point{Row: p.Row, Col: c}, true
	}

	if e.editing {
		if p, ok := remap(e.edit); ok {
			e.edit = p
		} else {
			e.editing = false
			e.buffer = nil
			e.caret = 0
		}
	}
	if p, ok := remap(e.sel); ok {
		e.sel = p
	}
	if e.drag != nil {
		if p, ok := remap(e.drag.from); ok {
			e.drag.from = p
		} else {
			e.drag = nil
		}
	}
	if e.hasRange {
		a, okA := remap(e.anchor)
		c, okC := remap(e.corner)
		if okA && okC {
			e.anchor, e.corner = a, c
			e.rng = NewRange(a, c)
		}
	}
	e.clampLocked()
}

func (e *Editor) clampLocked() {
	rows, cols := e.m.RowCount(), e.m.ColCount()
	if rows == 0 || cols == 0 {
		e.sel = Point{}
		e.hasRange = false
		e.editing = false
		return
	}
	e.sel = clampPoint(e.sel, rows, cols)
	if e.hasRange {
		e.rng, e.hasRange = e.rng.Clamp(rows, cols)
	}
}

// Retry reenvía una celda fallida con su valor actual.
func (e *Editor) Retry(r, c int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	cell := e.m.lookup(Point{r, c})
	if cell == nil || cell.Status != Failed {
		return false
	}
	key := e.m.keyAt(Point{r, c})
	cell.Status = Pending
	e.syncer.Submit(CellWrite{RowKey: key.RowKey, Column: key.Column, ChildID: cell.ChildID, Quantity: cell.Quantity})
	return true
}

// Revert devuelve una celda fallida al último valor confirmado por el
// backend.
func (e *Editor) Revert(r, c int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	cell := e.m.lookup(Point{r, c})
	if cell == nil || cell.Status != Failed {
		return false
	}
	cell.Quantity = cell.confirmed
	cell.Status = Committed
	if e.editing && e.edit == (Point{r, c}) {
		e.buffer = []rune(strconv.Itoa(cell.Quantity))
		e.caret = len(e.buffer)
	}
	return true
}

func (e *Editor) applyResult(res WriteResult) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	cell, _, ok := e.m.locate(res.Write.Key())
	if ok && cell != nil {
		if res.Err != nil {
			if cell.Quantity == res.Write.Quantity {
				cell.Status = Failed
			}
		} else {
			if res.ChildID != "" {
				cell.ChildID = res.ChildID
			}
			cell.confirmed = res.Write.Quantity
			if cell.Quantity == res.Write.Quantity {
				cell.Status = Committed
			}
		}
	}
	e.mu.Unlock()
	if res.Err != nil {
		e.notify.Notify(Notice{Level: LevelError, Message: "No se pudo actualizar la cantidad"})
	}
}

// Wait espera a que terminen las escrituras programadas y en curso.
func (e *Editor) Wait() { e.syncer.Wait() }

// Close cancela las escrituras pendientes y en curso. El editor no debe
// usarse después.
func (e *Editor) Close() {
	e.mu.Lock()
	e.closed = true
	e.editing = false
	e.mu.Unlock()
	e.syncer.Close()
}
