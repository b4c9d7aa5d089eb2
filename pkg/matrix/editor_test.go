package matrix_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cotizaciones-api/pkg/matrix"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type notices struct {
	mu  sync.Mutex
	all []matrix.Notice
}

func (n *notices) Notify(x matrix.Notice) {
	n.mu.Lock()
	n.all = append(n.all, x)
	n.mu.Unlock()
}

func (n *notices) Last() matrix.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.all) == 0 {
		return matrix.Notice{}
	}
	return n.all[len(n.all)-1]
}

type fakeColumns struct {
	addErr    error
	deleteErr error
	deleted   []string
}

func (f *fakeColumns) AddColumn(_ context.Context, name string) (matrix.ColumnCreated, error) {
	if f.addErr != nil {
		return matrix.ColumnCreated{}, f.addErr
	}
	return matrix.ColumnCreated{ID: "col-" + name, Cells: map[string]string{"p1": "x1", "p2": "x2"}}, nil
}

// blockingColumns detiene AddColumn hasta que se cierre release.
type blockingColumns struct {
	started chan struct{}
	release chan struct{}
	err     error
}

func newBlockingColumns(err error) *blockingColumns {
	return &blockingColumns{started: make(chan struct{}), release: make(chan struct{}), err: err}
}

func (b *blockingColumns) AddColumn(ctx context.Context, name string) (matrix.ColumnCreated, error) {
	close(b.started)
	select {
	case <-b.release:
	case <-ctx.Done():
		return matrix.ColumnCreated{}, ctx.Err()
	}
	if b.err != nil {
		return matrix.ColumnCreated{}, b.err
	}
	return matrix.ColumnCreated{ID: "col-" + name}, nil
}

func (b *blockingColumns) DeleteColumn(context.Context, string) error { return nil }

func (f *fakeColumns) DeleteColumn(_ context.Context, name string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, name)
	return nil
}

// grid3 matriz 3x3 con valores 1..9 fila por fila.
func grid3() matrix.Source {
	return matrix.SourceFunc(func(context.Context) ([]matrix.RowInput, error) {
		rows := make([]matrix.RowInput, 0, 3)
		n := 0
		for _, key := range []string{"p1", "p2", "p3"} {
			row := matrix.RowInput{Key: key}
			for _, col := range []string{"B1", "B2", "B3"} {
				n++
				row.Children = append(row.Children, matrix.ChildInput{Name: col, ChildID: key + col, Quantity: n})
			}
			rows = append(rows, row)
		}
		return rows, nil
	})
}

func newEditor(t *testing.T, w *fakeWriter, opts matrix.Options) (*matrix.Editor, *notices) {
	t.Helper()
	n := &notices{}
	opts.Notifier = n
	if opts.Debounce == 0 {
		opts.Debounce = -1
	}
	e := matrix.NewEditor(w, opts)
	t.Cleanup(e.Close)
	require.NoError(t, e.Load(context.Background(), grid3()))
	return e, n
}

func values(e *matrix.Editor) [][]int {
	s := e.Snapshot()
	out := make([][]int, len(s.Rows))
	for i, r := range s.Rows {
		for _, c := range r.Cells {
			out[i] = append(out[i], c.Quantity)
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Carga
// ──────────────────────────────────────────────────────────────────────────────

func TestEditor_LoadFallidoMuestraError(t *testing.T) {
	e := matrix.NewEditor(&fakeWriter{}, matrix.Options{Noun: "bahía", Plural: "bahías"})
	defer e.Close()

	err := e.Load(context.Background(), matrix.SourceFunc(func(context.Context) ([]matrix.RowInput, error) {
		return nil, errors.New("timeout")
	}))
	require.Error(t, err)

	s := e.Snapshot()
	assert.Equal(t, matrix.LoadFailed, s.State)
	assert.Equal(t, "Error al cargar bahías: timeout", s.Error)
	assert.Empty(t, s.Rows)
}

func TestEditor_LoadDescartaPortapapeles(t *testing.T) {
	e, _ := newEditor(t, &fakeWriter{}, matrix.Options{})
	e.SetClipboardText("1\t2")
	require.NoError(t, e.Load(context.Background(), grid3()))
	assert.Empty(t, e.Snapshot().Clipboard)
}

// ──────────────────────────────────────────────────────────────────────────────
// Edición y navegación
// ──────────────────────────────────────────────────────────────────────────────

func TestEditor_EditarYRecargarMuestraElValor(t *testing.T) {
	w := &fakeWriter{}
	e, _ := newEditor(t, w, matrix.Options{Debounce: time.Hour})

	require.True(t, e.StartEditing(1, 2))
	e.CommitEdit("42", false)
	assert.Equal(t, 42, e.Value(1, 2), "la actualización local es inmediata")
	assert.Equal(t, matrix.Pending, e.Status(1, 2))
	e.FinishEditing()
	e.Wait()

	assert.Equal(t, matrix.Committed, e.Status(1, 2))

	// Backend que devuelve lo escrito.
	echo := matrix.SourceFunc(func(ctx context.Context) ([]matrix.RowInput, error) {
		rows, _ := grid3().Fetch(ctx)
		for _, cw := range w.Writes() {
			for i := range rows {
				if rows[i].Key != cw.RowKey {
					continue
				}
				for j := range rows[i].Children {
					if rows[i].Children[j].Name == cw.Column {
						rows[i].Children[j].Quantity = cw.Quantity
					}
				}
			}
		}
		return rows, nil
	})
	require.NoError(t, e.Load(context.Background(), echo))
	assert.Equal(t, 42, e.Value(1, 2))
}

func TestEditor_ValorInvalidoEsCero(t *testing.T) {
	w := &fakeWriter{}
	e, _ := newEditor(t, w, matrix.Options{})

	e.StartEditing(0, 0)
	e.CommitEdit("abc", true)
	e.Wait()
	assert.Equal(t, 0, e.Value(0, 0))
	require.Len(t, w.Writes(), 1)
	assert.Equal(t, "p1B1", w.Writes()[0].ChildID, "la escritura usa el id de la celda")
}

func TestEditor_FlechasRespetanElCursor(t *testing.T) {
	e, _ := newEditor(t, &fakeWriter{}, matrix.Options{})

	require.True(t, e.StartEditing(0, 1))
	s := e.Snapshot()
	assert.Equal(t, "2", s.Buffer)
	assert.Equal(t, 1, s.Caret, "el cursor empieza al final")

	e.Move(matrix.Left)
	s = e.Snapshot()
	assert.Equal(t, matrix.Point{Row: 0, Col: 1}, s.Selected, "con el cursor lejos del borde solo se mueve el cursor")
	assert.Equal(t, 0, s.Caret)

	e.Move(matrix.Left)
	s = e.Snapshot()
	assert.Equal(t, matrix.Point{Row: 0, Col: 0}, s.Selected, "cursor en 0 cruza a la izquierda")
	assert.True(t, s.Editing)

	e.Move(matrix.Right)
	s = e.Snapshot()
	assert.Equal(t, matrix.Point{Row: 0, Col: 1}, s.Selected, "cursor al final cruza a la derecha")
	assert.Equal(t, 0, s.Caret)

	e.Move(matrix.Right)
	s = e.Snapshot()
	assert.Equal(t, matrix.Point{Row: 0, Col: 1}, s.Selected)
	assert.Equal(t, 1, s.Caret)

	e.Move(matrix.Down)
	s = e.Snapshot()
	assert.Equal(t, matrix.Point{Row: 1, Col: 1}, s.Selected, "abajo siempre cambia de celda")
	assert.Equal(t, "5", s.Buffer)

	assert.False(t, e.StartEditing(5, 0), "fuera de rango no edita")
}

func TestEditor_EscapeRestauraElValor(t *testing.T) {
	w := &fakeWriter{}
	e, _ := newEditor(t, w, matrix.Options{})

	e.StartEditing(0, 0)
	e.KeyDown(context.Background(), matrix.Key{Code: matrix.KeyRune, Rune: '7'})
	assert.Equal(t, 17, e.Value(0, 0))
	e.KeyDown(context.Background(), matrix.Key{Code: matrix.KeyEscape})
	e.Wait()

	assert.Equal(t, 1, e.Value(0, 0))
	assert.False(t, e.Snapshot().Editing)
	writes := w.Writes()
	require.NotEmpty(t, writes)
	assert.Equal(t, 1, writes[len(writes)-1].Quantity, "el backend queda con el valor original")
}

func TestEditor_DigitoSobreCeldaReemplaza(t *testing.T) {
	e, _ := newEditor(t, &fakeWriter{}, matrix.Options{})

	e.SelectCell(2, 2)
	assert.True(t, e.KeyDown(context.Background(), matrix.Key{Code: matrix.KeyRune, Rune: '4'}))
	e.KeyDown(context.Background(), matrix.Key{Code: matrix.KeyEnter})
	e.Wait()
	assert.Equal(t, 4, e.Value(2, 2))
}

// ──────────────────────────────────────────────────────────────────────────────
// Copiar y pegar
// ──────────────────────────────────────────────────────────────────────────────

func TestEditor_CtrlCSinRangoNoHaceNada(t *testing.T) {
	e, _ := newEditor(t, &fakeWriter{}, matrix.Options{})

	e.SelectCell(0, 0)
	assert.True(t, e.KeyDown(context.Background(), matrix.Key{Code: matrix.KeyRune, Rune: 'c', Ctrl: true}),
		"la tecla se consume aunque no haya rango")
	assert.Empty(t, e.Snapshot().Clipboard)

	w := &fakeWriter{}
	e2, _ := newEditor(t, w, matrix.Options{})
	e2.SetClipboardText("9")
	assert.True(t, e2.KeyDown(context.Background(), matrix.Key{Code: matrix.KeyRune, Rune: 'v', Ctrl: true}))
	assert.Empty(t, w.Writes(), "Ctrl+V sin rango no pega")
}

func TestEditor_CopiarRango(t *testing.T) {
	e, _ := newEditor(t, &fakeWriter{}, matrix.Options{})

	e.CtrlClick(context.Background(), 0, 1)
	e.ExtendSelection(1, 5) // se recorta a la última columna
	rng, ok := e.Selection()
	require.True(t, ok)
	assert.Equal(t, matrix.Range{From: matrix.Point{Row: 0, Col: 1}, To: matrix.Point{Row: 1, Col: 2}}, rng)

	e.KeyDown(context.Background(), matrix.Key{Code: matrix.KeyRune, Rune: 'c', Ctrl: true})
	assert.Equal(t, "2\t3\n5\t6", e.ClipboardText())
}

func TestEditor_PegarSeRecortaALosLimites(t *testing.T) {
	w := &fakeWriter{}
	e, n := newEditor(t, w, matrix.Options{})

	e.SetClipboardText("10\t20\n30\t40")
	res := e.PasteAt(context.Background(), 2, 2)

	assert.Equal(t, matrix.BatchResult{Total: 1, Succeeded: 1}, res, "solo (2,2) está dentro de la matriz")
	require.Len(t, w.Writes(), 1)
	assert.Equal(t, 10, e.Value(2, 2))
	assert.Equal(t, matrix.LevelSuccess, n.Last().Level)
}

func TestEditor_CtrlClickPegaAntesDeSeleccionar(t *testing.T) {
	w := &fakeWriter{}
	e, _ := newEditor(t, w, matrix.Options{})

	e.SetClipboardText("0\t0")
	res := e.CtrlClick(context.Background(), 1, 0)

	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 0, e.Value(1, 0))
	assert.Equal(t, 0, e.Value(1, 1))
	rng, ok := e.Selection()
	require.True(t, ok)
	assert.Equal(t, matrix.Range{From: matrix.Point{Row: 1, Col: 0}, To: matrix.Point{Row: 1, Col: 0}}, rng)
	assert.Empty(t, e.ClipboardText(), "el portapapeles se consume al pegar")
}

func TestEditor_LoteParcialSoloConservaExitos(t *testing.T) {
	w := &fakeWriter{fail: func(cw matrix.CellWrite) bool { return cw.RowKey == "p2" }}
	e, n := newEditor(t, w, matrix.Options{})

	e.SetClipboardText("0\n0\n0")
	res := e.PasteAt(context.Background(), 0, 0)

	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, []matrix.CellKey{{RowKey: "p2", Column: "B1"}}, res.FailedCells)

	assert.Equal(t, 0, e.Value(0, 0))
	assert.Equal(t, 4, e.Value(1, 0), "la celda fallida vuelve a su valor previo")
	assert.Equal(t, 0, e.Value(2, 0))
	assert.Equal(t, matrix.Notice{Level: matrix.LevelError, Message: "No se pudieron actualizar 1 de 3 celdas"}, n.Last())
}

func TestEditor_LoteFallidoSobreEdicionPendienteLaDejaReintentable(t *testing.T) {
	w := &fakeWriter{fail: func(cw matrix.CellWrite) bool { return cw.Quantity == 9 }}
	e, _ := newEditor(t, w, matrix.Options{Debounce: 50 * time.Millisecond})

	require.True(t, e.StartEditing(0, 0))
	require.True(t, e.CommitEdit("7", false))
	require.Equal(t, matrix.Pending, e.Status(0, 0))

	e.SetClipboardText("9")
	res := e.PasteAt(context.Background(), 0, 0)
	e.Wait()
	require.Equal(t, 1, res.Failed)

	assert.Equal(t, 7, e.Value(0, 0), "la celda vuelve a la edición previa")
	assert.NotEqual(t, matrix.Pending, e.Status(0, 0), "ninguna escritura queda en camino")

	// El 7 pudo llegar antes del lote (Committed) o quedar descartado (Failed).
	if e.Status(0, 0) == matrix.Failed {
		require.True(t, e.Retry(0, 0))
		e.Wait()
	}
	assert.Equal(t, matrix.Committed, e.Status(0, 0))
	writes := w.Writes()
	assert.Equal(t, 7, writes[len(writes)-1].Quantity, "el backend termina con el valor visible")
}

// ──────────────────────────────────────────────────────────────────────────────
// Arrastrar
// ──────────────────────────────────────────────────────────────────────────────

func TestEditor_ArrastrarBloqueMueveYPoneCeroElOrigen(t *testing.T) {
	e, _ := newEditor(t, &fakeWriter{}, matrix.Options{})

	e.CtrlClick(context.Background(), 0, 0)
	e.ExtendSelection(1, 1)
	require.True(t, e.BeginDrag(0, 0), "arrastre dentro del rango")
	e.EndDrag(context.Background(), 1, 1, false)

	want := [][]int{
		{0, 0, 3},
		{0, 1, 2},
		{7, 4, 5},
	}
	if diff := cmp.Diff(want, values(e)); diff != "" {
		t.Errorf("valores tras mover (-want +got):\n%s", diff)
	}
	rng, _ := e.Selection()
	assert.Equal(t, matrix.Range{From: matrix.Point{Row: 1, Col: 1}, To: matrix.Point{Row: 2, Col: 2}}, rng,
		"el rango acompaña al bloque")
}

func TestEditor_CopiarBloqueConservaElOrigen(t *testing.T) {
	e, _ := newEditor(t, &fakeWriter{}, matrix.Options{})

	rng := matrix.Range{From: matrix.Point{Row: 0, Col: 0}, To: matrix.Point{Row: 0, Col: 1}}
	e.DragSelection(context.Background(), rng, matrix.Point{Row: 2, Col: 0}, true)

	want := [][]int{
		{1, 2, 3},
		{4, 5, 6},
		{1, 2, 9},
	}
	if diff := cmp.Diff(want, values(e)); diff != "" {
		t.Errorf("valores tras copiar (-want +got):\n%s", diff)
	}
}

func TestEditor_ArrastreFueraDeRangoSeDescarta(t *testing.T) {
	w := &fakeWriter{}
	e, _ := newEditor(t, w, matrix.Options{})

	rng := matrix.Range{From: matrix.Point{Row: 0, Col: 1}, To: matrix.Point{Row: 0, Col: 2}}
	res := e.DragSelection(context.Background(), rng, matrix.Point{Row: 0, Col: 1}, false)

	// (0,1) → (0,2) entra; (0,2) → (0,3) queda fuera y su valor no se toca.
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, []int{1, 0, 2}, values(e)[0])
}

func TestEditor_ArrastrarCeldaSinRango(t *testing.T) {
	e, _ := newEditor(t, &fakeWriter{}, matrix.Options{})

	require.True(t, e.BeginDrag(2, 0))
	assert.True(t, e.Snapshot().Dragging)
	e.EndDrag(context.Background(), 0, 2, false)

	assert.Equal(t, 7, e.Value(0, 2))
	assert.Equal(t, 0, e.Value(2, 0))
	assert.False(t, e.Snapshot().Dragging)

	e.BeginDrag(0, 0)
	e.CancelDrag()
	assert.Equal(t, matrix.BatchResult{}, e.EndDrag(context.Background(), 1, 1, false))
}

// ──────────────────────────────────────────────────────────────────────────────
// Estado por celda: fallo, reintento y revertir
// ──────────────────────────────────────────────────────────────────────────────

func TestEditor_EscrituraFallidaSeMarcaYSeReintenta(t *testing.T) {
	var failing sync.Mutex
	down := true
	w := &fakeWriter{fail: func(matrix.CellWrite) bool {
		failing.Lock()
		defer failing.Unlock()
		return down
	}}
	e, n := newEditor(t, w, matrix.Options{})

	e.StartEditing(0, 0)
	e.CommitEdit("8", true)
	e.Wait()

	assert.Equal(t, matrix.Failed, e.Status(0, 0))
	assert.Equal(t, 8, e.Value(0, 0), "el valor optimista se mantiene")
	assert.Equal(t, "No se pudo actualizar la cantidad", n.Last().Message)

	failing.Lock()
	down = false
	failing.Unlock()
	require.True(t, e.Retry(0, 0))
	e.Wait()
	assert.Equal(t, matrix.Committed, e.Status(0, 0))
	assert.False(t, e.Retry(0, 0), "solo se reintentan celdas fallidas")
}

func TestEditor_RevertirVuelveAlUltimoValorConfirmado(t *testing.T) {
	w := &fakeWriter{fail: func(matrix.CellWrite) bool { return true }}
	e, _ := newEditor(t, w, matrix.Options{})

	e.StartEditing(1, 1)
	e.CommitEdit("99", true)
	e.FinishEditing()
	e.Wait()
	require.Equal(t, matrix.Failed, e.Status(1, 1))

	require.True(t, e.Revert(1, 1))
	assert.Equal(t, 5, e.Value(1, 1))
	assert.Equal(t, matrix.Committed, e.Status(1, 1))
}

// ──────────────────────────────────────────────────────────────────────────────
// Columnas
// ──────────────────────────────────────────────────────────────────────────────

func TestEditor_AgregarColumnaFusionaIds(t *testing.T) {
	cols := &fakeColumns{}
	e, _ := newEditor(t, &fakeWriter{}, matrix.Options{Columns: cols, Noun: "bahía"})

	require.NoError(t, e.AddColumn(context.Background(), "B4"))
	assert.Equal(t, []string{"B1", "B2", "B3", "B4"}, e.Columns())

	s := e.Snapshot()
	assert.Equal(t, "x1", s.Rows[0].Cells[3].ChildID)
	assert.Equal(t, "x2", s.Rows[1].Cells[3].ChildID)
	assert.Equal(t, 0, s.Rows[2].Cells[3].Quantity)
}

func TestEditor_AgregarColumnaFallidaSeRetira(t *testing.T) {
	cols := &fakeColumns{addErr: errors.New("500")}
	e, n := newEditor(t, &fakeWriter{}, matrix.Options{Columns: cols, Noun: "bahía"})

	require.Error(t, e.AddColumn(context.Background(), "B4"))
	assert.Equal(t, []string{"B1", "B2", "B3"}, e.Columns())
	assert.Equal(t, matrix.Notice{Level: matrix.LevelError, Message: "No se pudo agregar bahía"}, n.Last())
}

func TestEditor_EliminarColumna(t *testing.T) {
	cols := &fakeColumns{}
	e, _ := newEditor(t, &fakeWriter{}, matrix.Options{Columns: cols})

	removed, err := e.DeleteColumn(context.Background(), "B2", false, func(string) bool { return false })
	require.NoError(t, err)
	assert.False(t, removed, "sin confirmación no se elimina")
	assert.Empty(t, cols.deleted)

	removed, err = e.DeleteColumn(context.Background(), "B2", true, func(string) bool { return false })
	require.NoError(t, err)
	assert.True(t, removed, "force omite la confirmación")
	assert.Equal(t, []string{"B1", "B3"}, e.Columns())

	_, err = e.DeleteColumn(context.Background(), "B9", true, nil)
	assert.ErrorIs(t, err, matrix.ErrUnknownColumn)
}

func TestEditor_EliminarColumnaFallidaLaConserva(t *testing.T) {
	cols := &fakeColumns{deleteErr: errors.New("500")}
	e, _ := newEditor(t, &fakeWriter{}, matrix.Options{Columns: cols})

	_, err := e.DeleteColumn(context.Background(), "B1", true, nil)
	require.Error(t, err)
	assert.Len(t, e.Columns(), 3)
}

func TestEditor_AgregarColumnaIntermediaMueveLaSeleccion(t *testing.T) {
	e, _ := newEditor(t, &fakeWriter{}, matrix.Options{Columns: &fakeColumns{}, Order: matrix.Sorted})

	require.True(t, e.SelectCell(1, 2))
	require.NoError(t, e.AddColumn(context.Background(), "B2a"))

	assert.Equal(t, []string{"B1", "B2", "B2a", "B3"}, e.Columns())
	assert.Equal(t, matrix.Point{Row: 1, Col: 3}, e.Snapshot().Selected, "la selección sigue a B3")
	assert.Equal(t, 6, e.Value(1, 3))
}

func TestEditor_EliminarColumnaAjustaElRango(t *testing.T) {
	e, _ := newEditor(t, &fakeWriter{}, matrix.Options{Columns: &fakeColumns{}})

	e.CtrlClick(context.Background(), 0, 1)
	require.True(t, e.ExtendSelection(1, 2))
	removed, err := e.DeleteColumn(context.Background(), "B1", true, nil)
	require.NoError(t, err)
	require.True(t, removed)

	rng, ok := e.Selection()
	require.True(t, ok)
	assert.Equal(t, matrix.Range{From: matrix.Point{Row: 0, Col: 0}, To: matrix.Point{Row: 1, Col: 1}}, rng,
		"el rango sigue cubriendo B2 y B3")
}

func TestEditor_AgregarColumnaFallidaDescartaLaEdicionSobreElla(t *testing.T) {
	cols := newBlockingColumns(errors.New("500"))
	w := &fakeWriter{}
	e, _ := newEditor(t, w, matrix.Options{Columns: cols, Order: matrix.Sorted})

	done := make(chan error, 1)
	go func() { done <- e.AddColumn(context.Background(), "B2a") }()
	<-cols.started

	require.Equal(t, []string{"B1", "B2", "B2a", "B3"}, e.Columns())
	require.True(t, e.StartEditing(0, 2), "edición sobre la columna nueva")
	close(cols.release)
	require.Error(t, <-done)

	assert.Equal(t, []string{"B1", "B2", "B3"}, e.Columns())
	assert.False(t, e.Snapshot().Editing)
	assert.False(t, e.CommitEdit("42", true), "no queda edición abierta")
	e.Wait()

	assert.Empty(t, w.Writes())
	assert.Equal(t, 3, e.Value(0, 2), "B3 conserva su valor")
}
