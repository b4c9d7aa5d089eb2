package matrix_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jhoicas/Cotizaciones-api/pkg/matrix"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeWriter registra las escrituras recibidas. fail decide qué celdas
// fallan; block, si no es nil, detiene cada escritura hasta que se cierre.
type fakeWriter struct {
	mu     sync.Mutex
	writes []matrix.CellWrite
	fail   func(matrix.CellWrite) bool
	block  chan struct{}
	nextID int
}

func (f *fakeWriter) WriteCell(ctx context.Context, w matrix.CellWrite) (string, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, w)
	if f.fail != nil && f.fail(w) {
		return "", errors.New("backend caído")
	}
	if w.ChildID != "" {
		return w.ChildID, nil
	}
	f.nextID++
	return "id-" + string(rune('0'+f.nextID)), nil
}

func (f *fakeWriter) Writes() []matrix.CellWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]matrix.CellWrite(nil), f.writes...)
}

func collect() (func(matrix.WriteResult), func() []matrix.WriteResult) {
	var mu sync.Mutex
	var out []matrix.WriteResult
	return func(r matrix.WriteResult) {
			mu.Lock()
			out = append(out, r)
			mu.Unlock()
		}, func() []matrix.WriteResult {
			mu.Lock()
			defer mu.Unlock()
			return append([]matrix.WriteResult(nil), out...)
		}
}

// ──────────────────────────────────────────────────────────────────────────────
// Debounce y última escritura
// ──────────────────────────────────────────────────────────────────────────────

func TestSyncer_DebounceAgrupaEdicionesDeLaMismaCelda(t *testing.T) {
	w := &fakeWriter{}
	onResult, results := collect()
	s := matrix.NewSyncer(w, matrix.SyncOptions{Debounce: 20 * time.Millisecond, OnResult: onResult})
	defer s.Close()

	for q := 1; q <= 3; q++ {
		s.Schedule(matrix.CellWrite{RowKey: "p1", Column: "B1", Quantity: q})
	}
	s.Wait()

	writes := w.Writes()
	require.Len(t, writes, 1, "tres ediciones seguidas deben producir una sola escritura")
	assert.Equal(t, 3, writes[0].Quantity)
	require.Len(t, results(), 1)
	assert.NoError(t, results()[0].Err)
}

func TestSyncer_FlushAdelantaLaEscritura(t *testing.T) {
	w := &fakeWriter{}
	s := matrix.NewSyncer(w, matrix.SyncOptions{Debounce: time.Hour})
	defer s.Close()

	key := matrix.CellKey{RowKey: "p1", Column: "B1"}
	s.Schedule(matrix.CellWrite{RowKey: "p1", Column: "B1", Quantity: 4})
	assert.True(t, s.Pending(key))

	assert.True(t, s.Flush(key))
	s.Wait()
	assert.False(t, s.Pending(key))
	require.Len(t, w.Writes(), 1)
	assert.False(t, s.Flush(key), "no queda nada pendiente")
}

func TestSyncer_UltimaEscrituraGana(t *testing.T) {
	w := &fakeWriter{block: make(chan struct{})}
	onResult, results := collect()
	s := matrix.NewSyncer(w, matrix.SyncOptions{Debounce: -1, OnResult: onResult})
	defer s.Close()

	// La primera queda bloqueada en el backend; las dos siguientes esperan
	// el turno de la celda y solo la última debe enviarse.
	s.Submit(matrix.CellWrite{RowKey: "p1", Column: "B1", Quantity: 1})
	time.Sleep(10 * time.Millisecond)
	s.Submit(matrix.CellWrite{RowKey: "p1", Column: "B1", Quantity: 2})
	s.Submit(matrix.CellWrite{RowKey: "p1", Column: "B1", Quantity: 3})
	close(w.block)
	s.Wait()

	writes := w.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, 1, writes[0].Quantity)
	assert.Equal(t, 3, writes[1].Quantity, "la edición más reciente debe llegar al final")
	assert.Len(t, results(), 2, "las escrituras descartadas no se reportan")
}

func TestSyncer_RecuerdaElIdDeLaCelda(t *testing.T) {
	w := &fakeWriter{}
	s := matrix.NewSyncer(w, matrix.SyncOptions{Debounce: -1})
	defer s.Close()

	s.Submit(matrix.CellWrite{RowKey: "p1", Column: "B1", Quantity: 1})
	s.Wait()
	s.Submit(matrix.CellWrite{RowKey: "p1", Column: "B1", Quantity: 2})
	s.Wait()

	writes := w.Writes()
	require.Len(t, writes, 2)
	assert.Empty(t, writes[0].ChildID)
	assert.NotEmpty(t, writes[1].ChildID, "la segunda escritura debe usar el id emitido")
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes y cierre
// ──────────────────────────────────────────────────────────────────────────────

func TestSyncer_BatchReportaFallosPorCelda(t *testing.T) {
	w := &fakeWriter{fail: func(cw matrix.CellWrite) bool { return cw.Column == "B2" }}
	s := matrix.NewSyncer(w, matrix.SyncOptions{Concurrency: 2})
	defer s.Close()

	writes := []matrix.CellWrite{
		{RowKey: "p1", Column: "B1", Quantity: 1},
		{RowKey: "p1", Column: "B2", Quantity: 2},
		{RowKey: "p2", Column: "B1", Quantity: 3},
	}
	res := s.Batch(context.Background(), writes)
	require.Len(t, res, 3)
	assert.NoError(t, res[0].Err)
	assert.Error(t, res[1].Err)
	assert.NoError(t, res[2].Err)
	assert.Len(t, w.Writes(), 3, "un fallo no cancela el resto del lote")
}

func TestSyncer_CloseCancelaEscriturasEnCurso(t *testing.T) {
	w := &fakeWriter{block: make(chan struct{})}
	onResult, results := collect()
	s := matrix.NewSyncer(w, matrix.SyncOptions{Debounce: time.Hour, OnResult: onResult})

	s.Submit(matrix.CellWrite{RowKey: "p1", Column: "B1", Quantity: 1})
	s.Schedule(matrix.CellWrite{RowKey: "p2", Column: "B1", Quantity: 1})
	s.Close()

	assert.Empty(t, w.Writes())
	got := results()
	require.Len(t, got, 1, "solo la escritura en curso reporta resultado")
	assert.ErrorIs(t, got[0].Err, context.Canceled)

	s.Submit(matrix.CellWrite{RowKey: "p1", Column: "B1", Quantity: 2})
	res := s.Batch(context.Background(), []matrix.CellWrite{{RowKey: "p1", Column: "B1"}})
	assert.ErrorIs(t, res[0].Err, context.Canceled, "después de Close no se escribe")
}
