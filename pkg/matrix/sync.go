package matrix

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultDebounce espera antes de enviar una edición tecleada.
	DefaultDebounce = 500 * time.Millisecond
	// DefaultConcurrency escrituras simultáneas en un lote (pegar, arrastrar).
	DefaultConcurrency = 8
)

// CellKey identifica una celda por fila y columna, independiente de su posición.
type CellKey struct {
	RowKey string
	Column string
}

// CellWrite actualización de una celda hacia el backend.
type CellWrite struct {
	RowKey   string
	Column   string
	ChildID  string
	Quantity int
}

// Key clave de la celda escrita.
func (w CellWrite) Key() CellKey { return CellKey{RowKey: w.RowKey, Column: w.Column} }

// Writer puerto de escritura de una celda. Devuelve el identificador que el
// backend asignó a la celda (vacío si no cambia).
type Writer interface {
	WriteCell(ctx context.Context, w CellWrite) (childID string, err error)
}

// WriterFunc adapta una función a Writer.
type WriterFunc func(ctx context.Context, w CellWrite) (string, error)

// WriteCell implementa Writer.
func (f WriterFunc) WriteCell(ctx context.Context, w CellWrite) (string, error) { return f(ctx, w) }

// WriteResult resultado de una escritura.
// Superseded indica que la escritura no se envió porque llegó otra más nueva
// para la misma celda.
type WriteResult struct {
	Write      CellWrite
	ChildID    string
	Err        error
	Superseded bool
}

// SyncOptions configuración de Syncer.
type SyncOptions struct {
	Debounce    time.Duration
	Concurrency int
	// OnResult recibe el resultado de las escrituras individuales (Schedule,
	// Submit, Flush). Se invoca desde otra goroutine; nunca para escrituras
	// descartadas por una más nueva.
	OnResult func(WriteResult)
}

type lane struct {
	exec sync.Mutex // serializa las escrituras de la celda

	// protegidos por Syncer.mu
	seq     uint64
	timer   *time.Timer
	pending *CellWrite
	pendSeq uint64
	childID string
}

// Syncer envía escrituras de celdas al backend.
//
// Escrituras a la misma celda se serializan y llevan una secuencia: una
// escritura que ya tiene otra más nueva detrás no se envía, de modo que la
// última edición siempre gana. Escrituras a celdas distintas corren en
// paralelo sin orden entre ellas.
type Syncer struct {
	writer Writer
	opts   SyncOptions

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	lanes  map[CellKey]*lane
	closed bool
	wg     sync.WaitGroup
}

// NewSyncer construye el sincronizador. Close cancela las escrituras en curso.
func NewSyncer(w Writer, opts SyncOptions) *Syncer {
	if opts.Debounce < 0 {
		opts.Debounce = 0
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Syncer{
		writer: w,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		lanes:  make(map[CellKey]*lane),
	}
}

func (s *Syncer) laneLocked(k CellKey) *lane {
	l := s.lanes[k]
	if l == nil {
		l = &lane{}
		s.lanes[k] = l
	}
	return l
}

// nextLocked emite una secuencia nueva y cancela el temporizador pendiente.
func (s *Syncer) nextLocked(l *lane) uint64 {
	if l.timer != nil {
		if l.timer.Stop() {
			s.wg.Done()
		}
		l.timer = nil
		l.pending = nil
	}
	l.seq++
	return l.seq
}

// Schedule programa la escritura tras el debounce; una nueva edición de la
// misma celda reinicia la espera.
func (s *Syncer) Schedule(w CellWrite) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	l := s.laneLocked(w.Key())
	seq := s.nextLocked(l)
	if s.opts.Debounce == 0 {
		s.wg.Add(1)
		go s.run(l, w, seq)
		return
	}
	pending := w
	l.pending = &pending
	l.pendSeq = seq
	s.wg.Add(1)
	l.timer = time.AfterFunc(s.opts.Debounce, func() {
		s.mu.Lock()
		if l.pendSeq == seq {
			l.timer = nil
			l.pending = nil
		}
		s.mu.Unlock()
		s.run(l, pending, seq)
	})
}

// Submit envía la escritura de inmediato (blur, Enter, reintento).
func (s *Syncer) Submit(w CellWrite) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	l := s.laneLocked(w.Key())
	seq := s.nextLocked(l)
	s.wg.Add(1)
	go s.run(l, w, seq)
}

// Flush adelanta la escritura pendiente de una celda, si la hay.
func (s *Syncer) Flush(k CellKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.lanes[k]
	if s.closed || l == nil || l.timer == nil || l.pending == nil {
		return false
	}
	if !l.timer.Stop() {
		return false // ya disparó
	}
	w, seq := *l.pending, l.pendSeq
	l.timer = nil
	l.pending = nil
	go s.run(l, w, seq) // el wg ya cuenta esta escritura
	return true
}

// Pending informa si la celda tiene una escritura esperando el debounce.
func (s *Syncer) Pending(k CellKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.lanes[k]
	return l != nil && l.timer != nil
}

func (s *Syncer) run(l *lane, w CellWrite, seq uint64) {
	defer s.wg.Done()
	res := s.execute(s.ctx, l, w, seq)
	if res.Superseded || s.opts.OnResult == nil {
		return
	}
	s.opts.OnResult(res)
}

func (s *Syncer) execute(ctx context.Context, l *lane, w CellWrite, seq uint64) WriteResult {
	l.exec.Lock()
	defer l.exec.Unlock()

	s.mu.Lock()
	if seq < l.seq {
		s.mu.Unlock()
		return WriteResult{Write: w, Superseded: true}
	}
	if w.ChildID == "" {
		w.ChildID = l.childID
	}
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return WriteResult{Write: w, Err: err}
	}
	id, err := s.writer.WriteCell(ctx, w)
	if err != nil {
		return WriteResult{Write: w, Err: err}
	}
	if id == "" {
		id = w.ChildID
	}
	s.mu.Lock()
	l.childID = id
	s.mu.Unlock()
	return WriteResult{Write: w, ChildID: id}
}

// Batch envía varias escrituras en paralelo (con concurrencia acotada) y
// espera todas. Los fallos se reportan por celda; no se cancela el resto.
func (s *Syncer) Batch(ctx context.Context, writes []CellWrite) []WriteResult {
	results := make([]WriteResult, len(writes))
	if len(writes) == 0 {
		return results
	}

	lanes := make([]*lane, len(writes))
	seqs := make([]uint64, len(writes))
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		for i, w := range writes {
			results[i] = WriteResult{Write: w, Err: context.Canceled}
		}
		return results
	}
	for i, w := range writes {
		lanes[i] = s.laneLocked(w.Key())
		seqs[i] = s.nextLocked(lanes[i])
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i := range writes {
		i := i
		g.Go(func() error {
			results[i] = s.execute(ctx, lanes[i], writes[i], seqs[i])
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Wait bloquea hasta que no queden escrituras programadas ni en curso.
func (s *Syncer) Wait() { s.wg.Wait() }

// Close descarta las escrituras programadas, cancela las que están en curso
// y espera a que terminen.
func (s *Syncer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, l := range s.lanes {
		if l.timer != nil && l.timer.Stop() {
			s.wg.Done()
		}
		l.timer = nil
		l.pending = nil
	}
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}
