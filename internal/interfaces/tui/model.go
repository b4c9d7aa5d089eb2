// Package tui es el editor de grillas en terminal (bubbletea) sobre
// pkg/matrix: dibuja la instantánea del editor y traduce teclado y mouse.
package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jhoicas/Cotizaciones-api/pkg/matrix"
)

const (
	refreshEvery = 200 * time.Millisecond
	toastFor     = 4 * time.Second
)

// Clipboard portapapeles del sistema.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Notices recibe los avisos del editor; se pasa como matrix.Options.Notifier.
type Notices chan matrix.Notice

// NewNotices crea el canal de avisos.
func NewNotices() Notices { return make(Notices, 32) }

// Notify implementa matrix.Notifier. Si la pantalla no consume avisos se
// descartan.
func (n Notices) Notify(x matrix.Notice) {
	select {
	case n <- x:
	default:
	}
}

// Options configuración del editor en terminal.
type Options struct {
	Title     string
	ReadOnly  bool
	Clipboard Clipboard // nil = portapapeles del sistema
}

type (
	tickMsg   time.Time
	noticeMsg matrix.Notice
	batchMsg  matrix.BatchResult
)

// Model estado de la pantalla.
type Model struct {
	ctx     context.Context
	ed      *matrix.Editor
	notices Notices
	opts    Options
	clip    Clipboard

	width, height int

	toast   matrix.Notice
	toastAt time.Time

	dragging bool
	dragFrom matrix.Point
}

// New crea el modelo sobre un editor ya cargado.
func New(ctx context.Context, ed *matrix.Editor, notices Notices, opts Options) Model {
	clip := opts.Clipboard
	if clip == nil {
		clip = systemClipboard{}
	}
	return Model{ctx: ctx, ed: ed, notices: notices, opts: opts, clip: clip}
}

// Run abre la pantalla completa y bloquea hasta que el usuario sale.
func Run(ctx context.Context, ed *matrix.Editor, notices Notices, opts Options) error {
	p := tea.NewProgram(New(ctx, ed, notices, opts),
		tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init implementa tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), waitNotice(m.notices))
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitNotice(n Notices) tea.Cmd {
	if n == nil {
		return nil
	}
	return func() tea.Msg { return noticeMsg(<-n) }
}

// Update implementa tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tickMsg:
		if !m.toastAt.IsZero() && time.Since(m.toastAt) > toastFor {
			m.toast, m.toastAt = matrix.Notice{}, time.Time{}
		}
		return m, tickCmd()
	case noticeMsg:
		m.show(matrix.Notice(msg))
		return m, waitNotice(m.notices)
	case batchMsg:
		// El resumen del lote llega como aviso del editor.
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m *Model) show(n matrix.Notice) {
	m.toast, m.toastAt = n, time.Now()
}

func (m *Model) readOnlyNotice() {
	m.show(matrix.Notice{Level: matrix.LevelInfo, Message: "Grilla de solo lectura"})
}

var arrows = map[tea.KeyType]matrix.Key{
	tea.KeyUp:         {Code: matrix.KeyUp},
	tea.KeyDown:       {Code: matrix.KeyDown},
	tea.KeyLeft:       {Code: matrix.KeyLeft},
	tea.KeyRight:      {Code: matrix.KeyRight},
	tea.KeyShiftUp:    {Code: matrix.KeyUp, Shift: true},
	tea.KeyShiftDown:  {Code: matrix.KeyDown, Shift: true},
	tea.KeyShiftLeft:  {Code: matrix.KeyLeft, Shift: true},
	tea.KeyShiftRight: {Code: matrix.KeyRight, Shift: true},
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if k, ok := arrows[msg.Type]; ok {
		m.ed.KeyDown(m.ctx, k)
		return m, nil
	}
	snap := m.ed.Snapshot()

	switch msg.Type {
	case tea.KeyEsc:
		m.ed.KeyDown(m.ctx, matrix.Key{Code: matrix.KeyEscape})
	case tea.KeyEnter:
		if m.opts.ReadOnly {
			m.readOnlyNotice()
			break
		}
		m.ed.KeyDown(m.ctx, matrix.Key{Code: matrix.KeyEnter})
	case tea.KeyBackspace:
		m.ed.KeyDown(m.ctx, matrix.Key{Code: matrix.KeyBackspace})
	case tea.KeyCtrlC:
		m.ed.KeyDown(m.ctx, matrix.Key{Code: matrix.KeyRune, Rune: 'c', Ctrl: true})
		if text := m.ed.ClipboardText(); text != "" && snap.HasRange {
			if err := m.clip.WriteAll(text); err != nil {
				m.show(matrix.Notice{Level: matrix.LevelInfo, Message: "Copiado (portapapeles del sistema no disponible)"})
			}
		}
	case tea.KeyCtrlV:
		if m.opts.ReadOnly {
			m.readOnlyNotice()
			break
		}
		if !snap.HasRange {
			break
		}
		if text, err := m.clip.ReadAll(); err == nil && !matrix.ParseTSV(text).Empty() {
			m.ed.SetClipboardText(text)
		}
		at := snap.Range.From
		return m, m.batch(func() matrix.BatchResult { return m.ed.PasteAt(m.ctx, at.Row, at.Col) })
	case tea.KeyRunes:
		if len(msg.Runes) != 1 {
			break
		}
		r := msg.Runes[0]
		if !snap.Editing {
			switch r {
			case 'q':
				return m, tea.Quit
			case 'r':
				if !m.ed.Retry(snap.Selected.Row, snap.Selected.Col) {
					m.show(matrix.Notice{Level: matrix.LevelInfo, Message: "La celda no tiene errores"})
				}
				return m, nil
			case 'u':
				m.ed.Revert(snap.Selected.Row, snap.Selected.Col)
				return m, nil
			}
		}
		if m.opts.ReadOnly {
			m.readOnlyNotice()
			break
		}
		m.ed.KeyDown(m.ctx, matrix.Key{Code: matrix.KeyRune, Rune: r})
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	r, c, ok := m.cellAt(msg.X, msg.Y)
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if !ok {
			return m, nil
		}
		if msg.Ctrl {
			if m.opts.ReadOnly {
				m.ed.SelectCell(r, c)
				return m, nil
			}
			// Sin portapapeles solo se ancla el rango; ctrl+arrastre lo extiende.
			if m.ed.ClipboardText() == "" {
				m.ed.CtrlClick(m.ctx, r, c)
				return m, nil
			}
			return m, m.batch(func() matrix.BatchResult { return m.ed.CtrlClick(m.ctx, r, c) })
		}
		if msg.Shift {
			m.ed.ExtendSelection(r, c)
			return m, nil
		}
		rng, has := m.ed.Selection()
		inRange := has && rng.Contains(matrix.Point{Row: r, Col: c})
		if !m.opts.ReadOnly && m.ed.BeginDrag(r, c) {
			m.dragging, m.dragFrom = true, matrix.Point{Row: r, Col: c}
		}
		if !inRange {
			m.ed.SelectCell(r, c)
		}
	case msg.Action == tea.MouseActionMotion && msg.Ctrl && msg.Button == tea.MouseButtonLeft:
		if ok {
			m.ed.ExtendSelection(r, c)
		}
	case msg.Action == tea.MouseActionRelease && m.dragging:
		m.dragging = false
		if !ok || m.dragFrom == (matrix.Point{Row: r, Col: c}) {
			m.ed.CancelDrag()
			return m, nil
		}
		dup := msg.Alt
		return m, m.batch(func() matrix.BatchResult { return m.ed.EndDrag(m.ctx, r, c, dup) })
	}
	return m, nil
}

// batch ejecuta la escritura fuera del ciclo de dibujo.
func (m Model) batch(fn func() matrix.BatchResult) tea.Cmd {
	return func() tea.Msg { return batchMsg(fn()) }
}
