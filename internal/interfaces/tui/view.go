package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jhoicas/Cotizaciones-api/pkg/matrix"
)

const (
	cellWidth     = 7
	minLabelWidth = 10
	maxLabelWidth = 28
	// gridTop primera línea de datos: título, línea en blanco y encabezado.
	gridTop = 3
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	labelStyle    = lipgloss.NewStyle()
	cellStyle     = lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Right)
	pendingStyle  = cellStyle.Foreground(lipgloss.Color("214"))
	failedStyle   = cellStyle.Foreground(lipgloss.Color("196")).Bold(true)
	rangeStyle    = lipgloss.NewStyle().Background(lipgloss.Color("238"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	totalStyle    = cellStyle.Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	toastStyles   = map[matrix.Level]lipgloss.Style{
		matrix.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		matrix.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		matrix.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

func labelWidth(s matrix.Snapshot) int {
	w := minLabelWidth
	for _, r := range s.Rows {
		w = max(w, lipgloss.Width(r.Label)+1)
	}
	return min(w, maxLabelWidth)
}

// cellAt traduce coordenadas de pantalla a celda.
func (m Model) cellAt(x, y int) (int, int, bool) {
	s := m.ed.Snapshot()
	lw := labelWidth(s)
	r := y - gridTop
	if x < lw || r < 0 || r >= len(s.Rows) {
		return 0, 0, false
	}
	c := (x - lw) / cellWidth
	if c >= len(s.Columns) {
		return 0, 0, false
	}
	return r, c, true
}

// View implementa tea.Model.
func (m Model) View() string {
	s := m.ed.Snapshot()
	var b strings.Builder

	title := m.opts.Title
	if m.opts.ReadOnly {
		title += " (solo lectura)"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	switch s.State {
	case matrix.Loading:
		b.WriteString("Cargando…\n")
		return b.String()
	case matrix.LoadFailed:
		b.WriteString(toastStyles[matrix.LevelError].Render(s.Error))
		b.WriteString("\n")
		return b.String()
	}

	lw := labelWidth(s)
	label := labelStyle.Width(lw).MaxWidth(lw)
	b.WriteString(label.Render(""))
	for _, c := range s.Columns {
		b.WriteString(headerStyle.Width(cellWidth).Align(lipgloss.Right).Render(truncate(c, cellWidth-1)))
	}
	b.WriteString(headerStyle.Width(cellWidth).Align(lipgloss.Right).Render("Total"))
	b.WriteString("\n")

	for i, r := range s.Rows {
		b.WriteString(label.Render(truncate(r.Label, lw-1)))
		for j, cell := range r.Cells {
			b.WriteString(m.renderCell(s, matrix.Point{Row: i, Col: j}, cell))
		}
		b.WriteString(totalStyle.Render(strconv.Itoa(r.Total)))
		b.WriteString("\n")
	}
	if len(s.Rows) == 0 {
		b.WriteString(helpStyle.Render("Sin filas"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.toast.Message != "" {
		b.WriteString(toastStyles[m.toast.Level].Render(m.toast.Message))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("flechas mover · shift+flechas rango · enter editar · ctrl+c/ctrl+v copiar/pegar · ctrl+click pegar · arrastrar mover (alt duplica) · r reintentar · u revertir · q salir"))
	return b.String()
}

func (m Model) renderCell(s matrix.Snapshot, p matrix.Point, cell matrix.Cell) string {
	text := strconv.Itoa(cell.Quantity)
	style := cellStyle
	switch cell.Status {
	case matrix.Pending:
		style = pendingStyle
	case matrix.Failed:
		style = failedStyle
		text += "!"
	}
	if s.Editing && s.Selected == p {
		buf := []rune(s.Buffer)
		caret := min(max(s.Caret, 0), len(buf))
		text = string(buf[:caret]) + "▏" + string(buf[caret:])
	}
	if s.HasRange && s.Range.Contains(p) {
		style = style.Inherit(rangeStyle)
	}
	if s.Selected == p {
		style = style.Inherit(selectedStyle)
	}
	return style.Render(text)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
