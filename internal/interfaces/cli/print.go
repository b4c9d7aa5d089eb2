package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/Cotizaciones-api/pkg/matrix"
)

var (
	bold    = color.New(color.Bold).SprintFunc()
	green   = color.New(color.FgGreen).SprintFunc()
	red     = color.New(color.FgRed).SprintFunc()
	yellow  = color.New(color.FgYellow).SprintFunc()
	printer = message.NewPrinter(language.AmericanEnglish)
)

func newTable() *uitable.Table {
	t := uitable.New()
	t.Separator = "  "
	return t
}

func money(d decimal.Decimal) string {
	return printer.Sprintf("$%.2f", d.Round(2).InexactFloat64())
}

// noticePrinter imprime los avisos del editor en stderr.
type noticePrinter struct{ w io.Writer }

func (p noticePrinter) Notify(n matrix.Notice) {
	switch n.Level {
	case matrix.LevelError:
		_, _ = fmt.Fprintln(p.w, red("✗ "+n.Message))
	case matrix.LevelSuccess:
		_, _ = fmt.Fprintln(p.w, green("✓ "+n.Message))
	default:
		_, _ = fmt.Fprintln(p.w, n.Message)
	}
}

// printGrid imprime la instantánea de la matriz con total por fila.
func printGrid(w io.Writer, s matrix.Snapshot, readOnly bool) {
	t := newTable()
	header := []any{bold("")}
	for _, c := range s.Columns {
		header = append(header, bold(c))
	}
	header = append(header, bold("Total"))
	t.AddRow(header...)
	for _, r := range s.Rows {
		row := []any{r.Label}
		for _, c := range r.Cells {
			row = append(row, cellText(c))
		}
		row = append(row, strconv.Itoa(r.Total))
		t.AddRow(row...)
	}
	_, _ = fmt.Fprintln(w, t)
	if readOnly {
		_, _ = fmt.Fprintln(w, yellow("(solo lectura: calculada desde definiciones y conteos)"))
	}
}

func cellText(c matrix.Cell) string {
	v := strconv.Itoa(c.Quantity)
	switch c.Status {
	case matrix.Pending:
		return yellow(v + "*")
	case matrix.Failed:
		return red(v + "!")
	}
	return v
}

func printBatch(w io.Writer, res matrix.BatchResult) {
	if res.Failed == 0 {
		_, _ = fmt.Fprintln(w, green(fmt.Sprintf("%d celdas actualizadas", res.Succeeded)))
		return
	}
	_, _ = fmt.Fprintln(w, red(fmt.Sprintf("%d de %d celdas fallaron", res.Failed, res.Total)))
	for _, k := range res.FailedCells {
		_, _ = fmt.Fprintf(w, "  %s / %s\n", k.RowKey, k.Column)
	}
}
