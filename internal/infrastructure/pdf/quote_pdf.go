// Package pdf genera la representación impresa de una cotización.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Cliente + Proyecto   │  N° Cotización + Fecha       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Parte | Descripción | Unid | Cant | P.Unit | Total   │
//	│  COSTOS ADICIONALES                                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Costo / Margen / Venta / Impuesto / TOTAL          │
//	│  FOOTER: QR con el número + notas                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// QuotePDFGenerator implementa ports.QuotePDFRenderer usando Maroto v2.
type QuotePDFGenerator struct {
	company string
	printer *message.Printer
	now     func() time.Time
}

// NewQuotePDFGenerator construye el generador; company aparece como autor.
func NewQuotePDFGenerator(company string) *QuotePDFGenerator {
	return &QuotePDFGenerator{
		company: company,
		printer: message.NewPrinter(language.AmericanEnglish),
		now:     time.Now,
	}
}

// RenderQuote genera el PDF y devuelve sus bytes.
func (g *QuotePDFGenerator) RenderQuote(_ context.Context, quote *dto.QuoteResponse, summary *dto.SummaryResponse) ([]byte, error) {
	if quote == nil || summary == nil {
		return nil, fmt.Errorf("pdf: cotización o resumen vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Cotización "+quote.Number, true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(quote))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.tableDetailRows(summary.Lines)...)
	if len(summary.CostItems) > 0 {
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.2}))
		m.AddRows(g.costItemRows(summary.CostItems)...)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(summary))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(quote))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: cliente + proyecto (izq) y N° cotización + fecha (der).
func (g *QuotePDFGenerator) headerRow(q *dto.QuoteResponse) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New(q.CustomerName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(q.ProjectName, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
			text.New(nonEmpty(q.Location, ""), props.Text{
				Size: 8, Top: 14, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("COTIZACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(q.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+g.now().Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Parte", 2, align.Left),
		h("Descripción", 4, align.Left),
		h("Unid.", 1, align.Center),
		h("Cant.", 1, align.Center),
		h("P. Unit.", 2, align.Right),
		h("Total", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func (g *QuotePDFGenerator) tableDetailRows(lines []dto.SummaryLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(l.PartNumber, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(l.Description, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(l.Unit, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(fmt.Sprint(l.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(g.money(l.UnitCost), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(g.money(l.Total), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func (g *QuotePDFGenerator) costItemRows(items []dto.CostItemDTO) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("COSTOS ADICIONALES", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}
	for _, it := range items {
		rows = append(rows, row.New(6).Add(
			col.New(10).Add(text.New(it.Description, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(g.money(it.Amount), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

// totalsRow: bloque de totales alineado a la derecha.
func (g *QuotePDFGenerator) totalsRow(s *dto.SummaryResponse) core.Row {
	label := func(v string, top float64) core.Component {
		return text.New(v, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(v string, top float64) core.Component {
		return text.New(v, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	grand := func(v string, top float64) core.Component {
		return text.New(v, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: top,
		})
	}
	return row.New(34).Add(
		col.New(4),
		col.New(4).Add(
			label("Materiales:", 0),
			label("Costos adicionales:", 5),
			label(fmt.Sprintf("Margen (%s%%):", s.MarginPercent.String()), 10),
			label("Precio de venta:", 15),
			label(fmt.Sprintf("Impuesto (%s%%):", s.TaxPercent.String()), 20),
			grand("TOTAL:", 26),
		),
		col.New(4).Add(
			value(g.money(s.MaterialCost), 0),
			value(g.money(s.ExtraCost), 5),
			value(g.money(s.MarginAmount), 10),
			value(g.money(s.SellPrice), 15),
			value(g.money(s.TaxAmount), 20),
			grand(g.money(s.GrandTotal), 26),
		),
	)
}

// footerRow: QR con el número de cotización y notas.
func footerRow(q *dto.QuoteResponse) core.Row {
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(q.Number, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New(nonEmpty(q.Notes, "Precios sujetos a cambio sin previo aviso."), props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// money formatea con separador de miles y dos decimales: 1234.5 → "$1,234.50".
func (g *QuotePDFGenerator) money(d decimal.Decimal) string {
	return g.printer.Sprintf("$%.2f", d.Round(2).InexactFloat64())
}
