package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func addQuote(root *cobra.Command, a *app) {
	quote := &cobra.Command{
		Use:   "quote",
		Short: "Cotizaciones",
	}

	summary := &cobra.Command{
		Use:   "summary QUOTE_ID",
		Short: "Resumen de costos, margen e impuestos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.client.Summary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(a.out, "%s %s\n\n", bold(s.Number), s.CustomerName)

			t := newTable()
			t.AddRow(bold("PARTE"), bold("DESCRIPCIÓN"), bold("CANT."), bold("COSTO U."), bold("TOTAL"))
			for _, l := range s.Lines {
				t.AddRow(l.PartNumber, l.Description, strconv.Itoa(l.Quantity), money(l.UnitCost), money(l.Total))
			}
			_, _ = fmt.Fprintln(a.out, t)

			totals := newTable()
			totals.AddRow("Materiales", money(s.MaterialCost))
			totals.AddRow("Costos adicionales", money(s.ExtraCost))
			totals.AddRow("Costo total", money(s.TotalCost))
			totals.AddRow("Margen "+s.MarginPercent.String()+"%", money(s.MarginAmount))
			totals.AddRow("Precio de venta", money(s.SellPrice))
			totals.AddRow("IVA "+s.TaxPercent.String()+"%", money(s.TaxAmount))
			totals.AddRow(bold("Total"), bold(money(s.GrandTotal)))
			_, _ = fmt.Fprintln(a.out)
			_, _ = fmt.Fprintln(a.out, totals)
			return nil
		},
	}

	issue := &cobra.Command{
		Use:   "issue QUOTE_ID",
		Short: "Emite y archiva el PDF de la cotización",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.client.Issue(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(a.out, "%s %s (%d bytes)\n", green("Emitida"), doc.Name, doc.Size)
			return nil
		},
	}

	quote.AddCommand(summary, issue)
	root.AddCommand(quote)
}
