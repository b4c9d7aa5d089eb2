package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func addParts(root *cobra.Command, a *app) {
	parts := &cobra.Command{
		Use:   "parts",
		Short: "Catálogo de partes",
	}

	var search string
	var page, perPage int
	list := &cobra.Command{
		Use:   "list",
		Short: "Lista el catálogo de partes",
		Example: `
quotectl parts list --search UP --per-page 50
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.client.Library(cmd.Context(), page, perPage, search)
			if err != nil {
				return err
			}
			t := newTable()
			t.AddRow(bold("PARTE"), bold("DESCRIPCIÓN"), bold("CATEGORÍA"), bold("UNIDAD"), bold("COSTO"))
			for _, p := range res.Items {
				t.AddRow(p.PartNumber, p.Description, p.Category, p.Unit, money(p.UnitCost))
			}
			_, _ = fmt.Fprintln(a.out, t)
			_, _ = fmt.Fprintf(a.out, "Página %d · %d de %d partes\n", res.Page.Page, len(res.Items), res.Page.Total)
			return nil
		},
	}
	list.Flags().StringVar(&search, "search", "", "filtra por número o descripción")
	list.Flags().IntVar(&page, "page", 1, "página")
	list.Flags().IntVar(&perPage, "per-page", 20, "partes por página")

	parts.AddCommand(list)
	root.AddCommand(parts)
}
