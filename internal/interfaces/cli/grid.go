package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/jhoicas/Cotizaciones-api/internal/client"
	"github.com/jhoicas/Cotizaciones-api/internal/interfaces/tui"
	"github.com/jhoicas/Cotizaciones-api/pkg/matrix"
)

var nouns = map[string][2]string{
	"bay":       {"bahía", "bahías"},
	"frameline": {"frameline", "framelines"},
	"flue":      {"flue", "flues"},
	"row":       {"fila", "filas"},
}

func editorOptions(kind string) matrix.Options {
	n, ok := nouns[strings.ToLower(kind)]
	if !ok {
		n = [2]string{kind, kind}
	}
	return matrix.Options{Noun: n[0], Plural: n[1], Order: matrix.FirstSeen}
}

// openEditor carga la grilla en un editor enlazado a la API.
func (a *app) openEditor(ctx context.Context, scope, kind, quoteID string, n matrix.Notifier) (*matrix.Editor, *client.GridBackend, error) {
	b, err := client.NewGridBackend(a.client, scope, kind, quoteID)
	if err != nil {
		return nil, nil, err
	}
	opts := editorOptions(kind)
	opts.Debounce = a.settings.Debounce
	opts.Columns = b
	opts.Notifier = n
	ed := matrix.NewEditor(b, opts)
	if err := ed.Load(ctx, b); err != nil {
		ed.Close()
		return nil, nil, err
	}
	return ed, b, nil
}

// locate busca la celda por fila (id, etiqueta o número de parte) y columna.
func locate(s matrix.Snapshot, row, column string) (int, int, error) {
	r := -1
	for i, sr := range s.Rows {
		fields := strings.Fields(sr.Label)
		if sr.Key == row || strings.EqualFold(sr.Label, row) || (len(fields) > 0 && strings.EqualFold(fields[0], row)) {
			r = i
			break
		}
	}
	if r < 0 {
		return 0, 0, fmt.Errorf("fila %q no encontrada", row)
	}
	for j, c := range s.Columns {
		if strings.EqualFold(c, column) {
			return r, j, nil
		}
	}
	return 0, 0, fmt.Errorf("columna %q no encontrada", column)
}

func addGrid(root *cobra.Command, a *app) {
	grid := &cobra.Command{
		Use:   "grid",
		Short: "Grillas de definición y conteo (bay, frameline, flue, row)",
	}

	show := &cobra.Command{
		Use:   "show SCOPE KIND QUOTE_ID",
		Short: "Muestra una grilla",
		Example: `
quotectl grid show definition bay 0b7c...
quotectl grid show count row 0b7c...
`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, b, err := a.openEditor(cmd.Context(), args[0], args[1], args[2], noticePrinter{a.errOut})
			if err != nil {
				return err
			}
			defer ed.Close()
			printGrid(a.out, ed.Snapshot(), b.ReadOnly())
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set SCOPE KIND QUOTE_ID ROW COLUMN QUANTITY",
		Short: "Escribe una celda",
		Example: `
quotectl grid set definition bay 0b7c... UP-96 B1 4
`,
		Args: cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := strconv.Atoi(args[5]); err != nil {
				return fmt.Errorf("cantidad inválida %q", args[5])
			}
			ed, _, err := a.openEditor(cmd.Context(), args[0], args[1], args[2], noticePrinter{a.errOut})
			if err != nil {
				return err
			}
			defer ed.Close()
			r, c, err := locate(ed.Snapshot(), args[3], args[4])
			if err != nil {
				return err
			}
			ed.StartEditing(r, c)
			ed.CommitEdit(args[5], true)
			ed.FinishEditing()
			ed.Wait()
			if ed.Status(r, c) == matrix.Failed {
				return fmt.Errorf("no se pudo actualizar %s/%s", args[3], args[4])
			}
			_, _ = fmt.Fprintf(a.out, "%s %s/%s = %d\n", green("Actualizada"), args[3], args[4], ed.Value(r, c))
			return nil
		},
	}

	var at string
	var fromClipboard bool
	paste := &cobra.Command{
		Use:   "paste SCOPE KIND QUOTE_ID --at ROW,COLUMN",
		Short: "Pega un bloque TSV (stdin o portapapeles) desde una celda",
		Example: `
pbpaste | quotectl grid paste definition bay 0b7c... --at UP-96,B1
quotectl grid paste definition bay 0b7c... --at UP-96,B1 --clipboard
`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, column, ok := strings.Cut(at, ",")
			if !ok {
				return fmt.Errorf("--at debe tener la forma FILA,COLUMNA")
			}
			var text string
			if fromClipboard {
				s, err := clipboard.ReadAll()
				if err != nil {
					return fmt.Errorf("leer portapapeles: %w", err)
				}
				text = s
			} else {
				b, err := io.ReadAll(a.in)
				if err != nil {
					return fmt.Errorf("leer stdin: %w", err)
				}
				text = string(b)
			}
			if matrix.ParseTSV(text).Empty() {
				return fmt.Errorf("no hay datos para pegar")
			}

			ed, _, err := a.openEditor(cmd.Context(), args[0], args[1], args[2], noticePrinter{a.errOut})
			if err != nil {
				return err
			}
			defer ed.Close()
			r, c, err := locate(ed.Snapshot(), strings.TrimSpace(row), strings.TrimSpace(column))
			if err != nil {
				return err
			}
			ed.SetClipboardText(text)
			res := ed.PasteAt(cmd.Context(), r, c)
			printBatch(a.out, res)
			if res.Failed > 0 {
				return fmt.Errorf("pegado incompleto")
			}
			return nil
		},
	}
	paste.Flags().StringVar(&at, "at", "", "celda superior izquierda FILA,COLUMNA")
	paste.Flags().BoolVar(&fromClipboard, "clipboard", false, "lee del portapapeles del sistema en lugar de stdin")

	addColumn := &cobra.Command{
		Use:   "add-column KIND QUOTE_ID NAME",
		Short: "Agrega una columna en cero",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, _, err := a.openEditor(cmd.Context(), "definition", args[0], args[1], noticePrinter{a.out})
			if err != nil {
				return err
			}
			defer ed.Close()
			return ed.AddColumn(cmd.Context(), args[2])
		},
	}

	var yes bool
	deleteColumn := &cobra.Command{
		Use:   "delete-column KIND QUOTE_ID NAME",
		Short: "Elimina una columna y sus celdas",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, _, err := a.openEditor(cmd.Context(), "definition", args[0], args[1], noticePrinter{a.out})
			if err != nil {
				return err
			}
			defer ed.Close()
			confirm := func(name string) bool {
				_, _ = fmt.Fprintf(a.errOut, "¿Eliminar %s y todas sus cantidades? [s/N] ", name)
				line, _ := bufio.NewReader(a.in).ReadString('\n')
				answer := strings.ToLower(strings.TrimSpace(line))
				return answer == "s" || answer == "si" || answer == "sí" || answer == "y"
			}
			deleted, err := ed.DeleteColumn(cmd.Context(), args[2], yes, confirm)
			if err != nil {
				return err
			}
			if !deleted {
				_, _ = fmt.Fprintln(a.out, "Cancelado")
			}
			return nil
		},
	}
	deleteColumn.Flags().BoolVarP(&yes, "yes", "y", false, "no pedir confirmación")

	edit := &cobra.Command{
		Use:   "edit SCOPE KIND QUOTE_ID",
		Short: "Abre el editor interactivo de la grilla",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			notices := tui.NewNotices()
			ed, b, err := a.openEditor(cmd.Context(), args[0], args[1], args[2], notices)
			if err != nil {
				return err
			}
			defer ed.Close()
			title := fmt.Sprintf("%s · %s · %s", b.Scope(), b.Kind(), b.QuoteID())
			return tui.Run(cmd.Context(), ed, notices, tui.Options{Title: title, ReadOnly: b.ReadOnly()})
		},
	}

	grid.AddCommand(show, set, paste, addColumn, deleteColumn, edit)
	root.AddCommand(grid)
}
