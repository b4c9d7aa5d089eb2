// seed_parts genera un script SQL para poblar el catálogo de partes
// (part_library) a partir de un CSV exportado de la lista de precios.
//
// Uso: go run ./cmd/seed_parts [ruta/partes.csv] [-latin1]
// Columnas: part_number;description;category;unit;unit_cost (con encabezado).
// Escribe: internal/infrastructure/postgres/migrations/002_seed_part_library.sql
package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type part struct {
	number      string
	description string
	category    string
	unit        string
	cost        decimal.Decimal
}

func main() {
	csvPath := "partes.csv"
	latin1 := false
	for _, arg := range os.Args[1:] {
		if arg == "-latin1" {
			latin1 = true
			continue
		}
		csvPath = arg
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	// Las hojas de precios exportadas desde Excel en Windows vienen en Latin-1
	var in io.Reader = f
	if latin1 {
		in = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	parts, err := readParts(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_part_library.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	out.WriteString("-- Catálogo de partes\n")
	out.WriteString("-- Generado desde " + escapeSQL(filepath.Base(csvPath)) + "\n\n")
	if len(parts) == 0 {
		out.WriteString("SELECT 1;\n")
	} else {
		out.WriteString("INSERT INTO part_library (id, part_number, description, category, unit, unit_cost) VALUES\n")
		for i, p := range parts {
			sep := ","
			if i == len(parts)-1 {
				sep = ""
			}
			fmt.Fprintf(out, "  ('%s', '%s', '%s', '%s', '%s', %s)%s\n",
				uuid.New(), escapeSQL(p.number), escapeSQL(p.description),
				escapeSQL(p.category), escapeSQL(p.unit), p.cost.StringFixed(4), sep)
		}
		out.WriteString("ON CONFLICT (part_number) DO UPDATE SET\n")
		out.WriteString("  description = EXCLUDED.description,\n")
		out.WriteString("  category = EXCLUDED.category,\n")
		out.WriteString("  unit = EXCLUDED.unit,\n")
		out.WriteString("  unit_cost = EXCLUDED.unit_cost,\n")
		out.WriteString("  updated_at = now();\n")
	}

	fmt.Printf("Generado %s: %d partes\n", outPath, len(parts))
}

// readParts lee el CSV separado por ';'. Un número de parte repetido
// conserva la última fila.
func readParts(r io.Reader) ([]part, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("encabezado: %w", err)
	}

	byNumber := make(map[string]part)
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if len(rec) < 5 {
			return nil, fmt.Errorf("línea %d: se esperaban 5 columnas, hay %d", line, len(rec))
		}
		number := strings.ToUpper(strings.TrimSpace(rec[0]))
		if number == "" {
			continue
		}
		// Admite coma decimal (1234,50)
		cost, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(rec[4]), ",", "."))
		if err != nil || cost.IsNegative() {
			return nil, fmt.Errorf("línea %d: costo inválido %q", line, rec[4])
		}
		unit := strings.ToUpper(strings.TrimSpace(rec[3]))
		if unit == "" {
			unit = "EA"
		}
		byNumber[number] = part{
			number:      number,
			description: strings.TrimSpace(rec[1]),
			category:    strings.TrimSpace(rec[2]),
			unit:        unit,
			cost:        cost,
		}
	}

	parts := make([]part, 0, len(byNumber))
	for _, p := range byNumber {
		parts = append(parts, p)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].number < parts[j].number })
	return parts, nil
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
