package matrix

import "strings"

// Clipboard bloque de valores copiado desde una selección. Vive en una sola
// instancia de Editor y se descarta al recargar.
type Clipboard [][]string

// Empty informa si no hay nada copiado.
func (c Clipboard) Empty() bool {
	for _, r := range c {
		if len(r) > 0 {
			return false
		}
	}
	return true
}

// Size alto y ancho máximo del bloque.
func (c Clipboard) Size() (rows, cols int) {
	for _, r := range c {
		cols = max(cols, len(r))
	}
	return len(c), cols
}

func (c Clipboard) clone() Clipboard {
	if c == nil {
		return nil
	}
	out := make(Clipboard, len(c))
	for i, r := range c {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// FormatTSV serializa el bloque como texto separado por tabuladores, el
// formato que intercambian las hojas de cálculo.
func FormatTSV(c Clipboard) string {
	lines := make([]string, len(c))
	for i, r := range c {
		lines[i] = strings.Join(r, "\t")
	}
	return strings.Join(lines, "\n")
}

// ParseTSV interpreta texto separado por tabuladores. Ignora la línea vacía
// final que agregan la mayoría de hojas de cálculo.
func ParseTSV(s string) Clipboard {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	out := make(Clipboard, 0, len(lines))
	for _, line := range lines {
		out = append(out, strings.Split(line, "\t"))
	}
	return out
}
