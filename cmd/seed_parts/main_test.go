package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func TestReadParts_NormalizaYDeduplica(t *testing.T) {
	in := "part_number;description;category;unit;unit_cost\n" +
		"up-96; Poste 96\";Postes;;50,25\n" +
		"BM-08;Viga 8';Vigas;ea;20\n" +
		";sin número;;;1\n" +
		"UP-96;Poste 96 pulgadas;Postes;EA;51\n"

	parts, err := readParts(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, parts, 2)

	assert.Equal(t, "BM-08", parts[0].number)
	assert.Equal(t, "EA", parts[0].unit)
	assert.Equal(t, "UP-96", parts[1].number)
	assert.Equal(t, "Poste 96 pulgadas", parts[1].description, "gana la última fila")
	assert.Equal(t, "51.0000", parts[1].cost.StringFixed(4))
}

func TestReadParts_CostoInvalido(t *testing.T) {
	in := "h;h;h;h;h\nUP-96;Poste;Postes;EA;-3\n"
	_, err := readParts(strings.NewReader(in))
	assert.ErrorContains(t, err, "línea 2")
}

func TestReadParts_Latin1(t *testing.T) {
	raw, err := charmap.ISO8859_1.NewEncoder().String("h;h;h;h;h\nWD-01;Malla galvanizada de ángulo;Mallas;EA;12\n")
	require.NoError(t, err)

	parts, err := readParts(transform.NewReader(strings.NewReader(raw), charmap.ISO8859_1.NewDecoder()))
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "Malla galvanizada de ángulo", parts[0].description)
}

func TestEscapeSQL(t *testing.T) {
	assert.Equal(t, "Viga 8''", escapeSQL("Viga 8'"))
}
