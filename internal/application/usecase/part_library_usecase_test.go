package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/testutil"
)

func TestPartLibraryCreate_NormalizaYRechazaDuplicados(t *testing.T) {
	app := testutil.NewApp()
	ctx := context.Background()

	p, err := app.Library.Create(ctx, dto.PartLibraryRequest{PartNumber: " up-96 ", Description: "Paral 96\"", UnitCost: decimal.NewFromInt(50)})
	require.NoError(t, err)
	assert.Equal(t, "UP-96", p.PartNumber)
	assert.Equal(t, "EA", p.Unit, "unidad por defecto")
	assert.True(t, p.Active)

	_, err = app.Library.Create(ctx, dto.PartLibraryRequest{PartNumber: "UP-96"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = app.Library.Create(ctx, dto.PartLibraryRequest{PartNumber: "X", UnitCost: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPartLibraryUpdateDelete(t *testing.T) {
	app := testutil.NewApp()
	ctx := context.Background()
	p, err := app.Library.Create(ctx, dto.PartLibraryRequest{PartNumber: "BM-08", UnitCost: decimal.NewFromInt(20)})
	require.NoError(t, err)

	inactive := false
	up, err := app.Library.Update(ctx, dto.PartLibraryRequest{ID: p.ID, PartNumber: "bm-08", Unit: "pz", UnitCost: decimal.NewFromInt(22), Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "PZ", up.Unit)
	assert.False(t, up.Active)
	assert.Equal(t, "22.00", money(up.UnitCost))

	missing, err := app.Library.Update(ctx, dto.PartLibraryRequest{ID: "no-existe", PartNumber: "A"})
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, app.Library.Delete(ctx, p.ID))
	got, err := app.Library.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, app.Library.Delete(ctx, p.ID), domain.ErrNotFound)
}

func TestPartLibrarySearch_PaginaOrdenadoPorNumero(t *testing.T) {
	app := testutil.NewApp()
	ctx := context.Background()
	for _, n := range []string{"UP-96", "BM-08", "UP-120", "WB-1"} {
		_, err := app.Library.Create(ctx, dto.PartLibraryRequest{PartNumber: n, Category: "racks"})
		require.NoError(t, err)
	}

	out, err := app.Library.Search(ctx, "UP", dto.PageRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "UP-120", out.Items[0].PartNumber)
	assert.Equal(t, "UP-96", out.Items[1].PartNumber)

	page2, err := app.Library.Search(ctx, "", dto.PageRequest{Page: 2, PerPage: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, page2.Page.Total)
	require.Len(t, page2.Items, 1)
	assert.Equal(t, "WB-1", page2.Items[0].PartNumber)

	capped, err := app.Library.Search(ctx, "", dto.PageRequest{PerPage: 1000})
	require.NoError(t, err)
	assert.Equal(t, 100, capped.Page.PerPage)
}
