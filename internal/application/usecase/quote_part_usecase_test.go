package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/testutil"
)

func TestQuotePartCreate_CopiaDelCatalogo(t *testing.T) {
	app := testutil.NewApp()
	sc := app.NewScenario(t)
	ctx := context.Background()

	item, err := app.Library.Create(ctx, dto.PartLibraryRequest{
		PartNumber: "RS-42", Description: "Soporte de fila", Unit: "pz", UnitCost: decimal.RequireFromString("12.50"),
	})
	require.NoError(t, err)

	p, err := app.Parts.Create(ctx, dto.CreateQuotePartRequest{QuoteID: sc.QuoteID, PartLibraryID: item.ID, BaseQuantity: 4})
	require.NoError(t, err)
	assert.Equal(t, "RS-42", p.PartNumber)
	assert.Equal(t, "Soporte de fila", p.Description)
	assert.Equal(t, "PZ", p.Unit)
	assert.Equal(t, "12.50", money(p.UnitCost))
	assert.Equal(t, item.ID, p.PartLibraryID)

	tk, err := app.Grid.Takeoff(ctx, sc.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, 4, tk.Total(p.ID), "sin celdas escritas solo cuenta la base")

	override := decimal.NewFromInt(9)
	p2, err := app.Parts.Create(ctx, dto.CreateQuotePartRequest{QuoteID: sc.QuoteID, PartLibraryID: item.ID, PartNumber: "rs-42b", UnitCost: &override})
	require.NoError(t, err)
	assert.Equal(t, "RS-42B", p2.PartNumber)
	assert.Equal(t, "9.00", money(p2.UnitCost))
}

func TestQuotePartCreate_Errores(t *testing.T) {
	app := testutil.NewApp()
	sc := app.NewScenario(t)
	ctx := context.Background()

	_, err := app.Parts.Create(ctx, dto.CreateQuotePartRequest{QuoteID: sc.QuoteID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin número de parte")

	_, err = app.Parts.Create(ctx, dto.CreateQuotePartRequest{QuoteID: sc.QuoteID, PartNumber: "up-96"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = app.Parts.Create(ctx, dto.CreateQuotePartRequest{QuoteID: "no-existe", PartNumber: "X"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = app.Parts.Create(ctx, dto.CreateQuotePartRequest{QuoteID: sc.QuoteID, PartLibraryID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQuotePartCreate_FalloRevierteLaParte(t *testing.T) {
	app := testutil.NewApp()
	sc := app.NewScenario(t)
	ctx := context.Background()
	app.Store.FailNext("CreateDefinitionCells", domain.ErrConflict)

	_, err := app.Parts.Create(ctx, dto.CreateQuotePartRequest{QuoteID: sc.QuoteID, PartNumber: "WB-1"})
	require.ErrorIs(t, err, domain.ErrConflict)

	list, err := app.Parts.ListByQuote(ctx, sc.QuoteID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestQuotePartUpdateDelete(t *testing.T) {
	app := testutil.NewApp()
	sc := app.NewScenario(t)
	ctx := context.Background()

	base := 3
	p, err := app.Parts.Update(ctx, dto.UpdateQuotePartRequest{ID: sc.Parts["UP-96"], BaseQuantity: &base})
	require.NoError(t, err)
	assert.Equal(t, 3, p.BaseQuantity)

	tk, err := app.Grid.Takeoff(ctx, sc.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, 13, tk.Total(sc.Parts["UP-96"]), "10 de bahías más la base")

	neg := -1
	_, err = app.Parts.Update(ctx, dto.UpdateQuotePartRequest{ID: sc.Parts["UP-96"], BaseQuantity: &neg})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, app.Parts.Delete(ctx, sc.Parts["BM-08"]))
	g, err := app.Grid.Definition(ctx, entity.KindRow, sc.QuoteID)
	require.NoError(t, err)
	require.Len(t, g.Rows, 1)
	assert.Equal(t, sc.Parts["UP-96"], g.Rows[0].ID)
}
