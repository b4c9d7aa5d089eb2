package tracking_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Alta, edición y baja
// ──────────────────────────────────────────────────────────────────────────────

func TestTrackingAdd_SumaLineasRepetidas(t *testing.T) {
	app := testutil.NewApp()
	sc := app.NewScenario(t)
	ctx := context.Background()

	out, err := app.Tracking.Add(ctx, entity.TrackingReceiving, "u1", dto.TrackingRequest{
		QuoteID: sc.QuoteID, Date: "2026-04-02", Reference: "Remisión 881",
		Parts: []dto.PartQuantityDTO{
			{QuotePartID: sc.Parts["UP-96"], Quantity: 4},
			{QuotePartID: sc.Parts["BM-08"], Quantity: 10},
			{QuotePartID: sc.Parts["UP-96"], Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "receiving", out.Kind)
	assert.Equal(t, "2026-04-02", out.Date)
	require.Len(t, out.Parts, 2)
	assert.Equal(t, 6, out.Parts[0].Quantity)

	list, err := app.Tracking.List(ctx, entity.TrackingReceiving, sc.QuoteID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	inst, err := app.Tracking.List(ctx, entity.TrackingInstallation, sc.QuoteID)
	require.NoError(t, err)
	assert.Empty(t, inst, "los tipos no se mezclan")
}

func TestTrackingAdd_Validaciones(t *testing.T) {
	app := testutil.NewApp()
	sc := app.NewScenario(t)
	other := app.NewScenario(t)

	tests := []struct {
		name string
		in   dto.TrackingRequest
		want error
	}{
		{"sin cotización", dto.TrackingRequest{Date: "2026-04-02"}, domain.ErrInvalidInput},
		{"fecha inválida", dto.TrackingRequest{QuoteID: sc.QuoteID, Date: "02/04/2026"}, domain.ErrInvalidInput},
		{"cantidad negativa", dto.TrackingRequest{QuoteID: sc.QuoteID, Date: "2026-04-02",
			Parts: []dto.PartQuantityDTO{{QuotePartID: sc.Parts["UP-96"], Quantity: -1}}}, domain.ErrInvalidInput},
		{"parte de otra cotización", dto.TrackingRequest{QuoteID: sc.QuoteID, Date: "2026-04-02",
			Parts: []dto.PartQuantityDTO{{QuotePartID: other.Parts["UP-96"], Quantity: 1}}}, domain.ErrNotFound},
		{"cotización inexistente", dto.TrackingRequest{QuoteID: "no-existe", Date: "2026-04-02"}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.Tracking.Add(context.Background(), entity.TrackingInstallation, "u1", tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTrackingUpdateDelete_RespetanElTipo(t *testing.T) {
	app := testutil.NewApp()
	sc := app.NewScenario(t)
	ctx := context.Background()

	day, err := app.Tracking.Add(ctx, entity.TrackingInstallation, "u1", dto.TrackingRequest{
		QuoteID: sc.QuoteID, Date: "2026-04-10",
		Parts:   []dto.PartQuantityDTO{{QuotePartID: sc.Parts["UP-96"], Quantity: 3}},
	})
	require.NoError(t, err)

	req := dto.TrackingRequest{
		ID: day.ID, QuoteID: sc.QuoteID, Date: "2026-04-11", Notes: "cuadrilla 2",
		Parts: []dto.PartQuantityDTO{{QuotePartID: sc.Parts["UP-96"], Quantity: 5}},
	}
	_, err = app.Tracking.Update(ctx, entity.TrackingReceiving, req)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	up, err := app.Tracking.Update(ctx, entity.TrackingInstallation, req)
	require.NoError(t, err)
	assert.Equal(t, "2026-04-11", up.Date)
	assert.Equal(t, 5, up.Parts[0].Quantity)

	req.ID = ""
	_, err = app.Tracking.Update(ctx, entity.TrackingInstallation, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.ErrorIs(t, app.Tracking.Delete(ctx, entity.TrackingReceiving, day.ID), domain.ErrNotFound)
	require.NoError(t, app.Tracking.Delete(ctx, entity.TrackingInstallation, day.ID))
	assert.ErrorIs(t, app.Tracking.Delete(ctx, entity.TrackingInstallation, day.ID), domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Avance
// ──────────────────────────────────────────────────────────────────────────────

func TestProgress_RequeridoContraRecibidoEInstalado(t *testing.T) {
	app := testutil.NewApp()
	sc := app.NewScenario(t)
	ctx := context.Background()

	add := func(kind entity.TrackingKind, date string, up, bm int) {
		_, err := app.Tracking.Add(ctx, kind, "u1", dto.TrackingRequest{
			QuoteID: sc.QuoteID, Date: date,
			Parts: []dto.PartQuantityDTO{
				{QuotePartID: sc.Parts["UP-96"], Quantity: up},
				{QuotePartID: sc.Parts["BM-08"], Quantity: bm},
			},
		})
		require.NoError(t, err)
	}
	add(entity.TrackingReceiving, "2026-04-01", 6, 23)
	add(entity.TrackingReceiving, "2026-04-03", 6, 2)
	add(entity.TrackingInstallation, "2026-04-05", 4, 10)

	p, err := app.Tracking.Progress(ctx, sc.QuoteID)
	require.NoError(t, err)
	require.Len(t, p.Lines, 2)

	up := p.Lines[0]
	assert.Equal(t, "UP-96", up.PartNumber)
	assert.Equal(t, 10, up.Required)
	assert.Equal(t, 12, up.Received)
	assert.Equal(t, 4, up.Installed)
	assert.Zero(t, up.RemainingToReceive, "lo recibido de más no deja pendiente negativo")
	assert.Equal(t, 6, up.RemainingToInstall)

	bm := p.Lines[1]
	assert.Equal(t, 23, bm.Required)
	assert.Equal(t, 25, bm.Received)
	assert.Equal(t, 13, bm.RemainingToInstall)
}

func TestProgress_CotizacionInexistente(t *testing.T) {
	app := testutil.NewApp()
	_, err := app.Tracking.Progress(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTracking_BorrarParteQuitaSusLineas(t *testing.T) {
	app := testutil.NewApp()
	sc := app.NewScenario(t)
	ctx := context.Background()

	_, err := app.Tracking.Add(ctx, entity.TrackingReceiving, "u1", dto.TrackingRequest{
		QuoteID: sc.QuoteID, Date: "2026-04-01",
		Parts: []dto.PartQuantityDTO{
			{QuotePartID: sc.Parts["UP-96"], Quantity: 1},
			{QuotePartID: sc.Parts["BM-08"], Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.NoError(t, app.Parts.Delete(ctx, sc.Parts["BM-08"]))

	list, err := app.Tracking.List(ctx, entity.TrackingReceiving, sc.QuoteID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Parts, 1)
	assert.Equal(t, sc.Parts["UP-96"], list[0].Parts[0].QuotePartID)
}
