package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cotizaciones-api/internal/application/auth"
	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/export"
	"github.com/jhoicas/Cotizaciones-api/internal/client"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/blob"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/xlsx"
	apphttp "github.com/jhoicas/Cotizaciones-api/internal/interfaces/http"
	"github.com/jhoicas/Cotizaciones-api/internal/testutil"
	"github.com/jhoicas/Cotizaciones-api/pkg/matrix"
)

const (
	secret   = "secreto-de-pruebas"
	email    = "ana@racks.co"
	password = "secreto123"
)

type env struct {
	core *testutil.App
	sc   *testutil.Scenario
	c    *client.Client
	url  string
}

// newEnv levanta la API completa sobre httptest e inicia sesión como cotizador.
func newEnv(t *testing.T) *env {
	t.Helper()
	core := testutil.NewApp()
	sc := core.NewScenario(t)
	authUC := auth.NewAuthUseCase(core.Store.Users(), auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "test"})
	_, err := authUC.RegisterUser(context.Background(), dto.RegisterRequest{Email: email, Password: password, Role: "cotizador"})
	require.NoError(t, err)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:    authUC,
		LibraryUC: core.Library,
		PartUC:    core.Parts,
		QuoteUC:   core.Quotes,
		AuditUC:   core.Audit,
		Grid:      core.Grid,
		Tracking:  core.Tracking,
		Export:    export.NewService(core.Quotes, core.Grid, pdf.NewQuotePDFGenerator("Racks del Valle"), xlsx.NewGridWorkbook(), blob.NewMemory(), core.Metrics),
		JWTSecret: secret,
	})
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL, "", 0)
	require.NoError(t, err)
	_, err = c.Login(context.Background(), email, password)
	require.NoError(t, err)
	return &env{core: core, sc: sc, c: c, url: srv.URL}
}

// ──────────────────────────────────────────────────────────────────────────────
// Cliente
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_LoginGuardaElToken(t *testing.T) {
	e := newEnv(t)
	assert.NotEmpty(t, e.c.Token())

	anon, err := client.New(e.url, "", 0)
	require.NoError(t, err)
	_, err = anon.Quotes(context.Background(), "", 0, 0)
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))
}

func TestClient_ErroresDeLaAPI(t *testing.T) {
	e := newEnv(t)

	_, err := e.c.Login(context.Background(), email, "otra-clave")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)

	_, err = e.c.Summary(context.Background(), "no-existe")
	assert.True(t, client.IsStatus(err, http.StatusNotFound))
}

func TestClient_ErrorSinCuerpoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream caído", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := client.New(srv.URL, "tok", 0)
	require.NoError(t, err)
	_, err = c.Summary(context.Background(), "q1")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "BAD_GATEWAY", apiErr.Code)
	assert.Equal(t, "upstream caído", apiErr.Message)
}

func TestClient_EnviaBearerYRuta(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth, gotPath = r.Header.Get("Authorization"), r.URL.EscapedPath()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"column":{"id":"c1","name":"Bay 1"},"cells":[]}`))
	}))
	defer srv.Close()

	c, err := client.New(srv.URL+"/", "tok", 0)
	require.NoError(t, err)
	out, err := c.AddColumn(context.Background(), "bay", "Bay 1", "q1")
	require.NoError(t, err)
	assert.Equal(t, "c1", out.Column.ID)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "/api/definition/bay/Bay%201/q1", gotPath)
}

func TestClient_LecturasTipadas(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	sum, err := e.c.Summary(ctx, e.sc.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, "1576.75", sum.GrandTotal.StringFixed(2))

	parts, err := e.c.QuoteParts(ctx, e.sc.QuoteID)
	require.NoError(t, err)
	assert.Len(t, parts, 2)

	quotes, err := e.c.Quotes(ctx, "bodegas", 1, 10)
	require.NoError(t, err)
	require.Len(t, quotes.Items, 1)
	assert.Equal(t, "COT-000001", quotes.Items[0].Number)

	lib, err := e.c.Library(ctx, 1, 10, "")
	require.NoError(t, err)
	assert.Empty(t, lib.Items)

	progress, err := e.c.Progress(ctx, e.sc.QuoteID)
	require.NoError(t, err)
	assert.Len(t, progress.Lines, 2)

	book, err := e.c.Export(ctx, "definition", "bay", e.sc.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(book[:2]))
}

// ──────────────────────────────────────────────────────────────────────────────
// GridBackend con el editor de matriz
// ──────────────────────────────────────────────────────────────────────────────

func loadEditor(t *testing.T, e *env, scope, kind string) (*matrix.Editor, *client.GridBackend) {
	t.Helper()
	b, err := client.NewGridBackend(e.c, scope, kind, e.sc.QuoteID)
	require.NoError(t, err)
	ed := matrix.NewEditor(b, matrix.Options{Noun: "bahía", Plural: "bahías", Debounce: -1, Columns: b})
	t.Cleanup(ed.Close)
	require.NoError(t, ed.Load(context.Background(), b))
	return ed, b
}

func position(t *testing.T, ed *matrix.Editor, rowKey, column string) (int, int) {
	t.Helper()
	s := ed.Snapshot()
	r := slices.IndexFunc(s.Rows, func(row matrix.SnapshotRow) bool { return row.Key == rowKey })
	c := slices.Index(s.Columns, column)
	require.True(t, r >= 0 && c >= 0, "celda %s/%s no encontrada", rowKey, column)
	return r, c
}

func TestGridBackend_EdicionLlegaALaAPI(t *testing.T) {
	e := newEnv(t)
	ed, _ := loadEditor(t, e, "definition", "bay")

	r, c := position(t, ed, e.sc.Parts["BM-08"], "B2")
	require.True(t, ed.StartEditing(r, c))
	require.True(t, ed.CommitEdit("6", true))
	ed.Wait()
	assert.Equal(t, matrix.Committed, ed.Status(r, c))
	assert.NotEmpty(t, ed.Snapshot().Rows[r].Cells[c].ChildID, "la celda nueva recibe su id")

	g, err := e.core.Grid.Definition(context.Background(), "bay", e.sc.QuoteID)
	require.NoError(t, err)
	for _, row := range g.Rows {
		if row.ID != e.sc.Parts["BM-08"] {
			continue
		}
		for _, ch := range row.Children {
			if ch.Name == "B2" {
				assert.Equal(t, 6, ch.Quantity)
			}
		}
	}
}

func TestGridBackend_AltaYBajaDeColumna(t *testing.T) {
	e := newEnv(t)
	ed, _ := loadEditor(t, e, "definition", "bay")
	ctx := context.Background()

	require.NoError(t, ed.AddColumn(ctx, "B3"))
	r, c := position(t, ed, e.sc.Parts["UP-96"], "B3")
	assert.NotEmpty(t, ed.Snapshot().Rows[r].Cells[c].ChildID)

	g, err := e.core.Grid.Definition(ctx, "bay", e.sc.QuoteID)
	require.NoError(t, err)
	assert.Len(t, g.Columns, 3)

	err = ed.AddColumn(ctx, "B3")
	require.Error(t, err)

	ok, err := ed.DeleteColumn(ctx, "B3", true, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	g, err = e.core.Grid.Definition(ctx, "bay", e.sc.QuoteID)
	require.NoError(t, err)
	assert.Len(t, g.Columns, 2)
}

func TestGridBackend_GrillaCalculadaRechazaEscrituras(t *testing.T) {
	e := newEnv(t)
	ed, b := loadEditor(t, e, "count", "row")
	assert.True(t, b.ReadOnly())

	r, c := position(t, ed, e.sc.Parts["UP-96"], "R1")
	require.True(t, ed.StartEditing(r, c))
	require.True(t, ed.CommitEdit("99", true))
	ed.Wait()
	assert.Equal(t, matrix.Failed, ed.Status(r, c))
}

func TestNewGridBackend_Valida(t *testing.T) {
	c, err := client.New("localhost:8080", "", 0)
	require.NoError(t, err)

	_, err = client.NewGridBackend(c, "summary", "bay", "q1")
	assert.Error(t, err)
	_, err = client.NewGridBackend(c, "definition", "", "q1")
	assert.Error(t, err)

	b, err := client.NewGridBackend(c, " Count ", "ROW", "q1")
	require.NoError(t, err)
	assert.Equal(t, "count", b.Scope())
	assert.Equal(t, "row", b.Kind())

	_, err = b.WriteCell(context.Background(), matrix.CellWrite{RowKey: "r", Column: "X"})
	assert.ErrorIs(t, err, matrix.ErrUnknownColumn)
}
