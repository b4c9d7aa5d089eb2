package cli_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cotizaciones-api/internal/application/auth"
	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/export"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/blob"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/xlsx"
	"github.com/jhoicas/Cotizaciones-api/internal/interfaces/cli"
	apphttp "github.com/jhoicas/Cotizaciones-api/internal/interfaces/http"
	"github.com/jhoicas/Cotizaciones-api/internal/testutil"
)

const (
	secret   = "secreto-de-pruebas"
	email    = "ana@racks.co"
	password = "secreto123"
)

type env struct {
	core   *testutil.App
	sc     *testutil.Scenario
	server string
	config string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	color.NoColor = true
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
	return &env{core: core, sc: sc, server: srv.URL, config: filepath.Join(t.TempDir(), "quotectl.yaml")}
}

// run ejecuta quotectl con la configuración del entorno.
func (e *env) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := cli.NewWithIO(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String() + errOut.String(), err
}

func (e *env) login(t *testing.T) {
	t.Helper()
	_, err := e.run(t, "", "--server", e.server, "login", "--email", email, "--password", password)
	require.NoError(t, err)
}

func (e *env) definition(t *testing.T, part, column string) int {
	t.Helper()
	g, err := e.core.Grid.Definition(context.Background(), entity.KindBay, e.sc.QuoteID)
	require.NoError(t, err)
	for _, r := range g.Rows {
		if r.ID != e.sc.Parts[part] {
			continue
		}
		for _, ch := range r.Children {
			if ch.Name == column {
				return ch.Quantity
			}
		}
	}
	t.Fatalf("celda %s/%s no encontrada", part, column)
	return 0
}

// ──────────────────────────────────────────────────────────────────────────────
// Sesión y configuración
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_GuardaTokenYServidor(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "", "--server", e.server, "login", "--email", email, "--password", password)
	require.NoError(t, err)
	assert.Contains(t, out, "Sesión iniciada como ana@racks.co (cotizador)")

	raw, err := os.ReadFile(e.config)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "token:")
	assert.Contains(t, string(raw), e.server)

	// Sin --server se usa el guardado.
	out, err = e.run(t, "", "quote", "summary", e.sc.QuoteID)
	require.NoError(t, err)
	assert.Contains(t, out, "COT-000001")
	assert.Contains(t, out, "$1,576.75")
}

func TestLogin_LeeLaContraseñaDeStdin(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, password+"\n", "--server", e.server, "login", "--email", email)
	require.NoError(t, err)

	_, err = e.run(t, "otra\n", "--server", e.server, "login", "--email", email)
	require.Error(t, err)
}

func TestComandos_SinSesionFallan(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "", "--server", e.server, "parts", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestPartsList_MuestraElCatalogo(t *testing.T) {
	e := newEnv(t)
	_, err := e.core.Library.Create(context.Background(), dto.PartLibraryRequest{PartNumber: "RS-42", Description: "Riel"})
	require.NoError(t, err)
	e.login(t)

	out, err := e.run(t, "", "parts", "list", "--search", "rs")
	require.NoError(t, err)
	assert.Contains(t, out, "PARTE")
	assert.Contains(t, out, "RS-42")
	assert.Contains(t, out, "1 de 1 partes")
}

func TestGridShow_IncluyeTotales(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	out, err := e.run(t, "", "grid", "show", "count", "row", e.sc.QuoteID)
	require.NoError(t, err)
	assert.Contains(t, out, "BM-08 BM-08")
	assert.Contains(t, out, "23")
	assert.Contains(t, out, "solo lectura")
}

// ──────────────────────────────────────────────────────────────────────────────
// Escrituras
// ──────────────────────────────────────────────────────────────────────────────

func TestGridSet_EscribeLaCelda(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	out, err := e.run(t, "", "grid", "set", "definition", "bay", e.sc.QuoteID, "bm-08", "b2", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "Actualizada")
	assert.Equal(t, 6, e.definition(t, "BM-08", "B2"))

	_, err = e.run(t, "", "grid", "set", "definition", "bay", e.sc.QuoteID, "XX-00", "B1", "1")
	assert.Error(t, err)
	_, err = e.run(t, "", "grid", "set", "definition", "bay", e.sc.QuoteID, "UP-96", "B1", "muchos")
	assert.Error(t, err)
}

func TestGridSet_GrillaCalculadaFalla(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	_, err := e.run(t, "", "grid", "set", "count", "row", e.sc.QuoteID, "UP-96", "R1", "3")
	assert.Error(t, err)
}

func TestGridPaste_DesdeStdin(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	out, err := e.run(t, "7\t8\n5\t0\n", "grid", "paste", "definition", "bay", e.sc.QuoteID, "--at", "UP-96,B1")
	require.NoError(t, err)
	assert.Contains(t, out, "4 celdas actualizadas")
	assert.Equal(t, 7, e.definition(t, "UP-96", "B1"))
	assert.Equal(t, 8, e.definition(t, "UP-96", "B2"))
	assert.Equal(t, 5, e.definition(t, "BM-08", "B1"))
	assert.Equal(t, 0, e.definition(t, "BM-08", "B2"))

	_, err = e.run(t, "", "grid", "paste", "definition", "bay", e.sc.QuoteID, "--at", "UP-96,B1")
	assert.Error(t, err, "sin datos no se pega nada")
}

func TestGridColumnas_AltaYBajaConConfirmacion(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	out, err := e.run(t, "", "grid", "add-column", "bay", e.sc.QuoteID, "B3")
	require.NoError(t, err)
	assert.Contains(t, out, "Se agregó bahía B3")

	out, err = e.run(t, "n\n", "grid", "delete-column", "bay", e.sc.QuoteID, "B3")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelado")

	_, err = e.run(t, "s\n", "grid", "delete-column", "bay", e.sc.QuoteID, "B3")
	require.NoError(t, err)

	g, err := e.core.Grid.Definition(context.Background(), entity.KindBay, e.sc.QuoteID)
	require.NoError(t, err)
	assert.Len(t, g.Columns, 2)
}
