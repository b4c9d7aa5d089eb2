package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/grid"
	"github.com/jhoicas/Cotizaciones-api/internal/application/tracking"
	"github.com/jhoicas/Cotizaciones-api/internal/application/usecase"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// App casos de uso cableados sobre un Store en memoria.
type App struct {
	Store    *Store
	Grid     *grid.Service
	Quotes   *usecase.QuoteUseCase
	Parts    *usecase.QuotePartUseCase
	Library  *usecase.PartLibraryUseCase
	Tracking *tracking.Service
	Audit    *usecase.AuditUseCase
	Metrics  *Metrics
}

// NewApp construye la aplicación completa sin base de datos.
func NewApp() *App {
	s := NewStore()
	m := &Metrics{}
	g := grid.NewService(s.Quotes(), s.QuoteParts(), s.Grid(), s, m)
	return &App{
		Store:    s,
		Grid:     g,
		Quotes:   usecase.NewQuoteUseCase(s.Quotes(), g),
		Parts:    usecase.NewQuotePartUseCase(s.Quotes(), s.QuoteParts(), s.Library(), s),
		Library:  usecase.NewPartLibraryUseCase(s.Library()),
		Tracking: tracking.NewService(s.Tracking(), s.QuoteParts(), s, g),
		Audit:    usecase.NewAuditUseCase(s.Audit()),
		Metrics:  m,
	}
}

// Scenario cotización de estantería con ids por nombre.
//
//	partes:      UP-96 (base 0, $50), BM-08 (base 2, $20)
//	bahías:      B1, B2      def bay:   UP-96 B1=2 B2=1 · BM-08 B1=4
//	filas:       R1, R2      cnt bay:   R1 B1=3 B2=2 · R2 B1=1
//	                         def row:   BM-08 R2=5
//
// Requerido: UP-96 R1=8 R2=2 total 10; BM-08 R1=12 R2=9 total 23.
type Scenario struct {
	QuoteID string
	Parts   map[string]string
	Columns map[string]string
}

// NewScenario carga el escenario anterior a través de los casos de uso.
func (a *App) NewScenario(t *testing.T) *Scenario {
	t.Helper()
	ctx := context.Background()
	q, err := a.Quotes.Create(ctx, "u1", dto.CreateQuoteRequest{
		CustomerName:  "Bodegas del Valle",
		ProjectName:   "Nave 3",
		MarginPercent: decimal.NewFromInt(20),
		TaxPercent:    decimal.NewFromInt(19),
		CostItems:     []dto.CostItemDTO{{Description: "Flete", Amount: decimal.NewFromInt(100)}},
	})
	require.NoError(t, err)
	sc := &Scenario{QuoteID: q.ID, Parts: map[string]string{}, Columns: map[string]string{}}

	for _, p := range []struct {
		number string
		base   int
		cost   int64
	}{{"UP-96", 0, 50}, {"BM-08", 2, 20}} {
		cost := decimal.NewFromInt(p.cost)
		out, err := a.Parts.Create(ctx, dto.CreateQuotePartRequest{
			QuoteID: q.ID, PartNumber: p.number, Description: p.number, UnitCost: &cost, BaseQuantity: p.base,
		})
		require.NoError(t, err)
		sc.Parts[p.number] = out.ID
	}
	for _, c := range []struct {
		kind entity.GridKind
		name string
	}{{entity.KindBay, "B1"}, {entity.KindBay, "B2"}, {entity.KindRow, "R1"}, {entity.KindRow, "R2"}} {
		out, err := a.Grid.AddColumn(ctx, c.kind, c.name, q.ID)
		require.NoError(t, err)
		sc.Columns[c.name] = out.Column.ID
	}

	def := func(kind entity.GridKind, part, col string, qty int) {
		_, err := a.Grid.UpdateDefinitionCell(ctx, kind, dto.UpdateCellRequest{
			EntityID: sc.Parts[part], ColumnID: sc.Columns[col], Quantity: qty,
		})
		require.NoError(t, err)
	}
	cnt := func(row, col string, qty int) {
		_, err := a.Grid.UpdateCountCell(ctx, entity.KindBay, dto.UpdateCellRequest{
			EntityID: sc.Columns[row], BayID: sc.Columns[col], Quantity: qty,
		})
		require.NoError(t, err)
	}
	def(entity.KindBay, "UP-96", "B1", 2)
	def(entity.KindBay, "UP-96", "B2", 1)
	def(entity.KindBay, "BM-08", "B1", 4)
	cnt("R1", "B1", 3)
	cnt("R1", "B2", 2)
	cnt("R2", "B1", 1)
	def(entity.KindRow, "BM-08", "R2", 5)
	return sc
}

// Metrics ports.Metrics que cuenta llamadas.
type Metrics struct {
	mu     sync.Mutex
	cells  map[string]int
	issued int
}

// CellWritten cuenta por "scope/kind/ok|error".
func (m *Metrics) CellWritten(scope, kind string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cells == nil {
		m.cells = map[string]int{}
	}
	res := "ok"
	if !ok {
		res = "error"
	}
	m.cells[scope+"/"+kind+"/"+res]++
}

// DocumentIssued cuenta documentos.
func (m *Metrics) DocumentIssued() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issued++
}

// Cells escrituras contadas para la clave "scope/kind/ok|error".
func (m *Metrics) Cells(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cells[key]
}

// Issued documentos contados.
func (m *Metrics) Issued() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.issued
}
