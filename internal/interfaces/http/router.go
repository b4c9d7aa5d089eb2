package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/Cotizaciones-api/internal/application/auth"
	"github.com/jhoicas/Cotizaciones-api/internal/application/export"
	"github.com/jhoicas/Cotizaciones-api/internal/application/grid"
	"github.com/jhoicas/Cotizaciones-api/internal/application/tracking"
	"github.com/jhoicas/Cotizaciones-api/internal/application/usecase"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Cotizaciones-api/pkg/logger"
)

// RouterDeps dependencias para el router. Log y Metrics son opcionales.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	LibraryUC *usecase.PartLibraryUseCase
	PartUC    *usecase.QuotePartUseCase
	QuoteUC   *usecase.QuoteUseCase
	AuditUC   *usecase.AuditUseCase
	Grid      *grid.Service
	Tracking  *tracking.Service
	Export    *export.Service
	JWTSecret string
	Log       *logger.Logger
	Metrics   *metrics.Recorder
}

// Router registra middleware y rutas de la API. Fiber no distingue
// mayúsculas en las rutas, así que /api/part/quote/:quoteId debe registrarse
// antes que /api/Part/:page/:perPage.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	app.Use(RequestLogger(log))
	if deps.Metrics != nil {
		app.Use(HTTPMetrics(deps.Metrics))
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authHandler := NewAuthHandler(deps.AuthUC)
	app.Post("/api/auth/login", authHandler.Login)

	secured := []fiber.Handler{AuthMiddleware(deps.JWTSecret), AuditTrail(deps.AuditUC, log)}
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleCotizador, entity.RoleInstalador)
	writers := RequireRole(entity.RoleAdmin, entity.RoleCotizador)
	admin := RequireRole(entity.RoleAdmin)

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", secured...)
	api.Post("/auth/register", admin, authHandler.Register)

	// Partes de la cotización (antes que el catálogo paginado)
	parts := NewQuotePartHandler(deps.PartUC)
	api.Get("/part/quote/:quoteId", anyRole, parts.ListByQuote)
	api.Post("/part", writers, parts.Create)
	api.Put("/part", writers, parts.Update)
	api.Delete("/part/:id", writers, parts.Delete)

	// Catálogo
	library := NewPartLibraryHandler(deps.LibraryUC)
	api.Get("/Part/:page/:perPage", anyRole, library.List)
	api.Get("/PartLibrary/:id", anyRole, library.GetByID)
	api.Post("/PartLibrary", writers, library.Create)
	api.Put("/PartLibrary", writers, library.Update)
	api.Delete("/PartLibrary/:id", writers, library.Delete)

	// Grillas
	grids := NewGridHandler(deps.Grid)
	api.Get("/definition/:kind/:quoteId", anyRole, grids.Definition)
	api.Post("/definition/:kind/:name/:quoteId", writers, grids.AddColumn)
	api.Delete("/Definition/:kind/:quoteId", writers, grids.DeleteColumn)
	api.Get("/count/:kind/:quoteId", anyRole, grids.Count)
	api.Put("/part/:kind/updatePart", writers, grids.UpdateDefinitionCell)
	api.Put("/row/:kind/update", writers, grids.UpdateCountCell)

	// Cotizaciones y documentos
	quotes := NewQuoteHandler(deps.QuoteUC, deps.Export)
	api.Get("/Quotation", anyRole, quotes.List)
	api.Post("/Quotation", writers, quotes.Create)
	api.Put("/Quotation", writers, quotes.Update)
	api.Get("/Quotation/:id", anyRole, quotes.GetByID)
	api.Delete("/Quotation/:id", writers, quotes.Delete)
	api.Get("/Quotation/:id/summary", anyRole, quotes.Summary)
	api.Get("/Quotation/:id/pdf", anyRole, quotes.PDF)
	api.Post("/Quotation/:id/issue", writers, quotes.Issue)
	api.Get("/Quotation/:id/documents", anyRole, quotes.Documents)
	api.Get("/Quotation/:id/documents/:name", anyRole, quotes.Document)
	api.Get("/export/:scope/:kind/:quoteId", anyRole, quotes.Workbook)

	// Auditoría
	api.Get("/Log/search", admin, NewAuditHandler(deps.AuditUC).Search)

	// Avance de obra
	trackingRoutes(app.Group("/installation", secured...), NewTrackingHandler(deps.Tracking, entity.TrackingInstallation),
		anyRole, "InstallationDay")
	trackingRoutes(app.Group("/receiving", secured...), NewTrackingHandler(deps.Tracking, entity.TrackingReceiving),
		anyRole, "ReceivingLoad")
}

func trackingRoutes(g fiber.Router, h *TrackingHandler, role fiber.Handler, noun string) {
	g.Post("/Add"+noun, role, h.Add)
	g.Put("/Update"+noun, role, h.Update)
	g.Delete("/Delete"+noun+"/:id", role, h.Delete)
	g.Get("/:quoteId/progress", role, h.Progress)
	g.Get("/:quoteId", role, h.List)
}
