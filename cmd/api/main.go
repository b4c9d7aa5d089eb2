package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Cotizaciones-api/internal/application/auth"
	"github.com/jhoicas/Cotizaciones-api/internal/application/export"
	"github.com/jhoicas/Cotizaciones-api/internal/application/grid"
	"github.com/jhoicas/Cotizaciones-api/internal/application/tracking"
	"github.com/jhoicas/Cotizaciones-api/internal/application/usecase"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/blob"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Cotizaciones-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/xlsx"
	httpRouter "github.com/jhoicas/Cotizaciones-api/internal/interfaces/http"
	"github.com/jhoicas/Cotizaciones-api/pkg/config"
	"github.com/jhoicas/Cotizaciones-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	if len(applied) > 0 {
		log.Info().Strs("migrations", applied).Msg("migraciones aplicadas")
	}

	store, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Blob.Driver).Msg("almacén de documentos")
	}

	userRepo := postgres.NewUserRepository(pool)
	libraryRepo := postgres.NewPartLibraryRepository(pool)
	quoteRepo := postgres.NewQuoteRepository(pool)
	partRepo := postgres.NewQuotePartRepository(pool)
	gridRepo := postgres.NewGridRepository(pool)
	trackingRepo := postgres.NewTrackingRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	recorder := metrics.NewRecorder()

	gridSvc := grid.NewService(quoteRepo, partRepo, gridRepo, txRunner, recorder)
	quoteUC := usecase.NewQuoteUseCase(quoteRepo, gridSvc)
	partUC := usecase.NewQuotePartUseCase(quoteRepo, partRepo, libraryRepo, txRunner)
	libraryUC := usecase.NewPartLibraryUseCase(libraryRepo)
	auditUC := usecase.NewAuditUseCase(auditRepo)
	trackingSvc := tracking.NewService(trackingRepo, partRepo, txRunner, gridSvc)

	// Documentos: PDF de la cotización (maroto) y grillas en xlsx (excelize)
	exportSvc := export.NewService(
		quoteUC, gridSvc,
		infrapdf.NewQuotePDFGenerator(cfg.App.Name),
		xlsx.NewGridWorkbook(),
		store, recorder,
	)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    cfg.HTTP.BodyLimit,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.Docs.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.Docs.SwaggerFile,
			Path:     "docs",
			Title:    "Cotizaciones API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		LibraryUC: libraryUC,
		PartUC:    partUC,
		QuoteUC:   quoteUC,
		AuditUC:   auditUC,
		Grid:      gridSvc,
		Tracking:  trackingSvc,
		Export:    exportSvc,
		JWTSecret: cfg.JWT.Secret,
		Log:       log,
		Metrics:   recorder,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
