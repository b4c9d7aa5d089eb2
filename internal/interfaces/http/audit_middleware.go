package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/pkg/logger"
)

// auditRecorder es el contrato mínimo que necesita el middleware de auditoría.
// Lo implementa *usecase.AuditUseCase; la interfaz evita el import circular.
type auditRecorder interface {
	Record(ctx context.Context, e entity.AuditEntry) error
}

// AuditTrail registra en el log de auditoría cada POST, PUT o DELETE que
// termina con status < 400. Debe usarse DESPUÉS de AuthMiddleware.
// Un fallo al registrar no cambia la respuesta; solo se loguea.
func AuditTrail(rec auditRecorder, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		method := c.Method()
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodDelete {
			return err
		}
		status := statusOf(c, err)
		if status >= 400 {
			return err
		}
		e := entity.AuditEntry{
			UserID:    GetUserID(c),
			UserEmail: GetEmail(c),
			Action:    method,
			Path:      c.Path(),
			Entity:    auditEntity(c.Path()),
			EntityID:  firstParam(c, "id", "quoteId", "name"),
			Status:    status,
		}
		if rerr := rec.Record(c.UserContext(), e); rerr != nil {
			log.Error().Err(rerr).Str("path", e.Path).Msg("auditoría: no se pudo registrar")
		}
		return err
	}
}

// auditEntity primer segmento significativo de la ruta:
// /api/Quotation/1 → Quotation, /installation/AddInstallationDay → installation.
func auditEntity(path string) string {
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg != "" && !strings.EqualFold(seg, "api") {
			return seg
		}
	}
	return ""
}

func firstParam(c *fiber.Ctx, names ...string) string {
	for _, n := range names {
		if v := c.Params(n); v != "" {
			return v
		}
	}
	return ""
}
