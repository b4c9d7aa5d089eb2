package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/usecase"
)

// AuditHandler consulta del log de auditoría (solo admin).
type AuditHandler struct {
	uc *usecase.AuditUseCase
}

// NewAuditHandler construye el handler.
func NewAuditHandler(uc *usecase.AuditUseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// Search godoc
// @Summary      Buscar en el log de auditoría
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        search       query  string  false  "Email, ruta, entidad o acción"
// @Param        orderBy      query  string  false  "createdAt | userEmail | action | path | entity | status"
// @Param        isAscending  query  bool    false  "Orden ascendente"
// @Param        page         query  int     false  "Página"  default(1)
// @Param        perPage      query  int     false  "Tamaño"  default(20)
// @Success      200          {object}  dto.AuditListResponse
// @Router       /api/Log/search [get]
func (h *AuditHandler) Search(c *fiber.Ctx) error {
	var in dto.AuditSearchRequest
	if err := c.QueryParser(&in); err != nil {
		return validation(c, "parámetros de búsqueda inválidos")
	}
	out, err := h.uc.Search(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
