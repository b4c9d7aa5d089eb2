package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/tracking"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// TrackingHandler días de instalación o cargas recibidas, según kind.
// Las mutaciones responden el string JSON "Ok".
type TrackingHandler struct {
	svc  *tracking.Service
	kind entity.TrackingKind
}

// NewTrackingHandler construye el handler para un tipo de registro.
func NewTrackingHandler(svc *tracking.Service, kind entity.TrackingKind) *TrackingHandler {
	return &TrackingHandler{svc: svc, kind: kind}
}

// List godoc
// @Summary      Registros de avance de la cotización
// @Tags         tracking
// @Security     Bearer
// @Produce      json
// @Param        quoteId  path  string  true  "ID de la cotización"
// @Success      200      {array}  dto.TrackingResponse
// @Router       /installation/{quoteId} [get]
// @Router       /receiving/{quoteId} [get]
func (h *TrackingHandler) List(c *fiber.Ctx) error {
	out, err := h.svc.List(c.UserContext(), h.kind, c.Params("quoteId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Add godoc
// @Summary      Registrar día de instalación o carga recibida
// @Tags         tracking
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TrackingRequest  true  "Fecha AAAA-MM-DD y cantidades por parte"
// @Success      200   {string}  string  "Ok"
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /installation/AddInstallationDay [post]
// @Router       /receiving/AddReceivingLoad [post]
func (h *TrackingHandler) Add(c *fiber.Ctx) error {
	in, err := parseTracking(c, false)
	if err != nil {
		return respondError(c, err)
	}
	if _, err := h.svc.Add(c.UserContext(), h.kind, GetUserID(c), in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Ok)
}

// Update godoc
// @Summary      Editar día de instalación o carga recibida
// @Tags         tracking
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TrackingRequest  true  "Registro con id"
// @Success      200   {string}  string  "Ok"
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /installation/UpdateInstallationDay [put]
// @Router       /receiving/UpdateReceivingLoad [put]
func (h *TrackingHandler) Update(c *fiber.Ctx) error {
	in, err := parseTracking(c, true)
	if err != nil {
		return respondError(c, err)
	}
	if _, err := h.svc.Update(c.UserContext(), h.kind, in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Ok)
}

// Delete godoc
// @Summary      Eliminar día de instalación o carga recibida
// @Tags         tracking
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del registro"
// @Success      200  {string}  string  "Ok"
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /installation/DeleteInstallationDay/{id} [delete]
// @Router       /receiving/DeleteReceivingLoad/{id} [delete]
func (h *TrackingHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.UserContext(), h.kind, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Ok)
}

// Progress godoc
// @Summary      Avance: requerido, recibido, instalado y pendiente por parte
// @Tags         tracking
// @Security     Bearer
// @Produce      json
// @Param        quoteId  path  string  true  "ID de la cotización"
// @Success      200      {object}  dto.ProgressResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /installation/{quoteId}/progress [get]
// @Router       /receiving/{quoteId}/progress [get]
func (h *TrackingHandler) Progress(c *fiber.Ctx) error {
	out, err := h.svc.Progress(c.UserContext(), c.Params("quoteId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func parseTracking(c *fiber.Ctx, needID bool) (dto.TrackingRequest, error) {
	var in dto.TrackingRequest
	if err := c.BodyParser(&in); err != nil {
		return in, errBody
	}
	switch {
	case needID && in.ID == "":
		return in, requestError{"VALIDATION", "id es requerido"}
	case in.QuoteID == "":
		return in, requestError{"VALIDATION", "quoteId es requerido"}
	case in.Date == "":
		return in, requestError{"VALIDATION", "date es requerido"}
	}
	for _, p := range in.Parts {
		if p.QuotePartID == "" {
			return in, requestError{"VALIDATION", "quotePartId es requerido en cada parte"}
		}
		if p.Quantity < 0 {
			return in, requestError{"VALIDATION", "quantity debe ser mayor o igual a 0"}
		}
	}
	return in, nil
}
