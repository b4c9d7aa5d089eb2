package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/usecase"
)

// QuotePartHandler partes de una cotización.
type QuotePartHandler struct {
	uc *usecase.QuotePartUseCase
}

// NewQuotePartHandler construye el handler.
func NewQuotePartHandler(uc *usecase.QuotePartUseCase) *QuotePartHandler {
	return &QuotePartHandler{uc: uc}
}

// ListByQuote godoc
// @Summary      Partes de la cotización
// @Tags         quote-parts
// @Security     Bearer
// @Produce      json
// @Param        quoteId  path  string  true  "ID de la cotización"
// @Success      200      {array}   dto.QuotePartResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/part/quote/{quoteId} [get]
func (h *QuotePartHandler) ListByQuote(c *fiber.Ctx) error {
	out, err := h.uc.ListByQuote(c.UserContext(), c.Params("quoteId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Agregar parte a la cotización
// @Tags         quote-parts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateQuotePartRequest  true  "Parte (o partLibraryId)"
// @Success      201   {object}  dto.QuotePartResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/part [post]
func (h *QuotePartHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateQuotePartRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	switch {
	case in.QuoteID == "":
		return validation(c, "quoteId es requerido")
	case in.PartNumber == "" && in.PartLibraryID == "":
		return validation(c, "partNumber o partLibraryId es requerido")
	case in.BaseQuantity < 0:
		return validation(c, "baseQuantity no puede ser negativo")
	case in.UnitCost != nil && in.UnitCost.IsNegative():
		return validation(c, "unitCost no puede ser negativo")
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Editar parte de la cotización
// @Tags         quote-parts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateQuotePartRequest  true  "Campos a cambiar, con id"
// @Success      200   {object}  dto.QuotePartResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/part [put]
func (h *QuotePartHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateQuotePartRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.ID == "" {
		return validation(c, "id es requerido")
	}
	out, err := h.uc.Update(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "parte no encontrada")
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Quitar parte de la cotización
// @Tags         quote-parts
// @Security     Bearer
// @Param        id   path  string  true  "ID de la parte"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/part/{id} [delete]
func (h *QuotePartHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
