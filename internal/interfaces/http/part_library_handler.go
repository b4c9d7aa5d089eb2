package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/usecase"
)

// PartLibraryHandler catálogo de partes.
type PartLibraryHandler struct {
	uc *usecase.PartLibraryUseCase
}

// NewPartLibraryHandler construye el handler.
func NewPartLibraryHandler(uc *usecase.PartLibraryUseCase) *PartLibraryHandler {
	return &PartLibraryHandler{uc: uc}
}

// List godoc
// @Summary      Buscar en el catálogo
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Param        page     path   int     true   "Página (desde 1)"
// @Param        perPage  path   int     true   "Tamaño de página (máx. 100)"
// @Param        search   query  string  false  "Número, descripción o categoría"
// @Success      200      {object}  dto.PartLibraryListResponse
// @Router       /api/Part/{page}/{perPage} [get]
func (h *PartLibraryHandler) List(c *fiber.Ctx) error {
	page, err := c.ParamsInt("page")
	if err != nil {
		return validation(c, "page debe ser numérico")
	}
	perPage, err := c.ParamsInt("perPage")
	if err != nil {
		return validation(c, "perPage debe ser numérico")
	}
	out, err := h.uc.Search(c.UserContext(), c.Query("search"), dto.PageRequest{Page: page, PerPage: perPage})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener parte del catálogo
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la parte"
// @Success      200  {object}  dto.PartLibraryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/PartLibrary/{id} [get]
func (h *PartLibraryHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "parte no encontrada")
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear parte del catálogo
// @Tags         parts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PartLibraryRequest  true  "Parte"
// @Success      201   {object}  dto.PartLibraryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/PartLibrary [post]
func (h *PartLibraryHandler) Create(c *fiber.Ctx) error {
	var in dto.PartLibraryRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if msg := checkPart(in); msg != "" {
		return validation(c, msg)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar parte del catálogo
// @Tags         parts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PartLibraryRequest  true  "Parte con id"
// @Success      200   {object}  dto.PartLibraryResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/PartLibrary [put]
func (h *PartLibraryHandler) Update(c *fiber.Ctx) error {
	var in dto.PartLibraryRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.ID == "" {
		return validation(c, "id es requerido")
	}
	if msg := checkPart(in); msg != "" {
		return validation(c, msg)
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
// @Summary      Eliminar parte del catálogo
// @Tags         parts
// @Security     Bearer
// @Param        id   path  string  true  "ID de la parte"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/PartLibrary/{id} [delete]
func (h *PartLibraryHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func checkPart(in dto.PartLibraryRequest) string {
	switch {
	case strings.TrimSpace(in.PartNumber) == "":
		return "partNumber es requerido"
	case len(in.PartNumber) > 100:
		return "partNumber admite máximo 100 caracteres"
	case len(in.Description) > 500:
		return "description admite máximo 500 caracteres"
	case in.UnitCost.IsNegative():
		return "unitCost no puede ser negativo"
	}
	return ""
}
