package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/grid"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// GridHandler grillas de definiciones y conteos.
type GridHandler struct {
	svc *grid.Service
}

// NewGridHandler construye el handler.
func NewGridHandler(svc *grid.Service) *GridHandler {
	return &GridHandler{svc: svc}
}

// Definition godoc
// @Summary      Grilla de definiciones
// @Tags         grids
// @Security     Bearer
// @Produce      json
// @Param        kind     path  string  true  "bay | frameline | flue | row"
// @Param        quoteId  path  string  true  "ID de la cotización"
// @Success      200      {object}  dto.GridResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/definition/{kind}/{quoteId} [get]
func (h *GridHandler) Definition(c *fiber.Ctx) error {
	kind, ok := entity.ParseGridKind(c.Params("kind"))
	if !ok {
		return respondError(c, errKind)
	}
	out, err := h.svc.Definition(c.UserContext(), kind, c.Params("quoteId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Count godoc
// @Summary      Grilla de conteos (row = take-off de solo lectura)
// @Tags         grids
// @Security     Bearer
// @Produce      json
// @Param        kind     path  string  true  "bay | frameline | flue | row"
// @Param        quoteId  path  string  true  "ID de la cotización"
// @Success      200      {object}  dto.GridResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/count/{kind}/{quoteId} [get]
func (h *GridHandler) Count(c *fiber.Ctx) error {
	kind, ok := entity.ParseGridKind(c.Params("kind"))
	if !ok {
		return respondError(c, errKind)
	}
	out, err := h.svc.Count(c.UserContext(), kind, c.Params("quoteId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AddColumn godoc
// @Summary      Crear unidad (columna) y materializar sus celdas
// @Tags         grids
// @Security     Bearer
// @Produce      json
// @Param        kind     path  string  true  "bay | frameline | flue | row"
// @Param        name     path  string  true  "Nombre de la unidad"
// @Param        quoteId  path  string  true  "ID de la cotización"
// @Success      201      {object}  dto.ColumnCreatedResponse
// @Failure      409      {object}  dto.ErrorResponse
// @Router       /api/definition/{kind}/{name}/{quoteId} [post]
func (h *GridHandler) AddColumn(c *fiber.Ctx) error {
	kind, ok := entity.ParseGridKind(c.Params("kind"))
	if !ok {
		return respondError(c, errKind)
	}
	out, err := h.svc.AddColumn(c.UserContext(), kind, c.Params("name"), c.Params("quoteId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// DeleteColumn godoc
// @Summary      Eliminar unidad con sus celdas
// @Tags         grids
// @Security     Bearer
// @Param        kind         path   string  true   "bay | frameline | flue | row"
// @Param        quoteId      path   string  true   "ID de la cotización"
// @Param        BayId        query  string  false  "ID de la bahía"
// @Param        FramelineId  query  string  false  "ID de la línea de marco"
// @Param        FlueId       query  string  false  "ID del ducto"
// @Param        RowId        query  string  false  "ID de la fila"
// @Param        columnId     query  string  false  "ID de la columna (cualquier tipo)"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/Definition/{kind}/{quoteId} [delete]
func (h *GridHandler) DeleteColumn(c *fiber.Ctx) error {
	kind, ok := entity.ParseGridKind(c.Params("kind"))
	if !ok {
		return respondError(c, errKind)
	}
	columnID := columnQuery(c, kind)
	if columnID == "" {
		return validation(c, "falta el id de la columna")
	}
	if err := h.svc.DeleteColumn(c.UserContext(), kind, c.Params("quoteId"), columnID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateDefinitionCell godoc
// @Summary      Escribir celda de definición (upsert)
// @Tags         grids
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        kind  path  string                 true  "bay | frameline | flue | row"
// @Param        body  body  dto.UpdateCellRequest  true  "entityId = parte"
// @Success      200   {object}  dto.CellResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/part/{kind}/updatePart [put]
func (h *GridHandler) UpdateDefinitionCell(c *fiber.Ctx) error {
	kind, in, err := parseCell(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.svc.UpdateDefinitionCell(c.UserContext(), kind, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateCountCell godoc
// @Summary      Escribir celda de conteo (upsert)
// @Tags         grids
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        kind  path  string                 true  "bay | frameline | flue"
// @Param        body  body  dto.UpdateCellRequest  true  "entityId = fila"
// @Success      200   {object}  dto.CellResponse
// @Failure      409   {object}  dto.ErrorResponse  "READ_ONLY con kind row"
// @Router       /api/row/{kind}/update [put]
func (h *GridHandler) UpdateCountCell(c *fiber.Ctx) error {
	kind, in, err := parseCell(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.svc.UpdateCountCell(c.UserContext(), kind, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// parseCell valida kind y cuerpo de una escritura de celda.
func parseCell(c *fiber.Ctx) (entity.GridKind, dto.UpdateCellRequest, error) {
	var in dto.UpdateCellRequest
	kind, ok := entity.ParseGridKind(c.Params("kind"))
	if !ok {
		return "", in, errKind
	}
	if err := c.BodyParser(&in); err != nil {
		return "", in, errBody
	}
	switch {
	case in.EntityID == "":
		return "", in, requestError{"VALIDATION", "entityId es requerido"}
	case in.Quantity < 0:
		return "", in, requestError{"VALIDATION", "quantity debe ser mayor o igual a 0"}
	case in.Column(string(kind)) == "":
		return "", in, requestError{"VALIDATION", "falta el id de la columna (" + string(kind) + "Id)"}
	}
	return kind, in, nil
}

// columnQuery id de columna del query según el tipo; acepta BayId y bayId.
func columnQuery(c *fiber.Ctx, kind entity.GridKind) string {
	if v := c.Query("columnId"); v != "" {
		return v
	}
	names := map[entity.GridKind][]string{
		entity.KindBay:       {"BayId", "bayId"},
		entity.KindFrameline: {"FramelineId", "framelineId"},
		entity.KindFlue:      {"FlueId", "flueId"},
		entity.KindRow:       {"RowId", "rowId"},
	}
	for _, n := range names[kind] {
		if v := c.Query(n); v != "" {
			return v
		}
	}
	return ""
}
