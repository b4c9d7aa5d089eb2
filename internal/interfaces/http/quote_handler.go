package http

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/export"
	"github.com/jhoicas/Cotizaciones-api/internal/application/usecase"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// QuoteHandler cabecera de cotización, resumen y documentos.
type QuoteHandler struct {
	uc     *usecase.QuoteUseCase
	export *export.Service
}

// NewQuoteHandler construye el handler.
func NewQuoteHandler(uc *usecase.QuoteUseCase, exp *export.Service) *QuoteHandler {
	return &QuoteHandler{uc: uc, export: exp}
}

// List godoc
// @Summary      Listar cotizaciones
// @Tags         quotes
// @Security     Bearer
// @Produce      json
// @Param        page     query  int     false  "Página"  default(1)
// @Param        perPage  query  int     false  "Tamaño"  default(20)
// @Param        search   query  string  false  "Número, cliente, proyecto o ubicación"
// @Success      200      {object}  dto.QuoteListResponse
// @Router       /api/Quotation [get]
func (h *QuoteHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Page: c.QueryInt("page", 1), PerPage: c.QueryInt("perPage", 20)}
	out, err := h.uc.Search(c.UserContext(), c.Query("search"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener cotización
// @Tags         quotes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la cotización"
// @Success      200  {object}  dto.QuoteResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/Quotation/{id} [get]
func (h *QuoteHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "cotización no encontrada")
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear cotización
// @Tags         quotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateQuoteRequest  true  "Cliente, margen, impuesto y costos adicionales"
// @Success      201   {object}  dto.QuoteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/Quotation [post]
func (h *QuoteHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateQuoteRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return validation(c, "customerName es requerido")
	}
	if len(in.CustomerName) > 200 {
		return validation(c, "customerName admite máximo 200 caracteres")
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Editar cotización
// @Tags         quotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateQuoteRequest  true  "Campos a cambiar, con id"
// @Success      200   {object}  dto.QuoteResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/Quotation [put]
func (h *QuoteHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateQuoteRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.ID == "" {
		return validation(c, "id es requerido")
	}
	if in.Status != nil && !entity.ValidQuoteStatus(*in.Status) {
		return validation(c, "status debe ser draft, sent, issued, won o lost")
	}
	out, err := h.uc.Update(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "cotización no encontrada")
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar cotización con todo su contenido
// @Tags         quotes
// @Security     Bearer
// @Param        id   path  string  true  "ID de la cotización"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/Quotation/{id} [delete]
func (h *QuoteHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Summary godoc
// @Summary      Resumen de costos, margen, impuesto y total
// @Tags         quotes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la cotización"
// @Success      200  {object}  dto.SummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/Quotation/{id}/summary [get]
func (h *QuoteHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      Vista previa del PDF (no se archiva)
// @Tags         quotes
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la cotización"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/Quotation/{id}/pdf [get]
func (h *QuoteHandler) PDF(c *fiber.Ctx) error {
	b, name, err := h.export.QuotePDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, b, name, "application/pdf", "inline")
}

// Issue godoc
// @Summary      Emitir: archivar el PDF y marcar la cotización como emitida
// @Tags         quotes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la cotización"
// @Success      201  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/Quotation/{id}/issue [post]
func (h *QuoteHandler) Issue(c *fiber.Ctx) error {
	out, err := h.export.Issue(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Documents godoc
// @Summary      PDFs emitidos, el más reciente primero
// @Tags         quotes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la cotización"
// @Success      200  {array}  dto.DocumentResponse
// @Router       /api/Quotation/{id}/documents [get]
func (h *QuoteHandler) Documents(c *fiber.Ctx) error {
	out, err := h.export.Documents(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Document godoc
// @Summary      Descargar un PDF emitido
// @Tags         quotes
// @Security     Bearer
// @Produce      application/pdf
// @Param        id    path  string  true  "ID de la cotización"
// @Param        name  path  string  true  "Nombre del documento"
// @Success      200   {file}    binary
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/Quotation/{id}/documents/{name} [get]
func (h *QuoteHandler) Document(c *fiber.Ctx) error {
	name := c.Params("name")
	rc, doc, err := h.export.Open(c.UserContext(), c.Params("id"), name)
	if err != nil {
		return respondError(c, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return respondError(c, err)
	}
	ct := doc.ContentType
	if ct == "" {
		ct = "application/pdf"
	}
	return sendFile(c, b, name, ct, "attachment")
}

// Workbook godoc
// @Summary      Exportar una grilla a XLSX
// @Tags         exports
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        scope    path  string  true  "definition | count"
// @Param        kind     path  string  true  "bay | frameline | flue | row"
// @Param        quoteId  path  string  true  "ID de la cotización"
// @Success      200      {file}    binary
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/export/{scope}/{kind}/{quoteId} [get]
func (h *QuoteHandler) Workbook(c *fiber.Ctx) error {
	scope, ok := entity.ParseGridScope(c.Params("scope"))
	if !ok {
		return validation(c, "scope debe ser definition o count")
	}
	kind, ok := entity.ParseGridKind(c.Params("kind"))
	if !ok {
		return respondError(c, errKind)
	}
	b, name, err := h.export.GridWorkbook(c.UserContext(), scope, kind, c.Params("quoteId"))
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, b, name, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "attachment")
}

func sendFile(c *fiber.Ctx, b []byte, name, contentType, disposition string) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, disposition+`; filename="`+name+`"`)
	return c.Send(b)
}
