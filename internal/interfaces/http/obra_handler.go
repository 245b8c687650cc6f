package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Almacen-obra-api/internal/application/dto"
	"github.com/jhoicas/Almacen-obra-api/internal/application/usecase"
)

// ObraHandler maneja obras y sus etapas (centros de costo) (protegido).
type ObraHandler struct {
	uc *usecase.ObraUseCase
}

// NewObraHandler construye el handler.
func NewObraHandler(uc *usecase.ObraUseCase) *ObraHandler {
	return &ObraHandler{uc: uc}
}

// Create godoc
// @Summary      Crear obra
// @Tags         obras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateObraRequest  true  "name, client, address"
// @Success      201   {object}  dto.ObraResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/obras [post]
func (h *ObraHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateObraRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	out, err := h.uc.Create(in)
	if err != nil {
		return catalogError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Consultar obra
// @Tags         obras
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la obra"
// @Success      200  {object}  dto.ObraResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/obras/{id} [get]
func (h *ObraHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Params("id"))
	if err != nil {
		return catalogError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "obra no encontrada"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar obras
// @Tags         obras
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Tamaño de página (default 20)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.ObraListResponse
// @Router       /api/obras [get]
func (h *ObraHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	out, err := h.uc.List(page.Limit, page.Offset)
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(out)
}

// CreateStage godoc
// @Summary      Crear etapa de obra (centro de costo)
// @Tags         obras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStageRequest  true  "obra_id, name"
// @Success      201   {object}  dto.StageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stages [post]
func (h *ObraHandler) CreateStage(c *fiber.Ctx) error {
	var in dto.CreateStageRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	out, err := h.uc.CreateStage(in)
	if err != nil {
		return catalogError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListStages godoc
// @Summary      Listar etapas de una obra
// @Tags         obras
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la obra"
// @Success      200  {array}  dto.StageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/obras/{id}/stages [get]
func (h *ObraHandler) ListStages(c *fiber.Ctx) error {
	out, err := h.uc.ListStages(c.Params("id"))
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(out)
}
