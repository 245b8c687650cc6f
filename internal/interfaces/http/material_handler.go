package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Almacen-obra-api/internal/application/dto"
	"github.com/jhoicas/Almacen-obra-api/internal/application/usecase"
)

// MaterialHandler maneja las peticiones HTTP del catálogo de materiales (protegido).
type MaterialHandler struct {
	uc *usecase.MaterialUseCase
}

// NewMaterialHandler construye el handler.
func NewMaterialHandler(uc *usecase.MaterialUseCase) *MaterialHandler {
	return &MaterialHandler{uc: uc}
}

// Create godoc
// @Summary      Crear material
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMaterialRequest  true  "code, name, unit"
// @Success      201   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/materials [post]
func (h *MaterialHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMaterialRequest
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
// @Summary      Consultar material
// @Tags         materials
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del material"
// @Success      200  {object}  dto.MaterialResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/materials/{id} [get]
func (h *MaterialHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Params("id"))
	if err != nil {
		return catalogError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "material no encontrado"})
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar material
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del material"
// @Param        body  body  dto.UpdateMaterialRequest  true  "name, description, unit"
// @Success      200   {object}  dto.MaterialResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/materials/{id} [put]
func (h *MaterialHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.Params("id"), in)
	if err != nil {
		return catalogError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "material no encontrado"})
	}
	return c.JSON(out)
}

// Search godoc
// @Summary      Buscar materiales
// @Description  Busca por nombre o código, ignorando tildes y mayúsculas.
// @Tags         materials
// @Security     Bearer
// @Produce      json
// @Param        q       query  string  false  "Texto a buscar; vacío = todos"
// @Param        limit   query  int     false  "Tamaño de página (default 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MaterialListResponse
// @Router       /api/materials [get]
func (h *MaterialHandler) Search(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	out, err := h.uc.Search(c.Query("q"), page.Limit, page.Offset)
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar material
// @Description  Falla con 409 si el material tiene movimientos registrados.
// @Tags         materials
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del material"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/materials/{id} [delete]
func (h *MaterialHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Params("id")); err != nil {
		return catalogError(c, err)
	}
	return c.JSON(fiber.Map{"message": "material eliminado"})
}
