package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conecta-isp/internal/application/dto"
	"github.com/jhoicas/conecta-isp/internal/application/usecase"
)

// SubscriberHandler maneja las peticiones HTTP del ciclo de vida del abonado
// (protegido). Las transiciones activar/reconectar no tienen endpoint: las
// dispara la finalización de la instalación y el registro de pagos.
type SubscriberHandler struct {
	uc *usecase.SubscriberUseCase
}

// NewSubscriberHandler construye el handler.
func NewSubscriberHandler(uc *usecase.SubscriberUseCase) *SubscriberHandler {
	return &SubscriberHandler{uc: uc}
}

// GetByID godoc
// @Summary      Obtener abonado por ID
// @Tags         subscribers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del abonado"
// @Success      200  {object}  dto.SubscriberResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/subscribers/{id} [get]
func (h *SubscriberHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar datos de contacto del abonado
// @Tags         subscribers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del abonado"
// @Param        body  body  dto.UpdateSubscriberRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.SubscriberResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/subscribers/{id} [put]
func (h *SubscriberHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSubscriberRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// Suspend godoc
// @Summary      Suspender abonado
// @Description  Transición active→suspended. El corte de red y la notificación
// @Description  corren aguas abajo; si no se aplicaron, la respuesta lleva warning.
// @Tags         subscribers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del abonado"
// @Success      200  {object}  dto.SubscriberActionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/subscribers/{id}/suspend [post]
func (h *SubscriberHandler) Suspend(c *fiber.Ctx) error {
	out, err := h.uc.Suspend(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Dar de baja al abonado
// @Description  Transición terminal. Libera la IP asignada y elimina la sesión RADIUS.
// @Tags         subscribers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del abonado"
// @Success      200  {object}  dto.SubscriberActionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/subscribers/{id}/deactivate [post]
func (h *SubscriberHandler) Deactivate(c *fiber.Ctx) error {
	out, err := h.uc.Deactivate(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar abonados
// @Tags         subscribers
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.SubscriberListResponse
// @Router       /api/subscribers [get]
func (h *SubscriberHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), limit, offset)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}
