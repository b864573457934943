package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conecta-isp/internal/application/dto"
	"github.com/jhoicas/conecta-isp/internal/application/usecase"
)

// NetworkHandler maneja subredes y el pool de IPs (protegido, solo admin).
type NetworkHandler struct {
	uc *usecase.NetworkUseCase
}

// NewNetworkHandler construye el handler.
func NewNetworkHandler(uc *usecase.NetworkUseCase) *NetworkHandler {
	return &NetworkHandler{uc: uc}
}

// CreateSubnet godoc
// @Summary      Registrar subred y sembrar su pool de IPs
// @Tags         network
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSubnetRequest  true  "CIDR de la subred"
// @Success      201   {object}  dto.SubnetResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/network/subnets [post]
func (h *NetworkHandler) CreateSubnet(c *fiber.Ctx) error {
	var in dto.CreateSubnetRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.CIDR == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cidr es requerido"})
	}
	out, err := h.uc.CreateSubnet(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListSubnets godoc
// @Summary      Listar subredes
// @Tags         network
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SubnetListResponse
// @Router       /api/network/subnets [get]
func (h *NetworkHandler) ListSubnets(c *fiber.Ctx) error {
	out, err := h.uc.ListSubnets(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// ListIPs godoc
// @Summary      Listar direcciones de una subred
// @Tags         network
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la subred"
// @Success      200  {object}  dto.IPAddressListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/network/subnets/{id}/ips [get]
func (h *NetworkHandler) ListIPs(c *fiber.Ctx) error {
	out, err := h.uc.ListIPs(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}
