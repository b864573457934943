package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conecta-isp/internal/application/billing"
	"github.com/jhoicas/conecta-isp/internal/application/dto"
	"github.com/jhoicas/conecta-isp/internal/application/usecase"
)

// BillingHandler maneja pagos, facturas y descarga del PDF (protegido).
type BillingHandler struct {
	payments *usecase.PaymentUseCase
	pdf      *billing.PDFUseCase
}

// NewBillingHandler construye el handler.
func NewBillingHandler(payments *usecase.PaymentUseCase, pdf *billing.PDFUseCase) *BillingHandler {
	return &BillingHandler{payments: payments, pdf: pdf}
}

// RegisterPayment godoc
// @Summary      Registrar pago
// @Description  Concilia contra la factura indicada (o la impaga más antigua) y,
// @Description  si el abonado estaba suspendido y la política lo permite, dispara
// @Description  la reconexión. Warning indica reconexión pendiente de reintento.
// @Tags         billing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterPaymentRequest  true  "Datos del pago"
// @Success      201   {object}  dto.PaymentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/payments [post]
func (h *BillingHandler) RegisterPayment(c *fiber.Ctx) error {
	var in dto.RegisterPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.SubscriberID == "" || in.Method == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "subscriber_id y method son requeridos"})
	}
	out, err := h.payments.Register(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListPayments godoc
// @Summary      Listar pagos de un abonado
// @Tags         billing
// @Security     Bearer
// @Produce      json
// @Param        subscriberId  path  string  true  "ID del abonado"
// @Success      200  {array}  dto.PaymentResponse
// @Router       /api/subscribers/{subscriberId}/payments [get]
func (h *BillingHandler) ListPayments(c *fiber.Ctx) error {
	out, err := h.payments.ListBySubscriber(c.UserContext(), GetCompanyID(c), c.Params("subscriberId"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// ListInvoices godoc
// @Summary      Listar facturas de un abonado
// @Tags         billing
// @Security     Bearer
// @Produce      json
// @Param        subscriberId  path  string  true  "ID del abonado"
// @Success      200  {object}  dto.InvoiceListResponse
// @Router       /api/subscribers/{subscriberId}/invoices [get]
func (h *BillingHandler) ListInvoices(c *fiber.Ctx) error {
	out, err := h.payments.ListInvoices(c.UserContext(), GetCompanyID(c), c.Params("subscriberId"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// DownloadInvoicePDF godoc
// @Summary      Descargar PDF de una factura
// @Tags         billing
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}  file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *BillingHandler) DownloadInvoicePDF(c *fiber.Ctx) error {
	data, err := h.pdf.GenerateInvoicePDF(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="factura.pdf"`)
	return c.Send(data)
}
