package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conecta-isp/internal/application/auth"
	"github.com/jhoicas/conecta-isp/internal/application/billing"
	"github.com/jhoicas/conecta-isp/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	CompanyUC    *usecase.CompanyUseCase
	LeadUC       *usecase.LeadUseCase
	SubscriberUC *usecase.SubscriberUseCase
	PlanUC       *usecase.PlanUseCase
	WorkOrderUC  *usecase.WorkOrderUseCase
	PaymentUC    *usecase.PaymentUseCase
	InvoicePDF   *billing.PDFUseCase
	NetworkUC    *usecase.NetworkUseCase
	TicketUC     *usecase.TicketUseCase
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Companies (público: alta de tenant)
	companies := api.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Leads (ventas y admin)
	leads := protected.Group("/leads", RequireRole("admin", "ventas"))
	leadHandler := NewLeadHandler(deps.LeadUC)
	leads.Post("/", leadHandler.Create)
	leads.Get("/", leadHandler.List)
	leads.Get("/:id", leadHandler.GetByID)
	leads.Put("/:id", leadHandler.Update)
	leads.Post("/:id/convert", leadHandler.Convert)

	// Subscribers
	subscribers := protected.Group("/subscribers")
	subscriberHandler := NewSubscriberHandler(deps.SubscriberUC)
	subscribers.Get("/", subscriberHandler.List)
	subscribers.Get("/:id", subscriberHandler.GetByID)
	subscribers.Put("/:id", subscriberHandler.Update)
	subscribers.Post("/:id/suspend", RequireRole("admin", "soporte"), subscriberHandler.Suspend)
	subscribers.Post("/:id/deactivate", RequireRole("admin"), subscriberHandler.Deactivate)

	// Service plans
	plans := protected.Group("/plans")
	planHandler := NewPlanHandler(deps.PlanUC)
	plans.Post("/", RequireRole("admin"), planHandler.Create)
	plans.Get("/", planHandler.List)
	plans.Get("/:id", planHandler.GetByID)

	// Work orders (técnicos avanzan, admin y soporte gestionan)
	orders := protected.Group("/work-orders", RequireRole("admin", "soporte", "tecnico"))
	workOrderHandler := NewWorkOrderHandler(deps.WorkOrderUC)
	orders.Post("/", workOrderHandler.Create)
	orders.Get("/", workOrderHandler.List)
	orders.Get("/:id", workOrderHandler.GetByID)
	orders.Put("/:id", workOrderHandler.Update)
	orders.Post("/:id/retrigger", workOrderHandler.Retrigger)

	// Billing: pagos, facturas y PDF
	billingHandler := NewBillingHandler(deps.PaymentUC, deps.InvoicePDF)
	protected.Post("/payments", RequireRole("admin", "ventas"), billingHandler.RegisterPayment)
	subscribers.Get("/:subscriberId/payments", billingHandler.ListPayments)
	subscribers.Get("/:subscriberId/invoices", billingHandler.ListInvoices)
	protected.Get("/invoices/:id/pdf", billingHandler.DownloadInvoicePDF)

	// Network: subredes y pool de IPs (solo admin)
	network := protected.Group("/network", RequireRole("admin"))
	networkHandler := NewNetworkHandler(deps.NetworkUC)
	network.Post("/subnets", networkHandler.CreateSubnet)
	network.Get("/subnets", networkHandler.ListSubnets)
	network.Get("/subnets/:id/ips", networkHandler.ListIPs)

	// Tickets de soporte
	tickets := protected.Group("/tickets", RequireRole("admin", "soporte"))
	ticketHandler := NewTicketHandler(deps.TicketUC)
	tickets.Post("/", ticketHandler.Create)
	tickets.Get("/", ticketHandler.List)
	tickets.Get("/:id", ticketHandler.GetByID)
	tickets.Put("/:id", ticketHandler.Update)
	tickets.Post("/:id/escalate", ticketHandler.Escalate)
}
