package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/conecta-isp/internal/application/audit"
	"github.com/jhoicas/conecta-isp/internal/application/auth"
	"github.com/jhoicas/conecta-isp/internal/application/billing"
	"github.com/jhoicas/conecta-isp/internal/application/events"
	"github.com/jhoicas/conecta-isp/internal/application/ipam"
	"github.com/jhoicas/conecta-isp/internal/application/notify"
	"github.com/jhoicas/conecta-isp/internal/application/provisioning"
	"github.com/jhoicas/conecta-isp/internal/application/usecase"
	"github.com/jhoicas/conecta-isp/internal/infrastructure/cache"
	"github.com/jhoicas/conecta-isp/internal/infrastructure/notification"
	infrapdf "github.com/jhoicas/conecta-isp/internal/infrastructure/pdf"
	"github.com/jhoicas/conecta-isp/internal/infrastructure/postgres"
	infraradius "github.com/jhoicas/conecta-isp/internal/infrastructure/radius"
	httpRouter "github.com/jhoicas/conecta-isp/internal/interfaces/http"
	"github.com/jhoicas/conecta-isp/pkg/config"
	"github.com/jhoicas/conecta-isp/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Repositorios
	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	leadRepo := postgres.NewLeadRepository(pool)
	subscriberRepo := postgres.NewSubscriberRepository(pool)
	planRepo := postgres.NewPlanRepository(pool)
	workOrderRepo := postgres.NewWorkOrderRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	subnetRepo := postgres.NewSubnetRepository(pool)
	ipRepo := postgres.NewIPAddressRepository(pool)
	vlanRepo := postgres.NewVlanRepository(pool)
	ticketRepo := postgres.NewTicketRepository(pool)
	messageRepo := postgres.NewMessageRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Adaptadores externos
	radiusClient := infraradius.NewClient(cfg.Radius)
	idemStore := cache.NewIdempotencyStore(redisClient, cfg.Provisioning.IdempotencyTTLHours)
	smsGateway := notification.NewHTTPSMSGateway(cfg.SMS)
	emailGateway := notification.NewSMTPEmailGateway(cfg.SMTP)
	pushGateway := notification.NewHTTPPushGateway(cfg.Push)
	dispatcher := notify.NewDispatcher(smsGateway, emailGateway, pushGateway, messageRepo, log)

	// Bus de eventos y orquestación
	bus := events.NewBus(log)
	ledger := ipam.NewLedger(ipRepo, vlanRepo, ipam.VlanRange{
		Min: cfg.Provisioning.VlanMin,
		Max: cfg.Provisioning.VlanMax,
	})
	coordinator := provisioning.NewCoordinator(
		leadRepo, subscriberRepo, planRepo, workOrderRepo, invoiceRepo,
		txRunner, ledger, radiusClient, idemStore, dispatcher, bus,
		billing.ParseReconnectPolicy(cfg.Provisioning.ReconnectPolicy),
		log,
	)
	bus.Subscribe(events.CollectionLeads, coordinator)
	bus.Subscribe(events.CollectionWorkOrders, coordinator)
	bus.Subscribe(events.CollectionPayments, coordinator)
	bus.Subscribe(events.CollectionSubscribers, coordinator)
	bus.Subscribe(events.CollectionInvoices, billing.NewStatusNotifier(subscriberRepo, dispatcher, log))
	bus.Subscribe(events.CollectionAll, audit.NewRecorder(auditRepo, log))

	// Casos de uso
	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	companyUC := usecase.NewCompanyUseCase(companyRepo)
	leadUC := usecase.NewLeadUseCase(leadRepo, subscriberRepo, planRepo, bus)
	subscriberUC := usecase.NewSubscriberUseCase(subscriberRepo, bus)
	planUC := usecase.NewPlanUseCase(planRepo, subnetRepo, bus)
	workOrderUC := usecase.NewWorkOrderUseCase(workOrderRepo, subscriberRepo, bus)
	paymentUC := usecase.NewPaymentUseCase(paymentRepo, invoiceRepo, subscriberRepo, bus)
	networkUC := usecase.NewNetworkUseCase(subnetRepo, ipRepo)
	ticketUC := usecase.NewTicketUseCase(ticketRepo, workOrderRepo, subscriberRepo, bus)
	invoicePDFUC := billing.NewPDFUseCase(invoiceRepo, subscriberRepo, companyRepo, infrapdf.NewMarotoInvoiceGenerator())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Conecta ISP API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		CompanyUC:    companyUC,
		LeadUC:       leadUC,
		SubscriberUC: subscriberUC,
		PlanUC:       planUC,
		WorkOrderUC:  workOrderUC,
		PaymentUC:    paymentUC,
		InvoicePDF:   invoicePDFUC,
		NetworkUC:    networkUC,
		TicketUC:     ticketUC,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
