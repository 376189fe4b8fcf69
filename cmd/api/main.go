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
	"github.com/shopspring/decimal"

	appbilling "github.com/Jecsonrv/GproLogisticApp-sub001/internal/application/billing"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/infrastructure/postgres"
	httpRouter "github.com/Jecsonrv/GproLogisticApp-sub001/internal/interfaces/http"
	"github.com/Jecsonrv/GproLogisticApp-sub001/pkg/config"
	"github.com/Jecsonrv/GproLogisticApp-sub001/pkg/logger"
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

	ivaRate, err := decimal.NewFromString(cfg.Billing.IVARate)
	if err != nil {
		log.Fatal().Err(err).Str("iva_rate", cfg.Billing.IVARate).Msg("tasa de IVA inválida")
	}

	orderRepo := postgres.NewServiceOrderRepository(pool)
	itemRepo := postgres.NewBillableItemRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	creditRepo := postgres.NewCreditNoteRepository(pool)
	historyRepo := postgres.NewEditHistoryRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	itemPoolUC := appbilling.NewItemPoolUseCase(orderRepo, itemRepo)
	invoiceUC := appbilling.NewInvoiceUseCase(
		txRunner, orderRepo, invoiceRepo, itemRepo,
		paymentRepo, creditRepo, historyRepo,
		ivaRate, cfg.Billing.PlaceholderPrefix,
	)
	paymentUC := appbilling.NewPaymentUseCase(txRunner, invoiceRepo, paymentRepo)
	creditNoteUC := appbilling.NewCreditNoteUseCase(txRunner, invoiceRepo, creditRepo)

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
		Title:    "GproLogistic Billing API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ItemPoolUC:   itemPoolUC,
		InvoiceUC:    invoiceUC,
		PaymentUC:    paymentUC,
		CreditNoteUC: creditNoteUC,
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
