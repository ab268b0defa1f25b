package main

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	amqp "github.com/rabbitmq/amqp091-go"

	"mintmart/internal/chain"
	"mintmart/internal/config"
	"mintmart/internal/events"
	"mintmart/internal/http/handlers"
	applog "mintmart/internal/log"
	"mintmart/internal/payment"
	"mintmart/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Collaborator wiring. Without configured endpoints the in-memory
	// fakes keep local dev self-contained.
	var chainClient chain.Client
	if cfg.ChainAPIURL != "" {
		chainClient = chain.NewHTTPClient(cfg.ChainAPIURL, cfg.OracleTimeout)
	} else {
		log.Println("[warn] CHAIN_API_URL unset, using in-memory ownership fake")
		chainClient = chain.NewFake()
	}

	var pay payment.Client
	if cfg.PaymentAPIURL != "" {
		pay = payment.NewHTTPClient(cfg.PaymentAPIURL, cfg.PaymentTimeout)
	} else {
		log.Println("[warn] PAYMENT_API_URL unset, using in-memory payment fake")
		pay = payment.NewFake()
	}

	var pub events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		conn, err := amqp.Dial(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("amqp dial: %v", err)
		}
		defer conn.Close()
		rp, err := events.NewRabbitPublisher(conn)
		if err != nil {
			log.Fatalf("amqp publisher: %v", err)
		}
		defer rp.Close()
		pub = rp
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong, please try again",
			})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/healthz")
		},
	}))

	// ---------- Routes ----------
	deps := handlers.NewDeps(db, cfg, chainClient, pay, pub)

	api := app.Group("/api/v1")
	api.Get("/products", deps.ProductHandler.List)
	api.Get("/products/:id", deps.ProductHandler.Detail)
	api.Get("/availability", deps.ProductHandler.Availability)
	api.Get("/eligibility", deps.ProductHandler.EligibilityPreview)

	api.Get("/cart", deps.CartHandler.View)
	api.Post("/cart", deps.CartHandler.Add)
	api.Post("/cart/update", deps.CartHandler.Update)
	api.Post("/cart/remove", deps.CartHandler.Remove)
	api.Post("/cart/clear", deps.CartHandler.Clear)

	// Checkout throttled harder than browsing: it fans out to the chain
	// and payment collaborators.
	api.Post("/checkout", limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Warn(c, "rate.checkout.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}), deps.CheckoutHandler.Checkout)

	api.Get("/orders", deps.OrderHandler.History)
	api.Get("/orders/:id", deps.OrderHandler.View)
	api.Post("/orders/:id/cancel", deps.CheckoutHandler.Cancel)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
