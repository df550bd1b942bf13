package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"storefront-backend/internal/client"
	"storefront-backend/internal/config"
	"storefront-backend/internal/mailer"
	"storefront-backend/internal/repository"
	"storefront-backend/internal/server"
	"storefront-backend/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := buildLogger(cfg.Log)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := client.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to init database", zap.Error(err))
	}

	surcharge, err := decimal.NewFromString(cfg.Shipping.ExpressSurcharge)
	if err != nil {
		log.Fatal("invalid express surcharge", zap.String("value", cfg.Shipping.ExpressSurcharge), zap.Error(err))
	}

	paymentClient := client.NewStripeClient(cfg.Stripe.APIKey)

	smtpTimeout := time.Duration(cfg.SMTP.TimeoutSeconds) * time.Second
	sender := mailer.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, smtpTimeout)
	notifier := mailer.New(sender, cfg.SMTP.AdminEmail)

	orderRepo := repository.NewOrderRepository(db)

	orderService := service.NewOrderService(
		orderRepo,
		paymentClient,
		notifier,
		service.Options{
			ExpressSurcharge: surcharge,
			DefaultCountry:   cfg.Shipping.DefaultCountry,
		},
		log,
	)

	srv := server.NewServer(orderService, cfg.Auth.JWTSecret)
	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	log.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}

func buildLogger(cfg config.Log) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zc zap.Config
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}
