package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ridelink/internal/config"
	"ridelink/internal/handlers"
	"ridelink/internal/repositories/mongodb"
	"ridelink/internal/services"
	"ridelink/pkg/cache"
	"ridelink/pkg/database"
	"ridelink/pkg/logger"
	"ridelink/pkg/maps"
	"ridelink/pkg/payment"
	"ridelink/pkg/push"
	"ridelink/pkg/sms"
	"ridelink/pkg/websocket"
	"ridelink/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to mongodb")
	}
	defer db.Close()

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(indexCtx, db.Database); err != nil {
		cancelIndexes()
		log.WithError(err).Fatal("failed to ensure indexes")
	}
	cancelIndexes()

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.WithError(err).Warn("redis unavailable, running without cache and geo index")
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	wsHandler := websocket.NewHandler()

	// Repositories.
	rideRepo := mongodb.NewRideRepository(db.Database)
	riderRepo := mongodb.NewRiderRepository(db.Database)
	driverRepo := mongodb.NewDriverRepository(db.Database)
	vehicleRepo := mongodb.NewVehicleRepository(db.Database)
	negotiationRepo := mongodb.NewNegotiationRepository(db.Database)
	paymentRepo := mongodb.NewPaymentRepository(db.Database)
	promoRepo := mongodb.NewPromotionRepository(db.Database)
	walletRepo := mongodb.NewWalletRepository(db.Database)
	earningsRepo := mongodb.NewEarningsRepository(db.Database)
	notificationRepo := mongodb.NewNotificationRepository(db.Database)

	// Collaborator providers. Each is optional: an unconfigured provider is
	// wired as nil and the owning service degrades to logging only.
	var fcmProvider push.PushProvider
	if cfg.Push.FCM.Credentials != "" {
		p, err := push.NewFCMProvider(cfg.Push.FCM.Credentials)
		if err != nil {
			log.WithError(err).Warn("fcm provider disabled")
		} else {
			fcmProvider = p
		}
	}

	var apnsProvider push.PushProvider
	if cfg.Push.APNS.KeyFile != "" {
		p, err := push.NewAPNSProvider(cfg.Push.APNS.KeyFile, cfg.Push.APNS.KeyID,
			cfg.Push.APNS.TeamID, cfg.Push.APNS.BundleID, cfg.Push.APNS.Production)
		if err != nil {
			log.WithError(err).Warn("apns provider disabled")
		} else {
			apnsProvider = p
		}
	}

	var smsProvider sms.SMSProvider
	switch cfg.SMS.Provider {
	case "twilio":
		if cfg.SMS.Twilio.AccountSID != "" {
			smsProvider = sms.NewTwilioProvider(cfg.SMS.Twilio.AccountSID,
				cfg.SMS.Twilio.AuthToken, cfg.SMS.Twilio.FromNumber)
		}
	case "aws":
		p, err := sms.NewAWSSNSProvider(cfg.SMS.AWS.Region)
		if err != nil {
			log.WithError(err).Warn("sns provider disabled")
		} else {
			smsProvider = p
		}
	}

	var gateway payment.PaymentProvider
	switch cfg.Payment.DefaultProvider {
	case "stripe":
		if cfg.Payment.Stripe.SecretKey != "" {
			gateway = payment.NewStripeProvider(cfg.Payment.Stripe.SecretKey)
		}
	case "razorpay":
		if cfg.Payment.Razorpay.KeyID != "" {
			gateway = payment.NewRazorpayProvider(cfg.Payment.Razorpay.KeyID, cfg.Payment.Razorpay.KeySecret)
		}
	}

	var mapsProvider maps.MapsProvider
	if cfg.Maps.GoogleMaps.APIKey != "" {
		p, err := maps.NewGoogleMapsProvider(cfg.Maps.GoogleMaps.APIKey)
		if err != nil {
			log.WithError(err).Warn("maps provider disabled, using haversine estimates")
		} else {
			mapsProvider = p
		}
	}

	var geoIndex services.DriverLocationIndex
	if redisCache != nil {
		geoIndex = services.NewRedisGeoIndex(redisCache)
	}

	// Services.
	fareService := services.NewFareService(cfg.Pricing)
	promoService := services.NewPromoService(promoRepo)
	walletService := services.NewWalletService(walletRepo)
	notificationService := services.NewNotificationService(riderRepo, driverRepo, notificationRepo,
		fcmProvider, apnsProvider, smsProvider, wsHandler, log)
	negotiationService := services.NewNegotiationService(negotiationRepo, rideRepo, driverRepo, db,
		notificationService, cfg.Pricing, log)
	matchingService := services.NewMatchingService(driverRepo, rideRepo, negotiationRepo,
		geoIndex, wsHandler, cfg.Pricing, log)
	paymentService := services.NewPaymentService(paymentRepo, walletService, gateway, db,
		notificationService, cfg.App.Currency, log)
	rideService := services.NewRideService(rideRepo, riderRepo, driverRepo, vehicleRepo,
		negotiationRepo, paymentRepo, earningsRepo, fareService, promoService,
		notificationService, db, mapsProvider, redisCache, wsHandler, cfg.App.Currency, log)

	// Handlers and router.
	router := routes.SetupRouter(
		log,
		handlers.NewHealthHandler(db, redisCache),
		handlers.NewRideHandler(rideService),
		handlers.NewNegotiationHandler(negotiationService),
		handlers.NewMatchingHandler(matchingService),
		handlers.NewPaymentHandler(paymentService, walletService),
		wsHandler,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Infof("server listening on port %d", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
}
