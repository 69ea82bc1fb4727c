package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	appauth "bookmytourguide/internal/app/auth"
	appbooking "bookmytourguide/internal/app/booking"
	appcatalog "bookmytourguide/internal/app/catalog"
	appguide "bookmytourguide/internal/app/guide"
	appotp "bookmytourguide/internal/app/otp"
	appoutbox "bookmytourguide/internal/app/outbox"
	appsub "bookmytourguide/internal/app/subscription"
	apptestimonial "bookmytourguide/internal/app/testimonial"
	apptourrequest "bookmytourguide/internal/app/tourrequest"
	"bookmytourguide/internal/infra/broker/kafka"
	"bookmytourguide/internal/infra/config"
	mongodb "bookmytourguide/internal/infra/db/mongo"
	ginserver "bookmytourguide/internal/infra/http/gin"
	"bookmytourguide/internal/infra/mail"
	"bookmytourguide/internal/infra/obs"
	infraoutbox "bookmytourguide/internal/infra/outbox"
	"bookmytourguide/internal/infra/payments/razorpay"
	"bookmytourguide/internal/infra/security"
	"bookmytourguide/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Load()
	logger := obs.NewLogger(cfg.Env)
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("mongo connect failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Close(closeCtx); err != nil {
			logger.Warn("mongo disconnect failed", "error", err)
		}
	}()
	db := client.DB

	uploader := buildUploader(cfg, logger)
	mailer := buildMailer(cfg, logger)

	gateway := razorpay.New(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayBaseURL, logger)

	userRepo := mongodb.NewUserRepository(db)
	guideRepo := mongodb.NewGuideRepository(db)
	tourRepo := mongodb.NewTourRepository(db)
	bookingRepo := mongodb.NewBookingRepository(db)
	testimonialRepo := mongodb.NewTestimonialRepository(db)
	requestRepo := mongodb.NewTourRequestRepository(db)
	planRepo := mongodb.NewSubscriptionRepository(db)
	sessionStore := mongodb.NewSessionStore(db)
	otpStore := mongodb.NewOTPStore(db)
	outboxStore := infraoutbox.NewStore(db)

	authService := &appauth.Service{
		Users:      userRepo,
		Sessions:   sessionStore,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}
	bookingService := &appbooking.Service{
		Bookings: bookingRepo,
		Guides:   guideRepo,
		Tours:    tourRepo,
		Users:    userRepo,
		Payments: gateway,
		Outbox:   outboxStore,
		Encoder:  appoutbox.JSONEventEncoder{},
		Logger:   logger,
	}
	guideService := &appguide.Service{
		Guides:   guideRepo,
		Users:    userRepo,
		Uploader: uploader,
		Logger:   logger,
	}
	catalogService := &appcatalog.Service{Tours: tourRepo, Uploader: uploader}
	testimonialService := &apptestimonial.Service{Testimonials: testimonialRepo, Uploader: uploader}
	requestService := &apptourrequest.Service{Requests: requestRepo}
	planService := &appsub.Service{Plans: planRepo}
	otpService := &appotp.Service{
		Store:  otpStore,
		Mailer: mailer,
		TTL:    cfg.OTPTTL,
		Logger: logger,
	}

	handlers := ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: authService},
		Booking:        ginserver.BookingHandler{Service: bookingService},
		Guide:          ginserver.GuideHandler{Service: guideService},
		Catalog:        ginserver.CatalogHandler{Service: catalogService},
		Testimonial:    ginserver.TestimonialHandler{Service: testimonialService},
		TourRequest:    ginserver.TourRequestHandler{Service: requestService},
		Subscription:   ginserver.SubscriptionHandler{Service: planService},
		OTP:            ginserver.OTPHandler{Service: otpService},
		AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Checks: map[string]func(ctx context.Context) error{
			"mongo": client.Ping,
		},
	}, handlers)

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, logger)
		if err != nil {
			logger.Error("kafka producer init failed", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		worker := &infraoutbox.Worker{
			Store:       outboxStore,
			Producer:    producer,
			Logger:      logger,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			ID:          uuid.NewString(),
			Backoff:     cfg.RetryBackoff,
		}
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
		logger.Info("outbox worker started", "interval", cfg.OutboxPollInterval)
	} else {
		logger.Warn("kafka brokers not configured, events stay in the outbox")
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

func buildUploader(cfg config.Config, logger *slog.Logger) s3.Uploader {
	if cfg.S3Endpoint == "" {
		logger.Warn("object storage not configured, uploads disabled")
		return s3.NoopUploader{}
	}
	client, err := s3.NewClient(s3.Config{
		Endpoint:  cfg.S3Endpoint,
		PublicURL: cfg.S3PublicEndpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		UseSSL:    cfg.S3UseSSL,
	}, logger)
	if err != nil {
		logger.Warn("object storage init failed, uploads disabled", "error", err)
		return s3.NoopUploader{}
	}
	return client
}

func buildMailer(cfg config.Config, logger *slog.Logger) appotp.Mailer {
	if cfg.SMTPHost == "" {
		return mail.NoopMailer{Logger: logger}
	}
	return &mail.SMTPMailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		Logger:   logger,
	}
}
