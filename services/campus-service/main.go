package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	consulapi "github.com/hashicorp/consul/api"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/config"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/handler"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/queue"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/repository"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/usecase"
	"github.com/campusconnect/campus-qa-api/shared/auth"
	"github.com/campusconnect/campus-qa-api/shared/mailer"
	"github.com/campusconnect/campus-qa-api/shared/middleware"
	"github.com/campusconnect/campus-qa-api/shared/provider"
)

func main() {
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "campus-service").
		Logger()

	cfg := config.NewConfig(&logger)

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from mongodb")
		}
	}()

	ctx := context.Background()
	db := client.Database(cfg.MongoDatabase)

	accountRepo := repository.NewAccountMongoRepository(ctx, &logger, db)
	identityRepo := repository.NewIdentityMongoRepository(ctx, &logger, db)
	sessionRepo := repository.NewSessionMongoRepository(db)
	tokenRepo := repository.NewVerificationTokenMongoRepository(ctx, &logger, db)
	requestRepo := repository.NewVerificationRequestMongoRepository(ctx, &logger, db)
	questionRepo := repository.NewQuestionMongoRepository(ctx, &logger, db)
	answerRepo := repository.NewAnswerMongoRepository(ctx, &logger, db)
	likeRepo := repository.NewLikeMongoRepository(ctx, &logger, db)
	processedEventRepo := repository.NewProcessedEventMongoRepository(ctx, &logger, db)
	auditRepo := repository.NewAuditLogMongoRepository(db)
	transactor := repository.NewMongoTransactor(client)

	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer)
	googleProvider := provider.NewGoogleOAuthProvider(cfg.GoogleClientID)
	mail := mailer.NewMailer(&logger)

	answerProducer := queue.NewProducer(
		&logger, cfg.Kafka.Broker, cfg.Kafka.AnswerEventTopic, cfg.Kafka.Username, cfg.Kafka.Password)
	notifyProducer := queue.NewProducer(
		&logger, cfg.Kafka.Broker, cfg.Kafka.NotifyTopic, cfg.Kafka.Username, cfg.Kafka.Password)
	defer answerProducer.Close()
	defer notifyProducer.Close()

	streams := usecase.NewAnswerStreams(answerRepo, &logger)

	accountUsecase := usecase.NewAccountUsecase(
		accountRepo, identityRepo, sessionRepo, googleProvider, jwtAuth, cfg)
	verificationUsecase := usecase.NewVerificationUsecase(
		accountRepo, tokenRepo, transactor, mail, &logger, cfg)
	reviewUsecase := usecase.NewReviewUsecase(
		accountRepo, requestRepo, auditRepo, transactor, mail, notifyProducer, &logger)
	flowUsecase := usecase.NewFlowUsecase(accountRepo, requestRepo)
	qaUsecase := usecase.NewQAUsecase(
		accountRepo, questionRepo, answerRepo, answerProducer, streams, &logger)
	engagementUsecase := usecase.NewEngagementUsecase(
		accountRepo, questionRepo, answerRepo, likeRepo, processedEventRepo, transactor, &logger)
	adminUsecase := usecase.NewAdminUsecase(accountRepo, auditRepo, transactor)

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()

	if cfg.Kafka.Broker != "" {
		consumer := queue.NewAnswerEventConsumer(
			&logger, cfg.Kafka.Broker, cfg.Kafka.AnswerEventTopic, cfg.Kafka.GroupID, engagementUsecase)
		defer consumer.Close()

		go consumer.Listen(consumerCtx)
	} else {
		logger.Warn().Msg("kafka broker not configured, answer counters will not be updated")
	}

	campusHandler := handler.NewCampusHTTPHandler(
		accountUsecase,
		verificationUsecase,
		reviewUsecase,
		flowUsecase,
		qaUsecase,
		engagementUsecase,
		adminUsecase,
		streams,
		&logger,
	)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.NewJWTMiddleware(jwtAuth, cfg.Token.AccessTokenSecret, []string{
		"/healthz",
		"/v1/auth/register",
		"/v1/auth/login",
		"/v1/auth/google",
	}))
	campusHandler.SetupRoutes(router)

	registerWithConsul(&logger, cfg)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	stopConsumer()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown failed")
	}
}

// registerWithConsul announces the service to the local consul agent. Service
// discovery is optional: an empty address disables it.
func registerWithConsul(logger *zerolog.Logger, cfg *config.Config) {
	if cfg.Consul.Address == "" {
		return
	}

	client, err := consulapi.NewClient(&consulapi.Config{Address: cfg.Consul.Address})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create consul client")
	}

	serviceID := cfg.Consul.ServiceID
	if serviceID == "" {
		serviceID = fmt.Sprintf("%s-%d", cfg.Consul.ServiceName, os.Getpid())
	}

	registration := &consulapi.AgentServiceRegistration{
		ID:   serviceID,
		Name: cfg.Consul.ServiceName,
		Check: &consulapi.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://localhost%s/healthz", cfg.HTTPAddr),
			Interval:                       "10s",
			Timeout:                        "3s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	if err := client.Agent().ServiceRegister(registration); err != nil {
		logger.Fatal().Err(err).Msg("failed to register service with consul")
	}

	logger.Info().Str("service_id", serviceID).Msg("registered with consul")
}
