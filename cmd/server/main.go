package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"greenbuilder/internal/clients"
	"greenbuilder/internal/config"
	"greenbuilder/internal/handler"
	"greenbuilder/internal/platform/firebase"
	"greenbuilder/internal/repository"
	"greenbuilder/internal/session"
	"greenbuilder/internal/workflow"
	applogger "greenbuilder/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	log.Println("Запуск GreenBuilder...")

	// Конфиг загружаем ДО инициализации логгера
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger, err := applogger.New(applogger.Config{Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer logger.Sync()
	logger.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	generator, err := clients.NewGeneratorClient(cfg.GeneratorBaseURL, cfg.GeneratorTimeout, logger)
	if err != nil {
		logger.Fatal("Не удалось создать клиент генерации", zap.Error(err))
	}

	// Firebase держит и аутентификацию, и коллекцию дизайнов. В development
	// без реквизитов поднимаемся на репозитории в памяти.
	var (
		repo         repository.DesignRepository
		sessionStore session.Store
	)
	fbClient, err := firebase.Connect(rootCtx, firebase.Config{
		ProjectID:       cfg.FirebaseProjectID,
		CredentialsPath: cfg.FirebaseCredentialsPath,
	}, logger)
	switch {
	case err == nil:
		defer fbClient.Close()
		repo = repository.NewFirestoreDesignRepository(
			fbClient.Firestore(), generator, cfg.DesignsCollection, cfg.SidebarPageSize, logger)
		sessionStore = session.NewFirebaseStore(
			fbClient.Auth(), cfg.FirebaseWebAPIKey, cfg.SessionSecret, cfg.SessionTokenTTL, logger)
		logger.Info("Успешное подключение к Firebase", zap.String("projectID", cfg.FirebaseProjectID))
	case cfg.Env == "development":
		logger.Warn("Firebase недоступен, используем репозиторий в памяти", zap.Error(err))
		repo = repository.NewMemoryDesignRepository(generator, cfg.SidebarPageSize, logger)
		sessionStore = session.NewFirebaseStore(nil, cfg.FirebaseWebAPIKey, cfg.SessionSecret, cfg.SessionTokenTTL, logger)
	default:
		logger.Fatal("Не удалось подключиться к Firebase", zap.Error(err))
	}

	workflows := workflow.NewManager(repo, logger)
	feed := handler.NewFeedManager(repo, handler.FeedConfig{
		Live:       cfg.SidebarLiveFeed,
		PollPeriod: cfg.SidebarPollPeriod,
	}, logger)
	go feed.Run(rootCtx)

	designHandler := handler.NewDesignHandler(workflows, repo, sessionStore, feed, logger)

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(handler.ZapLoggingMiddleware(logger))
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Prometheus метрики на /metrics
	prom := ginprometheus.NewPrometheus("greenbuilder")
	prom.Use(router)

	designHandler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Info("HTTP сервер запускается", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP сервер завершился с ошибкой", zap.Error(err))
			stop()
		}
	}()

	<-rootCtx.Done()
	logger.Info("Получен сигнал завершения, останавливаем сервер...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Сервер остановлен")
}
