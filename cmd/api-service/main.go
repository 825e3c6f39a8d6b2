package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coprra/coprra/internal/auth"
	"github.com/coprra/coprra/internal/cache"
	"github.com/coprra/coprra/internal/config"
	httpAPI "github.com/coprra/coprra/internal/http"
	"github.com/coprra/coprra/internal/http/controller"
	"github.com/coprra/coprra/internal/logger"
	"github.com/coprra/coprra/internal/metrics"
	"github.com/coprra/coprra/internal/password"
	"github.com/coprra/coprra/internal/pricing"
	redisrepo "github.com/coprra/coprra/internal/repository/redis"
	"github.com/coprra/coprra/internal/repository/sql"
	"github.com/coprra/coprra/internal/service"
	sqspkg "github.com/coprra/coprra/internal/sqs"
	"github.com/gin-gonic/gin"
)

func main() {
	logger.InitJSONLogger()

	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)

	ctx := context.Background()
	db, err := sql.StartDB(ctx, conf.Database)
	handleErr("starting database", err)

	redisClient, err := cache.NewClient(ctx, conf.Redis.Addr, conf.Redis.Password, conf.Redis.DB)
	handleErr("connecting to redis", err)
	cacheStore := cache.NewRedis(redisClient, "coprra")

	// Repositories
	productRepository := sql.NewProductRepository(db)
	offerRepository := sql.NewOfferRepository(db)
	userRepository := sql.NewUserRepository(db)
	jobStatusRepository := redisrepo.NewJobStatusRepository(redisClient)
	preferenceRepository := redisrepo.NewPreferenceRepository(redisClient, "en", conf.Currency.DefaultCode)

	// SQS publisher for background jobs
	sqsClient, err := sqspkg.NewClient(ctx, conf.AWS.Region, conf.AWS.Endpoint)
	handleErr("creating SQS client", err)
	publisher := sqspkg.NewPublisher(sqsClient, conf.AWS.SQSQueueURL)

	// Services
	catalogService := service.NewCatalogService(productRepository, cacheStore)
	jobService := service.NewJobService(jobStatusRepository, publisher)

	currencies := pricing.TableFromRates(conf.Currency.DefaultCode, conf.Currency.Rates)

	passwordPolicy := password.DefaultPolicy()
	if conf.Password.MinLength > 0 {
		passwordPolicy.MinLength = conf.Password.MinLength
	}
	passwordPolicy.HistoryCount = conf.Password.HistoryCount
	passwordValidator, err := password.NewValidator(passwordPolicy)
	handleErr("compiling password policy", err)

	tokens := auth.NewManager(conf.JWTSecret, time.Hour)

	ctrs := httpAPI.Controllers{
		Base:    controller.New(db, cacheStore, preferenceRepository, currencies, conf.StoragePath),
		Product: controller.NewProductController(catalogService, offerRepository, currencies, preferenceRepository),
		Job:     controller.NewJobController(jobService),
		Auth:    controller.NewAuthController(userRepository, passwordValidator, tokens),
	}

	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	httpServer := gin.Default()
	httpServer = httpAPI.InitRouter(conf, httpServer, ctrs, tokens)

	go func() {
		if err := httpServer.Run(":" + conf.HTTPServer.Port); err != nil {
			handleErr("listening to HTTP requests", err)
		}
	}()

	metrics.StartMetricsServer(conf)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutting down gracefully...")
}

func handleErr(msg string, err error) {
	if err != nil {
		log.Fatalf("error while %s: %v", msg, err)
	}
}
