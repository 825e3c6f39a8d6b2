package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/coprra/coprra/internal/cache"
	"github.com/coprra/coprra/internal/config"
	"github.com/coprra/coprra/internal/logger"
	"github.com/coprra/coprra/internal/metrics"
	redisrepo "github.com/coprra/coprra/internal/repository/redis"
	"github.com/coprra/coprra/internal/service"
	sqspkg "github.com/coprra/coprra/internal/sqs"
)

func main() {
	logger.InitJSONLogger()

	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient, err := cache.NewClient(ctx, conf.Redis.Addr, conf.Redis.Password, conf.Redis.DB)
	handleErr("connecting to redis", err)

	jobStatusRepository := redisrepo.NewJobStatusRepository(redisClient)
	runner := service.NewRunner(jobStatusRepository, service.DefaultRetryPolicy)

	sqsClient, err := sqspkg.NewClient(ctx, conf.AWS.Region, conf.AWS.Endpoint)
	handleErr("creating SQS client", err)
	consumer := sqspkg.NewConsumer(sqsClient, conf.AWS.SQSQueueURL, runner)

	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Consumer error: %v", err)
		}
	}()

	metrics.StartMetricsServer(conf)

	log.Println("Worker service started. Listening for jobs...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutting down gracefully...")
	cancel()
}

func handleErr(msg string, err error) {
	if err != nil {
		log.Fatalf("error while %s: %v", msg, err)
	}
}
