package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rasadhq/rasad/internal/queue"
	"github.com/rasadhq/rasad/internal/util"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robfig/cron/v3"

	"github.com/rasadhq/rasad/pkg/analysis"
	"github.com/rasadhq/rasad/pkg/brain"
	"github.com/rasadhq/rasad/pkg/cache"
	"github.com/rasadhq/rasad/pkg/graphbuild"
	"github.com/rasadhq/rasad/pkg/leaselock"
	"github.com/rasadhq/rasad/pkg/logger"
	"github.com/rasadhq/rasad/pkg/logger/console"
	"github.com/rasadhq/rasad/pkg/store"
	storepgx "github.com/rasadhq/rasad/pkg/store/pgx"
	"github.com/rasadhq/rasad/pkg/trends"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  debug,
		Prefix: "worker",
	})
	logger.Init(consoleLogger)

	// Init pgx client
	pgConn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()

	// Init rabbitmq
	conn := queue.Init()
	defer conn.Close()

	// Init rabbitmq queues if not exist
	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to declare queues", "err", err)
	}

	// Analyzer client
	brainClient := brain.NewClient(brain.ClientParams{
		BaseURL: util.GetEnvString("BRAIN_URL", "http://localhost:8000"),
		Timeout: util.GetEnvDuration("BRAIN_TIMEOUT", 0),
	})

	// Progress cache
	var progressCache cache.ProgressCache = cache.Noop{}
	if addr := util.GetEnv("REDIS_ADDR"); addr != "" {
		redisCache := cache.NewRedisCache(cache.RedisCacheParams{
			Addr:     addr,
			Password: util.GetEnv("REDIS_PASSWORD"),
			DB:       util.GetEnvInt("REDIS_DB", 0),
		})
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("Redis unreachable, progress cache disabled", "err", err)
		} else {
			defer redisCache.Close()
			progressCache = redisCache
		}
	}

	// Stores and services
	analyses := storepgx.NewAnalysisStorage(storepgx.NewAnalysisStorageParams{Conn: pgConn})
	results := storepgx.NewResultStorage(storepgx.NewResultStorageParams{Conn: pgConn})
	posts := storepgx.NewPostStorage(storepgx.NewPostStorageParams{Conn: pgConn})
	graph := storepgx.NewGraphStorage(storepgx.NewGraphStorageParams{Conn: pgConn})
	trendStore := storepgx.NewTrendStorage(storepgx.NewTrendStorageParams{Conn: pgConn})
	authors := storepgx.NewAuthorStorage(storepgx.NewAuthorStorageParams{Conn: pgConn})

	graphService := graphbuild.NewService(graphbuild.ServiceParams{
		Graph:   graph,
		Posts:   posts,
		Authors: authors,
		Brain:   brainClient,
	})
	detector := trends.NewDetector(trends.DetectorParams{
		Trends: trendStore,
		Posts:  posts,
		Brain:  brainClient,
	})

	orch := analysis.NewOrchestrator(analysis.OrchestratorParams{
		Analyses:    analyses,
		Results:     results,
		Posts:       posts,
		Brain:       brainClient,
		Cache:       progressCache,
		Enqueuer:    queue.NewPublisher(ch),
		GraphRunner: graphService,
		TrendRunner: detector,
		MaxPosts:    util.GetEnvInt("ANALYSIS_MAX_POSTS", 0),
	})

	startPeriodicJobs(ctx, pgConn, ch, results, detector)

	logger.Info("Listening for messages")

	// Create a single consumer channel with prefetch=1
	// This ensures only ONE message is delivered at a time across all queues
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	err = consumerCh.Qos(1, 0, true)
	if err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	type queuedMessage struct {
		msg       amqp.Delivery
		queueName string
	}

	messageChan := make(chan queuedMessage)

	for _, queueName := range queue.Queues {
		go func(qName string) {
			consumerTag := fmt.Sprintf("%s_consumer", qName)
			msgs, err := consumerCh.Consume(
				qName,
				consumerTag,
				false, // autoAck
				false, // exclusive
				false, // noLocal
				false, // noWait
				nil,   // args
			)
			if err != nil {
				logger.Fatal("Failed to start consuming", "queue", qName, "err", err)
			}

			for {
				select {
				case <-ctx.Done():
					logger.Info("Stopping consumer", "queue", qName)
					return
				case msg, ok := <-msgs:
					if !ok {
						logger.Info("Message channel closed", "queue", qName)
						return
					}
					messageChan <- queuedMessage{msg: msg, queueName: qName}
				}
			}
		}(queueName)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case qm := <-messageChan:
				startTime := time.Now()
				logger.Info("Received message", "queue", qm.queueName)

				var processingErr error
				switch qm.queueName {
				case queue.AnalysisQueue:
					processingErr = queue.ProcessAnalysisMessage(ctx, orch, string(qm.msg.Body))
				case queue.GraphQueue:
					processingErr = queue.ProcessGraphMessage(ctx, graphService, pgConn, string(qm.msg.Body))
				case queue.TrendQueue:
					processingErr = queue.ProcessTrendMessage(ctx, detector, string(qm.msg.Body))
				}

				// If there was an error send to retry or dead-letter, otherwise ack the message
				if processingErr != nil {
					logger.Error("Error processing message", "queue", qm.queueName, "err", processingErr)
					handleProcessingError(consumerCh, qm.msg, qm.queueName)
				} else {
					err = qm.msg.Ack(false)
					if err != nil {
						logger.Error("Failed to ack message", "err", err)
					}
					logger.Info("Message processed successfully", "queue", qm.queueName)
				}

				logger.Info("Processing time", "duration", time.Since(startTime).Round(time.Millisecond).String())
				logger.Info("Waiting for next message")
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, exiting...")
}

// startPeriodicJobs schedules the recurring maintenance work. Each job takes
// a lease so only one worker replica runs it per tick.
func startPeriodicJobs(ctx context.Context, pgConn *pgxpool.Pool, ch *amqp.Channel, results store.ResultStore, detector *trends.Detector) {
	locks := leaselock.New(pgConn)
	publisher := queue.NewPublisher(ch)
	retention := util.GetEnvInt("RESULT_RETENTION_DAYS", 90)

	c := cron.New()

	// Hourly trend detection over the last hour of posts.
	c.AddFunc("@hourly", func() {
		err := locks.WithLease(ctx, "cron:trend_detect", leaselock.Options{
			TTL:         5 * time.Minute,
			TokenPrefix: "cron/",
		}, func(ctx context.Context) error {
			return publisher.EnqueueTrendDetection(ctx, queue.DetectTrendsMsg{Hours: 1})
		})
		if err != nil && !errors.Is(err, leaselock.ErrBusy) {
			logger.Error("Trend detection tick failed", "err", err)
		}
	})

	// Half-hourly status refresh over the active trends.
	c.AddFunc("*/30 * * * *", func() {
		err := locks.WithLease(ctx, "cron:trend_status", leaselock.Options{
			TTL:         5 * time.Minute,
			TokenPrefix: "cron/",
		}, func(ctx context.Context) error {
			return detector.UpdateStatuses(ctx)
		})
		if err != nil && !errors.Is(err, leaselock.ErrBusy) {
			logger.Error("Trend status refresh failed", "err", err)
		}
	})

	// Daily graph rebuild over the last day of posts.
	c.AddFunc("@daily", func() {
		err := locks.WithLease(ctx, "cron:graph_build", leaselock.Options{
			TTL:         5 * time.Minute,
			TokenPrefix: "cron/",
		}, func(ctx context.Context) error {
			return publisher.EnqueueGraphBuild(ctx, queue.BuildGraphMsg{GraphType: "all", Hours: 24})
		})
		if err != nil && !errors.Is(err, leaselock.ErrBusy) {
			logger.Error("Graph build tick failed", "err", err)
		}
	})

	// Daily cleanup of old per-post results.
	c.AddFunc("@daily", func() {
		err := locks.WithLease(ctx, "cron:result_cleanup", leaselock.Options{
			TTL:         30 * time.Minute,
			RenewEvery:  10 * time.Minute,
			TokenPrefix: "cron/",
		}, func(ctx context.Context) error {
			cutoff := time.Now().AddDate(0, 0, -retention)
			deleted, err := results.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				return err
			}
			logger.Info("Cleaned up old results", "deleted", deleted, "cutoff", cutoff)
			return nil
		})
		if err != nil && !errors.Is(err, leaselock.ErrBusy) {
			logger.Error("Result cleanup tick failed", "err", err)
		}
	})

	c.Start()
	go func() {
		<-ctx.Done()
		c.Stop()
	}()
}

func handleProcessingError(ch *amqp.Channel, msg amqp.Delivery, queueName string) {
	retries := 0
	if val, ok := msg.Headers["x-retries"]; ok {
		if v, ok := val.(int32); ok {
			retries = int(v)
		}
	}

	// If message has been retried 10 times, send to dead-letter
	if retries >= 10 {
		dlqName := queueName + "_dlq"
		logger.Info("Sending message to DLQ", "dlq", dlqName)
		pubErr := ch.Publish(
			"",
			dlqName,
			false,
			false,
			amqp.Publishing{
				ContentType: "text/plain",
				Body:        msg.Body,
				Headers:     msg.Headers,
			},
		)
		if pubErr != nil {
			logger.Error("Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			msg.Nack(false, true)
			return
		}
		msg.Ack(false)
		return
	}

	retryName := queueName + "_retry"
	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retries"] = retries + 1

	pubErr := ch.Publish(
		"",
		retryName,
		false,
		false,
		amqp.Publishing{
			ContentType: "text/plain",
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("Failed to publish to retry queue", "retry_queue", retryName, "err", pubErr)
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}
