package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	jwttoken "nameaffirm/internal/jwt_token"
	"nameaffirm/internal/notify"
	"nameaffirm/internal/platform/config"
	"nameaffirm/internal/platform/kafka"
	"nameaffirm/internal/platform/logger"
	"nameaffirm/internal/platform/metrics"
	platformredis "nameaffirm/internal/platform/redis"
	"nameaffirm/internal/tasks"
	httptransport "nameaffirm/internal/transport/http"
	"nameaffirm/internal/verifiedname"
	"nameaffirm/internal/verifiedname/configcache"
	"nameaffirm/internal/verifiedname/service"
	"nameaffirm/internal/verifiedname/store"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the service and tasks packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	var vnStore verifiedname.Store
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("ping postgres", "error", err)
			os.Exit(1)
		}
		vnStore = store.NewPostgresStore(db)
	} else {
		log.Warn("no postgres DSN configured, using in-memory store")
		vnStore = store.NewInMemoryStore()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	var certs service.CertsFlag
	if redisClient != nil {
		defer redisClient.Close()
		certs = configcache.New(redisClient.Client, vnStore, cfg.ConfigCacheTTL, log, m)
	} else {
		log.Warn("no redis configured, certificate flag reads bypass the cache")
		certs = configcache.New(nil, vnStore, cfg.ConfigCacheTTL, log, m)
	}

	serviceOpts := []service.Option{service.WithMetrics(m)}
	var producer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		if err := kafka.EnsureTopics(ctx, cfg.Kafka.Brokers,
			cfg.Kafka.IDVTopic, cfg.Kafka.ProctoringTopic, cfg.Kafka.NotificationsTopic,
		); err != nil {
			log.Error("ensure kafka topics", "error", err)
			os.Exit(1)
		}
		producer, err = kafka.NewProducer(cfg.Kafka.Brokers)
		if err != nil {
			log.Error("create kafka producer", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		serviceOpts = append(serviceOpts,
			service.WithNotifier(notify.NewKafkaPublisher(producer, cfg.Kafka.NotificationsTopic)))
	}

	svc := service.New(vnStore, certs, log, serviceOpts...)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "nameaffirm", "nameaffirm-api")
	handler := httptransport.New(svc, log, m, jwtService)
	router := httptransport.NewRouter(handler)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting nameaffirm", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if len(cfg.Kafka.Brokers) > 0 {
		runner := tasks.NewRunner(log, tasks.WithMetrics(m))
		handlers := tasks.NewHandlers(svc, log)
		topicRouter := kafka.NewRouter(log)
		topicRouter.Register(cfg.Kafka.IDVTopic, tasks.NewIDVTopicHandler(handlers, runner, log))
		topicRouter.Register(cfg.Kafka.ProctoringTopic, tasks.NewProctoringTopicHandler(handlers, runner, log))

		consumer, err := kafka.NewConsumer(
			cfg.Kafka.Brokers,
			cfg.Kafka.ConsumerGroup,
			[]string{cfg.Kafka.IDVTopic, cfg.Kafka.ProctoringTopic},
			topicRouter,
			log,
		)
		if err != nil {
			log.Error("create kafka consumer", "error", err)
			os.Exit(1)
		}
		group.Go(func() error {
			defer consumer.Close()
			log.Info("starting attempt event consumer",
				"group", cfg.Kafka.ConsumerGroup,
				"topics", []string{cfg.Kafka.IDVTopic, cfg.Kafka.ProctoringTopic},
			)
			return consumer.Run(ctx)
		})
	} else {
		log.Warn("no kafka brokers configured, attempt event consumption disabled")
	}

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
