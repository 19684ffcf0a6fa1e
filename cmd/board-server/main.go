package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	esv7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	rv8 "github.com/go-redis/redis/v8"
	"github.com/riandyrn/otelchi"
	"go.uber.org/zap"

	"github.com/courseflow/board/cmd/internal"
	internaldomain "github.com/courseflow/board/internal"
	"github.com/courseflow/board/internal/board"
	"github.com/courseflow/board/internal/calendar"
	"github.com/courseflow/board/internal/elasticsearch"
	"github.com/courseflow/board/internal/envvar"
	"github.com/courseflow/board/internal/estimator"
	"github.com/courseflow/board/internal/gcal"
	"github.com/courseflow/board/internal/gdrive"
	"github.com/courseflow/board/internal/kafka"
	"github.com/courseflow/board/internal/memcached"
	"github.com/courseflow/board/internal/rabbitmq"
	"github.com/courseflow/board/internal/redis"
	"github.com/courseflow/board/internal/rest"
	"github.com/courseflow/board/internal/sync"
)

func main() {
	var env, address string

	flag.StringVar(&env, "env", "", "Environment Variables filename")
	flag.StringVar(&address, "address", ":9234", "HTTP Server Address")
	flag.Parse()

	errC, err := run(env, address)
	if err != nil {
		log.Fatalf("Couldn't run: %s", err)
	}

	if err := <-errC; err != nil {
		log.Fatalf("Error while running: %s", err)
	}
}

func run(env, address string) (<-chan error, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "zap.NewProduction")
	}

	if err := envvar.Load(env); err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "envvar.Load")
	}

	vault, err := internal.NewVaultProvider()
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewVaultProvider")
	}

	conf := envvar.New(vault)

	es, err := internal.NewElasticSearch(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewElasticSearch")
	}

	kafkaProducer, err := internal.NewKafkaProducer(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewKafkaProducer")
	}

	rmq, err := internal.NewRabbitMQ(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewRabbitMQ")
	}

	rdb, err := internal.NewRedis(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewRedis")
	}

	mc, err := internal.NewMemcached(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewMemcached")
	}

	promExporter, err := internal.NewOTExporter(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewOTExporter")
	}

	httpClient := internal.NewHTTPClient()

	tokens, err := internal.NewGoogleTokenSource(conf, httpClient)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewGoogleTokenSource")
	}

	estimatorURL, err := conf.Get("ESTIMATOR_URL")
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "conf.Get ESTIMATOR_URL")
	}

	drive := gdrive.NewClient(httpClient, tokens)

	synchronizer := sync.NewSynchronizer(logger, drive)

	snapshot, err := synchronizer.Load(context.Background())
	if err != nil {
		// Load degraded to the in-memory seed; the board still works.
		logger.Warn("starting without remote persistence", zap.Error(err))
	}

	synchronizer.Start()

	events := &fanout{
		pubs: []board.EventPublisher{
			kafka.NewTask(kafkaProducer.Producer, kafkaProducer.Topic),
			rabbitmq.NewTask(rmq.Channel),
			redis.NewTask(rdb),
		},
	}

	engine := board.NewBoard(logger, events, synchronizer, snapshot)

	feed := calendar.NewFeed(logger, memcached.NewFeed(mc, gcal.NewClient(httpClient, tokens), logger))

	logging := func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Info(r.Method,
				zap.Time("time", time.Now()),
				zap.String("url", r.URL.String()),
			)
			h.ServeHTTP(w, r)
		})
	}

	srv, err := newServer(serverConfig{
		Address:       address,
		Board:         engine,
		Feed:          feed,
		Sync:          synchronizer,
		ElasticSearch: es,
		Estimator:     estimator.NewClient(httpClient, estimatorURL),
		Redis:         rdb,
		Metrics:       promExporter,
		Middlewares:   []func(next http.Handler) http.Handler{otelchi.Middleware("board-server"), logging},
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("newServer %w", err)
	}

	errC := make(chan error, 1)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		defer func() {
			logger.Sync()
			engine.Close()
			synchronizer.Stop()
			kafkaProducer.Producer.Close()
			rmq.Close()
			rdb.Close()
			stop()
			cancel()
			close(errC)
		}()

		srv.SetKeepAlivesEnabled(false)

		if err := srv.Shutdown(ctxTimeout); err != nil {
			errC <- err
		}

		logger.Info("shutdown completed")
	}()

	go func() {
		logger.Info("Listening and serving", zap.String("address", address))

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errC <- err
		}
	}()

	return errC, nil
}

type serverConfig struct {
	Address       string
	Board         *board.Board
	Feed          *calendar.Feed
	Sync          *sync.Synchronizer
	ElasticSearch *esv7.Client
	Estimator     *estimator.Client
	Redis         *rv8.Client
	Metrics       http.Handler
	Middlewares   []func(next http.Handler) http.Handler
	Logger        *zap.Logger
}

func newServer(conf serverConfig) (*http.Server, error) {
	router := chi.NewRouter()
	router.Use(render.SetContentType(render.ContentTypeJSON))

	for _, mw := range conf.Middlewares {
		router.Use(mw)
	}

	rest.RegisterOpenAPI(router)
	rest.NewBoardHandler(conf.Board).Register(router)
	rest.NewCalendarHandler(conf.Feed, conf.Board).Register(router)
	rest.NewSearchHandler(elasticsearch.NewTask(conf.ElasticSearch)).Register(router)
	rest.NewEstimatorHandler(conf.Estimator).Register(router)
	rest.NewStatusHandler(conf.Sync).Register(router)

	router.Handle("/metrics", conf.Metrics)

	lmt := tollbooth.NewLimiter(3, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Second})
	lmtmw := tollbooth.LimitHandler(lmt, router)

	return &http.Server{
		Handler:           lmtmw,
		Addr:              conf.Address,
		ReadTimeout:       1 * time.Second,
		ReadHeaderTimeout: 1 * time.Second,
		WriteTimeout:      1 * time.Second,
		IdleTimeout:       1 * time.Second,
	}, nil
}

// fanout publishes every event to all configured brokers. The board already
// treats publishing as best effort, so the first failure is enough to
// surface.
type fanout struct {
	pubs []board.EventPublisher
}

func (f *fanout) Created(ctx context.Context, task internaldomain.Task) error {
	for _, p := range f.pubs {
		if err := p.Created(ctx, task); err != nil {
			return err
		}
	}

	return nil
}

func (f *fanout) Updated(ctx context.Context, task internaldomain.Task) error {
	for _, p := range f.pubs {
		if err := p.Updated(ctx, task); err != nil {
			return err
		}
	}

	return nil
}

func (f *fanout) Deleted(ctx context.Context, id string) error {
	for _, p := range f.pubs {
		if err := p.Deleted(ctx, id); err != nil {
			return err
		}
	}

	return nil
}

func (f *fanout) Completed(ctx context.Context, task internaldomain.Task) error {
	for _, p := range f.pubs {
		if err := p.Completed(ctx, task); err != nil {
			return err
		}
	}

	return nil
}
