package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/irsalhamdi/course-catalog/api"
	"github.com/irsalhamdi/course-catalog/config"
	"github.com/irsalhamdi/course-catalog/core/course"
	"github.com/irsalhamdi/course-catalog/database"
	"github.com/irsalhamdi/course-catalog/events"
	"github.com/irsalhamdi/course-catalog/metrics"
	"github.com/irsalhamdi/course-catalog/mongodb"
	"github.com/irsalhamdi/course-catalog/rate"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
)

var build = "develop"

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			return
		}
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	const prefix = "COURSES"
	var cfg config.Config
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return err
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	closeLog, err := setupLogger(logger, cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	logger.WithField("build", build).Info("starting server")
	defer logger.Info("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	logger.Infof("config:\n%v", out)

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	mf := metrics.NewFactory()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, closeStore, err := openStore(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	engine, err := course.NewEngine(cfg.Course.NamePattern)
	if err != nil {
		return fmt.Errorf("building validation engine: %w", err)
	}

	var pub events.Publisher = events.Noop{}
	if len(cfg.Kafka.Brokers) > 0 {
		pub = events.NewKafka(events.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			BatchTimeout: cfg.Kafka.BatchTimeout,
		}, logger)
		logger.WithField("topic", cfg.Kafka.Topic).Info("publishing course events to kafka")
	}
	defer pub.Close()

	repo := course.NewRepository(
		course.Instrument(store, mf.Store()),
		engine,
		course.WithPublisher(pub),
		course.WithLogger(logger),
	)

	var limiter *rate.Limiter
	if cfg.Rate.Enabled {
		limiter = rate.NewLimiter(cfg.Rate.Burst, cfg.Rate.Expiry, cfg.Rate.RPS)
		defer limiter.Stop()
	}

	mux := api.APIMux(api.APIConfig{
		CorsOrigin: cfg.Cors.Origin,
		StaticDir:  cfg.Web.StaticDir,
		Log:        logger,
		Courses:    repo,
		Metrics:    mf,
		Limiter:    limiter,
	})

	srv := http.Server{
		Handler:      mux,
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)

	g.Go(func() error {
		logger.Infof("starting api router at %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// setupLogger applies level and format, and tees output into a rotated file
// when one is configured.
func setupLogger(logger *logrus.Logger, cfg config.Log) (func(), error) {
	lvl, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	logger.SetLevel(lvl)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	if cfg.File == "" {
		return func() {}, nil
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, rotator))

	return func() { rotator.Close() }, nil
}

func openStore(ctx context.Context, logger logrus.FieldLogger, cfg config.Config) (course.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		logger.Info("using in-memory course store")
		return course.NewMemoryStore(), func() {}, nil

	case config.StorePostgres:
		if err := database.Migrate(cfg.DB); err != nil {
			return nil, nil, fmt.Errorf("migrating database: %w", err)
		}

		db, err := database.Open(cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
		}
		if err := database.StatusCheck(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("checking db status: %w", err)
		}

		logger.WithField("host", cfg.DB.Host).Info("using postgres course store")
		return course.NewPostgresStore(db), func() { db.Close() }, nil

	case config.StoreMongo:
		db, err := mongodb.Open(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open mongo connection: %w", err)
		}

		s, err := course.NewMongoStore(ctx, db)
		if err != nil {
			mongodb.Close(context.Background(), db)
			return nil, nil, err
		}

		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mongodb.Close(ctx, db); err != nil {
				logger.WithField("message", err).Error("closing mongo connection")
			}
		}

		logger.WithField("database", cfg.Mongo.Database).Info("using mongo course store")
		return s, closeFn, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
