package test

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/irsalhamdi/course-catalog/api"
	"github.com/irsalhamdi/course-catalog/core/course"
	"github.com/irsalhamdi/course-catalog/metrics"
	"github.com/irsalhamdi/course-catalog/rate"
	"github.com/sirupsen/logrus"
)

type TestEnv struct {
	*httptest.Server
	Store     *course.MemoryStore
	StaticDir string
}

type envOpt func(*api.APIConfig)

func withLimiter(l *rate.Limiter) envOpt {
	return func(cfg *api.APIConfig) { cfg.Limiter = l }
}

func withCors(origin string) envOpt {
	return func(cfg *api.APIConfig) { cfg.CorsOrigin = origin }
}

func NewTestEnv(t *testing.T, name string, opts ...envOpt) (*TestEnv, error) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	if testing.Verbose() {
		log.SetOutput(os.Stdout)
		log.SetLevel(logrus.DebugLevel)
	}
	entry := log.WithField("test", name)

	engine, err := course.NewEngine("")
	if err != nil {
		return nil, err
	}

	store := course.NewMemoryStore()
	mf := metrics.NewFactory()
	repo := course.NewRepository(
		course.Instrument(store, mf.Store()),
		engine,
		course.WithLogger(entry),
	)

	static := t.TempDir()
	if err := os.WriteFile(filepath.Join(static, "site.css"), []byte("body{}"), 0o644); err != nil {
		return nil, err
	}

	cfg := api.APIConfig{
		StaticDir: static,
		Log:       entry,
		Courses:   repo,
		Metrics:   mf,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	srv := httptest.NewServer(api.APIMux(cfg))
	t.Cleanup(srv.Close)

	return &TestEnv{Server: srv, Store: store, StaticDir: static}, nil
}
