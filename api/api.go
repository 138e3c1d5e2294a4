package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/irsalhamdi/course-catalog/api/middleware"
	"github.com/irsalhamdi/course-catalog/api/web"
	"github.com/irsalhamdi/course-catalog/api/weberr"
	"github.com/irsalhamdi/course-catalog/core/course"
	"github.com/irsalhamdi/course-catalog/metrics"
	"github.com/irsalhamdi/course-catalog/rate"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin string
	StaticDir  string
	Log        logrus.FieldLogger
	Courses    *course.Repository
	Metrics    metrics.Factory
	Limiter    *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}

	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Metrics(cfg.Metrics.HTTP()))
	a.mw = append(a.mw, middleware.SecureHeaders())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.Limiter != nil {
		a.mw = append(a.mw, middleware.RateLimit(cfg.Limiter))
	}

	a.Handle(http.MethodGet, "/", handleGreeting)
	a.Handle(http.MethodGet, "/health", handleHealth(cfg.Courses))
	a.Router.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)

	a.Handle(http.MethodGet, "/api/courses", course.HandleList(cfg.Courses))
	a.Handle(http.MethodGet, "/api/courses/{id}", course.HandleShow(cfg.Courses))
	a.Handle(http.MethodPost, "/api/courses", course.HandleCreate(cfg.Courses))
	a.Handle(http.MethodPut, "/api/courses/{id}", course.HandleUpdate(cfg.Courses))
	a.Handle(http.MethodDelete, "/api/courses/{id}", course.HandleDelete(cfg.Courses))

	if cfg.StaticDir != "" {
		fs := http.StripPrefix("/public/", http.FileServer(http.Dir(cfg.StaticDir)))
		a.Router.PathPrefix("/public/").Handler(fs).Methods(http.MethodGet, http.MethodHead)
	}

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}

func handleGreeting(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte("Hello world!!!"))
	return err
}

type healthResponse struct {
	Status string `json:"status"`
}

func handleHealth(repo *course.Repository) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := repo.Ping(ctx); err != nil {
			return weberr.NewError(err, "store unavailable", http.StatusServiceUnavailable)
		}
		return web.Respond(ctx, w, healthResponse{Status: "ok"}, http.StatusOK)
	}
}
