package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/irsalhamdi/course-catalog/api/web"
	"github.com/irsalhamdi/course-catalog/metrics"
	"github.com/zenazn/goji/web/mutil"
)

// Metrics records every request under its route template so ids in paths do
// not blow up label cardinality.
func Metrics(m metrics.HTTP) web.Middleware {
	mw := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			start := time.Now()

			lw := mutil.WrapWriter(w)
			err := handler(ctx, lw, r)

			route := r.URL.Path
			if cr := mux.CurrentRoute(r); cr != nil {
				if tpl, terr := cr.GetPathTemplate(); terr == nil {
					route = tpl
				}
			}

			status := lw.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.Request(r.Method, route, status, time.Since(start))

			return err
		}
		return h
	}
	return mw
}
