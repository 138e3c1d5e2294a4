package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/irsalhamdi/course-catalog/api/web"
	"github.com/irsalhamdi/course-catalog/api/weberr"
	"github.com/irsalhamdi/course-catalog/rate"
)

// RateLimit rejects clients, keyed by remote IP, that exceed their budget.
func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if !lim.Check(clientIP(r)) {
				w.Header().Set("Retry-After", "1")
				return weberr.TooManyRequests(errors.New("client exceeded the request rate"))
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
