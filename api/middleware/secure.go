package middleware

import (
	"context"
	"net/http"

	"github.com/irsalhamdi/course-catalog/api/web"
)

// SecureHeaders sets the defensive response headers browsers honour for an
// API that never serves active content from user input.
func SecureHeaders() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			hdr := w.Header()
			hdr.Set("X-Content-Type-Options", "nosniff")
			hdr.Set("X-Frame-Options", "SAMEORIGIN")
			hdr.Set("X-DNS-Prefetch-Control", "off")
			hdr.Set("X-Download-Options", "noopen")
			hdr.Set("Referrer-Policy", "no-referrer")
			hdr.Set("Cross-Origin-Resource-Policy", "same-origin")
			if r.TLS != nil {
				hdr.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
			}
			hdr.Del("X-Powered-By")

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
