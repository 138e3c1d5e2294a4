package metrics

import (
	"net/http"
	"time"
)

type (
	Factory interface {
		HTTP() HTTP
		Store() Store
		Handler() http.Handler
	}

	HTTP interface {
		Request(method, route string, status int, duration time.Duration)
	}

	// Store records the outcome of storage primitives.
	Store interface {
		Observe(op string, duration time.Duration, err error)
	}
)

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	}
	return "2xx"
}
