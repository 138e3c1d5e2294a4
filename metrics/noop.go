package metrics

import (
	"net/http"
	"time"
)

type noopFactory struct{}

// NewNoop returns a factory whose collectors discard everything.
func NewNoop() Factory { return noopFactory{} }

func (noopFactory) HTTP() HTTP   { return noop{} }
func (noopFactory) Store() Store { return noop{} }

func (noopFactory) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
}

type noop struct{}

func (noop) Request(string, string, int, time.Duration) {}
func (noop) Observe(string, time.Duration, error)      {}
