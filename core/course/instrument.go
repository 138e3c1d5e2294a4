package course

import (
	"context"
	"errors"
	"time"

	"github.com/irsalhamdi/course-catalog/metrics"
)

// Instrument wraps s so every primitive reports its duration. Not-found
// results are answers, not failures.
func Instrument(s Store, m metrics.Store) Store {
	return &instrumentedStore{next: s, m: m}
}

type instrumentedStore struct {
	next Store
	m    metrics.Store
}

func (s *instrumentedStore) observe(op string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	s.m.Observe(op, time.Since(start), err)
}

func (s *instrumentedStore) NextID(ctx context.Context) (int64, error) {
	start := time.Now()
	id, err := s.next.NextID(ctx)
	s.observe("next_id", start, err)
	return id, err
}

func (s *instrumentedStore) Insert(ctx context.Context, c Course) error {
	start := time.Now()
	err := s.next.Insert(ctx, c)
	s.observe("insert", start, err)
	return err
}

func (s *instrumentedStore) FetchByID(ctx context.Context, id int64) (Course, error) {
	start := time.Now()
	c, err := s.next.FetchByID(ctx, id)
	s.observe("fetch_by_id", start, err)
	return c, err
}

func (s *instrumentedStore) Find(ctx context.Context, f Filter, srt Sort, fields []string) ([]Course, error) {
	start := time.Now()
	cs, err := s.next.Find(ctx, f, srt, fields)
	s.observe("find", start, err)
	return cs, err
}

func (s *instrumentedStore) Replace(ctx context.Context, c Course, prevVersion int) error {
	start := time.Now()
	err := s.next.Replace(ctx, c, prevVersion)
	s.observe("replace", start, err)
	return err
}

func (s *instrumentedStore) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.next.Delete(ctx, id)
	s.observe("delete", start, err)
	return err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}
