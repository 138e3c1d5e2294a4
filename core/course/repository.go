package course

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/irsalhamdi/course-catalog/events"
	"github.com/sirupsen/logrus"
)

// Repository owns the course collection. Every validate-then-mutate sequence
// runs under a single writer lock, so two writers can never both apply a
// change computed from the same stale record.
type Repository struct {
	store  Store
	engine *Engine
	pub    events.Publisher
	log    logrus.FieldLogger

	mu sync.Mutex
}

type Option func(*Repository)

func WithPublisher(p events.Publisher) Option {
	return func(r *Repository) { r.pub = p }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Repository) { r.log = log }
}

func NewRepository(store Store, engine *Engine, opts ...Option) *Repository {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	r := &Repository{
		store:  store,
		engine: engine,
		pub:    events.Noop{},
		log:    discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) Create(ctx context.Context, candidate map[string]any) (Course, error) {
	c, err := r.engine.Validate(candidate)
	if err != nil {
		return Course{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.store.NextID(ctx)
	if err != nil {
		return Course{}, fmt.Errorf("allocating course id: %w", err)
	}
	c.ID = id
	c.Version = 1

	if err := r.store.Insert(ctx, c); err != nil {
		return Course{}, fmt.Errorf("inserting course[%d]: %w", id, err)
	}

	r.publish(ctx, events.CourseCreated, c)
	return c, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (Course, error) {
	c, err := r.store.FetchByID(ctx, id)
	if err != nil {
		return Course{}, fmt.Errorf("fetching course[%d]: %w", id, err)
	}
	return c, nil
}

func (r *Repository) List(ctx context.Context, q Query) ([]Course, error) {
	if q.Sort.Field == "" {
		q.Sort = DefaultSort
	}

	cs, err := r.store.Find(ctx, q.Filter, q.Sort, q.Fields)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	return cs, nil
}

// Update overlays the provided keys on the stored record and replaces it only
// if the merged result is valid. A null value clears an optional field. The
// id and the creation date are never changed.
func (r *Repository) Update(ctx context.Context, id int64, candidate map[string]any) (Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, err := r.store.FetchByID(ctx, id)
	if err != nil {
		return Course{}, fmt.Errorf("fetching course[%d]: %w", id, err)
	}

	merged := cur.candidate()
	for k, v := range candidate {
		if k == FieldID || k == FieldDate {
			continue
		}
		merged[k] = v
	}

	next, err := r.engine.Validate(merged)
	if err != nil {
		return Course{}, err
	}
	next.ID = cur.ID
	next.Date = cur.Date
	next.Version = cur.Version + 1

	if err := r.store.Replace(ctx, next, cur.Version); err != nil {
		return Course{}, fmt.Errorf("replacing course[%d]: %w", id, err)
	}

	r.publish(ctx, events.CourseUpdated, next)
	return next, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) (Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, err := r.store.FetchByID(ctx, id)
	if err != nil {
		return Course{}, fmt.Errorf("fetching course[%d]: %w", id, err)
	}

	if err := r.store.Delete(ctx, id); err != nil {
		return Course{}, fmt.Errorf("deleting course[%d]: %w", id, err)
	}

	r.publish(ctx, events.CourseDeleted, cur)
	return cur, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// publish reports a committed change. Failures are logged only: the mutation
// has already been applied.
func (r *Repository) publish(ctx context.Context, typ events.Type, c Course) {
	ev := events.New(typ, strconv.FormatInt(c.ID, 10), c)
	if err := r.pub.Publish(ctx, ev); err != nil {
		r.log.WithFields(logrus.Fields{
			"event":     typ,
			"course_id": c.ID,
			"message":   err,
		}).Error("publishing course event")
	}
}

// IsNotFound reports whether err means the addressed course does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
