package course

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Store is the persistence collaborator of the Repository. Implementations
// must make every single-record operation atomic.
type Store interface {
	// NextID allocates an identifier that has never been handed out before.
	NextID(ctx context.Context) (int64, error)
	Insert(ctx context.Context, c Course) error
	FetchByID(ctx context.Context, id int64) (Course, error)
	// Find returns the records matching f ordered by s, ties broken by
	// insertion order. Stores may leave fields outside of fields unset.
	Find(ctx context.Context, f Filter, s Sort, fields []string) ([]Course, error)
	// Replace overwrites the record with c.ID if its stored version is still
	// prevVersion, otherwise it returns ErrConflict.
	Replace(ctx context.Context, c Course, prevVersion int) error
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

// MemoryStore keeps courses in insertion order in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	lastID  int64
	records map[int64]Course
	order   []int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[int64]Course)}
}

func (s *MemoryStore) NextID(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	return s.lastID, nil
}

func (s *MemoryStore) Insert(ctx context.Context, c Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[c.ID]; ok {
		return ErrConflict
	}
	s.records[c.ID] = c.clone()
	s.order = append(s.order, c.ID)
	return nil
}

func (s *MemoryStore) FetchByID(ctx context.Context, id int64) (Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.records[id]
	if !ok {
		return Course{}, ErrNotFound
	}
	return c.clone(), nil
}

func (s *MemoryStore) Find(ctx context.Context, f Filter, srt Sort, fields []string) ([]Course, error) {
	s.mu.RLock()
	out := make([]Course, 0, len(s.order))
	for _, id := range s.order {
		c := s.records[id]
		if matches(c, f) {
			out = append(out, c.clone())
		}
	}
	s.mu.RUnlock()

	sortCourses(out, srt)
	return out, nil
}

func (s *MemoryStore) Replace(ctx context.Context, c Course, prevVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.records[c.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != prevVersion {
		return ErrConflict
	}
	s.records[c.ID] = c.clone()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func matches(c Course, f Filter) bool {
	if f.IsPublished != nil && c.IsPublished != *f.IsPublished {
		return false
	}
	if len(f.Tags) == 0 {
		return true
	}
	for _, want := range f.Tags {
		for _, have := range c.Tags {
			if want == have {
				return true
			}
		}
	}
	return false
}

// sortCourses orders cs in place. The input is in insertion order and the
// sort is stable, so equal keys keep that order in both directions.
func sortCourses(cs []Course, s Sort) {
	sort.SliceStable(cs, func(i, j int) bool {
		c := compare(cs[i], cs[j], s.Field)
		if s.Desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b Course, field string) int {
	switch field {
	case FieldID:
		return cmpInt(a.ID, b.ID)
	case FieldCategory:
		return strings.Compare(a.Category, b.Category)
	case FieldAuthor:
		return strings.Compare(a.Author, b.Author)
	case FieldDate:
		return a.Date.Compare(b.Date)
	case FieldIsPublished:
		return cmpBool(a.IsPublished, b.IsPublished)
	case FieldPrice:
		// A missing price sorts below every value.
		switch {
		case a.Price == nil && b.Price == nil:
			return 0
		case a.Price == nil:
			return -1
		case b.Price == nil:
			return 1
		}
		return cmpInt(int64(*a.Price), int64(*b.Price))
	default:
		return strings.Compare(a.Name, b.Name)
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
