package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

// MemoryStore keeps jobs and users in process. Values are deep-copied on the
// way in and out so callers never share state with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	jobs  map[string]models.Job
	users map[string]models.User
	now   func() time.Time
}

func NewMemoryStore(jobs []models.Job, users []models.User) *MemoryStore {
	s := &MemoryStore{
		jobs:  make(map[string]models.Job, len(jobs)),
		users: make(map[string]models.User, len(users)),
		now:   time.Now,
	}
	for _, j := range jobs {
		s.jobs[j.ID] = clone(j)
	}
	for _, u := range users {
		s.users[u.ID] = clone(u)
	}
	return s
}

// NewDemoStore returns a MemoryStore seeded with DemoJobs and DemoUsers.
func NewDemoStore() *MemoryStore {
	return NewMemoryStore(DemoJobs(time.Now()), DemoUsers())
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

func (s *MemoryStore) ListJobs(_ context.Context, filter JobFilter) ([]models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if filter.matches(&j) {
			out = append(out, clone(j))
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].ReportedAt.Equal(out[b].ReportedAt) {
			return out[a].ReportedAt.After(out[b].ReportedAt)
		}
		return out[a].ID < out[b].ID
	})
	return out, nil
}

func (s *MemoryStore) GetJob(_ context.Context, id string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	c := clone(j)
	return &c, nil
}

func (s *MemoryStore) UpdateJob(_ context.Context, id string, opts ...JobUpdateOption) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	j = clone(j)
	if err := applyUpdate(&j, s.now().UTC(), opts); err != nil {
		return nil, err
	}
	s.jobs[id] = j

	c := clone(j)
	return &c, nil
}

func (s *MemoryStore) AppendJobLog(_ context.Context, id string, event string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	j = clone(j)
	j.Log = append(j.Log, models.LogEntry{Event: event, Timestamp: s.now().UTC()})
	s.jobs[id] = j

	c := clone(j)
	return &c, nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, clone(u))
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	c := clone(u)
	return &c, nil
}

// clone deep-copies v through JSON. Both models round-trip losslessly.
func clone[T any](v T) T {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("store: clone %T: %v", v, err))
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		panic(fmt.Sprintf("store: clone %T: %v", v, err))
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
