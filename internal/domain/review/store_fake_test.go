package review

import (
	"context"
	"sort"
	"sync"
)

// memoryStore 内存仓储(仅测试使用)
type memoryStore struct {
	mu      sync.Mutex
	nextID  uint
	reviews []*Review
	err     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{}
}

func (s *memoryStore) Create(_ context.Context, r *Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.nextID++
	r.ID = s.nextID
	s.reviews = append(s.reviews, r.Clone())
	return nil
}

func (s *memoryStore) match(f Filter) []*Review {
	var out []*Review
	for _, r := range s.reviews {
		if r.Reviewable != f.Reviewable {
			continue
		}
		if f.Author != nil && r.Author != *f.Author {
			continue
		}
		if f.RatedOnly && r.Rating == nil {
			continue
		}
		if f.Period != nil && !f.Period.Contains(r.CreatedAt) {
			continue
		}
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *memoryStore) List(_ context.Context, ref Ref) ([]*Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match(Filter{Reviewable: ref}), s.err
}

func (s *memoryStore) Latest(_ context.Context, ref Ref) (*Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.match(Filter{Reviewable: ref})
	if len(list) == 0 {
		return nil, s.err
	}
	return list[0], s.err
}

func (s *memoryStore) Count(_ context.Context, f Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.match(f))), s.err
}

func (s *memoryStore) Exists(_ context.Context, f Filter) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.match(f)) > 0, s.err
}

func (s *memoryStore) AverageRating(_ context.Context, f Filter) (*float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.match(f)
	if len(list) == 0 {
		return nil, s.err
	}
	var sum float64
	for _, r := range list {
		sum += *r.Rating
	}
	avg := sum / float64(len(list))
	return &avg, s.err
}
