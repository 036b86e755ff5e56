package review

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xiebiao/reviewrating/internal/domain/book"
	"github.com/xiebiao/reviewrating/internal/domain/review"
	"github.com/xiebiao/reviewrating/internal/domain/user"
	apperrors "github.com/xiebiao/reviewrating/pkg/errors"
)

type mockBookService struct {
	mock.Mock
}

func (m *mockBookService) PublishBook(ctx context.Context, isbn, title, author, publisher string, price int64, coverURL, description string) (*book.Book, error) {
	args := m.Called(ctx, isbn, title, author, publisher, price, coverURL, description)
	b, _ := args.Get(0).(*book.Book)
	return b, args.Error(1)
}

func (m *mockBookService) GetBookByID(ctx context.Context, id uint) (*book.Book, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*book.Book)
	return b, args.Error(1)
}

func (m *mockBookService) GetBookByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	args := m.Called(ctx, isbn)
	b, _ := args.Get(0).(*book.Book)
	return b, args.Error(1)
}

func (m *mockBookService) ListBooks(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	args := m.Called(ctx, params)
	list, _ := args.Get(0).([]*book.Book)
	return list, args.Get(1).(int64), args.Error(2)
}

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) RegisterReviewer(ctx context.Context, email, nickname string) (*user.User, error) {
	args := m.Called(ctx, email, nickname)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *mockUserService) GetUser(ctx context.Context, id uint) (*user.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, ref review.Ref) (*review.Stats, int64, error) {
	args := m.Called(ctx, ref)
	s, _ := args.Get(0).(*review.Stats)
	return s, args.Get(1).(int64), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, ref review.Ref, generation int64, stats *review.Stats) error {
	return m.Called(ctx, ref, generation, stats).Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context, ref review.Ref) error {
	return m.Called(ctx, ref).Error(0)
}

// memCache 按代数回填的内存缓存，语义与Redis实现一致
// beforeSet在Set比较代数之前执行，用来插入并发写入
type memCache struct {
	stats     map[review.Ref]*review.Stats
	gens      map[review.Ref]int64
	beforeSet func()
}

func newMemCache() *memCache {
	return &memCache{stats: map[review.Ref]*review.Stats{}, gens: map[review.Ref]int64{}}
}

func (c *memCache) Get(_ context.Context, ref review.Ref) (*review.Stats, int64, error) {
	return c.stats[ref], c.gens[ref], nil
}

func (c *memCache) Set(_ context.Context, ref review.Ref, generation int64, stats *review.Stats) error {
	if c.beforeSet != nil {
		hook := c.beforeSet
		c.beforeSet = nil
		hook()
	}
	if c.gens[ref] != generation {
		return nil
	}
	c.stats[ref] = stats
	return nil
}

func (c *memCache) Invalidate(_ context.Context, ref review.Ref) error {
	c.gens[ref]++
	delete(c.stats, ref)
	return nil
}

// sliceStore 按ID递增保存评价的最小Store实现
type sliceStore struct {
	reviews []*review.Review
	calls   int
}

func (s *sliceStore) Create(_ context.Context, r *review.Review) error {
	r.ID = uint(len(s.reviews) + 1)
	s.reviews = append(s.reviews, r.Clone())
	return nil
}

func (s *sliceStore) match(f review.Filter) []*review.Review {
	s.calls++
	var out []*review.Review
	for i := len(s.reviews) - 1; i >= 0; i-- {
		r := s.reviews[i]
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
	return out
}

func (s *sliceStore) List(_ context.Context, ref review.Ref) ([]*review.Review, error) {
	return s.match(review.Filter{Reviewable: ref}), nil
}

func (s *sliceStore) Latest(_ context.Context, ref review.Ref) (*review.Review, error) {
	list := s.match(review.Filter{Reviewable: ref})
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *sliceStore) Count(_ context.Context, f review.Filter) (int64, error) {
	return int64(len(s.match(f))), nil
}

func (s *sliceStore) Exists(_ context.Context, f review.Filter) (bool, error) {
	return len(s.match(f)) > 0, nil
}

func (s *sliceStore) AverageRating(_ context.Context, f review.Filter) (*float64, error) {
	list := s.match(f)
	if len(list) == 0 {
		return nil, nil
	}
	var sum float64
	for _, r := range list {
		sum += *r.Rating
	}
	avg := sum / float64(len(list))
	return &avg, nil
}

var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestManager(store review.Store) *review.Manager {
	resolver := review.NewResolver().Alias("book", &book.Book{}).Alias("user", &user.User{})
	return review.NewManager(store, resolver, review.WithClock(func() time.Time { return testNow }))
}

func testBook(id uint) *book.Book {
	return &book.Book{ID: id, ISBN: "9787115480675", Title: "Go语言高级编程", Price: 8900}
}

func testUser(id uint) *user.User {
	return &user.User{ID: id, Email: "reader@example.com", Nickname: "读者"}
}

var errBookMissing = apperrors.ErrBookNotFound
