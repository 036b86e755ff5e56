package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/reviewrating/internal/application/book"
	appreview "github.com/xiebiao/reviewrating/internal/application/review"
	appuser "github.com/xiebiao/reviewrating/internal/application/user"
	"github.com/xiebiao/reviewrating/internal/domain/book"
	"github.com/xiebiao/reviewrating/internal/domain/review"
	"github.com/xiebiao/reviewrating/internal/domain/user"
	"github.com/xiebiao/reviewrating/internal/infrastructure/config"
	"github.com/xiebiao/reviewrating/internal/infrastructure/persistence/mysql"
	apperrors "github.com/xiebiao/reviewrating/pkg/errors"
)

// 教学说明：HTTP接口测试
//
// 与集成测试不同，这里不需要启动服务：
// 1. 内存SQLite + 真实仓储/领域服务/用例
// 2. httptest.NewRecorder直接调用gin引擎
// 3. 通知端口替换为内存收集器，断言每次创建恰好通知一次

// apiResponse 统一响应结构（data延迟解析）
type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// eventSink 收集评价创建通知
type eventSink struct {
	mu     sync.Mutex
	events []*review.Review
}

func (s *eventSink) ReviewCreated(_ context.Context, r *review.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, r)
	return nil
}

func (s *eventSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

type testServer struct {
	engine *gin.Engine
	sink   *eventSink
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		Database: config.DatabaseConfig{
			Driver:       "sqlite",
			Path:         ":memory:",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Review: config.ReviewConfig{Model: "default", ForeignKey: "model_id"},
	}
	logger := zap.NewNop()

	db, err := mysql.NewDB(cfg, logger)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	resolver := review.NewResolver().Alias("book", &book.Book{}).Alias("user", &user.User{})
	store, err := mysql.NewReviewStore(db, cfg.Review)
	require.NoError(t, err)
	scopes := mysql.NewReviewScopes(store, resolver)

	sink := &eventSink{}
	manager := review.NewManager(store, resolver,
		review.WithNotifier(sink),
		review.WithLogger(logger),
		review.WithClock(func() time.Time { return time.Now().UTC() }),
	)

	bookService := book.NewService(mysql.NewBookRepository(db, scopes))
	userService := user.NewService(mysql.NewUserRepository(db))

	engine := NewRouter(RouterOptions{Mode: gin.TestMode}, logger,
		NewUserHandler(appuser.NewRegisterReviewerUseCase(userService)),
		NewBookHandler(
			appbook.NewPublishBookUseCase(bookService),
			appbook.NewGetBookUseCase(bookService),
			appbook.NewListBooksUseCase(bookService),
		),
		NewReviewHandler(
			appreview.NewCreateReviewUseCase(manager, bookService, userService, nil, logger),
			appreview.NewQueryReviewsUseCase(manager, bookService, userService),
			appreview.NewReviewStatsUseCase(manager, bookService, nil, logger),
		),
	)
	return &testServer{engine: engine, sink: sink}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) apiResponse {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func decode[T any](t *testing.T, resp apiResponse) T {
	t.Helper()
	var v T
	require.Equal(t, 0, resp.Code, resp.Message)
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	return v
}

var isbnSeq = 9787115000000

func (s *testServer) publishBook(t *testing.T, title string) uint {
	t.Helper()
	isbnSeq++
	resp := s.do(t, http.MethodPost, "/api/v1/books", map[string]interface{}{
		"isbn":      fmt.Sprint(isbnSeq),
		"title":     title,
		"author":    "作者",
		"publisher": "出版社",
		"price":     5900,
	})
	return decode[struct {
		ID uint `json:"id"`
	}](t, resp).ID
}

func (s *testServer) registerUser(t *testing.T, nickname string) uint {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/v1/users", map[string]interface{}{
		"email":    nickname + "@example.com",
		"nickname": nickname,
	})
	return decode[struct {
		ID uint `json:"id"`
	}](t, resp).ID
}

func (s *testServer) review(t *testing.T, bookID, authorID uint, text string, rating *float64) uint {
	t.Helper()
	body := map[string]interface{}{"review": text, "author_id": authorID}
	if rating != nil {
		body["rating"] = *rating
	}
	resp := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/books/%d/reviews", bookID), body)
	return decode[struct {
		ID uint `json:"id"`
	}](t, resp).ID
}

func ptr(v float64) *float64 { return &v }

func TestPing(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, 0, resp.Code)
}

func TestRegisterUser(t *testing.T) {
	s := newTestServer(t)
	s.registerUser(t, "reader")

	t.Run("邮箱重复", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/v1/users", map[string]interface{}{
			"email":    "reader@example.com",
			"nickname": "另一个读者",
		})
		assert.Equal(t, apperrors.ErrCodeEmailDuplicate, resp.Code)
	})

	t.Run("参数错误", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/v1/users", map[string]interface{}{"email": "bad"})
		assert.Equal(t, apperrors.ErrCodeInvalidParams, resp.Code)
	})
}

func TestBookEndpoints(t *testing.T) {
	s := newTestServer(t)
	id := s.publishBook(t, "Go语言实战")

	resp := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/books/%d", id), nil)
	detail := decode[struct {
		Title     string `json:"title"`
		PriceYuan string `json:"price_yuan"`
	}](t, resp)
	assert.Equal(t, "Go语言实战", detail.Title)
	assert.Equal(t, "59.00", detail.PriceYuan)

	resp = s.do(t, http.MethodGet, "/api/v1/books/999", nil)
	assert.Equal(t, apperrors.ErrCodeBookNotFound, resp.Code)

	resp = s.do(t, http.MethodGet, "/api/v1/books/abc", nil)
	assert.Equal(t, apperrors.ErrCodeInvalidParams, resp.Code)
}

func TestReviewLifecycle(t *testing.T) {
	s := newTestServer(t)
	bookID := s.publishBook(t, "深入理解计算机系统")
	alice := s.registerUser(t, "alice")
	bob := s.registerUser(t, "bob")
	base := fmt.Sprintf("/api/v1/books/%d/reviews", bookID)

	// 没有评价
	resp := s.do(t, http.MethodGet, base+"/latest", nil)
	assert.Equal(t, 0, resp.Code)
	assert.True(t, len(resp.Data) == 0 || string(resp.Data) == "null")

	stats := decode[struct {
		HasReview       bool     `json:"has_review"`
		NumberOfReviews int64    `json:"number_of_reviews"`
		AverageRating   *float64 `json:"average_rating"`
	}](t, s.do(t, http.MethodGet, base+"/stats", nil))
	assert.False(t, stats.HasReview)
	assert.Nil(t, stats.AverageRating)

	// 写入评价
	s.review(t, bookID, alice, "经典", ptr(5))
	s.review(t, bookID, alice, "二刷", ptr(4))
	s.review(t, bookID, bob, "推荐", ptr(5))
	last := s.review(t, bookID, bob, "补充一句", nil)
	assert.Equal(t, 4, s.sink.count(), "每次创建恰好通知一次")

	list := decode[[]struct {
		ID     uint     `json:"id"`
		Rating *float64 `json:"rating"`
	}](t, s.do(t, http.MethodGet, base, nil))
	require.Len(t, list, 4)
	assert.Equal(t, last, list[0].ID, "最新在前")
	assert.Nil(t, list[0].Rating)

	latest := decode[struct {
		ID         uint   `json:"id"`
		AuthorType string `json:"author_type"`
	}](t, s.do(t, http.MethodGet, base+"/latest", nil))
	assert.Equal(t, last, latest.ID)
	assert.Equal(t, "user", latest.AuthorType)

	full := decode[struct {
		HasReview       bool     `json:"has_review"`
		HasRating       bool     `json:"has_rating"`
		NumberOfReviews int64    `json:"number_of_reviews"`
		NumberOfRatings int64    `json:"number_of_ratings"`
		AverageRating   *float64 `json:"average_rating"`
	}](t, s.do(t, http.MethodGet, base+"/stats?round=2", nil))
	assert.True(t, full.HasReview)
	assert.True(t, full.HasRating)
	assert.EqualValues(t, 4, full.NumberOfReviews)
	assert.EqualValues(t, 3, full.NumberOfRatings)
	require.NotNil(t, full.AverageRating)
	assert.Equal(t, 4.67, *full.AverageRating)

	has := decode[struct {
		HasReviewed bool `json:"has_reviewed"`
	}](t, s.do(t, http.MethodGet, fmt.Sprintf("%s/authors/%d", base, alice), nil))
	assert.True(t, has.HasReviewed)

	has = decode[struct {
		HasReviewed bool `json:"has_reviewed"`
	}](t, s.do(t, http.MethodGet, fmt.Sprintf("%s/authors/%d", base, 999), nil))
	assert.False(t, has.HasReviewed)
}

func TestReviewStats_DateRange(t *testing.T) {
	s := newTestServer(t)
	bookID := s.publishBook(t, "算法导论")
	author := s.registerUser(t, "carol")
	s.review(t, bookID, author, "好书", ptr(3))
	base := fmt.Sprintf("/api/v1/books/%d/reviews/stats", bookID)

	from := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	to := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	stats := decode[struct {
		NumberOfReviews int64 `json:"number_of_reviews"`
	}](t, s.do(t, http.MethodGet, fmt.Sprintf("%s?from=%s&to=%s", base, from, to), nil))
	assert.EqualValues(t, 1, stats.NumberOfReviews)

	t.Run("开始晚于结束", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, fmt.Sprintf("%s?from=%s&to=%s", base, to, from), nil)
		assert.Equal(t, apperrors.ErrCodeInvalidDateRange, resp.Code)
	})

	t.Run("只给一端", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, fmt.Sprintf("%s?from=%s", base, from), nil)
		assert.Equal(t, apperrors.ErrCodeInvalidDateRange, resp.Code)
	})

	t.Run("时间格式错误", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, base+"?from=yesterday&to=today", nil)
		assert.Equal(t, apperrors.ErrCodeInvalidParams, resp.Code)
	})
}

func TestCreateReview_Errors(t *testing.T) {
	s := newTestServer(t)
	bookID := s.publishBook(t, "重构")
	author := s.registerUser(t, "dave")
	base := fmt.Sprintf("/api/v1/books/%d/reviews", bookID)

	resp := s.do(t, http.MethodPost, base, map[string]interface{}{"review": "x", "author_id": 999})
	assert.Equal(t, apperrors.ErrCodeUserNotFound, resp.Code)

	resp = s.do(t, http.MethodPost, "/api/v1/books/999/reviews", map[string]interface{}{"review": "x", "author_id": author})
	assert.Equal(t, apperrors.ErrCodeBookNotFound, resp.Code)

	resp = s.do(t, http.MethodPost, base, map[string]interface{}{"review": "   ", "author_id": author})
	assert.Equal(t, apperrors.ErrCodeInvalidReview, resp.Code)

	resp = s.do(t, http.MethodPost, base, map[string]interface{}{"author_id": author})
	assert.Equal(t, apperrors.ErrCodeInvalidParams, resp.Code)

	assert.Zero(t, s.sink.count(), "失败的创建不触发通知")
}

func TestListBooks_ReviewScopes(t *testing.T) {
	s := newTestServer(t)
	author := s.registerUser(t, "erin")

	unreviewed := s.publishBook(t, "未评价")
	ratedBook := s.publishBook(t, "最新评价带评分")
	textBook := s.publishBook(t, "最新评价无评分")

	s.review(t, ratedBook, author, "文字", nil)
	s.review(t, ratedBook, author, "评分", ptr(4))
	s.review(t, textBook, author, "评分", ptr(5))
	s.review(t, textBook, author, "文字", nil)

	type page struct {
		List []struct {
			ID uint `json:"id"`
		} `json:"list"`
		Total int64 `json:"total"`
	}
	ids := func(p page) []uint {
		out := make([]uint, 0, len(p.List))
		for _, b := range p.List {
			out = append(out, b.ID)
		}
		return out
	}

	all := decode[page](t, s.do(t, http.MethodGet, "/api/v1/books?sort_by=id_asc", nil))
	assert.Equal(t, []uint{unreviewed, ratedBook, textBook}, ids(all))

	reviewed := decode[page](t, s.do(t, http.MethodGet, "/api/v1/books?reviewed=true&sort_by=id_asc", nil))
	assert.Equal(t, []uint{ratedBook, textBook}, ids(reviewed))
	assert.EqualValues(t, 2, reviewed.Total)

	rated := decode[page](t, s.do(t, http.MethodGet, "/api/v1/books?rated=true", nil))
	assert.Equal(t, []uint{ratedBook}, ids(rated), "只看最新一条评价是否带评分")
}
