package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/reviewrating/internal/domain/book"
	"github.com/xiebiao/reviewrating/internal/domain/review"
	"github.com/xiebiao/reviewrating/internal/domain/user"
	"github.com/xiebiao/reviewrating/internal/infrastructure/config"
)

func TestReviewStore_EmptyEntity(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	m := newTestManager(newTestStore(t, db, config.ReviewConfig{}), newClock())

	reviews := m.For(&book.Book{ID: 1})

	list, err := reviews.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	latest, err := reviews.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	has, err := reviews.HasReview(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	rated, err := reviews.HasRating(ctx)
	require.NoError(t, err)
	assert.False(t, rated)

	n, err := reviews.NumberOfReviews(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	avg, err := reviews.AverageRating(ctx)
	require.NoError(t, err)
	assert.Nil(t, avg)
}

func TestReviewStore_CreateAndRead(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	clock := newClock()
	m := newTestManager(newTestStore(t, db, config.ReviewConfig{}), clock)

	b := &book.Book{ID: 3}
	author := &user.User{ID: 9}
	reviews := m.For(b)

	first, err := reviews.Create(ctx, "排版清晰", author, review.WithRating(4), review.WithTitle("不错"))
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	clock.now = clock.now.Add(time.Minute)
	second, err := reviews.Create(ctx, "第二次读有新收获", author)
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	list, err := reviews.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	got := list[1]
	assert.Equal(t, "排版清晰", got.Review)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 4.0, *got.Rating)
	require.NotNil(t, got.Title)
	assert.Equal(t, "不错", *got.Title)
	assert.Equal(t, reviews.Ref(), got.Reviewable)
	assert.Equal(t, uint(9), got.Author.ID)
	assert.Equal(t, m.Resolver().TypeTag(author), got.Author.Type)
	assert.True(t, got.CreatedAt.Equal(clock.now.Add(-time.Minute)))

	latest, err := reviews.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
	assert.Nil(t, latest.Rating)
}

func TestReviewStore_Counts(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	m := newTestManager(newTestStore(t, db, config.ReviewConfig{}), newClock())

	reviews := m.For(&book.Book{ID: 1})
	author := &user.User{ID: 1}

	for _, r := range []float64{5, 4, 5} {
		_, err := reviews.Create(ctx, "有评分", author, review.WithRating(r))
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, err := reviews.Create(ctx, "没评分", author)
		require.NoError(t, err)
	}

	n, err := reviews.NumberOfReviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	n, err = reviews.NumberOfRatings(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	avg, err := reviews.AverageRating(ctx)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 14.0/3.0, *avg, 1e-9)

	avg, err = reviews.AverageRating(ctx, review.Round(2))
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.Equal(t, 4.67, *avg)

	rated, err := reviews.HasRating(ctx)
	require.NoError(t, err)
	assert.True(t, rated)
}

func TestReviewStore_DateRange(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	clock := newClock()
	m := newTestManager(newTestStore(t, db, config.ReviewConfig{}), clock)

	now := clock.now
	twoMonthsAgo := now.AddDate(0, -2, 0)
	oneMonthAgo := now.AddDate(0, -1, 0)

	reviews := m.For(&book.Book{ID: 1})
	author := &user.User{ID: 1}
	for i, at := range []time.Time{twoMonthsAgo, oneMonthAgo, now} {
		clock.now = at
		_, err := reviews.Create(ctx, "按月评价", author, review.WithRating(float64(i+3)))
		require.NoError(t, err)
	}

	n, err := reviews.NumberOfReviews(ctx, review.Between(oneMonthAgo, now))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = reviews.NumberOfRatings(ctx, review.Between(oneMonthAgo, now))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	avg, err := reviews.AverageRating(ctx, review.Between(oneMonthAgo, now))
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 4.5, *avg, 1e-9)

	n, err = reviews.NumberOfReviews(ctx, review.Between(now.AddDate(1, 0, 0), now.AddDate(2, 0, 0)))
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = reviews.NumberOfReviews(ctx, review.Between(now, twoMonthsAgo))
	assert.ErrorIs(t, err, review.ErrInvalidDateRange)
}

// 同一时刻用不同时区表示，时间范围统计结果一致
func TestReviewStore_DateRangeAcrossTimeZones(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	clock := newClock()
	m := newTestManager(newTestStore(t, db, config.ReviewConfig{}), clock)
	shanghai := time.FixedZone("CST", 8*3600)
	newYork := time.FixedZone("EST", -5*3600)

	reviews := m.For(&book.Book{ID: 1})
	author := &user.User{ID: 1}

	clock.now = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	_, err := reviews.Create(ctx, "UTC时钟写入", author, review.WithRating(4))
	require.NoError(t, err)
	clock.now = time.Date(2026, 3, 15, 19, 30, 0, 0, shanghai) // 11:30Z
	_, err = reviews.Create(ctx, "东八区时钟写入", author, review.WithRating(2))
	require.NoError(t, err)

	cases := []struct {
		name     string
		from, to time.Time
		want     int64
	}{
		{"UTC边界", time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC), time.Date(2026, 3, 15, 11, 0, 0, 0, time.UTC), 1},
		{"东八区边界", time.Date(2026, 3, 15, 17, 0, 0, 0, shanghai), time.Date(2026, 3, 15, 19, 0, 0, 0, shanghai), 1},
		{"西五区边界", time.Date(2026, 3, 15, 4, 0, 0, 0, newYork), time.Date(2026, 3, 15, 6, 0, 0, 0, newYork), 1},
		{"东八区闭区间含两条", time.Date(2026, 3, 15, 18, 0, 0, 0, shanghai), time.Date(2026, 3, 15, 19, 30, 0, 0, shanghai), 2},
		{"边界恰好是写入时刻", time.Date(2026, 3, 15, 6, 30, 0, 0, newYork), time.Date(2026, 3, 15, 6, 30, 0, 0, newYork), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := reviews.NumberOfReviews(ctx, review.Between(tc.from, tc.to))
			require.NoError(t, err)
			assert.Equal(t, tc.want, n)

			n, err = reviews.NumberOfRatings(ctx, review.Between(tc.from, tc.to))
			require.NoError(t, err)
			assert.Equal(t, tc.want, n)
		})
	}

	avg, err := reviews.AverageRating(ctx, review.Between(
		time.Date(2026, 3, 15, 18, 0, 0, 0, shanghai),
		time.Date(2026, 3, 15, 19, 30, 0, 0, shanghai),
	))
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 3.0, *avg, 1e-9)
}

func TestReviewStore_TypeTagIsolation(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	m := newTestManager(newTestStore(t, db, config.ReviewConfig{}), newClock())

	author := &user.User{ID: 5}
	// 同一个ID，不同实体类型
	_, err := m.For(&book.Book{ID: 1}).Create(ctx, "评书", author, review.WithRating(5))
	require.NoError(t, err)
	_, err = m.For(&user.User{ID: 1}).Create(ctx, "评人", author)
	require.NoError(t, err)
	_, err = m.For(&user.User{ID: 1}).Create(ctx, "再评人", author)
	require.NoError(t, err)

	n, err := m.For(&book.Book{ID: 1}).NumberOfReviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = m.For(&user.User{ID: 1}).NumberOfReviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rated, err := m.For(&user.User{ID: 1}).HasRating(ctx)
	require.NoError(t, err)
	assert.False(t, rated)
}

func TestReviewStore_HasReviewed(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	m := newTestManager(newTestStore(t, db, config.ReviewConfig{}), newClock())

	alice := &user.User{ID: 1}
	bob := &user.User{ID: 2}
	reviews := m.For(&book.Book{ID: 1})

	_, err := reviews.Create(ctx, "alice的评价", alice)
	require.NoError(t, err)

	ok, err := reviews.HasReviewed(ctx, alice)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = reviews.HasReviewed(ctx, bob)
	require.NoError(t, err)
	assert.False(t, ok)

	// 作者类型也参与匹配：ID相同但类型不同
	ok, err = reviews.HasReviewed(ctx, review.Ref{Type: "other.Author", ID: 1})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.For(&book.Book{ID: 2}).HasReviewed(ctx, alice)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReviewStore_SoftDeleteHidden(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	m := newTestManager(newTestStore(t, db, config.ReviewConfig{}), newClock())

	reviews := m.For(&book.Book{ID: 1})
	author := &user.User{ID: 1}
	first, err := reviews.Create(ctx, "保留", author, review.WithRating(2))
	require.NoError(t, err)
	second, err := reviews.Create(ctx, "将被删除", author, review.WithRating(4))
	require.NoError(t, err)

	require.NoError(t, db.Delete(&ReviewModel{}, second.ID).Error)

	latest, err := reviews.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, first.ID, latest.ID)

	n, err := reviews.NumberOfReviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	avg, err := reviews.AverageRating(ctx)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.Equal(t, 2.0, *avg)
}

func TestReviewStore_CustomForeignKey(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	t.Run("custom_model_key", func(t *testing.T) {
		store := newTestStore(t, db, config.ReviewConfig{Model: "custom_model_key", ForeignKey: "custom_model_key"})
		m := newTestManager(store, newClock())

		rv, err := m.For(&book.Book{ID: 42}).Create(ctx, "外键切换", &user.User{ID: 1}, review.WithRating(3))
		require.NoError(t, err)

		var keys []uint
		require.NoError(t, db.Table("custom_model_key_reviews").Where("id = ?", rv.ID).Pluck("custom_model_key", &keys).Error)
		assert.Equal(t, []uint{42}, keys)

		latest, err := m.For(&book.Book{ID: 42}).Latest(ctx)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, uint(42), latest.Reviewable.ID)

		// 默认表不受影响
		var n int64
		require.NoError(t, db.Model(&ReviewModel{}).Count(&n).Error)
		assert.Zero(t, n)
	})

	t.Run("同一模型按配置选择外键列", func(t *testing.T) {
		store := newTestStore(t, db, config.ReviewConfig{Model: "model_custom_fk", ForeignKey: "custom_fk"})
		m := newTestManager(store, newClock())

		rv, err := m.For(&book.Book{ID: 7}).Create(ctx, "写入custom_fk", &user.User{ID: 1})
		require.NoError(t, err)

		var row dualKeyReview
		require.NoError(t, db.First(&row, rv.ID).Error)
		assert.Equal(t, uint(7), row.CustomFK)
		assert.Zero(t, row.ModelID)

		n, err := m.For(&book.Book{ID: 7}).NumberOfReviews(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		// 同一张表用model_id读取时看不到这条评价
		byModelID := newTestManager(newTestStore(t, db, config.ReviewConfig{Model: "model_custom_fk"}), newClock())
		n, err = byModelID.For(&book.Book{ID: 7}).NumberOfReviews(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestReviewStore_Transaction(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	store := newTestStore(t, db, config.ReviewConfig{})
	m := newTestManager(store, newClock())
	txManager := NewTxManager(db)

	errAbort := errors.New("abort")
	err := txManager.Transaction(ctx, func(ctx context.Context) error {
		if _, err := m.For(&book.Book{ID: 1}).Create(ctx, "事务内评价", &user.User{ID: 1}); err != nil {
			return err
		}
		// 事务内可见
		n, err := m.For(&book.Book{ID: 1}).NumberOfReviews(ctx)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(1), n)
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	n, err := m.For(&book.Book{ID: 1}).NumberOfReviews(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	err = txManager.Transaction(ctx, func(ctx context.Context) error {
		_, err := m.For(&book.Book{ID: 1}).Create(ctx, "提交的评价", &user.User{ID: 1})
		return err
	})
	require.NoError(t, err)

	n, err = m.For(&book.Book{ID: 1}).NumberOfReviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
