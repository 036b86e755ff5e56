package mysql

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/reviewrating/internal/domain/review"
	"github.com/xiebiao/reviewrating/internal/infrastructure/config"
)

// customKeyReview 外键列为custom_model_key的评价模型
type customKeyReview struct {
	ReviewBase
	CustomModelKey uint `gorm:"column:custom_model_key;not null;index"`
}

func (customKeyReview) TableName() string { return "custom_model_key_reviews" }

// dualKeyReview 同时有model_id和custom_fk两列，由配置决定使用哪一列
type dualKeyReview struct {
	ReviewBase
	ModelID  uint `gorm:"column:model_id;index"`
	CustomFK uint `gorm:"column:custom_fk;index"`
}

func (dualKeyReview) TableName() string { return "model_custom_fk_reviews" }

// plainRow 没有嵌入ReviewBase的普通结构体
type plainRow struct {
	ID   uint
	Note string
}

func init() {
	RegisterReviewModel("custom_model_key", customKeyReview{})
	RegisterReviewModel("model_custom_fk", &dualKeyReview{})
	RegisterReviewModel("plain", plainRow{})
	RegisterReviewModel("scalar", 42)
}

// newTestDB 内存SQLite（单连接，保证整个测试使用同一个库）
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, autoMigrate(db, config.ReviewConfig{}))
	require.NoError(t, db.AutoMigrate(&customKeyReview{}, &dualKeyReview{}))
	return db
}

// newTestStore 按配置创建评价仓储
func newTestStore(t *testing.T, db *gorm.DB, cfg config.ReviewConfig) *ReviewStore {
	t.Helper()
	store, err := NewReviewStore(db, cfg)
	require.NoError(t, err)
	return store
}

// fixedClock 可以手动拨动的时钟
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func newClock() *fixedClock {
	return &fixedClock{now: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)}
}

func newTestManager(store review.Store, clock *fixedClock, opts ...review.Option) *review.Manager {
	opts = append([]review.Option{review.WithClock(clock.Now)}, opts...)
	return review.NewManager(store, review.NewResolver(), opts...)
}
