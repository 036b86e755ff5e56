package mysql

import (
	"context"
	"database/sql"
	"reflect"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/reviewrating/internal/domain/review"
	"github.com/xiebiao/reviewrating/internal/infrastructure/config"
	apperrors "github.com/xiebiao/reviewrating/pkg/errors"
	"github.com/xiebiao/reviewrating/pkg/metrics"
	"github.com/xiebiao/reviewrating/pkg/tracing"
)

const tracerName = "reviewrating/mysql"

// ReviewStore 评价仓储GORM实现
// 设计说明：
// 1. 评价表结构由配置的评价模型决定，仓储通过反射创建模型实例
// 2. 所有查询条件都带上外键列 + reviewable_type，同一个ID的不同实体类型互不干扰
// 3. 计数、存在性、平均分都是单条SQL（COUNT / LIMIT 1 / AVG），不加载整张列表
// 4. 软删除的评价对所有读操作不可见（gorm.DeletedAt自动追加条件）
type ReviewStore struct {
	db    *gorm.DB
	table *reviewTable
}

// NewReviewStore 创建评价仓储
// 评价模型或外键列配置非法时返回review.ErrInvalidReviewModel（启动期失败）
func NewReviewStore(db *gorm.DB, cfg config.ReviewConfig) (*ReviewStore, error) {
	table, err := resolveReviewTable(db, cfg)
	if err != nil {
		return nil, err
	}
	return &ReviewStore{db: db, table: table}, nil
}

// TableName 评价表名
func (s *ReviewStore) TableName() string {
	return s.table.table
}

// ForeignKey 外键列名
func (s *ReviewStore) ForeignKey() string {
	return s.table.fk.DBName
}

// getDB 从context获取事务DB
func (s *ReviewStore) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, s.db)
}

// Create 写入评价
func (s *ReviewStore) Create(ctx context.Context, r *review.Review) (err error) {
	defer metrics.ObserveReviewQuery("create", time.Now())
	ctx, span := tracing.StartSpan(ctx, tracerName, "ReviewStore.Create")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()
	span.SetAttributes(attribute.String("reviewable", r.Reviewable.String()))

	v := newModelValue(s.table.modelType)
	base := baseOf(v)
	base.Review = r.Review
	base.Rating = r.Rating
	base.Title = r.Title
	base.ReviewableType = r.Reviewable.Type
	base.AuthorType = r.Author.Type
	base.AuthorID = r.Author.ID
	// 时间统一按UTC写入：sqlite按文本比较created_at，时区不同的值无法比较
	base.CreatedAt = r.CreatedAt.UTC()
	base.UpdatedAt = r.UpdatedAt.UTC()

	if err := s.table.fk.Set(ctx, v.Elem(), r.Reviewable.ID); err != nil {
		return apperrors.Wrap(err, "设置评价外键失败")
	}

	if err := s.getDB(ctx).Create(v.Interface()).Error; err != nil {
		return apperrors.ErrDatabaseError.WithCause(err)
	}

	r.ID = base.ID
	r.CreatedAt = base.CreatedAt
	r.UpdatedAt = base.UpdatedAt
	return nil
}

// List 被评价实体的全部评价，最新在前
func (s *ReviewStore) List(ctx context.Context, reviewable review.Ref) ([]*review.Review, error) {
	defer metrics.ObserveReviewQuery("list", time.Now())
	ctx, span := tracing.StartSpan(ctx, tracerName, "ReviewStore.List")
	defer span.End()

	rows, err := s.find(ctx, review.Filter{Reviewable: reviewable}, 0)
	tracing.RecordError(span, err)
	return rows, err
}

// Latest 最新一条评价（ID最大），没有时返回(nil, nil)
func (s *ReviewStore) Latest(ctx context.Context, reviewable review.Ref) (*review.Review, error) {
	defer metrics.ObserveReviewQuery("latest", time.Now())
	ctx, span := tracing.StartSpan(ctx, tracerName, "ReviewStore.Latest")
	defer span.End()

	rows, err := s.find(ctx, review.Filter{Reviewable: reviewable}, 1)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Count 按条件计数
func (s *ReviewStore) Count(ctx context.Context, filter review.Filter) (int64, error) {
	defer metrics.ObserveReviewQuery("count", time.Now())
	ctx, span := tracing.StartSpan(ctx, tracerName, "ReviewStore.Count")
	defer span.End()

	var n int64
	if err := s.query(ctx, filter).Count(&n).Error; err != nil {
		tracing.RecordError(span, err)
		return 0, apperrors.ErrDatabaseError.WithCause(err)
	}
	return n, nil
}

// Exists 按条件判断是否存在
// 学习要点：只取一行主键（LIMIT 1），比COUNT(*)更快
func (s *ReviewStore) Exists(ctx context.Context, filter review.Filter) (bool, error) {
	defer metrics.ObserveReviewQuery("exists", time.Now())
	ctx, span := tracing.StartSpan(ctx, tracerName, "ReviewStore.Exists")
	defer span.End()

	var ids []uint
	if err := s.query(ctx, filter).Limit(1).Pluck("id", &ids).Error; err != nil {
		tracing.RecordError(span, err)
		return false, apperrors.ErrDatabaseError.WithCause(err)
	}
	return len(ids) > 0, nil
}

// AverageRating 平均分（AVG只统计非NULL评分），没有评分时返回nil
func (s *ReviewStore) AverageRating(ctx context.Context, filter review.Filter) (*float64, error) {
	defer metrics.ObserveReviewQuery("average", time.Now())
	ctx, span := tracing.StartSpan(ctx, tracerName, "ReviewStore.AverageRating")
	defer span.End()

	var avg sql.NullFloat64
	if err := s.query(ctx, filter).Select("AVG(rating)").Scan(&avg).Error; err != nil {
		tracing.RecordError(span, err)
		return nil, apperrors.ErrDatabaseError.WithCause(err)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// query 构造带过滤条件的查询
func (s *ReviewStore) query(ctx context.Context, f review.Filter) *gorm.DB {
	q := s.getDB(ctx).
		Model(newModelValue(s.table.modelType).Interface()).
		Where(clause.Eq{Column: clause.Column{Name: s.table.fk.DBName}, Value: f.Reviewable.ID}).
		Where(clause.Eq{Column: clause.Column{Name: "reviewable_type"}, Value: f.Reviewable.Type})

	if f.Author != nil {
		q = q.Where(clause.Eq{Column: clause.Column{Name: "author_id"}, Value: f.Author.ID}).
			Where(clause.Eq{Column: clause.Column{Name: "author_type"}, Value: f.Author.Type})
	}
	if f.RatedOnly {
		q = q.Where("rating IS NOT NULL")
	}
	if f.Period != nil {
		// 闭区间，边界与写入时一样转成UTC
		q = q.Where("created_at >= ? AND created_at <= ?", f.Period.From.UTC(), f.Period.To.UTC())
	}
	return q
}

// find 查询并转换为领域实体，limit<=0表示不限制
func (s *ReviewStore) find(ctx context.Context, f review.Filter, limit int) ([]*review.Review, error) {
	dest := reflect.New(reflect.SliceOf(reflect.PointerTo(s.table.modelType)))

	q := s.query(ctx, f).Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true})
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(dest.Interface()).Error; err != nil {
		return nil, apperrors.ErrDatabaseError.WithCause(err)
	}

	rows := dest.Elem()
	result := make([]*review.Review, 0, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		result = append(result, s.toEntity(ctx, rows.Index(i)))
	}
	return result, nil
}

// toEntity 评价模型 → 领域实体
func (s *ReviewStore) toEntity(ctx context.Context, v reflect.Value) *review.Review {
	base := baseOf(v)
	fk, _ := s.table.fk.ValueOf(ctx, v.Elem())

	return &review.Review{
		ID:         base.ID,
		Review:     base.Review,
		Rating:     base.Rating,
		Title:      base.Title,
		Reviewable: review.Ref{Type: base.ReviewableType, ID: uintOf(fk)},
		Author:     review.Ref{Type: base.AuthorType, ID: base.AuthorID},
		CreatedAt:  base.CreatedAt,
		UpdatedAt:  base.UpdatedAt,
	}
}
