package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/reviewrating/internal/domain/review"
	apperrors "github.com/xiebiao/reviewrating/pkg/errors"
)

// StatsCache 评价汇总缓存
// 设计说明：
// 1. 只缓存不带时间范围的汇总（详情页最常用的查询）
// 2. Key设计：review:stats:{reviewable_type}:{reviewable_id}，
//    代数Key：review:stats:gen:{reviewable_type}:{reviewable_id}
// 3. 新评价写入后由应用层调用Invalidate：删除汇总并递增代数
// 4. Set用WATCH代数Key做乐观锁，代数变化说明读取后有新评价，放弃回填
// 5. 缓存的是未取整的原始均值，取整在读取后按请求参数进行
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// generationTTL 代数Key的过期时间，远大于一次查库回填的耗时
const generationTTL = 24 * time.Hour

// errStaleGeneration 回填时代数已变化
var errStaleGeneration = errors.New("评价汇总缓存代数已变化")

// NewStatsCache 创建评价汇总缓存
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StatsCache{client: client, ttl: ttl}
}

type cachedStats struct {
	HasReview       bool     `json:"has_review"`
	HasRating       bool     `json:"has_rating"`
	NumberOfReviews int64    `json:"number_of_reviews"`
	NumberOfRatings int64    `json:"number_of_ratings"`
	AverageRating   *float64 `json:"average_rating"`
}

func statsKey(ref review.Ref) string {
	return fmt.Sprintf("review:stats:%s:%d", ref.Type, ref.ID)
}

func generationKey(ref review.Ref) string {
	return fmt.Sprintf("review:stats:gen:%s:%d", ref.Type, ref.ID)
}

// Get 读取缓存和当前代数，未命中返回(nil, 代数, nil)
// 学习要点：MGET一次往返取两个Key，不存在的Key对应nil
func (c *StatsCache) Get(ctx context.Context, ref review.Ref) (*review.Stats, int64, error) {
	vals, err := c.client.MGet(ctx, statsKey(ref), generationKey(ref)).Result()
	if err != nil {
		return nil, 0, apperrors.ErrRedisError.WithCause(err)
	}

	generation, err := parseGeneration(vals[1])
	if err != nil {
		return nil, 0, err
	}
	data, ok := vals[0].(string)
	if !ok {
		return nil, generation, nil
	}

	var cs cachedStats
	if err := json.Unmarshal([]byte(data), &cs); err != nil {
		return nil, 0, apperrors.Wrap(err, "评价汇总缓存格式错误")
	}
	return &review.Stats{
		HasReview:       cs.HasReview,
		HasRating:       cs.HasRating,
		NumberOfReviews: cs.NumberOfReviews,
		NumberOfRatings: cs.NumberOfRatings,
		AverageRating:   cs.AverageRating,
	}, generation, nil
}

func parseGeneration(v interface{}) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, apperrors.Wrap(err, "评价汇总缓存代数格式错误")
	}
	return n, nil
}

// Set 回填缓存，代数与读取时不一致则放弃（返回nil）
//
// 教学要点：WATCH + MULTI/EXEC
// - WATCH之后代数Key被其他客户端修改，EXEC返回redis.TxFailedErr
// - 事务内再读一次代数，覆盖WATCH之前就已变化的情况
func (c *StatsCache) Set(ctx context.Context, ref review.Ref, generation int64, stats *review.Stats) error {
	data, err := json.Marshal(cachedStats{
		HasReview:       stats.HasReview,
		HasRating:       stats.HasRating,
		NumberOfReviews: stats.NumberOfReviews,
		NumberOfRatings: stats.NumberOfRatings,
		AverageRating:   stats.AverageRating,
	})
	if err != nil {
		return apperrors.Wrap(err, "序列化评价汇总失败")
	}

	genKey := generationKey(ref)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, statsKey(ref), data, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil, errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return nil
	default:
		return apperrors.ErrRedisError.WithCause(err)
	}
}

// Invalidate 删除缓存并递增代数（新评价写入后调用）
func (c *StatsCache) Invalidate(ctx context.Context, ref review.Ref) error {
	genKey := generationKey(ref)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, statsKey(ref))
		return nil
	})
	if err != nil {
		return apperrors.ErrRedisError.WithCause(err)
	}
	return nil
}
