package notifier

import (
	"errors"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/reviewrating/internal/infrastructure/config"
	"github.com/xiebiao/reviewrating/pkg/circuitbreaker"
	"github.com/xiebiao/reviewrating/pkg/mq"
)

// Set 按配置组装的通知驱动集合
type Set struct {
	*Multi
	closers []func() error
}

// Close 关闭驱动持有的连接（RabbitMQ通道、NATS连接）
// Redis客户端由调用方管理，这里不关闭
func (s *Set) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// New 根据notifier.drivers组装通知
// 设计说明：
// 1. 通知是尽力而为的，某个中间件在启动时连不上只记录告警并跳过该驱动，服务照常启动
// 2. 除log外的驱动都包一层熔断器，中间件宕机时快速失败
// 3. redis驱动复用缓存层的客户端，redisClient为nil时跳过
func New(cfg config.NotifierConfig, appName string, redisClient *redis.Client, logger *zap.Logger) *Set {
	set := &Set{Multi: NewMulti()}
	breaker := circuitbreaker.Config{
		MaxRequests:      cfg.Breaker.MaxRequests,
		Interval:         cfg.Breaker.Interval,
		Timeout:          cfg.Breaker.Timeout,
		FailureThreshold: cfg.Breaker.FailureThreshold,
	}

	for _, name := range cfg.Drivers {
		switch name {
		case "log":
			set.add(NewLogNotifier(logger.Named("review-events")))

		case "rabbitmq":
			r := cfg.RabbitMQ
			pub, err := mq.NewPublisher(r.URL, r.Exchange, r.ExchangeType, logger)
			if err != nil {
				logger.Warn("RabbitMQ不可用，跳过该通知驱动", zap.Error(err))
				continue
			}
			set.closers = append(set.closers, pub.Close)
			set.add(WithBreaker(NewRabbitMQNotifier(pub, r.RoutingKey), breaker, logger))

		case "nats":
			conn, err := ConnectNATS(cfg.NATS.URL, appName, logger)
			if err != nil {
				logger.Warn("NATS不可用，跳过该通知驱动", zap.Error(err))
				continue
			}
			set.closers = append(set.closers, drainNATS(conn))
			set.add(WithBreaker(NewNATSNotifier(conn, cfg.NATS.Subject), breaker, logger))

		case "redis":
			if redisClient == nil {
				logger.Warn("未配置Redis客户端，跳过该通知驱动")
				continue
			}
			set.add(WithBreaker(NewRedisNotifier(redisClient, cfg.Redis.Channel), breaker, logger))

		default:
			logger.Warn("未知的通知驱动", zap.String("driver", name))
		}
	}

	names := make([]string, 0, len(set.drivers))
	for _, d := range set.drivers {
		names = append(names, d.Name())
	}
	logger.Info("✓ 评价通知驱动已启用", zap.Strings("drivers", names))
	return set
}

func (s *Set) add(d Driver) {
	s.drivers = append(s.drivers, d)
}

func drainNATS(conn *nats.Conn) func() error {
	return func() error {
		if conn.IsClosed() {
			return nil
		}
		return conn.Drain()
	}
}
