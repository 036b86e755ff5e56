// consumer 评价事件消费者
//
// 教学说明：
// 演示如何订阅API服务发布的review.created事件。
// 按notifier.drivers订阅对应的中间件（rabbitmq / nats / redis），
// 收到事件后只记录日志，真实场景可替换为：刷新排行榜、推送通知、同步搜索索引等
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xiebiao/reviewrating/internal/infrastructure/config"
	"github.com/xiebiao/reviewrating/internal/infrastructure/notifier"
	"github.com/xiebiao/reviewrating/internal/infrastructure/persistence/redis"
	applogger "github.com/xiebiao/reviewrating/pkg/logger"
	"github.com/xiebiao/reviewrating/pkg/mq"
	"github.com/xiebiao/reviewrating/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认加载./config/config.yaml）")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	logger, err := applogger.New(applogger.Config{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := logEvent(logger.Named("review-events"))
	g, gctx := errgroup.WithContext(ctx)
	subscribed := 0

	for _, driver := range cfg.Notifier.Drivers {
		switch driver {
		case "rabbitmq":
			r := cfg.Notifier.RabbitMQ
			consumer, err := mq.NewConsumer(r.URL, r.Exchange, r.ExchangeType, r.Queue, []string{"review.*"}, logger)
			if err != nil {
				logger.Fatal("创建RabbitMQ消费者失败", zap.Error(err))
			}
			defer consumer.Close()
			subscribed++
			g.Go(func() error {
				return consumer.Consume(gctx, notifier.AMQPHandler(handler, logger))
			})

		case "nats":
			conn, err := notifier.ConnectNATS(cfg.Notifier.NATS.URL, cfg.Tracing.ServiceName+"-consumer", logger)
			if err != nil {
				logger.Fatal("连接NATS失败", zap.Error(err))
			}
			defer conn.Close()
			subscribed++
			g.Go(func() error {
				return notifier.SubscribeNATS(gctx, conn, cfg.Notifier.NATS.Subject, handler, logger)
			})

		case "redis":
			client, err := redis.NewClient(cfg, logger)
			if err != nil {
				logger.Fatal("连接Redis失败", zap.Error(err))
			}
			defer client.Close()
			subscribed++
			g.Go(func() error {
				return notifier.SubscribeRedis(gctx, client, cfg.Notifier.Redis.Channel, handler, logger)
			})
		}
	}

	if subscribed == 0 {
		logger.Warn("notifier.drivers中没有可订阅的中间件（log驱动无需消费者）")
		return
	}
	logger.Info("🚀 评价事件消费者已启动", zap.Strings("drivers", cfg.Notifier.Drivers))

	if err := g.Wait(); err != nil {
		logger.Error("消费者异常退出", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("✅ 消费者已关闭")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// logEvent 示例处理函数：记录事件并关联发布端的trace
func logEvent(logger *zap.Logger) notifier.EventHandler {
	return func(ctx context.Context, ev notifier.ReviewCreatedEvent) error {
		fields := []zap.Field{
			zap.Uint("review_id", ev.ReviewID),
			zap.String("reviewable", ev.Reviewable().String()),
			zap.String("author", ev.Author().String()),
			zap.Time("created_at", ev.CreatedAt),
			zap.String("trace_id", tracing.ExtractTraceID(ctx)),
		}
		if ev.Rating != nil {
			fields = append(fields, zap.Float64("rating", *ev.Rating))
		}
		logger.Info("收到评价事件", fields...)
		return nil
	}
}
