package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/xiebiao/reviewrating/docs"
	appbook "github.com/xiebiao/reviewrating/internal/application/book"
	appreview "github.com/xiebiao/reviewrating/internal/application/review"
	appuser "github.com/xiebiao/reviewrating/internal/application/user"
	"github.com/xiebiao/reviewrating/internal/domain/book"
	"github.com/xiebiao/reviewrating/internal/domain/review"
	"github.com/xiebiao/reviewrating/internal/domain/user"
	"github.com/xiebiao/reviewrating/internal/infrastructure/config"
	"github.com/xiebiao/reviewrating/internal/infrastructure/notifier"
	"github.com/xiebiao/reviewrating/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/reviewrating/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/reviewrating/internal/interface/http/handler"
	applogger "github.com/xiebiao/reviewrating/pkg/logger"
	"github.com/xiebiao/reviewrating/pkg/metrics"
	"github.com/xiebiao/reviewrating/pkg/tracing"
)

// @title        评价引擎 API
// @version      1.0
// @description  多态评价/评分引擎示例服务：图书作为被评价实体，用户作为评价作者
// @BasePath     /

// main 主程序入口
// 说明：手动依赖注入（wire.go给出了等价的Wire注入器）
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化日志（之后的输出全部走zap）
	logger, err := provideLogger(cfg)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	logger.Info("✓ 配置加载成功",
		zap.Int("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("database", cfg.Database.Driver),
		zap.String("review_model", cfg.Review.Model),
		zap.String("review_foreign_key", cfg.Review.ForeignKey),
	)

	// 3. 指标与追踪
	if cfg.Metrics.Enabled {
		metrics.InitMetrics()
	}
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			logger.Fatal("初始化追踪失败", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.Warn("关闭追踪失败", zap.Error(err))
			}
		}()
	}

	// 4. 依赖注入（手动组装）
	// 评价模型、外键列在这里一次性解析，配置非法直接启动失败
	engine, cleanup, err := buildApp(cfg, logger)
	if err != nil {
		logger.Fatal("初始化应用失败", zap.Error(err))
	}
	defer cleanup()

	// 5. 启动服务
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("启动服务失败", zap.Error(err))
		}
	}()
	logger.Info("🚀 服务启动成功", zap.String("addr", srv.Addr))

	// 6. 等待中断信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在关闭服务...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("关闭服务失败", zap.Error(err))
	}
	logger.Info("✅ 服务已关闭")
}

// buildApp 手动组装依赖
// 学习要点：依赖注入链
// Repository ← Service ← UseCase ← Handler
func buildApp(cfg *config.Config, logger *zap.Logger) (*gin.Engine, func(), error) {
	// 基础设施层
	db, err := mysql.NewDB(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}

	redisClient, err := provideRedisClient(cfg, logger)
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}

	resolver := provideResolver()
	reviewStore, err := mysql.NewReviewStore(db, provideReviewConfig(cfg))
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}
	scopes := mysql.NewReviewScopes(reviewStore, resolver)
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db, scopes)

	notifiers, closeNotifiers := provideNotifier(cfg, redisClient, logger)
	statsCache := provideStatsCache(cfg, redisClient)

	// 领域层
	reviewManager := provideReviewManager(cfg, reviewStore, resolver, notifiers, logger)
	userService := user.NewService(userRepo)
	bookService := book.NewService(bookRepo)

	// 应用层
	registerUseCase := appuser.NewRegisterReviewerUseCase(userService)
	publishBookUseCase := appbook.NewPublishBookUseCase(bookService)
	getBookUseCase := appbook.NewGetBookUseCase(bookService)
	listBooksUseCase := appbook.NewListBooksUseCase(bookService)
	createReviewUseCase := appreview.NewCreateReviewUseCase(reviewManager, bookService, userService, statsCache, logger)
	queryReviewsUseCase := appreview.NewQueryReviewsUseCase(reviewManager, bookService, userService)
	reviewStatsUseCase := appreview.NewReviewStatsUseCase(reviewManager, bookService, statsCache, logger)

	// 接口层
	engine := provideRouter(cfg, logger,
		handler.NewUserHandler(registerUseCase),
		handler.NewBookHandler(publishBookUseCase, getBookUseCase, listBooksUseCase),
		handler.NewReviewHandler(createReviewUseCase, queryReviewsUseCase, reviewStatsUseCase),
	)

	cleanup := func() {
		closeNotifiers()
		if redisClient != nil {
			_ = redisClient.Close()
		}
		_ = sqlDB.Close()
	}
	return engine, cleanup, nil
}

// ========================================
// Providers（main与wire.go共用）
// ========================================

// provideLogger 从配置创建日志
func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	return applogger.New(applogger.Config{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
}

// provideRedisClient redis.enabled=false时返回nil
func provideRedisClient(cfg *config.Config, logger *zap.Logger) (*goredis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	return redis.NewClient(cfg, logger)
}

// provideReviewConfig 从Config提取评价配置
func provideReviewConfig(cfg *config.Config) config.ReviewConfig {
	return cfg.Review
}

// provideResolver 注册宿主实体的类型标签
// 学习要点：标签写入评价表的reviewable_type/author_type列，
// 改名或换包路径都不影响已有数据
func provideResolver() *review.Resolver {
	return review.NewResolver().
		Alias("book", &book.Book{}).
		Alias("user", &user.User{})
}

// provideNotifier 按notifier.drivers组装通知
func provideNotifier(cfg *config.Config, redisClient *goredis.Client, logger *zap.Logger) (*notifier.Set, func()) {
	set := notifier.New(cfg.Notifier, cfg.Tracing.ServiceName, redisClient, logger.Named("notifier"))
	return set, func() {
		if err := set.Close(); err != nil {
			logger.Warn("关闭通知驱动失败", zap.Error(err))
		}
	}
}

// provideStatsCache 未启用Redis时返回nil接口
func provideStatsCache(cfg *config.Config, redisClient *goredis.Client) appreview.StatsCache {
	if redisClient == nil {
		return nil
	}
	return redis.NewStatsCache(redisClient, cfg.Review.StatsCacheTTL)
}

// provideReviewManager 创建评价领域服务
func provideReviewManager(cfg *config.Config, store *mysql.ReviewStore, resolver *review.Resolver, notifiers *notifier.Set, logger *zap.Logger) *review.Manager {
	return review.NewManager(store, resolver,
		review.WithNotifier(notifiers),
		review.WithNotifyTimeout(cfg.Notifier.Timeout),
		review.WithLogger(logger.Named("review.manager")),
	)
}

// provideRouter 创建Gin引擎
func provideRouter(cfg *config.Config, logger *zap.Logger, userHandler *handler.UserHandler, bookHandler *handler.BookHandler, reviewHandler *handler.ReviewHandler) *gin.Engine {
	opts := handler.RouterOptions{
		Mode:    cfg.Server.Mode,
		Swagger: cfg.Server.Mode != gin.ReleaseMode,
	}
	if cfg.Metrics.Enabled {
		opts.MetricsPath = cfg.Metrics.Path
	}
	return handler.NewRouter(opts, logger, userHandler, bookHandler, reviewHandler)
}
