package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/reviewrating/internal/interface/http/middleware"
	"github.com/xiebiao/reviewrating/pkg/response"
)

// RouterOptions 路由配置
type RouterOptions struct {
	Mode        string // debug | release | test
	MetricsPath string // 为空时不暴露指标端点
	Swagger     bool
}

// NewRouter 创建Gin引擎并注册全部路由
// 中间件顺序：Recovery → Tracing → Logger → Metrics
// Tracing放在Logger前面，访问日志才能带上trace_id
func NewRouter(opts RouterOptions, logger *zap.Logger, userHandler *UserHandler, bookHandler *BookHandler, reviewHandler *ReviewHandler) *gin.Engine {
	switch opts.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(opts.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Tracing(), middleware.Logger(logger), middleware.Metrics())

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	if opts.MetricsPath != "" {
		r.GET(opts.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	// Swagger文档路由
	// 访问 http://localhost:8080/swagger/index.html 查看API文档
	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	{
		v1.POST("/users", userHandler.Register)

		books := v1.Group("/books")
		{
			books.POST("", bookHandler.PublishBook)
			books.GET("", bookHandler.ListBooks)
			books.GET("/:id", bookHandler.GetBook)

			reviews := books.Group("/:id/reviews")
			{
				reviews.POST("", reviewHandler.CreateReview)
				reviews.GET("", reviewHandler.ListReviews)
				reviews.GET("/latest", reviewHandler.LatestReview)
				reviews.GET("/stats", reviewHandler.ReviewStats)
				reviews.GET("/authors/:user_id", reviewHandler.HasReviewed)
			}
		}
	}

	return r
}
