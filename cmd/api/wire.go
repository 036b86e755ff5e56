//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含与main.go中buildApp等价的组装代码
//
// 核心概念：
// - Provider: 提供依赖的构造函数（如NewUserRepository）
// - Injector: 声明最终要构造的目标类型（如*gin.Engine）
// - wire.Bind: 把接口绑定到具体实现（review.Store ← *mysql.ReviewStore）

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	appbook "github.com/xiebiao/reviewrating/internal/application/book"
	appreview "github.com/xiebiao/reviewrating/internal/application/review"
	appuser "github.com/xiebiao/reviewrating/internal/application/user"
	"github.com/xiebiao/reviewrating/internal/domain/book"
	"github.com/xiebiao/reviewrating/internal/domain/user"
	"github.com/xiebiao/reviewrating/internal/infrastructure/config"
	"github.com/xiebiao/reviewrating/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/reviewrating/internal/interface/http/handler"
)

// infrastructureSet 基础设施层依赖
// 包含：配置、日志、数据库、Redis、通知驱动
var infrastructureSet = wire.NewSet(
	config.Load,
	provideLogger,
	mysql.NewDB,
	provideRedisClient,
	provideNotifier,
	provideStatsCache,
)

// repositorySet 仓储层依赖
// 评价仓储在构造时解析review.model/review.foreign_key
var repositorySet = wire.NewSet(
	provideReviewConfig,
	provideResolver,
	mysql.NewReviewStore,
	mysql.NewReviewScopes,
	mysql.NewUserRepository,
	mysql.NewBookRepository,
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	user.NewService,
	book.NewService,
	provideReviewManager,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appuser.NewRegisterReviewerUseCase,
	appbook.NewPublishBookUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewListBooksUseCase,
	appreview.NewCreateReviewUseCase,
	appreview.NewQueryReviewsUseCase,
	appreview.NewReviewStatsUseCase,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewReviewHandler,
	provideRouter,
)

// InitializeApp 初始化整个应用
// 返回：配置好的Gin引擎 + 清理函数（关闭通知驱动连接）
//
// 教学说明：
// Wire Injector函数的返回值有限制：
// - 第一个返回值：要构造的目标类型（*gin.Engine）
// - 其余返回值：只能是cleanup函数和error
func InitializeApp() (*gin.Engine, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		handlerSet,
	)
	return nil, nil, nil
}
