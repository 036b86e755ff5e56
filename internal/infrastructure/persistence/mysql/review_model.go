package mysql

import (
	"fmt"
	"reflect"
	"regexp"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/xiebiao/reviewrating/internal/domain/review"
	"github.com/xiebiao/reviewrating/internal/infrastructure/config"
)

// DefaultForeignKey 评价表指向被评价实体的默认外键列
const DefaultForeignKey = "model_id"

// ReviewBase 评价表公共列
// 设计说明：
// 1. 评价表的结构由"评价模型"决定，所有评价模型都必须嵌入ReviewBase
// 2. 指向被评价实体的外键列不在这里声明，由各评价模型自己提供
//    （默认model_id，也可以是book_id、custom_model_key等）
// 3. ReviewableType/AuthorType保存类型标签，实现"一张表挂多种实体"的多态关联
type ReviewBase struct {
	ID             uint           `gorm:"primaryKey"`
	Review         string         `gorm:"type:text;not null;comment:评价正文"`
	Rating         *float64       `gorm:"comment:评分（可空）"`
	Title          *string        `gorm:"size:255;comment:标题（可空）"`
	ReviewableType string         `gorm:"size:191;not null;index;comment:被评价实体类型标签"`
	AuthorType     string         `gorm:"size:191;not null;comment:作者类型标签"`
	AuthorID       uint           `gorm:"not null;index;comment:作者ID"`
	CreatedAt      time.Time      `gorm:"index;comment:创建时间"`
	UpdatedAt      time.Time      `gorm:"comment:更新时间"`
	DeletedAt      gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

func (b *ReviewBase) reviewBase() *ReviewBase { return b }

// reviewModel 评价模型约定：嵌入ReviewBase的结构体（指针）自动满足
type reviewModel interface {
	reviewBase() *ReviewBase
}

// ReviewModel 默认评价模型（reviews表，外键列model_id）
type ReviewModel struct {
	ReviewBase
	ModelID uint `gorm:"column:model_id;not null;index;comment:被评价实体ID"`
}

// TableName 指定表名
func (ReviewModel) TableName() string {
	return "reviews"
}

var (
	reviewModelType = reflect.TypeOf((*reviewModel)(nil)).Elem()
	identifierRe    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	modelsMu sync.RWMutex
	models   = map[string]reflect.Type{
		"default": reflect.TypeOf(ReviewModel{}),
	}
)

// RegisterReviewModel 注册评价模型，供配置项review.model按名称引用
// proto可以是结构体值或指针；是否满足评价模型约定在解析时检查
//
// 示例：
//
//	type BookReview struct {
//	    mysql.ReviewBase
//	    BookID uint `gorm:"column:book_id;not null;index"`
//	}
//
//	mysql.RegisterReviewModel("book", BookReview{})
//	// config.yaml: review: {model: book, foreign_key: book_id}
func RegisterReviewModel(name string, proto any) {
	t := reflect.TypeOf(proto)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	modelsMu.Lock()
	defer modelsMu.Unlock()
	models[name] = t
}

// ResolveReviewModel 按名称解析评价模型类型
// 未注册、不是结构体或没有嵌入ReviewBase都返回review.ErrInvalidReviewModel
func ResolveReviewModel(name string) (reflect.Type, error) {
	if name == "" {
		name = "default"
	}

	modelsMu.RLock()
	t, ok := models[name]
	modelsMu.RUnlock()

	if !ok {
		return nil, review.ErrInvalidReviewModel.WithCause(fmt.Errorf("未注册的评价模型: %s", name))
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, review.ErrInvalidReviewModel.WithCause(fmt.Errorf("评价模型%s不是结构体", name))
	}
	if !reflect.PointerTo(t).Implements(reviewModelType) {
		return nil, review.ErrInvalidReviewModel.WithCause(fmt.Errorf("评价模型%s(%s)未嵌入ReviewBase", name, t))
	}
	return t, nil
}

// ResolveForeignKey 返回配置的外键列名（为空时使用model_id）
// 列名会被拼进SQL，只接受标识符
func ResolveForeignKey(cfg config.ReviewConfig) (string, error) {
	if cfg.ForeignKey == "" {
		return DefaultForeignKey, nil
	}
	if !identifierRe.MatchString(cfg.ForeignKey) {
		return "", review.ErrInvalidReviewModel.WithCause(fmt.Errorf("非法的外键列名: %q", cfg.ForeignKey))
	}
	return cfg.ForeignKey, nil
}

// reviewTable 启动时解析好的评价表元数据
type reviewTable struct {
	modelType reflect.Type
	table     string
	fk        *schema.Field
}

// resolveReviewTable 解析评价模型与外键列
// 学习要点：借助gorm.Statement.Parse拿到模型的schema（表名、列名、字段读写器），
// 外键列必须真实存在于模型中，否则在启动时失败
func resolveReviewTable(db *gorm.DB, cfg config.ReviewConfig) (*reviewTable, error) {
	modelType, err := ResolveReviewModel(cfg.Model)
	if err != nil {
		return nil, err
	}
	fkName, err := ResolveForeignKey(cfg)
	if err != nil {
		return nil, err
	}

	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(newModelValue(modelType).Interface()); err != nil {
		return nil, review.ErrInvalidReviewModel.WithCause(err)
	}

	field := stmt.Schema.LookUpField(fkName)
	if field == nil || field.DBName != fkName {
		return nil, review.ErrInvalidReviewModel.WithCause(
			fmt.Errorf("评价模型%s没有外键列%s", modelType, fkName))
	}
	switch field.IndirectFieldType.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return nil, review.ErrInvalidReviewModel.WithCause(
			fmt.Errorf("外键列%s必须是整数类型，实际为%s", fkName, field.IndirectFieldType))
	}

	return &reviewTable{
		modelType: modelType,
		table:     stmt.Schema.Table,
		fk:        field,
	}, nil
}

// newModelValue 创建一个评价模型实例（*Model）
func newModelValue(t reflect.Type) reflect.Value {
	return reflect.New(t)
}

// baseOf 取出评价模型实例中的公共列
func baseOf(v reflect.Value) *ReviewBase {
	return v.Interface().(reviewModel).reviewBase()
}

// uintOf 把外键字段的值统一转成uint
func uintOf(v any) uint {
	rv := reflect.Indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return uint(rv.Uint())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint(rv.Int())
	}
	return 0
}
