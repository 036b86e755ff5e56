package book

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 领域服务封装业务规则校验
// 2. 不依赖具体的Repository实现(依赖倒置)
type Service interface {
	// PublishBook 发布图书(上架)
	// 业务规则:
	// - ISBN格式必须合法(10位或13位数字)
	// - 价格必须在1-999999分之间
	// - ISBN不能重复
	PublishBook(ctx context.Context, isbn, title, author, publisher string, price int64, coverURL, description string) (*Book, error)

	// GetBookByID 根据ID获取图书详情
	GetBookByID(ctx context.Context, id uint) (*Book, error)

	// GetBookByISBN 根据ISBN获取图书
	GetBookByISBN(ctx context.Context, isbn string) (*Book, error)

	// ListBooks 分页查询图书列表(支持按评价状态筛选)
	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

// service 领域服务实现
type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// PublishBook 发布图书
func (s *service) PublishBook(ctx context.Context, isbn, title, author, publisher string, price int64, coverURL, description string) (*Book, error) {
	// 1. ISBN格式校验
	if !isValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}

	// 2. 书名不能为空
	if strings.TrimSpace(title) == "" {
		return nil, ErrInvalidTitle
	}

	// 3. 价格范围校验(1分-9999.99元)
	if price < 1 || price > 999999 {
		return nil, ErrInvalidPrice
	}

	// 4. 检查ISBN是否已存在(并发情况下由唯一索引兜底)
	existing, err := s.repo.FindByISBN(ctx, isbn)
	if err == nil && existing != nil {
		return nil, ErrISBNDuplicate
	}
	if err != nil && !errors.Is(err, ErrBookNotFound) {
		return nil, err
	}

	// 5. 创建并持久化
	book := NewBook(isbn, title, author, publisher, price, coverURL, description)
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

// GetBookByID 根据ID获取图书
func (s *service) GetBookByID(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// GetBookByISBN 根据ISBN获取图书
func (s *service) GetBookByISBN(ctx context.Context, isbn string) (*Book, error) {
	if !isValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}
	return s.repo.FindByISBN(ctx, isbn)
}

// ListBooks 分页查询图书列表
func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}
	return s.repo.List(ctx, params)
}

var nonDigit = regexp.MustCompile(`[^0-9]`)

// isValidISBN 校验ISBN格式
// 简化实现:去掉分隔符后只检查位数(10或13),生产环境应校验校验位
func isValidISBN(isbn string) bool {
	length := len(nonDigit.ReplaceAllString(isbn, ""))
	return length == 10 || length == 13
}
