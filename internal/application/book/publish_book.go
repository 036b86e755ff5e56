package book

import (
	"context"

	"github.com/xiebiao/reviewrating/internal/domain/book"
)

// PublishBookUseCase 图书上架用例
// 设计说明:
// 1. 应用层负责用例编排,协调领域服务完成业务流程
// 2. 输入输出使用DTO(Data Transfer Object),与HTTP层解耦
// 3. 此用例比较简单,只需调用领域服务即可
type PublishBookUseCase struct {
	bookService book.Service
}

// NewPublishBookUseCase 创建上架用例
func NewPublishBookUseCase(bookService book.Service) *PublishBookUseCase {
	return &PublishBookUseCase{
		bookService: bookService,
	}
}

// PublishBookRequest 上架请求DTO
type PublishBookRequest struct {
	ISBN        string // ISBN号
	Title       string // 书名
	Author      string // 作者
	Publisher   string // 出版社
	Price       int64  // 价格(分)
	CoverURL    string // 封面图URL
	Description string // 图书描述
}

// BookDetail 图书详情DTO(上架响应与详情查询共用)
type BookDetail struct {
	ID          uint   `json:"id"`
	ISBN        string `json:"isbn"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Publisher   string `json:"publisher"`
	Price       int64  `json:"price"` // 价格(分)
	CoverURL    string `json:"cover_url"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// Execute 执行上架用例
// 学习要点:
// 1. 应用层不直接操作Repository,通过领域服务间接操作
// 2. 业务规则校验由领域服务负责(ISBN格式、价格范围等)
// 3. 应用层只负责流程编排
func (uc *PublishBookUseCase) Execute(ctx context.Context, req PublishBookRequest) (*BookDetail, error) {
	b, err := uc.bookService.PublishBook(
		ctx,
		req.ISBN,
		req.Title,
		req.Author,
		req.Publisher,
		req.Price,
		req.CoverURL,
		req.Description,
	)
	if err != nil {
		return nil, err
	}
	return toBookDetail(b), nil
}

// GetBookUseCase 图书详情查询用例
type GetBookUseCase struct {
	bookService book.Service
}

// NewGetBookUseCase 创建详情查询用例
func NewGetBookUseCase(bookService book.Service) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService}
}

// Execute 查询图书详情
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookDetail, error) {
	b, err := uc.bookService.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBookDetail(b), nil
}

func toBookDetail(b *book.Book) *BookDetail {
	return &BookDetail{
		ID:          b.ID,
		ISBN:        b.ISBN,
		Title:       b.Title,
		Author:      b.Author,
		Publisher:   b.Publisher,
		Price:       b.Price,
		CoverURL:    b.CoverURL,
		Description: b.Description,
		CreatedAt:   b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
