package book

import (
	"time"
)

// Book 图书实体(聚合根,可被评价)
// DDD设计说明:
// 1. Book是图书聚合的根实体,包含图书的核心属性
// 2. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 3. ISBN作为业务唯一标识(数据库层保证唯一性)
// 4. 实现review.Entity接口,评价通过类型标签+ID多态关联到图书
type Book struct {
	ID          uint
	ISBN        string // ISBN号(国际标准书号)
	Title       string // 书名
	Author      string // 作者
	Publisher   string // 出版社
	Price       int64  // 价格(单位:分,1元=100分)
	CoverURL    string // 封面图片URL
	Description string // 图书描述
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBook 创建新图书(工厂方法)
// isbn需调用方先验证格式,price必须>0
func NewBook(isbn, title, author, publisher string, price int64, coverURL, description string) *Book {
	now := time.Now()
	return &Book{
		ISBN:        isbn,
		Title:       title,
		Author:      author,
		Publisher:   publisher,
		Price:       price,
		CoverURL:    coverURL,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// EntityID 实现review.Entity
func (b *Book) EntityID() uint {
	return b.ID
}

// UpdatePrice 更新价格(领域行为)
// 业务规则:价格必须>0
func (b *Book) UpdatePrice(newPrice int64) error {
	if newPrice <= 0 {
		return ErrInvalidPrice
	}
	b.Price = newPrice
	b.UpdatedAt = time.Now()
	return nil
}

// UpdateInfo 更新图书基本信息(空字符串表示不修改)
func (b *Book) UpdateInfo(title, author, publisher, description string) {
	if title != "" {
		b.Title = title
	}
	if author != "" {
		b.Author = author
	}
	if publisher != "" {
		b.Publisher = publisher
	}
	if description != "" {
		b.Description = description
	}
	b.UpdatedAt = time.Now()
}
