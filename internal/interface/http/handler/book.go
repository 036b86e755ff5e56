package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/reviewrating/internal/application/book"
	"github.com/xiebiao/reviewrating/internal/interface/http/dto"
	"github.com/xiebiao/reviewrating/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	publishBookUseCase *appbook.PublishBookUseCase
	getBookUseCase     *appbook.GetBookUseCase
	listBooksUseCase   *appbook.ListBooksUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	publishBookUseCase *appbook.PublishBookUseCase,
	getBookUseCase *appbook.GetBookUseCase,
	listBooksUseCase *appbook.ListBooksUseCase,
) *BookHandler {
	return &BookHandler{
		publishBookUseCase: publishBookUseCase,
		getBookUseCase:     getBookUseCase,
		listBooksUseCase:   listBooksUseCase,
	}
}

// PublishBook 发布图书(上架)
// @Summary      发布图书
// @Description  上架一本可以被评价的图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        request body dto.PublishBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) PublishBook(c *gin.Context) {
	// 1. 参数绑定与验证
	var req dto.PublishBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	// 2. 调用应用层用例
	result, err := h.publishBookUseCase.Execute(c.Request.Context(), appbook.PublishBookRequest{
		ISBN:        req.ISBN,
		Title:       req.Title,
		Author:      req.Author,
		Publisher:   req.Publisher,
		Price:       req.Price,
		CoverURL:    req.CoverURL,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// 3. 构建HTTP响应
	response.Success(c, toBookResponse(result))
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.getBookUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toBookResponse(result))
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  分页查询图书，reviewed=true只返回有评价的图书，rated=true只返回最新评价带评分的图书
// @Tags         图书
// @Produce      json
// @Param        page      query int    false "页码" default(1)
// @Param        page_size query int    false "每页数量" default(20)
// @Param        keyword   query string false "搜索关键词"
// @Param        sort_by   query string false "排序" Enums(price_asc, price_desc, id_asc, created_at_desc)
// @Param        reviewed  query bool   false "只看有评价的图书"
// @Param        rated     query bool   false "只看最新评价带评分的图书"
// @Success      200 {object} response.Response{data=dto.ListBooksResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.listBooksUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		SortBy:   req.SortBy,
		Reviewed: req.Reviewed,
		Rated:    req.Rated,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]dto.BookListItem, len(result.List))
	for i, b := range result.List {
		list[i] = dto.BookListItem{
			ID:        b.ID,
			ISBN:      b.ISBN,
			Title:     b.Title,
			Author:    b.Author,
			Publisher: b.Publisher,
			Price:     b.Price,
			PriceYuan: dto.FormatPriceYuan(b.Price),
			CoverURL:  b.CoverURL,
			CreatedAt: b.CreatedAt,
		}
	}

	response.Success(c, &dto.ListBooksResponse{
		List:       list,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

func toBookResponse(b *appbook.BookDetail) *dto.BookResponse {
	return &dto.BookResponse{
		ID:          b.ID,
		ISBN:        b.ISBN,
		Title:       b.Title,
		Author:      b.Author,
		Publisher:   b.Publisher,
		Price:       b.Price,
		PriceYuan:   dto.FormatPriceYuan(b.Price),
		CoverURL:    b.CoverURL,
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
	}
}
