package mysql

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/xiebiao/reviewrating/internal/domain/review"
)

// ReviewScopes 被评价实体查询的GORM Scope
// 设计说明：
// 1. "最新评价"定义为该实体ID最大的那条评价（同类型、未删除）
// 2. AllReviewed：存在最新评价的实体
// 3. WithRatings：最新评价带评分的实体（较早评价有分、最新评价没分的实体不算）
// 4. 条件是挂在外层查询上的相关子查询，分页、排序仍由调用方控制
//
// 使用示例：
//
//	var books []BookModel
//	db.Model(&BookModel{}).
//	    Scopes(scopes.WithRatings(&book.Book{})).
//	    Order("id").
//	    Find(&books)
type ReviewScopes struct {
	table    *reviewTable
	resolver *review.Resolver
}

// NewReviewScopes 创建Scope集合（与ReviewStore共用同一个评价表配置）
func NewReviewScopes(store *ReviewStore, resolver *review.Resolver) *ReviewScopes {
	return &ReviewScopes{table: store.table, resolver: resolver}
}

// AllReviewed 只保留至少有一条评价的实体
// proto是被评价实体类型的原型（如&book.Book{}），用于解析类型标签
func (s *ReviewScopes) AllReviewed(proto review.Entity) func(*gorm.DB) *gorm.DB {
	return s.latestReviewScope(proto, false)
}

// WithRatings 只保留最新评价带评分的实体
func (s *ReviewScopes) WithRatings(proto review.Entity) func(*gorm.DB) *gorm.DB {
	return s.latestReviewScope(proto, true)
}

func (s *ReviewScopes) latestReviewScope(proto review.Entity, rated bool) func(*gorm.DB) *gorm.DB {
	typeTag := s.resolver.TypeTag(proto)

	return func(db *gorm.DB) *gorm.DB {
		outerTable, outerKey, err := outerColumn(db)
		if err != nil {
			_ = db.AddError(err)
			return db
		}

		q := db.Statement.Quote
		table := q(s.table.table)
		fk := q(s.table.fk.DBName)
		outer := q(outerTable + "." + outerKey)

		ratedSQL := ""
		if rated {
			ratedSQL = " AND latest_review.rating IS NOT NULL"
		}

		// EXISTS (最新评价) + 可选的评分条件
		// 内层MAX(id)子查询找出该实体的最新评价ID
		cond := fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %[1]s latest_review"+
				" WHERE latest_review.%[2]s = %[3]s"+
				" AND latest_review.reviewable_type = ?"+
				" AND latest_review.deleted_at IS NULL"+
				" AND latest_review.id = (SELECT MAX(newer.id) FROM %[1]s newer"+
				" WHERE newer.%[2]s = %[3]s"+
				" AND newer.reviewable_type = ?"+
				" AND newer.deleted_at IS NULL)%[4]s)",
			table, fk, outer, ratedSQL,
		)
		return db.Where(cond, typeTag, typeTag)
	}
}

// outerColumn 解析外层查询的表名与主键列
// 优先使用Model/Dest的schema；只用db.Table()时按主键id处理
func outerColumn(db *gorm.DB) (string, string, error) {
	stmt := db.Statement
	if stmt.Schema == nil {
		target := stmt.Model
		if target == nil {
			target = stmt.Dest
		}
		if target != nil {
			if err := stmt.Parse(target); err != nil {
				return "", "", err
			}
		}
	}

	table, key := stmt.Table, "id"
	if stmt.Schema != nil {
		if table == "" {
			table = stmt.Schema.Table
		}
		if pk := stmt.Schema.PrioritizedPrimaryField; pk != nil {
			key = pk.DBName
		}
	}
	if table == "" {
		return "", "", errors.New("评价Scope无法确定外层表名，请先调用Model()或Table()")
	}
	return table, key, nil
}
