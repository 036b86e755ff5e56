package mysql

import (
	"context"

	"gorm.io/gorm"
)

// txKey context中事务DB的key(私有类型,避免与其他包冲突)
type txKey struct{}

// TxManager 事务管理器
// 教学要点:
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB(避免全局变量)
// 3. 支持嵌套事务(GORM自动使用Savepoint)
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// 教学要点:
// 1. fn内所有Repository操作都会通过dbFromContext拿到同一个事务DB
// 2. fn返回error时自动ROLLBACK,返回nil时自动COMMIT
// 3. 评价创建通知在评价写入之后触发,如果调用方把创建放进事务,
//    通知可能早于提交;需要"提交后通知"语义时应在事务外创建评价
//
// 使用示例:
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    // 1. 发布图书
//	    if err := bookRepo.Create(ctx, b); err != nil {
//	        return err
//	    }
//	    // 2. 以出版社编辑身份写入首条推荐语
//	    _, err := reviews.For(b).Create(ctx, "编辑推荐", editor, review.WithRating(5))
//	    return err // nil则提交,非nil则回滚
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return dbFromContext(ctx, m.db).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey{}, tx)
		return fn(txCtx)
	})
}
