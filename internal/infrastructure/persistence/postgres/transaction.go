package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/repository"
)

// TxManager 基于 gorm 的事务管理器
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) repository.Transactor {
	return &TxManager{db: db}
}

// WithTransaction 在事务中执行 fn
//
// 事务句柄通过 context 传递，fn 内的仓储调用自动加入同一事务。
func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, repository.TxKey{}, tx)
		return fn(txCtx)
	})
}

// getDB 返回当前应使用的数据库句柄
//
// context 中携带事务时返回事务句柄，否则返回普通连接。
func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(repository.TxKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
