package repository

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type txKey struct{}

// txState 最外层事务的句柄与提交后回调
type txState struct {
	db    *gorm.DB
	hooks []func(ctx context.Context)
}

// TxManager 将多次仓储调用包装为一个数据库事务，事务句柄通过 ctx 传递
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type txManagerImpl struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return &txManagerImpl{db: db}
}

// Transaction 已处于事务中时直接复用外层事务。
// 嵌套调用失败时丢弃其注册的回调；最外层提交成功后按注册顺序执行回调，回滚则全部丢弃
func (s *txManagerImpl) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if st, ok := ctx.Value(txKey{}).(*txState); ok {
		mark := len(st.hooks)
		if err := fn(ctx); err != nil {
			st.hooks = st.hooks[:mark]
			return err
		}
		return nil
	}

	st := &txState{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st.db = tx
		return fn(context.WithValue(ctx, txKey{}, st))
	})
	if err != nil {
		return err
	}
	for _, hook := range st.hooks {
		hook(ctx)
	}
	return nil
}

// AfterCommit 在最外层事务提交后执行 fn，不在事务中时立即执行。
// fn 收到的 ctx 不携带事务句柄
func AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	if st, ok := ctx.Value(txKey{}).(*txState); ok {
		st.hooks = append(st.hooks, fn)
		return
	}
	fn(ctx)
}

// conn 优先使用 ctx 中的事务句柄
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if st, ok := ctx.Value(txKey{}).(*txState); ok {
		return st.db.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// IsDuplicateError 唯一索引冲突，依赖 gorm 的 TranslateError
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
