package biz

import (
	"context"

	"github.com/google/wire"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(
	NewOrderUsecase,
	NewEnrollmentUsecase,
	NewRevenueUsecase,
	NewWithdrawalUsecase,
)

// Transaction 事务执行接口，由 data 层绑定实现
type Transaction interface {
	Exec(ctx context.Context, fn func(ctx context.Context) error) error
}

// DistributedLocker 分布式锁接口，由 data 层基于 redsync 实现
type DistributedLocker interface {
	// WithLock 在持有 key 对应的锁期间执行 fn，获取锁失败时不执行 fn
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}
