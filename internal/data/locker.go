package data

import (
	"context"

	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/biz"
	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/constants"
	cerrors "github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redsync/redsync/v4"
)

// withdrawLocker 基于 redsync 的分布式锁实现
type withdrawLocker struct {
	rs  *redsync.Redsync
	log *log.Helper
}

// NewWithdrawLocker 创建提现分布式锁
func NewWithdrawLocker(rs *redsync.Redsync, logger log.Logger) biz.DistributedLocker {
	return &withdrawLocker{
		rs:  rs,
		log: log.NewHelper(logger),
	}
}

// WithLock 持锁执行 fn
func (l *withdrawLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	mutex := l.rs.NewMutex(
		key,
		redsync.WithExpiry(constants.WithdrawLockExpiration),
		redsync.WithTries(constants.WithdrawLockTries),
	)

	if err := mutex.LockContext(ctx); err != nil {
		l.log.Errorf("Failed to acquire lock %s: %v", key, err)
		return cerrors.ErrWithdrawLockFailed()
	}
	defer func(m *redsync.Mutex) {
		if _, err := m.UnlockContext(ctx); err != nil {
			l.log.Warnf("Failed to unlock %s: %v", key, err)
		}
	}(mutex)

	return fn(ctx)
}
