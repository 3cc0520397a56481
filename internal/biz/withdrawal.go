package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/constants"
	cerrors "github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayoutDetails 提现收款信息
type PayoutDetails struct {
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
}

// Withdrawal 提现申请
type Withdrawal struct {
	ID            string
	TeacherID     string
	Amount        decimal.Decimal
	Status        string // pending, approved, rejected, paid
	PayoutDetails PayoutDetails
	RejectReason  *string
	RequestedAt   time.Time
	ProcessedAt   *time.Time
}

// WithdrawalRepo 提现仓库接口
type WithdrawalRepo interface {
	CreateWithdrawal(ctx context.Context, withdrawal *Withdrawal) error
	// GetWithdrawal 获取提现申请，不存在时返回 nil
	GetWithdrawal(ctx context.Context, withdrawalID string) (*Withdrawal, error)
	// UpdateStatus 按 from -> to 条件更新状态（CAS），返回是否更新成功
	UpdateStatus(ctx context.Context, withdrawalID, from, to string, rejectReason *string, processedAt *time.Time) (bool, error)
	ListByTeacher(ctx context.Context, teacherID string, page, pageSize int) ([]*Withdrawal, int64, error)
	ListByStatus(ctx context.Context, status string, page, pageSize int) ([]*Withdrawal, int64, error)
	// SumHeld 统计教师占用中的提现金额（pending/approved/paid）
	SumHeld(ctx context.Context, teacherID string) (decimal.Decimal, error)
}

// WithdrawalUsecase 提现业务逻辑
type WithdrawalUsecase struct {
	repo     WithdrawalRepo
	revenue  *RevenueUsecase
	notifier Notifier
	locker   DistributedLocker
	tm       Transaction
	log      *log.Helper
}

// NewWithdrawalUsecase 创建提现业务用例
func NewWithdrawalUsecase(
	repo WithdrawalRepo,
	revenue *RevenueUsecase,
	notifier Notifier,
	locker DistributedLocker,
	tm Transaction,
	logger log.Logger,
) *WithdrawalUsecase {
	return &WithdrawalUsecase{
		repo:     repo,
		revenue:  revenue,
		notifier: notifier,
		locker:   locker,
		tm:       tm,
		log:      log.NewHelper(logger),
	}
}

// Request 发起提现申请
// 余额校验与落库之间用教师维度的分布式锁串行化，并在同一事务内完成，
// 两个并发请求不会基于同一份过期余额同时通过校验
func (uc *WithdrawalUsecase) Request(ctx context.Context, teacherID string, amount decimal.Decimal, details PayoutDetails) (*Withdrawal, error) {
	uc.log.Infof("RequestWithdrawal: teacherID=%s, amount=%s", teacherID, amount.String())

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, cerrors.ErrInvalidAmount()
	}

	var withdrawal *Withdrawal
	lockKey := fmt.Sprintf(constants.WithdrawLockKeyFmt, teacherID)
	err := uc.locker.WithLock(ctx, lockKey, func(ctx context.Context) error {
		return uc.tm.Exec(ctx, func(ctx context.Context) error {
			available, err := uc.revenue.AvailableBalance(ctx, teacherID)
			if err != nil {
				return err
			}
			if amount.GreaterThan(available) {
				uc.log.Infof("Withdrawal rejected for teacher %s: amount=%s, available=%s", teacherID, amount.String(), available.String())
				return cerrors.ErrInsufficientBalance()
			}

			withdrawal = &Withdrawal{
				ID:            uuid.NewString(),
				TeacherID:     teacherID,
				Amount:        amount,
				Status:        constants.WithdrawalStatusPending,
				PayoutDetails: details,
				RequestedAt:   time.Now().UTC(),
			}
			return uc.repo.CreateWithdrawal(ctx, withdrawal)
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Infof("Created withdrawal %s for teacher %s: amount=%s", withdrawal.ID, teacherID, amount.String())
	return withdrawal, nil
}

// Process 管理员审核提现申请
// 状态机：pending -> approved -> paid；pending -> rejected（驳回必须填写原因）
func (uc *WithdrawalUsecase) Process(ctx context.Context, withdrawalID, decision, reason string) (*Withdrawal, error) {
	uc.log.Infof("ProcessWithdrawal: id=%s, decision=%s", withdrawalID, decision)

	withdrawal, err := uc.repo.GetWithdrawal(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if withdrawal == nil {
		return nil, cerrors.ErrWithdrawalNotFound()
	}

	now := time.Now().UTC()
	switch decision {
	case constants.WithdrawalDecisionApprove:
		updated, err := uc.repo.UpdateStatus(ctx, withdrawalID, constants.WithdrawalStatusPending, constants.WithdrawalStatusApproved, nil, nil)
		if err != nil {
			return nil, err
		}
		if !updated {
			return nil, cerrors.ErrInvalidTransition(withdrawal.Status, decision)
		}
		withdrawal.Status = constants.WithdrawalStatusApproved
		if nerr := uc.notifier.WithdrawalApproved(ctx, withdrawal); nerr != nil {
			// 通知失败不影响主流程
			uc.log.Warnf("Failed to notify withdrawal approved %s: %v", withdrawalID, nerr)
		}

	case constants.WithdrawalDecisionReject:
		if reason == "" {
			return nil, cerrors.ErrRejectReasonRequired()
		}
		updated, err := uc.repo.UpdateStatus(ctx, withdrawalID, constants.WithdrawalStatusPending, constants.WithdrawalStatusRejected, &reason, &now)
		if err != nil {
			return nil, err
		}
		if !updated {
			return nil, cerrors.ErrInvalidTransition(withdrawal.Status, decision)
		}
		withdrawal.Status = constants.WithdrawalStatusRejected
		withdrawal.RejectReason = &reason
		withdrawal.ProcessedAt = &now
		if nerr := uc.notifier.WithdrawalRejected(ctx, withdrawal); nerr != nil {
			uc.log.Warnf("Failed to notify withdrawal rejected %s: %v", withdrawalID, nerr)
		}

	case constants.WithdrawalDecisionMarkPaid:
		updated, err := uc.repo.UpdateStatus(ctx, withdrawalID, constants.WithdrawalStatusApproved, constants.WithdrawalStatusPaid, nil, &now)
		if err != nil {
			return nil, err
		}
		if !updated {
			return nil, cerrors.ErrInvalidTransition(withdrawal.Status, decision)
		}
		withdrawal.Status = constants.WithdrawalStatusPaid
		withdrawal.ProcessedAt = &now

	default:
		return nil, cerrors.ErrInvalidTransition(withdrawal.Status, decision)
	}

	uc.log.Infof("Withdrawal %s processed: decision=%s, status=%s", withdrawalID, decision, withdrawal.Status)
	return withdrawal, nil
}

// ListByTeacher 分页查询教师自己的提现记录
func (uc *WithdrawalUsecase) ListByTeacher(ctx context.Context, teacherID string, page, pageSize int) ([]*Withdrawal, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > constants.MaxPageSize {
		pageSize = constants.DefaultPageSize
	}
	return uc.repo.ListByTeacher(ctx, teacherID, page, pageSize)
}

// ListPending 分页查询待审核的提现申请（管理员）
func (uc *WithdrawalUsecase) ListPending(ctx context.Context, page, pageSize int) ([]*Withdrawal, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > constants.MaxPageSize {
		pageSize = constants.DefaultPageSize
	}
	return uc.repo.ListByStatus(ctx, constants.WithdrawalStatusPending, page, pageSize)
}
