package data

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/biz"
	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/constants"
	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// withdrawalRepo 提现仓库实现
type withdrawalRepo struct {
	data *Data
	log  *log.Helper
}

// NewWithdrawalRepo 创建提现仓库
func NewWithdrawalRepo(data *Data, logger log.Logger) biz.WithdrawalRepo {
	return &withdrawalRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// CreateWithdrawal 创建提现申请
func (r *withdrawalRepo) CreateWithdrawal(ctx context.Context, withdrawal *biz.Withdrawal) error {
	details, err := json.Marshal(withdrawal.PayoutDetails)
	if err != nil {
		return err
	}
	m := &model.TeacherWithdrawal{
		ID:            withdrawal.ID,
		TeacherID:     withdrawal.TeacherID,
		Amount:        withdrawal.Amount,
		Status:        withdrawal.Status,
		PayoutDetails: details,
		RejectReason:  withdrawal.RejectReason,
		RequestedAt:   withdrawal.RequestedAt,
		ProcessedAt:   withdrawal.ProcessedAt,
	}
	if err := r.data.DB(ctx).Create(m).Error; err != nil {
		r.log.Errorf("Failed to create withdrawal %s: %v", withdrawal.ID, err)
		return err
	}
	return nil
}

// GetWithdrawal 获取提现申请
func (r *withdrawalRepo) GetWithdrawal(ctx context.Context, withdrawalID string) (*biz.Withdrawal, error) {
	var m model.TeacherWithdrawal
	if err := r.data.DB(ctx).First(&m, "withdrawal_id = ?", withdrawalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Errorf("Failed to get withdrawal %s: %v", withdrawalID, err)
		return nil, err
	}
	return r.toBizWithdrawal(&m), nil
}

// UpdateStatus 条件更新状态（CAS），返回是否更新成功
func (r *withdrawalRepo) UpdateStatus(ctx context.Context, withdrawalID, from, to string, rejectReason *string, processedAt *time.Time) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if rejectReason != nil {
		updates["reject_reason"] = *rejectReason
	}
	if processedAt != nil {
		updates["processed_at"] = *processedAt
	}

	res := r.data.DB(ctx).Model(&model.TeacherWithdrawal{}).
		Where("withdrawal_id = ? AND status = ?", withdrawalID, from).
		Updates(updates)
	if res.Error != nil {
		r.log.Errorf("Failed to update withdrawal %s status %s -> %s: %v", withdrawalID, from, to, res.Error)
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListByTeacher 分页查询教师的提现记录
func (r *withdrawalRepo) ListByTeacher(ctx context.Context, teacherID string, page, pageSize int) ([]*biz.Withdrawal, int64, error) {
	return r.list(ctx, "teacher_id = ?", teacherID, page, pageSize)
}

// ListByStatus 分页查询指定状态的提现申请
func (r *withdrawalRepo) ListByStatus(ctx context.Context, status string, page, pageSize int) ([]*biz.Withdrawal, int64, error) {
	return r.list(ctx, "status = ?", status, page, pageSize)
}

func (r *withdrawalRepo) list(ctx context.Context, cond string, arg interface{}, page, pageSize int) ([]*biz.Withdrawal, int64, error) {
	db := r.data.DB(ctx)

	var total int64
	if err := db.Model(&model.TeacherWithdrawal{}).Where(cond, arg).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []model.TeacherWithdrawal
	if err := db.Where(cond, arg).
		Order("requested_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&ms).Error; err != nil {
		r.log.Errorf("Failed to list withdrawals (%s): %v", cond, err)
		return nil, 0, err
	}

	withdrawals := make([]*biz.Withdrawal, 0, len(ms))
	for i := range ms {
		withdrawals = append(withdrawals, r.toBizWithdrawal(&ms[i]))
	}
	return withdrawals, total, nil
}

// SumHeld 统计教师占用中的提现金额（pending/approved/paid）
func (r *withdrawalRepo) SumHeld(ctx context.Context, teacherID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.data.DB(ctx).Model(&model.TeacherWithdrawal{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("teacher_id = ? AND status IN ?", teacherID, []string{
			constants.WithdrawalStatusPending,
			constants.WithdrawalStatusApproved,
			constants.WithdrawalStatusPaid,
		}).
		Row()
	if err := row.Scan(&total); err != nil {
		r.log.Errorf("Failed to sum held withdrawals for teacher %s: %v", teacherID, err)
		return decimal.Zero, err
	}
	return total, nil
}

func (r *withdrawalRepo) toBizWithdrawal(m *model.TeacherWithdrawal) *biz.Withdrawal {
	w := &biz.Withdrawal{
		ID:           m.ID,
		TeacherID:    m.TeacherID,
		Amount:       m.Amount,
		Status:       m.Status,
		RejectReason: m.RejectReason,
		RequestedAt:  m.RequestedAt,
		ProcessedAt:  m.ProcessedAt,
	}
	if len(m.PayoutDetails) > 0 {
		// 反序列化失败只记日志，收款信息不参与账务计算
		if err := json.Unmarshal(m.PayoutDetails, &w.PayoutDetails); err != nil {
			r.log.Warnf("Failed to unmarshal payout details for withdrawal %s: %v", m.ID, err)
			w.PayoutDetails = biz.PayoutDetails{}
		}
	}
	return w
}
