package biz

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/shopspring/decimal"
)

// RevenueWindow 收入统计时间窗口 [Start, End)，零值端点表示不限
type RevenueWindow struct {
	Start *time.Time
	End   *time.Time
}

// AllTimeWindow 全量窗口
func AllTimeWindow() RevenueWindow {
	return RevenueWindow{}
}

// CurrentMonthWindow 本月窗口
func CurrentMonthWindow(now time.Time) RevenueWindow {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return RevenueWindow{Start: &start, End: &end}
}

// PreviousMonthWindow 上月窗口
func PreviousMonthWindow(now time.Time) RevenueWindow {
	now = now.UTC()
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, -1, 0)
	return RevenueWindow{Start: &start, End: &end}
}

// RevenueSummary 教师收入汇总
type RevenueSummary struct {
	TeacherID        string
	TotalRevenue     decimal.Decimal
	ThisMonth        decimal.Decimal
	PreviousMonth    decimal.Decimal
	AvailableBalance decimal.Decimal
}

// RevenueRepo 收入统计仓库接口
// 只读聚合：按订单明细定格价格求和，永远不回查课程现价
type RevenueRepo interface {
	// SumCompletedItems 统计教师名下课程在已完成订单中的明细价格之和
	// 窗口按订单完成时间 [start, end) 过滤，端点为 nil 时不限
	SumCompletedItems(ctx context.Context, teacherID string, window RevenueWindow) (decimal.Decimal, error)
	// ListTeachersWithSales 列出窗口内有已完成销售的教师
	ListTeachersWithSales(ctx context.Context, window RevenueWindow) ([]string, error)
}

// RevenueUsecase 收入统计业务逻辑
type RevenueUsecase struct {
	revenueRepo    RevenueRepo
	withdrawalRepo WithdrawalRepo
	log            *log.Helper
}

// NewRevenueUsecase 创建收入统计业务用例
func NewRevenueUsecase(revenueRepo RevenueRepo, withdrawalRepo WithdrawalRepo, logger log.Logger) *RevenueUsecase {
	return &RevenueUsecase{
		revenueRepo:    revenueRepo,
		withdrawalRepo: withdrawalRepo,
		log:            log.NewHelper(logger),
	}
}

// ComputeRevenue 统计教师在窗口内的收入
// 无课程或无销售时返回零值，这是正常情况而不是错误
func (uc *RevenueUsecase) ComputeRevenue(ctx context.Context, teacherID string, window RevenueWindow) (decimal.Decimal, error) {
	total, err := uc.revenueRepo.SumCompletedItems(ctx, teacherID, window)
	if err != nil {
		uc.log.Errorf("Failed to compute revenue for teacher %s: %v", teacherID, err)
		return decimal.Zero, err
	}
	return total, nil
}

// AvailableBalance 可提现余额 = 全量已完成收入 − 占用中的提现金额之和
// 占用中指 pending/approved/paid 三种状态,每次都从持久化数据重算,不做缓存
func (uc *RevenueUsecase) AvailableBalance(ctx context.Context, teacherID string) (decimal.Decimal, error) {
	total, err := uc.ComputeRevenue(ctx, teacherID, AllTimeWindow())
	if err != nil {
		return decimal.Zero, err
	}
	held, err := uc.withdrawalRepo.SumHeld(ctx, teacherID)
	if err != nil {
		uc.log.Errorf("Failed to sum held withdrawals for teacher %s: %v", teacherID, err)
		return decimal.Zero, err
	}
	return total.Sub(held), nil
}

// Summary 教师收入看板汇总
func (uc *RevenueUsecase) Summary(ctx context.Context, teacherID string) (*RevenueSummary, error) {
	now := time.Now().UTC()

	total, err := uc.ComputeRevenue(ctx, teacherID, AllTimeWindow())
	if err != nil {
		return nil, err
	}
	thisMonth, err := uc.ComputeRevenue(ctx, teacherID, CurrentMonthWindow(now))
	if err != nil {
		return nil, err
	}
	prevMonth, err := uc.ComputeRevenue(ctx, teacherID, PreviousMonthWindow(now))
	if err != nil {
		return nil, err
	}
	held, err := uc.withdrawalRepo.SumHeld(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	return &RevenueSummary{
		TeacherID:        teacherID,
		TotalRevenue:     total,
		ThisMonth:        thisMonth,
		PreviousMonth:    prevMonth,
		AvailableBalance: total.Sub(held),
	}, nil
}

// MonthlyReport 上月有销售的教师及其上月收入（定时任务调用）
func (uc *RevenueUsecase) MonthlyReport(ctx context.Context, now time.Time) (map[string]decimal.Decimal, error) {
	window := PreviousMonthWindow(now)
	teachers, err := uc.revenueRepo.ListTeachersWithSales(ctx, window)
	if err != nil {
		return nil, err
	}

	report := make(map[string]decimal.Decimal, len(teachers))
	for _, teacherID := range teachers {
		revenue, err := uc.ComputeRevenue(ctx, teacherID, window)
		if err != nil {
			uc.log.Errorf("Failed to compute monthly revenue for teacher %s: %v", teacherID, err)
			continue
		}
		report[teacherID] = revenue
	}
	return report, nil
}
