package data

import (
	"context"

	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/biz"
	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// revenueRepo 收入统计仓库实现
// 所有聚合都基于订单明细的定格价格，课程调价不影响历史收入
type revenueRepo struct {
	data *Data
	log  *log.Helper
}

// NewRevenueRepo 创建收入统计仓库
func NewRevenueRepo(data *Data, logger log.Logger) biz.RevenueRepo {
	return &revenueRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// SumCompletedItems 统计教师名下课程在已完成订单中的明细价格之和
func (r *revenueRepo) SumCompletedItems(ctx context.Context, teacherID string, window biz.RevenueWindow) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.completedItems(ctx, window).
		Select("COALESCE(SUM(i.price), 0)").
		Where("i.teacher_id = ?", teacherID).
		Row()
	if err := row.Scan(&total); err != nil {
		r.log.Errorf("Failed to sum completed items for teacher %s: %v", teacherID, err)
		return decimal.Zero, err
	}
	return total, nil
}

// ListTeachersWithSales 列出窗口内有已完成销售的教师
func (r *revenueRepo) ListTeachersWithSales(ctx context.Context, window biz.RevenueWindow) ([]string, error) {
	var teacherIDs []string
	if err := r.completedItems(ctx, window).
		Distinct("i.teacher_id").
		Pluck("i.teacher_id", &teacherIDs).Error; err != nil {
		r.log.Errorf("Failed to list teachers with sales: %v", err)
		return nil, err
	}
	return teacherIDs, nil
}

// completedItems 已完成订单的明细查询基础，按完成时间过滤窗口
func (r *revenueRepo) completedItems(ctx context.Context, window biz.RevenueWindow) *gorm.DB {
	q := r.data.DB(ctx).
		Table("course_order_item AS i").
		Joins("JOIN course_order o ON o.order_id = i.order_id").
		Where("o.status = ?", constants.OrderStatusCompleted)
	if window.Start != nil {
		q = q.Where("o.completed_at >= ?", *window.Start)
	}
	if window.End != nil {
		q = q.Where("o.completed_at < ?", *window.End)
	}
	return q
}
