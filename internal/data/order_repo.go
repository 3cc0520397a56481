package data

import (
	"context"
	"errors"
	"time"

	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/biz"
	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/constants"
	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// orderRepo 订单仓库实现
type orderRepo struct {
	data *Data
	log  *log.Helper
}

// NewOrderRepo 创建订单仓库
func NewOrderRepo(data *Data, logger log.Logger) biz.OrderRepo {
	return &orderRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// CreateOrder 创建订单及其全部明细，调用方负责包裹事务
func (r *orderRepo) CreateOrder(ctx context.Context, order *biz.Order) error {
	db := r.data.DB(ctx)

	m := &model.CourseOrder{
		ID:            order.ID,
		BuyerID:       order.BuyerID,
		TotalAmount:   order.TotalAmount,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		CreatedAt:     order.CreatedAt,
		CompletedAt:   order.CompletedAt,
	}
	if err := db.Create(m).Error; err != nil {
		r.log.Errorf("Failed to create order %s: %v", order.ID, err)
		return err
	}

	items := make([]*model.CourseOrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, &model.CourseOrderItem{
			OrderID:   order.ID,
			CourseID:  item.CourseID,
			TeacherID: item.TeacherID,
			Price:     item.Price,
			CreatedAt: order.CreatedAt,
		})
	}
	if len(items) > 0 {
		if err := db.Create(items).Error; err != nil {
			r.log.Errorf("Failed to create order items for %s: %v", order.ID, err)
			return err
		}
		for i, item := range items {
			order.Items[i].ID = item.ID
		}
	}
	return nil
}

// GetOrder 获取订单（含明细）
func (r *orderRepo) GetOrder(ctx context.Context, orderID string) (*biz.Order, error) {
	db := r.data.DB(ctx)

	var m model.CourseOrder
	if err := db.First(&m, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Errorf("Failed to get order %s: %v", orderID, err)
		return nil, err
	}

	var items []model.CourseOrderItem
	if err := db.Where("order_id = ?", orderID).Order("item_id").Find(&items).Error; err != nil {
		r.log.Errorf("Failed to get order items for %s: %v", orderID, err)
		return nil, err
	}

	return toBizOrder(&m, items), nil
}

// ListOrdersByBuyer 分页查询买家订单（不含明细）
func (r *orderRepo) ListOrdersByBuyer(ctx context.Context, buyerID string, page, pageSize int) ([]*biz.Order, int64, error) {
	db := r.data.DB(ctx)

	var total int64
	if err := db.Model(&model.CourseOrder{}).Where("buyer_id = ?", buyerID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []model.CourseOrder
	if err := db.Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&ms).Error; err != nil {
		r.log.Errorf("Failed to list orders for buyer %s: %v", buyerID, err)
		return nil, 0, err
	}

	orders := make([]*biz.Order, 0, len(ms))
	for i := range ms {
		orders = append(orders, toBizOrder(&ms[i], nil))
	}
	return orders, total, nil
}

// MarkCompleted 条件更新：仅 pending 订单可以完成
func (r *orderRepo) MarkCompleted(ctx context.Context, orderID string, completedAt time.Time) (bool, error) {
	res := r.data.DB(ctx).Model(&model.CourseOrder{}).
		Where("order_id = ? AND status = ?", orderID, constants.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":       constants.OrderStatusCompleted,
			"completed_at": completedAt,
		})
	if res.Error != nil {
		r.log.Errorf("Failed to mark order %s completed: %v", orderID, res.Error)
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkCancelled 条件更新：仅 pending 订单可以取消
func (r *orderRepo) MarkCancelled(ctx context.Context, orderID string) (bool, error) {
	res := r.data.DB(ctx).Model(&model.CourseOrder{}).
		Where("order_id = ? AND status = ?", orderID, constants.OrderStatusPending).
		Update("status", constants.OrderStatusCancelled)
	if res.Error != nil {
		r.log.Errorf("Failed to mark order %s cancelled: %v", orderID, res.Error)
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CancelStalePending 批量取消超时未支付的订单
func (r *orderRepo) CancelStalePending(ctx context.Context, before time.Time) (int64, error) {
	res := r.data.DB(ctx).Model(&model.CourseOrder{}).
		Where("status = ? AND created_at < ?", constants.OrderStatusPending, before).
		Update("status", constants.OrderStatusCancelled)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func toBizOrder(m *model.CourseOrder, items []model.CourseOrderItem) *biz.Order {
	order := &biz.Order{
		ID:            m.ID,
		BuyerID:       m.BuyerID,
		TotalAmount:   m.TotalAmount,
		Status:        m.Status,
		PaymentMethod: m.PaymentMethod,
		CreatedAt:     m.CreatedAt,
		CompletedAt:   m.CompletedAt,
	}
	for _, item := range items {
		order.Items = append(order.Items, &biz.OrderItem{
			ID:        item.ID,
			OrderID:   item.OrderID,
			CourseID:  item.CourseID,
			TeacherID: item.TeacherID,
			Price:     item.Price,
		})
	}
	return order
}
