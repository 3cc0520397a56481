package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/constants"
	cerrors "github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/shopspring/decimal"
)

// Order 订单记录（一次购买交易）
type Order struct {
	ID            string
	BuyerID       string
	TotalAmount   decimal.Decimal
	Status        string // pending, completed, cancelled
	PaymentMethod string
	CreatedAt     time.Time
	CompletedAt   *time.Time
	Items         []*OrderItem
}

// OrderItem 订单明细（下单时定格课程价格）
type OrderItem struct {
	ID        uint64
	OrderID   string
	CourseID  uint64
	TeacherID string
	Price     decimal.Decimal
}

// Course 课程信息（目录服务只读视图）
type Course struct {
	ID        uint64
	TeacherID string
	Title     string
	Price     decimal.Decimal
}

// OrderRepo 订单仓库接口
type OrderRepo interface {
	// CreateOrder 创建订单及其全部明细
	CreateOrder(ctx context.Context, order *Order) error
	// GetOrder 获取订单（含明细），不存在时返回 nil
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	ListOrdersByBuyer(ctx context.Context, buyerID string, page, pageSize int) ([]*Order, int64, error)
	// MarkCompleted 将 pending 订单置为 completed，返回是否更新成功
	MarkCompleted(ctx context.Context, orderID string, completedAt time.Time) (bool, error)
	// MarkCancelled 将 pending 订单置为 cancelled，返回是否更新成功
	MarkCancelled(ctx context.Context, orderID string) (bool, error)
	// CancelStalePending 批量取消超时未支付的订单，返回取消数量
	CancelStalePending(ctx context.Context, before time.Time) (int64, error)
}

// CatalogRepo 课程目录接口（防腐层，账务侧只读）
type CatalogRepo interface {
	// GetCourse 获取上架课程，不存在或未上架时返回 nil
	GetCourse(ctx context.Context, courseID uint64) (*Course, error)
}

// Notifier 通知接口（fire-and-forget，失败只记日志）
type Notifier interface {
	OrderCompleted(ctx context.Context, order *Order) error
	EnrollmentActivated(ctx context.Context, enrollment *Enrollment) error
	WithdrawalApproved(ctx context.Context, withdrawal *Withdrawal) error
	WithdrawalRejected(ctx context.Context, withdrawal *Withdrawal) error
}

// OrderUsecase 订单业务逻辑
type OrderUsecase struct {
	orderRepo   OrderRepo
	catalogRepo CatalogRepo
	enrollment  *EnrollmentUsecase
	notifier    Notifier
	tm          Transaction
	log         *log.Helper
}

// NewOrderUsecase 创建订单业务用例
func NewOrderUsecase(
	orderRepo OrderRepo,
	catalogRepo CatalogRepo,
	enrollment *EnrollmentUsecase,
	notifier Notifier,
	tm Transaction,
	logger log.Logger,
) *OrderUsecase {
	return &OrderUsecase{
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		enrollment:  enrollment,
		notifier:    notifier,
		tm:          tm,
		log:         log.NewHelper(logger),
	}
}

// CreateOrder 创建订单
// 价格在下单时从课程目录定格到订单明细，后续课程调价不影响历史订单
func (uc *OrderUsecase) CreateOrder(ctx context.Context, buyerID string, courseIDs []uint64, method string) (*Order, error) {
	uc.log.Infof("CreateOrder: buyerID=%s, courseIDs=%v, method=%s", buyerID, courseIDs, method)

	if len(courseIDs) == 0 {
		return nil, cerrors.ErrEmptySelection()
	}
	if !constants.IsValidPaymentMethod(method) {
		return nil, cerrors.ErrInvalidPaymentMethod(method)
	}

	// 去重，重复勾选同一课程只生成一条明细
	seen := make(map[uint64]bool, len(courseIDs))
	ids := make([]uint64, 0, len(courseIDs))
	for _, id := range courseIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	now := time.Now().UTC()
	orderID := fmt.Sprintf("ORD%d%s", now.UnixNano(), shortUID(buyerID))
	order := &Order{
		ID:            orderID,
		BuyerID:       buyerID,
		TotalAmount:   decimal.Zero,
		Status:        constants.OrderStatusPending,
		PaymentMethod: method,
		CreatedAt:     now,
	}

	for _, courseID := range ids {
		course, err := uc.catalogRepo.GetCourse(ctx, courseID)
		if err != nil {
			uc.log.Errorf("Failed to get course %d: %v", courseID, err)
			return nil, err
		}
		if course == nil {
			return nil, cerrors.ErrCourseNotFound(courseID)
		}

		owned, err := uc.enrollment.HasActive(ctx, buyerID, courseID)
		if err != nil {
			return nil, err
		}
		if owned {
			return nil, cerrors.ErrAlreadyOwned(courseID)
		}

		order.Items = append(order.Items, &OrderItem{
			OrderID:   orderID,
			CourseID:  course.ID,
			TeacherID: course.TeacherID,
			Price:     course.Price,
		})
		order.TotalAmount = order.TotalAmount.Add(course.Price)
	}

	// 订单与全部明细在同一事务内落库
	if err := uc.tm.Exec(ctx, func(ctx context.Context) error {
		return uc.orderRepo.CreateOrder(ctx, order)
	}); err != nil {
		uc.log.Errorf("Failed to create order %s: %v", orderID, err)
		return nil, err
	}

	uc.log.Infof("Created order %s: total=%s, items=%d", orderID, order.TotalAmount.String(), len(order.Items))
	return order, nil
}

// PayOrder 完成支付
// 状态翻转与报名开通在同一事务内执行；重复调用返回 ORDER_ALREADY_COMPLETED
func (uc *OrderUsecase) PayOrder(ctx context.Context, buyerID, orderID string) (*Order, error) {
	uc.log.Infof("PayOrder: buyerID=%s, orderID=%s", buyerID, orderID)

	var completed *Order
	var activated []*Enrollment
	err := uc.tm.Exec(ctx, func(ctx context.Context) error {
		order, err := uc.orderRepo.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		// 他人的订单按不存在处理,不泄露订单归属
		if order == nil || order.BuyerID != buyerID {
			return cerrors.ErrOrderNotFound()
		}
		if order.Status == constants.OrderStatusCompleted {
			return cerrors.ErrOrderAlreadyCompleted()
		}
		if order.Status == constants.OrderStatusCancelled {
			return cerrors.ErrOrderNotFound()
		}

		now := time.Now().UTC()
		updated, err := uc.orderRepo.MarkCompleted(ctx, order.ID, now)
		if err != nil {
			return err
		}
		if !updated {
			// 状态翻转被并发请求抢先，以数据库状态为准：
			// 并发取消按不存在处理，并发支付按已完成处理
			current, gerr := uc.orderRepo.GetOrder(ctx, order.ID)
			if gerr != nil {
				return gerr
			}
			if current != nil && current.Status == constants.OrderStatusCancelled {
				return cerrors.ErrOrderNotFound()
			}
			return cerrors.ErrOrderAlreadyCompleted()
		}

		for _, item := range order.Items {
			enrollment, created, err := uc.enrollment.Activate(ctx, order.BuyerID, item.CourseID)
			if err != nil {
				return err
			}
			if created {
				activated = append(activated, enrollment)
			}
		}

		order.Status = constants.OrderStatusCompleted
		order.CompletedAt = &now
		completed = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 事件在事务提交之后发布，回滚不会产生幽灵事件；通知失败不影响主流程
	if nerr := uc.notifier.OrderCompleted(ctx, completed); nerr != nil {
		uc.log.Warnf("Failed to notify order completed %s: %v", completed.ID, nerr)
	}
	for _, enrollment := range activated {
		if nerr := uc.notifier.EnrollmentActivated(ctx, enrollment); nerr != nil {
			uc.log.Warnf("Failed to notify enrollment activated learner=%s course=%d: %v", enrollment.LearnerID, enrollment.CourseID, nerr)
		}
	}

	uc.log.Infof("Order %s completed, %d enrollments activated", completed.ID, len(completed.Items))
	return completed, nil
}

// CancelOrder 取消订单
// 已完成的订单不可取消；重复取消按幂等处理
func (uc *OrderUsecase) CancelOrder(ctx context.Context, buyerID, orderID string) (*Order, error) {
	uc.log.Infof("CancelOrder: buyerID=%s, orderID=%s", buyerID, orderID)

	order, err := uc.orderRepo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.BuyerID != buyerID {
		return nil, cerrors.ErrOrderNotFound()
	}
	if order.Status == constants.OrderStatusCompleted {
		return nil, cerrors.ErrOrderAlreadyCompleted()
	}
	if order.Status == constants.OrderStatusCancelled {
		return order, nil
	}

	updated, err := uc.orderRepo.MarkCancelled(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if !updated {
		// 取消与支付并发时以数据库状态为准
		return nil, cerrors.ErrOrderAlreadyCompleted()
	}

	order.Status = constants.OrderStatusCancelled
	return order, nil
}

// GetOrder 获取自己的订单详情
func (uc *OrderUsecase) GetOrder(ctx context.Context, buyerID, orderID string) (*Order, error) {
	order, err := uc.orderRepo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.BuyerID != buyerID {
		return nil, cerrors.ErrOrderNotFound()
	}
	return order, nil
}

// ListOrders 分页查询自己的订单
func (uc *OrderUsecase) ListOrders(ctx context.Context, buyerID string, page, pageSize int) ([]*Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > constants.MaxPageSize {
		pageSize = constants.DefaultPageSize
	}
	return uc.orderRepo.ListOrdersByBuyer(ctx, buyerID, page, pageSize)
}

// ExpireStalePending 取消超时未支付的订单（定时任务调用）
func (uc *OrderUsecase) ExpireStalePending(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	count, err := uc.orderRepo.CancelStalePending(ctx, cutoff)
	if err != nil {
		uc.log.Errorf("Failed to cancel stale pending orders: %v", err)
		return 0, err
	}
	if count > 0 {
		uc.log.Infof("Cancelled %d stale pending orders (older than %s)", count, ttl)
	}
	return count, nil
}

// shortUID 取 UUID 前段作为订单号后缀
func shortUID(uid string) string {
	if len(uid) > 8 {
		return uid[:8]
	}
	return uid
}
