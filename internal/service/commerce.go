package service

import (
	"context"

	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/auth"
	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/biz"
)

// CommerceService 账务服务入口，负责身份提取、DTO 映射并委托给各业务用例
type CommerceService struct {
	orderUC      *biz.OrderUsecase
	enrollmentUC *biz.EnrollmentUsecase
	revenueUC    *biz.RevenueUsecase
	withdrawalUC *biz.WithdrawalUsecase
}

// NewCommerceService 创建账务服务
func NewCommerceService(
	orderUC *biz.OrderUsecase,
	enrollmentUC *biz.EnrollmentUsecase,
	revenueUC *biz.RevenueUsecase,
	withdrawalUC *biz.WithdrawalUsecase,
) *CommerceService {
	return &CommerceService{
		orderUC:      orderUC,
		enrollmentUC: enrollmentUC,
		revenueUC:    revenueUC,
		withdrawalUC: withdrawalUC,
	}
}

// CreateOrder 创建订单
func (s *CommerceService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderReply, error) {
	uid, err := auth.RequireUID(ctx)
	if err != nil {
		return nil, err
	}
	order, err := s.orderUC.CreateOrder(ctx, uid, req.CourseIDs, req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	return toOrderReply(order), nil
}

// PayOrder 完成支付
func (s *CommerceService) PayOrder(ctx context.Context, orderID string) (*OrderReply, error) {
	uid, err := auth.RequireUID(ctx)
	if err != nil {
		return nil, err
	}
	order, err := s.orderUC.PayOrder(ctx, uid, orderID)
	if err != nil {
		return nil, err
	}
	return toOrderReply(order), nil
}

// CancelOrder 取消订单
func (s *CommerceService) CancelOrder(ctx context.Context, orderID string) (*OrderReply, error) {
	uid, err := auth.RequireUID(ctx)
	if err != nil {
		return nil, err
	}
	order, err := s.orderUC.CancelOrder(ctx, uid, orderID)
	if err != nil {
		return nil, err
	}
	return toOrderReply(order), nil
}

// GetOrder 获取订单详情
func (s *CommerceService) GetOrder(ctx context.Context, orderID string) (*OrderReply, error) {
	uid, err := auth.RequireUID(ctx)
	if err != nil {
		return nil, err
	}
	order, err := s.orderUC.GetOrder(ctx, uid, orderID)
	if err != nil {
		return nil, err
	}
	return toOrderReply(order), nil
}

// ListOrders 分页查询自己的订单
func (s *CommerceService) ListOrders(ctx context.Context, page, pageSize int) (*ListOrdersReply, error) {
	uid, err := auth.RequireUID(ctx)
	if err != nil {
		return nil, err
	}
	orders, total, err := s.orderUC.ListOrders(ctx, uid, page, pageSize)
	if err != nil {
		return nil, err
	}
	reply := &ListOrdersReply{Total: total, Orders: make([]*OrderReply, 0, len(orders))}
	for _, order := range orders {
		reply.Orders = append(reply.Orders, toOrderReply(order))
	}
	return reply, nil
}

// ListEnrollments 查询自己的报名记录
func (s *CommerceService) ListEnrollments(ctx context.Context) (*ListEnrollmentsReply, error) {
	uid, err := auth.RequireUID(ctx)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.enrollmentUC.ListEnrollments(ctx, uid)
	if err != nil {
		return nil, err
	}
	reply := &ListEnrollmentsReply{Enrollments: make([]*EnrollmentReply, 0, len(enrollments))}
	for _, e := range enrollments {
		reply.Enrollments = append(reply.Enrollments, &EnrollmentReply{
			CourseID:   e.CourseID,
			Status:     e.Status,
			EnrolledAt: e.EnrolledAt,
		})
	}
	return reply, nil
}

// GetRevenueSummary 教师收入看板
func (s *CommerceService) GetRevenueSummary(ctx context.Context) (*RevenueSummaryReply, error) {
	uid, err := auth.RequireUID(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := s.revenueUC.Summary(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &RevenueSummaryReply{
		TeacherID:        summary.TeacherID,
		TotalRevenue:     summary.TotalRevenue.StringFixed(2),
		ThisMonth:        summary.ThisMonth.StringFixed(2),
		PreviousMonth:    summary.PreviousMonth.StringFixed(2),
		AvailableBalance: summary.AvailableBalance.StringFixed(2),
	}, nil
}

// RequestWithdrawal 发起提现
func (s *CommerceService) RequestWithdrawal(ctx context.Context, req *RequestWithdrawalRequest) (*WithdrawalReply, error) {
	uid, err := auth.RequireUID(ctx)
	if err != nil {
		return nil, err
	}
	withdrawal, err := s.withdrawalUC.Request(ctx, uid, req.Amount, biz.PayoutDetails{
		BankName:      req.PayoutDetails.BankName,
		AccountName:   req.PayoutDetails.AccountName,
		AccountNumber: req.PayoutDetails.AccountNumber,
	})
	if err != nil {
		return nil, err
	}
	return toWithdrawalReply(withdrawal), nil
}

// ListMyWithdrawals 查询自己的提现记录
func (s *CommerceService) ListMyWithdrawals(ctx context.Context, page, pageSize int) (*ListWithdrawalsReply, error) {
	uid, err := auth.RequireUID(ctx)
	if err != nil {
		return nil, err
	}
	withdrawals, total, err := s.withdrawalUC.ListByTeacher(ctx, uid, page, pageSize)
	if err != nil {
		return nil, err
	}
	return toListWithdrawalsReply(withdrawals, total), nil
}

// ListPendingWithdrawals 查询待审核提现（管理员）
func (s *CommerceService) ListPendingWithdrawals(ctx context.Context, page, pageSize int) (*ListWithdrawalsReply, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	withdrawals, total, err := s.withdrawalUC.ListPending(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return toListWithdrawalsReply(withdrawals, total), nil
}

// ProcessWithdrawal 审核提现（管理员）
func (s *CommerceService) ProcessWithdrawal(ctx context.Context, withdrawalID string, req *ProcessWithdrawalRequest) (*WithdrawalReply, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	withdrawal, err := s.withdrawalUC.Process(ctx, withdrawalID, req.Decision, req.Reason)
	if err != nil {
		return nil, err
	}
	return toWithdrawalReply(withdrawal), nil
}

func toListWithdrawalsReply(withdrawals []*biz.Withdrawal, total int64) *ListWithdrawalsReply {
	reply := &ListWithdrawalsReply{Total: total, Withdrawals: make([]*WithdrawalReply, 0, len(withdrawals))}
	for _, w := range withdrawals {
		reply.Withdrawals = append(reply.Withdrawals, toWithdrawalReply(w))
	}
	return reply
}
