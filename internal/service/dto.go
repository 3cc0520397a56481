package service

import (
	"time"

	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/biz"
	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/constants"
	cerrors "github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/errors"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	CourseIDs     []uint64 `json:"course_ids"`
	PaymentMethod string   `json:"payment_method"`
}

// Validate 参数校验（由 validate 中间件调用）
func (r *CreateOrderRequest) Validate() error {
	if len(r.CourseIDs) == 0 {
		return cerrors.ErrEmptySelection()
	}
	if !constants.IsValidPaymentMethod(r.PaymentMethod) {
		return cerrors.ErrInvalidPaymentMethod(r.PaymentMethod)
	}
	return nil
}

// OrderItemReply 订单明细响应
type OrderItemReply struct {
	CourseID  uint64 `json:"course_id"`
	TeacherID string `json:"teacher_id"`
	Price     string `json:"price"`
}

// OrderReply 订单响应
type OrderReply struct {
	OrderID       string            `json:"order_id"`
	BuyerID       string            `json:"buyer_id"`
	TotalAmount   string            `json:"total_amount"`
	Status        string            `json:"status"`
	PaymentMethod string            `json:"payment_method"`
	CreatedAt     time.Time         `json:"created_at"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
	Items         []*OrderItemReply `json:"items,omitempty"`
}

// ListOrdersReply 订单列表响应
type ListOrdersReply struct {
	Orders []*OrderReply `json:"orders"`
	Total  int64         `json:"total"`
}

// EnrollmentReply 报名记录响应
type EnrollmentReply struct {
	CourseID   uint64    `json:"course_id"`
	Status     string    `json:"status"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// ListEnrollmentsReply 报名列表响应
type ListEnrollmentsReply struct {
	Enrollments []*EnrollmentReply `json:"enrollments"`
}

// RevenueSummaryReply 教师收入看板响应
type RevenueSummaryReply struct {
	TeacherID        string `json:"teacher_id"`
	TotalRevenue     string `json:"total_revenue"`
	ThisMonth        string `json:"this_month_revenue"`
	PreviousMonth    string `json:"previous_month_revenue"`
	AvailableBalance string `json:"available_balance"`
}

// PayoutDetailsDTO 提现收款信息
type PayoutDetailsDTO struct {
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
}

// RequestWithdrawalRequest 发起提现请求
type RequestWithdrawalRequest struct {
	Amount        decimal.Decimal  `json:"amount"`
	PayoutDetails PayoutDetailsDTO `json:"payout_details"`
}

// Validate 参数校验
func (r *RequestWithdrawalRequest) Validate() error {
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return cerrors.ErrInvalidAmount()
	}
	return nil
}

// ProcessWithdrawalRequest 审核提现请求
type ProcessWithdrawalRequest struct {
	Decision string `json:"decision"` // approve, reject, mark_paid
	Reason   string `json:"reason,omitempty"`
}

// Validate 参数校验
func (r *ProcessWithdrawalRequest) Validate() error {
	switch r.Decision {
	case constants.WithdrawalDecisionApprove, constants.WithdrawalDecisionMarkPaid:
		return nil
	case constants.WithdrawalDecisionReject:
		if r.Reason == "" {
			return cerrors.ErrRejectReasonRequired()
		}
		return nil
	default:
		return cerrors.ErrUnknownDecision(r.Decision)
	}
}

// WithdrawalReply 提现申请响应
type WithdrawalReply struct {
	WithdrawalID  string           `json:"withdrawal_id"`
	TeacherID     string           `json:"teacher_id"`
	Amount        string           `json:"amount"`
	Status        string           `json:"status"`
	PayoutDetails PayoutDetailsDTO `json:"payout_details"`
	RejectReason  *string          `json:"reject_reason,omitempty"`
	RequestedAt   time.Time        `json:"requested_at"`
	ProcessedAt   *time.Time       `json:"processed_at,omitempty"`
}

// ListWithdrawalsReply 提现列表响应
type ListWithdrawalsReply struct {
	Withdrawals []*WithdrawalReply `json:"withdrawals"`
	Total       int64              `json:"total"`
}

func toOrderReply(order *biz.Order) *OrderReply {
	reply := &OrderReply{
		OrderID:       order.ID,
		BuyerID:       order.BuyerID,
		TotalAmount:   order.TotalAmount.StringFixed(2),
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		CreatedAt:     order.CreatedAt,
		CompletedAt:   order.CompletedAt,
	}
	for _, item := range order.Items {
		reply.Items = append(reply.Items, &OrderItemReply{
			CourseID:  item.CourseID,
			TeacherID: item.TeacherID,
			Price:     item.Price.StringFixed(2),
		})
	}
	return reply
}

func toWithdrawalReply(w *biz.Withdrawal) *WithdrawalReply {
	return &WithdrawalReply{
		WithdrawalID: w.ID,
		TeacherID:    w.TeacherID,
		Amount:       w.Amount.StringFixed(2),
		Status:       w.Status,
		PayoutDetails: PayoutDetailsDTO{
			BankName:      w.PayoutDetails.BankName,
			AccountName:   w.PayoutDetails.AccountName,
			AccountNumber: w.PayoutDetails.AccountNumber,
		},
		RejectReason: w.RejectReason,
		RequestedAt:  w.RequestedAt,
		ProcessedAt:  w.ProcessedAt,
	}
}
