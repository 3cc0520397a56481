package constants

import "time"

// 分页相关常量
const (
	// DefaultPageSize 默认分页大小
	DefaultPageSize = 10
	// MaxPageSize 最大分页大小
	MaxPageSize = 100
)

// 订单状态
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// 报名状态
const (
	EnrollmentStatusActive    = "active"
	EnrollmentStatusCancelled = "cancelled"
)

// 课程状态
const (
	CourseStatusPublished = "published"
	CourseStatusOffline   = "offline"
)

// 提现状态
const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
	WithdrawalStatusPaid     = "paid"
)

// 提现审核操作
const (
	WithdrawalDecisionApprove  = "approve"
	WithdrawalDecisionReject   = "reject"
	WithdrawalDecisionMarkPaid = "mark_paid"
)

// 支付方式（封闭集合，边界处校验）
var PaymentMethods = map[string]bool{
	"alipay": true,
	"wechat": true,
	"card":   true,
}

// IsValidPaymentMethod 判断支付方式是否合法
func IsValidPaymentMethod(method string) bool {
	return PaymentMethods[method]
}

// 分布式锁相关常量
const (
	// WithdrawLockKeyFmt 提现锁 key 格式，按教师维度加锁
	WithdrawLockKeyFmt = "withdraw_lock:teacher:%s"
	// WithdrawLockExpiration 提现锁过期时间
	WithdrawLockExpiration = 30 * time.Second
	// WithdrawLockTries 提现锁重试次数
	WithdrawLockTries = 8
)

// 通知事件频道
const (
	NotifyChannelOrderCompleted      = "commerce:events:order_completed"
	NotifyChannelEnrollmentActivated = "commerce:events:enrollment_activated"
	NotifyChannelWithdrawalApproved  = "commerce:events:withdrawal_approved"
	NotifyChannelWithdrawalRejected  = "commerce:events:withdrawal_rejected"
)
