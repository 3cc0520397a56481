package errors

import (
	"fmt"

	kerrors "github.com/go-kratos/kratos/v2/errors"
)

// 商城账务服务错误定义
// Reason 为稳定的机器可读错误标识，HTTP 状态码由 kratos error code 携带
// 模块划分：
//   订单模块
//   报名模块
//   提现模块
//   通用模块

// 订单模块
const (
	// ReasonEmptySelection 未选择任何课程
	ReasonEmptySelection = "EMPTY_SELECTION"
	// ReasonCourseNotFound 课程不存在或未上架
	ReasonCourseNotFound = "COURSE_NOT_FOUND"
	// ReasonAlreadyOwned 买家已拥有课程
	ReasonAlreadyOwned = "ALREADY_OWNED"
	// ReasonOrderNotFound 订单不存在
	ReasonOrderNotFound = "ORDER_NOT_FOUND"
	// ReasonOrderAlreadyCompleted 订单已完成支付
	ReasonOrderAlreadyCompleted = "ORDER_ALREADY_COMPLETED"
	// ReasonInvalidPaymentMethod 不支持的支付方式
	ReasonInvalidPaymentMethod = "INVALID_PAYMENT_METHOD"
)

// 提现模块
const (
	// ReasonInvalidAmount 提现金额非法
	ReasonInvalidAmount = "INVALID_AMOUNT"
	// ReasonInsufficientBalance 可用余额不足
	ReasonInsufficientBalance = "INSUFFICIENT_BALANCE"
	// ReasonWithdrawalNotFound 提现申请不存在
	ReasonWithdrawalNotFound = "WITHDRAWAL_NOT_FOUND"
	// ReasonInvalidTransition 非法的状态流转
	ReasonInvalidTransition = "INVALID_TRANSITION"
	// ReasonRejectReasonRequired 驳回时必须填写原因
	ReasonRejectReasonRequired = "REJECT_REASON_REQUIRED"
	// ReasonWithdrawLockFailed 提现锁获取失败
	ReasonWithdrawLockFailed = "WITHDRAW_LOCK_FAILED"
)

// 通用模块
const (
	// ReasonUnauthorized 未登录
	ReasonUnauthorized = "UNAUTHORIZED"
	// ReasonForbidden 无权限
	ReasonForbidden = "FORBIDDEN"
)

func ErrEmptySelection() *kerrors.Error {
	return kerrors.BadRequest(ReasonEmptySelection, "at least one course is required")
}

func ErrCourseNotFound(courseID uint64) *kerrors.Error {
	return kerrors.NotFound(ReasonCourseNotFound, fmt.Sprintf("course %d not found", courseID))
}

func ErrAlreadyOwned(courseID uint64) *kerrors.Error {
	return kerrors.Conflict(ReasonAlreadyOwned, fmt.Sprintf("course %d is already owned by the buyer", courseID))
}

func ErrOrderNotFound() *kerrors.Error {
	return kerrors.NotFound(ReasonOrderNotFound, "order not found")
}

func ErrOrderAlreadyCompleted() *kerrors.Error {
	return kerrors.BadRequest(ReasonOrderAlreadyCompleted, "order is already completed")
}

func ErrInvalidPaymentMethod(method string) *kerrors.Error {
	return kerrors.BadRequest(ReasonInvalidPaymentMethod, fmt.Sprintf("payment method %q is not supported", method))
}

func ErrInvalidAmount() *kerrors.Error {
	return kerrors.BadRequest(ReasonInvalidAmount, "withdrawal amount must be greater than zero")
}

func ErrInsufficientBalance() *kerrors.Error {
	return kerrors.BadRequest(ReasonInsufficientBalance, "withdrawal amount exceeds available balance")
}

func ErrWithdrawalNotFound() *kerrors.Error {
	return kerrors.NotFound(ReasonWithdrawalNotFound, "withdrawal not found")
}

func ErrInvalidTransition(from, decision string) *kerrors.Error {
	return kerrors.BadRequest(ReasonInvalidTransition, fmt.Sprintf("cannot apply %q to a withdrawal in status %q", decision, from))
}

func ErrUnknownDecision(decision string) *kerrors.Error {
	return kerrors.BadRequest(ReasonInvalidTransition, fmt.Sprintf("unknown decision %q, expected approve, reject or mark_paid", decision))
}

func ErrRejectReasonRequired() *kerrors.Error {
	return kerrors.BadRequest(ReasonRejectReasonRequired, "a reason is required when rejecting a withdrawal")
}

func ErrWithdrawLockFailed() *kerrors.Error {
	return kerrors.InternalServer(ReasonWithdrawLockFailed, "failed to acquire withdrawal lock, please retry")
}

func ErrUnauthorized() *kerrors.Error {
	return kerrors.Unauthorized(ReasonUnauthorized, "authentication required")
}

func ErrForbidden() *kerrors.Error {
	return kerrors.Forbidden(ReasonForbidden, "permission denied")
}
