package data

import (
	"context"
	"encoding/json"
	"time"

	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/biz"
	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisNotifier 基于 Redis 发布订阅的通知实现
// 通知服务与学习进度服务订阅这些频道，投递失败由上层记日志后忽略
type redisNotifier struct {
	rdb *redis.Client
	log *log.Helper
}

// NewNotifier 创建通知发布器
func NewNotifier(rdb *redis.Client, logger log.Logger) biz.Notifier {
	return &redisNotifier{
		rdb: rdb,
		log: log.NewHelper(logger),
	}
}

// event 通知事件信封
type event struct {
	EventID    string      `json:"event_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

func (n *redisNotifier) publish(ctx context.Context, channel string, payload interface{}) error {
	body, err := json.Marshal(event{
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, channel, body).Err()
}

// OrderCompleted 订单完成事件
func (n *redisNotifier) OrderCompleted(ctx context.Context, order *biz.Order) error {
	courseIDs := make([]uint64, 0, len(order.Items))
	for _, item := range order.Items {
		courseIDs = append(courseIDs, item.CourseID)
	}
	return n.publish(ctx, constants.NotifyChannelOrderCompleted, map[string]interface{}{
		"order_id":     order.ID,
		"buyer_id":     order.BuyerID,
		"total_amount": order.TotalAmount.String(),
		"course_ids":   courseIDs,
	})
}

// EnrollmentActivated 报名开通事件，进度服务据此初始化学习进度
func (n *redisNotifier) EnrollmentActivated(ctx context.Context, enrollment *biz.Enrollment) error {
	return n.publish(ctx, constants.NotifyChannelEnrollmentActivated, map[string]interface{}{
		"learner_id": enrollment.LearnerID,
		"course_id":  enrollment.CourseID,
	})
}

// WithdrawalApproved 提现通过事件
func (n *redisNotifier) WithdrawalApproved(ctx context.Context, withdrawal *biz.Withdrawal) error {
	return n.publish(ctx, constants.NotifyChannelWithdrawalApproved, map[string]interface{}{
		"withdrawal_id": withdrawal.ID,
		"teacher_id":    withdrawal.TeacherID,
		"amount":        withdrawal.Amount.String(),
	})
}

// WithdrawalRejected 提现驳回事件
func (n *redisNotifier) WithdrawalRejected(ctx context.Context, withdrawal *biz.Withdrawal) error {
	reason := ""
	if withdrawal.RejectReason != nil {
		reason = *withdrawal.RejectReason
	}
	return n.publish(ctx, constants.NotifyChannelWithdrawalRejected, map[string]interface{}{
		"withdrawal_id": withdrawal.ID,
		"teacher_id":    withdrawal.TeacherID,
		"amount":        withdrawal.Amount.String(),
		"reason":        reason,
	})
}
