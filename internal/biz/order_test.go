package biz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/constants"
	cerrors "github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/errors"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderFixture(courses ...*Course) (*OrderUsecase, *memOrderRepo, *memEnrollmentRepo, *captureNotifier) {
	logger := testLogger()
	orderRepo := newMemOrderRepo()
	enrollmentRepo := newMemEnrollmentRepo()
	notifier := &captureNotifier{}
	enrollmentUC := NewEnrollmentUsecase(enrollmentRepo, logger)
	uc := NewOrderUsecase(orderRepo, newMemCatalogRepo(courses...), enrollmentUC, notifier, nopTransaction{}, logger)
	return uc, orderRepo, enrollmentRepo, notifier
}

func TestCreateOrder_EmptySelection(t *testing.T) {
	uc, _, _, _ := newOrderFixture()

	_, err := uc.CreateOrder(context.Background(), "buyer-1", nil, "alipay")
	require.Error(t, err)
	assert.Equal(t, cerrors.ReasonEmptySelection, kerrors.Reason(err))
}

func TestCreateOrder_InvalidPaymentMethod(t *testing.T) {
	uc, _, _, _ := newOrderFixture(&Course{ID: 1, TeacherID: "teacher-1", Price: decimal.NewFromInt(199000)})

	_, err := uc.CreateOrder(context.Background(), "buyer-1", []uint64{1}, "paypal")
	require.Error(t, err)
	assert.Equal(t, cerrors.ReasonInvalidPaymentMethod, kerrors.Reason(err))
}

func TestCreateOrder_CourseNotFound(t *testing.T) {
	uc, _, _, _ := newOrderFixture(&Course{ID: 1, TeacherID: "teacher-1", Price: decimal.NewFromInt(199000)})

	_, err := uc.CreateOrder(context.Background(), "buyer-1", []uint64{1, 99}, "alipay")
	require.Error(t, err)
	assert.Equal(t, cerrors.ReasonCourseNotFound, kerrors.Reason(err))
}

func TestCreateOrder_AlreadyOwned(t *testing.T) {
	uc, _, enrollmentRepo, _ := newOrderFixture(&Course{ID: 1, TeacherID: "teacher-1", Price: decimal.NewFromInt(199000)})

	err := enrollmentRepo.CreateEnrollment(context.Background(), &Enrollment{
		LearnerID:  "buyer-1",
		CourseID:   1,
		Status:     constants.EnrollmentStatusActive,
		EnrolledAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	_, err = uc.CreateOrder(context.Background(), "buyer-1", []uint64{1}, "alipay")
	require.Error(t, err)
	assert.Equal(t, cerrors.ReasonAlreadyOwned, kerrors.Reason(err))
}

func TestCreateOrder_CapturesPricesAndTotal(t *testing.T) {
	catalog := newMemCatalogRepo(
		&Course{ID: 1, TeacherID: "teacher-1", Price: decimal.NewFromInt(199000)},
		&Course{ID: 2, TeacherID: "teacher-2", Price: decimal.NewFromInt(299000)},
	)
	logger := testLogger()
	orderRepo := newMemOrderRepo()
	notifier := &captureNotifier{}
	enrollmentUC := NewEnrollmentUsecase(newMemEnrollmentRepo(), logger)
	uc := NewOrderUsecase(orderRepo, catalog, enrollmentUC, notifier, nopTransaction{}, logger)

	// 重复勾选同一课程只生成一条明细
	order, err := uc.CreateOrder(context.Background(), "buyer-1", []uint64{1, 2, 1}, "alipay")
	require.NoError(t, err)

	assert.Equal(t, constants.OrderStatusPending, order.Status)
	assert.Equal(t, "alipay", order.PaymentMethod)
	require.Len(t, order.Items, 2)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(498000)), "total = %s", order.TotalAmount)

	// 下单后课程调价不影响已定格的明细价格
	catalog.courses[1].Price = decimal.NewFromInt(999000)
	stored, err := orderRepo.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, stored.Items[0].Price.Equal(decimal.NewFromInt(199000)))
}

func TestPayOrder_ActivatesEnrollments(t *testing.T) {
	uc, _, _, notifier := newOrderFixture(
		&Course{ID: 1, TeacherID: "teacher-1", Price: decimal.NewFromInt(199000)},
		&Course{ID: 2, TeacherID: "teacher-2", Price: decimal.NewFromInt(299000)},
	)

	order, err := uc.CreateOrder(context.Background(), "buyer-1", []uint64{1, 2}, "wechat")
	require.NoError(t, err)

	paid, err := uc.PayOrder(context.Background(), "buyer-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.OrderStatusCompleted, paid.Status)
	require.NotNil(t, paid.CompletedAt)
	assert.Equal(t, 1, notifier.orderCompleted)
	assert.Equal(t, 2, notifier.enrollmentActivated)

	owned, err := uc.enrollment.HasActive(context.Background(), "buyer-1", 1)
	require.NoError(t, err)
	assert.True(t, owned)
}

func TestPayOrder_AlreadyCompleted(t *testing.T) {
	uc, _, _, notifier := newOrderFixture(&Course{ID: 1, TeacherID: "teacher-1", Price: decimal.NewFromInt(199000)})

	order, err := uc.CreateOrder(context.Background(), "buyer-1", []uint64{1}, "card")
	require.NoError(t, err)

	_, err = uc.PayOrder(context.Background(), "buyer-1", order.ID)
	require.NoError(t, err)

	_, err = uc.PayOrder(context.Background(), "buyer-1", order.ID)
	require.Error(t, err)
	assert.Equal(t, cerrors.ReasonOrderAlreadyCompleted, kerrors.Reason(err))
	assert.Equal(t, 1, notifier.orderCompleted)
	assert.Equal(t, 1, notifier.enrollmentActivated)
}

func TestPayOrder_OtherBuyerSeesNotFound(t *testing.T) {
	uc, _, _, _ := newOrderFixture(&Course{ID: 1, TeacherID: "teacher-1", Price: decimal.NewFromInt(199000)})

	order, err := uc.CreateOrder(context.Background(), "buyer-1", []uint64{1}, "alipay")
	require.NoError(t, err)

	_, err = uc.PayOrder(context.Background(), "buyer-2", order.ID)
	require.Error(t, err)
	assert.Equal(t, cerrors.ReasonOrderNotFound, kerrors.Reason(err))
}

func TestPayOrder_CancelledSeesNotFound(t *testing.T) {
	uc, _, _, _ := newOrderFixture(&Course{ID: 1, TeacherID: "teacher-1", Price: decimal.NewFromInt(199000)})

	order, err := uc.CreateOrder(context.Background(), "buyer-1", []uint64{1}, "alipay")
	require.NoError(t, err)
	_, err = uc.CancelOrder(context.Background(), "buyer-1", order.ID)
	require.NoError(t, err)

	_, err = uc.PayOrder(context.Background(), "buyer-1", order.ID)
	require.Error(t, err)
	assert.Equal(t, cerrors.ReasonOrderNotFound, kerrors.Reason(err))
}

func TestCancelOrder_Idempotent(t *testing.T) {
	uc, _, _, _ := newOrderFixture(&Course{ID: 1, TeacherID: "teacher-1", Price: decimal.NewFromInt(199000)})

	order, err := uc.CreateOrder(context.Background(), "buyer-1", []uint64{1}, "alipay")
	require.NoError(t, err)

	cancelled, err := uc.CancelOrder(context.Background(), "buyer-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.OrderStatusCancelled, cancelled.Status)

	// 重复取消按幂等处理
	again, err := uc.CancelOrder(context.Background(), "buyer-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.OrderStatusCancelled, again.Status)
}

func TestCancelOrder_CompletedRejected(t *testing.T) {
	uc, _, _, _ := newOrderFixture(&Course{ID: 1, TeacherID: "teacher-1", Price: decimal.NewFromInt(199000)})

	order, err := uc.CreateOrder(context.Background(), "buyer-1", []uint64{1}, "alipay")
	require.NoError(t, err)
	_, err = uc.PayOrder(context.Background(), "buyer-1", order.ID)
	require.NoError(t, err)

	_, err = uc.CancelOrder(context.Background(), "buyer-1", order.ID)
	require.Error(t, err)
	assert.Equal(t, cerrors.ReasonOrderAlreadyCompleted, kerrors.Reason(err))
}

// failingEnrollmentRepo 第 failAt 次创建失败，模拟部分开通失败导致事务回滚
type failingEnrollmentRepo struct {
	*memEnrollmentRepo
	creates int
	failAt  int
}

func (r *failingEnrollmentRepo) CreateEnrollment(ctx context.Context, enrollment *Enrollment) error {
	r.creates++
	if r.creates == r.failAt {
		return errDBDown
	}
	return r.memEnrollmentRepo.CreateEnrollment(ctx, enrollment)
}

var errDBDown = errors.New("db connection lost")

func TestPayOrder_NoEnrollmentEventsWhenActivationFails(t *testing.T) {
	logger := testLogger()
	orderRepo := newMemOrderRepo()
	enrollmentRepo := &failingEnrollmentRepo{memEnrollmentRepo: newMemEnrollmentRepo(), failAt: 2}
	notifier := &captureNotifier{}
	enrollmentUC := NewEnrollmentUsecase(enrollmentRepo, logger)
	catalog := newMemCatalogRepo(
		&Course{ID: 1, TeacherID: "teacher-1", Price: decimal.NewFromInt(199000)},
		&Course{ID: 2, TeacherID: "teacher-2", Price: decimal.NewFromInt(299000)},
	)
	uc := NewOrderUsecase(orderRepo, catalog, enrollmentUC, notifier, nopTransaction{}, logger)

	order, err := uc.CreateOrder(context.Background(), "buyer-1", []uint64{1, 2}, "alipay")
	require.NoError(t, err)

	// 第二条报名落库失败，支付事务中止
	_, err = uc.PayOrder(context.Background(), "buyer-1", order.ID)
	require.Error(t, err)

	// 事务未提交时不得发布任何事件
	assert.Equal(t, 0, notifier.orderCompleted)
	assert.Equal(t, 0, notifier.enrollmentActivated)
}

// cancelRacingOrderRepo 在状态翻转前抢先取消，模拟支付与取消并发
type cancelRacingOrderRepo struct {
	*memOrderRepo
}

func (r *cancelRacingOrderRepo) MarkCompleted(ctx context.Context, orderID string, completedAt time.Time) (bool, error) {
	if _, err := r.memOrderRepo.MarkCancelled(ctx, orderID); err != nil {
		return false, err
	}
	return r.memOrderRepo.MarkCompleted(ctx, orderID, completedAt)
}

func TestPayOrder_ConcurrentCancelSeesNotFound(t *testing.T) {
	logger := testLogger()
	orderRepo := &cancelRacingOrderRepo{memOrderRepo: newMemOrderRepo()}
	notifier := &captureNotifier{}
	enrollmentUC := NewEnrollmentUsecase(newMemEnrollmentRepo(), logger)
	catalog := newMemCatalogRepo(&Course{ID: 1, TeacherID: "teacher-1", Price: decimal.NewFromInt(199000)})
	uc := NewOrderUsecase(orderRepo, catalog, enrollmentUC, notifier, nopTransaction{}, logger)

	order, err := uc.CreateOrder(context.Background(), "buyer-1", []uint64{1}, "alipay")
	require.NoError(t, err)

	// 取消赢得竞争时按订单不存在处理，而不是谎报已完成
	_, err = uc.PayOrder(context.Background(), "buyer-1", order.ID)
	require.Error(t, err)
	assert.Equal(t, cerrors.ReasonOrderNotFound, kerrors.Reason(err))
	assert.Equal(t, 0, notifier.orderCompleted)
}

func TestGetOrder_OtherBuyerSeesNotFound(t *testing.T) {
	uc, _, _, _ := newOrderFixture(&Course{ID: 1, TeacherID: "teacher-1", Price: decimal.NewFromInt(199000)})

	order, err := uc.CreateOrder(context.Background(), "buyer-1", []uint64{1}, "alipay")
	require.NoError(t, err)

	_, err = uc.GetOrder(context.Background(), "buyer-2", order.ID)
	require.Error(t, err)
	assert.Equal(t, cerrors.ReasonOrderNotFound, kerrors.Reason(err))

	got, err := uc.GetOrder(context.Background(), "buyer-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestExpireStalePending(t *testing.T) {
	uc, orderRepo, _, _ := newOrderFixture(&Course{ID: 1, TeacherID: "teacher-1", Price: decimal.NewFromInt(199000)})

	stale := &Order{
		ID:            "ORD-stale",
		BuyerID:       "buyer-1",
		TotalAmount:   decimal.NewFromInt(199000),
		Status:        constants.OrderStatusPending,
		PaymentMethod: "alipay",
		CreatedAt:     time.Now().UTC().Add(-48 * time.Hour),
	}
	require.NoError(t, orderRepo.CreateOrder(context.Background(), stale))

	fresh, err := uc.CreateOrder(context.Background(), "buyer-1", []uint64{1}, "alipay")
	require.NoError(t, err)

	count, err := uc.ExpireStalePending(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := orderRepo.GetOrder(context.Background(), "ORD-stale")
	require.NoError(t, err)
	assert.Equal(t, constants.OrderStatusCancelled, got.Status)

	kept, err := orderRepo.GetOrder(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.OrderStatusPending, kept.Status)
}
