package biz

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/shopspring/decimal"
)

func testLogger() log.Logger {
	return log.NewStdLogger(io.Discard)
}

// nopTransaction 直接执行闭包，不包事务
type nopTransaction struct{}

func (nopTransaction) Exec(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// nopLocker 记录加锁的 key，串行执行闭包
type nopLocker struct {
	keys []string
}

func (l *nopLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.keys = append(l.keys, key)
	return fn(ctx)
}

// mutexLocker 进程内互斥锁，用于并发场景下模拟分布式锁的串行化语义
type mutexLocker struct {
	mu sync.Mutex
}

func (l *mutexLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(ctx)
}

// captureNotifier 统计各类通知的调用次数
type captureNotifier struct {
	orderCompleted      int
	enrollmentActivated int
	withdrawalApproved  int
	withdrawalRejected  int
	err                 error
}

func (n *captureNotifier) OrderCompleted(ctx context.Context, order *Order) error {
	n.orderCompleted++
	return n.err
}

func (n *captureNotifier) EnrollmentActivated(ctx context.Context, enrollment *Enrollment) error {
	n.enrollmentActivated++
	return n.err
}

func (n *captureNotifier) WithdrawalApproved(ctx context.Context, withdrawal *Withdrawal) error {
	n.withdrawalApproved++
	return n.err
}

func (n *captureNotifier) WithdrawalRejected(ctx context.Context, withdrawal *Withdrawal) error {
	n.withdrawalRejected++
	return n.err
}

// memCatalogRepo 内存课程目录
type memCatalogRepo struct {
	courses map[uint64]*Course
}

func newMemCatalogRepo(courses ...*Course) *memCatalogRepo {
	m := &memCatalogRepo{courses: make(map[uint64]*Course)}
	for _, c := range courses {
		m.courses[c.ID] = c
	}
	return m
}

func (m *memCatalogRepo) GetCourse(ctx context.Context, courseID uint64) (*Course, error) {
	return m.courses[courseID], nil
}

// memEnrollmentRepo 内存报名仓库，(learner, course) 唯一
type memEnrollmentRepo struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[string]*Enrollment
}

func newMemEnrollmentRepo() *memEnrollmentRepo {
	return &memEnrollmentRepo{rows: make(map[string]*Enrollment)}
}

func enrollmentKey(learnerID string, courseID uint64) string {
	return fmt.Sprintf("%s/%d", learnerID, courseID)
}

func (m *memEnrollmentRepo) CreateEnrollment(ctx context.Context, enrollment *Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := enrollmentKey(enrollment.LearnerID, enrollment.CourseID)
	if _, ok := m.rows[key]; ok {
		return ErrEnrollmentExists
	}
	m.nextID++
	enrollment.ID = m.nextID
	copied := *enrollment
	m.rows[key] = &copied
	return nil
}

func (m *memEnrollmentRepo) GetEnrollment(ctx context.Context, learnerID string, courseID uint64) (*Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[enrollmentKey(learnerID, courseID)]
	if !ok {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

func (m *memEnrollmentRepo) ListByLearner(ctx context.Context, learnerID string) ([]*Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Enrollment
	for _, e := range m.rows {
		if e.LearnerID == learnerID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

// memOrderRepo 内存订单仓库，状态翻转模拟数据库条件更新
type memOrderRepo struct {
	mu   sync.Mutex
	rows map[string]*Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{rows: make(map[string]*Order)}
}

func (m *memOrderRepo) CreateOrder(ctx context.Context, order *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[order.ID] = order
	return nil
}

func (m *memOrderRepo) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.rows[orderID]
	if !ok {
		return nil, nil
	}
	copied := *o
	return &copied, nil
}

func (m *memOrderRepo) ListOrdersByBuyer(ctx context.Context, buyerID string, page, pageSize int) ([]*Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Order
	for _, o := range m.rows {
		if o.BuyerID == buyerID {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memOrderRepo) MarkCompleted(ctx context.Context, orderID string, completedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.rows[orderID]
	if !ok || o.Status != constants.OrderStatusPending {
		return false, nil
	}
	o.Status = constants.OrderStatusCompleted
	o.CompletedAt = &completedAt
	return true, nil
}

func (m *memOrderRepo) MarkCancelled(ctx context.Context, orderID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.rows[orderID]
	if !ok || o.Status != constants.OrderStatusPending {
		return false, nil
	}
	o.Status = constants.OrderStatusCancelled
	return true, nil
}

func (m *memOrderRepo) CancelStalePending(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, o := range m.rows {
		if o.Status == constants.OrderStatusPending && o.CreatedAt.Before(before) {
			o.Status = constants.OrderStatusCancelled
			count++
		}
	}
	return count, nil
}

// memRevenueRepo 基于订单仓库按定格价格聚合的收入统计
type memRevenueRepo struct {
	orders *memOrderRepo
}

func (m *memRevenueRepo) SumCompletedItems(ctx context.Context, teacherID string, window RevenueWindow) (decimal.Decimal, error) {
	m.orders.mu.Lock()
	defer m.orders.mu.Unlock()
	total := decimal.Zero
	for _, o := range m.orders.rows {
		if o.Status != constants.OrderStatusCompleted || o.CompletedAt == nil {
			continue
		}
		if window.Start != nil && o.CompletedAt.Before(*window.Start) {
			continue
		}
		if window.End != nil && !o.CompletedAt.Before(*window.End) {
			continue
		}
		for _, item := range o.Items {
			if item.TeacherID == teacherID {
				total = total.Add(item.Price)
			}
		}
	}
	return total, nil
}

func (m *memRevenueRepo) ListTeachersWithSales(ctx context.Context, window RevenueWindow) ([]string, error) {
	m.orders.mu.Lock()
	defer m.orders.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, o := range m.orders.rows {
		if o.Status != constants.OrderStatusCompleted || o.CompletedAt == nil {
			continue
		}
		if window.Start != nil && o.CompletedAt.Before(*window.Start) {
			continue
		}
		if window.End != nil && !o.CompletedAt.Before(*window.End) {
			continue
		}
		for _, item := range o.Items {
			if !seen[item.TeacherID] {
				seen[item.TeacherID] = true
				out = append(out, item.TeacherID)
			}
		}
	}
	return out, nil
}

// memWithdrawalRepo 内存提现仓库，UpdateStatus 模拟数据库 CAS
type memWithdrawalRepo struct {
	mu   sync.Mutex
	rows map[string]*Withdrawal
}

func newMemWithdrawalRepo() *memWithdrawalRepo {
	return &memWithdrawalRepo{rows: make(map[string]*Withdrawal)}
}

func (m *memWithdrawalRepo) CreateWithdrawal(ctx context.Context, withdrawal *Withdrawal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *withdrawal
	m.rows[withdrawal.ID] = &copied
	return nil
}

func (m *memWithdrawalRepo) GetWithdrawal(ctx context.Context, withdrawalID string) (*Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.rows[withdrawalID]
	if !ok {
		return nil, nil
	}
	copied := *w
	return &copied, nil
}

func (m *memWithdrawalRepo) UpdateStatus(ctx context.Context, withdrawalID, from, to string, rejectReason *string, processedAt *time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.rows[withdrawalID]
	if !ok || w.Status != from {
		return false, nil
	}
	w.Status = to
	if rejectReason != nil {
		w.RejectReason = rejectReason
	}
	if processedAt != nil {
		w.ProcessedAt = processedAt
	}
	return true, nil
}

func (m *memWithdrawalRepo) ListByTeacher(ctx context.Context, teacherID string, page, pageSize int) ([]*Withdrawal, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Withdrawal
	for _, w := range m.rows {
		if w.TeacherID == teacherID {
			copied := *w
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memWithdrawalRepo) ListByStatus(ctx context.Context, status string, page, pageSize int) ([]*Withdrawal, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Withdrawal
	for _, w := range m.rows {
		if w.Status == status {
			copied := *w
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memWithdrawalRepo) SumHeld(ctx context.Context, teacherID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, w := range m.rows {
		if w.TeacherID != teacherID {
			continue
		}
		switch w.Status {
		case constants.WithdrawalStatusPending, constants.WithdrawalStatusApproved, constants.WithdrawalStatusPaid:
			total = total.Add(w.Amount)
		}
	}
	return total, nil
}
