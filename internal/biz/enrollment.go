package biz

import (
	"context"
	"errors"
	"time"

	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
)

// ErrEnrollmentExists 报名记录已存在（由存储层唯一索引触发）
var ErrEnrollmentExists = errors.New("enrollment already exists")

// Enrollment 报名记录（学员对课程的持久访问授权）
type Enrollment struct {
	ID         uint64
	LearnerID  string
	CourseID   uint64
	Status     string // active, cancelled
	EnrolledAt time.Time
}

// EnrollmentRepo 报名仓库接口
type EnrollmentRepo interface {
	// CreateEnrollment 创建报名记录，(learner, course) 已存在时返回 ErrEnrollmentExists
	CreateEnrollment(ctx context.Context, enrollment *Enrollment) error
	// GetEnrollment 获取报名记录，不存在时返回 nil
	GetEnrollment(ctx context.Context, learnerID string, courseID uint64) (*Enrollment, error)
	ListByLearner(ctx context.Context, learnerID string) ([]*Enrollment, error)
}

// EnrollmentUsecase 报名业务逻辑
type EnrollmentUsecase struct {
	repo EnrollmentRepo
	log  *log.Helper
}

// NewEnrollmentUsecase 创建报名业务用例
func NewEnrollmentUsecase(repo EnrollmentRepo, logger log.Logger) *EnrollmentUsecase {
	return &EnrollmentUsecase{
		repo: repo,
		log:  log.NewHelper(logger),
	}
}

// Activate 开通课程访问（幂等）
// 并发安全依赖 (learner, course) 唯一索引：唯一键冲突按"已开通"处理而不是报错
// 开通事件由调用方在事务提交后发布，这里只负责落库
func (uc *EnrollmentUsecase) Activate(ctx context.Context, learnerID string, courseID uint64) (*Enrollment, bool, error) {
	enrollment := &Enrollment{
		LearnerID:  learnerID,
		CourseID:   courseID,
		Status:     constants.EnrollmentStatusActive,
		EnrolledAt: time.Now().UTC(),
	}

	if err := uc.repo.CreateEnrollment(ctx, enrollment); err != nil {
		if errors.Is(err, ErrEnrollmentExists) {
			existing, gerr := uc.repo.GetEnrollment(ctx, learnerID, courseID)
			if gerr != nil {
				return nil, false, gerr
			}
			uc.log.Infof("Enrollment already exists for learner=%s course=%d, skipping (idempotent)", learnerID, courseID)
			return existing, false, nil
		}
		uc.log.Errorf("Failed to create enrollment for learner=%s course=%d: %v", learnerID, courseID, err)
		return nil, false, err
	}

	return enrollment, true, nil
}

// HasActive 判断学员是否已持有课程的有效报名
func (uc *EnrollmentUsecase) HasActive(ctx context.Context, learnerID string, courseID uint64) (bool, error) {
	enrollment, err := uc.repo.GetEnrollment(ctx, learnerID, courseID)
	if err != nil {
		return false, err
	}
	return enrollment != nil && enrollment.Status == constants.EnrollmentStatusActive, nil
}

// ListEnrollments 查询学员的全部报名记录
func (uc *EnrollmentUsecase) ListEnrollments(ctx context.Context, learnerID string) ([]*Enrollment, error) {
	return uc.repo.ListByLearner(ctx, learnerID)
}
