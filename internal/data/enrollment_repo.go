package data

import (
	"context"
	"errors"

	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/biz"
	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// enrollmentRepo 报名仓库实现
type enrollmentRepo struct {
	data *Data
	log  *log.Helper
}

// NewEnrollmentRepo 创建报名仓库
func NewEnrollmentRepo(data *Data, logger log.Logger) biz.EnrollmentRepo {
	return &enrollmentRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// CreateEnrollment 创建报名记录
// 唯一索引冲突转换为 biz.ErrEnrollmentExists，由上层按幂等处理
func (r *enrollmentRepo) CreateEnrollment(ctx context.Context, enrollment *biz.Enrollment) error {
	m := &model.CourseEnrollment{
		LearnerID:  enrollment.LearnerID,
		CourseID:   enrollment.CourseID,
		Status:     enrollment.Status,
		EnrolledAt: enrollment.EnrolledAt,
	}
	if err := r.data.DB(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return biz.ErrEnrollmentExists
		}
		r.log.Errorf("Failed to create enrollment learner=%s course=%d: %v", enrollment.LearnerID, enrollment.CourseID, err)
		return err
	}
	enrollment.ID = m.ID
	return nil
}

// GetEnrollment 获取报名记录
func (r *enrollmentRepo) GetEnrollment(ctx context.Context, learnerID string, courseID uint64) (*biz.Enrollment, error) {
	var m model.CourseEnrollment
	if err := r.data.DB(ctx).First(&m, "learner_id = ? AND course_id = ?", learnerID, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Errorf("Failed to get enrollment learner=%s course=%d: %v", learnerID, courseID, err)
		return nil, err
	}
	return toBizEnrollment(&m), nil
}

// ListByLearner 查询学员的全部报名记录
func (r *enrollmentRepo) ListByLearner(ctx context.Context, learnerID string) ([]*biz.Enrollment, error) {
	var ms []model.CourseEnrollment
	if err := r.data.DB(ctx).Where("learner_id = ?", learnerID).Order("enrolled_at DESC").Find(&ms).Error; err != nil {
		r.log.Errorf("Failed to list enrollments for learner %s: %v", learnerID, err)
		return nil, err
	}
	enrollments := make([]*biz.Enrollment, 0, len(ms))
	for i := range ms {
		enrollments = append(enrollments, toBizEnrollment(&ms[i]))
	}
	return enrollments, nil
}

func toBizEnrollment(m *model.CourseEnrollment) *biz.Enrollment {
	return &biz.Enrollment{
		ID:         m.ID,
		LearnerID:  m.LearnerID,
		CourseID:   m.CourseID,
		Status:     m.Status,
		EnrolledAt: m.EnrolledAt,
	}
}
