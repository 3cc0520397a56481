package data

import (
	"context"
	"errors"

	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/biz"
	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/constants"
	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// catalogRepo 课程目录只读实现
// 课程的增删改由内容服务负责，账务侧只在下单时读取上架课程的价格与归属
type catalogRepo struct {
	data *Data
	log  *log.Helper
}

// NewCatalogRepo 创建课程目录仓库
func NewCatalogRepo(data *Data, logger log.Logger) biz.CatalogRepo {
	return &catalogRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// GetCourse 获取上架课程，不存在或未上架时返回 nil
func (r *catalogRepo) GetCourse(ctx context.Context, courseID uint64) (*biz.Course, error) {
	var m model.Course
	err := r.data.DB(ctx).
		First(&m, "course_id = ? AND status = ?", courseID, constants.CourseStatusPublished).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Errorf("Failed to get course %d: %v", courseID, err)
		return nil, err
	}
	return &biz.Course{
		ID:        m.ID,
		TeacherID: m.TeacherID,
		Title:     m.Title,
		Price:     m.Price,
	}, nil
}
