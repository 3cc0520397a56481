package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Course 课程模型（目录数据，账务侧只读）
type Course struct {
	ID        uint64          `gorm:"primaryKey;column:course_id"`
	TeacherID string          `gorm:"column:teacher_id;size:36;index"`
	Title     string          `gorm:"column:title;size:255"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(12,2)"`
	Status    string          `gorm:"column:status;size:20;default:published"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (Course) TableName() string { return "course" }
