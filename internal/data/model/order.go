package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CourseOrder 订单模型
type CourseOrder struct {
	ID            string          `gorm:"primaryKey;column:order_id;size:64"`
	BuyerID       string          `gorm:"column:buyer_id;size:36;index"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2)"`
	Status        string          `gorm:"column:status;size:20;index"`
	PaymentMethod string          `gorm:"column:payment_method;size:20"`
	CreatedAt     time.Time       `gorm:"column:created_at;index"`
	CompletedAt   *time.Time      `gorm:"column:completed_at"`
}

func (CourseOrder) TableName() string { return "course_order" }

// CourseOrderItem 订单明细模型，price 为下单时定格价格
type CourseOrderItem struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement;column:item_id"`
	OrderID   string          `gorm:"column:order_id;size:64;index"`
	CourseID  uint64          `gorm:"column:course_id;index"`
	TeacherID string          `gorm:"column:teacher_id;size:36;index"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(12,2)"`
	CreatedAt time.Time       `gorm:"column:created_at"`
}

func (CourseOrderItem) TableName() string { return "course_order_item" }
