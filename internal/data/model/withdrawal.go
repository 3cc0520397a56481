package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TeacherWithdrawal 提现申请模型
type TeacherWithdrawal struct {
	ID            string          `gorm:"primaryKey;column:withdrawal_id;size:36"`
	TeacherID     string          `gorm:"column:teacher_id;size:36;index"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(12,2)"`
	Status        string          `gorm:"column:status;size:20;index"`
	PayoutDetails datatypes.JSON  `gorm:"column:payout_details"`
	RejectReason  *string         `gorm:"column:reject_reason;size:255"`
	RequestedAt   time.Time       `gorm:"column:requested_at"`
	ProcessedAt   *time.Time      `gorm:"column:processed_at"`
}

func (TeacherWithdrawal) TableName() string { return "teacher_withdrawal" }
