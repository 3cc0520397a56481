package model

import "time"

// CourseEnrollment 报名模型
// (learner_id, course_id) 唯一索引是防止重复开通的最终防线
type CourseEnrollment struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement;column:enrollment_id"`
	LearnerID  string    `gorm:"column:learner_id;size:36;uniqueIndex:uk_learner_course"`
	CourseID   uint64    `gorm:"column:course_id;uniqueIndex:uk_learner_course"`
	Status     string    `gorm:"column:status;size:20"`
	EnrolledAt time.Time `gorm:"column:enrolled_at"`
}

func (CourseEnrollment) TableName() string { return "course_enrollment" }
