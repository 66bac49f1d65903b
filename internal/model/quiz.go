package model

import "time"

// ShowCorrectAnswers 策略：何时向学生展示正确答案
const (
	ShowAnswersNever     = "never"
	ShowAnswersAfterDue  = "after_due"
	ShowAnswersImmediate = "immediate"
)

// swagger:model Quiz
type Quiz struct {
	BaseModel

	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	// 考试时长（秒），从 Attempt.StartedAt 起计
	DurationSeconds int `gorm:"not null" json:"durationSeconds"`
	// 考试窗口，nil 表示不限
	StartAt *time.Time `json:"startAt,omitempty"`
	EndAt   *time.Time `json:"endAt,omitempty"`
	// 允许的切屏次数，超过即触发强制交卷
	AllowTabSwitches   int    `gorm:"default:1" json:"allowTabSwitches"`
	ShowCorrectAnswers string `gorm:"size:20;default:'after_due'" json:"showCorrectAnswers"`
	IsPublic           bool   `gorm:"default:false" json:"isPublic"`
	CreatedBy          uint   `gorm:"index" json:"createdBy"`
}

func (Quiz) TableName() string {
	return "quizzes"
}
