package model

import "time"

// Attempt 状态机：in_progress 是唯一可变状态，其余均为终态
const (
	AttemptInProgress    = "in_progress"
	AttemptSubmitted     = "submitted"
	AttemptAutoSubmitted = "auto_submitted"
)

// swagger:model Attempt
type Attempt struct {
	BaseModel

	QuizID uint `gorm:"index;not null" json:"quizId"`
	UserID uint `gorm:"index;not null" json:"userId"`
	// 终态写入必须带 status = 'in_progress' 条件，见 AttemptRepository.FinishIfInProgress
	Status         string     `gorm:"size:20;default:'in_progress';index" json:"status"`
	StartedAt      time.Time  `json:"startedAt"`
	SubmittedAt    *time.Time `json:"submittedAt,omitempty"`
	TabSwitchCount int        `gorm:"default:0" json:"tabSwitchCount"`
	Score          float64    `gorm:"default:0" json:"score"`
}

func (Attempt) TableName() string {
	return "attempts"
}

// Terminal 判断是否已经是终态
func (a *Attempt) Terminal() bool {
	return a.Status != AttemptInProgress
}
