package model

// Answer 一次作答中每题至多一行，按 (attempt_id, question_id) 幂等覆盖
// swagger:model Answer
type Answer struct {
	BaseModel

	AttemptID  uint `gorm:"uniqueIndex:idx_answers_attempt_question;not null" json:"attemptId"`
	QuestionID uint `gorm:"uniqueIndex:idx_answers_attempt_question;not null" json:"questionId"`
	// JSON 数组，选项 ID 列表（short 题型恒为 []）
	SelectedOptionIDs string  `gorm:"type:json" json:"selectedOptionIds"`
	ShortText         *string `gorm:"type:text" json:"shortText,omitempty"`
	// nil 表示尚未判定（short 题等待人工评分）
	Correct       *bool   `json:"correct"`
	PointsAwarded float64 `gorm:"default:0" json:"pointsAwarded"`
}

func (Answer) TableName() string {
	return "answers"
}
