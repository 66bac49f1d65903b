package model

// swagger:model Option
type Option struct {
	BaseModel

	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Label      string `gorm:"type:text" json:"label"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
	OrderIndex int    `gorm:"default:0" json:"orderIndex"`
}

func (Option) TableName() string {
	return "options"
}
