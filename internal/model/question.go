package model

type QuestionKind string

const (
	KindSingle   QuestionKind = "single"
	KindMultiple QuestionKind = "multiple"
	KindBoolean  QuestionKind = "boolean"
	KindShort    QuestionKind = "short"
)

// ValidKind 校验题型是否在封闭集合内
func ValidKind(k QuestionKind) bool {
	switch k {
	case KindSingle, KindMultiple, KindBoolean, KindShort:
		return true
	}
	return false
}

// swagger:model Question
type Question struct {
	BaseModel

	QuizID     uint         `gorm:"index;not null" json:"quizId"`
	Kind       QuestionKind `gorm:"size:20;not null" json:"kind"`
	Prompt     string       `gorm:"type:text" json:"prompt"`
	Points     float64      `gorm:"default:0" json:"points"`
	OrderIndex int          `gorm:"default:0" json:"orderIndex"`
}

func (Question) TableName() string {
	return "questions"
}
