package repository

import (
	"quiz_platform_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

// Upsert 按 (attempt_id, question_id) 原子写入：重复提交同一份答卷
// 覆盖为相同内容，不会产生重复行。
func (r *AnswerRepository) Upsert(answer *model.Answer) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"selected_option_ids", "short_text", "correct", "points_awarded", "updated_at",
		}),
	}).Create(answer).Error
}

func (r *AnswerRepository) ListByAttempt(attemptID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.DB.Where("attempt_id = ?", attemptID).Find(&answers).Error
	return answers, err
}

func (r *AnswerRepository) Find(attemptID, questionID uint) (*model.Answer, error) {
	var a model.Answer
	err := r.DB.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}
