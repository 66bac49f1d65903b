package repository

import (
	"quiz_platform_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) Update(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&model.Option{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Question{}, id).Error
	})
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	if err := r.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) ListByQuiz(quizID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("quiz_id = ?", quizID).Order("order_index ASC").Find(&questions).Error
	return questions, err
}

// NextOrderIndex 追加题目时的序号
func (r *QuestionRepository) NextOrderIndex(quizID uint) (int, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("quiz_id = ?", quizID).Count(&count).Error
	return int(count), err
}

func (r *QuestionRepository) CreateOption(o *model.Option) error {
	return r.DB.Create(o).Error
}

func (r *QuestionRepository) UpdateOption(o *model.Option) error {
	return r.DB.Save(o).Error
}

func (r *QuestionRepository) DeleteOption(id uint) error {
	return r.DB.Delete(&model.Option{}, id).Error
}

func (r *QuestionRepository) FindOptionByID(id uint) (*model.Option, error) {
	var o model.Option
	if err := r.DB.First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *QuestionRepository) ListOptions(questionID uint) ([]model.Option, error) {
	var options []model.Option
	err := r.DB.Where("question_id = ?", questionID).Order("order_index ASC").Find(&options).Error
	return options, err
}

func (r *QuestionRepository) NextOptionOrderIndex(questionID uint) (int, error) {
	var count int64
	err := r.DB.Model(&model.Option{}).Where("question_id = ?", questionID).Count(&count).Error
	return int(count), err
}
