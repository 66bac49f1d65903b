package repository

import (
	"time"

	"quiz_platform_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.Attempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.Attempt, error) {
	var a model.Attempt
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindInProgress 查找 (quiz, user) 的进行中记录；同一时刻至多允许一条，
// 若历史数据出现重复则固定取最早的一条，保证续考结果稳定。
func (r *AttemptRepository) FindInProgress(quizID, userID uint) (*model.Attempt, error) {
	var a model.Attempt
	err := r.DB.
		Where("quiz_id = ? AND user_id = ? AND status = ?", quizID, userID, model.AttemptInProgress).
		Order("id ASC").
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindInProgressByID 按 (id, user, in_progress) 过滤加载，查不到即视作
// 已交卷或不存在，两种情况对调用方刻意保持不可区分。
func (r *AttemptRepository) FindInProgressByID(id, userID uint) (*model.Attempt, error) {
	var a model.Attempt
	err := r.DB.
		Where("id = ? AND user_id = ? AND status = ?", id, userID, model.AttemptInProgress).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) FindByIDAndUser(id, userID uint) (*model.Attempt, error) {
	var a model.Attempt
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FinishIfInProgress 终态转换。条件更新携带 status = 'in_progress'，
// 返回是否真正翻转了状态：并发交卷时只有一个调用方拿到 true。
func (r *AttemptRepository) FinishIfInProgress(id uint, status string, submittedAt time.Time, score float64) (bool, error) {
	res := r.DB.Model(&model.Attempt{}).
		Where("id = ? AND status = ?", id, model.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":       status,
			"submitted_at": submittedAt,
			"score":        score,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IncrementTabSwitch 切屏计数。自增在 SQL 表达式里完成，避免两次往返
// 造成的丢失更新；随后回读计入后的值用于阈值比较。
func (r *AttemptRepository) IncrementTabSwitch(id uint) (int, error) {
	res := r.DB.Model(&model.Attempt{}).
		Where("id = ?", id).
		UpdateColumn("tab_switch_count", gorm.Expr("tab_switch_count + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var count int
	err := r.DB.Model(&model.Attempt{}).
		Where("id = ?", id).
		Select("tab_switch_count").
		Scan(&count).Error
	return count, err
}

// UpdateScore 人工改分后回写总分
func (r *AttemptRepository) UpdateScore(id uint, score float64) error {
	return r.DB.Model(&model.Attempt{}).Where("id = ?", id).
		UpdateColumn("score", score).Error
}

func (r *AttemptRepository) ListByUser(userID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListByQuiz(quizID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("quiz_id = ?", quizID).Find(&attempts).Error
	return attempts, err
}
