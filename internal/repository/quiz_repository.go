package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quiz_platform_backend/internal/model"
	"quiz_platform_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 判分快照缓存有效期。命题端的任何写操作都会主动失效，TTL 只是兜底。
const gradingSnapshotTTL = 5 * time.Minute

type QuizRepository struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewQuizRepository(db *gorm.DB, rdb *redis.Client) *QuizRepository {
	return &QuizRepository{DB: db, RDB: rdb}
}

func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) Update(quiz *model.Quiz) error {
	return r.DB.Save(quiz).Error
}

func (r *QuizRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Quiz{}, id).Error
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.DB.First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) ListByCreator(creatorID uint, page, limit int) ([]model.Quiz, int64, error) {
	var quizzes []model.Quiz
	var total int64
	q := r.DB.Model(&model.Quiz{}).Where("created_by = ?", creatorID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&quizzes).Error
	return quizzes, total, err
}

// ListAvailable 学生可见的测验：公开且处于考试窗口内
func (r *QuizRepository) ListAvailable(now time.Time) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.
		Where("is_public = ?", true).
		Where("start_at IS NULL OR start_at <= ?", now).
		Where("end_at IS NULL OR end_at >= ?", now).
		Order("created_at DESC").
		Find(&quizzes).Error
	return quizzes, err
}

// gradingSnapshot 判分所需的题目与选项全集
type gradingSnapshot struct {
	Questions []model.Question `json:"questions"`
	Options   []model.Option   `json:"options"`
}

func gradingSnapshotKey(quizID uint) string {
	return fmt.Sprintf("quiz:grading:%d", quizID)
}

// GradingData 返回某测验全部题目及按题目分组的选项，优先走 Redis 缓存。
// 缓存读失败时静默回源数据库，判分绝不因缓存故障失败。
func (r *QuizRepository) GradingData(ctx context.Context, quizID uint) ([]model.Question, map[uint][]model.Option, error) {
	if r.RDB != nil {
		raw, err := r.RDB.Get(ctx, gradingSnapshotKey(quizID)).Bytes()
		if err == nil {
			var snap gradingSnapshot
			if json.Unmarshal(raw, &snap) == nil {
				return snap.Questions, groupOptions(snap.Options), nil
			}
		}
	}

	var questions []model.Question
	if err := r.DB.Where("quiz_id = ?", quizID).Order("order_index ASC").Find(&questions).Error; err != nil {
		return nil, nil, err
	}

	var options []model.Option
	if len(questions) > 0 {
		ids := make([]uint, 0, len(questions))
		for _, q := range questions {
			ids = append(ids, q.ID)
		}
		if err := r.DB.Where("question_id IN ?", ids).Order("order_index ASC").Find(&options).Error; err != nil {
			return nil, nil, err
		}
	}

	if r.RDB != nil {
		raw, err := json.Marshal(gradingSnapshot{Questions: questions, Options: options})
		if err == nil {
			if err := r.RDB.Set(ctx, gradingSnapshotKey(quizID), raw, gradingSnapshotTTL).Err(); err != nil {
				logger.Log.Warn("grading snapshot cache write failed", zap.Uint("quizId", quizID), zap.Error(err))
			}
		}
	}

	return questions, groupOptions(options), nil
}

// InvalidateGradingData 命题变更后删除缓存快照
func (r *QuizRepository) InvalidateGradingData(ctx context.Context, quizID uint) {
	if r.RDB == nil {
		return
	}
	if err := r.RDB.Del(ctx, gradingSnapshotKey(quizID)).Err(); err != nil {
		logger.Log.Warn("grading snapshot invalidation failed", zap.Uint("quizId", quizID), zap.Error(err))
	}
}

func groupOptions(options []model.Option) map[uint][]model.Option {
	byQuestion := make(map[uint][]model.Option, len(options))
	for _, o := range options {
		byQuestion[o.QuestionID] = append(byQuestion[o.QuestionID], o)
	}
	return byQuestion
}
