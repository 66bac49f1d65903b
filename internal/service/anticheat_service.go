package service

import (
	"errors"

	"quiz_platform_backend/internal/model"
	"quiz_platform_backend/internal/repository"
	"quiz_platform_backend/internal/util"
	"quiz_platform_backend/pkg/logger"
	"quiz_platform_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AntiCheatService struct {
	QuizRepo      *repository.QuizRepository
	AttemptRepo   *repository.AttemptRepository
	AntiCheatRepo *repository.AntiCheatRepository
}

func NewAntiCheatService(
	quizRepo *repository.QuizRepository,
	attemptRepo *repository.AttemptRepository,
	antiCheatRepo *repository.AntiCheatRepository,
) *AntiCheatService {
	return &AntiCheatService{
		QuizRepo:      quizRepo,
		AttemptRepo:   attemptRepo,
		AntiCheatRepo: antiCheatRepo,
	}
}

// RecordEventResult 告诉前端是否已越过切屏上限，由前端据此触发自动交卷
type RecordEventResult struct {
	TabSwitchCount int  `json:"tabSwitchCount"`
	LimitExceeded  bool `json:"limitExceeded"`
}

// RecordEvent 上报一次监考事件。事件先落库再计数；只有切屏类事件
// (tab_blur / visibility_hidden) 递增 tab_switch_count,复制粘贴和右键
// 只记录不计数。计数是数据库内的原子自增,两个并发上报各得各的新值。
func (s *AntiCheatService) RecordEvent(userID, attemptID uint, kind, meta string) (*RecordEventResult, error) {
	if !model.ValidEventKind(kind) {
		return nil, util.ErrInvalidEventKind
	}

	attempt, err := s.AttemptRepo.FindInProgressByID(attemptID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFoundOrSubmitted
		}
		return nil, err
	}

	event := &model.AntiCheatEvent{
		AttemptID: attempt.ID,
		Kind:      kind,
		Meta:      meta,
	}
	if err := s.AntiCheatRepo.Create(event); err != nil {
		return nil, err
	}
	monitoring.AntiCheatEventCounter.WithLabelValues(kind).Inc()

	result := &RecordEventResult{TabSwitchCount: attempt.TabSwitchCount}
	if model.CountsAsTabSwitch(kind) {
		newCount, err := s.AttemptRepo.IncrementTabSwitch(attempt.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrAttemptNotFoundOrSubmitted
			}
			return nil, err
		}
		result.TabSwitchCount = newCount

		quiz, err := s.QuizRepo.FindByID(attempt.QuizID)
		if err != nil {
			return nil, err
		}
		result.LimitExceeded = newCount > quiz.AllowTabSwitches
		if result.LimitExceeded {
			logger.Log.Warn("tab switch limit exceeded",
				zap.Uint("attemptId", attempt.ID),
				zap.Uint("userId", userID),
				zap.Int("count", newCount),
				zap.Int("allowed", quiz.AllowTabSwitches),
			)
		}
	}
	return result, nil
}

// ListEvents 管理端查看某次作答的完整监考记录,仅测验创建者可见
func (s *AntiCheatService) ListEvents(adminID, attemptID uint) ([]model.AntiCheatEvent, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	quiz, err := s.QuizRepo.FindByID(attempt.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.CreatedBy != adminID {
		return nil, util.ErrPermissionDenied
	}
	return s.AntiCheatRepo.ListByAttempt(attempt.ID)
}
