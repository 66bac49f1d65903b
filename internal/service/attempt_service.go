package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"quiz_platform_backend/internal/model"
	"quiz_platform_backend/internal/repository"
	"quiz_platform_backend/internal/util"
	"quiz_platform_backend/pkg/logger"
	"quiz_platform_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AttemptService struct {
	QuizRepo     *repository.QuizRepository
	QuestionRepo *repository.QuestionRepository
	AttemptRepo  *repository.AttemptRepository
	AnswerRepo   *repository.AnswerRepository
}

func NewAttemptService(
	quizRepo *repository.QuizRepository,
	questionRepo *repository.QuestionRepository,
	attemptRepo *repository.AttemptRepository,
	answerRepo *repository.AnswerRepository,
) *AttemptService {
	return &AttemptService{
		QuizRepo:     quizRepo,
		QuestionRepo: questionRepo,
		AttemptRepo:  attemptRepo,
		AnswerRepo:   answerRepo,
	}
}

// StartAttemptResult 开考/续考的返回：剩余秒数由服务端权威计算
type StartAttemptResult struct {
	Attempt          *model.Attempt `json:"attempt"`
	RemainingSeconds int            `json:"remainingSeconds"`
}

// SubmitAnswer 交卷时的单题作答
type SubmitAnswer struct {
	QuestionID        uint    `json:"questionId"`
	SelectedOptionIDs []uint  `json:"selectedOptionIds"`
	ShortText         *string `json:"shortText,omitempty"`
}

type SubmitResult struct {
	Score  float64 `json:"score"`
	Status string  `json:"status"`
}

// StartOrResume 开始或恢复一次作答。已有进行中的记录则原样返回——
// 刷新页面不会重置计时器；否则以当前时间创建新记录。
func (s *AttemptService) StartOrResume(ctx context.Context, userID, quizID uint) (*StartAttemptResult, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if !quiz.IsPublic && quiz.CreatedBy != userID {
		return nil, util.ErrQuizNotAccessible
	}

	now := time.Now()
	if quiz.StartAt != nil && now.Before(*quiz.StartAt) {
		return nil, util.ErrQuizNotYetAvailable
	}
	if quiz.EndAt != nil && now.After(*quiz.EndAt) {
		return nil, util.ErrQuizNoLongerAvailable
	}

	existing, err := s.AttemptRepo.FindInProgress(quizID, userID)
	if err == nil {
		remaining, _ := ComputeRemaining(existing.StartedAt, quiz.DurationSeconds, quiz.EndAt, now)
		return &StartAttemptResult{Attempt: existing, RemainingSeconds: remaining}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	attempt := &model.Attempt{
		QuizID:    quizID,
		UserID:    userID,
		Status:    model.AttemptInProgress,
		StartedAt: now,
	}
	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, err
	}

	remaining, _ := ComputeRemaining(attempt.StartedAt, quiz.DurationSeconds, quiz.EndAt, now)
	return &StartAttemptResult{Attempt: attempt, RemainingSeconds: remaining}, nil
}

// Submit 交卷：判分、落库、终态转换。
//
// 终态写入是带 status = 'in_progress' 条件的单条 UPDATE，定时器触发、
// 违规触发和手动点击并发到达时只有一个调用方成功翻转状态，其余得到
// ErrAttemptNotFoundOrSubmitted。答案写入是按 (attempt_id, question_id)
// 的幂等 upsert，重试同一份答卷不会产生重复行。
func (s *AttemptService) Submit(ctx context.Context, userID, attemptID uint, answers []SubmitAnswer, clientAuto bool) (*SubmitResult, error) {
	attempt, err := s.AttemptRepo.FindInProgressByID(attemptID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFoundOrSubmitted
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

	// 强制交卷判定只看库内时间戳与显式的客户端自动标记，
	// 客户端上报的剩余时间从不参与
	now := time.Now()
	_, deadlinePassed := ComputeRemaining(attempt.StartedAt, quiz.DurationSeconds, quiz.EndAt, now)
	forced := clientAuto || deadlinePassed

	questions, optionsByQuestion, err := s.QuizRepo.GradingData(ctx, quiz.ID)
	if err != nil {
		return nil, err
	}
	questionByID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		questionByID[q.ID] = q
	}

	for _, incoming := range answers {
		q, ok := questionByID[incoming.QuestionID]
		if !ok {
			// 不属于本测验的题目直接跳过
			continue
		}

		correct, awarded := GradeQuestion(q, optionsByQuestion[q.ID], incoming.SelectedOptionIDs)

		row := &model.Answer{
			AttemptID:     attempt.ID,
			QuestionID:    q.ID,
			Correct:       correct,
			PointsAwarded: awarded,
		}
		if q.Kind == model.KindShort {
			row.SelectedOptionIDs = encodeOptionIDs(nil)
			row.ShortText = incoming.ShortText
		} else {
			row.SelectedOptionIDs = encodeOptionIDs(incoming.SelectedOptionIDs)
			row.ShortText = nil
		}
		if err := s.AnswerRepo.Upsert(row); err != nil {
			return nil, err
		}
	}

	// 总分全量重算：不沿用本次请求的增量和，已落库但本次未覆盖的
	// 答案行（如交卷前的人工改分）同样计入
	stored, err := s.AnswerRepo.ListByAttempt(attempt.ID)
	if err != nil {
		return nil, err
	}
	total := SumAwarded(stored)

	status := model.AttemptSubmitted
	if forced {
		status = model.AttemptAutoSubmitted
	}

	flipped, err := s.AttemptRepo.FinishIfInProgress(attempt.ID, status, now, total)
	if err != nil {
		return nil, err
	}
	if !flipped {
		// 并发交卷的败方：状态已被另一请求翻转
		return nil, util.ErrAttemptNotFoundOrSubmitted
	}

	monitoring.SubmissionCounter.WithLabelValues(status).Inc()
	logger.Log.Info("attempt finished",
		zap.Uint("attemptId", attempt.ID),
		zap.Uint("quizId", quiz.ID),
		zap.String("status", status),
		zap.Float64("score", total),
	)

	return &SubmitResult{Score: total, Status: status}, nil
}

// OverrideGrade 人工改分：仅测验创建者可用，分值被钳制到
// [0, question.Points]，correct 传 nil 时保留原判定。改完全量重算总分。
func (s *AttemptService) OverrideGrade(ctx context.Context, adminID, attemptID, questionID uint, points float64, correct *bool) (float64, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, util.ErrAttemptNotFound
		}
		return 0, err
	}

	quiz, err := s.QuizRepo.FindByID(attempt.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, util.ErrQuizNotFound
		}
		return 0, err
	}
	if quiz.CreatedBy != adminID {
		return 0, util.ErrPermissionDenied
	}

	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, util.ErrQuestionNotFound
		}
		return 0, err
	}
	if question.QuizID != attempt.QuizID {
		return 0, util.ErrQuestionNotFound
	}

	capped := math.Max(0, math.Min(points, question.Points))

	row, err := s.AnswerRepo.Find(attempt.ID, question.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
		// 从未作答的题也允许改分（如补判 short 题）
		row = &model.Answer{
			AttemptID:         attempt.ID,
			QuestionID:        question.ID,
			SelectedOptionIDs: encodeOptionIDs(nil),
		}
	}
	row.PointsAwarded = capped
	if correct != nil {
		row.Correct = correct
	}
	if err := s.AnswerRepo.Upsert(row); err != nil {
		return 0, err
	}

	answers, err := s.AnswerRepo.ListByAttempt(attempt.ID)
	if err != nil {
		return 0, err
	}
	total := SumAwarded(answers)
	if err := s.AttemptRepo.UpdateScore(attempt.ID, total); err != nil {
		return 0, err
	}

	logger.Log.Info("grade override applied",
		zap.Uint("attemptId", attempt.ID),
		zap.Uint("questionId", question.ID),
		zap.Float64("awarded", capped),
		zap.Float64("newScore", total),
	)
	return total, nil
}

// MyAttempt 学生成绩列表项
type MyAttempt struct {
	model.Attempt
	QuizTitle string `json:"quizTitle"`
}

func (s *AttemptService) ListMine(userID uint) ([]MyAttempt, error) {
	attempts, err := s.AttemptRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	titles := make(map[uint]string)
	out := make([]MyAttempt, 0, len(attempts))
	for _, a := range attempts {
		title, ok := titles[a.QuizID]
		if !ok {
			if quiz, err := s.QuizRepo.FindByID(a.QuizID); err == nil {
				title = quiz.Title
			}
			titles[a.QuizID] = title
		}
		out = append(out, MyAttempt{Attempt: a, QuizTitle: title})
	}
	return out, nil
}

// ResultQuestion 成绩详情中的一题
type ResultQuestion struct {
	QuestionID        uint               `json:"questionId"`
	Prompt            string             `json:"prompt"`
	Kind              model.QuestionKind `json:"kind"`
	Points            float64            `json:"points"`
	SelectedOptionIDs []uint             `json:"selectedOptionIds"`
	ShortText         *string            `json:"shortText,omitempty"`
	Correct           *bool              `json:"correct"`
	PointsAwarded     float64            `json:"pointsAwarded"`
	// 仅当测验策略允许时返回
	CorrectOptionIDs []uint `json:"correctOptionIds,omitempty"`
}

type AttemptResult struct {
	Attempt     *model.Attempt   `json:"attempt"`
	QuizTitle   string           `json:"quizTitle"`
	ShowCorrect bool             `json:"showCorrect"`
	Questions   []ResultQuestion `json:"questions"`
}

// Result 学生查看自己的成绩单。进行中的作答没有成绩可看。
func (s *AttemptService) Result(ctx context.Context, userID, attemptID uint) (*AttemptResult, error) {
	attempt, err := s.AttemptRepo.FindByIDAndUser(attemptID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if !attempt.Terminal() {
		return nil, util.ErrResultNotVisible
	}

	quiz, err := s.QuizRepo.FindByID(attempt.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	answers, err := s.AnswerRepo.ListByAttempt(attempt.ID)
	if err != nil {
		return nil, err
	}
	answerByQuestion := make(map[uint]model.Answer, len(answers))
	for _, a := range answers {
		answerByQuestion[a.QuestionID] = a
	}

	questions, optionsByQuestion, err := s.QuizRepo.GradingData(ctx, quiz.ID)
	if err != nil {
		return nil, err
	}

	showCorrect := CanShowCorrectAnswers(quiz, time.Now())

	result := &AttemptResult{
		Attempt:     attempt,
		QuizTitle:   quiz.Title,
		ShowCorrect: showCorrect,
		Questions:   make([]ResultQuestion, 0, len(questions)),
	}
	for _, q := range questions {
		rq := ResultQuestion{
			QuestionID: q.ID,
			Prompt:     q.Prompt,
			Kind:       q.Kind,
			Points:     q.Points,
		}
		if a, ok := answerByQuestion[q.ID]; ok {
			rq.SelectedOptionIDs = decodeOptionIDs(a.SelectedOptionIDs)
			rq.ShortText = a.ShortText
			rq.Correct = a.Correct
			rq.PointsAwarded = a.PointsAwarded
		}
		if showCorrect {
			for _, o := range optionsByQuestion[q.ID] {
				if o.IsCorrect {
					rq.CorrectOptionIDs = append(rq.CorrectOptionIDs, o.ID)
				}
			}
		}
		result.Questions = append(result.Questions, rq)
	}
	return result, nil
}

// encodeOptionIDs 序列化为 JSON 数组字符串；nil 编码为 []，保持去重后的提交顺序
func encodeOptionIDs(ids []uint) string {
	seen := make(map[uint]bool, len(ids))
	deduped := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			deduped = append(deduped, id)
		}
	}
	raw, err := json.Marshal(deduped)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func decodeOptionIDs(raw string) []uint {
	var ids []uint
	if raw == "" {
		return ids
	}
	_ = json.Unmarshal([]byte(raw), &ids)
	return ids
}
