package service

import (
	"context"
	"errors"
	"time"

	"quiz_platform_backend/internal/model"
	"quiz_platform_backend/internal/repository"
	"quiz_platform_backend/internal/util"

	"gorm.io/gorm"
)

type QuizService struct {
	QuizRepo     *repository.QuizRepository
	QuestionRepo *repository.QuestionRepository
	AttemptRepo  *repository.AttemptRepository
	AnswerRepo   *repository.AnswerRepository
	UserRepo     *repository.UserRepository
}

func NewQuizService(
	quizRepo *repository.QuizRepository,
	questionRepo *repository.QuestionRepository,
	attemptRepo *repository.AttemptRepository,
	answerRepo *repository.AnswerRepository,
	userRepo *repository.UserRepository,
) *QuizService {
	return &QuizService{
		QuizRepo:     quizRepo,
		QuestionRepo: questionRepo,
		AttemptRepo:  attemptRepo,
		AnswerRepo:   answerRepo,
		UserRepo:     userRepo,
	}
}

// QuizInput 创建/更新测验的入参
type QuizInput struct {
	Title              string     `json:"title" binding:"required"`
	Description        string     `json:"description"`
	DurationSeconds    int        `json:"durationSeconds" binding:"required,gt=0"`
	StartAt            *time.Time `json:"startAt"`
	EndAt              *time.Time `json:"endAt"`
	AllowTabSwitches   int        `json:"allowTabSwitches"`
	ShowCorrectAnswers string     `json:"showCorrectAnswers"`
	IsPublic           bool       `json:"isPublic"`
}

func (s *QuizService) CreateQuiz(creatorID uint, in *QuizInput) (*model.Quiz, error) {
	quiz := &model.Quiz{
		Title:              in.Title,
		Description:        in.Description,
		DurationSeconds:    in.DurationSeconds,
		StartAt:            in.StartAt,
		EndAt:              in.EndAt,
		AllowTabSwitches:   in.AllowTabSwitches,
		ShowCorrectAnswers: in.ShowCorrectAnswers,
		IsPublic:           in.IsPublic,
		CreatedBy:          creatorID,
	}
	if quiz.ShowCorrectAnswers == "" {
		quiz.ShowCorrectAnswers = model.ShowAnswersAfterDue
	}
	if err := s.QuizRepo.Create(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) UpdateQuiz(ctx context.Context, creatorID, quizID uint, in *QuizInput) (*model.Quiz, error) {
	quiz, err := s.ownedQuiz(creatorID, quizID)
	if err != nil {
		return nil, err
	}
	quiz.Title = in.Title
	quiz.Description = in.Description
	quiz.DurationSeconds = in.DurationSeconds
	quiz.StartAt = in.StartAt
	quiz.EndAt = in.EndAt
	quiz.AllowTabSwitches = in.AllowTabSwitches
	if in.ShowCorrectAnswers != "" {
		quiz.ShowCorrectAnswers = in.ShowCorrectAnswers
	}
	quiz.IsPublic = in.IsPublic
	if err := s.QuizRepo.Update(quiz); err != nil {
		return nil, err
	}
	s.QuizRepo.InvalidateGradingData(ctx, quiz.ID)
	return quiz, nil
}

func (s *QuizService) DeleteQuiz(ctx context.Context, creatorID, quizID uint) error {
	quiz, err := s.ownedQuiz(creatorID, quizID)
	if err != nil {
		return err
	}
	if err := s.QuizRepo.Delete(quiz.ID); err != nil {
		return err
	}
	s.QuizRepo.InvalidateGradingData(ctx, quiz.ID)
	return nil
}

func (s *QuizService) ListByCreator(creatorID uint, page, limit int) ([]model.Quiz, int64, error) {
	return s.QuizRepo.ListByCreator(creatorID, page, limit)
}

// AvailableQuiz 学生可见的测验摘要,不含题目
type AvailableQuiz struct {
	model.Quiz
	QuestionCount int64 `json:"questionCount"`
}

func (s *QuizService) ListAvailable(now time.Time) ([]AvailableQuiz, error) {
	quizzes, err := s.QuizRepo.ListAvailable(now)
	if err != nil {
		return nil, err
	}
	out := make([]AvailableQuiz, 0, len(quizzes))
	for _, q := range quizzes {
		questions, err := s.QuestionRepo.ListByQuiz(q.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, AvailableQuiz{Quiz: q, QuestionCount: int64(len(questions))})
	}
	return out, nil
}

// TakingOption 答题界面的选项,永远不带 is_correct
type TakingOption struct {
	ID         uint   `json:"id"`
	Label      string `json:"label"`
	OrderIndex int    `json:"orderIndex"`
}

type TakingQuestion struct {
	ID         uint               `json:"id"`
	Kind       model.QuestionKind `json:"kind"`
	Prompt     string             `json:"prompt"`
	Points     float64            `json:"points"`
	OrderIndex int                `json:"orderIndex"`
	Options    []TakingOption     `json:"options"`
}

type QuizForTaking struct {
	Quiz      *model.Quiz      `json:"quiz"`
	Questions []TakingQuestion `json:"questions"`
}

// GetForTaking 答题用的测验全文。正确答案在入库时就被剥掉,
// 不依赖前端隐藏。
func (s *QuizService) GetForTaking(ctx context.Context, userID, quizID uint) (*QuizForTaking, error) {
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

	questions, optionsByQuestion, err := s.QuizRepo.GradingData(ctx, quiz.ID)
	if err != nil {
		return nil, err
	}

	out := &QuizForTaking{Quiz: quiz, Questions: make([]TakingQuestion, 0, len(questions))}
	for _, q := range questions {
		tq := TakingQuestion{
			ID:         q.ID,
			Kind:       q.Kind,
			Prompt:     q.Prompt,
			Points:     q.Points,
			OrderIndex: q.OrderIndex,
		}
		for _, o := range optionsByQuestion[q.ID] {
			tq.Options = append(tq.Options, TakingOption{ID: o.ID, Label: o.Label, OrderIndex: o.OrderIndex})
		}
		out.Questions = append(out.Questions, tq)
	}
	return out, nil
}

// QuestionInput 创建/更新题目的入参
type QuestionInput struct {
	Kind   string  `json:"kind" binding:"required"`
	Prompt string  `json:"prompt" binding:"required"`
	Points float64 `json:"points"`
}

func (s *QuizService) AddQuestion(ctx context.Context, creatorID, quizID uint, in *QuestionInput) (*model.Question, error) {
	if !model.ValidKind(model.QuestionKind(in.Kind)) {
		return nil, util.ErrInvalidQuestionKind
	}
	quiz, err := s.ownedQuiz(creatorID, quizID)
	if err != nil {
		return nil, err
	}
	next, err := s.QuestionRepo.NextOrderIndex(quiz.ID)
	if err != nil {
		return nil, err
	}
	q := &model.Question{
		QuizID:     quiz.ID,
		Kind:       model.QuestionKind(in.Kind),
		Prompt:     in.Prompt,
		Points:     in.Points,
		OrderIndex: next,
	}
	if q.Points <= 0 {
		q.Points = 1
	}
	if err := s.QuestionRepo.Create(q); err != nil {
		return nil, err
	}
	s.QuizRepo.InvalidateGradingData(ctx, quiz.ID)
	return q, nil
}

func (s *QuizService) UpdateQuestion(ctx context.Context, creatorID, questionID uint, in *QuestionInput) (*model.Question, error) {
	if !model.ValidKind(model.QuestionKind(in.Kind)) {
		return nil, util.ErrInvalidQuestionKind
	}
	q, err := s.ownedQuestion(creatorID, questionID)
	if err != nil {
		return nil, err
	}
	q.Kind = model.QuestionKind(in.Kind)
	q.Prompt = in.Prompt
	if in.Points > 0 {
		q.Points = in.Points
	}
	if err := s.QuestionRepo.Update(q); err != nil {
		return nil, err
	}
	s.QuizRepo.InvalidateGradingData(ctx, q.QuizID)
	return q, nil
}

func (s *QuizService) DeleteQuestion(ctx context.Context, creatorID, questionID uint) error {
	q, err := s.ownedQuestion(creatorID, questionID)
	if err != nil {
		return err
	}
	if err := s.QuestionRepo.Delete(q.ID); err != nil {
		return err
	}
	s.QuizRepo.InvalidateGradingData(ctx, q.QuizID)
	return nil
}

// OptionInput 创建/更新选项的入参
type OptionInput struct {
	Label     string `json:"label" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

func (s *QuizService) AddOption(ctx context.Context, creatorID, questionID uint, in *OptionInput) (*model.Option, error) {
	q, err := s.ownedQuestion(creatorID, questionID)
	if err != nil {
		return nil, err
	}
	next, err := s.QuestionRepo.NextOptionOrderIndex(q.ID)
	if err != nil {
		return nil, err
	}
	o := &model.Option{
		QuestionID: q.ID,
		Label:      in.Label,
		IsCorrect:  in.IsCorrect,
		OrderIndex: next,
	}
	if err := s.QuestionRepo.CreateOption(o); err != nil {
		return nil, err
	}
	s.QuizRepo.InvalidateGradingData(ctx, q.QuizID)
	return o, nil
}

func (s *QuizService) UpdateOption(ctx context.Context, creatorID, optionID uint, in *OptionInput) (*model.Option, error) {
	o, err := s.QuestionRepo.FindOptionByID(optionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrOptionNotFound
		}
		return nil, err
	}
	q, err := s.ownedQuestion(creatorID, o.QuestionID)
	if err != nil {
		return nil, err
	}
	o.Label = in.Label
	o.IsCorrect = in.IsCorrect
	if err := s.QuestionRepo.UpdateOption(o); err != nil {
		return nil, err
	}
	s.QuizRepo.InvalidateGradingData(ctx, q.QuizID)
	return o, nil
}

func (s *QuizService) DeleteOption(ctx context.Context, creatorID, optionID uint) error {
	o, err := s.QuestionRepo.FindOptionByID(optionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrOptionNotFound
		}
		return err
	}
	q, err := s.ownedQuestion(creatorID, o.QuestionID)
	if err != nil {
		return err
	}
	if err := s.QuestionRepo.DeleteOption(o.ID); err != nil {
		return err
	}
	s.QuizRepo.InvalidateGradingData(ctx, q.QuizID)
	return nil
}

func (s *QuizService) ListQuestions(creatorID, quizID uint) ([]model.Question, map[uint][]model.Option, error) {
	quiz, err := s.ownedQuiz(creatorID, quizID)
	if err != nil {
		return nil, nil, err
	}
	questions, err := s.QuestionRepo.ListByQuiz(quiz.ID)
	if err != nil {
		return nil, nil, err
	}
	options := make(map[uint][]model.Option, len(questions))
	for _, q := range questions {
		opts, err := s.QuestionRepo.ListOptions(q.ID)
		if err != nil {
			return nil, nil, err
		}
		options[q.ID] = opts
	}
	return questions, options, nil
}

// QuizAnalytics 管理端分析面板的聚合数据
type QuizAnalytics struct {
	TotalAttempts     int64    `json:"totalAttempts"`
	InProgress        int64    `json:"inProgress"`
	Submitted         int64    `json:"submitted"`
	AutoSubmitted     int64    `json:"autoSubmitted"`
	AverageScore      float64  `json:"averageScore"`
	HighestScore      float64  `json:"highestScore"`
	LowestScore       *float64 `json:"lowestScore"`
	TotalTabSwitches  int64    `json:"totalTabSwitches"`
	FlaggedAttempts   int64    `json:"flaggedAttempts"`
	MaxPossibleScore  float64  `json:"maxPossibleScore"`
	CompletedAttempts int64    `json:"completedAttempts"`
}

// Analytics 汇总一个测验的作答情况。平均分只统计终态作答。
func (s *QuizService) Analytics(creatorID, quizID uint) (*QuizAnalytics, error) {
	quiz, err := s.ownedQuiz(creatorID, quizID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.AttemptRepo.ListByQuiz(quiz.ID)
	if err != nil {
		return nil, err
	}
	questions, err := s.QuestionRepo.ListByQuiz(quiz.ID)
	if err != nil {
		return nil, err
	}

	out := &QuizAnalytics{}
	for _, q := range questions {
		out.MaxPossibleScore += q.Points
	}

	var scoreSum float64
	for i := range attempts {
		a := &attempts[i]
		out.TotalAttempts++
		out.TotalTabSwitches += int64(a.TabSwitchCount)
		if a.TabSwitchCount > quiz.AllowTabSwitches {
			out.FlaggedAttempts++
		}
		switch a.Status {
		case model.AttemptInProgress:
			out.InProgress++
			continue
		case model.AttemptSubmitted:
			out.Submitted++
		case model.AttemptAutoSubmitted:
			out.AutoSubmitted++
		}
		out.CompletedAttempts++
		scoreSum += a.Score
		if a.Score > out.HighestScore {
			out.HighestScore = a.Score
		}
		if out.LowestScore == nil || a.Score < *out.LowestScore {
			score := a.Score
			out.LowestScore = &score
		}
	}
	if out.CompletedAttempts > 0 {
		out.AverageScore = scoreSum / float64(out.CompletedAttempts)
	}
	return out, nil
}

// AttemptWithUser 管理端作答列表项
type AttemptWithUser struct {
	model.Attempt
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

func (s *QuizService) ListAttempts(creatorID, quizID uint) ([]AttemptWithUser, error) {
	quiz, err := s.ownedQuiz(creatorID, quizID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.AttemptRepo.ListByQuiz(quiz.ID)
	if err != nil {
		return nil, err
	}
	users := make(map[uint]*model.User)
	out := make([]AttemptWithUser, 0, len(attempts))
	for _, a := range attempts {
		u, ok := users[a.UserID]
		if !ok {
			u, _ = s.UserRepo.FindByID(a.UserID)
			users[a.UserID] = u
		}
		row := AttemptWithUser{Attempt: a}
		if u != nil {
			row.UserName = u.Name
			row.UserEmail = u.Email
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *QuizService) ownedQuiz(creatorID, quizID uint) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.CreatedBy != creatorID {
		return nil, util.ErrPermissionDenied
	}
	return quiz, nil
}

func (s *QuizService) ownedQuestion(creatorID, questionID uint) (*model.Question, error) {
	q, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	if _, err := s.ownedQuiz(creatorID, q.QuizID); err != nil {
		return nil, err
	}
	return q, nil
}
