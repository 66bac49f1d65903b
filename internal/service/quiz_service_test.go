package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz_platform_backend/internal/model"
	"quiz_platform_backend/internal/repository"
	"quiz_platform_backend/internal/util"

	"gorm.io/gorm"
)

func newQuizService(t *testing.T) (*QuizService, *AttemptService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	quizRepo := repository.NewQuizRepository(db, nil)
	questionRepo := repository.NewQuestionRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	userRepo := repository.NewUserRepository(db)
	quizzes := NewQuizService(quizRepo, questionRepo, attemptRepo, answerRepo, userRepo)
	attempts := NewAttemptService(quizRepo, questionRepo, attemptRepo, answerRepo)
	return quizzes, attempts, db
}

func TestQuizAuthoring(t *testing.T) {
	svc, _, _ := newQuizService(t)

	quiz, err := svc.CreateQuiz(1, &QuizInput{Title: "算法小测", DurationSeconds: 300, AllowTabSwitches: 2, IsPublic: true})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if quiz.ShowCorrectAnswers != model.ShowAnswersAfterDue {
		t.Errorf("default policy = %s, want after_due", quiz.ShowCorrectAnswers)
	}

	q1, err := svc.AddQuestion(context.Background(), 1, quiz.ID, &QuestionInput{Kind: "single", Prompt: "快排平均复杂度", Points: 5})
	if err != nil {
		t.Fatalf("add question: %v", err)
	}
	q2, err := svc.AddQuestion(context.Background(), 1, quiz.ID, &QuestionInput{Kind: "short", Prompt: "描述归并排序"})
	if err != nil {
		t.Fatalf("add second question: %v", err)
	}
	if q1.OrderIndex != 0 || q2.OrderIndex != 1 {
		t.Errorf("order indexes = %d, %d", q1.OrderIndex, q2.OrderIndex)
	}
	if q2.Points != 1 {
		t.Errorf("default points = %v, want 1", q2.Points)
	}

	if _, err := svc.AddQuestion(context.Background(), 1, quiz.ID, &QuestionInput{Kind: "essay", Prompt: "x"}); !errors.Is(err, util.ErrInvalidQuestionKind) {
		t.Errorf("invalid kind: got %v", err)
	}
	if _, err := svc.AddQuestion(context.Background(), 2, quiz.ID, &QuestionInput{Kind: "single", Prompt: "x"}); !errors.Is(err, util.ErrPermissionDenied) {
		t.Errorf("foreign creator: got %v", err)
	}

	o1, err := svc.AddOption(context.Background(), 1, q1.ID, &OptionInput{Label: "O(n log n)", IsCorrect: true})
	if err != nil {
		t.Fatalf("add option: %v", err)
	}
	o2, err := svc.AddOption(context.Background(), 1, q1.ID, &OptionInput{Label: "O(n^2)"})
	if err != nil {
		t.Fatalf("add second option: %v", err)
	}
	if o1.OrderIndex != 0 || o2.OrderIndex != 1 {
		t.Errorf("option order = %d, %d", o1.OrderIndex, o2.OrderIndex)
	}

	// 删题级联删选项
	if err := svc.DeleteQuestion(context.Background(), 1, q1.ID); err != nil {
		t.Fatalf("delete question: %v", err)
	}
	questions, options, err := svc.ListQuestions(1, quiz.ID)
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if len(questions) != 1 {
		t.Errorf("questions after delete = %d, want 1", len(questions))
	}
	if len(options[q1.ID]) != 0 {
		t.Error("options survived question deletion")
	}
}

func TestGetForTakingStripsAnswers(t *testing.T) {
	svc, _, db := newQuizService(t)
	quiz, questions, _ := seedQuiz(t, db, 1)

	taking, err := svc.GetForTaking(context.Background(), 2, quiz.ID)
	if err != nil {
		t.Fatalf("get for taking: %v", err)
	}
	if len(taking.Questions) != len(questions) {
		t.Fatalf("questions = %d, want %d", len(taking.Questions), len(questions))
	}
	// TakingOption 结构体本身没有 is_correct 字段,这里只验证选项集完整
	for _, q := range taking.Questions {
		if q.Kind == model.KindSingle && len(q.Options) != 2 {
			t.Errorf("single question options = %d, want 2", len(q.Options))
		}
		if q.Kind == model.KindShort && len(q.Options) != 0 {
			t.Errorf("short question should have no options")
		}
	}

	if _, err := svc.GetForTaking(context.Background(), 2, 9999); !errors.Is(err, util.ErrQuizNotFound) {
		t.Errorf("missing quiz: got %v", err)
	}
}

func TestListAvailableFiltersWindow(t *testing.T) {
	svc, _, db := newQuizService(t)

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	open := &model.Quiz{Title: "开放中", DurationSeconds: 60, IsPublic: true, StartAt: &past, EndAt: &future, CreatedBy: 1}
	closed := &model.Quiz{Title: "已结束", DurationSeconds: 60, IsPublic: true, EndAt: &past, CreatedBy: 1}
	hidden := &model.Quiz{Title: "未公开", DurationSeconds: 60, IsPublic: false, CreatedBy: 1}
	for _, q := range []*model.Quiz{open, closed, hidden} {
		if err := db.Create(q).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	available, err := svc.ListAvailable(now)
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(available) != 1 || available[0].Title != "开放中" {
		t.Errorf("available = %+v", available)
	}
}

func TestQuizAnalytics(t *testing.T) {
	svc, attempts, db := newQuizService(t)
	quiz, questions, options := seedQuiz(t, db, 1)

	// 学生 2:正常交卷得 5 分
	a1, err := attempts.StartOrResume(context.Background(), 2, quiz.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := attempts.Submit(context.Background(), 2, a1.Attempt.ID,
		[]SubmitAnswer{{QuestionID: questions[0].ID, SelectedOptionIDs: []uint{options[1].ID}}}, false); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// 学生 3:强制交卷 0 分,切屏 2 次
	a2, err := attempts.StartOrResume(context.Background(), 3, quiz.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := db.Model(&model.Attempt{}).Where("id = ?", a2.Attempt.ID).
		UpdateColumn("tab_switch_count", 2).Error; err != nil {
		t.Fatalf("set tab switches: %v", err)
	}
	if _, err := attempts.Submit(context.Background(), 3, a2.Attempt.ID, nil, true); err != nil {
		t.Fatalf("auto submit: %v", err)
	}

	// 学生 4:仍在作答
	if _, err := attempts.StartOrResume(context.Background(), 4, quiz.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	stats, err := svc.Analytics(1, quiz.ID)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if stats.TotalAttempts != 3 || stats.InProgress != 1 || stats.Submitted != 1 || stats.AutoSubmitted != 1 {
		t.Errorf("attempt counts: %+v", stats)
	}
	if stats.CompletedAttempts != 2 || stats.AverageScore != 2.5 {
		t.Errorf("average = %v over %d, want 2.5 over 2", stats.AverageScore, stats.CompletedAttempts)
	}
	if stats.HighestScore != 5 || stats.LowestScore == nil || *stats.LowestScore != 0 {
		t.Errorf("score range: high=%v low=%v", stats.HighestScore, stats.LowestScore)
	}
	if stats.MaxPossibleScore != 19 {
		t.Errorf("max possible = %v, want 19", stats.MaxPossibleScore)
	}
	if stats.TotalTabSwitches != 2 || stats.FlaggedAttempts != 1 {
		t.Errorf("anti-cheat aggregates: switches=%d flagged=%d", stats.TotalTabSwitches, stats.FlaggedAttempts)
	}

	if _, err := svc.Analytics(2, quiz.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Errorf("foreign analytics: got %v", err)
	}
}
