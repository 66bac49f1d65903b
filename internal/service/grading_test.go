package service

import (
	"testing"
	"time"

	"quiz_platform_backend/internal/model"
)

func opt(id uint, correct bool) model.Option {
	o := model.Option{IsCorrect: correct}
	o.ID = id
	return o
}

func question(kind model.QuestionKind, points float64) model.Question {
	return model.Question{Kind: kind, Points: points}
}

func TestGradeQuestionSingle(t *testing.T) {
	options := []model.Option{opt(1, false), opt(2, true), opt(3, false)}
	q := question(model.KindSingle, 5)

	tests := []struct {
		name     string
		selected []uint
		correct  bool
		awarded  float64
	}{
		{"正确选项", []uint{2}, true, 5},
		{"错误选项", []uint{1}, false, 0},
		{"未作答", nil, false, 0},
		{"多选即错", []uint{1, 2}, false, 0},
		{"重复 ID 去重后仍算单选", []uint{2, 2}, true, 5},
		{"引用其他题目的选项被丢弃", []uint{2, 99}, true, 5},
		{"只引用其他题目的选项", []uint{99}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			correct, awarded := GradeQuestion(q, options, tt.selected)
			if correct == nil {
				t.Fatal("expected non-nil verdict for single question")
			}
			if *correct != tt.correct || awarded != tt.awarded {
				t.Errorf("got (%v, %v), want (%v, %v)", *correct, awarded, tt.correct, tt.awarded)
			}
		})
	}
}

func TestGradeQuestionBoolean(t *testing.T) {
	options := []model.Option{opt(10, true), opt(11, false)}
	q := question(model.KindBoolean, 2)

	correct, awarded := GradeQuestion(q, options, []uint{10})
	if correct == nil || !*correct || awarded != 2 {
		t.Errorf("true option: got (%v, %v), want (true, 2)", correct, awarded)
	}

	correct, awarded = GradeQuestion(q, options, []uint{11})
	if correct == nil || *correct || awarded != 0 {
		t.Errorf("false option: got (%v, %v), want (false, 0)", correct, awarded)
	}
}

func TestGradeQuestionSingleDegenerateKey(t *testing.T) {
	q := question(model.KindSingle, 5)

	// 没有正确项
	noCorrect := []model.Option{opt(1, false), opt(2, false)}
	correct, awarded := GradeQuestion(q, noCorrect, []uint{1})
	if correct == nil || *correct || awarded != 0 {
		t.Errorf("no correct option: got (%v, %v), want (false, 0)", correct, awarded)
	}

	// 多个正确项的单选题同样永远判错
	twoCorrect := []model.Option{opt(1, true), opt(2, true)}
	correct, awarded = GradeQuestion(q, twoCorrect, []uint{1})
	if correct == nil || *correct || awarded != 0 {
		t.Errorf("two correct options: got (%v, %v), want (false, 0)", correct, awarded)
	}
}

func TestGradeQuestionMultiple(t *testing.T) {
	options := []model.Option{opt(1, true), opt(2, true), opt(3, false), opt(4, false)}
	q := question(model.KindMultiple, 4)

	tests := []struct {
		name     string
		selected []uint
		correct  bool
		awarded  float64
	}{
		{"完全命中", []uint{1, 2}, true, 4},
		{"顺序无关", []uint{2, 1}, true, 4},
		{"漏选不给部分分", []uint{1}, false, 0},
		{"多选一个错误项", []uint{1, 2, 3}, false, 0},
		{"全错", []uint{3, 4}, false, 0},
		{"未作答", nil, false, 0},
		{"外来 ID 丢弃后仍命中", []uint{1, 2, 500}, true, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			correct, awarded := GradeQuestion(q, options, tt.selected)
			if correct == nil {
				t.Fatal("expected non-nil verdict for multiple question")
			}
			if *correct != tt.correct || awarded != tt.awarded {
				t.Errorf("got (%v, %v), want (%v, %v)", *correct, awarded, tt.correct, tt.awarded)
			}
		})
	}
}

func TestGradeQuestionShort(t *testing.T) {
	q := question(model.KindShort, 10)
	correct, awarded := GradeQuestion(q, nil, nil)
	if correct != nil {
		t.Errorf("short question verdict should be nil, got %v", *correct)
	}
	if awarded != 0 {
		t.Errorf("short question awarded should be 0, got %v", awarded)
	}
}

func TestSumAwarded(t *testing.T) {
	answers := []model.Answer{
		{PointsAwarded: 5},
		{PointsAwarded: 0},
		{PointsAwarded: 2.5},
	}
	if got := SumAwarded(answers); got != 7.5 {
		t.Errorf("SumAwarded = %v, want 7.5", got)
	}
	if got := SumAwarded(nil); got != 0 {
		t.Errorf("SumAwarded(nil) = %v, want 0", got)
	}
}

func TestComputeRemaining(t *testing.T) {
	started := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		duration  int
		endAt     *time.Time
		now       time.Time
		remaining int
		passed    bool
	}{
		{"刚开始", 600, nil, started, 600, false},
		{"进行中", 600, nil, started.Add(100 * time.Second), 500, false},
		{"恰好到时", 600, nil, started.Add(600 * time.Second), 0, false},
		{"超时", 600, nil, started.Add(601 * time.Second), 0, true},
		{"远超时剩余不为负", 600, nil, started.Add(2 * time.Hour), 0, true},
		{
			"截止时间早于时长", 600,
			timePtr(started.Add(60 * time.Second)),
			started.Add(90 * time.Second), 510, true,
		},
		{
			"截止时间未到", 600,
			timePtr(started.Add(2 * time.Hour)),
			started.Add(100 * time.Second), 500, false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remaining, passed := ComputeRemaining(started, tt.duration, tt.endAt, tt.now)
			if remaining != tt.remaining || passed != tt.passed {
				t.Errorf("got (%d, %v), want (%d, %v)", remaining, passed, tt.remaining, tt.passed)
			}
		})
	}
}

func TestCanShowCorrectAnswers(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name   string
		policy string
		endAt  *time.Time
		want   bool
	}{
		{"never", model.ShowAnswersNever, &past, false},
		{"immediate", model.ShowAnswersImmediate, nil, true},
		{"after_due 已过截止", model.ShowAnswersAfterDue, &past, true},
		{"after_due 未过截止", model.ShowAnswersAfterDue, &future, false},
		{"after_due 无截止时间", model.ShowAnswersAfterDue, nil, false},
		{"未知策略按 never 处理", "whatever", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quiz := &model.Quiz{ShowCorrectAnswers: tt.policy, EndAt: tt.endAt}
			if got := CanShowCorrectAnswers(quiz, now); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
