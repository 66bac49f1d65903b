package service

import (
	"context"
	"errors"
	"testing"

	"quiz_platform_backend/internal/model"
	"quiz_platform_backend/internal/repository"
	"quiz_platform_backend/internal/util"

	"gorm.io/gorm"
)

func newAntiCheatEnv(t *testing.T) (*AntiCheatService, *AttemptService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	quizRepo := repository.NewQuizRepository(db, nil)
	questionRepo := repository.NewQuestionRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	antiCheat := NewAntiCheatService(quizRepo, attemptRepo, repository.NewAntiCheatRepository(db))
	attempts := NewAttemptService(quizRepo, questionRepo, attemptRepo, answerRepo)
	return antiCheat, attempts, db
}

func TestRecordEventTabSwitchLimit(t *testing.T) {
	svc, attempts, db := newAntiCheatEnv(t)
	quiz, _, _ := seedQuiz(t, db, 1) // AllowTabSwitches = 1

	started, err := attempts.StartOrResume(context.Background(), 2, quiz.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// 第一次切屏:计数 1,未越限
	result, err := svc.RecordEvent(2, started.Attempt.ID, model.EventTabBlur, "{}")
	if err != nil {
		t.Fatalf("first event: %v", err)
	}
	if result.TabSwitchCount != 1 || result.LimitExceeded {
		t.Errorf("first event: count=%d exceeded=%v, want 1/false", result.TabSwitchCount, result.LimitExceeded)
	}

	// 第二次切屏:计数 2,越限
	result, err = svc.RecordEvent(2, started.Attempt.ID, model.EventVisibilityHidden, "{}")
	if err != nil {
		t.Fatalf("second event: %v", err)
	}
	if result.TabSwitchCount != 2 || !result.LimitExceeded {
		t.Errorf("second event: count=%d exceeded=%v, want 2/true", result.TabSwitchCount, result.LimitExceeded)
	}

	// 全部事件落库
	var count int64
	if err := db.Model(&model.AntiCheatEvent{}).Where("attempt_id = ?", started.Attempt.ID).Count(&count).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 2 {
		t.Errorf("event rows = %d, want 2", count)
	}
}

func TestRecordEventLogOnlyKinds(t *testing.T) {
	svc, attempts, db := newAntiCheatEnv(t)
	quiz, _, _ := seedQuiz(t, db, 1)

	started, err := attempts.StartOrResume(context.Background(), 2, quiz.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	for _, kind := range []string{model.EventCopy, model.EventPaste, model.EventContextMenu} {
		result, err := svc.RecordEvent(2, started.Attempt.ID, kind, "")
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if result.TabSwitchCount != 0 || result.LimitExceeded {
			t.Errorf("%s incremented the counter: %+v", kind, result)
		}
	}

	var stored model.Attempt
	if err := db.First(&stored, started.Attempt.ID).Error; err != nil {
		t.Fatalf("load attempt: %v", err)
	}
	if stored.TabSwitchCount != 0 {
		t.Errorf("tab_switch_count = %d after log-only events", stored.TabSwitchCount)
	}

	var count int64
	if err := db.Model(&model.AntiCheatEvent{}).Where("attempt_id = ?", started.Attempt.ID).Count(&count).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 3 {
		t.Errorf("event rows = %d, want 3", count)
	}
}

func TestRecordEventValidation(t *testing.T) {
	svc, attempts, db := newAntiCheatEnv(t)
	quiz, _, _ := seedQuiz(t, db, 1)

	started, err := attempts.StartOrResume(context.Background(), 2, quiz.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// 未知事件类型
	if _, err := svc.RecordEvent(2, started.Attempt.ID, "screenshot", ""); !errors.Is(err, util.ErrInvalidEventKind) {
		t.Errorf("unknown kind: got %v, want ErrInvalidEventKind", err)
	}

	// 别人的作答不可上报
	if _, err := svc.RecordEvent(3, started.Attempt.ID, model.EventTabBlur, ""); !errors.Is(err, util.ErrAttemptNotFoundOrSubmitted) {
		t.Errorf("foreign attempt: got %v, want ErrAttemptNotFoundOrSubmitted", err)
	}

	// 已交卷的作答不再接受事件
	if _, err := attempts.Submit(context.Background(), 2, started.Attempt.ID, nil, false); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.RecordEvent(2, started.Attempt.ID, model.EventTabBlur, ""); !errors.Is(err, util.ErrAttemptNotFoundOrSubmitted) {
		t.Errorf("terminal attempt: got %v, want ErrAttemptNotFoundOrSubmitted", err)
	}
}

func TestListEventsOwnership(t *testing.T) {
	svc, attempts, db := newAntiCheatEnv(t)
	quiz, _, _ := seedQuiz(t, db, 1)

	started, err := attempts.StartOrResume(context.Background(), 2, quiz.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.RecordEvent(2, started.Attempt.ID, model.EventTabBlur, `{"ts":1}`); err != nil {
		t.Fatalf("record: %v", err)
	}

	events, err := svc.ListEvents(1, started.Attempt.ID)
	if err != nil {
		t.Fatalf("list as creator: %v", err)
	}
	if len(events) != 1 || events[0].Kind != model.EventTabBlur {
		t.Errorf("events = %+v", events)
	}

	if _, err := svc.ListEvents(99, started.Attempt.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Errorf("foreign admin: got %v, want ErrPermissionDenied", err)
	}
	if _, err := svc.ListEvents(1, 9999); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Errorf("missing attempt: got %v, want ErrAttemptNotFound", err)
	}
}
