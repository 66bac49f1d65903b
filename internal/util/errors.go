package util

import "errors"

var (
	ErrUserNotFound               = errors.New("用户不存在")
	ErrEmailRegistered            = errors.New("该邮箱已被注册")
	ErrInvalidCredentials         = errors.New("invalid credentials")
	ErrPermissionDenied           = errors.New("permission denied")
	ErrQuizNotFound               = errors.New("quiz not found")
	ErrQuizNotAccessible          = errors.New("quiz not accessible")
	ErrQuizNotYetAvailable        = errors.New("quiz not yet available")
	ErrQuizNoLongerAvailable      = errors.New("quiz no longer available")
	ErrQuestionNotFound           = errors.New("question not found")
	ErrOptionNotFound             = errors.New("option not found")
	ErrAttemptNotFound            = errors.New("attempt not found")
	ErrAttemptNotFoundOrSubmitted = errors.New("attempt not found or already submitted")
	ErrResultNotVisible           = errors.New("result not visible yet")
	ErrInvalidEventKind           = errors.New("invalid anti-cheat event kind")
	ErrInvalidQuestionKind        = errors.New("invalid question kind")
)
