package service

import (
	"time"

	"quiz_platform_backend/internal/model"
)

// GradeQuestion 单题判分，纯函数。
//
// 规则：short 题恒为未判定（等待人工评分）；single/boolean 要求筛选后的
// 选择恰为唯一正确项；multiple 要求筛选后的集合与正确集合完全相等，
// 不给部分分。不属于本题的选项 ID 在判分前被静默丢弃，构造报文引用
// 其他题目的选项不可能得分。标准答案退化（single/boolean 正确项为 0 或
// 多于 1 个）时按错误处理，不视为数据异常。
func GradeQuestion(q model.Question, options []model.Option, selectedIDs []uint) (correct *bool, awarded float64) {
	if q.Kind == model.KindShort {
		return nil, 0
	}

	belongs := make(map[uint]bool, len(options))
	correctIDs := make(map[uint]bool)
	for _, o := range options {
		belongs[o.ID] = true
		if o.IsCorrect {
			correctIDs[o.ID] = true
		}
	}

	// 去重并剔除不属于本题的选项
	filtered := make(map[uint]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		if belongs[id] {
			filtered[id] = true
		}
	}

	var ok bool
	switch q.Kind {
	case model.KindSingle, model.KindBoolean:
		if len(filtered) == 1 && len(correctIDs) == 1 {
			for id := range filtered {
				ok = correctIDs[id]
			}
		}
	case model.KindMultiple:
		// 空选集对空正确集在集合相等下判对；正常命题不会出现空正确集
		if len(filtered) == len(correctIDs) {
			ok = true
			for id := range filtered {
				if !correctIDs[id] {
					ok = false
					break
				}
			}
		}
	}

	if ok {
		awarded = q.Points
	}
	return &ok, awarded
}

// SumAwarded 汇总总分。每次都对全量答案重算，而不是增量累加，
// 这样改分与重复判分都天然幂等。
func SumAwarded(answers []model.Answer) float64 {
	var total float64
	for _, a := range answers {
		total += a.PointsAwarded
	}
	return total
}

// ComputeRemaining 剩余时间与是否越过截止线，纯时间运算。
// 服务端在交卷时以库内时间戳重新计算，从不信任客户端上报的剩余值。
func ComputeRemaining(startedAt time.Time, durationSeconds int, endAt *time.Time, now time.Time) (remaining int, deadlinePassed bool) {
	elapsed := now.Sub(startedAt)

	remaining = durationSeconds - int(elapsed/time.Second)
	if remaining < 0 {
		remaining = 0
	}

	deadlinePassed = elapsed > time.Duration(durationSeconds)*time.Second
	if endAt != nil && now.After(*endAt) {
		deadlinePassed = true
	}
	return remaining, deadlinePassed
}

// CanShowCorrectAnswers 成绩页是否可展示正确答案
func CanShowCorrectAnswers(quiz *model.Quiz, now time.Time) bool {
	switch quiz.ShowCorrectAnswers {
	case model.ShowAnswersImmediate:
		return true
	case model.ShowAnswersAfterDue:
		return quiz.EndAt != nil && !now.Before(*quiz.EndAt)
	default:
		return false
	}
}
