// 本地开发用演示数据脚本
//
// 建一个公开测验并配齐四种题型，方便前端联调时有现成的考卷可用。
// 重复执行会追加新的测验，不会清理旧数据。
//
// 用法: go run scripts/seed_demo.go
package main

import (
	"log"
	"time"

	"quiz_platform_backend/internal/config"
	"quiz_platform_backend/internal/model"
	"quiz_platform_backend/pkg/database"
	"quiz_platform_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	end := time.Now().Add(7 * 24 * time.Hour)
	quiz := &model.Quiz{
		Title:              "Go 基础演示测验",
		Description:        "自动生成的演示数据",
		DurationSeconds:    900,
		EndAt:              &end,
		AllowTabSwitches:   2,
		ShowCorrectAnswers: model.ShowAnswersAfterDue,
		IsPublic:           true,
		CreatedBy:          1,
	}
	if err := db.Create(quiz).Error; err != nil {
		log.Fatalf("创建测验失败: %v", err)
	}

	type seedOption struct {
		label   string
		correct bool
	}
	seeds := []struct {
		kind    model.QuestionKind
		prompt  string
		points  float64
		options []seedOption
	}{
		{model.KindSingle, "Go 的切片扩容后底层数组一定会变吗", 5, []seedOption{
			{"一定会", false},
			{"不一定", true},
		}},
		{model.KindMultiple, "下列哪些是 Go 的内建类型", 4, []seedOption{
			{"map", true},
			{"chan", true},
			{"list", false},
		}},
		{model.KindBoolean, "goroutine 泄漏不会影响内存占用", 2, []seedOption{
			{"对", false},
			{"错", true},
		}},
		{model.KindShort, "简述 context 取消的传播方式", 10, nil},
	}

	for i, s := range seeds {
		q := &model.Question{
			QuizID:     quiz.ID,
			Kind:       s.kind,
			Prompt:     s.prompt,
			Points:     s.points,
			OrderIndex: i,
		}
		if err := db.Create(q).Error; err != nil {
			log.Fatalf("创建题目失败: %v", err)
		}
		for j, o := range s.options {
			opt := &model.Option{
				QuestionID: q.ID,
				Label:      o.label,
				IsCorrect:  o.correct,
				OrderIndex: j,
			}
			if err := db.Create(opt).Error; err != nil {
				log.Fatalf("创建选项失败: %v", err)
			}
		}
	}

	log.Printf("演示测验创建完成, quiz_id=%d", quiz.ID)
}
