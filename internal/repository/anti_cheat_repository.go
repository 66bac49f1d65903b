package repository

import (
	"quiz_platform_backend/internal/model"

	"gorm.io/gorm"
)

type AntiCheatRepository struct {
	DB *gorm.DB
}

func NewAntiCheatRepository(db *gorm.DB) *AntiCheatRepository {
	return &AntiCheatRepository{DB: db}
}

// Create 追加事件。事件表只增不改，失败必须上抛，不允许吞掉。
func (r *AntiCheatRepository) Create(event *model.AntiCheatEvent) error {
	return r.DB.Create(event).Error
}

func (r *AntiCheatRepository) ListByAttempt(attemptID uint) ([]model.AntiCheatEvent, error) {
	var events []model.AntiCheatEvent
	err := r.DB.Where("attempt_id = ?", attemptID).Order("created_at ASC").Find(&events).Error
	return events, err
}
