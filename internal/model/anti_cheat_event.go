package model

// 防作弊事件类型（固定词表）
const (
	EventTabBlur          = "tab_blur"
	EventVisibilityHidden = "visibility_hidden"
	EventCopy             = "copy"
	EventPaste            = "paste"
	EventContextMenu      = "context_menu"
)

// ValidEventKind 校验上报的事件类型是否在词表内
func ValidEventKind(kind string) bool {
	switch kind {
	case EventTabBlur, EventVisibilityHidden, EventCopy, EventPaste, EventContextMenu:
		return true
	}
	return false
}

// CountsAsTabSwitch 仅 blur/visibility 事件计入切屏次数
func CountsAsTabSwitch(kind string) bool {
	return kind == EventTabBlur || kind == EventVisibilityHidden
}

// AntiCheatEvent 只追加的观测日志，从不修改或删除
// swagger:model AntiCheatEvent
type AntiCheatEvent struct {
	BaseModel

	AttemptID uint   `gorm:"index;not null" json:"attemptId"`
	Kind      string `gorm:"size:30;not null" json:"kind"`
	Meta      string `gorm:"type:json" json:"meta"`
}

func (AntiCheatEvent) TableName() string {
	return "anti_cheat_events"
}
