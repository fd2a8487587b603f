package entity

import (
	"time"
)

// MaxMemoriesPerUser 每个用户保留的偏好记忆条数上限，超出后淘汰最旧的
const MaxMemoriesPerUser = 25

// MemoryType 偏好记忆类型
type MemoryType string

const (
	MemoryTypeText  MemoryType = "text"
	MemoryTypeImage MemoryType = "image"
)

// UserMemory 用户偏好记忆实体
//
// 文本记忆记录被采纳的最终提示词，图片记忆记录被采纳的参考图。
// Text 与 ImageURL 约定恰好填充其一。
// 主键使用自增整型而非 UUID：淘汰最旧记录时以插入顺序为准，
// 同一时刻写入的多条记录需要靠 ID 区分先后。
type UserMemory struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID string `gorm:"type:uuid;index;not null" json:"user_id"`
	// ConversationID 记忆的来源会话，手动追加时可为空
	ConversationID string     `gorm:"type:uuid" json:"conversation_id,omitempty"`
	MemoryType     MemoryType `gorm:"type:varchar(16);not null" json:"memory_type"`
	Text           string     `gorm:"type:text" json:"text,omitempty"`
	ImageURL       string     `gorm:"type:text" json:"image_url,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// TableName 指定表名
func (UserMemory) TableName() string {
	return "user_memories"
}
