package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role 消息角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid 判断角色是否合法
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message 会话消息实体
type Message struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID string    `gorm:"type:uuid;index;not null" json:"conversation_id"`
	Role           Role      `gorm:"type:varchar(16);not null" json:"role"`
	Content        string    `gorm:"type:text" json:"content"`
	// ImageURLs 用户随消息上传的参考图地址
	ImageURLs []string  `gorm:"serializer:json" json:"image_urls,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "messages"
}

// BeforeCreate 创建前生成 UUID
func (m *Message) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Empty 判断消息内容是否为空白
func (m *Message) Empty() bool {
	return strings.TrimSpace(m.Content) == ""
}
