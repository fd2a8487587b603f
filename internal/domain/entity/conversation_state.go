package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConversationState 协商状态实体
//
// 每个会话最多存在一条记录，记录存在即表示协商进行中。
// 规划器每次提出澄清问题时整体覆盖写入草稿与待答问题；
// 发出最终提示词并派发生成任务前删除该记录。
type ConversationState struct {
	ID             string `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID string `gorm:"type:uuid;uniqueIndex;not null" json:"conversation_id"`
	UserID         string `gorm:"type:uuid;index;not null" json:"user_id"`
	// DraftPrompt 跨轮积累的草稿提示词，整段覆盖而非增量合并
	DraftPrompt string `gorm:"type:text" json:"draft_prompt"`
	// PendingQuestions 尚未得到回答的澄清问题，持久化前截断到至多一条
	PendingQuestions []string  `gorm:"serializer:json" json:"pending_questions"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName 指定表名
func (ConversationState) TableName() string {
	return "conversation_states"
}

// BeforeCreate 创建前生成 UUID
func (s *ConversationState) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// PendingQuestion 返回当前待答问题，没有则返回空串
func (s *ConversationState) PendingQuestion() string {
	if len(s.PendingQuestions) == 0 {
		return ""
	}
	return s.PendingQuestions[0]
}
