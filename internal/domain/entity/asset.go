package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaType 媒体类型
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// Valid 判断媒体类型是否合法
func (t MediaType) Valid() bool {
	return t == MediaTypeImage || t == MediaTypeVideo
}

// AssetStatus 资产状态
type AssetStatus string

const (
	AssetStatusPending   AssetStatus = "pending"
	AssetStatusCompleted AssetStatus = "completed"
	AssetStatusFailed    AssetStatus = "failed"
)

// Asset 生成资产实体
//
// 一次派发可产出多条资产记录（num_outputs 张图），共享同一 BatchID。
type Asset struct {
	ID             string      `gorm:"type:uuid;primaryKey" json:"id"`
	BatchID        string      `gorm:"type:uuid;index;not null" json:"batch_id"`
	UserID         string      `gorm:"type:uuid;index;not null" json:"user_id"`
	ConversationID string      `gorm:"type:uuid;index" json:"conversation_id"`
	MediaType      MediaType   `gorm:"type:varchar(16);not null" json:"media_type"`
	Provider       string      `gorm:"type:varchar(64)" json:"provider"`
	Model          string      `gorm:"type:varchar(128)" json:"model"`
	Prompt         string      `gorm:"type:text" json:"prompt"`
	AspectRatio    string      `gorm:"type:varchar(16)" json:"aspect_ratio"`
	URL            string      `gorm:"type:varchar(1024)" json:"url"`
	Status         AssetStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	FailureReason  string      `gorm:"type:text" json:"failure_reason,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// TableName 指定表名
func (Asset) TableName() string {
	return "assets"
}

// BeforeCreate 创建前生成 UUID
func (a *Asset) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
