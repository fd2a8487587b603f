package dto

// MemoryItem 一条待追加的偏好记忆
//
// text 类型填 text 字段，image 类型填 image_url 字段。
type MemoryItem struct {
	Type     string `json:"type" binding:"required,oneof=text image"`
	Text     string `json:"text" binding:"max=500"`
	ImageURL string `json:"image_url" binding:"omitempty,url"`
}

// AppendMemoryRequest 手动追加偏好记忆请求
type AppendMemoryRequest struct {
	Items []MemoryItem `json:"items" binding:"required,min=1,max=25,dive"`
}
