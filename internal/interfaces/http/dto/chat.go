package dto

// TurnRequest 一轮对话请求
//
// message 与 image_urls 不能同时为空，具体校验在编排器里做。
type TurnRequest struct {
	ConversationID string   `json:"conversation_id" binding:"omitempty,uuid"`
	Message        string   `json:"message"`
	ImageURLs      []string `json:"image_urls" binding:"omitempty,max=4,dive,url"`
}
