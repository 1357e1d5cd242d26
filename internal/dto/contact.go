package dto

import "time"

// ── 留言模块 DTO ──

// ContactRequest 联系表单请求
type ContactRequest struct {
	Name    string `json:"name"    binding:"required,max=100"`
	Email   string `json:"email"   binding:"required,email,max=255"`
	Subject string `json:"subject" binding:"required,max=200"`
	Message string `json:"message" binding:"required,max=5000"`
}

// ContactListRequest 留言列表筛选
type ContactListRequest struct {
	PaginationRequest
	UnreadOnly bool `form:"unread"`
}

// ContactMessageResponse 留言详情
type ContactMessageResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
