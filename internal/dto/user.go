package dto

import "time"

// UserResponse 用户信息（不含密码）
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}
