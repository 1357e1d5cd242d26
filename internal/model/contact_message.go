package model

import "time"

// ContactMessage 联系留言 (表 contact_messages)
type ContactMessage struct {
	ContactMessageID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"contact_message_id"`
	Name             string    `gorm:"type:varchar(100);not null"                     json:"name"`
	Email            string    `gorm:"type:varchar(255);not null"                     json:"email"`
	Subject          string    `gorm:"type:varchar(200);not null"                     json:"subject"`
	Message          string    `gorm:"type:text;not null"                             json:"message"`
	IsRead           bool      `gorm:"not null;default:false"                         json:"is_read"`
	CreatedAt        time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (ContactMessage) TableName() string { return "contact_messages" }
