package models

import "time"

// One relayed chat message. Content is not stored, only its size and outcome.
type ChatMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"index;not null" json:"user_id"`
	SessionID  string    `gorm:"index" json:"session_id,omitempty"`
	Length     int       `json:"length"`
	StatusCode int       `json:"status_code"`
	LatencyMs  int       `json:"latency_ms"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
