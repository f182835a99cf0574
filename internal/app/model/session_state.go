package model

import "time"

// SessionState is a durable JSON blob for per-session state (cart, address flow)
// used when Redis is not configured.
type SessionState struct {
	Namespace string    `gorm:"primaryKey;size:32"`
	Key       string    `gorm:"primaryKey;size:128;column:session_key"`
	Data      string    `gorm:"type:text;not null"`
	ExpiresAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (SessionState) TableName() string {
	return "session_states"
}
