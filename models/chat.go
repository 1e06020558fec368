package models

import "time"

// Response sources reported to the client so it can indicate degraded
// (backup) service.
const (
	SourceGemini = "gemini"
	SourceBackup = "backup"
)

// ChatExchange is one accepted user message and the answer it got.
// Append-only: records are never mutated after creation. MessageCount is
// a snapshot of the user's ledger count at commit time.
type ChatExchange struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       string    `json:"user_id" gorm:"index"`
	Message      string    `json:"message"`
	Response     string    `json:"response"`
	Source       string    `json:"source"` // "gemini" or "backup"
	MessageCount int       `json:"message_count"`
	Timestamp    time.Time `json:"timestamp" gorm:"index"`
}

// TableName specifies the table name for the ChatExchange model.
func (ChatExchange) TableName() string {
	return "chat_exchanges"
}
