package domain

import "time"

// ConversationTurn is one stored exchange in the append-only session log.
// Turns are keyed by session and ordered by timestamp; they are used for
// replay/history only and are never read back into retrieval.
type ConversationTurn struct {
	MessageID   string            `json:"message_id"`
	SessionID   string            `json:"session_id"`
	UserMessage string            `json:"user_message"`
	BotResponse string            `json:"bot_response"`
	Timestamp   time.Time         `json:"timestamp"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}
