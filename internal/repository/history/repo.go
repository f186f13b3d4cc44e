package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neo-assistant/portfolio-chat/internal/domain"
	"github.com/neo-assistant/portfolio-chat/internal/logger"
)

// store is the consumer interface for the conversation log (ISP).
type store interface {
	LPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LLen(ctx context.Context, key string) (int64, error)
}

// Repo is the append-only conversation log. Turns are LPUSH'd so index 0 is
// always the newest; reads reverse back to chronological order.
type Repo struct {
	store     store
	keyPrefix string
	now       func() time.Time
}

// New creates a conversation history repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix, now: time.Now}
}

// Append stores one exchange and returns the generated message ID. Turns are
// never updated or deleted.
func (r *Repo) Append(
	ctx context.Context, sessionID, userMessage, botResponse string, metadata map[string]string,
) (string, error) {
	turn := domain.ConversationTurn{
		MessageID:   uuid.NewString(),
		SessionID:   sessionID,
		UserMessage: userMessage,
		BotResponse: botResponse,
		Timestamp:   r.now().UTC(),
		Metadata:    metadata,
	}

	data, err := json.Marshal(turn)
	if err != nil {
		return "", fmt.Errorf("marshal turn: %w", err)
	}

	key := r.sessionKey(sessionID)
	if err := r.store.LPush(ctx, key, string(data)); err != nil {
		return "", fmt.Errorf("lpush %s: %w", key, err)
	}
	return turn.MessageID, nil
}

// History returns the most recent `limit` turns in chronological order
// (oldest first). The log is newest-first on disk, so the fetched window is
// reversed before returning.
func (r *Repo) History(ctx context.Context, sessionID string, limit int) ([]domain.ConversationTurn, error) {
	if limit <= 0 {
		limit = 10
	}

	key := r.sessionKey(sessionID)
	raw, err := r.store.LRange(ctx, key, 0, int64(limit)-1)
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}

	turns := make([]domain.ConversationTurn, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var turn domain.ConversationTurn
		if err := json.Unmarshal([]byte(raw[i]), &turn); err != nil {
			// A single corrupt entry should not lose the whole session.
			logger.FromContext(ctx).Warn("skipping corrupt conversation turn",
				zap.String("session_id", sessionID), zap.Error(err))
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Count returns the number of stored turns for a session.
func (r *Repo) Count(ctx context.Context, sessionID string) (int64, error) {
	n, err := r.store.LLen(ctx, r.sessionKey(sessionID))
	if err != nil {
		return 0, fmt.Errorf("llen %s: %w", sessionID, err)
	}
	return n, nil
}

func (r *Repo) sessionKey(sessionID string) string {
	return fmt.Sprintf("%ssession:%s", r.keyPrefix, sessionID)
}
