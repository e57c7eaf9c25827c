package inbox

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Redis keys for poller dedupe state. The v1 web UI kept the same state in
// localStorage under gd_inbox_* keys.
const (
	seenIDsKey       = "support_ai_inbox_seen_message_ids"
	hiddenThreadsKey = "support_ai_inbox_hidden_threads"
	lastSeenKey      = "support_ai_inbox_last_seen_ms"
)

// State holds the poller's dedupe state in Redis: a seen-message-id set, a
// hidden-thread set, and the last-seen watermark in epoch millis.
type State struct {
	client   *redis.Client
	capacity int
}

// NewState constructs the dedupe state. capacity bounds the seen-id set.
func NewState(client *redis.Client, capacity int) *State {
	if capacity <= 0 {
		capacity = 2500
	}
	return &State{client: client, capacity: capacity}
}

// LastSeen returns the watermark in epoch millis, zero when unset.
func (s *State) LastSeen(ctx context.Context) (int64, error) {
	val, err := s.client.Get(ctx, lastSeenKey).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	ms, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, nil
	}
	return ms, nil
}

// SetLastSeen advances the watermark.
func (s *State) SetLastSeen(ctx context.Context, ms int64) error {
	return s.client.Set(ctx, lastSeenKey, strconv.FormatInt(ms, 10), 0).Err()
}

// MarkSeen records message ids as processed and trims the set to capacity.
func (s *State) MarkSeen(ctx context.Context, messageIDs ...string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	members := make([]any, len(messageIDs))
	for i, id := range messageIDs {
		members[i] = id
	}
	if err := s.client.SAdd(ctx, seenIDsKey, members...).Err(); err != nil {
		return err
	}
	size, err := s.client.SCard(ctx, seenIDsKey).Result()
	if err != nil {
		return err
	}
	if over := size - int64(s.capacity); over > 0 {
		return s.client.SPopN(ctx, seenIDsKey, over).Err()
	}
	return nil
}

// Seen reports whether a message id was already processed.
func (s *State) Seen(ctx context.Context, messageID string) (bool, error) {
	return s.client.SIsMember(ctx, seenIDsKey, messageID).Result()
}

// HideThread marks a thread as hidden from inbox views.
func (s *State) HideThread(ctx context.Context, threadID string) error {
	return s.client.SAdd(ctx, hiddenThreadsKey, threadID).Err()
}

// HiddenThreads returns the hidden-thread set.
func (s *State) HiddenThreads(ctx context.Context) (map[string]bool, error) {
	ids, err := s.client.SMembers(ctx, hiddenThreadsKey).Result()
	if err != nil {
		return nil, err
	}
	hidden := make(map[string]bool, len(ids))
	for _, id := range ids {
		hidden[id] = true
	}
	return hidden, nil
}

// Reset clears the watermark and seen set so the next poll refetches from
// scratch. Hidden threads stay hidden.
func (s *State) Reset(ctx context.Context) error {
	return s.client.Del(ctx, lastSeenKey, seenIDsKey).Err()
}
