package services

import (
	"chatwire/internal/core/contracts"
	"chatwire/internal/core/domain"
	"chatwire/pkg/logging"
	"context"
	"encoding/json"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultPresenceTimeout = 120 * time.Second
	defaultSweepInterval   = 30 * time.Second
	presenceShardCount     = 16
)

// presenceShard holds a slice of the last-heartbeat map so heartbeats
// for different users do not serialize on one lock.
type presenceShard struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]time.Time
}

// PresenceTracker owns the authoritative notion of "is user X online".
// An entry exists for a user iff the tracker currently believes them
// online-within-timeout. State lives only in process memory: after a
// restart everyone is offline until their next heartbeat.
//
// Transition detection is the core invariant here: the tracker publishes
// on confirmed state changes only, never on every heartbeat, so the
// online:<userID> topic carries O(transitions) traffic.
type PresenceTracker struct {
	log       *slog.Logger
	users     domain.UserRepository
	broadcast contracts.Broadcaster
	timeout   time.Duration
	sweep     time.Duration
	shards    [presenceShardCount]*presenceShard
}

func NewPresenceTracker(
	log *slog.Logger,
	users domain.UserRepository,
	broadcast contracts.Broadcaster,
	timeout time.Duration,
	sweepInterval time.Duration,
) *PresenceTracker {
	if timeout <= 0 {
		timeout = defaultPresenceTimeout
	}
	if sweepInterval <= 0 {
		sweepInterval = defaultSweepInterval
	}
	t := &PresenceTracker{
		log:       log,
		users:     users,
		broadcast: broadcast,
		timeout:   timeout,
		sweep:     sweepInterval,
	}
	for i := range t.shards {
		t.shards[i] = &presenceShard{entries: make(map[uuid.UUID]time.Time)}
	}
	return t
}

func (t *PresenceTracker) shard(id uuid.UUID) *presenceShard {
	h := fnv.New32a()
	h.Write(id[:])
	return t.shards[h.Sum32()%presenceShardCount]
}

// Heartbeat records that the user is alive now. Only the offline→online
// edge is announced; a heartbeat inside the timeout window refreshes
// the in-memory timestamp and the durable last_seen_at without
// publishing. Heartbeat never fails the caller: presence is advisory
// and storage or broker errors are logged and swallowed.
func (t *PresenceTracker) Heartbeat(ctx context.Context, userID uuid.UUID) {
	sh := t.shard(userID)
	sh.mu.Lock()
	last, ok := sh.entries[userID]
	wasOnline := ok && time.Since(last) < t.timeout
	sh.entries[userID] = time.Now()
	sh.mu.Unlock()

	if wasOnline {
		// Refresh only; publishing here would turn every heartbeat
		// interval into a notification storm.
		t.mirror(ctx, userID, true)
		return
	}
	t.announce(ctx, userID, true)
}

// OnConnected is the transport-level connect hook. Unlike Heartbeat it
// re-announces even when the user is already online; consumers use the
// connect announcement as a sync point.
func (t *PresenceTracker) OnConnected(ctx context.Context, userID uuid.UUID) {
	sh := t.shard(userID)
	sh.mu.Lock()
	sh.entries[userID] = time.Now()
	sh.mu.Unlock()
	t.log.InfoContext(ctx, "presence - connected", logging.User(userID))
	t.announce(ctx, userID, true)
}

// OnDisconnected is the transport-level disconnect hook. The transport
// says the session ended, so the entry goes away even if a heartbeat is
// still fresh.
func (t *PresenceTracker) OnDisconnected(ctx context.Context, userID uuid.UUID) {
	sh := t.shard(userID)
	sh.mu.Lock()
	delete(sh.entries, userID)
	sh.mu.Unlock()
	t.log.InfoContext(ctx, "presence - disconnected", logging.User(userID))
	t.announce(ctx, userID, false)
}

// IsOnline reports whether the user has a fresh entry. A stale entry
// found here is evicted lazily but NOT announced; the sweep is the only
// path that publishes timeout-driven offline transitions, so lazy
// eviction and the sweep cannot both notify for the same expiry.
func (t *PresenceTracker) IsOnline(userID uuid.UUID) bool {
	sh := t.shard(userID)
	sh.mu.RLock()
	last, ok := sh.entries[userID]
	sh.mu.RUnlock()
	if !ok {
		return false
	}
	if time.Since(last) < t.timeout {
		return true
	}
	sh.mu.Lock()
	// Re-check under the write lock; a heartbeat may have refreshed it.
	if cur, ok := sh.entries[userID]; ok && time.Since(cur) >= t.timeout {
		delete(sh.entries, userID)
	}
	sh.mu.Unlock()
	return false
}

// OnlineUsers returns a snapshot of every user with a fresh entry.
// Pure read, no eviction.
func (t *PresenceTracker) OnlineUsers() []uuid.UUID {
	var online []uuid.UUID
	now := time.Now()
	for _, sh := range t.shards {
		sh.mu.RLock()
		for id, last := range sh.entries {
			if now.Sub(last) < t.timeout {
				online = append(online, id)
			}
		}
		sh.mu.RUnlock()
	}
	return online
}

// Run drives the periodic sweep until ctx is cancelled. The sweep is
// the only detector of silent disconnects, where heartbeats simply stop
// arriving.
func (t *PresenceTracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.sweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			t.log.Info("presence - sweep stopped")
			return
		case <-ticker.C:
			t.sweepStale(ctx)
		}
	}
}

// sweepStale expires every entry older than the timeout and announces
// exactly one offline transition per expired user. Stale entries are
// removed under the shard lock, so a concurrent heartbeat either lands
// before the removal (entry fresh again, skipped) or after it (a new
// online transition of its own).
func (t *PresenceTracker) sweepStale(ctx context.Context) {
	var expired []uuid.UUID
	for _, sh := range t.shards {
		sh.mu.Lock()
		for id, last := range sh.entries {
			if time.Since(last) >= t.timeout {
				delete(sh.entries, id)
				expired = append(expired, id)
			}
		}
		sh.mu.Unlock()
	}
	for _, id := range expired {
		t.log.InfoContext(ctx, "presence - sweep - heartbeat timeout", logging.User(id))
		t.announce(ctx, id, false)
	}
}

// announce mirrors the transition into storage and publishes it on the
// user's online topic. Neither write is transactional with the
// in-memory state; a crash in between leaves the mirror briefly behind,
// which is accepted.
func (t *PresenceTracker) announce(ctx context.Context, userID uuid.UUID, online bool) {
	now := t.mirror(ctx, userID, online)
	update := domain.PresenceUpdate{
		UserID:     userID,
		IsOnline:   online,
		LastSeenAt: now,
	}
	raw, err := json.Marshal(update)
	if err != nil {
		t.log.ErrorContext(ctx, "presence - announce - marshal failed", logging.User(userID), logging.Err(err))
		return
	}
	topic := domain.TopicOnline(userID)
	if err := t.broadcast.Publish(ctx, topic, raw); err != nil {
		t.log.ErrorContext(ctx, "presence - announce - publish failed", logging.User(userID), logging.Topic(topic), logging.Err(err))
		return
	}
	t.log.DebugContext(ctx, "presence - announce - published", logging.User(userID), logging.Online(online))
}

// mirror does the read-modify-write against the durable projection and
// returns the timestamp it used. Storage errors are logged, never
// propagated.
func (t *PresenceTracker) mirror(ctx context.Context, userID uuid.UUID, online bool) time.Time {
	now := time.Now().UTC()
	user, err := t.users.GetUserByID(ctx, userID)
	if err != nil {
		t.log.ErrorContext(ctx, "presence - mirror - load user failed", logging.User(userID), logging.Err(err))
		return now
	}
	user.IsOnline = online
	user.LastSeenAt = &now
	if err := t.users.SaveUser(ctx, user); err != nil {
		t.log.ErrorContext(ctx, "presence - mirror - save user failed", logging.User(userID), logging.Err(err))
	}
	return now
}
