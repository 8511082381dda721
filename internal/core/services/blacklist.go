package services

import (
	"chatwire/internal/core/contracts"
	"chatwire/pkg/logging"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"
)

const blacklistPrefix = "token:blacklist:"

// minBlacklistTTL is the floor on denylist entries: a token revoked
// moments before its natural expiry still stays denylisted for a
// minute, covering clock skew between issuer and validators.
const minBlacklistTTL = time.Minute

// RevocationGuard keeps a denylist of invalidated tokens in an
// expiring store. Entries are keyed by a SHA-256 digest of the raw
// token, so the raw credential never reaches the store.
type RevocationGuard struct {
	log        *slog.Logger
	store      contracts.ExpiringStore
	failClosed bool
}

func NewRevocationGuard(log *slog.Logger, store contracts.ExpiringStore, failClosed bool) *RevocationGuard {
	return &RevocationGuard{
		log:        log,
		store:      store,
		failClosed: failClosed,
	}
}

// Blacklist denylists the token for max(1 minute, ttl). Callers derive
// ttl from the token's remaining validity so the entry never outlives
// the token by more than the floor.
func (g *RevocationGuard) Blacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl < minBlacklistTTL {
		ttl = minBlacklistTTL
	}
	if err := g.store.Set(ctx, g.key(token), ttl); err != nil {
		g.log.ErrorContext(ctx, "revocation - blacklist - store write failed", logging.Err(err))
		return err
	}
	return nil
}

// IsBlacklisted reports whether a non-expired marker exists for the
// token. When the store is unreachable the guard fails open with a
// logged warning unless configured to fail closed; silently treating
// an outage as "not blacklisted" is not acceptable.
func (g *RevocationGuard) IsBlacklisted(ctx context.Context, token string) bool {
	found, err := g.store.Exists(ctx, g.key(token))
	if err != nil {
		if g.failClosed {
			g.log.WarnContext(ctx, "revocation - check - store unavailable, failing closed", logging.Err(err))
			return true
		}
		g.log.WarnContext(ctx, "revocation - check - store unavailable, failing open", logging.Err(err))
		return false
	}
	return found
}

func (g *RevocationGuard) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return blacklistPrefix + hex.EncodeToString(sum[:])
}
