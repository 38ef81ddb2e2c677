package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/emailzus/reminder-engine/internal/model"
	"github.com/emailzus/reminder-engine/pkg/redis"
)

// Claims bounds double-sends from overlapping sweeps with two redis gates:
// a short advisory lock per reminder, and a per-(reminder, channel, run)
// idempotency key claimed before each dispatch. A nil *Claims disables both
// gates and every call reports success, so the engine degrades to
// at-least-once when redis is not configured.
type Claims struct {
	store    redis.RedisAdapter
	claimTTL time.Duration
	lockTTL  time.Duration
}

func NewClaims(store redis.RedisAdapter, claimTTL time.Duration) *Claims {
	return &Claims{
		store:    store,
		claimTTL: claimTTL,
		lockTTL:  time.Minute,
	}
}

// ClaimDispatch atomically claims the (reminder, channel, scheduled run)
// triple. The first caller wins; a second sweep racing on the same run sees
// false and must not dispatch.
func (c *Claims) ClaimDispatch(reminderID int64, channel model.Channel, runAt time.Time) (bool, error) {
	if c == nil || c.store == nil {
		return true, nil
	}
	return c.store.SetNX("dispatch_claim:"+dispatchKey(reminderID, channel, runAt), []byte("1"), c.claimTTL)
}

// LockReminder takes a short advisory lock around one reminder's iteration.
// The returned release is safe to call when ok is false.
func (c *Claims) LockReminder(reminderID int64) (release func(), ok bool, err error) {
	if c == nil || c.store == nil {
		return func() {}, true, nil
	}

	key := fmt.Sprintf("reminder_lock:%d", reminderID)
	ok, err = c.store.SetNX(key, []byte("1"), c.lockTTL)
	if err != nil || !ok {
		return func() {}, ok, err
	}
	return func() { _ = c.store.Del(key) }, true, nil
}

func dispatchKey(reminderID int64, channel model.Channel, runAt time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%s:%d", reminderID, channel, runAt.Unix())))
	return hex.EncodeToString(sum[:])
}
