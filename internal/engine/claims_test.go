package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/emailzus/reminder-engine/internal/model"
	"github.com/emailzus/reminder-engine/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClaims(t *testing.T) *Claims {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	adapter, err := redis.NewRedisAdapter(fmt.Sprintf("claims-test-%s", t.Name()), "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return NewClaims(adapter, time.Hour)
}

func TestClaims_DispatchClaim(t *testing.T) {
	claims := newTestClaims(t)
	runAt := date(2026, 3, 10)

	ok, err := claims.ClaimDispatch(1, model.ChannelEmail, runAt)
	require.NoError(t, err)
	assert.True(t, ok)

	// second sweep racing the same run loses
	ok, err = claims.ClaimDispatch(1, model.ChannelEmail, runAt)
	require.NoError(t, err)
	assert.False(t, ok)

	// other channel and other run are independent claims
	ok, err = claims.ClaimDispatch(1, model.ChannelSMS, runAt)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = claims.ClaimDispatch(1, model.ChannelEmail, runAt.Add(24*time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClaims_ReminderLock(t *testing.T) {
	claims := newTestClaims(t)

	release, ok, err := claims.LockReminder(7)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = claims.LockReminder(7)
	require.NoError(t, err)
	assert.False(t, ok)

	// other reminders are unaffected
	_, ok, err = claims.LockReminder(8)
	require.NoError(t, err)
	assert.True(t, ok)

	release()
	_, ok, err = claims.LockReminder(7)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClaims_NilIsPermissive(t *testing.T) {
	var claims *Claims

	ok, err := claims.ClaimDispatch(1, model.ChannelEmail, date(2026, 3, 10))
	require.NoError(t, err)
	assert.True(t, ok)

	release, ok, err := claims.LockReminder(1)
	require.NoError(t, err)
	assert.True(t, ok)
	release()
}
