package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestDeduper_AcquireOnce(t *testing.T) {
	mr, rdb := newRedis(t)
	d := NewDeduper(rdb, time.Minute, zap.NewNop())
	ctx := context.Background()

	assert.True(t, d.AcquireOnce(ctx, "seed", "p1"))
	assert.False(t, d.AcquireOnce(ctx, "seed", "p1"))
	assert.True(t, d.AcquireOnce(ctx, "seed", "p2"))
	assert.True(t, d.AcquireOnce(ctx, "other", "p1"))

	d.Release(ctx, "seed", "p1")
	assert.True(t, d.AcquireOnce(ctx, "seed", "p1"))

	mr.FastForward(2 * time.Minute)
	assert.True(t, d.AcquireOnce(ctx, "seed", "p2"))
}

func TestDeduper_RedisDownAllows(t *testing.T) {
	mr, rdb := newRedis(t)
	d := NewDeduper(rdb, time.Minute, zap.NewNop())
	mr.Close()

	assert.True(t, d.AcquireOnce(context.Background(), "seed", "p1"))
}

func TestRetryCounter(t *testing.T) {
	mr, rdb := newRedis(t)
	r := NewRetryCounter(rdb, time.Hour)
	ctx := context.Background()
	key := FormatRetryKey("recalc", "p1")
	assert.Equal(t, "retry:recalc:p1", key)

	n, err := r.Get(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, n)

	for i := int64(1); i <= 3; i++ {
		n, err = r.IncrementAndGet(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	assert.Equal(t, time.Hour, mr.TTL(key))

	require.NoError(t, r.Reset(ctx, key))
	n, err = r.Get(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIsRetryableError(t *testing.T) {
	var syntaxErr error = &json.SyntaxError{}
	tests := []struct {
		name      string
		err       error
		retryable bool
		kind      string
	}{
		{"nil", nil, false, ""},
		{"json", fmt.Errorf("decode: %w", syntaxErr), false, "json_decode_error"},
		{"no rows", fmt.Errorf("find: %w", pgx.ErrNoRows), false, "not_found"},
		{"unique", &pgconn.PgError{Code: "23505"}, false, "duplicate_key"},
		{"fk", &pgconn.PgError{Code: "23503"}, false, "constraint_violation"},
		{"serialization", &pgconn.PgError{Code: "40001"}, true, "db_transient"},
		{"deadline", context.DeadlineExceeded, true, "timeout"},
		{"canceled", context.Canceled, false, "context_canceled"},
		{"agent", fmt.Errorf("call: %w", ErrAgentUnavailable), true, "agent_service_unavailable"},
		{"unknown", errors.New("boom"), false, "unknown_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retryable, kind := IsRetryableError(tt.err)
			assert.Equal(t, tt.retryable, retryable)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestShouldRetry(t *testing.T) {
	assert.True(t, ShouldRetry(1, 3, true))
	assert.True(t, ShouldRetry(3, 3, true))
	assert.False(t, ShouldRetry(4, 3, true))
	assert.False(t, ShouldRetry(1, 3, false))
}

func signToken(memberID uuid.UUID, role, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   memberID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}).SignedString([]byte(secret))
}

func TestJWT_RoundTrip(t *testing.T) {
	id := uuid.New()
	token, err := signToken(id, "professor", "secret", time.Hour)
	require.NoError(t, err)

	gotID, role, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, "professor", role)
}

func TestJWT_Rejects(t *testing.T) {
	id := uuid.New()

	wrongSecret, err := signToken(id, "member", "secret", time.Hour)
	require.NoError(t, err)
	_, _, err = ParseJWT(wrongSecret, "other")
	assert.Error(t, err)

	expired, err := signToken(id, "member", "secret", -time.Minute)
	require.NoError(t, err)
	_, _, err = ParseJWT(expired, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	badSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, _, err = ParseJWT(badSub, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidSubject)
}

func TestExtractBearer(t *testing.T) {
	assert.Equal(t, "abc", ExtractBearer("Bearer abc"))
	assert.Equal(t, "abc", ExtractBearer("bearer abc"))
	assert.Empty(t, ExtractBearer("Basic abc"))
	assert.Empty(t, ExtractBearer(""))
}
