package resilience

import (
	"context"
	"errors"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromHTTPStatus_Classification(t *testing.T) {
	tests := []struct {
		status int
		kind   FailureKind
	}{
		{429, KindRateLimited},
		{401, KindBlocked},
		{403, KindBlocked},
		{500, KindUnavailable},
		{502, KindUnavailable},
		{404, KindUnavailable},
	}

	for _, tt := range tests {
		f := FromHTTPStatus(errors.New("boom"), tt.status)
		assert.Equal(t, tt.kind, f.Kind, "status %d", tt.status)
		assert.Equal(t, tt.status, f.StatusCode)
	}
}

func TestKindOf_WrappedFailure(t *testing.T) {
	err := eris.Wrap(Blocked(errors.New("forbidden"), 403), "source: search")
	assert.Equal(t, KindBlocked, KindOf(err))
	assert.True(t, IsBlocked(err))
	assert.False(t, IsRateLimited(err))
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, KindUnavailable, KindOf(errors.New("something broke")))
}

func TestFailure_Unwrap(t *testing.T) {
	inner := errors.New("quota exceeded")
	f := RateLimited(inner)

	require.True(t, errors.Is(f, inner))
	assert.True(t, IsRateLimited(f))
	assert.Equal(t, 429, f.StatusCode)
}

func TestIsSchemaError(t *testing.T) {
	assert.True(t, IsSchemaError(SchemaError(errors.New("bad json"))))
	assert.False(t, IsSchemaError(Unavailable(errors.New("down"))))
	assert.False(t, IsSchemaError(nil))
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.True(t, IsTransient(Unavailable(errors.New("down"))))
	assert.False(t, IsTransient(Blocked(errors.New("forbidden"), 403)))
	assert.False(t, IsTransient(RateLimited(errors.New("slow down"))))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(syscall.ECONNRESET))
	assert.True(t, IsTransient(errors.New("read tcp: connection reset by peer")))
	assert.False(t, IsTransient(errors.New("invalid credentials")))
}

func TestFailureKind_String(t *testing.T) {
	assert.Equal(t, "unavailable", KindUnavailable.String())
	assert.Equal(t, "blocked", KindBlocked.String())
	assert.Equal(t, "rate_limited", KindRateLimited.String())
	assert.Equal(t, "schema_error", KindSchema.String())
}
