package dispatcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Ceiling(t *testing.T) {
	r := NewRateLimiter(map[string]int{"groq": 2}, 30, time.Minute)

	assert.True(t, r.Available("groq"))
	assert.True(t, r.Check("groq"))
	assert.True(t, r.Check("groq"))
	assert.False(t, r.Available("groq"))
	assert.False(t, r.Check("groq"))
	assert.Equal(t, 2, r.Count("groq"), "count never exceeds the ceiling")
}

func TestRateLimiter_WindowResets(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRateLimiter(map[string]int{"groq": 1}, 30, time.Minute)
	r.now = func() time.Time { return now }

	assert.True(t, r.Check("groq"))
	assert.False(t, r.Check("groq"))

	now = now.Add(time.Minute)
	assert.True(t, r.Available("groq"))
	assert.True(t, r.Check("groq"))
	assert.Equal(t, 1, r.Count("groq"))
}

func TestRateLimiter_DefaultCeiling(t *testing.T) {
	r := NewRateLimiter(nil, 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, r.Check("unknown"))
	}
	assert.False(t, r.Check("unknown"))
}

func TestRateLimiter_ServicesAreIndependent(t *testing.T) {
	r := NewRateLimiter(map[string]int{"groq": 1, "openrouter": 1}, 30, time.Minute)

	assert.True(t, r.Check("groq"))
	assert.True(t, r.Available("openrouter"))
	assert.Zero(t, r.Count("openrouter"))
}
