package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudget(t *testing.T) {
	rl := NewAIRateLimiter(2)

	for i := 0; i < 2; i++ {
		require.True(t, rl.CanUseGemini())
		require.NoError(t, rl.UseGemini())
	}
	assert.False(t, rl.CanUseGemini())
	assert.Error(t, rl.UseGemini())

	stats := rl.GetStats()
	assert.Equal(t, 2, stats["gemini_used"])
	assert.Equal(t, 1, stats["gemini_denied"])
}

func TestUnlimited(t *testing.T) {
	rl := NewAIRateLimiter(0)
	for i := 0; i < 10; i++ {
		require.NoError(t, rl.UseGemini())
	}
	assert.True(t, rl.CanUseGemini())
}
