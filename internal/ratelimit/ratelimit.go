// Package ratelimit caps how many AI requests one run may issue.
package ratelimit

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/deusflow/newshub/internal/logger"
)

// AIRateLimiter counts Gemini requests against a fixed budget. A budget of
// zero means unlimited. Log defaults to the package logger.
type AIRateLimiter struct {
	Log *slog.Logger

	mu          sync.Mutex
	geminiCount int
	maxGemini   int
	denied      int
}

func NewAIRateLimiter(maxGemini int) *AIRateLimiter {
	return &AIRateLimiter{maxGemini: maxGemini}
}

// CanUseGemini checks if we can make a Gemini request
func (rl *AIRateLimiter) CanUseGemini() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.maxGemini > 0 && rl.geminiCount >= rl.maxGemini {
		rl.denied++
		rl.logger().Debug("Gemini budget exhausted", "used", rl.geminiCount, "limit", rl.maxGemini)
		return false
	}
	return true
}

// UseGemini records one request, failing when the budget is spent.
func (rl *AIRateLimiter) UseGemini() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.maxGemini > 0 && rl.geminiCount >= rl.maxGemini {
		return fmt.Errorf("gemini rate limit exceeded (%d/%d)", rl.geminiCount, rl.maxGemini)
	}

	rl.geminiCount++
	rl.logger().Debug("AI usage", "gemini", rl.geminiCount, "limit", rl.maxGemini)
	return nil
}

func (rl *AIRateLimiter) logger() *slog.Logger {
	if rl.Log != nil {
		return rl.Log
	}
	return logger.Logger
}

// GetStats returns current rate limiter statistics
func (rl *AIRateLimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]interface{}{
		"gemini_used":   rl.geminiCount,
		"gemini_limit":  rl.maxGemini,
		"gemini_denied": rl.denied,
	}
}
