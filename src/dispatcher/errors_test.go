package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(errors.New("Rate limit reached for model")))
	assert.True(t, isTransient(errors.New("status 429")))
	assert.True(t, isTransient(errors.New("request timeout")))
	assert.True(t, isTransient(errors.New("connect ETIMEDOUT")))
	assert.True(t, isTransient(fmt.Errorf("call: %w", context.DeadlineExceeded)))
	assert.True(t, isTransient(&openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "slow down"}))

	assert.False(t, isTransient(nil))
	assert.False(t, isTransient(errors.New("invalid api key")))
	assert.False(t, isTransient(&openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "bad key"}))
	assert.False(t, isTransient(&InvalidResponseError{Provider: "A"}))
}
