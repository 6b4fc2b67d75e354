package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

// ErrAllProvidersFailed is returned once every provider of every pass is exhausted.
var ErrAllProvidersFailed = errors.New("all providers failed")

// InvalidResponseError is produced when a backend answered but the answer
// did not pass validation.
type InvalidResponseError struct {
	Provider   string
	Validation models.Validation
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response from %s: %s (score %.2f)", e.Provider, e.Validation.Reason, e.Validation.Score)
}

var transientMarkers = []string{"rate limit", "429", "timeout", "etimedout"}

// isTransient reports whether err is a rate-limit or timeout failure that is
// worth retrying against the same provider.
func isTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
