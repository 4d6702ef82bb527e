package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

type failureClass int

const (
	failureParse failureClass = iota
	failureTimeout
	failureRateLimit
	failureServer
	failureBadRequest
)

// Executor drives a Caller with retries. Transport failures back off
// exponentially up to MaxDelay, rate limits back off harder, and bad-request
// errors never retry: resending an identical malformed request cannot succeed.
type Executor struct {
	Caller       Caller
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration

	sleep func(time.Duration)
}

// Metrics records how much work one extraction took.
type Metrics struct {
	Attempts       int
	ContentRetries int
}

func NewExecutor(caller Caller) *Executor {
	return &Executor{
		Caller:       caller,
		MaxAttempts:  10,
		InitialDelay: 1 * time.Second,
		MaxDelay:     60 * time.Second,
		sleep:        time.Sleep,
	}
}

// Extract runs the oracle until it produces JSON that unmarshals into out and
// passes validate. Malformed model output counts as a content retry with
// corrective feedback appended to the prompt.
func (e *Executor) Extract(ctx context.Context, name, prompt string, imagePNG []byte, out any, validate func() error) (Metrics, error) {
	metrics := Metrics{}
	delay := e.InitialDelay
	feedback := ""
	var lastErr error

	for attempt := 1; attempt <= e.MaxAttempts; attempt++ {
		metrics.Attempts = attempt
		if err := ctx.Err(); err != nil {
			return metrics, err
		}

		fullPrompt := prompt
		if feedback != "" {
			fullPrompt += "\n\n" + feedback
		}

		raw, err := e.Caller.ExtractJSON(ctx, fullPrompt, imagePNG)
		if err != nil {
			class := classifyTransportError(err)
			if class == failureBadRequest {
				return metrics, fmt.Errorf("%s bad request, not retrying: %w", name, err)
			}
			lastErr = err
			if attempt < e.MaxAttempts {
				e.sleep(delay)
				delay = nextDelay(class, delay, e.MaxDelay)
				continue
			}
			break
		}

		clean := stripCodeFences(raw)
		if clean == "" {
			metrics.ContentRetries++
			feedback = "Your previous response was empty. Respond with valid JSON."
			lastErr = fmt.Errorf("empty response")
			continue
		}
		if err := json.Unmarshal([]byte(clean), out); err != nil {
			metrics.ContentRetries++
			feedback = "Your previous response was not valid JSON. Respond with only valid JSON."
			lastErr = err
			continue
		}
		if validate != nil {
			if err := validate(); err != nil {
				metrics.ContentRetries++
				feedback = fmt.Sprintf("Your response failed validation: %s. Fix these issues.", err)
				lastErr = err
				continue
			}
		}
		return metrics, nil
	}
	return metrics, fmt.Errorf("%s failed after %d attempts: %w", name, metrics.Attempts, lastErr)
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

func classifyTransportError(err error) failureClass {
	if errors.Is(err, context.DeadlineExceeded) {
		return failureTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return failureTimeout
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate"):
		return failureRateLimit
	case strings.Contains(msg, "400") || strings.Contains(msg, "invalid_request") || strings.Contains(msg, "invalid_type"):
		return failureBadRequest
	case strings.Contains(msg, "500") || strings.Contains(msg, "internal"):
		return failureServer
	default:
		return failureServer
	}
}

// nextDelay grows the backoff: threefold after a rate limit, otherwise
// doubled, capped at max.
func nextDelay(class failureClass, current, max time.Duration) time.Duration {
	mult := time.Duration(2)
	if class == failureRateLimit {
		mult = 3
	}
	next := current * mult
	if next > max {
		next = max
	}
	return next
}
