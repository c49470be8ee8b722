package gateway

import (
	"errors"
	"fmt"
)

// ErrEndpointMissing is returned for a plain 404 with no document body: the
// agent endpoint itself does not exist.
var ErrEndpointMissing = errors.New("agent endpoint not found (404)")

// RedirectError reports a transport-level redirect, treated as a silent
// hijack to an unrelated authentication surface. Never retried.
type RedirectError struct {
	Location string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("request redirected away to %s", e.Location)
}

// FallbackPageError reports a 404 whose content type indicates a document
// rather than data: a misconfigured endpoint substituted a web page for an
// API reply. The captured body has already been handed to the display sink.
type FallbackPageError struct {
	Body []byte
}

func (e *FallbackPageError) Error() string {
	return "agent endpoint returned an HTML fallback page"
}

// ServiceUnavailableError reports a 5xx status from the agent host.
type ServiceUnavailableError struct {
	Code int
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("agent service unavailable (%d)", e.Code)
}

// RejectedError means the agent explicitly declined the request, or returned
// an envelope the gateway could not make sense of.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string { return e.Message }

// TimedOutError reports a caller-supplied deadline expiring before the agent
// answered.
type TimedOutError struct {
	Agent string
}

func (e *TimedOutError) Error() string {
	return fmt.Sprintf("agent %s did not answer before the deadline", e.Agent)
}

// Reason flattens any gateway error into the single operator-visible status
// message the workflows surface.
func Reason(err error) string {
	if err == nil {
		return ""
	}

	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected.Message
	}
	return err.Error()
}
