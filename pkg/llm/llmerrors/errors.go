// Package llmerrors classifies raw backend error text into a stable
// error-kind taxonomy for user display. The orchestrator itself logs and
// propagates adapter messages verbatim; classification happens only at the
// presentation boundary.
package llmerrors

import (
	"context"
	"errors"
	"strings"
)

// Kind is a stable category for a backend failure.
type Kind string

const (
	KindAuth           Kind = "auth"
	KindRateLimit      Kind = "rate_limit"
	KindQuota          Kind = "quota"
	KindContextTooLong Kind = "context_too_long"
	KindNetwork        Kind = "network"
	KindServer         Kind = "server"
	KindUnknown        Kind = "unknown"
)

// Classify maps an adapter error to a Kind by inspecting its message.
// Message formats differ across vendors, so matching is substring-based
// and deliberately permissive; anything unrecognized is KindUnknown.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "401", "403", "unauthorized", "forbidden", "invalid api key", "authentication"):
		return KindAuth
	case containsAny(msg, "429", "rate limit", "too many requests"):
		return KindRateLimit
	case containsAny(msg, "quota", "billing", "insufficient funds", "credit"):
		return KindQuota
	case containsAny(msg, "context length", "context_length", "too long", "maximum context", "token limit"):
		return KindContextTooLong
	case containsAny(msg, "connection", "network", "timeout", "eof", "no such host", "refused"):
		return KindNetwork
	case containsAny(msg, "500", "502", "503", "529", "server error", "overloaded", "internal error"):
		return KindServer
	default:
		return KindUnknown
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
