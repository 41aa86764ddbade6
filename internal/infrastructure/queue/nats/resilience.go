package nats

import (
	"context"
	"errors"

	"github.com/nats-io/nats.go"

	"github.com/JCZoom/techpulse-blog/internal/infrastructure/resilience"
)

var (
	// transientNATSErrors clear up once the client reconnects.
	transientNATSErrors = []error{
		nats.ErrNoServers,
		nats.ErrTimeout,
		nats.ErrConnectionClosed,
		nats.ErrDisconnected,
		nats.ErrReconnectBufExceeded,
	}
	// rejectedNATSErrors are caused by the message, not the broker.
	rejectedNATSErrors = []error{
		nats.ErrMaxPayload,
		nats.ErrBadSubject,
	}
)

func classifyNATSError(err error) resilience.ErrorClassification {
	switch {
	case err == nil:
		return resilience.ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.ErrorClassification{}
	case resilience.IsCircuitOpen(err), matchesAny(err, transientNATSErrors):
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	case matchesAny(err, rejectedNATSErrors):
		return resilience.ErrorClassification{}
	default:
		return resilience.ErrorClassification{RecordFailure: true}
	}
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
