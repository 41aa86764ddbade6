package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
	"github.com/JCZoom/techpulse-blog/internal/core/ports"
	"github.com/JCZoom/techpulse-blog/internal/infrastructure/resilience"
)

const workerQueueGroup = "workers"

// Queue carries two subjects: shard publication notices, delivered to
// every subscriber, and executed-search events, load-balanced across
// workers.
type Queue struct {
	conn          *nats.Conn
	shardsSubject string
	searchSubject string
	executor      *resilience.Executor
}

var (
	_ ports.EventPublisher  = (*Queue)(nil)
	_ ports.EventSubscriber = (*Queue)(nil)
)

type Subjects struct {
	ShardsPublished string
	SearchExecuted  string
}

func (s Subjects) withDefaults() Subjects {
	if s.ShardsPublished == "" {
		s.ShardsPublished = "shards.published"
	}
	if s.SearchExecuted == "" {
		s.SearchExecuted = "search.executed"
	}
	return s
}

type Options struct {
	ClientName           string
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func New(url string, subjects Subjects) (*Queue, error) {
	return NewWithOptions(url, subjects, Options{})
}

func NewWithOptions(url string, subjects Subjects, options Options) (*Queue, error) {
	clientName := options.ClientName
	if clientName == "" {
		clientName = "techpulse"
	}
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name(clientName),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	subjects = subjects.withDefaults()
	return &Queue{
		conn:          conn,
		shardsSubject: subjects.ShardsPublished,
		searchSubject: subjects.SearchExecuted,
		executor:      options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishSearchExecuted(ctx context.Context, event domain.SearchEvent) error {
	payload, err := encodeSearchEvent(event)
	if err != nil {
		return err
	}
	return q.publish(ctx, q.searchSubject, payload)
}

func (q *Queue) PublishShardsPublished(ctx context.Context, dates []string) error {
	payload, err := encodeShardsPublished(dates, time.Now().UTC())
	if err != nil {
		return err
	}
	return q.publish(ctx, q.shardsSubject, payload)
}

func (q *Queue) publish(ctx context.Context, subject string, payload []byte) error {
	call := func(_ context.Context) error {
		if err := q.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("nats publish %s: %w", subject, err)
		}
		return nil
	}

	var err error
	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return resilience.WrapTemporary("nats publish", err, classifyNATSError)
	}
	return nil
}

// SubscribeSearchExecuted blocks until ctx is done, handing each event to
// handler. Malformed payloads are logged and dropped.
func (q *Queue) SubscribeSearchExecuted(ctx context.Context, handler func(context.Context, domain.SearchEvent) error) error {
	return q.consume(ctx, q.searchSubject, workerQueueGroup, func(msg *nats.Msg) {
		event, err := decodeSearchEvent(msg.Data)
		if err != nil {
			slog.Warn("search_event_decode_failed", "error", err)
			return
		}
		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, event); err != nil {
			slog.Error("search_event_handler_failed", "event_id", event.ID, "error", err)
		}
	})
}

// SubscribeShardsPublished blocks until ctx is done. Every subscriber sees
// every notice so each API instance reloads its own corpus.
func (q *Queue) SubscribeShardsPublished(ctx context.Context, handler func(context.Context, []string) error) error {
	return q.consume(ctx, q.shardsSubject, "", func(msg *nats.Msg) {
		notice, err := decodeShardsPublished(msg.Data)
		if err != nil {
			slog.Warn("shards_notice_decode_failed", "error", err)
			return
		}
		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, notice.Dates); err != nil {
			slog.Error("shards_notice_handler_failed", "dates", notice.Dates, "error", err)
		}
	})
}

func (q *Queue) consume(ctx context.Context, subject, group string, cb nats.MsgHandler) error {
	guarded := func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		cb(msg)
	}

	var (
		sub *nats.Subscription
		err error
	)
	if group != "" {
		sub, err = q.conn.QueueSubscribe(subject, group, guarded)
	} else {
		sub, err = q.conn.Subscribe(subject, guarded)
	}
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	if err := confirmSubscription(sub, q.conn.Flush); err != nil {
		return err
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

type unsubscriber interface {
	Unsubscribe() error
}

// confirmSubscription flushes the subscription to the server and drops it
// again if the flush fails.
func confirmSubscription(sub unsubscriber, flush func() error) error {
	err := flush()
	if err == nil {
		return nil
	}
	if unsubErr := sub.Unsubscribe(); unsubErr != nil {
		return fmt.Errorf("nats flush: %w (unsubscribe: %v)", err, unsubErr)
	}
	return fmt.Errorf("nats flush: %w", err)
}
