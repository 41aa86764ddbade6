package httpadapter

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	msgRateLimited = "rate limit exceeded"
	msgOverloaded  = "server is overloaded, retry later"
	msgAbandoned   = "request cancelled while waiting for capacity"
)

// rateLimitMiddleware applies one token bucket to the whole API. rps <= 0
// disables it.
func rateLimitMiddleware(next http.Handler, rps float64, burst int) http.Handler {
	if rps <= 0 {
		return next
	}
	limiter := rate.NewLimiter(rate.Limit(rps), max(burst, 1))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wait, ok := admit(limiter); !ok {
			writeOverload(w, http.StatusTooManyRequests, wait, msgRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// admit takes a token without waiting. On refusal it reports how long
// until one would be available.
func admit(limiter *rate.Limiter) (time.Duration, bool) {
	res := limiter.Reserve()
	if !res.OK() {
		return time.Second, false
	}
	wait := res.Delay()
	if wait > 0 {
		res.Cancel()
		return wait, false
	}
	return 0, true
}

// gate bounds concurrent requests. A request queues for at most wait.
type gate struct {
	slots chan struct{}
	wait  time.Duration
}

func newGate(size int, wait time.Duration) *gate {
	return &gate{slots: make(chan struct{}, size), wait: wait}
}

func (g *gate) enter(ctx context.Context) error {
	select {
	case g.slots <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(g.wait)
	defer timer.Stop()
	select {
	case g.slots <- struct{}{}:
		return nil
	case <-timer.C:
		return context.DeadlineExceeded
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *gate) leave() { <-g.slots }

// backpressureMiddleware admits at most maxInFlight concurrent requests;
// a request that cannot get a slot within wait is rejected with 503.
func backpressureMiddleware(next http.Handler, maxInFlight int, wait time.Duration) http.Handler {
	if maxInFlight <= 0 {
		return next
	}
	g := newGate(maxInFlight, wait)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := g.enter(r.Context()); err != nil {
			msg := msgOverloaded
			if r.Context().Err() != nil {
				msg = msgAbandoned
			}
			writeOverload(w, http.StatusServiceUnavailable, time.Second, msg)
			return
		}
		defer g.leave()
		next.ServeHTTP(w, r)
	})
}

func writeOverload(w http.ResponseWriter, status int, retryAfter time.Duration, msg string) {
	seconds := max(int(math.Ceil(retryAfter.Seconds())), 1)
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	writeJSON(w, status, errorBody{Error: msg})
}
