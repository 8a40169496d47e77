// Package ratelimit applies per-client request limits before any other
// request processing happens. Two classes exist: a strict one for credential
// endpoints and a general one for the rest of the API.
//
// Counters are token buckets rather than fixed windows, so the 2N
// boundary-burst artifact of a naive fixed window cannot occur. State is
// process-local; multi-instance deployments rate-limit per instance.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Class string

const (
	ClassAuth Class = "auth"
	ClassAPI  Class = "api"
)

type Limits struct {
	AuthPerMinute int
	APIPerMinute  int
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rates   map[Class]rate.Limit
	bursts  map[Class]int
	done    chan struct{}
	once    sync.Once
}

func New(limits Limits) *Limiter {
	if limits.AuthPerMinute <= 0 {
		limits.AuthPerMinute = 10
	}
	if limits.APIPerMinute <= 0 {
		limits.APIPerMinute = 120
	}
	l := &Limiter{
		buckets: make(map[string]*bucket),
		rates: map[Class]rate.Limit{
			ClassAuth: rate.Limit(float64(limits.AuthPerMinute) / 60.0),
			ClassAPI:  rate.Limit(float64(limits.APIPerMinute) / 60.0),
		},
		bursts: map[Class]int{
			ClassAuth: limits.AuthPerMinute,
			ClassAPI:  limits.APIPerMinute,
		},
		done: make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// Check consumes one token for the given client key and class. When the
// request is rejected, retryAfter is the wait until a token becomes available,
// suitable for a Retry-After header.
func (l *Limiter) Check(clientKey string, class Class) (allowed bool, retryAfter time.Duration) {
	lim := l.bucket(clientKey, class)

	r := lim.Reserve()
	if !r.OK() {
		return false, time.Minute
	}
	delay := r.Delay()
	if delay > 0 {
		r.Cancel()
		return false, delay
	}
	return true, 0
}

// RetryAfterSeconds rounds a delay up to whole seconds, minimum 1.
func RetryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

func (l *Limiter) Close() {
	l.once.Do(func() { close(l.done) })
}

func (l *Limiter) bucket(clientKey string, class Class) *rate.Limiter {
	key := string(class) + ":" + clientKey

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		limit, known := l.rates[class]
		if !known {
			limit = l.rates[ClassAPI]
		}
		burst, known := l.bursts[class]
		if !known {
			burst = l.bursts[ClassAPI]
		}
		b = &bucket{limiter: rate.NewLimiter(limit, burst)}
		l.buckets[key] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

// cleanup drops buckets idle long enough to have fully refilled.
func (l *Limiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-10 * time.Minute)
			l.mu.Lock()
			for key, b := range l.buckets {
				if b.lastSeen.Before(cutoff) {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}
