package blobstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultReleaseDelay is how long an exported artifact stays fetchable
const DefaultReleaseDelay = 60 * time.Second

const releaseTimeout = 10 * time.Second

// Releaser deletes blobs a fixed delay after they were handed out, whether
// or not anyone fetched them
type Releaser struct {
	store  Store
	delay  time.Duration
	logger logrus.FieldLogger

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool

	// OnRelease is called after each scheduled or forced release
	OnRelease func(key string, err error)
}

// NewReleaser creates a releaser. A non-positive delay uses DefaultReleaseDelay.
func NewReleaser(store Store, delay time.Duration, logger logrus.FieldLogger) *Releaser {
	if delay <= 0 {
		delay = DefaultReleaseDelay
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Releaser{
		store:  store,
		delay:  delay,
		logger: logger,
		timers: make(map[string]*time.Timer),
	}
}

// Delay returns the configured release delay
func (r *Releaser) Delay() time.Duration {
	return r.delay
}

// Schedule arranges for key to be deleted after the release delay and
// returns the deadline. Scheduling a key again restarts its timer; after
// Close the key is released at once.
func (r *Releaser) Schedule(key string) time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	deadline := time.Now().Add(r.delay)
	if r.closed {
		go r.expire(key)
		return time.Now()
	}

	if t, ok := r.timers[key]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(r.delay, func() {
		r.fire(key, t)
	})
	r.timers[key] = t
	return deadline
}

// Release deletes key immediately and cancels its timer
func (r *Releaser) Release(ctx context.Context, key string) error {
	r.mu.Lock()
	if t, ok := r.timers[key]; ok {
		t.Stop()
		delete(r.timers, key)
	}
	r.mu.Unlock()

	return r.delete(ctx, key)
}

// Pending returns the number of keys awaiting release
func (r *Releaser) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

// Close stops every timer and releases the pending keys now
func (r *Releaser) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	keys := make([]string, 0, len(r.timers))
	for key, t := range r.timers {
		t.Stop()
		keys = append(keys, key)
	}
	r.timers = make(map[string]*time.Timer)
	r.mu.Unlock()

	var errs []error
	for _, key := range keys {
		if err := r.delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// fire releases key only while t is still its current timer. A timer that
// was stopped too late to cancel its callback finds a newer timer or none
// and leaves the key alone.
func (r *Releaser) fire(key string, t *time.Timer) {
	r.mu.Lock()
	if r.timers[key] != t {
		r.mu.Unlock()
		return
	}
	delete(r.timers, key)
	r.mu.Unlock()

	r.expire(key)
}

func (r *Releaser) expire(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	_ = r.delete(ctx, key)
}

func (r *Releaser) delete(ctx context.Context, key string) error {
	err := r.store.Delete(ctx, key)
	if IsNotFound(err) {
		err = nil
	}

	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"key":   key,
			"error": err.Error(),
		}).Warn("Failed to release artifact")
	} else {
		r.logger.WithField("key", key).Debug("Artifact released")
	}

	if r.OnRelease != nil {
		r.OnRelease(key, err)
	}
	return err
}
