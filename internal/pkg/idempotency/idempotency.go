// Package idempotency guards a side effect behind a caller-supplied key kept
// in redis, so a retried request does not repeat the effect.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrAlreadyInProgress = errors.New("idempotency: operation already in progress")
	ErrAlreadyCompleted  = errors.New("idempotency: operation already completed")
	ErrAlreadyFailed     = errors.New("idempotency: operation already failed")
	ErrInvalidState      = errors.New("idempotency: invalid state")
	// ErrFingerprintMismatch means the key was first used for a different
	// request body.
	ErrFingerprintMismatch = errors.New("idempotency: key reused with a different request")
)

// State is the lifecycle of a keyed operation.
type State string

const (
	StateNone       State = "none"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateError      State = "error"
)

func (s State) String() string {
	return string(s)
}

// Idempotency runs fn at most once per key.
type Idempotency interface {
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

// Store is the subset of redis commands the tracker needs. *redis.Client
// satisfies it.
type Store interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// StateTracker implements Idempotency on top of a redis Store.
type StateTracker struct {
	store  Store
	prefix string
}

// New returns a tracker storing states under "idempotency:<key>".
func New(store Store) *StateTracker {
	return &StateTracker{store: store, prefix: "idempotency:"}
}

const (
	defaultLockDuration = time.Minute
	defaultStateTTL     = 24 * time.Hour
)

// Option tunes a single Exec call.
type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	stateTTL     time.Duration
	fingerprint  string
}

// WithLockDuration bounds how long an in-progress marker lives if the
// process dies before recording an outcome.
func WithLockDuration(d time.Duration) Option {
	return func(o *execOptions) {
		if d > 0 {
			o.lockDuration = d
		}
	}
}

// WithStateTTL sets how long the completed or failed outcome is remembered.
func WithStateTTL(d time.Duration) Option {
	return func(o *execOptions) {
		if d > 0 {
			o.stateTTL = d
		}
	}
}

// WithFingerprint binds key to a digest of the request. A later Exec with
// the same key and another digest fails with ErrFingerprintMismatch.
func WithFingerprint(fp string) Option {
	return func(o *execOptions) {
		o.fingerprint = fp
	}
}

// Acquire claims key. StateNone means the caller owns the operation; any other
// state reports what a previous caller left behind.
func (s *StateTracker) Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, error) {
	fk := s.prefix + key

	// A second SetNX covers the key expiring between the first SetNX and Get.
	for range 2 {
		acquired, err := s.store.SetNX(ctx, fk, StateInProgress.String(), lockDuration).Result()
		if err != nil {
			return StateError, err
		}
		if acquired {
			return StateNone, nil
		}

		result, err := s.store.Get(ctx, fk).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return StateError, err
		}

		switch State(result) {
		case StateInProgress, StateCompleted, StateFailed:
			return State(result), nil
		default:
			return StateError, ErrInvalidState
		}
	}

	return StateError, ErrInvalidState
}

func (s *StateTracker) mark(ctx context.Context, key string, state State, ttl time.Duration) error {
	return s.store.Set(ctx, s.prefix+key, state.String(), ttl).Err()
}

// Exec runs fn if key has not been seen, recording the outcome. A repeated
// key returns the matching ErrAlready* sentinel without calling fn.
func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	o := &execOptions{lockDuration: defaultLockDuration, stateTTL: defaultStateTTL}
	for _, opt := range opts {
		opt(o)
	}

	state, err := s.Acquire(ctx, key, o.lockDuration)
	if err != nil {
		return err
	}

	if o.fingerprint != "" {
		if err := s.checkFingerprint(ctx, key, state, o); err != nil {
			return err
		}
	}

	switch state {
	case StateInProgress:
		return ErrAlreadyInProgress
	case StateCompleted:
		return ErrAlreadyCompleted
	case StateFailed:
		return ErrAlreadyFailed
	}

	if err := fn(ctx); err != nil {
		return errors.Join(err, s.mark(ctx, key, StateFailed, o.stateTTL))
	}

	return s.mark(ctx, key, StateCompleted, o.stateTTL)
}

// checkFingerprint records the digest for a fresh key and compares it for
// a seen one. Keys recorded without a digest are not compared.
func (s *StateTracker) checkFingerprint(ctx context.Context, key string, state State, o *execOptions) error {
	fk := s.prefix + key + ":fingerprint"

	if state == StateNone {
		return s.store.Set(ctx, fk, o.fingerprint, o.stateTTL).Err()
	}

	stored, err := s.store.Get(ctx, fk).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return nil
	case err != nil:
		return err
	case stored != o.fingerprint:
		return ErrFingerprintMismatch
	}

	return nil
}
