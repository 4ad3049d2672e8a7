package client

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	// DebounceDelay is how long input must settle before a check is sent
	DebounceDelay = 500 * time.Millisecond
	// MinCheckLength is the shortest username worth checking
	MinCheckLength = 3
)

// UsernameCheckFunc performs one availability lookup
type UsernameCheckFunc func(ctx context.Context, username string) (*UsernameAvailability, error)

// UsernameResult is delivered once per settled input
type UsernameResult struct {
	Username     string
	Availability *UsernameAvailability
	Err          error
}

// UsernameChecker debounces username input. Each Input call cancels the
// pending timer; requests already in flight still deliver their result.
type UsernameChecker struct {
	check    UsernameCheckFunc
	onResult func(UsernameResult)
	delay    time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewUsernameChecker creates a checker that reports to onResult
func NewUsernameChecker(check UsernameCheckFunc, onResult func(UsernameResult)) *UsernameChecker {
	return &UsernameChecker{check: check, onResult: onResult, delay: DebounceDelay}
}

// UsernameChecker returns a checker backed by the API
func (c *Client) UsernameChecker(onResult func(UsernameResult)) *UsernameChecker {
	return NewUsernameChecker(c.CheckUsername, onResult)
}

// Input records a new value of the username field
func (u *UsernameChecker) Input(value string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.timer != nil {
		u.timer.Stop()
		u.timer = nil
	}
	if u.stopped {
		return
	}

	value = strings.TrimSpace(value)
	if utf8.RuneCountInString(value) < MinCheckLength {
		return
	}

	u.timer = time.AfterFunc(u.delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
		defer cancel()
		availability, err := u.check(ctx, value)
		u.onResult(UsernameResult{Username: value, Availability: availability, Err: err})
	})
}

// Stop cancels any pending check. Later Input calls are ignored.
func (u *UsernameChecker) Stop() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.stopped = true
	if u.timer != nil {
		u.timer.Stop()
		u.timer = nil
	}
}
