// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"sync"
	"sync/atomic"
)

// Token is a shared cancellation signal for one pipeline run.
//
// # Description
//
// Every concurrent flow (producer, consumer, UI) holds a reference to
// the same token and polls it between units of work. Cancellation is
// cooperative: an in-flight digit computation runs to completion and the
// flag takes effect at the next check. The Done channel unblocks sends
// that are parked on the bounded queue.
//
// # Thread Safety
//
// Safe for concurrent use. Cancel is idempotent.
type Token struct {
	cancelled atomic.Bool
	done      chan struct{}
	once      sync.Once
}

// NewToken creates a live token. One token per run; hand it to every
// flow explicitly.
func NewToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Cancel flips the token. All loops observing it exit at their next
// check; blocked queue hand-offs abort immediately.
func (t *Token) Cancel() {
	t.once.Do(func() {
		t.cancelled.Store(true)
		close(t.done)
	})
}

// Alive reports whether the run should keep going.
func (t *Token) Alive() bool {
	return !t.cancelled.Load()
}

// Done returns a channel closed on cancellation, for use in select.
func (t *Token) Done() <-chan struct{} {
	return t.done
}
