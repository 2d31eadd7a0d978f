package capture

import (
	"context"
	"errors"
	"time"

	"github.com/ziadkadry99/report-bot/internal/timerange"
)

// ErrReadyTimeout is returned by Session.WaitReady when the page does not
// reach a ready state within the allotted timeout.
var ErrReadyTimeout = errors.New("page readiness timed out")

// ErrRangeUnsupported is returned by Session.ApplyRange when the report page
// exposes no date-range control the driver can set.
var ErrRangeUnsupported = errors.New("report does not support range selection")

// Driver opens browser sessions. Each orchestrator call gets a fresh session;
// sessions are never pooled or shared between captures.
type Driver interface {
	Open(ctx context.Context) (Session, error)
}

// Session is one live browser instance. Every method must honor the deadline
// and cancellation of the ctx it is called with; the orchestrator relies on
// this to keep each pipeline step bounded. Close must be safe to call after
// any prior failure and must be idempotent.
type Session interface {
	// Navigate loads the URL, returning once the page's load event fires or
	// ctx expires.
	Navigate(ctx context.Context, url string) error
	// WaitReady blocks until the page reaches a ready state or timeout
	// elapses, in which case it returns ErrReadyTimeout.
	WaitReady(ctx context.Context, timeout time.Duration) error
	// ApplyRange applies the interval to the report's date-range control.
	// Drivers that cannot set a range return ErrRangeUnsupported.
	ApplyRange(ctx context.Context, iv timerange.Interval) error
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}
