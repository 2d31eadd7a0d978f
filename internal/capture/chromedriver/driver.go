// Package chromedriver implements the capture driver on headless Chrome via chromedp.
package chromedriver

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"

	"github.com/ziadkadry99/report-bot/internal/capture"
	"github.com/ziadkadry99/report-bot/internal/timerange"
)

const readyPollInterval = 250 * time.Millisecond

// Driver launches a fresh Chrome instance per session. Nothing is shared
// between sessions, so concurrent captures cannot interfere.
type Driver struct {
	headless bool
	logger   *log.Logger
}

// New creates a chromedp-backed driver.
func New(headless bool, logger *log.Logger) *Driver {
	return &Driver{headless: headless, logger: logger}
}

// Open starts a browser and returns its session handle. The returned session
// is bound to ctx: cancelling it tears the browser down.
func (d *Driver) Open(ctx context.Context) (capture.Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", d.headless),
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Run with no actions forces the browser to actually start, surfacing
	// launch failures here instead of on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("launching chrome: %w", err)
	}

	d.logger.Debug("chrome session started", "headless", d.headless)
	return &session{
		ctx:           browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		logger:        d.logger,
	}, nil
}

type session struct {
	ctx           context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	logger        *log.Logger

	currentURL string
	closeOnce  sync.Once
}

// run executes actions on the browser context, bounded by the caller's ctx.
// chromedp actions only observe the context they run on, so the caller's
// deadline and cancellation are mirrored onto a child of s.ctx; without this
// a navigation whose load event never fires would block unboundedly.
func (s *session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (s *session) Navigate(ctx context.Context, pageURL string) error {
	if err := s.run(ctx, chromedp.Navigate(pageURL)); err != nil {
		return fmt.Errorf("navigate %s: %w", pageURL, err)
	}
	s.currentURL = pageURL
	return nil
}

// WaitReady polls document.readyState until the page reports complete or the
// timeout elapses. Polling against an explicit readiness predicate is what
// keeps this testable and honest about slow dashboards; a fixed sleep is not.
func (s *session) WaitReady(ctx context.Context, timeout time.Duration) error {
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for {
		var state string
		if err := s.run(wctx, chromedp.Evaluate(`document.readyState`, &state)); err != nil {
			// A hung evaluate counts against the readiness budget too.
			if wctx.Err() != nil && ctx.Err() == nil {
				return capture.ErrReadyTimeout
			}
			return fmt.Errorf("reading readyState: %w", err)
		}
		if state == "complete" {
			return nil
		}
		select {
		case <-wctx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return capture.ErrReadyTimeout
		case <-time.After(readyPollInterval):
		}
	}
}

// ApplyRange re-navigates to the current URL with from/to epoch-millis query
// parameters, the convention the configured dashboards understand.
func (s *session) ApplyRange(ctx context.Context, iv timerange.Interval) error {
	if s.currentURL == "" {
		return capture.ErrRangeUnsupported
	}
	u, err := url.Parse(s.currentURL)
	if err != nil {
		return fmt.Errorf("parsing current url: %w", err)
	}
	q := u.Query()
	q.Set("from", strconv.FormatInt(iv.Start.UnixMilli(), 10))
	q.Set("to", strconv.FormatInt(iv.End.UnixMilli(), 10))
	u.RawQuery = q.Encode()

	if err := s.run(ctx, chromedp.Navigate(u.String())); err != nil {
		return fmt.Errorf("applying range: %w", err)
	}
	return nil
}

func (s *session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return buf, nil
}

// Close tears down the browser. Safe to call more than once and after failures.
func (s *session) Close() error {
	s.closeOnce.Do(func() {
		s.browserCancel()
		s.allocCancel()
		s.logger.Debug("chrome session closed")
	})
	return nil
}
