// Package capture drives a browser session through the report capture
// sequence: resolve, launch, navigate, await readiness, set range, screenshot,
// release.
package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ziadkadry99/report-bot/internal/registry"
	"github.com/ziadkadry99/report-bot/internal/timerange"
)

// FailureKind tags the reason a capture did not produce an artifact.
type FailureKind string

const (
	ReportNotFound FailureKind = "report_not_found"
	InvalidRange   FailureKind = "invalid_range"
	RenderTimeout  FailureKind = "render_timeout"
	RenderError    FailureKind = "render_error"
)

// Failure is the terminal error of one capture attempt. Detail is diagnostic
// text for the log; it is never shown to the requesting user.
type Failure struct {
	Kind   FailureKind
	Detail string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("capture %s: %s", f.Kind, f.Detail)
}

// Request identifies what to capture.
type Request struct {
	Report   string
	Interval timerange.Interval
}

// Artifact is a successful capture: the image plus its provenance. Note is
// non-empty when the date range could not be applied and the image shows the
// report's default range instead.
type Artifact struct {
	Image    []byte
	Report   string
	Interval timerange.Interval
	Note     string
}

// Filename derives a deterministic attachment name from the artifact's provenance.
func (a *Artifact) Filename() string {
	name := strings.ToLower(strings.ReplaceAll(a.Report, " ", "-"))
	return fmt.Sprintf("%s-%s-%s.png",
		name, a.Interval.Start.Format("2006-01-02"), a.Interval.End.Format("2006-01-02"))
}

// Options configures an Orchestrator.
type Options struct {
	PageLoadTimeout   time.Duration
	RangeApplyTimeout time.Duration
}

// Orchestrator owns the capture pipeline. Captures are serialized through a
// single-slot semaphore: one headless browser at a time is plenty for this
// bot's traffic, and per-call sessions keep concurrent requests from sharing
// navigation state if the limit is ever raised.
type Orchestrator struct {
	registry *registry.Registry
	driver   Driver
	opts     Options
	slot     chan struct{}
	logger   *log.Logger
}

// New creates an Orchestrator. The registry and driver are explicit
// dependencies so tests can substitute fakes.
func New(reg *registry.Registry, driver Driver, opts Options, logger *log.Logger) *Orchestrator {
	slot := make(chan struct{}, 1)
	slot <- struct{}{}
	return &Orchestrator{
		registry: reg,
		driver:   driver,
		opts:     opts,
		slot:     slot,
		logger:   logger,
	}
}

// Capture produces a screenshot artifact for the requested report and
// interval, or a Failure describing why it could not. Exactly one of the
// return values is non-nil. Every path that opens a browser session closes it
// before returning; a failed capture never leaks state into the next call.
func (o *Orchestrator) Capture(ctx context.Context, req Request) (*Artifact, *Failure) {
	id := uuid.NewString()[:8]
	logger := o.logger.With("capture", id, "report", req.Report)

	// Resolving: a registry miss costs nothing, so it is checked before any
	// session or queue slot is taken.
	rep, ok := o.registry.Lookup(req.Report)
	if !ok {
		return nil, &Failure{
			Kind:   ReportNotFound,
			Detail: fmt.Sprintf("report %q is not registered", req.Report),
		}
	}

	select {
	case <-o.slot:
	case <-ctx.Done():
		return nil, &Failure{Kind: RenderError, Detail: fmt.Sprintf("waiting for capture slot: %v", ctx.Err())}
	}
	defer func() { o.slot <- struct{}{} }()

	logger.Info("capture started", "interval", req.Interval.String())

	// Launching.
	sess, err := o.driver.Open(ctx)
	if err != nil {
		return nil, &Failure{Kind: RenderError, Detail: fmt.Sprintf("opening render session: %v", err)}
	}
	// Releasing: unconditional, on every path below. Session.Close is
	// idempotent by contract.
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			logger.Warn("closing render session", "err", cerr)
		}
	}()

	// Navigating. The navigation itself waits on the page's load event, so it
	// shares the page-load budget; a page that never finishes loading must
	// surface as a timeout here, not hang the slot.
	nctx, ncancel := context.WithTimeout(ctx, o.opts.PageLoadTimeout)
	err = sess.Navigate(nctx, rep.URL)
	ncancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, &Failure{
				Kind:   RenderTimeout,
				Detail: fmt.Sprintf("page load exceeded %s navigating to %s", o.opts.PageLoadTimeout, rep.URL),
			}
		}
		return nil, &Failure{Kind: RenderError, Detail: fmt.Sprintf("navigating to %s: %v", rep.URL, err)}
	}

	// AwaitingReady.
	if err := sess.WaitReady(ctx, o.opts.PageLoadTimeout); err != nil {
		if errors.Is(err, ErrReadyTimeout) {
			return nil, &Failure{
				Kind:   RenderTimeout,
				Detail: fmt.Sprintf("page not ready after %s", o.opts.PageLoadTimeout),
			}
		}
		return nil, &Failure{Kind: RenderError, Detail: fmt.Sprintf("waiting for page: %v", err)}
	}

	// SettingRange: non-fatal. A screenshot of the default range still has
	// value, so a failed range application is noted on the artifact rather
	// than failing the whole request.
	note := ""
	if rep.RangeParams {
		rctx, cancel := context.WithTimeout(ctx, o.opts.RangeApplyTimeout)
		err := sess.ApplyRange(rctx, req.Interval)
		cancel()
		switch {
		case err == nil:
		case errors.Is(err, ErrRangeUnsupported):
			logger.Debug("report exposes no range control")
		default:
			logger.Warn("applying date range", "err", err)
			note = "the requested date range could not be applied; showing the report's default range"
		}
	} else {
		logger.Debug("report not configured for range params")
	}

	// Capturing. Bounded like navigation; a wedged renderer must release the
	// slot rather than hold it.
	sctx, scancel := context.WithTimeout(ctx, o.opts.PageLoadTimeout)
	image, err := sess.Screenshot(sctx)
	scancel()
	if err != nil {
		return nil, &Failure{Kind: RenderError, Detail: fmt.Sprintf("taking screenshot: %v", err)}
	}

	logger.Info("capture finished", "bytes", len(image))
	return &Artifact{
		Image:    image,
		Report:   rep.Name,
		Interval: req.Interval,
		Note:     note,
	}, nil
}
