package capture

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ziadkadry99/report-bot/internal/config"
	"github.com/ziadkadry99/report-bot/internal/registry"
	"github.com/ziadkadry99/report-bot/internal/timerange"
)

// fakeSession implements Session with scriptable failures.
type fakeSession struct {
	navigated  string
	applied    []timerange.Interval
	closes     int
	navigateFn func(ctx context.Context) error
	readyErr   error
	applyErr   error
	shotErr    error
	image      []byte
	// blockShot, when non-nil, makes Screenshot wait until the channel
	// closes; shotEntered is closed when Screenshot starts blocking.
	blockShot   chan struct{}
	shotEntered chan struct{}
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error {
	s.navigated = url
	if s.navigateFn != nil {
		return s.navigateFn(ctx)
	}
	return nil
}

func (s *fakeSession) WaitReady(_ context.Context, _ time.Duration) error {
	return s.readyErr
}

func (s *fakeSession) ApplyRange(_ context.Context, iv timerange.Interval) error {
	s.applied = append(s.applied, iv)
	return s.applyErr
}

func (s *fakeSession) Screenshot(_ context.Context) ([]byte, error) {
	if s.shotEntered != nil {
		close(s.shotEntered)
	}
	if s.blockShot != nil {
		<-s.blockShot
	}
	if s.shotErr != nil {
		return nil, s.shotErr
	}
	return s.image, nil
}

func (s *fakeSession) Close() error {
	s.closes++
	return nil
}

// fakeDriver hands out a single scripted session and counts opens.
type fakeDriver struct {
	session *fakeSession
	openErr error
	opens   int
}

func (d *fakeDriver) Open(_ context.Context) (Session, error) {
	d.opens++
	if d.openErr != nil {
		return nil, d.openErr
	}
	return d.session, nil
}

func testInterval() timerange.Interval {
	return timerange.Interval{
		Start: time.Date(2024, time.June, 6, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.June, 9, 0, 0, 0, 0, time.UTC),
	}
}

func testOrchestrator(driver Driver) *Orchestrator {
	reg := registry.New([]config.ReportConfig{
		{Name: "Confido", URL: "https://dash.example.com/d/confido", RangeParams: true},
		{Name: "UA", URL: "https://dash.example.com/d/ua"},
	})
	opts := Options{PageLoadTimeout: time.Second, RangeApplyTimeout: time.Second}
	return New(reg, driver, opts, log.New(io.Discard))
}

func TestCaptureSuccess(t *testing.T) {
	sess := &fakeSession{image: []byte("png-bytes")}
	driver := &fakeDriver{session: sess}
	o := testOrchestrator(driver)

	art, fail := o.Capture(context.Background(), Request{Report: "Confido", Interval: testInterval()})
	if fail != nil {
		t.Fatalf("unexpected failure: %v", fail)
	}
	if string(art.Image) != "png-bytes" {
		t.Errorf("image: got %q", art.Image)
	}
	if art.Report != "Confido" {
		t.Errorf("report: got %q, want %q", art.Report, "Confido")
	}
	if art.Note != "" {
		t.Errorf("expected no soft-failure note, got %q", art.Note)
	}
	if sess.navigated != "https://dash.example.com/d/confido" {
		t.Errorf("navigated: got %q", sess.navigated)
	}
	if len(sess.applied) != 1 {
		t.Errorf("expected one ApplyRange call, got %d", len(sess.applied))
	}
	if driver.opens != 1 || sess.closes != 1 {
		t.Errorf("session lifecycle: opens=%d closes=%d, want 1/1", driver.opens, sess.closes)
	}
}

func TestCaptureReportNotFound(t *testing.T) {
	driver := &fakeDriver{session: &fakeSession{}}
	o := testOrchestrator(driver)

	art, fail := o.Capture(context.Background(), Request{Report: "Nonexistent", Interval: testInterval()})
	if art != nil {
		t.Fatal("expected failure, got artifact")
	}
	if fail.Kind != ReportNotFound {
		t.Errorf("kind: got %q, want %q", fail.Kind, ReportNotFound)
	}
	// A registry miss must never open a render session.
	if driver.opens != 0 {
		t.Errorf("expected no session open, got %d", driver.opens)
	}
}

func TestCaptureOpenFailure(t *testing.T) {
	driver := &fakeDriver{openErr: context.DeadlineExceeded}
	o := testOrchestrator(driver)

	_, fail := o.Capture(context.Background(), Request{Report: "Confido", Interval: testInterval()})
	if fail == nil || fail.Kind != RenderError {
		t.Fatalf("expected RenderError, got %v", fail)
	}
}

func TestCaptureReadyTimeout(t *testing.T) {
	sess := &fakeSession{readyErr: ErrReadyTimeout}
	driver := &fakeDriver{session: sess}
	o := testOrchestrator(driver)

	art, fail := o.Capture(context.Background(), Request{Report: "Confido", Interval: testInterval()})
	if art != nil {
		t.Fatal("expected failure, got artifact")
	}
	if fail.Kind != RenderTimeout {
		t.Errorf("kind: got %q, want %q", fail.Kind, RenderTimeout)
	}
	// The session is still released exactly once.
	if sess.closes != 1 {
		t.Errorf("closes: got %d, want 1", sess.closes)
	}
}

func TestCaptureNavigateFailure(t *testing.T) {
	sess := &fakeSession{navigateFn: func(context.Context) error { return io.ErrUnexpectedEOF }}
	driver := &fakeDriver{session: sess}
	o := testOrchestrator(driver)

	_, fail := o.Capture(context.Background(), Request{Report: "Confido", Interval: testInterval()})
	if fail == nil || fail.Kind != RenderError {
		t.Fatalf("expected RenderError, got %v", fail)
	}
	if sess.closes != 1 {
		t.Errorf("closes: got %d, want 1", sess.closes)
	}
}

// A navigation that never returns must hit the page-load deadline and surface
// as a render timeout, releasing the session instead of wedging the slot.
func TestCaptureNavigateTimeout(t *testing.T) {
	sess := &fakeSession{navigateFn: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	driver := &fakeDriver{session: sess}
	reg := registry.New([]config.ReportConfig{
		{Name: "Confido", URL: "https://dash.example.com/d/confido", RangeParams: true},
	})
	opts := Options{PageLoadTimeout: 20 * time.Millisecond, RangeApplyTimeout: 20 * time.Millisecond}
	o := New(reg, driver, opts, log.New(io.Discard))

	start := time.Now()
	art, fail := o.Capture(context.Background(), Request{Report: "Confido", Interval: testInterval()})
	if art != nil {
		t.Fatal("expected failure, got artifact")
	}
	if fail.Kind != RenderTimeout {
		t.Errorf("kind: got %q, want %q", fail.Kind, RenderTimeout)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("capture was not bounded by the page-load timeout: took %s", elapsed)
	}
	if sess.closes != 1 {
		t.Errorf("closes: got %d, want 1", sess.closes)
	}

	// The slot is free again: a fresh capture runs through.
	sess2 := &fakeSession{image: []byte("png")}
	driver.session = sess2
	if _, fail := o.Capture(context.Background(), Request{Report: "Confido", Interval: testInterval()}); fail != nil {
		t.Fatalf("slot not released after timed-out navigation: %v", fail)
	}
}

// A failed range application is a soft failure: the capture proceeds and the
// artifact carries a note.
func TestCaptureRangeApplySoftFailure(t *testing.T) {
	sess := &fakeSession{image: []byte("png"), applyErr: io.ErrUnexpectedEOF}
	driver := &fakeDriver{session: sess}
	o := testOrchestrator(driver)

	art, fail := o.Capture(context.Background(), Request{Report: "Confido", Interval: testInterval()})
	if fail != nil {
		t.Fatalf("range failure must not fail the capture: %v", fail)
	}
	if art.Note == "" {
		t.Error("expected a soft-failure note on the artifact")
	}
}

func TestCaptureRangeUnsupported(t *testing.T) {
	sess := &fakeSession{image: []byte("png"), applyErr: ErrRangeUnsupported}
	driver := &fakeDriver{session: sess}
	o := testOrchestrator(driver)

	art, fail := o.Capture(context.Background(), Request{Report: "Confido", Interval: testInterval()})
	if fail != nil {
		t.Fatalf("unexpected failure: %v", fail)
	}
	// Unsupported is not a failure worth telling the user about.
	if art.Note != "" {
		t.Errorf("expected no note for unsupported range, got %q", art.Note)
	}
}

func TestCaptureSkipsRangeWhenNotConfigured(t *testing.T) {
	sess := &fakeSession{image: []byte("png")}
	driver := &fakeDriver{session: sess}
	o := testOrchestrator(driver)

	_, fail := o.Capture(context.Background(), Request{Report: "UA", Interval: testInterval()})
	if fail != nil {
		t.Fatalf("unexpected failure: %v", fail)
	}
	if len(sess.applied) != 0 {
		t.Errorf("expected no ApplyRange call for UA, got %d", len(sess.applied))
	}
}

func TestCaptureScreenshotFailure(t *testing.T) {
	sess := &fakeSession{shotErr: io.ErrUnexpectedEOF}
	driver := &fakeDriver{session: sess}
	o := testOrchestrator(driver)

	_, fail := o.Capture(context.Background(), Request{Report: "Confido", Interval: testInterval()})
	if fail == nil || fail.Kind != RenderError {
		t.Fatalf("expected RenderError, got %v", fail)
	}
	if sess.closes != 1 {
		t.Errorf("closes: got %d, want 1", sess.closes)
	}
}

// Captures are serialized: a second call waits for the slot, and honors
// context cancellation while waiting.
func TestCaptureSerialized(t *testing.T) {
	gate := make(chan struct{})
	entered := make(chan struct{})
	sess := &fakeSession{image: []byte("png"), blockShot: gate, shotEntered: entered}
	driver := &fakeDriver{session: sess}
	o := testOrchestrator(driver)

	done := make(chan struct{})
	go func() {
		o.Capture(context.Background(), Request{Report: "Confido", Interval: testInterval()})
		close(done)
	}()
	// Wait until the first capture holds the slot and is blocked in Screenshot.
	<-entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, fail := o.Capture(ctx, Request{Report: "UA", Interval: testInterval()})
	if fail == nil || fail.Kind != RenderError {
		t.Fatalf("expected RenderError for cancelled wait, got %v", fail)
	}

	close(gate)
	<-done
	if driver.opens != 1 {
		t.Errorf("expected a single session, got %d opens", driver.opens)
	}
}

func TestArtifactFilename(t *testing.T) {
	art := &Artifact{Report: "Weekly Sales", Interval: testInterval()}
	want := "weekly-sales-2024-06-06-2024-06-09.png"
	if got := art.Filename(); got != want {
		t.Errorf("filename: got %q, want %q", got, want)
	}
}
