package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ziadkadry99/report-bot/internal/capture"
	"github.com/ziadkadry99/report-bot/internal/timerange"
)

func testArtifact() *capture.Artifact {
	return &capture.Artifact{
		Image:  []byte("png-bytes"),
		Report: "Weekly Sales",
		Interval: timerange.Interval{
			Start: time.Date(2024, time.June, 6, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, time.June, 9, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestWriteArtifactDefaultFilename(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(cwd) })

	out, err := writeArtifact(testArtifact(), "")
	if err != nil {
		t.Fatalf("writeArtifact: %v", err)
	}
	if out != "weekly-sales-2024-06-06-2024-06-09.png" {
		t.Errorf("default path: got %q", out)
	}
	data, err := os.ReadFile(filepath.Join(dir, out))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("contents: got %q", data)
	}
}

func TestWriteArtifactExplicitPath(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.png")

	got, err := writeArtifact(testArtifact(), out)
	if err != nil {
		t.Fatalf("writeArtifact: %v", err)
	}
	if got != out {
		t.Errorf("path: got %q, want %q", got, out)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("contents: got %q", data)
	}
}

func TestWriteArtifactBadDirectory(t *testing.T) {
	out := filepath.Join(t.TempDir(), "missing", "report.png")
	if _, err := writeArtifact(testArtifact(), out); err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}
