package bots

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ziadkadry99/report-bot/internal/capture"
	"github.com/ziadkadry99/report-bot/internal/command"
	"github.com/ziadkadry99/report-bot/internal/registry"
)

// Responder turns pipeline results into outbound chat payloads. Internal
// failure detail stays in the log; users only ever see the fixed wording below.
type Responder struct {
	gateway        Gateway
	registry       *registry.Registry
	botName        string
	requireMention bool
	logger         *log.Logger
}

// NewResponder creates a Responder. botName is the workspace handle shown in
// the usage hint; it is only rendered when mentions are required.
func NewResponder(gateway Gateway, reg *registry.Registry, botName string, requireMention bool, logger *log.Logger) *Responder {
	return &Responder{
		gateway:        gateway,
		registry:       reg,
		botName:        botName,
		requireMention: requireMention,
		logger:         logger,
	}
}

// Usage returns the command hint sent for malformed commands. The mention
// prefix matches how the bot actually has to be addressed.
func (r *Responder) Usage() string {
	prefix := ""
	if r.requireMention {
		name := r.botName
		if name == "" {
			name = "reportbot"
		}
		prefix = "@" + name + " "
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Usage: %scapture report <report name> last {3|5|7} days\n", prefix)
	fmt.Fprintf(&b, "Example: %scapture report Confido last 7 days", prefix)
	if names := r.registry.Names(); len(names) > 0 {
		b.WriteString("\nKnown reports: ")
		b.WriteString(strings.Join(names, ", "))
	}
	return b.String()
}

// ParseFailed replies to a message that did not match the command grammar.
func (r *Responder) ParseFailed(ctx context.Context, channelID string, perr *command.ParseError) {
	text := r.Usage()
	if perr.Reason == command.ReasonBadRange {
		text = "Invalid date range.\n" + text
	}
	r.sendText(ctx, channelID, text)
}

// CaptureFailed replies with the fixed wording for the failure kind.
// The diagnostic detail is logged, never relayed.
func (r *Responder) CaptureFailed(ctx context.Context, channelID, report string, fail *capture.Failure) {
	r.logger.Error("capture failed", "report", report, "kind", fail.Kind, "detail", fail.Detail)

	var text string
	switch fail.Kind {
	case capture.ReportNotFound:
		text = fmt.Sprintf("Report '%s' not found.", report)
	case capture.InvalidRange:
		text = "Invalid date range."
	default:
		text = "Sorry, something went wrong while capturing the report."
	}
	r.sendText(ctx, channelID, text)
}

// Captured delivers the screenshot as a file attachment with a caption naming
// the report and the resolved interval.
func (r *Responder) Captured(ctx context.Context, channelID string, art *capture.Artifact) {
	caption := fmt.Sprintf("Report %s, %s", art.Report, art.Interval)
	if art.Note != "" {
		caption += "\nNote: " + art.Note
	}
	if err := r.gateway.SendFile(ctx, channelID, art.Image, art.Filename(), caption); err != nil {
		// No secondary channel exists; a failed delivery can only be logged.
		r.logger.Error("delivering capture", "report", art.Report, "channel", channelID, "err", err)
	}
}

func (r *Responder) sendText(ctx context.Context, channelID, text string) {
	if err := r.gateway.SendText(ctx, channelID, text); err != nil {
		r.logger.Error("sending reply", "channel", channelID, "err", err)
	}
}
