// Package bots connects the chat platform to the capture pipeline: it filters
// inbound events, parses them into commands, runs the capture, and sends the
// response back to the originating channel.
package bots

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ziadkadry99/report-bot/internal/capture"
	"github.com/ziadkadry99/report-bot/internal/command"
	"github.com/ziadkadry99/report-bot/internal/timerange"
)

// Capturer runs one capture to completion. Satisfied by *capture.Orchestrator.
type Capturer interface {
	Capture(ctx context.Context, req capture.Request) (*capture.Artifact, *capture.Failure)
}

// Router handles one inbound event at a time and holds no state across
// events. Dependencies are injected so tests can swap in fakes.
type Router struct {
	capturer       Capturer
	responder      *Responder
	botUserID      string
	requireMention bool
	now            func() time.Time
	logger         *log.Logger
}

// NewRouter creates a Router. botUserID is the bot's own user ID for mention
// matching; requireMention controls whether unaddressed messages are treated
// as commands.
func NewRouter(capturer Capturer, responder *Responder, botUserID string, requireMention bool, logger *log.Logger) *Router {
	return &Router{
		capturer:       capturer,
		responder:      responder,
		botUserID:      botUserID,
		requireMention: requireMention,
		now:            time.Now,
		logger:         logger,
	}
}

// HandleEvent runs the full pipeline for one inbound event. Every failure is
// converted to a reply here; nothing escapes to kill the listener, including
// panics from the pipeline.
func (r *Router) HandleEvent(ctx context.Context, ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic while handling event", "channel", ev.ChannelID, "panic", rec)
		}
	}()

	if ev.FromBot {
		r.logger.Debug("dropping bot-originated event", "channel", ev.ChannelID)
		return
	}
	if ev.Text == "" {
		return
	}

	cmd, perr := command.Parse(ev.Text, r.botUserID, r.requireMention)
	if perr != nil {
		// Unaddressed messages are ordinary channel chatter, not failed
		// command attempts; answering them with usage text would be noise.
		if perr.Reason == command.ReasonNotAddressed {
			r.logger.Debug("ignoring unaddressed message", "channel", ev.ChannelID)
			return
		}
		r.logger.Debug("rejecting malformed command", "channel", ev.ChannelID, "reason", perr.Reason)
		r.responder.ParseFailed(ctx, ev.ChannelID, perr)
		return
	}

	iv, err := timerange.Resolve(cmd.Range, r.now().UTC())
	if err != nil {
		// The parser guarantees the token is recognized; reaching this is a
		// bug, but the user still gets a sane reply.
		r.logger.Error("resolver rejected a parsed range", "range", cmd.Range, "err", err)
		r.responder.CaptureFailed(ctx, ev.ChannelID, cmd.Report, &capture.Failure{
			Kind:   capture.InvalidRange,
			Detail: err.Error(),
		})
		return
	}

	art, fail := r.capturer.Capture(ctx, capture.Request{Report: cmd.Report, Interval: iv})
	if fail != nil {
		r.responder.CaptureFailed(ctx, ev.ChannelID, cmd.Report, fail)
		return
	}
	r.responder.Captured(ctx, ev.ChannelID, art)
}
