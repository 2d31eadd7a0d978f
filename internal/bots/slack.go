package bots

import (
	"bytes"
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

// SlackGateway sends messages and files through the Slack Web API and, in
// socket mode, receives events over a Socket Mode connection.
type SlackGateway struct {
	api    *slack.Client
	logger *log.Logger
}

// NewSlackGateway creates a gateway from a bot token. appToken is required
// for socket mode and may be empty in webhook mode.
func NewSlackGateway(botToken, appToken string, logger *log.Logger) *SlackGateway {
	var opts []slack.Option
	if appToken != "" {
		opts = append(opts, slack.OptionAppLevelToken(appToken))
	}
	return &SlackGateway{api: slack.New(botToken, opts...), logger: logger}
}

// BotIdentity resolves the bot's own user ID and workspace handle. The ID
// drives mention matching; the handle is shown in usage replies.
func (g *SlackGateway) BotIdentity(ctx context.Context) (userID, userName string, err error) {
	resp, err := g.api.AuthTestContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("slack: auth test: %w", err)
	}
	return resp.UserID, resp.User, nil
}

// SendText posts a plain text message to the channel.
func (g *SlackGateway) SendText(ctx context.Context, channelID, text string) error {
	_, _, err := g.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	return nil
}

// SendFile uploads the image to the channel with the caption as its comment.
func (g *SlackGateway) SendFile(ctx context.Context, channelID string, data []byte, filename, caption string) error {
	_, err := g.api.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		Channel:        channelID,
		Reader:         bytes.NewReader(data),
		FileSize:       len(data),
		Filename:       filename,
		Title:          filename,
		InitialComment: caption,
	})
	if err != nil {
		return fmt.Errorf("slack: upload file: %w", err)
	}
	return nil
}

// Listen connects via Socket Mode and forwards each inbound message event to
// handle. It blocks until ctx is cancelled.
func (g *SlackGateway) Listen(ctx context.Context, handle func(context.Context, Event)) error {
	client := socketmode.New(g.api)

	go g.pumpSocketEvents(ctx, client, handle)

	g.logger.Info("slack: connected via socket mode")
	if err := client.RunContext(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("slack: socket mode run: %w", err)
	}
	return nil
}

// pumpSocketEvents reads events from the socket-mode client until ctx is
// cancelled or the event channel closes.
func (g *SlackGateway) pumpSocketEvents(ctx context.Context, client *socketmode.Client, handle func(context.Context, Event)) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-client.Events:
			if !ok {
				return
			}
			g.handleSocketEvent(ctx, client, evt, handle)
		}
	}
}

// handleSocketEvent acks one socket-mode event and dispatches message events.
func (g *SlackGateway) handleSocketEvent(ctx context.Context, client *socketmode.Client, evt socketmode.Event, handle func(context.Context, Event)) {
	if evt.Type != socketmode.EventTypeEventsAPI {
		return
	}
	eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
	if !ok {
		return
	}
	client.Ack(*evt.Request)

	if eventsAPIEvent.Type != slackevents.CallbackEvent {
		return
	}
	ev, ok := eventsAPIEvent.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok {
		return
	}
	// Subtypes (edits, deletes, joins) are not commands.
	go handle(ctx, Event{
		ChannelID: ev.Channel,
		UserID:    ev.User,
		Text:      ev.Text,
		FromBot:   ev.BotID != "" || ev.SubType != "",
	})
}
