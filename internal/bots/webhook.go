package bots

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

// WebhookServer receives Slack Events API callbacks over HTTP, for
// deployments where a public endpoint is available and Socket Mode is not
// wanted. Sending still goes through the SlackGateway.
type WebhookServer struct {
	addr          string
	signingSecret string
	handle        func(context.Context, Event)
	logger        *log.Logger
}

// NewWebhookServer creates the Events API server.
func NewWebhookServer(addr, signingSecret string, handle func(context.Context, Event), logger *log.Logger) *WebhookServer {
	return &WebhookServer{
		addr:          addr,
		signingSecret: signingSecret,
		handle:        handle,
		logger:        logger,
	}
}

// Routes builds the chi router: the Slack events endpoint plus a health check.
func (s *WebhookServer) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Post("/slack/events", s.handleEvents)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *WebhookServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("webhook shutdown", "err", err)
		}
	}()

	s.logger.Info("slack: events webhook listening", "addr", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleEvents verifies the request signature, answers URL verification
// challenges, and dispatches message events. Slack expects an ack within a few
// seconds, so the pipeline runs after the response is written.
func (s *WebhookServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	sv, err := slack.NewSecretsVerifier(r.Header, s.signingSecret)
	if err != nil {
		http.Error(w, "missing signature headers", http.StatusBadRequest)
		return
	}
	if _, err := sv.Write(body); err != nil {
		http.Error(w, "verifier error", http.StatusInternalServerError)
		return
	}
	if err := sv.Ensure(); err != nil {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		http.Error(w, "invalid event payload", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var cr slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &cr); err != nil {
			http.Error(w, "invalid challenge", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(cr.Challenge))

	case slackevents.CallbackEvent:
		w.WriteHeader(http.StatusOK)
		ev, ok := event.InnerEvent.Data.(*slackevents.MessageEvent)
		if !ok {
			return
		}
		go s.handle(context.WithoutCancel(r.Context()), Event{
			ChannelID: ev.Channel,
			UserID:    ev.User,
			Text:      ev.Text,
			FromBot:   ev.BotID != "" || ev.SubType != "",
		})

	default:
		w.WriteHeader(http.StatusOK)
	}
}
