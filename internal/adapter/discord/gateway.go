// Package discord adapts the Discord gateway and REST API to the domain
// interfaces the bot core works with. The Gateway owns the websocket
// session and forwards inbound messages to a MessageHandler; Replier and
// NameResolver wrap the REST surface.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/quikeats/Vouchy/internal/domain"
	"github.com/quikeats/Vouchy/internal/metrics"
	"github.com/quikeats/Vouchy/internal/platform/retry"
)

const (
	connectMaxAttempts    = 5
	connectInitialBackoff = 2 * time.Second
	connectMaxBackoff     = 30 * time.Second
	connectRateLimitWait  = 30 * time.Second
)

// MessageHandler receives every inbound chat message from the gateway.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg domain.Message)
}

// NewSession creates a Discord session for the given bot token. The
// session requests the guild message and message content intents; without
// the content intent enabled in the developer portal the bot sees empty
// message bodies and attachments.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	return session, nil
}

// Gateway maintains the Discord websocket session. Reconnects after
// transient drops are handled by the underlying library; Connected reports
// the current session state.
type Gateway struct {
	session   *discordgo.Session
	handler   MessageHandler
	connected atomic.Bool

	handlerCtx context.Context
	cancel     context.CancelFunc
}

func NewGateway(session *discordgo.Session, handler MessageHandler) *Gateway {
	ctx, cancel := context.WithCancel(context.Background())
	g := &Gateway{
		session:    session,
		handler:    handler,
		handlerCtx: ctx,
		cancel:     cancel,
	}

	session.AddHandler(g.onReady)
	session.AddHandler(g.onConnect)
	session.AddHandler(g.onDisconnect)
	session.AddHandler(g.onResumed)
	session.AddHandler(g.onMessageCreate)

	return g
}

// Connected reports whether the gateway session is currently open.
func (g *Gateway) Connected() bool {
	return g.connected.Load()
}

// Open connects to the gateway, retrying transient failures with backoff.
func (g *Gateway) Open(ctx context.Context) error {
	p := retry.Policy{
		MaxAttempts:      connectMaxAttempts,
		InitialBackoff:   connectInitialBackoff,
		MaxBackoff:       connectMaxBackoff,
		RateLimitBackoff: connectRateLimitWait,
	}
	p.OnRetry = func(attempt int, err error, backoff time.Duration) {
		slog.Warn("Gateway connect failed, retrying", "attempt", attempt, "backoff_seconds", backoff.Seconds(), "error", err)
	}

	if err := retry.DoVoid(ctx, p, classifyConnectError, g.session.Open); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	return nil
}

// Close cancels in-flight message handling and shuts the session down.
func (g *Gateway) Close() error {
	g.cancel()
	if err := g.session.Close(); err != nil {
		return fmt.Errorf("failed to close discord gateway: %w", err)
	}
	return nil
}

func (g *Gateway) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	metrics.GatewayEventsTotal.WithLabelValues("ready").Inc()

	username := ""
	if r.User != nil {
		username = r.User.Username
	}
	slog.Info("Discord gateway ready", "username", username, "session_id", r.SessionID, "guilds", len(r.Guilds))
}

func (g *Gateway) onConnect(_ *discordgo.Session, _ *discordgo.Connect) {
	g.connected.Store(true)
	metrics.GatewayEventsTotal.WithLabelValues("connect").Inc()
	metrics.GatewayConnected.Set(1)
	slog.Info("Connected to Discord gateway")
}

func (g *Gateway) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	g.connected.Store(false)
	metrics.GatewayEventsTotal.WithLabelValues("disconnect").Inc()
	metrics.GatewayConnected.Set(0)
	slog.Warn("Disconnected from Discord gateway")
}

func (g *Gateway) onResumed(_ *discordgo.Session, _ *discordgo.Resumed) {
	metrics.GatewayEventsTotal.WithLabelValues("resumed").Inc()
	slog.Info("Discord session resumed")
}

func (g *Gateway) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	metrics.GatewayEventsTotal.WithLabelValues("message_create").Inc()

	// A panicking handler must not take the gateway session down with it.
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic while handling message", "panic", r, "message_id", m.ID, "channel_id", m.ChannelID)
		}
	}()

	g.handler.HandleMessage(g.handlerCtx, toDomainMessage(m.Message))
}

func toDomainMessage(m *discordgo.Message) domain.Message {
	msg := domain.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorIsBot = m.Author.Bot
	}
	for _, a := range m.Attachments {
		if a == nil {
			continue
		}
		msg.Attachments = append(msg.Attachments, domain.Attachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
		})
	}
	return msg
}

func classifyConnectError(err error) retry.Action {
	if errors.Is(err, discordgo.ErrWSAlreadyOpen) {
		return retry.Stop
	}

	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return retry.Retry
	}

	switch {
	case restErr.Response.StatusCode == http.StatusTooManyRequests:
		return retry.After
	case restErr.Response.StatusCode >= 500:
		return retry.Retry
	default:
		return retry.Stop
	}
}
