package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quikeats/Vouchy/internal/command"
	"github.com/quikeats/Vouchy/internal/domain"
	"github.com/quikeats/Vouchy/internal/metrics"
	"github.com/quikeats/Vouchy/internal/platform/correlation"
)

// leaderboardSize is how many users the topvouches command shows.
const leaderboardSize = 10

// Service is the application layer. Every inbound chat message flows through
// HandleMessage, which runs vouch counting and command dispatch independently
// of each other: a command message with image attachments in the vouch
// channel both earns points and gets its reply.
type Service struct {
	ledger         domain.Ledger
	replier        domain.Replier
	names          domain.NameResolver
	vouchChannelID string
	prefix         string
	pointsPerImage int64
}

func NewService(ledger domain.Ledger, replier domain.Replier, names domain.NameResolver, vouchChannelID, prefix string, pointsPerImage int64) *Service {
	return &Service{
		ledger:         ledger,
		replier:        replier,
		names:          names,
		vouchChannelID: vouchChannelID,
		prefix:         prefix,
		pointsPerImage: pointsPerImage,
	}
}

// HandleMessage processes one inbound message. Messages from bots (including
// our own replies) are dropped before anything else.
func (s *Service) HandleMessage(ctx context.Context, msg domain.Message) {
	if msg.AuthorIsBot {
		metrics.MessagesTotal.WithLabelValues("ignored").Inc()
		return
	}

	ctx = correlation.WithID(ctx, correlation.NewID())

	vouched := false
	if msg.ChannelID == s.vouchChannelID {
		vouched = s.recordVouches(ctx, msg)
	}

	cmd, isCommand := command.Parse(s.prefix, msg.Content)
	if isCommand {
		s.dispatch(ctx, msg, cmd)
	}

	switch {
	case vouched:
		metrics.MessagesTotal.WithLabelValues("vouch").Inc()
	case isCommand:
		metrics.MessagesTotal.WithLabelValues("command").Inc()
	default:
		metrics.MessagesTotal.WithLabelValues("ignored").Inc()
	}
}

// recordVouches awards points for image attachments and acknowledges the
// post with a checkmark reaction. The reaction is best-effort: a failed
// reaction never rolls back awarded points.
func (s *Service) recordVouches(ctx context.Context, msg domain.Message) bool {
	images := domain.CountImages(msg.Attachments)
	if images == 0 {
		return false
	}

	amount := int64(images) * s.pointsPerImage
	total, err := s.ledger.Record(msg.AuthorID, amount)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to record vouches",
			"user_id", msg.AuthorID,
			"images", images,
			"error", err,
		)
		return false
	}

	if amount > 0 {
		metrics.VouchEventsTotal.Inc()
		metrics.VouchPointsTotal.Add(float64(amount))
	}
	slog.InfoContext(ctx, "Vouches recorded",
		"user_id", msg.AuthorID,
		"images", images,
		"points", amount,
		"total", total,
	)

	if err := s.replier.React(ctx, msg.ChannelID, msg.ID, "✅"); err != nil {
		metrics.ReactionFailures.Inc()
		slog.WarnContext(ctx, "Failed to add acknowledgement reaction",
			"message_id", msg.ID,
			"error", err,
		)
	}
	return true
}

func (s *Service) dispatch(ctx context.Context, msg domain.Message, cmd command.Command) {
	metrics.CommandsTotal.WithLabelValues(cmd.Kind.String()).Inc()

	var err error
	switch cmd.Kind {
	case command.KindVouches:
		err = s.replyVouches(ctx, msg, cmd.Target)
	case command.KindTopVouches:
		err = s.replyTopVouches(ctx, msg)
	}

	if err != nil {
		metrics.CommandErrors.WithLabelValues(cmd.Kind.String()).Inc()
		slog.ErrorContext(ctx, "Command failed",
			"command", cmd.Kind.String(),
			"channel_id", msg.ChannelID,
			"error", err,
		)
		if replyErr := s.replier.Reply(ctx, msg.ChannelID, "⚠️ Something went wrong. Please try again later."); replyErr != nil {
			slog.ErrorContext(ctx, "Failed to send error reply", "error", replyErr)
		}
	}
}

// replyVouches reports a user's points. Looking up a user never creates a
// ledger entry, so asking about someone without vouches reports zero.
func (s *Service) replyVouches(ctx context.Context, msg domain.Message, target string) error {
	userID := target
	if userID == "" {
		userID = msg.AuthorID
	}

	points := s.ledger.Get(userID)
	name := s.names.DisplayName(ctx, msg.GuildID, userID)
	return s.replier.Reply(ctx, msg.ChannelID, fmt.Sprintf("⭐ %s has %d vouch point(s)!", name, points))
}

func (s *Service) replyTopVouches(ctx context.Context, msg domain.Message) error {
	top := s.ledger.TopN(leaderboardSize)
	if len(top) == 0 {
		return s.replier.Reply(ctx, msg.ChannelID, "📉 No vouches recorded yet.")
	}

	entries := make([]domain.LeaderboardEntry, 0, len(top))
	for i, entry := range top {
		entries = append(entries, domain.LeaderboardEntry{
			Rank:        i + 1,
			DisplayName: s.names.DisplayName(ctx, msg.GuildID, entry.UserID),
			Points:      entry.Points,
		})
	}
	return s.replier.SendLeaderboard(ctx, msg.ChannelID, entries)
}
