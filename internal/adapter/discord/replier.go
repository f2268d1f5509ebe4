package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/quikeats/Vouchy/internal/domain"
)

const (
	leaderboardTitle       = "🏆 Top Vouch Leaderboard"
	leaderboardDescription = "Here are the top users with the most vouch points!"
	leaderboardColor       = 0xF1C40F
)

// Replier sends bot output through the Discord REST API.
type Replier struct {
	session *discordgo.Session
}

func NewReplier(session *discordgo.Session) *Replier {
	return &Replier{session: session}
}

var _ domain.Replier = (*Replier)(nil)

func (r *Replier) Reply(ctx context.Context, channelID, text string) error {
	if _, err := r.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (r *Replier) React(ctx context.Context, channelID, messageID, emoji string) error {
	if err := r.session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to add reaction: %w", err)
	}
	return nil
}

func (r *Replier) SendLeaderboard(ctx context.Context, channelID string, entries []domain.LeaderboardEntry) error {
	embed := buildLeaderboardEmbed(entries)
	if _, err := r.session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send leaderboard embed: %w", err)
	}
	return nil
}

func buildLeaderboardEmbed(entries []domain.LeaderboardEntry) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(entries))
	for _, e := range entries {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("#%d %s", e.Rank, e.DisplayName),
			Value:  fmt.Sprintf("⭐ %d point(s)", e.Points),
			Inline: false,
		})
	}

	return &discordgo.MessageEmbed{
		Title:       leaderboardTitle,
		Description: leaderboardDescription,
		Color:       leaderboardColor,
		Fields:      fields,
	}
}
