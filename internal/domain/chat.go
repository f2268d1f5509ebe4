package domain

import "context"

// LeaderboardEntry is one rendered leaderboard line for chat output. Unlike
// RankedEntry it carries a resolved display name instead of a raw user ID.
type LeaderboardEntry struct {
	Rank        int
	DisplayName string
	Points      int64
}

// Replier sends outbound messages back to the chat platform.
type Replier interface {
	Reply(ctx context.Context, channelID, text string) error
	SendLeaderboard(ctx context.Context, channelID string, entries []LeaderboardEntry) error
	React(ctx context.Context, channelID, messageID, emoji string) error
}

// NameResolver resolves a user ID to a human-readable display name.
// Implementations return a fallback label rather than an error when the
// user cannot be resolved.
type NameResolver interface {
	DisplayName(ctx context.Context, guildID, userID string) string
}
