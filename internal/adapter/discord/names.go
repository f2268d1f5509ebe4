package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/quikeats/Vouchy/internal/domain"
)

const unknownUserName = "(User Left Server)"

// NameResolver resolves user IDs to display names, preferring the guild
// nickname. Lookups hit the session state cache first and only fall back
// to the REST API on a miss, so rendering a leaderboard normally costs no
// HTTP requests.
type NameResolver struct {
	session *discordgo.Session
}

func NewNameResolver(session *discordgo.Session) *NameResolver {
	return &NameResolver{session: session}
}

var _ domain.NameResolver = (*NameResolver)(nil)

func (n *NameResolver) DisplayName(ctx context.Context, guildID, userID string) string {
	if guildID == "" {
		return n.userName(ctx, userID)
	}

	if member, err := n.session.State.Member(guildID, userID); err == nil {
		return memberDisplayName(member)
	}

	member, err := n.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return unknownUserName
	}
	return memberDisplayName(member)
}

func (n *NameResolver) userName(ctx context.Context, userID string) string {
	user, err := n.session.User(userID, discordgo.WithContext(ctx))
	if err != nil {
		return unknownUserName
	}
	return userDisplayName(user)
}

func memberDisplayName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User == nil {
		return unknownUserName
	}
	return userDisplayName(m.User)
}

func userDisplayName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}
