package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quikeats/Vouchy/internal/domain"
)

// --- Mock implementations ---

type mockLedger struct {
	recordFn func(userID string, amount int64) (int64, error)
	getFn    func(userID string) int64
	topNFn   func(n int) []domain.Entry

	recordCalls []recordCall
}

type recordCall struct {
	userID string
	amount int64
}

func (m *mockLedger) Record(userID string, amount int64) (int64, error) {
	m.recordCalls = append(m.recordCalls, recordCall{userID: userID, amount: amount})
	if m.recordFn != nil {
		return m.recordFn(userID, amount)
	}
	return amount, nil
}

func (m *mockLedger) Get(userID string) int64 {
	if m.getFn != nil {
		return m.getFn(userID)
	}
	return 0
}

func (m *mockLedger) TopN(n int) []domain.Entry {
	if m.topNFn != nil {
		return m.topNFn(n)
	}
	return nil
}

func (m *mockLedger) Snapshot() []domain.Entry {
	return m.TopN(0)
}

type mockReplier struct {
	replyFn           func(ctx context.Context, channelID, text string) error
	sendLeaderboardFn func(ctx context.Context, channelID string, entries []domain.LeaderboardEntry) error
	reactFn           func(ctx context.Context, channelID, messageID, emoji string) error

	replies      []string
	leaderboards [][]domain.LeaderboardEntry
	reactions    []string
}

func (m *mockReplier) Reply(ctx context.Context, channelID, text string) error {
	m.replies = append(m.replies, text)
	if m.replyFn != nil {
		return m.replyFn(ctx, channelID, text)
	}
	return nil
}

func (m *mockReplier) SendLeaderboard(ctx context.Context, channelID string, entries []domain.LeaderboardEntry) error {
	m.leaderboards = append(m.leaderboards, entries)
	if m.sendLeaderboardFn != nil {
		return m.sendLeaderboardFn(ctx, channelID, entries)
	}
	return nil
}

func (m *mockReplier) React(ctx context.Context, channelID, messageID, emoji string) error {
	m.reactions = append(m.reactions, emoji)
	if m.reactFn != nil {
		return m.reactFn(ctx, channelID, messageID, emoji)
	}
	return nil
}

type mockNames struct {
	displayNameFn func(ctx context.Context, guildID, userID string) string
}

func (m *mockNames) DisplayName(ctx context.Context, guildID, userID string) string {
	if m.displayNameFn != nil {
		return m.displayNameFn(ctx, guildID, userID)
	}
	return "user-" + userID
}

// --- Helpers ---

const (
	vouchChannelID = "900000000000000001"
	otherChannelID = "900000000000000002"
)

func newTestService(ledger *mockLedger, replier *mockReplier, names *mockNames) *Service {
	return NewService(ledger, replier, names, vouchChannelID, "!", 1)
}

func imageMessage(channelID, authorID string, images int) domain.Message {
	msg := domain.Message{
		ID:        "msg-1",
		ChannelID: channelID,
		GuildID:   "guild-1",
		AuthorID:  authorID,
	}
	for i := 0; i < images; i++ {
		msg.Attachments = append(msg.Attachments, domain.Attachment{
			Filename:    "proof.png",
			ContentType: "image/png",
		})
	}
	return msg
}

func textMessage(channelID, authorID, content string) domain.Message {
	return domain.Message{
		ID:        "msg-1",
		ChannelID: channelID,
		GuildID:   "guild-1",
		AuthorID:  authorID,
		Content:   content,
	}
}

// --- Tests ---

func TestHandleMessage_BotAuthorIgnored(t *testing.T) {
	ledger := &mockLedger{}
	replier := &mockReplier{}
	svc := newTestService(ledger, replier, &mockNames{})

	msg := imageMessage(vouchChannelID, "111", 1)
	msg.AuthorIsBot = true
	msg.Content = "!vouches"
	svc.HandleMessage(context.Background(), msg)

	assert.Empty(t, ledger.recordCalls)
	assert.Empty(t, replier.replies)
	assert.Empty(t, replier.reactions)
}

func TestHandleMessage_AwardsPointsPerImage(t *testing.T) {
	ledger := &mockLedger{}
	replier := &mockReplier{}
	svc := NewService(ledger, replier, &mockNames{}, vouchChannelID, "!", 3)

	svc.HandleMessage(context.Background(), imageMessage(vouchChannelID, "111", 2))

	require.Len(t, ledger.recordCalls, 1)
	assert.Equal(t, recordCall{userID: "111", amount: 6}, ledger.recordCalls[0])
	assert.Equal(t, []string{"✅"}, replier.reactions)
}

func TestHandleMessage_IgnoresImagesOutsideVouchChannel(t *testing.T) {
	ledger := &mockLedger{}
	replier := &mockReplier{}
	svc := newTestService(ledger, replier, &mockNames{})

	svc.HandleMessage(context.Background(), imageMessage(otherChannelID, "111", 2))

	assert.Empty(t, ledger.recordCalls)
	assert.Empty(t, replier.reactions)
}

func TestHandleMessage_NoImagesNoAward(t *testing.T) {
	ledger := &mockLedger{}
	replier := &mockReplier{}
	svc := newTestService(ledger, replier, &mockNames{})

	msg := textMessage(vouchChannelID, "111", "just text")
	msg.Attachments = []domain.Attachment{{Filename: "notes.txt", ContentType: "text/plain"}}
	svc.HandleMessage(context.Background(), msg)

	assert.Empty(t, ledger.recordCalls)
	assert.Empty(t, replier.reactions)
}

func TestHandleMessage_ReactionFailureKeepsPoints(t *testing.T) {
	ledger := &mockLedger{}
	replier := &mockReplier{
		reactFn: func(context.Context, string, string, string) error {
			return errors.New("missing permissions")
		},
	}
	svc := newTestService(ledger, replier, &mockNames{})

	svc.HandleMessage(context.Background(), imageMessage(vouchChannelID, "111", 1))

	require.Len(t, ledger.recordCalls, 1)
	assert.Equal(t, int64(1), ledger.recordCalls[0].amount)
}

func TestHandleMessage_RecordFailureSkipsReaction(t *testing.T) {
	ledger := &mockLedger{
		recordFn: func(string, int64) (int64, error) {
			return 0, errors.New("rejected")
		},
	}
	replier := &mockReplier{}
	svc := newTestService(ledger, replier, &mockNames{})

	svc.HandleMessage(context.Background(), imageMessage(vouchChannelID, "111", 1))

	assert.Empty(t, replier.reactions)
}

func TestHandleMessage_ZeroPointsPerImageStillAcknowledges(t *testing.T) {
	ledger := &mockLedger{}
	replier := &mockReplier{}
	svc := NewService(ledger, replier, &mockNames{}, vouchChannelID, "!", 0)

	svc.HandleMessage(context.Background(), imageMessage(vouchChannelID, "111", 2))

	require.Len(t, ledger.recordCalls, 1)
	assert.Equal(t, int64(0), ledger.recordCalls[0].amount)
	assert.Equal(t, []string{"✅"}, replier.reactions)
}

func TestHandleMessage_VouchesCommandSelf(t *testing.T) {
	ledger := &mockLedger{
		getFn: func(userID string) int64 {
			require.Equal(t, "111", userID)
			return 5
		},
	}
	replier := &mockReplier{}
	names := &mockNames{
		displayNameFn: func(_ context.Context, _, userID string) string {
			return "Alice"
		},
	}
	svc := newTestService(ledger, replier, names)

	svc.HandleMessage(context.Background(), textMessage(otherChannelID, "111", "!vouches"))

	require.Len(t, replier.replies, 1)
	assert.Equal(t, "⭐ Alice has 5 vouch point(s)!", replier.replies[0])
}

func TestHandleMessage_VouchesCommandMention(t *testing.T) {
	var askedFor string
	ledger := &mockLedger{
		getFn: func(userID string) int64 {
			askedFor = userID
			return 12
		},
	}
	replier := &mockReplier{}
	names := &mockNames{
		displayNameFn: func(_ context.Context, _, userID string) string {
			return "Bob"
		},
	}
	svc := newTestService(ledger, replier, names)

	svc.HandleMessage(context.Background(), textMessage(otherChannelID, "111", "!vouches <@222>"))

	assert.Equal(t, "222", askedFor)
	require.Len(t, replier.replies, 1)
	assert.Equal(t, "⭐ Bob has 12 vouch point(s)!", replier.replies[0])
}

func TestHandleMessage_VouchesZeroStillReplies(t *testing.T) {
	ledger := &mockLedger{}
	replier := &mockReplier{}
	names := &mockNames{
		displayNameFn: func(_ context.Context, _, _ string) string {
			return "Newcomer"
		},
	}
	svc := newTestService(ledger, replier, names)

	svc.HandleMessage(context.Background(), textMessage(otherChannelID, "111", "!vouches"))

	require.Len(t, replier.replies, 1)
	assert.Equal(t, "⭐ Newcomer has 0 vouch point(s)!", replier.replies[0])
}

func TestHandleMessage_TopVouchesEmptyLedger(t *testing.T) {
	ledger := &mockLedger{}
	replier := &mockReplier{}
	svc := newTestService(ledger, replier, &mockNames{})

	svc.HandleMessage(context.Background(), textMessage(otherChannelID, "111", "!topvouches"))

	require.Len(t, replier.replies, 1)
	assert.Equal(t, "📉 No vouches recorded yet.", replier.replies[0])
	assert.Empty(t, replier.leaderboards)
}

func TestHandleMessage_TopVouchesSendsRankedEntries(t *testing.T) {
	ledger := &mockLedger{
		topNFn: func(n int) []domain.Entry {
			require.Equal(t, 10, n)
			return []domain.Entry{
				{UserID: "111", Points: 9},
				{UserID: "222", Points: 4},
			}
		},
	}
	replier := &mockReplier{}
	svc := newTestService(ledger, replier, &mockNames{})

	svc.HandleMessage(context.Background(), textMessage(otherChannelID, "111", "!topvouches"))

	require.Len(t, replier.leaderboards, 1)
	assert.Equal(t, []domain.LeaderboardEntry{
		{Rank: 1, DisplayName: "user-111", Points: 9},
		{Rank: 2, DisplayName: "user-222", Points: 4},
	}, replier.leaderboards[0])
	assert.Empty(t, replier.replies)
}

func TestHandleMessage_VouchAndCommandAreIndependent(t *testing.T) {
	ledger := &mockLedger{
		topNFn: func(int) []domain.Entry {
			return []domain.Entry{{UserID: "111", Points: 1}}
		},
	}
	replier := &mockReplier{}
	svc := newTestService(ledger, replier, &mockNames{})

	msg := imageMessage(vouchChannelID, "111", 1)
	msg.Content = "!topvouches"
	svc.HandleMessage(context.Background(), msg)

	// The image earns a point and the command still gets its answer.
	require.Len(t, ledger.recordCalls, 1)
	assert.Equal(t, []string{"✅"}, replier.reactions)
	require.Len(t, replier.leaderboards, 1)
}

func TestHandleMessage_CommandFailureSendsGenericReply(t *testing.T) {
	ledger := &mockLedger{
		topNFn: func(int) []domain.Entry {
			return []domain.Entry{{UserID: "111", Points: 1}}
		},
	}
	replier := &mockReplier{
		sendLeaderboardFn: func(context.Context, string, []domain.LeaderboardEntry) error {
			return errors.New("channel gone")
		},
	}
	svc := newTestService(ledger, replier, &mockNames{})

	svc.HandleMessage(context.Background(), textMessage(otherChannelID, "111", "!topvouches"))

	require.Len(t, replier.replies, 1)
	assert.Equal(t, "⚠️ Something went wrong. Please try again later.", replier.replies[0])
}

func TestHandleMessage_UnknownCommandIgnored(t *testing.T) {
	ledger := &mockLedger{}
	replier := &mockReplier{}
	svc := newTestService(ledger, replier, &mockNames{})

	svc.HandleMessage(context.Background(), textMessage(otherChannelID, "111", "!help"))

	assert.Empty(t, replier.replies)
	assert.Empty(t, replier.leaderboards)
}
