package home

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/omit"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/giveaway/proc"
	"github.com/leeineian/giveaway/sys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGivRequest(t *testing.T) {
	req, problem := parseGivRequest(" Nitro ", "30m", 2, "https://example.com/prize.gif")
	require.Empty(t, problem)
	assert.Equal(t, "Nitro", req.Prize)
	assert.Equal(t, "30m", req.Token)
	assert.Equal(t, 30*time.Minute, req.Window)
	assert.Equal(t, 2, req.WinnerCount)
	assert.Equal(t, "https://example.com/prize.gif", req.Image)

	tests := []struct {
		name     string
		prize    string
		duration string
		winners  int
		image    string
		want     string
	}{
		{"empty prize", "  ", "1h", 1, "", sys.ErrGiveawayInvalidPrize},
		{"bad duration", "Nitro", "soon", 1, "", sys.ErrGiveawayInvalidDuration},
		{"zero duration", "Nitro", "0m", 1, "", sys.ErrGiveawayInvalidDuration},
		{"no winners", "Nitro", "1h", 0, "", sys.ErrGiveawayInvalidWinners},
		{"relative image", "Nitro", "1h", 1, "prize.gif", sys.ErrGiveawayInvalidImage},
		{"ftp image", "Nitro", "1h", 1, "ftp://example.com/prize.gif", sys.ErrGiveawayInvalidImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, problem := parseGivRequest(tt.prize, tt.duration, tt.winners, tt.image)
			assert.Equal(t, tt.want, problem)
		})
	}
}

func TestGivCommand(t *testing.T) {
	open := givCommand(false)
	assert.Equal(t, "giv", open.Name)
	require.Len(t, open.Options, 4)
	assert.Equal(t, omit.Omit[*discord.Permissions]{}, open.DefaultMemberPermissions)

	winners, ok := open.Options[2].(discord.ApplicationCommandOptionInt)
	require.True(t, ok)
	require.NotNil(t, winners.MinValue)
	assert.Equal(t, 1, *winners.MinValue)

	restricted := givCommand(true)
	perm := discord.PermissionManageGuild
	assert.Equal(t, omit.New(&perm), restricted.DefaultMemberPermissions)
}

func TestUsableSymbols(t *testing.T) {
	symbols := usableSymbols([]discord.Emoji{
		{ID: 1, Name: "party", Available: true},
		{ID: 2, Name: "gone", Available: false},
		{ID: 3, Name: "vip", Available: true, Roles: []snowflake.ID{9}},
		{ID: 4, Name: "spin", Available: true, Animated: true},
	})
	assert.Equal(t, []proc.EntrySymbol{
		{Name: "party", ID: 1},
		{Name: "spin", ID: 4, Animated: true},
	}, symbols)
}

func TestReactionKeyMatchesSymbol(t *testing.T) {
	name := "party"
	id := snowflake.ID(42)
	assert.Equal(t, proc.EntrySymbol{Name: "party", ID: 42}.Reaction(), reactionKey(discord.PartialEmoji{Name: &name, ID: &id}))

	unicode := "🎉"
	assert.Equal(t, proc.EntrySymbol{Name: "🎉"}.Reaction(), reactionKey(discord.PartialEmoji{Name: &unicode}))
	assert.Empty(t, reactionKey(discord.PartialEmoji{}))
}

func TestAnnouncementEmbed(t *testing.T) {
	req := givRequest{Prize: "Nitro", Token: "30m", Window: 30 * time.Minute, WinnerCount: 2}
	endsAt := time.Unix(1_700_000_000, 0)

	embed := announcementEmbed(req, proc.EntrySymbol{Name: "party", ID: 42}, endsAt)
	assert.Equal(t, "🎉 Giveaway: Nitro", embed.Title)
	assert.Contains(t, embed.Description, "React with <:party:42> to enter!")
	assert.Contains(t, embed.Description, "**2**")
	assert.Contains(t, embed.Description, "**30m** (<t:1700000000:R>)")
	assert.Nil(t, embed.Image)
	require.NotNil(t, embed.Footer)
	assert.Equal(t, sys.MsgGiveawayFooter, embed.Footer.Text)

	req.Image = "https://example.com/a.png"
	embed = announcementEmbed(req, proc.EntrySymbol{Name: "🎉"}, endsAt)
	require.NotNil(t, embed.Image)
	assert.Equal(t, req.Image, embed.Image.URL)
}

func testSession(t *testing.T) *proc.Session {
	t.Helper()
	s, err := proc.NewSession(proc.SessionConfig{
		GuildID:     1,
		ChannelID:   2,
		MessageID:   3,
		Prize:       "Nitro",
		WinnerCount: 2,
		Window:      time.Minute,
		Symbol:      proc.EntrySymbol{Name: "🎉"},
	}, nil, time.Now())
	require.NoError(t, err)
	return s
}

func TestResultMessage(t *testing.T) {
	s := testSession(t)

	msg := resultMessage(s, proc.Result{Winners: []snowflake.ID{10, 20}, Participants: 3})
	assert.Equal(t, "🎊 Congratulations <@10>, <@20>, you won **Nitro**! 🎁", msg.Content)
	require.NotNil(t, msg.AllowedMentions)
	assert.Equal(t, []snowflake.ID{10, 20}, msg.AllowedMentions.Users)
	require.NotNil(t, msg.MessageReference)
	assert.Equal(t, snowflake.ID(3), *msg.MessageReference.MessageID)

	msg = resultMessage(s, proc.Result{})
	assert.Equal(t, sys.MsgGiveawayNoParticipants, msg.Content)
	assert.Empty(t, msg.AllowedMentions.Users)
}

func TestEndedEmbed(t *testing.T) {
	s := testSession(t)

	embed := endedEmbed(s, proc.Result{Winners: []snowflake.ID{10}, Participants: 4})
	assert.Contains(t, embed.Description, "*Participants:* **4**")
	assert.Contains(t, embed.Description, "*Winners:* <@10>")
	assert.Equal(t, sys.MsgGiveawayEndedFooter, embed.Footer.Text)

	embed = endedEmbed(s, proc.Result{})
	assert.Contains(t, embed.Description, "No participants")
}

type fakeRest struct {
	created   []discord.MessageCreate
	updated   []discord.MessageUpdate
	followups []discord.MessageCreate
	createErr error
	updateErr error
}

func (f *fakeRest) CreateMessage(_ snowflake.ID, m discord.MessageCreate, _ ...rest.RequestOpt) (*discord.Message, error) {
	f.created = append(f.created, m)
	return &discord.Message{}, f.createErr
}

func (f *fakeRest) UpdateMessage(_ snowflake.ID, _ snowflake.ID, m discord.MessageUpdate, _ ...rest.RequestOpt) (*discord.Message, error) {
	f.updated = append(f.updated, m)
	return &discord.Message{}, f.updateErr
}

func (f *fakeRest) CreateFollowupMessage(_ snowflake.ID, _ string, m discord.MessageCreate, _ ...rest.RequestOpt) (*discord.Message, error) {
	f.followups = append(f.followups, m)
	return &discord.Message{}, nil
}

func TestDiscordReporter(t *testing.T) {
	ctx := context.Background()
	s := testSession(t)

	t.Run("posts result and marks announcement ended", func(t *testing.T) {
		fake := &fakeRest{updateErr: errors.New("unknown message")}
		r := &discordReporter{rest: fake, applicationID: 5, token: "tok"}

		err := r.ReportResult(ctx, s, proc.Result{Winners: []snowflake.ID{10}, Participants: 1})
		require.NoError(t, err, "edit failures are only logged")
		require.Len(t, fake.created, 1)
		require.Len(t, fake.updated, 1)
		require.NotNil(t, fake.updated[0].Embeds)
		assert.Len(t, *fake.updated[0].Embeds, 1)
	})

	t.Run("surfaces post failure and falls back", func(t *testing.T) {
		fake := &fakeRest{createErr: errors.New("missing access")}
		r := &discordReporter{rest: fake, applicationID: 5, token: "tok"}

		err := r.ReportResult(ctx, s, proc.Result{})
		require.Error(t, err)

		r.ReportFailed(ctx, s, err)
		require.Len(t, fake.followups, 1)
		assert.Equal(t, sys.ErrGiveawayGeneric, fake.followups[0].Content)
		assert.Equal(t, discord.MessageFlagEphemeral, fake.followups[0].Flags)
	})
}
