package home

import (
	"context"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/giveaway/proc"
	"github.com/leeineian/giveaway/sys"
)

// giveawayRest is the part of the REST client reporting needs.
type giveawayRest interface {
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
	UpdateMessage(channelID snowflake.ID, messageID snowflake.ID, messageUpdate discord.MessageUpdate, opts ...rest.RequestOpt) (*discord.Message, error)
	CreateFollowupMessage(applicationID snowflake.ID, interactionToken string, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
}

// discordReporter posts results in the announcement channel. Interaction
// tokens expire after 15 minutes so the follow-up is only a fallback.
type discordReporter struct {
	rest          giveawayRest
	applicationID snowflake.ID
	token         string
}

func (r *discordReporter) ReportResult(ctx context.Context, s *proc.Session, result proc.Result) error {
	_, err := r.rest.CreateMessage(s.ChannelID, resultMessage(s, result), rest.WithCtx(ctx))

	embeds := []discord.Embed{endedEmbed(s, result)}
	if _, editErr := r.rest.UpdateMessage(s.ChannelID, s.MessageID, discord.MessageUpdate{Embeds: &embeds}, rest.WithCtx(ctx)); editErr != nil {
		sys.LogGiveaway(sys.MsgGiveawayEditFail, s.ID, editErr)
	}
	return err
}

func (r *discordReporter) ReportFailed(ctx context.Context, s *proc.Session, _ error) {
	_, err := r.rest.CreateFollowupMessage(r.applicationID, r.token, discord.MessageCreate{
		Content: sys.ErrGiveawayGeneric,
		Flags:   discord.MessageFlagEphemeral,
	}, rest.WithCtx(ctx))
	if err != nil {
		sys.LogGiveaway(sys.MsgGiveawayFollowupFail, err)
	}
}
