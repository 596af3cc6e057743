package home

import (
	"fmt"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/giveaway/proc"
	"github.com/leeineian/giveaway/sys"
)

func handleGiv(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	image, _ := data.OptString("image")

	req, problem := parseGivRequest(data.String("prize"), data.String("duration"), data.Int("winners"), image)
	if problem != "" {
		if err := givRespondEphemeral(event, problem); err != nil {
			sys.LogGiveaway(sys.MsgGiveawayRespondFail, err)
		}
		return
	}

	client := event.Client()
	var guildID snowflake.ID
	if id := event.GuildID(); id != nil {
		guildID = *id
	}
	symbol := pickGuildSymbol(client, guildID)

	now := time.Now()
	err := event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{announcementEmbed(req, symbol, now.Add(req.Window))},
	})
	if err != nil {
		sys.LogGiveaway(sys.MsgGiveawayRespondFail, err)
		if err := givRespondEphemeral(event, sys.ErrGiveawayGeneric); err != nil {
			sys.LogGiveaway(sys.MsgGiveawayRespondFail, err)
		}
		return
	}

	if err := openGiveaway(event, client, guildID, req, symbol, now); err != nil {
		sys.LogGiveaway(sys.MsgGiveawayHandlerFailed, err)
		_, err := client.Rest.CreateFollowupMessage(event.ApplicationID(), event.Token(), discord.MessageCreate{
			Content: sys.ErrGiveawayGeneric,
			Flags:   discord.MessageFlagEphemeral,
		})
		if err != nil {
			sys.LogGiveaway(sys.MsgGiveawayFollowupFail, err)
		}
	}
}

// openGiveaway seeds the entry reaction on the announcement and starts
// listening on it.
func openGiveaway(event *events.ApplicationCommandInteractionCreate, client *bot.Client, guildID snowflake.ID, req givRequest, symbol proc.EntrySymbol, now time.Time) error {
	msg, err := client.Rest.GetInteractionResponse(event.ApplicationID(), event.Token())
	if err != nil {
		return fmt.Errorf(sys.MsgGiveawayAnnounceFail, err)
	}

	if err := client.Rest.AddReaction(msg.ChannelID, msg.ID, symbol.Reaction()); err != nil {
		return fmt.Errorf(sys.MsgGiveawayReactFail, err)
	}

	session, err := proc.NewSession(proc.SessionConfig{
		GuildID:     guildID,
		ChannelID:   msg.ChannelID,
		MessageID:   msg.ID,
		Prize:       req.Prize,
		WinnerCount: req.WinnerCount,
		Window:      req.Window,
		Symbol:      symbol,
		Image:       req.Image,
	}, nil, now)
	if err != nil {
		return err
	}

	reporter := &discordReporter{
		rest:          client.Rest,
		applicationID: event.ApplicationID(),
		token:         event.Token(),
	}
	return proc.Giveaways.Open(sys.AppContext, session, reporter)
}

// pickGuildSymbol draws the entry symbol among the guild's custom emojis.
func pickGuildSymbol(client *bot.Client, guildID snowflake.ID) proc.EntrySymbol {
	fallback := fallbackSymbol()
	if guildID == 0 {
		return fallback
	}

	emojis, err := client.Rest.GetEmojis(guildID, rest.WithCtx(sys.AppContext))
	if err != nil {
		sys.LogGiveaway(sys.MsgGiveawayEmojiFetchFail, guildID, err)
		return fallback
	}
	return proc.PickEntrySymbol(proc.SharedRand, usableSymbols(emojis), fallback)
}
