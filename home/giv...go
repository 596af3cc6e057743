package home

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/omit"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/giveaway/proc"
	"github.com/leeineian/giveaway/sys"
)

const (
	givPrizeMaxLength = 200
	givEmbedColor     = 0xF1C40F
	givEndedColor     = 0x95A5A6
)

func init() {
	sys.OnConfigLoaded(func(cfg *sys.Config) {
		sys.RegisterCommand(givCommand(cfg.ManagersOnly), handleGiv)
	})
	sys.RegisterReactionAddHandler(handleGivReaction)
}

func givCommand(managersOnly bool) discord.SlashCommandCreate {
	minWinners := 1
	prizeMax := givPrizeMaxLength

	cmd := discord.SlashCommandCreate{
		Name:        "giv",
		Description: "Start a giveaway",
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionString{
				Name:        "prize",
				Description: "What is being given away",
				Required:    true,
				MaxLength:   &prizeMax,
			},
			discord.ApplicationCommandOptionString{
				Name:        "duration",
				Description: "How long entries stay open (e.g. 30s, 10m, 1h, 2d)",
				Required:    true,
			},
			discord.ApplicationCommandOptionInt{
				Name:        "winners",
				Description: "Number of winners",
				Required:    true,
				MinValue:    &minWinners,
			},
			discord.ApplicationCommandOptionString{
				Name:        "image",
				Description: "Image or GIF link shown on the announcement",
				Required:    false,
			},
		},
	}
	if managersOnly {
		perm := discord.PermissionManageGuild
		cmd.DefaultMemberPermissions = omit.New(&perm)
	}
	return cmd
}

type givRequest struct {
	Prize       string
	Token       string
	Window      time.Duration
	WinnerCount int
	Image       string
}

// parseGivRequest validates the raw options. problem holds the reply for the
// invoker when the request is rejected.
func parseGivRequest(prize, duration string, winners int, image string) (req givRequest, problem string) {
	prize = strings.TrimSpace(prize)
	if prize == "" {
		return req, sys.ErrGiveawayInvalidPrize
	}

	window, err := sys.ParseGiveawayDuration(duration)
	if err != nil {
		return req, sys.ErrGiveawayInvalidDuration
	}

	if winners < 1 {
		return req, sys.ErrGiveawayInvalidWinners
	}

	image = strings.TrimSpace(image)
	if image != "" && !isWebURL(image) {
		return req, sys.ErrGiveawayInvalidImage
	}

	return givRequest{
		Prize:       prize,
		Token:       strings.TrimSpace(duration),
		Window:      window,
		WinnerCount: winners,
		Image:       image,
	}, ""
}

func isWebURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// usableSymbols keeps the guild emojis every member can react with.
func usableSymbols(emojis []discord.Emoji) []proc.EntrySymbol {
	var out []proc.EntrySymbol
	for _, e := range emojis {
		if !e.Available || len(e.Roles) > 0 || e.Name == "" {
			continue
		}
		out = append(out, proc.EntrySymbol{Name: e.Name, ID: e.ID, Animated: e.Animated})
	}
	return out
}

func fallbackSymbol() proc.EntrySymbol {
	if sys.GlobalConfig != nil && sys.GlobalConfig.DefaultEmoji != "" {
		return proc.EntrySymbol{Name: sys.GlobalConfig.DefaultEmoji}
	}
	return proc.EntrySymbol{Name: sys.DefaultEntryEmoji}
}

// reactionKey mirrors proc.EntrySymbol.Reaction for an incoming reaction.
func reactionKey(emoji discord.PartialEmoji) string {
	name := ""
	if emoji.Name != nil {
		name = *emoji.Name
	}
	if emoji.ID != nil {
		return name + ":" + emoji.ID.String()
	}
	return name
}

func relativeTimestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}

func announcementEmbed(req givRequest, symbol proc.EntrySymbol, endsAt time.Time) discord.Embed {
	embed := discord.Embed{
		Title:       fmt.Sprintf(sys.MsgGiveawayTitle, req.Prize),
		Description: fmt.Sprintf(sys.MsgGiveawayDescription, symbol.Mention(), req.WinnerCount, req.Token, relativeTimestamp(endsAt)),
		Color:       givEmbedColor,
		Footer:      &discord.EmbedFooter{Text: sys.MsgGiveawayFooter},
	}
	if req.Image != "" {
		embed.Image = &discord.EmbedResource{URL: req.Image}
	}
	return embed
}

func endedEmbed(s *proc.Session, result proc.Result) discord.Embed {
	desc := fmt.Sprintf(sys.MsgGiveawayEndedDescription, s.Prize, result.Participants)
	if result.NoWinners() {
		desc += sys.MsgGiveawayEndedNobody
	} else {
		desc += fmt.Sprintf(sys.MsgGiveawayEndedWinners, mentionList(result.Winners))
	}

	embed := discord.Embed{
		Title:       fmt.Sprintf(sys.MsgGiveawayTitle, s.Prize),
		Description: desc,
		Color:       givEndedColor,
		Footer:      &discord.EmbedFooter{Text: sys.MsgGiveawayEndedFooter},
	}
	if s.Image != "" {
		embed.Image = &discord.EmbedResource{URL: s.Image}
	}
	return embed
}

func mentionList(ids []snowflake.ID) string {
	mentions := make([]string, len(ids))
	for i, id := range ids {
		mentions[i] = "<@" + id.String() + ">"
	}
	return strings.Join(mentions, ", ")
}

// resultMessage replies to the announcement. Only the winners get pinged.
func resultMessage(s *proc.Session, result proc.Result) discord.MessageCreate {
	messageID, channelID := s.MessageID, s.ChannelID
	msg := discord.MessageCreate{
		MessageReference: &discord.MessageReference{
			MessageID: &messageID,
			ChannelID: &channelID,
		},
		AllowedMentions: &discord.AllowedMentions{},
	}

	if result.NoWinners() {
		msg.Content = sys.MsgGiveawayNoParticipants
		return msg
	}
	msg.Content = fmt.Sprintf(sys.MsgGiveawayWinners, mentionList(result.Winners), s.Prize)
	msg.AllowedMentions.Users = result.Winners
	return msg
}

func givRespondEphemeral(event *events.ApplicationCommandInteractionCreate, content string) error {
	return event.CreateMessage(discord.MessageCreate{
		Content: content,
		Flags:   discord.MessageFlagEphemeral,
	})
}
