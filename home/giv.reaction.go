package home

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/giveaway/proc"
	"github.com/leeineian/giveaway/sys"
	"golang.org/x/time/rate"
)

// Partial reactions need a user fetch; keep those under the REST budget.
var entryLookupLimiter = rate.NewLimiter(rate.Every(250*time.Millisecond), 5)

func handleGivReaction(event *events.MessageReactionAdd) {
	if _, ok := proc.Giveaways.Lookup(event.MessageID); !ok {
		return
	}

	raw := proc.RawEntry{
		Symbol: reactionKey(event.Emoji),
		UserID: event.UserID,
	}
	if event.Member != nil {
		raw.IsBot = event.Member.User.Bot
		raw.Loaded = true
	}

	lookup := func(ctx context.Context, userID snowflake.ID) (bool, error) {
		if err := entryLookupLimiter.Wait(ctx); err != nil {
			return false, fmt.Errorf(sys.MsgGiveawayRateLimitCancel, err)
		}
		user, err := event.Client().Rest.GetUser(userID, rest.WithCtx(ctx))
		if err != nil {
			return false, err
		}
		return user.Bot, nil
	}

	ev, ok, err := proc.ResolveEntry(sys.AppContext, raw, lookup)
	if !ok {
		sys.LogGiveaway(sys.MsgGiveawayFetchFail, event.UserID, err)
		return
	}
	proc.Giveaways.Submit(event.MessageID, ev)
}
