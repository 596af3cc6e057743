package proc

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/gateway"
	"github.com/leeineian/giveaway/sys"
)

var presenceClient atomic.Pointer[bot.Client]

func init() {
	sys.OnClientReady(func(ctx context.Context, client *bot.Client) {
		presenceClient.Store(client)
	})
	sys.RegisterDaemon(sys.LogBot, func(ctx context.Context) (bool, func(), func()) {
		client := presenceClient.Load()
		if client == nil || sys.GlobalConfig == nil {
			return false, nil, nil
		}
		return true, func() { StartStatusRotator(ctx, client, sys.GlobalConfig) }, func() {
			sys.LogBot(sys.MsgStatusRotatorShutdown)
		}
	})
}

// StartStatusRotator keeps the streaming activity in sync with the running
// giveaways until ctx is cancelled.
func StartStatusRotator(ctx context.Context, client *bot.Client, cfg *sys.Config) {
	interval := cfg.StatusInterval
	if interval <= 0 {
		interval = sys.DefaultStatusPeriod
	}

	var last string
	for tick := 0; ; tick++ {
		drawn, err := countDrawn(ctx)
		if err != nil {
			sys.LogDebug(sys.MsgStatusUpdateFail, err)
		}
		texts := statusTexts(cfg.StatusText, Giveaways.Active(), drawn)
		text := texts[tick%len(texts)]

		if text != last {
			err := client.SetPresence(ctx,
				gateway.WithOnlineStatus(discord.OnlineStatusOnline),
				gateway.WithStreamingActivity(text, cfg.StreamingURL),
			)
			if err != nil {
				sys.LogBot(sys.MsgStatusUpdateFail, err)
			} else {
				last = text
				sys.LogDebug(sys.MsgStatusRotated, text, interval)
			}
		}

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return
		}
	}
}

func countDrawn(ctx context.Context) (int, error) {
	if sys.DB == nil {
		return 0, nil
	}
	return sys.CountGiveawayRecords(ctx)
}

// statusTexts lists the activities to rotate through. It is never empty.
func statusTexts(idle string, active, drawn int) []string {
	if active == 0 {
		return []string{idle}
	}

	running := sys.MsgStatusRunningOne
	if active > 1 {
		running = fmt.Sprintf(sys.MsgStatusRunningMany, active)
	}
	texts := []string{running}
	if drawn > 0 {
		texts = append(texts, fmt.Sprintf(sys.MsgStatusDrawn, drawn))
	}
	return texts
}
