package sys

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDatabase(t *testing.T) context.Context {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, InitDatabase(ctx, filepath.Join(t.TempDir(), "test.db")))
	t.Cleanup(CloseDatabase)
	return ctx
}

func TestBotConfig(t *testing.T) {
	ctx := openTestDatabase(t)

	value, err := GetBotConfig(ctx, "last_cmd_hash")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, SetBotConfig(ctx, "last_cmd_hash", "abc"))
	require.NoError(t, SetBotConfig(ctx, "last_cmd_hash", "def"))

	value, err = GetBotConfig(ctx, "last_cmd_hash")
	require.NoError(t, err)
	assert.Equal(t, "def", value)
}

func TestGiveawayRecord(t *testing.T) {
	ctx := openTestDatabase(t)

	opened := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	record := &GiveawayRecord{
		ID:           "3f2b8c1e-0000-4000-8000-000000000001",
		GuildID:      snowflake.ID(111111111111111111),
		ChannelID:    snowflake.ID(222222222222222222),
		MessageID:    snowflake.ID(333333333333333333),
		Prize:        "Nitro",
		WinnerCount:  2,
		EntrySymbol:  "party:444444444444444444",
		Participants: 3,
		Winners:      []snowflake.ID{555555555555555555, 666666666666666666},
		OpenedAt:     opened,
		ClosedAt:     opened.Add(30 * time.Minute),
	}
	require.NoError(t, SaveGiveawayRecord(ctx, record))

	got, err := GetGiveawayRecord(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.GuildID, got.GuildID)
	assert.Equal(t, record.MessageID, got.MessageID)
	assert.Equal(t, record.Winners, got.Winners)
	assert.Equal(t, record.Participants, got.Participants)
	assert.True(t, record.ClosedAt.Equal(got.ClosedAt))

	err = SaveGiveawayRecord(ctx, record)
	assert.Error(t, err, "duplicate IDs must be rejected")

	count, err := CountGiveawayRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGiveawayRecord_NoWinnersNoGuild(t *testing.T) {
	ctx := openTestDatabase(t)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, SaveGiveawayRecord(ctx, &GiveawayRecord{
		ID:          "cancelled",
		ChannelID:   snowflake.ID(222222222222222222),
		MessageID:   snowflake.ID(333333333333333333),
		Prize:       "Sticker pack",
		WinnerCount: 1,
		EntrySymbol: "🎉",
		OpenedAt:    now,
		ClosedAt:    now,
	}))

	got, err := GetGiveawayRecord(ctx, "cancelled")
	require.NoError(t, err)
	assert.Empty(t, got.Winners)
	assert.Equal(t, snowflake.ID(0), got.GuildID)
	assert.Equal(t, 0, got.Participants)
}
