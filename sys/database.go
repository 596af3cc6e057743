package sys

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	_ "github.com/mattn/go-sqlite3"
)

var DB *sql.DB

func InitDatabase(ctx context.Context, dataSourceName string) error {
	var err error
	DB, err = sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return err
	}

	DB.SetMaxOpenConns(5)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA cache_size=-2000;",
	}

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for _, p := range pragmas {
		if _, err := DB.ExecContext(initCtx, p); err != nil {
			return fmt.Errorf(MsgDatabasePragmaError, p, err)
		}
	}

	tx, err := DB.BeginTx(initCtx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tableQueries := []string{
		`CREATE TABLE IF NOT EXISTS bot_config (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS giveaway_history (
			id TEXT PRIMARY KEY,
			guild_id TEXT,
			channel_id TEXT NOT NULL,
			message_id TEXT NOT NULL,
			prize TEXT NOT NULL,
			winner_count INTEGER NOT NULL,
			entry_symbol TEXT NOT NULL,
			participants INTEGER NOT NULL,
			winners TEXT NOT NULL DEFAULT '',
			opened_at DATETIME NOT NULL,
			closed_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_giveaway_history_guild ON giveaway_history(guild_id)`,
	}

	for _, q := range tableQueries {
		if _, err := tx.ExecContext(initCtx, q); err != nil {
			return fmt.Errorf(MsgDatabaseTableError, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	LogDatabase(MsgDatabaseInitSuccess)
	return nil
}

func CloseDatabase() {
	if DB != nil {
		if err := DB.Close(); err != nil {
			LogError(MsgDatabaseCloseError, err)
		}
		DB = nil
	}
}

// BotConfig helpers are used by the loader for registration mode tracking.
func GetBotConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := DB.QueryRowContext(ctx, `SELECT value FROM bot_config WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func SetBotConfig(ctx context.Context, key, value string) error {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO bot_config (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	return err
}

// GiveawayRecord is the archived outcome of a closed giveaway.
type GiveawayRecord struct {
	ID           string
	GuildID      snowflake.ID
	ChannelID    snowflake.ID
	MessageID    snowflake.ID
	Prize        string
	WinnerCount  int
	EntrySymbol  string
	Participants int
	Winners      []snowflake.ID
	OpenedAt     time.Time
	ClosedAt     time.Time
}

func SaveGiveawayRecord(ctx context.Context, r *GiveawayRecord) error {
	winners := make([]string, len(r.Winners))
	for i, id := range r.Winners {
		winners[i] = id.String()
	}

	var guildID any
	if r.GuildID != 0 {
		guildID = r.GuildID.String()
	}

	_, err := DB.ExecContext(ctx, `
		INSERT INTO giveaway_history
			(id, guild_id, channel_id, message_id, prize, winner_count, entry_symbol, participants, winners, opened_at, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, guildID, r.ChannelID.String(), r.MessageID.String(), r.Prize, r.WinnerCount,
		r.EntrySymbol, r.Participants, strings.Join(winners, ","), r.OpenedAt.UTC(), r.ClosedAt.UTC())
	if err != nil {
		return fmt.Errorf(MsgDBSaveRecordFail, r.ID, err)
	}
	return nil
}

func GetGiveawayRecord(ctx context.Context, id string) (*GiveawayRecord, error) {
	var (
		r                         GiveawayRecord
		guildID                   sql.NullString
		channelID, messageID, win string
	)
	err := DB.QueryRowContext(ctx, `
		SELECT id, guild_id, channel_id, message_id, prize, winner_count, entry_symbol, participants, winners, opened_at, closed_at
		FROM giveaway_history WHERE id = ?`, id).Scan(
		&r.ID, &guildID, &channelID, &messageID, &r.Prize, &r.WinnerCount,
		&r.EntrySymbol, &r.Participants, &win, &r.OpenedAt, &r.ClosedAt)
	if err != nil {
		return nil, err
	}

	if guildID.Valid {
		if r.GuildID, err = snowflake.Parse(guildID.String); err != nil {
			return nil, fmt.Errorf("failed to parse guild ID '%s' for giveaway %s: %w", guildID.String, id, err)
		}
	}
	if r.ChannelID, err = snowflake.Parse(channelID); err != nil {
		return nil, fmt.Errorf("failed to parse channel ID '%s' for giveaway %s: %w", channelID, id, err)
	}
	if r.MessageID, err = snowflake.Parse(messageID); err != nil {
		return nil, fmt.Errorf("failed to parse message ID '%s' for giveaway %s: %w", messageID, id, err)
	}
	if win != "" {
		for _, s := range strings.Split(win, ",") {
			wid, err := snowflake.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("failed to parse winner ID '%s' for giveaway %s: %w", s, id, err)
			}
			r.Winners = append(r.Winners, wid)
		}
	}
	return &r, nil
}

func CountGiveawayRecords(ctx context.Context) (int, error) {
	var count int
	err := DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM giveaway_history`).Scan(&count)
	return count, err
}
