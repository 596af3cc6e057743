package proc

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
)

var ErrInvalidSession = errors.New("invalid giveaway")

// Rand is the random source used for symbol and winner selection.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// SharedRand draws from the process-wide generator and is safe for concurrent use.
var SharedRand Rand = globalRand{}

// EntrySymbol is the emoji participants react with. Unicode emoji have a zero ID.
type EntrySymbol struct {
	Name     string
	ID       snowflake.ID
	Animated bool
}

// Reaction returns the key used by the reaction API and by reaction events.
func (e EntrySymbol) Reaction() string {
	if e.ID == 0 {
		return e.Name
	}
	return e.Name + ":" + e.ID.String()
}

// Mention renders the symbol inline in message content.
func (e EntrySymbol) Mention() string {
	if e.ID == 0 {
		return e.Name
	}
	if e.Animated {
		return fmt.Sprintf("<a:%s:%s>", e.Name, e.ID)
	}
	return fmt.Sprintf("<:%s:%s>", e.Name, e.ID)
}

// PickEntrySymbol chooses uniformly among candidates, or returns fallback when there are none.
func PickEntrySymbol(rng Rand, candidates []EntrySymbol, fallback EntrySymbol) EntrySymbol {
	if len(candidates) == 0 {
		return fallback
	}
	return candidates[rng.IntN(len(candidates))]
}

type State int

const (
	StateOpen State = iota
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type SessionConfig struct {
	GuildID     snowflake.ID
	ChannelID   snowflake.ID
	MessageID   snowflake.ID
	Prize       string
	WinnerCount int
	Window      time.Duration
	Symbol      EntrySymbol
	Image       string
}

// Session is one giveaway. Its participants are only touched by HandleEvent,
// which the manager calls from the session's own goroutine.
type Session struct {
	ID          string
	GuildID     snowflake.ID
	ChannelID   snowflake.ID
	MessageID   snowflake.ID
	Prize       string
	WinnerCount int
	Window      time.Duration
	Symbol      EntrySymbol
	Image       string
	OpenedAt    time.Time

	rng          Rand
	state        State
	participants map[snowflake.ID]struct{}
	order        []snowflake.ID
}

func NewSession(cfg SessionConfig, rng Rand, now time.Time) (*Session, error) {
	switch {
	case strings.TrimSpace(cfg.Prize) == "":
		return nil, fmt.Errorf("%w: empty prize", ErrInvalidSession)
	case cfg.WinnerCount < 1:
		return nil, fmt.Errorf("%w: winner count %d", ErrInvalidSession, cfg.WinnerCount)
	case cfg.Window <= 0:
		return nil, fmt.Errorf("%w: window %v", ErrInvalidSession, cfg.Window)
	case cfg.Symbol.Reaction() == "":
		return nil, fmt.Errorf("%w: no entry symbol", ErrInvalidSession)
	}
	if rng == nil {
		rng = SharedRand
	}

	return &Session{
		ID:           uuid.NewString(),
		GuildID:      cfg.GuildID,
		ChannelID:    cfg.ChannelID,
		MessageID:    cfg.MessageID,
		Prize:        cfg.Prize,
		WinnerCount:  cfg.WinnerCount,
		Window:       cfg.Window,
		Symbol:       cfg.Symbol,
		Image:        cfg.Image,
		OpenedAt:     now,
		rng:          rng,
		state:        StateOpen,
		participants: make(map[snowflake.ID]struct{}),
	}, nil
}

func (s *Session) State() State { return s.state }

func (s *Session) ParticipantCount() int { return len(s.order) }

// Participants returns entrants in the order they first entered.
func (s *Session) Participants() []snowflake.ID {
	out := make([]snowflake.ID, len(s.order))
	copy(out, s.order)
	return out
}

// --- Events & effects ---

type Event interface{ isEvent() }

// EntryEvent is a resolved reaction on the announcement.
type EntryEvent struct {
	Symbol string
	UserID snowflake.ID
	IsBot  bool
}

// ExpireEvent fires once the window has elapsed.
type ExpireEvent struct {
	At time.Time
}

func (EntryEvent) isEvent()  {}
func (ExpireEvent) isEvent() {}

type Effect interface{ isEffect() }

type EntryAccepted struct {
	UserID snowflake.ID
}

type ReportEffect struct {
	Result   Result
	ClosedAt time.Time
}

func (EntryAccepted) isEffect() {}
func (ReportEffect) isEffect()  {}

// Result of a closed giveaway. Winners is empty when nobody entered.
type Result struct {
	Winners      []snowflake.ID
	Participants int
}

func (r Result) NoWinners() bool { return len(r.Winners) == 0 }

// HandleEvent applies ev to s and returns the new state with the effects to
// carry out. Closed sessions ignore every event.
func HandleEvent(s *Session, ev Event) (State, []Effect) {
	if s.state == StateClosed {
		return s.state, nil
	}

	switch e := ev.(type) {
	case EntryEvent:
		if e.IsBot || e.UserID == 0 || e.Symbol != s.Symbol.Reaction() {
			return s.state, nil
		}
		if _, ok := s.participants[e.UserID]; ok {
			return s.state, nil
		}
		s.participants[e.UserID] = struct{}{}
		s.order = append(s.order, e.UserID)
		return s.state, []Effect{EntryAccepted{UserID: e.UserID}}

	case ExpireEvent:
		s.state = StateClosed
		result := Result{
			Winners:      Draw(s.rng, s.order, s.WinnerCount),
			Participants: len(s.order),
		}
		return s.state, []Effect{ReportEffect{Result: result, ClosedAt: e.At}}
	}

	return s.state, nil
}

// Draw shuffles a copy of participants with Fisher-Yates and keeps the first
// min(count, len(participants)) entries.
func Draw(rng Rand, participants []snowflake.ID, count int) []snowflake.ID {
	if len(participants) == 0 || count < 1 {
		return nil
	}

	pool := make([]snowflake.ID, len(participants))
	copy(pool, participants)
	for i := len(pool) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}

	return pool[:min(count, len(pool))]
}

// RawEntry is a reaction as delivered by the gateway. When Loaded is false the
// account type is unknown and has to be fetched before the entry counts.
type RawEntry struct {
	Symbol string
	UserID snowflake.ID
	IsBot  bool
	Loaded bool
}

// UserLookup reports whether a user is an automated account.
type UserLookup func(ctx context.Context, userID snowflake.ID) (isBot bool, err error)

// ResolveEntry completes raw when needed. ok is false when the lookup failed
// and the entry must be dropped.
func ResolveEntry(ctx context.Context, raw RawEntry, lookup UserLookup) (EntryEvent, bool, error) {
	ev := EntryEvent{Symbol: raw.Symbol, UserID: raw.UserID, IsBot: raw.IsBot}
	if raw.Loaded {
		return ev, true, nil
	}

	isBot, err := lookup(ctx, raw.UserID)
	if err != nil {
		return EntryEvent{}, false, err
	}
	ev.IsBot = isBot
	return ev, true, nil
}
