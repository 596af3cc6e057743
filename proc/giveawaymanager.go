package proc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/giveaway/sys"
	"github.com/puzpuzpuz/xsync"
)

var ErrSessionExists = errors.New("a giveaway already listens on this message")

const sessionInboxSize = 64

// Reporter publishes the outcome of a closed giveaway.
type Reporter interface {
	ReportResult(ctx context.Context, s *Session, result Result) error
	// ReportFailed is the fallback once ReportResult returned an error.
	ReportFailed(ctx context.Context, s *Session, err error)
}

type ArchiveFunc func(ctx context.Context, record *sys.GiveawayRecord) error

type sessionHandle struct {
	session  *Session
	reporter Reporter
	inbox    chan EntryEvent
	done     chan struct{}
	stopOnce sync.Once
}

// stop reports whether this call ended the session. Expiry, Discard and
// shutdown race through it and only the first one wins.
func (h *sessionHandle) stop() bool {
	stopped := false
	h.stopOnce.Do(func() {
		close(h.done)
		stopped = true
	})
	return stopped
}

// GiveawayManager owns every open giveaway. Each session runs on its own
// goroutine which is the only one touching its participants.
type GiveawayManager struct {
	sessions *xsync.MapOf[string, *sessionHandle]
	after    func(time.Duration) <-chan time.Time
	now      func() time.Time
	archive  ArchiveFunc
	wg       sync.WaitGroup
}

type ManagerOption func(*GiveawayManager)

// WithClock replaces the timer and wall clock, mostly for tests.
func WithClock(after func(time.Duration) <-chan time.Time, now func() time.Time) ManagerOption {
	return func(m *GiveawayManager) {
		m.after = after
		m.now = now
	}
}

func WithArchive(archive ArchiveFunc) ManagerOption {
	return func(m *GiveawayManager) { m.archive = archive }
}

func NewGiveawayManager(opts ...ManagerOption) *GiveawayManager {
	m := &GiveawayManager{
		sessions: xsync.NewMapOf[*sessionHandle](),
		after:    time.After,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Giveaways is the process-wide manager used by the giv command.
var Giveaways = NewGiveawayManager(WithArchive(archiveToDatabase))

func archiveToDatabase(ctx context.Context, record *sys.GiveawayRecord) error {
	if sys.DB == nil {
		return nil
	}
	return sys.SaveGiveawayRecord(ctx, record)
}

// Open registers s under its announcement message and starts its window.
func (m *GiveawayManager) Open(ctx context.Context, s *Session, reporter Reporter) error {
	h := &sessionHandle{
		session:  s,
		reporter: reporter,
		inbox:    make(chan EntryEvent, sessionInboxSize),
		done:     make(chan struct{}),
	}
	key := s.MessageID.String()
	if _, loaded := m.sessions.LoadOrStore(key, h); loaded {
		return ErrSessionExists
	}

	sys.LogGiveaway(sys.MsgGiveawayOpened, s.ID, s.ChannelID, s.Prize, s.WinnerCount, sys.FormatWindow(s.Window), s.Symbol.Reaction())

	m.wg.Add(1)
	sys.SafeGo(func() {
		defer m.wg.Done()
		m.run(ctx, key, h)
	})
	return nil
}

func (m *GiveawayManager) run(ctx context.Context, key string, h *sessionHandle) {
	timeout := m.after(h.session.Window)
	for {
		select {
		case ev := <-h.inbox:
			m.apply(h.session, ev)

		case <-timeout:
			if !h.stop() {
				return
			}
			m.unregister(key, h)
			// Entries that were already queued still count.
			for drained := false; !drained; {
				select {
				case ev := <-h.inbox:
					m.apply(h.session, ev)
				default:
					drained = true
				}
			}

			_, effects := HandleEvent(h.session, ExpireEvent{At: m.now()})
			for _, eff := range effects {
				if report, ok := eff.(ReportEffect); ok {
					m.report(ctx, h, report)
				}
			}
			return

		case <-ctx.Done():
			if h.stop() {
				m.unregister(key, h)
			}
			return

		case <-h.done:
			return
		}
	}
}

func (m *GiveawayManager) unregister(key string, h *sessionHandle) {
	if current, ok := m.sessions.Load(key); ok && current == h {
		m.sessions.Delete(key)
	}
}

func (m *GiveawayManager) apply(s *Session, ev EntryEvent) {
	_, effects := HandleEvent(s, ev)
	for _, eff := range effects {
		if accepted, ok := eff.(EntryAccepted); ok {
			sys.LogDebug(sys.MsgGiveawayEntry, accepted.UserID, s.ID, s.ParticipantCount())
		}
	}
}

func (m *GiveawayManager) report(ctx context.Context, h *sessionHandle, eff ReportEffect) {
	s := h.session
	if h.reporter != nil {
		if err := h.reporter.ReportResult(ctx, s, eff.Result); err != nil {
			sys.LogGiveaway(sys.MsgGiveawayReportFail, s.ID, err)
			h.reporter.ReportFailed(ctx, s, err)
		}
	}

	if m.archive != nil {
		record := &sys.GiveawayRecord{
			ID:           s.ID,
			GuildID:      s.GuildID,
			ChannelID:    s.ChannelID,
			MessageID:    s.MessageID,
			Prize:        s.Prize,
			WinnerCount:  s.WinnerCount,
			EntrySymbol:  s.Symbol.Reaction(),
			Participants: eff.Result.Participants,
			Winners:      eff.Result.Winners,
			OpenedAt:     s.OpenedAt,
			ClosedAt:     eff.ClosedAt,
		}
		if err := m.archive(ctx, record); err != nil {
			sys.LogGiveaway(sys.MsgGiveawayArchiveFail, s.ID, err)
		}
	}

	sys.LogGiveaway(sys.MsgGiveawayClosed, s.ID, eff.Result.Participants)
}

// Submit hands ev to the giveaway announced by messageID. It returns false
// when no open giveaway listens on that message.
func (m *GiveawayManager) Submit(messageID snowflake.ID, ev EntryEvent) bool {
	h, ok := m.sessions.Load(messageID.String())
	if !ok {
		return false
	}
	select {
	case h.inbox <- ev:
		return true
	case <-h.done:
		return false
	}
}

// Discard stops a giveaway without drawing or reporting. It returns false
// when the giveaway is unknown or its window already closed.
func (m *GiveawayManager) Discard(messageID snowflake.ID) bool {
	h, ok := m.sessions.LoadAndDelete(messageID.String())
	if !ok || !h.stop() {
		return false
	}
	sys.LogGiveaway(sys.MsgGiveawayDiscarded, h.session.ID)
	return true
}

// Close discards every open giveaway and waits for in-flight reports.
func (m *GiveawayManager) Close() {
	var keys []string
	m.sessions.Range(func(key string, _ *sessionHandle) bool {
		keys = append(keys, key)
		return true
	})

	discarded := 0
	for _, key := range keys {
		if h, ok := m.sessions.LoadAndDelete(key); ok && h.stop() {
			discarded++
		}
	}
	if discarded > 0 {
		sys.LogGiveaway(sys.MsgGiveawayDiscardedAll, discarded)
	}
	m.wg.Wait()
}

func (m *GiveawayManager) Active() int {
	return m.sessions.Size()
}

// Lookup returns the open giveaway on messageID. Only its exported fields may
// be read from outside the manager.
func (m *GiveawayManager) Lookup(messageID snowflake.ID) (*Session, bool) {
	h, ok := m.sessions.Load(messageID.String())
	if !ok {
		return nil, false
	}
	return h.session, true
}
