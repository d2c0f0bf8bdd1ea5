package game

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/playmatatu/pinball/internal/config"
	"github.com/playmatatu/pinball/internal/metrics"
	"github.com/playmatatu/pinball/internal/models"
	"github.com/playmatatu/pinball/internal/physics"
	"github.com/playmatatu/pinball/internal/table"
)

// Recorder stores the summary of a closed session.
type Recorder interface {
	LogSession(ctx context.Context, l models.SessionLog) error
}

type Options struct {
	FrameRate   int     // frames per second; zero leaves stepping to the caller
	FrameDT     float32 // simulation time per frame
	MaxBalls    int
	MaxSessions int
	Idle        time.Duration
	Physics     physics.Options
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		FrameRate:   cfg.FrameRate,
		FrameDT:     cfg.FrameDT,
		MaxBalls:    cfg.MaxBalls,
		MaxSessions: cfg.MaxSessions,
		Idle:        time.Duration(cfg.SessionIdleMinutes) * time.Minute,
		Physics:     cfg.PhysicsOptions(),
	}
}

// Manager owns the running sessions and their frame loops.
type Manager struct {
	opts     Options
	idle     time.Duration
	log      *zap.Logger
	pub      Publisher
	expiry   ExpirySchedule
	recorder Recorder

	mu       sync.RWMutex
	sessions map[string]*Session
	pending  int // creates past the limit check, still building
	onClose  []func(id string)
}

// NewManager creates a manager. pub, expiry and rec may be nil.
func NewManager(opts Options, log *zap.Logger, pub Publisher, expiry ExpirySchedule, rec Recorder) *Manager {
	if opts.FrameDT <= 0 {
		opts.FrameDT = 1
	}
	if opts.Idle <= 0 {
		opts.Idle = 15 * time.Minute
	}
	if pub == nil {
		pub = nopPublisher{}
	}
	if expiry == nil {
		expiry = NewMemoryExpiry()
	}
	return &Manager{
		opts:     opts,
		idle:     opts.Idle,
		log:      log.Named("game"),
		pub:      pub,
		expiry:   expiry,
		recorder: rec,
		sessions: make(map[string]*Session),
	}
}

// OnClose registers fn to run after a session is closed, whether by a
// client or by the expiry worker. Register before creating sessions.
func (m *Manager) OnClose(fn func(id string)) {
	m.mu.Lock()
	m.onClose = append(m.onClose, fn)
	m.mu.Unlock()
}

// Create builds a world for the layout and starts its frame loop.
func (m *Manager) Create(ctx context.Context, l *table.Layout, tableID int64) (*Session, error) {
	// Reserve a slot first so concurrent creates cannot overshoot the limit
	// while their tables are being built.
	m.mu.Lock()
	n := len(m.sessions) + m.pending
	if m.opts.MaxSessions > 0 && n >= m.opts.MaxSessions {
		m.mu.Unlock()
		return nil, fmt.Errorf("%d sessions running: %w", n, ErrSessionLimit)
	}
	m.pending++
	m.mu.Unlock()

	popts := m.opts.Physics
	popts.Logger = m.log
	if popts.Observer == nil {
		popts.Observer = metrics.Observer{}
	}
	w, err := table.Build(l, popts)
	if err != nil {
		m.mu.Lock()
		m.pending--
		m.mu.Unlock()
		return nil, err
	}

	s := newSession(uuid.NewString(), tableID, l, w, m.opts.FrameDT, m.opts.MaxBalls, m.log)
	m.mu.Lock()
	m.pending--
	m.sessions[s.ID] = s
	m.mu.Unlock()
	metrics.ActiveSessions.Inc()

	if err := m.expiry.Schedule(ctx, s.ID, s.StartedAt.Add(m.idle)); err != nil {
		m.log.Warn("schedule session expiry", zap.String("session", s.ID), zap.Error(err))
	}
	if m.opts.FrameRate > 0 {
		go m.run(s)
	} else {
		close(s.done)
	}
	s.log.Info("session started", zap.Int("frame_rate", m.opts.FrameRate))
	return s, nil
}

func (m *Manager) run(s *Session) {
	defer close(s.done)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := time.NewTicker(time.Second / time.Duration(m.opts.FrameRate))
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			start := time.Now()
			f := s.Tick()
			metrics.FrameStepSeconds.Observe(time.Since(start).Seconds())
			if err := m.pub.PublishFrame(ctx, f); err != nil {
				s.log.Debug("publish frame", zap.Uint64("frame", f.Frame), zap.Error(err))
			}
		}
	}
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// List returns the running sessions, oldest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Session) int { return a.StartedAt.Compare(b.StartedAt) })
	return out
}

// Close stops a session's loop and records its summary.
func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}

	close(s.stop)
	<-s.done
	metrics.ActiveSessions.Dec()
	if err := m.expiry.Cancel(ctx, id); err != nil {
		m.log.Warn("cancel session expiry", zap.String("session", id), zap.Error(err))
	}

	frames, events := s.counters()
	s.log.Info("session closed", zap.Uint64("frames", frames), zap.Int64("events", events))
	m.mu.RLock()
	hooks := m.onClose
	m.mu.RUnlock()
	for _, fn := range hooks {
		fn(id)
	}
	if m.recorder == nil {
		return nil
	}
	entry := models.SessionLog{
		ID:        s.ID,
		TableID:   sql.NullInt64{Int64: s.TableID, Valid: s.TableID > 0},
		TableName: s.TableName(),
		Frames:    int64(frames),
		Events:    events,
		StartedAt: s.StartedAt,
		EndedAt:   time.Now(),
	}
	if err := m.recorder.LogSession(ctx, entry); err != nil {
		m.log.Warn("record session", zap.String("session", id), zap.Error(err))
	}
	return nil
}

// Shutdown closes every session.
func (m *Manager) Shutdown(ctx context.Context) {
	for _, s := range m.List() {
		m.Close(ctx, s.ID)
	}
}
