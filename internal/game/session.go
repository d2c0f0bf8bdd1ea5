package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/playmatatu/pinball/internal/physics"
	"github.com/playmatatu/pinball/internal/table"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionLimit    = errors.New("session limit reached")
	ErrBallLimit       = errors.New("ball limit reached")
	ErrUnknownAction   = errors.New("unknown action")
)

// Action names accepted by Session.Actuate.
const (
	ActionFlipper = "flipper" // energize (On) or release a flipper solenoid
	ActionKick    = "kick"    // fire a kicker coil
	ActionGate    = "gate"    // force a gate open (On) or let it fall back
	ActionEnable  = "enable"  // enable (On) or disable an item, e.g. reset a drop target
)

// Actuation is an external coil or switch command for one item.
type Actuation struct {
	Action      string  `json:"action" binding:"required"`
	Item        string  `json:"item" binding:"required"`
	On          bool    `json:"on"`
	Angle       float32 `json:"angle"`       // kick direction, degrees clockwise from up the table
	Speed       float32 `json:"speed"`       // kick speed
	Inclination float32 `json:"inclination"` // kick elevation, degrees
}

// Frame is published after every stepped frame.
type Frame struct {
	Session string             `json:"session"`
	Table   string             `json:"table"`
	Frame   uint64             `json:"frame"`
	Stats   physics.FrameStats `json:"stats"`
	Balls   []physics.Ball     `json:"balls"`
	Events  []EventView        `json:"events,omitempty"`
	Drained []physics.BallID   `json:"drained,omitempty"`
}

// EventView is an event with its item name resolved for clients.
type EventView struct {
	physics.Event
	ItemName string `json:"item_name"`
}

// Snapshot is the full renderable state of a session.
type Snapshot struct {
	ID        string              `json:"id"`
	Table     string              `json:"table"`
	Frame     uint64              `json:"frame"`
	StartedAt time.Time           `json:"started_at"`
	Balls     []physics.Ball      `json:"balls"`
	Items     []physics.ItemState `json:"items"`
}

// Snapshot is the renderable state carried by the frame. Item states are
// not published per frame, so Items is empty.
func (f *Frame) Snapshot() Snapshot {
	return Snapshot{ID: f.Session, Table: f.Table, Frame: f.Frame, Balls: f.Balls}
}

// Session is one running table. The frame loop and actuation calls are
// serialized by mu; the world itself is not safe for concurrent use.
type Session struct {
	ID        string
	TableID   int64
	StartedAt time.Time

	layout   *table.Layout
	frameDT  float32
	maxBalls int
	log      *zap.Logger

	mu         sync.Mutex
	world      *physics.World
	events     int64
	lastActive time.Time

	stop chan struct{}
	done chan struct{}
}

func newSession(id string, tableID int64, l *table.Layout, w *physics.World, frameDT float32, maxBalls int, log *zap.Logger) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		TableID:    tableID,
		StartedAt:  now,
		layout:     l,
		frameDT:    frameDT,
		maxBalls:   maxBalls,
		log:        log.With(zap.String("session", id), zap.String("table", l.Name)),
		world:      w,
		lastActive: now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (s *Session) TableName() string { return s.layout.Name }

// Tick steps the world one frame, drains its events and removes balls that
// left the bottom of the table.
func (s *Session) Tick() *Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.world.Step(s.frameDT)
	if stats.Truncated {
		s.log.Debug("frame truncated at iteration cap", zap.Uint64("frame", stats.Frame), zap.Int("sub_steps", stats.SubSteps))
	}
	events := s.world.Drain()
	s.events += int64(len(events))

	f := &Frame{Session: s.ID, Table: s.layout.Name, Frame: stats.Frame, Stats: stats}
	for _, e := range events {
		f.Events = append(f.Events, EventView{Event: e, ItemName: s.world.ItemName(e.Item)})
	}
	for _, b := range s.world.Balls() {
		if b.Pos[1]-b.Radius > s.layout.Height {
			if err := s.world.RemoveBall(b.ID); err == nil {
				f.Drained = append(f.Drained, b.ID)
				s.log.Debug("ball drained", zap.Uint32("ball", uint32(b.ID)))
			}
		}
	}
	f.Balls = s.world.Balls()
	return f
}

// SpawnBall puts a ball into play at the plunger, or at pos with vel when
// given.
func (s *Session) SpawnBall(pos, vel *physics.Vec3) (physics.BallID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxBalls > 0 && len(s.world.Balls()) >= s.maxBalls {
		return 0, fmt.Errorf("%d balls in play: %w", s.maxBalls, ErrBallLimit)
	}
	p, v := s.layout.Plunger.Pos, s.layout.Plunger.Vel
	if pos != nil {
		p = *pos
	}
	if vel != nil {
		v = *vel
	}
	s.lastActive = time.Now()
	return s.world.SpawnBall(p, v), nil
}

func (s *Session) RemoveBall(id physics.BallID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	return s.world.RemoveBall(id)
}

// Actuate applies an external command to a named item. For kicks it
// returns the number of balls released.
func (s *Session) Actuate(a Actuation) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.world.ItemID(a.Item)
	if err != nil {
		return 0, err
	}
	s.lastActive = time.Now()
	switch a.Action {
	case ActionFlipper:
		return 0, s.world.SetFlipper(item, a.On)
	case ActionKick:
		return s.world.Kick(item, a.Angle, a.Speed, a.Inclination)
	case ActionGate:
		return 0, s.world.SetGateForced(item, a.On)
	case ActionEnable:
		return 0, s.world.SetItemEnabled(item, a.On)
	default:
		return 0, fmt.Errorf("%q: %w", a.Action, ErrUnknownAction)
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:        s.ID,
		Table:     s.layout.Name,
		Frame:     s.world.Frame(),
		StartedAt: s.StartedAt,
		Balls:     s.world.Balls(),
		Items:     s.world.ItemStates(),
	}
}

// LastActive is the time of the last spawn, removal or actuation.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) counters() (frames uint64, events int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Frame(), s.events
}
