package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/playmatatu/pinball/internal/models"
	"github.com/playmatatu/pinball/internal/physics"
	"github.com/playmatatu/pinball/internal/table"
)

type fakeRecorder struct {
	mu   sync.Mutex
	logs []models.SessionLog
}

func (r *fakeRecorder) LogSession(_ context.Context, l models.SessionLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, l)
	return nil
}

func manualManager(t *testing.T, opts Options, rec Recorder) *Manager {
	t.Helper()
	opts.Physics.Parallelism = 1
	return NewManager(opts, zap.NewNop(), nil, nil, rec)
}

// openTable is a flat playfield with nothing else on it.
func openTable() *table.Layout {
	return &table.Layout{
		Name:      "open",
		Width:     500,
		Height:    500,
		Materials: []physics.Material{{Name: "m"}},
		Items:     []table.Item{{Name: "playfield", Type: "playfield", Material: "m"}},
		Plunger:   table.Launch{Pos: physics.Vec3{250, 400, 25}},
	}
}

func TestSessionLifecycle(t *testing.T) {
	rec := &fakeRecorder{}
	m := manualManager(t, Options{}, rec)
	ctx := context.Background()
	var closed []string
	m.OnClose(func(id string) { closed = append(closed, id) })

	s, err := m.Create(ctx, table.Demo(), 7)
	require.NoError(t, err)

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Len(t, m.List(), 1)

	id, err := s.SpawnBall(nil, nil)
	require.NoError(t, err)
	for range 10 {
		s.Tick()
	}
	snap := s.Snapshot()
	assert.Equal(t, uint64(10), snap.Frame)
	assert.Equal(t, "demo", snap.Table)
	require.Len(t, snap.Balls, 1)
	assert.Equal(t, id, snap.Balls[0].ID)
	assert.NotEmpty(t, snap.Items)

	require.NoError(t, m.Close(ctx, s.ID))
	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Close(ctx, s.ID), ErrSessionNotFound)
	assert.Equal(t, []string{s.ID}, closed)

	require.Len(t, rec.logs, 1)
	assert.Equal(t, s.ID, rec.logs[0].ID)
	assert.Equal(t, int64(10), rec.logs[0].Frames)
	assert.Equal(t, int64(7), rec.logs[0].TableID.Int64)
	assert.Equal(t, "demo", rec.logs[0].TableName)
}

func TestCreateRejectsInvalidLayout(t *testing.T) {
	m := manualManager(t, Options{}, nil)
	_, err := m.Create(context.Background(), &table.Layout{Name: "bad"}, 0)
	assert.ErrorIs(t, err, table.ErrInvalidLayout)
	assert.Empty(t, m.List())
}

func TestSessionLimit(t *testing.T) {
	m := manualManager(t, Options{MaxSessions: 1}, nil)
	ctx := context.Background()
	_, err := m.Create(ctx, openTable(), 0)
	require.NoError(t, err)
	_, err = m.Create(ctx, openTable(), 0)
	assert.ErrorIs(t, err, ErrSessionLimit)
	m.Shutdown(ctx)
	assert.Empty(t, m.List())
}

func TestSessionLimitUnderConcurrentCreates(t *testing.T) {
	m := manualManager(t, Options{MaxSessions: 3}, nil)
	ctx := context.Background()
	defer m.Shutdown(ctx)

	var (
		wg              sync.WaitGroup
		mu              sync.Mutex
		created, denied int
	)
	for range 12 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Create(ctx, table.Demo(), 0)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
				return
			}
			assert.ErrorIs(t, err, ErrSessionLimit)
			denied++
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, created)
	assert.Equal(t, 9, denied)
	assert.Len(t, m.List(), 3)
}

func TestFailedCreateReleasesSlot(t *testing.T) {
	m := manualManager(t, Options{MaxSessions: 1}, nil)
	ctx := context.Background()
	defer m.Shutdown(ctx)

	_, err := m.Create(ctx, &table.Layout{Name: "bad"}, 0)
	require.ErrorIs(t, err, table.ErrInvalidLayout)
	_, err = m.Create(ctx, openTable(), 0)
	assert.NoError(t, err)
}

func TestBallLimit(t *testing.T) {
	m := manualManager(t, Options{MaxBalls: 2}, nil)
	s, err := m.Create(context.Background(), openTable(), 0)
	require.NoError(t, err)

	_, err = s.SpawnBall(nil, nil)
	require.NoError(t, err)
	b, err := s.SpawnBall(&physics.Vec3{100, 100, 25}, nil)
	require.NoError(t, err)
	_, err = s.SpawnBall(nil, nil)
	assert.ErrorIs(t, err, ErrBallLimit)

	require.NoError(t, s.RemoveBall(b))
	assert.ErrorIs(t, s.RemoveBall(b), physics.ErrUnknownBall)
	_, err = s.SpawnBall(nil, nil)
	assert.NoError(t, err)
}

func TestBallsDrainOffTheBottom(t *testing.T) {
	m := manualManager(t, Options{}, nil)
	s, err := m.Create(context.Background(), openTable(), 0)
	require.NoError(t, err)

	id, err := s.SpawnBall(&physics.Vec3{250, 480, 25}, &physics.Vec3{0, 20, 0})
	require.NoError(t, err)

	var drained []physics.BallID
	for range 5 {
		drained = append(drained, s.Tick().Drained...)
	}
	assert.Equal(t, []physics.BallID{id}, drained)
	assert.Empty(t, s.Snapshot().Balls)
}

func TestActuate(t *testing.T) {
	m := manualManager(t, Options{}, nil)
	s, err := m.Create(context.Background(), table.Demo(), 0)
	require.NoError(t, err)

	_, err = s.Actuate(Actuation{Action: ActionFlipper, Item: "left-flipper", On: true})
	require.NoError(t, err)
	for range 10 {
		s.Tick()
	}
	var flipper physics.ItemState
	for _, it := range s.Snapshot().Items {
		if it.Name == "left-flipper" {
			flipper = it
		}
	}
	assert.InDelta(t, physics.Radians(-25), flipper.Angle, 1e-4)

	_, err = s.Actuate(Actuation{Action: ActionEnable, Item: "drop-1", On: false})
	require.NoError(t, err)
	_, err = s.Actuate(Actuation{Action: ActionGate, Item: "lane-gate", On: true})
	require.NoError(t, err)
	n, err := s.Actuate(Actuation{Action: ActionKick, Item: "saucer", Speed: 10})
	require.NoError(t, err)
	assert.Zero(t, n, "nothing held")

	_, err = s.Actuate(Actuation{Action: ActionKick, Item: "bumper-1"})
	assert.ErrorIs(t, err, physics.ErrWrongKind)
	_, err = s.Actuate(Actuation{Action: ActionFlipper, Item: "nope"})
	assert.ErrorIs(t, err, physics.ErrUnknownItem)
	_, err = s.Actuate(Actuation{Action: "tilt", Item: "left-flipper"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestExpireDue(t *testing.T) {
	m := manualManager(t, Options{Idle: time.Hour}, nil)
	ctx := context.Background()
	s, err := m.Create(ctx, openTable(), 0)
	require.NoError(t, err)

	assert.Empty(t, m.ExpireDue(ctx, s.StartedAt.Add(time.Minute)), "not due yet")

	// Activity after the start pushes the deadline back.
	time.Sleep(time.Millisecond)
	_, err = s.SpawnBall(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, m.ExpireDue(ctx, s.StartedAt.Add(time.Hour)))
	_, err = m.Get(s.ID)
	require.NoError(t, err)

	closed := m.ExpireDue(ctx, s.StartedAt.Add(3*time.Hour))
	assert.Equal(t, []string{s.ID}, closed)
	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	e := NewMemoryExpiry()
	now := time.Now()
	require.NoError(t, e.Schedule(ctx, "a", now))
	require.NoError(t, e.Schedule(ctx, "b", now.Add(time.Minute)))
	require.NoError(t, e.Schedule(ctx, "c", now))
	require.NoError(t, e.Cancel(ctx, "c"))

	due, err := e.Due(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, due)

	due, err = e.Due(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, due, "due sessions are handed out once")
}

func TestFrameLoopPublishes(t *testing.T) {
	frames := make(chan *Frame, 16)
	pub := PublisherFunc(func(_ context.Context, f *Frame) error {
		select {
		case frames <- f:
		default:
		}
		return nil
	})
	m := NewManager(Options{FrameRate: 500, Physics: physics.Options{Parallelism: 1}}, zap.NewNop(), pub, nil, nil)
	ctx := context.Background()
	s, err := m.Create(ctx, table.Demo(), 0)
	require.NoError(t, err)
	_, err = s.SpawnBall(nil, nil)
	require.NoError(t, err)

	select {
	case f := <-frames:
		assert.Equal(t, s.ID, f.Session)
		assert.Positive(t, f.Frame)
	case <-time.After(2 * time.Second):
		t.Fatal("no frame published")
	}
	require.NoError(t, m.Close(ctx, s.ID))
}
