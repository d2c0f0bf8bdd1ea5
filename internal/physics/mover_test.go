package physics

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gateFixture(t *testing.T, twoWay bool) (*World, ItemID) {
	t.Helper()
	f := newTableFixture(t, bouncy)
	gate := f.item("gate", KindGate)
	// Front face of (0,0)->(100,0) is +y.
	_, err := f.bl.AddGate(f.header(gate), NewLineSeg(Vec2{0, 0}, Vec2{100, 0}, 0, 50), GateConfig{
		AngleMin: 0,
		AngleMax: math32.Pi / 2,
		Damping:  1,
		Height:   50,
		TwoWay:   twoWay,
	})
	require.NoError(t, err)
	return f.build(Options{}), gate
}

func TestOneWayGatePassThrough(t *testing.T) {
	w, gate := gateFixture(t, false)
	id := w.SpawnBall(Vec3{50, 50, 25}, Vec3{0, -100, 0})

	events := stepFrames(w, 1)
	require.Len(t, events, 2)
	assert.Equal(t, EventHit, events[0].Kind)
	assert.Equal(t, EventLimitEOS, events[1].Kind)
	assert.Equal(t, NoBall, events[1].Ball)

	b, _ := w.Ball(id)
	assert.InDelta(t, -100, b.Vel[1], 1e-4, "the wire does not deflect the ball")

	// The flap falls back and reports its rest position once.
	events = stepFrames(w, 3)
	assert.Len(t, eventsOf(events, EventLimitBOS), 1)
	assert.Empty(t, eventsOf(events, EventLimitEOS))
	assert.Equal(t, float32(0), w.gates[gate].Angle)
}

func TestOneWayGateBlocksFromBehind(t *testing.T) {
	w, gate := gateFixture(t, false)
	id := w.SpawnBall(Vec3{50, -50, 25}, Vec3{0, 100, 0})

	events := stepFrames(w, 1)
	assert.Empty(t, eventsOf(events, EventHit), "the blocker fires no hit")

	b, _ := w.Ball(id)
	assert.InDelta(t, -100, b.Vel[1], 1e-3)
	assert.Greater(t, w.gates[gate].Angle, float32(0), "the flap still nudges")
}

func TestTwoWayGateBothSides(t *testing.T) {
	w, gate := gateFixture(t, true)
	w.SpawnBall(Vec3{50, -50, 25}, Vec3{0, 100, 0})

	events := stepFrames(w, 1)
	assert.Len(t, eventsOf(events, EventHit), 1)
	assert.Less(t, w.gates[gate].Angle, float32(0), "swings backwards")
}

func TestGateForcedOpen(t *testing.T) {
	w, gate := gateFixture(t, false)
	require.NoError(t, w.SetGateForced(gate, true))

	var events []Event
	for range 100 {
		w.Step(1)
		events = append(events, w.Drain()...)
	}
	assert.InDelta(t, math32.Pi/2, w.gates[gate].Angle, 1e-5)
	assert.Len(t, eventsOf(events, EventLimitEOS), 1)

	require.NoError(t, w.SetGateForced(gate, false))
	assert.Zero(t, w.gates[gate].AngleSpeed)
}

func spinnerFixture(t *testing.T, cfg SpinnerConfig) (*World, ItemID) {
	t.Helper()
	f := newTableFixture(t, bouncy)
	sp := f.item("spinner", KindSpinner)
	_, err := f.bl.AddSpinner(f.header(sp), NewLineSeg(Vec2{0, 0}, Vec2{100, 0}, 0, 50), cfg)
	require.NoError(t, err)
	return f.build(Options{}), sp
}

func TestFreeSpinnerCountsTurns(t *testing.T) {
	w, sp := spinnerFixture(t, SpinnerConfig{Damping: 0.99, Height: 50})
	id := w.SpawnBall(Vec3{50, 50, 25}, Vec3{0, -100, 0})

	events := stepFrames(w, 5)
	spins := eventsOf(events, EventSpin)
	assert.GreaterOrEqual(t, len(spins), 2)
	for _, e := range spins {
		assert.Equal(t, sp, e.Item)
		assert.Equal(t, NoBall, e.Ball)
	}
	assert.Empty(t, eventsOf(events, EventHit))

	a := w.spinners[sp].Angle
	assert.True(t, a >= 0 && a < 2*math32.Pi, "angle %v wrapped", a)

	b, _ := w.Ball(id)
	assert.InDelta(t, -100, b.Vel[1], 1e-4)
}

func TestFreeSpinnerSpinsOncePerRevolution(t *testing.T) {
	for _, speed := range []float32{1, -1} {
		s := &SpinnerState{Item: 3, AngleSpeed: speed}
		var spins int
		emit := func(kind EventKind, item ItemID, ball BallID, _ float32) {
			assert.Equal(t, EventSpin, kind)
			assert.Equal(t, ItemID(3), item)
			spins++
		}
		// 12.5 rad is just short of two turns: the top is passed at pi and 3pi.
		for range 25 {
			s.updateDisplacements(0.5, emit)
		}
		assert.Equal(t, 2, spins, "speed %v", speed)
	}
}

func TestFreeSpinnerSwingAtBottomDoesNotSpin(t *testing.T) {
	s := &SpinnerState{Item: 3}
	emit := func(EventKind, ItemID, BallID, float32) { t.Fatal("unexpected spin event") }
	// Swing either side of hanging straight down, wrapping through zero.
	swing := []float32{-0.5, -0.5, 0.5, 0.5, 0.5, 0.5, -0.5, -0.5}
	for i := range 40 {
		s.AngleSpeed = swing[i%len(swing)]
		s.updateDisplacements(0.5, emit)
	}
}

func TestLimitedSpinnerStops(t *testing.T) {
	w, sp := spinnerFixture(t, SpinnerConfig{AngleMin: 0, AngleMax: 1, Damping: 0.9, Height: 50})
	w.SpawnBall(Vec3{50, 50, 25}, Vec3{0, -100, 0})

	events := stepFrames(w, 2)
	assert.Len(t, eventsOf(events, EventLimitEOS), 1)
	assert.LessOrEqual(t, w.spinners[sp].Angle, float32(1))
}

func flipperFixture(t *testing.T) (*World, ItemID) {
	t.Helper()
	f := newTableFixture(t, Material{Name: "flipper", Elasticity: 0.8})
	fl := f.item("left", KindFlipper)
	_, err := f.bl.AddFlipper(f.header(fl), FlipperConfig{
		Pivot:       Vec2{0, 0},
		BaseRadius:  20,
		EndRadius:   10,
		Length:      100,
		StartAngle:  0,
		EndAngle:    Radians(60),
		ZLow:        0,
		ZHigh:       50,
		Strength:    1,
		ReturnRatio: 0.5,
	})
	require.NoError(t, err)
	return f.build(Options{}), fl
}

func TestFlipperStrokeLimits(t *testing.T) {
	w, fl := flipperFixture(t)
	require.NoError(t, w.SetFlipper(fl, true))

	events := stepFrames(w, 5)
	assert.Len(t, eventsOf(events, EventLimitEOS), 1)
	assert.Empty(t, eventsOf(events, EventLimitBOS))
	assert.InDelta(t, Radians(60), w.flippers[fl].Angle, 1e-5)

	require.NoError(t, w.SetFlipper(fl, false))
	events = stepFrames(w, 10)
	assert.Len(t, eventsOf(events, EventLimitBOS), 1)
	assert.Empty(t, eventsOf(events, EventLimitEOS))
	assert.Zero(t, w.flippers[fl].Angle)
}

func TestFlipperLimitShortensSubStep(t *testing.T) {
	w, fl := flipperFixture(t)
	require.NoError(t, w.SetFlipper(fl, true))

	w.Step(1) // angle 1 rad, speed 1
	stats := w.Step(1)
	assert.Equal(t, 2, stats.SubSteps)

	events := w.Drain()
	eos := eventsOf(events, EventLimitEOS)
	require.Len(t, eos, 1)
	assert.InDelta(t, (Radians(60)-1)/2, eos[0].Time, 1e-4)
	assert.Equal(t, fl, eos[0].Item)
}

func TestFlipperBouncesBall(t *testing.T) {
	w, fl := flipperFixture(t)
	id := w.SpawnBall(Vec3{50, 100, 25}, Vec3{0, -100, 0})

	events := stepFrames(w, 1)
	hits := eventsOf(events, EventHit)
	require.Len(t, hits, 1)
	assert.Equal(t, fl, hits[0].Item)

	b, _ := w.Ball(id)
	assert.Greater(t, b.Vel[1], float32(0), "ball thrown back up")
}

func TestItemStatesReportMovers(t *testing.T) {
	w, fl := flipperFixture(t)
	require.NoError(t, w.SetFlipper(fl, true))
	stepFrames(w, 3)

	states := w.ItemStates()
	require.Len(t, states, 1)
	assert.Equal(t, "left", states[0].Name)
	assert.Equal(t, "flipper", states[0].Kind)
	assert.InDelta(t, Radians(60), states[0].Angle, 1e-5)
}
