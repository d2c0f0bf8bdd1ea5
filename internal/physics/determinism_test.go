package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boxTable is a closed 500x1000 box on a sloped playfield with a few posts
// and bumpers, scattering on every hard hit.
func boxTable(t *testing.T, parallelism int, seed uint64) *World {
	t.Helper()
	f := newTableFixture(t, Material{Name: "rubber", Friction: 0.2, Elasticity: 0.7, ElasticityFalloff: 0.4, ScatterAngle: 0.1})
	floor := f.item("playfield", KindPlayfield)
	f.add(floor, Plane{Normal: Vec3{0, 0, 1}})

	// Wound so every front face points inward.
	f.wall("top", Vec2{0, 0}, Vec2{500, 0})
	f.wall("left", Vec2{0, 1000}, Vec2{0, 0})
	f.wall("bottom", Vec2{500, 1000}, Vec2{0, 1000})
	f.wall("right", Vec2{500, 0}, Vec2{500, 1000})

	for i, c := range []Vec2{{150, 300}, {350, 300}, {250, 450}} {
		item := f.item("bumper"+string(rune('a'+i)), KindBumper)
		_, err := f.bl.AddBumper(f.header(item), Circle{Center: c, Radius: 40, ZLow: 0, ZHigh: 60}, BumperConfig{Force: 5})
		require.NoError(t, err)
	}
	post := f.item("post", KindWall)
	f.add(post, Circle{Center: Vec2{250, 750}, Radius: 10, ZLow: 0, ZHigh: 60})

	opts := DefaultOptions()
	opts.Parallelism = parallelism
	opts.Seed = seed
	w := f.build(opts)
	for i := range 6 {
		x := float32(60 + i*70)
		w.SpawnBall(Vec3{x, 100, 25}, Vec3{float32(i*7 - 20), float32(10 + i*3), 0})
	}
	return w
}

func runBoxTable(t *testing.T, parallelism int, seed uint64) ([]Ball, []Event) {
	w := boxTable(t, parallelism, seed)
	var events []Event
	for range 400 {
		w.Step(1)
		events = append(events, w.Drain()...)
	}
	return w.Balls(), events
}

func TestDeterminism(t *testing.T) {
	balls1, events1 := runBoxTable(t, 1, 42)
	balls2, events2 := runBoxTable(t, 1, 42)
	assert.Equal(t, balls1, balls2)
	assert.Equal(t, events1, events2)
	assert.NotEmpty(t, events1, "balls should hit something in 400 frames")
}

func TestParallelNarrowphaseMatchesSequential(t *testing.T) {
	seqBalls, seqEvents := runBoxTable(t, 1, 7)
	parBalls, parEvents := runBoxTable(t, 4, 7)
	assert.Equal(t, seqBalls, parBalls)
	assert.Equal(t, seqEvents, parEvents)
}

func TestBallsStayOnTable(t *testing.T) {
	balls, _ := runBoxTable(t, 2, 3)
	for _, b := range balls {
		assert.True(t, b.Pos[0] > -1 && b.Pos[0] < 501, "ball %d x=%v", b.ID, b.Pos[0])
		assert.True(t, b.Pos[1] > -1 && b.Pos[1] < 1001, "ball %d y=%v", b.ID, b.Pos[1])
		assert.True(t, b.Pos[2] > 20 && b.Pos[2] < 100, "ball %d z=%v", b.ID, b.Pos[2])
	}
}
