package physics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// tableFixture builds small worlds for scenario tests: one material, items
// added by name, every collider firing events at threshold 0.
type tableFixture struct {
	t   *testing.T
	bl  *Builder
	mat MaterialID
}

func newTableFixture(t *testing.T, m Material) *tableFixture {
	t.Helper()
	bl := NewBuilder()
	if m.Name == "" {
		m.Name = "default"
	}
	id, err := bl.AddMaterial(m)
	require.NoError(t, err)
	return &tableFixture{t: t, bl: bl, mat: id}
}

func (f *tableFixture) item(name string, k Kind) ItemID {
	f.t.Helper()
	id, err := f.bl.AddItem(name, k)
	require.NoError(f.t, err)
	return id
}

func (f *tableFixture) header(item ItemID) Header {
	return Header{Item: item, Material: f.mat, FireEvents: true}
}

func (f *tableFixture) add(item ItemID, s Shape) ColliderID {
	f.t.Helper()
	id, err := f.bl.Add(f.header(item), s)
	require.NoError(f.t, err)
	return id
}

// wall adds a standing wall from v1 to v2. Its front face is on the left of
// the direction v1 -> v2.
func (f *tableFixture) wall(name string, v1, v2 Vec2) ItemID {
	f.t.Helper()
	item := f.item(name, KindWall)
	f.add(item, NewLineSeg(v1, v2, 0, 50))
	return item
}

func (f *tableFixture) build(opts Options) *World {
	f.t.Helper()
	if opts.Parallelism == 0 {
		opts.Parallelism = 1
	}
	w, err := f.bl.Build(opts)
	require.NoError(f.t, err)
	return w
}

func eventsOf(events []Event, kind EventKind) []Event {
	var out []Event
	for _, e := range events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func stepFrames(w *World, n int) []Event {
	var out []Event
	for range n {
		w.Step(1)
		out = append(out, w.Drain()...)
	}
	return out
}

var bouncy = Material{Name: "bouncy", Elasticity: 1}
