package physics

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsideOfMembership(t *testing.T) {
	s := NewInsideOf()
	assert.True(t, s.Add(1, 10))
	assert.False(t, s.Add(1, 10), "second add is a no-op")
	assert.True(t, s.Add(1, 4))
	assert.True(t, s.Add(2, 10))
	assert.Equal(t, []BallID{4, 10}, s.Balls(1))

	assert.True(t, s.Remove(1, 10))
	assert.False(t, s.Remove(1, 10))
	assert.False(t, s.Contains(1, 10))

	s.ClearBall(10)
	assert.False(t, s.Contains(2, 10))

	s.ClearItem(1)
	assert.Empty(t, s.Balls(1))
}

func TestInsideOfNilIsEmpty(t *testing.T) {
	var s *InsideOf
	assert.False(t, s.Contains(1, 1))
	assert.False(t, s.Add(1, 1))
	assert.False(t, s.Remove(1, 1))
	assert.Nil(t, s.Balls(1))
	s.ClearItem(1)
	s.ClearBall(1)
}

func TestInsideOfConcurrentUse(t *testing.T) {
	s := NewInsideOf()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range 100 {
				s.Add(ItemID(i%2), BallID(b))
				s.Contains(ItemID(i%2), BallID(b))
			}
		}()
	}
	wg.Wait()
	assert.Len(t, s.Balls(0), 100)
	assert.Len(t, s.Balls(1), 100)
}

func TestEventQueueDrain(t *testing.T) {
	q := NewEventQueue()
	assert.Nil(t, q.Drain())

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				q.Push(Event{Kind: EventHit, Item: ItemID(i)})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, q.Len())
	assert.Len(t, q.Drain(), 100)
	assert.Zero(t, q.Len())
}

func TestEventKindJSON(t *testing.T) {
	data, err := json.Marshal(Event{Kind: EventLimitEOS, Item: 3, Ball: NoBall})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"limit_eos"`)

	var e Event
	require.NoError(t, json.Unmarshal(data, &e))
	assert.Equal(t, EventLimitEOS, e.Kind)

	var k EventKind
	assert.Error(t, k.UnmarshalText([]byte("tilt")))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("slingshot")
	require.NoError(t, err)
	assert.Equal(t, KindSlingshot, k)

	_, err = ParseKind("plunger")
	assert.ErrorIs(t, err, ErrWrongKind)
}
