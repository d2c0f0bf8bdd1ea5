package physics

import (
	"slices"
	"sync"
)

// InsideOf tracks which balls currently occupy each trigger or kicker volume.
// Sets are created on first use. All methods are safe for concurrent use and
// treat a nil receiver as an empty tracker.
type InsideOf struct {
	mu   sync.RWMutex
	sets map[ItemID]map[BallID]struct{}
}

func NewInsideOf() *InsideOf {
	return &InsideOf{sets: make(map[ItemID]map[BallID]struct{})}
}

func (s *InsideOf) Contains(item ItemID, ball BallID) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sets[item][ball]
	return ok
}

// Add reports whether the ball was not already inside.
func (s *InsideOf) Add(item ItemID, ball BallID) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[item]
	if !ok {
		set = make(map[BallID]struct{})
		s.sets[item] = set
	}
	if _, in := set[ball]; in {
		return false
	}
	set[ball] = struct{}{}
	return true
}

// Remove reports whether the ball was inside.
func (s *InsideOf) Remove(item ItemID, ball BallID) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[item]
	if !ok {
		return false
	}
	if _, in := set[ball]; !in {
		return false
	}
	delete(set, ball)
	if len(set) == 0 {
		delete(s.sets, item)
	}
	return true
}

// ClearItem drops the set of an item that was disabled or removed.
func (s *InsideOf) ClearItem(item ItemID) {
	if s == nil {
		return
	}
	s.mu.Lock()
	delete(s.sets, item)
	s.mu.Unlock()
}

// ClearBall removes a drained ball from every set.
func (s *InsideOf) ClearBall(ball BallID) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for item, set := range s.sets {
		delete(set, ball)
		if len(set) == 0 {
			delete(s.sets, item)
		}
	}
}

// Balls returns the balls inside item in ascending order.
func (s *InsideOf) Balls(item ItemID) []BallID {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]BallID, 0, len(s.sets[item]))
	for b := range s.sets[item] {
		out = append(out, b)
	}
	slices.Sort(out)
	return out
}
