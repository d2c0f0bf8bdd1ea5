package physics

import "github.com/chewxy/math32"

const (
	gateBounce       = -0.2    // speed factor when a gate swings into its open stop
	gateBackHitScale = 1.0 / 8 // a ball bouncing off the back of a one-way gate barely moves it
	gateGravityScale = 1.0 / 8
	gateForcedSpeed  = 0.04 // angular speed while a lifter holds the gate open
)

type GateConfig struct {
	AngleMin      float32 `json:"angle_min"` // radians
	AngleMax      float32 `json:"angle_max"`
	Damping       float32 `json:"damping"` // speed kept per time unit, (0,1]
	GravityFactor float32 `json:"gravity_factor"`
	Height        float32 `json:"height"`
	TwoWay        bool    `json:"two_way"`
}

// GateState is the swing of a gate flap. AngleMin is the rest position.
type GateState struct {
	Item       ItemID
	Config     GateConfig
	Angle      float32
	AngleSpeed float32

	// ForcedMove is set while a lifter holds the gate open. The gate then
	// ignores gravity and stops dead at its limits.
	ForcedMove bool

	latch limitLatch
}

func newGateState(item ItemID, cfg GateConfig) *GateState {
	return &GateState{Item: item, Config: cfg, Angle: cfg.AngleMin}
}

func (g *GateState) itemID() ItemID { return g.Item }

func (g *Gate) hitTest(b *Ball, budget float32) (CollisionEvent, bool) {
	twoWay := g.State.Config.TwoWay
	ev, ok := g.Wire.hitTestBasic(b.Pos, b.Vel, b.Radius, budget, lineMode{direction: !twoWay, passThrough: true})
	ev.Part = partWire
	if twoWay {
		return ev, ok
	}

	bev, bok := g.Blocker.hitTestBasic(b.Pos, b.Vel, b.Radius, budget, lineMode{direction: true, lateral: true, rigid: true})
	bev.Part = partBlocker
	bev.HitFlag = true
	switch {
	case bok && (!ok || bev.Time < ev.Time || bev.Contact):
		return bev, true
	case ok:
		return ev, true
	}
	bev.Penetrating = bev.Penetrating || ev.Penetrating
	return bev, false
}

// hit converts the ball's speed across the wire into swing speed. It
// reports the ball's normal speed for the hit event, or false when the hit
// should not produce one.
func (g *GateState) hit(ev *CollisionEvent, b *Ball) (float32, bool) {
	dot := math32.Abs(ev.Normal[0]*b.Vel[0] + ev.Normal[1]*b.Vel[1])
	h := g.Config.Height * 0.5
	if h <= 0 {
		h = 1
	}
	speed := dot / h
	if ev.Part == partBlocker {
		g.AngleSpeed = speed * gateBackHitScale
		return dot, false
	}
	if ev.HitFlag {
		speed = -speed
	}
	g.AngleSpeed = speed
	g.latch.eos = false
	return dot, true
}

func (g *GateState) updateVelocities(dt float32) {
	if g.ForcedMove {
		if g.Angle < g.Config.AngleMax {
			g.AngleSpeed = gateForcedSpeed
		}
		return
	}
	g.AngleSpeed -= math32.Sin(g.Angle) * g.Config.GravityFactor * gateGravityScale * dt
	g.AngleSpeed = damp(g.AngleSpeed, g.Config.Damping, dt)
}

func (g *GateState) updateDisplacements(dt float32, emit emitFunc) {
	g.Angle += g.AngleSpeed * dt
	lo, hi := g.Config.AngleMin, g.Config.AngleMax

	if g.Config.TwoWay {
		if a := math32.Abs(g.Angle); a > hi {
			g.latch.fireEOS(emit, g.Item, g.AngleSpeed)
			g.Angle = math32.Copysign(hi, g.Angle)
			g.AngleSpeed = g.bounce(g.AngleSpeed)
		} else if a < lo {
			g.latch.fireBOS(emit, g.Item, g.AngleSpeed)
			g.Angle = math32.Copysign(lo, g.Angle)
			g.AngleSpeed = 0
		}
		return
	}

	if g.Angle > hi {
		g.latch.fireEOS(emit, g.Item, g.AngleSpeed)
		g.Angle = hi
		if g.AngleSpeed > 0 {
			g.AngleSpeed = g.bounce(g.AngleSpeed)
		}
	}
	if g.Angle < lo {
		g.latch.fireBOS(emit, g.Item, g.AngleSpeed)
		g.Angle = lo
		if g.AngleSpeed < 0 {
			g.AngleSpeed = 0
		}
	}
}

func (g *GateState) bounce(speed float32) float32 {
	if g.ForcedMove {
		return 0
	}
	return speed * gateBounce
}
