package table

import "github.com/playmatatu/pinball/internal/physics"

// DemoName is the name of the built-in layout.
const DemoName = "demo"

// Demo returns a small single-level table with one of every element: a
// plunger lane behind a one-way gate, three pop bumpers, slingshots, flippers,
// a drop target bank, a rollover, a saucer, a spinner and a short ramp.
// The play area is 900 wide; the plunger lane runs down the right edge.
func Demo() *Layout {
	return &Layout{
		Name:   DemoName,
		Width:  1000,
		Height: 2000,
		Materials: []physics.Material{
			{Name: "playfield", Friction: 0.075, Elasticity: 0.25},
			{Name: "metal", Friction: 0.15, Elasticity: 0.4, ElasticityFalloff: 0.2},
			{Name: "rubber", Friction: 0.6, Elasticity: 0.8, ElasticityFalloff: 0.3, ScatterAngle: 0.05},
			{Name: "plastic", Friction: 0.3, Elasticity: 0.5},
		},
		Plunger: Launch{Pos: Vec3{950, 1900, 25}, Vel: Vec3{0, -45, 0}},
		Items: []Item{
			{Name: "playfield", Type: "playfield", Material: "playfield"},
			{Name: "glass", Type: "playfield", Material: "plastic", Normal: Vec3{0, 0, -1}, Offset: -200},

			// Outer rails wind inward; the bottom stays open to the drain.
			{
				Name: "rails", Type: "wall", Material: "metal", ZHigh: 60,
				Points: []Vec2{{0, 2000}, {0, 0}, {850, 0}, {1000, 150}, {1000, 2000}},
			},
			{
				Name: "lane", Type: "wall", Material: "metal", ZHigh: 60, TwoSided: true,
				Points: []Vec2{{900, 2000}, {900, 600}},
			},
			{
				Name: "left-inlane", Type: "wall", Material: "metal", ZHigh: 60,
				Points: []Vec2{{230, 1790}, {0, 1650}},
			},
			{
				Name: "right-inlane", Type: "wall", Material: "metal", ZHigh: 60,
				Points: []Vec2{{900, 1650}, {670, 1790}},
			},
			{
				Name: "lane-gate", Type: "gate", Material: "metal", ZHigh: 60, FireEvents: true,
				Points: []Vec2{{900, 600}, {1000, 600}},
				Gate:   &GateSpec{AngleMax: 90, Damping: 0.985, GravityFactor: 0.25},
			},

			{Name: "bumper-1", Type: "bumper", Material: "rubber", FireEvents: true, Threshold: 1, Center: Vec2{350, 500}, Radius: 45, ZHigh: 60, Bumper: &physics.BumperConfig{Force: 8}},
			{Name: "bumper-2", Type: "bumper", Material: "rubber", FireEvents: true, Threshold: 1, Center: Vec2{550, 450}, Radius: 45, ZHigh: 60, Bumper: &physics.BumperConfig{Force: 8}},
			{Name: "bumper-3", Type: "bumper", Material: "rubber", FireEvents: true, Threshold: 1, Center: Vec2{450, 700}, Radius: 45, ZHigh: 60, Bumper: &physics.BumperConfig{Force: 8}},

			// Slingshot faces point up and toward the middle; the bodies are
			// plain closed walls behind them.
			{
				Name: "left-sling", Type: "slingshot", Material: "rubber", ZHigh: 60, FireEvents: true, Threshold: 2,
				Points: []Vec2{{300, 1700}, {180, 1450}}, Slingshot: &physics.SlingshotConfig{Force: 6},
			},
			{
				Name: "left-sling-body", Type: "wall", Material: "plastic", ZHigh: 60, Closed: true,
				Points: []Vec2{{178, 1460}, {178, 1690}, {290, 1702}},
			},
			{
				Name: "right-sling", Type: "slingshot", Material: "rubber", ZHigh: 60, FireEvents: true, Threshold: 2,
				Points: []Vec2{{720, 1450}, {600, 1700}}, Slingshot: &physics.SlingshotConfig{Force: 6},
			},
			{
				Name: "right-sling-body", Type: "wall", Material: "plastic", ZHigh: 60, Closed: true,
				Points: []Vec2{{722, 1460}, {610, 1702}, {722, 1690}},
			},

			{
				Name: "left-flipper", Type: "flipper", Material: "rubber", ZHigh: 50, FireEvents: true,
				Flipper: &FlipperSpec{Pivot: Vec2{250, 1800}, BaseRadius: 20, EndRadius: 10, Length: 150, StartAngle: 30, EndAngle: -25, Strength: 0.3, ReturnRatio: 0.5},
			},
			{
				Name: "right-flipper", Type: "flipper", Material: "rubber", ZHigh: 50, FireEvents: true,
				Flipper: &FlipperSpec{Pivot: Vec2{650, 1800}, BaseRadius: 20, EndRadius: 10, Length: 150, StartAngle: 150, EndAngle: 205, Strength: 0.3, ReturnRatio: 0.5},
			},

			// Drop target bank facing down the table.
			{Name: "drop-1", Type: "target", Material: "plastic", ZHigh: 50, FireEvents: true, Points: []Vec2{{600, 300}, {650, 300}}, Target: &physics.TargetConfig{DropOnHit: true}},
			{Name: "drop-2", Type: "target", Material: "plastic", ZHigh: 50, FireEvents: true, Points: []Vec2{{660, 300}, {710, 300}}, Target: &physics.TargetConfig{DropOnHit: true}},
			{Name: "drop-3", Type: "target", Material: "plastic", ZHigh: 50, FireEvents: true, Points: []Vec2{{720, 300}, {770, 300}}, Target: &physics.TargetConfig{DropOnHit: true}},

			{Name: "rollover", Type: "trigger", Material: "metal", FireEvents: true, Center: Vec2{100, 1000}, Radius: 25, ZHigh: 60},
			{Name: "saucer", Type: "kicker", Material: "metal", FireEvents: true, Center: Vec2{450, 1000}, Radius: 30, ZHigh: 60, Kicker: &physics.KickerConfig{Capture: true}},
			{
				Name: "spinner", Type: "spinner", Material: "metal", ZLow: 0, ZHigh: 60, FireEvents: true,
				Points:  []Vec2{{50, 800}, {150, 800}},
				Spinner: &SpinnerSpec{Damping: 0.995},
			},
			{Name: "post", Type: "wall", Material: "rubber", Center: Vec2{450, 1350}, Radius: 8, ZHigh: 60, Capsule: true},
			{
				Name: "ramp", Type: "ramp", Material: "plastic",
				Quads: [][4]Vec3{{{700, 1300, 0}, {800, 1300, 0}, {800, 1150, 40}, {700, 1150, 40}}},
				Wires: [][2]Vec3{{{700, 1300, 30}, {700, 1150, 70}}, {{800, 1300, 30}, {800, 1150, 70}}},
				Pegs:  []Vec3{{700, 1150, 70}, {800, 1150, 70}},
			},
		},
	}
}
