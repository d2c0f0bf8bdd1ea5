package table

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/playmatatu/pinball/internal/physics"
)

// ErrInvalidLayout wraps every load-time configuration error.
var ErrInvalidLayout = errors.New("invalid table layout")

type (
	Vec2 = physics.Vec2
	Vec3 = physics.Vec3
)

// Layout is the editable description of a table. It is stored as JSON and
// turned into a physics world by Build.
type Layout struct {
	Name      string             `json:"name"`
	Width     float32            `json:"width"`
	Height    float32            `json:"height"`
	Materials []physics.Material `json:"materials"`
	Items     []Item             `json:"items"`

	// Plunger is where new balls enter play.
	Plunger Launch `json:"plunger"`
}

// Launch is a ball start position and velocity.
type Launch struct {
	Pos Vec3 `json:"pos"`
	Vel Vec3 `json:"vel"`
}

// Item is one playfield element. Type is a physics kind name ("wall",
// "bumper", ...); which geometry fields are read depends on it.
type Item struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Material   string  `json:"material"`
	FireEvents bool    `json:"fire_events"`
	Threshold  float32 `json:"threshold"`
	Disabled   bool    `json:"disabled,omitempty"`

	// Walls, slingshots, targets, gates, spinners and polygon triggers.
	Points   []Vec2 `json:"points,omitempty"`
	Closed   bool   `json:"closed,omitempty"`
	TwoSided bool   `json:"two_sided,omitempty"`

	// Posts, bumpers, kickers and round triggers.
	Center  Vec2    `json:"center,omitzero"`
	Radius  float32 `json:"radius,omitempty"`
	Capsule bool    `json:"capsule,omitempty"`

	ZLow  float32 `json:"z_low"`
	ZHigh float32 `json:"z_high"`

	// Playfield plane. A zero normal means the flat playfield at z = 0.
	Normal Vec3    `json:"normal,omitzero"`
	Offset float32 `json:"offset,omitempty"`

	// Ramps: quads split into two upward-facing triangles, wire rails and
	// loose wire ends.
	Quads [][4]Vec3 `json:"quads,omitempty"`
	Wires [][2]Vec3 `json:"wires,omitempty"`
	Pegs  []Vec3    `json:"pegs,omitempty"`

	Gate      *GateSpec                `json:"gate,omitempty"`
	Spinner   *SpinnerSpec             `json:"spinner,omitempty"`
	Flipper   *FlipperSpec             `json:"flipper,omitempty"`
	Bumper    *physics.BumperConfig    `json:"bumper,omitempty"`
	Slingshot *physics.SlingshotConfig `json:"slingshot,omitempty"`
	Kicker    *physics.KickerConfig    `json:"kicker,omitempty"`
	Target    *physics.TargetConfig    `json:"target,omitempty"`
}

// GateSpec is a gate in layout units: angles in degrees.
type GateSpec struct {
	AngleMin      float32 `json:"angle_min"`
	AngleMax      float32 `json:"angle_max"`
	Damping       float32 `json:"damping"`
	GravityFactor float32 `json:"gravity_factor"`
	TwoWay        bool    `json:"two_way"`
}

type SpinnerSpec struct {
	AngleMin float32 `json:"angle_min"`
	AngleMax float32 `json:"angle_max"`
	Damping  float32 `json:"damping"`
}

// FlipperSpec places a flipper at Pivot. Angles are in degrees from +x,
// clockwise on screen.
type FlipperSpec struct {
	Pivot       Vec2    `json:"pivot"`
	BaseRadius  float32 `json:"base_radius"`
	EndRadius   float32 `json:"end_radius"`
	Length      float32 `json:"length"`
	StartAngle  float32 `json:"start_angle"`
	EndAngle    float32 `json:"end_angle"`
	Strength    float32 `json:"strength"`
	ReturnRatio float32 `json:"return_ratio"`
}

// Parse decodes and validates a JSON layout.
func Parse(data []byte) (*Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate checks the parts of a layout that need no geometry: names,
// types and material references. Build does the rest.
func (l *Layout) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidLayout)
	}
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("%w: table size %vx%v", ErrInvalidLayout, l.Width, l.Height)
	}
	mats := make(map[string]bool, len(l.Materials))
	for _, m := range l.Materials {
		if m.Name == "" || mats[m.Name] {
			return fmt.Errorf("%w: material %q missing or duplicate", ErrInvalidLayout, m.Name)
		}
		if m.Elasticity < 0 || m.Friction < 0 {
			return fmt.Errorf("%w: material %q has negative coefficients", ErrInvalidLayout, m.Name)
		}
		mats[m.Name] = true
	}
	names := make(map[string]bool, len(l.Items))
	for i := range l.Items {
		it := &l.Items[i]
		if it.Name == "" || names[it.Name] {
			return fmt.Errorf("%w: item %d name %q missing or duplicate", ErrInvalidLayout, i, it.Name)
		}
		names[it.Name] = true
		if _, err := physics.ParseKind(it.Type); err != nil {
			return fmt.Errorf("%w: item %q: %v", ErrInvalidLayout, it.Name, err)
		}
		if !mats[it.Material] {
			return fmt.Errorf("%w: item %q: unknown material %q", ErrInvalidLayout, it.Name, it.Material)
		}
	}
	return nil
}

// Marshal encodes the layout for storage.
func (l *Layout) Marshal() ([]byte, error) {
	return json.Marshal(l)
}
