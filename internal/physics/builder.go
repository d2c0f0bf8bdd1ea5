package physics

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"go.uber.org/zap"
)

type itemInfo struct {
	name      string
	kind      Kind
	enabled   bool
	colliders []ColliderID
}

// Builder collects materials, items and colliders at table load time and
// validates them into a World. All configuration errors surface here.
type Builder struct {
	materials  []Material
	matByName  map[string]MaterialID
	items      []itemInfo
	itemByName map[string]ItemID
	colliders  []Collider

	gates      map[ItemID]*GateState
	spinners   map[ItemID]*SpinnerState
	flippers   map[ItemID]*FlipperState
	bumpers    map[ItemID]*BumperState
	slingshots map[ItemID]*SlingshotState
	kickers    map[ItemID]*KickerState
	targets    map[ItemID]TargetConfig
}

func NewBuilder() *Builder {
	return &Builder{
		matByName:  make(map[string]MaterialID),
		itemByName: make(map[string]ItemID),
		gates:      make(map[ItemID]*GateState),
		spinners:   make(map[ItemID]*SpinnerState),
		flippers:   make(map[ItemID]*FlipperState),
		bumpers:    make(map[ItemID]*BumperState),
		slingshots: make(map[ItemID]*SlingshotState),
		kickers:    make(map[ItemID]*KickerState),
		targets:    make(map[ItemID]TargetConfig),
	}
}

func (bl *Builder) AddMaterial(m Material) (MaterialID, error) {
	if _, ok := bl.matByName[m.Name]; ok {
		return 0, fmt.Errorf("material %q: %w", m.Name, ErrDuplicateMaterial)
	}
	id := MaterialID(len(bl.materials))
	bl.materials = append(bl.materials, m)
	bl.matByName[m.Name] = id
	return id, nil
}

func (bl *Builder) Material(name string) (MaterialID, error) {
	id, ok := bl.matByName[name]
	if !ok {
		return 0, fmt.Errorf("material %q: %w", name, ErrUnknownMaterial)
	}
	return id, nil
}

func (bl *Builder) AddItem(name string, kind Kind) (ItemID, error) {
	if _, ok := bl.itemByName[name]; ok {
		return 0, fmt.Errorf("item %q: %w", name, ErrDuplicateItem)
	}
	id := ItemID(len(bl.items))
	bl.items = append(bl.items, itemInfo{name: name, kind: kind, enabled: true})
	bl.itemByName[name] = id
	return id, nil
}

// Add appends a collider. Kind, ID and Enabled are filled from the item.
func (bl *Builder) Add(h Header, s Shape) (ColliderID, error) {
	if int(h.Item) >= len(bl.items) {
		return 0, fmt.Errorf("item %d: %w", h.Item, ErrUnknownItem)
	}
	item := &bl.items[h.Item]
	if int(h.Material) >= len(bl.materials) {
		return 0, fmt.Errorf("item %q material %d: %w", item.name, h.Material, ErrUnknownMaterial)
	}
	if err := checkShape(s); err != nil {
		return 0, fmt.Errorf("item %q: %w", item.name, err)
	}
	if p, ok := s.(Plane); ok {
		p.Normal, _ = normalize3(p.Normal)
		s = p
	}

	h.ID = ColliderID(len(bl.colliders))
	h.Kind = item.kind
	h.Enabled = true
	bl.colliders = append(bl.colliders, Collider{Header: h, Shape: s})
	item.colliders = append(item.colliders, h.ID)
	return h.ID, nil
}

func checkShape(s Shape) error {
	bad := false
	switch s := s.(type) {
	case Plane:
		bad = s.Normal.Len() <= 1e-6
	case Circle:
		bad = s.Radius <= 0
	case LineSeg:
		bad = s.Length == 0
	case Line3D:
		bad = s.V1.Sub(s.V2).Len() <= 1e-6
	case Triangle:
		bad = s.Normal.Len() < 0.5
	case *Gate:
		bad = s.Wire.Length == 0
	case *Spinner:
		bad = s.Wire.Length == 0
	case *Flipper:
		c := s.State.Config
		bad = c.Length <= 0 || c.BaseRadius <= 0 || c.EndRadius <= 0
	}
	if bad {
		return fmt.Errorf("%T: %w", s, ErrDegenerateShape)
	}
	return nil
}

func (bl *Builder) itemOfKind(h Header, kind Kind) error {
	if int(h.Item) >= len(bl.items) {
		return fmt.Errorf("item %d: %w", h.Item, ErrUnknownItem)
	}
	if k := bl.items[h.Item].kind; k != kind {
		return fmt.Errorf("item %q is a %s, not a %s: %w", bl.items[h.Item].name, k, kind, ErrWrongKind)
	}
	return nil
}

// AddGate adds a gate wire. One-way gates get a blocker on the back face.
func (bl *Builder) AddGate(h Header, wire LineSeg, cfg GateConfig) (ColliderID, error) {
	if err := bl.itemOfKind(h, KindGate); err != nil {
		return 0, err
	}
	st := newGateState(h.Item, cfg)
	g := &Gate{Wire: wire, State: st}
	if !cfg.TwoWay {
		g.Blocker = NewLineSeg(wire.V2, wire.V1, wire.ZLow, wire.ZHigh)
	}
	id, err := bl.Add(h, g)
	if err != nil {
		return 0, err
	}
	bl.gates[h.Item] = st
	return id, nil
}

func (bl *Builder) AddSpinner(h Header, wire LineSeg, cfg SpinnerConfig) (ColliderID, error) {
	if err := bl.itemOfKind(h, KindSpinner); err != nil {
		return 0, err
	}
	st := newSpinnerState(h.Item, cfg)
	id, err := bl.Add(h, &Spinner{Wire: wire, State: st})
	if err != nil {
		return 0, err
	}
	bl.spinners[h.Item] = st
	return id, nil
}

func (bl *Builder) AddFlipper(h Header, cfg FlipperConfig) (ColliderID, error) {
	if err := bl.itemOfKind(h, KindFlipper); err != nil {
		return 0, err
	}
	st := newFlipperState(h.Item, cfg)
	id, err := bl.Add(h, &Flipper{State: st})
	if err != nil {
		return 0, err
	}
	bl.flippers[h.Item] = st
	return id, nil
}

func (bl *Builder) AddBumper(h Header, c Circle, cfg BumperConfig) (ColliderID, error) {
	if err := bl.itemOfKind(h, KindBumper); err != nil {
		return 0, err
	}
	id, err := bl.Add(h, c)
	if err != nil {
		return 0, err
	}
	bl.bumpers[h.Item] = newBumperState(h.Item, c.Center, cfg)
	return id, nil
}

// AddSlingshot adds one kicking segment. Several segments may share an item.
func (bl *Builder) AddSlingshot(h Header, l LineSeg, cfg SlingshotConfig) (ColliderID, error) {
	if err := bl.itemOfKind(h, KindSlingshot); err != nil {
		return 0, err
	}
	id, err := bl.Add(h, l)
	if err != nil {
		return 0, err
	}
	if _, ok := bl.slingshots[h.Item]; !ok {
		bl.slingshots[h.Item] = &SlingshotState{Item: h.Item, Config: cfg}
	}
	return id, nil
}

func (bl *Builder) AddKicker(h Header, c Circle, cfg KickerConfig) (ColliderID, error) {
	if err := bl.itemOfKind(h, KindKicker); err != nil {
		return 0, err
	}
	c.Capture = cfg.Capture
	id, err := bl.Add(h, c)
	if err != nil {
		return 0, err
	}
	bl.kickers[h.Item] = &KickerState{Item: h.Item, Config: cfg, Center: c.Center}
	return id, nil
}

// SetTarget configures the hit behavior of a target item.
func (bl *Builder) SetTarget(item ItemID, cfg TargetConfig) error {
	if err := bl.itemOfKind(Header{Item: item}, KindTarget); err != nil {
		return err
	}
	bl.targets[item] = cfg
	return nil
}

// Build resolves materials, indexes the static colliders and returns the
// world. The builder must not be used afterwards.
func (bl *Builder) Build(opts Options) (*World, error) {
	opts = opts.withDefaults()
	w := &World{
		opts:       opts,
		log:        opts.Logger.Named("physics"),
		obs:        opts.Observer,
		rng:        rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		materials:  bl.materials,
		colliders:  bl.colliders,
		items:      bl.items,
		itemByName: bl.itemByName,
		gates:      bl.gates,
		spinners:   bl.spinners,
		flippers:   bl.flippers,
		bumpers:    bl.bumpers,
		slingshots: bl.slingshots,
		kickers:    bl.kickers,
		targets:    bl.targets,
		inside:     NewInsideOf(),
		events:     NewEventQueue(),
	}

	var static []QuadEntry
	for i := range w.colliders {
		c := &w.colliders[i]
		if int(c.Material) >= len(w.materials) {
			return nil, fmt.Errorf("collider %d: %w", c.ID, ErrUnknownMaterial)
		}
		c.mat = w.materials[c.Material]
		if c.Movable() {
			w.always = append(w.always, c.ID)
		} else {
			static = append(static, QuadEntry{ID: c.ID, Box: c.Shape.Bounds()})
		}
	}
	w.tree = NewQuadTree(static)

	for _, m := range w.gates {
		w.movers = append(w.movers, m)
	}
	for _, m := range w.spinners {
		w.movers = append(w.movers, m)
	}
	for _, m := range w.flippers {
		w.movers = append(w.movers, m)
		w.flipperList = append(w.flipperList, m)
	}
	for _, m := range w.bumpers {
		w.movers = append(w.movers, m)
	}
	for _, m := range w.slingshots {
		w.movers = append(w.movers, m)
	}
	slices.SortFunc(w.movers, func(a, b mover) int { return int(a.itemID()) - int(b.itemID()) })
	slices.SortFunc(w.flipperList, func(a, b *FlipperState) int { return int(a.Item) - int(b.Item) })

	w.log.Debug("world built",
		zap.Int("colliders", len(w.colliders)),
		zap.Int("indexed", w.tree.Len()),
		zap.Int("movable", len(w.always)),
		zap.Int("items", len(w.items)))
	return w, nil
}
