package physics

import "iter"

// QuadEntry is one collider handed to the quadtree.
type QuadEntry struct {
	ID  ColliderID
	Box AABB
}

// QuadTree is the static broadphase index. Items that straddle a node's
// center stay at that node; the rest move into one of four children until a
// node holds at most quadtreeLeafSize items.
type QuadTree struct {
	root  quadNode
	boxes []AABB // indexed by ColliderID
	size  int
}

type quadNode struct {
	center   Vec2
	items    []ColliderID
	children *[4]quadNode
}

func NewQuadTree(entries []QuadEntry) *QuadTree {
	t := &QuadTree{size: len(entries)}
	bounds := EmptyAABB()
	ids := make([]ColliderID, 0, len(entries))
	for _, e := range entries {
		if int(e.ID) >= len(t.boxes) {
			grown := make([]AABB, int(e.ID)+1)
			copy(grown, t.boxes)
			t.boxes = grown
		}
		t.boxes[e.ID] = e.Box
		bounds = bounds.Extend(e.Box)
		ids = append(ids, e.ID)
	}
	t.root.build(ids, bounds, t.boxes, 0)
	return t
}

func (t *QuadTree) Len() int { return t.size }

func (n *quadNode) build(ids []ColliderID, box AABB, boxes []AABB, depth int) {
	n.items = ids
	if len(ids) <= quadtreeLeafSize || depth >= quadtreeMaxDepth {
		return
	}
	n.center = box.Center()

	var sub [4][]ColliderID
	var keep []ColliderID
	for _, id := range ids {
		if q := quadrant(boxes[id], n.center); q >= 0 {
			sub[q] = append(sub[q], id)
		} else {
			keep = append(keep, id)
		}
	}
	if len(keep) == len(ids) {
		// Everything straddles the center; splitting gains nothing.
		return
	}

	n.items = keep
	n.children = new([4]quadNode)
	for q := range n.children {
		n.children[q].build(sub[q], quadBox(box, n.center, q), boxes, depth+1)
	}
}

// quadrant returns 0..3 (top-left, top-right, bottom-left, bottom-right) or
// -1 when b crosses a center line.
func quadrant(b AABB, c Vec2) int {
	left, right := b.Right < c[0], b.Left > c[0]
	top, bottom := b.Bottom < c[1], b.Top > c[1]
	if !(left || right) || !(top || bottom) {
		return -1
	}
	q := 0
	if right {
		q++
	}
	if bottom {
		q += 2
	}
	return q
}

func quadBox(b AABB, c Vec2, q int) AABB {
	if q&1 == 0 {
		b.Right = c[0]
	} else {
		b.Left = c[0]
	}
	if q&2 == 0 {
		b.Bottom = c[1]
	} else {
		b.Top = c[1]
	}
	return b
}

// Query yields the ids of all colliders whose bounds intersect box.
func (t *QuadTree) Query(box AABB) iter.Seq[ColliderID] {
	return func(yield func(ColliderID) bool) {
		t.root.query(box, t.boxes, yield)
	}
}

func (n *quadNode) query(box AABB, boxes []AABB, yield func(ColliderID) bool) bool {
	for _, id := range n.items {
		if boxes[id].Intersects(box) && !yield(id) {
			return false
		}
	}
	if n.children == nil {
		return true
	}
	left, right := box.Left <= n.center[0], box.Right >= n.center[0]
	top, bottom := box.Top <= n.center[1], box.Bottom >= n.center[1]
	visit := [4]bool{left && top, right && top, left && bottom, right && bottom}
	for q, ok := range visit {
		if ok && !n.children[q].query(box, boxes, yield) {
			return false
		}
	}
	return true
}
