package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

type NodeKind int

const (
	KindOther NodeKind = iota
	KindGroup
	KindMesh
)

func (k NodeKind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindGroup:
		return "group"
	default:
		return "other"
	}
}

// Transform is a local TRS transform. Rotation is kept as a quaternion so
// later composition never goes through euler angles.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t Transform) Mat4() mgl32.Mat4 {
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// ProxyCache holds the per-member state captured when a multi-selection
// proxy group is built. Epoch tags the capture; stale entries are skipped
// by the gizmo and cleared when selection drops below two members.
type ProxyCache struct {
	Valid           bool
	Epoch           uint64
	RelativeOffset  mgl32.Vec3
	InitialRotation mgl32.Quat
	InitialScale    mgl32.Vec3
}

type Node struct {
	Id   string
	Name string
	Kind NodeKind

	// Mesh payload, only when Kind == KindMesh.
	Mesh *Mesh

	Parent *Node
	Childs []*Node

	Transform Transform

	Selectable  bool
	HasMetadata bool

	// OwnerModel is an index into the registry, not an owning reference.
	// Negative until the node is registered.
	OwnerModel int

	// Initial is captured at load and never changed afterwards.
	// UserModified is set once the user manually edits the node and from
	// then on replaces Initial as the explosion baseline.
	Initial      Transform
	UserModified *Transform

	Proxy ProxyCache
}

func NewNode(id, name string, kind NodeKind) *Node {
	return &Node{
		Id:         id,
		Name:       name,
		Kind:       kind,
		Transform:  IdentityTransform(),
		Initial:    IdentityTransform(),
		OwnerModel: -1,
	}
}

func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Childs = append(n.Childs, child)
}

// BaselinePosition is the assembled position the explosion interpolates
// from: the user edited transform when present, the load-time one otherwise.
func (n *Node) BaselinePosition() mgl32.Vec3 {
	if n.UserModified != nil {
		return n.UserModified.Position
	}
	return n.Initial.Position
}

func (n *Node) WorldMatrix() mgl32.Mat4 {
	m := n.Transform.Mat4()
	for p := n.Parent; p != nil; p = p.Parent {
		m = p.Transform.Mat4().Mul4(m)
	}
	return m
}

func (n *Node) WorldPosition() mgl32.Vec3 {
	return n.WorldMatrix().Col(3).Vec3()
}

// WorldRotation accumulates local rotations up the parent chain.
func (n *Node) WorldRotation() mgl32.Quat {
	q := n.Transform.Rotation
	for p := n.Parent; p != nil; p = p.Parent {
		q = p.Transform.Rotation.Mul(q)
	}
	return q.Normalize()
}

// ParentWorldMatrix returns identity for root nodes.
func (n *Node) ParentWorldMatrix() mgl32.Mat4 {
	if n.Parent == nil {
		return mgl32.Ident4()
	}
	return n.Parent.WorldMatrix()
}

func (n *Node) ParentWorldRotation() mgl32.Quat {
	if n.Parent == nil {
		return mgl32.QuatIdent()
	}
	return n.Parent.WorldRotation()
}

// Traverse walks the subtree depth-first, parents before childs.
// Returning false from f skips the node's subtree.
func (n *Node) Traverse(f func(*Node) bool) {
	if !f(n) {
		return
	}
	for _, c := range n.Childs {
		c.Traverse(f)
	}
}

// FindById searches the subtree for a node id.
func (n *Node) FindById(id string) *Node {
	var found *Node
	n.Traverse(func(cur *Node) bool {
		if found != nil {
			return false
		}
		if cur.Id == id {
			found = cur
			return false
		}
		return true
	})
	return found
}

func (n *Node) ClearProxyCache() {
	n.Proxy = ProxyCache{}
}

// IsComposite reports whether the node groups other nodes (as opposed to a
// leaf mesh). Used by hit resolution and part listing to prefer the
// semantically meaningful node when a group and its mesh share an id.
func (n *Node) IsComposite() bool {
	return n.Kind == KindGroup || len(n.Childs) > 0
}
