package scene

import (
	"log"
)

// Model is one loaded asset; it owns its root node and remembers its slot
// in the registry.
type Model struct {
	Index int
	Id    string
	Name  string
	Root  *Node
}

func (m *Model) WorldBounds() AABB {
	if m.Root == nil {
		return EmptyAABB()
	}
	return m.Root.WorldBounds()
}

type PartInfo struct {
	Id         string `json:"id"`
	Name       string `json:"name"`
	ModelIndex int    `json:"modelIndex"`
}

// Registry is the scene graph index: model slot -> root mapping plus node
// lookup by id. It is owned by the viewer and passed down explicitly;
// nothing in the engine keeps ambient registry state.
type Registry struct {
	models []*Model
	policy NamePolicy
}

func NewRegistry(policy NamePolicy) *Registry {
	return &Registry{policy: policy}
}

func (r *Registry) Policy() NamePolicy {
	return r.policy
}

// Register assigns the model the next free slot, stamps owner links and
// captures every node's initial transform and selectability.
func (r *Registry) Register(m *Model) int {
	m.Index = len(r.models)
	r.models = append(r.models, m)
	if m.Root != nil {
		m.Root.Traverse(func(n *Node) bool {
			n.OwnerModel = m.Index
			n.Initial = n.Transform
			n.Selectable = r.policy.IsSelectable(n)
			return true
		})
	}
	log.Printf("[scene] registered model %d (%s)", m.Index, m.Name)
	return m.Index
}

// Unregister drops the model but keeps the slot, so other models keep
// their indices and node owner links stay valid.
func (r *Registry) Unregister(index int) {
	if index < 0 || index >= len(r.models) {
		return
	}
	r.models[index] = nil
}

func (r *Registry) Model(index int) *Model {
	if index < 0 || index >= len(r.models) || r.models[index] == nil {
		return nil
	}
	return r.models[index]
}

func (r *Registry) Models() []*Model {
	out := make([]*Model, 0, len(r.models))
	for _, m := range r.models {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

func (r *Registry) ModelCount() int {
	return len(r.models)
}

// NodeById searches all models, in slot order.
func (r *Registry) NodeById(id string) *Node {
	for _, m := range r.models {
		if m == nil || m.Root == nil {
			continue
		}
		if n := m.Root.FindById(id); n != nil {
			return n
		}
	}
	return nil
}

// ListSelectableParts returns one entry per node id. When a composite node
// and a leaf mesh share an id the composite wins, since that is the node
// selection resolves to.
func (r *Registry) ListSelectableParts() []PartInfo {
	byId := make(map[string]*Node)
	order := make([]string, 0)
	for _, m := range r.models {
		if m == nil || m.Root == nil {
			continue
		}
		m.Root.Traverse(func(n *Node) bool {
			if !n.Selectable {
				return true
			}
			prev, seen := byId[n.Id]
			if !seen {
				byId[n.Id] = n
				order = append(order, n.Id)
			} else if !prev.IsComposite() && n.IsComposite() {
				byId[n.Id] = n
			}
			return true
		})
	}
	parts := make([]PartInfo, 0, len(order))
	for _, id := range order {
		n := byId[id]
		parts = append(parts, PartInfo{Id: n.Id, Name: n.Name, ModelIndex: n.OwnerModel})
	}
	return parts
}

// WorldBounds unions all registered model bounds.
func (r *Registry) WorldBounds() AABB {
	b := EmptyAABB()
	for _, m := range r.models {
		if m != nil {
			b = b.Union(m.WorldBounds())
		}
	}
	return b
}
