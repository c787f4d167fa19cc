package selection

import (
	"log"

	"github.com/partscope/partscope/scene"
)

type State int

const (
	Empty State = iota
	ModelSelection
	NodeSelection
)

func (s State) String() string {
	switch s {
	case ModelSelection:
		return "model"
	case NodeSelection:
		return "node"
	default:
		return "empty"
	}
}

// Manager is the selection state machine. A plain hit replaces the
// selection, a modifier hit toggles membership, a plain miss empties it.
// Every transition bumps the epoch, which invalidates proxy caches built
// against an older selection.
type Manager struct {
	reg *scene.Registry

	state  State
	nodes  []*scene.Node // ordered, NodeSelection only
	models []int         // ordered, ModelSelection only
	epoch  uint64

	// OnChange, when set, fires after every real state transition.
	OnChange func()
}

func NewManager(reg *scene.Registry) *Manager {
	return &Manager{reg: reg}
}

func (m *Manager) State() State  { return m.state }
func (m *Manager) Epoch() uint64 { return m.epoch }
func (m *Manager) Nodes() []*scene.Node {
	return m.nodes
}

func (m *Manager) changed() {
	m.epoch++
	if m.OnChange != nil {
		m.OnChange()
	}
}

// Click replaces the whole selection with the hit node.
func (m *Manager) Click(n *scene.Node) {
	if m.state == NodeSelection && len(m.nodes) == 1 && m.nodes[0] == n {
		return
	}
	m.state = NodeSelection
	m.nodes = []*scene.Node{n}
	m.models = nil
	m.changed()
}

// ToggleClick adds or removes the node from the current node selection
// (modifier-held click). From empty or model selection it behaves like a
// plain click.
func (m *Manager) ToggleClick(n *scene.Node) {
	if m.state != NodeSelection {
		m.Click(n)
		return
	}
	for i, cur := range m.nodes {
		if cur == n {
			m.nodes = append(m.nodes[:i], m.nodes[i+1:]...)
			if len(m.nodes) == 0 {
				m.state = Empty
				m.nodes = nil
			}
			m.changed()
			return
		}
	}
	m.nodes = append(m.nodes, n)
	m.changed()
}

// Miss empties the selection (plain click on nothing).
func (m *Manager) Miss() {
	if m.state == Empty {
		return
	}
	m.state = Empty
	m.nodes = nil
	m.models = nil
	m.changed()
}

// SetSelectedNodeIds resolves ids and replaces the selection wholesale.
// Unresolvable ids are dropped silently; an id set identical to the
// current selection is a no-op, so repeated calls are idempotent.
func (m *Manager) SetSelectedNodeIds(ids []string) {
	resolved := make([]*scene.Node, 0, len(ids))
	seen := make(map[*scene.Node]struct{}, len(ids))
	for _, id := range ids {
		n := m.reg.NodeById(id)
		if n == nil {
			log.Printf("[selection] unknown node id %q dropped", id)
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		resolved = append(resolved, n)
	}

	if len(resolved) == 0 {
		m.Miss()
		return
	}
	if m.state == NodeSelection && sameNodes(m.nodes, resolved) {
		return
	}
	m.state = NodeSelection
	m.nodes = resolved
	m.models = nil
	m.changed()
}

// SelectModels switches to model-level selection.
func (m *Manager) SelectModels(indices []int) {
	valid := make([]int, 0, len(indices))
	for _, i := range indices {
		if m.reg.Model(i) != nil {
			valid = append(valid, i)
		}
	}
	if len(valid) == 0 {
		m.Miss()
		return
	}
	if m.state == ModelSelection && sameInts(m.models, valid) {
		return
	}
	m.state = ModelSelection
	m.models = valid
	m.nodes = nil
	m.changed()
}

// NodeIds returns the selected node ids in selection order.
func (m *Manager) NodeIds() []string {
	ids := make([]string, len(m.nodes))
	for i, n := range m.nodes {
		ids[i] = n.Id
	}
	return ids
}

// ModelIndices derives the affected model set: explicit for model
// selection, owner links for node selection.
func (m *Manager) ModelIndices() []int {
	switch m.state {
	case ModelSelection:
		return append([]int(nil), m.models...)
	case NodeSelection:
		out := make([]int, 0, len(m.nodes))
		seen := make(map[int]struct{})
		for _, n := range m.nodes {
			if _, ok := seen[n.OwnerModel]; ok || n.OwnerModel < 0 {
				continue
			}
			seen[n.OwnerModel] = struct{}{}
			out = append(out, n.OwnerModel)
		}
		return out
	default:
		return nil
	}
}

func sameNodes(a, b []*scene.Node) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[*scene.Node]struct{}, len(a))
	for _, n := range a {
		set[n] = struct{}{}
	}
	for _, n := range b {
		if _, ok := set[n]; !ok {
			return false
		}
	}
	return true
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[int]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}
