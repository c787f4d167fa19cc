package selection

import (
	"testing"

	"github.com/partscope/partscope/scene"
)

func buildRegistry() (*scene.Registry, *scene.Node, *scene.Node, *scene.Node) {
	reg := scene.NewRegistry(scene.DefaultNamePolicy())
	root := scene.NewNode("root", "root", scene.KindGroup)
	a := scene.NewNode("a", "PartA", scene.KindGroup)
	a.HasMetadata = true
	b := scene.NewNode("b", "PartB", scene.KindGroup)
	b.HasMetadata = true
	root.AddChild(a)
	root.AddChild(b)
	reg.Register(&scene.Model{Id: "m0", Name: "m0", Root: root})
	return reg, root, a, b
}

func TestClickTransitions(t *testing.T) {
	reg, _, a, b := buildRegistry()
	m := NewManager(reg)

	if m.State() != Empty {
		t.Fatalf("initial state %v", m.State())
	}

	m.Click(a)
	if m.State() != NodeSelection || len(m.Nodes()) != 1 || m.Nodes()[0] != a {
		t.Fatalf("click: state=%v nodes=%v", m.State(), m.NodeIds())
	}

	m.ToggleClick(b)
	if len(m.Nodes()) != 2 {
		t.Fatalf("toggle add: nodes=%v", m.NodeIds())
	}

	m.ToggleClick(a)
	if len(m.Nodes()) != 1 || m.Nodes()[0] != b {
		t.Fatalf("toggle remove: nodes=%v", m.NodeIds())
	}

	m.Miss()
	if m.State() != Empty {
		t.Fatalf("miss: state=%v", m.State())
	}
}

func TestToggleToEmpty(t *testing.T) {
	reg, _, a, _ := buildRegistry()
	m := NewManager(reg)
	m.Click(a)
	m.ToggleClick(a)
	if m.State() != Empty {
		t.Errorf("removing the last node should empty the selection, state=%v", m.State())
	}
}

func TestSetSelectedNodeIdsIdempotent(t *testing.T) {
	reg, _, _, _ := buildRegistry()
	m := NewManager(reg)

	transitions := 0
	m.OnChange = func() { transitions++ }

	m.SetSelectedNodeIds([]string{"a", "b"})
	if transitions != 1 {
		t.Fatalf("transitions=%d; expected 1", transitions)
	}
	epoch := m.Epoch()

	// identical set, different order: no transition
	m.SetSelectedNodeIds([]string{"b", "a"})
	if transitions != 1 || m.Epoch() != epoch {
		t.Errorf("repeated call transitioned: transitions=%d epoch=%d", transitions, m.Epoch())
	}
}

func TestSetSelectedNodeIdsDropsUnknown(t *testing.T) {
	reg, _, a, _ := buildRegistry()
	m := NewManager(reg)

	m.SetSelectedNodeIds([]string{"a", "nope", "a"})
	if len(m.Nodes()) != 1 || m.Nodes()[0] != a {
		t.Errorf("nodes=%v; expected just a", m.NodeIds())
	}

	m.SetSelectedNodeIds([]string{"nope"})
	if m.State() != Empty {
		t.Errorf("all-unknown set should empty the selection, state=%v", m.State())
	}
}

func TestModelIndicesDerived(t *testing.T) {
	reg, _, a, b := buildRegistry()
	m := NewManager(reg)

	m.Click(a)
	m.ToggleClick(b)
	idx := m.ModelIndices()
	if len(idx) != 1 || idx[0] != 0 {
		t.Errorf("model indices=%v; expected [0]", idx)
	}

	m.SelectModels([]int{0, 5})
	if m.State() != ModelSelection {
		t.Fatalf("state=%v", m.State())
	}
	idx = m.ModelIndices()
	if len(idx) != 1 || idx[0] != 0 {
		t.Errorf("invalid model index not dropped: %v", idx)
	}
}

func TestDeriveInfoRepresentative(t *testing.T) {
	reg, root, a, b := buildRegistry()
	m := NewManager(reg)

	m.Click(a)
	info := m.DeriveInfo(nil)
	if info.Representative != "a" || info.State != "node" {
		t.Errorf("single-selection info: %+v", info)
	}

	m.ToggleClick(b)
	info = m.DeriveInfo(&Anchor{Scale: [3]float32{1, 1, 1}})
	if info.Representative != "anchor" {
		t.Errorf("multi-selection representative=%q; expected anchor", info.Representative)
	}

	m.SelectModels([]int{0})
	info = m.DeriveInfo(nil)
	if info.Representative != root.Id {
		t.Errorf("model-selection representative=%q; expected %q", info.Representative, root.Id)
	}
}
