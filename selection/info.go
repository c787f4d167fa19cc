package selection

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/partscope/partscope/scene"
	"github.com/partscope/partscope/utils"
)

// MeshSummary is the per-mesh part of the derived info stream.
type MeshSummary struct {
	NodeId   string `json:"nodeId"`
	Material string `json:"material"`
	Vertices int    `json:"vertices"`
	Faces    int    `json:"faces"`
}

// ObjectInfo is the derived view of the current selection that feeds the
// info panel and the change stream. Rotation is reported as euler degrees
// for display; internally everything stays quaternion.
type ObjectInfo struct {
	State          string        `json:"state"`
	NodeIds        []string      `json:"nodeIds,omitempty"`
	ModelIndices   []int         `json:"modelIndices,omitempty"`
	Representative string        `json:"representative,omitempty"`
	WorldPosition  [3]float32    `json:"worldPosition"`
	WorldRotation  [3]float32    `json:"worldRotation"`
	WorldScale     [3]float32    `json:"worldScale"`
	Meshes         []MeshSummary `json:"meshes,omitempty"`
}

// Anchor carries the multi-selection proxy transform into info derivation,
// so this package does not depend on the gizmo.
type Anchor struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// DeriveInfo builds the info record for the current selection. The
// representative object is the sole node for a single selection, the proxy
// anchor for a multi selection (anchor != nil), and the first selected
// model's root for a model selection.
func (m *Manager) DeriveInfo(anchor *Anchor) ObjectInfo {
	info := ObjectInfo{
		State:        m.state.String(),
		NodeIds:      m.NodeIds(),
		ModelIndices: m.ModelIndices(),
		WorldScale:   [3]float32{1, 1, 1},
	}

	switch m.state {
	case NodeSelection:
		for _, n := range m.nodes {
			info.Meshes = append(info.Meshes, summarize(n)...)
		}
		if len(m.nodes) == 1 {
			n := m.nodes[0]
			info.Representative = n.Id
			fillTransform(&info, n.WorldPosition(), n.WorldRotation(), worldScale(n))
		} else if anchor != nil {
			info.Representative = "anchor"
			fillTransform(&info, anchor.Position, anchor.Rotation, anchor.Scale)
		}
	case ModelSelection:
		if len(m.models) > 0 {
			if mdl := m.reg.Model(m.models[0]); mdl != nil && mdl.Root != nil {
				info.Representative = mdl.Root.Id
				fillTransform(&info, mdl.Root.WorldPosition(), mdl.Root.WorldRotation(), worldScale(mdl.Root))
				info.Meshes = summarize(mdl.Root)
			}
		}
	}
	return info
}

// Rotation angles are reported negated against the mathematical sense so
// they match the clockwise control convention the gizmo layer constructs
// rotations from (gizmo.RotationFromEulerDeg).
func fillTransform(info *ObjectInfo, pos mgl32.Vec3, rot mgl32.Quat, scale mgl32.Vec3) {
	euler := utils.QuatToEuler(rot)
	for i := 0; i < 3; i++ {
		info.WorldPosition[i] = pos[i]
		info.WorldRotation[i] = -mgl32.RadToDeg(euler[i])
		info.WorldScale[i] = scale[i]
	}
}

// worldScale accumulates componentwise scale up the parent chain.
func worldScale(n *scene.Node) mgl32.Vec3 {
	s := n.Transform.Scale
	for p := n.Parent; p != nil; p = p.Parent {
		for i := 0; i < 3; i++ {
			s[i] *= p.Transform.Scale[i]
		}
	}
	return s
}

func summarize(n *scene.Node) []MeshSummary {
	var out []MeshSummary
	n.Traverse(func(cur *scene.Node) bool {
		if cur.Kind == scene.KindMesh && cur.Mesh != nil {
			out = append(out, MeshSummary{
				NodeId:   cur.Id,
				Material: cur.Mesh.Material.Name,
				Vertices: len(cur.Mesh.Vertices),
				Faces:    cur.Mesh.TriangleCount(),
			})
		}
		return true
	})
	return out
}
