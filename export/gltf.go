package export

import (
	"io"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/partscope/partscope/scene"
)

// ExportGLTF writes the subtree as a binary glTF document. Node transforms
// are carried over as TRS so the exported hierarchy matches the live one,
// including any user edits and the current explosion pose.
func ExportGLTF(w io.Writer, root *scene.Node) error {
	doc := gltf.NewDocument()

	if _, err := appendNode(doc, root); err != nil {
		return err
	}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	if err := encoder.Encode(doc); err != nil {
		return errors.Wrapf(err, "Failed to encode gltf")
	}
	return nil
}

func appendNode(doc *gltf.Document, n *scene.Node) (uint32, error) {
	gn := &gltf.Node{
		Name:        n.Name,
		Translation: n.Transform.Position,
		Rotation: [4]float32{
			n.Transform.Rotation.V[0],
			n.Transform.Rotation.V[1],
			n.Transform.Rotation.V[2],
			n.Transform.Rotation.W,
		},
		Scale: n.Transform.Scale,
	}
	index := uint32(len(doc.Nodes))
	doc.Nodes = append(doc.Nodes, gn)

	if n.Kind == scene.KindMesh && n.Mesh != nil && len(n.Mesh.Vertices) > 0 {
		iMesh, err := appendMesh(doc, n.Mesh)
		if err != nil {
			return 0, err
		}
		gn.Mesh = gltf.Index(iMesh)
	}

	for _, c := range n.Childs {
		iChild, err := appendNode(doc, c)
		if err != nil {
			return 0, err
		}
		gn.Children = append(gn.Children, iChild)
	}
	return index, nil
}

func appendMesh(doc *gltf.Document, m *scene.Mesh) (uint32, error) {
	positions := make([][3]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		positions[i] = v
	}

	attributes := map[string]uint32{
		"POSITION": modeler.WritePosition(doc, positions),
	}
	if len(m.Normals) == len(m.Vertices) && len(m.Normals) > 0 {
		normals := make([][3]float32, len(m.Normals))
		for i, n := range m.Normals {
			normals[i] = n
		}
		attributes["NORMAL"] = modeler.WriteNormal(doc, normals)
	}
	indicesAccessor := modeler.WriteIndices(doc, m.Indexes)

	color := m.Material.Color
	doc.Materials = append(doc.Materials, &gltf.Material{
		Name:        m.Material.Name,
		DoubleSided: true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{color[0], color[1], color[2], color[3]},
		},
	})

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: m.Material.Name,
		Primitives: []*gltf.Primitive{
			{
				Indices:    &indicesAccessor,
				Attributes: attributes,
				Material:   gltf.Index(uint32(len(doc.Materials) - 1)),
			},
		},
	})
	return uint32(len(doc.Meshes) - 1), nil
}
