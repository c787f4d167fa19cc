package loader

import (
	"fmt"
	"log"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/partscope/partscope/scene"
	"github.com/partscope/partscope/utils"
)

// Descriptor is one entry of the ordered model list fed by the host:
// where the asset lives, the stable model id, and optionally a node path
// restricting the import to a subtree.
type Descriptor struct {
	URL      string `json:"url" yaml:"url"`
	Id       string `json:"id" yaml:"id"`
	NodePath string `json:"nodePath,omitempty" yaml:"nodePath,omitempty"`
}

// Loader turns glTF documents into scene models. Anonymous nodes get
// generated names so ids stay usable; generated names never make a node
// selectable since the metadata/children rule still applies.
type Loader struct {
	nameGen utils.RandomNameGenerator
}

func New() *Loader {
	return &Loader{}
}

// Load reads the glTF asset at the descriptor's URL (a file path at this
// boundary; remote fetching is the host's business).
func (l *Loader) Load(d Descriptor) (*scene.Model, error) {
	doc, err := gltf.Open(d.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open gltf %q", d.URL)
	}
	return l.FromDocument(d, doc)
}

// FromDocument builds the model from an already decoded document.
func (l *Loader) FromDocument(d Descriptor, doc *gltf.Document) (*scene.Model, error) {
	if len(doc.Scenes) == 0 {
		return nil, errors.Errorf("gltf %q has no scenes", d.Id)
	}

	root := scene.NewNode(d.Id, d.Id, scene.KindGroup)
	sc := doc.Scenes[0]
	if doc.Scene != nil {
		sc = doc.Scenes[*doc.Scene]
	}
	for _, iNode := range sc.Nodes {
		child, err := l.buildNode(doc, iNode, d.Id)
		if err != nil {
			return nil, err
		}
		root.AddChild(child)
	}

	if d.NodePath != "" {
		sub := findByPath(root, strings.Split(d.NodePath, "/"))
		if sub == nil {
			return nil, errors.Errorf("node path %q not found in %q", d.NodePath, d.Id)
		}
		sub.Parent = nil
		wrap := scene.NewNode(d.Id, d.Id, scene.KindGroup)
		wrap.AddChild(sub)
		root = wrap
	}

	log.Printf("[loader] built model %q from %q", d.Id, d.URL)
	return &scene.Model{Id: d.Id, Name: d.Id, Root: root}, nil
}

// findByPath descends the tree matching node names against the slash
// separated path, one segment per level.
func findByPath(n *scene.Node, path []string) *scene.Node {
	if len(path) == 0 {
		return n
	}
	for _, c := range n.Childs {
		if c.Name == path[0] {
			if found := findByPath(c, path[1:]); found != nil {
				return found
			}
		}
	}
	return nil
}

func (l *Loader) buildNode(doc *gltf.Document, iNode uint32, modelId string) (*scene.Node, error) {
	if int(iNode) >= len(doc.Nodes) {
		return nil, errors.Errorf("node index %d out of range", iNode)
	}
	gn := doc.Nodes[iNode]

	name := gn.Name
	if name == "" {
		name = l.nameGen.RandomName()
	}
	id := fmt.Sprintf("%s/%s", modelId, name)

	kind := scene.KindOther
	if gn.Mesh != nil {
		kind = scene.KindMesh
	} else if len(gn.Children) > 0 {
		kind = scene.KindGroup
	}

	n := scene.NewNode(id, name, kind)
	n.Transform = nodeTransform(gn)
	n.HasMetadata = gn.Extras != nil

	if gn.Mesh != nil {
		mesh, err := l.buildMesh(doc, *gn.Mesh)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to build mesh for node %q", name)
		}
		n.Mesh = mesh
	}

	for _, c := range gn.Children {
		child, err := l.buildNode(doc, c, modelId)
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

// nodeTransform maps glTF TRS onto ours, fixing up the zero values the
// decoder leaves for unspecified fields.
func nodeTransform(gn *gltf.Node) scene.Transform {
	t := scene.IdentityTransform()
	t.Position = mgl32.Vec3{gn.Translation[0], gn.Translation[1], gn.Translation[2]}

	if gn.Rotation != [4]float32{} {
		t.Rotation = mgl32.Quat{
			W: gn.Rotation[3],
			V: mgl32.Vec3{gn.Rotation[0], gn.Rotation[1], gn.Rotation[2]},
		}.Normalize()
	}
	if gn.Scale != [3]float32{} {
		t.Scale = mgl32.Vec3{gn.Scale[0], gn.Scale[1], gn.Scale[2]}
	}
	return t
}

func (l *Loader) buildMesh(doc *gltf.Document, iMesh uint32) (*scene.Mesh, error) {
	if int(iMesh) >= len(doc.Meshes) {
		return nil, errors.Errorf("mesh index %d out of range", iMesh)
	}
	gm := doc.Meshes[iMesh]

	mesh := &scene.Mesh{Material: scene.DefaultMaterial()}
	for _, prim := range gm.Primitives {
		iPos, ok := prim.Attributes["POSITION"]
		if !ok {
			continue
		}

		positions, err := modeler.ReadPosition(doc, doc.Accessors[iPos], nil)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read positions")
		}

		var normals [][3]float32
		if iNorm, ok := prim.Attributes["NORMAL"]; ok {
			normals, err = modeler.ReadNormal(doc, doc.Accessors[iNorm], nil)
			if err != nil {
				return nil, errors.Wrapf(err, "Failed to read normals")
			}
		}

		var indices []uint32
		if prim.Indices != nil {
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return nil, errors.Wrapf(err, "Failed to read indices")
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		offset := uint32(len(mesh.Vertices))
		for _, p := range positions {
			mesh.Vertices = append(mesh.Vertices, mgl32.Vec3{p[0], p[1], p[2]})
		}
		for _, nrm := range normals {
			mesh.Normals = append(mesh.Normals, mgl32.Vec3{nrm[0], nrm[1], nrm[2]})
		}
		for _, idx := range indices {
			mesh.Indexes = append(mesh.Indexes, idx+offset)
		}

		if prim.Material != nil && int(*prim.Material) < len(doc.Materials) {
			mesh.Material = convertMaterial(doc.Materials[*prim.Material])
		}
	}
	return mesh, nil
}

func convertMaterial(gm *gltf.Material) scene.Material {
	mat := scene.DefaultMaterial()
	if gm.Name != "" {
		mat.Name = gm.Name
	}
	if pbr := gm.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
		f := *pbr.BaseColorFactor
		mat.Color = mgl32.Vec4{f[0], f[1], f[2], f[3]}
	}
	return mat
}
