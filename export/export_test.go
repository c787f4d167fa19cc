package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"

	"github.com/partscope/partscope/scene"
)

func triNode() *scene.Node {
	n := scene.NewNode("tri", "Tri", scene.KindMesh)
	n.Mesh = &scene.Mesh{
		Vertices: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:  []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Indexes:  []uint32{0, 1, 2},
		Material: scene.DefaultMaterial(),
	}
	return n
}

func TestExportGLTFRoundtrip(t *testing.T) {
	root := scene.NewNode("root", "Root", scene.KindGroup)
	child := triNode()
	child.Transform.Position = mgl32.Vec3{3, 0, 0}
	root.AddChild(child)

	var buf bytes.Buffer
	if err := ExportGLTF(&buf, root); err != nil {
		t.Fatal(err)
	}

	doc := &gltf.Document{}
	if err := gltf.NewDecoder(bytes.NewReader(buf.Bytes())).Decode(doc); err != nil {
		t.Fatalf("exported document does not decode: %v", err)
	}
	if len(doc.Nodes) != 2 {
		t.Fatalf("nodes=%d; expected 2", len(doc.Nodes))
	}
	if doc.Nodes[1].Translation != [3]float32{3, 0, 0} {
		t.Errorf("child translation=%v", doc.Nodes[1].Translation)
	}
	if len(doc.Meshes) != 1 || len(doc.Materials) != 1 {
		t.Errorf("meshes=%d materials=%d", len(doc.Meshes), len(doc.Materials))
	}
}

func TestExportObj(t *testing.T) {
	root := scene.NewNode("root", "Root", scene.KindGroup)
	child := triNode()
	child.Transform.Position = mgl32.Vec3{0, 5, 0}
	root.AddChild(child)

	var buf bytes.Buffer
	if err := ExportObj(&buf, root); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "o Tri") {
		t.Error("missing object line")
	}
	// world-space vertex: (0,0,0) moved to (0,5,0)
	if !strings.Contains(out, "v 0.000000 5.000000 0.000000") {
		t.Errorf("world transform not applied:\n%s", out)
	}
	if !strings.Contains(out, "f 1//1 2//2 3//3") {
		t.Errorf("faces missing:\n%s", out)
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestExportObjReportsWriteError(t *testing.T) {
	root := scene.NewNode("root", "Root", scene.KindGroup)
	root.AddChild(triNode())

	if err := ExportObj(failWriter{}, root); err == nil {
		t.Error("write failure not reported")
	}
}
