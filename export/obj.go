package export

import (
	"fmt"
	"io"

	"github.com/partscope/partscope/scene"
)

// ExportObj writes the subtree as wavefront OBJ, one object per mesh
// node, vertices in world space so the file reflects the current pose.
func ExportObj(_w io.Writer, root *scene.Node) error {
	var werr error
	w := func(format string, args ...interface{}) {
		if werr != nil {
			return
		}
		_, werr = _w.Write(([]byte)(fmt.Sprintf(format+"\n", args...)))
	}

	w("# partscope export")

	iV := uint32(1)
	root.Traverse(func(n *scene.Node) bool {
		if n.Kind != scene.KindMesh || n.Mesh == nil {
			return true
		}
		name := n.Name
		if name == "" {
			name = n.Id
		}
		w("o %s", name)

		world := n.WorldMatrix()
		for _, v := range n.Mesh.Vertices {
			p := world.Mul4x1(v.Vec4(1)).Vec3()
			w("v %f %f %f", p[0], p[1], p[2])
		}
		for _, nrm := range n.Mesh.Normals {
			w("vn %f %f %f", nrm[0], nrm[1], nrm[2])
		}

		hasNormals := len(n.Mesh.Normals) == len(n.Mesh.Vertices)
		for i := 0; i+2 < len(n.Mesh.Indexes); i += 3 {
			a := n.Mesh.Indexes[i] + iV
			b := n.Mesh.Indexes[i+1] + iV
			c := n.Mesh.Indexes[i+2] + iV
			if hasNormals {
				w("f %d//%d %d//%d %d//%d", a, a, b, b, c, c)
			} else {
				w("f %d %d %d", a, b, c)
			}
		}
		iV += uint32(len(n.Mesh.Vertices))
		return true
	})
	return werr
}
