package snapshot

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Fixed studio lighting: ambient fill, a hemisphere tint and a three-point
// directional rig (key, fill, rim). The setup is constant so snapshots of
// the same part always look the same.
type directional struct {
	dir       mgl32.Vec3 // towards the light
	intensity float32
}

type studioLights struct {
	ambient    float32
	skyTint    float32
	groundTint float32
	rig        [3]directional
}

func newStudioLights() studioLights {
	return studioLights{
		ambient:    0.25,
		skyTint:    0.20,
		groundTint: 0.05,
		rig: [3]directional{
			{dir: mgl32.Vec3{0.5, 0.8, 0.6}.Normalize(), intensity: 0.7},   // key
			{dir: mgl32.Vec3{-0.7, 0.3, 0.2}.Normalize(), intensity: 0.3},  // fill
			{dir: mgl32.Vec3{0.1, 0.4, -0.9}.Normalize(), intensity: 0.25}, // rim
		},
	}
}

// shade lambert-shades an albedo by the fixed rig. Output is clamped to
// the albedo's own range so highlights never blow out to pure white.
func (l studioLights) shade(normal mgl32.Vec3, albedo mgl32.Vec4) mgl32.Vec4 {
	if normal.Len() == 0 {
		normal = mgl32.Vec3{0, 1, 0}
	} else {
		normal = normal.Normalize()
	}

	// hemisphere: sky above, ground below
	hemi := l.groundTint + (l.skyTint-l.groundTint)*(normal.Y()*0.5+0.5)

	total := l.ambient + hemi
	for _, d := range l.rig {
		if ndl := normal.Dot(d.dir); ndl > 0 {
			total += ndl * d.intensity
		}
	}
	if total > 1 {
		total = 1
	}

	return mgl32.Vec4{
		albedo.X() * total,
		albedo.Y() * total,
		albedo.Z() * total,
		albedo.W(),
	}
}
