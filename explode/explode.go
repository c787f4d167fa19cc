package explode

import (
	"log"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/partscope/partscope/scene"
)

// fallbackAxis replaces a zero-length explosion direction (part centered
// at the origin) so no NaN can enter the transform chain.
var fallbackAxis = mgl32.Vec3{0, 1, 0}

// distanceFactor scales the explosion travel: twice the part's longest
// bounding-box dimension.
const distanceFactor = 2.0

// analysis is retried at these delays after load, to tolerate geometry
// that arrives asynchronously.
var retryDelays = []time.Duration{300 * time.Millisecond, 1000 * time.Millisecond}

type entry struct {
	node      *scene.Node
	assembled mgl32.Vec3 // assembled local position at analysis time
	direction mgl32.Vec3 // world-space unit direction
	distance  float32
}

// Profile is the one-time per-model analysis result: for every part worth
// displacing, its assembled position, outward direction and travel.
type Profile struct {
	modelIndex int
	entries    []entry
}

func (p *Profile) Len() int {
	return len(p.entries)
}

// Analyze walks the model and records an entry per leaf mesh or named
// composite with a non-degenerate bounding box. Direction points from the
// model origin through the part's box center.
func Analyze(m *scene.Model) *Profile {
	p := &Profile{modelIndex: m.Index}
	if m.Root == nil {
		return p
	}
	origin := m.Root.WorldPosition()

	m.Root.Traverse(func(n *scene.Node) bool {
		if n == m.Root {
			return true
		}
		leafMesh := n.Kind == scene.KindMesh && n.Mesh != nil && len(n.Childs) == 0
		namedComposite := n.IsComposite() && n.Name != ""
		if !leafMesh && !namedComposite {
			return true
		}

		bounds := n.WorldBounds()
		if bounds.IsDegenerate() {
			return true
		}

		dir := bounds.Center().Sub(origin)
		if dir.Len() == 0 {
			dir = fallbackAxis
		} else {
			dir = dir.Normalize()
		}

		// the load-time transform is the assembled pose, regardless of the
		// slider state at (re-)analysis time
		p.entries = append(p.entries, entry{
			node:      n,
			assembled: n.Initial.Position,
			direction: dir,
			distance:  distanceFactor * bounds.LongestDimension(),
		})
		// composites explode as one unit
		return !namedComposite
	})

	log.Printf("[explode] model %d profiled, %d parts", m.Index, len(p.entries))
	return p
}

// Controller owns the per-model profiles and applies the slider value each
// frame. Analysis of freshly loaded models is deferred through a pending
// queue drained by Update, keeping everything on the frame loop.
type Controller struct {
	reg      *scene.Registry
	profiles map[int]*Profile
	pending  []pendingAnalysis
	value    float32 // slider, 0..100
}

type pendingAnalysis struct {
	modelIndex  int
	due         time.Time
	retriesLeft int
}

func NewController(reg *scene.Registry) *Controller {
	return &Controller{
		reg:      reg,
		profiles: make(map[int]*Profile),
	}
}

func (c *Controller) Value() float32 {
	return c.value
}

// SetValue clamps the slider into [0,100].
func (c *Controller) SetValue(v float32) {
	if v < 0 {
		v = 0
	} else if v > 100 {
		v = 100
	}
	c.value = v
}

// ScheduleAnalysis queues the model for profile analysis at the fixed
// retry delays. Each retry re-profiles, picking up late geometry.
func (c *Controller) ScheduleAnalysis(modelIndex int, now time.Time) {
	c.pending = append(c.pending, pendingAnalysis{
		modelIndex:  modelIndex,
		due:         now.Add(retryDelays[0]),
		retriesLeft: len(retryDelays) - 1,
	})
}

// Update drains due analyses and applies the current slider value.
// Skipped entirely while a gizmo drag is active, so the explosion never
// fights the proxy group inside one frame.
func (c *Controller) Update(now time.Time, dragActive bool) {
	remaining := c.pending[:0]
	for _, pa := range c.pending {
		if now.Before(pa.due) {
			remaining = append(remaining, pa)
			continue
		}
		if m := c.reg.Model(pa.modelIndex); m != nil {
			c.profiles[pa.modelIndex] = Analyze(m)
		}
		if pa.retriesLeft > 0 {
			idx := len(retryDelays) - pa.retriesLeft
			remaining = append(remaining, pendingAnalysis{
				modelIndex:  pa.modelIndex,
				due:         now.Add(retryDelays[idx]),
				retriesLeft: pa.retriesLeft - 1,
			})
		}
	}
	c.pending = remaining

	if dragActive {
		return
	}
	c.apply(c.value / 100)
}

// apply positions every profiled part at baseline + direction*distance*f.
// The world direction is brought into the parent's rotation frame first;
// the baseline is the user-modified position when the part was manually
// edited, the assembled one otherwise.
func (c *Controller) apply(factor float32) {
	for _, p := range c.profiles {
		if c.reg.Model(p.modelIndex) == nil {
			continue
		}
		for i := range p.entries {
			e := &p.entries[i]

			base := e.assembled
			if e.node.UserModified != nil {
				base = e.node.UserModified.Position
			}

			localDir := e.node.ParentWorldRotation().Inverse().Rotate(e.direction)
			e.node.Transform.Position = base.Add(localDir.Mul(e.distance * factor))
		}
	}
}

// Reset reapplies the assembled state at factor zero. Manually edited
// parts keep their user-modified baseline until explicitly cleared.
func (c *Controller) Reset() {
	c.value = 0
	c.apply(0)
}

// ClearUserEdits drops every user-modified baseline of the model, then a
// Reset returns it to the load-time assembly.
func (c *Controller) ClearUserEdits(modelIndex int) {
	m := c.reg.Model(modelIndex)
	if m == nil || m.Root == nil {
		return
	}
	m.Root.Traverse(func(n *scene.Node) bool {
		n.UserModified = nil
		n.Transform = n.Initial
		return true
	})
}

// Profiled reports whether the model already has a profile.
func (c *Controller) Profiled(modelIndex int) bool {
	_, ok := c.profiles[modelIndex]
	return ok
}
