package viewer

import (
	"log"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/partscope/partscope/camera"
	"github.com/partscope/partscope/explode"
	"github.com/partscope/partscope/gizmo"
	"github.com/partscope/partscope/pick"
	"github.com/partscope/partscope/scene"
	"github.com/partscope/partscope/selection"
	"github.com/partscope/partscope/snapshot"
)

// framing is re-attempted at these delays after the last model reports
// loaded, to catch geometry that arrives late.
var framingDelays = []time.Duration{0, 300 * time.Millisecond, 1000 * time.Millisecond}

// Publisher receives every derived-info change; the status hub implements
// it. A nil publisher is fine.
type Publisher interface {
	Publish(v interface{})
}

// Viewer is the scene interaction engine: it owns the registry, the
// selection state machine, the gizmo attachments, the explosion controller
// and the camera, and runs them in a fixed per-frame order. All methods
// are meant for a single frame-driven goroutine; the engine itself does no
// I/O.
type Viewer struct {
	reg       *scene.Registry
	sel       *selection.Manager
	hit       *pick.HitTester
	drag      pick.DragTracker
	explosion *explode.Controller
	cam       *camera.Orbit
	framer    *camera.Framer
	snap      *snapshot.Renderer

	proxy *gizmo.ProxyGroup
	pass  *gizmo.Passthrough

	publisher   Publisher
	subscribers []chan selection.ObjectInfo

	expectedModels int
	loadedModels   int
	framePending   []time.Time
}

type Options struct {
	Policy         scene.NamePolicy
	SnapshotWidth  int
	SnapshotHeight int
	Publisher      Publisher
}

func New(opts Options) *Viewer {
	if opts.SnapshotWidth <= 0 {
		opts.SnapshotWidth = 512
	}
	if opts.SnapshotHeight <= 0 {
		opts.SnapshotHeight = 512
	}

	reg := scene.NewRegistry(opts.Policy)
	cam := camera.NewOrbit(mgl32.Vec3{}, 10, 25, 35)
	v := &Viewer{
		reg:       reg,
		sel:       selection.NewManager(reg),
		hit:       pick.NewHitTester(reg),
		explosion: explode.NewController(reg),
		cam:       cam,
		framer:    camera.NewFramer(cam),
		snap:      snapshot.NewRenderer(opts.SnapshotWidth, opts.SnapshotHeight),
		publisher: opts.Publisher,
	}
	v.sel.OnChange = v.onSelectionChange
	return v
}

func (v *Viewer) Registry() *scene.Registry     { return v.reg }
func (v *Viewer) Camera() *camera.Orbit         { return v.cam }
func (v *Viewer) Selection() *selection.Manager { return v.sel }

// BeginModelSet starts a fresh loading round: the auto-framer re-arms and
// the loaded counter resets.
func (v *Viewer) BeginModelSet(expected int) {
	v.expectedModels = expected
	v.loadedModels = 0
	v.framePending = nil
	v.framer.Reset()
}

// AddModel registers a loaded model and schedules its explosion analysis.
func (v *Viewer) AddModel(m *scene.Model, now time.Time) int {
	idx := v.reg.Register(m)
	v.explosion.ScheduleAnalysis(idx, now)
	return idx
}

// ModelLoaded reports one model of the current set as complete. Once all
// expected models are in, camera framing is scheduled (with retries for
// late geometry).
func (v *Viewer) ModelLoaded(now time.Time) {
	v.loadedModels++
	if v.expectedModels > 0 && v.loadedModels >= v.expectedModels {
		for _, d := range framingDelays {
			v.framePending = append(v.framePending, now.Add(d))
		}
		log.Printf("[viewer] all %d models loaded, framing scheduled", v.loadedModels)
	}
}

// LoadFailed marks one expected model as failed: it still counts towards
// the set so framing is not held hostage, but no analysis ever runs for it.
func (v *Viewer) LoadFailed(now time.Time) {
	v.ModelLoaded(now)
}

// Update runs the per-frame passes in their fixed order: gizmo sync first,
// then explosion (skipped during an active gizmo drag), then camera
// interpolation. Input mutations happen outside, on the discrete event
// entry points below.
func (v *Viewer) Update(now time.Time, dt float32) {
	dragging := v.drag.GizmoActive()

	if v.proxy != nil {
		if dragging {
			v.proxy.SyncDrag()
		} else {
			v.proxy.SyncIdle()
		}
	} else if v.pass != nil && dragging {
		if v.pass.Sync() {
			v.emitInfo()
		}
	}

	v.explosion.Update(now, dragging)

	pending := v.framePending[:0]
	for _, due := range v.framePending {
		if now.Before(due) {
			pending = append(pending, due)
			continue
		}
		v.framer.Frame(v.reg.WorldBounds())
	}
	v.framePending = pending

	v.framer.Update(dt)
}

// --- pointer input (discrete events, outside the frame loop) ---

func (v *Viewer) PointerDown(px, py float32) {
	v.drag.PointerDown(px, py)
}

func (v *Viewer) PointerMove(px, py float32) {
	v.drag.PointerMove(px, py)
}

// PointerUp finishes a gesture. ndcX/ndcY are the release position in
// normalized device coordinates; modifier toggles membership instead of
// replacing the selection. Drags and cooldown releases never select.
func (v *Viewer) PointerUp(ndcX, ndcY float32, modifier bool, now time.Time) {
	if !v.drag.PointerUp(now) {
		return
	}

	ray := pick.ScreenRay(ndcX, ndcY, v.cam.ViewProjection().Inv())
	hit := v.hit.Pick(ray)
	switch {
	case hit == nil && !modifier:
		v.sel.Miss()
	case hit == nil:
		// modifier-held miss keeps the selection
	case modifier:
		v.sel.ToggleClick(hit.Node)
	default:
		v.sel.Click(hit.Node)
	}
}

// CameraDragStart / CameraDragEnd mark user camera manipulation; either
// one permanently cancels auto-framing for this model set.
func (v *Viewer) CameraDragStart() { v.framer.Cancel() }
func (v *Viewer) CameraDragEnd()   { v.framer.Cancel() }

func (v *Viewer) GizmoDragBegin() {
	v.drag.GizmoDragStart()
	if len(v.sel.Nodes()) == 1 {
		v.pass = gizmo.NewPassthrough(v.sel.Nodes()[0])
	}
}

func (v *Viewer) GizmoDragEnd(now time.Time) {
	v.drag.GizmoDragEnd(now)
	v.emitInfo()
}

// --- selection bookkeeping ---

func (v *Viewer) onSelectionChange() {
	if v.proxy != nil {
		v.proxy.Release()
		v.proxy = nil
	}
	v.pass = nil

	nodes := v.sel.Nodes()
	switch {
	case len(nodes) >= 2:
		v.proxy = gizmo.Build(nodes, v.sel.Epoch())
	case len(nodes) == 1:
		v.pass = gizmo.NewPassthrough(nodes[0])
	}

	v.emitInfo()
}

// Anchor exposes the current proxy transform, when a multi-selection
// proxy exists.
func (v *Viewer) anchor() *selection.Anchor {
	if v.proxy == nil {
		return nil
	}
	return &selection.Anchor{
		Position: v.proxy.Position,
		Rotation: v.proxy.Rotation,
		Scale:    v.proxy.Scale,
	}
}

// Info derives the current selected-object info record.
func (v *Viewer) Info() selection.ObjectInfo {
	return v.sel.DeriveInfo(v.anchor())
}

func (v *Viewer) emitInfo() {
	info := v.Info()
	if v.publisher != nil {
		v.publisher.Publish(info)
	}
	for _, ch := range v.subscribers {
		select {
		case ch <- info:
		default:
			// slow subscriber, drop rather than stall the frame
		}
	}
}

// Subscribe returns a change stream of derived selection info. The
// channel is never closed; slow consumers miss updates instead of
// blocking the engine.
func (v *Viewer) Subscribe() <-chan selection.ObjectInfo {
	ch := make(chan selection.ObjectInfo, 16)
	v.subscribers = append(v.subscribers, ch)
	return ch
}

// --- imperative control surface ---

func (v *Viewer) SetSelectedNodeIds(ids []string) {
	v.sel.SetSelectedNodeIds(ids)
}

func (v *Viewer) GetSelectableParts() []scene.PartInfo {
	return v.reg.ListSelectableParts()
}

func (v *Viewer) SetExplosionValue(value float32) {
	v.explosion.SetValue(value)
}

func (v *Viewer) ExplosionValue() float32 {
	return v.explosion.Value()
}

// ResetToAssembly clears the selection and reapplies the assembled pose.
// Manual edits persist as baselines until explicitly cleared.
func (v *Viewer) ResetToAssembly() {
	v.sel.Miss()
	v.explosion.Reset()
}

func (v *Viewer) ZoomIn()  { v.cam.ZoomIn() }
func (v *Viewer) ZoomOut() { v.cam.ZoomOut() }

// PartialTransform is a sparse transform edit; nil fields stay untouched.
// Rotation is euler degrees, matching the info stream.
type PartialTransform struct {
	Position *[3]float32 `json:"position,omitempty"`
	Rotation *[3]float32 `json:"rotation,omitempty"`
	Scale    *[3]float32 `json:"scale,omitempty"`
}

// UpdateObjectTransform applies a partial transform to the current
// representative object: the sole node, the proxy anchor (propagated to
// all members), or the selected model's root.
func (v *Viewer) UpdateObjectTransform(pt PartialTransform) error {
	switch {
	case v.proxy != nil:
		if pt.Position != nil {
			v.proxy.Position = mgl32.Vec3{pt.Position[0], pt.Position[1], pt.Position[2]}
		}
		if pt.Rotation != nil {
			v.proxy.Rotation = quatFromEulerDeg(*pt.Rotation)
		}
		if pt.Scale != nil {
			v.proxy.Scale = mgl32.Vec3{pt.Scale[0], pt.Scale[1], pt.Scale[2]}
		}
		v.proxy.SyncDrag()
	case len(v.sel.Nodes()) == 1:
		n := v.sel.Nodes()[0]
		applyPartial(n, pt)
	case v.sel.State() == selection.ModelSelection:
		idx := v.sel.ModelIndices()
		if len(idx) == 0 {
			return errors.Errorf("no model selected")
		}
		m := v.reg.Model(idx[0])
		if m == nil || m.Root == nil {
			return errors.Errorf("selected model %d is gone", idx[0])
		}
		applyPartial(m.Root, pt)
	default:
		return errors.Errorf("nothing selected")
	}

	v.emitInfo()
	return nil
}

func applyPartial(n *scene.Node, pt PartialTransform) {
	if pt.Position != nil {
		n.Transform.Position = mgl32.Vec3{pt.Position[0], pt.Position[1], pt.Position[2]}
	}
	if pt.Rotation != nil {
		n.Transform.Rotation = quatFromEulerDeg(*pt.Rotation)
	}
	if pt.Scale != nil {
		n.Transform.Scale = mgl32.Vec3{pt.Scale[0], pt.Scale[1], pt.Scale[2]}
	}
	modified := n.Transform
	n.UserModified = &modified
}

func quatFromEulerDeg(e [3]float32) mgl32.Quat {
	return gizmo.RotationFromEulerDeg(e)
}

// CapturePartSnapshot renders a static image of one selectable part.
func (v *Viewer) CapturePartSnapshot(nodeId string, style snapshot.Style) ([]byte, error) {
	n := v.reg.NodeById(nodeId)
	if n == nil {
		return nil, errors.Errorf("unknown node id %q", nodeId)
	}
	return v.snap.Snapshot(n, style)
}

// CaptureModelSnapshot renders a static image of a whole model.
func (v *Viewer) CaptureModelSnapshot(modelId string, style snapshot.Style) ([]byte, error) {
	for _, m := range v.reg.Models() {
		if m.Id == modelId {
			if m.Root == nil {
				return nil, errors.Errorf("model %q has no geometry", modelId)
			}
			return v.snap.Snapshot(m.Root, style)
		}
	}
	return nil, errors.Errorf("unknown model id %q", modelId)
}

// ClearUserEdits drops manual transform edits for one model.
func (v *Viewer) ClearUserEdits(modelIndex int) {
	v.explosion.ClearUserEdits(modelIndex)
}
